package preview

import (
	"context"
	"errors"
	"fmt"

	"mend/internal/diag"
	"mend/internal/parser"
	"mend/internal/source"
	"mend/internal/tsjs"
)

// ErrBroken is returned when an edit introduces syntax errors.
var ErrBroken = errors.New("edit introduces syntax errors")

// Validate re-parses after and fails when it has syntax errors that before
// did not have. JavaScript files go through tree-sitter, the rest through
// the Java parser.
func Validate(ctx context.Context, path string, before, after []byte) error {
	if tsjs.IsSource(path) {
		_, had, err := tsjs.FirstError(ctx, before)
		if err != nil {
			return err
		}
		line, found, err := tsjs.FirstError(ctx, after)
		if err != nil {
			return err
		}
		if found && !had {
			return fmt.Errorf("%w: %s:%d", ErrBroken, path, line)
		}
		return nil
	}
	old, _ := javaErrors(path, before)
	n, first := javaErrors(path, after)
	if n > old {
		return fmt.Errorf("%w: %s:%d", ErrBroken, path, first.Line)
	}
	return nil
}

// ValidateChanges validates every change and joins the failures.
func ValidateChanges(ctx context.Context, changes []Change) error {
	var errs []error
	for _, c := range changes {
		if err := Validate(ctx, c.Path, c.Before, c.After); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func javaErrors(path string, content []byte) (int, source.LineCol) {
	fs := source.NewFileSet()
	id := fs.AddVirtual(path, content)
	bag := diag.NewBag(100)
	parser.ParseSource(fs, id, bag)
	bag.Sort()
	count := 0
	var first source.LineCol
	for _, d := range bag.Items() {
		if d.Severity != diag.SevError {
			continue
		}
		if count == 0 {
			first, _ = fs.Resolve(d.Primary)
		}
		count++
	}
	return count, first
}
