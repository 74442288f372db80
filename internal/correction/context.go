package correction

import (
	"mend/internal/ast"
	"mend/internal/format"
	"mend/internal/linked"
	"mend/internal/query"
	"mend/internal/rewrite"
	"mend/internal/symbols"
)

// Settings are the user-tunable parts of a request.
type Settings struct {
	Format format.Options
	Naming query.NamingConventions
	// Disabled rule ids are never probed.
	Disabled map[string]bool
	// Relevance overrides the base relevance of rule ids.
	Relevance map[string]int
	// MaxProposals caps the result; 0 means no cap.
	MaxProposals int
}

// Context is what a rule sees: the tree, its bindings, the selection and,
// for quick-fixes, the problem being fixed. A Context is used by one request
// on one goroutine.
type Context struct {
	Tree     *ast.Tree
	Resolver symbols.Resolver
	Offset   uint32
	Length   uint32
	// Problem is set while a quick-fix rule runs.
	Problem  *ProblemLocation
	Settings Settings

	finder    ast.Finder
	found     bool
	relevance int
}

// NewContext creates a context for a selection in t. A nil resolver means
// the tree has no bindings.
func NewContext(t *ast.Tree, r symbols.Resolver, offset, length uint32, s Settings) *Context {
	if r == nil {
		r = symbols.NopResolver(symbols.NewUniverse())
	}
	return &Context{Tree: t, Resolver: r, Offset: offset, Length: length, Settings: s}
}

func (c *Context) find() ast.Finder {
	if !c.found {
		c.finder = c.Tree.Find(c.Offset, c.Length)
		c.found = true
	}
	return c.finder
}

// Covering returns the innermost node containing the selection, or the
// problem's covering node for quick-fixes.
func (c *Context) Covering() ast.NodeID {
	if c.Problem != nil {
		return c.Problem.Covering
	}
	return c.find().Covering
}

// Covered returns the outermost node inside the selection, or the problem's
// covered node for quick-fixes.
func (c *Context) Covered() ast.NodeID {
	if c.Problem != nil {
		return c.Problem.Covered
	}
	return c.find().Covered
}

// Universe returns the well-known types.
func (c *Context) Universe() *symbols.Universe { return c.Resolver.Universe() }

// HasBindings reports whether binding queries can be answered. JavaScript
// trees and trees checked without a resolver have none.
func (c *Context) HasBindings() bool {
	return c.Tree.Lang == ast.LangJava && symbols.HasBindings(c.Resolver)
}

// Binding resolves id, nil without bindings.
func (c *Context) Binding(id ast.NodeID) *symbols.Symbol {
	if !c.HasBindings() {
		return nil
	}
	return c.Resolver.Binding(id)
}

// TypeOf returns the type of expression id, nil without bindings.
func (c *Context) TypeOf(id ast.NodeID) *symbols.Type {
	if !c.HasBindings() {
		return nil
	}
	return c.Resolver.TypeOf(id)
}

// Builder returns a fresh edit builder over the context's tree.
func (c *Context) Builder() *rewrite.Builder {
	return rewrite.NewBuilder(c.Tree, c.Settings.Format)
}

// NewDraft starts a proposal of the running rule.
func (c *Context) NewDraft(label string) *Draft {
	return &Draft{
		Label:     label,
		Relevance: c.relevance,
		Edit:      c.Builder(),
		Linked:    linked.New(),
		opt:       c.Settings.Format,
	}
}

// Draft is a proposal under construction. Rules record edits in Edit (and,
// for declarations in other units, in For(tree)) and fields in Linked; the
// aggregator compiles it.
type Draft struct {
	Label     string
	Relevance int
	Edit      *rewrite.Builder
	Linked    *linked.Model

	opt   format.Options
	extra []*rewrite.Builder
}

// For returns the builder editing tree: Edit for the context's own tree,
// otherwise a builder for that unit created on first use.
func (d *Draft) For(tree *ast.Tree) *rewrite.Builder {
	if tree == d.Edit.Tree().Base() {
		return d.Edit
	}
	for _, b := range d.extra {
		if b.Tree().Base() == tree {
			return b
		}
	}
	b := rewrite.NewBuilder(tree, d.opt)
	d.extra = append(d.extra, b)
	return b
}
