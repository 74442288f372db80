package sema

import (
	"fmt"

	"mend/internal/diag"
)

var messageFormats = map[diag.Code]string{
	diag.SemUndefinedName:             "%s cannot be resolved",
	diag.SemUndefinedField:            "%s cannot be resolved or is not a field of %s",
	diag.SemUndefinedMethod:           "the method %s is undefined for the type %s",
	diag.SemUndefinedConstructor:      "the constructor %s is undefined for these arguments",
	diag.SemUndefinedType:             "%s cannot be resolved to a type",
	diag.SemParameterMismatch:         "the method %s in the type %s is not applicable for the arguments",
	diag.SemTypeMismatch:              "type mismatch: cannot convert from %s to %s",
	diag.SemUnhandledException:        "unhandled exception type %s",
	diag.SemUnreachableCatch:          "unreachable catch block for %s",
	diag.SemVoidMethodReturnsValue:    "void methods cannot return a value (got %s)",
	diag.SemShouldReturnValue:         "this method must return a result of type %s",
	diag.SemMissingReturnType:         "return type for the method %s is missing",
	diag.SemNotVisibleField:           "the field %[2]s.%[1]s is not visible",
	diag.SemNotVisibleMethod:          "the method %s from the type %s is not visible",
	diag.SemNotVisibleType:            "the type %s is not visible from %s",
	diag.SemNonStaticFieldFromStatic:  "cannot make a static reference to the non-static field %s",
	diag.SemNonStaticMethodFromStatic: "cannot make a static reference to the non-static method %s",
	diag.SemFinalAssignment:           "the final variable %s cannot be assigned",
	diag.SemIllegalModifier:           "illegal modifier %s",
	diag.SemUninitializedLocal:        "the local variable %s may not have been initialized",
	diag.SemDuplicateLocal:            "duplicate local variable %s",
	diag.SemStaticAccessViaInstance:   "the static member %s from the type %s should be accessed in a static way",
	diag.SemUnreachableCode:           "unreachable code",
	diag.SemMissingReturn:             "this method must return a result of type %s",
	diag.LntUnusedLocal:               "the value of the local variable %s is not used",
	diag.LntUnusedPrivateField:        "the value of the field %s is not used",
	diag.LntUnusedPrivateMethod:       "the method %s is never used locally",
	diag.LntSuperfluousSemicolon:      "unnecessary semicolon",
	diag.LntUnnecessaryElse:           "statement unnecessarily nested within else clause",
	diag.LntAssignmentNoEffect:        "the assignment to variable %s has no effect",
	diag.LntFallthroughCase:           "switch case may be entered by falling through previous case",
	diag.LntUnusedThrows:              "the declared exception %s is not actually thrown",
	diag.LntLocalHidesField:           "the local variable %s hides a field",
}

// message renders the text for code; args beyond the format are ignored.
func message(code diag.Code, args []string) string {
	format, ok := messageFormats[code]
	if !ok {
		return code.Title()
	}
	vals := make([]any, len(args))
	for i, a := range args {
		vals[i] = a
	}
	return fmt.Sprintf(format, vals...)
}

func severityOf(code diag.Code) diag.Severity {
	switch {
	case code == diag.SemStaticAccessViaInstance:
		return diag.SevWarning
	case code >= diag.LntInfo:
		return diag.SevWarning
	default:
		return diag.SevError
	}
}
