// Package sema resolves names and types across the units of a Program and
// reports the semantic problems and lints that quick fixes are keyed on.
//
// Every diagnostic carries Args in a fixed order and a Primary span on a
// fixed node, so fix rules can find their subject without re-parsing the
// message:
//
//	SEM3001 UndefinedName           [name]              the Name node
//	SEM3002 UndefinedField          [name, type]        the member Name
//	SEM3003 UndefinedMethod         [name, type]        the Call's name
//	SEM3004 UndefinedConstructor    [type]              the New's type node
//	SEM3005 UndefinedType           [name]              the SimpleType
//	SEM3006 ParameterMismatch       [name, type]        the Call's name
//	SEM3007 TypeMismatch            [actual, expected]  the value expression
//	SEM3008 UnhandledException      [exception]         the Call, New or Throw
//	SEM3009 UnreachableCatch        [exception]         the catch parameter type
//	SEM3010 VoidMethodReturnsValue  [actual]            the returned expression
//	SEM3011 ShouldReturnValue       [expected]          the Return statement
//	SEM3012 MissingReturnType       [name]              the method name
//	SEM3013-3015 NotVisible*        [name, declType]    the referencing name
//	SEM3016-3017 NonStatic*         [name]              the referencing name
//	SEM3018 FinalAssignment         [name]              the assigned Name
//	SEM3019 IllegalModifier         [modifier]          the modifier keywords
//	SEM3020 UninitializedLocal      [name]              the reading Name
//	SEM3021 DuplicateLocal          [name]              the declared name
//	SEM3022 StaticAccessViaInstance [name, declType]    the member name
//	SEM3023 UnreachableCode         []                  first unreachable statement
//	SEM3024 MissingReturn           [returnType]        the method name
//	LNT4001-4003 Unused*            [name]              the declared name
//	LNT4004 SuperfluousSemicolon    []                  the empty statement
//	LNT4005 UnnecessaryElse         []                  the else statement
//	LNT4006 AssignmentNoEffect      [name]              the Assign expression
//	LNT4007 FallthroughCase         []                  the reached case label
//	LNT4008 UnusedThrows            [exception]         the throws type node
//	LNT4009 LocalHidesField         [name]              the declared name
package sema
