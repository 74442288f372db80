package rules

import (
	"fmt"
	"sync"

	"mend/internal/correction"
	"mend/internal/diag"
	"mend/internal/token"
)

// assists in registration order; equal relevance keeps this order.
func assists() []*correction.Rule {
	return []*correction.Rule{
		assist("add-block", 10, matchAddBlock, addBlock),
		assist("add-blocks-all", 9, matchAddBlocksAll, addBlocksAll),
		assist("remove-block", 8, matchRemoveBlock, removeBlock),
		assist("add-else", 1, matchAddElse, addElse),
		assist("add-finally", 1, matchAddFinally, addFinally),
		assist("unwrap", 3, matchUnwrap, unwrap),
		assist("remove-catch", 5, matchCatchClause, removeCatch),
		assist("catch-to-throws", 4, matchCatchToThrows, catchToThrows),

		assist("inverse-if", 1, matchInverseIf, inverseIf),
		assist("if-return-to-if-else", 1, matchIfReturnToIfElse, ifReturnToIfElse),
		assist("inverse-if-continue", 1, matchInverseIfContinue, inverseIfContinue),
		assist("inverse-if-to-continue", 1, matchInverseIfToContinue, inverseIfToContinue),
		assist("inverse-condition", 1, matchInverseCondition, inverseCondition),
		assist("inverse-conditional", 1, matchInverseConditional, inverseConditional),
		assist("push-negation-down", 1, matchPushNegationDown, pushNegationDown),
		assist("pull-negation-up", 1, matchPullNegationUp, pullNegationUp),
		assist("join-and-ifs", 1, matchNestedIfs, joinAndIfs),
		assist("split-and-condition", 1, matchConditionSplit(token.AndAnd), splitAndCondition),
		assist("join-or-ifs", 1, matchJoinOrIfs, joinOrIfs),
		assist("split-or-condition", 1, matchConditionSplit(token.OrOr), splitOrCondition),
		assist("exchange-inner-outer-if", 1, matchNestedIfs, exchangeInnerOuterIf),
		assist("exchange-operands", 1, matchExchangeOperands, exchangeOperands),
		assist("invert-equals", 1, matchInvertEquals, invertEquals),
		assist("inverse-boolean-variable", 1, matchInverseBooleanVariable, inverseBooleanVariable),
		assist("pick-out-string", 1, matchPickOutString, pickOutString),
		assist("remove-extra-parentheses", 1, matchRemoveExtraParentheses, removeExtraParentheses),
		assist("add-paranoidal-parentheses", 1, matchAddParanoidalParentheses, addParanoidalParentheses),
		assist("conditional-to-if-else", 1, matchConditionalToIfElse, conditionalToIfElse),
		assist("if-else-to-conditional", 1, matchIfElseToConditional, ifElseToConditional),
		assist("switch-to-if", 1, matchSwitchToIf, switchToIf),
		assist("join-if-sequence", 1, matchJoinIfSequence, joinIfSequence),

		assist("assign-to-local", 3, matchExpressionStatement, assignToLocal),
		assist("assign-to-field", 2, matchExpressionStatement, assignToField),
		assist("assign-param-to-field", 3, matchAssignParamToField, assignParamToField),
		assist("extract-local-all", 6, matchExtractLocal(true), extractLocal("Extract local variable (replace all occurrences)")),
		assist("extract-local", 5, matchExtractLocal(false), extractLocal("Extract local variable")),
		assist("extract-constant", 4, matchExtractConstant, extractConstant),
		assist("inline-local", 5, matchInlineLocal, inlineLocal),
		assist("convert-local-to-field", 2, matchConvertLocalToField, convertLocalToField),
		assist("rename-local", 1, matchRenameLocal, renameLocal),
		assist("split-variable", 1, matchSplitVariable, splitVariable),
		assist("join-variable", 1, matchJoinVariable, joinVariableDecl),
		assist("split-declaration", 1, matchSplitDeclaration, splitDeclaration),
		assist("make-final", 5, matchMakeFinal, makeFinal),
		assist("create-in-superclass", 6, matchCreateInSuperclass, createInSuperclass),
	}
}

func fixes() []*correction.Rule {
	return []*correction.Rule{
		quickFix("add-closing-quote", 5, matchProblem, addClosingQuote),
		quickFix("insert-semicolon", 5, matchProblem, insertSemicolon),

		quickFix("create-local", 8, matchCreateLocal, createLocal),
		quickFix("create-field", 7, matchCreateField, createField),
		quickFix("create-parameter", 6, matchCreateParameter, createParameter),
		quickFix("create-constant", 5, matchCreateConstant, createConstant),
		quickFix("rename-to-similar", 9, matchRenameToSimilar, renameToSimilar),
		quickFix("create-method", 5, matchCreateMethod, createMethod),
		quickFix("create-constructor", 5, matchCreateConstructor, createConstructor),
		quickFix("create-class", 4, matchCreateClass, createClass),

		quickFix("add-throws", 6, matchAddThrows, addThrows),
		quickFix("surround-try-catch", 5, matchSurroundTryCatch, surroundTryCatch),
		quickFix("add-catch-clause", 4, matchAddCatchClause, addCatchClause),
		quickFix("remove-catch", 5, matchUnreachableCatch, removeCatch),
		quickFix("remove-thrown-exception", 5, matchRemoveThrown, removeThrown),

		quickFix("add-cast", 7, matchAddCast, addCast),
		quickFix("change-variable-type", 6, matchChangeVariableType, changeVariableType),
		quickFix("change-return-type", 6, matchChangeReturnType, changeReturnType),
		quickFix("remove-return-value", 5, matchRemoveReturnValue, removeReturnValue),
		quickFix("add-return-statement", 6, matchAddReturnStatement, addReturnStatement),
		quickFix("change-to-void", 5, matchChangeToVoid, changeToVoid),
		quickFix("add-return-type", 6, matchAddReturnType, addReturnType),

		quickFix("change-visibility", 10, matchChangeVisibility, changeVisibility),
		quickFix("make-static", 5, matchMakeStatic, makeStatic),
		quickFix("remove-static-context", 4, matchRemoveStaticContext, removeStaticContext),
		quickFix("qualify-with-type", 5, matchQualifyWithType, qualifyWithType),
		quickFix("remove-final", 9, matchRemoveFinal, removeFinal),
		quickFix("remove-invalid-modifiers", 5, matchRemoveInvalidModifiers, removeInvalidModifiers),

		quickFix("initialize-variable", 6, matchInitializeVariable, initializeVariable),
		quickFix("remove-unused", 6, matchRemoveUnused, removeUnused),
		quickFix("remove-semicolon", 6, matchRemoveSemicolon, removeSemicolon),
		quickFix("remove-else", 6, matchRemoveElse, removeElse),
		quickFix("remove-unreachable", 6, matchRemoveUnreachable, removeUnreachable),
		quickFix("qualify-with-this", 6, matchQualifyWithThis, qualifyWithThis),
		quickFix("insert-break", 6, matchInsertBreak, insertBreak),
		quickFix("rename-local", 4, matchRenameDeclaration, renameLocal),
	}
}

// dispatch is the table from diagnostic codes to the quick-fixes that
// address them. Codes not listed get no fixes.
var dispatch = []struct {
	code diag.Code
	ids  []string
}{
	{diag.LexUnterminatedString, []string{"add-closing-quote"}},
	{diag.SynExpectSemicolon, []string{"insert-semicolon"}},
	{diag.SemUndefinedName, []string{"create-local", "create-field", "create-parameter", "create-constant", "rename-to-similar"}},
	{diag.SemUndefinedField, []string{"create-field", "rename-to-similar"}},
	{diag.SemUndefinedMethod, []string{"create-method", "rename-to-similar"}},
	{diag.SemUndefinedConstructor, []string{"create-constructor"}},
	{diag.SemUndefinedType, []string{"create-class", "rename-to-similar"}},
	{diag.SemParameterMismatch, []string{"create-method", "add-cast"}},
	{diag.SemTypeMismatch, []string{"add-cast", "change-variable-type", "change-return-type"}},
	{diag.SemUnhandledException, []string{"add-throws", "surround-try-catch", "add-catch-clause"}},
	{diag.SemUnreachableCatch, []string{"remove-catch"}},
	{diag.SemVoidMethodReturnsValue, []string{"change-return-type", "remove-return-value"}},
	{diag.SemShouldReturnValue, []string{"add-return-statement", "change-to-void"}},
	{diag.SemMissingReturnType, []string{"add-return-type"}},
	{diag.SemNotVisibleField, []string{"change-visibility"}},
	{diag.SemNotVisibleMethod, []string{"change-visibility"}},
	{diag.SemNotVisibleType, []string{"change-visibility"}},
	{diag.SemNonStaticFieldFromStatic, []string{"make-static", "remove-static-context"}},
	{diag.SemNonStaticMethodFromStatic, []string{"make-static", "remove-static-context"}},
	{diag.SemFinalAssignment, []string{"remove-final"}},
	{diag.SemIllegalModifier, []string{"remove-invalid-modifiers"}},
	{diag.SemUninitializedLocal, []string{"initialize-variable"}},
	{diag.SemDuplicateLocal, []string{"rename-local"}},
	{diag.SemStaticAccessViaInstance, []string{"qualify-with-type"}},
	{diag.SemUnreachableCode, []string{"remove-unreachable"}},
	{diag.SemMissingReturn, []string{"add-return-statement", "change-to-void"}},
	{diag.LntUnusedLocal, []string{"remove-unused"}},
	{diag.LntUnusedPrivateField, []string{"remove-unused"}},
	{diag.LntUnusedPrivateMethod, []string{"remove-unused"}},
	{diag.LntSuperfluousSemicolon, []string{"remove-semicolon"}},
	{diag.LntUnnecessaryElse, []string{"remove-else"}},
	{diag.LntAssignmentNoEffect, []string{"qualify-with-this"}},
	{diag.LntFallthroughCase, []string{"insert-break"}},
	{diag.LntUnusedThrows, []string{"remove-thrown-exception"}},
	{diag.LntLocalHidesField, []string{"rename-local"}},
}

// Build assembles a fresh catalogue with every built-in rule and the
// dispatch table.
func Build() (*correction.Catalogue, error) {
	c := correction.NewCatalogue()
	for _, r := range append(assists(), fixes()...) {
		if err := c.Register(r); err != nil {
			return nil, fmt.Errorf("rules: %w", err)
		}
	}
	for _, e := range dispatch {
		if err := c.Dispatch(e.code, e.ids...); err != nil {
			return nil, fmt.Errorf("rules: %w", err)
		}
	}
	return c, nil
}

var (
	defaultOnce sync.Once
	defaultCat  *correction.Catalogue
)

// Default returns the shared built-in catalogue. A broken table is a
// programming error and panics.
func Default() *correction.Catalogue {
	defaultOnce.Do(func() {
		c, err := Build()
		if err != nil {
			panic(err)
		}
		defaultCat = c
	})
	return defaultCat
}
