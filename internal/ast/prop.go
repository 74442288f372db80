package ast

// Prop identifies one structural property (child slot) of one node kind.
type Prop uint8

const (
	PropNone Prop = iota
	UnitPackage
	UnitImports
	UnitTypes
	PackageName
	ImportName
	TypeName
	TypeSuperclass
	TypeBody
	FieldType
	FieldFragments
	MethodReturnType
	MethodName
	MethodParams
	MethodThrows
	MethodBody
	ParamType
	ParamName
	FragmentName
	FragmentInit
	SimpleTypeName
	ArrayTypeElem
	BlockStatements
	LocalType
	LocalFragments
	ExprStmtExpr
	IfCondition
	IfThen
	IfElse
	WhileCondition
	WhileBody
	DoBody
	DoCondition
	ForInit
	ForCondition
	ForUpdates
	ForBody
	SwitchExpr
	SwitchStatements
	CaseExpr
	BreakLabel
	ContinueLabel
	ReturnExpr
	ThrowExpr
	TryBody
	TryCatches
	TryFinally
	CatchParam
	CatchBody
	QualifiedQualifier
	QualifiedNameName
	ParenExpr
	InfixLeft
	InfixRight
	PrefixOperand
	PostfixOperand
	AssignLHS
	AssignRHS
	CondCondition
	CondThen
	CondElse
	InstanceOfExpr
	InstanceOfType
	CastType
	CastExpr
	CallReceiver
	CallName
	CallArgs
	FieldAccessReceiver
	FieldAccessName
	ArrayAccessArray
	ArrayAccessIndex
	NewType
	NewArgs
	NewArrayType
	NewArrayDims
	NewArrayInit
	ArrayInitElements

	propCount
)

// PropInfo describes a structural property.
type PropInfo struct {
	Owner    Kind
	Name     string
	List     bool
	Optional bool // single-valued slot that may be empty
	// Lead is the text that introduces the slot when it goes from empty to
	// present (" else ", " throws ", " = ").
	Lead string
	// Sep separates list elements.
	Sep string
}

var propInfos = [...]PropInfo{
	PropNone:            {},
	UnitPackage:         {Owner: KindCompilationUnit, Name: "package", Optional: true},
	UnitImports:         {Owner: KindCompilationUnit, Name: "imports", List: true, Sep: "\n"},
	UnitTypes:           {Owner: KindCompilationUnit, Name: "types", List: true, Sep: "\n\n"},
	PackageName:         {Owner: KindPackageDecl, Name: "name"},
	ImportName:          {Owner: KindImportDecl, Name: "name"},
	TypeName:            {Owner: KindTypeDecl, Name: "name"},
	TypeSuperclass:      {Owner: KindTypeDecl, Name: "superclass", Optional: true, Lead: " extends "},
	TypeBody:            {Owner: KindTypeDecl, Name: "body", List: true, Sep: "\n"},
	FieldType:           {Owner: KindFieldDecl, Name: "type"},
	FieldFragments:      {Owner: KindFieldDecl, Name: "fragments", List: true, Sep: ", "},
	MethodReturnType:    {Owner: KindMethodDecl, Name: "returnType", Optional: true},
	MethodName:          {Owner: KindMethodDecl, Name: "name"},
	MethodParams:        {Owner: KindMethodDecl, Name: "params", List: true, Sep: ", "},
	MethodThrows:        {Owner: KindMethodDecl, Name: "throws", List: true, Lead: " throws ", Sep: ", "},
	MethodBody:          {Owner: KindMethodDecl, Name: "body", Optional: true},
	ParamType:           {Owner: KindParam, Name: "type"},
	ParamName:           {Owner: KindParam, Name: "name"},
	FragmentName:        {Owner: KindVarFragment, Name: "name"},
	FragmentInit:        {Owner: KindVarFragment, Name: "initializer", Optional: true, Lead: " = "},
	SimpleTypeName:      {Owner: KindSimpleType, Name: "name"},
	ArrayTypeElem:       {Owner: KindArrayType, Name: "elementType"},
	BlockStatements:     {Owner: KindBlock, Name: "statements", List: true, Sep: "\n"},
	LocalType:           {Owner: KindLocalVarDecl, Name: "type"},
	LocalFragments:      {Owner: KindLocalVarDecl, Name: "fragments", List: true, Sep: ", "},
	ExprStmtExpr:        {Owner: KindExprStmt, Name: "expression"},
	IfCondition:         {Owner: KindIf, Name: "condition"},
	IfThen:              {Owner: KindIf, Name: "then"},
	IfElse:              {Owner: KindIf, Name: "else", Optional: true, Lead: " else "},
	WhileCondition:      {Owner: KindWhile, Name: "condition"},
	WhileBody:           {Owner: KindWhile, Name: "body"},
	DoBody:              {Owner: KindDo, Name: "body"},
	DoCondition:         {Owner: KindDo, Name: "condition"},
	ForInit:             {Owner: KindFor, Name: "init", List: true, Sep: ", "},
	ForCondition:        {Owner: KindFor, Name: "condition", Optional: true},
	ForUpdates:          {Owner: KindFor, Name: "updates", List: true, Sep: ", "},
	ForBody:             {Owner: KindFor, Name: "body"},
	SwitchExpr:          {Owner: KindSwitch, Name: "expression"},
	SwitchStatements:    {Owner: KindSwitch, Name: "statements", List: true, Sep: "\n"},
	CaseExpr:            {Owner: KindSwitchCase, Name: "expression", Optional: true},
	BreakLabel:          {Owner: KindBreak, Name: "label", Optional: true, Lead: " "},
	ContinueLabel:       {Owner: KindContinue, Name: "label", Optional: true, Lead: " "},
	ReturnExpr:          {Owner: KindReturn, Name: "expression", Optional: true, Lead: " "},
	ThrowExpr:           {Owner: KindThrow, Name: "expression"},
	TryBody:             {Owner: KindTry, Name: "body"},
	TryCatches:          {Owner: KindTry, Name: "catches", List: true, Lead: " ", Sep: " "},
	TryFinally:          {Owner: KindTry, Name: "finally", Optional: true, Lead: " finally "},
	CatchParam:          {Owner: KindCatch, Name: "exception"},
	CatchBody:           {Owner: KindCatch, Name: "body"},
	QualifiedQualifier:  {Owner: KindQualifiedName, Name: "qualifier"},
	QualifiedNameName:   {Owner: KindQualifiedName, Name: "name"},
	ParenExpr:           {Owner: KindParen, Name: "expression"},
	InfixLeft:           {Owner: KindInfix, Name: "leftOperand"},
	InfixRight:          {Owner: KindInfix, Name: "rightOperand"},
	PrefixOperand:       {Owner: KindPrefix, Name: "operand"},
	PostfixOperand:      {Owner: KindPostfix, Name: "operand"},
	AssignLHS:           {Owner: KindAssign, Name: "leftHandSide"},
	AssignRHS:           {Owner: KindAssign, Name: "rightHandSide"},
	CondCondition:       {Owner: KindConditional, Name: "condition"},
	CondThen:            {Owner: KindConditional, Name: "thenExpression"},
	CondElse:            {Owner: KindConditional, Name: "elseExpression"},
	InstanceOfExpr:      {Owner: KindInstanceOf, Name: "leftOperand"},
	InstanceOfType:      {Owner: KindInstanceOf, Name: "rightOperand"},
	CastType:            {Owner: KindCast, Name: "type"},
	CastExpr:            {Owner: KindCast, Name: "expression"},
	CallReceiver:        {Owner: KindCall, Name: "expression", Optional: true},
	CallName:            {Owner: KindCall, Name: "name"},
	CallArgs:            {Owner: KindCall, Name: "arguments", List: true, Sep: ", "},
	FieldAccessReceiver: {Owner: KindFieldAccess, Name: "expression"},
	FieldAccessName:     {Owner: KindFieldAccess, Name: "name"},
	ArrayAccessArray:    {Owner: KindArrayAccess, Name: "array"},
	ArrayAccessIndex:    {Owner: KindArrayAccess, Name: "index"},
	NewType:             {Owner: KindNew, Name: "type"},
	NewArgs:             {Owner: KindNew, Name: "arguments", List: true, Sep: ", "},
	NewArrayType:        {Owner: KindNewArray, Name: "type"},
	NewArrayDims:        {Owner: KindNewArray, Name: "dimensions", List: true},
	NewArrayInit:        {Owner: KindNewArray, Name: "initializer", Optional: true, Lead: " "},
	ArrayInitElements:   {Owner: KindArrayInit, Name: "expressions", List: true, Sep: ", "},
}

// kindProps lists the properties of each kind in source order.
var kindProps = [kindCount][]Prop{
	KindCompilationUnit: {UnitPackage, UnitImports, UnitTypes},
	KindPackageDecl:     {PackageName},
	KindImportDecl:      {ImportName},
	KindTypeDecl:        {TypeName, TypeSuperclass, TypeBody},
	KindFieldDecl:       {FieldType, FieldFragments},
	KindMethodDecl:      {MethodReturnType, MethodName, MethodParams, MethodThrows, MethodBody},
	KindParam:           {ParamType, ParamName},
	KindVarFragment:     {FragmentName, FragmentInit},
	KindSimpleType:      {SimpleTypeName},
	KindArrayType:       {ArrayTypeElem},
	KindBlock:           {BlockStatements},
	KindLocalVarDecl:    {LocalType, LocalFragments},
	KindExprStmt:        {ExprStmtExpr},
	KindIf:              {IfCondition, IfThen, IfElse},
	KindWhile:           {WhileCondition, WhileBody},
	KindDo:              {DoBody, DoCondition},
	KindFor:             {ForInit, ForCondition, ForUpdates, ForBody},
	KindSwitch:          {SwitchExpr, SwitchStatements},
	KindSwitchCase:      {CaseExpr},
	KindBreak:           {BreakLabel},
	KindContinue:        {ContinueLabel},
	KindReturn:          {ReturnExpr},
	KindThrow:           {ThrowExpr},
	KindTry:             {TryBody, TryCatches, TryFinally},
	KindCatch:           {CatchParam, CatchBody},
	KindQualifiedName:   {QualifiedQualifier, QualifiedNameName},
	KindParen:           {ParenExpr},
	KindInfix:           {InfixLeft, InfixRight},
	KindPrefix:          {PrefixOperand},
	KindPostfix:         {PostfixOperand},
	KindAssign:          {AssignLHS, AssignRHS},
	KindConditional:     {CondCondition, CondThen, CondElse},
	KindInstanceOf:      {InstanceOfExpr, InstanceOfType},
	KindCast:            {CastType, CastExpr},
	KindCall:            {CallReceiver, CallName, CallArgs},
	KindFieldAccess:     {FieldAccessReceiver, FieldAccessName},
	KindArrayAccess:     {ArrayAccessArray, ArrayAccessIndex},
	KindNew:             {NewType, NewArgs},
	KindNewArray:        {NewArrayType, NewArrayDims, NewArrayInit},
	KindArrayInit:       {ArrayInitElements},
}

// Info returns the descriptor of p.
func (p Prop) Info() PropInfo {
	if p < propCount {
		return propInfos[p]
	}
	return PropInfo{}
}

func (p Prop) String() string {
	if p == PropNone || p >= propCount {
		return "<none>"
	}
	info := propInfos[p]
	return info.Owner.String() + "." + info.Name
}

// IsList reports whether p is list-valued.
func (p Prop) IsList() bool { return p.Info().List }

// Props returns the structural properties of k in source order.
func (k Kind) Props() []Prop {
	if k < kindCount {
		return kindProps[k]
	}
	return nil
}

// slotIndex returns the position of p among the properties of k, or -1.
func slotIndex(k Kind, p Prop) int {
	for i, q := range k.Props() {
		if q == p {
			return i
		}
	}
	return -1
}
