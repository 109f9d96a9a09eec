package ir

// Statement represents a statement in the IR.
// Bodies in this subset are straight-line: a sequence of Emit, Store,
// and Return statements. Control flow never branches.
type Statement struct {
	Kind StatementKind
}

// StatementKind represents the different kinds of statements.
type StatementKind interface {
	statementKind()
}

// Range represents a range of expression handles for Emit statements.
type Range struct {
	Start ExpressionHandle
	End   ExpressionHandle // Exclusive
}

// StmtEmit emits a range of expressions, making them visible to all
// statements that follow.
type StmtEmit struct {
	Range Range
}

func (StmtEmit) statementKind() {}

// StmtStore writes a value through a pointer expression.
type StmtStore struct {
	Pointer ExpressionHandle
	Value   ExpressionHandle
}

func (StmtStore) statementKind() {}

// StmtReturn returns from the function, possibly with a value.
type StmtReturn struct {
	Value *ExpressionHandle
}

func (StmtReturn) statementKind() {}
