package ir

// Expression represents an expression in the IR.
// Expressions follow Single Static Assignment (SSA) form similar to SPIR-V.
type Expression struct {
	Kind ExpressionKind
}

// ExpressionKind represents the different kinds of expressions.
type ExpressionKind interface {
	expressionKind()
}

// Literal represents a literal constant value.
type Literal struct {
	Value LiteralValue
}

func (Literal) expressionKind() {}

// LiteralValue represents the value of a literal.
type LiteralValue interface {
	literalValue()
}

// LiteralF32 represents a 32-bit float literal.
type LiteralF32 float32

func (LiteralF32) literalValue() {}

// LiteralI32 represents a 32-bit signed integer literal.
type LiteralI32 int32

func (LiteralI32) literalValue() {}

// LiteralU32 represents a 32-bit unsigned integer literal.
type LiteralU32 uint32

func (LiteralU32) literalValue() {}

// ExprCompose constructs a composite value (vector or matrix).
type ExprCompose struct {
	Type       TypeHandle
	Components []ExpressionHandle
}

func (ExprCompose) expressionKind() {}

// ExprAccessIndex performs access with a compile-time constant index.
// Used for uniform block members and single vector components.
// Produces a pointer when Base is a pointer.
type ExprAccessIndex struct {
	Base  ExpressionHandle
	Index uint32
}

func (ExprAccessIndex) expressionKind() {}

// ExprSwizzle reorders or duplicates vector components.
// Only the first Size entries of Pattern are meaningful.
type ExprSwizzle struct {
	Size    VectorSize
	Vector  ExpressionHandle
	Pattern [4]SwizzleComponent
}

func (ExprSwizzle) expressionKind() {}

// SwizzleComponent represents a single component in a vector swizzle.
type SwizzleComponent uint8

const (
	SwizzleX SwizzleComponent = 0
	SwizzleY SwizzleComponent = 1
	SwizzleZ SwizzleComponent = 2
	SwizzleW SwizzleComponent = 3
)

// ExprGlobalVariable references a global variable.
// For handle address space, produces the variable's value directly.
// For other address spaces, produces a pointer to the variable.
type ExprGlobalVariable struct {
	Variable GlobalVariableHandle
}

func (ExprGlobalVariable) expressionKind() {}

// ExprLocalVariable references a local variable.
// Produces a pointer to the variable's value.
type ExprLocalVariable struct {
	Variable uint32 // Index into Function.LocalVars
}

func (ExprLocalVariable) expressionKind() {}

// ExprFunctionArgument references a function parameter by its index.
type ExprFunctionArgument struct {
	Index uint32
}

func (ExprFunctionArgument) expressionKind() {}

// ExprLoad loads a value indirectly through a pointer.
type ExprLoad struct {
	Pointer ExpressionHandle
}

func (ExprLoad) expressionKind() {}

// ExprUnary applies a unary operator.
type ExprUnary struct {
	Op   UnaryOp
	Expr ExpressionHandle
}

func (ExprUnary) expressionKind() {}

// UnaryOp represents unary operators.
type UnaryOp uint8

const (
	UnaryNegate UnaryOp = iota
)

// ExprBinary applies a binary operator. The SPIR-V encoder selects
// the concrete opcode (OpFMul, OpMatrixTimesVector, ...) from the
// resolved operand types.
type ExprBinary struct {
	Op    BinaryOp
	Left  ExpressionHandle
	Right ExpressionHandle
}

func (ExprBinary) expressionKind() {}

// BinaryOp represents binary operators.
type BinaryOp uint8

const (
	BinaryAdd BinaryOp = iota
	BinarySub
	BinaryMul
	BinaryDiv
)

// ExprImageSample samples a separate image through a separate sampler.
// Lowered from texture(sampler2D(image, sampler), coordinate).
type ExprImageSample struct {
	Image      ExpressionHandle
	Sampler    ExpressionHandle
	Coordinate ExpressionHandle
}

func (ExprImageSample) expressionKind() {}

// ExprMath calls a built-in math function (GLSL.std.450 or OpDot).
type ExprMath struct {
	Fn   MathFunction
	Args []ExpressionHandle
}

func (ExprMath) expressionKind() {}

// MathFunction represents built-in math functions.
type MathFunction uint8

const (
	MathAbs MathFunction = iota
	MathFloor
	MathFract
	MathSin
	MathCos
	MathPow
	MathSqrt
	MathMin
	MathMax
	MathClamp
	MathMix
	MathLength
	MathNormalize
	MathReflect
	MathDot
)

// ExprCall calls a user-defined function with value arguments.
type ExprCall struct {
	Function  FunctionHandle
	Arguments []ExpressionHandle
}

func (ExprCall) expressionKind() {}
