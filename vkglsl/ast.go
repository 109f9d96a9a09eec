package vkglsl

// Span tracks a source position for error reporting.
type Span struct {
	Line   int
	Column int
}

// Module is the AST for one shader stage.
type Module struct {
	// Version is the declared GLSL version (450 for Vulkan GLSL).
	Version int
	// Profile is the declared profile ("core" or "").
	Profile string

	Inputs    []*VarDecl
	Outputs   []*VarDecl
	Blocks    []*BlockDecl
	Textures  []*VarDecl
	Samplers  []*VarDecl
	Functions []*FunctionDecl
}

// Function returns the function declaration with the given name, or nil.
func (m *Module) Function(name string) *FunctionDecl {
	for _, fn := range m.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// LayoutQualifier holds the layout(...) values attached to a declaration.
// Unset fields are nil.
type LayoutQualifier struct {
	Location *uint32
	Set      *uint32
	Binding  *uint32
}

// TypeKind identifies a parsed type.
type TypeKind uint8

const (
	TypeFloat TypeKind = iota
	TypeInt
	TypeUint
	TypeBool
	TypeVec2
	TypeVec3
	TypeVec4
	TypeMat3
	TypeMat4
	TypeTexture2D
	TypeTextureCube
	TypeSampler
)

// String returns the GLSL spelling of the type.
func (k TypeKind) String() string {
	switch k {
	case TypeFloat:
		return "float"
	case TypeInt:
		return "int"
	case TypeUint:
		return "uint"
	case TypeBool:
		return "bool"
	case TypeVec2:
		return "vec2"
	case TypeVec3:
		return "vec3"
	case TypeVec4:
		return "vec4"
	case TypeMat3:
		return "mat3"
	case TypeMat4:
		return "mat4"
	case TypeTexture2D:
		return "texture2D"
	case TypeTextureCube:
		return "textureCube"
	case TypeSampler:
		return "sampler"
	default:
		return "unknown"
	}
}

// VarDecl is a module-scope variable declaration: a stage input or
// output, or a separate texture or sampler resource.
type VarDecl struct {
	Name   string
	Type   TypeKind
	Layout LayoutQualifier
	Span   Span
}

// BlockDecl is a uniform block declaration with an instance name:
//
//	layout(set = 0, binding = 0) uniform Frame { ... } frameData;
type BlockDecl struct {
	TypeName string
	Instance string
	Members  []BlockMember
	Layout   LayoutQualifier
	Span     Span
}

// BlockMember is one member of a uniform block.
type BlockMember struct {
	Name string
	Type TypeKind
	Span Span
}

// FunctionDecl is a function definition.
type FunctionDecl struct {
	Name       string
	ReturnType *TypeKind // nil for void
	Params     []Param
	Body       []Stmt
	Span       Span
}

// Param is a value parameter of a function.
type Param struct {
	Name string
	Type TypeKind
}

// Stmt is a statement node.
type Stmt interface {
	stmtNode()
}

// DeclStmt declares a local variable, optionally with an initializer.
type DeclStmt struct {
	Name string
	Type TypeKind
	Init Expr // may be nil
	Span Span
}

func (*DeclStmt) stmtNode() {}

// AssignStmt assigns RHS to an lvalue expression.
type AssignStmt struct {
	LHS  Expr
	RHS  Expr
	Span Span
}

func (*AssignStmt) stmtNode() {}

// ReturnStmt returns from the function.
type ReturnStmt struct {
	Value Expr // may be nil
	Span  Span
}

func (*ReturnStmt) stmtNode() {}

// ExprStmt evaluates an expression for its side effects.
type ExprStmt struct {
	Expr Expr
	Span Span
}

func (*ExprStmt) stmtNode() {}

// Expr is an expression node.
type Expr interface {
	exprNode()
	Pos() Span
}

// Ident references a named variable.
type Ident struct {
	Name string
	Span Span
}

func (*Ident) exprNode()   {}
func (e *Ident) Pos() Span { return e.Span }

// FloatLit is a float literal.
type FloatLit struct {
	Value float32
	Span  Span
}

func (*FloatLit) exprNode()   {}
func (e *FloatLit) Pos() Span { return e.Span }

// IntLit is an integer literal.
type IntLit struct {
	Value    int64
	Unsigned bool
	Span     Span
}

func (*IntLit) exprNode()   {}
func (e *IntLit) Pos() Span { return e.Span }

// Member accesses a struct field or vector swizzle.
type Member struct {
	Base Expr
	Name string
	Span Span
}

func (*Member) exprNode()   {}
func (e *Member) Pos() Span { return e.Span }

// Index accesses an element by computed index.
type Index struct {
	Base  Expr
	Index Expr
	Span  Span
}

func (*Index) exprNode()   {}
func (e *Index) Pos() Span { return e.Span }

// Call is a function or constructor call.
type Call struct {
	Callee string
	Args   []Expr
	Span   Span
}

func (*Call) exprNode()   {}
func (e *Call) Pos() Span { return e.Span }

// Unary applies a prefix operator.
type Unary struct {
	Op   TokenKind // TokenMinus
	Expr Expr
	Span Span
}

func (*Unary) exprNode()   {}
func (e *Unary) Pos() Span { return e.Span }

// Binary applies an infix operator.
type Binary struct {
	Op    TokenKind // TokenPlus, TokenMinus, TokenStar, TokenSlash
	Left  Expr
	Right Expr
	Span  Span
}

func (*Binary) exprNode()   {}
func (e *Binary) Pos() Span { return e.Span }
