package ir

// Module represents one shader stage in IR form.
type Module struct {
	// Types holds all type definitions
	Types []Type

	// Constants holds module-scope constants
	Constants []Constant

	// GlobalVariables holds module-scope variables
	GlobalVariables []GlobalVariable

	// Functions holds all function definitions
	Functions []Function

	// EntryPoint is the stage entry point
	EntryPoint EntryPoint
}

// EntryPoint represents a shader entry point.
type EntryPoint struct {
	Name     string
	Stage    ShaderStage
	Function FunctionHandle
}

// ShaderStage represents a shader stage.
type ShaderStage uint8

const (
	StageVertex ShaderStage = iota
	StageFragment
)

// String returns the stage name.
func (s ShaderStage) String() string {
	if s == StageVertex {
		return "vertex"
	}
	return "fragment"
}

// Handle types for referencing IR objects
type (
	TypeHandle           uint32
	FunctionHandle       uint32
	GlobalVariableHandle uint32
	ConstantHandle       uint32
	ExpressionHandle     uint32
)

// Type represents a type in the IR.
type Type struct {
	Name  string
	Inner TypeInner
}

// TypeInner represents the inner type kind.
type TypeInner interface {
	typeInner()
}

// ScalarType represents scalar types.
type ScalarType struct {
	Kind  ScalarKind
	Width uint8 // in bytes
}

func (ScalarType) typeInner() {}

// ScalarKind represents scalar type kinds.
type ScalarKind uint8

const (
	ScalarSint  ScalarKind = iota // Signed integer
	ScalarUint                    // Unsigned integer
	ScalarFloat                   // Floating point
	ScalarBool                    // Boolean
)

// VectorType represents vector types.
type VectorType struct {
	Size   VectorSize
	Scalar ScalarType
}

func (VectorType) typeInner() {}

// VectorSize represents vector sizes.
type VectorSize uint8

const (
	Vec2 VectorSize = 2
	Vec3 VectorSize = 3
	Vec4 VectorSize = 4
)

// MatrixType represents matrix types.
// Columns counts column vectors; Rows is the size of each column.
type MatrixType struct {
	Columns VectorSize
	Rows    VectorSize
	Scalar  ScalarType
}

func (MatrixType) typeInner() {}

// StructType represents struct types, including uniform block layouts.
type StructType struct {
	Members []StructMember
	Span    uint32 // Size in bytes under std140 rules
}

func (StructType) typeInner() {}

// StructMember represents a struct member.
type StructMember struct {
	Name   string
	Type   TypeHandle
	Offset uint32
}

// PointerType represents pointer types.
type PointerType struct {
	Base  TypeHandle
	Space AddressSpace
}

func (PointerType) typeInner() {}

// AddressSpace represents memory address spaces.
type AddressSpace uint8

const (
	SpaceFunction AddressSpace = iota
	SpacePrivate
	SpaceUniform
	SpaceHandle
	SpaceInput
	SpaceOutput
)

// SamplerType represents separate sampler objects.
type SamplerType struct {
	Comparison bool
}

func (SamplerType) typeInner() {}

// ImageType represents separate image/texture objects.
type ImageType struct {
	Dim     ImageDimension
	Arrayed bool
}

func (ImageType) typeInner() {}

// ImageDimension represents image dimensions.
type ImageDimension uint8

const (
	Dim1D ImageDimension = iota
	Dim2D
	Dim3D
	DimCube
)

// Constant represents a constant value.
type Constant struct {
	Name  string
	Type  TypeHandle
	Value ConstantValue
}

// ConstantValue represents constant values.
type ConstantValue interface {
	constantValue()
}

// ScalarValue represents a scalar constant.
type ScalarValue struct {
	Bits uint64 // Bit representation
	Kind ScalarKind
}

func (ScalarValue) constantValue() {}

// CompositeValue represents a composite constant.
type CompositeValue struct {
	Components []ConstantHandle
}

func (CompositeValue) constantValue() {}

// GlobalVariable represents a module-scope variable.
//
// Uniform blocks carry Space SpaceUniform plus a Resource binding.
// Separate textures and samplers carry SpaceHandle plus a Resource
// binding. Stage IO carries SpaceInput or SpaceOutput plus an IO
// binding (location or builtin).
type GlobalVariable struct {
	Name     string
	Space    AddressSpace
	Resource *ResourceBinding
	IO       Binding
	Type     TypeHandle
}

// ResourceBinding represents a descriptor-set resource binding.
type ResourceBinding struct {
	Set     uint32
	Binding uint32
}

// Binding represents a stage IO binding.
type Binding interface {
	binding()
}

// LocationBinding represents a location-bound input or output.
type LocationBinding struct {
	Location uint32
}

func (LocationBinding) binding() {}

// BuiltinBinding represents a built-in binding such as gl_Position.
type BuiltinBinding struct {
	Builtin BuiltinValue
}

func (BuiltinBinding) binding() {}

// BuiltinValue represents built-in values.
type BuiltinValue uint8

const (
	BuiltinPosition BuiltinValue = iota
	BuiltinPointSize
	BuiltinFragCoord
	BuiltinFragDepth
)

// Function represents a function definition.
//
// ExpressionTypes is parallel to Expressions and holds the resolved
// type of each expression, registered in the module type arena by the
// front end's lowering pass.
type Function struct {
	Name            string
	Arguments       []FunctionArgument
	Result          *TypeHandle
	LocalVars       []LocalVariable
	Expressions     []Expression
	ExpressionTypes []TypeHandle
	Body            []Statement
}

// FunctionArgument represents a function argument, passed by value.
type FunctionArgument struct {
	Name string
	Type TypeHandle
}

// LocalVariable represents a function-local variable.
type LocalVariable struct {
	Name string
	Type TypeHandle
	Init *ExpressionHandle
}
