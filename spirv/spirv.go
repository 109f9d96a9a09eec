// Package spirv provides SPIR-V encoding from IR.
//
// SPIR-V is the standard intermediate language for GPU shaders. The
// encoder targets SPIR-V 1.0 so the output stays consumable by any
// Vulkan 1.0 toolchain.
package spirv

// Version represents a SPIR-V version.
type Version struct {
	Major uint8
	Minor uint8
}

// Common SPIR-V versions
var (
	Version1_0 = Version{1, 0}
	Version1_3 = Version{1, 3}
)

// Options configures SPIR-V generation.
type Options struct {
	// Version is the SPIR-V version to target
	Version Version
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		Version: Version1_0,
	}
}

// SPIR-V magic number and constants
const (
	MagicNumber = 0x07230203
	GeneratorID = 0x00000000 // Unregistered generator
)

// OpCode represents a SPIR-V opcode.
type OpCode uint16

// Opcodes used by the encoder and the cross-compiler's decoder.
const (
	OpName                   OpCode = 5
	OpMemberName             OpCode = 6
	OpExtInstImport          OpCode = 11
	OpExtInst                OpCode = 12
	OpMemoryModel            OpCode = 14
	OpEntryPoint             OpCode = 15
	OpExecutionMode          OpCode = 16
	OpCapability             OpCode = 17
	OpTypeVoid               OpCode = 19
	OpTypeBool               OpCode = 20
	OpTypeInt                OpCode = 21
	OpTypeFloat              OpCode = 22
	OpTypeVector             OpCode = 23
	OpTypeMatrix             OpCode = 24
	OpTypeImage              OpCode = 25
	OpTypeSampler            OpCode = 26
	OpTypeSampledImage       OpCode = 27
	OpTypeStruct             OpCode = 30
	OpTypePointer            OpCode = 32
	OpTypeFunction           OpCode = 33
	OpConstant               OpCode = 43
	OpConstantComposite      OpCode = 44
	OpFunction               OpCode = 54
	OpFunctionParameter      OpCode = 55
	OpFunctionEnd            OpCode = 56
	OpFunctionCall           OpCode = 57
	OpVariable               OpCode = 59
	OpLoad                   OpCode = 61
	OpStore                  OpCode = 62
	OpAccessChain            OpCode = 65
	OpDecorate               OpCode = 71
	OpMemberDecorate         OpCode = 72
	OpVectorShuffle          OpCode = 79
	OpCompositeConstruct     OpCode = 80
	OpCompositeExtract       OpCode = 81
	OpSampledImage           OpCode = 86
	OpImageSampleImplicitLod OpCode = 87
	OpSNegate                OpCode = 126
	OpFNegate                OpCode = 127
	OpIAdd                   OpCode = 128
	OpFAdd                   OpCode = 129
	OpISub                   OpCode = 130
	OpFSub                   OpCode = 131
	OpIMul                   OpCode = 132
	OpFMul                   OpCode = 133
	OpUDiv                   OpCode = 134
	OpSDiv                   OpCode = 135
	OpFDiv                   OpCode = 136
	OpVectorTimesScalar      OpCode = 142
	OpMatrixTimesScalar      OpCode = 143
	OpVectorTimesMatrix      OpCode = 144
	OpMatrixTimesVector      OpCode = 145
	OpMatrixTimesMatrix      OpCode = 146
	OpDot                    OpCode = 148
	OpLabel                  OpCode = 248
	OpReturn                 OpCode = 253
	OpReturnValue            OpCode = 254
)

// Capability represents a SPIR-V capability.
type Capability uint32

// CapabilityShader is required for vertex and fragment stages.
const CapabilityShader Capability = 1

// AddressingModel represents a SPIR-V addressing model.
type AddressingModel uint32

// AddressingModelLogical is the only model shader stages use.
const AddressingModelLogical AddressingModel = 0

// MemoryModel represents a SPIR-V memory model.
type MemoryModel uint32

// MemoryModelGLSL450 is the memory model for GLSL-derived modules.
const MemoryModelGLSL450 MemoryModel = 1

// ExecutionModel represents a SPIR-V execution model.
type ExecutionModel uint32

// Execution models for the supported stages.
const (
	ExecutionModelVertex   ExecutionModel = 0
	ExecutionModelFragment ExecutionModel = 4
)

// ExecutionMode represents a SPIR-V execution mode.
type ExecutionMode uint32

// ExecutionModeOriginUpperLeft is mandatory for fragment entry points.
const ExecutionModeOriginUpperLeft ExecutionMode = 7

// FunctionControl represents SPIR-V function control flags.
type FunctionControl uint32

// FunctionControlNone declares no special function behavior.
const FunctionControlNone FunctionControl = 0

// StorageClass represents a SPIR-V storage class.
type StorageClass uint32

// Storage classes used by the encoder.
const (
	StorageClassUniformConstant StorageClass = 0
	StorageClassInput           StorageClass = 1
	StorageClassUniform         StorageClass = 2
	StorageClassOutput          StorageClass = 3
	StorageClassFunction        StorageClass = 7
)

// Decoration represents a SPIR-V decoration.
type Decoration uint32

// Decorations used by the encoder and the cross-compiler's decoder.
const (
	DecorationBlock         Decoration = 2
	DecorationBuiltIn       Decoration = 11
	DecorationLocation      Decoration = 30
	DecorationBinding       Decoration = 33
	DecorationDescriptorSet Decoration = 34
	DecorationOffset        Decoration = 35
)

// BuiltIn represents a SPIR-V built-in variable kind.
type BuiltIn uint32

// Built-ins reachable from the front end.
const (
	BuiltInPosition  BuiltIn = 0
	BuiltInPointSize BuiltIn = 1
	BuiltInFragCoord BuiltIn = 15
	BuiltInFragDepth BuiltIn = 22
)

// GLSLStd450 identifies an instruction in the GLSL.std.450 extended
// instruction set.
type GLSLStd450 uint32

// Extended instructions used by the encoder.
const (
	GLSLStd450FAbs      GLSLStd450 = 4
	GLSLStd450Floor     GLSLStd450 = 8
	GLSLStd450Fract     GLSLStd450 = 10
	GLSLStd450Sin       GLSLStd450 = 13
	GLSLStd450Cos       GLSLStd450 = 14
	GLSLStd450Pow       GLSLStd450 = 26
	GLSLStd450Sqrt      GLSLStd450 = 31
	GLSLStd450FMin      GLSLStd450 = 37
	GLSLStd450FMax      GLSLStd450 = 40
	GLSLStd450FClamp    GLSLStd450 = 43
	GLSLStd450FMix      GLSLStd450 = 46
	GLSLStd450Length    GLSLStd450 = 66
	GLSLStd450Normalize GLSLStd450 = 69
	GLSLStd450Reflect   GLSLStd450 = 71
)
