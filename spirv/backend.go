package spirv

import (
	"fmt"
	"math"

	"github.com/gogpu/glslcross/ir"
)

// Backend translates IR to SPIR-V.
type Backend struct {
	module  *ir.Module
	builder *ModuleBuilder
	options Options

	// Type cache (IR TypeHandle → SPIR-V ID)
	typeIDs map[ir.TypeHandle]uint32

	// Scalar and vector type dedup. SPIR-V requires non-aggregate
	// types to be declared exactly once.
	scalarIDs map[ir.ScalarType]uint32
	vectorIDs map[ir.VectorType]uint32

	// Pointer type dedup, keyed by storage class and pointee ID.
	pointerIDs map[pointerKey]uint32

	// Sampled image type per image type ID.
	sampledImageIDs map[uint32]uint32

	// Constant dedup, keyed by type ID and bit pattern.
	constantIDs map[constantKey]uint32

	// Global variable cache
	globalIDs map[ir.GlobalVariableHandle]uint32

	// Function cache, pre-allocated before body encoding
	functionIDs map[ir.FunctionHandle]uint32

	voidTypeID uint32

	// GLSL.std.450 import ID (for math functions)
	glslExtID uint32
}

type pointerKey struct {
	class StorageClass
	base  uint32
}

type constantKey struct {
	typeID uint32
	bits   uint64
}

// NewBackend creates a new SPIR-V backend.
func NewBackend(options Options) *Backend {
	return &Backend{
		options:         options,
		typeIDs:         make(map[ir.TypeHandle]uint32),
		scalarIDs:       make(map[ir.ScalarType]uint32),
		vectorIDs:       make(map[ir.VectorType]uint32),
		pointerIDs:      make(map[pointerKey]uint32),
		sampledImageIDs: make(map[uint32]uint32),
		constantIDs:     make(map[constantKey]uint32),
		globalIDs:       make(map[ir.GlobalVariableHandle]uint32),
		functionIDs:     make(map[ir.FunctionHandle]uint32),
	}
}

// Compile translates an IR module to a SPIR-V word stream.
func (b *Backend) Compile(module *ir.Module) ([]uint32, error) {
	b.module = module
	b.builder = NewModuleBuilder(b.options.Version)

	b.builder.AddCapability(CapabilityShader)
	b.glslExtID = b.builder.AddExtInstImport("GLSL.std.450")
	b.builder.SetMemoryModel(AddressingModelLogical, MemoryModelGLSL450)

	if err := b.emitTypes(); err != nil {
		return nil, err
	}
	if err := b.emitGlobals(); err != nil {
		return nil, err
	}
	if err := b.emitFunctions(); err != nil {
		return nil, err
	}

	// Names and decorations reference IDs created above; the builder
	// still places them in their proper sections.
	b.emitDebugNames()
	b.emitDecorations()
	if err := b.emitEntryPoint(); err != nil {
		return nil, err
	}

	return b.builder.Words(), nil
}

// emitDebugNames names types, globals, functions, and struct members.
// The cross-compiler reads these back to reconstruct source-level
// declarations, so they are always emitted.
func (b *Backend) emitDebugNames() {
	for handle, typ := range b.module.Types {
		if typ.Name == "" {
			continue
		}
		if id, ok := b.typeIDs[ir.TypeHandle(handle)]; ok {
			b.builder.AddName(id, typ.Name)
		}
	}

	for handle, typ := range b.module.Types {
		structType, ok := typ.Inner.(ir.StructType)
		if !ok {
			continue
		}
		structID, ok := b.typeIDs[ir.TypeHandle(handle)]
		if !ok {
			continue
		}
		for memberIndex, member := range structType.Members {
			if member.Name != "" {
				b.builder.AddMemberName(structID, uint32(memberIndex), member.Name)
			}
		}
	}

	for handle, global := range b.module.GlobalVariables {
		if global.Name == "" {
			continue
		}
		if id, ok := b.globalIDs[ir.GlobalVariableHandle(handle)]; ok {
			b.builder.AddName(id, global.Name)
		}
	}

	for handle := range b.module.Functions {
		fn := &b.module.Functions[handle]
		if fn.Name == "" {
			continue
		}
		if id, ok := b.functionIDs[ir.FunctionHandle(handle)]; ok {
			b.builder.AddName(id, fn.Name)
		}
	}
}

// emitDecorations decorates globals with bindings, locations, and
// built-ins, and struct types with block and offset decorations.
func (b *Backend) emitDecorations() {
	for handle, global := range b.module.GlobalVariables {
		id, ok := b.globalIDs[ir.GlobalVariableHandle(handle)]
		if !ok {
			continue
		}

		if global.Resource != nil {
			b.builder.AddDecorate(id, DecorationDescriptorSet, global.Resource.Set)
			b.builder.AddDecorate(id, DecorationBinding, global.Resource.Binding)
		}

		switch binding := global.IO.(type) {
		case ir.LocationBinding:
			b.builder.AddDecorate(id, DecorationLocation, binding.Location)
		case ir.BuiltinBinding:
			b.builder.AddDecorate(id, DecorationBuiltIn, uint32(builtinValue(binding.Builtin)))
		}
	}

	for handle, typ := range b.module.Types {
		structType, ok := typ.Inner.(ir.StructType)
		if !ok {
			continue
		}
		structID, ok := b.typeIDs[ir.TypeHandle(handle)]
		if !ok {
			continue
		}
		b.builder.AddDecorate(structID, DecorationBlock)
		for memberIndex, member := range structType.Members {
			b.builder.AddMemberDecorate(structID, uint32(memberIndex), DecorationOffset, member.Offset)
		}
	}
}

func builtinValue(builtin ir.BuiltinValue) BuiltIn {
	switch builtin {
	case ir.BuiltinPosition:
		return BuiltInPosition
	case ir.BuiltinPointSize:
		return BuiltInPointSize
	case ir.BuiltinFragCoord:
		return BuiltInFragCoord
	case ir.BuiltinFragDepth:
		return BuiltInFragDepth
	default:
		panic(fmt.Sprintf("unknown builtin: %v", builtin))
	}
}

// emitTypes emits all IR types to SPIR-V.
func (b *Backend) emitTypes() error {
	for handle := range b.module.Types {
		if _, err := b.emitType(ir.TypeHandle(handle)); err != nil {
			return err
		}
	}
	return nil
}

// emitType emits a single IR type and returns its SPIR-V ID.
// Uses caching to ensure type deduplication.
func (b *Backend) emitType(handle ir.TypeHandle) (uint32, error) {
	if id, ok := b.typeIDs[handle]; ok {
		return id, nil
	}

	typ := &b.module.Types[handle]
	var id uint32

	switch inner := typ.Inner.(type) {
	case ir.ScalarType:
		id = b.emitScalarType(inner)

	case ir.VectorType:
		id = b.emitVectorType(inner)

	case ir.MatrixType:
		columnTypeID := b.emitVectorType(ir.VectorType{Size: inner.Rows, Scalar: inner.Scalar})
		id = b.builder.AddTypeMatrix(columnTypeID, uint32(inner.Columns))

	case ir.StructType:
		memberIDs := make([]uint32, len(inner.Members))
		for i, member := range inner.Members {
			memberID, err := b.emitType(member.Type)
			if err != nil {
				return 0, err
			}
			memberIDs[i] = memberID
		}
		id = b.builder.AddTypeStruct(memberIDs...)

	case ir.PointerType:
		baseID, err := b.emitType(inner.Base)
		if err != nil {
			return 0, err
		}
		id = b.emitPointerType(addressSpaceToStorageClass(inner.Space), baseID)

	case ir.SamplerType:
		id = b.builder.AddTypeSampler()

	case ir.ImageType:
		sampledTypeID := b.emitScalarType(ir.ScalarType{Kind: ir.ScalarFloat, Width: 4})
		id = b.builder.AddTypeImage(sampledTypeID, imageDim(inner.Dim), inner.Arrayed)

	default:
		return 0, fmt.Errorf("unsupported type: %T", inner)
	}

	b.typeIDs[handle] = id
	return id, nil
}

func imageDim(dim ir.ImageDimension) uint32 {
	switch dim {
	case ir.Dim1D:
		return 0
	case ir.Dim2D:
		return 1
	case ir.Dim3D:
		return 2
	case ir.DimCube:
		return 3
	default:
		panic(fmt.Sprintf("unknown image dimension: %v", dim))
	}
}

func (b *Backend) emitScalarType(scalar ir.ScalarType) uint32 {
	if id, ok := b.scalarIDs[scalar]; ok {
		return id
	}

	var id uint32
	switch scalar.Kind {
	case ir.ScalarBool:
		id = b.builder.AddTypeBool()
	case ir.ScalarFloat:
		id = b.builder.AddTypeFloat(uint32(scalar.Width) * 8) // bytes to bits
	case ir.ScalarSint:
		id = b.builder.AddTypeInt(uint32(scalar.Width)*8, true)
	case ir.ScalarUint:
		id = b.builder.AddTypeInt(uint32(scalar.Width)*8, false)
	default:
		panic(fmt.Sprintf("unknown scalar kind: %v", scalar.Kind))
	}
	b.scalarIDs[scalar] = id
	return id
}

func (b *Backend) emitVectorType(vector ir.VectorType) uint32 {
	if id, ok := b.vectorIDs[vector]; ok {
		return id
	}
	scalarID := b.emitScalarType(vector.Scalar)
	id := b.builder.AddTypeVector(scalarID, uint32(vector.Size))
	b.vectorIDs[vector] = id
	return id
}

func (b *Backend) emitPointerType(class StorageClass, baseID uint32) uint32 {
	key := pointerKey{class: class, base: baseID}
	if id, ok := b.pointerIDs[key]; ok {
		return id
	}
	id := b.builder.AddTypePointer(class, baseID)
	b.pointerIDs[key] = id
	return id
}

func (b *Backend) emitVoidType() uint32 {
	if b.voidTypeID == 0 {
		b.voidTypeID = b.builder.AddTypeVoid()
	}
	return b.voidTypeID
}

// addressSpaceToStorageClass converts IR AddressSpace to SPIR-V StorageClass.
func addressSpaceToStorageClass(space ir.AddressSpace) StorageClass {
	switch space {
	case ir.SpaceFunction, ir.SpacePrivate:
		return StorageClassFunction
	case ir.SpaceUniform:
		return StorageClassUniform
	case ir.SpaceHandle:
		return StorageClassUniformConstant
	case ir.SpaceInput:
		return StorageClassInput
	case ir.SpaceOutput:
		return StorageClassOutput
	default:
		panic(fmt.Sprintf("unknown address space: %v", space))
	}
}

// emitConstant emits a deduplicated scalar constant.
func (b *Backend) emitConstant(typeID uint32, bits uint32) uint32 {
	key := constantKey{typeID: typeID, bits: uint64(bits)}
	if id, ok := b.constantIDs[key]; ok {
		return id
	}
	id := b.builder.AddConstant(typeID, bits)
	b.constantIDs[key] = id
	return id
}

// emitGlobals emits all global variables to SPIR-V.
func (b *Backend) emitGlobals() error {
	for handle, global := range b.module.GlobalVariables {
		varType, err := b.emitType(global.Type)
		if err != nil {
			return err
		}

		storageClass := addressSpaceToStorageClass(global.Space)
		ptrType := b.emitPointerType(storageClass, varType)
		varID := b.builder.AddVariable(ptrType, storageClass)

		b.globalIDs[ir.GlobalVariableHandle(handle)] = varID
	}
	return nil
}

// emitEntryPoint emits the stage entry point and its execution modes.
func (b *Backend) emitEntryPoint() error {
	entryPoint := b.module.EntryPoint
	funcID, ok := b.functionIDs[entryPoint.Function]
	if !ok {
		return fmt.Errorf("entry point function not found: %v", entryPoint.Function)
	}

	var execModel ExecutionModel
	switch entryPoint.Stage {
	case ir.StageVertex:
		execModel = ExecutionModelVertex
	case ir.StageFragment:
		execModel = ExecutionModelFragment
	default:
		return fmt.Errorf("unsupported shader stage: %v", entryPoint.Stage)
	}

	// The interface lists the Input and Output variables the stage
	// touches. SPIR-V 1.0 excludes uniforms and handles here.
	var interfaces []uint32
	for handle, global := range b.module.GlobalVariables {
		if global.Space != ir.SpaceInput && global.Space != ir.SpaceOutput {
			continue
		}
		if varID, ok := b.globalIDs[ir.GlobalVariableHandle(handle)]; ok {
			interfaces = append(interfaces, varID)
		}
	}

	b.builder.AddEntryPoint(execModel, funcID, entryPoint.Name, interfaces)

	if entryPoint.Stage == ir.StageFragment {
		b.builder.AddExecutionMode(funcID, ExecutionModeOriginUpperLeft)
	}
	return nil
}

// emitFunctions emits all functions. IDs are allocated up front so
// calls can reference functions defined later in the module.
func (b *Backend) emitFunctions() error {
	for handle := range b.module.Functions {
		b.functionIDs[ir.FunctionHandle(handle)] = b.builder.AllocID()
	}
	for handle := range b.module.Functions {
		fn := &b.module.Functions[handle]
		if err := b.emitFunction(ir.FunctionHandle(handle), fn); err != nil {
			return err
		}
	}
	return nil
}

// emitFunction emits a single function.
func (b *Backend) emitFunction(handle ir.FunctionHandle, fn *ir.Function) error {
	var returnTypeID uint32
	if fn.Result != nil {
		var err error
		returnTypeID, err = b.emitType(*fn.Result)
		if err != nil {
			return err
		}
	} else {
		returnTypeID = b.emitVoidType()
	}

	paramTypeIDs := make([]uint32, len(fn.Arguments))
	for i, arg := range fn.Arguments {
		var err error
		paramTypeIDs[i], err = b.emitType(arg.Type)
		if err != nil {
			return err
		}
	}

	funcTypeID := b.builder.AddTypeFunction(returnTypeID, paramTypeIDs...)
	b.builder.AddFunction(b.functionIDs[handle], funcTypeID, returnTypeID, FunctionControlNone)

	paramIDs := make([]uint32, len(fn.Arguments))
	for i, arg := range fn.Arguments {
		paramIDs[i] = b.builder.AddFunctionParameter(paramTypeIDs[i])
		if arg.Name != "" {
			b.builder.AddName(paramIDs[i], arg.Name)
		}
	}

	b.builder.AddLabel()

	emitter := &expressionEmitter{
		backend:  b,
		function: fn,
		exprIDs:  make(map[ir.ExpressionHandle]uint32),
		paramIDs: paramIDs,
	}

	// All local OpVariables must precede other instructions in the
	// entry block, so declaration and initialization are split.
	localVarIDs := make([]uint32, len(fn.LocalVars))
	for i, localVar := range fn.LocalVars {
		varType, err := b.emitType(localVar.Type)
		if err != nil {
			return err
		}
		ptrType := b.emitPointerType(StorageClassFunction, varType)
		localVarIDs[i] = b.builder.AddLocalVariable(ptrType)
		if localVar.Name != "" {
			b.builder.AddName(localVarIDs[i], localVar.Name)
		}
	}
	emitter.localVarIDs = localVarIDs

	for i, localVar := range fn.LocalVars {
		if localVar.Init == nil {
			continue
		}
		initID, err := emitter.emitExpression(*localVar.Init)
		if err != nil {
			return err
		}
		b.builder.AddStore(localVarIDs[i], initID)
	}

	for _, stmt := range fn.Body {
		if err := emitter.emitStatement(stmt); err != nil {
			return err
		}
	}

	b.builder.AddFunctionEnd()
	return nil
}

// expressionEmitter handles expression emission within a function.
type expressionEmitter struct {
	backend     *Backend
	function    *ir.Function
	exprIDs     map[ir.ExpressionHandle]uint32
	paramIDs    []uint32
	localVarIDs []uint32
}

// resultType returns the SPIR-V type ID of an expression's resolved
// type.
func (e *expressionEmitter) resultType(handle ir.ExpressionHandle) (uint32, error) {
	return e.backend.emitType(e.function.ExpressionTypes[handle])
}

// typeInner returns the IR inner type of an expression.
func (e *expressionEmitter) typeInner(handle ir.ExpressionHandle) ir.TypeInner {
	return e.backend.module.Types[e.function.ExpressionTypes[handle]].Inner
}

// emitStatement emits a statement.
func (e *expressionEmitter) emitStatement(stmt ir.Statement) error {
	switch kind := stmt.Kind.(type) {
	case ir.StmtEmit:
		for handle := kind.Range.Start; handle < kind.Range.End; handle++ {
			if _, err := e.emitExpression(handle); err != nil {
				return err
			}
		}
		return nil

	case ir.StmtStore:
		pointerID, err := e.emitExpression(kind.Pointer)
		if err != nil {
			return err
		}
		valueID, err := e.emitExpression(kind.Value)
		if err != nil {
			return err
		}
		e.backend.builder.AddStore(pointerID, valueID)
		return nil

	case ir.StmtReturn:
		if kind.Value != nil {
			valueID, err := e.emitExpression(*kind.Value)
			if err != nil {
				return err
			}
			e.backend.builder.AddReturnValue(valueID)
		} else {
			e.backend.builder.AddReturn()
		}
		return nil

	default:
		return fmt.Errorf("unsupported statement kind: %T", kind)
	}
}

// emitExpression emits an expression and returns its SPIR-V ID.
func (e *expressionEmitter) emitExpression(handle ir.ExpressionHandle) (uint32, error) {
	if id, ok := e.exprIDs[handle]; ok {
		return id, nil
	}

	expr := &e.function.Expressions[handle]
	var id uint32
	var err error

	switch kind := expr.Kind.(type) {
	case ir.Literal:
		id, err = e.emitLiteral(kind.Value)

	case ir.ExprCompose:
		id, err = e.emitCompose(kind, handle)

	case ir.ExprAccessIndex:
		id, err = e.emitAccessIndex(kind, handle)

	case ir.ExprSwizzle:
		id, err = e.emitSwizzle(kind, handle)

	case ir.ExprGlobalVariable:
		varID, ok := e.backend.globalIDs[kind.Variable]
		if !ok {
			return 0, fmt.Errorf("global variable not found: %v", kind.Variable)
		}
		id = varID

	case ir.ExprLocalVariable:
		if int(kind.Variable) >= len(e.localVarIDs) {
			return 0, fmt.Errorf("local variable index out of range: %d", kind.Variable)
		}
		id = e.localVarIDs[kind.Variable]

	case ir.ExprFunctionArgument:
		if int(kind.Index) >= len(e.paramIDs) {
			return 0, fmt.Errorf("function argument index out of range: %d", kind.Index)
		}
		id = e.paramIDs[kind.Index]

	case ir.ExprLoad:
		id, err = e.emitLoad(kind, handle)

	case ir.ExprUnary:
		id, err = e.emitUnary(kind, handle)

	case ir.ExprBinary:
		id, err = e.emitBinary(kind, handle)

	case ir.ExprImageSample:
		id, err = e.emitImageSample(kind, handle)

	case ir.ExprMath:
		id, err = e.emitMath(kind, handle)

	case ir.ExprCall:
		id, err = e.emitCall(kind, handle)

	default:
		return 0, fmt.Errorf("unsupported expression kind: %T", kind)
	}

	if err != nil {
		return 0, err
	}

	e.exprIDs[handle] = id
	return id, nil
}

// emitLiteral emits a literal value as a module-scope constant.
func (e *expressionEmitter) emitLiteral(value ir.LiteralValue) (uint32, error) {
	switch v := value.(type) {
	case ir.LiteralF32:
		typeID := e.backend.emitScalarType(ir.ScalarType{Kind: ir.ScalarFloat, Width: 4})
		return e.backend.emitConstant(typeID, math.Float32bits(float32(v))), nil

	case ir.LiteralI32:
		typeID := e.backend.emitScalarType(ir.ScalarType{Kind: ir.ScalarSint, Width: 4})
		return e.backend.emitConstant(typeID, uint32(int32(v))), nil

	case ir.LiteralU32:
		typeID := e.backend.emitScalarType(ir.ScalarType{Kind: ir.ScalarUint, Width: 4})
		return e.backend.emitConstant(typeID, uint32(v)), nil

	default:
		return 0, fmt.Errorf("unsupported literal type: %T", v)
	}
}

// emitCompose emits a composite construction.
func (e *expressionEmitter) emitCompose(compose ir.ExprCompose, handle ir.ExpressionHandle) (uint32, error) {
	typeID, err := e.backend.emitType(compose.Type)
	if err != nil {
		return 0, err
	}

	componentIDs := make([]uint32, len(compose.Components))
	for i, component := range compose.Components {
		componentIDs[i], err = e.emitExpression(component)
		if err != nil {
			return 0, err
		}
	}

	return e.backend.builder.AddCompositeConstruct(typeID, componentIDs...), nil
}

// emitAccessIndex emits a constant-index access. When the result is a
// pointer the access chains through memory; otherwise the component is
// extracted from a value.
func (e *expressionEmitter) emitAccessIndex(access ir.ExprAccessIndex, handle ir.ExpressionHandle) (uint32, error) {
	baseID, err := e.emitExpression(access.Base)
	if err != nil {
		return 0, err
	}
	resultTypeID, err := e.resultType(handle)
	if err != nil {
		return 0, err
	}

	if _, isPointer := e.typeInner(handle).(ir.PointerType); isPointer {
		u32Type := e.backend.emitScalarType(ir.ScalarType{Kind: ir.ScalarUint, Width: 4})
		indexID := e.backend.emitConstant(u32Type, access.Index)
		return e.backend.builder.AddAccessChain(resultTypeID, baseID, indexID), nil
	}
	return e.backend.builder.AddCompositeExtract(resultTypeID, baseID, access.Index), nil
}

// emitSwizzle emits a multi-component swizzle as a vector shuffle.
func (e *expressionEmitter) emitSwizzle(swizzle ir.ExprSwizzle, handle ir.ExpressionHandle) (uint32, error) {
	vectorID, err := e.emitExpression(swizzle.Vector)
	if err != nil {
		return 0, err
	}
	resultTypeID, err := e.resultType(handle)
	if err != nil {
		return 0, err
	}

	components := make([]uint32, swizzle.Size)
	for i := range components {
		components[i] = uint32(swizzle.Pattern[i])
	}
	return e.backend.builder.AddVectorShuffle(resultTypeID, vectorID, vectorID, components), nil
}

// emitLoad emits a load through a pointer.
func (e *expressionEmitter) emitLoad(load ir.ExprLoad, handle ir.ExpressionHandle) (uint32, error) {
	pointerID, err := e.emitExpression(load.Pointer)
	if err != nil {
		return 0, err
	}
	resultTypeID, err := e.resultType(handle)
	if err != nil {
		return 0, err
	}
	return e.backend.builder.AddLoad(resultTypeID, pointerID), nil
}

// emitUnary emits a unary operation.
func (e *expressionEmitter) emitUnary(unary ir.ExprUnary, handle ir.ExpressionHandle) (uint32, error) {
	operandID, err := e.emitExpression(unary.Expr)
	if err != nil {
		return 0, err
	}
	resultTypeID, err := e.resultType(handle)
	if err != nil {
		return 0, err
	}

	opcode := OpFNegate
	if scalarKindOf(e.typeInner(handle)) != ir.ScalarFloat {
		opcode = OpSNegate
	}
	return e.backend.builder.AddUnaryOp(opcode, resultTypeID, operandID), nil
}

func scalarKindOf(inner ir.TypeInner) ir.ScalarKind {
	switch t := inner.(type) {
	case ir.ScalarType:
		return t.Kind
	case ir.VectorType:
		return t.Scalar.Kind
	case ir.MatrixType:
		return t.Scalar.Kind
	default:
		return ir.ScalarFloat
	}
}

// emitBinary emits a binary operation, selecting the opcode from the
// operand shapes.
func (e *expressionEmitter) emitBinary(binary ir.ExprBinary, handle ir.ExpressionHandle) (uint32, error) {
	leftID, err := e.emitExpression(binary.Left)
	if err != nil {
		return 0, err
	}
	rightID, err := e.emitExpression(binary.Right)
	if err != nil {
		return 0, err
	}
	resultTypeID, err := e.resultType(handle)
	if err != nil {
		return 0, err
	}

	leftInner := e.typeInner(binary.Left)
	rightInner := e.typeInner(binary.Right)

	_, leftVector := leftInner.(ir.VectorType)
	_, rightVector := rightInner.(ir.VectorType)
	_, leftMatrix := leftInner.(ir.MatrixType)
	_, rightMatrix := rightInner.(ir.MatrixType)
	_, rightScalar := rightInner.(ir.ScalarType)

	if binary.Op == ir.BinaryMul {
		switch {
		case leftVector && rightScalar:
			return e.backend.builder.AddBinaryOp(OpVectorTimesScalar, resultTypeID, leftID, rightID), nil
		case leftMatrix && rightScalar:
			return e.backend.builder.AddBinaryOp(OpMatrixTimesScalar, resultTypeID, leftID, rightID), nil
		case leftMatrix && rightVector:
			return e.backend.builder.AddBinaryOp(OpMatrixTimesVector, resultTypeID, leftID, rightID), nil
		case leftVector && rightMatrix:
			return e.backend.builder.AddBinaryOp(OpVectorTimesMatrix, resultTypeID, leftID, rightID), nil
		case leftMatrix && rightMatrix:
			return e.backend.builder.AddBinaryOp(OpMatrixTimesMatrix, resultTypeID, leftID, rightID), nil
		}
	}

	kind := scalarKindOf(leftInner)
	var opcode OpCode
	switch binary.Op {
	case ir.BinaryAdd:
		opcode = OpFAdd
		if kind != ir.ScalarFloat {
			opcode = OpIAdd
		}
	case ir.BinarySub:
		opcode = OpFSub
		if kind != ir.ScalarFloat {
			opcode = OpISub
		}
	case ir.BinaryMul:
		opcode = OpFMul
		if kind != ir.ScalarFloat {
			opcode = OpIMul
		}
	case ir.BinaryDiv:
		switch kind {
		case ir.ScalarFloat:
			opcode = OpFDiv
		case ir.ScalarSint:
			opcode = OpSDiv
		default:
			opcode = OpUDiv
		}
	default:
		return 0, fmt.Errorf("unsupported binary operator: %v", binary.Op)
	}
	return e.backend.builder.AddBinaryOp(opcode, resultTypeID, leftID, rightID), nil
}

// emitImageSample combines a separate image and sampler and samples.
func (e *expressionEmitter) emitImageSample(sample ir.ExprImageSample, handle ir.ExpressionHandle) (uint32, error) {
	imageID, err := e.emitExpression(sample.Image)
	if err != nil {
		return 0, err
	}
	samplerID, err := e.emitExpression(sample.Sampler)
	if err != nil {
		return 0, err
	}
	coordinateID, err := e.emitExpression(sample.Coordinate)
	if err != nil {
		return 0, err
	}
	resultTypeID, err := e.resultType(handle)
	if err != nil {
		return 0, err
	}

	imageTypeID, err := e.backend.emitType(e.function.ExpressionTypes[sample.Image])
	if err != nil {
		return 0, err
	}
	samplerTypeID, err := e.backend.emitType(e.function.ExpressionTypes[sample.Sampler])
	if err != nil {
		return 0, err
	}
	sampledImageType, ok := e.backend.sampledImageIDs[imageTypeID]
	if !ok {
		sampledImageType = e.backend.builder.AddTypeSampledImage(imageTypeID)
		e.backend.sampledImageIDs[imageTypeID] = sampledImageType
	}

	// Handles live in UniformConstant storage; OpSampledImage wants
	// the loaded values, not the variables.
	imageValue := e.backend.builder.AddLoad(imageTypeID, imageID)
	samplerValue := e.backend.builder.AddLoad(samplerTypeID, samplerID)

	combined := e.backend.builder.AddSampledImage(sampledImageType, imageValue, samplerValue)
	return e.backend.builder.AddImageSampleImplicitLod(resultTypeID, combined, coordinateID), nil
}

// emitMath emits a built-in math function.
func (e *expressionEmitter) emitMath(expr ir.ExprMath, handle ir.ExpressionHandle) (uint32, error) {
	argIDs := make([]uint32, len(expr.Args))
	for i, arg := range expr.Args {
		var err error
		argIDs[i], err = e.emitExpression(arg)
		if err != nil {
			return 0, err
		}
	}
	resultTypeID, err := e.resultType(handle)
	if err != nil {
		return 0, err
	}

	// Dot is a core instruction; the rest live in GLSL.std.450.
	if expr.Fn == ir.MathDot {
		return e.backend.builder.AddBinaryOp(OpDot, resultTypeID, argIDs[0], argIDs[1]), nil
	}

	inst, err := extInstFor(expr.Fn)
	if err != nil {
		return 0, err
	}
	return e.backend.builder.AddExtInst(resultTypeID, e.backend.glslExtID, inst, argIDs...), nil
}

func extInstFor(fn ir.MathFunction) (GLSLStd450, error) {
	switch fn {
	case ir.MathAbs:
		return GLSLStd450FAbs, nil
	case ir.MathFloor:
		return GLSLStd450Floor, nil
	case ir.MathFract:
		return GLSLStd450Fract, nil
	case ir.MathSin:
		return GLSLStd450Sin, nil
	case ir.MathCos:
		return GLSLStd450Cos, nil
	case ir.MathPow:
		return GLSLStd450Pow, nil
	case ir.MathSqrt:
		return GLSLStd450Sqrt, nil
	case ir.MathMin:
		return GLSLStd450FMin, nil
	case ir.MathMax:
		return GLSLStd450FMax, nil
	case ir.MathClamp:
		return GLSLStd450FClamp, nil
	case ir.MathMix:
		return GLSLStd450FMix, nil
	case ir.MathLength:
		return GLSLStd450Length, nil
	case ir.MathNormalize:
		return GLSLStd450Normalize, nil
	case ir.MathReflect:
		return GLSLStd450Reflect, nil
	default:
		return 0, fmt.Errorf("unsupported math function: %v", fn)
	}
}

// emitCall emits a user function call.
func (e *expressionEmitter) emitCall(call ir.ExprCall, handle ir.ExpressionHandle) (uint32, error) {
	funcID, ok := e.backend.functionIDs[call.Function]
	if !ok {
		return 0, fmt.Errorf("called function not found: %v", call.Function)
	}
	argIDs := make([]uint32, len(call.Arguments))
	for i, arg := range call.Arguments {
		var err error
		argIDs[i], err = e.emitExpression(arg)
		if err != nil {
			return 0, err
		}
	}
	resultTypeID, err := e.resultType(handle)
	if err != nil {
		return 0, err
	}
	return e.backend.builder.AddFunctionCall(resultTypeID, funcID, argIDs...), nil
}
