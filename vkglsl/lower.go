package vkglsl

import (
	"fmt"

	"github.com/gogpu/glslcross/ir"
)

// Lower converts a parsed stage module into IR.
//
// The pass resolves every name, infers every expression type, and lays
// out uniform blocks under std140 rules. The resulting module carries
// one entry point for the stage.
func Lower(module *Module, stage ir.ShaderStage) (*ir.Module, error) {
	l := &lowerer{
		src:       module,
		stage:     stage,
		module:    &ir.Module{},
		types:     make(map[string]ir.TypeHandle),
		globals:   make(map[string]globalInfo),
		blocks:    make(map[string]*blockInfo),
		functions: make(map[string]*functionInfo),
	}

	if err := l.lowerGlobals(); err != nil {
		return nil, err
	}
	if err := l.registerFunctions(); err != nil {
		return nil, err
	}
	for i, fn := range module.Functions {
		if err := l.lowerFunctionBody(ir.FunctionHandle(i), fn); err != nil {
			return nil, err
		}
	}

	main := module.Function("main")
	if main == nil {
		return nil, &LowerError{Message: fmt.Sprintf("%s stage does not define main", stage)}
	}
	l.module.EntryPoint = ir.EntryPoint{
		Name:     "main",
		Stage:    stage,
		Function: l.functions["main"].handle,
	}
	return l.module, nil
}

type globalInfo struct {
	handle ir.GlobalVariableHandle
	typ    ir.TypeHandle
}

type blockInfo struct {
	global      ir.GlobalVariableHandle
	structType  ir.TypeHandle
	members     []BlockMember
	memberTypes []ir.TypeHandle
}

type functionInfo struct {
	handle ir.FunctionHandle
	result *ir.TypeHandle
	args   []ir.TypeHandle
}

type lowerer struct {
	src    *Module
	stage  ir.ShaderStage
	module *ir.Module

	types     map[string]ir.TypeHandle
	globals   map[string]globalInfo
	blocks    map[string]*blockInfo
	functions map[string]*functionInfo
}

// Type arena

func (l *lowerer) registerType(key string, t ir.Type) ir.TypeHandle {
	if handle, ok := l.types[key]; ok {
		return handle
	}
	handle := ir.TypeHandle(len(l.module.Types))
	l.module.Types = append(l.module.Types, t)
	l.types[key] = handle
	return handle
}

func (l *lowerer) floatType() ir.TypeHandle {
	return l.registerType("f32", ir.Type{Inner: ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}})
}

func (l *lowerer) intType() ir.TypeHandle {
	return l.registerType("i32", ir.Type{Inner: ir.ScalarType{Kind: ir.ScalarSint, Width: 4}})
}

func (l *lowerer) uintType() ir.TypeHandle {
	return l.registerType("u32", ir.Type{Inner: ir.ScalarType{Kind: ir.ScalarUint, Width: 4}})
}

func (l *lowerer) boolType() ir.TypeHandle {
	return l.registerType("bool", ir.Type{Inner: ir.ScalarType{Kind: ir.ScalarBool, Width: 1}})
}

func (l *lowerer) vectorType(size ir.VectorSize) ir.TypeHandle {
	key := fmt.Sprintf("vec%d", size)
	return l.registerType(key, ir.Type{Inner: ir.VectorType{
		Size:   size,
		Scalar: ir.ScalarType{Kind: ir.ScalarFloat, Width: 4},
	}})
}

func (l *lowerer) matrixType(size ir.VectorSize) ir.TypeHandle {
	key := fmt.Sprintf("mat%d", size)
	return l.registerType(key, ir.Type{Inner: ir.MatrixType{
		Columns: size,
		Rows:    size,
		Scalar:  ir.ScalarType{Kind: ir.ScalarFloat, Width: 4},
	}})
}

func (l *lowerer) imageType(dim ir.ImageDimension) ir.TypeHandle {
	key := fmt.Sprintf("image%d", dim)
	return l.registerType(key, ir.Type{Inner: ir.ImageType{Dim: dim}})
}

func (l *lowerer) samplerType() ir.TypeHandle {
	return l.registerType("sampler", ir.Type{Inner: ir.SamplerType{}})
}

func (l *lowerer) pointerType(base ir.TypeHandle, space ir.AddressSpace) ir.TypeHandle {
	key := fmt.Sprintf("ptr%d:%d", space, base)
	return l.registerType(key, ir.Type{Inner: ir.PointerType{Base: base, Space: space}})
}

func (l *lowerer) valueType(kind TypeKind, span Span) (ir.TypeHandle, error) {
	switch kind {
	case TypeFloat:
		return l.floatType(), nil
	case TypeInt:
		return l.intType(), nil
	case TypeUint:
		return l.uintType(), nil
	case TypeBool:
		return l.boolType(), nil
	case TypeVec2:
		return l.vectorType(ir.Vec2), nil
	case TypeVec3:
		return l.vectorType(ir.Vec3), nil
	case TypeVec4:
		return l.vectorType(ir.Vec4), nil
	case TypeMat3:
		return l.matrixType(ir.Vec3), nil
	case TypeMat4:
		return l.matrixType(ir.Vec4), nil
	default:
		return 0, lowerErrorAt(span, "type %s is not usable here", kind)
	}
}

// std140Layout returns the alignment and size of a block member type.
func std140Layout(kind TypeKind) (align, size uint32) {
	switch kind {
	case TypeFloat, TypeInt, TypeUint, TypeBool:
		return 4, 4
	case TypeVec2:
		return 8, 8
	case TypeVec3:
		return 16, 12
	case TypeVec4:
		return 16, 16
	case TypeMat3:
		return 16, 48
	case TypeMat4:
		return 16, 64
	default:
		return 16, 16
	}
}

func roundUp(value, multiple uint32) uint32 {
	return (value + multiple - 1) / multiple * multiple
}

// Globals

func (l *lowerer) lowerGlobals() error {
	for _, in := range l.src.Inputs {
		if err := l.lowerIOVar(in, ir.SpaceInput); err != nil {
			return err
		}
	}
	for _, out := range l.src.Outputs {
		if err := l.lowerIOVar(out, ir.SpaceOutput); err != nil {
			return err
		}
	}
	for _, block := range l.src.Blocks {
		if err := l.lowerBlock(block); err != nil {
			return err
		}
	}
	for _, tex := range l.src.Textures {
		dim := ir.Dim2D
		if tex.Type == TypeTextureCube {
			dim = ir.DimCube
		}
		l.addResourceGlobal(tex, l.imageType(dim))
	}
	for _, smp := range l.src.Samplers {
		l.addResourceGlobal(smp, l.samplerType())
	}
	return nil
}

func (l *lowerer) lowerIOVar(decl *VarDecl, space ir.AddressSpace) error {
	typ, err := l.valueType(decl.Type, decl.Span)
	if err != nil {
		return err
	}
	if _, exists := l.globals[decl.Name]; exists {
		return lowerErrorAt(decl.Span, "redeclaration of %q", decl.Name)
	}
	handle := ir.GlobalVariableHandle(len(l.module.GlobalVariables))
	l.module.GlobalVariables = append(l.module.GlobalVariables, ir.GlobalVariable{
		Name:  decl.Name,
		Space: space,
		IO:    ir.LocationBinding{Location: *decl.Layout.Location},
		Type:  typ,
	})
	l.globals[decl.Name] = globalInfo{handle: handle, typ: typ}
	return nil
}

func (l *lowerer) lowerBlock(block *BlockDecl) error {
	var members []ir.StructMember
	var memberTypes []ir.TypeHandle
	var cursor uint32
	for _, member := range block.Members {
		typ, err := l.valueType(member.Type, member.Span)
		if err != nil {
			return err
		}
		align, size := std140Layout(member.Type)
		offset := roundUp(cursor, align)
		cursor = offset + size
		members = append(members, ir.StructMember{
			Name:   member.Name,
			Type:   typ,
			Offset: offset,
		})
		memberTypes = append(memberTypes, typ)
	}

	structType := ir.TypeHandle(len(l.module.Types))
	l.module.Types = append(l.module.Types, ir.Type{
		Name: block.TypeName,
		Inner: ir.StructType{
			Members: members,
			Span:    roundUp(cursor, 16),
		},
	})

	resource := &ir.ResourceBinding{}
	if block.Layout.Set != nil {
		resource.Set = *block.Layout.Set
	}
	if block.Layout.Binding != nil {
		resource.Binding = *block.Layout.Binding
	}

	if _, exists := l.globals[block.Instance]; exists {
		return lowerErrorAt(block.Span, "redeclaration of %q", block.Instance)
	}
	handle := ir.GlobalVariableHandle(len(l.module.GlobalVariables))
	l.module.GlobalVariables = append(l.module.GlobalVariables, ir.GlobalVariable{
		Name:     block.Instance,
		Space:    ir.SpaceUniform,
		Resource: resource,
		Type:     structType,
	})
	l.globals[block.Instance] = globalInfo{handle: handle, typ: structType}
	l.blocks[block.Instance] = &blockInfo{
		global:      handle,
		structType:  structType,
		members:     block.Members,
		memberTypes: memberTypes,
	}
	return nil
}

func (l *lowerer) addResourceGlobal(decl *VarDecl, typ ir.TypeHandle) {
	resource := &ir.ResourceBinding{Binding: *decl.Layout.Binding}
	if decl.Layout.Set != nil {
		resource.Set = *decl.Layout.Set
	}
	handle := ir.GlobalVariableHandle(len(l.module.GlobalVariables))
	l.module.GlobalVariables = append(l.module.GlobalVariables, ir.GlobalVariable{
		Name:     decl.Name,
		Space:    ir.SpaceHandle,
		Resource: resource,
		Type:     typ,
	})
	l.globals[decl.Name] = globalInfo{handle: handle, typ: typ}
}

// builtinVariable returns the global for a gl_* builtin, creating it on
// first use. Only the builtins this subset can reach are known.
func (l *lowerer) builtinVariable(name string, span Span) (globalInfo, error) {
	if info, ok := l.globals[name]; ok {
		return info, nil
	}

	var builtin ir.BuiltinValue
	var space ir.AddressSpace
	var typ ir.TypeHandle
	switch {
	case name == "gl_Position" && l.stage == ir.StageVertex:
		builtin, space, typ = ir.BuiltinPosition, ir.SpaceOutput, l.vectorType(ir.Vec4)
	case name == "gl_PointSize" && l.stage == ir.StageVertex:
		builtin, space, typ = ir.BuiltinPointSize, ir.SpaceOutput, l.floatType()
	case name == "gl_FragCoord" && l.stage == ir.StageFragment:
		builtin, space, typ = ir.BuiltinFragCoord, ir.SpaceInput, l.vectorType(ir.Vec4)
	case name == "gl_FragDepth" && l.stage == ir.StageFragment:
		builtin, space, typ = ir.BuiltinFragDepth, ir.SpaceOutput, l.floatType()
	default:
		return globalInfo{}, lowerErrorAt(span, "unknown identifier %q", name)
	}

	handle := ir.GlobalVariableHandle(len(l.module.GlobalVariables))
	l.module.GlobalVariables = append(l.module.GlobalVariables, ir.GlobalVariable{
		Name:  name,
		Space: space,
		IO:    ir.BuiltinBinding{Builtin: builtin},
		Type:  typ,
	})
	info := globalInfo{handle: handle, typ: typ}
	l.globals[name] = info
	return info, nil
}

// Functions

func (l *lowerer) registerFunctions() error {
	for i, decl := range l.src.Functions {
		if _, exists := l.functions[decl.Name]; exists {
			return lowerErrorAt(decl.Span, "redefinition of function %q", decl.Name)
		}
		info := &functionInfo{handle: ir.FunctionHandle(i)}
		fn := ir.Function{Name: decl.Name}
		for _, param := range decl.Params {
			typ, err := l.valueType(param.Type, decl.Span)
			if err != nil {
				return err
			}
			info.args = append(info.args, typ)
			fn.Arguments = append(fn.Arguments, ir.FunctionArgument{
				Name: param.Name,
				Type: typ,
			})
		}
		if decl.ReturnType != nil {
			typ, err := l.valueType(*decl.ReturnType, decl.Span)
			if err != nil {
				return err
			}
			info.result = &typ
			fn.Result = &typ
		}
		l.module.Functions = append(l.module.Functions, fn)
		l.functions[decl.Name] = info
	}
	return nil
}

func (l *lowerer) lowerFunctionBody(handle ir.FunctionHandle, decl *FunctionDecl) error {
	fl := &funcLowerer{
		l:      l,
		fn:     &l.module.Functions[handle],
		locals: make(map[string]uint32),
		params: make(map[string]uint32),
	}
	for i, param := range decl.Params {
		fl.params[param.Name] = uint32(i)
	}

	for _, stmt := range decl.Body {
		if err := fl.lowerStmt(stmt); err != nil {
			return err
		}
	}

	// void functions may fall off the end without an explicit return.
	if n := len(fl.fn.Body); n == 0 || !isReturn(fl.fn.Body[n-1]) {
		fl.flush()
		fl.fn.Body = append(fl.fn.Body, ir.Statement{Kind: ir.StmtReturn{}})
	}
	return nil
}

func isReturn(stmt ir.Statement) bool {
	_, ok := stmt.Kind.(ir.StmtReturn)
	return ok
}

// funcLowerer lowers one function body into the expression arena and
// statement list of its ir.Function.
type funcLowerer struct {
	l      *lowerer
	fn     *ir.Function
	locals map[string]uint32
	params map[string]uint32

	// emitted marks the start of the expression range not yet covered
	// by a StmtEmit.
	emitted ir.ExpressionHandle
}

func (f *funcLowerer) add(kind ir.ExpressionKind, typ ir.TypeHandle) ir.ExpressionHandle {
	handle := ir.ExpressionHandle(len(f.fn.Expressions))
	f.fn.Expressions = append(f.fn.Expressions, ir.Expression{Kind: kind})
	f.fn.ExpressionTypes = append(f.fn.ExpressionTypes, typ)
	return handle
}

// flush emits the expressions produced since the last flush.
func (f *funcLowerer) flush() {
	end := ir.ExpressionHandle(len(f.fn.Expressions))
	if f.emitted < end {
		f.fn.Body = append(f.fn.Body, ir.Statement{Kind: ir.StmtEmit{
			Range: ir.Range{Start: f.emitted, End: end},
		}})
		f.emitted = end
	}
}

func (f *funcLowerer) lowerStmt(stmt Stmt) error {
	switch s := stmt.(type) {
	case *DeclStmt:
		typ, err := f.l.valueType(s.Type, s.Span)
		if err != nil {
			return err
		}
		if _, exists := f.locals[s.Name]; exists {
			return lowerErrorAt(s.Span, "redeclaration of %q", s.Name)
		}
		local := ir.LocalVariable{Name: s.Name, Type: typ}
		if s.Init != nil {
			value, valueType, err := f.lowerExpr(s.Init)
			if err != nil {
				return err
			}
			if valueType != typ {
				return lowerErrorAt(s.Span, "cannot initialize %s %q with a value of a different type",
					s.Type, s.Name)
			}
			local.Init = &value
		}
		index := uint32(len(f.fn.LocalVars))
		f.fn.LocalVars = append(f.fn.LocalVars, local)
		f.locals[s.Name] = index
		return nil

	case *AssignStmt:
		pointer, pointeeType, err := f.lowerPointer(s.LHS)
		if err != nil {
			return err
		}
		value, valueType, err := f.lowerExpr(s.RHS)
		if err != nil {
			return err
		}
		if valueType != pointeeType {
			return lowerErrorAt(s.Span, "assignment type mismatch")
		}
		f.flush()
		f.fn.Body = append(f.fn.Body, ir.Statement{Kind: ir.StmtStore{
			Pointer: pointer,
			Value:   value,
		}})
		return nil

	case *ReturnStmt:
		var value *ir.ExpressionHandle
		if s.Value != nil {
			handle, _, err := f.lowerExpr(s.Value)
			if err != nil {
				return err
			}
			value = &handle
		}
		f.flush()
		f.fn.Body = append(f.fn.Body, ir.Statement{Kind: ir.StmtReturn{Value: value}})
		return nil

	case *ExprStmt:
		if _, _, err := f.lowerExpr(s.Expr); err != nil {
			return err
		}
		f.flush()
		return nil

	default:
		return &LowerError{Message: "unsupported statement"}
	}
}

// lowerPointer lowers an lvalue to a pointer expression.
func (f *funcLowerer) lowerPointer(expr Expr) (ir.ExpressionHandle, ir.TypeHandle, error) {
	switch e := expr.(type) {
	case *Ident:
		if index, ok := f.locals[e.Name]; ok {
			typ := f.fn.LocalVars[index].Type
			ptr := f.l.pointerType(typ, ir.SpaceFunction)
			return f.add(ir.ExprLocalVariable{Variable: index}, ptr), typ, nil
		}
		info, ok := f.l.globals[e.Name]
		if !ok {
			var err error
			info, err = f.l.builtinVariable(e.Name, e.Span)
			if err != nil {
				return 0, 0, err
			}
		}
		global := f.l.module.GlobalVariables[info.handle]
		if global.Space != ir.SpaceOutput {
			return 0, 0, lowerErrorAt(e.Span, "cannot assign to %q", e.Name)
		}
		ptr := f.l.pointerType(info.typ, global.Space)
		return f.add(ir.ExprGlobalVariable{Variable: info.handle}, ptr), info.typ, nil

	case *Member:
		base, pointee, err := f.lowerPointer(e.Base)
		if err != nil {
			return 0, 0, err
		}
		vector, ok := f.l.module.Types[pointee].Inner.(ir.VectorType)
		if !ok || len(e.Name) != 1 {
			return 0, 0, lowerErrorAt(e.Span, "cannot assign to %q", e.Name)
		}
		component, err := swizzleIndex(rune(e.Name[0]), e.Span)
		if err != nil {
			return 0, 0, err
		}
		if uint8(component) >= uint8(vector.Size) {
			return 0, 0, lowerErrorAt(e.Span, "component %q out of range for vec%d", e.Name, vector.Size)
		}
		space := ir.SpaceFunction
		ptrType := f.fn.ExpressionTypes[base]
		if inner, isPtr := f.l.module.Types[ptrType].Inner.(ir.PointerType); isPtr {
			space = inner.Space
		}
		scalar := f.l.floatType()
		ptr := f.l.pointerType(scalar, space)
		return f.add(ir.ExprAccessIndex{Base: base, Index: uint32(component)}, ptr), scalar, nil

	default:
		return 0, 0, lowerErrorAt(expr.Pos(), "expression is not assignable")
	}
}

// lowerExpr lowers an expression to a value, inserting loads as needed.
func (f *funcLowerer) lowerExpr(expr Expr) (ir.ExpressionHandle, ir.TypeHandle, error) {
	switch e := expr.(type) {
	case *FloatLit:
		typ := f.l.floatType()
		return f.add(ir.Literal{Value: ir.LiteralF32(e.Value)}, typ), typ, nil

	case *IntLit:
		if e.Unsigned {
			typ := f.l.uintType()
			return f.add(ir.Literal{Value: ir.LiteralU32(uint32(e.Value))}, typ), typ, nil
		}
		typ := f.l.intType()
		return f.add(ir.Literal{Value: ir.LiteralI32(int32(e.Value))}, typ), typ, nil

	case *Ident:
		return f.lowerIdent(e)

	case *Member:
		return f.lowerMember(e)

	case *Index:
		return f.lowerIndex(e)

	case *Call:
		return f.lowerCall(e)

	case *Unary:
		value, typ, err := f.lowerExpr(e.Expr)
		if err != nil {
			return 0, 0, err
		}
		return f.add(ir.ExprUnary{Op: ir.UnaryNegate, Expr: value}, typ), typ, nil

	case *Binary:
		return f.lowerBinary(e)

	default:
		return 0, 0, lowerErrorAt(expr.Pos(), "unsupported expression")
	}
}

func (f *funcLowerer) lowerIdent(e *Ident) (ir.ExpressionHandle, ir.TypeHandle, error) {
	if index, ok := f.locals[e.Name]; ok {
		typ := f.fn.LocalVars[index].Type
		ptr := f.add(ir.ExprLocalVariable{Variable: index}, f.l.pointerType(typ, ir.SpaceFunction))
		return f.add(ir.ExprLoad{Pointer: ptr}, typ), typ, nil
	}
	if index, ok := f.params[e.Name]; ok {
		typ := f.fn.Arguments[index].Type
		return f.add(ir.ExprFunctionArgument{Index: index}, typ), typ, nil
	}

	info, ok := f.l.globals[e.Name]
	if !ok {
		var err error
		info, err = f.l.builtinVariable(e.Name, e.Span)
		if err != nil {
			return 0, 0, err
		}
	}
	global := f.l.module.GlobalVariables[info.handle]
	if global.Space == ir.SpaceHandle {
		// Textures and samplers are opaque handles, never loaded.
		return f.add(ir.ExprGlobalVariable{Variable: info.handle}, info.typ), info.typ, nil
	}
	ptr := f.add(ir.ExprGlobalVariable{Variable: info.handle},
		f.l.pointerType(info.typ, global.Space))
	return f.add(ir.ExprLoad{Pointer: ptr}, info.typ), info.typ, nil
}

func (f *funcLowerer) lowerMember(e *Member) (ir.ExpressionHandle, ir.TypeHandle, error) {
	// Uniform block member access goes through the block pointer.
	if base, ok := e.Base.(*Ident); ok {
		if block, isBlock := f.l.blocks[base.Name]; isBlock {
			memberIndex := -1
			for i, member := range block.members {
				if member.Name == e.Name {
					memberIndex = i
					break
				}
			}
			if memberIndex < 0 {
				return 0, 0, lowerErrorAt(e.Span, "block %q has no member %q", base.Name, e.Name)
			}
			blockPtr := f.add(ir.ExprGlobalVariable{Variable: block.global},
				f.l.pointerType(block.structType, ir.SpaceUniform))
			memberType := block.memberTypes[memberIndex]
			memberPtr := f.add(ir.ExprAccessIndex{Base: blockPtr, Index: uint32(memberIndex)},
				f.l.pointerType(memberType, ir.SpaceUniform))
			return f.add(ir.ExprLoad{Pointer: memberPtr}, memberType), memberType, nil
		}
	}

	// Otherwise a vector swizzle on a value.
	base, baseType, err := f.lowerExpr(e.Base)
	if err != nil {
		return 0, 0, err
	}
	vector, ok := f.l.module.Types[baseType].Inner.(ir.VectorType)
	if !ok {
		return 0, 0, lowerErrorAt(e.Span, "%q is not a member or swizzle", e.Name)
	}

	if len(e.Name) == 1 {
		component, err := swizzleIndex(rune(e.Name[0]), e.Span)
		if err != nil {
			return 0, 0, err
		}
		if uint8(component) >= uint8(vector.Size) {
			return 0, 0, lowerErrorAt(e.Span, "component %q out of range for vec%d", e.Name, vector.Size)
		}
		typ := f.l.floatType()
		return f.add(ir.ExprAccessIndex{Base: base, Index: uint32(component)}, typ), typ, nil
	}

	if len(e.Name) > 4 {
		return 0, 0, lowerErrorAt(e.Span, "swizzle %q is too long", e.Name)
	}
	var pattern [4]ir.SwizzleComponent
	for i, c := range e.Name {
		component, err := swizzleIndex(c, e.Span)
		if err != nil {
			return 0, 0, err
		}
		if uint8(component) >= uint8(vector.Size) {
			return 0, 0, lowerErrorAt(e.Span, "component %q out of range for vec%d", string(c), vector.Size)
		}
		pattern[i] = component
	}
	size := ir.VectorSize(len(e.Name))
	typ := f.l.vectorType(size)
	return f.add(ir.ExprSwizzle{
		Size:    size,
		Vector:  base,
		Pattern: pattern,
	}, typ), typ, nil
}

func swizzleIndex(c rune, span Span) (ir.SwizzleComponent, error) {
	switch c {
	case 'x', 'r', 's':
		return ir.SwizzleX, nil
	case 'y', 'g', 't':
		return ir.SwizzleY, nil
	case 'z', 'b', 'p':
		return ir.SwizzleZ, nil
	case 'w', 'a', 'q':
		return ir.SwizzleW, nil
	default:
		return 0, lowerErrorAt(span, "invalid swizzle component %q", string(c))
	}
}

func (f *funcLowerer) lowerIndex(e *Index) (ir.ExpressionHandle, ir.TypeHandle, error) {
	lit, ok := e.Index.(*IntLit)
	if !ok {
		return 0, 0, lowerErrorAt(e.Span, "index must be a constant integer")
	}
	base, baseType, err := f.lowerExpr(e.Base)
	if err != nil {
		return 0, 0, err
	}
	switch inner := f.l.module.Types[baseType].Inner.(type) {
	case ir.VectorType:
		if lit.Value < 0 || lit.Value >= int64(inner.Size) {
			return 0, 0, lowerErrorAt(e.Span, "index %d out of range for vec%d", lit.Value, inner.Size)
		}
		typ := f.l.floatType()
		return f.add(ir.ExprAccessIndex{Base: base, Index: uint32(lit.Value)}, typ), typ, nil
	case ir.MatrixType:
		if lit.Value < 0 || lit.Value >= int64(inner.Columns) {
			return 0, 0, lowerErrorAt(e.Span, "column %d out of range for mat%d", lit.Value, inner.Columns)
		}
		typ := f.l.vectorType(inner.Rows)
		return f.add(ir.ExprAccessIndex{Base: base, Index: uint32(lit.Value)}, typ), typ, nil
	default:
		return 0, 0, lowerErrorAt(e.Span, "type cannot be indexed")
	}
}

var mathFunctions = map[string]ir.MathFunction{
	"abs":       ir.MathAbs,
	"floor":     ir.MathFloor,
	"fract":     ir.MathFract,
	"sin":       ir.MathSin,
	"cos":       ir.MathCos,
	"pow":       ir.MathPow,
	"sqrt":      ir.MathSqrt,
	"min":       ir.MathMin,
	"max":       ir.MathMax,
	"clamp":     ir.MathClamp,
	"mix":       ir.MathMix,
	"length":    ir.MathLength,
	"normalize": ir.MathNormalize,
	"reflect":   ir.MathReflect,
	"dot":       ir.MathDot,
}

var constructorSizes = map[string]ir.VectorSize{
	"vec2": ir.Vec2,
	"vec3": ir.Vec3,
	"vec4": ir.Vec4,
}

func (f *funcLowerer) lowerCall(e *Call) (ir.ExpressionHandle, ir.TypeHandle, error) {
	// texture(sampler2D(tex, smp), uv) combines a separate texture and
	// sampler at the sample site.
	if e.Callee == "texture" {
		return f.lowerTextureCall(e)
	}

	if size, ok := constructorSizes[e.Callee]; ok {
		return f.lowerConstructor(e, f.l.vectorType(size), int(size))
	}
	if e.Callee == "mat3" {
		return f.lowerConstructor(e, f.l.matrixType(ir.Vec3), 3)
	}
	if e.Callee == "mat4" {
		return f.lowerConstructor(e, f.l.matrixType(ir.Vec4), 4)
	}

	if fn, ok := mathFunctions[e.Callee]; ok {
		return f.lowerMathCall(e, fn)
	}

	info, ok := f.l.functions[e.Callee]
	if !ok {
		return 0, 0, lowerErrorAt(e.Span, "call to undefined function %q", e.Callee)
	}
	if info.result == nil {
		return 0, 0, lowerErrorAt(e.Span, "void function %q used in an expression", e.Callee)
	}
	if len(e.Args) != len(info.args) {
		return 0, 0, lowerErrorAt(e.Span, "function %q expects %d arguments, got %d",
			e.Callee, len(info.args), len(e.Args))
	}
	var args []ir.ExpressionHandle
	for i, arg := range e.Args {
		value, typ, err := f.lowerExpr(arg)
		if err != nil {
			return 0, 0, err
		}
		if typ != info.args[i] {
			return 0, 0, lowerErrorAt(arg.Pos(), "argument %d of %q has the wrong type", i+1, e.Callee)
		}
		args = append(args, value)
	}
	return f.add(ir.ExprCall{Function: info.handle, Arguments: args}, *info.result), *info.result, nil
}

func (f *funcLowerer) lowerTextureCall(e *Call) (ir.ExpressionHandle, ir.TypeHandle, error) {
	if len(e.Args) != 2 {
		return 0, 0, lowerErrorAt(e.Span, "texture expects 2 arguments, got %d", len(e.Args))
	}
	combine, ok := e.Args[0].(*Call)
	if !ok || (combine.Callee != "sampler2D" && combine.Callee != "samplerCube") {
		return 0, 0, lowerErrorAt(e.Args[0].Pos(),
			"texture requires an inline sampler2D or samplerCube constructor")
	}
	if len(combine.Args) != 2 {
		return 0, 0, lowerErrorAt(combine.Span, "%s expects 2 arguments, got %d",
			combine.Callee, len(combine.Args))
	}

	image, imageType, err := f.lowerExpr(combine.Args[0])
	if err != nil {
		return 0, 0, err
	}
	if _, ok := f.l.module.Types[imageType].Inner.(ir.ImageType); !ok {
		return 0, 0, lowerErrorAt(combine.Args[0].Pos(), "first argument of %s is not a texture", combine.Callee)
	}
	sampler, samplerType, err := f.lowerExpr(combine.Args[1])
	if err != nil {
		return 0, 0, err
	}
	if _, ok := f.l.module.Types[samplerType].Inner.(ir.SamplerType); !ok {
		return 0, 0, lowerErrorAt(combine.Args[1].Pos(), "second argument of %s is not a sampler", combine.Callee)
	}
	coordinate, _, err := f.lowerExpr(e.Args[1])
	if err != nil {
		return 0, 0, err
	}

	typ := f.l.vectorType(ir.Vec4)
	return f.add(ir.ExprImageSample{
		Image:      image,
		Sampler:    sampler,
		Coordinate: coordinate,
	}, typ), typ, nil
}

func (f *funcLowerer) lowerConstructor(e *Call, typ ir.TypeHandle, arity int) (ir.ExpressionHandle, ir.TypeHandle, error) {
	if len(e.Args) == 0 {
		return 0, 0, lowerErrorAt(e.Span, "%s constructor needs arguments", e.Callee)
	}
	var components []ir.ExpressionHandle
	total := 0
	for _, arg := range e.Args {
		value, argType, err := f.lowerExpr(arg)
		if err != nil {
			return 0, 0, err
		}
		components = append(components, value)
		total += componentCount(f.l.module, argType)
	}
	// vec4(v3, 1.0) style widening is resolved by component count.
	if inner, ok := f.l.module.Types[typ].Inner.(ir.VectorType); ok {
		if total != int(inner.Size) && len(e.Args) != 1 {
			return 0, 0, lowerErrorAt(e.Span, "%s constructor needs %d components, got %d",
				e.Callee, inner.Size, total)
		}
	} else if len(e.Args) != arity {
		return 0, 0, lowerErrorAt(e.Span, "%s constructor needs %d columns, got %d",
			e.Callee, arity, len(e.Args))
	}
	return f.add(ir.ExprCompose{Type: typ, Components: components}, typ), typ, nil
}

func componentCount(module *ir.Module, typ ir.TypeHandle) int {
	switch inner := module.Types[typ].Inner.(type) {
	case ir.VectorType:
		return int(inner.Size)
	case ir.ScalarType:
		return 1
	default:
		return 1
	}
}

func (f *funcLowerer) lowerMathCall(e *Call, fn ir.MathFunction) (ir.ExpressionHandle, ir.TypeHandle, error) {
	expected := map[ir.MathFunction]int{
		ir.MathAbs: 1, ir.MathFloor: 1, ir.MathFract: 1, ir.MathSin: 1,
		ir.MathCos: 1, ir.MathSqrt: 1, ir.MathLength: 1, ir.MathNormalize: 1,
		ir.MathPow: 2, ir.MathMin: 2, ir.MathMax: 2, ir.MathReflect: 2, ir.MathDot: 2,
		ir.MathClamp: 3, ir.MathMix: 3,
	}[fn]
	if len(e.Args) != expected {
		return 0, 0, lowerErrorAt(e.Span, "%s expects %d arguments, got %d",
			e.Callee, expected, len(e.Args))
	}

	var args []ir.ExpressionHandle
	var firstType ir.TypeHandle
	for i, arg := range e.Args {
		value, typ, err := f.lowerExpr(arg)
		if err != nil {
			return 0, 0, err
		}
		if i == 0 {
			firstType = typ
		}
		args = append(args, value)
	}

	result := firstType
	if fn == ir.MathLength || fn == ir.MathDot {
		result = f.l.floatType()
	}
	return f.add(ir.ExprMath{Fn: fn, Args: args}, result), result, nil
}

func (f *funcLowerer) lowerBinary(e *Binary) (ir.ExpressionHandle, ir.TypeHandle, error) {
	left, leftType, err := f.lowerExpr(e.Left)
	if err != nil {
		return 0, 0, err
	}
	right, rightType, err := f.lowerExpr(e.Right)
	if err != nil {
		return 0, 0, err
	}

	var op ir.BinaryOp
	switch e.Op {
	case TokenPlus:
		op = ir.BinaryAdd
	case TokenMinus:
		op = ir.BinarySub
	case TokenStar:
		op = ir.BinaryMul
	case TokenSlash:
		op = ir.BinaryDiv
	default:
		return 0, 0, lowerErrorAt(e.Span, "unsupported operator")
	}

	leftInner := f.l.module.Types[leftType].Inner
	rightInner := f.l.module.Types[rightType].Inner

	if leftType == rightType {
		return f.add(ir.ExprBinary{Op: op, Left: left, Right: right}, leftType), leftType, nil
	}

	_, leftScalar := leftInner.(ir.ScalarType)
	_, rightScalar := rightInner.(ir.ScalarType)
	leftVector, leftIsVector := leftInner.(ir.VectorType)
	rightVector, rightIsVector := rightInner.(ir.VectorType)
	leftMatrix, leftIsMatrix := leftInner.(ir.MatrixType)
	rightMatrix, rightIsMatrix := rightInner.(ir.MatrixType)

	switch {
	case leftIsVector && rightScalar:
		if op == ir.BinaryMul {
			// Kept asymmetric so the encoder can pick the
			// vector-times-scalar form.
			return f.add(ir.ExprBinary{Op: op, Left: left, Right: right}, leftType), leftType, nil
		}
		splat := f.splat(right, leftVector.Size)
		return f.add(ir.ExprBinary{Op: op, Left: left, Right: splat}, leftType), leftType, nil

	case leftScalar && rightIsVector:
		if op == ir.BinaryMul {
			return f.add(ir.ExprBinary{Op: op, Left: right, Right: left}, rightType), rightType, nil
		}
		splat := f.splat(left, rightVector.Size)
		return f.add(ir.ExprBinary{Op: op, Left: splat, Right: right}, rightType), rightType, nil

	case leftIsMatrix && rightScalar && op == ir.BinaryMul:
		return f.add(ir.ExprBinary{Op: op, Left: left, Right: right}, leftType), leftType, nil

	case leftScalar && rightIsMatrix && op == ir.BinaryMul:
		return f.add(ir.ExprBinary{Op: op, Left: right, Right: left}, rightType), rightType, nil

	case leftIsMatrix && rightIsVector && op == ir.BinaryMul:
		if leftMatrix.Columns != rightVector.Size {
			return 0, 0, lowerErrorAt(e.Span, "matrix and vector sizes do not match")
		}
		typ := f.l.vectorType(leftMatrix.Rows)
		return f.add(ir.ExprBinary{Op: op, Left: left, Right: right}, typ), typ, nil

	case leftIsVector && rightIsMatrix && op == ir.BinaryMul:
		if rightMatrix.Rows != leftVector.Size {
			return 0, 0, lowerErrorAt(e.Span, "vector and matrix sizes do not match")
		}
		typ := f.l.vectorType(rightMatrix.Columns)
		return f.add(ir.ExprBinary{Op: op, Left: left, Right: right}, typ), typ, nil

	default:
		return 0, 0, lowerErrorAt(e.Span, "operand types do not match")
	}
}

// splat widens a scalar to a vector by repeating it.
func (f *funcLowerer) splat(scalar ir.ExpressionHandle, size ir.VectorSize) ir.ExpressionHandle {
	typ := f.l.vectorType(size)
	components := make([]ir.ExpressionHandle, size)
	for i := range components {
		components[i] = scalar
	}
	return f.add(ir.ExprCompose{Type: typ, Components: components}, typ)
}
