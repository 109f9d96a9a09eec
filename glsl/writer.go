// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/glslcross/spirv"
)

// writer emits GLSL source from a decoded module.
type writer struct {
	c      *Compiler
	mod    *module
	out    strings.Builder
	indent int
}

func newWriter(c *Compiler) *writer {
	return &writer{c: c, mod: c.mod}
}

func (w *writer) write() (string, error) {
	w.writeLine("#version %s", w.c.options.LangVersion.String())

	if w.c.options.LangVersion.ES {
		w.writeLine("precision highp float;")
		w.writeLine("precision highp int;")
	}
	w.writeLine("")

	for _, line := range w.c.headerLines {
		w.writeLine("%s", line)
	}
	if len(w.c.headerLines) > 0 {
		w.writeLine("")
	}

	resources := w.c.ShaderResources()
	for _, buffer := range resources.UniformBuffers {
		w.writeUniformBuffer(buffer)
	}

	if err := w.writeCombinedSamplers(); err != nil {
		return "", err
	}

	w.writeStageIO(resources)

	entry := w.mod.entry
	for _, fn := range w.mod.functions {
		if fn.id == entry.function {
			continue
		}
		if err := w.writeFunction(fn, w.functionName(fn.id)); err != nil {
			return "", err
		}
	}
	for _, fn := range w.mod.functions {
		if fn.id != entry.function {
			continue
		}
		if err := w.writeFunction(fn, "main"); err != nil {
			return "", err
		}
	}

	return w.out.String(), nil
}

// writeUniformBuffer declares one uniform buffer, either as an
// interface block or, with EmitUniformBufferAsPlainUniforms, as a
// struct definition plus a plain struct-typed uniform.
func (w *writer) writeUniformBuffer(buffer Resource) {
	typeName := w.structName(buffer.BaseTypeID)
	instance := w.nameOf(buffer.ID)
	members := w.mod.types[buffer.BaseTypeID].members

	if w.c.options.EmitUniformBufferAsPlainUniforms {
		w.writeLine("struct %s", typeName)
		w.writeLine("{")
		w.pushIndent()
		for i, memberType := range members {
			w.writeLine("%s %s;", w.typeName(memberType), w.memberName(buffer.BaseTypeID, uint32(i)))
		}
		w.popIndent()
		w.writeLine("};")
		w.writeLine("")
		w.writeLine("uniform %s %s;", typeName, instance)
		w.writeLine("")
		return
	}

	layout := "layout(std140)"
	if w.c.HasDecoration(buffer.ID, spirv.DecorationBinding) && !w.c.options.LangVersion.ES {
		layout = fmt.Sprintf("layout(binding = %d, std140)",
			w.c.Decoration(buffer.ID, spirv.DecorationBinding))
	}
	w.writeLine("%s uniform %s", layout, typeName)
	w.writeLine("{")
	w.pushIndent()
	for i, memberType := range members {
		w.writeLine("%s %s;", w.typeName(memberType), w.memberName(buffer.BaseTypeID, uint32(i)))
	}
	w.popIndent()
	w.writeLine("} %s;", instance)
	w.writeLine("")
}

// writeCombinedSamplers declares one sampler per combined image/sampler
// pair. Separate images and samplers themselves are never declared;
// GLSL cannot express them.
func (w *writer) writeCombinedSamplers() error {
	for _, combined := range w.c.combined {
		imageType := w.mod.pointee(w.mod.variables[combined.ImageID].typeID)
		name := w.nameOf(combined.CombinedID)
		sampler, err := w.samplerTypeName(imageType)
		if err != nil {
			return err
		}
		if w.c.options.LangVersion.ES {
			w.writeLine("uniform highp %s %s;", sampler, name)
		} else if w.c.HasDecoration(combined.CombinedID, spirv.DecorationBinding) {
			w.writeLine("layout(binding = %d) uniform %s %s;",
				w.c.Decoration(combined.CombinedID, spirv.DecorationBinding), sampler, name)
		} else {
			w.writeLine("uniform %s %s;", sampler, name)
		}
	}
	if len(w.c.combined) > 0 {
		w.writeLine("")
	}
	return nil
}

// writeStageIO declares stage inputs and outputs. OpenGL ES 3.0 only
// allows location qualifiers on vertex inputs and fragment outputs, and
// fragment interface variables carry an explicit precision.
func (w *writer) writeStageIO(resources ShaderResources) {
	fragment := w.mod.entry.model == spirv.ExecutionModelFragment
	es := w.c.options.LangVersion.ES

	for _, in := range resources.StageInputs {
		typ := w.typeName(w.mod.pointee(in.TypeID))
		if es && fragment {
			w.writeLine("in highp %s %s;", typ, w.nameOf(in.ID))
		} else {
			w.writeLine("layout(location = %d) in %s %s;",
				w.c.Decoration(in.ID, spirv.DecorationLocation), typ, w.nameOf(in.ID))
		}
	}
	for _, out := range resources.StageOutputs {
		typ := w.typeName(w.mod.pointee(out.TypeID))
		switch {
		case es && fragment:
			w.writeLine("layout(location = %d) out highp %s %s;",
				w.c.Decoration(out.ID, spirv.DecorationLocation), typ, w.nameOf(out.ID))
		case es:
			w.writeLine("out %s %s;", typ, w.nameOf(out.ID))
		default:
			w.writeLine("layout(location = %d) out %s %s;",
				w.c.Decoration(out.ID, spirv.DecorationLocation), typ, w.nameOf(out.ID))
		}
	}
	if len(resources.StageInputs)+len(resources.StageOutputs) > 0 {
		w.writeLine("")
	}
}

func (w *writer) writeFunction(fn *functionDef, name string) error {
	var params []string
	for _, param := range fn.params {
		params = append(params, fmt.Sprintf("%s %s",
			w.typeName(w.mod.variables[param].typeID), w.nameOf(param)))
	}
	w.writeLine("%s %s(%s)", w.typeName(fn.returns), name, strings.Join(params, ", "))
	w.writeLine("{")
	w.pushIndent()

	e := &funcEmitter{
		w:          w,
		fn:         fn,
		exprs:      make(map[uint32]string),
		loadedFrom: make(map[uint32]uint32),
	}
	if err := e.emitBody(); err != nil {
		return err
	}

	w.popIndent()
	w.writeLine("}")
	w.writeLine("")
	return nil
}

// funcEmitter walks one function body. Value-producing instructions
// build expression strings inlined at their use sites; only stores,
// void calls, and returns become statements.
type funcEmitter struct {
	w          *writer
	fn         *functionDef
	exprs      map[uint32]string
	loadedFrom map[uint32]uint32 // load result id to source variable id
}

func (e *funcEmitter) emitBody() error {
	w := e.w
	for i, inst := range e.fn.body {
		switch inst.opcode {
		case spirv.OpLabel:

		case spirv.OpVariable:
			id := inst.operands[1]
			w.writeLine("%s %s;", w.typeName(w.mod.pointee(inst.operands[0])), w.nameOf(id))

		case spirv.OpLoad:
			result, ptr := inst.operands[1], inst.operands[2]
			e.exprs[result] = e.pointer(ptr)
			if _, ok := w.mod.variables[ptr]; ok {
				e.loadedFrom[result] = ptr
			}

		case spirv.OpAccessChain:
			s, err := e.accessChain(inst.operands)
			if err != nil {
				return err
			}
			e.exprs[inst.operands[1]] = s

		case spirv.OpStore:
			w.writeLine("%s = %s;", e.pointer(inst.operands[0]), e.expr(inst.operands[1]))

		case spirv.OpCompositeConstruct:
			var args []string
			for _, arg := range inst.operands[2:] {
				args = append(args, e.expr(arg))
			}
			e.exprs[inst.operands[1]] = fmt.Sprintf("%s(%s)",
				w.typeName(inst.operands[0]), strings.Join(args, ", "))

		case spirv.OpCompositeExtract:
			s, err := e.compositeExtract(inst.operands)
			if err != nil {
				return err
			}
			e.exprs[inst.operands[1]] = s

		case spirv.OpVectorShuffle:
			var letters []byte
			for _, comp := range inst.operands[4:] {
				letters = append(letters, swizzleLetters[comp&3])
			}
			e.exprs[inst.operands[1]] = fmt.Sprintf("%s.%s", e.expr(inst.operands[2]), letters)

		case spirv.OpFNegate, spirv.OpSNegate:
			e.exprs[inst.operands[1]] = fmt.Sprintf("(-%s)", e.expr(inst.operands[2]))

		case spirv.OpFAdd, spirv.OpIAdd:
			e.binary(inst.operands, "+")
		case spirv.OpFSub, spirv.OpISub:
			e.binary(inst.operands, "-")
		case spirv.OpFMul, spirv.OpIMul,
			spirv.OpVectorTimesScalar, spirv.OpMatrixTimesScalar,
			spirv.OpVectorTimesMatrix, spirv.OpMatrixTimesVector,
			spirv.OpMatrixTimesMatrix:
			e.binary(inst.operands, "*")
		case spirv.OpFDiv, spirv.OpSDiv, spirv.OpUDiv:
			e.binary(inst.operands, "/")

		case spirv.OpDot:
			e.exprs[inst.operands[1]] = fmt.Sprintf("dot(%s, %s)",
				e.expr(inst.operands[2]), e.expr(inst.operands[3]))

		case spirv.OpExtInst:
			s, err := e.extInst(inst.operands)
			if err != nil {
				return err
			}
			e.exprs[inst.operands[1]] = s

		case spirv.OpSampledImage:
			pair := samplerPair{
				image:   e.loadedFrom[inst.operands[2]],
				sampler: e.loadedFrom[inst.operands[3]],
			}
			combinedID, ok := e.w.c.pairIDs[pair]
			if !ok {
				return fmt.Errorf("glsl: separate image %q sampled without combined image samplers",
					w.mod.names[pair.image])
			}
			e.exprs[inst.operands[1]] = w.nameOf(combinedID)

		case spirv.OpImageSampleImplicitLod:
			e.exprs[inst.operands[1]] = fmt.Sprintf("texture(%s, %s)",
				e.expr(inst.operands[2]), e.expr(inst.operands[3]))

		case spirv.OpFunctionCall:
			var args []string
			for _, arg := range inst.operands[3:] {
				args = append(args, e.expr(arg))
			}
			call := fmt.Sprintf("%s(%s)", w.functionName(inst.operands[2]), strings.Join(args, ", "))
			if w.mod.types[inst.operands[0]].kind == typeVoid {
				w.writeLine("%s;", call)
			} else {
				e.exprs[inst.operands[1]] = call
			}

		case spirv.OpReturn:
			if i != len(e.fn.body)-1 {
				w.writeLine("return;")
			}

		case spirv.OpReturnValue:
			w.writeLine("return %s;", e.expr(inst.operands[0]))

		default:
			return fmt.Errorf("glsl: unsupported opcode %d", inst.opcode)
		}
	}
	return nil
}

func (e *funcEmitter) binary(operands []uint32, op string) {
	e.exprs[operands[1]] = fmt.Sprintf("(%s %s %s)", e.expr(operands[2]), op, e.expr(operands[3]))
}

// accessChain renders a pointer chain as member, component, and column
// accessors. Names are resolved at emission time, so renames applied
// through the reflection API show up in every access.
func (e *funcEmitter) accessChain(operands []uint32) (string, error) {
	base := operands[2]
	variable := e.w.mod.variables[base]
	if variable == nil {
		return "", fmt.Errorf("glsl: access chain base %%%d is not a variable", base)
	}
	ref := e.pointer(base)
	current := e.w.mod.pointee(variable.typeID)
	for _, index := range operands[3:] {
		constant := e.w.mod.constants[index]
		if constant == nil {
			return "", fmt.Errorf("glsl: access chain index %%%d is not a constant", index)
		}
		idx := constant.value
		t := e.w.mod.types[current]
		switch t.kind {
		case typeStruct:
			ref += "." + e.w.memberName(current, idx)
			current = t.members[idx]
		case typeVector:
			ref += "." + string(swizzleLetters[idx&3])
			current = t.component
		case typeMatrix:
			ref += fmt.Sprintf("[%d]", idx)
			current = t.component
		default:
			return "", fmt.Errorf("glsl: cannot index into type kind %d", t.kind)
		}
	}
	return ref, nil
}

func (e *funcEmitter) compositeExtract(operands []uint32) (string, error) {
	base := e.expr(operands[2])
	current := e.typeOf(operands[2])
	for _, idx := range operands[3:] {
		t := e.w.mod.types[current]
		if t == nil {
			return "", fmt.Errorf("glsl: composite extract from unknown type")
		}
		switch t.kind {
		case typeVector:
			base += "." + string(swizzleLetters[idx&3])
			current = t.component
		case typeMatrix:
			base += fmt.Sprintf("[%d]", idx)
			current = t.component
		case typeStruct:
			base += "." + e.w.memberName(current, idx)
			current = t.members[idx]
		default:
			return "", fmt.Errorf("glsl: cannot extract from type kind %d", t.kind)
		}
	}
	return base, nil
}

func (e *funcEmitter) extInst(operands []uint32) (string, error) {
	if e.w.mod.extImports[operands[2]] != "GLSL.std.450" {
		return "", fmt.Errorf("glsl: unknown extended instruction set %%%d", operands[2])
	}
	name, ok := glslStd450Names[spirv.GLSLStd450(operands[3])]
	if !ok {
		return "", fmt.Errorf("glsl: unsupported GLSL.std.450 instruction %d", operands[3])
	}
	var args []string
	for _, arg := range operands[4:] {
		args = append(args, e.expr(arg))
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(args, ", ")), nil
}

// expr resolves a value id to its expression string.
func (e *funcEmitter) expr(id uint32) string {
	if s, ok := e.exprs[id]; ok {
		return s
	}
	if constant := e.w.mod.constants[id]; constant != nil {
		return e.w.constantExpr(constant)
	}
	return e.w.nameOf(id)
}

// pointer resolves a pointer id: either a named variable or a
// previously built access chain.
func (e *funcEmitter) pointer(id uint32) string {
	if s, ok := e.exprs[id]; ok {
		return s
	}
	return e.w.varRef(id)
}

// typeOf returns the result type id of a value, following the
// instruction that produced it or the constant table.
func (e *funcEmitter) typeOf(id uint32) uint32 {
	for _, inst := range e.fn.body {
		if inst.opcode == spirv.OpStore {
			continue
		}
		if len(inst.operands) >= 2 && inst.operands[1] == id {
			return inst.operands[0]
		}
	}
	if constant := e.w.mod.constants[id]; constant != nil {
		return constant.typeID
	}
	if v := e.w.mod.variables[id]; v != nil {
		return v.typeID
	}
	return 0
}

const swizzleLetters = "xyzw"

var glslStd450Names = map[spirv.GLSLStd450]string{
	spirv.GLSLStd450FAbs:      "abs",
	spirv.GLSLStd450Floor:     "floor",
	spirv.GLSLStd450Fract:     "fract",
	spirv.GLSLStd450Sin:       "sin",
	spirv.GLSLStd450Cos:       "cos",
	spirv.GLSLStd450Pow:       "pow",
	spirv.GLSLStd450Sqrt:      "sqrt",
	spirv.GLSLStd450FMin:      "min",
	spirv.GLSLStd450FMax:      "max",
	spirv.GLSLStd450FClamp:    "clamp",
	spirv.GLSLStd450FMix:      "mix",
	spirv.GLSLStd450Length:    "length",
	spirv.GLSLStd450Normalize: "normalize",
	spirv.GLSLStd450Reflect:   "reflect",
}

// varRef renders a variable reference, mapping built-in decorations to
// their GLSL names.
func (w *writer) varRef(id uint32) string {
	if w.c.HasDecoration(id, spirv.DecorationBuiltIn) {
		switch spirv.BuiltIn(w.c.Decoration(id, spirv.DecorationBuiltIn)) {
		case spirv.BuiltInPosition:
			return "gl_Position"
		case spirv.BuiltInPointSize:
			return "gl_PointSize"
		case spirv.BuiltInFragCoord:
			return "gl_FragCoord"
		case spirv.BuiltInFragDepth:
			return "gl_FragDepth"
		}
	}
	return w.nameOf(id)
}

func (w *writer) nameOf(id uint32) string {
	if name := w.mod.names[id]; name != "" {
		return escapeKeyword(name)
	}
	return fmt.Sprintf("_%d", id)
}

func (w *writer) memberName(typeID, index uint32) string {
	if name := w.mod.memberNames[typeID][index]; name != "" {
		return escapeKeyword(name)
	}
	return fmt.Sprintf("_m%d", index)
}

func (w *writer) structName(typeID uint32) string {
	if name := w.mod.names[typeID]; name != "" {
		return escapeKeyword(name)
	}
	return fmt.Sprintf("_struct_%d", typeID)
}

func (w *writer) functionName(id uint32) string {
	if name := w.mod.names[id]; name != "" {
		return escapeKeyword(name)
	}
	return fmt.Sprintf("_fn%d", id)
}

// typeName renders a type id as a GLSL type name.
func (w *writer) typeName(typeID uint32) string {
	t := w.mod.types[typeID]
	if t == nil {
		return fmt.Sprintf("_type_%d", typeID)
	}
	switch t.kind {
	case typeVoid:
		return "void"
	case typeBool:
		return "bool"
	case typeFloat:
		return "float"
	case typeInt:
		if t.signed {
			return "int"
		}
		return "uint"
	case typeVector:
		return fmt.Sprintf("%svec%d", vectorPrefix(w.mod.types[t.component]), t.count)
	case typeMatrix:
		rows := w.mod.types[t.component].count
		if rows == t.count {
			return fmt.Sprintf("mat%d", t.count)
		}
		return fmt.Sprintf("mat%dx%d", t.count, rows)
	case typeStruct:
		return w.structName(typeID)
	case typePointer:
		return w.typeName(t.component)
	default:
		return fmt.Sprintf("_type_%d", typeID)
	}
}

func vectorPrefix(scalar *typeDef) string {
	switch scalar.kind {
	case typeBool:
		return "b"
	case typeInt:
		if scalar.signed {
			return "i"
		}
		return "u"
	default:
		return ""
	}
}

// samplerTypeName maps an image type to the GLSL sampler type used for
// its combined declaration.
func (w *writer) samplerTypeName(imageTypeID uint32) (string, error) {
	t := w.mod.types[imageTypeID]
	if t == nil || t.kind != typeImage {
		return "", fmt.Errorf("glsl: type %%%d is not an image", imageTypeID)
	}
	switch t.dim {
	case 1:
		if t.arrayed {
			return "sampler2DArray", nil
		}
		return "sampler2D", nil
	case 3:
		return "samplerCube", nil
	default:
		return "", fmt.Errorf("glsl: unsupported image dimensionality %d", t.dim)
	}
}

// constantExpr renders a constant as a literal or constructor.
func (w *writer) constantExpr(constant *constantDef) string {
	t := w.mod.types[constant.typeID]
	if len(constant.parts) > 0 {
		var parts []string
		for _, part := range constant.parts {
			if c := w.mod.constants[part]; c != nil {
				parts = append(parts, w.constantExpr(c))
			}
		}
		return fmt.Sprintf("%s(%s)", w.typeName(constant.typeID), strings.Join(parts, ", "))
	}
	switch t.kind {
	case typeFloat:
		return formatFloat(math.Float32frombits(constant.value))
	case typeInt:
		if t.signed {
			return strconv.FormatInt(int64(int32(constant.value)), 10)
		}
		return strconv.FormatUint(uint64(constant.value), 10) + "u"
	case typeBool:
		if constant.value != 0 {
			return "true"
		}
		return "false"
	default:
		return strconv.FormatUint(uint64(constant.value), 10)
	}
}

// formatFloat renders a float literal, keeping a decimal point so the
// literal stays a float in GLSL.
func formatFloat(f float32) string {
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func (w *writer) writeLine(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if line != "" {
		w.out.WriteString(strings.Repeat("    ", w.indent))
	}
	w.out.WriteString(line)
	w.out.WriteByte('\n')
}

func (w *writer) pushIndent() { w.indent++ }
func (w *writer) popIndent()  { w.indent-- }
