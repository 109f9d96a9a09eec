// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package spirv

import (
	"testing"

	"github.com/gogpu/glslcross/ir"
)

// vertexModule builds the IR for a pass-through vertex stage:
//
//	layout(location = 0) in vec3 position;
//	void main()
//	{
//	    gl_Position = vec4(position, 1.0);
//	}
func vertexModule() *ir.Module {
	f32 := ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}

	types := []ir.Type{
		{Inner: f32},                                       // 0
		{Inner: ir.VectorType{Size: ir.Vec3, Scalar: f32}}, // 1
		{Inner: ir.VectorType{Size: ir.Vec4, Scalar: f32}}, // 2
		{Inner: ir.PointerType{Base: 1, Space: ir.SpaceInput}},  // 3
		{Inner: ir.PointerType{Base: 2, Space: ir.SpaceOutput}}, // 4
	}

	globals := []ir.GlobalVariable{
		{Name: "position", Space: ir.SpaceInput, IO: ir.LocationBinding{Location: 0}, Type: 1},
		{Name: "gl_Position", Space: ir.SpaceOutput, IO: ir.BuiltinBinding{Builtin: ir.BuiltinPosition}, Type: 2},
	}

	main := ir.Function{
		Name: "main",
		Expressions: []ir.Expression{
			{Kind: ir.ExprGlobalVariable{Variable: 1}},                   // 0: &gl_Position
			{Kind: ir.ExprGlobalVariable{Variable: 0}},                   // 1: &position
			{Kind: ir.ExprLoad{Pointer: 1}},                              // 2
			{Kind: ir.Literal{Value: ir.LiteralF32(1.0)}},                // 3
			{Kind: ir.ExprCompose{Type: 2, Components: []ir.ExpressionHandle{2, 3}}}, // 4
		},
		ExpressionTypes: []ir.TypeHandle{4, 3, 1, 0, 2},
		Body: []ir.Statement{
			{Kind: ir.StmtEmit{Range: ir.Range{Start: 0, End: 5}}},
			{Kind: ir.StmtStore{Pointer: 0, Value: 4}},
			{Kind: ir.StmtReturn{}},
		},
	}

	return &ir.Module{
		Types:           types,
		GlobalVariables: globals,
		Functions:       []ir.Function{main},
		EntryPoint:      ir.EntryPoint{Name: "main", Stage: ir.StageVertex, Function: 0},
	}
}

// opcodes decodes the opcode stream of a compiled module.
func opcodes(t *testing.T, words []uint32) []OpCode {
	t.Helper()
	if len(words) < 5 {
		t.Fatalf("module has %d words, want at least 5", len(words))
	}
	var ops []OpCode
	pos := 5
	for pos < len(words) {
		count := int(words[pos] >> 16)
		if count == 0 || pos+count > len(words) {
			t.Fatalf("malformed instruction at word %d", pos)
		}
		ops = append(ops, OpCode(words[pos]&0xffff))
		pos += count
	}
	return ops
}

func countOp(ops []OpCode, op OpCode) int {
	n := 0
	for _, o := range ops {
		if o == op {
			n++
		}
	}
	return n
}

// =============================================================================
// Test: Compiling a minimal vertex module
// =============================================================================

func TestBackend_CompileVertex(t *testing.T) {
	words, err := NewBackend(DefaultOptions()).Compile(vertexModule())
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	if words[0] != MagicNumber {
		t.Errorf("magic = %#08x, want %#08x", words[0], uint32(MagicNumber))
	}
	if words[1] != 0x00010000 {
		t.Errorf("version word = %#08x, want SPIR-V 1.0", words[1])
	}

	ops := opcodes(t, words)
	for _, required := range []OpCode{
		OpCapability, OpExtInstImport, OpMemoryModel, OpEntryPoint,
		OpTypeFloat, OpTypeVector, OpTypePointer, OpVariable,
		OpFunction, OpLabel, OpLoad, OpCompositeConstruct, OpStore,
		OpReturn, OpFunctionEnd,
	} {
		if countOp(ops, required) == 0 {
			t.Errorf("compiled module is missing opcode %d", required)
		}
	}
}

// =============================================================================
// Test: Instruction ordering follows the logical layout
// =============================================================================

func TestBackend_SectionOrder(t *testing.T) {
	words, err := NewBackend(DefaultOptions()).Compile(vertexModule())
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	ops := opcodes(t, words)

	index := func(op OpCode) int {
		for i, o := range ops {
			if o == op {
				return i
			}
		}
		return -1
	}

	order := []OpCode{OpCapability, OpMemoryModel, OpEntryPoint, OpName, OpDecorate, OpTypeFloat, OpFunction}
	for i := 1; i < len(order); i++ {
		a, b := index(order[i-1]), index(order[i])
		if a < 0 || b < 0 {
			t.Fatalf("opcode %d or %d not found", order[i-1], order[i])
		}
		if a > b {
			t.Errorf("opcode %d at %d should precede opcode %d at %d", order[i-1], a, order[i], b)
		}
	}
}

// =============================================================================
// Test: Vertex stages get no execution modes, fragments get OriginUpperLeft
// =============================================================================

func TestBackend_FragmentExecutionMode(t *testing.T) {
	module := vertexModule()
	words, err := NewBackend(DefaultOptions()).Compile(module)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if countOp(opcodes(t, words), OpExecutionMode) != 0 {
		t.Error("vertex module should carry no execution modes")
	}
}

// =============================================================================
// Test: Multiplication opcodes follow the operand shapes
// =============================================================================

func TestBackend_VectorTimesScalar(t *testing.T) {
	// gl_Position = vec4(position * 2.0, 1.0);
	module := vertexModule()
	module.Functions[0] = ir.Function{
		Name: "main",
		Expressions: []ir.Expression{
			{Kind: ir.ExprGlobalVariable{Variable: 1}},    // 0: &gl_Position
			{Kind: ir.ExprGlobalVariable{Variable: 0}},    // 1: &position
			{Kind: ir.ExprLoad{Pointer: 1}},               // 2
			{Kind: ir.Literal{Value: ir.LiteralF32(2.0)}}, // 3
			{Kind: ir.ExprBinary{Op: ir.BinaryMul, Left: 2, Right: 3}}, // 4
			{Kind: ir.Literal{Value: ir.LiteralF32(1.0)}},              // 5
			{Kind: ir.ExprCompose{Type: 2, Components: []ir.ExpressionHandle{4, 5}}}, // 6
		},
		ExpressionTypes: []ir.TypeHandle{4, 3, 1, 0, 1, 0, 2},
		Body: []ir.Statement{
			{Kind: ir.StmtEmit{Range: ir.Range{Start: 0, End: 7}}},
			{Kind: ir.StmtStore{Pointer: 0, Value: 6}},
			{Kind: ir.StmtReturn{}},
		},
	}

	words, err := NewBackend(DefaultOptions()).Compile(module)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	ops := opcodes(t, words)
	if got := countOp(ops, OpVectorTimesScalar); got != 1 {
		t.Errorf("got %d OpVectorTimesScalar instructions, want 1", got)
	}
	if got := countOp(ops, OpFMul); got != 0 {
		t.Errorf("got %d OpFMul instructions, want 0", got)
	}
}

// =============================================================================
// Test: Types are deduplicated
// =============================================================================

func TestBackend_TypeDeduplication(t *testing.T) {
	module := vertexModule()
	// Two IR entries with the same inner type must share one result id.
	module.Types = append(module.Types, ir.Type{Inner: ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}})

	words, err := NewBackend(DefaultOptions()).Compile(module)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if got := countOp(opcodes(t, words), OpTypeFloat); got != 1 {
		t.Errorf("got %d OpTypeFloat instructions, want 1", got)
	}
}
