// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"strings"
	"testing"

	"github.com/gogpu/glslcross/ir"
	"github.com/gogpu/glslcross/spirv"
)

// =============================================================================
// Test: Version strings
// =============================================================================

func TestVersion_String(t *testing.T) {
	tests := []struct {
		version Version
		want    string
	}{
		{Version430, "430 core"},
		{VersionES300, "300 es"},
		{Version{Major: 3, Minor: 1, ES: true}, "310 es"},
		{Version{Major: 4, Minor: 6}, "460 core"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := tt.version.String()
			if got != tt.want {
				t.Errorf("Version.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// =============================================================================
// Test helpers
// =============================================================================

func mustContainGLSL(t *testing.T, source, expected string) {
	t.Helper()
	if !strings.Contains(source, expected) {
		t.Errorf("Expected output to contain %q.\nOutput:\n%s", expected, source)
	}
}

// fragmentModule builds the IR for this Vulkan-style fragment shader:
//
//	layout(location = 0) in vec2 vUV;
//	layout(location = 0) out vec4 glFragColor;
//	layout(set = 0, binding = 0) uniform Frame
//	{
//	    vec4 color;
//	    mat4 worldMatrix;
//	} frameData;
//	layout(set = 0, binding = 1) uniform texture2D diffuseTexture;
//	layout(set = 0, binding = 2) uniform sampler mySampler;
//	void main()
//	{
//	    glFragColor = texture(sampler2D(diffuseTexture, mySampler), vUV) * frameData.color;
//	}
func fragmentModule() *ir.Module {
	f32 := ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}

	types := []ir.Type{
		{Inner: f32},                                       // 0
		{Inner: ir.VectorType{Size: ir.Vec2, Scalar: f32}}, // 1
		{Inner: ir.VectorType{Size: ir.Vec4, Scalar: f32}}, // 2
		{Inner: ir.MatrixType{Columns: ir.Vec4, Rows: ir.Vec4, Scalar: f32}}, // 3
		{Name: "Frame", Inner: ir.StructType{ // 4
			Members: []ir.StructMember{
				{Name: "color", Type: 2, Offset: 0},
				{Name: "worldMatrix", Type: 3, Offset: 16},
			},
			Span: 80,
		}},
		{Inner: ir.PointerType{Base: 4, Space: ir.SpaceUniform}}, // 5
		{Inner: ir.SamplerType{}},                                // 6
		{Inner: ir.ImageType{Dim: ir.Dim2D}},                     // 7
		{Inner: ir.PointerType{Base: 1, Space: ir.SpaceInput}},   // 8
		{Inner: ir.PointerType{Base: 2, Space: ir.SpaceOutput}},  // 9
		{Inner: ir.PointerType{Base: 2, Space: ir.SpaceUniform}}, // 10
	}

	globals := []ir.GlobalVariable{
		{Name: "frameData", Space: ir.SpaceUniform, Resource: &ir.ResourceBinding{Set: 0, Binding: 0}, Type: 4},
		{Name: "diffuseTexture", Space: ir.SpaceHandle, Resource: &ir.ResourceBinding{Set: 0, Binding: 1}, Type: 7},
		{Name: "mySampler", Space: ir.SpaceHandle, Resource: &ir.ResourceBinding{Set: 0, Binding: 2}, Type: 6},
		{Name: "vUV", Space: ir.SpaceInput, IO: ir.LocationBinding{Location: 0}, Type: 1},
		{Name: "glFragColor", Space: ir.SpaceOutput, IO: ir.LocationBinding{Location: 0}, Type: 2},
	}

	main := ir.Function{
		Name: "main",
		Expressions: []ir.Expression{
			{Kind: ir.ExprGlobalVariable{Variable: 4}}, // 0: &glFragColor
			{Kind: ir.ExprGlobalVariable{Variable: 1}}, // 1: diffuseTexture
			{Kind: ir.ExprGlobalVariable{Variable: 2}}, // 2: mySampler
			{Kind: ir.ExprGlobalVariable{Variable: 3}}, // 3: &vUV
			{Kind: ir.ExprLoad{Pointer: 3}},            // 4
			{Kind: ir.ExprImageSample{Image: 1, Sampler: 2, Coordinate: 4}}, // 5
			{Kind: ir.ExprGlobalVariable{Variable: 0}},                      // 6: &frameData
			{Kind: ir.ExprAccessIndex{Base: 6, Index: 0}},                   // 7: &frameData.color
			{Kind: ir.ExprLoad{Pointer: 7}},                                 // 8
			{Kind: ir.ExprBinary{Op: ir.BinaryMul, Left: 5, Right: 8}},      // 9
		},
		ExpressionTypes: []ir.TypeHandle{9, 7, 6, 8, 1, 2, 5, 10, 2, 2},
		Body: []ir.Statement{
			{Kind: ir.StmtEmit{Range: ir.Range{Start: 0, End: 10}}},
			{Kind: ir.StmtStore{Pointer: 0, Value: 9}},
			{Kind: ir.StmtReturn{}},
		},
	}

	return &ir.Module{
		Types:           types,
		GlobalVariables: globals,
		Functions:       []ir.Function{main},
		EntryPoint:      ir.EntryPoint{Name: "main", Stage: ir.StageFragment, Function: 0},
	}
}

func compileFragmentWords(t *testing.T) []uint32 {
	t.Helper()
	words, err := spirv.NewBackend(spirv.DefaultOptions()).Compile(fragmentModule())
	if err != nil {
		t.Fatalf("spirv Compile() error: %v", err)
	}
	return words
}

// =============================================================================
// Test: Decoding rejects malformed binaries
// =============================================================================

func TestNewCompiler_BadInput(t *testing.T) {
	if _, err := NewCompiler([]uint32{1, 2, 3}); err == nil {
		t.Error("expected an error for a truncated module")
	}
	if _, err := NewCompiler([]uint32{0xdeadbeef, 0, 0, 10, 0}); err == nil {
		t.Error("expected an error for a bad magic number")
	}
}

// =============================================================================
// Test: Resource reflection
// =============================================================================

func TestCompiler_ShaderResources(t *testing.T) {
	c, err := NewCompiler(compileFragmentWords(t))
	if err != nil {
		t.Fatalf("NewCompiler() error: %v", err)
	}

	resources := c.ShaderResources()
	if len(resources.UniformBuffers) != 1 {
		t.Fatalf("got %d uniform buffers, want 1", len(resources.UniformBuffers))
	}
	if len(resources.SeparateImages) != 1 || len(resources.SeparateSamplers) != 1 {
		t.Fatalf("got %d images and %d samplers, want 1 and 1",
			len(resources.SeparateImages), len(resources.SeparateSamplers))
	}
	if len(resources.StageInputs) != 1 || len(resources.StageOutputs) != 1 {
		t.Fatalf("got %d inputs and %d outputs, want 1 and 1",
			len(resources.StageInputs), len(resources.StageOutputs))
	}

	buffer := resources.UniformBuffers[0]
	if buffer.Name != "frameData" {
		t.Errorf("uniform buffer name = %q, want %q", buffer.Name, "frameData")
	}
	if got := c.Name(buffer.BaseTypeID); got != "Frame" {
		t.Errorf("block type name = %q, want %q", got, "Frame")
	}
	if got := c.MemberName(buffer.BaseTypeID, 0); got != "color" {
		t.Errorf("member 0 = %q, want %q", got, "color")
	}
	if got := c.MemberName(buffer.BaseTypeID, 1); got != "worldMatrix" {
		t.Errorf("member 1 = %q, want %q", got, "worldMatrix")
	}

	info := c.Type(buffer.BaseTypeID)
	if info.BaseType != BaseTypeStruct || len(info.Members) != 2 {
		t.Fatalf("block type info = %+v", info)
	}
	color := c.Type(info.Members[0])
	if color.BaseType != BaseTypeFloat || color.VecSize != 4 || color.Columns != 1 {
		t.Errorf("color shape = %+v, want vec4", color)
	}
	matrix := c.Type(info.Members[1])
	if matrix.VecSize != 4 || matrix.Columns != 4 {
		t.Errorf("worldMatrix shape = %+v, want mat4", matrix)
	}

	sampler := resources.SeparateSamplers[0]
	if got := c.Decoration(sampler.ID, spirv.DecorationBinding); got != 2 {
		t.Errorf("sampler binding = %d, want 2", got)
	}

	byName, ok := c.ResourceByName("mySampler")
	if !ok || byName.ID != sampler.ID {
		t.Errorf("ResourceByName(mySampler) = %+v, %v", byName, ok)
	}
	if _, ok := c.ResourceByName("missing"); ok {
		t.Error("ResourceByName(missing) found a resource")
	}
}

// =============================================================================
// Test: Combined image samplers
// =============================================================================

func TestCompiler_BuildCombinedImageSamplers(t *testing.T) {
	c, err := NewCompiler(compileFragmentWords(t))
	if err != nil {
		t.Fatalf("NewCompiler() error: %v", err)
	}

	c.BuildCombinedImageSamplers()
	combined := c.CombinedImageSamplers()
	if len(combined) != 1 {
		t.Fatalf("got %d combined samplers, want 1", len(combined))
	}

	resources := c.ShaderResources()
	if combined[0].ImageID != resources.SeparateImages[0].ID {
		t.Errorf("ImageID = %d, want %d", combined[0].ImageID, resources.SeparateImages[0].ID)
	}
	if combined[0].SamplerID != resources.SeparateSamplers[0].ID {
		t.Errorf("SamplerID = %d, want %d", combined[0].SamplerID, resources.SeparateSamplers[0].ID)
	}
	if got := c.Name(combined[0].CombinedID); got != "diffuseTexture_mySampler" {
		t.Errorf("combined name = %q, want %q", got, "diffuseTexture_mySampler")
	}
}

// =============================================================================
// Test: Sampling without combined samplers fails
// =============================================================================

func TestCompiler_SeparateSamplerWithoutCombining(t *testing.T) {
	c, err := NewCompiler(compileFragmentWords(t))
	if err != nil {
		t.Fatalf("NewCompiler() error: %v", err)
	}
	if _, err := c.Compile(); err == nil {
		t.Error("expected Compile to fail before BuildCombinedImageSamplers")
	}
}

// =============================================================================
// Test: Desktop emission
// =============================================================================

func TestCompiler_CompileDesktop(t *testing.T) {
	c, err := NewCompiler(compileFragmentWords(t))
	if err != nil {
		t.Fatalf("NewCompiler() error: %v", err)
	}
	c.SetOptions(Options{
		LangVersion:                      Version430,
		EmitUniformBufferAsPlainUniforms: true,
	})
	c.BuildCombinedImageSamplers()
	combined := c.CombinedImageSamplers()[0]
	c.SetName(combined.CombinedID, "mySampler")
	c.SetDecoration(combined.CombinedID, spirv.DecorationBinding, 2)
	c.AddHeaderLine("uniform vec4 color;")

	source, err := c.Compile()
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	t.Logf("output:\n%s", source)

	mustContainGLSL(t, source, "#version 430 core")
	mustContainGLSL(t, source, "uniform vec4 color;")
	mustContainGLSL(t, source, "struct Frame")
	mustContainGLSL(t, source, "uniform Frame frameData;")
	mustContainGLSL(t, source, "layout(binding = 2) uniform sampler2D mySampler;")
	mustContainGLSL(t, source, "layout(location = 0) in vec2 vUV;")
	mustContainGLSL(t, source, "layout(location = 0) out vec4 glFragColor;")
	mustContainGLSL(t, source, "glFragColor = (texture(mySampler, vUV) * frameData.color);")
}

// =============================================================================
// Test: Renames apply to declarations and accesses
// =============================================================================

func TestCompiler_RenameBlockInstance(t *testing.T) {
	c, err := NewCompiler(compileFragmentWords(t))
	if err != nil {
		t.Fatalf("NewCompiler() error: %v", err)
	}
	c.SetOptions(Options{
		LangVersion:                      Version430,
		EmitUniformBufferAsPlainUniforms: true,
	})
	c.BuildCombinedImageSamplers()

	buffer := c.ShaderResources().UniformBuffers[0]
	c.SetName(buffer.ID, "UnusedFS")
	c.UnsetDecoration(buffer.ID, spirv.DecorationBinding)

	source, err := c.Compile()
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	mustContainGLSL(t, source, "uniform Frame UnusedFS;")
	mustContainGLSL(t, source, "UnusedFS.color")
}

// =============================================================================
// Test: ES emission
// =============================================================================

func TestCompiler_CompileES(t *testing.T) {
	c, err := NewCompiler(compileFragmentWords(t))
	if err != nil {
		t.Fatalf("NewCompiler() error: %v", err)
	}
	c.SetOptions(Options{
		LangVersion:                      VersionES300,
		EmitUniformBufferAsPlainUniforms: true,
	})
	c.BuildCombinedImageSamplers()

	source, err := c.Compile()
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	t.Logf("output:\n%s", source)

	mustContainGLSL(t, source, "#version 300 es")
	mustContainGLSL(t, source, "precision highp float;")
	mustContainGLSL(t, source, "uniform highp sampler2D")
	mustContainGLSL(t, source, "in highp vec2 vUV;")
	mustContainGLSL(t, source, "layout(location = 0) out highp vec4 glFragColor;")
}

// =============================================================================
// Test: Keyword collisions are escaped
// =============================================================================

func TestEscapeKeyword(t *testing.T) {
	if got := escapeKeyword("sampler"); got != "_sampler" {
		t.Errorf("escapeKeyword(sampler) = %q", got)
	}
	if got := escapeKeyword("color"); got != "color" {
		t.Errorf("escapeKeyword(color) = %q", got)
	}
}
