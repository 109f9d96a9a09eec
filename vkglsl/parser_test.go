package vkglsl

import (
	"strings"
	"testing"

	"github.com/gogpu/glslcross/ir"
)

func parseSource(t *testing.T, source string, stage ir.ShaderStage) *Module {
	t.Helper()
	tokens, err := NewLexer(source).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}
	module, err := NewParser(tokens, stage, DefaultLimits()).Parse()
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return module
}

func parseError(t *testing.T, source string, stage ir.ShaderStage) *ParseError {
	t.Helper()
	tokens, err := NewLexer(source).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}
	_, err = NewParser(tokens, stage, DefaultLimits()).Parse()
	if err == nil {
		t.Fatal("expected a parse error")
	}
	perr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("error %T is not a ParseError", err)
	}
	return perr
}

// =============================================================================
// Test: A full vertex stage parses into the expected declarations
// =============================================================================

func TestParser_VertexStage(t *testing.T) {
	source := `#version 450
layout(location = 0) in vec3 position;
layout(location = 0) out vec2 vUV;
layout(set = 0, binding = 0) uniform Frame
{
    vec4 color;
    mat4 worldMatrix;
} frameData;
void main()
{
    gl_Position = frameData.worldMatrix * vec4(position, 1.0);
}
`
	module := parseSource(t, source, ir.StageVertex)

	if module.Version != 450 {
		t.Errorf("Version = %d, want 450", module.Version)
	}
	if len(module.Inputs) != 1 || module.Inputs[0].Name != "position" || module.Inputs[0].Type != TypeVec3 {
		t.Errorf("Inputs = %+v", module.Inputs)
	}
	if len(module.Outputs) != 1 || module.Outputs[0].Name != "vUV" {
		t.Errorf("Outputs = %+v", module.Outputs)
	}

	if len(module.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(module.Blocks))
	}
	block := module.Blocks[0]
	if block.TypeName != "Frame" || block.Instance != "frameData" {
		t.Errorf("block = %q %q", block.TypeName, block.Instance)
	}
	if len(block.Members) != 2 || block.Members[0].Name != "color" || block.Members[1].Type != TypeMat4 {
		t.Errorf("members = %+v", block.Members)
	}
	if block.Layout.Binding == nil || *block.Layout.Binding != 0 {
		t.Errorf("block binding = %v", block.Layout.Binding)
	}

	if module.Function("main") == nil {
		t.Error("main not found")
	}
}

// =============================================================================
// Test: Separate textures and samplers
// =============================================================================

func TestParser_Resources(t *testing.T) {
	source := `#version 450
layout(set = 0, binding = 1) uniform texture2D diffuseTexture;
layout(set = 0, binding = 2) uniform sampler mySampler;
void main()
{
}
`
	module := parseSource(t, source, ir.StageFragment)

	if len(module.Textures) != 1 || module.Textures[0].Name != "diffuseTexture" {
		t.Errorf("Textures = %+v", module.Textures)
	}
	if len(module.Samplers) != 1 || module.Samplers[0].Name != "mySampler" {
		t.Errorf("Samplers = %+v", module.Samplers)
	}
	if *module.Samplers[0].Layout.Binding != 2 {
		t.Errorf("sampler binding = %d, want 2", *module.Samplers[0].Layout.Binding)
	}
}

// =============================================================================
// Test: Statements and expressions
// =============================================================================

func TestParser_FunctionBody(t *testing.T) {
	source := `#version 450
layout(location = 0) in vec2 uv;
layout(location = 0) out vec4 result;
void main()
{
    vec2 flipped = vec2(uv.x, 1.0 - uv.y);
    result = vec4(flipped, 0.0, 1.0);
    return;
}
`
	module := parseSource(t, source, ir.StageFragment)
	main := module.Function("main")
	if main == nil {
		t.Fatal("main not found")
	}
	if len(main.Body) != 3 {
		t.Fatalf("got %d statements, want 3", len(main.Body))
	}

	decl, ok := main.Body[0].(*DeclStmt)
	if !ok || decl.Name != "flipped" || decl.Type != TypeVec2 || decl.Init == nil {
		t.Errorf("statement 0 = %+v", main.Body[0])
	}
	if _, ok := main.Body[1].(*AssignStmt); !ok {
		t.Errorf("statement 1 = %T, want assignment", main.Body[1])
	}
	if _, ok := main.Body[2].(*ReturnStmt); !ok {
		t.Errorf("statement 2 = %T, want return", main.Body[2])
	}
}

// =============================================================================
// Test: Malformed declarations report position and message
// =============================================================================

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		contains string
	}{
		{
			"stray identifier",
			"#version 450\nnot a shader\n",
			"declaration",
		},
		{
			"input without location",
			"#version 450\nin vec3 position;\nvoid main()\n{\n}\n",
			"location",
		},
		{
			"resource without binding",
			"#version 450\nuniform sampler s;\nvoid main()\n{\n}\n",
			"binding",
		},
		{
			"missing semicolon",
			"#version 450\nvoid main()\n{\n    vec2 a = vec2(0.0, 0.0)\n}\n",
			"';'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perr := parseError(t, tt.source, ir.StageVertex)
			if !strings.Contains(perr.Error(), tt.contains) {
				t.Errorf("error %q does not mention %q", perr.Error(), tt.contains)
			}
		})
	}
}

// =============================================================================
// Test: Resource limits are enforced at parse time
// =============================================================================

func TestParser_Limits(t *testing.T) {
	source := `#version 450
layout(location = 99) in vec3 position;
void main()
{
}
`
	perr := parseError(t, source, ir.StageVertex)
	if !strings.Contains(perr.Error(), "limit") {
		t.Errorf("error %q does not mention the limit", perr.Error())
	}
}
