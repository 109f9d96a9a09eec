package vkglsl

import (
	"strings"
	"testing"

	"github.com/gogpu/glslcross/ir"
)

const linkVertexSource = `#version 450
layout(location = 0) in vec3 position;
layout(location = 0) out vec2 vUV;
layout(location = 1) out vec3 vNormal;
void main()
{
    gl_Position = vec4(position, 1.0);
    vUV = vec2(0.0, 0.0);
    vNormal = position;
}
`

func linkModules(t *testing.T, vertexSource, fragmentSource string) error {
	t.Helper()
	vertex := parseSource(t, vertexSource, ir.StageVertex)
	fragment := parseSource(t, fragmentSource, ir.StageFragment)
	_, err := Link(vertex, fragment)
	return err
}

// =============================================================================
// Test: A matching pair links
// =============================================================================

func TestLink_Matching(t *testing.T) {
	fragment := `#version 450
layout(location = 0) in vec2 vUV;
layout(location = 1) in vec3 vNormal;
layout(location = 0) out vec4 result;
void main()
{
    result = vec4(vUV, vNormal.x, 1.0);
}
`
	if err := linkModules(t, linkVertexSource, fragment); err != nil {
		t.Errorf("Link() error: %v", err)
	}
}

// =============================================================================
// Test: Interface mismatches fail with a LinkError
// =============================================================================

func TestLink_Failures(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		contains string
	}{
		{
			"missing vertex output",
			`#version 450
layout(location = 5) in vec2 vUV;
layout(location = 0) out vec4 result;
void main()
{
    result = vec4(vUV, 0.0, 1.0);
}
`,
			"no matching vertex output",
		},
		{
			"type mismatch",
			`#version 450
layout(location = 0) in vec3 vUV;
layout(location = 0) out vec4 result;
void main()
{
    result = vec4(vUV, 1.0);
}
`,
			"vec2 in the vertex stage but vec3",
		},
		{
			"missing main",
			`#version 450
layout(location = 0) out vec4 result;
void helper()
{
    result = vec4(1.0, 1.0, 1.0, 1.0);
}
`,
			"does not define main",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := linkModules(t, linkVertexSource, tt.fragment)
			if err == nil {
				t.Fatal("expected a link error")
			}
			if _, ok := err.(*LinkError); !ok {
				t.Errorf("error %T is not a LinkError", err)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.contains)
			}
		})
	}
}

// =============================================================================
// Test: Shared block type names must agree member for member
// =============================================================================

func TestLink_BlockMemberMismatch(t *testing.T) {
	vertex := `#version 450
layout(location = 0) in vec3 position;
layout(set = 0, binding = 0) uniform Frame
{
    vec4 color;
} frameData;
void main()
{
    gl_Position = vec4(position, 1.0) + frameData.color;
}
`
	fragment := `#version 450
layout(location = 0) out vec4 result;
layout(set = 0, binding = 0) uniform Frame
{
    mat4 worldMatrix;
} frameData;
void main()
{
    result = frameData.worldMatrix[0];
}
`
	err := linkModules(t, vertex, fragment)
	if err == nil {
		t.Fatal("expected a link error")
	}
	if !strings.Contains(err.Error(), "Frame") {
		t.Errorf("error %q does not name the block", err.Error())
	}
}

// =============================================================================
// Test: Duplicate vertex output locations
// =============================================================================

func TestLink_DuplicateOutputLocation(t *testing.T) {
	vertex := `#version 450
layout(location = 0) in vec3 position;
layout(location = 0) out vec2 a;
layout(location = 0) out vec2 b;
void main()
{
    gl_Position = vec4(position, 1.0);
    a = vec2(0.0, 0.0);
    b = vec2(1.0, 1.0);
}
`
	fragment := `#version 450
layout(location = 0) out vec4 result;
void main()
{
    result = vec4(1.0, 0.0, 0.0, 1.0);
}
`
	err := linkModules(t, vertex, fragment)
	if err == nil {
		t.Fatal("expected a link error")
	}
	if !strings.Contains(err.Error(), "location 0") {
		t.Errorf("error %q does not name the location", err.Error())
	}
}
