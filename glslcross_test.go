package glslcross

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/glslcross/spirv"
	"github.com/gogpu/glslcross/vkglsl"
)

const vertexSource = `#version 450
layout(location = 0) in vec3 position;
layout(location = 1) in vec2 uv;
layout(location = 0) out vec2 vUV;
layout(set = 0, binding = 0) uniform Frame
{
    vec4 color;
    mat4 worldMatrix;
} frameData;
void main()
{
    gl_Position = frameData.worldMatrix * vec4(position, 1.0);
    vUV = uv;
}
`

const fragmentSource = `#version 450
layout(location = 0) in vec2 vUV;
layout(location = 0) out vec4 glFragColor;
layout(set = 0, binding = 0) uniform Frame
{
    vec4 color;
    mat4 worldMatrix;
} frameData;
layout(set = 0, binding = 1) uniform texture2D diffuseTexture;
layout(set = 0, binding = 2) uniform sampler mySampler;
void main()
{
    glFragColor = texture(sampler2D(diffuseTexture, mySampler), vUV) * frameData.color;
}
`

func mustContain(t *testing.T, source, expected string) {
	t.Helper()
	if !strings.Contains(source, expected) {
		t.Errorf("Expected output to contain %q.\nOutput:\n%s", expected, source)
	}
}

func mustNotContain(t *testing.T, source, unexpected string) {
	t.Helper()
	if strings.Contains(source, unexpected) {
		t.Errorf("Expected output not to contain %q.\nOutput:\n%s", unexpected, source)
	}
}

func compilePair(t *testing.T, dialect Dialect) (ShaderInfo, ShaderInfo) {
	t.Helper()
	pipeline, err := New(Options{Dialect: dialect})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer pipeline.Close()

	var vertex, fragment ShaderInfo
	calls := 0
	err = pipeline.Compile(vertexSource, fragmentSource, func(v, f ShaderInfo) {
		calls++
		vertex, fragment = v, f
	})
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("callback invoked %d times, want 1", calls)
	}
	return vertex, fragment
}

// =============================================================================
// Test: Desktop OpenGL translation of a full shader pair
// =============================================================================

func TestCompile_OpenGL430(t *testing.T) {
	vertex, fragment := compilePair(t, DialectOpenGL430)
	vs := string(vertex.Source)
	fs := string(fragment.Source)
	t.Logf("vertex:\n%s", vs)
	t.Logf("fragment:\n%s", fs)

	mustContain(t, vs, "#version 430 core")
	mustContain(t, fs, "#version 430 core")

	// The uniform block is flattened into plain uniforms.
	mustContain(t, vs, "uniform vec4 color;")
	mustContain(t, vs, "uniform mat4 worldMatrix;")
	mustContain(t, fs, "uniform vec4 color;")
	mustContain(t, fs, "uniform mat4 worldMatrix;")

	// The dead block declaration survives only as a comment, and no
	// access through it remains.
	mustContain(t, vs, "//uniform Frame UnusedVS")
	mustContain(t, fs, "//uniform Frame UnusedFS")
	mustNotContain(t, vs, "UnusedVS.")
	mustNotContain(t, fs, "UnusedFS.")

	// The combined sampler takes the separate sampler's name and
	// binding.
	mustContain(t, fs, "layout(binding = 2) uniform sampler2D mySampler;")
	mustContain(t, fs, "texture(mySampler, ")

	mustContain(t, vs, "gl_Position")
	mustContain(t, fs, "glFragColor")
}

// =============================================================================
// Test: Combined sampler reflection
// =============================================================================

func TestCompile_CombinedSamplerReflection(t *testing.T) {
	_, fragment := compilePair(t, DialectOpenGL430)

	combined := fragment.Reflection.CombinedImageSamplers()
	if len(combined) != 1 {
		t.Fatalf("got %d combined samplers, want 1", len(combined))
	}
	name := fragment.Reflection.Name(combined[0].CombinedID)
	if name != "mySampler" {
		t.Errorf("combined sampler name = %q, want %q", name, "mySampler")
	}
	binding := fragment.Reflection.Decoration(combined[0].CombinedID, spirv.DecorationBinding)
	if binding != 2 {
		t.Errorf("combined sampler binding = %d, want 2", binding)
	}
}

// =============================================================================
// Test: OpenGL ES translation strips the version and rewrites the
// fragment output
// =============================================================================

func TestCompile_OpenGLES300(t *testing.T) {
	vertex, fragment := compilePair(t, DialectOpenGLES300)
	vs := string(vertex.Source)
	fs := string(fragment.Source)
	t.Logf("vertex:\n%s", vs)
	t.Logf("fragment:\n%s", fs)

	mustNotContain(t, vs, "#version")
	mustNotContain(t, fs, "#version")
	mustContain(t, vs, "precision highp float;")

	mustNotContain(t, fs, "glFragColor")
	mustContain(t, fs, "gl_FragColor")
	mustNotContain(t, fs, "out highp vec4 gl_FragColor")
}

// =============================================================================
// Test: Parse failures report the stage and never invoke the callback
// =============================================================================

func TestCompile_ParseFailure(t *testing.T) {
	pipeline, err := New(Options{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer pipeline.Close()

	called := false
	err = pipeline.Compile("#version 450\nnot a shader", fragmentSource, func(v, f ShaderInfo) {
		called = true
	})
	if err == nil {
		t.Fatal("expected a parse error")
	}
	var parseErr *vkglsl.ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("error %v is not a ParseError", err)
	}
	if !strings.Contains(err.Error(), "vertex stage") {
		t.Errorf("error %q does not name the vertex stage", err)
	}
	if called {
		t.Error("callback invoked on failure")
	}
}

func TestCompile_LinkFailure(t *testing.T) {
	pipeline, err := New(Options{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer pipeline.Close()

	// The fragment input location has no matching vertex output.
	fragment := `#version 450
layout(location = 3) in vec2 vUV;
layout(location = 0) out vec4 glFragColor;
layout(set = 0, binding = 0) uniform Frame
{
    vec4 color;
    mat4 worldMatrix;
} frameData;
void main()
{
    glFragColor = frameData.color;
}
`
	called := false
	err = pipeline.Compile(vertexSource, fragment, func(v, f ShaderInfo) {
		called = true
	})
	if err == nil {
		t.Fatal("expected a link error")
	}
	var linkErr *vkglsl.LinkError
	if !errors.As(err, &linkErr) {
		t.Errorf("error %v is not a LinkError", err)
	}
	if called {
		t.Error("callback invoked on failure")
	}
}

// =============================================================================
// Test: Unsupported uniform member shapes fail without a callback
// =============================================================================

func TestCompile_UnsupportedUniformType(t *testing.T) {
	pipeline, err := New(Options{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer pipeline.Close()

	vertex := `#version 450
layout(location = 0) in vec3 position;
layout(location = 0) out vec2 vUV;
layout(set = 0, binding = 0) uniform Frame
{
    vec2 scale;
} frameData;
void main()
{
    gl_Position = vec4(position, 1.0);
    vUV = frameData.scale;
}
`
	fragment := `#version 450
layout(location = 0) in vec2 vUV;
layout(location = 0) out vec4 glFragColor;
layout(set = 0, binding = 0) uniform Frame
{
    vec2 scale;
} frameData;
void main()
{
    glFragColor = vec4(vUV, frameData.scale);
}
`
	called := false
	err = pipeline.Compile(vertex, fragment, func(v, f ShaderInfo) {
		called = true
	})
	if err == nil {
		t.Fatal("expected an unsupported uniform type error")
	}
	var typeErr *UnsupportedUniformTypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("error %v is not an UnsupportedUniformTypeError", err)
	}
	if typeErr.Member != "scale" {
		t.Errorf("Member = %q, want %q", typeErr.Member, "scale")
	}
	if typeErr.Columns != 1 || typeErr.Rows != 2 {
		t.Errorf("shape = %dx%d, want 1x2", typeErr.Columns, typeErr.Rows)
	}
	if called {
		t.Error("callback invoked on failure")
	}
}

func TestCompile_MissingUniformBlock(t *testing.T) {
	pipeline, err := New(Options{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer pipeline.Close()

	vertex := `#version 450
layout(location = 0) in vec3 position;
void main()
{
    gl_Position = vec4(position, 1.0);
}
`
	fragment := `#version 450
layout(location = 0) out vec4 glFragColor;
void main()
{
    glFragColor = vec4(1.0, 0.0, 0.0, 1.0);
}
`
	err = pipeline.Compile(vertex, fragment, func(v, f ShaderInfo) {})
	if err == nil {
		t.Fatal("expected a uniform block count error")
	}
	var countErr *UniformBlockCountError
	if !errors.As(err, &countErr) {
		t.Fatalf("error %v is not a UniformBlockCountError", err)
	}
	if countErr.Count != 0 {
		t.Errorf("Count = %d, want 0", countErr.Count)
	}
}

// =============================================================================
// Test: Only one Pipeline may be active at a time
// =============================================================================

func TestNew_SingleActivePipeline(t *testing.T) {
	first, err := New(Options{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, err := New(Options{}); err == nil {
		first.Close()
		t.Fatal("expected a second New() to fail while the first is active")
	}
	first.Close()

	second, err := New(Options{})
	if err != nil {
		t.Fatalf("New() after Close() error: %v", err)
	}
	second.Close()
}

func TestPipeline_CompileAfterClose(t *testing.T) {
	pipeline, err := New(Options{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	pipeline.Close()
	pipeline.Close() // idempotent

	if err := pipeline.Compile(vertexSource, fragmentSource, func(v, f ShaderInfo) {}); err == nil {
		t.Fatal("expected Compile on a closed Pipeline to fail")
	}
}
