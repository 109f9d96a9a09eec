package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/glslcross/glsl"
)

func writeManifest(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, "glslcross.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// =============================================================================
// Test: Manifest discovery walks up from nested directories
// =============================================================================

func TestFindManifest(t *testing.T) {
	root := t.TempDir()
	want := writeManifest(t, root, "[package]\nname = \"demo\"\n")

	nested := filepath.Join(root, "shaders", "src")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, ok, err := findManifest(nested)
	if err != nil {
		t.Fatalf("findManifest() error: %v", err)
	}
	if !ok || got != want {
		t.Errorf("findManifest() = %q, %v, want %q, true", got, ok, want)
	}

	_, ok, err = findManifest(t.TempDir())
	if err != nil {
		t.Fatalf("findManifest() error: %v", err)
	}
	if ok {
		t.Error("found a manifest in an empty tree")
	}
}

// =============================================================================
// Test: Config validation and defaults
// =============================================================================

func TestLoadProjectConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `[package]
name = "demo"

[[shader]]
name = "basic"
vertex = "basic.vert"
fragment = "basic.frag"
`)

	cfg, err := loadProjectConfig(path)
	if err != nil {
		t.Fatalf("loadProjectConfig() error: %v", err)
	}
	if cfg.Package.Name != "demo" {
		t.Errorf("package name = %q", cfg.Package.Name)
	}
	if cfg.Output.Dir != "out" || cfg.Output.Dialect != "gl430" {
		t.Errorf("output defaults = %+v", cfg.Output)
	}
	if len(cfg.Shaders) != 1 || cfg.Shaders[0].Name != "basic" {
		t.Errorf("shaders = %+v", cfg.Shaders)
	}
}

func TestLoadProjectConfig_Errors(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		contains string
	}{
		{
			"missing package",
			"[[shader]]\nname = \"a\"\nvertex = \"a.vert\"\nfragment = \"a.frag\"\n",
			"[package]",
		},
		{
			"missing shaders",
			"[package]\nname = \"demo\"\n",
			"[[shader]]",
		},
		{
			"incomplete pair",
			"[package]\nname = \"demo\"\n\n[[shader]]\nname = \"a\"\nvertex = \"a.vert\"\n",
			"fragment",
		},
		{
			"bad dialect",
			"[package]\nname = \"demo\"\n\n[output]\ndialect = \"metal\"\n\n[[shader]]\nname = \"a\"\nvertex = \"a.vert\"\nfragment = \"a.frag\"\n",
			"dialect",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, t.TempDir(), tt.contents)
			_, err := loadProjectConfig(path)
			if err == nil {
				t.Fatal("expected a config error")
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.contains)
			}
		})
	}
}

// =============================================================================
// Test: Reflected type names
// =============================================================================

func TestGLSLTypeString(t *testing.T) {
	tests := []struct {
		info glsl.TypeInfo
		want string
	}{
		{glsl.TypeInfo{BaseType: glsl.BaseTypeFloat, VecSize: 1, Columns: 1}, "float"},
		{glsl.TypeInfo{BaseType: glsl.BaseTypeInt, VecSize: 1, Columns: 1}, "int"},
		{glsl.TypeInfo{BaseType: glsl.BaseTypeFloat, VecSize: 4, Columns: 1}, "vec4"},
		{glsl.TypeInfo{BaseType: glsl.BaseTypeInt, VecSize: 2, Columns: 1}, "ivec2"},
		{glsl.TypeInfo{BaseType: glsl.BaseTypeFloat, VecSize: 4, Columns: 4}, "mat4"},
		{glsl.TypeInfo{BaseType: glsl.BaseTypeFloat, VecSize: 3, Columns: 4}, "mat4x3"},
	}
	for _, tt := range tests {
		if got := glslTypeString(tt.info); got != tt.want {
			t.Errorf("glslTypeString(%+v) = %q, want %q", tt.info, got, tt.want)
		}
	}
}
