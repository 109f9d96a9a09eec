// Package snapshot_test provides golden snapshot tests for the full
// translation pipeline.
//
// For each vertex/fragment pair in testdata/in/, the test compiles the
// pair through every output dialect and compares the patched sources to
// golden files stored in testdata/golden/{gl430,es300}/.
//
// To regenerate golden files after intentional changes:
//
//	UPDATE_GOLDEN=1 go test ./snapshot/...
package snapshot_test

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/gogpu/glslcross"
)

// ---------------------------------------------------------------------------
// Test Runner
// ---------------------------------------------------------------------------

// shaderPair is one vertex/fragment input pair loaded from disk.
type shaderPair struct {
	name     string // base name without extension (e.g., "textured_quad")
	vertex   string
	fragment string
}

var dialects = []struct {
	name    string
	dialect glslcross.Dialect
}{
	{"gl430", glslcross.DialectOpenGL430},
	{"es300", glslcross.DialectOpenGLES300},
}

// TestSnapshots is the main golden snapshot test. It loads all input
// pairs, compiles each through every dialect, and compares with golden
// files.
func TestSnapshots(t *testing.T) {
	pairs := loadInputPairs(t, filepath.Join("testdata", "in"))
	if len(pairs) == 0 {
		t.Fatal("no input shader pairs found in testdata/in/")
	}

	for i := range pairs {
		pair := &pairs[i]
		t.Run(pair.name, func(t *testing.T) {
			for _, d := range dialects {
				t.Run(d.name, func(t *testing.T) {
					vertex, fragment := compilePair(t, pair, d.dialect)
					dir := filepath.Join("testdata", "golden", d.name)
					compareGolden(t, filepath.Join(dir, pair.name+".vert.glsl"), vertex)
					compareGolden(t, filepath.Join(dir, pair.name+".frag.glsl"), fragment)
				})
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Shader Loading
// ---------------------------------------------------------------------------

// loadInputPairs reads all .vert files from the given directory and
// pairs each with the .frag file of the same base name.
func loadInputPairs(t *testing.T, dir string) []shaderPair {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read input directory %q: %v", dir, err)
	}

	var pairs []shaderPair
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".vert") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".vert")
		vertex, readErr := os.ReadFile(filepath.Join(dir, entry.Name()))
		if readErr != nil {
			t.Fatalf("read shader %q: %v", entry.Name(), readErr)
		}
		fragment, readErr := os.ReadFile(filepath.Join(dir, name+".frag"))
		if readErr != nil {
			t.Fatalf("read fragment for %q: %v", name, readErr)
		}
		pairs = append(pairs, shaderPair{
			name:     name,
			vertex:   string(vertex),
			fragment: string(fragment),
		})
	}

	// Sort for deterministic test order
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].name < pairs[j].name
	})

	return pairs
}

// ---------------------------------------------------------------------------
// Compilation
// ---------------------------------------------------------------------------

func compilePair(t *testing.T, pair *shaderPair, dialect glslcross.Dialect) (string, string) {
	t.Helper()

	pipeline, err := glslcross.New(glslcross.Options{Dialect: dialect})
	if err != nil {
		t.Fatalf("[%s] New failed: %v", pair.name, err)
	}
	defer pipeline.Close()

	var vertex, fragment string
	err = pipeline.Compile(pair.vertex, pair.fragment,
		func(v, f glslcross.ShaderInfo) {
			vertex = string(v.Source)
			fragment = string(f.Source)
		})
	if err != nil {
		t.Fatalf("[%s] compile failed: %v", pair.name, err)
	}
	return vertex, fragment
}

// ---------------------------------------------------------------------------
// Golden File Comparison
// ---------------------------------------------------------------------------

// compareGolden compares actual output with the golden file at path.
// If UPDATE_GOLDEN is set, writes actual output as the new golden file.
func compareGolden(t *testing.T, path, actual string) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDEN") != "" {
		if mkErr := os.MkdirAll(filepath.Dir(path), 0o755); mkErr != nil {
			t.Fatalf("create golden dir: %v", mkErr)
		}
		if wErr := os.WriteFile(path, []byte(actual), 0o644); wErr != nil {
			t.Fatalf("write golden file: %v", wErr)
		}
		t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		t.Fatalf("golden file missing: %s\nRun with UPDATE_GOLDEN=1 to create.\n\nActual output:\n%s", path, actual)
	}
	if err != nil {
		t.Fatalf("read golden file %s: %v", path, err)
	}

	// Normalize line endings for cross-platform comparison.
	// Git may convert \n to \r\n on Windows checkout.
	expectedStr := strings.ReplaceAll(string(expected), "\r\n", "\n")
	actualStr := strings.ReplaceAll(actual, "\r\n", "\n")

	if expectedStr != actualStr {
		t.Errorf("output differs from golden %s:\n%s", path, diffStrings(expectedStr, actualStr))
	}
}

// diffStrings produces a simple line-by-line diff showing the first
// difference and surrounding context.
func diffStrings(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")

	maxLines := len(expectedLines)
	if len(actualLines) > maxLines {
		maxLines = len(actualLines)
	}

	firstDiff := -1
	for i := 0; i < maxLines; i++ {
		var eLine, aLine string
		if i < len(expectedLines) {
			eLine = expectedLines[i]
		}
		if i < len(actualLines) {
			aLine = actualLines[i]
		}
		if eLine != aLine {
			firstDiff = i
			break
		}
	}
	if firstDiff < 0 {
		return "(no difference found)"
	}

	const contextLines = 3
	start := firstDiff - contextLines
	if start < 0 {
		start = 0
	}
	end := firstDiff + contextLines
	if end > maxLines {
		end = maxLines
	}

	var sb strings.Builder
	for i := start; i < end; i++ {
		var eLine, aLine string
		if i < len(expectedLines) {
			eLine = expectedLines[i]
		}
		if i < len(actualLines) {
			aLine = actualLines[i]
		}
		if eLine == aLine {
			sb.WriteString("  " + eLine + "\n")
		} else {
			sb.WriteString("- " + eLine + "\n")
			sb.WriteString("+ " + aLine + "\n")
		}
	}
	return sb.String()
}
