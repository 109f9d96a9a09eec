package glslcross

import "testing"

// =============================================================================
// Test: Every textual patch is idempotent
// =============================================================================

func TestCommentOutBlockDeclaration(t *testing.T) {
	source := "uniform vec4 color;\nuniform Frame UnusedVS;\nvoid main()\n"
	want := "uniform vec4 color;\n//uniform Frame UnusedVS;\nvoid main()\n"

	got := commentOutBlockDeclaration(source, "Frame", "UnusedVS")
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
	if again := commentOutBlockDeclaration(got, "Frame", "UnusedVS"); again != want {
		t.Errorf("second application changed the source:\n%s", again)
	}
}

func TestStripBlockAccesses(t *testing.T) {
	source := "gl_Position = (UnusedVS.worldMatrix * UnusedVS.color);\n"
	want := "gl_Position = (worldMatrix * color);\n"

	got := stripBlockAccesses(source, "UnusedVS")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if again := stripBlockAccesses(got, "UnusedVS"); again != want {
		t.Errorf("second application changed the source: %q", again)
	}
}

func TestStripBlockAccesses_Nested(t *testing.T) {
	// Removal that uncovers another occurrence keeps going.
	source := "x = UnusedFSUnusedFS..color;\n"
	got := stripBlockAccesses(source, "UnusedFS")
	if got != "x = color;\n" {
		t.Errorf("got %q", got)
	}
}

func TestStripVersionDirective(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"with directive", "#version 300 es\nvoid main()\n", "void main()\n"},
		{"without directive", "void main()\n", "void main()\n"},
		{"directive only", "#version 300 es", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripVersionDirective(tt.source)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if again := stripVersionDirective(got); again != got {
				t.Errorf("second application changed the source: %q", again)
			}
		})
	}
}

func TestRemoveFragmentOutputDeclaration(t *testing.T) {
	source := "layout(location = 0) out highp vec4 glFragColor;\nvoid main()\n{\n    glFragColor = c;\n}\n"
	want := "void main()\n{\n    glFragColor = c;\n}\n"

	got := removeFragmentOutputDeclaration(source, "glFragColor")
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
	if again := removeFragmentOutputDeclaration(got, "glFragColor"); again != want {
		t.Errorf("second application changed the source:\n%s", again)
	}
}

func TestRewriteFragmentOutput(t *testing.T) {
	source := "glFragColor = a;\nglFragColor.x = b;\n"
	want := "gl_FragColor = a;\ngl_FragColor.x = b;\n"

	got := rewriteFragmentOutput(source, "glFragColor")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
