package glslcross

import "strings"

// The textual patches below run after GLSL emission. Each one is
// idempotent: running a patch twice leaves the source unchanged.

// commentOutBlockDeclaration comments out the dead uniform declaration
// left behind by flattening, e.g. "uniform Frame UnusedVS;".
func commentOutBlockDeclaration(source, blockType, marker string) string {
	needle := "uniform " + blockType + " " + marker
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, needle) {
			lines[i] = "//" + line
		}
	}
	return strings.Join(lines, "\n")
}

// stripBlockAccesses removes every access through the dead block
// instance, turning "UnusedVS.color" into "color" so the reference
// resolves to the flat uniform instead. Removal repeats until no
// occurrence remains.
func stripBlockAccesses(source, marker string) string {
	needle := marker + "."
	for strings.Contains(source, needle) {
		source = strings.ReplaceAll(source, needle, "")
	}
	return source
}

// stripVersionDirective removes a leading #version line. WebGL-style
// loaders prepend their own directive.
func stripVersionDirective(source string) string {
	if !strings.HasPrefix(source, "#version") {
		return source
	}
	if i := strings.IndexByte(source, '\n'); i >= 0 {
		return source[i+1:]
	}
	return ""
}

// removeFragmentOutputDeclaration drops the declaration line of the
// named fragment output. The builtin gl_FragColor needs no
// declaration.
func removeFragmentOutputDeclaration(source, name string) string {
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		if strings.Contains(line, "out ") && strings.HasSuffix(strings.TrimRight(line, " "), " "+name+";") {
			lines = append(lines[:i], lines[i+1:]...)
			break
		}
	}
	return strings.Join(lines, "\n")
}

// rewriteFragmentOutput replaces every use of the named fragment
// output with gl_FragColor.
func rewriteFragmentOutput(source, name string) string {
	return strings.ReplaceAll(source, name, "gl_FragColor")
}
