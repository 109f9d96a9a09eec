package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gogpu/glslcross"
)

var (
	compileDialect string
	compileOutDir  string
	compileName    string
	compileReflect bool
)

func init() {
	compileCmd.Flags().StringVar(&compileDialect, "dialect", "gl430", "output dialect (gl430|es300)")
	compileCmd.Flags().StringVarP(&compileOutDir, "out-dir", "o", ".", "output directory")
	compileCmd.Flags().StringVar(&compileName, "name", "", "output base name (default: vertex file name)")
	compileCmd.Flags().BoolVar(&compileReflect, "reflect", false, "write a msgpack reflection sidecar per stage")
}

var compileCmd = &cobra.Command{
	Use:   "compile [flags] <vertex> <fragment>",
	Short: "Translate one vertex/fragment shader pair",
	Args:  cobra.ExactArgs(2),
	RunE:  compileExecution,
}

func parseDialect(name string) (glslcross.Dialect, error) {
	switch name {
	case "gl430":
		return glslcross.DialectOpenGL430, nil
	case "es300":
		return glslcross.DialectOpenGLES300, nil
	default:
		return 0, fmt.Errorf("unknown dialect %q (expected gl430 or es300)", name)
	}
}

func compileExecution(cmd *cobra.Command, args []string) error {
	dialect, err := parseDialect(compileDialect)
	if err != nil {
		return err
	}

	name := compileName
	if name == "" {
		base := filepath.Base(args[0])
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return err
	}

	result, err := compilePair(args[0], args[1], dialect)
	if err != nil {
		return err
	}
	if err := writeShaderOutputs(compileOutDir, name, result, compileReflect); err != nil {
		return err
	}

	if !quiet {
		successColor := color.New(color.FgGreen)
		successColor.Fprintf(cmd.OutOrStdout(), "compiled %s + %s -> %s\n",
			args[0], args[1], filepath.Join(compileOutDir, name+".{vert,frag}.glsl"))
	}
	return nil
}

// pairResult holds both stage results of one translated shader pair.
type pairResult struct {
	Vertex   glslcross.ShaderInfo
	Fragment glslcross.ShaderInfo
}

func compilePair(vertexPath, fragmentPath string, dialect glslcross.Dialect) (pairResult, error) {
	vertexSource, err := os.ReadFile(vertexPath)
	if err != nil {
		return pairResult{}, err
	}
	fragmentSource, err := os.ReadFile(fragmentPath)
	if err != nil {
		return pairResult{}, err
	}

	pipeline, err := glslcross.New(glslcross.Options{Dialect: dialect})
	if err != nil {
		return pairResult{}, err
	}
	defer pipeline.Close()

	var result pairResult
	err = pipeline.Compile(string(vertexSource), string(fragmentSource),
		func(vertex, fragment glslcross.ShaderInfo) {
			result = pairResult{Vertex: vertex, Fragment: fragment}
		})
	if err != nil {
		return pairResult{}, err
	}
	return result, nil
}

func writeShaderOutputs(dir, name string, result pairResult, reflect bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writeFileAtomic(filepath.Join(dir, name+".vert.glsl"), result.Vertex.Source); err != nil {
		return err
	}
	if err := writeFileAtomic(filepath.Join(dir, name+".frag.glsl"), result.Fragment.Source); err != nil {
		return err
	}
	if !reflect {
		return nil
	}
	if err := writeReflectionSidecar(filepath.Join(dir, name+".vert.refl.mp"), result.Vertex.Reflection); err != nil {
		return err
	}
	return writeReflectionSidecar(filepath.Join(dir, name+".frag.refl.mp"), result.Fragment.Reflection)
}

// writeFileAtomic writes through a temp file and renames, so partial
// output never replaces a previous build artifact.
func writeFileAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	name := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(name)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return err
	}
	return os.Rename(name, path)
}
