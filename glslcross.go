// Package glslcross translates Vulkan-style GLSL shader pairs into
// OpenGL-dialect GLSL plus reflection metadata.
//
// The input is a vertex and a fragment shader written against Vulkan
// binding rules: separate textures and samplers, and a single uniform
// block per stage. The pipeline parses and links the pair, lowers each
// stage through a binary SPIR-V module, cross-compiles it to the
// configured OpenGL dialect, flattens the uniform block into plain
// uniforms, and patches the emitted text so the result loads on GL
// drivers that predate explicit uniform blocks.
//
// Example usage:
//
//	pipeline, err := glslcross.New(glslcross.Options{Dialect: glslcross.DialectOpenGL430})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pipeline.Close()
//
//	err = pipeline.Compile(vertexSource, fragmentSource,
//	    func(vertex, fragment glslcross.ShaderInfo) {
//	        program.Attach(vertex.Source, fragment.Source)
//	    })
package glslcross

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/glslcross/glsl"
	"github.com/gogpu/glslcross/ir"
	"github.com/gogpu/glslcross/spirv"
	"github.com/gogpu/glslcross/vkglsl"
)

// Dialect selects the output GLSL dialect. It is fixed for the
// lifetime of a Pipeline.
type Dialect uint8

// Supported output dialects.
const (
	// DialectOpenGL430 targets desktop OpenGL, "#version 430 core".
	DialectOpenGL430 Dialect = iota
	// DialectOpenGLES300 targets OpenGL ES 3.0, "#version 300 es",
	// with WebGL-style output patching.
	DialectOpenGLES300
)

func (d Dialect) langVersion() glsl.Version {
	if d == DialectOpenGLES300 {
		return glsl.VersionES300
	}
	return glsl.Version430
}

// Options configures a Pipeline.
type Options struct {
	Dialect Dialect
}

// ShaderInfo is the per-stage compilation result handed to the
// Compile callback.
type ShaderInfo struct {
	// Reflection exposes the stage's resources, names, and
	// decorations after flattening and sampler combination.
	Reflection *glsl.Compiler
	// Source is the patched GLSL source ready for the GL driver.
	Source []byte
}

// pipelineActive guards the process-wide translator state. Only one
// Pipeline may exist at a time.
var pipelineActive atomic.Bool

// Pipeline translates shader pairs into one fixed output dialect.
// A Pipeline is not safe for concurrent use.
type Pipeline struct {
	options Options
	closed  bool
}

// New acquires the process-wide translator and returns a Pipeline for
// the configured dialect. It fails if another Pipeline is active: the
// guard is released only by Close, so a Pipeline that is never closed
// blocks every later New for the life of the process.
func New(options Options) (*Pipeline, error) {
	if !pipelineActive.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("glslcross: another Pipeline is active")
	}
	return &Pipeline{options: options}, nil
}

// Close releases the process-wide translator. Close is idempotent;
// the Pipeline cannot compile afterwards.
func (p *Pipeline) Close() {
	if p.closed {
		return
	}
	p.closed = true
	pipelineActive.Store(false)
}

// Compile translates a vertex and fragment shader pair. On success
// onCompiled is invoked exactly once with both stage results; on any
// failure it is never invoked and the error reports the failing stage.
func (p *Pipeline) Compile(vertexSource, fragmentSource string, onCompiled func(vertex, fragment ShaderInfo)) error {
	if p.closed {
		return fmt.Errorf("glslcross: Pipeline is closed")
	}

	vertexMod, err := parseStage(vertexSource, ir.StageVertex)
	if err != nil {
		return err
	}
	fragmentMod, err := parseStage(fragmentSource, ir.StageFragment)
	if err != nil {
		return err
	}
	program, err := vkglsl.Link(vertexMod, fragmentMod)
	if err != nil {
		return err
	}

	vertexInfo, err := p.compileStage(program.Vertex, ir.StageVertex)
	if err != nil {
		return err
	}
	fragmentInfo, err := p.compileStage(program.Fragment, ir.StageFragment)
	if err != nil {
		return err
	}

	onCompiled(vertexInfo, fragmentInfo)
	return nil
}

func parseStage(source string, stage ir.ShaderStage) (*vkglsl.Module, error) {
	tokens, err := vkglsl.NewLexer(source).Tokenize()
	if err != nil {
		return nil, fmt.Errorf("%s stage: %w", stage, err)
	}
	mod, err := vkglsl.NewParser(tokens, stage, vkglsl.DefaultLimits()).Parse()
	if err != nil {
		return nil, fmt.Errorf("%s stage: %w", stage, err)
	}
	return mod, nil
}

// compileStage runs one stage through lowering, SPIR-V encoding,
// cross-compilation, flattening, and textual patching.
func (p *Pipeline) compileStage(mod *vkglsl.Module, stage ir.ShaderStage) (ShaderInfo, error) {
	lowered, err := vkglsl.Lower(mod, stage)
	if err != nil {
		return ShaderInfo{}, fmt.Errorf("%s stage: %w", stage, err)
	}
	words, err := spirv.NewBackend(spirv.DefaultOptions()).Compile(lowered)
	if err != nil {
		return ShaderInfo{}, fmt.Errorf("%s stage: %w", stage, err)
	}

	refl, err := glsl.NewCompiler(words)
	if err != nil {
		return ShaderInfo{}, fmt.Errorf("%s stage: %w", stage, err)
	}
	refl.SetOptions(glsl.Options{
		LangVersion:                      p.options.Dialect.langVersion(),
		EmitUniformBufferAsPlainUniforms: true,
	})

	refl.BuildCombinedImageSamplers()
	remapCombinedSamplers(refl)

	blockType, err := flattenUniformBlock(refl, stage)
	if err != nil {
		return ShaderInfo{}, err
	}

	source, err := refl.Compile()
	if err != nil {
		return ShaderInfo{}, fmt.Errorf("%s stage: %w", stage, err)
	}

	marker := stageMarker(stage)
	source = commentOutBlockDeclaration(source, blockType, marker)
	source = stripBlockAccesses(source, marker)

	if p.options.Dialect == DialectOpenGLES300 {
		source = stripVersionDirective(source)
		if stage == ir.StageFragment {
			if outputs := refl.ShaderResources().StageOutputs; len(outputs) > 0 {
				name := outputs[0].Name
				source = removeFragmentOutputDeclaration(source, name)
				source = rewriteFragmentOutput(source, name)
			}
		}
	}

	return ShaderInfo{Reflection: refl, Source: []byte(source)}, nil
}
