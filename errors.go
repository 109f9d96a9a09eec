package glslcross

import (
	"fmt"

	"github.com/gogpu/glslcross/ir"
)

// UnsupportedUniformTypeError reports a uniform block member whose
// shape cannot be flattened. Only vec4 and mat4 members are supported.
type UnsupportedUniformTypeError struct {
	Stage   ir.ShaderStage
	Block   string
	Member  string
	Columns uint32
	Rows    uint32
}

func (e *UnsupportedUniformTypeError) Error() string {
	return fmt.Sprintf("%s stage: uniform block %q member %q has shape %dx%d, only vec4 and mat4 are supported",
		e.Stage, e.Block, e.Member, e.Columns, e.Rows)
}

// UniformBlockCountError reports a stage that does not declare exactly
// one uniform block.
type UniformBlockCountError struct {
	Stage ir.ShaderStage
	Count int
}

func (e *UniformBlockCountError) Error() string {
	return fmt.Sprintf("%s stage: expected exactly one uniform block, found %d", e.Stage, e.Count)
}
