package glslcross

import (
	"fmt"

	"github.com/gogpu/glslcross/glsl"
	"github.com/gogpu/glslcross/ir"
	"github.com/gogpu/glslcross/spirv"
)

// Stage-specific names given to the flattened uniform block instance.
// The textual patcher finds the dead declaration and its member
// accesses through these markers.
const (
	markerVertex   = "UnusedVS"
	markerFragment = "UnusedFS"
)

func stageMarker(stage ir.ShaderStage) string {
	if stage == ir.StageVertex {
		return markerVertex
	}
	return markerFragment
}

// flattenUniformBlock rewrites the stage's single uniform block into
// flat plain uniforms. Each member becomes a header-line declaration
// under its member name, the block instance is renamed to the stage
// marker, and its binding decoration is removed so the dead
// declaration claims no resource slot. Returns the block's type name
// for the textual patcher.
func flattenUniformBlock(refl *glsl.Compiler, stage ir.ShaderStage) (string, error) {
	resources := refl.ShaderResources()
	if len(resources.UniformBuffers) != 1 {
		return "", &UniformBlockCountError{Stage: stage, Count: len(resources.UniformBuffers)}
	}

	buffer := resources.UniformBuffers[0]
	blockType := refl.Name(buffer.BaseTypeID)
	info := refl.Type(buffer.BaseTypeID)

	for i, memberType := range info.Members {
		member := refl.Type(memberType)
		name := refl.MemberName(buffer.BaseTypeID, uint32(i))
		switch {
		case member.BaseType == glsl.BaseTypeFloat && member.Columns == 1 && member.VecSize == 4:
			refl.AddHeaderLine(fmt.Sprintf("uniform vec4 %s;", name))
		case member.BaseType == glsl.BaseTypeFloat && member.Columns == 4 && member.VecSize == 4:
			refl.AddHeaderLine(fmt.Sprintf("uniform mat4 %s;", name))
		default:
			return "", &UnsupportedUniformTypeError{
				Stage:   stage,
				Block:   blockType,
				Member:  name,
				Columns: member.Columns,
				Rows:    member.VecSize,
			}
		}
	}

	refl.SetName(buffer.ID, stageMarker(stage))
	refl.UnsetDecoration(buffer.ID, spirv.DecorationBinding)
	return blockType, nil
}

// remapCombinedSamplers gives every combined image/sampler the name and
// binding of its separate sampler, so the GL program exposes the same
// sampler interface the Vulkan-style source declared.
func remapCombinedSamplers(refl *glsl.Compiler) {
	for _, combined := range refl.CombinedImageSamplers() {
		refl.SetName(combined.CombinedID, refl.Name(combined.SamplerID))
		refl.SetDecoration(combined.CombinedID, spirv.DecorationBinding,
			refl.Decoration(combined.SamplerID, spirv.DecorationBinding))
	}
}
