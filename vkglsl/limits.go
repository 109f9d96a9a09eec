package vkglsl

// Limits is the fixed resource-limit profile the front end parses
// under. It plays the role glslang's TBuiltInResource table plays for
// the reference tooling: a collaborator-supplied table of caps that
// the parser enforces but never mutates.
type Limits struct {
	// MaxVertexAttribs caps vertex input locations.
	MaxVertexAttribs uint32
	// MaxDrawBuffers caps fragment output locations.
	MaxDrawBuffers uint32
	// MaxVaryingVectors caps vertex-output / fragment-input locations.
	MaxVaryingVectors uint32
	// MaxCombinedTextureImageUnits caps texture and sampler bindings.
	MaxCombinedTextureImageUnits uint32
	// MaxUniformBufferBindings caps uniform block bindings.
	MaxUniformBufferBindings uint32
	// MaxUniformBlockMembers caps the member count of a uniform block.
	MaxUniformBlockMembers int
	// MaxDescriptorSets caps the set index of any resource.
	MaxDescriptorSets uint32
}

// DefaultLimits returns the default resource-limit profile. The values
// follow the defaults shipped with common driver stacks.
func DefaultLimits() Limits {
	return Limits{
		MaxVertexAttribs:             64,
		MaxDrawBuffers:               32,
		MaxVaryingVectors:            8,
		MaxCombinedTextureImageUnits: 80,
		MaxUniformBufferBindings:     16,
		MaxUniformBlockMembers:       64,
		MaxDescriptorSets:            4,
	}
}
