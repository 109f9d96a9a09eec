// Package ir defines the intermediate representation for glslcross.
//
// The IR sits between the Vulkan-flavored GLSL front end (package
// vkglsl) and the binary SPIR-V encoder (package spirv). Each shader
// stage lowers to its own Module.
//
// # Structure
//
// A Module contains:
//   - Types: a type arena referenced by handle
//   - Constants: module-scope constant values
//   - GlobalVariables: uniforms, separate textures and samplers,
//     stage inputs and outputs
//   - Functions: function definitions with SSA expression arenas
//   - EntryPoint: the stage entry point (one per stage module)
//
// Unlike WGSL-style IRs, stage inputs and outputs are modeled as
// module-scope variables in the Input and Output address spaces,
// because GLSL declares them that way rather than through entry-point
// signatures.
//
// # Translation Pipeline
//
//	Vulkan GLSL → AST → IR → SPIR-V words → OpenGL GLSL
//
// # References
//
//   - naga (Rust): https://github.com/gfx-rs/naga
//   - SPIR-V specification: https://www.khronos.org/registry/SPIR-V/
package ir
