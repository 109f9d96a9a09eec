// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package glsl cross-compiles SPIR-V binaries to OpenGL-dialect GLSL.
//
// The Compiler decodes a SPIR-V module, exposes its resources for
// reflection, and lets the caller rename variables, edit decorations,
// combine separate images and samplers, and inject header lines before
// the source is emitted. This mirrors how native cross-compilation
// toolchains are driven: reflect first, rewrite, then compile.
package glsl

import (
	"fmt"

	"github.com/gogpu/glslcross/spirv"
)

// Version represents a GLSL language version.
type Version struct {
	Major int
	Minor int
	ES    bool
}

// Supported output dialects.
var (
	// Version430 targets desktop OpenGL ("430 core").
	Version430 = Version{Major: 4, Minor: 3}
	// VersionES300 targets OpenGL ES 3.0 ("300 es").
	VersionES300 = Version{Major: 3, Minor: 0, ES: true}
)

// String returns the version directive body, e.g. "430 core" or "300 es".
// GLSL version numbers read major, minor, then a trailing zero.
func (v Version) String() string {
	if v.ES {
		return fmt.Sprintf("%d%d0 es", v.Major, v.Minor)
	}
	return fmt.Sprintf("%d%d0 core", v.Major, v.Minor)
}

// Options configures GLSL emission.
type Options struct {
	// LangVersion selects the output GLSL dialect.
	LangVersion Version

	// EmitUniformBufferAsPlainUniforms declares each uniform buffer
	// as a plain struct-typed uniform instead of an interface block.
	EmitUniformBufferAsPlainUniforms bool
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		LangVersion: Version430,
	}
}

// Resource describes one reflected shader resource.
type Resource struct {
	// ID is the variable id, usable with Name, SetName, Decoration
	// and the other reflection methods.
	ID uint32
	// TypeID is the variable's pointer type id.
	TypeID uint32
	// BaseTypeID is the pointed-to type id. For a uniform buffer this
	// is the struct type carrying the member list.
	BaseTypeID uint32
	// Name is the variable's name at reflection time.
	Name string
}

// ShaderResources groups the module's resources by kind.
type ShaderResources struct {
	UniformBuffers   []Resource
	SeparateImages   []Resource
	SeparateSamplers []Resource
	StageInputs      []Resource
	StageOutputs     []Resource
}

// CombinedImageSampler is one image/sampler pair fused by
// BuildCombinedImageSamplers. SamplerID and ImageID are the original
// separate variable ids; CombinedID is the synthesized variable the
// emitted source declares and samples through.
type CombinedImageSampler struct {
	CombinedID uint32
	ImageID    uint32
	SamplerID  uint32
}

// BaseType classifies a reflected type.
type BaseType uint8

// Base type classifications.
const (
	BaseTypeVoid BaseType = iota
	BaseTypeBool
	BaseTypeFloat
	BaseTypeInt
	BaseTypeUInt
	BaseTypeStruct
	BaseTypeImage
	BaseTypeSampler
	BaseTypeSampledImage
)

// TypeInfo is the reflected shape of a type. Scalars report VecSize 1
// and Columns 1; vectors report their size with Columns 1; matrices
// report both. Struct types list their member type ids.
type TypeInfo struct {
	BaseType BaseType
	VecSize  uint32
	Columns  uint32
	Members  []uint32
}

// Compiler cross-compiles one decoded SPIR-V module.
type Compiler struct {
	mod         *module
	options     Options
	headerLines []string
	combined    []CombinedImageSampler
	pairIDs     map[samplerPair]uint32
}

type samplerPair struct {
	image   uint32
	sampler uint32
}

// NewCompiler decodes words and returns a Compiler for the module.
func NewCompiler(words []uint32) (*Compiler, error) {
	mod, err := parseModule(words)
	if err != nil {
		return nil, err
	}
	return &Compiler{
		mod:     mod,
		options: DefaultOptions(),
		pairIDs: make(map[samplerPair]uint32),
	}, nil
}

// SetOptions replaces the emission options.
func (c *Compiler) SetOptions(options Options) {
	c.options = options
}

// ShaderResources reflects the module's resources in declaration order.
func (c *Compiler) ShaderResources() ShaderResources {
	var res ShaderResources
	for _, id := range c.mod.globals {
		v := c.mod.variables[id]
		base := c.mod.pointee(v.typeID)
		r := Resource{
			ID:         id,
			TypeID:     v.typeID,
			BaseTypeID: base,
			Name:       c.mod.names[id],
		}
		switch v.storage {
		case spirv.StorageClassUniform:
			if c.hasDecoration(base, spirv.DecorationBlock) {
				res.UniformBuffers = append(res.UniformBuffers, r)
			}
		case spirv.StorageClassUniformConstant:
			switch c.mod.types[base].kind {
			case typeImage:
				res.SeparateImages = append(res.SeparateImages, r)
			case typeSampler:
				res.SeparateSamplers = append(res.SeparateSamplers, r)
			}
		case spirv.StorageClassInput:
			if !c.HasDecoration(id, spirv.DecorationBuiltIn) {
				res.StageInputs = append(res.StageInputs, r)
			}
		case spirv.StorageClassOutput:
			if !c.HasDecoration(id, spirv.DecorationBuiltIn) {
				res.StageOutputs = append(res.StageOutputs, r)
			}
		}
	}
	return res
}

// ResourceByName looks up a reflected resource by its current name.
func (c *Compiler) ResourceByName(name string) (Resource, bool) {
	resources := c.ShaderResources()
	for _, group := range [][]Resource{
		resources.UniformBuffers,
		resources.SeparateImages,
		resources.SeparateSamplers,
		resources.StageInputs,
		resources.StageOutputs,
	} {
		for _, r := range group {
			if r.Name == name {
				return r, true
			}
		}
	}
	return Resource{}, false
}

// Name returns the current name of an id, or "" if it has none.
func (c *Compiler) Name(id uint32) string {
	return c.mod.names[id]
}

// SetName renames an id. The emitted source uses the new name.
func (c *Compiler) SetName(id uint32, name string) {
	c.mod.names[id] = name
}

// MemberName returns the name of a struct member.
func (c *Compiler) MemberName(typeID, index uint32) string {
	return c.mod.memberNames[typeID][index]
}

// HasDecoration reports whether an id carries a decoration.
func (c *Compiler) HasDecoration(id uint32, dec spirv.Decoration) bool {
	return c.hasDecoration(id, dec)
}

// Decoration returns the first operand of a decoration, or 0 if the id
// does not carry it.
func (c *Compiler) Decoration(id uint32, dec spirv.Decoration) uint32 {
	operands, ok := c.mod.decorations[id][dec]
	if !ok || len(operands) == 0 {
		return 0
	}
	return operands[0]
}

// SetDecoration sets a decoration value on an id.
func (c *Compiler) SetDecoration(id uint32, dec spirv.Decoration, value uint32) {
	byDec := c.mod.decorations[id]
	if byDec == nil {
		byDec = make(map[spirv.Decoration][]uint32)
		c.mod.decorations[id] = byDec
	}
	byDec[dec] = []uint32{value}
}

// UnsetDecoration removes a decoration from an id.
func (c *Compiler) UnsetDecoration(id uint32, dec spirv.Decoration) {
	delete(c.mod.decorations[id], dec)
}

// Type reflects the shape of a type id.
func (c *Compiler) Type(typeID uint32) TypeInfo {
	t := c.mod.types[typeID]
	if t == nil {
		return TypeInfo{}
	}
	switch t.kind {
	case typeBool:
		return TypeInfo{BaseType: BaseTypeBool, VecSize: 1, Columns: 1}
	case typeFloat:
		return TypeInfo{BaseType: BaseTypeFloat, VecSize: 1, Columns: 1}
	case typeInt:
		if t.signed {
			return TypeInfo{BaseType: BaseTypeInt, VecSize: 1, Columns: 1}
		}
		return TypeInfo{BaseType: BaseTypeUInt, VecSize: 1, Columns: 1}
	case typeVector:
		info := c.Type(t.component)
		info.VecSize = t.count
		info.Columns = 1
		return info
	case typeMatrix:
		info := c.Type(t.component)
		info.Columns = t.count
		return info
	case typeStruct:
		return TypeInfo{BaseType: BaseTypeStruct, Members: t.members}
	case typeImage:
		return TypeInfo{BaseType: BaseTypeImage}
	case typeSampler:
		return TypeInfo{BaseType: BaseTypeSampler}
	case typeSampledImage:
		return TypeInfo{BaseType: BaseTypeSampledImage}
	case typePointer:
		return c.Type(t.component)
	default:
		return TypeInfo{}
	}
}

// BuildCombinedImageSamplers scans every function body for sampling
// through a separate image and sampler and synthesizes one combined
// sampler variable per distinct pair. GLSL has no separate sampler
// objects, so emission requires this pass whenever the module samples.
func (c *Compiler) BuildCombinedImageSamplers() {
	for _, fn := range c.mod.functions {
		loads := make(map[uint32]uint32)
		for _, inst := range fn.body {
			switch inst.opcode {
			case spirv.OpLoad:
				loads[inst.operands[1]] = inst.operands[2]
			case spirv.OpSampledImage:
				pair := samplerPair{
					image:   loads[inst.operands[2]],
					sampler: loads[inst.operands[3]],
				}
				if _, ok := c.pairIDs[pair]; ok {
					continue
				}
				combinedID := c.mod.bound
				c.mod.bound++
				c.mod.names[combinedID] = c.mod.names[pair.image] + "_" + c.mod.names[pair.sampler]
				c.pairIDs[pair] = combinedID
				c.combined = append(c.combined, CombinedImageSampler{
					CombinedID: combinedID,
					ImageID:    pair.image,
					SamplerID:  pair.sampler,
				})
			}
		}
	}
}

// CombinedImageSamplers returns the pairs synthesized by
// BuildCombinedImageSamplers, in discovery order.
func (c *Compiler) CombinedImageSamplers() []CombinedImageSampler {
	return c.combined
}

// AddHeaderLine appends a raw line of source emitted right after the
// version directive and precision qualifiers.
func (c *Compiler) AddHeaderLine(line string) {
	c.headerLines = append(c.headerLines, line)
}

// Compile emits the module as GLSL source in the configured dialect.
func (c *Compiler) Compile() (string, error) {
	w := newWriter(c)
	return w.write()
}

func (c *Compiler) hasDecoration(id uint32, dec spirv.Decoration) bool {
	_, ok := c.mod.decorations[id][dec]
	return ok
}
