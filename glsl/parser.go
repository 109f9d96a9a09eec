// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/gogpu/glslcross/spirv"
)

// typeKind discriminates decoded type definitions.
type typeKind uint8

const (
	typeVoid typeKind = iota
	typeBool
	typeFloat
	typeInt
	typeVector
	typeMatrix
	typeImage
	typeSampler
	typeSampledImage
	typeStruct
	typePointer
	typeFunction
)

// typeDef is a decoded OpType* instruction. The meaning of component
// depends on the kind: the scalar type of a vector, the column type of
// a matrix, the sampled type of an image, the image type of a sampled
// image, or the pointee of a pointer.
type typeDef struct {
	kind      typeKind
	width     uint32
	signed    bool
	component uint32
	count     uint32 // vector size or matrix column count
	dim       uint32
	arrayed   bool
	storage   spirv.StorageClass
	members   []uint32
	returns   uint32
	params    []uint32
}

// constantDef is a decoded OpConstant or OpConstantComposite.
type constantDef struct {
	typeID uint32
	value  uint32   // single-word scalar constants
	parts  []uint32 // composite component ids
}

// variableDef is a decoded module-scope or function-scope OpVariable.
type variableDef struct {
	typeID      uint32 // pointer type
	storage     spirv.StorageClass
	initializer uint32
}

// instruction is one decoded instruction inside a function body.
type instruction struct {
	opcode   spirv.OpCode
	operands []uint32
}

// functionDef is a decoded OpFunction with its body instructions.
type functionDef struct {
	id      uint32
	returns uint32
	params  []uint32 // parameter result ids, in declaration order
	body    []instruction
}

// entryPoint is the decoded OpEntryPoint.
type entryPoint struct {
	model      spirv.ExecutionModel
	function   uint32
	name       string
	interfaces []uint32
}

// module holds everything the cross-compiler needs from a decoded
// SPIR-V binary. Names and decorations are kept mutable so reflection
// edits apply to the emitted source.
type module struct {
	bound             uint32
	names             map[uint32]string
	memberNames       map[uint32]map[uint32]string
	decorations       map[uint32]map[spirv.Decoration][]uint32
	memberDecorations map[uint32]map[uint32]map[spirv.Decoration][]uint32
	extImports        map[uint32]string
	types             map[uint32]*typeDef
	constants         map[uint32]*constantDef
	variables         map[uint32]*variableDef
	globals           []uint32 // module-scope variable ids in declaration order
	functions         []*functionDef
	entry             *entryPoint
}

// parseModule decodes a SPIR-V word stream into a module.
func parseModule(words []uint32) (*module, error) {
	if len(words) < 5 {
		return nil, fmt.Errorf("glsl: module has %d words, need at least 5", len(words))
	}
	if words[0] != spirv.MagicNumber {
		return nil, fmt.Errorf("glsl: bad magic number %#08x", words[0])
	}

	m := &module{
		bound:             words[3],
		names:             make(map[uint32]string),
		memberNames:       make(map[uint32]map[uint32]string),
		decorations:       make(map[uint32]map[spirv.Decoration][]uint32),
		memberDecorations: make(map[uint32]map[uint32]map[spirv.Decoration][]uint32),
		extImports:        make(map[uint32]string),
		types:             make(map[uint32]*typeDef),
		constants:         make(map[uint32]*constantDef),
		variables:         make(map[uint32]*variableDef),
	}

	var current *functionDef
	pos := 5
	for pos < len(words) {
		count, err := safecast.Conv[int](words[pos] >> 16)
		if err != nil || count == 0 {
			return nil, fmt.Errorf("glsl: invalid word count at word %d", pos)
		}
		if pos+count > len(words) {
			return nil, fmt.Errorf("glsl: instruction at word %d runs past the end of the module", pos)
		}
		opcode := spirv.OpCode(words[pos] & 0xffff)
		operands := words[pos+1 : pos+count]
		pos += count

		if current != nil {
			switch opcode {
			case spirv.OpFunctionEnd:
				m.functions = append(m.functions, current)
				current = nil
			case spirv.OpFunctionParameter:
				current.params = append(current.params, operands[1])
				m.variables[operands[1]] = &variableDef{typeID: operands[0]}
			case spirv.OpVariable:
				m.variables[operands[1]] = &variableDef{
					typeID:  operands[0],
					storage: spirv.StorageClass(operands[2]),
				}
				current.body = append(current.body, instruction{opcode, operands})
			default:
				current.body = append(current.body, instruction{opcode, operands})
			}
			continue
		}

		switch opcode {
		case spirv.OpName:
			name, _ := decodeString(operands[1:])
			m.names[operands[0]] = name
		case spirv.OpMemberName:
			name, _ := decodeString(operands[2:])
			byMember := m.memberNames[operands[0]]
			if byMember == nil {
				byMember = make(map[uint32]string)
				m.memberNames[operands[0]] = byMember
			}
			byMember[operands[1]] = name
		case spirv.OpExtInstImport:
			name, _ := decodeString(operands[1:])
			m.extImports[operands[0]] = name
		case spirv.OpEntryPoint:
			name, rest := decodeString(operands[2:])
			m.entry = &entryPoint{
				model:      spirv.ExecutionModel(operands[0]),
				function:   operands[1],
				name:       name,
				interfaces: rest,
			}
		case spirv.OpDecorate:
			byDec := m.decorations[operands[0]]
			if byDec == nil {
				byDec = make(map[spirv.Decoration][]uint32)
				m.decorations[operands[0]] = byDec
			}
			byDec[spirv.Decoration(operands[1])] = append([]uint32(nil), operands[2:]...)
		case spirv.OpMemberDecorate:
			byMember := m.memberDecorations[operands[0]]
			if byMember == nil {
				byMember = make(map[uint32]map[spirv.Decoration][]uint32)
				m.memberDecorations[operands[0]] = byMember
			}
			byDec := byMember[operands[1]]
			if byDec == nil {
				byDec = make(map[spirv.Decoration][]uint32)
				byMember[operands[1]] = byDec
			}
			byDec[spirv.Decoration(operands[2])] = append([]uint32(nil), operands[3:]...)
		case spirv.OpTypeVoid:
			m.types[operands[0]] = &typeDef{kind: typeVoid}
		case spirv.OpTypeBool:
			m.types[operands[0]] = &typeDef{kind: typeBool}
		case spirv.OpTypeFloat:
			m.types[operands[0]] = &typeDef{kind: typeFloat, width: operands[1]}
		case spirv.OpTypeInt:
			m.types[operands[0]] = &typeDef{
				kind:   typeInt,
				width:  operands[1],
				signed: operands[2] != 0,
			}
		case spirv.OpTypeVector:
			m.types[operands[0]] = &typeDef{
				kind:      typeVector,
				component: operands[1],
				count:     operands[2],
			}
		case spirv.OpTypeMatrix:
			m.types[operands[0]] = &typeDef{
				kind:      typeMatrix,
				component: operands[1],
				count:     operands[2],
			}
		case spirv.OpTypeImage:
			m.types[operands[0]] = &typeDef{
				kind:      typeImage,
				component: operands[1],
				dim:       operands[2],
				arrayed:   operands[4] != 0,
			}
		case spirv.OpTypeSampler:
			m.types[operands[0]] = &typeDef{kind: typeSampler}
		case spirv.OpTypeSampledImage:
			m.types[operands[0]] = &typeDef{kind: typeSampledImage, component: operands[1]}
		case spirv.OpTypeStruct:
			m.types[operands[0]] = &typeDef{
				kind:    typeStruct,
				members: append([]uint32(nil), operands[1:]...),
			}
		case spirv.OpTypePointer:
			m.types[operands[0]] = &typeDef{
				kind:      typePointer,
				storage:   spirv.StorageClass(operands[1]),
				component: operands[2],
			}
		case spirv.OpTypeFunction:
			m.types[operands[0]] = &typeDef{
				kind:    typeFunction,
				returns: operands[1],
				params:  append([]uint32(nil), operands[2:]...),
			}
		case spirv.OpConstant:
			m.constants[operands[1]] = &constantDef{typeID: operands[0], value: operands[2]}
		case spirv.OpConstantComposite:
			m.constants[operands[1]] = &constantDef{
				typeID: operands[0],
				parts:  append([]uint32(nil), operands[2:]...),
			}
		case spirv.OpVariable:
			m.variables[operands[1]] = &variableDef{
				typeID:  operands[0],
				storage: spirv.StorageClass(operands[2]),
			}
			m.globals = append(m.globals, operands[1])
		case spirv.OpFunction:
			current = &functionDef{id: operands[1], returns: operands[0]}
		}
	}
	if current != nil {
		return nil, fmt.Errorf("glsl: function %%%d is missing OpFunctionEnd", current.id)
	}
	if m.entry == nil {
		return nil, fmt.Errorf("glsl: module has no entry point")
	}
	return m, nil
}

// decodeString reads a null-terminated, word-padded string and returns
// it together with the remaining operands.
func decodeString(operands []uint32) (string, []uint32) {
	var buf []byte
	for i, word := range operands {
		for shift := 0; shift < 32; shift += 8 {
			b := byte(word >> shift)
			if b == 0 {
				return string(buf), operands[i+1:]
			}
			buf = append(buf, b)
		}
	}
	return string(buf), nil
}

// pointee follows a pointer type to its base type id.
func (m *module) pointee(typeID uint32) uint32 {
	if t := m.types[typeID]; t != nil && t.kind == typePointer {
		return t.component
	}
	return typeID
}
