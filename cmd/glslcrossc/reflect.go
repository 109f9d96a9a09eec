package main

import (
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/gogpu/glslcross/glsl"
	"github.com/gogpu/glslcross/spirv"
)

// reflectionSchema versions the sidecar layout. Bump on any field change
// so stale sidecars are rejected instead of misread.
const reflectionSchema uint16 = 1

type reflectionPayload struct {
	Schema   uint16         `msgpack:"schema"`
	Uniforms []uniformEntry `msgpack:"uniforms"`
	Samplers []samplerEntry `msgpack:"samplers"`
	Inputs   []stageIOEntry `msgpack:"inputs"`
	Outputs  []stageIOEntry `msgpack:"outputs"`
}

type uniformEntry struct {
	Name string `msgpack:"name"`
	Type string `msgpack:"type"`
}

type samplerEntry struct {
	Name    string `msgpack:"name"`
	Binding uint16 `msgpack:"binding"`
}

type stageIOEntry struct {
	Name     string `msgpack:"name"`
	Type     string `msgpack:"type"`
	Location uint16 `msgpack:"location"`
}

func buildReflectionPayload(refl *glsl.Compiler) (reflectionPayload, error) {
	payload := reflectionPayload{Schema: reflectionSchema}
	resources := refl.ShaderResources()

	for _, buffer := range resources.UniformBuffers {
		info := refl.Type(buffer.BaseTypeID)
		for i, memberType := range info.Members {
			index, err := safecast.Conv[uint32](i)
			if err != nil {
				return reflectionPayload{}, err
			}
			payload.Uniforms = append(payload.Uniforms, uniformEntry{
				Name: refl.MemberName(buffer.BaseTypeID, index),
				Type: glslTypeString(refl.Type(memberType)),
			})
		}
	}

	for _, combined := range refl.CombinedImageSamplers() {
		binding, err := safecast.Conv[uint16](refl.Decoration(combined.CombinedID, spirv.DecorationBinding))
		if err != nil {
			return reflectionPayload{}, err
		}
		payload.Samplers = append(payload.Samplers, samplerEntry{
			Name:    refl.Name(combined.CombinedID),
			Binding: binding,
		})
	}

	inputs, err := stageIOEntries(refl, resources.StageInputs)
	if err != nil {
		return reflectionPayload{}, err
	}
	outputs, err := stageIOEntries(refl, resources.StageOutputs)
	if err != nil {
		return reflectionPayload{}, err
	}
	payload.Inputs = inputs
	payload.Outputs = outputs
	return payload, nil
}

func stageIOEntries(refl *glsl.Compiler, resources []glsl.Resource) ([]stageIOEntry, error) {
	var entries []stageIOEntry
	for _, res := range resources {
		location, err := safecast.Conv[uint16](refl.Decoration(res.ID, spirv.DecorationLocation))
		if err != nil {
			return nil, err
		}
		entries = append(entries, stageIOEntry{
			Name:     res.Name,
			Type:     glslTypeString(refl.Type(res.BaseTypeID)),
			Location: location,
		})
	}
	return entries, nil
}

func glslTypeString(info glsl.TypeInfo) string {
	switch {
	case info.Columns > 1:
		if info.VecSize == info.Columns {
			return fmt.Sprintf("mat%d", info.Columns)
		}
		return fmt.Sprintf("mat%dx%d", info.Columns, info.VecSize)
	case info.VecSize > 1:
		switch info.BaseType {
		case glsl.BaseTypeInt:
			return fmt.Sprintf("ivec%d", info.VecSize)
		case glsl.BaseTypeUInt:
			return fmt.Sprintf("uvec%d", info.VecSize)
		case glsl.BaseTypeBool:
			return fmt.Sprintf("bvec%d", info.VecSize)
		default:
			return fmt.Sprintf("vec%d", info.VecSize)
		}
	case info.BaseType == glsl.BaseTypeInt:
		return "int"
	case info.BaseType == glsl.BaseTypeUInt:
		return "uint"
	case info.BaseType == glsl.BaseTypeBool:
		return "bool"
	default:
		return "float"
	}
}

// writeReflectionSidecar encodes the stage's reflection data and writes
// it through a temp file so readers never observe a torn sidecar.
func writeReflectionSidecar(path string, refl *glsl.Compiler) error {
	payload, err := buildReflectionPayload(refl)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(path), "refl-*")
	if err != nil {
		return err
	}
	name := f.Name()
	encoder := msgpack.NewEncoder(f)
	if err := encoder.Encode(payload); err != nil {
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
