package vkglsl

// Program is a pair of linked stage modules whose interfaces have been
// checked against each other.
type Program struct {
	Vertex   *Module
	Fragment *Module
}

// Link checks the cross-stage interface between a vertex and a fragment
// module and returns them as a Program. Every fragment input must
// rendezvous with a vertex output at the same location and with the
// same type, both stages must define main, and uniform blocks that
// share a type name must declare identical member lists.
func Link(vertex, fragment *Module) (*Program, error) {
	if vertex.Function("main") == nil {
		return nil, linkErrorf("vertex stage does not define main")
	}
	if fragment.Function("main") == nil {
		return nil, linkErrorf("fragment stage does not define main")
	}

	outputs := make(map[uint32]*VarDecl, len(vertex.Outputs))
	for _, out := range vertex.Outputs {
		if out.Layout.Location == nil {
			continue
		}
		loc := *out.Layout.Location
		if prev, ok := outputs[loc]; ok {
			return nil, linkErrorf("vertex outputs %q and %q both use location %d",
				prev.Name, out.Name, loc)
		}
		outputs[loc] = out
	}

	for _, in := range fragment.Inputs {
		if in.Layout.Location == nil {
			continue
		}
		loc := *in.Layout.Location
		out, ok := outputs[loc]
		if !ok {
			return nil, linkErrorf("fragment input %q at location %d has no matching vertex output",
				in.Name, loc)
		}
		if out.Type != in.Type {
			return nil, linkErrorf("location %d is %s in the vertex stage but %s in the fragment stage",
				loc, out.Type, in.Type)
		}
	}

	for _, vb := range vertex.Blocks {
		for _, fb := range fragment.Blocks {
			if vb.TypeName != fb.TypeName {
				continue
			}
			if err := matchBlockMembers(vb, fb); err != nil {
				return nil, err
			}
		}
	}

	return &Program{Vertex: vertex, Fragment: fragment}, nil
}

func matchBlockMembers(a, b *BlockDecl) error {
	if len(a.Members) != len(b.Members) {
		return linkErrorf("uniform block %q has %d members in one stage and %d in the other",
			a.TypeName, len(a.Members), len(b.Members))
	}
	for i := range a.Members {
		am, bm := a.Members[i], b.Members[i]
		if am.Name != bm.Name || am.Type != bm.Type {
			return linkErrorf("uniform block %q member %d differs between stages: %s %s vs %s %s",
				a.TypeName, i, am.Type, am.Name, bm.Type, bm.Name)
		}
	}
	return nil
}
