package schema

// DeepCopyInto copies n into out. Count spaces are values and are copied by
// assignment.
func (n *NodeSpace) DeepCopyInto(out *NodeSpace) {
	*out = *n
	out.Features = n.Features.DeepCopy()
	out.ExcludedFeatures = n.ExcludedFeatures.DeepCopy()
}

func (n *NodeSpace) DeepCopy() *NodeSpace {
	if n == nil {
		return nil
	}
	out := new(NodeSpace)
	n.DeepCopyInto(out)
	return out
}

func (e *EnvironmentSpace) DeepCopyInto(out *EnvironmentSpace) {
	*out = *e
	if e.Nodes != nil {
		out.Nodes = make([]NodeSpace, len(e.Nodes))
		for i := range e.Nodes {
			e.Nodes[i].DeepCopyInto(&out.Nodes[i])
		}
	}
}

func (e *EnvironmentSpace) DeepCopy() *EnvironmentSpace {
	if e == nil {
		return nil
	}
	out := new(EnvironmentSpace)
	e.DeepCopyInto(out)
	return out
}
