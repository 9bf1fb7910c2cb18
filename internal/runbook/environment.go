package runbook

import (
	"github.com/lisa-platform/lisa/internal/schema"
)

// Capability assembles the environment's capability from its nodes in
// declaration order. Local and remote nodes contribute their capability,
// requirement nodes contribute themselves. Counts a node leaves unset take
// the values of schema.DefaultCapability.
func (e Environment) Capability() schema.EnvironmentSpace {
	out := schema.EnvironmentSpace{Name: e.Name, Topology: e.Topology}
	for _, n := range e.Nodes {
		switch {
		case n.Local != nil:
			out.Nodes = append(out.Nodes, nodeCapability(n.Local.Capability, n.Local.Name, n.Local.IsDefault))
		case n.Remote != nil:
			out.Nodes = append(out.Nodes, nodeCapability(n.Remote.Capability, n.Remote.Name, n.Remote.IsDefault))
		case n.Requirement != nil:
			out.Nodes = append(out.Nodes, *capabilityWithDefaults(n.Requirement))
		}
	}
	return out
}

// Requirements returns the requirement nodes, nil when there are none.
func (e Environment) Requirements() []schema.NodeSpace {
	var out []schema.NodeSpace
	for _, n := range e.Nodes {
		if n.Requirement != nil {
			out = append(out, *n.Requirement.DeepCopy())
		}
	}
	return out
}

// Existing reports whether every node already exists, so the environment
// needs no platform to create it.
func (e Environment) Existing() bool {
	for _, n := range e.Nodes {
		if n.Local == nil && n.Remote == nil {
			return false
		}
	}
	return len(e.Nodes) > 0
}

func nodeCapability(capability *schema.NodeSpace, name string, isDefault bool) schema.NodeSpace {
	out := *capabilityWithDefaults(capability)
	if out.Name == "" {
		out.Name = name
	}
	out.IsDefault = out.IsDefault || isDefault
	return out
}
