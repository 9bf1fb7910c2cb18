package schema

import (
	"fmt"

	"github.com/lisa-platform/lisa/internal/searchspace"
)

const (
	NodeTypeRequirement = "requirement"
	NodeTypeLocal       = "local"
	NodeTypeRemote      = "remote"
)

// NodeSpace is the requirement or capability of a single node.
//
// Type, Name, IsDefault and Artifact describe the node and take no part in
// compatibility checks.
type NodeSpace struct {
	Type      string `json:"type,omitempty"`
	Name      string `json:"name,omitempty"`
	IsDefault bool   `json:"isDefault,omitempty"`
	Artifact  string `json:"artifact,omitempty"`

	NodeCount searchspace.CountSpace `json:"nodeCount"`
	CoreCount searchspace.CountSpace `json:"coreCount"`
	MemoryMB  searchspace.CountSpace `json:"memoryMb"`
	NICCount  searchspace.CountSpace `json:"nicCount"`
	GPUCount  searchspace.CountSpace `json:"gpuCount"`

	// +optional
	Features *AllowedFeatures `json:"features,omitempty"`
	// +optional
	ExcludedFeatures *ExcludedFeatures `json:"excludedFeatures,omitempty"`
}

// Check reports whether capability can host n. Every field is evaluated and
// each failing field contributes reasons under its own name.
func (n NodeSpace) Check(capability NodeSpace) searchspace.ResultReason {
	var result searchspace.ResultReason
	if capability.NodeCount.IsEmpty() || capability.CoreCount.IsEmpty() ||
		capability.MemoryMB.IsEmpty() || capability.NICCount.IsEmpty() {
		result.AddReason("node_count, core_count, memory_mb, nic_count shouldn't be empty")
	}

	// Two exact node counts pass when the capability has at least as many
	// nodes as required.
	result.Merge(searchspace.CheckCount(n.NodeCount, capability.NodeCount), "node_count")
	result.Merge(searchspace.CheckCount(n.CoreCount, capability.CoreCount), "core_count")
	result.Merge(searchspace.CheckCount(n.MemoryMB, capability.MemoryMB), "memory_mb")
	result.Merge(searchspace.CheckCount(n.NICCount, capability.NICCount), "nic_count")
	result.Merge(searchspace.CheckCount(n.GPUCount, capability.GPUCount), "gpu_count")
	result.Merge(CheckFeatures(n.Features, capability.Features), "features")
	if n.ExcludedFeatures != nil {
		result.Merge(CheckExcluded(n.ExcludedFeatures, capability.Features), "excluded_features")
	}
	return result
}

// GenerateMinCapability returns the smallest node inside capability that
// satisfies n. Node count keeps the capability value when both sides are
// exact. Neither input is modified.
func (n NodeSpace) GenerateMinCapability(capability NodeSpace) (NodeSpace, error) {
	out := NodeSpace{Type: NodeTypeRequirement}
	mandatory := []struct {
		field        string
		req, offered searchspace.CountSpace
		target       *searchspace.CountSpace
	}{
		{"node_count", n.NodeCount, capability.NodeCount, &out.NodeCount},
		{"core_count", n.CoreCount, capability.CoreCount, &out.CoreCount},
		{"memory_mb", n.MemoryMB, capability.MemoryMB, &out.MemoryMB},
		{"nic_count", n.NICCount, capability.NICCount, &out.NICCount},
	}
	for _, m := range mandatory {
		if m.req.IsEmpty() && m.offered.IsEmpty() {
			return NodeSpace{}, fmt.Errorf("%w: %s cannot be zero", searchspace.ErrConfiguration, m.field)
		}
	}
	if err := n.Check(capability).Err(); err != nil {
		return NodeSpace{}, err
	}

	for _, m := range mandatory {
		value, err := searchspace.GenerateMinCount(m.req, m.offered)
		if err != nil {
			return NodeSpace{}, fmt.Errorf("%s: %w", m.field, err)
		}
		*m.target = value
	}

	if n.GPUCount.IsEmpty() && capability.GPUCount.IsEmpty() {
		out.GPUCount = searchspace.Exact(0)
	} else {
		value, err := searchspace.GenerateMinCount(n.GPUCount, capability.GPUCount)
		if err != nil {
			return NodeSpace{}, fmt.Errorf("gpu_count: %w", err)
		}
		out.GPUCount = value
	}

	features := &AllowedFeatures{}
	if n.Features != nil {
		features.items = n.Features.Items()
	}
	if n.ExcludedFeatures != nil {
		for _, name := range n.ExcludedFeatures.Names() {
			features.set(Feature{Name: name, Enabled: false})
		}
	}
	out.Features = features
	return out, nil
}

// NodeFromValue turns a concrete node description into a requirement that
// asks for the same node again. Features that are enabled or can be disabled
// stay allowed; the rest become exclusions.
func NodeFromValue(value NodeSpace) NodeSpace {
	out := NodeSpace{
		Type:      NodeTypeRequirement,
		NodeCount: value.NodeCount,
		CoreCount: value.CoreCount,
		MemoryMB:  value.MemoryMB,
		NICCount:  value.NICCount,
		GPUCount:  value.GPUCount,
	}
	if value.Features == nil {
		return out
	}
	for _, f := range value.Features.items {
		if f.Enabled || f.CanDisable {
			if out.Features == nil {
				out.Features = &AllowedFeatures{}
			}
			out.Features.items = append(out.Features.items, f)
			continue
		}
		if out.ExcludedFeatures == nil {
			out.ExcludedFeatures = &ExcludedFeatures{}
		}
		out.ExcludedFeatures.items = append(out.ExcludedFeatures.items, f)
	}
	return out
}

// Equal compares every field, descriptive ones included.
func (n NodeSpace) Equal(other NodeSpace) bool {
	return n.Type == other.Type &&
		n.Name == other.Name &&
		n.IsDefault == other.IsDefault &&
		n.Artifact == other.Artifact &&
		n.NodeCount.Equal(other.NodeCount) &&
		n.CoreCount.Equal(other.CoreCount) &&
		n.MemoryMB.Equal(other.MemoryMB) &&
		n.NICCount.Equal(other.NICCount) &&
		n.GPUCount.Equal(other.GPUCount) &&
		n.Features.Equal(other.Features) &&
		n.ExcludedFeatures.Equal(other.ExcludedFeatures)
}

func (n NodeSpace) String() string {
	return fmt.Sprintf("type:%s, name:%s, is_default:%t, artifact:%s, count:%s, core:%s, mem:%s, nic:%s, gpu:%s, f:%v, ef:%v",
		n.Type, n.Name, n.IsDefault, n.Artifact,
		n.NodeCount, n.CoreCount, n.MemoryMB, n.NICCount, n.GPUCount,
		n.Features, n.ExcludedFeatures)
}

// DefaultCapability returns a new node capability used when a local or remote
// node declares none.
func DefaultCapability() NodeSpace {
	return NodeSpace{
		Type:      NodeTypeRequirement,
		NodeCount: searchspace.Exact(1),
		CoreCount: searchspace.AtLeast(1),
		MemoryMB:  searchspace.AtLeast(512),
		NICCount:  searchspace.AtLeast(1),
		GPUCount:  searchspace.AtLeast(0),
	}
}
