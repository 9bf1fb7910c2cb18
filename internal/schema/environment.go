package schema

import (
	"fmt"
	"strconv"

	"github.com/lisa-platform/lisa/internal/searchspace"
)

// TopologySubnet places every node of an environment in one subnet. It is the
// only supported topology.
const TopologySubnet = "subnet"

// MatchMode says how requirement nodes are paired with capability nodes.
type MatchMode string

const (
	// MatchShared checks every requirement node against the single
	// capability node.
	MatchShared MatchMode = "Shared"
	// MatchPairwise pairs requirement and capability nodes by index.
	MatchPairwise MatchMode = "Pairwise"
	// MatchMismatched means the node lists cannot be paired.
	MatchMismatched MatchMode = "Mismatched"
)

// EnvironmentSpace is the requirement or capability of an environment: an
// ordered list of nodes sharing a topology.
type EnvironmentSpace struct {
	Name     string      `json:"name,omitempty"`
	Topology string      `json:"topology,omitempty"`
	Nodes    []NodeSpace `json:"nodes,omitempty"`
}

// NewEnvironmentSpace returns a subnet environment holding nodes.
func NewEnvironmentSpace(nodes ...NodeSpace) EnvironmentSpace {
	return EnvironmentSpace{Topology: TopologySubnet, Nodes: nodes}
}

// MatchModeFor returns how e's nodes pair with capability's nodes.
func (e EnvironmentSpace) MatchModeFor(capability EnvironmentSpace) MatchMode {
	switch {
	case len(capability.Nodes) == 1:
		return MatchShared
	case len(capability.Nodes) == len(e.Nodes):
		return MatchPairwise
	default:
		return MatchMismatched
	}
}

func (e EnvironmentSpace) capabilityNode(capability EnvironmentSpace, mode MatchMode, index int) NodeSpace {
	if mode == MatchShared {
		return capability.Nodes[0]
	}
	return capability.Nodes[index]
}

// Check reports whether capability can host e. Nodes are checked in order and
// the check stops at the first node that fails; its reasons are reported
// under the node index.
func (e EnvironmentSpace) Check(capability EnvironmentSpace) searchspace.ResultReason {
	var result searchspace.ResultReason
	if len(capability.Nodes) == 0 {
		result.AddReason("nodes shouldn't be empty")
		return result
	}
	if len(e.Nodes) == 0 {
		return result
	}

	mode := e.MatchModeFor(capability)
	if mode == MatchMismatched {
		result.AddReasonf("capability has %d nodes, requirement has %d; node counts must be equal or capability must have one node",
			len(capability.Nodes), len(e.Nodes))
		return result
	}
	for i, req := range e.Nodes {
		nodeResult := req.Check(e.capabilityNode(capability, mode, i))
		result.Merge(nodeResult, strconv.Itoa(i))
		if !nodeResult.Result() {
			break
		}
	}
	return result
}

// GenerateMinCapability resolves every requirement node against its paired
// capability node.
func (e EnvironmentSpace) GenerateMinCapability(capability EnvironmentSpace) (EnvironmentSpace, error) {
	out := EnvironmentSpace{Topology: e.Topology}
	if len(capability.Nodes) == 0 {
		return out, fmt.Errorf("%w: capability has no nodes", searchspace.ErrConfiguration)
	}
	mode := e.MatchModeFor(capability)
	if mode == MatchMismatched {
		return out, fmt.Errorf("%w: capability has %d nodes, requirement has %d",
			ErrNodeCountMismatch, len(capability.Nodes), len(e.Nodes))
	}

	out.Nodes = make([]NodeSpace, 0, len(e.Nodes))
	for i, req := range e.Nodes {
		node, err := req.GenerateMinCapability(e.capabilityNode(capability, mode, i))
		if err != nil {
			return EnvironmentSpace{}, fmt.Errorf("node %d: %w", i, err)
		}
		out.Nodes = append(out.Nodes, node)
	}
	return out, nil
}

// EnvironmentFromValue turns a concrete environment into a requirement for an
// equivalent one.
func EnvironmentFromValue(value EnvironmentSpace) EnvironmentSpace {
	out := EnvironmentSpace{Topology: value.Topology}
	if value.Nodes == nil {
		return out
	}
	out.Nodes = make([]NodeSpace, 0, len(value.Nodes))
	for _, node := range value.Nodes {
		out.Nodes = append(out.Nodes, NodeFromValue(node))
	}
	return out
}

// Equal compares topology and nodes. Name is ignored so that environments
// declared under different names can be merged.
func (e EnvironmentSpace) Equal(other EnvironmentSpace) bool {
	if e.Topology != other.Topology || len(e.Nodes) != len(other.Nodes) {
		return false
	}
	for i := range e.Nodes {
		if !e.Nodes[i].Equal(other.Nodes[i]) {
			return false
		}
	}
	return true
}

func (e EnvironmentSpace) String() string {
	return fmt.Sprintf("name:%s, topology:%s, nodes:%v", e.Name, e.Topology, e.Nodes)
}

// ValidateCapability lists the problems that keep e from being used as a
// platform capability: it needs nodes, each declaring a non-zero node, core,
// memory and NIC count.
func ValidateCapability(e EnvironmentSpace) []string {
	var problems []string
	if e.Topology != "" && e.Topology != TopologySubnet {
		problems = append(problems, fmt.Sprintf("topology %q is not supported", e.Topology))
	}
	if len(e.Nodes) == 0 {
		return append(problems, "nodes shouldn't be empty")
	}
	for i, node := range e.Nodes {
		for _, f := range []struct {
			name  string
			count searchspace.CountSpace
		}{
			{"node_count", node.NodeCount},
			{"core_count", node.CoreCount},
			{"memory_mb", node.MemoryMB},
			{"nic_count", node.NICCount},
		} {
			if f.count.IsEmpty() {
				problems = append(problems, fmt.Sprintf("%d.%s cannot be zero", i, f.name))
			}
		}
	}
	return problems
}
