package runbook

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/lisa-platform/lisa/internal/schema"
	"github.com/lisa-platform/lisa/internal/searchspace"
)

// Load reads, defaults and validates the runbook at path.
func Load(path string) (*Runbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read runbook: %w", err)
	}
	rb, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("runbook %s: %w", path, err)
	}
	return rb, nil
}

// Parse decodes a YAML or JSON runbook, applies defaults and validates it.
// Validation problems are returned together as ValidationErrors.
func Parse(data []byte) (*Runbook, error) {
	var rb Runbook
	if err := yaml.UnmarshalStrict(data, &rb); err != nil {
		return nil, fmt.Errorf("decode runbook: %w", err)
	}
	rb.ApplyDefaults()
	if errs := rb.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return &rb, nil
}

// ApplyDefaults fills unset fields. It is idempotent.
func (r *Runbook) ApplyDefaults() {
	if r.Name == "" {
		r.Name = defaultRunbookName
	}
	if len(r.Platform) == 0 {
		r.Platform = []Platform{{Type: PlatformTypeReady}}
	}
	for i := range r.Platform {
		p := &r.Platform[i]
		if p.Type == "" {
			p.Type = PlatformTypeReady
		}
		if p.AdminUsername == "" {
			p.AdminUsername = defaultAdminUsername
		}
	}
	if len(r.TestCase) == 0 {
		r.TestCase = []TestCase{{Name: "all"}}
	}
	for i := range r.TestCase {
		tc := &r.TestCase[i]
		if tc.SelectAction == "" {
			tc.SelectAction = SelectActionInclude
		}
		if tc.Times == 0 {
			tc.Times = 1
		}
	}
	if r.Environment == nil {
		return
	}
	if r.Environment.MaxConcurrency == 0 {
		r.Environment.MaxConcurrency = 1
	}
	for i := range r.Environment.Environments {
		r.Environment.Environments[i].applyDefaults()
	}
}

func (e *Environment) applyDefaults() {
	if e.Topology == "" {
		e.Topology = schema.TopologySubnet
	}
	for i := range e.Nodes {
		n := &e.Nodes[i]
		switch {
		case n.Local != nil:
			n.Local.Capability = capabilityWithDefaults(n.Local.Capability)
		case n.Remote != nil:
			n.Remote.Capability = capabilityWithDefaults(n.Remote.Capability)
			n.Remote.applyDefaults()
		case n.Requirement != nil && n.Requirement.Type == "":
			n.Requirement.Type = schema.NodeTypeRequirement
		}
	}
}

func (r *RemoteNode) applyDefaults() {
	switch {
	case r.Address == "":
		r.Address = r.PublicAddress
	case r.PublicAddress == "":
		r.PublicAddress = r.Address
	}
	switch {
	case r.Port == 0 && r.PublicPort == 0:
		r.Port, r.PublicPort = defaultSSHPort, defaultSSHPort
	case r.Port == 0:
		r.Port = r.PublicPort
	case r.PublicPort == 0:
		r.PublicPort = r.Port
	}
}

// capabilityWithDefaults returns a new capability where every count the
// declared one leaves unset comes from schema.DefaultCapability.
func capabilityWithDefaults(declared *schema.NodeSpace) *schema.NodeSpace {
	out := schema.DefaultCapability()
	if declared == nil {
		return &out
	}
	merged := *declared.DeepCopy()
	for _, f := range []struct {
		dst *searchspace.CountSpace
		def searchspace.CountSpace
	}{
		{&merged.NodeCount, out.NodeCount},
		{&merged.CoreCount, out.CoreCount},
		{&merged.MemoryMB, out.MemoryMB},
		{&merged.NICCount, out.NICCount},
		{&merged.GPUCount, out.GPUCount},
	} {
		if !f.dst.IsSet() {
			*f.dst = f.def
		}
	}
	if merged.Type == "" {
		merged.Type = schema.NodeTypeRequirement
	}
	return &merged
}
