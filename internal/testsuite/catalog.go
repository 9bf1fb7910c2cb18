// Package testsuite holds the catalog of test cases a run can select from.
package testsuite

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/lisa-platform/lisa/internal/schema"
)

// Catalog is the decoded form of a catalog file.
type Catalog struct {
	Suites []SuiteMetadata `json:"suites"`
}

// SuiteMetadata groups cases that share an area, category and tags.
type SuiteMetadata struct {
	Name        string         `json:"name"`
	Area        string         `json:"area,omitempty"`
	Category    string         `json:"category,omitempty"`
	Description string         `json:"description,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Cases       []CaseMetadata `json:"cases"`
}

// CaseMetadata describes a single test case. Area, Category and Tags are
// inherited from the suite when the catalog is loaded.
type CaseMetadata struct {
	Suite       string `json:"-"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Area        string `json:"area,omitempty"`
	Category    string `json:"category,omitempty"`
	// Priority ranges from 0 (most important) to 3.
	Priority int      `json:"priority"`
	Tags     []string `json:"tags,omitempty"`
	// Requirement is the environment the case needs. A case without one
	// runs on any single-node environment.
	Requirement *schema.EnvironmentSpace `json:"requirement,omitempty"`
}

// FullName is "<suite>.<case>".
func (c CaseMetadata) FullName() string {
	return c.Suite + "." + c.Name
}

// EnvironmentRequirement returns the environment the case needs.
func (c CaseMetadata) EnvironmentRequirement() schema.EnvironmentSpace {
	if c.Requirement != nil && len(c.Requirement.Nodes) > 0 {
		out := *c.Requirement.DeepCopy()
		if out.Topology == "" {
			out.Topology = schema.TopologySubnet
		}
		return out
	}
	return schema.NewEnvironmentSpace(schema.NodeSpace{Type: schema.NodeTypeRequirement})
}

// LoadCatalog reads a YAML catalog and returns its cases in file order.
func LoadCatalog(path string) ([]CaseMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	cases, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cases, nil
}

// ParseCatalog decodes a catalog and flattens it into cases.
func ParseCatalog(data []byte) ([]CaseMetadata, error) {
	var catalog Catalog
	if err := yaml.UnmarshalStrict(data, &catalog); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return catalog.Flatten()
}

// Flatten returns every case with its suite fields filled in. Suite and case
// names must be set and full names must be unique.
func (c Catalog) Flatten() ([]CaseMetadata, error) {
	var out []CaseMetadata
	seen := map[string]bool{}
	for i, suite := range c.Suites {
		if suite.Name == "" {
			return nil, fmt.Errorf("suites[%d]: name is required", i)
		}
		for j, tc := range suite.Cases {
			if tc.Name == "" {
				return nil, fmt.Errorf("suite %s: cases[%d]: name is required", suite.Name, j)
			}
			if tc.Priority < 0 || tc.Priority > 3 {
				return nil, fmt.Errorf("suite %s: case %s: priority %d must be between 0 and 3", suite.Name, tc.Name, tc.Priority)
			}
			tc.Suite = suite.Name
			if tc.Area == "" {
				tc.Area = suite.Area
			}
			if tc.Category == "" {
				tc.Category = suite.Category
			}
			tc.Tags = mergeTags(suite.Tags, tc.Tags)
			if seen[tc.FullName()] {
				return nil, fmt.Errorf("duplicate case %s", tc.FullName())
			}
			seen[tc.FullName()] = true
			out = append(out, tc)
		}
	}
	return out, nil
}

func mergeTags(suite, own []string) []string {
	if len(suite) == 0 && len(own) == 0 {
		return nil
	}
	out := make([]string, 0, len(suite)+len(own))
	seen := map[string]bool{}
	for _, t := range append(append([]string{}, suite...), own...) {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
