package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lisa-platform/lisa/internal/searchspace"
)

// FeatureRDMA is the name of the RDMA networking feature.
const FeatureRDMA = "RDMA"

// Feature is a named capability flag of a node.
type Feature struct {
	Name string `json:"name"`
	// Enabled is true when the holder turns the feature on.
	Enabled bool `json:"enabled"`
	// CanDisable is true when a platform offering the feature can be asked to
	// turn it off.
	CanDisable bool `json:"canDisable,omitempty"`
}

// NewFeature returns an enabled feature that cannot be disabled.
func NewFeature(name string) Feature {
	return Feature{Name: name, Enabled: true}
}

// UnmarshalJSON accepts either a bare feature name or an object. Enabled
// defaults to true when omitted.
func (f *Feature) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*f = NewFeature(name)
		return nil
	}

	type plain Feature
	raw := struct {
		plain
		Enabled *bool `json:"enabled"`
	}{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = Feature(raw.plain)
	f.Enabled = raw.Enabled == nil || *raw.Enabled
	return nil
}

func (f Feature) String() string {
	switch {
	case !f.Enabled:
		return f.Name + "(disabled)"
	case f.CanDisable:
		return f.Name + "(optional)"
	default:
		return f.Name
	}
}

// featureSet is an ordered set of features keyed by name.
type featureSet struct {
	items []Feature
}

func newFeatureSet(features []Feature) (featureSet, error) {
	var s featureSet
	for _, f := range features {
		if err := s.add(f); err != nil {
			return featureSet{}, err
		}
	}
	return s, nil
}

func (s *featureSet) add(f Feature) error {
	if f.Name == "" {
		return fmt.Errorf("feature name must not be empty")
	}
	if _, ok := s.Get(f.Name); ok {
		return fmt.Errorf("duplicate feature %q", f.Name)
	}
	s.items = append(s.items, f)
	return nil
}

// set inserts f, replacing an existing entry with the same name in place.
func (s *featureSet) set(f Feature) {
	for i := range s.items {
		if s.items[i].Name == f.Name {
			s.items[i] = f
			return
		}
	}
	s.items = append(s.items, f)
}

// Len returns the number of features.
func (s featureSet) Len() int {
	return len(s.items)
}

// Get returns the feature with the given name.
func (s featureSet) Get(name string) (Feature, bool) {
	for _, f := range s.items {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}

// Items returns a copy of the features in declaration order.
func (s featureSet) Items() []Feature {
	return append([]Feature(nil), s.items...)
}

// Names returns the feature names in declaration order.
func (s featureSet) Names() []string {
	out := make([]string, 0, len(s.items))
	for _, f := range s.items {
		out = append(out, f.Name)
	}
	return out
}

// Equal reports whether both sets hold the same features, in any order.
func (s featureSet) Equal(other featureSet) bool {
	if len(s.items) != len(other.items) {
		return false
	}
	for _, f := range s.items {
		o, ok := other.Get(f.Name)
		if !ok || o != f {
			return false
		}
	}
	return true
}

func (s featureSet) String() string {
	return fmt.Sprint(s.items)
}

func (s featureSet) MarshalJSON() ([]byte, error) {
	if s.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.items)
}

func (s *featureSet) UnmarshalJSON(data []byte) error {
	var items []Feature
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	parsed, err := newFeatureSet(items)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// AllowedFeatures lists the features a node provides (capability) or needs
// (requirement).
//
// +kubebuilder:validation:Schemaless
// +kubebuilder:pruning:PreserveUnknownFields
type AllowedFeatures struct {
	featureSet
}

// NewAllowedFeatures builds an allow set, rejecting duplicate names.
func NewAllowedFeatures(features ...Feature) (*AllowedFeatures, error) {
	s, err := newFeatureSet(features)
	if err != nil {
		return nil, fmt.Errorf("allowed features: %w", err)
	}
	return &AllowedFeatures{featureSet: s}, nil
}

// MustAllowedFeatures is NewAllowedFeatures that panics on error.
func MustAllowedFeatures(features ...Feature) *AllowedFeatures {
	s, err := NewAllowedFeatures(features...)
	if err != nil {
		panic(err)
	}
	return s
}

// Equal compares two possibly nil allow sets. A nil set equals only nil.
func (a *AllowedFeatures) Equal(other *AllowedFeatures) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.featureSet.Equal(other.featureSet)
}

// DeepCopy returns an independent copy of a.
func (a *AllowedFeatures) DeepCopy() *AllowedFeatures {
	if a == nil {
		return nil
	}
	return &AllowedFeatures{featureSet: featureSet{items: a.Items()}}
}

// ExcludedFeatures lists the features a requirement must not be given.
// Only names matter; flags on the entries are ignored by checks.
//
// +kubebuilder:validation:Schemaless
// +kubebuilder:pruning:PreserveUnknownFields
type ExcludedFeatures struct {
	featureSet
}

// NewExcludedFeatures builds a deny set from feature names.
func NewExcludedFeatures(names ...string) (*ExcludedFeatures, error) {
	features := make([]Feature, 0, len(names))
	for _, name := range names {
		features = append(features, NewFeature(name))
	}
	s, err := newFeatureSet(features)
	if err != nil {
		return nil, fmt.Errorf("excluded features: %w", err)
	}
	return &ExcludedFeatures{featureSet: s}, nil
}

// MustExcludedFeatures is NewExcludedFeatures that panics on error.
func MustExcludedFeatures(names ...string) *ExcludedFeatures {
	s, err := NewExcludedFeatures(names...)
	if err != nil {
		panic(err)
	}
	return s
}

// Equal compares two possibly nil deny sets.
func (e *ExcludedFeatures) Equal(other *ExcludedFeatures) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.featureSet.Equal(other.featureSet)
}

// DeepCopy returns an independent copy of e.
func (e *ExcludedFeatures) DeepCopy() *ExcludedFeatures {
	if e == nil {
		return nil
	}
	return &ExcludedFeatures{featureSet: featureSet{items: e.Items()}}
}

// CheckFeatures checks that every feature the requirement asks for is offered
// by the capability in a compatible state. A nil capability set does not
// constrain features.
func CheckFeatures(requirement, capability *AllowedFeatures) searchspace.ResultReason {
	var result searchspace.ResultReason
	if requirement == nil || capability == nil {
		return result
	}
	for _, req := range requirement.items {
		var sub searchspace.ResultReason
		offered, ok := capability.Get(req.Name)
		switch {
		case !ok:
			sub.AddReasonf("capability doesn't support it, requirement is %s", req)
		case req.Enabled && !offered.Enabled:
			sub.AddReasonf("requirement is %s, but capability is %s", req, offered)
		case !req.Enabled && offered.Enabled && !offered.CanDisable:
			sub.AddReasonf("requirement is %s, but capability can't disable it", req)
		}
		result.Merge(sub, req.Name)
	}
	return result
}

// CheckExcluded fails for every excluded feature the capability provides
// unconditionally, i.e. enabled and not disableable. Optional features do
// not violate an exclusion.
func CheckExcluded(requirement *ExcludedFeatures, capability *AllowedFeatures) searchspace.ResultReason {
	var result searchspace.ResultReason
	if requirement == nil || capability == nil {
		return result
	}
	mustIncluded := mustIncludedFeatures(capability)
	for _, name := range requirement.Names() {
		if _, ok := mustIncluded.Get(name); ok {
			var sub searchspace.ResultReason
			sub.AddReason("requirement excludes it, but capability always provides it")
			result.Merge(sub, name)
		}
	}
	return result
}

func mustIncludedFeatures(capability *AllowedFeatures) featureSet {
	var out featureSet
	for _, f := range capability.items {
		if f.Enabled && !f.CanDisable {
			out.items = append(out.items, f)
		}
	}
	return out
}
