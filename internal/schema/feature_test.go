package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"
)

func TestNewAllowedFeatures_RejectsDuplicates(t *testing.T) {
	_, err := NewAllowedFeatures(NewFeature(FeatureRDMA), NewFeature(FeatureRDMA))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate feature")

	_, err = NewExcludedFeatures("A", "A")
	assert.Error(t, err)
}

func TestCheckFeatures(t *testing.T) {
	tests := []struct {
		name        string
		requirement *AllowedFeatures
		capability  *AllowedFeatures
		want        bool
	}{
		{"nil requirement", nil, MustAllowedFeatures(), true},
		{"nil capability", MustAllowedFeatures(NewFeature(FeatureRDMA)), nil, true},
		{"missing", MustAllowedFeatures(NewFeature(FeatureRDMA)), MustAllowedFeatures(NewFeature("SRIOV")), false},
		{"enabled on both", MustAllowedFeatures(NewFeature(FeatureRDMA)), MustAllowedFeatures(NewFeature(FeatureRDMA)), true},
		{
			"required but disabled",
			MustAllowedFeatures(NewFeature(FeatureRDMA)),
			MustAllowedFeatures(Feature{Name: FeatureRDMA, Enabled: false, CanDisable: true}),
			false,
		},
		{
			"disabled and can disable",
			MustAllowedFeatures(Feature{Name: FeatureRDMA}),
			MustAllowedFeatures(Feature{Name: FeatureRDMA, Enabled: true, CanDisable: true}),
			true,
		},
		{
			"disabled but always on",
			MustAllowedFeatures(Feature{Name: FeatureRDMA}),
			MustAllowedFeatures(NewFeature(FeatureRDMA)),
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckFeatures(tt.requirement, tt.capability).Result())
		})
	}
}

func TestCheckExcluded_OnlyUnconditionalFeaturesViolate(t *testing.T) {
	excluded := MustExcludedFeatures(FeatureRDMA, "Hibernation")

	always := MustAllowedFeatures(NewFeature(FeatureRDMA), NewFeature("SRIOV"))
	result := CheckExcluded(excluded, always)
	require.False(t, result.Result())
	assert.Equal(t, []string{"RDMA: requirement excludes it, but capability always provides it"}, result.Reasons())

	optional := MustAllowedFeatures(Feature{Name: FeatureRDMA, Enabled: true, CanDisable: true})
	assert.True(t, CheckExcluded(excluded, optional).Result())

	off := MustAllowedFeatures(Feature{Name: FeatureRDMA, Enabled: false})
	assert.True(t, CheckExcluded(excluded, off).Result())

	assert.True(t, CheckExcluded(excluded, nil).Result())
}

func TestFeatureJSON(t *testing.T) {
	var set AllowedFeatures
	require.NoError(t, json.Unmarshal([]byte(`["RDMA", {"name": "SRIOV", "canDisable": true}, {"name": "Hibernation", "enabled": false}]`), &set))

	assert.Equal(t, []Feature{
		{Name: "RDMA", Enabled: true},
		{Name: "SRIOV", Enabled: true, CanDisable: true},
		{Name: "Hibernation", Enabled: false},
	}, set.Items())

	assert.Error(t, json.Unmarshal([]byte(`["RDMA", "RDMA"]`), &set))
}

func TestNodeSpaceYAML(t *testing.T) {
	doc := []byte(`
nodeCount: 2
coreCount:
  min: 4
memoryMb:
  min: 2048
  max: 8192
nicCount: 1
features:
  - RDMA
excludedFeatures:
  - name: Hibernation
`)
	var node NodeSpace
	require.NoError(t, yaml.Unmarshal(doc, &node))
	assert.Equal(t, "2", node.NodeCount.String())
	assert.Equal(t, "[4, inf)", node.CoreCount.String())
	assert.Equal(t, "[2048, 8192]", node.MemoryMB.String())
	assert.False(t, node.GPUCount.IsSet())
	assert.Equal(t, []string{FeatureRDMA}, node.Features.Names())
	assert.Equal(t, []string{"Hibernation"}, node.ExcludedFeatures.Names())

	out, err := yaml.Marshal(node)
	require.NoError(t, err)
	var back NodeSpace
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.True(t, node.Equal(back))
}
