package testsuite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lisa-platform/lisa/internal/schema"
	"github.com/lisa-platform/lisa/internal/searchspace"
)

const sampleCatalog = `
suites:
  - name: network
    area: network
    category: functional
    tags: [net, smoke]
    cases:
      - name: verify_sriov
        priority: 1
        tags: [sriov, net]
        requirement:
          nodes:
            - nodeCount: 1
              nicCount:
                min: 2
              features: [SRIOV]
      - name: verify_ping
  - name: storage
    area: storage
    cases:
      - name: verify_disk
        category: stress
        priority: 3
`

func TestParseCatalog(t *testing.T) {
	cases, err := ParseCatalog([]byte(sampleCatalog))
	require.NoError(t, err)
	require.Len(t, cases, 3)

	sriov := cases[0]
	assert.Equal(t, "network.verify_sriov", sriov.FullName())
	assert.Equal(t, "network", sriov.Area)
	assert.Equal(t, "functional", sriov.Category)
	assert.Equal(t, []string{"net", "smoke", "sriov"}, sriov.Tags)
	assert.Equal(t, 1, sriov.Priority)

	req := sriov.EnvironmentRequirement()
	require.Len(t, req.Nodes, 1)
	assert.True(t, searchspace.AtLeast(2).Equal(req.Nodes[0].NICCount))

	ping := cases[1]
	assert.Equal(t, 0, ping.Priority)
	assert.Equal(t, []string{"net", "smoke"}, ping.Tags)
	def := ping.EnvironmentRequirement()
	require.Len(t, def.Nodes, 1)
	assert.Equal(t, schema.TopologySubnet, def.Topology)
	assert.False(t, def.Nodes[0].CoreCount.IsSet())

	disk := cases[2]
	assert.Equal(t, "storage.verify_disk", disk.FullName())
	assert.Equal(t, "stress", disk.Category, "case category overrides the suite")
	assert.Nil(t, disk.Tags)
}

func TestParseCatalog_Errors(t *testing.T) {
	tests := map[string]string{
		"missing suite name": `suites: [{cases: [{name: a}]}]`,
		"missing case name":  `suites: [{name: s, cases: [{priority: 1}]}]`,
		"bad priority":       `suites: [{name: s, cases: [{name: a, priority: 4}]}]`,
		"duplicate case":     `suites: [{name: s, cases: [{name: a}, {name: a}]}]`,
		"unknown field":      `suites: [{name: s, cases: [{name: a, prio: 1}]}]`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestEnvironmentRequirement_ReturnsCopy(t *testing.T) {
	cases, err := ParseCatalog([]byte(sampleCatalog))
	require.NoError(t, err)

	req := cases[0].EnvironmentRequirement()
	req.Nodes[0].NICCount = searchspace.Exact(8)
	assert.True(t, searchspace.AtLeast(2).Equal(cases[0].Requirement.Nodes[0].NICCount))
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o644))

	cases, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Len(t, cases, 3)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
