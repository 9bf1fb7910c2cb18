package planner

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lisa-platform/lisa/internal/runbook"
	"github.com/lisa-platform/lisa/internal/schema"
	"github.com/lisa-platform/lisa/internal/searchspace"
	"github.com/lisa-platform/lisa/internal/testselector"
	"github.com/lisa-platform/lisa/internal/testsuite"
)

const plannerRunbook = `
environment:
  environments:
    - name: small
      nodes:
        - type: local
          capability:
            coreCount: 2
            memoryMb: 4096
    - name: large
      nodes:
        - type: requirement
          nodeCount: 1
          coreCount:
            min: 8
            max: 16
          memoryMb:
            min: 16384
          nicCount:
            min: 1
`

func environments(t *testing.T) []runbook.Environment {
	t.Helper()
	rb, err := runbook.Parse([]byte(plannerRunbook))
	require.NoError(t, err)
	return rb.Environment.Environments
}

func runtimeCase(name string, cores int) testselector.RuntimeCase {
	c := testsuite.CaseMetadata{Suite: "suite", Name: name}
	if cores > 0 {
		req := schema.NewEnvironmentSpace(schema.NodeSpace{CoreCount: searchspace.AtLeast(cores)})
		c.Requirement = &req
	}
	return testselector.RuntimeCase{Metadata: c, Times: 1}
}

func TestBuild_AssignsFirstFittingEnvironment(t *testing.T) {
	plan := Build(logr.Discard(), []testselector.RuntimeCase{
		runtimeCase("any", 0),
		runtimeCase("big", 8),
	}, environments(t))

	_, err := uuid.Parse(plan.RunID)
	require.NoError(t, err)
	require.Empty(t, plan.Unassigned)
	require.Len(t, plan.Assignments, 2)

	first := plan.Assignments[0]
	assert.Equal(t, "small", first.Environment)
	assert.False(t, first.NewEnvironment)
	assert.Equal(t, "small", first.MinCapability.Name)

	second := plan.Assignments[1]
	assert.Equal(t, "large", second.Environment)
	assert.True(t, second.NewEnvironment, "requirement nodes have to be created")

	want := schema.NodeSpace{
		Type:      schema.NodeTypeRequirement,
		NodeCount: searchspace.Exact(1),
		CoreCount: searchspace.Range(8, 16),
		MemoryMB:  searchspace.AtLeast(16384),
		NICCount:  searchspace.AtLeast(1),
		GPUCount:  searchspace.AtLeast(0),
		Features:  &schema.AllowedFeatures{},
	}
	got := second.MinCapability.Nodes[0]
	if !want.Equal(got) {
		t.Fatalf("min capability mismatch (-want +got):\n%s", cmp.Diff(want.String(), got.String()))
	}
}

func TestBuild_PinnedEnvironment(t *testing.T) {
	c := runtimeCase("pinned", 0)
	c.Environment = "large"
	c.UseNewEnvironment = true

	plan := Build(logr.Discard(), []testselector.RuntimeCase{c}, environments(t))
	require.Len(t, plan.Assignments, 1)
	assert.Equal(t, "large", plan.Assignments[0].Environment)

	c.Environment = "missing"
	plan = Build(logr.Discard(), []testselector.RuntimeCase{c}, environments(t))
	require.Len(t, plan.Unassigned, 1)
	assert.Equal(t, []string{`environment "missing" is not defined`}, plan.Unassigned[0].Reasons)
}

func TestBuild_UnassignedCollectsReasons(t *testing.T) {
	plan := Build(logr.Discard(), []testselector.RuntimeCase{runtimeCase("huge", 64)}, environments(t))
	require.Empty(t, plan.Assignments)
	require.Len(t, plan.Unassigned, 1)
	assert.Equal(t, []string{
		"small: 0.core_count: capability 2 is out of requirement [64, inf)",
		"large: 0.core_count: capability [8, 16] doesn't cover requirement [64, inf)",
	}, plan.Unassigned[0].Reasons)

	plan = Build(logr.Discard(), []testselector.RuntimeCase{runtimeCase("any", 0)}, nil)
	require.Len(t, plan.Unassigned, 1)
	assert.Equal(t, []string{"no environment is defined"}, plan.Unassigned[0].Reasons)
}

func TestBuild_RunIDsAreUnique(t *testing.T) {
	a := Build(logr.Discard(), nil, nil)
	b := Build(logr.Discard(), nil, nil)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestBuild_PartialRequirementNodeTakesDefaults(t *testing.T) {
	rb, err := runbook.Parse([]byte(`
environment:
  environments:
    - name: vm
      nodes:
        - type: requirement
          coreCount: 8
`))
	require.NoError(t, err)

	plan := Build(logr.Discard(), []testselector.RuntimeCase{
		runtimeCase("any", 0),
		runtimeCase("eight", 8),
	}, rb.Environment.Environments)
	require.Empty(t, plan.Unassigned)
	require.Len(t, plan.Assignments, 2)

	got := plan.Assignments[1].MinCapability.Nodes[0]
	assert.Equal(t, "vm", plan.Assignments[1].Environment)
	assert.True(t, searchspace.Exact(8).Equal(got.CoreCount), got.String())
	assert.True(t, searchspace.AtLeast(512).Equal(got.MemoryMB), got.String())
	assert.True(t, searchspace.Exact(1).Equal(got.NodeCount), got.String())
}
