package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const (
	smallRequirement = `
nodeCount: 1
coreCount: 2
memoryMb: 1024
nicCount: 1
`
	bigCapability = `
nodes:
  - nodeCount: 1
    coreCount:
      min: 1
      max: 16
    memoryMb:
      min: 512
    nicCount: 1
`
)

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "lisa version dev\n", out)
}

func TestCheckCmd(t *testing.T) {
	dir := t.TempDir()
	req := writeFile(t, dir, "req.yaml", smallRequirement)
	capability := writeFile(t, dir, "cap.yaml", bigCapability)

	out, err := run(t, "check", "-r", req, "-c", capability)
	require.NoError(t, err)
	assert.Equal(t, "matched\n", out)

	tooSmall := writeFile(t, dir, "small.yaml", "nodeCount: 1\ncoreCount: 1\nmemoryMb: 512\nnicCount: 1\n")
	out, err = run(t, "check", "-r", req, "-c", tooSmall, "-o", "yaml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errNotMatched))

	var got checkOutput
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.False(t, got.Result)
	assert.Equal(t, []string{
		"0.core_count: capability 1 must be more than requirement 2",
		"0.memory_mb: capability 512 must be more than requirement 1024",
	}, got.Reasons)
}

func TestMinCapCmd(t *testing.T) {
	dir := t.TempDir()
	req := writeFile(t, dir, "req.yaml", "nodeCount: 1\ncoreCount:\n  min: 8\n")
	capability := writeFile(t, dir, "cap.yaml", bigCapability)

	out, err := run(t, "mincap", "-r", req, "-c", capability, "--output", "yaml")
	require.NoError(t, err)

	var got struct {
		Nodes []map[string]any `json:"nodes"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.Len(t, got.Nodes, 1)
	assert.Equal(t, map[string]any{"min": float64(8), "max": float64(16)}, got.Nodes[0]["coreCount"])
	assert.Equal(t, float64(0), got.Nodes[0]["gpuCount"])

	out, err = run(t, "mincap", "-r", req, "-c", capability)
	require.NoError(t, err)
	assert.Contains(t, out, "[8, 16]")
}

func TestCheckCmd_RequiresFlags(t *testing.T) {
	_, err := run(t, "check")
	assert.Error(t, err)
}

func TestRootCmd_RejectsUnknownOutput(t *testing.T) {
	_, err := run(t, "version", "-o", "json")
	assert.Error(t, err)
}

const (
	cliRunbook = `
name: cli
environment:
  environments:
    - name: lab
      nodes:
        - type: local
          capability:
            coreCount: 4
            memoryMb: 8192
testcase:
  - criteria:
      area: network
  - criteria:
      name: verify_sriov
    selectAction: exclude
`
	cliCatalog = `
suites:
  - name: network
    area: network
    cases:
      - name: verify_ping
      - name: verify_sriov
      - name: verify_throughput
        requirement:
          nodes:
            - coreCount:
                min: 32
  - name: storage
    area: storage
    cases:
      - name: verify_disk
`
)

func TestSelectCmd(t *testing.T) {
	dir := t.TempDir()
	rb := writeFile(t, dir, "runbook.yaml", cliRunbook)
	catalog := writeFile(t, dir, "catalog.yaml", cliCatalog)

	out, err := run(t, "select", "--runbook", rb, "--catalog", catalog, "-o", "yaml")
	require.NoError(t, err)

	var got []selectedCase
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	names := []string{}
	for _, c := range got {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"network.verify_ping", "network.verify_throughput"}, names)

	out, err = run(t, "select", "--runbook", rb, "--catalog", catalog)
	require.NoError(t, err)
	assert.Contains(t, out, "network.verify_ping")
	assert.Contains(t, out, "network.verify_throughput")
}

func TestPlanCmd(t *testing.T) {
	dir := t.TempDir()
	rb := writeFile(t, dir, "runbook.yaml", cliRunbook)
	catalog := writeFile(t, dir, "catalog.yaml", cliCatalog)

	out, err := run(t, "plan", "--runbook", rb, "--catalog", catalog, "-o", "yaml")
	require.NoError(t, err)

	var got planOutput
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.NotEmpty(t, got.RunID)
	require.Len(t, got.Assignments, 1)
	assert.Equal(t, "network.verify_ping", got.Assignments[0].Case)
	assert.Equal(t, "lab", got.Assignments[0].Environment)
	assert.False(t, got.Assignments[0].NewEnvironment)
	require.Len(t, got.Unassigned, 1)
	assert.Equal(t, "network.verify_throughput", got.Unassigned[0].Case)
	assert.Equal(t, []string{"lab: 0.core_count: capability 4 is out of requirement [32, inf)"}, got.Unassigned[0].Reasons)

	out, err = run(t, "plan", "--runbook", rb, "--catalog", catalog)
	require.NoError(t, err)
	assert.Contains(t, out, "network.verify_throughput")
	assert.Contains(t, out, "is out of requirement")
}
