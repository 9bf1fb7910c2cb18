package searchspace

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultReason_ZeroValuePasses(t *testing.T) {
	var r ResultReason
	assert.True(t, r.Result())
	assert.Empty(t, r.Reasons())
	assert.NoError(t, r.Err())
}

func TestResultReason_MergePrefixesDottedPath(t *testing.T) {
	var field ResultReason
	field.AddReason("capability 1 must be more than requirement 2")

	var node ResultReason
	node.Merge(field, "core_count")

	var env ResultReason
	env.Merge(node, "0")

	assert.False(t, env.Result())
	assert.Equal(t, []string{"0.core_count: capability 1 must be more than requirement 2"}, env.Reasons())
}

func TestResultReason_MergePassingIsNoop(t *testing.T) {
	var r ResultReason
	r.Merge(ResultReason{}, "memory_mb")
	assert.True(t, r.Result())
	assert.Empty(t, r.Reasons())
}

func TestResultReason_MergeKeepsEveryReason(t *testing.T) {
	var a, b ResultReason
	a.AddReason("a1")
	b.AddReason("b1")
	b.AddReason("b2")

	var r ResultReason
	r.Merge(a, "x")
	r.Merge(b, "y")

	assert.Equal(t, []string{"x: a1", "y: b1", "y: b2"}, r.Reasons())
}

func TestResultReason_Err(t *testing.T) {
	var r ResultReason
	r.AddReasonf("nodes shouldn't be %s", "empty")
	err := r.Err()
	assert.True(t, errors.Is(err, ErrNotMeetRequirement))
	assert.Contains(t, err.Error(), "nodes shouldn't be empty")
}
