package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companyclean-engine/internal/domain"
)

func TestJournalRecordsInOrder(t *testing.T) {
	j := NewJournal()
	j.Record(MakeEvent(RepairPrefix+"swap", "Acme", "min >= max", nil).ForRole(0))
	j.Record(MakeEvent(TypeMergeConflict, "Acme", "industry disagrees", nil).AsIssue(domain.CategoryDuplicate))
	j.Record(MakeEvent(RepairPrefix+"default", "Beta", "missing range", nil))
	j.Record(MakeEvent(RepairPrefix+"swap", "Beta", "min >= max", nil))

	evs := j.Events()
	require.Len(t, evs, 4)
	assert.Equal(t, "Acme", evs[0].Subject)
	require.NotNil(t, evs[0].RoleIndex)
	assert.Equal(t, 0, *evs[0].RoleIndex)

	assert.Equal(t, 3, j.Count(RepairPrefix))
	assert.Equal(t, 1, j.Count(TypeMergeConflict))
	assert.Equal(t, map[string]int{"swap": 2, "default": 1}, j.Repairs())

	issues := j.Issues()
	require.Len(t, issues, 1)
	assert.Equal(t, domain.SeverityInfo, issues[0].Severity)
	assert.Equal(t, domain.CategoryDuplicate, issues[0].Category)
}

func TestNilJournal(t *testing.T) {
	var j *Journal
	j.Record(MakeEvent(TypeDecodeProblem, "x", "y", nil))
	assert.Nil(t, j.Events())
	assert.Zero(t, j.Count(TypeDecodeProblem))
	assert.Empty(t, j.Repairs())

	ch := j.Subscribe()
	_, open := <-ch
	assert.False(t, open, "subscribing to a nil journal yields a closed channel")
	assert.NotPanics(t, func() { j.Unsubscribe(ch) })
}

func TestUnsubscribeTwice(t *testing.T) {
	j := NewJournal()
	ch := j.Subscribe()
	j.Unsubscribe(ch)
	assert.NotPanics(t, func() { j.Unsubscribe(ch) })
}

func TestSubscribe(t *testing.T) {
	j := NewJournal()
	ch := j.Subscribe()
	j.Record(MakeEvent(TypeResolveAmbiguous, "Acme", "near threshold", map[string]float64{"sim": 0.93}))

	e := <-ch
	assert.Equal(t, TypeResolveAmbiguous, e.Type)
	var data map[string]float64
	require.NoError(t, json.Unmarshal(e.Data, &data))
	assert.InDelta(t, 0.93, data["sim"], 1e-9)

	j.Unsubscribe(ch)
	_, open := <-ch
	assert.False(t, open)
	j.Record(MakeEvent(TypeResolveAmbiguous, "Acme", "after unsubscribe", nil))
	assert.Len(t, j.Events(), 2)
}
