package pipeline_ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateKey(t *testing.T) {
	assert.Equal(t, "photo.jpg:5000", CandidateKey("photo.jpg", 5000))

	// Same name, different size, is a different candidate
	assert.NotEqual(t, CandidateKey("photo.jpg", 5000), CandidateKey("photo.jpg", 5001))
}

func TestSessionProgressIsMonotonic(t *testing.T) {
	session := NewSession("evt1", "Party", "party")
	session.register("a:1")

	session.setProgress("a:1", 40, true)
	session.setProgress("a:1", 80, true)
	// A straggling update must not move the bar backwards
	session.setProgress("a:1", 60, true)

	outcome, ok := session.Get("a:1")
	require.True(t, ok)
	assert.Equal(t, 80, outcome.Progress)
	assert.True(t, outcome.ProgressExact)
}

func TestSessionSnapshotIsACopy(t *testing.T) {
	session := NewSession("evt1", "Party", "party")
	session.register("a:1")

	snapshot := session.Snapshot()
	require.Contains(t, snapshot, "a:1")
	entry := snapshot["a:1"]
	entry.Progress = 99

	outcome, _ := session.Get("a:1")
	assert.Equal(t, 0, outcome.Progress)
}

func TestSessionCancelQueued(t *testing.T) {
	session := NewSession("evt1", "Party", "party")
	session.register("a:1")

	assert.True(t, session.Cancel("a:1"))
	outcome, _ := session.Get("a:1")
	assert.Equal(t, StatusCancelled, outcome.Status)
}

func TestSessionCancelInFlight(t *testing.T) {
	session := NewSession("evt1", "Party", "party")
	session.register("a:1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	session.setCancel("a:1", cancel)

	assert.True(t, session.Cancel("a:1"))
	assert.Error(t, ctx.Err())
}

func TestSessionCancelUnknownOrTerminal(t *testing.T) {
	session := NewSession("evt1", "Party", "party")
	session.register("a:1")
	session.complete("a:1", "https://example.com/x", "x")

	assert.False(t, session.Cancel("a:1"))
	assert.False(t, session.Cancel("nope:0"))

	// Completion is not undone by a late cancel
	outcome, _ := session.Get("a:1")
	assert.Equal(t, StatusCompleted, outcome.Status)
}
