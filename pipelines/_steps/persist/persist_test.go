package persist

import (
	"context"
	"errors"
	"testing"

	"github.com/gatherpics/media-ingest/common"
	"github.com/gatherpics/media-ingest/common/config"
	"github.com/gatherpics/media-ingest/common/rcontext"
	"github.com/gatherpics/media-ingest/database"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() rcontext.RequestContext {
	conf := config.NewDefaultMainConfig()
	return rcontext.RequestContext{
		Context: context.Background(),
		Log:     logrus.WithField("test", "persist"),
		Config:  &conf,
	}
}

type fakeStore struct {
	events map[string]*database.DbEvent
	media  []*database.DbMedia

	existsErr      error
	insertEventErr error
	insertMediaErr error

	// insertEventHook runs before the stubbed insert, letting tests simulate
	// a concurrent creator
	insertEventHook func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{events: make(map[string]*database.DbEvent)}
}

func (f *fakeStore) EventExists(ctx rcontext.RequestContext, eventId string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.events[eventId]
	return ok, nil
}

func (f *fakeStore) InsertEvent(ctx rcontext.RequestContext, record *database.DbEvent) error {
	if f.insertEventHook != nil {
		f.insertEventHook()
	}
	if f.insertEventErr != nil {
		return f.insertEventErr
	}
	if _, ok := f.events[record.EventId]; ok {
		return &pq.Error{Code: "23505"}
	}
	f.events[record.EventId] = record
	return nil
}

func (f *fakeStore) InsertMedia(ctx rcontext.RequestContext, record *database.DbMedia) error {
	if f.insertMediaErr != nil {
		return f.insertMediaErr
	}
	f.media = append(f.media, record)
	return nil
}

func TestEnsureEventCreatesMissingEvent(t *testing.T) {
	ctx := testContext()
	store := newFakeStore()

	err := EnsureEvent(ctx, store, "evt1", "Jo and Sam's Wedding", "jo-sam-2026")
	require.NoError(t, err)
	require.Contains(t, store.events, "evt1")
	assert.Equal(t, "Jo and Sam's Wedding", store.events["evt1"].Name)
	assert.Equal(t, "jo-sam-2026", store.events["evt1"].Slug)
	assert.NotZero(t, store.events["evt1"].CreationTs)
}

func TestEnsureEventIsIdempotent(t *testing.T) {
	ctx := testContext()
	store := newFakeStore()

	require.NoError(t, EnsureEvent(ctx, store, "evt1", "Party", "party"))
	require.NoError(t, EnsureEvent(ctx, store, "evt1", "Party", "party"))
	assert.Len(t, store.events, 1)
}

func TestEnsureEventToleratesConcurrentCreation(t *testing.T) {
	ctx := testContext()
	store := newFakeStore()

	// Another ingestion inserts the row between our existence check and our
	// insert, making our insert fail with a duplicate key
	store.insertEventHook = func() {
		store.events["evt1"] = &database.DbEvent{EventId: "evt1", Name: "Party", Slug: "party"}
	}

	err := EnsureEvent(ctx, store, "evt1", "Party", "party")
	assert.NoError(t, err)
}

func TestEnsureEventReportsMissingParent(t *testing.T) {
	ctx := testContext()

	// The insert claims a concurrent duplicate, but the row never actually
	// appears on re-verification
	store := newFakeStore()
	store.insertEventErr = &pq.Error{Code: "23505"}

	err := EnsureEvent(ctx, store, "evt1", "Party", "party")
	assert.ErrorIs(t, err, common.ErrEventNotFound)
}

func TestEnsureEventSurfacesOtherErrors(t *testing.T) {
	ctx := testContext()
	store := newFakeStore()
	store.existsErr = errors.New("connection refused")

	err := EnsureEvent(ctx, store, "evt1", "Party", "party")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrEventNotFound)
}

func TestInsertMediaSuccess(t *testing.T) {
	ctx := testContext()
	store := newFakeStore()

	err := InsertMedia(ctx, store, &database.DbMedia{EventId: "evt1", MediaId: "m1"})
	require.NoError(t, err)
	assert.Len(t, store.media, 1)
}

func TestInsertMediaTreatsDuplicateAsSuccess(t *testing.T) {
	ctx := testContext()
	store := newFakeStore()
	store.insertMediaErr = &pq.Error{Code: "23505"}

	err := InsertMedia(ctx, store, &database.DbMedia{EventId: "evt1", MediaId: "m1"})
	assert.NoError(t, err)
}

func TestInsertMediaMapsForeignKeyToMissingParent(t *testing.T) {
	ctx := testContext()
	store := newFakeStore()
	store.insertMediaErr = &pq.Error{Code: "23503"}

	err := InsertMedia(ctx, store, &database.DbMedia{EventId: "evt1", MediaId: "m1"})
	assert.ErrorIs(t, err, common.ErrEventNotFound)
}

func TestInsertMediaSurfacesOtherErrors(t *testing.T) {
	ctx := testContext()
	store := newFakeStore()
	store.insertMediaErr = errors.New("disk full")

	err := InsertMedia(ctx, store, &database.DbMedia{EventId: "evt1", MediaId: "m1"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrEventNotFound)
}
