package persist

import (
	"github.com/gatherpics/media-ingest/common"
	"github.com/gatherpics/media-ingest/common/rcontext"
	"github.com/gatherpics/media-ingest/database"
	"github.com/gatherpics/media-ingest/util"
)

// MetadataStore is the relational capability the persistence sub-sequence
// runs against. Errors coming out of it are classified with
// database.ClassifyError rather than inspected as strings.
type MetadataStore interface {
	EventExists(ctx rcontext.RequestContext, eventId string) (bool, error)
	InsertEvent(ctx rcontext.RequestContext, record *database.DbEvent) error
	InsertMedia(ctx rcontext.RequestContext, record *database.DbMedia) error
}

// EnsureEvent lazily creates the parent event row. Concurrent creators are
// expected: a duplicate-key error means another ingestion won the race, which
// is success from our point of view. After creating we verify the row really
// is there - a missing parent after that is common.ErrEventNotFound, a
// distinct caller-recoverable class.
func EnsureEvent(ctx rcontext.RequestContext, db MetadataStore, eventId string, name string, slug string) error {
	// Step 1: Check whether the event already exists
	exists, err := db.EventExists(ctx, eventId)
	if err != nil {
		return err
	}

	// Step 2: Create it if needed, tolerating a concurrent creation
	if !exists {
		err = db.InsertEvent(ctx, &database.DbEvent{
			EventId:    eventId,
			Name:       name,
			Slug:       slug,
			CreationTs: util.NowMillis(),
		})
		switch database.ClassifyError(err) {
		case database.Ok:
			ctx.Log.Info("Created event record: ", eventId)
		case database.DuplicateIgnored:
			ctx.Log.Debug("Event record was created concurrently - continuing")
		default:
			return err
		}
	}

	// Step 3: Re-verify - defends against a creation path that silently no-ops
	exists, err = db.EventExists(ctx, eventId)
	if err != nil {
		return err
	}
	if !exists {
		return common.ErrEventNotFound
	}

	return nil
}

// InsertMedia persists the media row idempotently. A duplicate key means a
// retry of an already-completed insert and is success; a foreign-key
// violation is translated to the same missing-parent class EnsureEvent uses.
func InsertMedia(ctx rcontext.RequestContext, db MetadataStore, record *database.DbMedia) error {
	err := db.InsertMedia(ctx, record)
	switch database.ClassifyError(err) {
	case database.Ok:
		return nil
	case database.DuplicateIgnored:
		ctx.Log.Debug("Media record already exists - treating as success")
		return nil
	case database.ForeignKeyViolation:
		return common.ErrEventNotFound
	default:
		return err
	}
}
