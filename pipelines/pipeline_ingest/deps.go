package pipeline_ingest

import (
	"io"

	"github.com/gatherpics/media-ingest/audit"
	"github.com/gatherpics/media-ingest/common/rcontext"
	"github.com/gatherpics/media-ingest/database"
	"github.com/gatherpics/media-ingest/datastores"
	"github.com/gatherpics/media-ingest/pipelines/_steps/persist"
)

// BlobStore is the object-storage capability the orchestrator talks to. The
// production implementation resolves the gallery datastore from config on
// every call; tests substitute an in-memory store.
type BlobStore interface {
	UploadDirect(ctx rcontext.RequestContext, data io.Reader, size int64, contentType string, sha256hash string, onProgress datastores.ProgressFunc) (string, error)
	UploadChunked(ctx rcontext.RequestContext, data io.Reader, size int64, contentType string, sha256hash string, onProgress datastores.ProgressFunc) (string, error)
	PublicUrl(ctx rcontext.RequestContext, location string) (string, error)
	Backup(ctx rcontext.RequestContext, data io.Reader, size int64, contentType string, location string) error
	Remove(ctx rcontext.RequestContext, location string) error
}

// Deps bundles the external capabilities for one ingestion run.
type Deps struct {
	Blobs BlobStore
	Store persist.MetadataStore
	Audit audit.Sink
}

// ProductionDeps wires the orchestrator to the real datastores, database and
// audit table.
func ProductionDeps() Deps {
	return Deps{
		Blobs: &storeBackedBlobs{},
		Store: &dbMetadataStore{},
		Audit: audit.NewDatabaseSink(),
	}
}

type storeBackedBlobs struct{}

func (b *storeBackedBlobs) UploadDirect(ctx rcontext.RequestContext, data io.Reader, size int64, contentType string, sha256hash string, onProgress datastores.ProgressFunc) (string, error) {
	ds, err := datastores.Pick(ctx, datastores.GalleryMediaKind)
	if err != nil {
		return "", err
	}
	return datastores.Upload(ctx, ds, data, size, contentType, sha256hash, onProgress)
}

func (b *storeBackedBlobs) UploadChunked(ctx rcontext.RequestContext, data io.Reader, size int64, contentType string, sha256hash string, onProgress datastores.ProgressFunc) (string, error) {
	ds, err := datastores.Pick(ctx, datastores.GalleryMediaKind)
	if err != nil {
		return "", err
	}
	return datastores.UploadChunked(ctx, ds, data, size, contentType, sha256hash, onProgress)
}

func (b *storeBackedBlobs) PublicUrl(ctx rcontext.RequestContext, location string) (string, error) {
	ds, err := datastores.Pick(ctx, datastores.GalleryMediaKind)
	if err != nil {
		return "", err
	}
	return datastores.PublicUrl(ds, location)
}

func (b *storeBackedBlobs) Backup(ctx rcontext.RequestContext, data io.Reader, size int64, contentType string, location string) error {
	return datastores.Backup(ctx, data, size, contentType, location)
}

func (b *storeBackedBlobs) Remove(ctx rcontext.RequestContext, location string) error {
	ds, err := datastores.Pick(ctx, datastores.GalleryMediaKind)
	if err != nil {
		return err
	}
	return datastores.Remove(ctx, ds, location)
}

type dbMetadataStore struct{}

func (s *dbMetadataStore) EventExists(ctx rcontext.RequestContext, eventId string) (bool, error) {
	return database.GetInstance().Events.Prepare(ctx).IdExists(eventId)
}

func (s *dbMetadataStore) InsertEvent(ctx rcontext.RequestContext, record *database.DbEvent) error {
	return database.GetInstance().Events.Prepare(ctx).Insert(record)
}

func (s *dbMetadataStore) InsertMedia(ctx rcontext.RequestContext, record *database.DbMedia) error {
	return database.GetInstance().Media.Prepare(ctx).Insert(record)
}
