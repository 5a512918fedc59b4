package datastores

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/gatherpics/media-ingest/common/rcontext"
	"github.com/gatherpics/media-ingest/metrics"
	"github.com/minio/minio-go/v7"
	"github.com/prometheus/client_golang/prometheus"
)

// Backup writes a secondary durable copy of an already-uploaded object into
// the backups-kind datastore, under the same location so the copy shares the
// primary's content identity. Callers treat failure as non-fatal: the primary
// object and the metadata row are the source of truth, and a lost backup can
// be re-derived from them.
func Backup(ctx rcontext.RequestContext, data io.Reader, size int64, contentType string, location string) error {
	if !HasKind(ctx, BackupsKind) {
		ctx.Log.Debug("No backup datastore configured - skipping backup")
		return nil
	}

	ds, err := Pick(ctx, BackupsKind)
	if err != nil {
		return err
	}

	if ds.Type == "s3" {
		s3c, err := getS3(ds)
		if err != nil {
			return err
		}

		metrics.S3Operations.With(prometheus.Labels{"operation": "PutObject"}).Inc()
		info, err := s3c.client.PutObject(ctx.Context, s3c.bucket, location, data, size, minio.PutObjectOptions{StorageClass: s3c.storageClass, ContentType: contentType})
		if err != nil {
			return err
		}
		if info.Size != size {
			return errors.New("backup size mismatch")
		}
		return nil
	} else if ds.Type == "file" {
		targetFile := diskPathFor(ds, location)
		if err = os.MkdirAll(filepath.Dir(targetFile), 0755); err != nil {
			return err
		}
		file, err := os.OpenFile(targetFile, os.O_WRONLY|os.O_CREATE, 0644)
		if err != nil {
			return err
		}
		written, err := io.Copy(file, data)
		if err != nil {
			_ = file.Close()
			return err
		}
		if err = file.Close(); err != nil {
			return err
		}
		if written != size {
			return errors.New("backup size mismatch")
		}
		return nil
	}

	return errors.New("unknown datastore type - contact developer")
}
