package datastores

import (
	"errors"
	"os"

	"github.com/gatherpics/media-ingest/common/config"
	"github.com/gatherpics/media-ingest/common/rcontext"
	"github.com/gatherpics/media-ingest/metrics"
	"github.com/minio/minio-go/v7"
	"github.com/prometheus/client_golang/prometheus"
)

func Remove(ctx rcontext.RequestContext, ds config.DatastoreConfig, location string) error {
	if ds.Type == "s3" {
		s3c, err := getS3(ds)
		if err != nil {
			return err
		}

		metrics.S3Operations.With(prometheus.Labels{"operation": "RemoveObject"}).Inc()
		return s3c.client.RemoveObject(ctx.Context, s3c.bucket, location, minio.RemoveObjectOptions{})
	} else if ds.Type == "file" {
		return os.Remove(diskPathFor(ds, location))
	} else {
		return errors.New("unknown datastore type - contact developer")
	}
}
