package datastores

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"io"
	"os"
	"path"

	"github.com/gatherpics/media-ingest/common"
	"github.com/gatherpics/media-ingest/common/config"
	"github.com/gatherpics/media-ingest/common/rcontext"
	"github.com/gatherpics/media-ingest/metrics"
	"github.com/minio/minio-go/v7"
	"github.com/prometheus/client_golang/prometheus"
)

const defaultChunkSizeBytes = 8388608 // 8mb

// UploadChunked transfers the object as a strictly ordered sequence of parts.
// Progress is the exact fraction of bytes the store has acknowledged. The
// parts are sequential rather than parallel: on a mobile uplink parallel
// parts degrade each other, and ordered parts keep progress monotonic.
//
// Cancelling the context aborts the transfer and cleans up the partial
// object; the returned error is common.ErrUploadCancelled in that case.
func UploadChunked(ctx rcontext.RequestContext, ds config.DatastoreConfig, data io.Reader, size int64, contentType string, sha256hash string, onProgress ProgressFunc) (string, error) {
	chunkSize := ctx.Config.Uploads.ChunkSizeBytes
	if chunkSize <= 0 {
		chunkSize = defaultChunkSizeBytes
	}

	hasher := sha256.New()
	tee := io.TeeReader(data, hasher)

	var objectName string
	var uploadedBytes int64
	var err error
	if ds.Type == "s3" {
		objectName, uploadedBytes, err = chunkToS3(ctx, ds, tee, size, chunkSize, contentType, onProgress)
	} else if ds.Type == "file" {
		objectName, uploadedBytes, err = chunkToDisk(ctx, ds, tee, size, chunkSize, onProgress)
	} else {
		return "", errors.New("unknown datastore type - contact developer")
	}

	if err != nil {
		return "", err
	}
	if err = verifyUpload(ctx, ds, objectName, size, uploadedBytes, sha256hash, hasher.Sum(nil)); err != nil {
		return "", err
	}

	return objectName, nil
}

func chunkToS3(ctx rcontext.RequestContext, ds config.DatastoreConfig, data io.Reader, size int64, chunkSize int64, contentType string, onProgress ProgressFunc) (string, int64, error) {
	s3c, err := getS3(ds)
	if err != nil {
		return "", 0, err
	}

	objectName, err := reserveS3ObjectName(ctx.Context, s3c)
	if err != nil {
		return "", 0, err
	}

	metrics.S3Operations.With(prometheus.Labels{"operation": "NewMultipartUpload"}).Inc()
	uploadId, err := s3c.core.NewMultipartUpload(ctx.Context, s3c.bucket, objectName, minio.PutObjectOptions{StorageClass: s3c.storageClass, ContentType: contentType})
	if err != nil {
		return "", 0, err
	}

	abort := func() {
		metrics.S3Operations.With(prometheus.Labels{"operation": "AbortMultipartUpload"}).Inc()
		// A fresh context: the transfer context may already be cancelled
		if err2 := s3c.core.AbortMultipartUpload(context.Background(), s3c.bucket, objectName, uploadId); err2 != nil {
			ctx.Log.Warn("Error aborting multipart upload: ", err2)
		}
	}

	var acked int64
	parts := make([]minio.CompletePart, 0)
	buf := make([]byte, chunkSize)
	partNumber := 1
	for acked < size {
		if err = ctx.Context.Err(); err != nil {
			abort()
			return "", 0, common.ErrUploadCancelled
		}

		n, readErr := io.ReadFull(data, buf)
		if readErr == io.ErrUnexpectedEOF || readErr == io.EOF {
			readErr = nil
		}
		if readErr != nil {
			abort()
			return "", 0, readErr
		}
		if n == 0 {
			break
		}

		metrics.S3Operations.With(prometheus.Labels{"operation": "PutObjectPart"}).Inc()
		var part minio.ObjectPart
		part, err = s3c.core.PutObjectPart(ctx.Context, s3c.bucket, objectName, uploadId, partNumber, bytes.NewReader(buf[:n]), int64(n), minio.PutObjectPartOptions{})
		if err != nil {
			abort()
			if errors.Is(err, context.Canceled) {
				return "", 0, common.ErrUploadCancelled
			}
			return "", 0, err
		}

		parts = append(parts, minio.CompletePart{PartNumber: partNumber, ETag: part.ETag})
		acked += int64(n)
		partNumber++
		if onProgress != nil && size > 0 {
			onProgress(int(acked * 100 / size))
		}
	}

	metrics.S3Operations.With(prometheus.Labels{"operation": "CompleteMultipartUpload"}).Inc()
	if _, err = s3c.core.CompleteMultipartUpload(ctx.Context, s3c.bucket, objectName, uploadId, parts, minio.PutObjectOptions{}); err != nil {
		abort()
		return "", 0, err
	}

	return objectName, acked, nil
}

func chunkToDisk(ctx rcontext.RequestContext, ds config.DatastoreConfig, data io.Reader, size int64, chunkSize int64, onProgress ProgressFunc) (string, int64, error) {
	basePath := ds.Options["path"]

	objectName, targetFile, err := reserveDiskLocation(basePath)
	if err != nil {
		return "", 0, err
	}

	file, err := os.OpenFile(targetFile, os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return "", 0, err
	}

	cleanup := func() {
		_ = file.Close()
		if err2 := os.Remove(targetFile); err2 != nil {
			ctx.Log.Warn("Error removing partial file: ", err2)
		}
	}

	var acked int64
	buf := make([]byte, chunkSize)
	for acked < size {
		if err = ctx.Context.Err(); err != nil {
			cleanup()
			return "", 0, common.ErrUploadCancelled
		}

		n, readErr := io.ReadFull(data, buf)
		if readErr == io.ErrUnexpectedEOF || readErr == io.EOF {
			readErr = nil
		}
		if readErr != nil {
			cleanup()
			return "", 0, readErr
		}
		if n == 0 {
			break
		}

		if _, err = file.Write(buf[:n]); err != nil {
			cleanup()
			return "", 0, err
		}

		acked += int64(n)
		if onProgress != nil && size > 0 {
			onProgress(int(acked * 100 / size))
		}
	}

	if err = file.Close(); err != nil {
		return "", 0, err
	}
	return objectName, acked, nil
}

func diskPathFor(ds config.DatastoreConfig, location string) string {
	return path.Join(ds.Options["path"], location)
}
