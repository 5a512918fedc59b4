package datastores

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/gatherpics/media-ingest/common/config"
	"github.com/gatherpics/media-ingest/common/rcontext"
	"github.com/gatherpics/media-ingest/metrics"
	"github.com/gatherpics/media-ingest/util/ids"
	"github.com/minio/minio-go/v7"
	"github.com/prometheus/client_golang/prometheus"
)

// ProgressFunc receives upload progress as a 0-100 percentage.
type ProgressFunc func(percent int)

// DirectUploadTimeout scales the single-call upload timeout with file size. A
// fixed short timeout starves legitimately large files on slow uplinks, so
// the deadline grows with the byte count, with a floor for tiny files.
func DirectUploadTimeout(conf config.DirectTimeoutConfig, size int64) time.Duration {
	floor := time.Duration(conf.FloorSeconds) * time.Second
	if floor <= 0 {
		floor = 30 * time.Second
	}
	rate := conf.BytesPerSecond
	if rate <= 0 {
		return floor
	}
	scaled := time.Duration(size/rate) * time.Second
	if scaled < floor {
		return floor
	}
	return scaled
}

// approximateProgress feeds a synthesized percentage to onProgress until done
// is closed. The store gives no byte-level feedback for a single atomic call,
// so this advances toward (but never reports) 100 - completion is only
// signalled by the call itself resolving. Display use only.
func approximateProgress(done <-chan struct{}, expected time.Duration, onProgress ProgressFunc) {
	if onProgress == nil {
		return
	}
	start := time.Now()
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			pct := int(time.Since(start) * 95 / expected)
			if pct > 95 {
				pct = 95
			}
			onProgress(pct)
		}
	}
}

// Upload transfers the whole object in one call (the small-file path) and
// returns the object's location within the datastore.
func Upload(ctx rcontext.RequestContext, ds config.DatastoreConfig, data io.Reader, size int64, contentType string, sha256hash string, onProgress ProgressFunc) (string, error) {
	hasher := sha256.New()
	tee := io.TeeReader(data, hasher)
	var objectName string
	var err error

	timeout := DirectUploadTimeout(ctx.Config.Uploads.DirectTimeout, size)
	uploadCtx, cancel := context.WithTimeout(ctx.Context, timeout)
	defer cancel()

	done := make(chan struct{})
	go approximateProgress(done, estimateTransferTime(ctx.Config.Uploads.DirectTimeout, size), onProgress)
	defer close(done)

	var uploadedBytes int64
	if ds.Type == "s3" {
		var s3c *s3
		s3c, err = getS3(ds)
		if err != nil {
			return "", err
		}

		objectName, err = reserveS3ObjectName(uploadCtx, s3c)
		if err != nil {
			return "", err
		}

		metrics.S3Operations.With(prometheus.Labels{"operation": "PutObject"}).Inc()
		var info minio.UploadInfo
		info, err = s3c.client.PutObject(uploadCtx, s3c.bucket, objectName, tee, size, minio.PutObjectOptions{StorageClass: s3c.storageClass, ContentType: contentType})
		uploadedBytes = info.Size
	} else if ds.Type == "file" {
		objectName, uploadedBytes, err = persistToDisk(ds, tee)
	} else {
		return "", errors.New("unknown datastore type - contact developer")
	}

	if err != nil {
		return "", err
	}
	if err = verifyUpload(ctx, ds, objectName, size, uploadedBytes, sha256hash, hasher.Sum(nil)); err != nil {
		return "", err
	}

	if onProgress != nil {
		onProgress(100)
	}
	return objectName, nil
}

// estimateTransferTime guesses how long the transfer will take for progress
// display. Deliberately more optimistic than the timeout so the bar doesn't
// stall early.
func estimateTransferTime(conf config.DirectTimeoutConfig, size int64) time.Duration {
	rate := conf.BytesPerSecond
	if rate <= 0 {
		rate = 131072
	}
	estimated := time.Duration(size*int64(time.Second)/(rate*2))
	if estimated < time.Second {
		estimated = time.Second
	}
	return estimated
}

func verifyUpload(ctx rcontext.RequestContext, ds config.DatastoreConfig, objectName string, expectedSize int64, uploadedBytes int64, expectedHash string, actualHash []byte) error {
	if uploadedBytes != expectedSize {
		if err := Remove(ctx, ds, objectName); err != nil {
			ctx.Log.Warn("Error deleting upload (delete attempted due to persistence error): ", err)
		}
		return fmt.Errorf("upload size mismatch: expected %d got %d bytes", expectedSize, uploadedBytes)
	}

	uploadedHash := hex.EncodeToString(actualHash)
	if expectedHash != "" && uploadedHash != expectedHash {
		if err := Remove(ctx, ds, objectName); err != nil {
			ctx.Log.Warn("Error deleting upload (delete attempted due to persistence error): ", err)
		}
		return fmt.Errorf("upload hash mismatch: expected %s got %s", expectedHash, uploadedHash)
	}

	return nil
}

func reserveS3ObjectName(ctx context.Context, s3c *s3) (string, error) {
	exists := true
	attempts := 0
	var objectName string
	var err error
	for exists {
		objectName, err = ids.NewUniqueId()
		if err != nil {
			return "", err
		}

		attempts++
		if attempts > 10 {
			return "", errors.New("failed to generate suitable object name for S3 store")
		}
		metrics.S3Operations.With(prometheus.Labels{"operation": "StatObject"}).Inc()
		_, err = s3c.client.StatObject(ctx, s3c.bucket, objectName, minio.StatObjectOptions{})
		if err != nil {
			var merr minio.ErrorResponse
			if errors.As(err, &merr) {
				if merr.Code == "NoSuchKey" || merr.StatusCode == http.StatusNotFound {
					exists = false
				}
			}
		}
	}
	return objectName, nil
}

func persistToDisk(ds config.DatastoreConfig, data io.Reader) (string, int64, error) {
	basePath := ds.Options["path"]

	objectName, targetFile, err := reserveDiskLocation(basePath)
	if err != nil {
		return "", 0, err
	}

	file, err := os.OpenFile(targetFile, os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return "", 0, err
	}
	uploadedBytes, err := io.Copy(file, data)
	if err != nil {
		return "", 0, err
	}
	if err = file.Close(); err != nil {
		return "", 0, err
	}
	return objectName, uploadedBytes, nil
}

func reserveDiskLocation(basePath string) (string, string, error) {
	exists := true
	attempts := 0
	var objectName string
	var targetDir string
	var targetFile string
	var err error
	for exists {
		objectName, err = ids.NewUniqueId()
		if err != nil {
			return "", "", err
		}

		attempts++
		if attempts > 10 {
			return "", "", errors.New("failed to generate suitable file name for persistence")
		}

		firstContainer := objectName[0:2]
		secondContainer := objectName[2:4]
		fileName := objectName[4:]
		objectName = path.Join(firstContainer, secondContainer, fileName)
		targetDir = path.Join(basePath, firstContainer, secondContainer)
		targetFile = path.Join(targetDir, fileName)

		_, err = os.Stat(targetFile)
		if err != nil && !os.IsNotExist(err) {
			return "", "", err
		} else if err != nil && os.IsNotExist(err) {
			exists = false
		}
	}

	if err = os.MkdirAll(targetDir, 0755); err != nil {
		return "", "", err
	}
	return objectName, targetFile, nil
}
