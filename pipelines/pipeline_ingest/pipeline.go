package pipeline_ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gatherpics/media-ingest/audit"
	"github.com/gatherpics/media-ingest/common"
	"github.com/gatherpics/media-ingest/common/rcontext"
	"github.com/gatherpics/media-ingest/database"
	"github.com/gatherpics/media-ingest/metrics"
	"github.com/gatherpics/media-ingest/pipelines/_steps/compress"
	"github.com/gatherpics/media-ingest/pipelines/_steps/limits"
	"github.com/gatherpics/media-ingest/pipelines/_steps/persist"
	"github.com/gatherpics/media-ingest/pipelines/_steps/validate"
	"github.com/gatherpics/media-ingest/util"
	"github.com/gatherpics/media-ingest/util/ids"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Execute ingests a batch of candidates strictly sequentially. Guest uplinks
// at venues are slow and flaky: parallel transfers degrade each other and
// multiply the failure surface, so one file moves at a time and a failure or
// cancellation of one candidate never stops the rest of the batch.
//
// Execute blocks until every candidate has reached a terminal status. Callers
// poll the session for per-file outcomes while it runs.
func Execute(ctx rcontext.RequestContext, deps Deps, session *Session, batch []*Candidate) {
	// Register the whole batch up front so status polls see every file as
	// queued immediately
	for _, candidate := range batch {
		session.register(candidate.Key())
	}

	for _, candidate := range batch {
		processOne(ctx, deps, session, candidate)
	}
}

func processOne(ctx rcontext.RequestContext, deps Deps, session *Session, candidate *Candidate) {
	key := candidate.Key()

	// Cancelled while still queued
	if session.isCancelled(key) {
		metrics.IngestedFiles.With(prometheus.Labels{"outcome": "cancelled"}).Inc()
		return
	}

	fileCtx, cancel := ctx.WithCancel()
	defer cancel()
	session.setCancel(key, cancel)
	defer session.clearCancel(key)

	fileCtx = fileCtx.LogWithFields(logrus.Fields{
		"eventId":   session.EventId,
		"fileName":  candidate.FileName,
		"sizeBytes": candidate.Size,
	})

	// Step 1: Validate the candidate against the allow-list
	session.setStatus(key, StatusValidating)
	checked := validate.Check(fileCtx, candidate.FileName, candidate.DeclaredType, candidate.Size, candidate.Content)
	if !checked.Valid {
		message := strings.Join(checked.Errors, "; ")
		metrics.ValidationRejections.With(prometheus.Labels{"reason": "type"}).Inc()
		recordAudit(fileCtx, deps, session, candidate, "upload rejected: "+message, audit.SeverityHigh, map[string]interface{}{
			"declaredType": candidate.DeclaredType,
		})
		failCandidate(session, key, ErrorCodeValidation, message)
		return
	}
	for _, warning := range checked.Warnings {
		session.addWarning(key, warning)
	}

	contentType := checked.ContentType
	isVideo := checked.IsVideo
	size := candidate.Size
	var content io.ReadSeeker = candidate.Content

	// Step 2: Derive the adaptive size ceilings for this candidate
	decision := limits.Decide(fileCtx, candidate.FileName, contentType, isVideo)
	sizeStatus := decision.StatusFor(size)

	// Step 3: Best-effort compression for oversized images. Videos are passed
	// through untouched - re-encoding them server-side is out of scope.
	compressAbove := fileCtx.Config.Uploads.CompressAboveBytes
	if !isVideo && (sizeStatus != limits.StatusAccepted || (compressAbove > 0 && size > compressAbove)) {
		session.setStatus(key, StatusCompressing)
		if data, err := readAllAndRewind(content); err != nil {
			fileCtx.Log.Warn("Error buffering image for compression - continuing with original: ", err)
		} else if shrunk, newType, err := compress.Shrink(fileCtx, data, contentType, decision.RecommendedMaxBytes); err != nil {
			metrics.CompressionAttempts.With(prometheus.Labels{"result": "failed"}).Inc()
			fileCtx.Log.Warn("Compression failed - continuing with original: ", err)
		} else {
			metrics.CompressionAttempts.With(prometheus.Labels{"result": "success"}).Inc()
			fileCtx.Log.Infof("Compressed %s to %s", humanize.Bytes(uint64(size)), humanize.Bytes(uint64(len(shrunk))))
			content = bytes.NewReader(shrunk)
			size = int64(len(shrunk))
			contentType = newType
		}

		// Step 4: Re-check the ceiling - compression is best-effort and the
		// result is never assumed to be under the target
		sizeStatus = decision.StatusFor(size)
	}

	// Step 5: Enforce the allowed ceiling before any network transfer starts
	if sizeStatus == limits.StatusRejected {
		message := fmt.Sprintf("file is too large (%s) - %s", humanize.Bytes(uint64(size)), decision.Reason)
		metrics.ValidationRejections.With(prometheus.Labels{"reason": "size"}).Inc()
		recordAudit(fileCtx, deps, session, candidate, "upload rejected: "+message, audit.SeverityHigh, map[string]interface{}{
			"contentType": contentType,
		})
		failCandidate(session, key, ErrorCodeValidation, message)
		return
	}
	if sizeStatus == limits.StatusWarning {
		session.addWarning(key, fmt.Sprintf("file is larger than recommended - %s", decision.Reason))
	}

	// Step 6: Fingerprint the stream for post-upload verification
	sha256hash, err := sha256Of(content)
	if err != nil {
		failCandidate(session, key, ErrorCodeInternal, "error reading file: "+err.Error())
		return
	}

	// Step 7: Transfer to the gallery datastore. Large files go through the
	// chunked transport (exact progress), small ones through the single-call
	// transport (approximated progress).
	session.setStatus(key, StatusUploading)
	chunked := fileCtx.Config.Uploads.ChunkAboveBytes > 0 && size > fileCtx.Config.Uploads.ChunkAboveBytes
	onProgress := func(percent int) {
		session.setProgress(key, percent, chunked)
	}

	transport := "direct"
	if chunked {
		transport = "chunked"
	}
	start := time.Now()
	var location string
	if chunked {
		location, err = deps.Blobs.UploadChunked(fileCtx, content, size, contentType, sha256hash, onProgress)
	} else {
		location, err = deps.Blobs.UploadDirect(fileCtx, content, size, contentType, sha256hash, onProgress)
	}
	if err != nil {
		if errors.Is(err, common.ErrUploadCancelled) || fileCtx.Context.Err() != nil {
			fileCtx.Log.Info("Upload cancelled by user")
			session.markCancelled(key)
			metrics.IngestedFiles.With(prometheus.Labels{"outcome": "cancelled"}).Inc()
			return
		}
		recordAudit(fileCtx, deps, session, candidate, "upload failed: "+err.Error(), audit.SeverityHigh, map[string]interface{}{
			"transport": transport,
		})
		failCandidate(session, key, ErrorCodeTransport, "upload failed: "+err.Error())
		return
	}
	metrics.UploadedBytes.With(prometheus.Labels{"transport": transport}).Add(float64(size))
	metrics.UploadDuration.With(prometheus.Labels{"transport": transport}).Observe(time.Since(start).Seconds())

	// A cancel that lands after the transfer finishes must still keep the file
	// out of the gallery - remove the orphaned object best-effort
	if fileCtx.Context.Err() != nil {
		if err = deps.Blobs.Remove(fileCtx, location); err != nil {
			fileCtx.Log.Warn("Error removing object for cancelled upload: ", err)
		}
		session.markCancelled(key)
		metrics.IngestedFiles.With(prometheus.Labels{"outcome": "cancelled"}).Inc()
		return
	}

	session.setStatus(key, StatusUploaded)
	session.setProgress(key, 100, chunked)

	// Step 8: Secondary durable copy, never fatal
	session.setStatus(key, StatusBackingUp)
	if _, err = content.Seek(0, io.SeekStart); err != nil {
		fileCtx.Log.Warn("Non-fatal error rewinding stream for backup: ", err)
		metrics.BackupFailures.Inc()
	} else if err = deps.Blobs.Backup(fileCtx, content, size, contentType, location); err != nil {
		fileCtx.Log.Warn("Non-fatal error writing backup copy: ", err)
		metrics.BackupFailures.Inc()
	}

	// Step 9: Persist metadata. The parent event row is created lazily and
	// idempotently; duplicate media rows mean a retried insert and are success.
	session.setStatus(key, StatusPersisting)
	if err = persist.EnsureEvent(fileCtx, deps.Store, session.EventId, session.EventName, session.EventSlug); err != nil {
		persistFailure(fileCtx, deps, session, candidate, err)
		return
	}

	publicUrl, err := deps.Blobs.PublicUrl(fileCtx, location)
	if err != nil {
		persistFailure(fileCtx, deps, session, candidate, err)
		return
	}

	mediaId, err := ids.NewUniqueId()
	if err != nil {
		persistFailure(fileCtx, deps, session, candidate, err)
		return
	}

	err = persist.InsertMedia(fileCtx, deps.Store, &database.DbMedia{
		EventId:     session.EventId,
		MediaId:     mediaId,
		UploadName:  candidate.FileName,
		ContentType: contentType,
		IsVideo:     isVideo,
		SizeBytes:   size,
		Sha256Hash:  sha256hash,
		Location:    location,
		PublicUrl:   publicUrl,
		CreationTs:  util.NowMillis(),
	})
	if err != nil {
		persistFailure(fileCtx, deps, session, candidate, err)
		return
	}

	// Step 10: Done
	recordAudit(fileCtx, deps, session, candidate, "media ingested", audit.SeverityLow, map[string]interface{}{
		"contentType": contentType,
		"location":    location,
		"transport":   transport,
	})
	session.complete(key, publicUrl, location)
	metrics.IngestedFiles.With(prometheus.Labels{"outcome": "completed"}).Inc()
	fileCtx.Log.Info("Ingested media at ", location)
}

// persistFailure maps persistence errors to their outcome classes. A missing
// parent event is recoverable by the caller (re-create the event, retry);
// anything else after a successful upload is critical because the object is
// now in storage without a row pointing at it.
func persistFailure(ctx rcontext.RequestContext, deps Deps, session *Session, candidate *Candidate, err error) {
	key := candidate.Key()
	if errors.Is(err, common.ErrEventNotFound) {
		recordAudit(ctx, deps, session, candidate, "event record missing during persistence", audit.SeverityHigh, nil)
		failCandidate(session, key, ErrorCodeMissingParent, "the event for this upload could not be found")
		return
	}
	recordAudit(ctx, deps, session, candidate, "metadata persistence failed: "+err.Error(), audit.SeverityCritical, nil)
	failCandidate(session, key, ErrorCodePersistence, err.Error())
}

func failCandidate(session *Session, key string, errorCode string, message string) {
	session.fail(key, errorCode, message)
	metrics.IngestedFiles.With(prometheus.Labels{"outcome": "failed"}).Inc()
}

func recordAudit(ctx rcontext.RequestContext, deps Deps, session *Session, candidate *Candidate, message string, severity audit.Severity, metadata map[string]interface{}) {
	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	metadata["sizeBytes"] = candidate.Size
	audit.Record(ctx, deps.Audit, audit.Entry{
		EventId:  session.EventId,
		FileName: candidate.FileName,
		Message:  message,
		Severity: severity,
		Metadata: metadata,
	})
}

func readAllAndRewind(content io.ReadSeeker) ([]byte, error) {
	if _, err := content.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	if _, err = content.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return data, nil
}
