package api

import (
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gatherpics/media-ingest/common"
	"github.com/gatherpics/media-ingest/common/rcontext"
	"github.com/gatherpics/media-ingest/pipelines/pipeline_ingest"
	"github.com/gatherpics/media-ingest/util/ids"
	"github.com/gatherpics/media-ingest/util/readers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type batchCreatedResponse struct {
	BatchId string   `json:"batchId"`
	Files   []string `json:"files"`
}

type batchStatusResponse struct {
	BatchId string                              `json:"batchId"`
	Files   map[string]pipeline_ingest.Outcome `json:"files"`
}

// UploadBatch accepts a multipart batch of guest media, spools each file to
// temporary storage, and kicks off ingestion in the background. The response
// carries the batch id and per-file keys for status polling - the request
// does not wait for the (potentially very slow) transfers.
func UploadBatch(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	eventId := params["eventId"]
	if eventId == "" {
		respondJson(w, http.StatusBadRequest, BadRequest("missing event id"))
		return
	}

	ctx := rcontext.ForRequest(r, logrus.WithFields(logrus.Fields{"eventId": eventId}))

	mpReader, err := r.MultipartReader()
	if err != nil {
		respondJson(w, http.StatusBadRequest, BadRequest("expected a multipart upload"))
		return
	}

	hardCeiling := ctx.Config.Uploads.MaxSizeBytes
	if hardCeiling <= 0 {
		hardCeiling = 524288000
	}
	eventName := ""
	eventSlug := ""
	candidates := make([]*pipeline_ingest.Candidate, 0)
	spooled := make([]*os.File, 0)
	cleanup := func() {
		for _, f := range spooled {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}

	for {
		part, err := mpReader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			cleanup()
			respondJson(w, http.StatusBadRequest, BadRequest("error reading multipart body"))
			return
		}

		if part.FileName() == "" {
			switch part.FormName() {
			case "eventName":
				eventName = readFormValue(part)
			case "eventSlug":
				eventSlug = readFormValue(part)
			}
			continue
		}

		// Spool to disk behind the global hard ceiling - nothing bigger than
		// the absolute maximum is worth buffering
		tmp, err := os.CreateTemp(os.TempDir(), "gp-upload-")
		if err != nil {
			cleanup()
			respondJson(w, http.StatusInternalServerError, InternalServerError("error spooling upload"))
			return
		}
		spooled = append(spooled, tmp)

		limited := readers.LimitReaderWithOverrunError(part, hardCeiling)
		size, err := io.Copy(tmp, limited)
		if err != nil {
			cleanup()
			if errors.Is(err, common.ErrMediaTooLarge) {
				respondJson(w, http.StatusRequestEntityTooLarge, RequestTooLarge("file "+part.FileName()+" exceeds the maximum upload size"))
			} else {
				respondJson(w, http.StatusInternalServerError, InternalServerError("error spooling upload"))
			}
			return
		}
		if _, err = tmp.Seek(0, io.SeekStart); err != nil {
			cleanup()
			respondJson(w, http.StatusInternalServerError, InternalServerError("error spooling upload"))
			return
		}

		candidates = append(candidates, &pipeline_ingest.Candidate{
			FileName:     part.FileName(),
			DeclaredType: part.Header.Get("Content-Type"),
			Size:         size,
			Content:      tmp,
		})
	}

	if len(candidates) == 0 {
		cleanup()
		respondJson(w, http.StatusBadRequest, BadRequest("no files supplied"))
		return
	}

	batchId, err := ids.NewUniqueId()
	if err != nil {
		cleanup()
		respondJson(w, http.StatusInternalServerError, InternalServerError("error creating batch"))
		return
	}

	session := pipeline_ingest.NewSession(eventId, eventName, eventSlug)
	batches.put(batchId, session)

	keys := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		keys = append(keys, candidate.Key())
	}

	// The ingestion outlives this request, so it runs on a fresh context
	// rather than the request's
	go func() {
		defer cleanup()
		runCtx := rcontext.Initial().LogWithFields(logrus.Fields{"batchId": batchId, "eventId": eventId})
		runCtx.Log.Info("Starting ingestion of ", len(candidates), " files")
		pipeline_ingest.Execute(runCtx, pipeline_ingest.ProductionDeps(), session, candidates)
		runCtx.Log.Info("Batch finished")
		batches.expireAfter(batchId, retainCompletedBatches)
	}()

	respondJson(w, http.StatusAccepted, &batchCreatedResponse{BatchId: batchId, Files: keys})
}

// GetBatchStatus reports the per-file outcomes of a batch.
func GetBatchStatus(w http.ResponseWriter, r *http.Request) {
	batchId := mux.Vars(r)["batchId"]
	session, ok := batches.get(batchId)
	if !ok {
		respondJson(w, http.StatusNotFound, NotFoundError())
		return
	}

	respondJson(w, http.StatusOK, &batchStatusResponse{BatchId: batchId, Files: session.Snapshot()})
}

// CancelUpload cancels a single file within a batch. The file is identified
// by name and size via query parameters; the rest of the batch keeps going.
func CancelUpload(w http.ResponseWriter, r *http.Request) {
	batchId := mux.Vars(r)["batchId"]
	session, ok := batches.get(batchId)
	if !ok {
		respondJson(w, http.StatusNotFound, NotFoundError())
		return
	}

	fileName := r.URL.Query().Get("fileName")
	sizeStr := r.URL.Query().Get("sizeBytes")
	size, err := strconv.ParseInt(sizeStr, 10, 64)
	if fileName == "" || err != nil {
		respondJson(w, http.StatusBadRequest, BadRequest("fileName and sizeBytes query parameters are required"))
		return
	}

	key := pipeline_ingest.CandidateKey(fileName, size)
	if !session.Cancel(key) {
		respondJson(w, http.StatusNotFound, NotFoundError())
		return
	}

	logrus.WithFields(logrus.Fields{"batchId": batchId, "key": key}).Info("Upload cancelled")
	respondJson(w, http.StatusOK, map[string]interface{}{"cancelled": true})
}

func readFormValue(part io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(part, 4096))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
