package api

import (
	"sync"
	"time"

	"github.com/gatherpics/media-ingest/pipelines/pipeline_ingest"
)

// retainCompletedBatches is how long a finished batch stays pollable. Guests
// poll from flaky connections and may come back well after the last file
// lands, so results linger before being dropped.
const retainCompletedBatches = time.Hour

type batchRegistry struct {
	mu       sync.Mutex
	sessions map[string]*pipeline_ingest.Session
}

var batches = &batchRegistry{sessions: make(map[string]*pipeline_ingest.Session)}

func (r *batchRegistry) put(batchId string, session *pipeline_ingest.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[batchId] = session
}

func (r *batchRegistry) get(batchId string) (*pipeline_ingest.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[batchId]
	return session, ok
}

func (r *batchRegistry) expireAfter(batchId string, after time.Duration) {
	time.AfterFunc(after, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.sessions, batchId)
	})
}
