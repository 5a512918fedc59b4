package audit

import (
	"github.com/gatherpics/media-ingest/common/rcontext"
	"github.com/gatherpics/media-ingest/database"
	"github.com/gatherpics/media-ingest/metrics"
	"github.com/gatherpics/media-ingest/util"
	"github.com/getsentry/sentry-go"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type Entry struct {
	EventId  string
	FileName string
	Message  string
	Severity Severity
	Metadata map[string]interface{}
}

// Sink is the append-only audit capability. The production sink writes to the
// audit_events table; tests substitute an in-memory one.
type Sink interface {
	Append(ctx rcontext.RequestContext, entry Entry) error
}

type databaseSink struct{}

func NewDatabaseSink() Sink {
	return &databaseSink{}
}

func (s *databaseSink) Append(ctx rcontext.RequestContext, entry Entry) error {
	meta := database.AnonymousJson(entry.Metadata)
	if meta == nil {
		meta = database.AnonymousJson{}
	}
	return database.GetInstance().AuditLog.Prepare(ctx).Insert(&database.DbAuditEvent{
		EventId:  entry.EventId,
		FileName: entry.FileName,
		Message:  entry.Message,
		Severity: string(entry.Severity),
		Metadata: &meta,
		Ts:       util.NowMillis(),
	})
}

// Record appends an audit entry, swallowing any sink failure. Losing an audit
// line must never cost us an otherwise-successful upload, so the error is
// logged and captured but not returned.
func Record(ctx rcontext.RequestContext, sink Sink, entry Entry) {
	if err := sink.Append(ctx, entry); err != nil {
		ctx.Log.Warn("Non-fatal error writing audit event: ", err)
		metrics.AuditWriteFailures.Inc()
		sentry.CaptureException(err)
	}
}
