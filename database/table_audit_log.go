package database

import (
	"database/sql"
	"errors"

	"github.com/gatherpics/media-ingest/common/rcontext"
)

type DbAuditEvent struct {
	EventId  string
	FileName string
	Message  string
	Severity string
	Metadata *AnonymousJson
	Ts       int64
}

const insertAuditEvent = "INSERT INTO audit_events (event_id, file_name, message, severity, metadata, ts) VALUES ($1, $2, $3, $4, $5, $6);"
const selectAuditEventsByEventId = "SELECT event_id, file_name, message, severity, metadata, ts FROM audit_events WHERE event_id = $1 ORDER BY ts ASC;"

type auditLogTableStatements struct {
	insertAuditEvent           *sql.Stmt
	selectAuditEventsByEventId *sql.Stmt
}

type auditLogTableWithContext struct {
	statements *auditLogTableStatements
	ctx        rcontext.RequestContext
}

func prepareAuditLogTables(db *sql.DB) (*auditLogTableStatements, error) {
	var err error
	var stmts = &auditLogTableStatements{}

	if stmts.insertAuditEvent, err = db.Prepare(insertAuditEvent); err != nil {
		return nil, errors.New("error preparing insertAuditEvent: " + err.Error())
	}
	if stmts.selectAuditEventsByEventId, err = db.Prepare(selectAuditEventsByEventId); err != nil {
		return nil, errors.New("error preparing selectAuditEventsByEventId: " + err.Error())
	}

	return stmts, nil
}

func (s *auditLogTableStatements) Prepare(ctx rcontext.RequestContext) *auditLogTableWithContext {
	return &auditLogTableWithContext{
		statements: s,
		ctx:        ctx,
	}
}

// Insert appends one audit event. The table is append-only: nothing in this
// codebase updates or deletes rows from it.
func (s *auditLogTableWithContext) Insert(record *DbAuditEvent) error {
	_, err := s.statements.insertAuditEvent.ExecContext(s.ctx, record.EventId, record.FileName, record.Message, record.Severity, record.Metadata, record.Ts)
	return err
}

func (s *auditLogTableWithContext) GetByEventId(eventId string) ([]*DbAuditEvent, error) {
	results := make([]*DbAuditEvent, 0)
	rows, err := s.statements.selectAuditEventsByEventId.QueryContext(s.ctx, eventId)
	if err != nil {
		if err == sql.ErrNoRows {
			return results, nil
		}
		return nil, err
	}
	for rows.Next() {
		val := &DbAuditEvent{Metadata: &AnonymousJson{}}
		if err = rows.Scan(&val.EventId, &val.FileName, &val.Message, &val.Severity, &val.Metadata, &val.Ts); err != nil {
			return nil, err
		}
		results = append(results, val)
	}

	return results, nil
}
