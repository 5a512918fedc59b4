package database

import (
	"database/sql"
	"errors"

	"github.com/gatherpics/media-ingest/common/rcontext"
)

type DbEvent struct {
	EventId    string
	Name       string
	Slug       string
	CreationTs int64
}

const selectEventById = "SELECT event_id, name, slug, creation_ts FROM events WHERE event_id = $1;"
const selectEventExists = "SELECT TRUE FROM events WHERE event_id = $1 LIMIT 1;"
const insertEvent = "INSERT INTO events (event_id, name, slug, creation_ts) VALUES ($1, $2, $3, $4);"

type eventsTableStatements struct {
	selectEventById   *sql.Stmt
	selectEventExists *sql.Stmt
	insertEvent       *sql.Stmt
}

type eventsTableWithContext struct {
	statements *eventsTableStatements
	ctx        rcontext.RequestContext
}

func prepareEventsTables(db *sql.DB) (*eventsTableStatements, error) {
	var err error
	var stmts = &eventsTableStatements{}

	if stmts.selectEventById, err = db.Prepare(selectEventById); err != nil {
		return nil, errors.New("error preparing selectEventById: " + err.Error())
	}
	if stmts.selectEventExists, err = db.Prepare(selectEventExists); err != nil {
		return nil, errors.New("error preparing selectEventExists: " + err.Error())
	}
	if stmts.insertEvent, err = db.Prepare(insertEvent); err != nil {
		return nil, errors.New("error preparing insertEvent: " + err.Error())
	}

	return stmts, nil
}

func (s *eventsTableStatements) Prepare(ctx rcontext.RequestContext) *eventsTableWithContext {
	return &eventsTableWithContext{
		statements: s,
		ctx:        ctx,
	}
}

func (s *eventsTableWithContext) GetById(eventId string) (*DbEvent, error) {
	row := s.statements.selectEventById.QueryRowContext(s.ctx, eventId)
	val := &DbEvent{}
	err := row.Scan(&val.EventId, &val.Name, &val.Slug, &val.CreationTs)
	if err == sql.ErrNoRows {
		err = nil
		val = nil
	}
	return val, err
}

func (s *eventsTableWithContext) IdExists(eventId string) (bool, error) {
	row := s.statements.selectEventExists.QueryRowContext(s.ctx, eventId)
	val := false
	err := row.Scan(&val)
	if err == sql.ErrNoRows {
		err = nil
		val = false
	}
	return val, err
}

func (s *eventsTableWithContext) Insert(record *DbEvent) error {
	_, err := s.statements.insertEvent.ExecContext(s.ctx, record.EventId, record.Name, record.Slug, record.CreationTs)
	return err
}
