package database

import (
	"database/sql"
	"errors"

	"github.com/gatherpics/media-ingest/common/rcontext"
)

type DbMedia struct {
	EventId     string
	MediaId     string
	UploadName  string
	ContentType string
	IsVideo     bool
	SizeBytes   int64
	Sha256Hash  string
	Location    string
	PublicUrl   string
	CreationTs  int64
}

const selectMediaById = "SELECT event_id, media_id, upload_name, content_type, is_video, size_bytes, sha256_hash, location, public_url, creation_ts FROM media WHERE event_id = $1 AND media_id = $2;"
const selectMediaByEventId = "SELECT event_id, media_id, upload_name, content_type, is_video, size_bytes, sha256_hash, location, public_url, creation_ts FROM media WHERE event_id = $1 ORDER BY creation_ts DESC;"
const selectMediaByLocation = "SELECT event_id, media_id, upload_name, content_type, is_video, size_bytes, sha256_hash, location, public_url, creation_ts FROM media WHERE event_id = $1 AND location = $2;"
const insertMedia = "INSERT INTO media (event_id, media_id, upload_name, content_type, is_video, size_bytes, sha256_hash, location, public_url, creation_ts) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);"

type mediaTableStatements struct {
	selectMediaById      *sql.Stmt
	selectMediaByEventId *sql.Stmt
	selectMediaByLocation *sql.Stmt
	insertMedia          *sql.Stmt
}

type mediaTableWithContext struct {
	statements *mediaTableStatements
	ctx        rcontext.RequestContext
}

func prepareMediaTables(db *sql.DB) (*mediaTableStatements, error) {
	var err error
	var stmts = &mediaTableStatements{}

	if stmts.selectMediaById, err = db.Prepare(selectMediaById); err != nil {
		return nil, errors.New("error preparing selectMediaById: " + err.Error())
	}
	if stmts.selectMediaByEventId, err = db.Prepare(selectMediaByEventId); err != nil {
		return nil, errors.New("error preparing selectMediaByEventId: " + err.Error())
	}
	if stmts.selectMediaByLocation, err = db.Prepare(selectMediaByLocation); err != nil {
		return nil, errors.New("error preparing selectMediaByLocation: " + err.Error())
	}
	if stmts.insertMedia, err = db.Prepare(insertMedia); err != nil {
		return nil, errors.New("error preparing insertMedia: " + err.Error())
	}

	return stmts, nil
}

func (s *mediaTableStatements) Prepare(ctx rcontext.RequestContext) *mediaTableWithContext {
	return &mediaTableWithContext{
		statements: s,
		ctx:        ctx,
	}
}

func (s *mediaTableWithContext) scanRows(rows *sql.Rows, err error) ([]*DbMedia, error) {
	results := make([]*DbMedia, 0)
	if err != nil {
		if err == sql.ErrNoRows {
			return results, nil
		}
		return nil, err
	}
	for rows.Next() {
		val := &DbMedia{}
		if err = rows.Scan(&val.EventId, &val.MediaId, &val.UploadName, &val.ContentType, &val.IsVideo, &val.SizeBytes, &val.Sha256Hash, &val.Location, &val.PublicUrl, &val.CreationTs); err != nil {
			return nil, err
		}
		results = append(results, val)
	}

	return results, nil
}

func (s *mediaTableWithContext) GetById(eventId string, mediaId string) (*DbMedia, error) {
	row := s.statements.selectMediaById.QueryRowContext(s.ctx, eventId, mediaId)
	val := &DbMedia{}
	err := row.Scan(&val.EventId, &val.MediaId, &val.UploadName, &val.ContentType, &val.IsVideo, &val.SizeBytes, &val.Sha256Hash, &val.Location, &val.PublicUrl, &val.CreationTs)
	if err == sql.ErrNoRows {
		err = nil
		val = nil
	}
	return val, err
}

func (s *mediaTableWithContext) GetByEventId(eventId string) ([]*DbMedia, error) {
	return s.scanRows(s.statements.selectMediaByEventId.QueryContext(s.ctx, eventId))
}

func (s *mediaTableWithContext) GetByLocation(eventId string, location string) (*DbMedia, error) {
	row := s.statements.selectMediaByLocation.QueryRowContext(s.ctx, eventId, location)
	val := &DbMedia{}
	err := row.Scan(&val.EventId, &val.MediaId, &val.UploadName, &val.ContentType, &val.IsVideo, &val.SizeBytes, &val.Sha256Hash, &val.Location, &val.PublicUrl, &val.CreationTs)
	if err == sql.ErrNoRows {
		err = nil
		val = nil
	}
	return val, err
}

func (s *mediaTableWithContext) Insert(record *DbMedia) error {
	_, err := s.statements.insertMedia.ExecContext(s.ctx, record.EventId, record.MediaId, record.UploadName, record.ContentType, record.IsVideo, record.SizeBytes, record.Sha256Hash, record.Location, record.PublicUrl, record.CreationTs)
	return err
}
