package database

import (
	"database/sql"
	"errors"
	"sync"

	"github.com/DavidHuie/gomigrate"
	"github.com/gatherpics/media-ingest/common/config"
	"github.com/sirupsen/logrus"
)

type Database struct {
	conn     *sql.DB
	Events   *eventsTableStatements
	Media    *mediaTableStatements
	AuditLog *auditLogTableStatements
}

var instance *Database
var singleton = &sync.Once{}

func GetInstance() *Database {
	if instance == nil {
		singleton.Do(func() {
			if err := openDatabase(
				config.Get().Database.Postgres,
				config.Get().Database.Pool.MaxConnections,
				config.Get().Database.Pool.MaxIdle,
			); err != nil {
				logrus.Fatal("Failed to set up database: ", err)
			}
		})
	}
	return instance
}

// Ping verifies the connection is still usable. Used by the health endpoint.
func (d *Database) Ping() error {
	return d.conn.Ping()
}

func openDatabase(connectionString string, maxConns int, maxIdleConns int) error {
	d := &Database{}
	var err error

	if d.conn, err = sql.Open("postgres", connectionString); err != nil {
		return errors.New("error connecting to db: " + err.Error())
	}
	d.conn.SetMaxOpenConns(maxConns)
	d.conn.SetMaxIdleConns(maxIdleConns)

	// Run migrations
	var migrator *gomigrate.Migrator
	if migrator, err = gomigrate.NewMigratorWithLogger(d.conn, gomigrate.Postgres{}, config.Runtime.MigrationsPath, logrus.StandardLogger()); err != nil {
		return errors.New("error setting up migrator: " + err.Error())
	}
	if err = migrator.Migrate(); err != nil {
		return errors.New("error running migrations: " + err.Error())
	}

	// Prepare the table accessors
	if d.Events, err = prepareEventsTables(d.conn); err != nil {
		return errors.New("failed to create events table accessor: " + err.Error())
	}
	if d.Media, err = prepareMediaTables(d.conn); err != nil {
		return errors.New("failed to create media table accessor: " + err.Error())
	}
	if d.AuditLog, err = prepareAuditLogTables(d.conn); err != nil {
		return errors.New("failed to create audit log table accessor: " + err.Error())
	}

	instance = d
	return nil
}
