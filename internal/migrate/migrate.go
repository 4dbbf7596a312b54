// Package migrate handles SQL database migration for the internal Gigboard database
package migrate

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/derWhity/gigboard/internal/log"
)

var migrations []dbMigration

type dbMigration struct {
	Version uint
	Queries []string
}

// Execute runs the current DB migration on the given database
// All queries of a migration run inside one transaction - a failing query leaves the database untouched
func (mig *dbMigration) Execute(db *sqlx.DB, logger *logrus.Entry) error {
	logger = logger.WithField(log.FldVersionNum, mig.Version)
	// Check if the migration has already run
	query := `SELECT success FROM Migrations WHERE version = $1`
	var success = false
	err := db.QueryRow(query, mig.Version).Scan(&success)
	if err != nil && err != sql.ErrNoRows {
		logger.WithError(err).Error("Failed to fetch version information")
		return err
	}
	if success {
		return nil
	}
	// We need to execute this migration
	logger.Infof("Executing DB migration #%d", mig.Version)
	tx, err := db.Beginx()
	if err != nil {
		return errors.Wrap(err, "Execute: Failed to start transaction")
	}
	for i, query := range mig.Queries {
		logger.Debugf("Query %d of %d...", (i + 1), len(mig.Queries))
		if _, err := tx.Exec(query); err != nil {
			logger.WithError(err).Errorf("Query #%d failed", (i + 1))
			err = rollback(tx, errors.Wrapf(err, "Execute: Query #%d of migration #%d failed", i+1, mig.Version))
			db.Exec(`REPLACE INTO Migrations(version, success) VALUES($1, 0)`, mig.Version)
			return err
		}
	}
	// Queries executed successfully - save our status
	if _, err := tx.Exec(`REPLACE INTO Migrations(version, success) VALUES($1, 1)`, mig.Version); err != nil {
		return rollback(tx, errors.Wrap(err, "Execute: Failed to store migration status"))
	}
	return errors.Wrap(tx.Commit(), "Execute: Failed to commit migration")
}

func rollback(tx *sqlx.Tx, originalError error) error {
	if err := tx.Rollback(); err != nil {
		return errors.Wrapf(originalError, "rollback failed as well (%v)", err)
	}
	return originalError
}

// ExecuteMigrationsOnDb executes the database migrations on the given database instance
func ExecuteMigrationsOnDb(db *sqlx.DB, logger *logrus.Entry) error {
	// Create the migrations table if it does not exist, yet
	query := `CREATE TABLE IF NOT EXISTS Migrations (
                version   INTEGER NOT NULL,
                success   INTEGER NOT NULL DEFAULT 0,
                PRIMARY KEY(version)
            )`
	if _, err := db.Exec(query); err != nil {
		logger.WithError(err).Error("Failed to create migrations table")
		return err
	}
	for _, mig := range migrations {
		if err := mig.Execute(db, logger); err != nil {
			logger.WithError(err).Errorf("Failed to execute migration #%d", mig.Version)
			return err
		}
	}
	return nil
}

// For now, the migrations are part of the package...
func init() {
	migrations = []dbMigration{
		{
			Version: 1,
			Queries: []string{
				`CREATE TABLE "Venue" (
                    id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
                    name VARCHAR(120) NOT NULL,
                    search_name VARCHAR(120) NOT NULL DEFAULT '',
                    city VARCHAR(120) NOT NULL DEFAULT '',
                    state VARCHAR(120) NOT NULL DEFAULT '',
                    address VARCHAR(120) NOT NULL DEFAULT '',
                    phone VARCHAR(120) NOT NULL DEFAULT '',
                    image_link VARCHAR(500) NOT NULL DEFAULT '',
                    facebook_link VARCHAR(120) NOT NULL DEFAULT '',
                    website_link VARCHAR(120) NOT NULL DEFAULT '',
                    genres TEXT NOT NULL DEFAULT '[]',
                    seeking_talent BOOLEAN NOT NULL DEFAULT 0,
                    seeking_description TEXT NOT NULL DEFAULT '',
                    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
                    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
                );`,
				`CREATE TABLE "Artist" (
                    id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
                    name VARCHAR(120) NOT NULL,
                    search_name VARCHAR(120) NOT NULL DEFAULT '',
                    city VARCHAR(120) NOT NULL DEFAULT '',
                    state VARCHAR(120) NOT NULL DEFAULT '',
                    phone VARCHAR(120) NOT NULL DEFAULT '',
                    genres TEXT NOT NULL DEFAULT '[]',
                    image_link VARCHAR(500) NOT NULL DEFAULT '',
                    facebook_link VARCHAR(120) NOT NULL DEFAULT '',
                    website_link VARCHAR(120) NOT NULL DEFAULT '',
                    seeking_venue BOOLEAN NOT NULL DEFAULT 0,
                    seeking_description TEXT NOT NULL DEFAULT '',
                    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
                    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
                );`,
				`CREATE TABLE "Show" (
                    id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
                    start_time DATETIME NOT NULL,
                    artist_id INTEGER NOT NULL REFERENCES "Artist"(id),
                    venue_id INTEGER NOT NULL REFERENCES "Venue"(id)
                );`,
			},
		},
		{
			Version: 2,
			Queries: []string{
				`CREATE INDEX idx_venue_search ON "Venue" (search_name ASC);`,
				`CREATE INDEX idx_venue_location ON "Venue" (state ASC, city ASC);`,
				`CREATE INDEX idx_artist_search ON "Artist" (search_name ASC);`,
				`CREATE INDEX idx_show_venue ON "Show" (venue_id ASC, start_time ASC);`,
				`CREATE INDEX idx_show_artist ON "Show" (artist_id ASC, start_time ASC);`,
			},
		},
	}
}
