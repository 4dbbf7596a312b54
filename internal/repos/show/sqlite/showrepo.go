// Package sqlite provides a show repository that stores its data inside a SQLite database
package sqlite

import (
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/derWhity/gigboard/internal/log"
	"github.com/derWhity/gigboard/internal/models"
	"github.com/derWhity/gigboard/internal/repos"
)

const (
	showFields    = `s.id AS id, s.artist_id AS artist_id, s.venue_id AS venue_id, s.start_time AS start_time`
	summarySelect = `SELECT ` + showFields + `,
                        a.name AS artist_name,
                        a.image_link AS artist_image_link,
                        v.name AS venue_name,
                        v.image_link AS venue_image_link
                    FROM
                        "Show" s
                    JOIN
                        Artist a ON a.id = s.artist_id
                    JOIN
                        Venue v ON v.id = s.venue_id`
)

// ShowRepo is a repository that stores shows inside a SQLite database
type ShowRepo struct {
	db     *sqlx.DB
	logger *logrus.Entry
}

// New creates a new show repository instance with the given database and logger
func New(db *sqlx.DB, logger *logrus.Entry) *ShowRepo {
	return &ShowRepo{db, logger}
}

// Create creates a new show after checking that the artist and the venue exist
func (r *ShowRepo) Create(s *models.Show) error {
	r.logger.WithFields(logrus.Fields{
		log.FldArtist: s.ArtistID,
		log.FldVenue:  s.VenueID,
	}).Debug("Adding new show")
	tx, err := r.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "Create: Failed to start transaction")
	}
	if err = checkExists(tx, "Artist", "artist", s.ArtistID); err != nil {
		return repos.DoRollback(tx, err)
	}
	if err = checkExists(tx, "Venue", "venue", s.VenueID); err != nil {
		return repos.DoRollback(tx, err)
	}
	startTime := s.StartTime.UTC()
	res, err := tx.Exec(
		`INSERT INTO "Show"(start_time, artist_id, venue_id) VALUES(?, ?, ?)`,
		startTime, s.ArtistID, s.VenueID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			// Someone removed the artist or venue in the meantime
			return repos.DoRollback(tx, &repos.MissingReferenceError{Entity: "artist or venue"})
		}
		return repos.DoRollback(tx, errors.Wrap(err, "Create: Failed to insert show"))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return repos.DoRollback(tx, errors.Wrap(err, "Create: Failed to get ID of new show"))
	}
	if err = tx.Commit(); err != nil {
		if isForeignKeyViolation(err) {
			return &repos.MissingReferenceError{Entity: "artist or venue"}
		}
		return errors.Wrap(err, "Create: Failed to commit transaction")
	}
	s.ID = uint(id)
	s.StartTime = startTime
	return nil
}

// checkExists checks if the given table contains a row with the given ID
func checkExists(tx *sqlx.Tx, table string, entity string, id uint) error {
	var num uint
	if err := tx.Get(&num, `SELECT COUNT(*) FROM `+table+` WHERE id = ?`, id); err != nil {
		return errors.Wrapf(err, "checkExists: Failed to look up %s #%d", entity, id)
	}
	if num == 0 {
		return &repos.MissingReferenceError{Entity: entity, ID: id}
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	sqErr, ok := errors.Cause(err).(sqlite3.Error)
	return ok && sqErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}

// List returns all shows ordered by their start time
func (r *ShowRepo) List() ([]models.Show, error) {
	r.logger.Debug("Listing shows")
	query := `SELECT ` + showFields + ` FROM "Show" s ORDER BY s.start_time, s.id`
	ret := []models.Show{}
	if err := r.db.Select(&ret, query); err != nil {
		return nil, errors.Wrap(err, "List: Failed to query database")
	}
	return ret, nil
}

// ListByVenue returns the shows taking place at the given venue ordered by their start time
func (r *ShowRepo) ListByVenue(venueID uint) ([]models.ShowSummary, error) {
	r.logger.WithField(log.FldVenue, venueID).Debug("Listing shows of venue")
	ret := []models.ShowSummary{}
	err := r.db.Select(&ret, summarySelect+` WHERE s.venue_id = ? ORDER BY s.start_time, s.id`, venueID)
	if err != nil {
		return nil, errors.Wrap(err, "ListByVenue: Failed to query database")
	}
	return ret, nil
}

// ListByArtist returns the shows the given artist is playing ordered by their start time
func (r *ShowRepo) ListByArtist(artistID uint) ([]models.ShowSummary, error) {
	r.logger.WithField(log.FldArtist, artistID).Debug("Listing shows of artist")
	ret := []models.ShowSummary{}
	err := r.db.Select(&ret, summarySelect+` WHERE s.artist_id = ? ORDER BY s.start_time, s.id`, artistID)
	if err != nil {
		return nil, errors.Wrap(err, "ListByArtist: Failed to query database")
	}
	return ret, nil
}
