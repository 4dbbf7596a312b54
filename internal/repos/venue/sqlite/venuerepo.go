// Package sqlite provides a venue repository that stores its data inside a SQLite database
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/derWhity/gigboard/internal/log"
	"github.com/derWhity/gigboard/internal/models"
	"github.com/derWhity/gigboard/internal/repos"
)

const (
	venueFields = `name, city, state, address, phone, image_link, facebook_link, website_link, genres, seeking_talent,
                    seeking_description, created_at, updated_at`
)

// VenueRepo is a repository that stores venues inside a SQLite database
type VenueRepo struct {
	db     *sqlx.DB
	logger *logrus.Entry
}

// New creates a new venue repository instance with the given database and logger
func New(db *sqlx.DB, logger *logrus.Entry) *VenueRepo {
	return &VenueRepo{
		db:     db,
		logger: logger,
	}
}

// Create creates a new venue
func (r *VenueRepo) Create(v *models.Venue) error {
	r.logger.WithField(log.FldName, v.Name).Debug("Adding new venue")
	query := fmt.Sprintf(`INSERT INTO Venue(search_name, %s) VALUES(
        ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'), datetime('now')
    )`, venueFields)
	res, err := r.db.Exec(
		query,
		repos.SearchName(v.Name), v.Name, v.City, v.State, v.Address, v.Phone, v.ImageLink, v.FacebookLink,
		v.WebsiteLink, v.Genres, v.SeekingTalent, v.SeekingDescription,
	)
	if err != nil {
		return errors.Wrap(err, "Create: Failed to insert venue")
	}
	// Setting the dates like this should be enough for now
	v.CreatedAt = time.Now()
	v.UpdatedAt = v.CreatedAt
	var id int64
	if id, err = res.LastInsertId(); err != nil {
		return errors.Wrap(err, "Create: Failed to get ID of new venue")
	}
	v.ID = uint(id)
	return nil
}

// Update overwrites all user-editable fields of an existing venue
func (r *VenueRepo) Update(v *models.Venue) error {
	r.logger.WithField(log.FldID, v.ID).Debug("Updating venue")
	query := `UPDATE Venue SET
        search_name = ?, name = ?, city = ?, state = ?, address = ?, phone = ?, image_link = ?, facebook_link = ?,
        website_link = ?, genres = ?, seeking_talent = ?, seeking_description = ?, updated_at = datetime('now')
    WHERE id = ?`
	res, err := r.db.Exec(
		query,
		repos.SearchName(v.Name), v.Name, v.City, v.State, v.Address, v.Phone, v.ImageLink, v.FacebookLink,
		v.WebsiteLink, v.Genres, v.SeekingTalent, v.SeekingDescription, v.ID,
	)
	if err != nil {
		return errors.Wrap(err, "Update: Failed to update venue")
	}
	num, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "Update: Failed to get number of updated rows")
	}
	if num == 0 {
		return repos.ErrEntityNotExisting
	}
	v.UpdatedAt = time.Now()
	return nil
}

// Delete removes an existing venue together with all shows taking place there
func (r *VenueRepo) Delete(id uint) error {
	r.logger.WithField(log.FldID, id).Debug("Deleting venue")
	tx, err := r.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "Delete: Failed to start transaction")
	}
	// The shows go first - the foreign key would not let us remove the venue otherwise
	if _, err = tx.Exec(`DELETE FROM "Show" WHERE venue_id = ?`, id); err != nil {
		return repos.DoRollback(tx, errors.Wrap(err, "Delete: Failed to delete shows of venue"))
	}
	res, err := tx.Exec("DELETE FROM Venue WHERE id = ?", id)
	if err != nil {
		return repos.DoRollback(tx, errors.Wrap(err, "Delete: Failed to delete venue"))
	}
	num, err := res.RowsAffected()
	if err != nil {
		return repos.DoRollback(tx, errors.Wrap(err, "Delete: Failed to get number of deleted rows"))
	}
	if num == 0 {
		return repos.DoRollback(tx, repos.ErrEntityNotExisting)
	}
	return errors.Wrap(tx.Commit(), "Delete: Failed to commit transaction")
}

// GetByID returns the venue with the given ID
func (r *VenueRepo) GetByID(id uint) (*models.Venue, error) {
	r.logger.WithField(log.FldID, id).Debug("Loading venue")
	query := fmt.Sprintf("SELECT id, %s FROM Venue WHERE id = ?", venueFields)
	var v models.Venue
	if err := r.db.Get(&v, query, id); err != nil {
		if err == sql.ErrNoRows {
			// Nothing found
			return nil, repos.ErrEntityNotExisting
		}
		return nil, errors.Wrap(err, "GetByID: Failed to query database")
	}
	return &v, nil
}

// Find searches for venues whose name contains the given search string, ignoring case
// Returned are the matching venues and their number
func (r *VenueRepo) Find(search string) ([]models.Venue, uint, error) {
	r.logger.WithField(log.FldSearch, search).Debug("Searching for venue")
	query := fmt.Sprintf(`SELECT id, %s FROM Venue WHERE search_name LIKE $1 ESCAPE '\' ORDER BY name, id`,
		venueFields,
	)
	ret := []models.Venue{}
	if err := r.db.Select(&ret, query, repos.LikePattern(search)); err != nil {
		return nil, 0, errors.Wrap(err, "Find: Failed to query database")
	}
	return ret, uint(len(ret)), nil
}

// List returns all venues ordered by state, city and name
func (r *VenueRepo) List() ([]models.Venue, error) {
	r.logger.Debug("Listing venues")
	query := fmt.Sprintf("SELECT id, %s FROM Venue ORDER BY state, city, name, id", venueFields)
	ret := []models.Venue{}
	if err := r.db.Select(&ret, query); err != nil {
		return nil, errors.Wrap(err, "List: Failed to query database")
	}
	return ret, nil
}
