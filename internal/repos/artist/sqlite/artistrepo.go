// Package sqlite provides an artist repository that stores its data inside a SQLite database
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
	artistFields = `name, city, state, phone, genres, image_link, facebook_link, website_link, seeking_venue,
                    seeking_description, created_at, updated_at`
)

// ArtistRepo is a repository that stores artists inside a SQLite database
type ArtistRepo struct {
	db     *sqlx.DB
	logger *logrus.Entry
}

// New creates a new artist repository instance with the given database and logger
func New(db *sqlx.DB, logger *logrus.Entry) *ArtistRepo {
	return &ArtistRepo{db, logger}
}

// Create creates a new artist
func (r *ArtistRepo) Create(a *models.Artist) error {
	r.logger.WithField(log.FldName, a.Name).Debug("Adding new artist")
	query := fmt.Sprintf(`INSERT INTO Artist(search_name, %s) VALUES(
        ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'), datetime('now')
    )`, artistFields)
	res, err := r.db.Exec(
		query,
		repos.SearchName(a.Name), a.Name, a.City, a.State, a.Phone, a.Genres, a.ImageLink, a.FacebookLink,
		a.WebsiteLink, a.SeekingVenue, a.SeekingDescription,
	)
	if err != nil {
		return errors.Wrap(err, "Create: Failed to insert artist")
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	var id int64
	if id, err = res.LastInsertId(); err != nil {
		return errors.Wrap(err, "Create: Failed to get ID of new artist")
	}
	a.ID = uint(id)
	return nil
}

// Update overwrites all user-editable fields of an existing artist
func (r *ArtistRepo) Update(a *models.Artist) error {
	r.logger.WithField(log.FldID, a.ID).Debug("Updating artist")
	query := `UPDATE Artist SET
        search_name = ?, name = ?, city = ?, state = ?, phone = ?, genres = ?, image_link = ?, facebook_link = ?,
        website_link = ?, seeking_venue = ?, seeking_description = ?, updated_at = datetime('now')
    WHERE id = ?`
	res, err := r.db.Exec(
		query,
		repos.SearchName(a.Name), a.Name, a.City, a.State, a.Phone, a.Genres, a.ImageLink, a.FacebookLink,
		a.WebsiteLink, a.SeekingVenue, a.SeekingDescription, a.ID,
	)
	if err != nil {
		return errors.Wrap(err, "Update: Failed to update artist")
	}
	if num, err := res.RowsAffected(); err != nil || num == 0 {
		if err != nil {
			return errors.Wrap(err, "Update: Failed to get number of updated rows")
		}
		return repos.ErrEntityNotExisting
	}
	a.UpdatedAt = time.Now()
	return nil
}

// GetByID returns the artist with the given ID
func (r *ArtistRepo) GetByID(id uint) (*models.Artist, error) {
	r.logger.WithField(log.FldID, id).Debug("Loading artist")
	query := fmt.Sprintf("SELECT id, %s FROM Artist WHERE id = ?", artistFields)
	var a models.Artist
	err := r.db.Get(&a, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repos.ErrEntityNotExisting
		}
		return nil, errors.Wrap(err, "GetByID: Failed to query database")
	}
	return &a, nil
}

// Find searches for artists whose name contains the given search string, ignoring case
func (r *ArtistRepo) Find(search string) ([]models.Artist, uint, error) {
	r.logger.WithField(log.FldSearch, search).Debug("Searching for artist")
	query := fmt.Sprintf(`SELECT id, %s FROM Artist WHERE search_name LIKE $1 ESCAPE '\' ORDER BY name, id`,
		artistFields,
	)
	ret := []models.Artist{}
	if err := r.db.Select(&ret, query, repos.LikePattern(search)); err != nil {
		return nil, 0, errors.Wrap(err, "Find: Failed to query database")
	}
	return ret, uint(len(ret)), nil
}

// List returns all artists ordered by name
func (r *ArtistRepo) List() ([]models.Artist, error) {
	query := fmt.Sprintf("SELECT id, %s FROM Artist ORDER BY name, id", artistFields)
	ret := []models.Artist{}
	if err := r.db.Select(&ret, query); err != nil {
		return nil, errors.Wrap(err, "List: Failed to query database")
	}
	return ret, nil
}
