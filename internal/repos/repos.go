// Package repos contains the repository interfaces needed in Gigboard
// It exists to prevent circular dependencies between gigboard and the repo implementations
package repos

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // Just needed for the sqlite driver
	"github.com/pkg/errors"
	"golang.org/x/text/cases"

	"github.com/derWhity/gigboard/internal/models"
)

var (
	// ErrEntityNotExisting is fired by a repository when an entity that is loaded, updated or deleted does not exist
	ErrEntityNotExisting = fmt.Errorf("cannot update: Entity does not exist")
)

// MissingReferenceError is returned when an entity should be stored that references another entity which does not
// exist
type MissingReferenceError struct {
	// The kind of entity that is missing ("artist" or "venue")
	Entity string
	// The ID that did not resolve - 0 if not known
	ID uint
}

// Error implements the error interface
func (e *MissingReferenceError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("referenced %s does not exist", e.Entity)
	}
	return fmt.Sprintf("referenced %s #%d does not exist", e.Entity, e.ID)
}

// VenueRepo defines a repository that handles storing and querying venues
type VenueRepo interface {
	// Create creates a new venue
	Create(v *models.Venue) error
	// Update overwrites all user-editable fields of an existing venue
	Update(v *models.Venue) error
	// Delete removes an existing venue together with all of its shows
	Delete(id uint) error
	// GetByID returns the venue with the given ID
	GetByID(id uint) (*models.Venue, error)
	// Find searches for venues whose name contains the given search string, ignoring case
	Find(search string) ([]models.Venue, uint, error)
	// List returns all venues ordered by state, city and name
	List() ([]models.Venue, error)
}

// ArtistRepo defines a repository that handles storing and querying artists
type ArtistRepo interface {
	// Create creates a new artist
	Create(a *models.Artist) error
	// Update overwrites all user-editable fields of an existing artist
	Update(a *models.Artist) error
	// GetByID returns the artist with the given ID
	GetByID(id uint) (*models.Artist, error)
	// Find searches for artists whose name contains the given search string, ignoring case
	Find(search string) ([]models.Artist, uint, error)
	// List returns all artists ordered by name
	List() ([]models.Artist, error)
}

// ShowRepo defines a repository that handles storing and querying shows
type ShowRepo interface {
	// Create creates a new show - fails with a *MissingReferenceError if the artist or venue does not exist
	Create(s *models.Show) error
	// List returns all shows ordered by their start time
	List() ([]models.Show, error)
	// ListByVenue returns the shows taking place at the given venue ordered by their start time
	ListByVenue(venueID uint) ([]models.ShowSummary, error)
	// ListByArtist returns the shows the given artist is playing ordered by their start time
	ListByArtist(artistID uint) ([]models.ShowSummary, error)
}

// -- Helpers for SQLX repos -------------------------------------------------------------------------------------------

// OpenSQLite opens the SQLite database at the given location with foreign key enforcement enabled
// In-memory databases are restricted to a single connection, since every connection would see its own database
func OpenSQLite(file string) (*sqlx.DB, error) {
	dsn := file
	if strings.Contains(dsn, "?") {
		dsn += "&"
	} else {
		dsn += "?"
	}
	dsn += "_foreign_keys=1&_busy_timeout=5000"
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "OpenSQLite: Failed to open database")
	}
	if strings.Contains(file, ":memory:") || strings.Contains(file, "mode=memory") {
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "OpenSQLite: Database not reachable")
	}
	return db, nil
}

// DoRollback rolls back a transaction and catches any error resulting from it while appending the original error
func DoRollback(tx *sqlx.Tx, originalError error) error {
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("doRollback: Transaction rollback failed: %v; Recent error: %v", err, originalError)
	}
	return originalError
}

// SearchName returns the case-folded form of a name used for case-insensitive searches
func SearchName(name string) string {
	// Casers keep state - so we need a fresh one each time
	return cases.Fold().String(name)
}

// LikePattern builds a LIKE pattern matching every value containing the (case-folded) search term. Wildcards inside
// the search term are escaped with a backslash, so the query needs an `ESCAPE '\'` clause
func LikePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(SearchName(search)) + "%"
}
