package internal

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"

	"github.com/derWhity/gigboard/internal/log"
	"github.com/derWhity/gigboard/internal/models"
	"github.com/derWhity/gigboard/internal/repos"
)

// ArtistService provides service functions for working with artists
type ArtistService interface {
	// List returns all artists ordered by name
	List(ctx context.Context) ([]models.Artist, error)
	// Search returns all artists whose name contains the search term (ignoring case) and their number
	Search(ctx context.Context, search *Search) ([]models.Artist, uint, error)
	// Get returns the artist with the given ID together with its past and upcoming shows
	Get(ctx context.Context, id uint) (*models.ArtistDetails, error)
	// Create creates a new artist from the given fields
	Create(ctx context.Context, fields models.ArtistFields) (*models.Artist, error)
	// Update overwrites all fields of the artist with the given ID
	Update(ctx context.Context, id uint, fields models.ArtistFields) (*models.Artist, error)
}

// -- ArtistService implementation -------------------------------------------------------------------------------------

type artistService struct {
	repo   repos.ArtistRepo
	shows  repos.ShowRepo
	logger *logrus.Entry
	now    clock
}

// NewArtistService creates a new artist service instance
func NewArtistService(repo repos.ArtistRepo, shows repos.ShowRepo, logger *logrus.Entry) ArtistService {
	return &artistService{repo, shows, logger, time.Now}
}

func artistNotFound(id uint) *HTTPError {
	return MakeError(http.StatusNotFound, ErrCodeArtistNotFound, fmt.Sprintf("Artist #%d does not exist", id))
}

// List returns all artists ordered by name
func (s *artistService) List(ctx context.Context) ([]models.Artist, error) {
	list, err := s.repo.List()
	if err != nil {
		s.logger.WithError(err).Error("Artist list query failed")
		return nil, makeRepoError("Failed to load artists from storage", err)
	}
	return list, nil
}

// Search returns all artists whose name contains the search term (ignoring case)
func (s *artistService) Search(ctx context.Context, search *Search) ([]models.Artist, uint, error) {
	list, count, err := s.repo.Find(search.Search)
	if err != nil {
		s.logger.WithError(err).WithField(log.FldSearch, search.Search).Error("Artist search failed")
		return nil, 0, makeRepoError("Error while searching artists", err)
	}
	return list, count, nil
}

// Get returns the artist with the given ID together with its past and upcoming shows
func (s *artistService) Get(ctx context.Context, id uint) (*models.ArtistDetails, error) {
	a, err := s.repo.GetByID(id)
	if err != nil {
		if err == repos.ErrEntityNotExisting {
			return nil, artistNotFound(id)
		}
		s.logger.WithError(err).WithField(log.FldID, id).Error("Artist query failed")
		return nil, makeRepoError(fmt.Sprintf("Error while retrieving artist #%d", id), err)
	}
	shows, err := s.shows.ListByArtist(id)
	if err != nil {
		s.logger.WithError(err).WithField(log.FldArtist, id).Error("Show query failed")
		return nil, makeRepoError(fmt.Sprintf("Error while retrieving shows of artist #%d", id), err)
	}
	past, upcoming := models.PartitionShows(shows, s.now())
	return &models.ArtistDetails{
		Artist:             *a,
		PastShows:          past,
		UpcomingShows:      upcoming,
		PastShowsCount:     uint(len(past)),
		UpcomingShowsCount: uint(len(upcoming)),
	}, nil
}

// Create creates a new artist from the given fields
func (s *artistService) Create(ctx context.Context, fields models.ArtistFields) (*models.Artist, error) {
	fields.Normalize()
	if err := validate(fields); err != nil {
		return nil, err
	}
	a := models.Artist{ArtistFields: fields}
	if err := s.repo.Create(&a); err != nil {
		s.logger.WithError(err).WithField(log.FldName, fields.Name).Error("Artist creation failed")
		return nil, makeRepoError(fmt.Sprintf("Artist '%s' could not be created", fields.Name), err)
	}
	return &a, nil
}

// Update overwrites all fields of the artist with the given ID
func (s *artistService) Update(ctx context.Context, id uint, fields models.ArtistFields) (*models.Artist, error) {
	fields.Normalize()
	if err := validate(fields); err != nil {
		return nil, err
	}
	a := models.Artist{ID: id, ArtistFields: fields}
	if err := s.repo.Update(&a); err != nil {
		if err == repos.ErrEntityNotExisting {
			return nil, artistNotFound(id)
		}
		s.logger.WithError(err).WithField(log.FldID, id).Error("Artist update failed")
		return nil, makeRepoError(fmt.Sprintf("Error while updating artist #%d", id), err)
	}
	updated, err := s.repo.GetByID(id)
	if err != nil {
		if err == repos.ErrEntityNotExisting {
			return nil, artistNotFound(id)
		}
		return nil, makeRepoError(fmt.Sprintf("Error while retrieving artist #%d", id), err)
	}
	return updated, nil
}
