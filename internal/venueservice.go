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

// VenueService provides service functions for working with venues
type VenueService interface {
	// ListByLocation returns all venues grouped by city and state together with their number of upcoming shows
	ListByLocation(ctx context.Context) ([]models.VenueLocation, error)
	// Search returns all venues whose name contains the search term (ignoring case) and their number
	Search(ctx context.Context, search *Search) ([]models.Venue, uint, error)
	// Get returns the venue with the given ID together with its past and upcoming shows
	Get(ctx context.Context, id uint) (*models.VenueDetails, error)
	// Create creates a new venue from the given fields
	Create(ctx context.Context, fields models.VenueFields) (*models.Venue, error)
	// Update overwrites all fields of the venue with the given ID
	Update(ctx context.Context, id uint, fields models.VenueFields) (*models.Venue, error)
	// Delete removes the venue with the given ID and all of its shows. Deleting a non-existing venue is no error
	Delete(ctx context.Context, id uint) error
}

// -- VenueService implementation --------------------------------------------------------------------------------------

type venueService struct {
	repo   repos.VenueRepo
	shows  repos.ShowRepo
	logger *logrus.Entry
	now    clock
}

// NewVenueService creates a new venue service instance
func NewVenueService(repo repos.VenueRepo, shows repos.ShowRepo, logger *logrus.Entry) VenueService {
	return &venueService{
		repo:   repo,
		shows:  shows,
		logger: logger,
		now:    time.Now,
	}
}

func venueNotFound(id uint) *HTTPError {
	return MakeError(http.StatusNotFound, ErrCodeVenueNotFound, fmt.Sprintf("Venue #%d does not exist", id))
}

// ListByLocation returns all venues grouped by city and state together with their number of upcoming shows
func (s *venueService) ListByLocation(ctx context.Context) ([]models.VenueLocation, error) {
	venues, err := s.repo.List()
	if err != nil {
		s.logger.WithError(err).Error("Venue list query failed")
		return nil, makeRepoError("Failed to load venues from storage", err)
	}
	shows, err := s.shows.List()
	if err != nil {
		s.logger.WithError(err).Error("Show list query failed")
		return nil, makeRepoError("Failed to load shows from storage", err)
	}
	now := s.now()
	upcoming := map[uint]uint{}
	for i := range shows {
		if shows[i].IsUpcoming(now) {
			upcoming[shows[i].VenueID]++
		}
	}
	// The venues arrive ordered by state and city - so each location is a contiguous run
	ret := []models.VenueLocation{}
	for _, v := range venues {
		if n := len(ret); n == 0 || ret[n-1].City != v.City || ret[n-1].State != v.State {
			ret = append(ret, models.VenueLocation{City: v.City, State: v.State, Venues: []models.VenueSummary{}})
		}
		loc := &ret[len(ret)-1]
		loc.Venues = append(loc.Venues, models.VenueSummary{
			ID:               v.ID,
			Name:             v.Name,
			NumUpcomingShows: upcoming[v.ID],
		})
	}
	return ret, nil
}

// Search returns all venues whose name contains the search term (ignoring case)
func (s *venueService) Search(ctx context.Context, search *Search) ([]models.Venue, uint, error) {
	list, count, err := s.repo.Find(search.Search)
	if err != nil {
		s.logger.WithError(err).WithField(log.FldSearch, search.Search).Error("Venue search failed")
		return nil, 0, makeRepoError("Error while searching venues", err)
	}
	return list, count, nil
}

// Get returns the venue with the given ID together with its past and upcoming shows
func (s *venueService) Get(ctx context.Context, id uint) (*models.VenueDetails, error) {
	v, err := s.repo.GetByID(id)
	if err != nil {
		if err == repos.ErrEntityNotExisting {
			return nil, venueNotFound(id)
		}
		s.logger.WithError(err).WithField(log.FldID, id).Error("Venue query failed")
		return nil, makeRepoError(fmt.Sprintf("Error while retrieving venue #%d", id), err)
	}
	shows, err := s.shows.ListByVenue(id)
	if err != nil {
		s.logger.WithError(err).WithField(log.FldVenue, id).Error("Show query failed")
		return nil, makeRepoError(fmt.Sprintf("Error while retrieving shows of venue #%d", id), err)
	}
	past, upcoming := models.PartitionShows(shows, s.now())
	return &models.VenueDetails{
		Venue:              *v,
		PastShows:          past,
		UpcomingShows:      upcoming,
		PastShowsCount:     uint(len(past)),
		UpcomingShowsCount: uint(len(upcoming)),
	}, nil
}

// Create creates a new venue from the given fields
func (s *venueService) Create(ctx context.Context, fields models.VenueFields) (*models.Venue, error) {
	fields.Normalize()
	if err := validate(fields); err != nil {
		return nil, err
	}
	v := models.Venue{VenueFields: fields}
	if err := s.repo.Create(&v); err != nil {
		s.logger.WithError(err).WithField(log.FldName, fields.Name).Error("Venue creation failed")
		return nil, makeRepoError(fmt.Sprintf("Venue '%s' could not be created", fields.Name), err)
	}
	return &v, nil
}

// Update overwrites all fields of the venue with the given ID
func (s *venueService) Update(ctx context.Context, id uint, fields models.VenueFields) (*models.Venue, error) {
	fields.Normalize()
	if err := validate(fields); err != nil {
		return nil, err
	}
	v := models.Venue{ID: id, VenueFields: fields}
	if err := s.repo.Update(&v); err != nil {
		if err == repos.ErrEntityNotExisting {
			return nil, venueNotFound(id)
		}
		s.logger.WithError(err).WithField(log.FldID, id).Error("Venue update failed")
		return nil, makeRepoError(fmt.Sprintf("Error while updating venue #%d", id), err)
	}
	// Re-read the entry to get the stored timestamps
	updated, err := s.repo.GetByID(id)
	if err != nil {
		if err == repos.ErrEntityNotExisting {
			return nil, venueNotFound(id)
		}
		return nil, makeRepoError(fmt.Sprintf("Error while retrieving venue #%d", id), err)
	}
	return updated, nil
}

// Delete removes the venue with the given ID and all of its shows
func (s *venueService) Delete(ctx context.Context, id uint) error {
	err := s.repo.Delete(id)
	if err == repos.ErrEntityNotExisting {
		s.logger.WithField(log.FldID, id).Debug("Venue to delete does not exist - nothing to do")
		return nil
	}
	if err != nil {
		s.logger.WithError(err).WithField(log.FldID, id).Error("Venue deletion failed")
		return makeRepoError(fmt.Sprintf("Error while deleting venue #%d", id), err)
	}
	return nil
}
