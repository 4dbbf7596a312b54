package internal

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"

	"github.com/derWhity/gigboard/internal/log"
	"github.com/derWhity/gigboard/internal/models"
	"github.com/derWhity/gigboard/internal/repos"
)

// ShowService provides service functions for working with shows
type ShowService interface {
	// List returns all shows ordered by their start time
	List(ctx context.Context) ([]models.Show, error)
	// Create books the artist for a show at the venue - both of them have to exist
	Create(ctx context.Context, show models.Show) (*models.Show, error)
}

// -- ShowService implementation ---------------------------------------------------------------------------------------

type showService struct {
	repo   repos.ShowRepo
	logger *logrus.Entry
}

// NewShowService creates a new show service instance
func NewShowService(repo repos.ShowRepo, logger *logrus.Entry) ShowService {
	return &showService{repo, logger}
}

// List returns all shows ordered by their start time
func (s *showService) List(ctx context.Context) ([]models.Show, error) {
	list, err := s.repo.List()
	if err != nil {
		s.logger.WithError(err).Error("Show list query failed")
		return nil, makeRepoError("Failed to load shows from storage", err)
	}
	return list, nil
}

// Create books the artist for a show at the venue
func (s *showService) Create(ctx context.Context, show models.Show) (*models.Show, error) {
	show.ID = 0
	if err := validate(show); err != nil {
		return nil, err
	}
	if err := s.repo.Create(&show); err != nil {
		if ref, ok := err.(*repos.MissingReferenceError); ok {
			s.logger.WithError(err).Info("Show references a missing artist or venue")
			data := map[string]interface{}{"entity": ref.Entity}
			if ref.ID > 0 {
				data["field"] = ref.Entity + "_id"
				data["id"] = ref.ID
			}
			return nil, MakeErrorWithData(
				http.StatusUnprocessableEntity,
				ErrCodeReferencedEntityMissing,
				fmt.Sprintf("Show could not be created: %v", ref),
				data,
			)
		}
		s.logger.WithError(err).WithFields(logrus.Fields{
			log.FldArtist: show.ArtistID,
			log.FldVenue:  show.VenueID,
		}).Error("Show creation failed")
		return nil, makeRepoError("Show could not be created", err)
	}
	return &show, nil
}
