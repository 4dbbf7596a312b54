package internal

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/context"

	"github.com/derWhity/gigboard/internal/ctxhelper"
	"github.com/derWhity/gigboard/internal/migrate"
	"github.com/derWhity/gigboard/internal/models"
	"github.com/derWhity/gigboard/internal/repos"
	artistrepo "github.com/derWhity/gigboard/internal/repos/artist/sqlite"
	showrepo "github.com/derWhity/gigboard/internal/repos/show/sqlite"
	venuerepo "github.com/derWhity/gigboard/internal/repos/venue/sqlite"
)

// The point in time all service tests regard as "now"
var testNow = time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

// testEnv holds a migrated in-memory database filled with the sample listings and the services working on it
type testEnv struct {
	db     *sqlx.DB
	ctx    context.Context
	logger *logrus.Entry
	hook   *test.Hook

	venues  VenueService
	artists ArtistService
	shows   ShowService

	showRepo *showrepo.ShowRepo

	// Sample data
	musicalHop    models.Venue
	duelingPianos models.Venue
	parkSquare    models.Venue
	gunsNPetals   models.Artist
	mattQuevado   models.Artist
	wildSaxBand   models.Artist
}

func setupTestEnv(t *testing.T) *testEnv {
	db, err := repos.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	entry := logger.WithField("test", t.Name())
	require.NoError(t, migrate.ExecuteMigrationsOnDb(db, entry))

	vRepo := venuerepo.New(db, entry)
	aRepo := artistrepo.New(db, entry)
	sRepo := showrepo.New(db, entry)

	vs := NewVenueService(vRepo, sRepo, entry)
	vs.(*venueService).now = func() time.Time { return testNow }
	as := NewArtistService(aRepo, sRepo, entry)
	as.(*artistService).now = func() time.Time { return testNow }

	env := &testEnv{
		db:       db,
		ctx:      ctxhelper.WithLogger(context.Background(), entry),
		logger:   entry,
		hook:     hook,
		venues:   vs,
		artists:  as,
		shows:    NewShowService(sRepo, entry),
		showRepo: sRepo,
	}
	env.seed(t)
	return env
}

func (env *testEnv) seed(t *testing.T) {
	env.musicalHop = env.createVenue(t, models.VenueFields{
		Name:               "The Musical Hop",
		City:               "San Francisco",
		State:              "CA",
		Address:            "1015 Folsom Street",
		Phone:              "123-123-1234",
		ImageLink:          "https://images.unsplash.com/photo-1543900694-133f37abaaa5",
		FacebookLink:       "https://www.facebook.com/TheMusicalHop",
		WebsiteLink:        "https://www.themusicalhop.com",
		Genres:             models.Genres{"Jazz", "Reggae", "Swing", "Classical", "Folk"},
		SeekingTalent:      true,
		SeekingDescription: "We are on the lookout for a local artist to play every two weeks. Please call us.",
	})
	env.duelingPianos = env.createVenue(t, models.VenueFields{
		Name:        "The Dueling Pianos Bar",
		City:        "New York",
		State:       "NY",
		Address:     "335 Delancey Street",
		Phone:       "914-003-1132",
		WebsiteLink: "https://www.theduelingpianos.com",
		Genres:      models.Genres{"Classical", "R&B", "Hip-Hop"},
	})
	env.parkSquare = env.createVenue(t, models.VenueFields{
		Name:    "Park Square Live Music & Coffee",
		City:    "San Francisco",
		State:   "CA",
		Address: "34 Whiskey Moore Ave",
		Phone:   "415-000-1234",
		Genres:  models.Genres{"Rock n Roll", "Jazz", "Classical", "Folk"},
	})
	env.gunsNPetals = env.createArtist(t, models.ArtistFields{
		Name:               "Guns N Petals",
		City:               "San Francisco",
		State:              "CA",
		Phone:              "326-123-5000",
		Genres:             models.Genres{"Rock n Roll"},
		ImageLink:          "https://images.unsplash.com/photo-1549213783-8284d0336c4f",
		SeekingVenue:       true,
		SeekingDescription: "Looking for shows to perform at in the San Francisco Bay Area!",
	})
	env.mattQuevado = env.createArtist(t, models.ArtistFields{
		Name:   "Matt Quevado",
		City:   "New York",
		State:  "NY",
		Phone:  "300-400-5000",
		Genres: models.Genres{"Jazz"},
	})
	env.wildSaxBand = env.createArtist(t, models.ArtistFields{
		Name:   "The Wild Sax Band",
		City:   "San Francisco",
		State:  "CA",
		Phone:  "432-325-5432",
		Genres: models.Genres{"Jazz", "Classical"},
	})

	env.createShow(t, env.gunsNPetals.ID, env.musicalHop.ID, testNow.Add(-30*24*time.Hour))
	env.createShow(t, env.mattQuevado.ID, env.parkSquare.ID, testNow.Add(10*24*time.Hour))
	env.createShow(t, env.wildSaxBand.ID, env.parkSquare.ID, testNow.Add(-24*time.Hour))
	env.createShow(t, env.wildSaxBand.ID, env.parkSquare.ID, testNow)
	env.createShow(t, env.wildSaxBand.ID, env.parkSquare.ID, testNow.Add(20*24*time.Hour))
}

func (env *testEnv) createVenue(t *testing.T, fields models.VenueFields) models.Venue {
	v, err := env.venues.Create(env.ctx, fields)
	require.NoError(t, err)
	return *v
}

func (env *testEnv) createArtist(t *testing.T, fields models.ArtistFields) models.Artist {
	a, err := env.artists.Create(env.ctx, fields)
	require.NoError(t, err)
	return *a
}

func (env *testEnv) createShow(t *testing.T, artistID, venueID uint, start time.Time) models.Show {
	s, err := env.shows.Create(env.ctx, models.Show{ArtistID: artistID, VenueID: venueID, StartTime: start})
	require.NoError(t, err)
	return *s
}

func (env *testEnv) count(t *testing.T, table string) int {
	var num int
	require.NoError(t, env.db.Get(&num, `SELECT COUNT(*) FROM "`+table+`"`))
	return num
}
