package sqlite

import (
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derWhity/gigboard/internal/migrate"
	"github.com/derWhity/gigboard/internal/models"
	"github.com/derWhity/gigboard/internal/repos"
)

func setupTestRepo(t *testing.T) *ArtistRepo {
	db, err := repos.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	logger, _ := test.NewNullLogger()
	entry := logger.WithField("test", t.Name())
	require.NoError(t, migrate.ExecuteMigrationsOnDb(db, entry))
	return New(db, entry)
}

func seedArtists(t *testing.T, r *ArtistRepo) {
	for _, name := range []string{"The Wild Sax Band", "Guns N Petals", "Matt Quevado"} {
		require.NoError(t, r.Create(&models.Artist{ArtistFields: models.ArtistFields{Name: name}}))
	}
}

func names(list []models.Artist) []string {
	ret := []string{}
	for _, a := range list {
		ret = append(ret, a.Name)
	}
	return ret
}

func TestCreateAndGetArtist(t *testing.T) {
	r := setupTestRepo(t)
	a := models.Artist{ArtistFields: models.ArtistFields{
		Name:               "Guns N Petals",
		City:               "San Francisco",
		State:              "CA",
		Phone:              "326-123-5000",
		Genres:             models.Genres{"Rock n Roll"},
		ImageLink:          "https://images.unsplash.com/photo-1549213783-8284d0336c4f",
		FacebookLink:       "https://www.facebook.com/GunsNPetals",
		WebsiteLink:        "https://www.gunsnpetalsband.com",
		SeekingVenue:       true,
		SeekingDescription: "Looking for shows to perform at in the San Francisco Bay Area!",
	}}
	require.NoError(t, r.Create(&a))
	assert.NotZero(t, a.ID)

	loaded, err := r.GetByID(a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ArtistFields, loaded.ArtistFields)

	_, err = r.GetByID(a.ID + 1)
	assert.Equal(t, repos.ErrEntityNotExisting, err)
}

func TestUpdateArtist(t *testing.T) {
	r := setupTestRepo(t)
	a := models.Artist{ArtistFields: models.ArtistFields{Name: "Matt Quevado", SeekingVenue: true}}
	require.NoError(t, r.Create(&a))

	a.City = "New York"
	a.SeekingVenue = false
	require.NoError(t, r.Update(&a))
	loaded, err := r.GetByID(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "New York", loaded.City)
	assert.False(t, loaded.SeekingVenue)

	a.ID = 99
	assert.Equal(t, repos.ErrEntityNotExisting, r.Update(&a))
}

func TestFindArtists(t *testing.T) {
	r := setupTestRepo(t)
	seedArtists(t, r)

	found, count, err := r.Find("A")
	require.NoError(t, err)
	assert.Equal(t, uint(3), count)
	assert.Equal(t, []string{"Guns N Petals", "Matt Quevado", "The Wild Sax Band"}, names(found))

	found, count, err = r.Find("band")
	require.NoError(t, err)
	assert.Equal(t, uint(1), count)
	assert.Equal(t, []string{"The Wild Sax Band"}, names(found))

	found, count, err = r.Find("zzz")
	require.NoError(t, err)
	assert.Equal(t, uint(0), count)
	assert.NotNil(t, found)
}

func TestListArtistsByName(t *testing.T) {
	r := setupTestRepo(t)
	seedArtists(t, r)
	list, err := r.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"Guns N Petals", "Matt Quevado", "The Wild Sax Band"}, names(list))
}
