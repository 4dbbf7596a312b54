package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// apiResponse is the generic form of every response sent by the API
type apiResponse struct {
	OK           bool            `json:"ok"`
	Data         json.RawMessage `json:"data"`
	Error        string          `json:"error"`
	ErrorMessage string          `json:"errorMessage"`
	ErrorDetails json.RawMessage `json:"errorDetails"`
}

func setupTestServer(t *testing.T) (*testEnv, *httptest.Server) {
	env := setupTestEnv(t)
	srv := httptest.NewServer(MakeHTTPHandler(env.venues, env.artists, env.shows, env.logger))
	t.Cleanup(srv.Close)
	return env, srv
}

func doRequest(t *testing.T, req *http.Request) (int, apiResponse) {
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	var ret apiResponse
	require.NoError(t, json.Unmarshal(body, &ret), "body: %s", body)
	return res.StatusCode, ret
}

func get(t *testing.T, srv *httptest.Server, path string) (int, apiResponse) {
	req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
	require.NoError(t, err)
	return doRequest(t, req)
}

func postForm(t *testing.T, srv *httptest.Server, path string, form url.Values) (int, apiResponse) {
	req, err := http.NewRequest(http.MethodPost, srv.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return doRequest(t, req)
}

func sendJSON(t *testing.T, srv *httptest.Server, method, path, body string) (int, apiResponse) {
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	return doRequest(t, req)
}

func TestHTTPListVenues(t *testing.T) {
	env, srv := setupTestServer(t)
	status, res := get(t, srv, "/api/venues")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, res.OK)

	var areas []struct {
		City   string `json:"city"`
		State  string `json:"state"`
		Venues []struct {
			ID               uint   `json:"id"`
			Name             string `json:"name"`
			NumUpcomingShows uint   `json:"num_upcoming_shows"`
		} `json:"venues"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &areas))
	require.Len(t, areas, 2)
	assert.Equal(t, "San Francisco", areas[0].City)
	require.Len(t, areas[0].Venues, 2)
	assert.Equal(t, env.parkSquare.ID, areas[0].Venues[0].ID)
}

func TestHTTPSearch(t *testing.T) {
	_, srv := setupTestServer(t)

	type searchResult struct {
		Count      uint   `json:"count"`
		SearchTerm string `json:"search_term"`
		Data       []struct {
			Name string `json:"name"`
		} `json:"data"`
	}

	// Search form
	status, res := postForm(t, srv, "/api/venues/search", url.Values{"search_term": {"Music"}})
	require.Equal(t, http.StatusOK, status)
	var result searchResult
	require.NoError(t, json.Unmarshal(res.Data, &result))
	assert.Equal(t, uint(2), result.Count)
	assert.Equal(t, "Music", result.SearchTerm)

	// Query parameter
	status, res = get(t, srv, "/api/artists/search?search=band")
	require.Equal(t, http.StatusOK, status)
	result = searchResult{}
	require.NoError(t, json.Unmarshal(res.Data, &result))
	require.Equal(t, uint(1), result.Count)
	assert.Equal(t, "The Wild Sax Band", result.Data[0].Name)

	// JSON body
	status, res = sendJSON(t, srv, http.MethodPost, "/api/artists/search", `{"search_term": "A"}`)
	require.Equal(t, http.StatusOK, status)
	result = searchResult{}
	require.NoError(t, json.Unmarshal(res.Data, &result))
	assert.Equal(t, uint(3), result.Count)
}

func TestHTTPCreateVenueFromForm(t *testing.T) {
	env, srv := setupTestServer(t)
	form := url.Values{
		"name":           {"The Fillmore"},
		"city":           {"San Francisco"},
		"state":          {"CA"},
		"address":        {"1805 Geary Blvd"},
		"genres":         {"Rock n Roll", "Blues"},
		"seeking_talent": {"y"},
		"csrf_token":     {"ignored"},
	}
	status, res := postForm(t, srv, "/api/venues", form)
	require.Equal(t, http.StatusOK, status, "%s", res.ErrorMessage)

	var created struct {
		ID            uint     `json:"id"`
		Genres        []string `json:"genres"`
		SeekingTalent bool     `json:"seeking_talent"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, []string{"Blues", "Rock n Roll"}, created.Genres)
	assert.True(t, created.SeekingTalent)

	details, err := env.venues.Get(env.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "1805 Geary Blvd", details.Address)

	// A missing name is reported
	status, res = postForm(t, srv, "/api/venues", url.Values{"city": {"Nowhere"}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, res.OK)
	assert.Equal(t, ErrCodeRequiredFieldMissing, res.Error)
	assert.JSONEq(t, `{"name": "required"}`, string(res.ErrorDetails))
}

func TestHTTPCreateAndUpdateArtistFromJSON(t *testing.T) {
	env, srv := setupTestServer(t)
	status, res := sendJSON(t, srv, http.MethodPost, "/api/artists",
		`{"name": "Lena Loud", "city": "Portland", "state": "OR", "genres": ["Pop"], "seeking_venue": true}`)
	require.Equal(t, http.StatusOK, status, "%s", res.ErrorMessage)
	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &created))

	// Update via PUT
	status, _ = sendJSON(t, srv, http.MethodPut, fmt.Sprintf("/api/artists/%d", created.ID),
		`{"name": "Lena Louder", "city": "Portland", "state": "OR", "genres": ["Pop", "Rock n Roll"]}`)
	require.Equal(t, http.StatusOK, status)
	a, err := env.artists.Get(env.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lena Louder", a.Name)
	assert.False(t, a.SeekingVenue)

	// Update via the edit form
	status, _ = postForm(t, srv, fmt.Sprintf("/api/artists/%d/edit", created.ID), url.Values{
		"name":  {"Lena Loudest"},
		"phone": {"503-000-0000"},
	})
	require.Equal(t, http.StatusOK, status)
	a, err = env.artists.Get(env.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lena Loudest", a.Name)
	assert.Empty(t, a.City)
	assert.Empty(t, a.Genres)

	// Broken JSON
	status, res = sendJSON(t, srv, http.MethodPost, "/api/artists", `{"name": `)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, ErrCodeIllegalJSON, res.Error)
}

func TestHTTPGetNotFound(t *testing.T) {
	_, srv := setupTestServer(t)
	status, res := get(t, srv, "/api/venues/4711")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, ErrCodeVenueNotFound, res.Error)

	status, res = get(t, srv, "/api/artists/4711")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, ErrCodeArtistNotFound, res.Error)
}

func TestHTTPGetArtist(t *testing.T) {
	env, srv := setupTestServer(t)
	status, res := get(t, srv, fmt.Sprintf("/api/artists/%d", env.wildSaxBand.ID))
	require.Equal(t, http.StatusOK, status)
	var details struct {
		Name               string `json:"name"`
		PastShowsCount     uint   `json:"past_shows_count"`
		UpcomingShowsCount uint   `json:"upcoming_shows_count"`
		UpcomingShows      []struct {
			VenueName string    `json:"venue_name"`
			StartTime time.Time `json:"start_time"`
		} `json:"upcoming_shows"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &details))
	assert.Equal(t, "The Wild Sax Band", details.Name)
	assert.Equal(t, uint(2), details.PastShowsCount)
	assert.Equal(t, uint(1), details.UpcomingShowsCount)
	require.Len(t, details.UpcomingShows, 1)
	assert.Equal(t, "Park Square Live Music & Coffee", details.UpcomingShows[0].VenueName)
}

func TestHTTPShows(t *testing.T) {
	env, srv := setupTestServer(t)

	status, res := postForm(t, srv, "/api/shows", url.Values{
		"artist_id":  {fmt.Sprint(env.mattQuevado.ID)},
		"venue_id":   {fmt.Sprint(env.musicalHop.ID)},
		"start_time": {"2031-05-21T21:30"},
	})
	require.Equal(t, http.StatusOK, status, "%s", res.ErrorMessage)
	var created struct {
		ID        uint      `json:"id"`
		StartTime time.Time `json:"start_time"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &created))
	assert.True(t, time.Date(2031, 5, 21, 21, 30, 0, 0, time.UTC).Equal(created.StartTime))

	status, res = sendJSON(t, srv, http.MethodPost, "/api/shows", fmt.Sprintf(
		`{"artist_id": %d, "venue_id": %d, "start_time": "2031-05-22 20:00:00"}`,
		env.gunsNPetals.ID, env.duelingPianos.ID,
	))
	require.Equal(t, http.StatusOK, status, "%s", res.ErrorMessage)

	status, res = get(t, srv, "/api/shows")
	require.Equal(t, http.StatusOK, status)
	var list []struct {
		ID       uint `json:"id"`
		ArtistID uint `json:"artist_id"`
		VenueID  uint `json:"venue_id"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &list))
	assert.Len(t, list, 7)

	// Unknown artist
	status, res = sendJSON(t, srv, http.MethodPost, "/api/shows", fmt.Sprintf(
		`{"artist_id": 4711, "venue_id": %d, "start_time": "2031-05-22T20:00:00Z"}`, env.duelingPianos.ID,
	))
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, ErrCodeReferencedEntityMissing, res.Error)
	assert.Equal(t, 7, env.count(t, "Show"))

	// Unknown time format
	status, res = postForm(t, srv, "/api/shows", url.Values{
		"artist_id":  {fmt.Sprint(env.mattQuevado.ID)},
		"venue_id":   {fmt.Sprint(env.musicalHop.ID)},
		"start_time": {"next friday"},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, ErrCodeValidationFailed, res.Error)
}

func TestHTTPDeleteVenue(t *testing.T) {
	env, srv := setupTestServer(t)
	path := fmt.Sprintf("%s/api/venues/%d", srv.URL, env.parkSquare.ID)
	for i := 0; i < 2; i++ {
		req, err := http.NewRequest(http.MethodDelete, path, nil)
		require.NoError(t, err)
		status, res := doRequest(t, req)
		assert.Equal(t, http.StatusOK, status)
		assert.True(t, res.OK)
	}
	assert.Equal(t, 2, env.count(t, "Venue"))
	assert.Equal(t, 1, env.count(t, "Show"))
}

func TestHTTPRequestID(t *testing.T) {
	_, srv := setupTestServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/artists", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, "abc-123", res.Header.Get("X-Request-ID"))

	// A new ID is generated if the client sends none - errors carry it as well
	res, err = http.Get(srv.URL + "/api/venues/4711")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Len(t, res.Header.Get("X-Request-ID"), 36)
}

func TestHTTPAlive(t *testing.T) {
	_, srv := setupTestServer(t)
	res, err := http.Get(srv.URL + "/alive")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	var body map[string]bool
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.True(t, body["ok"])
}

func TestParseStartTime(t *testing.T) {
	expected := time.Date(2035, 4, 1, 20, 0, 0, 0, time.UTC)
	for _, value := range []string{"2035-04-01T20:00:00Z", "2035-04-01T22:00:00+02:00", "2035-04-01 20:00:00", "2035-04-01T20:00"} {
		parsed, err := parseStartTime(value)
		require.NoError(t, err, value)
		assert.True(t, expected.Equal(parsed), value)
	}
	_, err := parseStartTime("01.04.2035 20:00")
	assert.Error(t, err)
}
