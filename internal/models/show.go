package models

import "time"

// Show is a scheduled event linking one artist to one venue at a start time
type Show struct {
	ID       uint `db:"id" json:"id"`
	ArtistID uint `db:"artist_id" json:"artist_id" schema:"artist_id" validate:"required"`
	VenueID  uint `db:"venue_id" json:"venue_id" schema:"venue_id" validate:"required"`
	// When does the show start? Always stored in UTC
	StartTime time.Time `db:"start_time" json:"start_time" schema:"start_time" validate:"required"`
}

// IsUpcoming checks if the show starts strictly after the given point in time. A show starting exactly at `now` is
// not upcoming any more
func (s *Show) IsUpcoming(now time.Time) bool {
	return s.StartTime.After(now)
}

// ShowSummary is a show together with the name and image of the artist and the venue involved. It is used for the
// show lists on the venue and artist pages
type ShowSummary struct {
	Show
	ArtistName      string `db:"artist_name" json:"artist_name"`
	ArtistImageLink string `db:"artist_image_link" json:"artist_image_link"`
	VenueName       string `db:"venue_name" json:"venue_name"`
	VenueImageLink  string `db:"venue_image_link" json:"venue_image_link"`
}

// PartitionShows splits the given shows into past and upcoming shows relative to `now`, keeping their order
func PartitionShows(shows []ShowSummary, now time.Time) (past []ShowSummary, upcoming []ShowSummary) {
	past = []ShowSummary{}
	upcoming = []ShowSummary{}
	for _, s := range shows {
		if s.IsUpcoming(now) {
			upcoming = append(upcoming, s)
		} else {
			past = append(past, s)
		}
	}
	return past, upcoming
}
