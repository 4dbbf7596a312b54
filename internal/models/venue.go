package models

import (
	"strings"
	"time"
)

// VenueFields contains all fields of a venue that can be set by the user. Creating and editing a venue always
// writes all of them
type VenueFields struct {
	// Name of the venue
	Name string `db:"name" json:"name" schema:"name" validate:"required,max=120"`
	City  string `db:"city" json:"city" schema:"city" validate:"max=120"`
	State string `db:"state" json:"state" schema:"state" validate:"max=120"`
	// Street address of the venue
	Address string `db:"address" json:"address" schema:"address" validate:"max=120"`
	Phone   string `db:"phone" json:"phone" schema:"phone" validate:"max=120"`
	// Link to an image of the venue
	ImageLink    string `db:"image_link" json:"image_link" schema:"image_link" validate:"omitempty,url,max=500"`
	FacebookLink string `db:"facebook_link" json:"facebook_link" schema:"facebook_link" validate:"omitempty,url,max=120"`
	WebsiteLink  string `db:"website_link" json:"website_link" schema:"website_link" validate:"omitempty,url,max=120"`
	// The music genres played at this venue
	Genres Genres `db:"genres" json:"genres" schema:"genres"`
	// Is the venue looking for artists to perform?
	SeekingTalent      bool   `db:"seeking_talent" json:"seeking_talent" schema:"seeking_talent"`
	SeekingDescription string `db:"seeking_description" json:"seeking_description" schema:"seeking_description"`
}

// Normalize trims the text fields and normalizes the genre set
func (f *VenueFields) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.City = strings.TrimSpace(f.City)
	f.State = strings.TrimSpace(f.State)
	f.Address = strings.TrimSpace(f.Address)
	f.Phone = strings.TrimSpace(f.Phone)
	f.ImageLink = strings.TrimSpace(f.ImageLink)
	f.FacebookLink = strings.TrimSpace(f.FacebookLink)
	f.WebsiteLink = strings.TrimSpace(f.WebsiteLink)
	f.SeekingDescription = strings.TrimSpace(f.SeekingDescription)
	f.Genres = f.Genres.Normalized()
}

// Venue is a physical location that can host shows
type Venue struct {
	// Internal ID
	ID uint `db:"id" json:"id"`
	VenueFields
	// Creation date of this entry
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	// Date of the last update of this entry
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// VenueSummary is the short form of a venue used when listing venues by location
type VenueSummary struct {
	ID               uint   `json:"id"`
	Name             string `json:"name"`
	NumUpcomingShows uint   `json:"num_upcoming_shows"`
}

// VenueLocation groups all venues sharing the same city and state
type VenueLocation struct {
	City   string         `json:"city"`
	State  string         `json:"state"`
	Venues []VenueSummary `json:"venues"`
}

// VenueDetails is a venue together with its shows, split into past and upcoming ones
type VenueDetails struct {
	Venue
	PastShows          []ShowSummary `json:"past_shows"`
	UpcomingShows      []ShowSummary `json:"upcoming_shows"`
	PastShowsCount     uint          `json:"past_shows_count"`
	UpcomingShowsCount uint          `json:"upcoming_shows_count"`
}
