package models

import (
	"strings"
	"time"
)

// ArtistFields contains all fields of an artist that can be set by the user
type ArtistFields struct {
	Name         string `db:"name" json:"name" schema:"name" validate:"required,max=120"`
	City         string `db:"city" json:"city" schema:"city" validate:"max=120"`
	State        string `db:"state" json:"state" schema:"state" validate:"max=120"`
	Phone        string `db:"phone" json:"phone" schema:"phone" validate:"max=120"`
	Genres       Genres `db:"genres" json:"genres" schema:"genres"`
	ImageLink    string `db:"image_link" json:"image_link" schema:"image_link" validate:"omitempty,url,max=500"`
	FacebookLink string `db:"facebook_link" json:"facebook_link" schema:"facebook_link" validate:"omitempty,url,max=120"`
	WebsiteLink  string `db:"website_link" json:"website_link" schema:"website_link" validate:"omitempty,url,max=120"`
	// Is the artist looking for venues to perform at?
	SeekingVenue       bool   `db:"seeking_venue" json:"seeking_venue" schema:"seeking_venue"`
	SeekingDescription string `db:"seeking_description" json:"seeking_description" schema:"seeking_description"`
}

// Normalize trims the text fields and normalizes the genre set
func (f *ArtistFields) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.City = strings.TrimSpace(f.City)
	f.State = strings.TrimSpace(f.State)
	f.Phone = strings.TrimSpace(f.Phone)
	f.ImageLink = strings.TrimSpace(f.ImageLink)
	f.FacebookLink = strings.TrimSpace(f.FacebookLink)
	f.WebsiteLink = strings.TrimSpace(f.WebsiteLink)
	f.SeekingDescription = strings.TrimSpace(f.SeekingDescription)
	f.Genres = f.Genres.Normalized()
}

// Artist is a performer who can be booked for shows
type Artist struct {
	ID uint `db:"id" json:"id"`
	ArtistFields
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ArtistDetails is an artist together with the shows booked for it
type ArtistDetails struct {
	Artist
	PastShows          []ShowSummary `json:"past_shows"`
	UpcomingShows      []ShowSummary `json:"upcoming_shows"`
	PastShowsCount     uint          `json:"past_shows_count"`
	UpcomingShowsCount uint          `json:"upcoming_shows_count"`
}
