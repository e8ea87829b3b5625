// Package backend provides a read-only client for the site's releases and shows API.
package backend

// Platform identifies a streaming platform a release is linked to.
type Platform string

const (
	PlatformSpotify    Platform = "spotify"
	PlatformSoundCloud Platform = "soundcloud"
	PlatformAppleMusic Platform = "apple_music"
	PlatformYouTube    Platform = "youtube"
)

// Release is a music release as served by the API.
type Release struct {
	ID                int           `json:"id"`
	Title             string        `json:"title"`
	URLTitle          string        `json:"url_title"`
	SoundCloudURL     string        `json:"soundcloud_url"`
	CoverArtFull      string        `json:"cover_art_full,omitempty"`
	CoverArtThumbnail string        `json:"cover_art_thumbnail,omitempty"`
	Collaborators     string        `json:"collaborators,omitempty"`
	ReleaseDate       string        `json:"release_date"`
	CreatedAt         string        `json:"created_at"`
	UpdatedAt         string        `json:"updated_at"`
	Links             []ReleaseLink `json:"links,omitempty"`
}

// ReleaseLink points a release at one streaming platform.
type ReleaseLink struct {
	ID        int      `json:"id"`
	ReleaseID int      `json:"release_id"`
	Platform  Platform `json:"platform"`
	URL       string   `json:"url"`
	CreatedAt string   `json:"created_at"`
}

// Show is a live show as served by the API.
type Show struct {
	ID            string `json:"id"`
	Venue         string `json:"venue"`
	City          string `json:"city"`
	StateProvince string `json:"state_province"`
	Country       string `json:"country"`
	TicketLink    string `json:"ticket_link,omitempty"`
	ShowDate      string `json:"show_date"`
}

// UpcomingShows is the payload of the upcoming shows endpoint.
type UpcomingShows struct {
	Shows            []Show `json:"shows"`
	Count            int    `json:"count"`
	HasUpcomingShows bool   `json:"hasUpcomingShows"`
}
