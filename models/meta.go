package models

import "time"

// Meta is the denormalized addon-protocol record for one title. Field names
// follow the addon wire format, not the upstream providers.
type Meta struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"` // "movie" or "series"
	Name         string         `json:"name"`
	OriginalName string         `json:"originalName,omitempty"`
	Genres       []string       `json:"genres,omitempty"`
	Poster       string         `json:"poster,omitempty"`
	Background   string         `json:"background,omitempty"`
	Logo         string         `json:"logo,omitempty"`
	Description  string         `json:"description,omitempty"`
	ReleaseInfo  string         `json:"releaseInfo,omitempty"`
	Released     *time.Time     `json:"released,omitempty"`
	Runtime      string         `json:"runtime,omitempty"`
	Language     string         `json:"language,omitempty"`
	Country      string         `json:"country,omitempty"`
	IMDBRating   string         `json:"imdbRating,omitempty"`
	Director     []string       `json:"director,omitempty"`
	Cast         []string       `json:"cast,omitempty"`
	Awards       string         `json:"awards,omitempty"`
	Website      string         `json:"website,omitempty"`
	Videos       *[]Video       `json:"videos,omitempty"` // non-nil (possibly empty) iff Type == "series"
	BehaviorHints *BehaviorHints `json:"behaviorHints,omitempty"`
}

// Video is one episode of a series.
type Video struct {
	ID        string    `json:"id"` // "<titleID>:<season>:<episode>"
	Title     string    `json:"title"`
	Released  time.Time `json:"released"`
	Season    int       `json:"season"`
	Episode   int       `json:"episode"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	Overview  string    `json:"overview,omitempty"`
}

// BehaviorHints carries client playback hints.
type BehaviorHints struct {
	DefaultVideoID string `json:"defaultVideoId,omitempty"`
}

// MetaResponse wraps a single meta for the /meta endpoint.
type MetaResponse struct {
	Meta *Meta `json:"meta"`
}

// CatalogResponse wraps search results for the /catalog endpoint.
type CatalogResponse struct {
	Metas []Meta `json:"metas"`
}
