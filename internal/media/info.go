package media

import "time"

// Info carries the source metadata resolved for a URL before download.
// Fields the source does not expose stay zero.
type Info struct {
	Title        string
	Artist       string
	Album        string
	Track        string
	Channel      string
	Uploader     string
	Description  string
	ThumbnailURL string
	UploadDate   string
	Duration     time.Duration
	Width        int
	Height       int
	FPS          float64
	Playlist     bool
	EntryCount   int
}

// DisplayTitle returns the best human-readable title for the source.
func (i Info) DisplayTitle() string {
	if i.Title != "" {
		return i.Title
	}
	if i.Track != "" {
		return i.Track
	}
	return "(untitled)"
}
