package internal

import "strings"

const (
	TrailerSuffix         = "-trailer"
	BackdropFilename      = "backdrop.jpg"
	LibraryIndexFilename  = "library.json"
	KnownFailuresFilename = "known_failures.json"
	JunkCacheFilename     = "junk_cache.json"
	MoviesCacheFilename   = "movies_cache.json"
)

// MovieRecord is a single movie as returned by TMDB. Immutable once fetched.
type MovieRecord struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
}

// Year returns the four-digit release year or "N/A" when unknown.
func (m MovieRecord) Year() string {
	if len(m.ReleaseDate) >= 4 {
		return m.ReleaseDate[:4]
	}
	return "N/A"
}

var videoExtensions = map[string]bool{
	".mkv": true,
	".mp4": true,
	".avi": true,
	".mov": true,
	".wmv": true,
	".flv": true,
}

// IsVideoFile reports whether the filename carries a known video extension.
func IsVideoFile(name string) bool {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return false
	}
	return videoExtensions[strings.ToLower(name[idx:])]
}
