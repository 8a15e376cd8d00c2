package internal

import (
	"os"
	"strconv"
)

// LibraryEntry records where the canonical video file for one catalog id
// lives.
type LibraryEntry struct {
	Title    string `json:"title"`
	Year     string `json:"year"`
	FilePath string `json:"file_path"`
}

// LibraryIndex is the persisted mapping from catalog id to canonical file
// location. Loaded and saved wholesale; only ever mutated sequentially by
// the sanitizer.
type LibraryIndex struct {
	path    string
	Entries map[string]LibraryEntry
}

func LoadLibraryIndex(path string) *LibraryIndex {
	ix := &LibraryIndex{path: path, Entries: make(map[string]LibraryEntry)}
	LoadJSONCache(path, "Library", &ix.Entries)
	if ix.Entries == nil {
		ix.Entries = make(map[string]LibraryEntry)
	}
	return ix
}

func (ix *LibraryIndex) Save() error {
	return CheckErrLog(ERROR, "Library", "Failed to save library index", WriteJSONFile(ix.path, ix.Entries))
}

func (ix *LibraryIndex) Upsert(movie MovieRecord, filePath string) {
	ix.Entries[strconv.Itoa(movie.ID)] = LibraryEntry{
		Title:    movie.Title,
		Year:     movie.Year(),
		FilePath: filePath,
	}
}

// HasPath reports whether some entry already points at the given file.
func (ix *LibraryIndex) HasPath(filePath string) bool {
	for _, e := range ix.Entries {
		if e.FilePath == filePath {
			return true
		}
	}
	return false
}

// Sync removes entries whose backing file no longer exists and returns how
// many were dropped.
func (ix *LibraryIndex) Sync() int {
	removed := 0
	for id, e := range ix.Entries {
		if _, err := os.Stat(e.FilePath); os.IsNotExist(err) {
			UmmLog(WARN, "Library", "Index entry %s points at missing file %s, removing.", id, e.FilePath)
			delete(ix.Entries, id)
			removed++
		}
	}
	return removed
}
