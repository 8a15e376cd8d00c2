package internal

import (
	"os"
	"strconv"
)

// FetchMovies returns the discovery results for every year in
// [yearStart, yearEnd], reading per-year results from the JSON cache at
// cachePath and fetching only the missing years from TMDB. The cache is a
// JSON object keyed by year string.
func FetchMovies(c *TMDBClient, cachePath string, yearStart, yearEnd int, noCache, clearCache bool) []MovieRecord {
	if clearCache {
		if err := os.Remove(cachePath); err == nil {
			UmmLog(INFO, "TMDB", "Cleared discovery cache file: %s", cachePath)
		}
	}

	byYear := make(map[string][]MovieRecord)
	if !noCache {
		LoadJSONCache(cachePath, "TMDB", &byYear)
	}

	var fetched bool
	for year := yearStart; year <= yearEnd; year++ {
		yearKey := strconv.Itoa(year)
		if _, ok := byYear[yearKey]; ok {
			UmmLog(INFO, "TMDB", "Loaded year %s from cache", yearKey)
			continue
		}
		UmmLog(INFO, "TMDB", "Fetching year %s from TMDB...", yearKey)
		byYear[yearKey] = c.DiscoverYear(year)
		fetched = true
	}

	if fetched && !noCache {
		if err := WriteJSONFile(cachePath, byYear); err != nil {
			UmmLog(ERROR, "TMDB", "Failed to write discovery cache: %v", err)
		}
	}

	var all []MovieRecord
	for year := yearStart; year <= yearEnd; year++ {
		all = append(all, byYear[strconv.Itoa(year)]...)
	}
	return all
}
