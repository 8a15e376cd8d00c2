package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"
)

// TMDBBaseURL is a package variable so tests can point the client at an
// httptest server.
var TMDBBaseURL = "https://api.themoviedb.org/3"

type TMDBClient struct {
	APIKey       string
	PagesPerYear int
	Filters      DiscoverFilters
	HTTPClient   *http.Client

	trailerGroup singleflight.Group
}

func NewTMDBClient(apiKey string, pagesPerYear int, filters DiscoverFilters) *TMDBClient {
	return &TMDBClient{
		APIKey:       apiKey,
		PagesPerYear: pagesPerYear,
		Filters:      filters,
		HTTPClient:   &http.Client{Timeout: 20 * time.Second},
	}
}

func (c *TMDBClient) getJSON(rawURL string, dest interface{}) error {
	resp, err := c.HTTPClient.Get(rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("TMDB returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dest)
}

func (c *TMDBClient) discoverValues(year, page int) url.Values {
	v := url.Values{}
	v.Set("api_key", c.APIKey)
	v.Set("language", c.Filters.Language)
	v.Set("sort_by", c.Filters.SortBy)
	v.Set("include_adult", strconv.FormatBool(c.Filters.IncludeAdult))
	v.Set("include_video", strconv.FormatBool(c.Filters.IncludeVideo))
	v.Set("vote_count.gte", strconv.Itoa(c.Filters.VoteCountGte))
	v.Set("vote_average.gte", strconv.FormatFloat(c.Filters.VoteAverageGte, 'f', -1, 64))
	v.Set("with_original_language", c.Filters.WithOriginalLanguage)
	v.Set("without_genres", c.Filters.WithoutGenres)
	v.Set("primary_release_year", strconv.Itoa(year))
	v.Set("page", strconv.Itoa(page))
	return v
}

// DiscoverYear fetches up to PagesPerYear discovery pages for one release
// year, stopping at the first empty page. A request failure aborts the rest
// of that year only; pages fetched so far are returned.
func (c *TMDBClient) DiscoverYear(year int) []MovieRecord {
	var movies []MovieRecord
	for page := 1; page <= c.PagesPerYear; page++ {
		var result struct {
			Results []MovieRecord `json:"results"`
		}
		u := fmt.Sprintf("%s/discover/movie?%s", TMDBBaseURL, c.discoverValues(year, page).Encode())
		if err := c.getJSON(u, &result); err != nil {
			UmmLog(WARN, "TMDB", "Discovery request failed for year %d, page %d: %v", year, page, err)
			break
		}
		if len(result.Results) == 0 {
			break
		}
		movies = append(movies, result.Results...)
	}
	return movies
}

// SearchMovie resolves (title, year) to the best catalog match, or nil when
// nothing matches. A year of 0 searches without a year constraint.
func (c *TMDBClient) SearchMovie(title string, year int) (*MovieRecord, error) {
	v := url.Values{}
	v.Set("api_key", c.APIKey)
	v.Set("query", title)
	if year > 0 {
		v.Set("year", strconv.Itoa(year))
	}
	var result struct {
		Results []MovieRecord `json:"results"`
	}
	u := fmt.Sprintf("%s/search/movie?%s", TMDBBaseURL, v.Encode())
	if err := c.getJSON(u, &result); err != nil {
		return nil, fmt.Errorf("TMDB search failed for %q: %w", title, err)
	}
	if len(result.Results) == 0 {
		return nil, nil
	}
	return &result.Results[0], nil
}

type tmdbVideo struct {
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
	Key      string `json:"key"`
}

// trailerPriority ranks a video descriptor; lower is better, 0 means not a
// candidate.
func trailerPriority(v tmdbVideo) int {
	switch {
	case v.Type == "Trailer" && v.Official:
		return 1
	case v.Type == "Trailer":
		return 2
	case v.Type == "Teaser" && v.Official:
		return 3
	case v.Type == "Teaser":
		return 4
	}
	return 0
}

// TrailerKey resolves a movie id to the highest-priority YouTube video key,
// or "" when the movie has no usable trailer. Videos tied on priority keep
// the first one encountered in the catalog response. Concurrent lookups for
// the same id are collapsed into one request.
func (c *TMDBClient) TrailerKey(movieID int) (string, error) {
	key, err, _ := c.trailerGroup.Do(strconv.Itoa(movieID), func() (interface{}, error) {
		var result struct {
			Results []tmdbVideo `json:"results"`
		}
		u := fmt.Sprintf("%s/movie/%d/videos?api_key=%s", TMDBBaseURL, movieID, url.QueryEscape(c.APIKey))
		if err := c.getJSON(u, &result); err != nil {
			return "", fmt.Errorf("failed to fetch videos for movie %d: %w", movieID, err)
		}
		best := ""
		bestPriority := 0
		for _, v := range result.Results {
			if v.Site != "YouTube" {
				continue
			}
			p := trailerPriority(v)
			if p == 0 {
				continue
			}
			if bestPriority == 0 || p < bestPriority {
				best = v.Key
				bestPriority = p
			}
		}
		return best, nil
	})
	if err != nil {
		return "", err
	}
	return key.(string), nil
}
