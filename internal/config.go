package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DiscoverFilters holds the TMDB discovery filter parameters. Unknown keys in
// the config file are preserved on rewrite but never consulted.
type DiscoverFilters struct {
	Language             string  `yaml:"language" json:"language"`
	SortBy               string  `yaml:"sortBy" json:"sortBy"`
	IncludeAdult         bool    `yaml:"includeAdult" json:"includeAdult"`
	IncludeVideo         bool    `yaml:"includeVideo" json:"includeVideo"`
	VoteCountGte         int     `yaml:"voteCountGte" json:"voteCountGte"`
	VoteAverageGte       float64 `yaml:"voteAverageGte" json:"voteAverageGte"`
	WithOriginalLanguage string  `yaml:"withOriginalLanguage" json:"withOriginalLanguage"`
	WithoutGenres        string  `yaml:"withoutGenres" json:"withoutGenres"`
}

type Config struct {
	TMDBAPIKey            string          `yaml:"tmdbApiKey" json:"tmdbApiKey"`
	StartYear             int             `yaml:"startYear" json:"startYear"`
	EndYear               int             `yaml:"endYear" json:"endYear"`
	PagesPerYear          int             `yaml:"pagesPerYear" json:"pagesPerYear"`
	TMDBFilters           DiscoverFilters `yaml:"tmdbFilters" json:"tmdbFilters"`
	DownloadFolder        string          `yaml:"downloadFolder" json:"downloadFolder"`
	CacheFolder           string          `yaml:"cacheFolder" json:"cacheFolder"`
	YtDlpPath             string          `yaml:"ytDlpPath" json:"ytDlpPath"`
	FFmpegPath            string          `yaml:"ffmpegPath" json:"ffmpegPath"`
	MaxDownloadWorkers    int             `yaml:"maxDownloadWorkers" json:"maxDownloadWorkers"`
	MaxFFmpegWorkers      int             `yaml:"maxFfmpegWorkers" json:"maxFfmpegWorkers"`
	CreateBackdrop        bool            `yaml:"createBackdrop" json:"createBackdrop"`
	PlaceholderDuration   int             `yaml:"placeholderDuration" json:"placeholderDuration"`
	PlaceholderResolution string          `yaml:"placeholderResolution" json:"placeholderResolution"`
	MaxScanDepth          int             `yaml:"maxScanDepth" json:"maxScanDepth"`
	LogLevel              string          `yaml:"logLevel" json:"logLevel"`
	ListenAddr            string          `yaml:"listenAddr" json:"listenAddr"`
}

func DefaultConfig() Config {
	return Config{
		TMDBAPIKey:   "YOUR_API_KEY",
		StartYear:    2024,
		EndYear:      2025,
		PagesPerYear: 3,
		TMDBFilters: DiscoverFilters{
			Language:             "en-US",
			SortBy:               "popularity.desc",
			IncludeAdult:         false,
			IncludeVideo:         false,
			VoteCountGte:         50,
			VoteAverageGte:       4,
			WithOriginalLanguage: "en",
			WithoutGenres:        "10751",
		},
		DownloadFolder:        "Trailers",
		CacheFolder:           ".cache",
		YtDlpPath:             "yt-dlp",
		FFmpegPath:            "ffmpeg",
		MaxDownloadWorkers:    4,
		MaxFFmpegWorkers:      2,
		CreateBackdrop:        true,
		PlaceholderDuration:   1,
		PlaceholderResolution: "1920x1080",
		MaxScanDepth:          1,
		LogLevel:              INFO,
		ListenAddr:            ":8080",
	}
}

// LoadConfig reads the yaml config at path, merging defaults for any keys the
// file does not set. A missing file is created with the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if werr := EnsureConfigDefaults(path); werr != nil {
			return cfg, werr
		}
		UmmLog(INFO, "Config", "Default config created at %s. Please set your TMDB API key.", path)
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	return cfg, nil
}

// EnsureConfigDefaults writes the default config file if none exists.
func EnsureConfigDefaults(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	out, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0644)
}

// CachePath returns the path of a named cache file under the cache folder,
// creating the folder as needed.
func (c Config) CachePath(name string) string {
	_ = os.MkdirAll(c.CacheFolder, 0755)
	return filepath.Join(c.CacheFolder, name)
}
