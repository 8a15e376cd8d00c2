package internal

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultJunkWords are quality/codec tags filtered from every filename
// regardless of what the learner finds.
var DefaultJunkWords = map[string]bool{
	"4k": true, "1080p": true, "720p": true, "uhd": true, "bluray": true,
	"web-dl": true, "webrip": true, "x264": true, "x265": true, "hevc": true,
}

var (
	normalizedStemPattern = regexp.MustCompile(`^.+\s\(\d{4}\)$`)
	separatorPattern      = regexp.MustCompile(`[\._\[\]\(\)-]`)
)

// IsNormalizedStem reports whether a filename stem is already in canonical
// "Title (Year)" form.
func IsNormalizedStem(stem string) bool {
	return normalizedStemPattern.MatchString(stem)
}

// TokenizeFilename breaks a filename into lowercase candidate junk tokens,
// dropping short and purely numeric noise.
func TokenizeFilename(filename string) []string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	stem = separatorPattern.ReplaceAllString(stem, " ")
	var tokens []string
	for _, t := range strings.Fields(stem) {
		t = strings.ToLower(t)
		if len(t) <= 2 || isAllDigits(t) {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// JunkLearner statistically derives recurring junk words from the
// unnormalized filenames in a library, caching the result on disk.
type JunkLearner struct {
	CachePath   string
	LibraryRoot string
}

// minimum library sizes below which learning has no reliable signal
const (
	minVideoFiles        = 10
	minUnnormalizedFiles = 5
)

func (l *JunkLearner) scanVideoFiles() []string {
	var files []string
	filepath.Walk(l.LibraryRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if IsVideoFile(info.Name()) {
			files = append(files, path)
		}
		return nil
	})
	return files
}

// Learn returns the junk-word set, reusing the cache unless a forced rebuild
// is requested or the cache is unreadable.
func (l *JunkLearner) Learn(forceRebuild bool) map[string]bool {
	if !forceRebuild {
		var cached []string
		if LoadJSONCache(l.CachePath, "Junk", &cached) {
			junk := make(map[string]bool, len(cached))
			for _, w := range cached {
				junk[w] = true
			}
			return junk
		}
	}

	UmmLog(INFO, "Junk", "Building junk word cache from library filenames...")
	videoFiles := l.scanVideoFiles()
	if len(videoFiles) < minVideoFiles {
		UmmLog(INFO, "Junk", "Library is too small (%d files) to build a reliable junk cache.", len(videoFiles))
		return map[string]bool{}
	}

	// Count per-file occurrences: a token repeated inside one filename
	// counts once.
	tokenCounts := make(map[string]int)
	unnormalized := 0
	for _, path := range videoFiles {
		name := filepath.Base(path)
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if IsNormalizedStem(stem) {
			continue
		}
		unnormalized++
		for _, t := range Unique(TokenizeFilename(name)) {
			tokenCounts[t]++
		}
	}
	if unnormalized < minUnnormalizedFiles {
		UmmLog(INFO, "Junk", "Not enough unnormalized files (%d) to build a reliable junk cache.", unnormalized)
		return map[string]bool{}
	}

	threshold := float64(unnormalized) * 0.2
	junk := make(map[string]bool)
	for token, count := range tokenCounts {
		if float64(count) > threshold && count > 1 {
			junk[token] = true
		}
	}

	if len(junk) > 0 {
		UmmLog(INFO, "Junk", "Identified %d junk words from %d unnormalized files.", len(junk), unnormalized)
		words := make([]string, 0, len(junk))
		for w := range junk {
			words = append(words, w)
		}
		if err := WriteJSONFile(l.CachePath, words); err != nil {
			UmmLog(ERROR, "Junk", "Failed to save junk cache: %v", err)
		}
	} else {
		UmmLog(INFO, "Junk", "No recurring junk words identified across %d unnormalized files.", unnormalized)
	}
	return junk
}
