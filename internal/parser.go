package internal

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	yearPattern          = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	bracketGroupPattern  = regexp.MustCompile(`[\(\[].*?[\)\]]`)
	canonicalStemPattern = regexp.MustCompile(`^(.+)\s\((\d{4})\)$`)
)

// junkTitles are placeholder titles that never identify a real movie.
var junkTitles = map[string]bool{
	"sample":         true,
	"video sample":   true,
	"deleted scenes": true,
	"featurette":     true,
	"nostalgia":      true,
	"wanderlust":     true,
}

// ParseCanonicalStem is the fast path for filenames already in canonical
// "Title (Year)" form. It extracts (title, year) by exact pattern match,
// skipping tokenization entirely.
func ParseCanonicalStem(stem string) (string, int, bool) {
	m := canonicalStemPattern.FindStringSubmatch(stem)
	if m == nil {
		return "", 0, false
	}
	year, _ := strconv.Atoi(m[2])
	return m[1], year, true
}

// ParseFilename extracts a best-guess (title, year) from a raw video
// filename using the learned junk-word set on top of the fixed default set.
// Returns ok=false when no meaningful title survives cleanup. A year of 0
// means no year was found.
func ParseFilename(filename string, junkWords map[string]bool) (string, int, bool) {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))

	// A release year terminates the title segment; everything after it is
	// release metadata.
	year := 0
	if loc := yearPattern.FindStringIndex(stem); loc != nil {
		year, _ = strconv.Atoi(stem[loc[0]:loc[1]])
		stem = stem[:loc[0]]
	}

	// Separators include the bracket characters themselves, so bracket
	// contents survive as title tokens and only stray punctuation is left
	// for the group strip.
	stem = separatorPattern.ReplaceAllString(stem, " ")
	stem = bracketGroupPattern.ReplaceAllString(stem, "")

	var titleTokens []string
	for _, t := range strings.Fields(stem) {
		if isYearShaped(t) {
			continue
		}
		if junkWords[strings.ToLower(t)] || DefaultJunkWords[strings.ToLower(t)] {
			continue
		}
		titleTokens = append(titleTokens, t)
	}
	title := strings.TrimSpace(strings.Join(titleTokens, " "))

	if year == 0 {
		if m := yearPattern.FindString(filename); m != "" {
			year, _ = strconv.Atoi(m)
		}
	}

	if title == "" {
		return "", 0, false
	}
	if junkTitles[strings.ToLower(title)] {
		UmmLog(INFO, "Parser", "Skipping junk/sample file: %s", filename)
		return "", 0, false
	}
	return title, year, true
}

func isYearShaped(t string) bool {
	if len(t) != 4 || !isAllDigits(t) {
		return false
	}
	return strings.HasPrefix(t, "19") || strings.HasPrefix(t, "20")
}
