package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var illegalPathChars = regexp.MustCompile(`[<>:"/\\|?*]+`)

// PrepareMovieFolderName returns the canonical "Title (Year)" folder name for
// a movie, with filesystem-illegal characters replaced by spaces and the
// result trimmed. An unknown release date yields "Title (N/A)".
func PrepareMovieFolderName(title, releaseDate string) string {
	yearStr := "N/A"
	if len(releaseDate) >= 4 {
		yearStr = releaseDate[:4]
	}
	folderName := fmt.Sprintf("%s (%s)", title, yearStr)
	return strings.TrimSpace(illegalPathChars.ReplaceAllString(folderName, " "))
}

// MoviePaths holds the canonical asset locations inside one movie folder.
type MoviePaths struct {
	Root        string
	Placeholder string
	Backdrop    string
}

func GetMoviePaths(downloadFolder, movieFolderName string) MoviePaths {
	root := filepath.Join(downloadFolder, movieFolderName)
	return MoviePaths{
		Root:        root,
		Placeholder: filepath.Join(root, movieFolderName+".mp4"),
		Backdrop:    filepath.Join(root, BackdropFilename),
	}
}

// TrailerPath returns the first file in the movie folder matching the
// trailer suffix pattern, or "" when no trailer exists yet.
func (p MoviePaths) TrailerPath() string {
	matches, err := filepath.Glob(filepath.Join(p.Root, "*"+TrailerSuffix+".*"))
	if err != nil || len(matches) == 0 {
		return ""
	}
	return matches[0]
}

// CleanEmptyFolders removes empty subfolders under root, deepest first, and
// returns how many were removed (or would be, in dry-run mode).
func CleanEmptyFolders(root string, dryRun bool) int {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return 0
	}
	UmmLog(INFO, "FileSystem", "Scanning for empty folders in %s...", root)

	var dirs []string
	filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err == nil && fi.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})
	// deepest first so freshly emptied parents are caught too
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })

	removed := 0
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			continue
		}
		if dryRun {
			UmmLog(INFO, "FileSystem", "Dry run: would remove empty folder %s", dir)
		} else if err := os.Remove(dir); err != nil {
			UmmLog(WARN, "FileSystem", "Could not remove folder %s: %v", dir, err)
			continue
		}
		removed++
	}
	UmmLog(INFO, "FileSystem", "Removed %d empty folders.", removed)
	return removed
}
