package internal

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

// OperationKind classifies a planned filesystem operation.
type OperationKind string

const (
	OpMoveFile          OperationKind = "move_file"
	OpRenameFolder      OperationKind = "rename_folder"
	OpRenameFileInPlace OperationKind = "rename_file_in_place"
	OpNoOp              OperationKind = "no_op"
)

// FileOperation is a planned move/rename, produced by the planning phase and
// consumed by the execution phase. Never persisted.
type FileOperation struct {
	Kind         OperationKind
	SourceFile   string
	SourceFolder string
	DestFile     string
	DestFolder   string
	Movie        MovieRecord
}

// SanitizeReport accumulates per-file outcomes of one sanitizer run.
type SanitizeReport struct {
	Processed         int
	AlreadyCataloged  int
	AlreadyCanonical  int
	Planned           []FileOperation
	Unparseable       []string
	Unmatched         []string
	CollectionSkipped []string
	Executed          int
	Failed            int
	StaleRemoved      int
}

// Sanitizer matches messy video filenames against the catalog and plans the
// move/rename operations that bring the library into canonical form.
type Sanitizer struct {
	Catalog      *TMDBClient
	Index        *LibraryIndex
	JunkWords    map[string]bool
	Root         string
	MaxScanDepth int
	DryRun       bool

	// Confirm is consulted in dry-run mode before executing the printed
	// plan; returning false aborts all operations for this run.
	Confirm func(plan []FileOperation) bool
}

// scanVideos walks the library root collecting video files up to
// MaxScanDepth levels below the root. Deeper files belong to collections
// and are deliberately left for manual handling. Trailer files and the
// index file itself are excluded.
func (s *Sanitizer) scanVideos() (videos, collectionSkipped []string) {
	UmmLog(INFO, "Sanitizer", "Scanning for videos in %s (max %d folder(s) deep)...", s.Root, s.MaxScanDepth)
	filepath.Walk(s.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		name := info.Name()
		if !IsVideoFile(name) || name == LibraryIndexFilename {
			return nil
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if strings.Contains(stem, TrailerSuffix) {
			return nil
		}
		rel, relErr := filepath.Rel(s.Root, path)
		if relErr != nil {
			return nil
		}
		depth := strings.Count(rel, string(filepath.Separator))
		if depth > s.MaxScanDepth {
			collectionSkipped = append(collectionSkipped, rel)
			return nil
		}
		videos = append(videos, path)
		return nil
	})
	return videos, collectionSkipped
}

// classifyOperation derives the operation kind from where the file currently
// lives versus where it belongs.
func classifyOperation(root, sourceFolder, destFolder string) OperationKind {
	switch {
	case sourceFolder == root:
		return OpMoveFile
	case sourceFolder == destFolder:
		return OpRenameFileInPlace
	default:
		return OpRenameFolder
	}
}

// Plan runs the pure planning phase: sync the index, scan, parse, resolve,
// and classify, producing the operation list without touching the
// filesystem.
func (s *Sanitizer) Plan() *SanitizeReport {
	report := &SanitizeReport{}
	report.StaleRemoved = s.Index.Sync()

	videos, skipped := s.scanVideos()
	report.CollectionSkipped = skipped
	if len(videos) == 0 {
		UmmLog(INFO, "Sanitizer", "No new video files found to process.")
		return report
	}

	for _, path := range videos {
		report.Processed++
		rel, err := filepath.Rel(s.Root, path)
		if err != nil {
			rel = path
		}

		if s.Index.HasPath(path) {
			report.AlreadyCataloged++
			continue
		}

		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		parentName := filepath.Base(filepath.Dir(path))
		if title, year, ok := ParseCanonicalStem(stem); ok && stem == parentName {
			// Correct name and location already; resolve only to upsert
			// the index entry.
			if movie, err := s.Catalog.SearchMovie(title, year); err == nil && movie != nil {
				s.Index.Upsert(*movie, path)
			}
			report.AlreadyCanonical++
			continue
		}

		title, year, ok := ParseFilename(filepath.Base(path), s.JunkWords)
		if !ok {
			report.Unparseable = append(report.Unparseable, rel)
			continue
		}

		movie, err := s.Catalog.SearchMovie(title, year)
		if err != nil {
			UmmLog(WARN, "Sanitizer", "Catalog lookup failed for %q: %v", title, err)
		}
		if movie == nil {
			report.Unmatched = append(report.Unmatched, rel)
			continue
		}

		folderName := PrepareMovieFolderName(movie.Title, movie.ReleaseDate)
		destFolder := filepath.Join(s.Root, folderName)
		destFile := filepath.Join(destFolder, folderName+filepath.Ext(path))
		if path == destFile {
			s.Index.Upsert(*movie, path)
			report.AlreadyCanonical++
			continue
		}
		sourceFolder := filepath.Dir(path)
		report.Planned = append(report.Planned, FileOperation{
			Kind:         classifyOperation(s.Root, sourceFolder, destFolder),
			SourceFile:   path,
			SourceFolder: sourceFolder,
			DestFile:     destFile,
			DestFolder:   destFolder,
			Movie:        *movie,
		})
	}
	return report
}

// Run plans and then executes. In dry-run mode the plan is printed first and
// the user must confirm; declining aborts all operations while still saving
// index updates accumulated from the canonical fast path.
func (s *Sanitizer) Run() *SanitizeReport {
	report := s.Plan()
	if len(report.Planned) == 0 {
		UmmLog(INFO, "Sanitizer", "Library is already up-to-date.")
		s.Index.Save()
		return report
	}

	if s.DryRun {
		UmmLog(INFO, "Sanitizer", "DRY RUN MODE: the following changes are planned:")
		for _, op := range report.Planned {
			UmmLog(INFO, "Sanitizer", "  %s: %q -> %q", strings.ToUpper(string(op.Kind)), op.SourceFile, op.DestFile)
		}
		if s.Confirm == nil || !s.Confirm(report.Planned) {
			UmmLog(INFO, "Sanitizer", "Aborted by user.")
			s.Index.Save()
			return report
		}
	}

	s.execute(report)
	s.Index.Save()
	return report
}

// execute applies the planned operations sequentially. Renames are cheap and
// ordering matters for collision avoidance. One bad file never aborts the
// batch.
func (s *Sanitizer) execute(report *SanitizeReport) {
	UmmLog(INFO, "Sanitizer", "Executing %d file operations...", len(report.Planned))
	for _, op := range report.Planned {
		if err := s.apply(op); err != nil {
			UmmLog(ERROR, "Sanitizer", "Failed to apply %s for %q: %v", op.Kind, op.SourceFile, err)
			report.Failed++
			continue
		}
		s.Index.Upsert(op.Movie, op.DestFile)
		UmmLog(INFO, "Sanitizer", "Applied %s: %q -> %q", op.Kind, filepath.Base(op.SourceFile), op.DestFile)
		report.Executed++
	}
}

func (s *Sanitizer) apply(op FileOperation) error {
	switch op.Kind {
	case OpMoveFile:
		if err := os.MkdirAll(op.DestFolder, 0755); err != nil {
			return err
		}
		return moveFile(op.SourceFile, op.DestFile)
	case OpRenameFileInPlace:
		return os.Rename(op.SourceFile, op.DestFile)
	case OpRenameFolder:
		if _, err := os.Stat(op.DestFolder); err == nil {
			UmmLog(WARN, "Sanitizer", "Destination folder %q already exists, skipping rename of %q.", op.DestFolder, op.SourceFolder)
			return os.ErrExist
		}
		if err := os.Rename(op.SourceFolder, op.DestFolder); err != nil {
			return err
		}
		moved := filepath.Join(op.DestFolder, filepath.Base(op.SourceFile))
		if moved != op.DestFile {
			return os.Rename(moved, op.DestFile)
		}
		return nil
	}
	return nil
}

// moveFile renames src to dest, copying across filesystems when rename
// fails with a cross-device link error.
func moveFile(src, dest string) error {
	err := os.Rename(src, dest)
	if err == nil {
		return nil
	}
	linkErr, ok := err.(*os.LinkError)
	if !ok || !strings.Contains(linkErr.Error(), "cross-device link") {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	if err := out.Sync(); err != nil {
		return err
	}
	if rmErr := os.Remove(src); rmErr != nil {
		UmmLog(WARN, "Sanitizer", "Failed to remove source after copy: %v", rmErr)
	}
	return nil
}
