package internal

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

// catalogStub serves search results for a fixed set of titles.
func catalogStub(t *testing.T, movies map[string]MovieRecord) *TMDBClient {
	t.Helper()
	return withTMDBServer(t, func(w http.ResponseWriter, r *http.Request) {
		if movie, ok := movies[r.URL.Query().Get("query")]; ok {
			writeResults(w, []MovieRecord{movie})
			return
		}
		writeResults(w, []MovieRecord{})
	})
}

func newTestSanitizer(t *testing.T, root string, client *TMDBClient) *Sanitizer {
	t.Helper()
	return &Sanitizer{
		Catalog:      client,
		Index:        LoadLibraryIndex(filepath.Join(root, LibraryIndexFilename)),
		Root:         root,
		MaxScanDepth: 1,
	}
}

func TestClassifyOperation(t *testing.T) {
	root := "/lib"
	cases := []struct {
		sourceFolder string
		destFolder   string
		want         OperationKind
	}{
		{"/lib", "/lib/Movie (2020)", OpMoveFile},
		{"/lib/Movie (2020)", "/lib/Movie (2020)", OpRenameFileInPlace},
		{"/lib/Messy Folder", "/lib/Movie (2020)", OpRenameFolder},
	}
	for _, tc := range cases {
		if got := classifyOperation(root, tc.sourceFolder, tc.destFolder); got != tc.want {
			t.Errorf("classifyOperation(%q, %q) = %s, want %s", tc.sourceFolder, tc.destFolder, got, tc.want)
		}
	}
}

func TestSanitizerMovesLooseFile(t *testing.T) {
	root := t.TempDir()
	touchFile(t, filepath.Join(root, "Movie.2020.1080p.mkv"))
	client := catalogStub(t, map[string]MovieRecord{
		"Movie": {ID: 5, Title: "Movie", ReleaseDate: "2020-05-01"},
	})

	s := newTestSanitizer(t, root, client)
	report := s.Run()

	if report.Executed != 1 || report.Failed != 0 {
		t.Fatalf("report: %+v", report)
	}
	want := filepath.Join(root, "Movie (2020)", "Movie (2020).mkv")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected file at %s: %v", want, err)
	}
	if _, err := os.Stat(filepath.Join(root, "Movie.2020.1080p.mkv")); !os.IsNotExist(err) {
		t.Fatal("source file still present")
	}
	if !s.Index.HasPath(want) {
		t.Fatal("index was not updated")
	}
}

func TestSanitizerRenamesFileInPlace(t *testing.T) {
	root := t.TempDir()
	touchFile(t, filepath.Join(root, "Movie (2020)", "Movie.2020.REPACK.mkv"))
	client := catalogStub(t, map[string]MovieRecord{
		"Movie": {ID: 5, Title: "Movie", ReleaseDate: "2020-05-01"},
	})

	report := newTestSanitizer(t, root, client).Run()
	if len(report.Planned) != 1 || report.Planned[0].Kind != OpRenameFileInPlace {
		t.Fatalf("plan: %+v", report.Planned)
	}
	if _, err := os.Stat(filepath.Join(root, "Movie (2020)", "Movie (2020).mkv")); err != nil {
		t.Fatalf("renamed file missing: %v", err)
	}
}

func TestSanitizerRenamesFolder(t *testing.T) {
	root := t.TempDir()
	touchFile(t, filepath.Join(root, "Messy.Movie.Folder", "Movie.2020.mkv"))
	client := catalogStub(t, map[string]MovieRecord{
		"Movie": {ID: 5, Title: "Movie", ReleaseDate: "2020-05-01"},
	})

	report := newTestSanitizer(t, root, client).Run()
	if len(report.Planned) != 1 || report.Planned[0].Kind != OpRenameFolder {
		t.Fatalf("plan: %+v", report.Planned)
	}
	if _, err := os.Stat(filepath.Join(root, "Movie (2020)", "Movie (2020).mkv")); err != nil {
		t.Fatalf("moved file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "Messy.Movie.Folder")); !os.IsNotExist(err) {
		t.Fatal("old folder still present")
	}
}

func TestSanitizerIdempotent(t *testing.T) {
	root := t.TempDir()
	touchFile(t, filepath.Join(root, "Movie.2020.mkv"))
	client := catalogStub(t, map[string]MovieRecord{
		"Movie": {ID: 5, Title: "Movie", ReleaseDate: "2020-05-01"},
	})

	first := newTestSanitizer(t, root, client).Run()
	if first.Executed != 1 {
		t.Fatalf("first run: %+v", first)
	}

	second := newTestSanitizer(t, root, client).Run()
	if len(second.Planned) != 0 || second.Executed != 0 {
		t.Fatalf("second run should be a no-op: %+v", second)
	}
	if second.AlreadyCataloged != 1 {
		t.Fatalf("expected the file to be recognized from the index: %+v", second)
	}
}

func TestSanitizerCanonicalFileOutsideIndex(t *testing.T) {
	root := t.TempDir()
	touchFile(t, filepath.Join(root, "Movie (2020)", "Movie (2020).mkv"))
	client := catalogStub(t, map[string]MovieRecord{
		"Movie": {ID: 5, Title: "Movie", ReleaseDate: "2020-05-01"},
	})

	s := newTestSanitizer(t, root, client)
	report := s.Run()
	if len(report.Planned) != 0 || report.AlreadyCanonical != 1 {
		t.Fatalf("report: %+v", report)
	}
	if !s.Index.HasPath(filepath.Join(root, "Movie (2020)", "Movie (2020).mkv")) {
		t.Fatal("canonical file was not indexed")
	}
}

func TestSanitizerUnmatchedAndUnparseable(t *testing.T) {
	root := t.TempDir()
	touchFile(t, filepath.Join(root, "Totally.Unknown.2020.mkv"))
	touchFile(t, filepath.Join(root, "sample.mkv"))
	client := catalogStub(t, map[string]MovieRecord{})

	report := newTestSanitizer(t, root, client).Run()
	if len(report.Unmatched) != 1 || len(report.Unparseable) != 1 {
		t.Fatalf("report: %+v", report)
	}
	if _, err := os.Stat(filepath.Join(root, "Totally.Unknown.2020.mkv")); err != nil {
		t.Fatal("unmatched file must be left in place")
	}
}

func TestSanitizerSkipsDeepCollections(t *testing.T) {
	root := t.TempDir()
	touchFile(t, filepath.Join(root, "Box Set", "Disc 1", "Movie.2020.mkv"))
	client := catalogStub(t, map[string]MovieRecord{
		"Movie": {ID: 5, Title: "Movie", ReleaseDate: "2020-05-01"},
	})

	report := newTestSanitizer(t, root, client).Run()
	if len(report.Planned) != 0 || len(report.CollectionSkipped) != 1 {
		t.Fatalf("report: %+v", report)
	}
	if _, err := os.Stat(filepath.Join(root, "Box Set", "Disc 1", "Movie.2020.mkv")); err != nil {
		t.Fatal("deep file must not be touched")
	}
}

func TestSanitizerIgnoresTrailers(t *testing.T) {
	root := t.TempDir()
	touchFile(t, filepath.Join(root, "Movie (2020)", "Movie (2020)-trailer.mp4"))
	client := catalogStub(t, map[string]MovieRecord{})

	report := newTestSanitizer(t, root, client).Run()
	if report.Processed != 0 {
		t.Fatalf("trailer file was processed: %+v", report)
	}
}

func TestSanitizerDryRunDeclined(t *testing.T) {
	root := t.TempDir()
	touchFile(t, filepath.Join(root, "Movie.2020.mkv"))
	client := catalogStub(t, map[string]MovieRecord{
		"Movie": {ID: 5, Title: "Movie", ReleaseDate: "2020-05-01"},
	})

	s := newTestSanitizer(t, root, client)
	s.DryRun = true
	s.Confirm = func(plan []FileOperation) bool { return false }
	report := s.Run()

	if report.Executed != 0 {
		t.Fatalf("declined plan was executed: %+v", report)
	}
	if _, err := os.Stat(filepath.Join(root, "Movie.2020.mkv")); err != nil {
		t.Fatal("file moved despite declined plan")
	}
}

func TestSanitizerRemovesStaleIndexEntries(t *testing.T) {
	root := t.TempDir()
	index := LoadLibraryIndex(filepath.Join(root, LibraryIndexFilename))
	index.Upsert(MovieRecord{ID: 9, Title: "Gone", ReleaseDate: "2019-01-01"}, filepath.Join(root, "Gone (2019)", "Gone (2019).mkv"))
	if err := index.Save(); err != nil {
		t.Fatal(err)
	}

	client := catalogStub(t, map[string]MovieRecord{})
	report := newTestSanitizer(t, root, client).Run()
	if report.StaleRemoved != 1 {
		t.Fatalf("expected one stale entry removed: %+v", report)
	}
}
