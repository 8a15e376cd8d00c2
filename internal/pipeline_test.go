package internal

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// trailerCatalog serves a videos endpoint where every movie has one official
// trailer, except the ids listed in missing.
func trailerCatalog(t *testing.T, missing map[int]bool) *TMDBClient {
	t.Helper()
	return withTMDBServer(t, func(w http.ResponseWriter, r *http.Request) {
		var id int
		fmt.Sscanf(r.URL.Path, "/movie/%d/videos", &id)
		if missing[id] {
			writeResults(w, []tmdbVideo{})
			return
		}
		writeResults(w, []tmdbVideo{
			{Site: "YouTube", Type: "Trailer", Official: true, Key: fmt.Sprintf("key-%d", id)},
		})
	})
}

func newTestPipeline(t *testing.T, client *TMDBClient, limit int) *Pipeline {
	t.Helper()
	return &Pipeline{
		Catalog:        client,
		Downloader:     &Downloader{YtDlpPath: "yt-dlp"},
		Assets:         &AssetGenerator{FFmpegPath: "ffmpeg"},
		Failures:       LoadKnownFailures(filepath.Join(t.TempDir(), KnownFailuresFilename)),
		Budget:         NewFailureBudget(limit, false),
		DownloadFolder: t.TempDir(),
		Options: PipelineOptions{
			DownloadWorkers: 1,
			FFmpegWorkers:   1,
			CreateBackdrop:  true,
			Duration:        1,
			Resolution:      "1920x1080",
		},
	}
}

func testMovies(n int) []MovieRecord {
	movies := make([]MovieRecord, n)
	for i := range movies {
		movies[i] = MovieRecord{ID: i + 1, Title: fmt.Sprintf("Movie %d", i+1), ReleaseDate: "2024-01-01"}
	}
	return movies
}

func TestPipelineDownloadsAndGeneratesAssets(t *testing.T) {
	withZeroBackoff(t)
	runner := &fakeRunner{}
	withFakeRunner(t, runner)

	p := newTestPipeline(t, trailerCatalog(t, nil), DefaultFailureLimit)
	results, err := p.Run(testMovies(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}
	for _, r := range results {
		if !r.Downloaded {
			t.Fatalf("movie not downloaded: %+v", r)
		}
	}
	placeholders, backdrops := p.Stats()
	if placeholders != 3 || backdrops != 3 {
		t.Fatalf("stats: %d placeholders, %d backdrops", placeholders, backdrops)
	}
	// 3 downloads + 3 placeholders + 3 backdrops
	if runner.callCount() != 9 {
		t.Fatalf("expected 9 commands, got %d", runner.callCount())
	}
}

func TestPipelineFailureBudgetCancelsRemainingWork(t *testing.T) {
	withZeroBackoff(t)
	runner := &fakeRunner{run: func(name string, args []string) (string, string, error) {
		return "", "unavailable", errors.New("exit status 1")
	}}
	withFakeRunner(t, runner)

	movies := testMovies(30)
	p := newTestPipeline(t, trailerCatalog(t, nil), DefaultFailureLimit)
	results, err := p.Run(movies)
	if !errors.Is(err, ErrTooManyFailures) {
		t.Fatalf("expected ErrTooManyFailures, got %v", err)
	}

	failed := 0
	for _, r := range results {
		if r.Reason == "download failed" {
			failed++
		}
	}
	if failed < DefaultFailureLimit {
		t.Fatalf("expected at least %d terminal failures, got %d", DefaultFailureLimit, failed)
	}
	if len(results) >= len(movies) {
		t.Fatal("expected not-yet-started downloads to be cancelled")
	}
	if p.Failures.Len() != failed {
		t.Fatalf("known failures %d, terminal failures %d", p.Failures.Len(), failed)
	}
}

func TestPipelineNoTrailerKeyDoesNotConsumeBudget(t *testing.T) {
	withZeroBackoff(t)
	runner := &fakeRunner{}
	withFakeRunner(t, runner)

	missing := map[int]bool{1: true, 2: true, 3: true}
	p := newTestPipeline(t, trailerCatalog(t, missing), 2)
	results, err := p.Run(testMovies(3))
	if err != nil {
		t.Fatalf("missing trailers must not trip the breaker: %v", err)
	}
	for _, r := range results {
		if r.Reason != "no trailer key found" {
			t.Fatalf("unexpected result: %+v", r)
		}
	}
	if p.Failures.Len() != 3 {
		t.Fatalf("expected 3 known failures, got %d", p.Failures.Len())
	}
	if p.Budget.Count() != 0 {
		t.Fatalf("budget consumed: %d", p.Budget.Count())
	}
}

func TestPipelineSkipsKnownFailures(t *testing.T) {
	runner := &fakeRunner{}
	withFakeRunner(t, runner)

	p := newTestPipeline(t, trailerCatalog(t, nil), DefaultFailureLimit)
	p.Failures.Add(1)
	results, err := p.Run(testMovies(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Reason != "known failure" {
		t.Fatalf("results: %+v", results)
	}
	if runner.callCount() != 0 {
		t.Fatal("known failure must not be attempted")
	}
}

func TestPipelineDryRun(t *testing.T) {
	runner := &fakeRunner{}
	withFakeRunner(t, runner)

	p := newTestPipeline(t, trailerCatalog(t, nil), DefaultFailureLimit)
	p.Options.DryRun = true
	results, err := p.Run(testMovies(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results: %+v", results)
	}
	if runner.callCount() != 0 {
		t.Fatal("dry run must not execute commands")
	}
}

func TestFilterExistingMovies(t *testing.T) {
	p := newTestPipeline(t, nil, DefaultFailureLimit)
	movies := testMovies(2)

	// Give the first movie an existing trailer file.
	folder := PrepareMovieFolderName(movies[0].Title, movies[0].ReleaseDate)
	trailer := filepath.Join(p.DownloadFolder, folder, folder+TrailerSuffix+".mp4")
	touchFile(t, trailer)

	remaining := p.FilterExistingMovies(movies)
	if len(remaining) != 1 || remaining[0].ID != movies[1].ID {
		t.Fatalf("remaining: %+v", remaining)
	}

	p.Options.Force = true
	if got := p.FilterExistingMovies(movies); len(got) != 2 {
		t.Fatalf("force should keep all movies, got %+v", got)
	}
}

func TestPipelineProgressCallback(t *testing.T) {
	runner := &fakeRunner{}
	withFakeRunner(t, runner)

	p := newTestPipeline(t, trailerCatalog(t, nil), DefaultFailureLimit)
	p.Options.SkipPlaceholders = true
	p.Options.CreateBackdrop = false

	var seen []int
	p.Progress = func(done, total int, result DownloadResult) {
		if total != 2 {
			t.Errorf("total = %d", total)
		}
		seen = append(seen, done)
	}
	if _, err := p.Run(testMovies(2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 2 || seen[len(seen)-1] != 2 {
		t.Fatalf("progress calls: %v", seen)
	}
}

func TestGenerateStandaloneAssets(t *testing.T) {
	runner := &fakeRunner{}
	withFakeRunner(t, runner)

	p := newTestPipeline(t, nil, DefaultFailureLimit)
	for _, name := range []string{"Movie A (2020)", "Movie B (2021)"} {
		if err := os.MkdirAll(filepath.Join(p.DownloadFolder, name), 0755); err != nil {
			t.Fatal(err)
		}
	}
	// Pre-existing backdrop is left alone without overwrite.
	touchFile(t, filepath.Join(p.DownloadFolder, "Movie A (2020)", BackdropFilename))

	p.GenerateStandaloneAssets(true, true)
	placeholders, backdrops := p.Stats()
	if placeholders != 2 || backdrops != 1 {
		t.Fatalf("stats: %d placeholders, %d backdrops", placeholders, backdrops)
	}
	for _, call := range runner.calls {
		if strings.Contains(strings.Join(call, " "), "Movie A (2020)/"+BackdropFilename) {
			t.Fatal("existing backdrop was regenerated")
		}
	}
}

func TestPipelineZeroWorkersStillProcesses(t *testing.T) {
	withZeroBackoff(t)
	runner := &fakeRunner{}
	withFakeRunner(t, runner)

	p := newTestPipeline(t, trailerCatalog(t, nil), DefaultFailureLimit)
	p.Options.DownloadWorkers = 0
	p.Options.FFmpegWorkers = 0
	results, err := p.Run(testMovies(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	placeholders, backdrops := p.Stats()
	if placeholders != 2 || backdrops != 2 {
		t.Fatalf("stats: %d placeholders, %d backdrops", placeholders, backdrops)
	}
}
