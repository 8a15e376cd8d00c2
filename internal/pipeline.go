package internal

import (
	"fmt"
	"os"
	"sync"
)

// DownloadResult is the per-movie outcome reported by the pipeline,
// collected in completion order.
type DownloadResult struct {
	Folder     string `json:"folder"`
	Downloaded bool   `json:"downloaded"`
	Reason     string `json:"reason"`
}

// Skip reasons are informational; only the failure reasons mark a movie as
// failed in run records.
const (
	ReasonKnownFailure   = "known failure"
	ReasonTrailerExists  = "trailer exists"
	ReasonDryRun         = "dry-run"
	ReasonNoTrailerKey   = "no trailer key found"
	ReasonDownloadFailed = "download failed"
)

// IsFailure reports whether the result represents a terminal failure rather
// than a download or an informational skip.
func (r DownloadResult) IsFailure() bool {
	return r.Reason == ReasonNoTrailerKey || r.Reason == ReasonDownloadFailed
}

// PipelineOptions carries the per-run knobs of the download pipeline.
type PipelineOptions struct {
	DownloadWorkers  int
	FFmpegWorkers    int
	DryRun           bool
	Force            bool
	SkipPlaceholders bool
	CreateBackdrop   bool
	Overwrite        bool
	Duration         int
	Resolution       string
}

// Pipeline orchestrates trailer downloads and asset generation over two
// independently sized worker pools so a slow encode never blocks the next
// download.
type Pipeline struct {
	Catalog        *TMDBClient
	Downloader     *Downloader
	Assets         *AssetGenerator
	Failures       *KnownFailures
	Budget         *FailureBudget
	DownloadFolder string
	Options        PipelineOptions

	// Progress, when set, is invoked after each download task completes.
	Progress func(done, total int, result DownloadResult)

	statsMu      sync.Mutex
	placeholders int
	backdrops    int
}

// Stats returns the number of placeholder and backdrop assets created so
// far.
func (p *Pipeline) Stats() (placeholders, backdrops int) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	return p.placeholders, p.backdrops
}

// FilterExistingMovies drops movies whose trailer file is already present,
// unless the run is forced.
func (p *Pipeline) FilterExistingMovies(movies []MovieRecord) []MovieRecord {
	if p.Options.Force {
		UmmLog(INFO, "Pipeline", "Found %d movies. Force is enabled, processing all.", len(movies))
		return movies
	}
	remaining := Filter(movies, func(m MovieRecord) bool {
		folderName := PrepareMovieFolderName(m.Title, m.ReleaseDate)
		return GetMoviePaths(p.DownloadFolder, folderName).TrailerPath() == ""
	})
	if skipped := len(movies) - len(remaining); skipped > 0 {
		UmmLog(INFO, "Pipeline", "Found %d movies. Skipping %d existing trailers.", len(movies), skipped)
	} else {
		UmmLog(INFO, "Pipeline", "Found %d movies.", len(movies))
	}
	return remaining
}

// Run processes the movies through the download pool, queueing asset jobs on
// the post-process pool after each successful download. Returns the results
// collected in completion order and ErrTooManyFailures when the failure
// budget tripped; in that case not-yet-started downloads were cancelled but
// the post-process pool was still drained.
func (p *Pipeline) Run(movies []MovieRecord) ([]DownloadResult, error) {
	if len(movies) == 0 {
		UmmLog(INFO, "Pipeline", "No new movies to process.")
		return nil, nil
	}
	// Both channels are unbuffered, so a pool needs at least one
	// consumer or the run stalls on the first send.
	dlWorkers := p.Options.DownloadWorkers
	if dlWorkers < 1 {
		dlWorkers = 1
	}
	ffWorkers := p.Options.FFmpegWorkers
	if ffWorkers < 1 {
		ffWorkers = 1
	}
	if !p.Options.DryRun {
		UmmLog(INFO, "Pipeline", "Processing movies in parallel (downloads: %d, video tasks: %d)",
			dlWorkers, ffWorkers)
	}

	ffJobs := make(chan func())
	var ffWg sync.WaitGroup
	for i := 0; i < ffWorkers; i++ {
		ffWg.Add(1)
		go func() {
			defer ffWg.Done()
			for job := range ffJobs {
				job()
			}
		}()
	}

	jobs := make(chan MovieRecord)
	results := make(chan DownloadResult)
	cancel := make(chan struct{})
	var cancelOnce sync.Once
	tripBreaker := func() { cancelOnce.Do(func() { close(cancel) }) }

	// The feeder stops handing out work the moment the breaker trips;
	// workers already running finish their current movie.
	go func() {
		defer close(jobs)
		for _, movie := range movies {
			select {
			case <-cancel:
				return
			case jobs <- movie:
			}
		}
	}()

	var dlWg sync.WaitGroup
	for i := 0; i < dlWorkers; i++ {
		dlWg.Add(1)
		go func() {
			defer dlWg.Done()
			for movie := range jobs {
				result, fatal := p.downloadTask(movie, ffJobs)
				if fatal {
					tripBreaker()
				}
				results <- result
			}
		}()
	}
	go func() {
		dlWg.Wait()
		close(results)
	}()

	var collected []DownloadResult
	for result := range results {
		collected = append(collected, result)
		if p.Progress != nil {
			p.Progress(len(collected), len(movies), result)
		}
	}

	// Drain the encoder pool before returning so no ffmpeg process is left
	// orphaned, even on a tripped breaker.
	close(ffJobs)
	ffWg.Wait()

	select {
	case <-cancel:
		UmmLog(ERROR, "Pipeline", "Aborted: %v", ErrTooManyFailures)
		return collected, ErrTooManyFailures
	default:
	}
	return collected, nil
}

// downloadTask handles one movie end to end. The second return value is true
// when this failure exhausted the shared failure budget.
func (p *Pipeline) downloadTask(movie MovieRecord, ffJobs chan<- func()) (DownloadResult, bool) {
	result := DownloadResult{Folder: movie.Title}

	if p.Failures.Contains(movie.ID) && !p.Options.Force {
		result.Reason = ReasonKnownFailure
		return result, false
	}

	folderName := PrepareMovieFolderName(movie.Title, movie.ReleaseDate)
	paths := GetMoviePaths(p.DownloadFolder, folderName)
	result.Folder = folderName

	if !p.Options.Force && paths.TrailerPath() != "" {
		result.Reason = ReasonTrailerExists
		return result, false
	}

	if p.Options.DryRun {
		UmmLog(INFO, "Pipeline", "- %s", movie.Title)
		result.Reason = ReasonDryRun
		return result, false
	}

	trailerKey, err := p.Catalog.TrailerKey(movie.ID)
	if err != nil {
		UmmLog(WARN, "Pipeline", "Failed to fetch trailer key for movie %d: %v", movie.ID, err)
	}
	if trailerKey == "" {
		p.Failures.Add(movie.ID)
		result.Reason = ReasonNoTrailerKey
		return result, false
	}

	if err := os.MkdirAll(paths.Root, 0755); err != nil {
		result.Reason = fmt.Sprintf("failed to create folder: %v", err)
		return result, false
	}
	outTemplate := fmt.Sprintf("%s/%s%s.%%(ext)s", paths.Root, folderName, TrailerSuffix)

	if err := p.Downloader.DownloadTrailer(trailerKey, outTemplate, movie.Title); err != nil {
		p.Failures.Add(movie.ID)
		result.Reason = ReasonDownloadFailed
		return result, p.Budget.Add() != nil
	}
	result.Downloaded = true

	if !p.Options.SkipPlaceholders {
		ffJobs <- func() { p.assetTask("placeholder", paths, movie.Title) }
	}
	if p.Options.CreateBackdrop {
		ffJobs <- func() { p.assetTask("backdrop", paths, movie.Title) }
	}
	return result, false
}

func (p *Pipeline) assetTask(taskType string, paths MoviePaths, title string) {
	if p.Options.DryRun {
		UmmLog(INFO, "Pipeline", "Dry run: would create %s for %s", taskType, title)
		return
	}
	switch taskType {
	case "placeholder":
		err := p.Assets.CreateBlackVideo(paths.Placeholder, p.Options.Duration, p.Options.Resolution, p.Options.Overwrite)
		if CheckErrLog(WARN, "Pipeline", "Placeholder creation failed for "+title, err) == nil {
			UmmLog(INFO, "Pipeline", "Created placeholder for %s", title)
			p.statsMu.Lock()
			p.placeholders++
			p.statsMu.Unlock()
		}
	case "backdrop":
		err := p.Assets.CreateBackdropImage(paths.Backdrop, p.Options.Resolution, p.Options.Overwrite)
		if CheckErrLog(WARN, "Pipeline", "Backdrop creation failed for "+title, err) == nil {
			UmmLog(INFO, "Pipeline", "Created backdrop for %s", title)
			p.statsMu.Lock()
			p.backdrops++
			p.statsMu.Unlock()
		}
	}
}

// GenerateStandaloneAssets walks the existing movie folders and creates the
// requested placeholder/backdrop assets without downloading anything.
func (p *Pipeline) GenerateStandaloneAssets(placeholders, backdrops bool) {
	UmmLog(INFO, "Pipeline", "Scanning for folders to generate assets in %s", p.DownloadFolder)
	entries, err := os.ReadDir(p.DownloadFolder)
	if err != nil {
		UmmLog(WARN, "Pipeline", "Could not read download folder: %v", err)
		return
	}
	folders := Filter(entries, func(e os.DirEntry) bool { return e.IsDir() })
	if len(folders) == 0 {
		UmmLog(INFO, "Pipeline", "No existing movie folders found to generate assets for.")
		return
	}
	for _, folder := range folders {
		paths := GetMoviePaths(p.DownloadFolder, folder.Name())
		if placeholders && (p.Options.Overwrite || !fileExists(paths.Placeholder)) {
			p.assetTask("placeholder", paths, folder.Name())
		}
		if backdrops && (p.Options.Overwrite || !fileExists(paths.Backdrop)) {
			p.assetTask("backdrop", paths, folder.Name())
		}
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
