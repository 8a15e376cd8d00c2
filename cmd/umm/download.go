package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mult1v4c/umm/internal"
)

func newDownloadCommand(ctx *cmdContext) *cobra.Command {
	var (
		year            int
		yearStart       int
		yearEnd         int
		count           int
		dryRun          bool
		force           bool
		overwrite       bool
		skipPlaceholder bool
		noBackdrop      bool
		dlWorkers       int
		ffWorkers       int
		clearCache      bool
		noCache         bool
		ignoreFailures  bool
		exportList      string
		reportPath      string
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Fetch the movie catalog and download missing trailers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			if year != 0 {
				yearStart, yearEnd = year, year
			}
			if yearStart == 0 {
				yearStart = cfg.StartYear
			}
			if yearEnd == 0 {
				yearEnd = cfg.EndYear
			}
			if dlWorkers != 0 {
				cfg.MaxDownloadWorkers = dlWorkers
			}
			if ffWorkers != 0 {
				cfg.MaxFFmpegWorkers = ffWorkers
			}

			client := internal.NewTMDBClient(cfg.TMDBAPIKey, cfg.PagesPerYear, cfg.TMDBFilters)
			movies := internal.FetchMovies(client, cfg.CachePath(internal.MoviesCacheFilename), yearStart, yearEnd, noCache, clearCache)
			if len(movies) == 0 {
				return fmt.Errorf("no movies found for years %d-%d", yearStart, yearEnd)
			}
			if exportList != "" {
				if err := internal.ExportMovieList(exportList, movies); err != nil {
					return err
				}
			}

			failures := internal.LoadKnownFailures(cfg.CachePath(internal.KnownFailuresFilename))
			pipeline := &internal.Pipeline{
				Catalog:        client,
				Downloader:     &internal.Downloader{YtDlpPath: cfg.YtDlpPath},
				Assets:         &internal.AssetGenerator{FFmpegPath: cfg.FFmpegPath},
				Failures:       failures,
				Budget:         internal.NewFailureBudget(internal.DefaultFailureLimit, ignoreFailures),
				DownloadFolder: cfg.DownloadFolder,
				Options: internal.PipelineOptions{
					DownloadWorkers:  cfg.MaxDownloadWorkers,
					FFmpegWorkers:    cfg.MaxFFmpegWorkers,
					DryRun:           dryRun,
					Force:            force,
					Overwrite:        overwrite,
					SkipPlaceholders: skipPlaceholder,
					CreateBackdrop:   cfg.CreateBackdrop && !noBackdrop,
					Duration:         cfg.PlaceholderDuration,
					Resolution:       cfg.PlaceholderResolution,
				},
			}

			candidates := pipeline.FilterExistingMovies(movies)
			if count > 0 && count < len(candidates) {
				candidates = candidates[:count]
			}
			if len(candidates) == 0 {
				internal.UmmLog(internal.INFO, "Download", "All trailers are already present. Nothing to do.")
				return nil
			}

			results, runErr := pipeline.Run(candidates)
			failures.Save()

			placeholders, backdrops := pipeline.Stats()
			internal.PrintRunSummary(results, placeholders, backdrops)
			if reportPath != "" {
				if err := internal.WriteRunReport(reportPath, results); err != nil {
					return err
				}
			}
			return runErr
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Fetch a single release year")
	cmd.Flags().IntVar(&yearStart, "year-start", 0, "First release year to fetch")
	cmd.Flags().IntVar(&yearEnd, "year-end", 0, "Last release year to fetch")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Limit the number of trailers to download")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be downloaded without doing it")
	cmd.Flags().BoolVar(&force, "force", false, "Re-attempt movies with existing trailers or known failures")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing placeholder and backdrop files")
	cmd.Flags().BoolVar(&skipPlaceholder, "skip-placeholders", false, "Do not generate placeholder videos")
	cmd.Flags().BoolVar(&noBackdrop, "no-backdrop", false, "Do not generate backdrop images")
	cmd.Flags().IntVar(&dlWorkers, "max-download-workers", 0, "Concurrent yt-dlp workers")
	cmd.Flags().IntVar(&ffWorkers, "max-ffmpeg-workers", 0, "Concurrent ffmpeg workers")
	cmd.Flags().BoolVar(&clearCache, "clear-cache", false, "Delete the movie cache before fetching")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the movie cache entirely")
	cmd.Flags().BoolVar(&ignoreFailures, "ignore-failures", false, "Keep going past the failure limit")
	cmd.Flags().StringVar(&exportList, "export-list", "", "Write the fetched movie list to a JSON file")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write a CSV report of the run")
	return cmd
}
