package main

import (
	"github.com/spf13/cobra"

	"github.com/mult1v4c/umm/internal"
)

func newAssetsCommand(ctx *cmdContext) *cobra.Command {
	var (
		placeholders bool
		backdrops    bool
		overwrite    bool
		dryRun       bool
	)

	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Generate missing placeholder videos and backdrop images",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			if !placeholders && !backdrops {
				placeholders, backdrops = true, true
			}
			pipeline := &internal.Pipeline{
				Assets:         &internal.AssetGenerator{FFmpegPath: cfg.FFmpegPath},
				DownloadFolder: cfg.DownloadFolder,
				Options: internal.PipelineOptions{
					FFmpegWorkers: cfg.MaxFFmpegWorkers,
					DryRun:        dryRun,
					Overwrite:     overwrite,
					Duration:      cfg.PlaceholderDuration,
					Resolution:    cfg.PlaceholderResolution,
				},
			}
			pipeline.GenerateStandaloneAssets(placeholders, backdrops)
			created, images := pipeline.Stats()
			internal.UmmLog(internal.INFO, "Assets", "Created %d placeholders and %d backdrops.", created, images)
			return nil
		},
	}

	cmd.Flags().BoolVar(&placeholders, "placeholders", false, "Only generate placeholder videos")
	cmd.Flags().BoolVar(&backdrops, "backdrops", false, "Only generate backdrop images")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Regenerate assets that already exist")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be generated without doing it")
	return cmd
}

func newCleanCommand(ctx *cmdContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove empty folders from the trailer library",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			removed := internal.CleanEmptyFolders(cfg.DownloadFolder, dryRun)
			internal.UmmLog(internal.INFO, "Clean", "Removed %d empty folders.", removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List empty folders without removing them")
	return cmd
}

func newFailuresCommand(ctx *cmdContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "failures",
		Short: "Inspect or reset the known failures cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print the movie IDs with permanently failed trailers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			failures := internal.LoadKnownFailures(cfg.CachePath(internal.KnownFailuresFilename))
			for _, id := range failures.IDs() {
				cmd.Println(id)
			}
			internal.UmmLog(internal.INFO, "Failures", "%d known failures.", failures.Len())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget all known failures so they are retried next run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			failures := internal.LoadKnownFailures(cfg.CachePath(internal.KnownFailuresFilename))
			n := failures.Len()
			failures.Clear()
			internal.UmmLog(internal.INFO, "Failures", "Cleared %d known failures.", n)
			return nil
		},
	})

	return cmd
}
