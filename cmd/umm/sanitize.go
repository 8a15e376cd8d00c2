package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mult1v4c/umm/internal"
)

func newSanitizeCommand(ctx *cmdContext) *cobra.Command {
	var (
		dryRun      bool
		yes         bool
		maxDepth    int
		rebuildJunk bool
	)

	cmd := &cobra.Command{
		Use:   "sanitize",
		Short: "Rename and file messy video files into canonical movie folders",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			if maxDepth != 0 {
				cfg.MaxScanDepth = maxDepth
			}
			if _, err := os.Stat(cfg.DownloadFolder); err != nil {
				return fmt.Errorf("library folder %q does not exist", cfg.DownloadFolder)
			}

			learner := &internal.JunkLearner{
				CachePath:   cfg.CachePath(internal.JunkCacheFilename),
				LibraryRoot: cfg.DownloadFolder,
			}
			sanitizer := &internal.Sanitizer{
				Catalog:      internal.NewTMDBClient(cfg.TMDBAPIKey, cfg.PagesPerYear, cfg.TMDBFilters),
				Index:        internal.LoadLibraryIndex(filepath.Join(cfg.DownloadFolder, internal.LibraryIndexFilename)),
				JunkWords:    learner.Learn(rebuildJunk),
				Root:         cfg.DownloadFolder,
				MaxScanDepth: cfg.MaxScanDepth,
				DryRun:       dryRun,
				Confirm:      confirmPlan(yes),
			}

			report := sanitizer.Run()
			internal.UmmLog(internal.INFO, "Sanitize",
				"Done: %d processed, %d applied, %d failed, %d unparseable, %d unmatched, %d skipped (collections).",
				report.Processed, report.Executed, report.Failed,
				len(report.Unparseable), len(report.Unmatched), len(report.CollectionSkipped))
			for _, f := range report.Unparseable {
				internal.UmmLog(internal.WARN, "Sanitize", "Could not parse: %s", f)
			}
			for _, f := range report.Unmatched {
				internal.UmmLog(internal.WARN, "Sanitize", "No catalog match: %s", f)
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d file operations failed", report.Failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the plan and ask before applying")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Apply the plan without asking")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "How many folder levels below the library root to scan")
	cmd.Flags().BoolVar(&rebuildJunk, "rebuild-junk", false, "Rebuild the learned junk word cache")
	return cmd
}

func confirmPlan(yes bool) func([]internal.FileOperation) bool {
	return func(plan []internal.FileOperation) bool {
		if yes {
			return true
		}
		fmt.Printf("Apply %d operations? [y/N]: ", len(plan))
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	}
}
