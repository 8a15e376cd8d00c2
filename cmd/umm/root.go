package main

import (
	"github.com/spf13/cobra"

	"github.com/mult1v4c/umm/internal"
)

type cmdContext struct {
	configPath string
	verbose    bool
	quiet      bool

	// flag overrides applied on top of the config file
	tmdbAPIKey     string
	downloadFolder string
	cacheFolder    string
	ytDlpPath      string
	ffmpegPath     string
}

// loadConfig reads the config file and applies command-line overrides.
func (ctx *cmdContext) loadConfig() (internal.Config, error) {
	cfg, err := internal.LoadConfig(ctx.configPath)
	if err != nil {
		return cfg, err
	}
	if ctx.tmdbAPIKey != "" {
		cfg.TMDBAPIKey = ctx.tmdbAPIKey
	}
	if ctx.downloadFolder != "" {
		cfg.DownloadFolder = ctx.downloadFolder
	}
	if ctx.cacheFolder != "" {
		cfg.CacheFolder = ctx.cacheFolder
	}
	if ctx.ytDlpPath != "" {
		cfg.YtDlpPath = ctx.ytDlpPath
	}
	if ctx.ffmpegPath != "" {
		cfg.FFmpegPath = ctx.ffmpegPath
	}
	if ctx.verbose {
		cfg.LogLevel = internal.DEBUG
	}
	if ctx.quiet {
		cfg.LogLevel = internal.ERROR
	}
	internal.SetLogLevel(cfg.LogLevel)
	internal.InitUmmLogWriter(cfg.CachePath("umm.log"))
	return cfg, nil
}

func newRootCommand() *cobra.Command {
	ctx := &cmdContext{}

	rootCmd := &cobra.Command{
		Use:           "umm",
		Short:         "Movie trailer downloader and library organizer",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configPath, "config", "c", "config.yml", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&ctx.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&ctx.quiet, "quiet", "q", false, "Only log errors")
	rootCmd.PersistentFlags().StringVar(&ctx.tmdbAPIKey, "tmdb-api-key", "", "TMDB API key (overrides config)")
	rootCmd.PersistentFlags().StringVar(&ctx.downloadFolder, "download-folder", "", "Trailer library folder (overrides config)")
	rootCmd.PersistentFlags().StringVar(&ctx.cacheFolder, "cache-folder", "", "Cache folder (overrides config)")
	rootCmd.PersistentFlags().StringVar(&ctx.ytDlpPath, "yt-dlp", "", "Path to the yt-dlp binary (overrides config)")
	rootCmd.PersistentFlags().StringVar(&ctx.ffmpegPath, "ffmpeg", "", "Path to the ffmpeg binary (overrides config)")

	rootCmd.AddCommand(newDownloadCommand(ctx))
	rootCmd.AddCommand(newSanitizeCommand(ctx))
	rootCmd.AddCommand(newAssetsCommand(ctx))
	rootCmd.AddCommand(newCleanCommand(ctx))
	rootCmd.AddCommand(newFailuresCommand(ctx))

	return rootCmd
}
