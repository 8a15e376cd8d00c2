package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/mult1v4c/umm/internal"
)

func main() {
	configPath := flag.String("config", "config.yml", "configuration file path")
	listenAddr := flag.String("listen", "", "listen address (overrides config)")
	flag.Parse()

	cfg, err := internal.LoadConfig(*configPath)
	if err != nil {
		internal.UmmLog(internal.ERROR, "Startup", "Could not load config: %v", err)
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	internal.SetLogLevel(cfg.LogLevel)
	internal.InitUmmLogWriter(cfg.CachePath("ummd.log"))
	gin.DefaultWriter = os.Stdout
	gin.DefaultErrorWriter = os.Stderr

	store := internal.OpenStore(cfg.CachePath("history.db"))
	defer store.Close()

	server := &internal.Server{
		Config:   cfg,
		Index:    internal.LoadLibraryIndex(filepath.Join(cfg.DownloadFolder, internal.LibraryIndexFilename)),
		Failures: internal.LoadKnownFailures(cfg.CachePath(internal.KnownFailuresFilename)),
		History:  &internal.History{Store: store},
		Hub:      internal.NewProgressHub(),
	}

	r := gin.Default()
	server.RegisterRoutes(r)
	internal.UmmLog(internal.INFO, "Startup", "Listening on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		internal.UmmLog(internal.ERROR, "Startup", "Server stopped: %v", err)
		os.Exit(1)
	}
}
