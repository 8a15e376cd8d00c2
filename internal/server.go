package internal

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Server exposes the daemon API: library and history queries plus a
// trigger to start a download run with live websocket progress.
type Server struct {
	Config   Config
	Index    *LibraryIndex
	Failures *KnownFailures
	History  *History
	Hub      *ProgressHub

	runMu      sync.Mutex
	runActive  bool
	lastRun    RunRecord
	hasLastRun bool
}

// respondJSON is a helper for Gin JSON responses
func respondJSON(c *gin.Context, code int, obj interface{}) {
	c.JSON(code, obj)
}

func respondError(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"error": msg})
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		UmmLog(INFO, "API", "%s %s", c.Request.Method, c.Request.URL.Path)
		c.Next()
	})

	r.GET("/api/health", func(c *gin.Context) {
		respondJSON(c, http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/api/library", s.libraryHandler)
	r.GET("/api/history", s.historyHandler)
	r.GET("/api/failures", s.failuresHandler)
	r.GET("/api/status", s.statusHandler)
	r.POST("/api/run", s.runHandler)
	r.GET("/ws/progress", s.progressHandler)
}

func (s *Server) libraryHandler(c *gin.Context) {
	respondJSON(c, http.StatusOK, gin.H{"library": s.Index.Entries})
}

func (s *Server) historyHandler(c *gin.Context) {
	respondJSON(c, http.StatusOK, gin.H{
		"runs":   s.History.ListRuns(),
		"events": s.History.ListEvents(),
	})
}

func (s *Server) failuresHandler(c *gin.Context) {
	respondJSON(c, http.StatusOK, gin.H{"failures": s.Failures.IDs()})
}

func (s *Server) statusHandler(c *gin.Context) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	status := "idle"
	if s.runActive {
		status = "running"
	}
	resp := gin.H{"status": status}
	if s.hasLastRun {
		resp["lastRun"] = s.lastRun
	}
	respondJSON(c, http.StatusOK, resp)
}

type runRequest struct {
	YearStart int  `json:"yearStart"`
	YearEnd   int  `json:"yearEnd"`
	Force     bool `json:"force"`
	DryRun    bool `json:"dryRun"`
}

// runHandler starts a download run in the background. Only one run may be
// active at a time.
func (s *Server) runHandler(c *gin.Context) {
	var req runRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if req.YearStart == 0 {
		req.YearStart = s.Config.StartYear
	}
	if req.YearEnd == 0 {
		req.YearEnd = s.Config.EndYear
	}

	s.runMu.Lock()
	if s.runActive {
		s.runMu.Unlock()
		respondError(c, http.StatusConflict, "a run is already active")
		return
	}
	s.runActive = true
	run := NewRunRecord("download")
	s.runMu.Unlock()

	go s.executeRun(run, req)
	respondJSON(c, http.StatusAccepted, gin.H{"runId": run.ID})
}

// countRunOutcomes tallies downloads and terminal failures. Skips such as
// dry-run or an already-present trailer are neither.
func countRunOutcomes(results []DownloadResult) (downloaded, failed int) {
	for _, r := range results {
		if r.Downloaded {
			downloaded++
		} else if r.IsFailure() {
			failed++
		}
	}
	return downloaded, failed
}

func (s *Server) executeRun(run RunRecord, req runRequest) {
	defer func() {
		s.runMu.Lock()
		s.runActive = false
		s.lastRun = run
		s.hasLastRun = true
		s.runMu.Unlock()
	}()

	cfg := s.Config
	client := NewTMDBClient(cfg.TMDBAPIKey, cfg.PagesPerYear, cfg.TMDBFilters)
	movies := FetchMovies(client, cfg.CachePath(MoviesCacheFilename), req.YearStart, req.YearEnd, false, false)
	run.Movies = len(movies)

	pipeline := &Pipeline{
		Catalog:        client,
		Downloader:     &Downloader{YtDlpPath: cfg.YtDlpPath},
		Assets:         &AssetGenerator{FFmpegPath: cfg.FFmpegPath},
		Failures:       s.Failures,
		Budget:         NewFailureBudget(DefaultFailureLimit, false),
		DownloadFolder: cfg.DownloadFolder,
		Options: PipelineOptions{
			DownloadWorkers: cfg.MaxDownloadWorkers,
			FFmpegWorkers:   cfg.MaxFFmpegWorkers,
			DryRun:          req.DryRun,
			Force:           req.Force,
			CreateBackdrop:  cfg.CreateBackdrop,
			Duration:        cfg.PlaceholderDuration,
			Resolution:      cfg.PlaceholderResolution,
		},
	}
	pipeline.Progress = func(done, total int, result DownloadResult) {
		s.Hub.Broadcast(PipelineProgress{Done: done, Total: total, Current: result})
		s.History.AppendEvent(HistoryEvent{
			RunID:  run.ID,
			Action: "download",
			Title:  result.Folder,
			Detail: result.Reason,
		})
	}

	candidates := pipeline.FilterExistingMovies(movies)
	results, err := pipeline.Run(candidates)
	run.Aborted = err != nil
	run.Downloaded, run.Failed = countRunOutcomes(results)
	run.Placeholders, run.Backdrops = pipeline.Stats()
	run.FinishedAt = time.Now().UTC()
	s.Failures.Save()
	s.History.SaveRun(run)
}

func (s *Server) progressHandler(c *gin.Context) {
	conn, err := getWebSocketUpgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	s.Hub.Add(conn)
	defer func() {
		s.Hub.Remove(conn)
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
