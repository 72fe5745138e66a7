package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"media-converter/internal/archive"
	"media-converter/internal/converter"
	"media-converter/internal/database"
	"media-converter/internal/filesystem"
	"media-converter/internal/handlers"
	"media-converter/internal/logging"
	"media-converter/internal/memory"
	"media-converter/internal/metrics"
	"media-converter/internal/middleware"
	"media-converter/internal/startup"
	"media-converter/internal/transcoder"

	"github.com/gorilla/mux"
)

const (
	metricsInterval = time.Minute
	shutdownTimeout = 30 * time.Second
)

func main() {
	startTime := time.Now()

	// Load configuration (and .env, so memory settings below can come from it)
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	startup.LogMemoryConfig(memory.ConfigureFromEnv())

	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)

	ctx := context.Background()

	// Workspaces: anything under the root at startup belongs to a dead process
	workspaces := filesystem.NewManager(config.TempDir, config.KeepWorkFiles)
	var removed int
	var freed int64
	if !config.KeepWorkFiles {
		removed, freed, err = workspaces.PurgeStale(0)
		if err != nil {
			logging.Warn("Failed to purge stale workspaces: %v", err)
		}
	}
	startup.LogWorkspaceInit(workspaces.Root(), config.KeepWorkFiles, removed, freed)

	// Conversion history
	db := openHistory(ctx, config)
	if db != nil {
		defer func() {
			if err := db.Close(); err != nil {
				logging.Warn("Failed to close history database: %v", err)
			}
		}()
	}

	// Transcoder
	prober := transcoder.NewCachedProber(transcoder.NewFFmpegProber(config.FFmpegPath))
	trans := transcoder.New(config.TranscoderConfig(), prober, transcoder.ExecRunner{})
	ffmpegVersion := startup.LogTranscoderInit(ctx, trans)

	// Conversion service
	svc := converter.New(workspaces, trans, converter.Options{
		MaxUploadBytes: config.MaxUploadBytes,
		Timeout:        config.ConvertTimeout,
		MaxConcurrent:  config.MaxConcurrent,
	})

	var history handlers.History
	var statsProvider metrics.StatsProvider
	dbPath := ""
	if db != nil {
		svc.SetHistory(db)
		history = db
		statsProvider = db
		dbPath = db.Path()
	}

	if config.Archive.Enabled() {
		archiver, err := archive.NewS3(config.Archive)
		if err != nil {
			startup.LogFatal("Failed to initialize archive: %v", err)
		}
		svc.SetArchiver(archiver)
		startup.LogArchiveInit(config.Archive)
	}

	// Handlers and routing
	h := handlers.New(svc, trans, workspaces, history, config.MaxUploadBytes)
	h.SetFFmpegVersion(ffmpegVersion)

	router := setupRouter(h, config.StaticDir)
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks, config.AuthEnabled())

	handler := buildHandler(router, config)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		// No read/write timeouts: large uploads and FFmpeg runs are bounded
		// by CONVERT_TIMEOUT instead.
		IdleTimeout: 60 * time.Second,
	}

	// Metrics server and collector
	var metricsSrv *http.Server
	var collector *metrics.Collector
	if config.MetricsEnabled {
		collector = metrics.NewCollector(statsProvider, dbPath, metricsInterval)
		collector.SetWorkDir(workspaces.Root())
		collector.Start()

		metricsSrv = &http.Server{
			Addr:              ":" + config.MetricsPort,
			Handler:           h.MetricsHandler(),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	done := make(chan struct{})
	go handleShutdown(srv, metricsSrv, collector, trans, svc, done)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}

	// ListenAndServe returns as soon as Shutdown starts; wait for it to finish.
	<-done
}

// openHistory opens the history database, or returns nil when history is
// disabled or the database cannot be opened. Conversions work without it.
func openHistory(ctx context.Context, config *startup.Config) *database.Database {
	if !config.HistoryEnabled {
		startup.LogHistoryDisabled("HISTORY_ENABLED=false or database directory not writable")
		return nil
	}

	dbStart := time.Now()
	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		logging.Error("Failed to open history database: %v", err)
		startup.LogHistoryDisabled("database error")
		return nil
	}

	var pruned int64
	if config.HistoryRetention > 0 {
		pruned, err = db.PruneOlderThan(ctx, time.Now().Add(-config.HistoryRetention))
		if err != nil {
			logging.Warn("Failed to prune conversion history: %v", err)
		}
	}

	startup.LogDatabaseInit(time.Since(dbStart), pruned)
	return db
}

func setupRouter(h *handlers.Handlers, staticDir string) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	// Health check and version routes (no auth required)
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/convert", h.Convert).Methods("POST").Name("convert")
	api.HandleFunc("/formats", h.GetFormats).Methods("GET").Name("formats")
	api.HandleFunc("/capabilities", h.GetCapabilities).Methods("GET").Name("capabilities")
	api.HandleFunc("/conversions", h.GetConversions).Methods("GET").Name("conversions")

	// Static files
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))

	return r
}

// buildHandler wraps the router in auth, access logging and compression.
func buildHandler(router http.Handler, config *startup.Config) http.Handler {
	authed := middleware.BasicAuth(middleware.DefaultAuthConfig(config.AuthUsername, config.AuthPasswordHash))(router)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	logged := middleware.Logger(loggingConfig)(authed)

	return middleware.Compression(middleware.DefaultCompressionConfig())(logged)
}

func handleShutdown(srv, metricsSrv *http.Server, collector *metrics.Collector, trans *transcoder.Transcoder, svc *converter.Service, done chan<- struct{}) {
	defer close(done)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Kill FFmpeg first so in-flight requests fail fast instead of holding
	// up the HTTP shutdown.
	startup.LogShutdownStep("Stopping running conversions")
	trans.Cleanup()
	startup.LogShutdownStepComplete("Conversions stopped")

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Waiting for archive uploads")
	svc.Wait()
	startup.LogShutdownStepComplete("Archive uploads finished")

	if collector != nil {
		collector.Stop()
	}
	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownComplete()
}
