package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"uivox/internal/api"
	"uivox/pkg/announce"
	"uivox/pkg/audio"
	"uivox/pkg/config"
	"uivox/pkg/core"
	"uivox/pkg/db"
	"uivox/pkg/logging"
	"uivox/pkg/mode"
	"uivox/pkg/outqueue"
	"uivox/pkg/probe"
	"uivox/pkg/sink"
	"uivox/pkg/store"
	"uivox/pkg/textproc"
	"uivox/pkg/tracker"
	"uivox/pkg/version"
)

const defaultConfigPath = "configs/uivox.yaml"

var initConfig = flag.Bool("init-config", false, "Generate default config file and exit")

func main() {
	flag.Parse()

	// .env overrides for voice and address, mainly for development.
	_ = godotenv.Load()

	if *initConfig {
		if err := config.GenerateDefault(defaultConfigPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", defaultConfigPath)
		return
	}

	if err := run(context.Background(), defaultConfigPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("uivox started", "version", version.Version)

	dbConn, st, err := initDB(appCfg)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	provider := config.NewProvider(appCfg, st)

	// Text pipeline
	norm := textproc.New()
	if table, err := st.Replacements(ctx); err != nil {
		slog.Warn("Failed to load replacement table", "error", err)
	} else {
		norm.LoadReplacements(table)
	}

	tr := tracker.New()
	earcons := audio.NewPlayer(provider.EarconEnabled(ctx), provider.EarconVolume(ctx))
	captions := api.NewCaptionHub()

	// Sinks and channels. Speech announces directly; clipboard output is
	// paced through the queue.
	speaker := sink.NewSpeaker(&appCfg.Speech)
	queue := outqueue.New(sink.NewClipboard(), provider.DrainInterval(ctx))

	dedup := provider.DedupWindow(ctx)
	speechCh := announce.NewChannel("speech", norm, speaker,
		announce.WithDedupWindow(dedup),
		announce.WithTracker(tr),
		announce.WithObserver(captions))
	clipCh := announce.NewChannel("clipboard", norm, queue.Sink(),
		announce.WithDedupWindow(dedup),
		announce.WithTracker(tr),
		announce.WithObserver(captions))

	channels := map[string]*announce.Channel{
		"speech":    speechCh,
		"clipboard": clipCh,
	}
	sched := announce.NewScheduler(speechCh)

	// Mode arbitration
	flags := mode.NewFlagSet()
	fallback := mode.NewFallback(speechCh)
	if coarse, ok := st.GetState(ctx, config.KeyCoarseMode); ok {
		fallback.SetCoarse(coarse)
	}
	arbiter, err := mode.FromConfig(appCfg.Modes.Priority, flags, speechCh, fallback)
	if err != nil {
		return fmt.Errorf("failed to build mode arbiter: %w", err)
	}

	// Heartbeat
	ticker := core.NewTicker(time.Duration(appCfg.Ticker.Interval))
	ticker.AddJob(core.NewModeWatchJob(arbiter, earcons))
	ticker.AddJob(core.NewStaleObservationJob(flags))
	ticker.AddJob(core.NewStatsLogJob(tr, time.Minute))
	go ticker.Start(ctx)
	go queue.Start(ctx)

	// Startup Probes
	probes := []probe.Probe{
		probe.Database(dbConn),
		probe.DataDir(filepath.Dir(appCfg.DB.Path)),
		probe.Clipboard(),
		probe.Speech(speaker),
	}
	results := probe.Run(ctx, probes)
	if err := probe.AnalyzeResults(results); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	speechCh.Announce("Ready", announce.CategorySystemMessage)

	return runServer(ctx, appCfg, serverDeps{
		channels: channels,
		sched:    sched,
		queue:    queue,
		speaker:  speaker,
		earcons:  earcons,
		tracker:  tr,
		flags:    flags,
		arbiter:  arbiter,
		fallback: fallback,
		store:    st,
		provider: provider,
		norm:     norm,
		captions: captions,
	})
}

func initDB(appCfg *config.Config) (*db.DB, store.Store, error) {
	dbConn, err := db.Init(appCfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return dbConn, store.NewSQLiteStore(dbConn), nil
}

type serverDeps struct {
	channels map[string]*announce.Channel
	sched    *announce.Scheduler
	queue    *outqueue.Queue
	speaker  sink.Sink
	earcons  *audio.Player
	tracker  *tracker.Tracker
	flags    *mode.FlagSet
	arbiter  *mode.Arbiter
	fallback *mode.Fallback
	store    store.Store
	provider config.Provider
	norm     *textproc.Normalizer
	captions *api.CaptionHub
}

func runServer(ctx context.Context, cfg *config.Config, deps serverDeps) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	// Settings written at runtime feed live components without a restart.
	onChange := func(key, value string) {
		bg := context.Background()
		switch key {
		case config.KeyEarconEnabled:
			deps.earcons.SetEnabled(value == "true")
		case config.KeyEarconVolume:
			deps.earcons.SetVolume(deps.provider.EarconVolume(bg))
		case config.KeyCoarseMode:
			deps.fallback.SetCoarse(value)
		case config.KeySpeechRate:
			if tuner, ok := deps.speaker.(sink.VoiceTuner); ok {
				tuner.SetRate(deps.provider.SpeechRate(bg))
			}
		case config.KeySpeechVoice:
			if tuner, ok := deps.speaker.(sink.VoiceTuner); ok {
				tuner.SetVoiceID(value)
			}
		case config.KeyDedupWindow:
			d := deps.provider.DedupWindow(bg)
			for _, ch := range deps.channels {
				ch.SetDedupWindow(d)
			}
		case config.KeyDrainInterval:
			deps.queue.SetDrainInterval(deps.provider.DrainInterval(bg))
		}
	}

	srv := api.NewServer(cfg.Server.Address,
		api.NewAnnounceHandler(deps.channels, "speech", deps.sched, deps.queue, deps.earcons, deps.tracker),
		api.NewModeHandler(deps.flags, deps.arbiter, deps.fallback),
		api.NewStatsHandler(deps.tracker, deps.queue, deps.arbiter),
		api.NewReplacementHandler(deps.store, deps.norm),
		api.NewSettingsHandler(deps.provider, deps.store, onChange),
		deps.captions,
		shutdownFunc,
	)

	srv.Handler = loggingMiddleware(srv.Handler)
	return runServerLifecycle(ctx, srv, quit)
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Request processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
