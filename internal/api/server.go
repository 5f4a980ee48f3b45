// Package api exposes the localhost control surface for observing clients.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"uivox/pkg/version"
)

// NewServer creates and configures the HTTP server.
// It accepts handlers for all API endpoints and a shutdownFunc for graceful shutdown.
func NewServer(addr string, announceH *AnnounceHandler, modeH *ModeHandler, stats *StatsHandler, repl *ReplacementHandler, settings *SettingsHandler, captions *CaptionHub, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	// 1. Health Endpoint
	mux.HandleFunc("GET /api/health", handleHealth)

	// 2. Version Endpoint
	mux.HandleFunc("GET /api/version", handleVersion)

	// 3. Announcement Endpoints
	mux.HandleFunc("POST /api/announce", announceH.HandleAnnounce)
	mux.HandleFunc("POST /api/announce/delayed", announceH.HandleDelayed)
	mux.HandleFunc("DELETE /api/announce/delayed", announceH.HandleDelayedCancel)
	mux.HandleFunc("POST /api/repeat", announceH.HandleRepeat)
	mux.HandleFunc("POST /api/queue/clear", announceH.HandleQueueClear)

	// 4. Mode Endpoints
	mux.HandleFunc("POST /api/mode/flags", modeH.HandleFlags)
	mux.HandleFunc("POST /api/input", modeH.HandleInput)
	mux.HandleFunc("GET /api/mode", modeH.HandleMode)
	mux.HandleFunc("POST /api/mode/coarse", modeH.HandleCoarse)

	// 5. Stats Endpoint
	mux.Handle("GET /api/stats", stats)

	// 6. Logs Endpoint
	mux.HandleFunc("GET /api/log/latest", handleLatestLog)

	// 7. Replacement Table Endpoints
	if repl != nil {
		mux.HandleFunc("GET /api/replacements", repl.HandleList)
		mux.HandleFunc("POST /api/replacements", repl.HandleSave)
		mux.HandleFunc("DELETE /api/replacements", repl.HandleDelete)
	}

	// 8. Settings Endpoints
	if settings != nil {
		mux.HandleFunc("GET /api/settings", settings.HandleGet)
		mux.HandleFunc("POST /api/settings", settings.HandleSet)
	}

	// 9. Caption Stream
	if captions != nil {
		mux.HandleFunc("GET /api/captions", captions.HandleWS)
	}

	// 10. Shutdown Endpoint
	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Graceful shutdown initiated via API")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Shutting down...")); err != nil {
			slog.Error("Failed to write shutdown response", "error", err)
		}
		// Call shutdown in a goroutine to allow response to flush
		go func() {
			time.Sleep(100 * time.Millisecond)
			shutdown()
		}()
	})

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}

// writeJSON encodes v with a JSON content type. Encode errors after the
// header is out can only be logged.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}
