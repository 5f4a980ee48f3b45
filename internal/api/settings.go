package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"uivox/pkg/config"
	"uivox/pkg/store"
)

// settableKeys lists the persistent keys a client may write.
var settableKeys = map[string]struct{}{
	config.KeySpeechRate:    {},
	config.KeySpeechVoice:   {},
	config.KeyDedupWindow:   {},
	config.KeyDrainInterval: {},
	config.KeyEarconEnabled: {},
	config.KeyEarconVolume:  {},
	config.KeyCoarseMode:    {},
}

// SettingsHandler reads and writes runtime settings. Values land in the
// state store, so they override the YAML config without rewriting it.
type SettingsHandler struct {
	provider config.Provider
	store    store.StateStore
	onChange func(key, value string)
}

// NewSettingsHandler creates the handler. onChange, if non-nil, is called
// after a successful write so live components can pick the value up.
func NewSettingsHandler(p config.Provider, s store.StateStore, onChange func(key, value string)) *SettingsHandler {
	return &SettingsHandler{
		provider: p,
		store:    s,
		onChange: onChange,
	}
}

// HandleGet reports the effective settings after store overrides.
func (h *SettingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSON(w, map[string]any{
		config.KeySpeechRate:    h.provider.SpeechRate(ctx),
		config.KeySpeechVoice:   h.provider.SpeechVoice(ctx),
		config.KeyDedupWindow:   h.provider.DedupWindow(ctx).String(),
		config.KeyDrainInterval: h.provider.DrainInterval(ctx).String(),
		config.KeyEarconEnabled: h.provider.EarconEnabled(ctx),
		config.KeyEarconVolume:  h.provider.EarconVolume(ctx),
	})
}

type settingRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// HandleSet persists one setting override.
func (h *SettingsHandler) HandleSet(w http.ResponseWriter, r *http.Request) {
	var req settingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if _, ok := settableKeys[req.Key]; !ok {
		http.Error(w, "unknown setting", http.StatusBadRequest)
		return
	}

	if err := h.store.SetState(r.Context(), req.Key, req.Value); err != nil {
		slog.Error("API: failed to persist setting", "key", req.Key, "error", err)
		http.Error(w, "persist failed", http.StatusInternalServerError)
		return
	}
	slog.Info("API: setting updated", "key", req.Key, "value", req.Value)
	if h.onChange != nil {
		h.onChange(req.Key, req.Value)
	}
	w.WriteHeader(http.StatusNoContent)
}
