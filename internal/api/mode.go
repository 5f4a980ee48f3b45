package api

import (
	"encoding/json"
	"net/http"

	"uivox/pkg/mode"
)

// ModeHandler serves the mode observation and input endpoints.
type ModeHandler struct {
	flags    *mode.FlagSet
	arbiter  *mode.Arbiter
	fallback *mode.Fallback
}

// NewModeHandler creates the handler.
func NewModeHandler(flags *mode.FlagSet, arbiter *mode.Arbiter, fallback *mode.Fallback) *ModeHandler {
	return &ModeHandler{
		flags:    flags,
		arbiter:  arbiter,
		fallback: fallback,
	}
}

type flagsRequest struct {
	Flags map[string]bool   `json:"flags"`
	Texts map[string]string `json:"texts"`
}

// HandleFlags ingests one observation of feature flags and state texts.
func (h *ModeHandler) HandleFlags(w http.ResponseWriter, r *http.Request) {
	var req flagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.flags.Apply(req.Flags, req.Texts)
	w.WriteHeader(http.StatusNoContent)
}

type inputRequest struct {
	Key string `json:"key"`
}

// HandleInput routes a key press to the active mode handler.
func (h *ModeHandler) HandleInput(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Key == "" {
		http.Error(w, "missing key", http.StatusBadRequest)
		return
	}
	h.arbiter.OnInput(req.Key)
	w.WriteHeader(http.StatusAccepted)
}

// HandleMode reports the current classification.
func (h *ModeHandler) HandleMode(w http.ResponseWriter, r *http.Request) {
	flags, texts := h.flags.Snapshot()
	writeJSON(w, map[string]any{
		"mode":       h.arbiter.Classify(),
		"flags":      flags,
		"texts":      texts,
		"updated_at": h.flags.UpdatedAt(),
	})
}

type coarseRequest struct {
	Mode string `json:"mode"`
}

// HandleCoarse records a coarse mode hint for the fallback handler.
func (h *ModeHandler) HandleCoarse(w http.ResponseWriter, r *http.Request) {
	var req coarseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.fallback.SetCoarse(req.Mode)
	w.WriteHeader(http.StatusNoContent)
}
