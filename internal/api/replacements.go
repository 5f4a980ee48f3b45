package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"uivox/pkg/store"
	"uivox/pkg/textproc"
)

// ReplacementHandler manages the persisted text replacement table. Writes
// update both the database and the live normalizer, so the next
// announcement (and the next repeat) already uses the new table.
type ReplacementHandler struct {
	store store.ReplacementStore
	norm  *textproc.Normalizer
}

func NewReplacementHandler(s store.ReplacementStore, n *textproc.Normalizer) *ReplacementHandler {
	return &ReplacementHandler{store: s, norm: n}
}

type replacementRequest struct {
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
}

// HandleList returns the live replacement table.
func (h *ReplacementHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.norm.Replacements())
}

// HandleSave adds or updates one replacement.
func (h *ReplacementHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var req replacementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Pattern == "" {
		http.Error(w, "missing pattern", http.StatusBadRequest)
		return
	}

	if err := h.store.SaveReplacement(r.Context(), req.Pattern, req.Replacement); err != nil {
		slog.Error("API: failed to persist replacement", "pattern", req.Pattern, "error", err)
		http.Error(w, "persist failed", http.StatusInternalServerError)
		return
	}
	h.norm.SetReplacement(req.Pattern, req.Replacement)
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete removes one replacement.
func (h *ReplacementHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	var req replacementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Pattern == "" {
		http.Error(w, "missing pattern", http.StatusBadRequest)
		return
	}

	if err := h.store.DeleteReplacement(r.Context(), req.Pattern); err != nil {
		slog.Error("API: failed to delete replacement", "pattern", req.Pattern, "error", err)
		http.Error(w, "delete failed", http.StatusInternalServerError)
		return
	}
	h.norm.RemoveReplacement(req.Pattern)
	w.WriteHeader(http.StatusNoContent)
}
