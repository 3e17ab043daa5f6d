package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"streamglass/services/live"
)

// GuideHandler exposes the live guide state and selection controls.
type GuideHandler struct {
	engine *live.Engine
}

func NewGuideHandler(engine *live.Engine) *GuideHandler {
	return &GuideHandler{engine: engine}
}

// GetGuide returns the full selection snapshot: every channel with its
// schedule plus the active channel and program, if any.
func (h *GuideHandler) GetGuide(w http.ResponseWriter, r *http.Request) {
	snapshot := h.engine.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		log.Printf("[guide] failed to encode guide response: %v", err)
	}
}

type selectRequest struct {
	ChannelID string `json:"channelId"`
	ProgramID string `json:"programId,omitempty"`
}

// Select switches the active channel, optionally pinning a specific program.
// An unknown channel id is accepted and ignored, matching the engine's
// no-op semantics, so the response always reflects the resulting state.
func (h *GuideHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ChannelID == "" {
		http.Error(w, "channelId is required", http.StatusBadRequest)
		return
	}

	h.engine.SetActiveChannel(req.ChannelID, req.ProgramID)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.engine.Snapshot()); err != nil {
		log.Printf("[guide] failed to encode selection response: %v", err)
	}
}

// Refresh forces an immediate schedule refetch and reconciliation.
func (h *GuideHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Refresh(r.Context()); err != nil {
		log.Printf("[guide] manual refresh failed: %v", err)
		http.Error(w, "refresh failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.engine.Snapshot()); err != nil {
		log.Printf("[guide] failed to encode refresh response: %v", err)
	}
}

func (h *GuideHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
