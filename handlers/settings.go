package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"streamglass/config"
)

// SettingsHandler serves the client-visible subset of the configuration.
type SettingsHandler struct {
	manager *config.Manager
}

func NewSettingsHandler(manager *config.Manager) *SettingsHandler {
	return &SettingsHandler{manager: manager}
}

type clientSettings struct {
	Playlist config.PlaylistSettings `json:"playlist"`
	Live     config.LiveSettings     `json:"live"`
	Sandbox  bool                    `json:"sandbox"`
}

// GetSettings returns the configuration clients need to render the guide.
// The auth base URL and file paths stay server-side.
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.manager.Load()
	if err != nil {
		log.Printf("[settings] failed to load settings: %v", err)
		http.Error(w, "failed to load settings", http.StatusInternalServerError)
		return
	}

	resp := clientSettings{
		Playlist: settings.Playlist,
		Live:     settings.Live,
		Sandbox:  settings.Auth.Sandbox,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("[settings] failed to encode settings response: %v", err)
	}
}

func (h *SettingsHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
