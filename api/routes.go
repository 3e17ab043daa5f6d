package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"streamglass/handlers"
)

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Register mounts API endpoints onto the provided router.
func Register(
	r *mux.Router,
	guideHandler *handlers.GuideHandler,
	authHandler *handlers.AuthHandler,
	settingsHandler *handlers.SettingsHandler,
) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)

	api.HandleFunc("/guide", guideHandler.GetGuide).Methods(http.MethodGet)
	api.HandleFunc("/guide", guideHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/guide/select", guideHandler.Select).Methods(http.MethodPost)
	api.HandleFunc("/guide/select", guideHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/guide/refresh", guideHandler.Refresh).Methods(http.MethodPost)
	api.HandleFunc("/guide/refresh", guideHandler.Options).Methods(http.MethodOptions)

	api.HandleFunc("/auth/token", authHandler.GetToken).Methods(http.MethodGet)
	api.HandleFunc("/auth/token", authHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/auth/tokens", authHandler.PutTokens).Methods(http.MethodPut)
	api.HandleFunc("/auth/tokens", authHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", authHandler.Options).Methods(http.MethodOptions)

	api.HandleFunc("/settings", settingsHandler.GetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", settingsHandler.Options).Methods(http.MethodOptions)
}
