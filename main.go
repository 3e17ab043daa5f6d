package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"

	"streamglass/api"
	"streamglass/config"
	"streamglass/handlers"
	"streamglass/internal/broadcast"
	"streamglass/internal/kvstore"
	"streamglass/services/auth"
	"streamglass/services/epg"
	"streamglass/services/live"
	"streamglass/services/playlist"
	"streamglass/services/schedule"
)

func main() {
	demoMode := flag.Bool("demo", false, "rebase all channel schedules onto today regardless of feed flags")
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("streamglass backend starting...")

	configPath := os.Getenv("STREAMGLASS_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("cache", "settings.json")
	}

	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			log.Printf("warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("logging to file: %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer startupCancel()

	// Session storage and cross-instance refresh coordination
	sessionDir := filepath.Join(settings.Cache.Directory, "session")
	store, err := kvstore.NewFileStore(afero.NewOsFs(), sessionDir)
	if err != nil {
		log.Fatalf("failed to initialise session storage: %v", err)
	}

	bus := broadcast.NewBus()
	refresher := auth.NewAPIRefresher(settings.Auth.BaseURL, nil)
	authService := auth.NewService(store, bus, refresher)
	if err := authService.Initialize(startupCtx, settings.Auth.Sandbox, func() {
		log.Println("[main] refresh token rejected by server, clearing session")
		authService.ClearSession()
	}); err != nil {
		log.Fatalf("failed to initialise auth: %v", err)
	}
	defer authService.Close()

	// Load the channel line-up
	playlistService := playlist.NewService(settings.Playlist.URL, nil)
	feed, err := playlistService.Load(startupCtx)
	if err != nil {
		log.Fatalf("failed to load playlist: %v", err)
	}
	log.Printf("[main] loaded playlist %q with %d channel(s)", feed.Title, len(feed.Playlist))

	items := feed.Playlist
	if *demoMode {
		for i := range items {
			items[i].ScheduleDemo = "1"
		}
		fmt.Println("demo mode enabled: schedules rebased onto today")
	}

	// Guide engine
	registry := schedule.NewRegistry(nil)
	epgClient := epg.NewClient(registry)
	engine := live.NewEngine(epgClient, items, live.Options{
		InitialChannelID: settings.Live.InitialChannelID,
		AutoAdvance:      settings.Live.AutoAdvance,
		TickInterval:     time.Duration(settings.Live.TickIntervalSeconds) * time.Second,
		RefetchInterval:  time.Duration(settings.Live.RefetchIntervalMinutes) * time.Minute,
	})
	if err := engine.Start(context.Background()); err != nil {
		log.Fatalf("failed to start guide engine: %v", err)
	}

	// Router and API routes
	r := mux.NewRouter()
	api.Register(
		r,
		handlers.NewGuideHandler(engine),
		handlers.NewAuthHandler(authService),
		handlers.NewSettingsHandler(cfgManager),
	)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	engine.Stop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	log.Println("shutdown complete")
}
