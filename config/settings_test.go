package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"streamglass/config"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	manager := config.NewManager(path)

	settings, err := manager.Load()
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	if settings.Server.Port != 7070 {
		t.Fatalf("expected default port, got %d", settings.Server.Port)
	}
	if !settings.Live.AutoAdvance {
		t.Fatal("expected auto advance enabled by default")
	}
	if settings.Live.TickIntervalSeconds != 5 || settings.Live.RefetchIntervalMinutes != 5 {
		t.Fatalf("unexpected default intervals: %+v", settings.Live)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected settings file written to disk: %v", err)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	manager := config.NewManager(path)

	settings := config.DefaultSettings()
	settings.Playlist.URL = "https://cdn.example.com/playlist.json"
	settings.Live.InitialChannelID = "ch7"
	settings.Auth.BaseURL = "https://account.example.com"
	settings.Auth.Sandbox = true

	if err := manager.Save(settings); err != nil {
		t.Fatalf("save returned error: %v", err)
	}

	loaded, err := manager.Load()
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if loaded.Playlist.URL != settings.Playlist.URL {
		t.Fatalf("expected playlist url round-tripped, got %q", loaded.Playlist.URL)
	}
	if loaded.Live.InitialChannelID != "ch7" {
		t.Fatalf("expected initial channel round-tripped, got %q", loaded.Live.InitialChannelID)
	}
	if !loaded.Auth.Sandbox {
		t.Fatal("expected sandbox flag round-tripped")
	}
}

func TestLoadFillsZeroIntervals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"server":{"host":"127.0.0.1"},"live":{"autoAdvance":false}}`), 0o644); err != nil {
		t.Fatalf("failed to write settings file: %v", err)
	}

	settings, err := config.NewManager(path).Load()
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	if settings.Server.Host != "127.0.0.1" {
		t.Fatalf("expected host preserved, got %q", settings.Server.Host)
	}
	if settings.Server.Port != 7070 {
		t.Fatalf("expected port filled in, got %d", settings.Server.Port)
	}
	if settings.Live.TickIntervalSeconds != 5 || settings.Live.RefetchIntervalMinutes != 5 {
		t.Fatalf("expected intervals filled in, got %+v", settings.Live)
	}
	if settings.Live.AutoAdvance {
		t.Fatal("expected explicit autoAdvance=false preserved")
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to write settings file: %v", err)
	}

	if _, err := config.NewManager(path).Load(); err == nil {
		t.Fatal("expected error for malformed settings file")
	}
}
