package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server   ServerSettings   `json:"server"`
	Playlist PlaylistSettings `json:"playlist"`
	Live     LiveSettings     `json:"live"`
	Auth     AuthSettings     `json:"auth"`
	Cache    CacheSettings    `json:"cache"`
	Log      LogConfig        `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// PlaylistSettings points at the remote JSON feed with the live channel
// line-up.
type PlaylistSettings struct {
	URL string `json:"url"`
}

// LiveSettings tunes the selection engine's two timers and its starting
// channel.
type LiveSettings struct {
	InitialChannelID       string `json:"initialChannelId,omitempty"`
	AutoAdvance            bool   `json:"autoAdvance"`
	TickIntervalSeconds    int    `json:"tickIntervalSeconds"`
	RefetchIntervalMinutes int    `json:"refetchIntervalMinutes"`
}

// AuthSettings configures the account backend used for token refresh.
type AuthSettings struct {
	BaseURL string `json:"baseUrl"`
	Sandbox bool   `json:"sandbox"`
}

type CacheSettings struct {
	Directory string `json:"directory"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	File       string `json:"file"`
	Level      string `json:"level"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

// DefaultSettings returns the configuration written on first start.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{
			Host: "0.0.0.0",
			Port: 7070,
		},
		Playlist: PlaylistSettings{},
		Live: LiveSettings{
			AutoAdvance:            true,
			TickIntervalSeconds:    5,
			RefetchIntervalMinutes: 5,
		},
		Auth: AuthSettings{},
		Cache: CacheSettings{
			Directory: "cache",
		},
		Log: LogConfig{
			File:       "cache/logs/streamglass.log",
			Level:      "info",
			MaxSize:    50, // 50 MB per file
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   true,
		},
	}
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

// EnsureDir ensures the parent directory exists.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Load reads the settings file from disk, creating it with defaults when
// missing. Zero values for the engine timers are filled in so a hand-edited
// file cannot disable the loops by accident.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}

	f, err := os.Open(m.path)
	if err != nil {
		return Settings{}, err
	}
	defer f.Close()

	var s Settings
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return Settings{}, err
	}

	if s.Server.Port <= 0 {
		s.Server.Port = DefaultSettings().Server.Port
	}
	if s.Live.TickIntervalSeconds <= 0 {
		s.Live.TickIntervalSeconds = DefaultSettings().Live.TickIntervalSeconds
	}
	if s.Live.RefetchIntervalMinutes <= 0 {
		s.Live.RefetchIntervalMinutes = DefaultSettings().Live.RefetchIntervalMinutes
	}
	if s.Cache.Directory == "" {
		s.Cache.Directory = DefaultSettings().Cache.Directory
	}

	return s, nil
}

// Save writes the provided settings to disk atomically.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}

	tmp := m.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, m.path)
}
