package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server ServerSettings `json:"server"`
	TMDB   TMDBSettings   `json:"tmdb"`
	Cache  CacheSettings  `json:"cache"`
	Log    LogConfig      `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type TMDBSettings struct {
	APIKey   string `json:"apiKey"`
	Language string `json:"language"`
}

type CacheSettings struct {
	// TTL for the in-memory response cache, in minutes.
	TTLMinutes int `json:"ttlMinutes"`
}

// LogConfig represents logging configuration for the rotating file writer.
type LogConfig struct {
	File       string `json:"file"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

// DefaultSettings returns the configuration written on first start.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{Host: "0.0.0.0", Port: 8585},
		TMDB:   TMDBSettings{Language: "en-US"},
		Cache:  CacheSettings{TTLMinutes: 5},
		Log: LogConfig{
			MaxSize:    20,
			MaxAge:     14,
			MaxBackups: 3,
		},
	}
}

// Manager loads and persists the settings file.
type Manager struct {
	mu   sync.Mutex
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

// Load reads the settings file from disk, creating it with defaults when
// missing, and backfills fields that older files predate. The TMDB_API_KEY
// environment variable always wins over the file.
func (m *Manager) Load() (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}

	var s Settings
	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		s = DefaultSettings()
		if err := m.save(s); err != nil {
			return Settings{}, err
		}
	} else {
		data, err := os.ReadFile(m.path)
		if err != nil {
			return Settings{}, err
		}
		if err := json.Unmarshal(data, &s); err != nil {
			return Settings{}, err
		}
	}

	// Backfill defaults for configs that predate these fields.
	if s.Server.Port == 0 {
		s.Server.Port = 8585
	}
	if strings.TrimSpace(s.Server.Host) == "" {
		s.Server.Host = "0.0.0.0"
	}
	if strings.TrimSpace(s.TMDB.Language) == "" {
		s.TMDB.Language = "en-US"
	}
	if s.Cache.TTLMinutes <= 0 {
		s.Cache.TTLMinutes = 5
	}
	if s.Log.MaxSize == 0 {
		s.Log.MaxSize = 20
	}

	if key := strings.TrimSpace(os.Getenv("TMDB_API_KEY")); key != "" {
		s.TMDB.APIKey = key
	}

	return s, nil
}

// Save writes the settings file, creating its directory when needed.
func (m *Manager) Save(s Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.save(s)
}

func (m *Manager) save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, m.path)
}
