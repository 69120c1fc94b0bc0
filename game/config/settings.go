package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Storage drivers for session persistence
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Settings holds all server configuration
type Settings struct {
	Server  ServerSettings  `yaml:"server"`
	Paths   PathSettings    `yaml:"paths"`
	Storage StorageSettings `yaml:"storage"`
	Redis   RedisSettings   `yaml:"redis"`
	Auth    AuthSettings    `yaml:"auth"`
	Session SessionSettings `yaml:"session"`
	Journal JournalSettings `yaml:"journal"`
}

// ServerSettings holds HTTP listener settings
type ServerSettings struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// PathSettings locates house configs, the item catalog and translations
type PathSettings struct {
	ConfigDir   string `yaml:"config_dir"`
	CatalogFile string `yaml:"catalog_file"`
	LocaleDir   string `yaml:"locale_dir"`
	Language    string `yaml:"language"`
}

// StorageSettings selects the session persistence backend
type StorageSettings struct {
	Driver      string `yaml:"driver"` // memory, file, redis or sqlite
	SessionsDir string `yaml:"sessions_dir"`
	SQLitePath  string `yaml:"sqlite_path"`
}

// RedisSettings holds Redis connection settings
type RedisSettings struct {
	Address   string `yaml:"address"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// AuthSettings holds bearer token settings. An empty secret disables auth.
type AuthSettings struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
}

// SessionSettings holds player session lifetimes
type SessionSettings struct {
	TTLMinutes     int `yaml:"ttl_minutes"`
	CleanupMinutes int `yaml:"cleanup_minutes"`
}

// JournalSettings controls the compressed event journal
type JournalSettings struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// DefaultSettings returns settings with every default applied
func DefaultSettings() *Settings {
	s := &Settings{}
	s.applyDefaults()
	return s
}

// LoadSettings reads settings from a YAML file
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadSettingsOrDefault reads path when it exists
func LoadSettingsOrDefault(path string) (*Settings, error) {
	if path == "" {
		return DefaultSettings(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultSettings(), nil
	}
	return LoadSettings(path)
}

func (s *Settings) applyDefaults() {
	if s.Server.Port == 0 {
		s.Server.Port = 8080
	}
	if s.Paths.ConfigDir == "" {
		s.Paths.ConfigDir = "configs"
	}
	if s.Paths.CatalogFile == "" {
		s.Paths.CatalogFile = "configs/items/items.json"
	}
	if s.Storage.Driver == "" {
		s.Storage.Driver = StorageFile
	}
	if s.Storage.SessionsDir == "" {
		s.Storage.SessionsDir = "sessions"
	}
	if s.Storage.SQLitePath == "" {
		s.Storage.SQLitePath = "data/decor.db"
	}
	if s.Redis.Address == "" {
		s.Redis.Address = "localhost:6379"
	}
	if s.Redis.KeyPrefix == "" {
		s.Redis.KeyPrefix = "decor"
	}
	if s.Auth.Issuer == "" {
		s.Auth.Issuer = "homedecor"
	}
	if s.Session.TTLMinutes == 0 {
		s.Session.TTLMinutes = 24 * 60
	}
	if s.Session.CleanupMinutes == 0 {
		s.Session.CleanupMinutes = 60
	}
	if s.Journal.Dir == "" {
		s.Journal.Dir = "journal"
	}
}

// Validate checks settings that defaults cannot repair
func (s *Settings) Validate() error {
	if s.Server.Port < 1 || s.Server.Port > 65535 {
		return fmt.Errorf("settings: server.port must be between 1 and 65535, got %d", s.Server.Port)
	}
	switch s.Storage.Driver {
	case StorageMemory, StorageFile, StorageRedis, StorageSQLite:
	default:
		return fmt.Errorf("settings: unknown storage.driver %q", s.Storage.Driver)
	}
	if s.Session.TTLMinutes < 0 || s.Session.CleanupMinutes < 0 {
		return fmt.Errorf("settings: session durations must not be negative")
	}
	return nil
}
