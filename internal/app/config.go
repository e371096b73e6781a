package app

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"tripsync/internal/collection"
)

// Cache backend names accepted by Config.Cache.
const (
	CacheFile    = "file"
	CacheLevelDB = "leveldb"
	CacheMemory  = "memory"
)

// Defaults applied by WithDefaults.
const (
	DefaultRemoteURL = "http://localhost:5000/api"
	DefaultTimeout   = 10 * time.Second
	DefaultCurrency  = "USD"
	DefaultLogSize   = 1 << 20
	DefaultLogCount  = 20
	DefaultLogLevel  = "info"
)

// Smallest rotation settings the logger accepts.
const (
	MinLogSize  = 20000
	MinLogCount = 10
)

// LogConfig controls the rotating log file under Home.
type LogConfig struct {
	Size    int    `yaml:"size"`
	Count   int    `yaml:"count"`
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

// Config holds runtime wiring options for building the app.
type Config struct {
	Home       string        `yaml:"-"`        // data directory, e.g. $HOME/.tripsync
	RemoteURL  string        `yaml:"remote"`   // remote store base URL
	User       string        `yaml:"user"`     // session identity used for ownership
	Cache      string        `yaml:"cache"`    // file, leveldb or memory
	Passphrase string        `yaml:"-"`        // seals the cache when set
	Currency   string        `yaml:"currency"` // display currency
	Timeout    time.Duration `yaml:"timeout"`  // per remote call
	Log        LogConfig     `yaml:"log"`

	HTTP          *http.Client               `yaml:"-"` // optional; built from Timeout when nil
	OnRemoteError collection.RemoteErrorFunc `yaml:"-"`
}

// DefaultHome returns $HOME/.tripsync.
func DefaultHome() (string, error) {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".tripsync"), nil
}

// LoadConfig reads a YAML config file. A missing file yields the zero
// Config.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// WithDefaults returns c with empty fields filled in. Log rotation
// settings below the logger's minimum are raised to it.
func (c Config) WithDefaults() Config {
	if c.RemoteURL == "" {
		c.RemoteURL = DefaultRemoteURL
	}
	if c.Cache == "" {
		c.Cache = CacheFile
	}
	if c.Currency == "" {
		c.Currency = DefaultCurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Log.Size <= 0 {
		c.Log.Size = DefaultLogSize
	} else if c.Log.Size < MinLogSize {
		c.Log.Size = MinLogSize
	}
	if c.Log.Count <= 0 {
		c.Log.Count = DefaultLogCount
	} else if c.Log.Count < MinLogCount {
		c.Log.Count = MinLogCount
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	return c
}

// Validate reports configuration that cannot be wired.
func (c Config) Validate() error {
	if c.Home == "" {
		return errors.New("config: home directory not set")
	}
	switch c.Cache {
	case CacheFile, CacheLevelDB, CacheMemory:
	default:
		return fmt.Errorf("config: unknown cache backend %q (want file, leveldb or memory)", c.Cache)
	}
	return nil
}
