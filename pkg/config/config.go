package config

import (
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

type Config struct {
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseFilePath          string        `koanf:"database_file_path"`
	DatabaseMaxRetries        int           `koanf:"database_max_retries"`
	IdentifierCacheSize       int           `koanf:"identifier_cache_size"`
	SearchIndexPath           string        `koanf:"search_index_path"`
	SearchRebuildOnStart      bool          `koanf:"search_rebuild_on_start"`
	SearchSyncQueueSize       int           `koanf:"search_sync_queue_size"`
	SearchSyncTimeout         time.Duration `koanf:"search_sync_timeout"`
	SearchSyncWorkers         int           `koanf:"search_sync_workers"`
	ServerHost                string        `koanf:"server_host"`
	ServerPort                int           `koanf:"server_port"`
}

const (
	configFileENV     = "CONFIG_FILE"
	defaultConfigFile = "/config/catalog.yaml"
)

// required lists keys that must be set by either the config file or the
// environment.
var required = []string{"database_file_path"}

// New loads configuration from defaults, then the YAML file named by
// CONFIG_FILE (if it exists), then environment variables. Later sources win.
func New() (*Config, error) {
	cfg := defaults()
	k := koanf.New(".")

	path := os.Getenv(configFileENV)
	if path == "" {
		path = defaultConfigFile
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", path)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.WithStack(err)
	}

	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		DatabaseBusyTimeout:       5 * time.Second,
		DatabaseConnectRetryCount: 5,
		DatabaseConnectRetryDelay: 2 * time.Second,
		DatabaseMaxRetries:        5,
		IdentifierCacheSize:       4096,
		SearchIndexPath:           "/data/search.bleve",
		SearchSyncQueueSize:       1024,
		SearchSyncTimeout:         30 * time.Second,
		SearchSyncWorkers:         2,
		ServerHost:                "0.0.0.0",
		ServerPort:                3689,
	}
}

// NewForTest returns a configuration backed by an in-memory database and an
// in-memory search index.
func NewForTest() *Config {
	cfg := defaults()
	cfg.DatabaseConnectRetryCount = 1
	cfg.DatabaseConnectRetryDelay = 0
	cfg.DatabaseFilePath = ":memory:"
	cfg.SearchIndexPath = ""
	cfg.SearchSyncTimeout = 5 * time.Second
	cfg.ServerHost = "127.0.0.1"
	return cfg
}

func (cfg *Config) validate() error {
	var missing []string
	for _, key := range required {
		if cfg.value(key) == "" {
			missing = append(missing, strings.ToUpper(key)+" (env) / "+key+" (file)")
		}
	}
	if len(missing) > 0 {
		return errors.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	if cfg.SearchSyncWorkers < 1 {
		return errors.New("search_sync_workers must be at least 1")
	}
	if cfg.SearchSyncQueueSize < 1 {
		return errors.New("search_sync_queue_size must be at least 1")
	}
	return nil
}

func (cfg *Config) value(key string) string {
	switch key {
	case "database_file_path":
		return cfg.DatabaseFilePath
	}
	return ""
}
