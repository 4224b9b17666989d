// Package config loads runtime settings from a yaml file, with flags as the
// fallback when no file is given.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// StorageFile keeps ladders as JSON documents on local disk.
	StorageFile = "file"
	// StorageRedis keeps ladders in a remote redis document store.
	StorageRedis = "redis"
)

// Config is the resolved runtime configuration.
type Config struct {
	ListenAddr    string
	Storage       string
	DataDir       string
	JournalDir    string
	RedisAddr     string
	RedisDB       int
	ConfirmWindow time.Duration
	Interactive   bool
}

type configTmp struct {
	ListenAddr    string        `yaml:"listen_addr"`
	Storage       string        `yaml:"storage"`
	DataDir       string        `yaml:"data_dir"`
	JournalDir    string        `yaml:"journal_dir"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisDB       int           `yaml:"redis_db"`
	ConfirmWindow time.Duration `yaml:"confirm_window"`
}

// Get parses flags and, when -config points to a yaml file, merges it in.
func Get() (Config, error) {
	var (
		configPath  = flag.String("config", "", "path to yaml config")
		listenAddr  = flag.String("listen", ":8080", "http listen address")
		storageKind = flag.String("storage", StorageFile, "ladder storage backend: file or redis")
		dataDir     = flag.String("datadir", "./data/ladders", "directory for the file backend")
		journalDir  = flag.String("journaldir", "./wal/ladders", "directory for the event journal")
		redisAddr   = flag.String("redis", "localhost:6379", "redis address for the redis backend")
		redisDB     = flag.Int("redisdb", 0, "redis database number")
		window      = flag.Duration("confirmwindow", 3*time.Second, "win confirmation window")
		interactive = flag.Bool("new", false, "run the interactive create-ladder form and exit")
	)
	flag.Parse()

	cfg := Config{
		ListenAddr:    *listenAddr,
		Storage:       *storageKind,
		DataDir:       *dataDir,
		JournalDir:    *journalDir,
		RedisAddr:     *redisAddr,
		RedisDB:       *redisDB,
		ConfirmWindow: *window,
		Interactive:   *interactive,
	}

	if *configPath != "" {
		if err := mergeYaml(&cfg, *configPath); err != nil {
			return Config{}, err
		}
	}

	if cfg.Storage != StorageFile && cfg.Storage != StorageRedis {
		return Config{}, fmt.Errorf("unknown storage backend %q, want %q or %q",
			cfg.Storage, StorageFile, StorageRedis)
	}
	if cfg.ConfirmWindow <= 0 {
		return Config{}, fmt.Errorf("confirm window must be positive, got %s", cfg.ConfirmWindow)
	}

	return cfg, nil
}

func mergeYaml(cfg *Config, path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var tmp configTmp
	if err := yaml.Unmarshal(payload, &tmp); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if tmp.ListenAddr != "" {
		cfg.ListenAddr = tmp.ListenAddr
	}
	if tmp.Storage != "" {
		cfg.Storage = tmp.Storage
	}
	if tmp.DataDir != "" {
		cfg.DataDir = tmp.DataDir
	}
	if tmp.JournalDir != "" {
		cfg.JournalDir = tmp.JournalDir
	}
	if tmp.RedisAddr != "" {
		cfg.RedisAddr = tmp.RedisAddr
	}
	if tmp.RedisDB != 0 {
		cfg.RedisDB = tmp.RedisDB
	}
	if tmp.ConfirmWindow != 0 {
		cfg.ConfirmWindow = tmp.ConfirmWindow
	}

	return nil
}
