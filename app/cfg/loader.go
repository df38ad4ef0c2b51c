package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Document configuration
	DocumentSource string `long:"document" env:"DOCUMENT_SOURCE" default:"./liveblog.html" description:"Liveblog document: a file path or an http(s) URL"`
	AuthorsPath    string `long:"authors" env:"AUTHORS_PATH" default:"./authors.csv" description:"Authors roster (.csv, .tsv or .yml)"`
	SettingsPath   string `long:"settings" env:"SETTINGS_PATH" default:"./liveblog.yml" description:"Liveblog settings file"`

	// Storage configuration
	StoreBackend  string `long:"store" env:"STORE_BACKEND" default:"sqlite" choice:"sqlite" choice:"redis" choice:"mongo" choice:"memory" description:"Backend for timestamps, pinned post and snapshots"`
	SQLitePath    string `long:"sqlite-path" env:"SQLITE_PATH" default:"./data/liveblog.db" description:"SQLite database file"`
	RedisAddr     string `long:"redis-addr" env:"REDIS_ADDR" default:"localhost:6379" description:"Redis address"`
	RedisPassword string `long:"redis-password" env:"REDIS_PASSWORD" description:"Redis password"`
	RedisDB       int    `long:"redis-db" env:"REDIS_DB" default:"0" description:"Redis database number"`
	MongoURL      string `long:"mongo-url" env:"MONGODB_URL" default:"mongodb://localhost:27017" description:"MongoDB connection string"`
	MongoDatabase string `long:"mongo-db" env:"MONGODB_DATABASE" default:"liveblog" description:"MongoDB database name"`
	SnapshotPath  string `long:"snapshot-path" env:"SNAPSHOT_PATH" description:"Keep snapshots in this JSON file instead of the store backend (optional)"`

	// Application configuration
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl           string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://live.example.com)"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"30" description:"Seconds between document reloads"`
	MemoSize          int    `long:"memo-size" env:"MEMO_SIZE" default:"16" description:"Number of parsed document revisions kept in memory"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Liveblog Comb/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DocumentSource:    raw.DocumentSource,
		AuthorsPath:       raw.AuthorsPath,
		SettingsPath:      raw.SettingsPath,
		StoreBackend:      raw.StoreBackend,
		SQLitePath:        raw.SQLitePath,
		RedisAddr:         raw.RedisAddr,
		RedisPassword:     raw.RedisPassword,
		RedisDB:           raw.RedisDB,
		MongoURL:          raw.MongoURL,
		MongoDatabase:     raw.MongoDatabase,
		SnapshotPath:      raw.SnapshotPath,
		Port:              raw.Port,
		BaseUrl:           raw.BaseUrl,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		MemoSize:          raw.MemoSize,
		APIAccessKey:      raw.APIAccessKey,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if cfg.WorkerCount < 1 {
		return nil, fmt.Errorf("worker count must be at least 1, got %d", cfg.WorkerCount)
	}
	if cfg.SchedulerInterval < 1 {
		return nil, fmt.Errorf("scheduler interval must be at least 1 second, got %d", cfg.SchedulerInterval)
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
