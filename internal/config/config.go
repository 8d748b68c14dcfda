// Package config loads server configuration from an optional YAML file,
// with environment variables (optionally from a .env file) taking
// precedence. All LG_* variables are optional; defaults suit local
// development.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/looking-glass/backend/internal/logger"
)

// Config is the full server configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Measurement MeasurementConfig `yaml:"measurement"`
	KV          KVConfig          `yaml:"kv"`
	Nodes       NodesConfig       `yaml:"nodes"`
	Archive     ArchiveConfig     `yaml:"archive"`
	Logging     logger.Config     `yaml:"logging"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	BodyLimit    string        `yaml:"bodyLimit"`
	AllowOrigins []string      `yaml:"allowOrigins"`
}

type MeasurementConfig struct {
	BaseURL      string        `yaml:"baseUrl"`
	PollAttempts int           `yaml:"pollAttempts"`
	PollInterval time.Duration `yaml:"pollInterval"`
}

// KVConfig selects and configures the durable backend. Backend is "nats",
// "sqlite" or "" (no backend; log endpoints fail fast).
type KVConfig struct {
	Backend    string `yaml:"backend"`
	NatsURL    string `yaml:"natsUrl"`
	NatsBucket string `yaml:"natsBucket"`
	SqlitePath string `yaml:"sqlitePath"`
}

type NodesConfig struct {
	CatalogPath string `yaml:"catalogPath"`
}

// ArchiveConfig enables the trimmed-entry archive when Path is set.
type ArchiveConfig struct {
	Path string `yaml:"path"`
}

// Load reads the YAML file at path (skipped when path is empty or the file
// does not exist), then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load(".env")

	applyEnv(cfg)

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			BodyLimit:    "64K",
			AllowOrigins: []string{"*"},
		},
		Measurement: MeasurementConfig{
			BaseURL:      "https://api.globalping.io/v1",
			PollAttempts: 60,
			PollInterval: 2 * time.Second,
		},
		KV: KVConfig{
			Backend:    "sqlite",
			NatsBucket: "lookingglass",
			SqlitePath: "./data/lookingglass.db",
		},
		Nodes: NodesConfig{
			CatalogPath: "./data/nodes.yaml",
		},
		Logging: logger.Config{
			Level: "info",
		},
	}
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Addr, "LG_ADDR")
	setDuration(&cfg.Server.ReadTimeout, "LG_READ_TIMEOUT")
	setDuration(&cfg.Server.WriteTimeout, "LG_WRITE_TIMEOUT")
	setString(&cfg.Server.BodyLimit, "LG_BODY_LIMIT")

	if v, ok := os.LookupEnv("LG_ALLOW_ORIGINS"); ok {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}

		cfg.Server.AllowOrigins = origins
	}

	setString(&cfg.Measurement.BaseURL, "LG_MEASUREMENT_URL")
	setInt(&cfg.Measurement.PollAttempts, "LG_POLL_ATTEMPTS")
	setDuration(&cfg.Measurement.PollInterval, "LG_POLL_INTERVAL")

	setString(&cfg.KV.Backend, "LG_KV_BACKEND")
	setString(&cfg.KV.NatsURL, "LG_NATS_URL")
	setString(&cfg.KV.NatsBucket, "LG_NATS_BUCKET")
	setString(&cfg.KV.SqlitePath, "LG_SQLITE_PATH")

	setString(&cfg.Nodes.CatalogPath, "LG_NODES_PATH")
	setString(&cfg.Archive.Path, "LG_ARCHIVE_PATH")
	setString(&cfg.Logging.Level, "LG_LOG_LEVEL")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = cast.ToString(v)
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = cast.ToInt(v)
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(cast.ToString(v)); err == nil {
			*dst = d
		}
	}
}
