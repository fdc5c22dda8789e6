package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "RESULTADOS_"
	envFileKey = "RESULTADOS_CONFIG"
)

type Config struct {
	Addr        string `koanf:"addr"`
	Environment string `koanf:"env"`
	LogLevel    string `koanf:"log_level"`
	FrontendDir string `koanf:"frontend_dir"`

	// Dataset source. Postgres wins over URL, URL wins over the local file.
	DatasetPath    string        `koanf:"dataset_path"`
	DatasetURL     string        `koanf:"dataset_url"`
	DatasetTimeout time.Duration `koanf:"dataset_timeout"`

	DatabaseURL      string `koanf:"database_url"`
	DatabaseMaxConns int32  `koanf:"database_max_conns"`
	RunMigrations    bool   `koanf:"run_migrations"`
	SeedDatasetPath  string `koanf:"seed_dataset_path"`

	// Write endpoints (reload, import) require a token once JWTSecret is set.
	JWTSecret        string        `koanf:"jwt_secret"`
	AuthUser         string        `koanf:"auth_user"`
	AuthPasswordHash string        `koanf:"auth_password_hash"`
	TokenTTL         time.Duration `koanf:"token_ttl"`

	CORSOrigins        []string `koanf:"cors_origins"`
	MaxBodyBytes       int64    `koanf:"max_body_bytes"`
	RateLimitPerMinute int      `koanf:"rate_limit_per_minute"`
	MetricsEnabled     bool     `koanf:"metrics_enabled"`

	ReloadInterval       time.Duration `koanf:"reload_interval"`
	SessionIdleTTL       time.Duration `koanf:"session_idle_ttl"`
	SessionSweepInterval time.Duration `koanf:"session_sweep_interval"`
	ClearedNoticeTTL     time.Duration `koanf:"cleared_notice_ttl"`
}

// New returns the defaults every other layer overrides.
func New() Config {
	return Config{
		Addr:                 ":8080",
		Environment:          "development",
		LogLevel:             "info",
		FrontendDir:          "frontend/dist",
		DatasetPath:          "data/dados_v4.csv",
		DatasetTimeout:       15 * time.Second,
		DatabaseMaxConns:     10,
		RunMigrations:        true,
		TokenTTL:             12 * time.Hour,
		CORSOrigins:          []string{"*"},
		MaxBodyBytes:         10 << 20,
		RateLimitPerMinute:   120,
		MetricsEnabled:       true,
		SessionIdleTTL:       30 * time.Minute,
		SessionSweepInterval: 5 * time.Minute,
		ClearedNoticeTTL:     3 * time.Second,
	}
}

// Load layers defaults, an optional YAML file named by RESULTADOS_CONFIG and
// RESULTADOS_* environment variables, in that order of precedence.
func Load() (Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(envFileKey); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.CORSOrigins = splitList(cfg.CORSOrigins)
	return cfg, nil
}

// splitList flattens comma separated entries so env values like "a, b" and
// YAML lists end up the same.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.DatabaseURL == "" && c.DatasetURL == "" && strings.TrimSpace(c.DatasetPath) == "" {
		return fmt.Errorf("one of database_url, dataset_url or dataset_path is required")
	}
	if c.DatasetTimeout <= 0 {
		return fmt.Errorf("dataset_timeout must be positive")
	}
	if c.Environment == "production" && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("jwt_secret must be set in production")
	}
	if c.JWTSecret != "" && (c.AuthUser == "" || c.AuthPasswordHash == "") {
		return fmt.Errorf("auth_user and auth_password_hash are required when jwt_secret is set")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("max_body_bytes must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("rate_limit_per_minute must be positive")
	}
	if c.ClearedNoticeTTL <= 0 {
		return fmt.Errorf("cleared_notice_ttl must be positive")
	}
	if c.SessionIdleTTL <= 0 {
		return fmt.Errorf("session_idle_ttl must be positive")
	}
	return nil
}

func (c Config) AuthEnabled() bool {
	return strings.TrimSpace(c.JWTSecret) != ""
}
