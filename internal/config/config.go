package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	AuthModeCookie = "cookie"
	AuthModeHeader = "header"
)

// Config is the full runtime configuration of the tempo server and CLI.
type Config struct {
	App       AppConfig       `yaml:"app"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type AppConfig struct {
	// Env is "development" or "production". Development adds error details to
	// API responses; production marks the login cookie Secure.
	Env string `yaml:"env"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// RateLimit is requests per second per client IP; 0 disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type AuthConfig struct {
	Mode          string        `yaml:"mode"`
	CookieName    string        `yaml:"cookie_name"`
	MaxAge        time.Duration `yaml:"max_age"`
	PruneInterval time.Duration `yaml:"prune_interval"`
	// TrustedHeader names the header an upstream proxy sets to the
	// authenticated subject. Only read in header mode.
	TrustedHeader string `yaml:"trusted_header"`
	// NameHeader optionally carries a display name for auto-provisioned users.
	NameHeader string `yaml:"name_header"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type TelemetryConfig struct {
	ServiceName   string `yaml:"service_name"`
	Metrics       bool   `yaml:"metrics"`
	TraceExporter string `yaml:"trace_exporter"`
	OTLPEndpoint  string `yaml:"otlp_endpoint"`
	OTLPInsecure  bool   `yaml:"otlp_insecure"`
}

// DefaultConfig returns a development configuration with the database under
// ~/.tempo.
func DefaultConfig() Config {
	dbPath := "tempo.db"
	if home, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(home, ".tempo", "tempo.db")
	}
	return Config{
		App: AppConfig{Env: EnvDevelopment},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       20,
			RateBurst:       40,
		},
		Database: DatabaseConfig{Path: dbPath},
		Auth: AuthConfig{
			Mode:          AuthModeCookie,
			CookieName:    "sid",
			MaxAge:        5 * 24 * time.Hour,
			PruneInterval: 15 * time.Minute,
			TrustedHeader: "X-Forwarded-User",
			NameHeader:    "X-Forwarded-Preferred-Username",
		},
		Log: LogConfig{Level: "info", Format: "text"},
		Telemetry: TelemetryConfig{
			ServiceName:   "tempo",
			Metrics:       true,
			TraceExporter: "none",
			OTLPEndpoint:  "localhost:4317",
			OTLPInsecure:  true,
		},
	}
}

// Load layers an optional YAML file and TEMPO_* environment variables over
// DefaultConfig, then validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file: %w", err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	str("TEMPO_ENV", &cfg.App.Env)
	str("TEMPO_ADDR", &cfg.Server.Addr)
	str("TEMPO_DB", &cfg.Database.Path)
	str("TEMPO_AUTH_MODE", &cfg.Auth.Mode)
	str("TEMPO_AUTH_TRUSTED_HEADER", &cfg.Auth.TrustedHeader)
	str("TEMPO_LOG_LEVEL", &cfg.Log.Level)
	str("TEMPO_LOG_FORMAT", &cfg.Log.Format)
	str("TEMPO_TRACE_EXPORTER", &cfg.Telemetry.TraceExporter)
	str("TEMPO_OTLP_ENDPOINT", &cfg.Telemetry.OTLPEndpoint)

	if v := os.Getenv("TEMPO_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("TEMPO_RATE_LIMIT: %w", err)
		}
		cfg.Server.RateLimit = f
	}
	if v := os.Getenv("TEMPO_METRICS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TEMPO_METRICS: %w", err)
		}
		cfg.Telemetry.Metrics = b
	}
	if v := os.Getenv("TEMPO_AUTH_MAX_AGE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TEMPO_AUTH_MAX_AGE: %w", err)
		}
		cfg.Auth.MaxAge = d
	}
	return nil
}

func (c Config) Validate() error {
	var problems []string
	switch c.App.Env {
	case EnvDevelopment, EnvProduction:
	default:
		problems = append(problems, fmt.Sprintf("app.env must be %q or %q", EnvDevelopment, EnvProduction))
	}
	if c.Server.Addr == "" {
		problems = append(problems, "server.addr is required")
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		problems = append(problems, "server.rate_limit and server.rate_burst must not be negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		problems = append(problems, "server.shutdown_timeout must be positive")
	}
	if c.Database.Path == "" {
		problems = append(problems, "database.path is required")
	}
	switch c.Auth.Mode {
	case AuthModeCookie:
		if c.Auth.CookieName == "" || c.Auth.MaxAge <= 0 {
			problems = append(problems, "auth.cookie_name and a positive auth.max_age are required in cookie mode")
		}
		if c.Auth.PruneInterval <= 0 {
			problems = append(problems, "auth.prune_interval must be positive in cookie mode")
		}
	case AuthModeHeader:
		if c.Auth.TrustedHeader == "" {
			problems = append(problems, "auth.trusted_header is required in header mode")
		}
	default:
		problems = append(problems, fmt.Sprintf("auth.mode must be %q or %q", AuthModeCookie, AuthModeHeader))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		problems = append(problems, "log.format must be text or json")
	}
	switch c.Telemetry.TraceExporter {
	case "none", "stdout", "otlp":
	default:
		problems = append(problems, "telemetry.trace_exporter must be none, stdout or otlp")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c Config) IsDevelopment() bool { return c.App.Env == EnvDevelopment }

func (c Config) IsProduction() bool { return c.App.Env == EnvProduction }
