// Package config loads daemon configuration from a YAML file with
// environment variable overrides. Environment wins over file, file wins over
// defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tombee/cascade/internal/builtin"
	"github.com/tombee/cascade/internal/planner"
)

// ServerConfig configures the HTTP daemon.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8399".
	Addr string `yaml:"addr"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the full daemon configuration.
type Config struct {
	Server  ServerConfig          `yaml:"server"`
	Planner planner.OllamaConfig  `yaml:"planner"`
	SMTP    builtin.SMTPConfig    `yaml:"smtp"`
	Log     LogConfig             `yaml:"log"`
	// DataDir is where save_to_file and read_from_file keep their files.
	DataDir string `yaml:"data_dir"`
	// RandomSeed makes generate_random_number deterministic when non-zero.
	RandomSeed int64 `yaml:"random_seed"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8399",
			ShutdownTimeout: 10 * time.Second,
		},
		Planner: planner.OllamaConfig{
			Host:    "http://localhost:11434",
			Model:   "mistral:7b",
			Timeout: 60 * time.Second,
		},
		SMTP: builtin.SMTPConfig{
			Host: "smtp.gmail.com",
			Port: 587,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		DataDir: "data",
	}
}

// Load reads the configuration. path may be empty, in which case only
// defaults and environment overrides apply. A missing file at an explicit
// path is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv layers environment variables over the loaded values. SMTP
// variables keep their historical names so existing deployments keep
// working.
func applyEnv(cfg *Config) {
	if v := os.Getenv("CASCADE_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("CASCADE_OLLAMA_HOST"); v != "" {
		cfg.Planner.Host = v
	}
	if v := os.Getenv("CASCADE_OLLAMA_MODEL"); v != "" {
		cfg.Planner.Model = v
	}
	if v := os.Getenv("SMTP_SERVER"); v != "" {
		cfg.SMTP.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.SMTP.Port = port
		}
	}
	if v := os.Getenv("EMAIL_USERNAME"); v != "" {
		cfg.SMTP.Username = v
	}
	if v := os.Getenv("EMAIL_PASSWORD"); v != "" {
		cfg.SMTP.Password = v
	}
	if v := os.Getenv("CASCADE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("CASCADE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func (c *Config) validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.SMTP.Port < 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("smtp.port %d out of range", c.SMTP.Port)
	}
	switch c.Log.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("log.format %q must be json or text", c.Log.Format)
	}
	return nil
}

// Mailer builds the mailer implied by the SMTP settings: a real SMTP client
// when credentials are configured, otherwise a logging stand-in.
func (c *Config) Mailer() builtin.Mailer {
	if c.SMTP.Username != "" && c.SMTP.Password != "" {
		return builtin.NewSMTPMailer(c.SMTP)
	}
	return &builtin.LogMailer{}
}
