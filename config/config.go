package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"axiapac.com/timetrack/infrastructure/devops"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfigFile   = "TIMETRACK_CONFIG_FILE"
	EnvSSMParameter = "TIMETRACK_SSM_PARAMETER"
)

// Config holds runtime configuration for the client, the CLI and the mock
// backend. Precedence: environment, then the YAML file, then the SSM
// parameter, then defaults.
type Config struct {
	APIBaseURL string `env:"TIMETRACK_API_URL, overwrite, default=http://localhost:8000" yaml:"api_url"`
	TimeZone   string `env:"TIMETRACK_TIMEZONE, overwrite" yaml:"timezone"`
	LogLevel   string `env:"TIMETRACK_LOG_LEVEL, overwrite, default=info" yaml:"log_level"`

	SessionFile       string `env:"TIMETRACK_SESSION_FILE, overwrite" yaml:"session_file"`
	SessionDSN        string `env:"TIMETRACK_SESSION_DSN, overwrite" yaml:"session_dsn"`
	SessionPassphrase string `env:"TIMETRACK_SESSION_PASSPHRASE, overwrite" yaml:"session_passphrase"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT, overwrite" yaml:"otlp_endpoint"`

	SlackToken        string   `env:"SLACK_BOT_TOKEN, overwrite" yaml:"slack_token"`
	SlackInfoChannel  string   `env:"SLACK_INFO_CHANNEL, overwrite" yaml:"slack_info_channel"`
	SlackErrorChannel string   `env:"SLACK_ERROR_CHANNEL, overwrite" yaml:"slack_error_channel"`
	EmailFrom         string   `env:"TIMETRACK_EMAIL_FROM, overwrite" yaml:"email_from"`
	EmailTo           []string `env:"TIMETRACK_EMAIL_TO, overwrite" yaml:"email_to"`

	ExportBucket string `env:"TIMETRACK_EXPORT_BUCKET, overwrite" yaml:"export_bucket"`

	MockAddr          string        `env:"TIMETRACK_MOCK_ADDR, overwrite, default=:8000" yaml:"mock_addr"`
	MockSigningSecret string        `env:"TIMETRACK_SIGNING_SECRET, overwrite" yaml:"mock_signing_secret"`
	MockTokenTTL      time.Duration `env:"TIMETRACK_TOKEN_TTL, overwrite, default=24h" yaml:"mock_token_ttl"`
}

type Options struct {
	// DotEnv files to load first; missing files are skipped.
	DotEnv   []string
	Lookuper envconfig.Lookuper
	// Remote fetches the SSM parameter body.
	Remote func(ctx context.Context, name string) ([]byte, error)
}

func Load(ctx context.Context) (Config, error) {
	return LoadWith(ctx, Options{
		DotEnv:   []string{".env"},
		Lookuper: envconfig.OsLookuper(),
		Remote:   devops.LoadProfile,
	})
}

func LoadWith(ctx context.Context, opts Options) (Config, error) {
	for _, f := range opts.DotEnv {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	if opts.Lookuper == nil {
		opts.Lookuper = envconfig.OsLookuper()
	}

	var cfg Config

	if name, ok := opts.Lookuper.Lookup(EnvSSMParameter); ok && name != "" && opts.Remote != nil {
		body, err := opts.Remote(ctx, name)
		if err != nil {
			return Config{}, fmt.Errorf("load ssm parameter %s: %w", name, err)
		}
		if err := yaml.Unmarshal(body, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse ssm parameter %s: %w", name, err)
		}
	}

	if path, ok := opts.Lookuper.Lookup(EnvConfigFile); ok && path != "" {
		body, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(body, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: opts.Lookuper}); err != nil {
		return Config{}, err
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	return cfg, nil
}

// Location is the display time zone; the host zone when unset.
func (c Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

func (c Config) SlackEnabled() bool {
	return c.SlackToken != "" && c.SlackInfoChannel != ""
}

func (c Config) EmailEnabled() bool {
	return c.EmailFrom != "" && len(c.EmailTo) > 0
}
