package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

const (
	StateBackendPostgres = "postgres"
	StateBackendFile     = "file"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type StateConfig struct {
	Backend   string
	Dir       string
	KeyPrefix string
}

// AuthConfig enables bearer-token auth on the API when AccessSecret is set.
type AuthConfig struct {
	AccessSecret string
}

type CheckConfig struct {
	FetchTimeout time.Duration
	Concurrency  int
	// FixtureFile replaces the built-in lookup table when set.
	FixtureFile string
}

type NotifyConfig struct {
	EmailJSEndpoint string
	Timeout         time.Duration
	FromName        string
}

type SummaryConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

type Config struct {
	Environment string
	Timezone    string
	HTTP        HTTPConfig
	DB          DBConfig
	State       StateConfig
	Auth        AuthConfig
	Check       CheckConfig
	Notify      NotifyConfig
	Summary     SummaryConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		Timezone:    v.GetString("APP_TIMEZONE"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		State: StateConfig{
			Backend:   strings.ToLower(strings.TrimSpace(v.GetString("STATE_BACKEND"))),
			Dir:       v.GetString("STATE_DIR"),
			KeyPrefix: v.GetString("STATE_KEY_PREFIX"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Check: CheckConfig{
			FetchTimeout: v.GetDuration("CHECK_FETCH_TIMEOUT"),
			Concurrency:  v.GetInt("CHECK_CONCURRENCY"),
			FixtureFile:  v.GetString("CHECK_FIXTURE_FILE"),
		},
		Notify: NotifyConfig{
			EmailJSEndpoint: v.GetString("EMAILJS_ENDPOINT"),
			Timeout:         v.GetDuration("NOTIFY_TIMEOUT"),
			FromName:        v.GetString("NOTIFY_FROM_NAME"),
		},
		Summary: SummaryConfig{
			APIKey:  v.GetString("SUMMARY_API_KEY"),
			Model:   v.GetString("SUMMARY_MODEL"),
			Timeout: v.GetDuration("SUMMARY_TIMEOUT"),
		},
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Asia/Ho_Chi_Minh"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if cfg.State.Backend == "" {
		if cfg.DB.DSN != "" {
			cfg.State.Backend = StateBackendPostgres
		} else {
			cfg.State.Backend = StateBackendFile
		}
	}
	if cfg.State.Dir == "" {
		cfg.State.Dir = "./data"
	}
	if cfg.Check.FetchTimeout <= 0 {
		cfg.Check.FetchTimeout = 15 * time.Second
	}
	if cfg.Check.Concurrency <= 0 {
		cfg.Check.Concurrency = 4
	}
	if cfg.Notify.EmailJSEndpoint == "" {
		cfg.Notify.EmailJSEndpoint = "https://api.emailjs.com/api/v1.0/email/send"
	}
	if cfg.Notify.Timeout <= 0 {
		cfg.Notify.Timeout = 10 * time.Second
	}
	if cfg.Notify.FromName == "" {
		cfg.Notify.FromName = "TrafficCare PRO System"
	}
	if cfg.Summary.Model == "" {
		cfg.Summary.Model = "gemini-2.0-flash"
	}
	if cfg.Summary.Timeout <= 0 {
		cfg.Summary.Timeout = 20 * time.Second
	}
}

func validate(cfg *Config) error {
	switch cfg.State.Backend {
	case StateBackendPostgres:
		if cfg.DB.DSN == "" {
			return fmt.Errorf("DB_DSN is required when STATE_BACKEND=%s", StateBackendPostgres)
		}
	case StateBackendFile:
	default:
		return fmt.Errorf("unsupported STATE_BACKEND %q", cfg.State.Backend)
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", cfg.Timezone, err)
	}
	return nil
}

// Location returns the zone used for timestamps shown to users.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
