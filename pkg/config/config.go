// Package config loads apidash settings from config.yml, a .env file and
// APIDASH_ prefixed environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	dashboard "github.com/goliatone/go-apidash/components/dashboard"
	"github.com/goliatone/go-apidash/pkg/logging"
)

// EnvPrefix prefixes every environment override, e.g. APIDASH_SERVER_ADDR.
const EnvPrefix = "APIDASH"

// Transport names accepted by server.transport.
const (
	TransportChi   = "chi"
	TransportFiber = "fiber"
)

// Config is the full apidash configuration.
type Config struct {
	Name      string              `yaml:"name" mapstructure:"name" validate:"required"`
	Server    ServerConfig        `yaml:"server" mapstructure:"server"`
	HTTP      HTTPConfig          `yaml:"http" mapstructure:"http"`
	Storage   StorageConfig       `yaml:"storage" mapstructure:"storage"`
	Dashboard DashboardConfig     `yaml:"dashboard" mapstructure:"dashboard"`
	Endpoints dashboard.Endpoints `yaml:"endpoints" mapstructure:"endpoints"`
	Logging   logging.Config      `yaml:"logging" mapstructure:"logging"`
}

// ServerConfig configures the listeners.
type ServerConfig struct {
	Addr      string `yaml:"addr" mapstructure:"addr" validate:"required"`
	Transport string `yaml:"transport" mapstructure:"transport" validate:"oneof=chi fiber"`
	BasePath  string `yaml:"base_path" mapstructure:"base_path"`
	// MetricsAddr serves /metrics on its own listener; empty disables it.
	MetricsAddr string `yaml:"metrics_addr" mapstructure:"metrics_addr"`
}

// HTTPConfig configures the outbound client used by every widget.
type HTTPConfig struct {
	// Timeout of zero leaves requests unbounded.
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	UserAgent string        `yaml:"user_agent" mapstructure:"user_agent"`
}

// StorageConfig locates the credential database. An empty path keeps the
// credential in memory.
type StorageConfig struct {
	CredentialsPath string `yaml:"credentials_path" mapstructure:"credentials_path"`
}

// DashboardConfig configures the page and mounted widgets.
type DashboardConfig struct {
	Title          string        `yaml:"title" mapstructure:"title"`
	Manifest       string        `yaml:"manifest" mapstructure:"manifest"`
	Widgets        []string      `yaml:"widgets" mapstructure:"widgets"`
	RegionCacheTTL time.Duration `yaml:"region_cache_ttl" mapstructure:"region_cache_ttl" validate:"gte=0"`
}

// Options overrides file discovery.
type Options struct {
	ConfigFile string
	EnvFile    string
}

// Option mutates Options.
type Option func(*Options)

// WithConfigFile loads path instead of searching for config.yml.
func WithConfigFile(path string) Option {
	return func(o *Options) { o.ConfigFile = path }
}

// WithEnvFile loads path instead of ./.env.
func WithEnvFile(path string) Option {
	return func(o *Options) { o.EnvFile = path }
}

var configSearchPaths = []string{".", "./config", "./cmd/apidash"}

// Load resolves and validates the configuration.
func Load(opts ...Option) (Config, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}

	envFile := o.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	} else if o.EnvFile != "" {
		return Config{}, fmt.Errorf("config: env file %s: %w", o.EnvFile, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if o.ConfigFile != "" {
		v.SetConfigFile(o.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, path := range configSearchPaths {
			v.AddConfigPath(path)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if o.ConfigFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	cfg.Endpoints = cfg.Endpoints.WithDefaults()
	cfg.Logging.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Name: "apidash",
		Server: ServerConfig{
			Addr:      ":8080",
			Transport: TransportChi,
		},
		HTTP:      HTTPConfig{UserAgent: "go-apidash/1.0"},
		Dashboard: DashboardConfig{Title: "API Dashboard"},
		Endpoints: dashboard.DefaultEndpoints(),
		Logging:   logging.Config{Level: "info", Format: "console", Output: "stderr"},
	}
}

func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("name", def.Name)
	v.SetDefault("server.addr", def.Server.Addr)
	v.SetDefault("server.transport", def.Server.Transport)
	v.SetDefault("server.base_path", "")
	v.SetDefault("server.metrics_addr", "")
	v.SetDefault("http.timeout", time.Duration(0))
	v.SetDefault("http.user_agent", def.HTTP.UserAgent)
	v.SetDefault("storage.credentials_path", "")
	v.SetDefault("dashboard.title", def.Dashboard.Title)
	v.SetDefault("dashboard.manifest", "")
	v.SetDefault("dashboard.widgets", []string{})
	v.SetDefault("dashboard.region_cache_ttl", time.Duration(0))
	v.SetDefault("endpoints.dog", def.Endpoints.Dog)
	v.SetDefault("endpoints.cat", def.Endpoints.Cat)
	v.SetDefault("endpoints.geocoding", def.Endpoints.Geocoding)
	v.SetDefault("endpoints.forecast", def.Endpoints.Forecast)
	v.SetDefault("endpoints.currency", def.Endpoints.Currency)
	v.SetDefault("endpoints.movies", def.Endpoints.Movies)
	v.SetDefault("endpoints.posters", def.Endpoints.Posters)
	v.SetDefault("endpoints.github", def.Endpoints.GitHub)
	v.SetDefault("endpoints.joke", def.Endpoints.Joke)
	v.SetDefault("endpoints.public_apis", def.Endpoints.PublicAPIs)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.output", def.Logging.Output)
	v.SetDefault("logging.no_color", false)
	v.SetDefault("logging.caller", false)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags and reports every failing field.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("config: validate: %w", err)
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fmt.Sprintf("%s %s", fe.Namespace(), describe(fe)))
	}
	return fmt.Errorf("config: invalid configuration: %s", strings.Join(messages, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	default:
		return "is invalid"
	}
}
