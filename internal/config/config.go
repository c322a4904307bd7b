package config

import (
	"fmt"

	"github.com/creasty/defaults"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/andgen/jobsystem/internal/logger"
	"github.com/andgen/jobsystem/pkg/scheduler"
)

const (
	ServerModeDev  = "dev"
	ServerModeProd = "prod"

	// AutoWorkers sizes the pool with scheduler.IdealThreadCount.
	AutoWorkers = -1

	configFileKey = "config"
)

type Configuration struct {
	Pool      Pool   `mapstructure:"pool"`
	Server    Server `mapstructure:"server"`
	Store     Store  `mapstructure:"store"`
	LogLevel  string `mapstructure:"log_level" default:"info"`
	LogFormat string `mapstructure:"log_format" default:"console"`
}

type Pool struct {
	Workers int    `mapstructure:"workers" default:"-1"`
	Name    string `mapstructure:"name" default:"pool"`
}

type Server struct {
	ServerMode string `mapstructure:"server_mode" default:"dev"`
	HTTPPort   int    `mapstructure:"http_port" default:"8000"`
}

type Store struct {
	// Path of the DuckDB file holding the execution history. Empty disables
	// history, ":memory:" keeps it for the lifetime of the process.
	Path string `mapstructure:"path"`
}

func NewConfigurationWithDefaults() (*Configuration, error) {
	cfg := &Configuration{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to set configuration defaults: %w", err)
	}
	return cfg, nil
}

func (c *Configuration) Validate() error {
	if c.Pool.Workers < AutoWorkers {
		return fmt.Errorf("invalid worker count %d: must be %d (auto) or greater", c.Pool.Workers, AutoWorkers)
	}
	if c.Pool.Name == "" {
		return fmt.Errorf("pool name is empty")
	}
	if c.Server.ServerMode != ServerModeDev && c.Server.ServerMode != ServerModeProd {
		return fmt.Errorf("invalid server mode %q: must be %q or %q", c.Server.ServerMode, ServerModeDev, ServerModeProd)
	}
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http port %d", c.Server.HTTPPort)
	}
	if c.LogFormat != logger.FormatJSON && c.LogFormat != logger.FormatConsole {
		return fmt.Errorf("invalid log format %q: must be %q or %q", c.LogFormat, logger.FormatJSON, logger.FormatConsole)
	}
	return nil
}

// Workers resolves AutoWorkers to the ideal thread count.
func (c *Configuration) Workers() int {
	if c.Pool.Workers == AutoWorkers {
		return scheduler.IdealThreadCount()
	}
	return c.Pool.Workers
}

// Fields returns the configuration as zap key-value pairs.
func (c *Configuration) Fields() []any {
	return []any{
		"workers", c.Workers(),
		"pool", c.Pool.Name,
		"server_mode", c.Server.ServerMode,
		"http_port", c.Server.HTTPPort,
		"store", c.Store.Path,
		"log_level", c.LogLevel,
		"log_format", c.LogFormat,
	}
}

// RegisterFlags adds one flag per configuration field, defaulting to the
// configuration defaults.
func RegisterFlags(flags *pflag.FlagSet) {
	cfg, _ := NewConfigurationWithDefaults()

	flags.String(configFileKey, "", "path to a YAML configuration file")
	flags.Int("workers", cfg.Pool.Workers, "number of pool workers, -1 for one per CPU minus one")
	flags.String("pool-name", cfg.Pool.Name, "pool name used in worker names and metrics")
	flags.String("server-mode", cfg.Server.ServerMode, "server mode: dev or prod")
	flags.Int("http-port", cfg.Server.HTTPPort, "HTTP server listen port")
	flags.String("store-path", cfg.Store.Path, "DuckDB file for the execution history, empty to disable")
	flags.String("log-level", cfg.LogLevel, "log level")
	flags.String("log-format", cfg.LogFormat, "log format: console or json")
}

// BindFlags maps the flags added by RegisterFlags to their configuration keys.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	keys := map[string]string{
		configFileKey: configFileKey,
		"workers":     "pool.workers",
		"pool-name":   "pool.name",
		"server-mode": "server.server_mode",
		"http-port":   "server.http_port",
		"store-path":  "store.path",
		"log-level":   "log_level",
		"log-format":  "log_format",
	}
	for flag, key := range keys {
		f := flags.Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %q: %w", flag, err)
		}
	}
	return nil
}

// Load builds the configuration from defaults, the optional configuration
// file named by the "config" key and the values known to v, then validates it.
func Load(v *viper.Viper) (*Configuration, error) {
	cfg, err := NewConfigurationWithDefaults()
	if err != nil {
		return nil, err
	}

	if path := v.GetString(configFileKey); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
