// Package config defines the configuration structure for the jobsystem binary.
//
// Configuration is organized into logical sections (Pool, Server, Store) plus
// the logging settings. Defaults come from `default` struct tags applied by
// creasty/defaults; values are then read from an optional YAML file, the
// JOBSYSTEM_* environment variables and the command-line flags through viper.
//
// # Configuration Structure
//
//	Configuration
//	├── Pool           - Worker pool sizing
//	├── Server         - HTTP server settings
//	├── Store          - Execution history storage
//	├── LogFormat      - Logging format
//	└── LogLevel       - Logging verbosity
//
// # Pool Configuration
//
//	┌──────────────────┬─────────┬──────────────────────────────────────────┐
//	│ Field            │ Default │ Description                              │
//	├──────────────────┼─────────┼──────────────────────────────────────────┤
//	│ Workers          │ -1      │ Worker count, -1 for CPUs minus one      │
//	│ Name             │ "pool"  │ Prefix of worker names, metrics label    │
//	└──────────────────┴─────────┴──────────────────────────────────────────┘
//
// A worker count of 0 is valid: jobs then run on the submitting goroutine.
//
// # Server Configuration
//
//	┌──────────────────┬─────────┬────────────────────────────────────────┐
//	│ Field            │ Default │ Description                            │
//	├──────────────────┼─────────┼────────────────────────────────────────┤
//	│ ServerMode       │ "dev"   │ Server mode: "prod" or "dev"           │
//	│ HTTPPort         │ 8000    │ HTTP server listen port                │
//	└──────────────────┴─────────┴────────────────────────────────────────┘
//
// # Store Configuration
//
//	┌──────────────────┬─────────┬────────────────────────────────────────┐
//	│ Field            │ Default │ Description                            │
//	├──────────────────┼─────────┼────────────────────────────────────────┤
//	│ Path             │ ""      │ DuckDB file, empty disables history    │
//	└──────────────────┴─────────┴────────────────────────────────────────┘
//
// # Configuration File
//
//	pool:
//	  workers: 4
//	  name: batch
//	server:
//	  server_mode: prod
//	  http_port: 8080
//	store:
//	  path: /var/lib/jobsystem/history.db
//	log_level: debug
//	log_format: json
//
// # Usage Example
//
//	v := viper.New()
//	config.RegisterFlags(cmd.Flags())
//	if err := config.BindFlags(v, cmd.Flags()); err != nil {
//	    return err
//	}
//	cfg, err := config.Load(v)
//	if err != nil {
//	    return err
//	}
//	zap.S().Infow("configuration loaded", cfg.Fields()...)
package config
