// Package config centralizes configuration for the demo and maintenance
// tools built on this module. All tunables are sourced from command-line
// flags with environment-variable fallbacks (12-factor friendly). Flags
// are defined first so that `-help` shows all available knobs and their
// defaults.
//
// Typical usage:
//
//	cfg := config.Load() // reads os.Args and os.Environ
//
// For tests, prefer LoadFromArgs to keep them hermetic:
//
//	fs := flag.NewFlagSet("test", flag.ContinueOnError)
//	getenv := func(k string) string { return testEnv[k] }
//	cfg := config.LoadFromArgs(fs, getenv, []string{"-db_name=shop"})
package config

import (
	"flag"
	"fmt"
	"net/url"
	"os"
)

// Config holds all process configuration derived from flags and
// environment variables. All fields are plain values so the struct can be
// safely copied and used across goroutines after construction.
type Config struct {
	// DB describes the target database. DSN is optional; when empty it is
	// built from the discrete parts below.
	DSN        string // Full Postgres DSN (optional).
	DBUser     string // Database username.
	DBPassword string // Database password.
	DBHost     string // Database host.
	DBPort     string // Database port.
	DBName     string // Database name.

	// Metrics selects an optional backend: "" (none), "prometheus", "datadog".
	MetricsBackend string
	PushgatewayURL string // Prometheus Pushgateway base URL.
	StatsdAddr     string // DogStatsD address, e.g. "127.0.0.1:8125".
}

// LoadFromArgs builds a Config by defining flags on fs, wiring each flag
// to an environment-variable fallback via getenv, and then parsing args.
// This is the most testable entry point: callers supply a private
// FlagSet, a getenv func (often backed by a map), and a synthetic arg
// slice.
//
// Precedence:
//  1. Environment values seed each flag's default.
//  2. Explicit CLI flags (in args) override the seeded defaults.
//
// The returned Config is fully populated; no further mutation occurs.
func LoadFromArgs(fs *flag.FlagSet, getenv func(string) string, args []string) *Config {
	cfg := &Config{}

	envOrDefaultFn := func(k, d string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return d
	}

	fs.StringVar(&cfg.DSN, "dsn", getenv("DB_DSN"), "Full Postgres DSN (optional; overrides discrete parts).")
	fs.StringVar(&cfg.DBUser, "db_user", envOrDefaultFn("DB_USER", "user"), "DB user")
	fs.StringVar(&cfg.DBPassword, "db_password", envOrDefaultFn("DB_PASSWORD", "password"), "DB password")
	fs.StringVar(&cfg.DBHost, "db_host", envOrDefaultFn("DB_HOST", "localhost"), "DB host")
	fs.StringVar(&cfg.DBPort, "db_port", envOrDefaultFn("DB_PORT", "5432"), "DB port")
	fs.StringVar(&cfg.DBName, "db_name", envOrDefaultFn("DB_NAME", "testdb"), "DB name")

	fs.StringVar(&cfg.MetricsBackend, "metrics", envOrDefaultFn("METRICS_BACKEND", ""), "Metrics backend: '', 'prometheus' or 'datadog'.")
	fs.StringVar(&cfg.PushgatewayURL, "pushgateway_url", getenv("PUSHGATEWAY_URL"), "Prometheus Pushgateway base URL.")
	fs.StringVar(&cfg.StatsdAddr, "statsd_addr", envOrDefaultFn("STATSD_ADDR", "127.0.0.1:8125"), "DogStatsD address.")

	if args == nil {
		args = []string{}
	}
	_ = fs.Parse(args)
	return cfg
}

// Load is the production entry point. It wires the loader to the process
// flag set (flag.CommandLine), reads environment variables via os.Getenv,
// and parses os.Args[1:] as the CLI arguments.
func Load() *Config {
	return LoadFromArgs(flag.CommandLine, os.Getenv, os.Args[1:])
}

// ConnString returns the configured DSN, or one assembled from the
// discrete DB fields when no full DSN was supplied. User and password are
// URL-escaped so punctuation-heavy passwords survive.
func (c *Config) ConnString() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s",
		url.QueryEscape(c.DBUser), url.QueryEscape(c.DBPassword),
		c.DBHost, c.DBPort, c.DBName)
}
