// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON config file and
// environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/atinyakov/taskly/internal/auth"
)

// Options holds the configuration values for the server.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"port"`

	// DatabaseDSN holds the database connection string. An empty DSN selects
	// the in-memory store.
	DatabaseDSN string `json:"database_dsn"`

	// Config is the path to the Config file.
	Config string `json:"-"`

	// JWTSecret is the HMAC key used to sign bearer tokens.
	JWTSecret string `json:"jwt_secret"`

	// LogLevel is the zap log level ("debug", "info", ...).
	LogLevel string `json:"log_level"`

	// BcryptCost is the password hashing work factor.
	BcryptCost int `json:"bcrypt_cost"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string `json:"cors_origins"`
}

// ErrNoSecret is returned when no token signing secret was configured.
var ErrNoSecret = errors.New("jwt secret is required (-s or JWT_SECRET)")

// Parse parses the command-line flags, config file and environment variables.
// Precedence, lowest first: flag defaults and values, config file, environment.
func Parse() (*Options, error) {
	return parse(os.Args[0], os.Args[1:], os.LookupEnv)
}

func parse(name string, args []string, lookupEnv func(string) (string, bool)) (*Options, error) {
	options := &Options{}
	var origins string

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&options.DatabaseDSN, "d", "", "db address (empty: in-memory store)")
	fs.StringVar(&options.Config, "config", "config.json", "path to config file")
	fs.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	fs.StringVar(&options.JWTSecret, "s", "", "secret used to sign tokens")
	fs.StringVar(&options.LogLevel, "l", "info", "log level")
	fs.IntVar(&options.BcryptCost, "bcrypt-cost", auth.DefaultCost, "bcrypt cost factor")
	fs.StringVar(&options.TLSCert, "tls-cert", "", "path to TLS certificate")
	fs.StringVar(&options.TLSKey, "tls-key", "", "path to TLS private key")
	fs.StringVar(&origins, "cors", "http://localhost:5173", "comma-separated allowed CORS origins")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	options.CORSOrigins = splitList(origins)

	// Override flags with environment variables if set
	if configPath, ok := lookupEnv("CONFIG"); ok && configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				return nil, fmt.Errorf("error while reading config file: %w", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
		}
	}

	if v, ok := lookupEnv("SERVER_ADDRESS"); ok && v != "" {
		options.Port = v
	}
	if v, ok := lookupEnv("DATABASE_DSN"); ok && v != "" {
		options.DatabaseDSN = v
	}
	if v, ok := lookupEnv("JWT_SECRET"); ok && v != "" {
		options.JWTSecret = v
	}
	if v, ok := lookupEnv("LOG_LEVEL"); ok && v != "" {
		options.LogLevel = v
	}
	if v, ok := lookupEnv("BCRYPT_COST"); ok && v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid BCRYPT_COST %q: %w", v, err)
		}
		options.BcryptCost = cost
	}
	if v, ok := lookupEnv("CORS_ORIGINS"); ok && v != "" {
		options.CORSOrigins = splitList(v)
	}

	if options.JWTSecret == "" {
		return nil, ErrNoSecret
	}
	return options, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
