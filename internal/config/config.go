// Package config holds the shared defaults of the mudra commands and the
// environment overrides they honor.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// Default artifact locations, relative to the working directory.
const (
	DataDir      = "data"
	DataPath     = "data.json"
	LabelMapPath = "label_map.json"
	ModelPath    = "model.json"
	DefaultPort  = 5000
)

// Environment variables.
const (
	EnvPort      = "PORT"
	EnvLogLevel  = "MUDRA_LOG_LEVEL"
	EnvSentryDSN = "SENTRY_DSN"
)

// Config is the runtime configuration shared by the commands.
type Config struct {
	Port         int
	LogLevel     log.Level
	SentryDSN    string
	DataDir      string
	DataPath     string
	LabelMapPath string
	ModelPath    string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:         DefaultPort,
		LogLevel:     log.InfoLevel,
		DataDir:      DataDir,
		DataPath:     DataPath,
		LabelMapPath: LabelMapPath,
		ModelPath:    ModelPath,
	}
}

// FromEnv returns Default with PORT, MUDRA_LOG_LEVEL and SENTRY_DSN applied.
func FromEnv() (Config, error) {
	c := Default()

	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return c, fmt.Errorf("invalid %s %q", EnvPort, v)
		}
		c.Port = port
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		level, err := log.ParseLevel(v)
		if err != nil {
			return c, fmt.Errorf("invalid %s: %w", EnvLogLevel, err)
		}
		c.LogLevel = level
	}
	c.SentryDSN = os.Getenv(EnvSentryDSN)

	return c, nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// SetupLogging applies the log level to the standard logger.
func (c Config) SetupLogging() {
	log.SetLevel(c.LogLevel)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}

// FindWebDir searches for the web directory in common locations.
// It checks "web", "../web", "../../web" and ~/.mudra/web, returning the
// first existing directory or "" if none is found.
func FindWebDir() string {
	candidates := []string{"web", "../web", "../../web"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".mudra", "web"))
	}

	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
