package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Formats accepted in Config.Format.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config selects the log level and output format. When File is set, logs
// go to a size-rotated file instead of stdout.
type Config struct {
	Level      string `json:"level"`
	Format     string `json:"format"`
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// SetDefaults applies the level "info" and a format derived from APP_ENV.
func (c *Config) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = FormatJSON
		if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
			c.Format = FormatConsole
		}
	}
	if c.File != "" && c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
}

// Validate checks the level and format names.
func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if c.Format != FormatJSON && c.Format != FormatConsole {
		return fmt.Errorf("unknown log format %s", c.Format)
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return fmt.Errorf("log rotation settings must not be negative")
	}
	return nil
}

var (
	mu     sync.RWMutex
	out    io.Writer = os.Stdout
	file   *lumberjack.Logger
	format string
	level  = zerolog.InfoLevel
)

// Configure applies cfg to every logger created afterwards.
func Configure(cfg Config) error {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	lvl, _ := zerolog.ParseLevel(cfg.Level)
	mu.Lock()
	defer mu.Unlock()
	format = cfg.Format
	level = lvl
	if cfg.File != "" {
		_ = closeFile()
		file = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		out = file
	}
	return nil
}

// Close releases the log file opened by Configure, if any, and falls back
// to stdout.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	return closeFile()
}

func closeFile() error {
	if file == nil {
		return nil
	}
	err := file.Close()
	if out == io.Writer(file) {
		out = os.Stdout
	}
	file = nil
	return err
}

// SetOutput redirects loggers created afterwards to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	_ = closeFile()
	out = w
}

func settings() (io.Writer, string, zerolog.Level) {
	mu.RLock()
	defer mu.RUnlock()
	f := format
	if f == "" {
		c := Config{}
		c.SetDefaults()
		f = c.Format
	}
	return out, f, level
}
