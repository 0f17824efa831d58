// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port          string
	DBPath        string
	PictureDir    string
	JPEGQuality   int
	CaptureWidth  int
	CaptureHeight int
	StopTimeout   time.Duration
	StreamTick    time.Duration
	ProbeIndices  []int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DBPath:        getEnv("DB_PATH", "./data/moveright.db"),
		PictureDir:    getEnv("PICTURE_DIR", "./data/captures"),
		JPEGQuality:   getEnvInt("JPEG_QUALITY", 85),
		CaptureWidth:  getEnvInt("CAPTURE_WIDTH", 640),
		CaptureHeight: getEnvInt("CAPTURE_HEIGHT", 480),
		StopTimeout:   getEnvDuration("CAPTURE_STOP_TIMEOUT", 2*time.Second),
		StreamTick:    getEnvDuration("STREAM_TICK", 33*time.Millisecond),
		ProbeIndices:  []int{0, 1, 2},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are sane.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("JPEG_QUALITY must be in 1..100, got %d", c.JPEGQuality)
	}
	if c.CaptureWidth <= 0 || c.CaptureHeight <= 0 {
		return fmt.Errorf("capture resolution must be positive")
	}
	if c.StopTimeout <= 0 {
		return fmt.Errorf("CAPTURE_STOP_TIMEOUT must be > 0")
	}
	if c.StreamTick <= 0 {
		return fmt.Errorf("STREAM_TICK must be > 0")
	}
	if len(c.ProbeIndices) == 0 {
		return fmt.Errorf("probe index list cannot be empty")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
