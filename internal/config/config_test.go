package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.JPEGQuality != 85 {
		t.Errorf("JPEGQuality = %d, want 85", cfg.JPEGQuality)
	}
	if cfg.CaptureWidth != 640 || cfg.CaptureHeight != 480 {
		t.Errorf("resolution = %dx%d, want 640x480", cfg.CaptureWidth, cfg.CaptureHeight)
	}
	if cfg.StreamTick != 33*time.Millisecond {
		t.Errorf("StreamTick = %v, want 33ms", cfg.StreamTick)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("JPEG_QUALITY", "70")
	t.Setenv("STREAM_TICK", "50ms")
	t.Setenv("CAPTURE_STOP_TIMEOUT", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.JPEGQuality != 70 {
		t.Errorf("JPEGQuality = %d, want 70", cfg.JPEGQuality)
	}
	if cfg.StreamTick != 50*time.Millisecond {
		t.Errorf("StreamTick = %v, want 50ms", cfg.StreamTick)
	}
	if cfg.StopTimeout != 5*time.Second {
		t.Errorf("StopTimeout = %v, want 5s", cfg.StopTimeout)
	}
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("JPEG_QUALITY", "not-a-number")
	t.Setenv("STREAM_TICK", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.JPEGQuality != 85 {
		t.Errorf("JPEGQuality = %d, want default 85", cfg.JPEGQuality)
	}
	if cfg.StreamTick != 33*time.Millisecond {
		t.Errorf("StreamTick = %v, want default 33ms", cfg.StreamTick)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"Valid", func(c *Config) {}, false},
		{"EmptyPort", func(c *Config) { c.Port = "" }, true},
		{"EmptyDBPath", func(c *Config) { c.DBPath = "" }, true},
		{"QualityTooHigh", func(c *Config) { c.JPEGQuality = 101 }, true},
		{"QualityTooLow", func(c *Config) { c.JPEGQuality = 0 }, true},
		{"ZeroWidth", func(c *Config) { c.CaptureWidth = 0 }, true},
		{"ZeroTick", func(c *Config) { c.StreamTick = 0 }, true},
		{"NoProbeIndices", func(c *Config) { c.ProbeIndices = nil }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			tt.mutate(cfg)

			err = cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
