package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Core settings
	WorkDir string `yaml:"work_dir"`

	// Thumbnail strip settings
	Thumbnails ThumbnailConfig `yaml:"thumbnails"`

	// Chunk marking settings
	Chunks ChunkConfig `yaml:"chunks"`

	// Seek behavior
	Seek SeekConfig `yaml:"seek"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`
}

type ThumbnailConfig struct {
	Count       int `yaml:"count"`
	Width       int `yaml:"width"`
	Height      int `yaml:"height"`
	Quality     int `yaml:"quality"`
	SettleDelay int `yaml:"settle_delay_ms"`
}

type ChunkConfig struct {
	MinLength float64 `yaml:"min_length_sec"`
	MaxLength float64 `yaml:"max_length_sec"`
}

type SeekConfig struct {
	Timeout int `yaml:"timeout_ms"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ProbePath  string `yaml:"probe_path"`
}

// SettleDelayDuration returns the settle delay as a time.Duration
func (t ThumbnailConfig) SettleDelayDuration() time.Duration {
	return time.Duration(t.SettleDelay) * time.Millisecond
}

// TimeoutDuration returns the seek timeout as a time.Duration
func (s SeekConfig) TimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Millisecond
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func defaultConfig() *Config {
	return &Config{
		WorkDir: "./work",
		Thumbnails: ThumbnailConfig{
			Count:       15,
			Width:       160,
			Height:      90,
			Quality:     70,
			SettleDelay: 30,
		},
		Chunks: ChunkConfig{
			MinLength: 2,
			MaxLength: 10,
		},
		Seek: SeekConfig{
			Timeout: 5000,
		},
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
			ProbePath:  "ffprobe",
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		"./config.yml",
		filepath.Join(os.Getenv("HOME"), ".clipbench", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
