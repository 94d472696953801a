package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"photo-restorer/internal/models"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const envPrefix = "PHOTO_RESTORER_"

type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" validate:"gt=0"`
	RequestTimeout  time.Duration `yaml:"request_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
}

type WorkerConfig struct {
	Count         int `yaml:"count" validate:"gte=1,lte=256"`
	OpenCVThreads int `yaml:"opencv_threads" validate:"gte=0,lte=256"`
	GCPercent     int `yaml:"gc_percent" validate:"gte=-1"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn warning error disabled off"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

type OutputConfig struct {
	TempDir        string `yaml:"temp_dir"`
	JPEGQuality    int    `yaml:"jpeg_quality" validate:"gte=1,lte=100"`
	PNGCompression int    `yaml:"png_compression" validate:"gte=0,lte=9"`
}

// Config is the process configuration. Restore tunes the parameters of the
// full pipeline; it cannot disable stages or set a repair mask.
type Config struct {
	Server  ServerConfig      `yaml:"server"`
	Workers WorkerConfig      `yaml:"workers"`
	Log     LogConfig         `yaml:"log"`
	Output  OutputConfig      `yaml:"output"`
	Restore models.FullTuning `yaml:"restore"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8000",
			MaxUploadBytes:  32 << 20,
			RequestTimeout:  2 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Workers: WorkerConfig{
			Count:     4,
			GCPercent: 200,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Output: OutputConfig{
			JPEGQuality:    95,
			PNGCompression: 3,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path and PHOTO_RESTORER_* environment variables, in that order.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if err := c.Restore.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Server.Addr = getEnv("ADDR", cfg.Server.Addr)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)
	cfg.Output.TempDir = getEnv("TEMP_DIR", cfg.Output.TempDir)

	var err error
	if cfg.Workers.Count, err = getEnvInt("WORKERS", cfg.Workers.Count); err != nil {
		return err
	}
	if cfg.Workers.OpenCVThreads, err = getEnvInt("OPENCV_THREADS", cfg.Workers.OpenCVThreads); err != nil {
		return err
	}
	if cfg.Output.JPEGQuality, err = getEnvInt("JPEG_QUALITY", cfg.Output.JPEGQuality); err != nil {
		return err
	}

	maxUpload, err := getEnvInt("MAX_UPLOAD_BYTES", int(cfg.Server.MaxUploadBytes))
	if err != nil {
		return err
	}
	cfg.Server.MaxUploadBytes = int64(maxUpload)

	if raw, ok := os.LookupEnv(envPrefix + "REQUEST_TIMEOUT"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%sREQUEST_TIMEOUT: %w", envPrefix, err)
		}
		cfg.Server.RequestTimeout = d
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(envPrefix + key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(envPrefix + key)
	if !ok || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return n, nil
}
