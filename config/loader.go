package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Default returns the configuration used when no file is given. The
// dedup tolerances match the observed behavior of the NextBus servers:
// timestamps skew by up to 3 seconds across repeated reports.
func Default() AppConfig {
	return AppConfig{
		Dedup: DedupConfig{
			WindowSeconds:     3.0,
			CoordinateEpsilon: 1e-7,
			HistoryDepth:      3,
		},
		Log: LogConfig{
			Level:      "INFO",
			MaxAgeDays: 30,
		},
		Output: OutputConfig{
			Format: "csv",
		},
	}
}

// Load reads and validates the configuration at path. An empty path
// yields Default. Zero-valued fields fall back to their defaults.
func Load(path string) (AppConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	var loaded AppConfig
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return cfg, err
	}
	if err := validator.New().Struct(loaded); err != nil {
		return cfg, err
	}

	if loaded.Dedup.WindowSeconds > 0 {
		cfg.Dedup.WindowSeconds = loaded.Dedup.WindowSeconds
	}
	if loaded.Dedup.CoordinateEpsilon > 0 {
		cfg.Dedup.CoordinateEpsilon = loaded.Dedup.CoordinateEpsilon
	}
	if loaded.Dedup.HistoryDepth > 0 {
		cfg.Dedup.HistoryDepth = loaded.Dedup.HistoryDepth
	}
	if loaded.Log.Level != "" {
		cfg.Log.Level = loaded.Log.Level
	}
	cfg.Log.FilePath = loaded.Log.FilePath
	if loaded.Log.MaxAgeDays > 0 {
		cfg.Log.MaxAgeDays = loaded.Log.MaxAgeDays
	}
	if loaded.Output.Format != "" {
		cfg.Output.Format = loaded.Output.Format
	}
	cfg.Output.ProducerRef = loaded.Output.ProducerRef

	return cfg, nil
}
