package config

// DedupConfig holds the duplicate-predicate tolerances
type DedupConfig struct {
	WindowSeconds     float64 `yaml:"window_seconds" validate:"gte=0"`
	CoordinateEpsilon float64 `yaml:"coordinate_epsilon" validate:"gte=0"`
	HistoryDepth      int     `yaml:"history_depth" validate:"gte=0"`
}

// LogConfig holds logging configuration. When FilePath is set, log
// output is also rotated into that file.
type LogConfig struct {
	Level      string `yaml:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR"`
	FilePath   string `yaml:"file_path"`
	MaxAgeDays int    `yaml:"max_age_days" validate:"gte=0"`
}

// OutputConfig selects the default serialization of the accepted stream
type OutputConfig struct {
	Format      string `yaml:"format" validate:"omitempty,oneof=csv gtfsrt siri"`
	ProducerRef string `yaml:"producer_ref"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Dedup  DedupConfig  `yaml:"dedup"`
	Log    LogConfig    `yaml:"log"`
	Output OutputConfig `yaml:"output"`
}
