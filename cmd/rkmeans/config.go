package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config is the run configuration. It is read from YAML and then
// overridden by any command line flag that was set explicitly.
type Config struct {
	Input      string           `yaml:"input"`
	Source     SourceConfig     `yaml:"source"`
	Format     FormatConfig     `yaml:"format"`
	Clustering ClusteringConfig `yaml:"clustering"`
	Resources  ResourceConfig   `yaml:"resources"`
	Log        LogConfig        `yaml:"log"`
}

// SourceConfig selects where the input is read from.
type SourceConfig struct {
	// Type is one of "local", "s3" or "minio".
	Type     string `yaml:"type"`
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Endpoint string `yaml:"endpoint"`
	Region   string `yaml:"region"`
	Secure   bool   `yaml:"secure"`
}

// FormatConfig describes the delimited input.
type FormatConfig struct {
	Comma   string   `yaml:"comma"`
	Header  bool     `yaml:"header"`
	Columns []int    `yaml:"columns"`
	Missing []string `yaml:"missing"`
}

// ClusteringConfig holds the clusterer parameters.
type ClusteringConfig struct {
	K             int   `yaml:"k"`
	MaxIterations int   `yaml:"max_iterations"`
	Seed          int64 `yaml:"seed"`
	Medians       bool  `yaml:"medians"`
	MedianSkip    int   `yaml:"median_skip"`
	Threads       int   `yaml:"threads"`
}

// ResourceConfig bounds memory and input throughput.
type ResourceConfig struct {
	MemoryLimitBytes   int64 `yaml:"memory_limit_bytes"`
	IOLimitBytesPerSec int64 `yaml:"io_limit_bytes_per_sec"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration used when neither a file nor
// flags say otherwise.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{Type: "local"},
		Format: FormatConfig{Comma: ","},
		Clustering: ClusteringConfig{
			MaxIterations: 100,
			Seed:          1,
			MedianSkip:    1,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// registerFlags declares the run flags. Their defaults mirror DefaultConfig.
func registerFlags(fs *pflag.FlagSet) {
	def := DefaultConfig()

	fs.String("config", "", "YAML configuration file")
	fs.String("input", "", "input blob name or file path")
	fs.Int("k", 0, "number of clusters")
	fs.Int("max-iterations", def.Clustering.MaxIterations, "iteration budget")
	fs.Int64("seed", def.Clustering.Seed, "seed for the initial center selection")
	fs.Bool("medians", false, "use k-medians with Manhattan distance")
	fs.Int("median-skip", def.Clustering.MedianSkip, "sample every n-th member when computing medians")
	fs.Int("threads", 0, "worker count (0 = GOMAXPROCS)")
	fs.String("comma", def.Format.Comma, "field delimiter")
	fs.Bool("header", false, "skip the first row")
	fs.String("log-level", def.Log.Level, "log level (debug, info, warn, error)")
	fs.String("log-format", def.Log.Format, "log format (text, json)")
	fs.String("source", def.Source.Type, "input source (local, s3, minio)")
	fs.String("bucket", "", "bucket for s3 and minio sources")
	fs.String("prefix", "", "key prefix for s3 and minio sources")
	fs.String("endpoint", "", "endpoint for s3 and minio sources")
}

// applyFlags copies every explicitly set flag into cfg.
func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "input":
			cfg.Input, err = fs.GetString(f.Name)
		case "k":
			cfg.Clustering.K, err = fs.GetInt(f.Name)
		case "max-iterations":
			cfg.Clustering.MaxIterations, err = fs.GetInt(f.Name)
		case "seed":
			cfg.Clustering.Seed, err = fs.GetInt64(f.Name)
		case "medians":
			cfg.Clustering.Medians, err = fs.GetBool(f.Name)
		case "median-skip":
			cfg.Clustering.MedianSkip, err = fs.GetInt(f.Name)
		case "threads":
			cfg.Clustering.Threads, err = fs.GetInt(f.Name)
		case "comma":
			cfg.Format.Comma, err = fs.GetString(f.Name)
		case "header":
			cfg.Format.Header, err = fs.GetBool(f.Name)
		case "log-level":
			cfg.Log.Level, err = fs.GetString(f.Name)
		case "log-format":
			cfg.Log.Format, err = fs.GetString(f.Name)
		case "source":
			cfg.Source.Type, err = fs.GetString(f.Name)
		case "bucket":
			cfg.Source.Bucket, err = fs.GetString(f.Name)
		case "prefix":
			cfg.Source.Prefix, err = fs.GetString(f.Name)
		case "endpoint":
			cfg.Source.Endpoint, err = fs.GetString(f.Name)
		}
	})
	return err
}

// Validate checks the parts of the configuration the library does not.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("input is required")
	}
	switch c.Source.Type {
	case "local":
	case "s3", "minio":
		if c.Source.Bucket == "" {
			return fmt.Errorf("source %q requires a bucket", c.Source.Type)
		}
		if c.Source.Type == "minio" && c.Source.Endpoint == "" {
			return fmt.Errorf("source %q requires an endpoint", c.Source.Type)
		}
	default:
		return fmt.Errorf("unknown source %q", c.Source.Type)
	}
	if c.Clustering.Threads < 0 {
		return fmt.Errorf("threads must be >= 0 (0 = GOMAXPROCS), got %d", c.Clustering.Threads)
	}
	if utf8.RuneCountInString(c.Format.Comma) != 1 {
		return fmt.Errorf("comma must be a single character, got %q", c.Format.Comma)
	}
	if n := len(c.Format.Columns); n != 0 && n != 2 {
		return fmt.Errorf("columns must be [first, last], got %v", c.Format.Columns)
	}
	if cols := c.Format.Columns; len(cols) == 2 {
		first, last := cols[0], cols[1]
		if first < 0 || last < 0 || (last != 0 && last <= first) {
			return fmt.Errorf("columns [%d, %d] select no column", first, last)
		}
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

func (l LogConfig) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", l.Level, err)
	}
	return level, nil
}
