// Package config loads and validates the settings of an analysis run.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-astopo/pkg/validation"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// Report formats
const (
	FormatLaTeX = "latex"
	FormatTable = "table"
	FormatJSON  = "json"
)

// Formats lists the accepted report formats
var Formats = []string{FormatLaTeX, FormatTable, FormatJSON}

// Config is the full analysis configuration
type Config struct {
	Inputs  Inputs        `yaml:"inputs"`
	Tier1   Tier1Config   `yaml:"tier1"`
	Ranking RankingConfig `yaml:"ranking"`
	Cone    ConeConfig    `yaml:"cone"`
	Report  ReportConfig  `yaml:"report"`
	Export  ExportConfig  `yaml:"export"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// Inputs names the dataset files. The first four build the graph; the
// organization pair is optional.
type Inputs struct {
	Classification string `yaml:"classification" validate:"required"`
	Relationships  string `yaml:"relationships" validate:"required"`
	Prefix2ASv4    string `yaml:"prefix2as_v4" validate:"required"`
	Prefix2ASv6    string `yaml:"prefix2as_v6" validate:"required"`
	AS2Org         string `yaml:"as2org"`
	Organizations  string `yaml:"organizations"`
	// Strict makes malformed lines fatal instead of skipped
	Strict bool `yaml:"strict"`
}

type Tier1Config struct {
	MaxRejections     int  `yaml:"max_rejections" validate:"gte=0"`
	StrictDegreeOrder bool `yaml:"strict_degree_order"`
}

type RankingConfig struct {
	TopN int `yaml:"top_n" validate:"gte=1,lte=1000"`
}

type ConeConfig struct {
	Workers   int `yaml:"workers" validate:"gte=1,lte=256"`
	ChunkSize int `yaml:"chunk_size"`
}

type ReportConfig struct {
	Format string `yaml:"format" validate:"oneof=latex table json"`
	// Output is a file path; empty writes to stdout
	Output string `yaml:"output"`
}

type ExportConfig struct {
	Path     string   `yaml:"path"`
	Compress bool     `yaml:"compress"`
	S3       S3Config `yaml:"s3"`
}

// S3Config enables upload of the export when Bucket is set
type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Key      string `yaml:"key"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
	// Static credentials for S3-compatible stores; when empty the default
	// AWS credential chain is used
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=DEBUG INFO WARN ERROR debug info warn error"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Tier1: Tier1Config{
			MaxRejections: 50,
		},
		Ranking: RankingConfig{
			TopN: 15,
		},
		Cone: ConeConfig{
			Workers:   1,
			ChunkSize: 256,
		},
		Report: ReportConfig{
			Format: FormatLaTeX,
		},
		Log: LogConfig{
			Level: "INFO",
		},
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills zero-valued fields whose zero value is never meaningful
func (c *Config) ApplyDefaults() {
	defaults := Default()

	c.Ranking.TopN = validation.DefaultOrInt(c.Ranking.TopN, defaults.Ranking.TopN)
	c.Cone.Workers = validation.DefaultOrInt(c.Cone.Workers, defaults.Cone.Workers)
	c.Cone.ChunkSize = validation.DefaultOrInt(c.Cone.ChunkSize, defaults.Cone.ChunkSize)
	c.Report.Format = validation.DefaultOr(c.Report.Format, defaults.Report.Format)
	c.Log.Level = validation.DefaultOr(c.Log.Level, defaults.Log.Level)
}

// maxChunkSize bounds how many roots one worker task enriches
const maxChunkSize = 1 << 16

// Validate checks struct tags, then cross-field rules and input files
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	v := validation.NewConfigValidator("config")

	v.RangeInt("cone.chunk_size", c.Cone.ChunkSize, 1, maxChunkSize)

	v.FileExists("inputs.classification", c.Inputs.Classification).
		FileExists("inputs.relationships", c.Inputs.Relationships).
		FileExists("inputs.prefix2as_v4", c.Inputs.Prefix2ASv4).
		FileExists("inputs.prefix2as_v6", c.Inputs.Prefix2ASv6).
		FileExists("inputs.as2org", c.Inputs.AS2Org).
		FileExists("inputs.organizations", c.Inputs.Organizations)

	// Organization names need both lookup tables
	v.When(c.Inputs.AS2Org != "" || c.Inputs.Organizations != "", func(cv *validation.ConfigValidator) {
		cv.Required("inputs.as2org", c.Inputs.AS2Org).
			Required("inputs.organizations", c.Inputs.Organizations)
	})

	v.When(c.Export.S3.Bucket != "", func(cv *validation.ConfigValidator) {
		cv.Required("export.path", c.Export.Path).
			Required("export.s3.key", c.Export.S3.Key)
	})

	v.When(c.Export.S3.AccessKeyID != "" || c.Export.S3.SecretAccessKey != "", func(cv *validation.ConfigValidator) {
		cv.Required("export.s3.access_key_id", c.Export.S3.AccessKeyID).
			Required("export.s3.secret_access_key", c.Export.S3.SecretAccessKey)
	})

	if err := v.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// HasOrganizations reports whether organization enrichment is configured
func (c *Config) HasOrganizations() bool {
	return c.Inputs.AS2Org != "" && c.Inputs.Organizations != ""
}
