package engine

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-compare/internal/logger"
	"github.com/rxtech-lab/argo-compare/internal/strategy"
	"github.com/rxtech-lab/argo-compare/internal/version"
	"github.com/rxtech-lab/argo-compare/pkg/errors"
)

type ComparisonEngineV1Config struct {
	Version     string                     `yaml:"version" json:"version" validate:"required" jsonschema:"title=Version,description=Engine version the config was written for; major and minor must match"`
	Symbol      string                     `yaml:"symbol" json:"symbol" jsonschema:"title=Symbol,description=Ticker of the instrument shown in the report"`
	DataPath    string                     `yaml:"data_path" json:"data_path" jsonschema:"title=Data Path,description=CSV or Parquet file with Date/Open/High/Low/Close/Volume columns"`
	StartTime   optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional first date of the evaluated history"`
	EndTime     optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional last date of the evaluated history"`
	Rank        bool                       `yaml:"rank" json:"rank" jsonschema:"title=Rank,description=Sort results by cumulative return, best first"`
	Parallelism int                        `yaml:"parallelism" json:"parallelism" validate:"gte=0" jsonschema:"title=Parallelism,description=Maximum number of strategies evaluated at once; 0 means unlimited,minimum=0"`
	Output      string                     `yaml:"output" json:"output" jsonschema:"title=Output,description=Optional path of the YAML report"`
	LogLevel    string                     `yaml:"log_level" json:"log_level" validate:"omitempty,oneof=debug info warn error" jsonschema:"title=Log Level,enum=debug,enum=info,enum=warn,enum=error"`
	Strategies  []strategy.Config          `yaml:"strategies" json:"strategies" validate:"dive" jsonschema:"title=Strategies,description=Strategies to compare; defaults to MACD/AO/Bollinger"`
}

// yamlConfig is the on-disk shape of ComparisonEngineV1Config; dates are plain YAML timestamps.
type yamlConfig struct {
	Version     string            `yaml:"version"`
	Symbol      string            `yaml:"symbol,omitempty"`
	DataPath    string            `yaml:"data_path,omitempty"`
	StartTime   *time.Time        `yaml:"start_time,omitempty"`
	EndTime     *time.Time        `yaml:"end_time,omitempty"`
	Rank        bool              `yaml:"rank"`
	Parallelism int               `yaml:"parallelism"`
	Output      string            `yaml:"output,omitempty"`
	LogLevel    string            `yaml:"log_level,omitempty"`
	Strategies  []strategy.Config `yaml:"strategies"`
}

// UnmarshalYAML implements custom unmarshaling for ComparisonEngineV1Config
func (c *ComparisonEngineV1Config) UnmarshalYAML(value *yaml.Node) error {
	config := yamlConfig{
		Version:     c.Version,
		Symbol:      c.Symbol,
		DataPath:    c.DataPath,
		Rank:        c.Rank,
		Parallelism: c.Parallelism,
		Output:      c.Output,
		LogLevel:    c.LogLevel,
		Strategies:  nil,
	}

	if err := value.Decode(&config); err != nil {
		return err
	}

	c.Version = config.Version
	c.Symbol = config.Symbol
	c.DataPath = config.DataPath
	c.Rank = config.Rank
	c.Parallelism = config.Parallelism
	c.Output = config.Output
	c.LogLevel = config.LogLevel

	if config.StartTime != nil {
		c.StartTime = optional.Some(*config.StartTime)
	}

	if config.EndTime != nil {
		c.EndTime = optional.Some(*config.EndTime)
	}

	if len(config.Strategies) > 0 {
		c.Strategies = config.Strategies
	}

	return nil
}

// MarshalYAML writes the optional dates as timestamps and leaves them out when unset.
func (c ComparisonEngineV1Config) MarshalYAML() (interface{}, error) {
	config := yamlConfig{
		Version:     c.Version,
		Symbol:      c.Symbol,
		DataPath:    c.DataPath,
		StartTime:   nil,
		EndTime:     nil,
		Rank:        c.Rank,
		Parallelism: c.Parallelism,
		Output:      c.Output,
		LogLevel:    c.LogLevel,
		Strategies:  c.Strategies,
	}

	if c.StartTime.IsSome() {
		start := c.StartTime.Unwrap()
		config.StartTime = &start
	}

	if c.EndTime.IsSome() {
		end := c.EndTime.Unwrap()
		config.EndTime = &end
	}

	return config, nil
}

// ParseConfig decodes YAML content over EmptyConfig and validates the result.
func ParseConfig(content string) (ComparisonEngineV1Config, error) {
	config := EmptyConfig()
	if err := yaml.Unmarshal([]byte(content), &config); err != nil {
		return config, errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to parse config", err)
	}

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

// Validate checks field constraints, the configured strategies and the version.
func (c *ComparisonEngineV1Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "config validation failed", err)
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && c.EndTime.Unwrap().Before(c.StartTime.Unwrap()) {
		return errors.Newf(errors.ErrCodeBacktestConfigError, "end_time %s is before start_time %s",
			c.EndTime.Unwrap().Format(time.DateOnly), c.StartTime.Unwrap().Format(time.DateOnly))
	}

	if len(c.Strategies) == 0 {
		return errors.New(errors.ErrCodeBacktestNoStrategies, "no strategies configured")
	}

	for _, s := range c.Strategies {
		if !strategy.IsSupported(s.Type) {
			return errors.Newf(errors.ErrCodeUnsupportedStrategy,
				"unsupported strategy type %q, expected one of %v", s.Type, strategy.SupportedTypes())
		}
	}

	names := lo.Map(c.Strategies, func(s strategy.Config, _ int) string { return s.DisplayName() })
	if duplicates := lo.FindDuplicates(names); len(duplicates) > 0 {
		return errors.Newf(errors.ErrCodeStrategyAlreadyExists, "duplicate strategy names: %v", duplicates)
	}

	if err := version.CheckVersionCompatibility(version.GetVersion(), c.Version); err != nil {
		return errors.Wrap(errors.ErrCodeVersionMismatch, "config version is not supported by this engine", err)
	}

	return nil
}

// Logger builds the logger for the configured level.
func (c *ComparisonEngineV1Config) Logger() (*logger.Logger, error) {
	if c.LogLevel == "" {
		return logger.NewLogger()
	}

	level, err := logger.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBacktestConfigError, "invalid log level", err)
	}

	return logger.NewLoggerWithLevel(level)
}

// GenerateSchema generates a JSON schema for the ComparisonEngineV1Config
func (c *ComparisonEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date",
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "comparison-engine-v1-config"
	schema.Description = "Configuration schema for ComparisonEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the ComparisonEngineV1Config
func (c *ComparisonEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

func TestConfig(startTime time.Time, endTime time.Time, strategies ...strategy.Config) ComparisonEngineV1Config {
	config := EmptyConfig()
	config.Symbol = "TEST"
	config.StartTime = optional.Some(startTime)
	config.EndTime = optional.Some(endTime)

	if len(strategies) > 0 {
		config.Strategies = strategies
	}

	return config
}

// EmptyConfig returns a ComparisonEngineV1Config with default values
func EmptyConfig() ComparisonEngineV1Config {
	return ComparisonEngineV1Config{
		Version:     version.GetVersion(),
		Symbol:      "",
		DataPath:    "",
		StartTime:   optional.None[time.Time](),
		EndTime:     optional.None[time.Time](),
		Rank:        false,
		Parallelism: 0,
		Output:      "",
		LogLevel:    "",
		Strategies:  strategy.DefaultConfigs(),
	}
}
