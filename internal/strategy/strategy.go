// Package strategy holds the built-in indicator strategies compared by the engine.
package strategy

import (
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-compare/internal/signal"
	"github.com/rxtech-lab/argo-compare/internal/types"
	"github.com/rxtech-lab/argo-compare/pkg/errors"
	pkgstrategy "github.com/rxtech-lab/argo-compare/pkg/strategy"
)

// Strategy converts price bars into an entry/exit crossover rule.
type Strategy interface {
	// Name is the configured display name, unique within a run
	Name() string
	// Type is the built-in strategy kind
	Type() types.StrategyType
	// Rule computes the indicator lines and pairs them into a crossover rule
	Rule(bars types.Bars) (signal.Rule, error)
}

// Config selects a built-in strategy and its parameters.
type Config struct {
	Name   string             `yaml:"name" json:"name" jsonschema:"title=Name,description=Display name of the strategy in the report; defaults to the type"`
	Type   types.StrategyType `yaml:"type" json:"type" validate:"required" jsonschema:"title=Type,description=Built-in strategy kind,enum=macd,enum=ao,enum=bollinger,enum=ma_cross,enum=rsi"`
	Params map[string]any     `yaml:"params,omitempty" json:"params,omitempty" jsonschema:"title=Params,description=Strategy parameters; omitted keys take their defaults"`
}

// DisplayName is the configured name, or the type when no name was given.
func (c Config) DisplayName() string {
	if c.Name == "" {
		return string(c.Type)
	}

	return c.Name
}

type factory struct {
	create func(name string, params map[string]any) (Strategy, error)
	params any
}

var validate = validator.New()

var builtins = map[types.StrategyType]factory{
	types.StrategyTypeMACD:      {create: newMACDFromParams, params: DefaultMACDParams()},
	types.StrategyTypeAO:        {create: newAOFromParams, params: DefaultAOParams()},
	types.StrategyTypeBollinger: {create: newBollingerFromParams, params: DefaultBollingerParams()},
	types.StrategyTypeMACross:   {create: newMACrossFromParams, params: DefaultMACrossParams()},
	types.StrategyTypeRSI:       {create: newRSIFromParams, params: DefaultRSIParams()},
}

// New builds the strategy described by cfg.
func New(cfg Config) (Strategy, error) {
	f, ok := builtins[cfg.Type]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeUnsupportedStrategy,
			"unsupported strategy type %q, expected one of %v", cfg.Type, SupportedTypes())
	}

	name := cfg.DisplayName()

	s, err := f.create(name, cfg.Params)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeStrategyConfigError, err, "invalid params for strategy %s", name)
	}

	return s, nil
}

// SupportedTypes lists the built-in strategy kinds in sorted order.
func SupportedTypes() []types.StrategyType {
	supported := lo.Keys(builtins)
	slices.Sort(supported)

	return supported
}

// IsSupported reports whether t names a built-in strategy.
func IsSupported(t types.StrategyType) bool {
	return lo.Contains(SupportedTypes(), t)
}

// ParamsSchema returns the JSON schema of a strategy's parameters.
func ParamsSchema(t types.StrategyType) (string, error) {
	f, ok := builtins[t]
	if !ok {
		return "", errors.Newf(errors.ErrCodeUnsupportedStrategy, "unsupported strategy type %q", t)
	}

	return pkgstrategy.ToJSONSchema(f.params)
}

// DefaultConfigs returns the classic comparison trio: MACD(12,26,9), AO(5,34) and Bollinger(20,2).
func DefaultConfigs() []Config {
	return []Config{
		{Name: "MACD", Type: types.StrategyTypeMACD},
		{Name: "AO", Type: types.StrategyTypeAO},
		{Name: "Bollinger", Type: types.StrategyTypeBollinger},
	}
}

// decodeParams overlays params onto defaults and validates the result.
func decodeParams[T any](params map[string]any, defaults T) (T, error) {
	out := defaults
	if len(params) > 0 {
		raw, err := yaml.Marshal(params)
		if err != nil {
			return out, fmt.Errorf("failed to encode params: %w", err)
		}

		if err := yaml.Unmarshal(raw, &out); err != nil {
			return out, errors.Wrap(errors.ErrCodeInvalidType, "failed to decode params", err)
		}
	}

	if err := validate.Struct(out); err != nil {
		return out, errors.Wrap(errors.ErrCodeInvalidParameter, "params validation failed", err)
	}

	return out, nil
}
