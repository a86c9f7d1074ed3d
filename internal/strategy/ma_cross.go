package strategy

import (
	"github.com/rxtech-lab/argo-compare/internal/indicator"
	"github.com/rxtech-lab/argo-compare/internal/signal"
	"github.com/rxtech-lab/argo-compare/internal/types"
)

type MACrossParams struct {
	Fast int `yaml:"fast" json:"fast" validate:"gt=0" jsonschema:"title=Fast Period,description=Window of the fast close SMA,minimum=1,default=5"`
	Slow int `yaml:"slow" json:"slow" validate:"gtfield=Fast" jsonschema:"title=Slow Period,description=Window of the slow close SMA,minimum=2,default=20"`
}

func DefaultMACrossParams() MACrossParams {
	return MACrossParams{Fast: 5, Slow: 20}
}

// MACrossStrategy is LONG after the fast close SMA crosses above the slow one.
type MACrossStrategy struct {
	name   string
	params MACrossParams
}

func NewMACrossStrategy(name string, params MACrossParams) Strategy {
	return &MACrossStrategy{name: name, params: params}
}

func newMACrossFromParams(name string, raw map[string]any) (Strategy, error) {
	params, err := decodeParams(raw, DefaultMACrossParams())
	if err != nil {
		return nil, err
	}

	return NewMACrossStrategy(name, params), nil
}

func (s *MACrossStrategy) Name() string { return s.name }

func (s *MACrossStrategy) Type() types.StrategyType { return types.StrategyTypeMACross }

func (s *MACrossStrategy) Rule(bars types.Bars) (signal.Rule, error) {
	fast, err := s.sma(bars, s.params.Fast)
	if err != nil {
		return signal.Rule{}, err
	}

	slow, err := s.sma(bars, s.params.Slow)
	if err != nil {
		return signal.Rule{}, err
	}

	return signal.CrossoverRule(fast, slow), nil
}

func (s *MACrossStrategy) sma(bars types.Bars, period int) (types.Series, error) {
	ma := indicator.NewMA()
	if err := ma.Config(period); err != nil {
		return nil, err
	}

	out, err := ma.Compute(bars)
	if err != nil {
		return nil, err
	}

	return out.Value(), nil
}
