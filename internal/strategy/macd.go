package strategy

import (
	"github.com/rxtech-lab/argo-compare/internal/indicator"
	"github.com/rxtech-lab/argo-compare/internal/signal"
	"github.com/rxtech-lab/argo-compare/internal/types"
)

type MACDParams struct {
	Fast   int `yaml:"fast" json:"fast" validate:"gt=0" jsonschema:"title=Fast Period,description=Span of the fast EMA,minimum=1,default=12"`
	Slow   int `yaml:"slow" json:"slow" validate:"gtfield=Fast" jsonschema:"title=Slow Period,description=Span of the slow EMA,minimum=2,default=26"`
	Signal int `yaml:"signal" json:"signal" validate:"gt=0" jsonschema:"title=Signal Period,description=Span of the signal EMA,minimum=1,default=9"`
}

func DefaultMACDParams() MACDParams {
	return MACDParams{Fast: 12, Slow: 26, Signal: 9}
}

// MACDStrategy is LONG after the MACD line crosses above its signal line
// and FLAT after it crosses below.
type MACDStrategy struct {
	name   string
	params MACDParams
}

func NewMACDStrategy(name string, params MACDParams) Strategy {
	return &MACDStrategy{name: name, params: params}
}

func newMACDFromParams(name string, raw map[string]any) (Strategy, error) {
	params, err := decodeParams(raw, DefaultMACDParams())
	if err != nil {
		return nil, err
	}

	return NewMACDStrategy(name, params), nil
}

func (s *MACDStrategy) Name() string { return s.name }

func (s *MACDStrategy) Type() types.StrategyType { return types.StrategyTypeMACD }

func (s *MACDStrategy) Rule(bars types.Bars) (signal.Rule, error) {
	macd := indicator.NewMACD()
	if err := macd.Config(s.params.Fast, s.params.Slow, s.params.Signal); err != nil {
		return signal.Rule{}, err
	}

	out, err := macd.Compute(bars)
	if err != nil {
		return signal.Rule{}, err
	}

	return signal.CrossoverRule(out[indicator.OutputMACD], out[indicator.OutputSignal]), nil
}
