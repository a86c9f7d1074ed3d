package strategy

import (
	"github.com/rxtech-lab/argo-compare/internal/indicator"
	"github.com/rxtech-lab/argo-compare/internal/signal"
	"github.com/rxtech-lab/argo-compare/internal/types"
)

type RSIParams struct {
	Period     int     `yaml:"period" json:"period" validate:"gt=0" jsonschema:"title=Period,description=Window of the gain and loss means,minimum=1,default=14"`
	Oversold   float64 `yaml:"oversold" json:"oversold" validate:"gte=0,lte=100" jsonschema:"title=Oversold,description=Entry level crossed upward,minimum=0,maximum=100,default=30"`
	Overbought float64 `yaml:"overbought" json:"overbought" validate:"gtfield=Oversold,lte=100" jsonschema:"title=Overbought,description=Exit level crossed downward,minimum=0,maximum=100,default=70"`
}

func DefaultRSIParams() RSIParams {
	return RSIParams{Period: 14, Oversold: 30, Overbought: 70}
}

// RSIStrategy enters when RSI recovers up through the oversold level
// and exits when it falls back down through the overbought level.
type RSIStrategy struct {
	name   string
	params RSIParams
}

func NewRSIStrategy(name string, params RSIParams) Strategy {
	return &RSIStrategy{name: name, params: params}
}

func newRSIFromParams(name string, raw map[string]any) (Strategy, error) {
	params, err := decodeParams(raw, DefaultRSIParams())
	if err != nil {
		return nil, err
	}

	return NewRSIStrategy(name, params), nil
}

func (s *RSIStrategy) Name() string { return s.name }

func (s *RSIStrategy) Type() types.StrategyType { return types.StrategyTypeRSI }

func (s *RSIStrategy) Rule(bars types.Bars) (signal.Rule, error) {
	rsi := indicator.NewRSI()
	if err := rsi.Config(s.params.Period); err != nil {
		return signal.Rule{}, err
	}

	out, err := rsi.Compute(bars)
	if err != nil {
		return signal.Rule{}, err
	}

	return signal.ThresholdRule(out.Value(), s.params.Oversold, s.params.Overbought), nil
}
