package strategy

import (
	"github.com/rxtech-lab/argo-compare/internal/indicator"
	"github.com/rxtech-lab/argo-compare/internal/signal"
	"github.com/rxtech-lab/argo-compare/internal/types"
)

type BollingerParams struct {
	Period int     `yaml:"period" json:"period" validate:"gt=1" jsonschema:"title=Period,description=Window of the mid band SMA,minimum=2,default=20"`
	StdDev float64 `yaml:"std_dev" json:"std_dev" validate:"gt=0" jsonschema:"title=Standard Deviations,description=Band width in sample standard deviations,default=2"`
}

func DefaultBollingerParams() BollingerParams {
	return BollingerParams{Period: 20, StdDev: 2}
}

// BollingerStrategy enters when the close crosses up through the lower band
// and exits when the close crosses down through the mid band.
type BollingerStrategy struct {
	name   string
	params BollingerParams
}

func NewBollingerStrategy(name string, params BollingerParams) Strategy {
	return &BollingerStrategy{name: name, params: params}
}

func newBollingerFromParams(name string, raw map[string]any) (Strategy, error) {
	params, err := decodeParams(raw, DefaultBollingerParams())
	if err != nil {
		return nil, err
	}

	return NewBollingerStrategy(name, params), nil
}

func (s *BollingerStrategy) Name() string { return s.name }

func (s *BollingerStrategy) Type() types.StrategyType { return types.StrategyTypeBollinger }

func (s *BollingerStrategy) Rule(bars types.Bars) (signal.Rule, error) {
	bb := indicator.NewBollingerBands()
	if err := bb.Config(s.params.Period, s.params.StdDev); err != nil {
		return signal.Rule{}, err
	}

	out, err := bb.Compute(bars)
	if err != nil {
		return signal.Rule{}, err
	}

	closes := bars.Closes()

	return signal.Rule{
		Entry: signal.Pair{Line: closes, Reference: out[indicator.OutputLower]},
		Exit:  signal.Pair{Line: closes, Reference: out[indicator.OutputMid]},
	}, nil
}
