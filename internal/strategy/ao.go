package strategy

import (
	"github.com/rxtech-lab/argo-compare/internal/indicator"
	"github.com/rxtech-lab/argo-compare/internal/signal"
	"github.com/rxtech-lab/argo-compare/internal/types"
)

type AOParams struct {
	Fast int `yaml:"fast" json:"fast" validate:"gt=0" jsonschema:"title=Fast Period,description=Window of the fast median price SMA,minimum=1,default=5"`
	Slow int `yaml:"slow" json:"slow" validate:"gtfield=Fast" jsonschema:"title=Slow Period,description=Window of the slow median price SMA,minimum=2,default=34"`
}

func DefaultAOParams() AOParams {
	return AOParams{Fast: 5, Slow: 34}
}

// AOStrategy is LONG after the Awesome Oscillator crosses above zero and FLAT after it crosses below.
type AOStrategy struct {
	name   string
	params AOParams
}

func NewAOStrategy(name string, params AOParams) Strategy {
	return &AOStrategy{name: name, params: params}
}

func newAOFromParams(name string, raw map[string]any) (Strategy, error) {
	params, err := decodeParams(raw, DefaultAOParams())
	if err != nil {
		return nil, err
	}

	return NewAOStrategy(name, params), nil
}

func (s *AOStrategy) Name() string { return s.name }

func (s *AOStrategy) Type() types.StrategyType { return types.StrategyTypeAO }

func (s *AOStrategy) Rule(bars types.Bars) (signal.Rule, error) {
	ao := indicator.NewAO()
	if err := ao.Config(s.params.Fast, s.params.Slow); err != nil {
		return signal.Rule{}, err
	}

	out, err := ao.Compute(bars)
	if err != nil {
		return signal.Rule{}, err
	}

	return signal.LevelRule(out.Value(), 0), nil
}
