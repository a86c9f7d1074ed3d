package types

type IndicatorType string

const (
	IndicatorTypeSMA            IndicatorType = "sma"
	IndicatorTypeEMA            IndicatorType = "ema"
	IndicatorTypeMACD           IndicatorType = "macd"
	IndicatorTypeAO             IndicatorType = "ao"
	IndicatorTypeBollingerBands IndicatorType = "bollinger_bands"
	IndicatorTypeRSI            IndicatorType = "rsi"
	IndicatorTypeVolatility     IndicatorType = "volatility"
)

// StrategyType names a built-in strategy.
type StrategyType string

const (
	StrategyTypeMACD      StrategyType = "macd"
	StrategyTypeAO        StrategyType = "ao"
	StrategyTypeBollinger StrategyType = "bollinger"
	StrategyTypeMACross   StrategyType = "ma_cross"
	StrategyTypeRSI       StrategyType = "rsi"
)
