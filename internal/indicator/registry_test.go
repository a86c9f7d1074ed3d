package indicator

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-compare/internal/types"
	"github.com/rxtech-lab/argo-compare/pkg/errors"
)

type RegistryTestSuite struct {
	suite.Suite
	registry IndicatorRegistry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (suite *RegistryTestSuite) SetupTest() {
	suite.registry = NewIndicatorRegistry()
}

func (suite *RegistryTestSuite) TestRegisterAndLookup() {
	suite.Require().NoError(suite.registry.RegisterIndicator(NewRSI()))

	rsi, err := suite.registry.GetIndicator(types.IndicatorTypeRSI)
	suite.Require().NoError(err)
	suite.Equal(types.IndicatorTypeRSI, rsi.Name())
}

func (suite *RegistryTestSuite) TestRegisterDuplicate() {
	suite.Require().NoError(suite.registry.RegisterIndicator(NewMA()))

	err := suite.registry.RegisterIndicator(NewMA())
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorAlreadyExists))
}

func (suite *RegistryTestSuite) TestLookupMissing() {
	_, err := suite.registry.GetIndicator(types.IndicatorTypeAO)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorNotFound))
}

func (suite *RegistryTestSuite) TestListIsSorted() {
	for _, ind := range []Indicator{NewRSI(), NewEMA(), NewMACD()} {
		suite.Require().NoError(suite.registry.RegisterIndicator(ind))
	}

	suite.Equal([]types.IndicatorType{types.IndicatorTypeEMA, types.IndicatorTypeMACD, types.IndicatorTypeRSI},
		suite.registry.ListIndicators())
}

func (suite *RegistryTestSuite) TestDefaultRegistry() {
	registry := NewDefaultIndicatorRegistry()

	suite.Len(registry.ListIndicators(), 7)

	macd, err := registry.GetIndicator(types.IndicatorTypeMACD)
	suite.Require().NoError(err)
	suite.IsType(&MACD{}, macd)

	bands, err := registry.GetIndicator(types.IndicatorTypeBollingerBands)
	suite.Require().NoError(err)
	suite.IsType(&BollingerBands{}, bands)
}

func (suite *RegistryTestSuite) TestConcurrentLookups() {
	registry := NewDefaultIndicatorRegistry()
	done := make(chan error, 8)

	for range 8 {
		go func() {
			_, err := registry.GetIndicator(types.IndicatorTypeEMA)
			done <- err
		}()
	}

	for range 8 {
		suite.NoError(<-done)
	}
}
