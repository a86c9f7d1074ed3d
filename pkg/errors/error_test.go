package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.NotNil(err)
	suite.Equal(ErrCodeInvalidParameter, err.Code)
	suite.Equal("invalid parameter", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestNewfError() {
	err := Newf(ErrCodeInvalidPeriod, "window must be a positive integer, got %d", -3)
	suite.Equal(ErrCodeInvalidPeriod, err.Code)
	suite.Equal("window must be a positive integer, got -3", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestWrapError() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeQueryFailed, "failed to read bars", cause)
	suite.Equal(ErrCodeQueryFailed, err.Code)
	suite.Equal("failed to read bars", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestWrapfError() {
	cause := errors.New("underlying error")
	err := Wrapf(ErrCodeDataNotFound, cause, "no bars in %s", "prices.csv")
	suite.Equal(ErrCodeDataNotFound, err.Code)
	suite.Equal("no bars in prices.csv", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestErrorString() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.Equal("[100] invalid parameter", err.Error())
}

func (suite *ErrorTestSuite) TestErrorStringWithCause() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeDataNotFound, "data not found", cause)
	suite.Equal("[200] data not found: underlying error", err.Error())
}

func (suite *ErrorTestSuite) TestUnwrap() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeDataNotFound, "data not found", cause)
	suite.Equal(cause, err.Unwrap())
	suite.Nil(New(ErrCodeInvalidParameter, "x").Unwrap())
}

func (suite *ErrorTestSuite) TestGetCode() {
	suite.Equal(ErrCodeInvalidParameter, GetCode(New(ErrCodeInvalidParameter, "invalid parameter")))

	cause := New(ErrCodeDataNotFound, "data not found")
	err := Wrap(ErrCodeIndicatorNotFound, "indicator not found", cause)
	// outermost code wins
	suite.Equal(ErrCodeIndicatorNotFound, GetCode(err))

	suite.Equal(ErrCodeUnknown, GetCode(errors.New("standard error")))
	suite.Equal(ErrCodeInsufficientData, GetCode(NewInsufficientDataError(2, 1, "", "short")))
	suite.Equal(ErrCodeInvalidSeries, GetCode(NewOrderError(3, "dates out of order at %d", 3)))
}

func (suite *ErrorTestSuite) TestHasCode() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.True(HasCode(err, ErrCodeInvalidParameter))
	suite.False(HasCode(err, ErrCodeDataNotFound))
}

func (suite *ErrorTestSuite) TestIsAndAs() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeDataNotFound, "data not found", cause)
	suite.True(Is(err, cause))

	var argoErr *Error
	suite.True(As(err, &argoErr))
	suite.Equal(ErrCodeDataNotFound, argoErr.Code)
}

func (suite *ErrorTestSuite) TestErrorCodeValues() {
	suite.Equal(ErrorCode(1), ErrCodeUnknown)
	suite.Equal(ErrorCode(100), ErrCodeInvalidParameter)
	suite.Equal(ErrorCode(200), ErrCodeDataNotFound)
	suite.Equal(ErrorCode(300), ErrCodeIndicatorNotFound)
	suite.Equal(ErrorCode(400), ErrCodeStrategyNotFound)
	suite.Equal(ErrorCode(609), ErrCodeBacktestStageFailed)
}

func (suite *ErrorTestSuite) TestInsufficientDataError() {
	err := NewInsufficientDataError(2, 1, "MACD", "crossover detection needs at least 2 bars")
	suite.Equal(2, err.Required)
	suite.Equal(1, err.Actual)
	suite.Equal("MACD", err.Strategy)
	suite.Equal("crossover detection needs at least 2 bars", err.Error())

	formatted := NewInsufficientDataErrorf(2, 0, "", "need %d bars, got %d", 2, 0)
	suite.Equal("need 2 bars, got 0", formatted.Message)
	suite.Equal("", formatted.Strategy)
}

func (suite *ErrorTestSuite) TestIsInsufficientDataError() {
	suite.True(IsInsufficientDataError(NewInsufficientDataError(2, 1, "", "short")))
	suite.True(IsInsufficientDataError(fmt.Errorf("derive: %w", NewInsufficientDataError(2, 1, "", "short"))))
	suite.False(IsInsufficientDataError(errors.New("standard error")))
	suite.False(IsInsufficientDataError(New(ErrCodeInvalidParameter, "invalid parameter")))
	suite.False(IsInsufficientDataError(nil))
}

func (suite *ErrorTestSuite) TestInvalidSeriesError() {
	order := NewOrderError(4, "date at index %d is not after its predecessor", 4)
	suite.Equal(InvalidSeriesReasonOrder, order.Reason)
	suite.Equal(4, order.Index)
	suite.Equal("date at index 4 is not after its predecessor", order.Error())

	length := NewLengthError(10, 9, "returns length %d does not match bars length %d", 9, 10)
	suite.Equal(InvalidSeriesReasonLength, length.Reason)
	suite.Equal(-1, length.Index)
	suite.Equal(10, length.Expected)
	suite.Equal(9, length.Actual)

	suite.True(IsInvalidSeriesError(length))
	suite.False(IsInvalidSeriesError(NewInsufficientDataError(2, 1, "", "short")))
}

func (suite *ErrorTestSuite) TestStageError() {
	cause := NewInsufficientDataError(2, 1, "RSI", "short")
	err := NewStageError("RSI", "signal", cause)
	suite.Equal("strategy RSI failed at signal stage: short", err.Error())
	suite.True(IsInsufficientDataError(err))
	suite.Equal(ErrCodeInsufficientData, GetCode(err))

	var stageErr *StageError
	suite.True(As(fmt.Errorf("run: %w", err), &stageErr))
	suite.Equal("signal", stageErr.Stage)
}
