package indicator

import (
	"math"
	"testing"

	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type IndicatorInterfaceTestSuite struct {
	suite.Suite
}

func TestIndicatorInterfaceSuite(t *testing.T) {
	suite.Run(t, new(IndicatorInterfaceTestSuite))
}

func (suite *IndicatorInterfaceTestSuite) TestRequireLength() {
	suite.NoError(requireLength(types.IndicatorTypeRSI, 15, 15))

	err := requireLength(types.IndicatorTypeRSI, 10, 15)
	suite.Require().Error(err)

	var insufficient *errors.InsufficientDataError
	suite.Require().True(errors.As(err, &insufficient))
	suite.Equal(15, insufficient.Required)
	suite.Equal(10, insufficient.Actual)
	suite.Equal("rsi", insufficient.Indicator)
}

func (suite *IndicatorInterfaceTestSuite) TestRequireFinite() {
	suite.NoError(requireFinite(types.IndicatorTypeRSI, "RSI", 50))

	err := requireFinite(types.IndicatorTypeRSI, "RSI", math.NaN())
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorCalculation))

	err = requireFinite(types.IndicatorTypeRSI, "RSI", math.Inf(1))
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorCalculation))
}

func (suite *IndicatorInterfaceTestSuite) TestHistoryKeepsLastTenValidRounded() {
	values := []float64{math.NaN(), math.NaN()}
	for i := 0; i < 15; i++ {
		values = append(values, float64(i)+0.123)
	}

	got := history(values, 2)
	suite.Len(got, HistoryLength)
	suite.Equal(5.12, got[0])
	suite.Equal(14.12, got[9])
}

func (suite *IndicatorInterfaceTestSuite) TestParameterHelpers() {
	v, err := positiveInt([]any{5}, 0, "period")
	suite.NoError(err)
	suite.Equal(5, v)

	_, err = positiveInt([]any{"5"}, 0, "period")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidType))

	_, err = positiveInt([]any{0}, 0, "period")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))

	f, err := positiveFloat([]any{1.5}, 0, "ratio")
	suite.NoError(err)
	suite.Equal(1.5, f)

	_, err = positiveFloat([]any{-1.0}, 0, "ratio")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}
