package types

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type MarketTestSuite struct {
	suite.Suite
	start time.Time
}

func TestMarketSuite(t *testing.T) {
	suite.Run(t, new(MarketTestSuite))
}

func (suite *MarketTestSuite) SetupTest() {
	suite.start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

func (suite *MarketTestSuite) series(closes ...float64) PriceSeries {
	s := make(PriceSeries, len(closes))
	for i, c := range closes {
		s[i] = MarketData{Time: suite.start.AddDate(0, 0, i), Close: c}
	}

	return s
}

func (suite *MarketTestSuite) TestValidate() {
	suite.NoError(suite.series(1, 2, 3).Validate())
	suite.NoError(PriceSeries{}.Validate())

	suite.True(errors.HasCode(suite.series(1, 0, 3).Validate(), errors.ErrCodeInvalidSeries))
	suite.True(errors.HasCode(suite.series(1, math.NaN()).Validate(), errors.ErrCodeInvalidSeries))

	unordered := suite.series(1, 2)
	unordered[1].Time = unordered[0].Time
	suite.True(errors.HasCode(unordered.Validate(), errors.ErrCodeInvalidSeries))
}

func (suite *MarketTestSuite) TestAppendDoesNotMutate() {
	s := suite.series(1, 2)
	extended := s.Append(MarketData{Time: suite.start.AddDate(0, 0, 2), Close: 3})

	suite.Len(s, 2)
	suite.Len(extended, 3)

	extended[0].Close = 100
	suite.Equal(1.0, s[0].Close)
}

func (suite *MarketTestSuite) TestCloneAndLast() {
	s := suite.series(1, 2, 3)
	c := s.Clone()
	c[2].Close = 9

	last, ok := s.Last()
	suite.True(ok)
	suite.Equal(3.0, last.Close)

	_, ok = PriceSeries{}.Last()
	suite.False(ok)

	suite.Equal([]float64{1, 2, 3}, s.Closes())
}

func (suite *MarketTestSuite) TestColumnsDropAbsentData() {
	cols := suite.series(1, 2, 3).Columns()

	suite.Equal([]float64{1, 2, 3}, cols.Close)
	suite.False(cols.HasHighLow())
	suite.False(cols.HasVolume())

	s := suite.series(1, 2)
	s[0].High, s[0].Low, s[0].Volume = 2, 0.5, 10
	s[1].High, s[1].Low = 3, 1.5

	cols = s.Columns()
	suite.True(cols.HasHighLow())
	suite.True(cols.HasVolume())
	suite.Equal([]float64{10, 0}, cols.Volume)
}

func (suite *MarketTestSuite) TestColumnsValidate() {
	suite.NoError(Columns{Close: []float64{1, 2}}.Validate())

	err := Columns{Close: []float64{1, 2}, High: []float64{1}}.Validate()
	suite.True(errors.HasCode(err, errors.ErrCodeMismatchedLength))

	err = Columns{Close: []float64{1, math.Inf(1)}}.Validate()
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidSeries))
}

func (suite *MarketTestSuite) TestFeatureFrameJSON() {
	frame := &FeatureFrame{
		Names: FeatureNames,
		Times: []time.Time{suite.start},
		Rows:  []FeatureVector{make(FeatureVector, len(FeatureNames))},
	}

	b, err := json.Marshal(frame)
	suite.Require().NoError(err)

	var decoded struct {
		Features []string `json:"features"`
		Rows     []struct {
			Time   time.Time `json:"time"`
			Values []float64 `json:"values"`
		} `json:"rows"`
	}
	suite.Require().NoError(json.Unmarshal(b, &decoded))
	suite.Equal("close", decoded.Features[0])
	suite.Len(decoded.Rows, 1)
	suite.True(suite.start.Equal(decoded.Rows[0].Time))

	tail := frame.Tail(5)
	suite.Equal(1, tail.Len())
}
