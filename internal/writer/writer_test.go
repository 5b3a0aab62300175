package writer

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-signal/internal/datasource"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/mocks"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type WriterTestSuite struct {
	suite.Suite
	writer *DuckDBWriter
	dir    string
	ctx    context.Context
}

func TestWriterSuite(t *testing.T) {
	suite.Run(t, new(WriterTestSuite))
}

func (suite *WriterTestSuite) SetupTest() {
	w, err := NewDuckDBWriter(nil)
	suite.Require().NoError(err)

	suite.writer = w
	suite.dir = suite.T().TempDir()
	suite.ctx = context.Background()
}

func (suite *WriterTestSuite) TearDownTest() {
	suite.NoError(suite.writer.Close())
}

func (suite *WriterTestSuite) readCSV(path string) [][]string {
	f, err := os.Open(path)
	suite.Require().NoError(err)

	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	suite.Require().NoError(err)

	return records
}

func (suite *WriterTestSuite) TestFormatFromPath() {
	f, err := FormatFromPath("out/features.PARQUET")
	suite.Require().NoError(err)
	suite.Equal(FormatParquet, f)

	f, err = FormatFromPath("forecast.csv")
	suite.Require().NoError(err)
	suite.Equal(FormatCSV, f)

	_, err = FormatFromPath("forecast.json")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *WriterTestSuite) TestSeriesRoundTrip() {
	config := mocks.DefaultConfig()
	config.Count = 50
	series := mocks.NewDataGenerator(1).Generate(config)

	path := filepath.Join(suite.dir, "nested", "series.parquet")
	suite.Require().NoError(suite.writer.WriteSeries(suite.ctx, series, path))

	source, err := datasource.NewDuckDBSource(nil)
	suite.Require().NoError(err)

	defer source.Close()

	loaded, err := source.Load(suite.ctx, path, datasource.All())
	suite.Require().NoError(err)
	suite.Require().Len(loaded, len(series))

	for i := range series {
		suite.True(series[i].Time.Equal(loaded[i].Time))
		suite.Equal(series[i].Close, loaded[i].Close)
		suite.Equal(series[i].Volume, loaded[i].Volume)
	}
}

func (suite *WriterTestSuite) TestWriteFeatures() {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	frame := &types.FeatureFrame{Names: types.FeatureNames}

	for i := range 3 {
		row := make(types.FeatureVector, len(types.FeatureNames))
		for c := range row {
			row[c] = float64(i*100 + c)
		}

		frame.Times = append(frame.Times, start.AddDate(0, 0, i))
		frame.Rows = append(frame.Rows, row)
	}

	path := filepath.Join(suite.dir, "features.csv")
	suite.Require().NoError(suite.writer.WriteFeatures(suite.ctx, frame, path))

	records := suite.readCSV(path)
	suite.Require().Len(records, 4)

	header := records[0]
	suite.Equal("id", header[0])
	suite.Equal("time", header[1])

	for i, name := range types.FeatureNames {
		suite.Equal(string(name), header[i+2])
	}

	suite.Equal("201.0", records[3][3])
}

func (suite *WriterTestSuite) TestWriteForecast() {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	forecast := types.Forecast{
		RunID: "run-1",
		Steps: []types.ForecastStep{
			{Step: 1, Time: start, Normalized: 0.5, Close: 2500},
			{Step: 2, Time: start.AddDate(0, 0, 1), Normalized: 0.55, Close: 2550},
		},
	}

	path := filepath.Join(suite.dir, "forecast.csv")
	suite.Require().NoError(suite.writer.WriteForecast(suite.ctx, forecast, path))

	records := suite.readCSV(path)
	suite.Require().Len(records, 3)
	suite.Equal([]string{"id", "run_id", "step", "time", "normalized", "close"}, records[0])
	suite.Equal("run-1", records[1][1])
	suite.Equal("2", records[2][2])
	suite.Equal("2550.0", records[2][5])

	// rewriting replaces the staged table
	forecast.Steps = forecast.Steps[:1]
	suite.Require().NoError(suite.writer.WriteForecast(suite.ctx, forecast, path))
	suite.Len(suite.readCSV(path), 2)
}

func (suite *WriterTestSuite) TestClosedWriter() {
	suite.Require().NoError(suite.writer.Close())

	err := suite.writer.WriteForecast(suite.ctx, types.Forecast{}, filepath.Join(suite.dir, "f.csv"))
	suite.True(errors.HasCode(err, errors.ErrCodeWriteFailed))
}
