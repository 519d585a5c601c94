package trend_test

import (
	"bytes"
	"testing"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/okian/labviz/internal/domain/model"
	"github.com/okian/labviz/internal/render/trend"
)

func hiv(code string, year int, cases float64) model.NormalizedRecord {
	return model.NormalizedRecord{
		Raw: model.Record{"Code": code},
		Values: map[string]model.Value{
			"year":  model.DateValue(time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)),
			"cases": model.NumberValue(cases),
		},
	}
}

func records() []model.NormalizedRecord {
	return []model.NormalizedRecord{
		hiv("USA", 2000, 30),
		hiv("CHN", 1990, 10),
		hiv("USA", 1990, 20),
		hiv("CHN", 2000, 40),
		hiv("CHN", 2010, 50),
		hiv("FRA", 2000, 5),
		{Raw: model.Record{}, Values: map[string]model.Value{"cases": model.NumberValue(1)}},
	}
}

var opts = trend.Options{Group: "Code", X: "year", Y: "cases", Title: "HIV cases"}

func TestSeries(t *testing.T) {
	series := trend.Series(records(), opts)
	require.Len(t, series, 2)

	usa, ok := series[0].(chart.TimeSeries)
	require.True(t, ok)
	assert.Equal(t, "USA", usa.Name)
	assert.Equal(t, []float64{20, 30}, usa.YValues)
	assert.True(t, usa.XValues[0].Before(usa.XValues[1]))

	chn := series[1].(chart.TimeSeries)
	assert.Equal(t, "CHN", chn.Name)
	assert.Equal(t, []float64{10, 40, 50}, chn.YValues)
}

func TestSeriesNumericAxis(t *testing.T) {
	recs := []model.NormalizedRecord{
		{Raw: model.Record{"g": "a"}, Values: map[string]model.Value{"x": model.NumberValue(2), "y": model.NumberValue(4)}},
		{Raw: model.Record{"g": "a"}, Values: map[string]model.Value{"x": model.NumberValue(1), "y": model.NumberValue(3)}},
	}
	series := trend.Series(recs, trend.Options{Group: "g", X: "x", Y: "y"})
	require.Len(t, series, 1)
	cs, ok := series[0].(chart.ContinuousSeries)
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2}, cs.XValues)
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, trend.Render(&buf, records(), opts))
	out := buf.String()
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "USA")
	assert.Contains(t, out, "CHN")
	assert.NotContains(t, out, "FRA")
}

func TestRenderErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, trend.Render(&buf, records(), trend.Options{X: "year", Y: "cases"}), trend.ErrInvalidOptions)
	assert.ErrorIs(t, trend.Render(&buf, records()[5:], opts), trend.ErrNoSeries)
}
