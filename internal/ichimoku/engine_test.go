package ichimoku

import (
	"math"
	"testing"
	"time"

	"github.com/mohamedkhairy/ichimoku-cloud/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeSeries builds n deterministic daily bars starting 2024-01-02.
func makeSeries(n int) []models.Bar {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	for i := range bars {
		base := 100 + 8*math.Sin(float64(i)/5) + 0.1*float64(i)
		bars[i] = models.Bar{
			Time:   start.AddDate(0, 0, i).Format(models.TimeLayout),
			Open:   base - 1,
			High:   base + 2,
			Low:    base - 2,
			Close:  base + 1,
			Volume: float64(1000 + i),
		}
	}
	return bars
}

// aaplBars are the first five 2024 sessions of AAPL-like data.
func aaplBars() []models.Bar {
	return []models.Bar{
		{Time: "2024-01-02", Open: 185.78, High: 187.07, Low: 182.55, Close: 184.29, Volume: 82488700},
		{Time: "2024-01-03", Open: 182.88, High: 184.52, Low: 182.09, Close: 182.91, Volume: 58414500},
		{Time: "2024-01-04", Open: 180.82, High: 181.75, Low: 179.56, Close: 180.58, Volume: 71983600},
		{Time: "2024-01-05", Open: 180.66, High: 181.43, Low: 178.86, Close: 179.86, Volume: 62303300},
		{Time: "2024-01-08", Open: 180.76, High: 184.25, Low: 180.18, Close: 184.21, Volume: 59144500},
	}
}

func TestEngine_Compute_LengthInvariant(t *testing.T) {
	engine := NewEngine()
	params := models.DefaultParams()

	for _, n := range []int{1, 5, 60, 120} {
		out, err := engine.Compute(makeSeries(n), params)
		require.NoError(t, err)
		assert.Len(t, out, n+params.CloudShift, "n=%d", n)
	}
}

func TestEngine_Compute_Idempotent(t *testing.T) {
	engine := NewEngine()
	series := makeSeries(80)

	first, err := engine.Compute(series, models.DefaultParams())
	require.NoError(t, err)
	second, err := engine.Compute(series, models.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEngine_Compute_TenkanWindow(t *testing.T) {
	series := makeSeries(60)
	out, err := NewEngine().Compute(series, models.DefaultParams())
	require.NoError(t, err)

	for i := range series {
		if i < 8 {
			assert.False(t, out[i].TenkanSen.Valid, "i=%d", i)
			continue
		}
		hi := series[i-8].High
		lo := series[i-8].Low
		for _, b := range series[i-8 : i+1] {
			hi = math.Max(hi, b.High)
			lo = math.Min(lo, b.Low)
		}
		require.True(t, out[i].TenkanSen.Valid, "i=%d", i)
		assert.InDelta(t, (hi+lo)/2, out[i].TenkanSen.Float64, 1e-12, "i=%d", i)
	}
}

func TestEngine_Compute_ChikouShift(t *testing.T) {
	series := makeSeries(60)
	params := models.DefaultParams()
	out, err := NewEngine().Compute(series, params)
	require.NoError(t, err)

	for i := range out {
		j := i + params.LaggingLen
		if j < len(series) {
			require.True(t, out[i].ChikouSpan.Valid, "i=%d", i)
			assert.Equal(t, series[j].Close, out[i].ChikouSpan.Float64, "i=%d", i)
		} else {
			assert.False(t, out[i].ChikouSpan.Valid, "i=%d", i)
		}
	}
}

func TestEngine_Compute_SenkouShift(t *testing.T) {
	series := makeSeries(120)
	params := models.DefaultParams()
	out, err := NewEngine().Compute(series, params)
	require.NoError(t, err)

	for i := range out {
		j := i - params.CloudShift
		if j < 0 || j >= len(series) {
			assert.False(t, out[i].SenkouSpanA.Valid, "i=%d", i)
			assert.False(t, out[i].SenkouSpanB.Valid, "i=%d", i)
			continue
		}
		if out[j].TenkanSen.Valid && out[j].KijunSen.Valid {
			require.True(t, out[i].SenkouSpanA.Valid, "i=%d", i)
			want := (out[j].TenkanSen.Float64 + out[j].KijunSen.Float64) / 2
			assert.InDelta(t, want, out[i].SenkouSpanA.Float64, 1e-12, "i=%d", i)
		} else {
			assert.False(t, out[i].SenkouSpanA.Valid, "i=%d", i)
		}
	}

	// The forward shift lands on the synthetic tail: the last real
	// position j=len-1 plots at i=len-1+shift, the final output row.
	last := out[len(series)-1+params.CloudShift]
	assert.True(t, last.Synthetic())
	assert.True(t, last.SenkouSpanA.Valid)
	assert.True(t, last.SenkouSpanB.Valid)
}

func TestEngine_Compute_ZeroCloudShift(t *testing.T) {
	series := makeSeries(80)
	params := models.DefaultParams()
	params.CloudShift = 0
	out, err := NewEngine().Compute(series, params)
	require.NoError(t, err)
	require.Len(t, out, len(series))

	for i := range out {
		if out[i].TenkanSen.Valid && out[i].KijunSen.Valid {
			require.True(t, out[i].SenkouSpanA.Valid, "i=%d", i)
			want := (out[i].TenkanSen.Float64 + out[i].KijunSen.Float64) / 2
			assert.InDelta(t, want, out[i].SenkouSpanA.Float64, 1e-12, "i=%d", i)
		}
	}
}

func TestEngine_Compute_CloudColor(t *testing.T) {
	series := makeSeries(120)
	out, err := NewEngine().Compute(series, models.DefaultParams())
	require.NoError(t, err)

	var classified int
	for i := range out {
		a, b := out[i].SenkouSpanA, out[i].SenkouSpanB
		if !a.Valid || !b.Valid {
			assert.Empty(t, out[i].CloudColor, "i=%d", i)
			continue
		}
		classified++
		if a.Float64 >= b.Float64 {
			assert.Equal(t, models.CloudBullish, out[i].CloudColor, "i=%d", i)
		} else {
			assert.Equal(t, models.CloudBearish, out[i].CloudColor, "i=%d", i)
		}
	}
	assert.Greater(t, classified, 0)
}

func TestEngine_Compute_ShortSeriesIsNotAnError(t *testing.T) {
	// 10 bars with default leading_span_b_len=52: Senkou Span B must be
	// undefined everywhere, without an error.
	out, err := NewEngine().Compute(makeSeries(10), models.DefaultParams())
	require.NoError(t, err)
	for i := range out {
		assert.False(t, out[i].SenkouSpanB.Valid, "i=%d", i)
	}
}

func TestEngine_Compute_FiveBarScenario(t *testing.T) {
	out, err := NewEngine().Compute(aaplBars(), models.DefaultParams())
	require.NoError(t, err)
	require.Len(t, out, 5+26)

	// 5 bars cannot fill any of the 9/26/52 windows, and close shifted
	// back 26 positions never lands inside the series.
	for i := range out {
		assert.False(t, out[i].TenkanSen.Valid, "i=%d", i)
		assert.False(t, out[i].KijunSen.Valid, "i=%d", i)
		assert.False(t, out[i].ChikouSpan.Valid, "i=%d", i)
		assert.False(t, out[i].SenkouSpanA.Valid, "i=%d", i)
		assert.False(t, out[i].SenkouSpanB.Valid, "i=%d", i)
		assert.Empty(t, out[i].CloudColor, "i=%d", i)
	}
}

func TestEngine_Compute_EmptySeries(t *testing.T) {
	_, err := NewEngine().Compute(nil, models.DefaultParams())
	assert.ErrorIs(t, err, models.ErrEmptySeries)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestEngine_Compute_InvalidWindow(t *testing.T) {
	params := models.DefaultParams()
	params.ConversionLen = 0
	_, err := NewEngine().Compute(makeSeries(10), params)
	assert.ErrorIs(t, err, models.ErrInvalidWindow)

	params = models.DefaultParams()
	params.CloudShift = -1
	_, err = NewEngine().Compute(makeSeries(10), params)
	assert.ErrorIs(t, err, models.ErrInvalidShift)
}
