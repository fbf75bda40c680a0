// Package ichimoku computes the Ichimoku Cloud indicator set over a
// time-ordered OHLCV series: Tenkan-sen, Kijun-sen, Chikou Span, Senkou
// Span A/B, and the bullish/bearish cloud classification. All windows and
// shifts operate on bar position, not calendar time, so a series with
// calendar gaps is treated as if bars were contiguous.
package ichimoku

import (
	"github.com/mohamedkhairy/ichimoku-cloud/internal/models"
)

// Engine computes Ichimoku series. It holds no per-request state; a
// single Engine serves concurrent computations.
type Engine struct {
	aligner *Aligner
}

// NewEngine creates an Engine with calendar-day synthetic-bar spacing.
func NewEngine() *Engine {
	return &Engine{aligner: NewAligner()}
}

// NewEngineWithAligner creates an Engine with a custom time-axis
// extension policy, for series that are not daily bars.
func NewEngineWithAligner(a *Aligner) *Engine {
	return &Engine{aligner: a}
}

// Compute derives the five Ichimoku series and the cloud classification.
// The result has len(series) + params.CloudShift rows: the input bars
// followed by synthetic future bars that give the forward-shifted spans a
// time coordinate.
//
// A series shorter than a window length is not an error; the affected
// column is simply undefined everywhere.
func (e *Engine) Compute(series []models.Bar, params models.Params) ([]models.IchimokuBar, error) {
	if len(series) == 0 {
		return nil, models.ErrEmptySeries
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	out, err := e.aligner.Extend(series, params.CloudShift)
	if err != nil {
		return nil, err
	}

	n := len(series)
	high := make([]float64, n)
	low := make([]float64, n)
	for i := range series {
		high[i] = series[i].High
		low[i] = series[i].Low
	}

	// Rolling midlines are computed over the real bars only; the
	// synthetic tail exists purely as a shift destination.
	tenkan := midline(high, low, params.ConversionLen)
	kijun := midline(high, low, params.BaseLen)
	spanBRaw := midline(high, low, params.LeadingSpanBLen)

	for i := range out {
		if i < n {
			out[i].TenkanSen = tenkan[i]
			out[i].KijunSen = kijun[i]
			// Chikou Span: close shifted backward.
			if j := i + params.LaggingLen; j < n {
				out[i].ChikouSpan = models.Defined(series[j].Close)
			}
		}

		// Senkou spans: values computed CloudShift positions back.
		if j := i - params.CloudShift; j >= 0 && j < n {
			if tenkan[j].Valid && kijun[j].Valid {
				out[i].SenkouSpanA = models.Defined((tenkan[j].Float64 + kijun[j].Float64) / 2)
			}
			out[i].SenkouSpanB = spanBRaw[j]
		}

		if out[i].SenkouSpanA.Valid && out[i].SenkouSpanB.Valid {
			if out[i].SenkouSpanA.Float64 >= out[i].SenkouSpanB.Float64 {
				out[i].CloudColor = models.CloudBullish
			} else {
				out[i].CloudColor = models.CloudBearish
			}
		}
	}
	return out, nil
}
