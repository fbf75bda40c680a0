package chart

import (
	"github.com/mohamedkhairy/ichimoku-cloud/internal/models"
)

// CandlePoint is one candlestick with its per-bar color.
type CandlePoint struct {
	Time  string  `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
	Color string  `json:"color"`
}

// LinePoint is one point of a line series.
type LinePoint struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

// VolumePoint is one histogram bar, colored by close vs open.
type VolumePoint struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// candles maps bars to candlestick points; a red candle is one that
// closed below its open.
func candles(bars []models.Bar, theme Theme) []CandlePoint {
	out := make([]CandlePoint, 0, len(bars))
	for i := range bars {
		b := &bars[i]
		color := theme.BullColor
		if b.Open > b.Close {
			color = theme.BearColor
		}
		out = append(out, CandlePoint{
			Time:  b.Time,
			Open:  b.Open,
			High:  b.High,
			Low:   b.Low,
			Close: b.Close,
			Color: color,
		})
	}
	return out
}

// volume maps bars to histogram points.
func volume(bars []models.Bar, theme Theme) []VolumePoint {
	out := make([]VolumePoint, 0, len(bars))
	for i := range bars {
		b := &bars[i]
		color := theme.BearColor
		if b.Close > b.Open {
			color = theme.BullColor
		}
		out = append(out, VolumePoint{Time: b.Time, Value: b.Volume, Color: color})
	}
	return out
}

// line extracts one derived column as a line series, dropping undefined
// points so the widget never draws through missing history.
func line(bars []models.IchimokuBar, pick func(*models.IchimokuBar) models.Value) []LinePoint {
	out := make([]LinePoint, 0, len(bars))
	for i := range bars {
		if v := pick(&bars[i]); v.Valid {
			out = append(out, LinePoint{Time: bars[i].Time, Value: v.Float64})
		}
	}
	return out
}
