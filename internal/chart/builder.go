// Package chart shapes OHLCV and Ichimoku series into the JSON consumed
// by a lightweight-charts multipane widget: a candlestick pane with the
// five indicator lines and the bicolor cloud fill, plus a volume pane.
package chart

import (
	"github.com/mohamedkhairy/ichimoku-cloud/internal/ichimoku"
	"github.com/mohamedkhairy/ichimoku-cloud/internal/models"
)

// Series is one renderable series of a pane.
type Series struct {
	Type    string         `json:"type"`
	Data    any            `json:"data"`
	Options map[string]any `json:"options,omitempty"`
	// PriceScale carries per-series scale overrides (volume histogram).
	PriceScale map[string]any `json:"priceScale,omitempty"`
	// Stack marks the bottom series of an area pair.
	Stack bool `json:"stack"`
}

// Pane is one chart pane: widget options plus its series.
type Pane struct {
	Chart  map[string]any `json:"chart"`
	Series []Series       `json:"series"`
}

// Chart is the full multipane payload.
type Chart struct {
	Ticker string `json:"ticker"`
	Panes  []Pane `json:"panes"`
}

// Builder shapes chart payloads with a fixed theme.
type Builder struct {
	theme Theme
}

// NewBuilder creates a Builder.
func NewBuilder(theme Theme) *Builder {
	return &Builder{theme: theme}
}

// Build assembles the multipane payload: pane 0 holds candles, the five
// Ichimoku lines and the four cloud areas; pane 1 holds the volume
// histogram.
func (b *Builder) Build(ticker string, bars []models.Bar, ich []models.IchimokuBar) (*Chart, error) {
	if len(bars) == 0 {
		return nil, models.ErrEmptySeries
	}

	main := []Series{
		{
			Type: "Candlestick",
			Data: candles(bars, b.theme),
			Options: map[string]any{
				"upColor":       b.theme.BullColor,
				"downColor":     b.theme.BearColor,
				"borderVisible": false,
				"wickUpColor":   b.theme.BullColor,
				"wickDownColor": b.theme.BearColor,
			},
		},
		b.lineSeries(ich, b.theme.TenkanColor, 1, 0, func(r *models.IchimokuBar) models.Value { return r.TenkanSen }),
		b.lineSeries(ich, b.theme.KijunColor, 1, 0, func(r *models.IchimokuBar) models.Value { return r.KijunSen }),
		b.lineSeries(ich, b.theme.ChikouColor, 1, 0, func(r *models.IchimokuBar) models.Value { return r.ChikouSpan }),
		b.lineSeries(ich, b.theme.SpanAColor, 1, 2, func(r *models.IchimokuBar) models.Value { return r.SenkouSpanA }),
		b.lineSeries(ich, b.theme.SpanBColor, 1, 2, func(r *models.IchimokuBar) models.Value { return r.SenkouSpanB }),
	}
	main = append(main, b.cloudSeries(ichimoku.CloudFill(ich))...)

	volumePane := []Series{
		{
			Type: "Histogram",
			Data: volume(bars, b.theme),
			Options: map[string]any{
				"priceFormat":  map[string]any{"type": "volume"},
				"priceScaleId": "",
			},
			PriceScale: map[string]any{
				"scaleMargins": map[string]any{"top": 0, "bottom": 0},
				"alignLabels":  false,
			},
		},
	}

	return &Chart{
		Ticker: ticker,
		Panes: []Pane{
			{Chart: b.mainPaneOptions(ticker), Series: main},
			{Chart: b.volumePaneOptions(), Series: volumePane},
		},
	}, nil
}

func (b *Builder) lineSeries(ich []models.IchimokuBar, color string, width, style int, pick func(*models.IchimokuBar) models.Value) Series {
	options := map[string]any{
		"color":     color,
		"lineWidth": width,
	}
	if style != 0 {
		options["lineStyle"] = style
	}
	return Series{Type: "Line", Data: line(ich, pick), Options: options}
}

// cloudSeries renders each side of the cloud as a stacked area pair: the
// top series carries the fill, the bottom series is transparent and masks
// the region below the lower span.
func (b *Builder) cloudSeries(bands ichimoku.CloudBands) []Series {
	area := func(data []ichimoku.CloudPoint, fill string, stack bool) Series {
		return Series{
			Type: "Area",
			Data: data,
			Options: map[string]any{
				"lineColor":   "transparent",
				"lineWidth":   0,
				"topColor":    fill,
				"bottomColor": fill,
			},
			Stack: stack,
		}
	}
	transparent := "rgba(0,0,0,0.0)"
	return []Series{
		area(bands.BullishTop, b.theme.CloudBullishFill, false),
		area(bands.BullishBottom, transparent, true),
		area(bands.BearishTop, b.theme.CloudBearishFill, false),
		area(bands.BearishBottom, transparent, true),
	}
}

func (b *Builder) mainPaneOptions(ticker string) map[string]any {
	return map[string]any{
		"width":  b.theme.Width,
		"height": b.theme.Height,
		"layout": map[string]any{
			"background": map[string]any{"type": "solid", "color": "white"},
			"textColor":  "black",
		},
		"grid": map[string]any{
			"vertLines": map[string]any{"color": "rgba(197, 203, 206, 0.5)"},
			"horzLines": map[string]any{"color": "rgba(197, 203, 206, 0.5)"},
		},
		"crosshair":  map[string]any{"mode": 0},
		"priceScale": map[string]any{"borderColor": "rgba(197, 203, 206, 0.8)"},
		"timeScale": map[string]any{
			"borderColor": "rgba(197, 203, 206, 0.8)",
			"barSpacing":  b.theme.BarSpacing,
			"rightOffset": b.theme.RightOffset,
		},
		"watermark": map[string]any{
			"visible":   true,
			"fontSize":  48,
			"horzAlign": "center",
			"vertAlign": "center",
			"color":     b.theme.WatermarkColor,
			"text":      ticker,
		},
	}
}

func (b *Builder) volumePaneOptions() map[string]any {
	return map[string]any{
		"width":  b.theme.Width,
		"height": b.theme.VolumeHeight,
		"layout": map[string]any{
			"background": map[string]any{"type": "solid", "color": "transparent"},
			"textColor":  "black",
		},
		"grid": map[string]any{
			"vertLines": map[string]any{"color": "rgba(42, 46, 57, 0)"},
			"horzLines": map[string]any{"color": "rgba(42, 46, 57, 0.6)"},
		},
		"timeScale": map[string]any{"visible": false},
		"watermark": map[string]any{
			"visible":   true,
			"fontSize":  18,
			"horzAlign": "left",
			"vertAlign": "top",
			"color":     "rgba(171, 71, 188, 0.7)",
			"text":      "Volume",
		},
	}
}
