package models

import (
	"time"
)

// TimeLayout is the calendar-date format used on every wire surface.
const TimeLayout = "2006-01-02"

// Bar represents one trading period of OHLCV data
type Bar struct {
	Time   string  `json:"time"` // YYYY-MM-DD
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// Date parses the bar's calendar date.
func (b *Bar) Date() (time.Time, error) {
	t, err := time.Parse(TimeLayout, b.Time)
	if err != nil {
		return time.Time{}, ErrMalformedTime
	}
	return t, nil
}

// Validate validates a Bar. Price ordering (low <= open,close <= high) is
// deliberately not enforced; upstream feeds occasionally ship crossed bars
// and the engine tolerates them.
func (b *Bar) Validate() error {
	if _, err := b.Date(); err != nil {
		return err
	}
	return nil
}

// CloudColor is one of the two fixed fill tokens for the Ichimoku cloud.
type CloudColor string

const (
	CloudBullish CloudColor = "rgba(144,238,144,0.3)"
	CloudBearish CloudColor = "rgba(255,182,193,0.3)"
)

// IchimokuBar is one row of an Ichimoku series: the input bar columns
// plus the five derived lines and the cloud classification. OHLCV columns
// are optional because the series is extended with synthetic future bars
// that carry a time coordinate but no price data.
type IchimokuBar struct {
	Time   string `json:"time"`
	Open   Value  `json:"open"`
	High   Value  `json:"high"`
	Low    Value  `json:"low"`
	Close  Value  `json:"close"`
	Volume Value  `json:"volume"`

	TenkanSen   Value `json:"tenkan_sen"`
	KijunSen    Value `json:"kijun_sen"`
	ChikouSpan  Value `json:"chikou_span"`
	SenkouSpanA Value `json:"senkou_span_a"`
	SenkouSpanB Value `json:"senkou_span_b"`

	// CloudColor is set only where both spans are defined.
	CloudColor CloudColor `json:"cloud_color,omitempty"`
}

// Synthetic reports whether the bar is a generated future bar (time axis
// extension) rather than a real market bar.
func (b *IchimokuBar) Synthetic() bool {
	return !b.Open.Valid && !b.High.Valid && !b.Low.Valid && !b.Close.Valid && !b.Volume.Valid
}
