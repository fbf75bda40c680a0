package ichimoku

import (
	"time"

	"github.com/mohamedkhairy/ichimoku-cloud/internal/models"
)

// StepFunc advances the time axis by one synthetic bar.
type StepFunc func(time.Time) time.Time

// NextCalendarDay is the default spacing policy for daily series.
func NextCalendarDay(t time.Time) time.Time {
	return t.AddDate(0, 0, 1)
}

// FixedInterval returns a StepFunc with constant spacing, for series that
// are not daily bars.
func FixedInterval(d time.Duration) StepFunc {
	return func(t time.Time) time.Time {
		return t.Add(d)
	}
}

// Aligner extends a bar series' time axis forward so that series shifted
// into the future have a time coordinate to land on. The synthetic bars
// carry no price data and must not be mistaken for real market bars.
type Aligner struct {
	// Step controls synthetic-bar spacing. Nil means NextCalendarDay.
	Step StepFunc
}

// NewAligner returns an Aligner with calendar-day spacing.
func NewAligner() *Aligner {
	return &Aligner{Step: NextCalendarDay}
}

// Extend appends n synthetic future bars after the last real bar. Real
// bars keep their OHLCV columns; synthetic bars have them undefined.
// Pure function over its input.
func (a *Aligner) Extend(series []models.Bar, n int) ([]models.IchimokuBar, error) {
	if len(series) == 0 {
		return nil, models.ErrEmptySeries
	}
	if n < 0 {
		return nil, models.ErrInvalidShift
	}

	out := make([]models.IchimokuBar, 0, len(series)+n)
	for i := range series {
		b := &series[i]
		out = append(out, models.IchimokuBar{
			Time:   b.Time,
			Open:   models.Defined(b.Open),
			High:   models.Defined(b.High),
			Low:    models.Defined(b.Low),
			Close:  models.Defined(b.Close),
			Volume: models.Defined(b.Volume),
		})
	}
	if n == 0 {
		return out, nil
	}

	last, err := series[len(series)-1].Date()
	if err != nil {
		return nil, err
	}
	step := a.Step
	if step == nil {
		step = NextCalendarDay
	}
	t := last
	for i := 0; i < n; i++ {
		t = step(t)
		out = append(out, models.IchimokuBar{Time: t.Format(models.TimeLayout)})
	}
	return out, nil
}
