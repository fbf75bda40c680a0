package ichimoku

import (
	"github.com/mohamedkhairy/ichimoku-cloud/internal/models"
)

// CloudPoint is one point of a cloud fill series. Value is null where the
// fill must break so the chart never interpolates across a color switch
// or a data gap.
type CloudPoint struct {
	Time  string       `json:"time"`
	Value models.Value `json:"value"`
}

// CloudBands holds the four point sequences for the bicolor cloud fill.
// Rendering each top/bottom pair as stacked areas produces a band between
// Span A and Span B that switches color exactly at each crossover.
type CloudBands struct {
	BullishTop    []CloudPoint `json:"bullish_top"`
	BullishBottom []CloudPoint `json:"bullish_bottom"`
	BearishTop    []CloudPoint `json:"bearish_top"`
	BearishBottom []CloudPoint `json:"bearish_bottom"`
}

// CloudFill buckets the span series into the four fill sequences. Where
// both spans are defined, exactly one side receives the (top, bottom)
// pair and the other side receives null placeholders; where either span
// is undefined, all four sequences receive null placeholders.
func CloudFill(bars []models.IchimokuBar) CloudBands {
	bands := CloudBands{
		BullishTop:    make([]CloudPoint, 0, len(bars)),
		BullishBottom: make([]CloudPoint, 0, len(bars)),
		BearishTop:    make([]CloudPoint, 0, len(bars)),
		BearishBottom: make([]CloudPoint, 0, len(bars)),
	}

	for i := range bars {
		a := bars[i].SenkouSpanA
		b := bars[i].SenkouSpanB
		blank := CloudPoint{Time: bars[i].Time}

		switch {
		case !a.Valid || !b.Valid:
			bands.BullishTop = append(bands.BullishTop, blank)
			bands.BullishBottom = append(bands.BullishBottom, blank)
			bands.BearishTop = append(bands.BearishTop, blank)
			bands.BearishBottom = append(bands.BearishBottom, blank)
		case a.Float64 >= b.Float64:
			bands.BullishTop = append(bands.BullishTop, CloudPoint{Time: bars[i].Time, Value: a})
			bands.BullishBottom = append(bands.BullishBottom, CloudPoint{Time: bars[i].Time, Value: b})
			bands.BearishTop = append(bands.BearishTop, blank)
			bands.BearishBottom = append(bands.BearishBottom, blank)
		default:
			bands.BearishTop = append(bands.BearishTop, CloudPoint{Time: bars[i].Time, Value: b})
			bands.BearishBottom = append(bands.BearishBottom, CloudPoint{Time: bars[i].Time, Value: a})
			bands.BullishTop = append(bands.BullishTop, blank)
			bands.BullishBottom = append(bands.BullishBottom, blank)
		}
	}
	return bands
}
