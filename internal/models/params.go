package models

// Default Ichimoku window lengths and shift, matching the conventional
// 9/26/52/26 daily configuration.
const (
	DefaultConversionLen   = 9
	DefaultBaseLen         = 26
	DefaultLaggingLen      = 26
	DefaultLeadingSpanBLen = 52
	DefaultCloudShift      = 26
)

// Params is an Ichimoku parameter set. All windows operate on bar
// position, not calendar time.
type Params struct {
	ConversionLen   int `json:"conversion_len"`
	BaseLen         int `json:"base_len"`
	LaggingLen      int `json:"lagging_len"`
	LeadingSpanBLen int `json:"leading_span_b_len"`
	CloudShift      int `json:"cloud_shift"`
}

// DefaultParams returns the conventional parameter set.
func DefaultParams() Params {
	return Params{
		ConversionLen:   DefaultConversionLen,
		BaseLen:         DefaultBaseLen,
		LaggingLen:      DefaultLaggingLen,
		LeadingSpanBLen: DefaultLeadingSpanBLen,
		CloudShift:      DefaultCloudShift,
	}
}

// Validate validates the parameter set. Windows longer than the series
// are allowed; they just produce all-undefined columns.
func (p Params) Validate() error {
	if p.ConversionLen <= 0 || p.BaseLen <= 0 || p.LaggingLen <= 0 || p.LeadingSpanBLen <= 0 {
		return ErrInvalidWindow
	}
	if p.CloudShift < 0 {
		return ErrInvalidShift
	}
	return nil
}
