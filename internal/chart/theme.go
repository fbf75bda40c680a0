package chart

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Theme holds the colors and pane geometry of the multipane chart. All
// fields have defaults matching the classic Ichimoku presentation; a YAML
// theme file overrides them selectively.
type Theme struct {
	BullColor string `yaml:"bull_color"`
	BearColor string `yaml:"bear_color"`

	TenkanColor string `yaml:"tenkan_color"`
	KijunColor  string `yaml:"kijun_color"`
	ChikouColor string `yaml:"chikou_color"`
	SpanAColor  string `yaml:"span_a_color"`
	SpanBColor  string `yaml:"span_b_color"`

	CloudBullishFill string `yaml:"cloud_bullish_fill"`
	CloudBearishFill string `yaml:"cloud_bearish_fill"`

	Width          int    `yaml:"width"`
	Height         int    `yaml:"height"`
	VolumeHeight   int    `yaml:"volume_height"`
	BarSpacing     int    `yaml:"bar_spacing"`
	RightOffset    int    `yaml:"right_offset"`
	WatermarkColor string `yaml:"watermark_color"`
}

// DefaultTheme returns the built-in theme.
func DefaultTheme() Theme {
	return Theme{
		BullColor:        "rgba(38,166,154,0.9)",
		BearColor:        "rgba(239,83,80,0.9)",
		TenkanColor:      "blue",
		KijunColor:       "orange",
		ChikouColor:      "black",
		SpanAColor:       "green",
		SpanBColor:       "red",
		CloudBullishFill: "rgba(0,255,0,0.3)",
		CloudBearishFill: "rgba(255,0,0,0.3)",
		Width:            600,
		Height:           400,
		VolumeHeight:     100,
		BarSpacing:       15,
		// Large enough that the forward-projected cloud stays visible.
		RightOffset:    30,
		WatermarkColor: "rgba(171, 71, 188, 0.3)",
	}
}

// LoadTheme reads a YAML theme file over the defaults. A missing path
// returns the defaults unchanged.
func LoadTheme(path string) (Theme, error) {
	theme := DefaultTheme()
	if path == "" {
		return theme, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return theme, nil
		}
		return theme, fmt.Errorf("read theme: %w", err)
	}
	if err := yaml.Unmarshal(data, &theme); err != nil {
		return theme, fmt.Errorf("parse theme: %w", err)
	}
	return theme, nil
}
