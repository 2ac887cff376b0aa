package render

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tickchart/brush"
	"tickchart/indicator"
	"tickchart/layout"
	"tickchart/utils/pointer"
	"tickchart/zoom"
)

const (
	DefaultWidth       = 800.0
	DefaultHeight      = 400.0
	DefaultUpColor     = "#26a69a"
	DefaultDownColor   = "#ef5350"
	DefaultLineColor   = "#2962ff"
	DefaultStrokeWidth = 2.0
)

var ErrInvalidConfig = errors.New("invalid chart config")

// Overlay is a moving average drawn over a line chart.
type Overlay struct {
	Kind   string `json:"kind" yaml:"kind"`
	Period int    `json:"period" yaml:"period"`
	Color  string `json:"color,omitempty" yaml:"color,omitempty"`
}

// Config holds the chart options. Nil fields take the documented defaults.
type Config struct {
	Width         *float64        `json:"width,omitempty" yaml:"width,omitempty"`
	Height        *float64        `json:"height,omitempty" yaml:"height,omitempty"`
	Margins       *layout.Margins `json:"margins,omitempty" yaml:"margins,omitempty"`
	UpColor       *string         `json:"upColor,omitempty" yaml:"upColor,omitempty"`
	DownColor     *string         `json:"downColor,omitempty" yaml:"downColor,omitempty"`
	LineColor     *string         `json:"lineColor,omitempty" yaml:"lineColor,omitempty"`
	StrokeWidth   *float64        `json:"strokeWidth,omitempty" yaml:"strokeWidth,omitempty"`
	EnableZoom    *bool           `json:"enableZoom,omitempty" yaml:"enableZoom,omitempty"`
	EnableTooltip *bool           `json:"enableTooltip,omitempty" yaml:"enableTooltip,omitempty"`
	EnableBrush   *bool           `json:"enableBrush,omitempty" yaml:"enableBrush,omitempty"`
	MinScale      *float64        `json:"minScale,omitempty" yaml:"minScale,omitempty"`
	MaxScale      *float64        `json:"maxScale,omitempty" yaml:"maxScale,omitempty"`
	Overlays      []Overlay       `json:"overlays,omitempty" yaml:"overlays,omitempty"`

	// OnBrushSelection receives the brushed range, or nil when it is cleared.
	OnBrushSelection func(*brush.Range) `json:"-" yaml:"-"`
}

// options is Config with every default applied.
type options struct {
	Width         float64
	Height        float64
	Margins       layout.Margins
	UpColor       string
	DownColor     string
	LineColor     string
	StrokeWidth   float64
	EnableZoom    bool
	EnableTooltip bool
	EnableBrush   bool
	MinScale      float64
	MaxScale      float64
	Overlays      []Overlay
}

func (c Config) resolve() options {
	return options{
		Width:         pointer.NotNull(c.Width, DefaultWidth),
		Height:        pointer.NotNull(c.Height, DefaultHeight),
		Margins:       pointer.NotNull(c.Margins, layout.DefaultMargins),
		UpColor:       pointer.NotNull(c.UpColor, DefaultUpColor),
		DownColor:     pointer.NotNull(c.DownColor, DefaultDownColor),
		LineColor:     pointer.NotNull(c.LineColor, DefaultLineColor),
		StrokeWidth:   pointer.NotNull(c.StrokeWidth, DefaultStrokeWidth),
		EnableZoom:    pointer.NotNull(c.EnableZoom, true),
		EnableTooltip: pointer.NotNull(c.EnableTooltip, true),
		EnableBrush:   pointer.NotNull(c.EnableBrush, false),
		MinScale:      pointer.NotNull(c.MinScale, zoom.DefaultMinScale),
		MaxScale:      pointer.NotNull(c.MaxScale, zoom.DefaultMaxScale),
		Overlays:      c.Overlays,
	}
}

func (o options) viewport() layout.Viewport {
	return layout.Viewport{Width: o.Width, Height: o.Height}
}

// Validate reports option values a chart cannot use. Charts still render with an
// invalid config; this is for the config file and API layers.
func (c Config) Validate() error {
	o := c.resolve()
	var errs []error
	if o.Width < 0 || o.Height < 0 {
		errs = append(errs, fmt.Errorf("size %vx%v is negative", o.Width, o.Height))
	}
	if o.StrokeWidth < 0 {
		errs = append(errs, fmt.Errorf("strokeWidth %v is negative", o.StrokeWidth))
	}
	if o.MinScale <= 0 || o.MaxScale < o.MinScale {
		errs = append(errs, fmt.Errorf("zoom scale bounds [%v, %v] are invalid", o.MinScale, o.MaxScale))
	}
	colors := [][2]string{{"upColor", o.UpColor}, {"downColor", o.DownColor}, {"lineColor", o.LineColor}}
	for _, pair := range colors {
		if !validColor(pair[1]) {
			errs = append(errs, fmt.Errorf("%s %q is not a hex color", pair[0], pair[1]))
		}
	}
	for i, ov := range o.Overlays {
		if _, err := indicator.ParseKind(ov.Kind); err != nil {
			errs = append(errs, fmt.Errorf("overlay %d: %w", i, err))
		}
		if ov.Period < 1 {
			errs = append(errs, fmt.Errorf("overlay %d: %w", i, indicator.ErrInvalidPeriod))
		}
		if ov.Color != "" && !validColor(ov.Color) {
			errs = append(errs, fmt.Errorf("overlay %d: color %q is not a hex color", i, ov.Color))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func validColor(s string) bool {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 3 && len(hex) != 6 && len(hex) != 8 {
		return false
	}
	_, err := strconv.ParseUint(hex, 16, 64)
	return err == nil
}
