package api

import (
	"fmt"
	"strconv"
	"strings"

	"tickchart/model"
	"tickchart/render"
	"tickchart/surface"
	"tickchart/utils/pointer"
)

// static returns cfg with every interaction turned off.
func static(cfg render.Config) render.Config {
	cfg.EnableZoom = pointer.Of(false)
	cfg.EnableTooltip = pointer.Of(false)
	cfg.EnableBrush = pointer.Of(false)
	cfg.OnBrushSelection = nil
	return cfg
}

// RenderLine draws one non-interactive pass of a line chart.
func RenderLine(points []model.TimeValuePoint, cfg render.Config) *surface.Surface {
	lc := render.NewLineChart(nil, nil, nil, static(cfg))
	lc.SetData(points)
	return lc.Surface()
}

func RenderCandles(points []model.OHLCPoint, cfg render.Config) *surface.Surface {
	cc := render.NewCandlestickChart(nil, nil, nil, static(cfg))
	cc.SetData(points)
	return cc.Surface()
}

// ParseOverlays reads "sma:20,ema:50" into overlay definitions.
func ParseOverlays(s string) ([]render.Overlay, error) {
	var overlays []render.Overlay
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kind, period, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("overlay %q: want kind:period", part)
		}
		n, err := strconv.Atoi(period)
		if err != nil {
			return nil, fmt.Errorf("overlay %q: %w", part, err)
		}
		overlays = append(overlays, render.Overlay{Kind: strings.ToLower(kind), Period: n})
	}
	return overlays, nil
}
