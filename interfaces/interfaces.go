package interfaces

import (
	"context"

	"tickchart/brush"
	"tickchart/datasource"
	"tickchart/model"
	"tickchart/render"
	"tickchart/surface"
	"tickchart/tooltip"
	"tickchart/zoom"
)

// HistorySource fetches price history for a symbol. datasource.Client implements it.
type HistorySource interface {
	LineHistory(ctx context.Context, symbol string, q datasource.Query) ([]model.TimeValuePoint, error)
	CandleHistory(ctx context.Context, symbol string, q datasource.Query) ([]model.OHLCPoint, error)
}

// Chart is what a host needs from either chart kind.
type Chart interface {
	ID() string
	Surface() *surface.Surface
	SetConfig(cfg render.Config)
	Resize(width, height float64)
	Passes() int
	Tooltip() tooltip.State
	Selection() *brush.Range
	Transform() zoom.Transform
	ResetZoom()
	Close()
}

var (
	_ Chart         = (*render.LineChart)(nil)
	_ Chart         = (*render.CandlestickChart)(nil)
	_ HistorySource = (*datasource.Client)(nil)
)
