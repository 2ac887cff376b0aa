package surface

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"tickchart/geometry"
)

var ErrEmptySurface = errors.New("surface has no drawable area")

// Paint draws every visible node onto r.
func (s *Surface) Paint(r chart.Renderer) error {
	f, err := chart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("load default font: %w", err)
	}
	r.SetFont(f)

	if s.Background != "" {
		r.ResetStyle()
		r.SetFillColor(ParseColor(s.Background))
		fillRect(r, geometry.Rect{W: s.width, H: s.height})
	}
	for _, n := range s.ordered() {
		if n.Hidden || n.Invisible {
			continue
		}
		r.ResetStyle()
		r.SetFont(f)
		paintNode(r, n)
	}
	return nil
}

// Render paints onto a renderer from provider and saves it to w.
func (s *Surface) Render(provider chart.RendererProvider, w io.Writer) error {
	width, height := int(math.Round(s.width)), int(math.Round(s.height))
	if width <= 0 || height <= 0 {
		return ErrEmptySurface
	}
	r, err := provider(width, height)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	if err := s.Paint(r); err != nil {
		return err
	}
	if err := r.Save(w); err != nil {
		return fmt.Errorf("save surface: %w", err)
	}
	return nil
}

func (s *Surface) WriteSVG(w io.Writer) error {
	return s.Render(chart.SVG, w)
}

func (s *Surface) WritePNG(w io.Writer) error {
	return s.Render(chart.PNG, w)
}

// SVG renders the surface into memory.
func (s *Surface) SVG() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.WriteSVG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func paintNode(r chart.Renderer, n *Node) {
	st := n.Style
	if st.StrokeWidth > 0 {
		r.SetStrokeWidth(st.StrokeWidth)
	}
	if len(st.Dash) > 0 {
		r.SetStrokeDashArray(st.Dash)
	}
	if st.Stroke != "" {
		r.SetStrokeColor(ParseColor(st.Stroke))
	}
	if st.Fill != "" {
		r.SetFillColor(ParseColor(st.Fill))
	}

	switch n.Kind {
	case KindPath:
		runs := [][]geometry.Point{n.Points}
		if n.Clip != nil {
			runs = clipPolyline(n.Points, *n.Clip)
		}
		for _, run := range runs {
			if len(run) < 2 {
				continue
			}
			for i, p := range run {
				x, y := px(p.X+n.Offset.X), px(p.Y+n.Offset.Y)
				if i == 0 {
					r.MoveTo(x, y)
				} else {
					r.LineTo(x, y)
				}
			}
			r.Stroke()
		}
	case KindLine:
		seg := n.Line
		if n.Clip != nil {
			var ok bool
			if seg, ok = clipSegment(seg, *n.Clip); !ok {
				return
			}
		}
		r.MoveTo(px(seg.X1+n.Offset.X), px(seg.Y1+n.Offset.Y))
		r.LineTo(px(seg.X2+n.Offset.X), px(seg.Y2+n.Offset.Y))
		r.Stroke()
	case KindRect:
		rect := n.Rect
		if n.Clip != nil {
			var ok bool
			if rect, ok = clipRect(rect, *n.Clip); !ok {
				return
			}
		}
		rect.X += n.Offset.X
		rect.Y += n.Offset.Y
		tracePolygon(r, rect)
		finish(r, st)
	case KindCircle:
		if n.Clip != nil && !pointIn(n.Center, *n.Clip) {
			return
		}
		r.Circle(n.Radius, px(n.Center.X+n.Offset.X), px(n.Center.Y+n.Offset.Y))
		finish(r, st)
	case KindText:
		if n.Text == "" || (n.Clip != nil && !pointIn(n.Center, *n.Clip)) {
			return
		}
		paintText(r, n)
	}
}

func paintText(r chart.Renderer, n *Node) {
	st := n.Style
	size := st.FontSize
	if size <= 0 {
		size = 10
	}
	r.SetFontSize(size)
	color := st.Fill
	if color == "" {
		color = "#333333"
	}
	r.SetFontColor(ParseColor(color))

	x, y := n.Center.X+n.Offset.X, n.Center.Y+n.Offset.Y
	box := r.MeasureText(n.Text)
	switch st.Anchor {
	case "middle":
		x -= float64(box.Width()) / 2
	case "end":
		x -= float64(box.Width())
	}
	if st.Rotation != 0 {
		r.SetTextRotation(st.Rotation * math.Pi / 180)
		defer r.ClearTextRotation()
	}
	r.Text(n.Text, px(x), px(y))
}

func tracePolygon(r chart.Renderer, rect geometry.Rect) {
	r.MoveTo(px(rect.X), px(rect.Y))
	r.LineTo(px(rect.X+rect.W), px(rect.Y))
	r.LineTo(px(rect.X+rect.W), px(rect.Y+rect.H))
	r.LineTo(px(rect.X), px(rect.Y+rect.H))
	r.Close()
}

func fillRect(r chart.Renderer, rect geometry.Rect) {
	tracePolygon(r, rect)
	r.Fill()
}

func finish(r chart.Renderer, st Style) {
	switch {
	case st.Fill != "" && st.Stroke != "":
		r.FillStroke()
	case st.Fill != "":
		r.Fill()
	default:
		r.Stroke()
	}
}

func px(v float64) int {
	return int(math.Round(v))
}

// ParseColor reads #rgb, #rrggbb or #rrggbbaa. "none" and unknown input are transparent.
func ParseColor(s string) drawing.Color {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(hex) {
	case 3, 6:
		return drawing.ColorFromHex(hex)
	case 8:
		c := drawing.ColorFromHex(hex[:6])
		c.A = drawing.ColorFromHex(hex[6:8] + "0000").R
		return c
	}
	return drawing.ColorTransparent
}
