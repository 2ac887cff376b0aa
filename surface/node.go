package surface

import (
	"tickchart/geometry"
)

type Kind string

const (
	KindPath   Kind = "path"
	KindLine   Kind = "line"
	KindRect   Kind = "rect"
	KindCircle Kind = "circle"
	KindText   Kind = "text"
)

type Style struct {
	Stroke      string
	Fill        string
	StrokeWidth float64
	Dash        []float64
	FontSize    float64
	// Rotation is the text rotation in degrees.
	Rotation float64
	// Anchor is the horizontal text anchor: start, middle or end.
	Anchor string
}

// Node is one retained drawing primitive. Geometry is in node-local pixels; Offset
// moves it into surface pixels and Clip, when set, bounds what is painted (local pixels).
type Node struct {
	ID    string
	Layer string
	Kind  Kind
	Z     int

	Points []geometry.Point // path
	Line   geometry.Segment // line
	Rect   geometry.Rect    // rect
	Center geometry.Point   // circle
	Radius float64          // circle
	Text   string           // text, anchored at Center

	Style  Style
	Offset geometry.Point
	Clip   *geometry.Rect

	// Hidden nodes stay allocated but are not painted.
	Hidden bool
	// Invisible nodes exist for hit testing only and are never painted.
	Invisible bool
}

func (n *Node) Show() { n.Hidden = false }
func (n *Node) Hide() { n.Hidden = true }

// Contains reports whether the surface point (x, y) falls inside a rect node.
func (n *Node) Contains(x, y float64) bool {
	if n.Kind != KindRect {
		return false
	}
	return n.Rect.Contains(x-n.Offset.X, y-n.Offset.Y)
}

func PathNode(layer string, points []geometry.Point, style Style) *Node {
	return &Node{Layer: layer, Kind: KindPath, Points: points, Style: style}
}

func LineNode(layer string, seg geometry.Segment, style Style) *Node {
	return &Node{Layer: layer, Kind: KindLine, Line: seg, Style: style}
}

func RectNode(layer string, r geometry.Rect, style Style) *Node {
	return &Node{Layer: layer, Kind: KindRect, Rect: r, Style: style}
}

func CircleNode(layer string, x, y, radius float64, style Style) *Node {
	return &Node{Layer: layer, Kind: KindCircle, Center: geometry.Point{X: x, Y: y}, Radius: radius, Style: style}
}

func TextNode(layer string, x, y float64, text string, style Style) *Node {
	return &Node{Layer: layer, Kind: KindText, Center: geometry.Point{X: x, Y: y}, Text: text, Style: style}
}
