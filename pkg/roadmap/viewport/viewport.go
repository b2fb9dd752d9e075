// Package viewport frames roadmap nodes inside a fixed-size display area.
package viewport

import (
	"math"

	"github.com/matzehuels/roadmap/pkg/roadmap"
)

// DefaultPadding is the margin kept on every side of the viewport.
const DefaultPadding = 50.0

// MinZoom is the zoom used when padding leaves no room to draw in.
const MinZoom = 0.1

// Transform is a pan/zoom pair. A canvas point p is displayed at
// p*Zoom + (X, Y).
type Transform struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// Identity is the transform returned for an empty node list.
var Identity = Transform{Zoom: 1}

// Bounds is an axis-aligned rectangle.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// BoundingBox returns the box around the footprints of nodes. The second
// result is false when nodes is empty.
func BoundingBox(nodes []roadmap.Node) (Bounds, bool) {
	if len(nodes) == 0 {
		return Bounds{}, false
	}
	b := Bounds{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, n := range nodes {
		w, h := roadmap.Footprint(n)
		b.MinX = min(b.MinX, n.Position.X)
		b.MinY = min(b.MinY, n.Position.Y)
		b.MaxX = max(b.MaxX, n.Position.X+w)
		b.MaxY = max(b.MaxY, n.Position.Y+h)
	}
	return b, true
}

// Fit returns the transform that centres nodes in a width×height viewport
// with padding on every side. The zoom never exceeds 1, so small roadmaps
// are not enlarged; large ones are scaled down as far as needed to frame
// every node. When the padded area is empty the zoom is [MinZoom].
func Fit(nodes []roadmap.Node, width, height, padding float64) Transform {
	b, ok := BoundingBox(nodes)
	if !ok {
		return Identity
	}
	if padding < 0 {
		padding = 0
	}

	availW, availH := width-2*padding, height-2*padding
	if availW <= 0 || availH <= 0 {
		return centre(b, width, height, MinZoom)
	}

	zoom := 1.0
	if bw := b.Width(); bw > 0 {
		zoom = min(zoom, availW/bw)
	}
	if bh := b.Height(); bh > 0 {
		zoom = min(zoom, availH/bh)
	}
	return centre(b, width, height, zoom)
}

func centre(b Bounds, width, height, zoom float64) Transform {
	cx := (b.MinX + b.MaxX) / 2
	cy := (b.MinY + b.MaxY) / 2
	return Transform{
		X:    width/2 - cx*zoom,
		Y:    height/2 - cy*zoom,
		Zoom: zoom,
	}
}
