package viewport

import (
	"math"
	"testing"

	"github.com/matzehuels/roadmap/pkg/roadmap"
	"github.com/matzehuels/roadmap/pkg/roadmap/layout"
)

func at(id string, x, y float64) roadmap.Node {
	return roadmap.Node{ID: id, Position: roadmap.Position{X: x, Y: y}}
}

func TestFit_Empty(t *testing.T) {
	if got := Fit(nil, 800, 600, 50); got != Identity {
		t.Errorf("Fit(nil) = %+v, want %+v", got, Identity)
	}
}

func TestFit_SmallGraphNotUpscaled(t *testing.T) {
	got := Fit([]roadmap.Node{at("a", 0, 0)}, 1000, 1000, 50)
	if got.Zoom != 1 {
		t.Errorf("Zoom = %v, want 1", got.Zoom)
	}
	// the 280×100 node is centred
	if got.X != 360 || got.Y != 450 {
		t.Errorf("translation = (%v, %v), want (360, 450)", got.X, got.Y)
	}
}

func TestFit_LargeGraphScaledDown(t *testing.T) {
	nodes := []roadmap.Node{at("a", 0, 0), at("b", 1720, 0)}
	// box is 2000×100; available width is 1000-2*0
	got := Fit(nodes, 1000, 800, 0)
	if math.Abs(got.Zoom-0.5) > 1e-9 {
		t.Errorf("Zoom = %v, want 0.5", got.Zoom)
	}
	// scaled box must be centred
	left := 0*got.Zoom + got.X
	right := 2000*got.Zoom + got.X
	if math.Abs(left-(1000-right)) > 1e-9 {
		t.Errorf("box not centred: left margin %v, right margin %v", left, 1000-right)
	}
}

func TestFit_ExpandedFootprint(t *testing.T) {
	n := at("a", 0, 0)
	n.Data.IsExpanded = true
	b, _ := BoundingBox([]roadmap.Node{n})
	if b.Height() != roadmap.ExpandedNodeHeight {
		t.Errorf("Height = %v, want %v", b.Height(), roadmap.ExpandedNodeHeight)
	}
}

func TestFit_NoRoomUsesMinZoom(t *testing.T) {
	tests := []struct {
		name          string
		width, height float64
		padding       float64
	}{
		{"padding exceeds viewport", 100, 100, 80},
		{"padding fills viewport", 100, 100, 50},
		{"zero viewport", 0, 0, 0},
		{"negative height", 800, -10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fit([]roadmap.Node{at("a", 0, 0), at("b", 500, 500)}, tt.width, tt.height, tt.padding)
			if got.Zoom != MinZoom {
				t.Errorf("Zoom = %v, want %v", got.Zoom, MinZoom)
			}
		})
	}
}

func TestFit_FramesVeryLargeRoadmaps(t *testing.T) {
	tests := []struct {
		name          string
		span          float64
		width, height float64
		padding       float64
	}{
		{"wide roadmap", 30000, 1000, 800, 50},
		{"tiny viewport", 500, 10, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes := []roadmap.Node{at("a", 0, 0), at("b", tt.span, tt.span/10)}
			b, _ := BoundingBox(nodes)
			got := Fit(nodes, tt.width, tt.height, tt.padding)
			if got.Zoom <= 0 || got.Zoom >= MinZoom {
				t.Fatalf("Zoom = %v, want in (0, %v)", got.Zoom, MinZoom)
			}
			const eps = 1e-6
			left, right := b.MinX*got.Zoom+got.X, b.MaxX*got.Zoom+got.X
			top, bottom := b.MinY*got.Zoom+got.Y, b.MaxY*got.Zoom+got.Y
			if left < tt.padding-eps || right > tt.width-tt.padding+eps {
				t.Errorf("x span [%v, %v] outside [%v, %v]", left, right, tt.padding, tt.width-tt.padding)
			}
			if top < tt.padding-eps || bottom > tt.height-tt.padding+eps {
				t.Errorf("y span [%v, %v] outside [%v, %v]", top, bottom, tt.padding, tt.height-tt.padding)
			}
		})
	}
}

func TestFit_NeverUpscalesLaidOutSeed(t *testing.T) {
	nodes := layout.Layout(roadmap.DefaultGraph(), layout.Options{})
	for _, size := range [][2]float64{{400, 300}, {1920, 1080}, {10000, 10000}} {
		got := Fit(nodes, size[0], size[1], DefaultPadding)
		if got.Zoom > 1 || got.Zoom <= 0 {
			t.Errorf("Fit(%v) zoom = %v, want in (0, 1]", size, got.Zoom)
		}
	}
}
