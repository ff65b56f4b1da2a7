package export

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/balls/internal/physics"
	"github.com/san-kum/balls/internal/sim"
	"github.com/san-kum/balls/internal/viz"
)

func TestFrameToSVG(t *testing.T) {
	arena := physics.CenteredArena(200, 100)
	frame := sim.Frame{
		{Position: mgl64.Vec2{0, 0}, Radius: 10},
		{Position: mgl64.Vec2{-100, 50}, Radius: 5},
	}

	svg := FrameToSVG(frame, arena, 2, viz.ThemeMinimal)
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("not an svg document: %q", svg)
	}
	if !strings.Contains(svg, `width="400" height="200"`) {
		t.Error("size should be arena times scale")
	}
	if !strings.Contains(svg, `<circle cx="200.0" cy="100.0" r="20.0"`) {
		t.Error("centre body misplaced")
	}
	if !strings.Contains(svg, `<circle cx="0.0" cy="0.0" r="10.0"`) {
		t.Error("top-left body misplaced")
	}
	if got := strings.Count(svg, "<circle"); got != 2 {
		t.Errorf("got %d circles, want 2", got)
	}

	if FrameToSVG(frame, arena, 0, viz.ThemeMinimal) != "" {
		t.Error("zero scale should render nothing")
	}
}

func TestTrajectoryToSVG(t *testing.T) {
	arena := physics.CenteredArena(100, 100)
	frames := []sim.Frame{
		{{Position: mgl64.Vec2{0, 50}, Radius: 5}},
		{{Position: mgl64.Vec2{10, 0}, Radius: 5}},
		{{Position: mgl64.Vec2{20, -50}, Radius: 5}},
	}

	svg := TrajectoryToSVG(frames, 0, arena, 1, viz.ThemeOcean)
	if !strings.Contains(svg, `d="M50.0,0.0 L60.0,50.0 L70.0,100.0"`) {
		t.Errorf("unexpected path in %q", svg)
	}
	if !strings.Contains(svg, `<circle cx="70.0" cy="100.0"`) {
		t.Error("final position not marked")
	}

	if TrajectoryToSVG(frames, 3, arena, 1, viz.ThemeOcean) != "" {
		t.Error("missing body should render nothing")
	}
}
