package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/balls/internal/physics"
	"github.com/san-kum/balls/internal/sim"
)

func Height(b physics.Body) float64    { return b.Position[1] }
func Speed(b physics.Body) float64     { return b.Velocity.Len() }
func VerticalV(b physics.Body) float64 { return b.Velocity[1] }

// Series reads one value per frame for the body at index. Frames where the
// body does not exist yield NaN.
func Series(frames []sim.Frame, index int, value func(physics.Body) float64) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		if index < 0 || index >= len(f) {
			out[i] = math.NaN()
			continue
		}
		out[i] = value(f[index])
	}
	return out
}

// TotalEnergy is the per-frame kinetic plus potential energy.
func TotalEnergy(frames []sim.Frame, gravity float64) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = physics.TotalEnergy(f, gravity)
	}
	return out
}

// Bounces returns the sample times at which the body's vertical velocity
// turned from falling to rising.
func Bounces(frames []sim.Frame, times []float64, index int) []float64 {
	vy := Series(frames, index, VerticalV)
	out := make([]float64, 0)
	for i := 1; i < len(vy); i++ {
		if vy[i-1] < 0 && vy[i] > 0 {
			out = append(out, times[i])
		}
	}
	return out
}

// MeanInterval averages the gaps between consecutive times.
func MeanInterval(times []float64) float64 {
	if len(times) < 2 {
		return 0
	}
	return (times[len(times)-1] - times[0]) / float64(len(times)-1)
}

type Point struct{ X, Y float64 }

// Portrait holds height against vertical velocity for one body.
type Portrait struct {
	Points []Point
}

func PhasePortrait(frames []sim.Frame, index int) *Portrait {
	p := &Portrait{Points: make([]Point, 0, len(frames))}
	for _, f := range frames {
		if index >= 0 && index < len(f) {
			p.Points = append(p.Points, Point{X: f[index].Position[1], Y: f[index].Velocity[1]})
		}
	}
	return p
}

// ASCII plots the points on a width x height character grid with axes
// through zero when visible.
func (p *Portrait) ASCII(width, height int) string {
	return plotPoints(p.Points, width, height)
}

func plotPoints(points []Point, width, height int) string {
	if len(points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, pt := range points {
		minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
		minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
	}
	rangeX := math.Max(maxX-minX, 1)
	rangeY := math.Max(maxY-minY, 1)

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	col := func(x float64) int { return int((x - minX) / rangeX * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-minY)/rangeY*float64(height-1)) }

	if minX <= 0 && maxX >= 0 {
		c := col(0)
		for r := range grid {
			grid[r][c] = '│'
		}
	}
	if minY <= 0 && maxY >= 0 {
		r := row(0)
		for c := range grid[r] {
			grid[r][c] = '─'
		}
	}
	for _, pt := range points {
		r, c := row(pt.Y), col(pt.X)
		if r >= 0 && r < height && c >= 0 && c < width {
			grid[r][c] = '•'
		}
	}

	var sb strings.Builder
	for _, line := range grid {
		sb.WriteString(string(line))
		sb.WriteRune('\n')
	}
	return sb.String()
}
