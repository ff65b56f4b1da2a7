package analysis

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/balls/internal/physics"
	"github.com/san-kum/balls/internal/sim"
)

func TestDominantFrequency(t *testing.T) {
	const dt = 0.01
	data := make([]float64, 200)
	for i := range data {
		data[i] = 3 + math.Sin(2*math.Pi*5*float64(i)*dt)
	}

	f, mag := DominantFrequency(data, dt)
	if math.Abs(f-5) > 1e-9 {
		t.Errorf("frequency = %v, want 5", f)
	}
	if mag <= 0 {
		t.Errorf("magnitude = %v, want > 0", mag)
	}

	ps := PowerSpectrum(data)
	if len(ps) != 100 {
		t.Errorf("len(PowerSpectrum) = %d, want 100", len(ps))
	}
	if ps[0] > 1e-9 {
		t.Errorf("DC bin = %v, mean should be removed", ps[0])
	}
}

func TestDominantFrequencyDegenerate(t *testing.T) {
	tests := []struct {
		name string
		data []float64
		dt   float64
	}{
		{"empty", nil, 0.1},
		{"single", []float64{1}, 0.1},
		{"zero dt", []float64{1, 2, 3, 4}, 0},
	}
	for _, tt := range tests {
		if f, _ := DominantFrequency(tt.data, tt.dt); f != 0 {
			t.Errorf("%s: frequency = %v, want 0", tt.name, f)
		}
	}
}

func dropRun(t *testing.T, duration float64) *sim.Result {
	t.Helper()
	w := physics.NewWorld()
	if _, err := w.Create(mgl64.Vec2{0, 0}, mgl64.Vec2{}, 10, 1); err != nil {
		t.Fatal(err)
	}
	s := sim.New(w, physics.NewEngine(1000, physics.DefaultOptions()), physics.CenteredArena(800, 600))
	res, err := s.Run(context.Background(), sim.Config{Dt: 1e-4, Duration: duration, SampleEvery: 20})
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestBounces(t *testing.T) {
	res := dropRun(t, 3)

	bounces := Bounces(res.Frames, res.Times, 0)
	if len(bounces) != 2 {
		t.Fatalf("got %d bounces (%v), want 2", len(bounces), bounces)
	}

	fall := math.Sqrt(2 * 290 / 1000.0)
	if math.Abs(bounces[0]-fall) > 0.01 {
		t.Errorf("first bounce at %v, want about %v", bounces[0], fall)
	}
	if got := MeanInterval(bounces); math.Abs(got-2*fall) > 0.05*2*fall {
		t.Errorf("bounce period = %v, want about %v", got, 2*fall)
	}
}

func TestSeries(t *testing.T) {
	frames := []sim.Frame{
		{{Position: mgl64.Vec2{0, 4}, Velocity: mgl64.Vec2{3, 4}}},
		{},
	}
	ys := Series(frames, 0, Height)
	if ys[0] != 4 || !math.IsNaN(ys[1]) {
		t.Errorf("Series(Height) = %v", ys)
	}
	if s := Series(frames, 0, Speed); s[0] != 5 {
		t.Errorf("Series(Speed) = %v", s)
	}
	if e := TotalEnergy(frames, 10); e[0] != 0 || e[1] != 0 {
		t.Errorf("massless energy = %v", e)
	}
}

func TestPhasePortrait(t *testing.T) {
	res := dropRun(t, 1)
	p := PhasePortrait(res.Frames, 0)
	if len(p.Points) != len(res.Frames) {
		t.Fatalf("got %d points, want %d", len(p.Points), len(res.Frames))
	}

	art := p.ASCII(40, 12)
	lines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	if len(lines) != 12 {
		t.Errorf("got %d lines, want 12", len(lines))
	}
	if !strings.ContainsRune(art, '•') {
		t.Error("no points plotted")
	}

	if (&Portrait{}).ASCII(40, 12) != "" {
		t.Error("empty portrait should render nothing")
	}
}

func TestDivergenceRate(t *testing.T) {
	times := make([]float64, 50)
	a := make([]sim.Frame, 50)
	b := make([]sim.Frame, 50)
	for i := range times {
		times[i] = float64(i) * 0.1
		d := 1e-3 * math.Exp(2*times[i])
		a[i] = sim.Frame{{Position: mgl64.Vec2{0, 0}}}
		b[i] = sim.Frame{{Position: mgl64.Vec2{d, 0}}}
	}

	sep := Separation(a, b)
	if math.Abs(sep[0]-1e-3) > 1e-12 {
		t.Errorf("sep[0] = %v, want 1e-3", sep[0])
	}
	if rate := DivergenceRate(sep, times); math.Abs(rate-2) > 1e-9 {
		t.Errorf("DivergenceRate = %v, want 2", rate)
	}

	if rate := DivergenceRate([]float64{0, 0}, []float64{0, 1}); rate != 0 {
		t.Errorf("zero separation rate = %v, want 0", rate)
	}
}

func TestSweep(t *testing.T) {
	build := func(g float64) (*sim.Simulator, error) {
		w := physics.NewWorld()
		w.Create(mgl64.Vec2{0, 0}, mgl64.Vec2{}, 5, 1)
		return sim.New(w, physics.NewEngine(g, physics.DefaultOptions()), physics.CenteredArena(800, 600)), nil
	}
	finalVY := func(r *sim.Result) float64 { return r.Last()[0].Velocity[1] }

	points, err := Sweep(context.Background(), 0, 100, 3, build, sim.Config{Dt: 0.01, Duration: 0.1}, finalVY)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}
	for i, want := range []float64{0, -5, -10} {
		if math.Abs(points[i].Value-want) > 1e-9 {
			t.Errorf("point %d = %+v, want value %v", i, points[i], want)
		}
	}
	if SweepToASCII(points, 20, 5) == "" {
		t.Error("expected a plot")
	}
}
