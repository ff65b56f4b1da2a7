package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func mustBody(t *testing.T, pos, vel mgl64.Vec2, radius, mass float64) Body {
	t.Helper()
	b, err := NewBody(pos, vel, radius, mass)
	if err != nil {
		t.Fatalf("NewBody: %v", err)
	}
	return b
}

func TestGravity(t *testing.T) {
	b := Body{GroundSlack: math.Inf(1)}
	applyGravity(&b, 10, 0.1)
	if math.Abs(b.Velocity[1]+1) > 1e-12 {
		t.Errorf("vy = %v, want -1", b.Velocity[1])
	}
}

func TestDampedGravity(t *testing.T) {
	tests := []struct {
		name  string
		slack float64
		want  float64
	}{
		{"free fall", math.Inf(1), -1},
		{"half room", 0.05, -0.5},
		{"resting", 0, 0},
		{"plenty of room", 3, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Body{GroundSlack: tt.slack}
			applyDampedGravity(&b, 10, 0.1)
			if math.Abs(b.Velocity[1]-tt.want) > 1e-12 {
				t.Errorf("vy = %v, want %v", b.Velocity[1], tt.want)
			}
			if !math.IsInf(b.GroundSlack, 1) {
				t.Errorf("slack not reset: %v", b.GroundSlack)
			}
		})
	}
}

func TestGravityFactor_ZeroGravity(t *testing.T) {
	if f := gravityFactor(0, 0, 0.1); f != 1 {
		t.Errorf("gravityFactor() = %v, want 1", f)
	}
}

func TestBoundary_RightWall(t *testing.T) {
	arena := CenteredArena(200, 200)
	bodies := []Body{mustBody(t, mgl64.Vec2{95, 0}, mgl64.Vec2{50, 0}, 10, 1)}

	e := NewEngine(0, DefaultOptions())
	e.Step(bodies, arena, 0.1)

	b := bodies[0]
	if b.Velocity[0] >= 0 {
		t.Errorf("vx = %v, want negative", b.Velocity[0])
	}
	if b.Position[0] > 90 {
		t.Errorf("x = %v, want <= 90", b.Position[0])
	}
	c := e.Contacts()
	if c.WallBounces != 1 || c.Clamps != 1 {
		t.Errorf("contacts = %+v, want 1 bounce and 1 clamp", c)
	}
}

func TestBoundary_FloorSetsSlack(t *testing.T) {
	arena := CenteredArena(200, 200)
	bodies := []Body{mustBody(t, mgl64.Vec2{0, -85}, mgl64.Vec2{0, -100}, 10, 1)}

	e := NewEngine(0, DefaultOptions())
	e.Step(bodies, arena, 0.1)

	b := bodies[0]
	if b.Velocity[1] != 100 {
		t.Errorf("vy = %v, want 100", b.Velocity[1])
	}
	if math.Abs(b.GroundSlack-5) > 1e-9 {
		t.Errorf("slack = %v, want 5", b.GroundSlack)
	}
	if math.Abs(b.Position[1]+75) > 1e-9 {
		t.Errorf("y = %v, want -75", b.Position[1])
	}
}

func TestBoundary_DirectionAware(t *testing.T) {
	tests := []struct {
		name   string
		aware  bool
		wantVx float64
	}{
		{"moving inward is kept", true, -5},
		{"naive check reflects", false, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.DirectionAware = tt.aware
			pos, vel := 95.0, -5.0
			res := resolveAxis(&pos, &vel, 10, -100, 100, 0.1, opts)
			if vel != tt.wantVx {
				t.Errorf("vx = %v, want %v", vel, tt.wantVx)
			}
			if !res.clamped || pos != 90 {
				t.Errorf("pos = %v clamped = %v, want 90 and clamped", pos, res.clamped)
			}
		})
	}
}

func TestBoundary_NoCorrection(t *testing.T) {
	opts := BasicOptions()
	pos, vel := 95.0, 50.0
	res := resolveAxis(&pos, &vel, 10, -100, 100, 0.1, opts)
	if !res.bounced || vel != -50 {
		t.Errorf("vel = %v bounced = %v, want -50 and bounced", vel, res.bounced)
	}
	if pos != 95 || res.clamped {
		t.Errorf("pos = %v, want untouched 95", pos)
	}
}

func TestBoundary_OversizedBodyIsPinned(t *testing.T) {
	arena := CenteredArena(100, 100)
	bodies := []Body{mustBody(t, mgl64.Vec2{10, 0}, mgl64.Vec2{3, 2}, 80, 1)}
	e := NewEngine(0, DefaultOptions())

	for i := 0; i < 5; i++ {
		e.Step(bodies, arena, 0.1)
		b := bodies[0]
		if b.Position != (mgl64.Vec2{0, 0}) || b.Velocity != (mgl64.Vec2{0, 0}) {
			t.Fatalf("step %d: pos=%v vel=%v, want pinned at origin", i, b.Position, b.Velocity)
		}
	}
}

func TestBoundary_OffsetArena(t *testing.T) {
	arena := Arena{Left: 0, Right: 200, Bottom: 0, Top: 100}
	pos, vel := 5.0, -100.0
	res := resolveAxis(&pos, &vel, 10, arena.Left, arena.Right, 0.1, DefaultOptions())
	if !res.bounced || vel != 100 {
		t.Errorf("vel = %v, want 100", vel)
	}
	if pos != 10 {
		t.Errorf("pos = %v, want 10", pos)
	}
}

func TestPairwise_HeadOnEqualMass(t *testing.T) {
	bodies := []Body{
		mustBody(t, mgl64.Vec2{-10, 0}, mgl64.Vec2{10, 0}, 10, 1),
		mustBody(t, mgl64.Vec2{10, 0}, mgl64.Vec2{-10, 0}, 10, 1),
	}
	e := NewEngine(0, DefaultOptions())
	e.Step(bodies, CenteredArena(2000, 2000), 0.1)

	if !bodies[0].Velocity.ApproxEqualThreshold(mgl64.Vec2{-10, 0}, 1e-9) {
		t.Errorf("A velocity = %v, want [-10 0]", bodies[0].Velocity)
	}
	if !bodies[1].Velocity.ApproxEqualThreshold(mgl64.Vec2{10, 0}, 1e-9) {
		t.Errorf("B velocity = %v, want [10 0]", bodies[1].Velocity)
	}
	if e.Contacts().PairBounces != 1 {
		t.Errorf("pair bounces = %d, want 1", e.Contacts().PairBounces)
	}
}

func TestElasticBounce_Conservation(t *testing.T) {
	a := Body{Velocity: mgl64.Vec2{3, 1}, Mass: 2, Radius: 1}
	b := Body{Velocity: mgl64.Vec2{-2, 4}, Mass: 5, Radius: 1}
	n := mgl64.Vec2{1, 1}.Normalize()

	pBefore := a.Momentum().Add(b.Momentum())
	eBefore := a.KineticEnergy() + b.KineticEnergy()

	ElasticBounce(&a, &b, n)

	pAfter := a.Momentum().Add(b.Momentum())
	eAfter := a.KineticEnergy() + b.KineticEnergy()

	if !pBefore.ApproxEqualThreshold(pAfter, 1e-9) {
		t.Errorf("momentum %v -> %v", pBefore, pAfter)
	}
	if math.Abs(eBefore-eAfter) > 1e-9 {
		t.Errorf("energy %v -> %v", eBefore, eAfter)
	}

	// Tangential components are untouched.
	tangent := mgl64.Vec2{-n[1], n[0]}
	if math.Abs(a.Velocity.Dot(tangent)-mgl64.Vec2{3, 1}.Dot(tangent)) > 1e-9 {
		t.Error("tangential velocity of A changed")
	}
}

func TestExchangeBounce(t *testing.T) {
	a := Body{Velocity: mgl64.Vec2{5, 0}, Mass: 1, Radius: 1}
	b := Body{Velocity: mgl64.Vec2{-3, 0}, Mass: 1, Radius: 1}
	ExchangeBounce(&a, &b, mgl64.Vec2{1, 0})
	if a.Velocity != (mgl64.Vec2{-5, 0}) || b.Velocity != (mgl64.Vec2{3, 0}) {
		t.Errorf("velocities = %v, %v", a.Velocity, b.Velocity)
	}
}

func TestSeparate(t *testing.T) {
	tests := []struct {
		name         string
		posA, posB   mgl64.Vec2
		wantA, wantB mgl64.Vec2
	}{
		{"along x", mgl64.Vec2{0, 0}, mgl64.Vec2{15, 0}, mgl64.Vec2{-2.5, 0}, mgl64.Vec2{17.5, 0}},
		{"coincident", mgl64.Vec2{0, 0}, mgl64.Vec2{0, 0}, mgl64.Vec2{-10, 0}, mgl64.Vec2{10, 0}},
		{"apart is untouched", mgl64.Vec2{0, 0}, mgl64.Vec2{30, 0}, mgl64.Vec2{0, 0}, mgl64.Vec2{30, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Body{Position: tt.posA, Radius: 10, Mass: 1}
			b := Body{Position: tt.posB, Radius: 10, Mass: 1}
			Separate(&a, &b)
			if !a.Position.ApproxEqual(tt.wantA) || !b.Position.ApproxEqual(tt.wantB) {
				t.Errorf("positions = %v, %v, want %v, %v", a.Position, b.Position, tt.wantA, tt.wantB)
			}
		})
	}
}

func TestPairwise_CoincidentWithoutSeparation(t *testing.T) {
	opts := DefaultOptions()
	opts.SeparateOverlaps = false
	bodies := []Body{
		mustBody(t, mgl64.Vec2{0, 0}, mgl64.Vec2{1, 0}, 5, 1),
		mustBody(t, mgl64.Vec2{0, 0}, mgl64.Vec2{1, 0}, 5, 1),
	}
	e := NewEngine(0, opts)
	e.Step(bodies, CenteredArena(200, 200), 0.1)

	for i, b := range bodies {
		if !b.IsValid() {
			t.Fatalf("body %d not finite: %+v", i, b)
		}
		if b.Velocity != (mgl64.Vec2{1, 0}) {
			t.Errorf("body %d velocity = %v, want unchanged", i, b.Velocity)
		}
	}
	if e.Contacts().PairBounces != 0 {
		t.Errorf("pair bounces = %d, want 0", e.Contacts().PairBounces)
	}
}

func TestPairwise_OneResponsePerTick(t *testing.T) {
	// B overlaps both A and C; only the (A, B) pair is handled this tick.
	bodies := []Body{
		mustBody(t, mgl64.Vec2{-15, 0}, mgl64.Vec2{}, 10, 1),
		mustBody(t, mgl64.Vec2{0, 0}, mgl64.Vec2{}, 10, 1),
		mustBody(t, mgl64.Vec2{15, 0}, mgl64.Vec2{}, 10, 1),
	}
	e := NewEngine(0, DefaultOptions())
	e.Step(bodies, CenteredArena(1000, 1000), 0.01)

	if got := e.Contacts().Separations; got != 1 {
		t.Errorf("separations = %d, want 1", got)
	}
	if bodies[2].Position != (mgl64.Vec2{15, 0}) {
		t.Errorf("C moved to %v on the first tick", bodies[2].Position)
	}
}

func TestIntegrate(t *testing.T) {
	b := Body{Position: mgl64.Vec2{1, 1}, Velocity: mgl64.Vec2{10, -10}}
	if !Integrate(&b, 0.5) {
		t.Fatal("Integrate reported repair on finite input")
	}
	if b.Position != (mgl64.Vec2{6, -4}) {
		t.Errorf("position = %v, want [6 -4]", b.Position)
	}
}

func TestStep_RepairsNonFinite(t *testing.T) {
	bodies := []Body{
		{Position: mgl64.Vec2{0, 0}, Velocity: mgl64.Vec2{math.Inf(1), 0}, Radius: 1, Mass: 1, GroundSlack: math.Inf(1)},
		{Position: mgl64.Vec2{50, 0}, Velocity: mgl64.Vec2{math.NaN(), 0}, Radius: 1, Mass: 1, GroundSlack: math.Inf(1)},
	}
	e := NewEngine(0, DefaultOptions())
	e.Step(bodies, CenteredArena(200, 200), 0.1)

	for i, b := range bodies {
		if !b.IsValid() {
			t.Errorf("body %d not finite after step: %+v", i, b)
		}
	}
	if e.Contacts().Repaired != 2 {
		t.Errorf("repaired = %d, want 2", e.Contacts().Repaired)
	}
}

func TestParseCollisionMode(t *testing.T) {
	tests := []struct {
		in   string
		want CollisionMode
		ok   bool
	}{
		{"mass_weighted", MassWeighted, true},
		{"", MassWeighted, true},
		{"equal_mass", EqualMassExchange, true},
		{"Exchange", EqualMassExchange, true},
		{"bogus", 0, false},
	}

	for _, tt := range tests {
		got, err := ParseCollisionMode(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseCollisionMode(%q) err = %v", tt.in, err)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("ParseCollisionMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
