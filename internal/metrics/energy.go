package metrics

import (
	"math"

	"github.com/san-kum/balls/internal/physics"
)

// KineticEnergy averages total 0.5*m*|v|^2 over the observed ticks.
type KineticEnergy struct {
	name    string
	samples int
	total   float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(bodies []physics.Body, arena physics.Arena, t float64) {
	k.total += physics.TotalKineticEnergy(bodies)
	k.samples++
}

func (k *KineticEnergy) Value() float64 {
	if k.samples == 0 {
		return 0
	}
	return k.total / float64(k.samples)
}

func (k *KineticEnergy) Reset() {
	k.total = 0
	k.samples = 0
}

// EnergyDrift is the largest relative deviation of kinetic plus potential
// energy from its first observed value.
type EnergyDrift struct {
	name          string
	gravity       float64
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(gravity float64) *EnergyDrift {
	return &EnergyDrift{
		name:    "energy_drift",
		gravity: gravity,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(bodies []physics.Body, arena physics.Arena, t float64) {
	energy := physics.TotalEnergy(bodies, e.gravity)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
