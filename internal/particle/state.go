package particle

import (
	"math"

	"github.com/crsim/propagation-core/pkg/units"
)

// ParticleState holds the phase-space point of a single particle: identity
// code, energy [J], position [m] and direction of motion (unit vector).
// The rest mass is resolved from the identity code on assignment.
type ParticleState struct {
	id        int
	energy    float64
	position  Vector3
	direction Vector3
	pmass     float64
	charge    int
}

// NewState creates a particle state. The direction is normalized; the rest
// mass is looked up for nucleus ids and is an error when the nuclear mass
// table has no entry for the id.
func NewState(id int, energy float64, position, direction Vector3) (ParticleState, error) {
	var p ParticleState
	if err := p.SetID(id); err != nil {
		return ParticleState{}, err
	}
	p.SetEnergy(energy)
	p.SetPosition(position)
	p.SetDirection(direction)
	return p, nil
}

// ID returns the particle identity code
func (p *ParticleState) ID() int {
	return p.id
}

// SetID sets the particle identity code and resolves charge number and
// rest mass from it
func (p *ParticleState) SetID(id int) error {
	p.id = id
	p.charge = ChargeNumber(id)
	if IsNucleus(id) {
		m, err := NucleusMass(id)
		if err != nil {
			return err
		}
		p.pmass = m
		return nil
	}
	switch id {
	case IDElectron, IDPositron:
		p.pmass = units.MassElectron
		if id == IDElectron {
			p.charge = -1
		} else {
			p.charge = 1
		}
	default:
		p.pmass = 0
	}
	return nil
}

// Energy returns the particle energy [J]
func (p *ParticleState) Energy() float64 {
	return p.energy
}

// SetEnergy sets the particle energy [J], floored at zero. Any further
// domain validation is the caller's responsibility.
func (p *ParticleState) SetEnergy(energy float64) {
	p.energy = math.Max(0, energy)
}

// Position returns the particle position [m]
func (p *ParticleState) Position() Vector3 {
	return p.position
}

// SetPosition sets the particle position [m]
func (p *ParticleState) SetPosition(position Vector3) {
	p.position = position
}

// Direction returns the direction of motion (unit vector)
func (p *ParticleState) Direction() Vector3 {
	return p.direction
}

// SetDirection sets the direction of motion, normalizing it
func (p *ParticleState) SetDirection(direction Vector3) {
	p.direction = direction.Normalized()
}

// Mass returns the rest mass [kg] resolved at SetID time
func (p *ParticleState) Mass() float64 {
	return p.pmass
}

// ChargeNumber returns the charge number Z of the particle
func (p *ParticleState) ChargeNumber() int {
	return p.charge
}

// LorentzFactor returns E / (m c^2), +Inf for massless particles
func (p *ParticleState) LorentzFactor() float64 {
	if p.pmass == 0 {
		return math.Inf(1)
	}
	return p.energy / (p.pmass * units.CLight * units.CLight)
}

// Rigidity returns the particle energy divided by its absolute charge
// number [J], +Inf for neutral particles
func (p *ParticleState) Rigidity() float64 {
	z := p.charge
	if z < 0 {
		z = -z
	}
	if z == 0 {
		return math.Inf(1)
	}
	return p.energy / float64(z)
}
