package module

import (
	"fmt"
	"strings"

	"github.com/crsim/propagation-core/internal/candidate"
	"github.com/crsim/propagation-core/internal/particle"
	"github.com/crsim/propagation-core/pkg/units"
)

// MaximumTrajectoryLength deactivates candidates that traveled further
// than a maximum trajectory length. Candidates closing in on the limit
// have their next step bounded so the final step lands exactly on it. If
// observer positions are set, candidates that cannot reach any of them
// within the remaining length are rejected immediately.
type MaximumTrajectoryLength struct {
	rejector
	maxLength         float64
	observerPositions []particle.Vector3
}

// NewMaximumTrajectoryLength creates the condition with maxLength [m]
func NewMaximumTrajectoryLength(maxLength float64) *MaximumTrajectoryLength {
	return &MaximumTrajectoryLength{
		rejector:  newRejector("MaximumTrajectoryLength"),
		maxLength: maxLength,
	}
}

// SetMaximumTrajectoryLength sets the maximum trajectory length [m]
func (m *MaximumTrajectoryLength) SetMaximumTrajectoryLength(length float64) {
	m.maxLength = length
}

// MaximumLength returns the maximum trajectory length [m]
func (m *MaximumTrajectoryLength) MaximumLength() float64 {
	return m.maxLength
}

// AddObserverPosition adds a position that candidates must still be able
// to reach within the remaining trajectory length
func (m *MaximumTrajectoryLength) AddObserverPosition(position particle.Vector3) {
	m.observerPositions = append(m.observerPositions, position)
}

// Process applies the condition to a candidate
func (m *MaximumTrajectoryLength) Process(c *candidate.Candidate) {
	length := c.TrajectoryLength()
	position := c.Current.Position()

	if len(m.observerPositions) > 0 {
		inRange := false
		for _, obs := range m.observerPositions {
			if position.DistanceTo(obs)+length < m.maxLength {
				inRange = true
			}
		}
		if !inRange {
			m.reject(c)
			return
		}
	}

	if length >= m.maxLength {
		m.reject(c)
	} else {
		c.LimitNextStep(m.maxLength - length)
	}
}

// Description returns a human-readable summary
func (m *MaximumTrajectoryLength) Description() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Maximum trajectory length: %g Mpc, %s", m.maxLength/units.Mpc, m.describe())
	if len(m.observerPositions) > 0 {
		b.WriteString("\n  Observer positions:\n")
		for _, obs := range m.observerPositions {
			fmt.Fprintf(&b, "    - (%g, %g, %g) Mpc\n", obs.X/units.Mpc, obs.Y/units.Mpc, obs.Z/units.Mpc)
		}
	}
	return b.String()
}

// MinimumEnergy deactivates candidates below a minimum energy. A candidate
// exactly at the minimum passes (strict comparison).
type MinimumEnergy struct {
	rejector
	minEnergy float64
}

// NewMinimumEnergy creates the condition with minEnergy [J]
func NewMinimumEnergy(minEnergy float64) *MinimumEnergy {
	return &MinimumEnergy{
		rejector:  newRejector("MinimumEnergy"),
		minEnergy: minEnergy,
	}
}

// SetMinimumEnergy sets the minimum energy [J]
func (m *MinimumEnergy) SetMinimumEnergy(energy float64) {
	m.minEnergy = energy
}

// MinimumEnergy returns the minimum energy [J]
func (m *MinimumEnergy) MinimumEnergy() float64 {
	return m.minEnergy
}

// Process applies the condition to a candidate
func (m *MinimumEnergy) Process(c *candidate.Candidate) {
	if c.Current.Energy() > m.minEnergy {
		return
	}
	m.reject(c)
}

// Description returns a human-readable summary
func (m *MinimumEnergy) Description() string {
	return fmt.Sprintf("Minimum energy: %g EeV, %s", m.minEnergy/units.EeV, m.describe())
}

// MinimumRigidity deactivates candidates below a minimum rigidity
// (energy per absolute charge number). Neutral particles have infinite
// rigidity and always pass.
type MinimumRigidity struct {
	rejector
	minRigidity float64
}

// NewMinimumRigidity creates the condition with minRigidity [J]
func NewMinimumRigidity(minRigidity float64) *MinimumRigidity {
	return &MinimumRigidity{
		rejector:    newRejector("MinimumRigidity"),
		minRigidity: minRigidity,
	}
}

// SetMinimumRigidity sets the minimum rigidity [J]
func (m *MinimumRigidity) SetMinimumRigidity(minRigidity float64) {
	m.minRigidity = minRigidity
}

// Process applies the condition to a candidate
func (m *MinimumRigidity) Process(c *candidate.Candidate) {
	if c.Current.Rigidity() < m.minRigidity {
		m.reject(c)
	}
}

// Description returns a human-readable summary
func (m *MinimumRigidity) Description() string {
	return fmt.Sprintf("Minimum rigidity: %g EeV, %s", m.minRigidity/units.EeV, m.describe())
}

// MinimumRedshift deactivates candidates at or below a minimum redshift
type MinimumRedshift struct {
	rejector
	zmin float64
}

// NewMinimumRedshift creates the condition with the minimum redshift zmin
func NewMinimumRedshift(zmin float64) *MinimumRedshift {
	return &MinimumRedshift{
		rejector: newRejector("MinimumRedshift"),
		zmin:     zmin,
	}
}

// SetMinimumRedshift sets the minimum redshift
func (m *MinimumRedshift) SetMinimumRedshift(z float64) {
	m.zmin = z
}

// Process applies the condition to a candidate
func (m *MinimumRedshift) Process(c *candidate.Candidate) {
	if c.Redshift() > m.zmin {
		return
	}
	m.reject(c)
}

// Description returns a human-readable summary
func (m *MinimumRedshift) Description() string {
	return fmt.Sprintf("Minimum redshift: %g, %s", m.zmin, m.describe())
}

// MinimumChargeNumber deactivates candidates at or below a minimum charge
// number
type MinimumChargeNumber struct {
	rejector
	minChargeNumber int
}

// NewMinimumChargeNumber creates the condition with the minimum charge
// number
func NewMinimumChargeNumber(minChargeNumber int) *MinimumChargeNumber {
	return &MinimumChargeNumber{
		rejector:        newRejector("MinimumChargeNumber"),
		minChargeNumber: minChargeNumber,
	}
}

// SetMinimumChargeNumber sets the minimum charge number
func (m *MinimumChargeNumber) SetMinimumChargeNumber(chargeNumber int) {
	m.minChargeNumber = chargeNumber
}

// Process applies the condition to a candidate
func (m *MinimumChargeNumber) Process(c *candidate.Candidate) {
	if particle.ChargeNumber(c.Current.ID()) > m.minChargeNumber {
		return
	}
	m.reject(c)
}

// Description returns a human-readable summary
func (m *MinimumChargeNumber) Description() string {
	return fmt.Sprintf("Minimum charge number: %d, %s", m.minChargeNumber, m.describe())
}

// MinimumEnergyPerParticleId deactivates candidates below a per-particle-id
// minimum energy, with a fallback minimum for ids not listed. The id list
// is scanned linearly in insertion order and the first match wins; a
// matching id that passes its own threshold is not checked against the
// fallback.
type MinimumEnergyPerParticleId struct {
	rejector
	particleIds     []int
	minEnergies     []float64
	minEnergyOthers float64
}

// NewMinimumEnergyPerParticleId creates the condition with the fallback
// minimum energy [J] for unlisted ids
func NewMinimumEnergyPerParticleId(minEnergyOthers float64) *MinimumEnergyPerParticleId {
	return &MinimumEnergyPerParticleId{
		rejector:        newRejector("MinimumEnergyPerParticleId"),
		minEnergyOthers: minEnergyOthers,
	}
}

// Add registers a minimum energy [J] for a particle id
func (m *MinimumEnergyPerParticleId) Add(id int, energy float64) {
	m.particleIds = append(m.particleIds, id)
	m.minEnergies = append(m.minEnergies, energy)
}

// SetMinimumEnergyOthers sets the fallback minimum energy [J]
func (m *MinimumEnergyPerParticleId) SetMinimumEnergyOthers(energy float64) {
	m.minEnergyOthers = energy
}

// Process applies the condition to a candidate
func (m *MinimumEnergyPerParticleId) Process(c *candidate.Candidate) {
	for i, id := range m.particleIds {
		if c.Current.ID() == id {
			if c.Current.Energy() < m.minEnergies[i] {
				m.reject(c)
			}
			return
		}
	}

	if c.Current.Energy() < m.minEnergyOthers {
		m.reject(c)
	}
}

// Description returns a human-readable summary
func (m *MinimumEnergyPerParticleId) Description() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Minimum energy for non-specified particles: %g eV", m.minEnergyOthers/units.ElectronVolt)
	for i, id := range m.particleIds {
		fmt.Fprintf(&b, ", for particle %d: %g eV", id, m.minEnergies[i]/units.ElectronVolt)
	}
	fmt.Fprintf(&b, ", %s", m.describe())
	return b.String()
}

// DetectionLength rejects candidates whose trajectory length crossed a
// detection length within the current step, resolving the crossing to
// sub-step precision by bounding the next step beforehand.
type DetectionLength struct {
	rejector
	detLength float64
}

// NewDetectionLength creates the condition with detLength [m]
func NewDetectionLength(detLength float64) *DetectionLength {
	return &DetectionLength{
		rejector:  newRejector("DetectionLength"),
		detLength: detLength,
	}
}

// SetDetectionLength sets the detection length [m]
func (m *DetectionLength) SetDetectionLength(length float64) {
	m.detLength = length
}

// DetectionLength returns the detection length [m]
func (m *DetectionLength) DetectionLength() float64 {
	return m.detLength
}

// Process applies the condition to a candidate
func (m *DetectionLength) Process(c *candidate.Candidate) {
	length := c.TrajectoryLength()
	step := c.CurrentStep()

	if length >= m.detLength && length-step < m.detLength {
		m.reject(c)
	} else {
		c.LimitNextStep(m.detLength - length)
	}
}

// Description returns a human-readable summary
func (m *DetectionLength) Description() string {
	return fmt.Sprintf("Detection length: %g kpc, %s", m.detLength/units.Kpc, m.describe())
}
