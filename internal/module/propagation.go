package module

import (
	"fmt"

	"github.com/crsim/propagation-core/internal/candidate"
	"github.com/crsim/propagation-core/pkg/units"
	"github.com/crsim/propagation-core/pkg/utils"
)

// SimplePropagation moves the candidate along a straight line. The step
// size is the next-step bound accumulated during the previous chain
// invocation, clipped to [minStep, maxStep]; after moving, the bound is
// reset to maxStep for the modules that follow in this step.
type SimplePropagation struct {
	minStep float64
	maxStep float64
}

// NewSimplePropagation creates a rectilinear propagation module with the
// given step limits [m]
func NewSimplePropagation(minStep, maxStep float64) *SimplePropagation {
	return &SimplePropagation{minStep: minStep, maxStep: maxStep}
}

// MinStep returns the minimum step size [m]
func (m *SimplePropagation) MinStep() float64 {
	return m.minStep
}

// MaxStep returns the maximum step size [m]
func (m *SimplePropagation) MaxStep() float64 {
	return m.maxStep
}

// Process advances the candidate by one rectilinear step
func (m *SimplePropagation) Process(c *candidate.Candidate) {
	step := utils.ClampFloat64(c.NextStep(), m.minStep, m.maxStep)

	pos := c.Current.Position()
	dir := c.Current.Direction()
	c.Current.SetPosition(pos.Add(dir.Scale(step)))

	c.SetCurrentStep(step)
	c.SetNextStep(m.maxStep)
}

// Description returns a human-readable summary
func (m *SimplePropagation) Description() string {
	return fmt.Sprintf("Simple propagation: minStep %g kpc, maxStep %g Mpc",
		m.minStep/units.Kpc, m.maxStep/units.Mpc)
}
