// Package candidate defines the mutable per-particle simulation record
// that the module chain operates on.
package candidate

import (
	"math"

	"github.com/crsim/propagation-core/internal/particle"
)

// Candidate is a single simulated particle's trajectory record. Current is
// the state mutated by modules during propagation; Created is a snapshot
// taken at construction and never touched afterwards. A candidate is
// terminated by deactivation, never by destruction, so that post-mortem
// tags stay readable by observers.
type Candidate struct {
	Current particle.ParticleState
	Created particle.ParticleState

	redshift         float64
	trajectoryLength float64
	currentStep      float64
	nextStep         float64
	active           bool
	tags             map[string]string
	secondaries      []*Candidate
}

// New creates an active candidate from an initial particle state
func New(state particle.ParticleState) *Candidate {
	return &Candidate{
		Current: state,
		Created: state,
		active:  true,
		tags:    make(map[string]string),
	}
}

// IsActive reports whether the candidate is still being propagated
func (c *Candidate) IsActive() bool {
	return c.active
}

// SetActive sets the active flag. Deactivated candidates keep their state
// and tags.
func (c *Candidate) SetActive(active bool) {
	c.active = active
}

// Redshift returns the candidate's current redshift
func (c *Candidate) Redshift() float64 {
	return c.redshift
}

// SetRedshift sets the candidate's redshift
func (c *Candidate) SetRedshift(z float64) {
	c.redshift = z
}

// TrajectoryLength returns the path length traveled so far [m]
func (c *Candidate) TrajectoryLength() float64 {
	return c.trajectoryLength
}

// SetTrajectoryLength sets the path length traveled so far [m]
func (c *Candidate) SetTrajectoryLength(length float64) {
	c.trajectoryLength = length
}

// CurrentStep returns the step size of the step currently being
// processed [m]
func (c *Candidate) CurrentStep() float64 {
	return c.currentStep
}

// SetCurrentStep sets the size of the step actually taken and accumulates
// it onto the trajectory length
func (c *Candidate) SetCurrentStep(step float64) {
	c.currentStep = step
	c.trajectoryLength += step
}

// NextStep returns the current bound on the next step size [m]
func (c *Candidate) NextStep() float64 {
	return c.nextStep
}

// SetNextStep resets the next-step bound. Called by the propagation module
// once per step; within a step, modules may only shrink the bound through
// LimitNextStep.
func (c *Candidate) SetNextStep(step float64) {
	c.nextStep = step
}

// LimitNextStep lowers the next-step bound to step if it is smaller than
// the current bound. The bound never grows within a step.
func (c *Candidate) LimitNextStep(step float64) {
	c.nextStep = math.Min(c.nextStep, step)
}

// SetTag sets a string tag on the candidate, last write wins
func (c *Candidate) SetTag(key, value string) {
	c.tags[key] = value
}

// Tag returns the value of a tag and whether it is set
func (c *Candidate) Tag(key string) (string, bool) {
	v, ok := c.tags[key]
	return v, ok
}

// HasTag reports whether a tag is set
func (c *Candidate) HasTag(key string) bool {
	_, ok := c.tags[key]
	return ok
}

// Tags returns a copy of all tags
func (c *Candidate) Tags() map[string]string {
	out := make(map[string]string, len(c.tags))
	for k, v := range c.tags {
		out[k] = v
	}
	return out
}

// AddSecondary spawns a secondary candidate with the given identity code
// and energy. The secondary inherits the parent's current position,
// direction, redshift and trajectory length at spawn time and is owned by
// the parent until the driver detaches it.
func (c *Candidate) AddSecondary(id int, energy float64) error {
	state, err := particle.NewState(id, energy, c.Current.Position(), c.Current.Direction())
	if err != nil {
		return err
	}
	s := New(state)
	s.redshift = c.redshift
	s.trajectoryLength = c.trajectoryLength
	c.secondaries = append(c.secondaries, s)
	return nil
}

// Secondaries returns the secondaries owned by this candidate
func (c *Candidate) Secondaries() []*Candidate {
	return c.secondaries
}

// DetachSecondaries hands ownership of the secondaries to the caller and
// clears the candidate's own list
func (c *Candidate) DetachSecondaries() []*Candidate {
	s := c.secondaries
	c.secondaries = nil
	return s
}
