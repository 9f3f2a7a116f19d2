package module

import (
	"fmt"

	"github.com/crsim/propagation-core/internal/candidate"
)

// DefaultRejectFlagKey is the tag key break conditions set on rejection
// unless configured otherwise.
const DefaultRejectFlagKey = "Rejected"

// rejector carries the uniform reject protocol shared by all break
// conditions: set the flag tag, optionally deactivate the candidate, and
// invoke a chained action module. Embed it and call reject.
type rejector struct {
	rejectFlagKey        string
	rejectFlagValue      string
	makeRejectedInactive bool
	rejectAction         Module
}

func newRejector(flagValue string) rejector {
	return rejector{
		rejectFlagKey:        DefaultRejectFlagKey,
		rejectFlagValue:      flagValue,
		makeRejectedInactive: true,
	}
}

// reject applies the protocol to the candidate. Calling it twice on the
// same candidate is side-effect stable.
func (r *rejector) reject(c *candidate.Candidate) {
	c.SetTag(r.rejectFlagKey, r.rejectFlagValue)
	if r.makeRejectedInactive {
		c.SetActive(false)
	}
	if r.rejectAction != nil {
		r.rejectAction.Process(c)
	}
}

// SetRejectFlag configures the tag key/value set on rejection
func (r *rejector) SetRejectFlag(key, value string) {
	r.rejectFlagKey = key
	r.rejectFlagValue = value
}

// SetMakeRejectedInactive configures whether rejection deactivates the
// candidate
func (r *rejector) SetMakeRejectedInactive(inactive bool) {
	r.makeRejectedInactive = inactive
}

// OnReject chains an action module invoked on every rejected candidate,
// e.g. to record it to an output sink
func (r *rejector) OnReject(action Module) {
	r.rejectAction = action
}

// describe renders the shared part of a break condition's description
func (r *rejector) describe() string {
	s := fmt.Sprintf("Flag: '%s' -> '%s', MakeInactive: %v",
		r.rejectFlagKey, r.rejectFlagValue, r.makeRejectedInactive)
	if r.rejectAction != nil {
		s += ", Action: " + r.rejectAction.Description()
	}
	return s
}
