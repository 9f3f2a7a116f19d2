package module

import (
	"testing"

	"github.com/crsim/propagation-core/internal/candidate"
	"github.com/crsim/propagation-core/internal/particle"
	"github.com/crsim/propagation-core/pkg/units"
)

func newProton(t *testing.T, energy float64) *candidate.Candidate {
	t.Helper()
	s, err := particle.NewState(particle.NucleusID(1, 1), energy,
		particle.NewVector3(0, 0, 0), particle.NewVector3(0, 0, 1))
	if err != nil {
		t.Fatalf("NewState failed: %v", err)
	}
	return candidate.New(s)
}

func TestMaximumTrajectoryLengthLimitsNextStep(t *testing.T) {
	bc := NewMaximumTrajectoryLength(10 * units.Mpc)
	c := newProton(t, 1*units.EeV)
	c.SetTrajectoryLength(9 * units.Mpc)
	c.SetNextStep(5 * units.Mpc)

	bc.Process(c)

	if !c.IsActive() {
		t.Error("candidate below the limit should stay active")
	}
	if got := c.NextStep(); got != 1*units.Mpc {
		t.Errorf("next step = %g Mpc, want 1 Mpc", got/units.Mpc)
	}
}

func TestMaximumTrajectoryLengthRejects(t *testing.T) {
	bc := NewMaximumTrajectoryLength(10 * units.Mpc)
	c := newProton(t, 1*units.EeV)
	c.SetTrajectoryLength(10 * units.Mpc)

	bc.Process(c)

	if c.IsActive() {
		t.Error("candidate at the limit should be deactivated")
	}
	if v, ok := c.Tag(DefaultRejectFlagKey); !ok || v != "MaximumTrajectoryLength" {
		t.Errorf("reject tag = %q, %v", v, ok)
	}
}

func TestMaximumTrajectoryLengthObserverOutOfRange(t *testing.T) {
	bc := NewMaximumTrajectoryLength(10 * units.Mpc)
	bc.AddObserverPosition(particle.NewVector3(100*units.Mpc, 0, 0))
	c := newProton(t, 1*units.EeV)

	bc.Process(c)

	if c.IsActive() {
		t.Error("candidate that cannot reach any observer should be rejected")
	}
}

func TestMaximumTrajectoryLengthObserverInRange(t *testing.T) {
	bc := NewMaximumTrajectoryLength(10 * units.Mpc)
	bc.AddObserverPosition(particle.NewVector3(5*units.Mpc, 0, 0))
	c := newProton(t, 1*units.EeV)

	bc.Process(c)

	if !c.IsActive() {
		t.Error("candidate within reach of an observer should stay active")
	}
}

func TestMinimumEnergyStrictComparison(t *testing.T) {
	bc := NewMinimumEnergy(5 * units.EeV)

	above := newProton(t, 6*units.EeV)
	bc.Process(above)
	if !above.IsActive() {
		t.Error("candidate above the minimum should stay active")
	}

	at := newProton(t, 5*units.EeV)
	bc.Process(at)
	if at.IsActive() {
		t.Error("candidate exactly at the minimum should be rejected")
	}

	below := newProton(t, 4*units.EeV)
	bc.Process(below)
	if below.IsActive() {
		t.Error("candidate below the minimum should be rejected")
	}
}

func TestRejectIdempotent(t *testing.T) {
	bc := NewMinimumEnergy(5 * units.EeV)
	c := newProton(t, 1*units.EeV)

	bc.Process(c)
	bc.Process(c)

	if c.IsActive() {
		t.Error("candidate should stay deactivated")
	}
	if v, _ := c.Tag(DefaultRejectFlagKey); v != "MinimumEnergy" {
		t.Errorf("reject tag = %q, want MinimumEnergy", v)
	}
}

func TestRejectFlagConfigurable(t *testing.T) {
	bc := NewMinimumEnergy(5 * units.EeV)
	bc.SetRejectFlag("Deleted", "too slow")
	bc.SetMakeRejectedInactive(false)
	c := newProton(t, 1*units.EeV)

	bc.Process(c)

	if !c.IsActive() {
		t.Error("candidate should stay active when deactivation is disabled")
	}
	if v, ok := c.Tag("Deleted"); !ok || v != "too slow" {
		t.Errorf("custom flag = %q, %v, want 'too slow', true", v, ok)
	}
	if c.HasTag(DefaultRejectFlagKey) {
		t.Error("default flag key should not be set")
	}
}

type countingModule struct {
	calls int
}

func (m *countingModule) Process(c *candidate.Candidate) { m.calls++ }
func (m *countingModule) Description() string            { return "counting module" }

func TestOnRejectAction(t *testing.T) {
	action := &countingModule{}
	bc := NewMinimumEnergy(5 * units.EeV)
	bc.OnReject(action)

	pass := newProton(t, 6*units.EeV)
	bc.Process(pass)
	if action.calls != 0 {
		t.Errorf("action calls after pass = %d, want 0", action.calls)
	}

	fail := newProton(t, 1*units.EeV)
	bc.Process(fail)
	if action.calls != 1 {
		t.Errorf("action calls after reject = %d, want 1", action.calls)
	}
}

func TestMinimumRigidityNeutronPasses(t *testing.T) {
	bc := NewMinimumRigidity(2 * units.EeV)

	s, err := particle.NewState(particle.NucleusID(1, 0), 1*units.EeV,
		particle.NewVector3(0, 0, 0), particle.NewVector3(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	c := candidate.New(s)

	bc.Process(c)

	if !c.IsActive() {
		t.Error("neutral candidate has infinite rigidity and should pass")
	}
}

func TestMinimumRigidityProton(t *testing.T) {
	bc := NewMinimumRigidity(2 * units.EeV)

	pass := newProton(t, 3*units.EeV)
	bc.Process(pass)
	if !pass.IsActive() {
		t.Error("proton above the rigidity threshold should pass")
	}

	fail := newProton(t, 1*units.EeV)
	bc.Process(fail)
	if fail.IsActive() {
		t.Error("proton below the rigidity threshold should be rejected")
	}
}

func TestMinimumRedshift(t *testing.T) {
	bc := NewMinimumRedshift(0.1)

	pass := newProton(t, 1*units.EeV)
	pass.SetRedshift(0.5)
	bc.Process(pass)
	if !pass.IsActive() {
		t.Error("candidate above the minimum redshift should pass")
	}

	fail := newProton(t, 1*units.EeV)
	fail.SetRedshift(0.1)
	bc.Process(fail)
	if fail.IsActive() {
		t.Error("candidate at the minimum redshift should be rejected")
	}
}

func TestMinimumChargeNumber(t *testing.T) {
	bc := NewMinimumChargeNumber(1)

	proton := newProton(t, 1*units.EeV)
	bc.Process(proton)
	if proton.IsActive() {
		t.Error("proton at Z=1 should be rejected by a Z>1 requirement")
	}

	s, err := particle.NewState(particle.NucleusID(1, 0), 1*units.EeV,
		particle.NewVector3(0, 0, 0), particle.NewVector3(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	neutron := candidate.New(s)
	bc.Process(neutron)
	if neutron.IsActive() {
		t.Error("neutron at Z=0 should be rejected")
	}
}

func TestMinimumEnergyPerParticleIdFirstMatchWins(t *testing.T) {
	bc := NewMinimumEnergyPerParticleId(10 * units.EeV)
	protonID := particle.NucleusID(1, 1)
	bc.Add(protonID, 2*units.EeV)
	bc.Add(protonID, 8*units.EeV)

	// 5 EeV passes the first entry (2 EeV) and must not be checked
	// against the second (8 EeV) or the fallback (10 EeV)
	c := newProton(t, 5*units.EeV)
	bc.Process(c)
	if !c.IsActive() {
		t.Error("first matching entry should win")
	}

	fail := newProton(t, 1*units.EeV)
	bc.Process(fail)
	if fail.IsActive() {
		t.Error("candidate below its id threshold should be rejected")
	}
}

func TestMinimumEnergyPerParticleIdFallback(t *testing.T) {
	bc := NewMinimumEnergyPerParticleId(10 * units.EeV)
	bc.Add(particle.IDElectron, 1*units.EeV)

	// Proton is unlisted, so the fallback applies
	c := newProton(t, 5*units.EeV)
	bc.Process(c)
	if c.IsActive() {
		t.Error("unlisted candidate below the fallback should be rejected")
	}

	pass := newProton(t, 11*units.EeV)
	bc.Process(pass)
	if !pass.IsActive() {
		t.Error("unlisted candidate above the fallback should pass")
	}
}

func TestDetectionLength(t *testing.T) {
	bc := NewDetectionLength(10 * units.Mpc)

	// Crossed the detection length within this step
	crossed := newProton(t, 1*units.EeV)
	crossed.SetTrajectoryLength(8 * units.Mpc)
	crossed.SetCurrentStep(3 * units.Mpc) // length now 11 Mpc
	bc.Process(crossed)
	if crossed.IsActive() {
		t.Error("candidate crossing the detection length should be rejected")
	}

	// Approaching: next step gets bounded to land on the crossing
	approaching := newProton(t, 1*units.EeV)
	approaching.SetTrajectoryLength(7 * units.Mpc)
	approaching.SetNextStep(50 * units.Mpc)
	bc.Process(approaching)
	if !approaching.IsActive() {
		t.Error("candidate short of the detection length should stay active")
	}
	if got := approaching.NextStep(); got != 3*units.Mpc {
		t.Errorf("next step = %g Mpc, want 3 Mpc", got/units.Mpc)
	}

	// Already beyond by more than one step: not a fresh crossing
	beyond := newProton(t, 1*units.EeV)
	beyond.SetTrajectoryLength(15 * units.Mpc)
	beyond.SetCurrentStep(1 * units.Mpc)
	bc.Process(beyond)
	if !beyond.IsActive() {
		t.Error("candidate already past the detection length should not be re-rejected")
	}
}
