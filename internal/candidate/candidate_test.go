package candidate

import (
	"testing"

	"github.com/crsim/propagation-core/internal/particle"
	"github.com/crsim/propagation-core/pkg/units"
)

func protonState(t *testing.T, energy float64) particle.ParticleState {
	t.Helper()
	s, err := particle.NewState(particle.NucleusID(1, 1), energy,
		particle.NewVector3(0, 0, 0), particle.NewVector3(0, 0, 1))
	if err != nil {
		t.Fatalf("NewState failed: %v", err)
	}
	return s
}

func TestNewCandidate(t *testing.T) {
	c := New(protonState(t, 1*units.EeV))

	if !c.IsActive() {
		t.Error("new candidate should be active")
	}
	if c.TrajectoryLength() != 0 {
		t.Errorf("trajectory length = %g, want 0", c.TrajectoryLength())
	}
	if c.NextStep() != 0 {
		t.Errorf("next step = %g, want 0", c.NextStep())
	}
	if c.Created.Energy() != c.Current.Energy() {
		t.Error("created snapshot should match current state at construction")
	}
}

func TestCreatedSnapshotImmutable(t *testing.T) {
	c := New(protonState(t, 1*units.EeV))
	c.Current.SetEnergy(0.5 * units.EeV)

	if c.Created.Energy() != 1*units.EeV {
		t.Errorf("created energy = %g, want %g", c.Created.Energy(), 1*units.EeV)
	}
}

func TestSetCurrentStepAccumulates(t *testing.T) {
	c := New(protonState(t, 1*units.EeV))

	c.SetCurrentStep(3 * units.Mpc)
	c.SetCurrentStep(2 * units.Mpc)

	if got := c.TrajectoryLength(); got != 5*units.Mpc {
		t.Errorf("trajectory length = %g, want %g", got, 5*units.Mpc)
	}
	if got := c.CurrentStep(); got != 2*units.Mpc {
		t.Errorf("current step = %g, want %g", got, 2*units.Mpc)
	}
}

func TestLimitNextStepMonotonic(t *testing.T) {
	c := New(protonState(t, 1*units.EeV))

	c.SetNextStep(10 * units.Mpc)
	c.LimitNextStep(4 * units.Mpc)
	if got := c.NextStep(); got != 4*units.Mpc {
		t.Errorf("next step = %g, want %g", got, 4*units.Mpc)
	}

	// A larger limit never grows the bound
	c.LimitNextStep(8 * units.Mpc)
	if got := c.NextStep(); got != 4*units.Mpc {
		t.Errorf("next step after larger limit = %g, want %g", got, 4*units.Mpc)
	}
}

func TestTags(t *testing.T) {
	c := New(protonState(t, 1*units.EeV))

	if c.HasTag("Rejected") {
		t.Error("fresh candidate should have no tags")
	}

	c.SetTag("Rejected", "MinimumEnergy")
	v, ok := c.Tag("Rejected")
	if !ok || v != "MinimumEnergy" {
		t.Errorf("tag = %q, %v, want %q, true", v, ok, "MinimumEnergy")
	}

	c.SetTag("Rejected", "MaximumTrajectoryLength")
	v, _ = c.Tag("Rejected")
	if v != "MaximumTrajectoryLength" {
		t.Errorf("tag after overwrite = %q, want %q", v, "MaximumTrajectoryLength")
	}

	tags := c.Tags()
	tags["Rejected"] = "mutated"
	if v, _ := c.Tag("Rejected"); v == "mutated" {
		t.Error("Tags should return a copy")
	}
}

func TestAddSecondaryInherits(t *testing.T) {
	c := New(protonState(t, 10*units.EeV))
	c.SetRedshift(0.5)
	c.SetTrajectoryLength(7 * units.Mpc)
	c.Current.SetPosition(particle.NewVector3(1, 2, 3))

	if err := c.AddSecondary(particle.NucleusID(1, 0), 1*units.EeV); err != nil {
		t.Fatalf("AddSecondary failed: %v", err)
	}

	secs := c.Secondaries()
	if len(secs) != 1 {
		t.Fatalf("expected 1 secondary, got %d", len(secs))
	}
	s := secs[0]
	if s.Current.ID() != particle.NucleusID(1, 0) {
		t.Errorf("secondary id = %d, want %d", s.Current.ID(), particle.NucleusID(1, 0))
	}
	if s.Redshift() != 0.5 {
		t.Errorf("secondary redshift = %g, want 0.5", s.Redshift())
	}
	if s.TrajectoryLength() != 7*units.Mpc {
		t.Errorf("secondary trajectory length = %g, want %g", s.TrajectoryLength(), 7*units.Mpc)
	}
	if s.Current.Position() != c.Current.Position() {
		t.Error("secondary should inherit parent position")
	}
	if !s.IsActive() {
		t.Error("secondary should be active")
	}
}

func TestAddSecondaryUnknownMass(t *testing.T) {
	c := New(protonState(t, 10*units.EeV))
	if err := c.AddSecondary(particle.NucleusID(56, 26), 1*units.EeV); err == nil {
		t.Error("expected error for secondary nucleus without a mass entry")
	}
}

func TestDetachSecondaries(t *testing.T) {
	c := New(protonState(t, 10*units.EeV))
	if err := c.AddSecondary(particle.NucleusID(1, 1), 1*units.EeV); err != nil {
		t.Fatal(err)
	}

	secs := c.DetachSecondaries()
	if len(secs) != 1 {
		t.Fatalf("expected 1 detached secondary, got %d", len(secs))
	}
	if len(c.Secondaries()) != 0 {
		t.Error("secondaries should be cleared after detach")
	}
}
