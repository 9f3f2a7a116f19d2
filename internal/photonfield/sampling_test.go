package photonfield

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"

	"github.com/crsim/propagation-core/pkg/units"
	"github.com/crsim/propagation-core/pkg/utils"
)

func TestNewSamplingFlags(t *testing.T) {
	if _, err := NewSampling(FlagCMB, nil, nil); err != nil {
		t.Errorf("CMB sampling construction failed: %v", err)
	}

	if _, err := NewSampling(FlagIRB, nil, nil); err == nil {
		t.Error("IRB sampling without a tabulated field should fail")
	}

	energies, density := testGrids()
	irb, err := NewTabularFieldFromGrids("IRB", energies, density, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewSampling(FlagIRB, irb, nil); err != nil {
		t.Errorf("IRB sampling construction failed: %v", err)
	}

	if _, err := NewSampling(7, nil, nil); err == nil {
		t.Error("unsupported background flag should fail")
	}
}

func TestCrossSectionThreshold(t *testing.T) {
	s, err := NewSampling(FlagCMB, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Photopion threshold in the nucleon rest frame is near 0.15 GeV
	if got := s.crossSection(0.1, true); got != 0 {
		t.Errorf("cross section below threshold = %g, want 0", got)
	}
	if got := s.crossSection(0.3, true); got <= 0 {
		t.Errorf("cross section above threshold = %g, want > 0", got)
	}
	if got := s.crossSection(0.3, false); got <= 0 {
		t.Errorf("neutron cross section above threshold = %g, want > 0", got)
	}
}

func TestCrossSectionDeltaResonance(t *testing.T) {
	s, err := NewSampling(FlagCMB, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	// The Delta(1232) dominates near 0.34 GeV
	peak := s.crossSection(0.34, true)
	if peak < s.crossSection(0.2, true) {
		t.Error("cross section at the Delta resonance should exceed the near-threshold value")
	}
	if peak < s.crossSection(2.0, true) {
		t.Error("cross section at the Delta resonance should exceed the continuum value")
	}
	// Roughly 500 microbarn at the peak
	if peak < 300 || peak > 700 {
		t.Errorf("peak cross section = %g microbarn, want within [300, 700]", peak)
	}
}

func TestProbEpsBelowThreshold(t *testing.T) {
	s, err := NewSampling(FlagCMB, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	ein := 1e11 // 10^20 eV in GeV
	if got := s.ProbEps(1e-7, true, ein, 0); got != 0 {
		t.Errorf("probability below the kinematic threshold = %g, want 0", got)
	}
	if got := s.ProbEps(1e-3, true, ein, 0); got <= 0 {
		t.Errorf("probability in the sampled band = %g, want > 0", got)
	}
}

func TestSampleEpsInRange(t *testing.T) {
	s, err := NewSampling(FlagCMB, nil, utils.NewRandSource(1))
	if err != nil {
		t.Fatal(err)
	}

	ein := 1e20 * units.ElectronVolt
	einGeV := ein / units.GeV
	m := massProtonGeV
	pin := math.Sqrt(einGeV*einGeV - m*m)
	epsMin := (sThreshold - m*m) / 2 / (einGeV + pin) * 1e9
	epsMax := 0.01

	for i := 0; i < 100; i++ {
		eps := s.SampleEps(true, ein, 0) / units.ElectronVolt
		if eps < epsMin || eps > epsMax {
			t.Fatalf("sampled photon energy %g eV outside [%g, %g] eV", eps, epsMin, epsMax)
		}
	}
}

func TestSampleEpsDistribution(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping distribution test in short mode")
	}

	s, err := NewSampling(FlagCMB, nil, utils.NewRandSource(42))
	if err != nil {
		t.Fatal(err)
	}

	ein := 1e20 * units.ElectronVolt
	einGeV := ein / units.GeV
	m := massProtonGeV
	pin := math.Sqrt(einGeV*einGeV - m*m)
	epsMin := (sThreshold - m*m) / 2 / (einGeV + pin) * 1e9
	epsMax := 0.01

	// Expected mean from the sampled density itself
	n := 4000
	var norm, weighted float64
	for i := 0; i < n; i++ {
		eps := epsMin + (epsMax-epsMin)*(float64(i)+0.5)/float64(n)
		p := s.ProbEps(eps, true, einGeV, 0)
		norm += p
		weighted += eps * p
	}
	want := weighted / norm

	samples := make([]float64, 2000)
	for i := range samples {
		samples[i] = s.SampleEps(true, ein, 0) / units.ElectronVolt
	}
	got := stat.Mean(samples, nil)

	if math.Abs(got-want)/want > 0.1 {
		t.Errorf("sample mean = %g eV, want %g eV within 10%%", got, want)
	}
}

func TestSampleEpsBelowRestMass(t *testing.T) {
	s, err := NewSampling(FlagCMB, nil, utils.NewRandSource(1))
	if err != nil {
		t.Fatal(err)
	}

	if got := s.SampleEps(true, 0.1*units.GeV, 0); got != 0 {
		t.Errorf("sampling for a sub-rest-mass nucleon = %g, want 0", got)
	}
}

func TestPhotonDensityCMB(t *testing.T) {
	s, err := NewSampling(FlagCMB, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Agrees with the analytic Planck spectrum within numerical constants
	f := CMB()
	eps := 1e-3 // eV
	want := f.PhotonDensity(eps*units.ElectronVolt, 0) * units.ElectronVolt * 1e-6
	got := s.photonDensity(eps, 0)
	if math.Abs(got-want)/want > 1e-2 {
		t.Errorf("CMB density = %g, want %g (rel err %g)", got, want, math.Abs(got-want)/want)
	}
}
