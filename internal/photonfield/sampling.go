package photonfield

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate/quad"

	"github.com/crsim/propagation-core/pkg/logger"
	"github.com/crsim/propagation-core/pkg/units"
	"github.com/crsim/propagation-core/pkg/utils"
)

// Background field flags selecting the photon spectrum sampled by
// Sampling. Unsupported flags fail construction.
const (
	FlagCMB = 1
	FlagIRB = 2
)

// Nucleon masses and the photopion threshold in the GeV-based unit system
// the sampler works in internally.
const (
	massProtonGeV  = 0.93827
	massNeutronGeV = 0.93947
	sThreshold     = 1.1646 // [GeV^2]
)

const (
	envelopeScanPoints = 256
	envelopeMargin     = 1.2
	maxRejectionDraws  = 1000000
)

// Sampling draws the energy of the background photon involved in a
// nucleon-photon interaction. The resonance and continuum cross-section
// model and the unit conventions (eV/GeV internally, Joules at the API
// boundary) follow the SOPHIA event generator, since downstream physics
// tables are calibrated against it.
type Sampling struct {
	bgFlag int
	irb    *TabularField
	rng    *utils.RandSource
	logger *slog.Logger

	mu  sync.Mutex
	env *envelope
}

// envelope caches the rejection-sampling bound for one set of sampling
// arguments; sequential sampling loops reuse it.
type envelope struct {
	onProton       bool
	ein, z         float64
	epsMin, epsMax float64
	pMax, argMax   float64
}

// NewSampling creates a photon sampling engine for the given background
// flag. FlagIRB requires a tabulated infrared background field; rng may be
// nil to use a time-seeded source.
func NewSampling(bgFlag int, irb *TabularField, rng *utils.RandSource) (*Sampling, error) {
	switch bgFlag {
	case FlagCMB:
	case FlagIRB:
		if irb == nil {
			return nil, fmt.Errorf("photonfield: background flag %d requires a tabulated IRB field", bgFlag)
		}
	default:
		return nil, fmt.Errorf("photonfield: unsupported background flag %d (must be %d [CMB] or %d [IRB])",
			bgFlag, FlagCMB, FlagIRB)
	}
	if rng == nil {
		rng = utils.NewRandSource(0)
	}
	return &Sampling{
		bgFlag: bgFlag,
		irb:    irb,
		rng:    rng,
		logger: logger.Default,
	}, nil
}

// SetLogger sets the sampler's logger
func (s *Sampling) SetLogger(l *slog.Logger) {
	s.logger = l
}

// SampleEps draws the energy [J] of a background photon interacting with
// a nucleon of energy einJoule [J] at redshift z. onProton selects the
// proton or neutron cross section. Sampling never fails at runtime: if
// the rejection loop exhausts its draw budget, the scan maximum is
// returned and an error is logged, since a collapsed acceptance rate
// signals a mis-tuned envelope rather than a recoverable condition.
func (s *Sampling) SampleEps(onProton bool, einJoule, z float64) float64 {
	ein := einJoule / units.GeV
	m := nucleonMass(onProton)
	if ein <= m {
		s.logger.Warn("nucleon below rest mass, no photon sampled", "E_GeV", ein)
		return 0
	}
	pin := math.Sqrt(ein*ein - m*m)

	epsMin := (sThreshold - m*m) / 2 / (ein + pin) * 1e9 // [eV]
	var epsMax float64
	switch s.bgFlag {
	case FlagCMB:
		epsMax = 0.01 * (1 + z) // [eV], CMB density is negligible above
	case FlagIRB:
		epsMax = s.irb.MaxEnergy() / units.ElectronVolt
	}
	if epsMin >= epsMax {
		s.logger.Warn("interaction threshold above the sampled photon spectrum",
			"epsMin_eV", epsMin, "epsMax_eV", epsMax, "E_GeV", ein)
		return epsMax * units.ElectronVolt
	}

	pMax, argMax := s.envelopeBound(onProton, ein, z, epsMin, epsMax)
	if pMax <= 0 {
		s.logger.Warn("interaction probability vanishes over the sampled spectrum",
			"epsMin_eV", epsMin, "epsMax_eV", epsMax, "E_GeV", ein)
		return argMax * units.ElectronVolt
	}

	for i := 0; i < maxRejectionDraws; i++ {
		eps := s.rng.UniformFloat64(epsMin, epsMax)
		if s.rng.Float64()*pMax < s.ProbEps(eps, onProton, ein, z) {
			return eps * units.ElectronVolt
		}
	}

	s.logger.Error("rejection sampling exhausted its draw budget, envelope bound is mis-tuned",
		"E_GeV", ein, "z", z, "pMax", pMax)
	return argMax * units.ElectronVolt
}

// envelopeBound returns the rejection envelope: the maximum of ProbEps
// over a log-spaced scan of the sampling domain, widened by a safety
// margin, together with the scan argmax.
func (s *Sampling) envelopeBound(onProton bool, ein, z, epsMin, epsMax float64) (float64, float64) {
	s.mu.Lock()
	if e := s.env; e != nil && e.onProton == onProton && e.ein == ein && e.z == z {
		pMax, argMax := e.pMax, e.argMax
		s.mu.Unlock()
		return pMax, argMax
	}
	s.mu.Unlock()

	grid := make([]float64, envelopeScanPoints)
	floats.LogSpan(grid, epsMin, epsMax)

	pMax := 0.0
	argMax := epsMin
	for _, eps := range grid {
		if p := s.ProbEps(eps, onProton, ein, z); p > pMax {
			pMax = p
			argMax = eps
		}
	}
	pMax *= envelopeMargin

	s.mu.Lock()
	s.env = &envelope{
		onProton: onProton, ein: ein, z: z,
		epsMin: epsMin, epsMax: epsMax,
		pMax: pMax, argMax: argMax,
	}
	s.mu.Unlock()
	return pMax, argMax
}

// ProbEps returns the unnormalized probability for a nucleon of energy
// ein [GeV] at redshift z to interact with a background photon of energy
// eps [eV]: the photon density times the rate integral of (s-p^2) sigma
// over the accessible invariant mass range.
func (s *Sampling) ProbEps(eps float64, onProton bool, ein, z float64) float64 {
	m := nucleonMass(onProton)
	gamma := ein / m
	if gamma <= 1 {
		return 0
	}
	beta := math.Sqrt(1 - 1/(gamma*gamma))

	pd := s.photonDensity(eps, z)
	if pd == 0 {
		return 0
	}

	smin := sThreshold
	smax := math.Max(smin, m*m+2*eps/1e9*ein*(1+beta))
	if smax <= smin {
		return 0
	}
	sintegr := quad.Fixed(func(x float64) float64 {
		return s.functs(x, onProton)
	}, smin, smax, 64, nil, 0)

	return pd / (eps * eps) * sintegr / 8 / beta / (ein * ein) * 1e18 * 1e6
}

// photonDensity returns the background photon density per unit energy
// [1/(eV cm^3)] at photon energy eps [eV] and redshift z
func (s *Sampling) photonDensity(eps float64, z float64) float64 {
	switch s.bgFlag {
	case FlagCMB:
		// Planck spectrum at T = 2.73 (1+z) K; 1.318e13 = 8 pi / (hc)^3
		// in eV^-3 cm^-3
		x := eps / (8.619e-5 * 2.73 * (1 + z))
		if x > 700 {
			return 0
		}
		return 1.318e13 * eps * eps / math.Expm1(x)
	case FlagIRB:
		n := s.irb.PhotonDensity(eps*units.ElectronVolt, z)
		// [1/(m^3 J)] -> [1/(cm^3 eV)]
		return n * units.ElectronVolt * 1e-6
	}
	return 0
}

// functs returns (s - p^2) sigma_(nucleon/gamma) [GeV^2 mubarn] as a
// function of the invariant mass squared sval [GeV^2]
func (s *Sampling) functs(sval float64, onProton bool) float64 {
	m := nucleonMass(onProton)
	factor := sval - m*m
	epsPrime := factor / 2 / m
	return factor * s.crossSection(epsPrime, onProton)
}

// Resonance parameters of the nucleon-photon cross section: masses [GeV],
// widths [GeV], branching factors and spin ratios, first nine entries for
// the proton, last nine for the neutron.
var (
	resMass = [18]float64{
		1.231, 1.440, 1.515, 1.525, 1.675, 1.680, 1.690, 1.895, 1.950,
		1.231, 1.440, 1.515, 1.525, 1.675, 1.675, 1.690, 1.895, 1.950,
	}
	resBGamma = [18]float64{
		5.6, 0.5, 4.6, 1.0, 1.0, 2.6, 2.0, 0.5, 1.0,
		6.1, 0.3, 4.0, 1.1, 1.0, 2.0, 1.4, 0.5, 1.0,
	}
	resWidth = [18]float64{
		0.11, 0.35, 0.11, 0.10, 0.16, 0.125, 0.29, 0.35, 0.30,
		0.11, 0.35, 0.11, 0.10, 0.16, 0.150, 0.29, 0.35, 0.30,
	}
	resRatioJ = [18]float64{
		1.0, 0.5, 1.0, 0.5, 1.0, 1.5, 1.0, 1.5, 2.0,
		1.0, 0.5, 1.0, 0.5, 1.0, 1.5, 1.0, 1.5, 2.0,
	}
)

// crossSection returns the modeled nucleon-photon cross section [mubarn]
// at photon energy epsPrime [GeV] in the nucleon rest frame: the sum of
// nine Breit-Wigner resonances, the direct single/double pion channels,
// and the smoothed multipion/diffractive/fragmentation continuum.
func (s *Sampling) crossSection(epsPrime float64, onProton bool) float64 {
	m := nucleonMass(onProton)
	sval := m*m + 2*m*epsPrime
	if sval < sThreshold {
		return 0
	}

	idx := 0
	if !onProton {
		idx = 9
	}

	// resonances, peak cross sections from the radiative couplings
	var crossRes float64
	if epsPrime <= 10 {
		for i := 0; i < 9; i++ {
			sig0 := 4.893089117 / (m * m) * resRatioJ[i+idx] * resBGamma[i+idx]
			bw := s.breitWigner(sig0, resWidth[i+idx], resMass[i+idx], epsPrime, onProton)
			if i == 0 {
				crossRes += bw * s.ef(epsPrime, 0.152, 0.17)
			} else {
				crossRes += bw * s.ef(epsPrime, 0.15, 0.38)
			}
		}
	}

	// direct channels
	var crossDir1 float64
	if epsPrime > 0.1 && epsPrime < 0.6 {
		crossDir1 = 92.7*s.pl(epsPrime, 0.152, 0.25, 2.0) + // single pion production
			40*math.Exp(-(epsPrime-0.29)*(epsPrime-0.29)/0.002) -
			15*math.Exp(-(epsPrime-0.37)*(epsPrime-0.37)/0.002)
	} else {
		crossDir1 = 92.7 * s.pl(epsPrime, 0.152, 0.25, 2.0)
	}
	crossDir2 := 37.7 * s.pl(epsPrime, 0.4, 0.6, 2.0) // double pion production
	crossDir := crossDir1 + crossDir2

	// fragmentation
	var crossFrag2 float64
	if onProton {
		crossFrag2 = 80.3 * s.ef(epsPrime, 0.5, 0.1) * math.Pow(sval, -0.34)
	} else {
		crossFrag2 = 60.2 * s.ef(epsPrime, 0.5, 0.1) * math.Pow(sval, -0.34)
	}

	// multipion production and diffractive scattering above the
	// resonance region, with a smoothed transition window
	var csMultidiff float64
	if epsPrime > 0.85 {
		ss1 := (epsPrime - 0.85) / 0.69
		var ss2 float64
		if onProton {
			ss2 = 29.3*math.Pow(sval, -0.34) + 59.3*math.Pow(sval, 0.095)
		} else {
			ss2 = 26.4*math.Pow(sval, -0.34) + 59.3*math.Pow(sval, 0.095)
		}
		csMultidiff = (1 - math.Exp(-ss1)) * ss2
		csMulti := 0.89 * csMultidiff

		// diffractive scattering
		ss1 = math.Pow(epsPrime-0.85, 0.75) / 0.64
		ss2 = 74.1*math.Pow(epsPrime, -0.44) + 62*math.Pow(sval, 0.08)
		csTmp := 0.96 * (1 - math.Exp(-ss1)) * ss2
		crossDiffr1 := 0.14 * csTmp
		crossDiffr2 := 0.013 * csTmp
		crossDiffr := 0.11 * csMultidiff

		csDelta := crossFrag2 - (crossDiffr1 + crossDiffr2 - crossDiffr)
		if csDelta < 0 {
			crossFrag2 = 0
			csMulti += csDelta
		} else {
			crossFrag2 = csDelta
		}
		crossDiffr = crossDiffr1 + crossDiffr2
		csMultidiff = csMulti + crossDiffr
	}

	return crossRes + crossDir + csMultidiff + crossFrag2
}

// breitWigner returns the Breit-Wigner cross section of a resonance with
// peak cross section sigma0 [mubarn], width gamma [GeV] and mass
// dmm [GeV]
func (s *Sampling) breitWigner(sigma0, gamma, dmm, epsPrime float64, onProton bool) float64 {
	m := nucleonMass(onProton)
	sval := m*m + 2*m*epsPrime
	gam2s := gamma * gamma * sval
	return sigma0 * (sval / (epsPrime * epsPrime)) * gam2s /
		((sval-dmm*dmm)*(sval-dmm*dmm) + gam2s)
}

// pl shapes the transition between the resonance and continuum regimes
func (s *Sampling) pl(x, xth, xmax, alpha float64) float64 {
	if xth > x {
		return 0
	}
	a := alpha * xmax / xth
	prod1 := math.Pow((x-xth)/(xmax-xth), a-alpha)
	prod2 := math.Pow(x/xmax, -a)
	return prod1 * prod2
}

// ef is a linear ramp from 0 at threshold th to 1 at th+w
func (s *Sampling) ef(x, th, w float64) float64 {
	if x <= th {
		return 0
	}
	if x < th+w {
		return (x - th) / w
	}
	return 1
}

// nucleonMass returns the proton or neutron mass [GeV]
func nucleonMass(onProton bool) float64 {
	if onProton {
		return massProtonGeV
	}
	return massNeutronGeV
}
