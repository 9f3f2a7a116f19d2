// Package source constructs fully initialized candidates from composable
// source properties: particle type, energy spectrum, position and emission
// direction.
package source

import (
	"fmt"
	"math"

	"github.com/crsim/propagation-core/internal/candidate"
	"github.com/crsim/propagation-core/internal/particle"
	"github.com/crsim/propagation-core/pkg/utils"
)

// Property modifies one aspect of a candidate under preparation. A source
// applies its properties in the order they were added.
type Property interface {
	Prepare(c *candidate.Candidate, rng *utils.RandSource) error
}

// Source produces candidates by passing a blank proton candidate through
// all of its properties
type Source struct {
	properties []Property
	rng        *utils.RandSource
}

// New creates a source drawing randomness from rng; nil selects a
// time-seeded source
func New(rng *utils.RandSource) *Source {
	if rng == nil {
		rng = utils.NewRandSource(0)
	}
	return &Source{rng: rng}
}

// Add appends a property to the source
func (s *Source) Add(p Property) {
	s.properties = append(s.properties, p)
}

// Produce creates one fully initialized candidate
func (s *Source) Produce() (*candidate.Candidate, error) {
	state, err := particle.NewState(particle.NucleusID(1, 1), 0,
		particle.Vector3{}, particle.NewVector3(1, 0, 0))
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	c := candidate.New(state)
	for _, p := range s.properties {
		if err := p.Prepare(c, s.rng); err != nil {
			return nil, fmt.Errorf("source: %w", err)
		}
	}
	// re-snapshot so Created reflects the fully prepared state
	c.Created = c.Current
	return c, nil
}

// ParticleType sets the candidate's particle identity code
type ParticleType struct {
	ID int
}

// Prepare applies the property
func (p ParticleType) Prepare(c *candidate.Candidate, rng *utils.RandSource) error {
	return c.Current.SetID(p.ID)
}

// Energy sets a fixed initial energy [J]
type Energy struct {
	E float64
}

// Prepare applies the property
func (p Energy) Prepare(c *candidate.Candidate, rng *utils.RandSource) error {
	c.Current.SetEnergy(p.E)
	return nil
}

// PowerLawSpectrum draws the initial energy from a power-law spectrum
// with the given spectral index over [EMin, EMax]
type PowerLawSpectrum struct {
	EMin, EMax float64
	Index      float64
}

// Prepare applies the property
func (p PowerLawSpectrum) Prepare(c *candidate.Candidate, rng *utils.RandSource) error {
	if p.EMin <= 0 || p.EMax < p.EMin {
		return fmt.Errorf("power-law spectrum: invalid energy range [%g, %g]", p.EMin, p.EMax)
	}
	c.Current.SetEnergy(rng.PowerLaw(p.EMin, p.EMax, p.Index))
	return nil
}

// Position places the candidate at a fixed point [m]
type Position struct {
	Point particle.Vector3
}

// Prepare applies the property
func (p Position) Prepare(c *candidate.Candidate, rng *utils.RandSource) error {
	c.Current.SetPosition(p.Point)
	return nil
}

// Direction emits candidates in a fixed direction
type Direction struct {
	Dir particle.Vector3
}

// Prepare applies the property
func (p Direction) Prepare(c *candidate.Candidate, rng *utils.RandSource) error {
	c.Current.SetDirection(p.Dir)
	return nil
}

// IsotropicEmission draws the emission direction uniformly from the unit
// sphere
type IsotropicEmission struct{}

// Prepare applies the property
func (p IsotropicEmission) Prepare(c *candidate.Candidate, rng *utils.RandSource) error {
	z := rng.UniformFloat64(-1, 1)
	phi := rng.UniformFloat64(0, 2*math.Pi)
	r := math.Sqrt(1 - z*z)
	c.Current.SetDirection(particle.NewVector3(r*math.Cos(phi), r*math.Sin(phi), z))
	return nil
}

// Redshift sets the candidate's initial redshift
type Redshift struct {
	Z float64
}

// Prepare applies the property
func (p Redshift) Prepare(c *candidate.Candidate, rng *utils.RandSource) error {
	c.SetRedshift(p.Z)
	return nil
}

// Nuclei draws the particle type from a set of isotopes with relative
// abundances
type Nuclei struct {
	ids        []int
	cumulative []float64
}

// Add registers an isotope with a relative abundance
func (p *Nuclei) Add(id int, abundance float64) {
	total := 0.0
	if n := len(p.cumulative); n > 0 {
		total = p.cumulative[n-1]
	}
	p.ids = append(p.ids, id)
	p.cumulative = append(p.cumulative, total+abundance)
}

// Prepare applies the property
func (p *Nuclei) Prepare(c *candidate.Candidate, rng *utils.RandSource) error {
	if len(p.ids) == 0 {
		return fmt.Errorf("nuclei source property has no isotopes")
	}
	total := p.cumulative[len(p.cumulative)-1]
	u := rng.Float64() * total
	for i, cum := range p.cumulative {
		if u < cum {
			return c.Current.SetID(p.ids[i])
		}
	}
	return c.Current.SetID(p.ids[len(p.ids)-1])
}

// List combines several sources with relative luminosities
type List struct {
	sources    []*Source
	cumulative []float64
	rng        *utils.RandSource
}

// NewList creates an empty source list
func NewList(rng *utils.RandSource) *List {
	if rng == nil {
		rng = utils.NewRandSource(0)
	}
	return &List{rng: rng}
}

// Add registers a source with a relative luminosity
func (l *List) Add(s *Source, luminosity float64) {
	total := 0.0
	if n := len(l.cumulative); n > 0 {
		total = l.cumulative[n-1]
	}
	l.sources = append(l.sources, s)
	l.cumulative = append(l.cumulative, total+luminosity)
}

// Produce draws a source according to the luminosities and produces a
// candidate from it
func (l *List) Produce() (*candidate.Candidate, error) {
	if len(l.sources) == 0 {
		return nil, fmt.Errorf("source: list is empty")
	}
	total := l.cumulative[len(l.cumulative)-1]
	u := l.rng.Float64() * total
	for i, cum := range l.cumulative {
		if u < cum {
			return l.sources[i].Produce()
		}
	}
	return l.sources[len(l.sources)-1].Produce()
}
