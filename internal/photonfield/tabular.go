package photonfield

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/gonum/integrate"

	"github.com/crsim/propagation-core/internal/table"
	"github.com/crsim/propagation-core/pkg/utils"
)

// TabularField is a photon field interpolated from tabulated data. It is
// built from three aligned data sources: a photon energy grid [J], a
// photon density grid [1/(m^3 J)] and an optional redshift grid. Without
// a redshift grid the field is redshift-independent and its scaling is
// identically 1; otherwise a scalar scaling factor per tabulated redshift
// is precomputed as the ratio of the density integral against the z=0
// baseline.
type TabularField struct {
	name              string
	energies          []float64
	density           [][]float64 // one row per tabulated redshift
	redshifts         []float64
	scalings          []float64
	redshiftDependent bool
}

// NewTabularField loads a tabulated photon field from three plain-text
// files in dir: <name>_photonEnergy.txt, <name>_photonDensity.txt and,
// if present, <name>_redshift.txt.
func NewTabularField(name, dir string) (*TabularField, error) {
	energies, err := table.LoadGrid(filepath.Join(dir, name+"_photonEnergy.txt"))
	if err != nil {
		return nil, fmt.Errorf("photonfield %s: %w", name, err)
	}
	density, err := table.LoadGrid(filepath.Join(dir, name+"_photonDensity.txt"))
	if err != nil {
		return nil, fmt.Errorf("photonfield %s: %w", name, err)
	}

	var redshifts []float64
	redshiftPath := filepath.Join(dir, name+"_redshift.txt")
	if _, statErr := os.Stat(redshiftPath); statErr == nil {
		redshifts, err = table.LoadGrid(redshiftPath)
		if err != nil {
			return nil, fmt.Errorf("photonfield %s: %w", name, err)
		}
	}

	return NewTabularFieldFromGrids(name, energies, density, redshifts)
}

// NewTabularFieldFromGrids builds a tabulated photon field from in-memory
// grids. When redshifts is non-empty, density must hold one row per
// tabulated redshift, flattened row-major.
func NewTabularFieldFromGrids(name string, energies, density, redshifts []float64) (*TabularField, error) {
	if len(energies) < 2 {
		return nil, fmt.Errorf("photonfield %s: energy grid needs at least 2 points, got %d", name, len(energies))
	}
	if !utils.IsStrictlyIncreasing(energies) {
		return nil, fmt.Errorf("photonfield %s: energy grid must be strictly increasing", name)
	}
	if energies[0] <= 0 {
		return nil, fmt.Errorf("photonfield %s: photon energies must be positive", name)
	}
	for i, d := range density {
		if d < 0 {
			return nil, fmt.Errorf("photonfield %s: negative density at index %d", name, i)
		}
	}

	f := &TabularField{name: name, energies: energies}

	if len(redshifts) == 0 {
		if len(density) != len(energies) {
			return nil, fmt.Errorf("photonfield %s: grid lengths mismatch: %d energies, %d densities",
				name, len(energies), len(density))
		}
		f.density = [][]float64{density}
		return f, nil
	}

	if !utils.IsStrictlyIncreasing(redshifts) {
		return nil, fmt.Errorf("photonfield %s: redshift grid must be strictly increasing", name)
	}
	if len(density) != len(energies)*len(redshifts) {
		return nil, fmt.Errorf("photonfield %s: grid lengths mismatch: %d energies x %d redshifts != %d densities",
			name, len(energies), len(redshifts), len(density))
	}

	f.redshiftDependent = true
	f.redshifts = redshifts
	f.density = make([][]float64, len(redshifts))
	for i := range redshifts {
		f.density[i] = density[i*len(energies) : (i+1)*len(energies)]
	}
	if err := f.initRedshiftScaling(); err != nil {
		return nil, err
	}
	return f, nil
}

// initRedshiftScaling precomputes the per-redshift scaling factors as
// density-integral ratios against the first tabulated redshift
func (f *TabularField) initRedshiftScaling() error {
	baseline := integrate.Trapezoidal(f.energies, f.density[0])
	if baseline <= 0 {
		return fmt.Errorf("photonfield %s: baseline density integral is not positive", f.name)
	}
	f.scalings = make([]float64, len(f.redshifts))
	for i, row := range f.density {
		f.scalings[i] = integrate.Trapezoidal(f.energies, row) / baseline
	}
	return nil
}

// MinEnergy returns the lower edge of the tabulated energy support [J]
func (f *TabularField) MinEnergy() float64 {
	return f.energies[0]
}

// MaxEnergy returns the upper edge of the tabulated energy support [J]
func (f *TabularField) MaxEnergy() float64 {
	return f.energies[len(f.energies)-1]
}

// HasRedshiftDependence reports whether a redshift grid was loaded
func (f *TabularField) HasRedshiftDependence() bool {
	return f.redshiftDependent
}

// PhotonDensity returns the interpolated comoving photon density
// [1/(m^3 J)]. Queries outside the energy grid's support return 0 (no
// extrapolation); redshifts outside the tabulated range clamp to the
// nearest tabulated row.
func (f *TabularField) PhotonDensity(ePhoton, z float64) float64 {
	if ePhoton < f.energies[0] || ePhoton > f.energies[len(f.energies)-1] {
		return 0
	}
	if !f.redshiftDependent {
		return f.densityAt(0, ePhoton)
	}

	if z <= f.redshifts[0] {
		return f.densityAt(0, ePhoton)
	}
	last := len(f.redshifts) - 1
	if z >= f.redshifts[last] {
		return f.densityAt(last, ePhoton)
	}
	hi := sort.SearchFloat64s(f.redshifts, z)
	lo := hi - 1
	w := (z - f.redshifts[lo]) / (f.redshifts[hi] - f.redshifts[lo])
	return (1-w)*f.densityAt(lo, ePhoton) + w*f.densityAt(hi, ePhoton)
}

// densityAt interpolates one tabulated redshift row in the log domain
func (f *TabularField) densityAt(row int, ePhoton float64) float64 {
	e := f.energies
	hi := sort.SearchFloat64s(e, ePhoton)
	if hi == 0 {
		return f.density[row][0]
	}
	if hi == len(e) {
		return f.density[row][len(e)-1]
	}
	lo := hi - 1
	n1 := f.density[row][lo]
	n2 := f.density[row][hi]
	if n1 <= 0 || n2 <= 0 {
		// log interpolation undefined, fall back to linear
		w := (ePhoton - e[lo]) / (e[hi] - e[lo])
		return (1-w)*n1 + w*n2
	}
	w := (math.Log(ePhoton) - math.Log(e[lo])) / (math.Log(e[hi]) - math.Log(e[lo]))
	return math.Exp((1-w)*math.Log(n1) + w*math.Log(n2))
}

// RedshiftScaling returns the interpolated comoving scaling factor,
// clamped outside the tabulated redshift range. Redshift-independent
// fields return 1 for any z.
func (f *TabularField) RedshiftScaling(z float64) float64 {
	if !f.redshiftDependent {
		return 1
	}
	if z <= f.redshifts[0] {
		return f.scalings[0]
	}
	last := len(f.redshifts) - 1
	if z >= f.redshifts[last] {
		return f.scalings[last]
	}
	hi := sort.SearchFloat64s(f.redshifts, z)
	lo := hi - 1
	w := (z - f.redshifts[lo]) / (f.redshifts[hi] - f.redshifts[lo])
	return (1-w)*f.scalings[lo] + w*f.scalings[hi]
}

// Name returns the field name
func (f *TabularField) Name() string {
	return f.name
}
