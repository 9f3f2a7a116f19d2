package photonfield

import (
	"math"

	"github.com/crsim/propagation-core/pkg/units"
)

// BlackbodyField is an isotropic blackbody photon field at a fixed
// temperature, computed analytically from Planck's law with no table
// dependency.
type BlackbodyField struct {
	name        string
	temperature float64
}

// NewBlackbodyField creates a blackbody photon field with the given
// temperature [K]
func NewBlackbodyField(name string, temperature float64) *BlackbodyField {
	return &BlackbodyField{name: name, temperature: temperature}
}

// CMB returns the cosmic microwave background, a blackbody field with
// T = 2.73 K
func CMB() *BlackbodyField {
	return NewBlackbodyField("CMB", 2.73)
}

// Temperature returns the blackbody temperature [K]
func (f *BlackbodyField) Temperature() float64 {
	return f.temperature
}

// PhotonDensity returns the Planck spectral number density
// 8 pi e^2 / (hc)^3 / (exp(e/kT) - 1) [1/(m^3 J)], scaled by (1+z)^3 when
// a redshift is supplied
func (f *BlackbodyField) PhotonDensity(ePhoton, z float64) float64 {
	if ePhoton <= 0 {
		return 0
	}
	hc := units.HPlanck * units.CLight
	x := ePhoton / (units.KBoltzmann * f.temperature)
	if x > 700 {
		// exp overflows, density is numerically zero
		return 0
	}
	n := 8 * math.Pi * ePhoton * ePhoton / (hc * hc * hc) / math.Expm1(x)
	zf := 1 + z
	return n * zf * zf * zf
}

// RedshiftScaling returns 1; adiabatic evolution is applied in
// PhotonDensity directly
func (f *BlackbodyField) RedshiftScaling(z float64) float64 {
	return 1
}

// Name returns the field name
func (f *BlackbodyField) Name() string {
	return f.name
}
