// Package units defines the SI-based unit system and physical constants
// used throughout the propagation core. The base units are meter, second,
// kilogram, Joule and Kelvin; everything else is expressed as a multiple.
package units

// Energy units [J]
const (
	Joule        = 1.0
	ElectronVolt = 1.602176634e-19 * Joule
	KeV          = 1e3 * ElectronVolt
	MeV          = 1e6 * ElectronVolt
	GeV          = 1e9 * ElectronVolt
	TeV          = 1e12 * ElectronVolt
	EeV          = 1e18 * ElectronVolt
)

// Length units [m]
const (
	Meter  = 1.0
	Km     = 1e3 * Meter
	Parsec = 3.0856775814913673e16 * Meter
	Kpc    = 1e3 * Parsec
	Mpc    = 1e6 * Parsec
)

// Physical constants
const (
	CLight     = 2.99792458e8    // speed of light [m/s]
	HPlanck    = 6.62607015e-34  // Planck constant [J s]
	KBoltzmann = 1.380649e-23    // Boltzmann constant [J/K]

	MassProton   = 1.67262192369e-27  // [kg]
	MassNeutron  = 1.67492749804e-27  // [kg]
	MassElectron = 9.1093837015e-31   // [kg]
)
