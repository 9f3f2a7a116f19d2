// Package photonfield models ambient background photon densities and the
// Monte-Carlo sampling of nucleon-photon interaction energies.
package photonfield

// Field supplies the photon number density of a background photon field.
// Implementations are immutable after construction and safe for concurrent
// queries.
type Field interface {
	// PhotonDensity returns the comoving differential photon number
	// density dn/de [1/(m^3 J)] at photon energy ePhoton [J] and
	// redshift z. Queries outside the field's tabulated support return 0;
	// the density is never negative.
	PhotonDensity(ePhoton, z float64) float64

	// RedshiftScaling returns the overall comoving scaling factor at
	// redshift z, identically 1 for redshift-independent fields.
	RedshiftScaling(z float64) float64

	// Name returns the field name used for table files and logging
	Name() string
}
