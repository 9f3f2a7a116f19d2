// Package particle defines the particle state record, nucleus identity
// codes and the nuclear mass table used by the propagation core.
package particle

// Nucleus identity codes follow the 10LZZZAAAI numbering scheme: a nucleus
// with charge number Z and mass number A is encoded as
// 1000000000 + Z*10000 + A*10. Leptons and photons keep their plain
// particle codes (e.g. 11 electron, 22 photon) and decode to Z = A = 0.
const nucleusBase = 1000000000

// Common non-nucleus particle codes
const (
	IDElectron = 11
	IDPositron = -11
	IDPhoton   = 22
)

// NucleusID encodes a nucleus with mass number a and charge number z
func NucleusID(a, z int) int {
	return nucleusBase + z*10000 + a*10
}

// IsNucleus reports whether id encodes a nucleus
func IsNucleus(id int) bool {
	if id < 0 {
		id = -id
	}
	return id >= nucleusBase
}

// ChargeNumber returns the charge number Z encoded in id. Antinuclei
// (negative ids) carry negative charge; non-nucleus codes return 0.
func ChargeNumber(id int) int {
	sign := 1
	if id < 0 {
		sign = -1
		id = -id
	}
	if id < nucleusBase {
		return 0
	}
	return sign * (id % nucleusBase / 10000)
}

// MassNumber returns the mass number A encoded in id, 0 for non-nuclei
func MassNumber(id int) int {
	if id < 0 {
		id = -id
	}
	if id < nucleusBase {
		return 0
	}
	return id % 10000 / 10
}
