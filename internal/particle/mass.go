package particle

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/crsim/propagation-core/pkg/units"
)

// ErrMassNotFound is wrapped by mass lookups that miss the nuclear mass
// table. Callers match it with errors.Is.
var ErrMassNotFound = fmt.Errorf("nucleus mass not found")

// MassTable maps (Z, N) pairs to nuclear masses [kg]. It is immutable
// after construction and safe for concurrent lookups.
type MassTable struct {
	masses map[[2]int]float64
}

// NewMassTable creates a mass table preloaded with the free proton and
// neutron masses
func NewMassTable() *MassTable {
	return &MassTable{
		masses: map[[2]int]float64{
			{1, 0}: units.MassProton,
			{0, 1}: units.MassNeutron,
		},
	}
}

// LoadMassTable reads a nuclear mass table from a plain-text file with
// "Z N mass" rows, masses in kg. Lines starting with '#' and blank lines
// are skipped.
func LoadMassTable(path string) (*MassTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("particle: open mass table %s: %w", path, err)
	}
	defer f.Close()

	t := NewMassTable()
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var z, n int
		var mass float64
		if _, err := fmt.Sscanf(text, "%d %d %g", &z, &n, &mass); err != nil {
			return nil, fmt.Errorf("particle: mass table %s line %d: %w", path, line, err)
		}
		if mass > 0 {
			t.masses[[2]int{z, n}] = mass
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("particle: read mass table %s: %w", path, err)
	}
	return t, nil
}

// Mass returns the mass [kg] of the nucleus with the given charge number z
// and neutron number n
func (t *MassTable) Mass(z, n int) (float64, error) {
	m, ok := t.masses[[2]int{z, n}]
	if !ok || m == 0 {
		return 0, fmt.Errorf("%w: Z=%d N=%d", ErrMassNotFound, z, n)
	}
	return m, nil
}

var (
	massMu    sync.RWMutex
	massTable = NewMassTable()
)

// SetMassTable installs the process-wide nuclear mass table. Call it once
// before candidate processing begins.
func SetMassTable(t *MassTable) {
	massMu.Lock()
	defer massMu.Unlock()
	massTable = t
}

// LoadNuclearMasses loads a mass table from path and installs it as the
// process-wide table
func LoadNuclearMasses(path string) error {
	t, err := LoadMassTable(path)
	if err != nil {
		return err
	}
	SetMassTable(t)
	return nil
}

// NucleusMass returns the rest mass [kg] for a nucleus identity code. An
// entry absent from the loaded table is an error carrying the offending
// id, never a silent zero.
func NucleusMass(id int) (float64, error) {
	if !IsNucleus(id) {
		return 0, fmt.Errorf("particle: id %d is not a nucleus", id)
	}
	z := ChargeNumber(id)
	if z < 0 {
		z = -z
	}
	n := MassNumber(id) - z
	massMu.RLock()
	t := massTable
	massMu.RUnlock()
	m, err := t.Mass(z, n)
	if err != nil {
		return 0, fmt.Errorf("particle: nucleus %d: %w", id, err)
	}
	return m, nil
}
