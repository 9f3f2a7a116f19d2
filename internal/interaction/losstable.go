// Package interaction implements photon-background interaction processes
// applied per propagation step, backed by precomputed loss-rate tables.
package interaction

import (
	"fmt"
	"math"
	"sort"

	"github.com/crsim/propagation-core/internal/table"
	"github.com/crsim/propagation-core/pkg/utils"
)

// LossTable is a precomputed continuous energy-loss rate, two aligned
// strictly-increasing arrays queried by log-log interpolation. Queries
// outside the tabulated energy range clamp to the nearest table edge
// rather than extrapolate. Immutable after construction.
type LossTable struct {
	energy []float64 // [J]
	rate   []float64 // [J/m]
}

// NewLossTable builds a loss table from aligned energy [J] and loss-rate
// [J/m] slices
func NewLossTable(energy, rate []float64) (*LossTable, error) {
	if len(energy) != len(rate) {
		return nil, fmt.Errorf("interaction: grid lengths mismatch: %d energies, %d rates",
			len(energy), len(rate))
	}
	if len(energy) < 2 {
		return nil, fmt.Errorf("interaction: loss table needs at least 2 points, got %d", len(energy))
	}
	if !utils.IsStrictlyIncreasing(energy) {
		return nil, fmt.Errorf("interaction: energy grid must be strictly increasing")
	}
	if energy[0] <= 0 {
		return nil, fmt.Errorf("interaction: energies must be positive")
	}
	for i, r := range rate {
		if r <= 0 {
			return nil, fmt.Errorf("interaction: non-positive loss rate at index %d", i)
		}
	}
	return &LossTable{energy: energy, rate: rate}, nil
}

// LoadLossTable builds a loss table from two aligned plain-text files
func LoadLossTable(energyPath, ratePath string) (*LossTable, error) {
	energy, rate, err := table.LoadAlignedGrids(energyPath, ratePath)
	if err != nil {
		return nil, err
	}
	return NewLossTable(energy, rate)
}

// MinEnergy returns the lower edge of the tabulated energy range [J]
func (t *LossTable) MinEnergy() float64 {
	return t.energy[0]
}

// MaxEnergy returns the upper edge of the tabulated energy range [J]
func (t *LossTable) MaxEnergy() float64 {
	return t.energy[len(t.energy)-1]
}

// Rate returns the loss rate [J/m] at energy e [J], interpolated log-log
// between the bracketing table points and clamped at both table edges
func (t *LossTable) Rate(e float64) float64 {
	n := len(t.energy)
	if e <= t.energy[0] {
		return t.rate[0]
	}
	if e >= t.energy[n-1] {
		return t.rate[n-1]
	}
	hi := sort.SearchFloat64s(t.energy, e)
	lo := hi - 1
	w := (math.Log(e) - math.Log(t.energy[lo])) / (math.Log(t.energy[hi]) - math.Log(t.energy[lo]))
	return math.Exp((1-w)*math.Log(t.rate[lo]) + w*math.Log(t.rate[hi]))
}
