// Package table loads the plain-text numeric tables consumed at
// configuration time: newline-delimited float sequences with optional
// comment lines.
package table

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadGrid reads an ordered sequence of floats from a plain-text file.
// Lines starting with '#' and blank lines are skipped. A missing or
// malformed file is an error carrying the path.
func LoadGrid(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("table: open %s: %w", path, err)
	}
	defer f.Close()

	var values []float64
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("table: %s line %d: %w", path, line, err)
		}
		values = append(values, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("table: read %s: %w", path, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("table: %s contains no values", path)
	}
	return values, nil
}

// LoadAlignedGrids reads two grids that must have the same length, e.g. an
// energy table and its loss-rate table. A length mismatch is a data error.
func LoadAlignedGrids(pathX, pathY string) ([]float64, []float64, error) {
	x, err := LoadGrid(pathX)
	if err != nil {
		return nil, nil, err
	}
	y, err := LoadGrid(pathY)
	if err != nil {
		return nil, nil, err
	}
	if len(x) != len(y) {
		return nil, nil, fmt.Errorf("table: grid lengths mismatch: %s has %d values, %s has %d",
			pathX, len(x), pathY, len(y))
	}
	return x, y, nil
}
