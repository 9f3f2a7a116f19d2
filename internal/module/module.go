// Package module defines the polymorphic unit of work applied to a
// candidate once per propagation step, the ordered chain composing them,
// and the break-condition family implementing the termination protocol.
package module

import (
	"strings"

	"github.com/crsim/propagation-core/internal/candidate"
)

// Module is a single unit of work in the propagation pipeline. Process may
// read and mutate any candidate field, limit the next step, deactivate the
// candidate or append secondaries. Description is a human-readable summary
// used only for logging and configuration echo.
type Module interface {
	Process(c *candidate.Candidate)
	Description() string
}

// Chain is an ordered sequence of modules. Invoking it runs every module
// in order; a module that deactivates the candidate does not stop later
// modules in the same step from running, so that observers still see the
// rejection tags.
type Chain struct {
	modules []Module
}

// NewChain creates a chain from the given modules
func NewChain(modules ...Module) *Chain {
	return &Chain{modules: modules}
}

// Add appends a module to the end of the chain
func (ch *Chain) Add(m Module) {
	ch.modules = append(ch.modules, m)
}

// Len returns the number of modules in the chain
func (ch *Chain) Len() int {
	return len(ch.modules)
}

// Process applies every module to the candidate in chain order
func (ch *Chain) Process(c *candidate.Candidate) {
	for _, m := range ch.modules {
		m.Process(c)
	}
}

// Description lists the descriptions of all chained modules
func (ch *Chain) Description() string {
	var b strings.Builder
	b.WriteString("Module chain:\n")
	for _, m := range ch.modules {
		b.WriteString("  ")
		b.WriteString(m.Description())
		b.WriteString("\n")
	}
	return b.String()
}
