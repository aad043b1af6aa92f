// Package solvers selects an lp.Solver implementation by name.
package solvers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jakechorley/badge-groups/pkg/lp"
	"github.com/jakechorley/badge-groups/pkg/lp/gonumsolver"
	"github.com/jakechorley/badge-groups/pkg/lp/simplexsolver"
)

// Default is the backend used when none is configured
const Default = "simplex"

var constructors = map[string]func(lp.Options) lp.Solver{
	"simplex": func(opts lp.Options) lp.Solver { return simplexsolver.New(opts) },
	"gonum":   func(opts lp.Options) lp.Solver { return gonumsolver.New(opts) },
}

// New returns the named backend. An empty name selects Default.
func New(name string, opts lp.Options) (lp.Solver, error) {
	if name == "" {
		name = Default
	}
	construct, ok := constructors[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown solver %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return construct(opts), nil
}

// Names lists the available backends, sorted
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
