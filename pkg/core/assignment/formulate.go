// Package assignment turns a population and badge configuration into a 0/1
// program and reads solved programs back into badge assignments.
package assignment

import (
	"fmt"
	"strings"

	"github.com/jakechorley/badge-groups/pkg/core/model"
	"github.com/jakechorley/badge-groups/pkg/lp"
)

// ProblemName is the name given to every formulated problem
const ProblemName = "Badge_Assignment"

// Formulation is a built model together with the mapping from
// (person, badge) to decision variable
type Formulation struct {
	cfg     *model.RunConfig
	people  []*model.Person
	badges  []string
	problem *lp.Problem

	// vars[i][j] is the variable for people[i] and badges[j]
	vars [][]lp.Var
}

// Formulate builds the minimum-cost assignment program:
//
//   - one binary variable per (person, badge)
//   - every person takes exactly one badge
//   - forbidden (person, badge) pairs are fixed to zero
//   - no badge takes more people than its capacity
//
// The objective is the sum of each chosen pair's cost.
func Formulate(cfg *model.RunConfig, people []*model.Person) (*Formulation, error) {
	if cfg == nil {
		return nil, fmt.Errorf("run config is required")
	}

	f := &Formulation{
		cfg:     cfg,
		people:  people,
		badges:  cfg.BadgeNames(),
		problem: lp.NewProblem(ProblemName),
		vars:    make([][]lp.Var, len(people)),
	}

	// Variables and objective
	for i, person := range people {
		f.vars[i] = make([]lp.Var, len(f.badges))
		for j, badge := range f.badges {
			pref, err := person.Preference(badge)
			if err != nil {
				return nil, err
			}

			v := f.problem.AddBinary(variableName(person.Name(), badge))
			if err := f.problem.SetObjective(v, float64(pref.ObjectiveCost())); err != nil {
				return nil, err
			}
			f.vars[i][j] = v
		}
	}

	// Exactly one badge per person
	for i, person := range people {
		terms := make([]lp.Term, len(f.badges))
		for j := range f.badges {
			terms[j] = lp.Term{Var: f.vars[i][j], Coeff: 1}
		}
		if err := f.problem.AddConstraint(fmt.Sprintf("One badge for %s", person.Name()), terms, lp.SenseEQ, 1); err != nil {
			return nil, err
		}
	}

	// Forbidden pairs
	for i, person := range people {
		for j, badge := range f.badges {
			pref, _ := person.Preference(badge)
			if !pref.IsForbidden() {
				continue
			}
			name := fmt.Sprintf("No %s badge for %s", badge, person.Name())
			if err := f.problem.AddConstraint(name, []lp.Term{{Var: f.vars[i][j], Coeff: 1}}, lp.SenseEQ, 0); err != nil {
				return nil, err
			}
		}
	}

	// Capacity
	for j, badge := range cfg.Badges() {
		terms := make([]lp.Term, len(people))
		for i := range people {
			terms[i] = lp.Term{Var: f.vars[i][j], Coeff: 1}
		}
		name := fmt.Sprintf("Max %d people in %s", badge.Capacity, badge.Name)
		if err := f.problem.AddConstraint(name, terms, lp.SenseLE, float64(badge.Capacity)); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// Problem returns the built program
func (f *Formulation) Problem() *lp.Problem {
	return f.problem
}

// People returns the population the program was built for
func (f *Formulation) People() []*model.Person {
	return f.people
}

// Variable returns the decision variable for a person and badge
func (f *Formulation) Variable(person, badge string) (lp.Var, bool) {
	for i, p := range f.people {
		if p.Name() != person {
			continue
		}
		for j, b := range f.badges {
			if b == badge {
				return f.vars[i][j], true
			}
		}
	}
	return 0, false
}

// variableName joins person and badge the way the model is printed;
// whitespace becomes "_" so names stay single tokens
func variableName(person, badge string) string {
	return strings.Join(strings.Fields(person), "_") + "_" + strings.Join(strings.Fields(badge), "_")
}
