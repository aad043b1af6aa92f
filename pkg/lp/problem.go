// Package lp describes small 0/1 linear programs independently of the engine
// that solves them.
//
// A Problem holds binary variables, a minimisation objective and named
// linear constraints. Engines live in sub-packages and implement Solver.
package lp

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Sense is the relation between a constraint's left-hand side and its RHS
type Sense int

const (
	SenseEQ Sense = iota
	SenseLE
	SenseGE
)

func (s Sense) String() string {
	switch s {
	case SenseEQ:
		return "="
	case SenseLE:
		return "<="
	case SenseGE:
		return ">="
	default:
		return fmt.Sprintf("Sense(%d)", int(s))
	}
}

// Var identifies a variable within one Problem
type Var int

// Term is coefficient * variable
type Term struct {
	Var   Var
	Coeff float64
}

// Constraint is a named linear constraint: sum(Terms) Sense RHS
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Problem is a minimisation problem over binary variables
type Problem struct {
	name        string
	varNames    []string
	objective   []float64
	constraints []Constraint
}

// NewProblem creates an empty problem
func NewProblem(name string) *Problem {
	return &Problem{name: name}
}

// Name returns the problem name
func (p *Problem) Name() string {
	return p.name
}

// AddBinary adds a 0/1 variable with a zero objective coefficient
func (p *Problem) AddBinary(name string) Var {
	p.varNames = append(p.varNames, name)
	p.objective = append(p.objective, 0)
	return Var(len(p.varNames) - 1)
}

// SetObjective sets the objective coefficient of a variable
func (p *Problem) SetObjective(v Var, coeff float64) error {
	if err := p.checkVar(v); err != nil {
		return err
	}
	p.objective[v] = coeff
	return nil
}

// AddConstraint appends a named constraint
func (p *Problem) AddConstraint(name string, terms []Term, sense Sense, rhs float64) error {
	for _, term := range terms {
		if err := p.checkVar(term.Var); err != nil {
			return fmt.Errorf("constraint %q: %w", name, err)
		}
	}
	if sense != SenseEQ && sense != SenseLE && sense != SenseGE {
		return fmt.Errorf("constraint %q: unsupported sense %v", name, sense)
	}

	owned := make([]Term, len(terms))
	copy(owned, terms)
	p.constraints = append(p.constraints, Constraint{Name: name, Terms: owned, Sense: sense, RHS: rhs})
	return nil
}

// NumVariables returns the number of variables
func (p *Problem) NumVariables() int {
	return len(p.varNames)
}

// VariableName returns the name a variable was created with
func (p *Problem) VariableName(v Var) string {
	if p.checkVar(v) != nil {
		return ""
	}
	return p.varNames[v]
}

// Objective returns a copy of the objective coefficients indexed by Var
func (p *Problem) Objective() []float64 {
	out := make([]float64, len(p.objective))
	copy(out, p.objective)
	return out
}

// Constraints returns the constraints in insertion order
func (p *Problem) Constraints() []Constraint {
	out := make([]Constraint, len(p.constraints))
	copy(out, p.constraints)
	return out
}

// Evaluate computes the objective for a full assignment of values
func (p *Problem) Evaluate(values []float64) float64 {
	total := 0.0
	for i, coeff := range p.objective {
		if i < len(values) {
			total += coeff * values[i]
		}
	}
	return total
}

// Check returns an error naming the first constraint the values violate
func (p *Problem) Check(values []float64, tol float64) error {
	if len(values) != len(p.varNames) {
		return fmt.Errorf("expected %d values, got %d", len(p.varNames), len(values))
	}
	for _, c := range p.constraints {
		lhs := 0.0
		for _, term := range c.Terms {
			lhs += term.Coeff * values[term.Var]
		}
		if !satisfies(lhs, c.Sense, c.RHS, tol) {
			return fmt.Errorf("constraint %q violated: %s evaluates to %g", c.Name, p.FormatConstraint(c), lhs)
		}
	}
	return nil
}

// FormatConstraint renders a constraint as "name: a + b <= 3"
func (p *Problem) FormatConstraint(c Constraint) string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteString(": ")

	if len(c.Terms) == 0 {
		b.WriteString("0")
	}
	for i, term := range c.Terms {
		coeff := term.Coeff
		if i > 0 {
			if coeff < 0 {
				b.WriteString(" - ")
				coeff = -coeff
			} else {
				b.WriteString(" + ")
			}
		} else if coeff < 0 {
			b.WriteString("-")
			coeff = -coeff
		}
		if coeff != 1 {
			b.WriteString(formatNumber(coeff))
			b.WriteString("*")
		}
		b.WriteString(p.VariableName(term.Var))
	}

	b.WriteString(" ")
	b.WriteString(c.Sense.String())
	b.WriteString(" ")
	b.WriteString(formatNumber(c.RHS))
	return b.String()
}

// String renders every constraint, one per line
func (p *Problem) String() string {
	lines := make([]string, len(p.constraints))
	for i, c := range p.constraints {
		lines[i] = p.FormatConstraint(c)
	}
	return strings.Join(lines, "\n")
}

func (p *Problem) checkVar(v Var) error {
	if v < 0 || int(v) >= len(p.varNames) {
		return fmt.Errorf("variable %d is not part of problem %q", v, p.name)
	}
	return nil
}

func satisfies(lhs float64, sense Sense, rhs, tol float64) bool {
	switch sense {
	case SenseEQ:
		return math.Abs(lhs-rhs) <= tol
	case SenseLE:
		return lhs <= rhs+tol
	case SenseGE:
		return lhs >= rhs-tol
	}
	return false
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
