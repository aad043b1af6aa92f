package assignment

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jakechorley/badge-groups/pkg/core/preference"
	"github.com/jakechorley/badge-groups/pkg/lp"
)

// ErrAssignmentIntegrity matches any *AssignmentIntegrityError via errors.Is
var ErrAssignmentIntegrity = errors.New("assignment integrity violated")

// AssignmentIntegrityError reports a solved program that does not describe a
// valid assignment. It points at a modelling bug or a misbehaving solver.
type AssignmentIntegrityError struct {
	Person   string
	Badge    string
	Selected []string
	Reason   string
}

func (e *AssignmentIntegrityError) Error() string {
	var b strings.Builder
	b.WriteString("assignment integrity violated")
	if e.Person != "" {
		fmt.Fprintf(&b, " for %s", e.Person)
	}
	if e.Badge != "" {
		fmt.Fprintf(&b, " in %s", e.Badge)
	}
	fmt.Fprintf(&b, ": %s", e.Reason)
	return b.String()
}

func (e *AssignmentIntegrityError) Is(target error) bool {
	return target == ErrAssignmentIntegrity
}

// Assignment is one person's outcome
type Assignment struct {
	Person string
	Badge  string
	Label  string
	Cost   int
}

// BadgeCount is the number of people given a badge
type BadgeCount struct {
	Badge    string
	Count    int
	Capacity int
}

// LabelCount is the number of people who got a badge they ranked with Label
type LabelCount struct {
	Label string
	Count int
}

// Result is everything a reporter needs about a finished run
type Result struct {
	Status  lp.Status
	Message string

	// The fields below are only filled when Status is lp.StatusOptimal
	Assignments []Assignment
	BadgeCounts []BadgeCount
	LabelCounts []LabelCount
	TotalCost   int
}

// BadgeCount returns the count for a badge
func (r *Result) BadgeCount(badge string) int {
	for _, bc := range r.BadgeCounts {
		if bc.Badge == badge {
			return bc.Count
		}
	}
	return 0
}

// LabelCount returns the count for a rank label
func (r *Result) LabelCount(label string) int {
	for _, lc := range r.LabelCounts {
		if lc.Label == label {
			return lc.Count
		}
	}
	return 0
}

// Extract reads a solution back onto the formulation's people.
//
// A non-optimal solution yields a Result carrying only the status; nobody is
// assigned. For an optimal solution every person must have exactly one
// selected badge, never a forbidden one, no badge may exceed its capacity and
// the solver's objective must match the assigned costs. Any violation is an
// *AssignmentIntegrityError.
func Extract(f *Formulation, sol *lp.Solution, scale *preference.Scale) (*Result, error) {
	if f == nil || sol == nil {
		return nil, fmt.Errorf("formulation and solution are required")
	}
	if scale == nil {
		scale = preference.DefaultScale()
	}

	result := &Result{Status: sol.Status, Message: sol.Message}
	if sol.Status != lp.StatusOptimal {
		return result, nil
	}
	if len(sol.Values) != f.problem.NumVariables() {
		return nil, &AssignmentIntegrityError{
			Reason: fmt.Sprintf("solution has %d values for %d variables", len(sol.Values), f.problem.NumVariables()),
		}
	}

	chosen := make([]int, len(f.people))
	for i, person := range f.people {
		var selected []string
		chosen[i] = -1
		for j, badge := range f.badges {
			if sol.Value(f.vars[i][j]) > 0.5 {
				selected = append(selected, badge)
				chosen[i] = j
			}
		}
		if len(selected) != 1 {
			return nil, &AssignmentIntegrityError{
				Person:   person.Name(),
				Selected: selected,
				Reason:   fmt.Sprintf("expected exactly one badge, solver selected %d", len(selected)),
			}
		}
	}

	badgeCounts := make([]BadgeCount, len(f.badges))
	for j, badge := range f.cfg.Badges() {
		badgeCounts[j] = BadgeCount{Badge: badge.Name, Capacity: badge.Capacity}
	}

	labelCounts := make([]LabelCount, 0)
	labelIndex := make(map[string]int)
	for _, label := range scale.RankedLabels() {
		labelIndex[label] = len(labelCounts)
		labelCounts = append(labelCounts, LabelCount{Label: label})
	}

	assignments := make([]Assignment, len(f.people))
	total := 0
	for i, person := range f.people {
		badge := f.badges[chosen[i]]

		pref, err := person.Preference(badge)
		if err != nil {
			return nil, err
		}
		if pref.IsForbidden() {
			return nil, &AssignmentIntegrityError{
				Person:   person.Name(),
				Badge:    badge,
				Selected: []string{badge},
				Reason:   "badge is not allowed for this person",
			}
		}

		label, err := scale.LabelOf(pref.Cost)
		if err != nil {
			return nil, fmt.Errorf("%s, badge %q: %w", person.Name(), badge, err)
		}

		assignments[i] = Assignment{Person: person.Name(), Badge: badge, Label: label, Cost: pref.Cost}
		badgeCounts[chosen[i]].Count++
		if idx, ok := labelIndex[label]; ok {
			labelCounts[idx].Count++
		} else {
			labelIndex[label] = len(labelCounts)
			labelCounts = append(labelCounts, LabelCount{Label: label, Count: 1})
		}
		total += pref.Cost
	}

	for _, bc := range badgeCounts {
		if bc.Count > bc.Capacity {
			return nil, &AssignmentIntegrityError{
				Badge:  bc.Badge,
				Reason: fmt.Sprintf("%d people assigned, capacity is %d", bc.Count, bc.Capacity),
			}
		}
	}

	if math.Abs(sol.Objective-float64(total)) > lp.DefaultTolerance {
		return nil, &AssignmentIntegrityError{
			Reason: fmt.Sprintf("solver objective %g does not match assigned cost %d", sol.Objective, total),
		}
	}

	// Only touch people once the whole solution has checked out
	for i, person := range f.people {
		if err := person.Assign(assignments[i].Badge); err != nil {
			return nil, err
		}
	}

	result.Assignments = assignments
	result.BadgeCounts = badgeCounts
	result.LabelCounts = labelCounts
	result.TotalCost = total
	return result, nil
}
