package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jakechorley/badge-groups/pkg/core/preference"
)

// Person is one participant with a resolved preference for every badge.
// The assignment is set once, after solving.
type Person struct {
	name        string
	preferences map[string]preference.Preference
	badges      []string
	assignment  string
	assigned    bool
}

// NewPerson resolves every raw token against the scale. Any invalid token
// fails construction so that no malformed cost reaches the formulator.
func NewPerson(name string, tokens map[string]string, scale *preference.Scale) (*Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("person has no name")
	}
	if scale == nil {
		scale = preference.DefaultScale()
	}

	p := &Person{
		name:        name,
		preferences: make(map[string]preference.Preference, len(tokens)),
		badges:      make([]string, 0, len(tokens)),
	}

	for badge := range tokens {
		p.badges = append(p.badges, badge)
	}
	sort.Strings(p.badges)

	for _, badge := range p.badges {
		pref, err := scale.Resolve(tokens[badge])
		if err != nil {
			return nil, fmt.Errorf("%s, badge %q: %w", name, badge, err)
		}
		p.preferences[badge] = pref
	}

	return p, nil
}

// Name returns the person's name
func (p *Person) Name() string {
	return p.name
}

// Badges returns the badges this person has a preference for, sorted
func (p *Person) Badges() []string {
	out := make([]string, len(p.badges))
	copy(out, p.badges)
	return out
}

// Preference returns the resolved preference for a badge
func (p *Person) Preference(badge string) (preference.Preference, error) {
	pref, ok := p.preferences[badge]
	if !ok {
		return preference.Preference{}, &UnknownBadgeError{Person: p.name, Badge: badge}
	}
	return pref, nil
}

// PriorityOf returns the resolved cost for a badge
func (p *Person) PriorityOf(badge string) (int, error) {
	pref, err := p.Preference(badge)
	if err != nil {
		return 0, err
	}
	return pref.Cost, nil
}

// Assign records the badge this person ended up with. Assigning the same
// badge again is harmless; assigning a different one is an error.
func (p *Person) Assign(badge string) error {
	if _, ok := p.preferences[badge]; !ok {
		return &UnknownBadgeError{Person: p.name, Badge: badge}
	}
	if p.assigned && p.assignment != badge {
		return fmt.Errorf("%w: %s has %q, cannot also take %q", ErrAlreadyAssigned, p.name, p.assignment, badge)
	}
	p.assignment = badge
	p.assigned = true
	return nil
}

// Assignment returns the assigned badge, if any
func (p *Person) Assignment() (string, bool) {
	return p.assignment, p.assigned
}

func (p *Person) String() string {
	parts := make([]string, 0, len(p.badges))
	for _, badge := range p.badges {
		parts = append(parts, fmt.Sprintf("%s: %s", badge, p.preferences[badge].Label))
	}
	return fmt.Sprintf("Person(%s, %s)", p.name, strings.Join(parts, ", "))
}
