package model

import (
	"errors"
	"fmt"

	"github.com/jakechorley/badge-groups/pkg/core/preference"
)

// ErrMissingPreference is returned when an input record has no column for a
// configured badge
var ErrMissingPreference = errors.New("missing preference")

// PreferenceRecord is one raw input row: a name and a token per badge column
type PreferenceRecord struct {
	Name   string
	Tokens map[string]string
}

// NewPopulation builds every person for a run. Each record must carry a token
// (possibly blank) for every configured badge and nothing else.
func NewPopulation(cfg *RunConfig, records []PreferenceRecord, scale *preference.Scale) ([]*Person, error) {
	people := make([]*Person, 0, len(records))
	seen := make(map[string]bool, len(records))

	for i, record := range records {
		for badge := range record.Tokens {
			if !cfg.HasBadge(badge) {
				return nil, fmt.Errorf("record %d (%s): %w", i+1, record.Name, &UnknownBadgeError{Person: record.Name, Badge: badge})
			}
		}
		for _, badge := range cfg.BadgeNames() {
			if _, ok := record.Tokens[badge]; !ok {
				return nil, fmt.Errorf("record %d (%s): %w for badge %q", i+1, record.Name, ErrMissingPreference, badge)
			}
		}

		person, err := NewPerson(record.Name, record.Tokens, scale)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		if seen[person.Name()] {
			return nil, fmt.Errorf("record %d: person %q appears more than once", i+1, person.Name())
		}
		seen[person.Name()] = true

		people = append(people, person)
	}

	return people, nil
}
