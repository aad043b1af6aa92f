package preference

import (
	"fmt"
	"strconv"
	"strings"
)

// ForbiddenCost is the cost the default scale reports for a "not allowed" preference
const ForbiddenCost = -1

// Entry is one row of a preference scale: the raw token a person writes,
// the cost it contributes and the label used when reporting it.
type Entry struct {
	Token     string
	Cost      int
	Label     string
	Forbidden bool
}

// DefaultEntries returns the standard scale. Costs grow faster than ranks so
// a few people getting their 4th or 5th choice outweighs many 2nd choices.
func DefaultEntries() []Entry {
	return []Entry{
		{Token: "", Cost: 0, Label: "DC"},
		{Token: "-1", Cost: ForbiddenCost, Label: "Not allowed", Forbidden: true},
		{Token: "1", Cost: 1, Label: "1st"},
		{Token: "2", Cost: 3, Label: "2nd"},
		{Token: "3", Cost: 5, Label: "3rd"},
		{Token: "4", Cost: 10, Label: "4th"},
		{Token: "5", Cost: 15, Label: "5th"},
	}
}

// Scale converts raw preference tokens to costs and costs back to rank labels.
// A Scale is immutable once built and safe to share between runs.
type Scale struct {
	entries   []Entry
	byToken   map[string]Entry
	byCost    map[int]Entry
	forbidden Entry
}

var defaultScale = mustScale(DefaultEntries())

// DefaultScale returns the standard scale
func DefaultScale() *Scale {
	return defaultScale
}

// CostOf resolves a token against the default scale
func CostOf(token string) (int, error) {
	return defaultScale.CostOf(token)
}

// LabelOf resolves a cost against the default scale
func LabelOf(cost int) (string, error) {
	return defaultScale.LabelOf(cost)
}

func mustScale(entries []Entry) *Scale {
	s, err := NewScale(entries)
	if err != nil {
		panic(err)
	}
	return s
}

// NewScale builds a scale from an explicit table.
//
// The table must contain exactly one blank-token entry (the "don't care"
// answer), exactly one forbidden entry, and tokens, costs and labels must all
// be unique so that LabelOf is a strict inverse of CostOf.
func NewScale(entries []Entry) (*Scale, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("preference scale has no entries")
	}

	s := &Scale{
		entries: make([]Entry, 0, len(entries)),
		byToken: make(map[string]Entry, len(entries)),
		byCost:  make(map[int]Entry, len(entries)),
	}
	labels := make(map[string]bool, len(entries))
	forbiddenCount := 0

	for i, entry := range entries {
		entry.Token = canonicalToken(entry.Token)
		entry.Label = strings.TrimSpace(entry.Label)

		if entry.Label == "" {
			return nil, fmt.Errorf("preference scale entry %d has no label", i)
		}
		if _, exists := s.byToken[entry.Token]; exists {
			return nil, fmt.Errorf("preference scale token %q is defined more than once", entry.Token)
		}
		if prev, exists := s.byCost[entry.Cost]; exists {
			return nil, fmt.Errorf("preference scale cost %d is shared by %q and %q", entry.Cost, prev.Label, entry.Label)
		}
		if labels[entry.Label] {
			return nil, fmt.Errorf("preference scale label %q is defined more than once", entry.Label)
		}

		if entry.Forbidden {
			if entry.Token == "" {
				return nil, fmt.Errorf("preference scale blank token cannot be the forbidden entry")
			}
			forbiddenCount++
			s.forbidden = entry
		}

		s.entries = append(s.entries, entry)
		s.byToken[entry.Token] = entry
		s.byCost[entry.Cost] = entry
		labels[entry.Label] = true
	}

	if _, ok := s.byToken[""]; !ok {
		return nil, fmt.Errorf("preference scale has no entry for a blank token")
	}
	if forbiddenCount != 1 {
		return nil, fmt.Errorf("preference scale must have exactly one forbidden entry, found %d", forbiddenCount)
	}

	return s, nil
}

// CostOf returns the cost for a raw token. Blank tokens cost nothing.
func (s *Scale) CostOf(token string) (int, error) {
	entry, err := s.lookupToken(token)
	if err != nil {
		return 0, err
	}
	return entry.Cost, nil
}

// LabelOf returns the rank label for a cost
func (s *Scale) LabelOf(cost int) (string, error) {
	entry, ok := s.byCost[cost]
	if !ok {
		return "", &InvalidPreferenceError{Cost: &cost}
	}
	return entry.Label, nil
}

// Resolve turns a raw token into a tagged Preference
func (s *Scale) Resolve(token string) (Preference, error) {
	entry, err := s.lookupToken(token)
	if err != nil {
		return Preference{}, err
	}
	return fromEntry(entry), nil
}

// ForbiddenLabel returns the label of the "not allowed" entry
func (s *Scale) ForbiddenLabel() string {
	return s.forbidden.Label
}

// Labels returns every label in table order
func (s *Scale) Labels() []string {
	labels := make([]string, len(s.entries))
	for i, entry := range s.entries {
		labels[i] = entry.Label
	}
	return labels
}

// RankedLabels returns the labels that can appear on an assignment, in table
// order. The forbidden label is left out.
func (s *Scale) RankedLabels() []string {
	labels := make([]string, 0, len(s.entries)-1)
	for _, entry := range s.entries {
		if !entry.Forbidden {
			labels = append(labels, entry.Label)
		}
	}
	return labels
}

// Entries returns a copy of the table
func (s *Scale) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Scale) lookupToken(token string) (Entry, error) {
	entry, ok := s.byToken[canonicalToken(token)]
	if !ok {
		return Entry{}, &InvalidPreferenceError{Token: token}
	}
	return entry, nil
}

// canonicalToken trims whitespace and normalises integer spellings, so that
// " 2", "+2" and "02" all find the "2" entry.
func canonicalToken(token string) string {
	token = strings.TrimSpace(token)
	if n, err := strconv.Atoi(token); err == nil {
		return strconv.Itoa(n)
	}
	return token
}
