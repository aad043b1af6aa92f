package preference

// Kind tags a preference as either ranked or forbidden
type Kind int

const (
	KindRanked Kind = iota
	KindForbidden
)

func (k Kind) String() string {
	if k == KindForbidden {
		return "forbidden"
	}
	return "ranked"
}

// Preference is a resolved answer for one person and one badge.
//
// Forbidden is carried as its own kind rather than inferred from the cost,
// so nothing downstream has to know which number the scale reserves for it.
type Preference struct {
	Kind  Kind
	Cost  int
	Label string
}

// Ranked builds a ranked preference
func Ranked(cost int, label string) Preference {
	return Preference{Kind: KindRanked, Cost: cost, Label: label}
}

// Forbidden builds a forbidden preference
func Forbidden(cost int, label string) Preference {
	return Preference{Kind: KindForbidden, Cost: cost, Label: label}
}

func fromEntry(e Entry) Preference {
	if e.Forbidden {
		return Forbidden(e.Cost, e.Label)
	}
	return Ranked(e.Cost, e.Label)
}

// IsForbidden reports whether the person must never receive this badge
func (p Preference) IsForbidden() bool {
	return p.Kind == KindForbidden
}

// ObjectiveCost is the coefficient used in the objective. Forbidden
// preferences contribute nothing: they are excluded by a hard constraint and
// must never look attractive to the optimiser.
func (p Preference) ObjectiveCost() int {
	if p.IsForbidden() {
		return 0
	}
	return p.Cost
}
