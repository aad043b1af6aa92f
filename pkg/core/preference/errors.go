package preference

import (
	"errors"
	"fmt"
)

// ErrInvalidPreference matches any *InvalidPreferenceError via errors.Is
var ErrInvalidPreference = errors.New("invalid preference")

// InvalidPreferenceError reports a token or cost that is not on the scale
type InvalidPreferenceError struct {
	// Token is the raw token when a token lookup failed
	Token string
	// Cost is set when a cost lookup failed
	Cost *int
}

func (e *InvalidPreferenceError) Error() string {
	if e.Cost != nil {
		return fmt.Sprintf("invalid preference: cost %d is not on the scale", *e.Cost)
	}
	return fmt.Sprintf("invalid preference: token %q is not on the scale", e.Token)
}

func (e *InvalidPreferenceError) Is(target error) bool {
	return target == ErrInvalidPreference
}
