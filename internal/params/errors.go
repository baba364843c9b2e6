package params

import (
	"errors"
	"fmt"
)

var ErrUnknownLaw = errors.New("params: unknown limb darkening law")

// ValidationError names the field and the rule it broke.
type ValidationError struct {
	Field string
	Rule  string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("params: field=%s: %s", e.Field, e.Rule)
}

func invalid(field, format string, args ...any) error {
	return ValidationError{Field: field, Rule: fmt.Sprintf(format, args...)}
}
