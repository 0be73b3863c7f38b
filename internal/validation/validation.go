// Package validation holds the record-level checks run at the boundary of
// every public write operation.
package validation

import (
	"errors"
	"fmt"
	"strings"

	dErrors "idbridge/pkg/domain-errors"
)

// Kind names the operation whose input failed validation.
type Kind string

const (
	KindLog          Kind = "log"
	KindLoginHistory Kind = "login_history"
	KindMapping      Kind = "mapping"
)

// Value is one positional input together with the field it came from.
type Value struct {
	Field string
	Text  string
}

// Field is shorthand for building a Value.
func Field(name, text string) Value {
	return Value{Field: name, Text: text}
}

// BlankFieldError identifies the first blank positional input.
type BlankFieldError struct {
	Kind     Kind
	Field    string
	Position int
}

func (e *BlankFieldError) Error() string {
	return fmt.Sprintf("%s: %s is required (position %d)", e.Kind, e.Field, e.Position)
}

// NonBlank fails with a validation error for kind when any value is empty or
// whitespace-only. Evaluation stops at the first offending value.
func NonBlank(kind Kind, values ...Value) error {
	for i, v := range values {
		if strings.TrimSpace(v.Text) == "" {
			return dErrors.Wrap(
				&BlankFieldError{Kind: kind, Field: v.Field, Position: i},
				dErrors.CodeValidation,
				fmt.Sprintf("invalid %s input", kind),
			)
		}
	}
	return nil
}

// BlankField extracts the BlankFieldError carried by err, if any.
func BlankField(err error) (*BlankFieldError, bool) {
	var blank *BlankFieldError
	if errors.As(err, &blank) {
		return blank, true
	}
	return nil, false
}
