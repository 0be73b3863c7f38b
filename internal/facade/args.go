package facade

import (
	"fmt"
	"time"

	dErrors "idbridge/pkg/domain-errors"
)

// Args are the named arguments of one invocation. Absent arguments read as
// their zero value so the operation's own validation reports them.
type Args map[string]any

func (a Args) String(name string) (string, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", wrongType(name, "string", v)
	}
	return s, nil
}

func (a Args) Bool(name string) (bool, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, wrongType(name, "bool", v)
	}
	return b, nil
}

// Time accepts a time.Time or an RFC 3339 string.
func (a Args) Time(name string) (time.Time, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return time.Time{}, nil
	}
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, dErrors.Wrap(err, dErrors.CodeInvalidInput,
				fmt.Sprintf("argument %q is not an RFC 3339 timestamp", name))
		}
		return parsed, nil
	default:
		return time.Time{}, wrongType(name, "timestamp", v)
	}
}

func wrongType(name, want string, got any) error {
	return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("argument %q must be a %s, got %T", name, want, got))
}
