package workouts

import (
	"errors"
	"strings"
)

var ErrValidation = errors.New("workout validation failed")

// ValidationError lists the add-workout fields that were rejected.
type ValidationError struct {
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(ErrValidation.Error())
	if len(e.Missing) > 0 {
		sb.WriteString(": missing ")
		sb.WriteString(strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		if len(e.Missing) > 0 {
			sb.WriteString(";")
		} else {
			sb.WriteString(":")
		}
		sb.WriteString(" invalid ")
		sb.WriteString(strings.Join(e.Invalid, ", "))
	}
	return sb.String()
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Fields returns all rejected field names, missing ones first.
func (e *ValidationError) Fields() []string {
	fields := make([]string, 0, len(e.Missing)+len(e.Invalid))
	fields = append(fields, e.Missing...)
	return append(fields, e.Invalid...)
}

func (e *ValidationError) empty() bool {
	return len(e.Missing) == 0 && len(e.Invalid) == 0
}
