package exhibition

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrStallNotFound    = errors.New("stall not found")
	ErrVenueNotFound    = errors.New("venue not found")
	ErrFloorNotFound    = errors.New("floor not found")
	ErrDuplicateNumber  = errors.New("duplicate stall number")
	ErrNumberRequired   = errors.New("stall number is required")
	ErrEmptyName        = errors.New("name cannot be empty")
	ErrInvalidPosition  = errors.New("stall position out of range")
	ErrAlreadyPurchased = errors.New("stall already purchased")
)

// DuplicateNumberError reports a stall number that is already used by a
// sibling stall. It matches ErrDuplicateNumber with errors.Is.
type DuplicateNumberError struct {
	Number string
}

func (e *DuplicateNumberError) Error() string {
	return `Stall number "` + e.Number + `" already exists.`
}

func (e *DuplicateNumberError) Is(target error) bool {
	return target == ErrDuplicateNumber
}

// NameError reports an empty venue or floor name. It matches ErrEmptyName.
type NameError struct {
	Kind string // "Venue" or "Floor"
}

func (e *NameError) Error() string {
	return e.Kind + " name cannot be empty."
}

func (e *NameError) Is(target error) bool {
	return target == ErrEmptyName
}

// FieldErrors maps a field key to its validation message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fe[k])
	}
	return strings.Join(msgs, " ")
}

// UserMessage returns the text shown to the person editing the exhibition.
func UserMessage(err error) string {
	var dup *DuplicateNumberError
	var name *NameError
	var fields FieldErrors
	switch {
	case err == nil:
		return ""
	case errors.As(err, &dup):
		return dup.Error()
	case errors.As(err, &name):
		return name.Error()
	case errors.As(err, &fields):
		return fields.Error()
	case errors.Is(err, ErrNumberRequired):
		return "Stall number is required."
	case errors.Is(err, ErrInvalidPosition):
		return "Stall must lie within the floor plan."
	case errors.Is(err, ErrAlreadyPurchased):
		return "This stall has already been purchased."
	}
	return err.Error()
}
