package recordstore

import (
	"errors"
	"fmt"
)

var (
	// ErrPersist matches every *PersistError.
	ErrPersist = errors.New("recordstore: persist failed")
	// ErrFieldType is returned by queries when a Regex or AnyIn operand
	// meets a field of the wrong type.
	ErrFieldType = errors.New("recordstore: field has wrong type")
	// ErrUnknownCollection is returned for collection names the store does not manage.
	ErrUnknownCollection = errors.New("recordstore: unknown collection")
)

// PersistError reports a failed collection or counter write. The mutation
// that caused it was not applied.
type PersistError struct {
	Collection string
	Op         string
	Err        error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("recordstore: %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrPersist) hold for any PersistError.
func (e *PersistError) Is(target error) bool { return target == ErrPersist }

func fieldTypeError(field string, got any, want string) error {
	return fmt.Errorf("%w: %q is %T, want %s", ErrFieldType, field, got, want)
}
