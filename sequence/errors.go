package sequence

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrEmptySequence    = errors.New("empty sequence")
	ErrNilChord         = errors.New("nil chord")
)

// ParameterError reports a transport setting outside the accepted values.
// Applied is the value in effect after the call: the clamped value when
// Clamped is set, otherwise the previous value.
type ParameterError struct {
	Field   string
	Value   int
	Applied int
	Clamped bool
}

func (e *ParameterError) Error() string {
	if e.Clamped {
		return fmt.Sprintf("%v %v: %v out of range, clamped to %v", ErrInvalidParameter, e.Field, e.Value, e.Applied)
	}
	return fmt.Sprintf("%v %v: %v rejected, keeping %v", ErrInvalidParameter, e.Field, e.Value, e.Applied)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

func indexError(index int, length int) error {
	return errors.Wrapf(ErrIndexOutOfRange, "index %v with %v chords", index, length)
}
