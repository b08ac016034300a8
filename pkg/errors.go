package pixelproc

import "fmt"

// ErrInvalidConfiguration represents an invalid configuration value.
type ErrInvalidConfiguration struct {
	Field string
	Err   error
}

func (e *ErrInvalidConfiguration) Error() string {
	return fmt.Sprintf("invalid configuration %q: %v", e.Field, e.Err)
}

func (e *ErrInvalidConfiguration) Unwrap() error {
	return e.Err
}

// ErrLoadCamera represents an error when reading the camera of a telescope.
type ErrLoadCamera struct {
	Telescope int
	Run       int
	Err       error
}

func (e *ErrLoadCamera) Error() string {
	return fmt.Sprintf("error loading camera of telescope %d for run %d: %v", e.Telescope, e.Run, e.Err)
}

func (e *ErrLoadCamera) Unwrap() error {
	return e.Err
}

// ErrEventCleaning represents a structural fault that aborted the cleaning
// of one event.
type ErrEventCleaning struct {
	EventID uint32
	Err     error
}

func (e *ErrEventCleaning) Error() string {
	return fmt.Sprintf("error cleaning event %d: %v", e.EventID, e.Err)
}

func (e *ErrEventCleaning) Unwrap() error {
	return e.Err
}
