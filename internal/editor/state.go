package editor

import (
	"errors"
	"fmt"
)

// State is the position of a Session in its editing state machine.
type State int

const (
	// StateEmpty means no image is loaded.
	StateEmpty State = iota

	// StateReady means an image is loaded and no tool is active.
	StateReady

	// StateCropPending means the crop tool is active and a region is being edited.
	StateCropPending

	// StateRemoving means a background removal request is in flight.
	StateRemoving
)

var stateNames = [...]string{
	StateEmpty:       "empty",
	StateReady:       "ready",
	StateCropPending: "crop_pending",
	StateRemoving:    "removing",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Errors returned by Session transitions. A rejected transition never
// changes the session.
var (
	// ErrBusy is returned while a background removal is in flight.
	ErrBusy = errors.New("session busy: background removal in progress")

	// ErrToolConflict is returned when another tool is used while the crop
	// tool is active.
	ErrToolConflict = errors.New("crop tool active: apply or cancel the crop first")

	// ErrNoImage is returned by operations that need a loaded image.
	ErrNoImage = errors.New("no image loaded")

	// ErrImageLoaded is returned by Load when an image is already loaded.
	ErrImageLoaded = errors.New("an image is already loaded: reset first")

	// ErrNoCrop is returned by crop operations while the crop tool is inactive.
	ErrNoCrop = errors.New("crop tool not active")

	// ErrRemovalDiscarded is reported by a Removal whose result arrived after
	// the session moved on (reset or a different image).
	ErrRemovalDiscarded = errors.New("background removal result discarded")

	// ErrRemovalPending is reported by Removal.Err before the outcome is known.
	ErrRemovalPending = errors.New("background removal still in progress")
)
