package lightfield

import (
	"errors"
	"fmt"
)

// ErrNotOpen is returned when a setter or query is used before Open has
// attached to an experiment.
var ErrNotOpen = errors.New("lightfield: not attached to an experiment, call Open first")

// ErrSettingNotFound is generated when a setting is absent from the
// loaded experiment context.  The write is skipped; the condition is
// non-fatal and the caller may continue.
type ErrSettingNotFound struct {
	// Setting is the specific setting not found
	Setting Setting
}

// Error satisfies the error interface
func (e ErrSettingNotFound) Error() string {
	return fmt.Sprintf("setting %s does not exist in the loaded experiment", e.Setting)
}

// ErrUnknownGrating is generated when a grating code is outside the three
// turret positions.
type ErrUnknownGrating struct {
	Grating Grating
}

// Error satisfies the error interface
func (e ErrUnknownGrating) Error() string {
	return fmt.Sprintf("grating %d is not a valid turret position, want 0..2", int(e.Grating))
}

// ErrUnknownSensorMode is generated when a readout mode is outside 1..4.
type ErrUnknownSensorMode struct {
	Mode SensorMode
}

// Error satisfies the error interface
func (e ErrUnknownSensorMode) Error() string {
	return fmt.Sprintf("sensor mode %d is not valid, want 1..4", int(e.Mode))
}
