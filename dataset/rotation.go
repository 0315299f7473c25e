// Package dataset contains the immutable, serializable records that make up a depth ground
// truth dataset: scenes, projected point clouds, decoded depth frames and sensor snapshots.
//
// Every record declares its wire names with json tags. Records are built once per frame by
// the capture pipeline or decoded from disk, and are never mutated afterwards; late-bound
// values such as the display rotation produce a new record instead.
package dataset

import (
	"fmt"

	"go.viam.com/depthtruth/utils"
)

// DisplayRotation is the rotation of the device display relative to its natural orientation,
// in quarter turns.
type DisplayRotation int

// The four display rotations.
const (
	Rotation0 DisplayRotation = iota
	Rotation90
	Rotation180
	Rotation270
)

// DisplayRotationFromDegrees converts a multiple of 90 degrees into a DisplayRotation.
func DisplayRotationFromDegrees(degrees int) (DisplayRotation, error) {
	normalized := ((degrees % 360) + 360) % 360
	if normalized%90 != 0 {
		return Rotation0, utils.NewConfigurationError("display rotation %d is not a multiple of 90 degrees", degrees)
	}
	return DisplayRotation(normalized / 90), nil
}

// Degrees returns the rotation in degrees.
func (r DisplayRotation) Degrees() int {
	return int(r) * 90
}

// Validate ensures the rotation is one of the four quarter turns.
func (r DisplayRotation) Validate() error {
	if r < Rotation0 || r > Rotation270 {
		return utils.NewConfigurationError("invalid display rotation %d", int(r))
	}
	return nil
}

func (r DisplayRotation) String() string {
	return fmt.Sprintf("%d°", r.Degrees())
}
