package dataset

import (
	"github.com/pkg/errors"

	"go.viam.com/depthtruth/spatialmath"
	"go.viam.com/depthtruth/utils"
)

// SceneDataset is the camera context of one frame: poses, viewport, clipping planes, matrices
// and the tracked anchors.
type SceneDataset struct {
	CameraPose        *Pose           `json:"cameraPose"`
	CameraDisplayPose *Pose           `json:"cameraDisplayPose"`
	SensorPose        *Pose           `json:"sensorPose"`
	DisplayRotation   DisplayRotation `json:"displayRotation"`
	FrameNumber       int             `json:"frameNumber"`
	Timestamp         int64           `json:"timestamp"`
	Width             int             `json:"width"`
	Height            int             `json:"height"`
	NumAnchors        int             `json:"numeroAncore"`
	Anchors           []Pose          `json:"ancore"`
	NearPlane         float32         `json:"nearPlane"`
	FarPlane          float32         `json:"farPlane"`
	ViewMatrix        []float32       `json:"viewmtx"`
	ProjectionMatrix  []float32       `json:"projmtx"`
}

// WithDisplayRotation returns a copy of the scene bound to the given display rotation. The
// receiver is left unchanged.
func (s *SceneDataset) WithDisplayRotation(rotation DisplayRotation) (*SceneDataset, error) {
	if err := rotation.Validate(); err != nil {
		return nil, err
	}
	out := *s
	out.DisplayRotation = rotation
	return &out, nil
}

// Validate checks the invariants of a scene record.
func (s *SceneDataset) Validate() error {
	if s.NumAnchors != len(s.Anchors) {
		return utils.NewDecodeError("scene declares %d anchors but has %d", s.NumAnchors, len(s.Anchors))
	}
	if s.Width <= 0 || s.Height <= 0 {
		return utils.NewDecodeError("invalid viewport size %dx%d", s.Width, s.Height)
	}
	if s.NearPlane <= 0 || s.FarPlane <= s.NearPlane {
		return utils.NewConfigurationError("invalid clipping planes near %f far %f", s.NearPlane, s.FarPlane)
	}
	if _, err := spatialmath.MatFromSlice(s.ViewMatrix); err != nil {
		return errors.Wrap(err, "viewmtx")
	}
	if _, err := spatialmath.MatFromSlice(s.ProjectionMatrix); err != nil {
		return errors.Wrap(err, "projmtx")
	}
	for name, p := range map[string]*Pose{
		"cameraPose":        s.CameraPose,
		"cameraDisplayPose": s.CameraDisplayPose,
		"sensorPose":        s.SensorPose,
	} {
		if p == nil {
			continue
		}
		if err := p.Validate(); err != nil {
			return errors.Wrap(err, name)
		}
	}
	for i := range s.Anchors {
		if err := s.Anchors[i].Validate(); err != nil {
			return errors.Wrapf(err, "anchor %d", i)
		}
	}
	return s.DisplayRotation.Validate()
}
