package dataset

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"go.viam.com/depthtruth/spatialmath"
	"go.viam.com/depthtruth/utils"
)

// Pose is a rigid transform recorded as a translation and an x, y, z, w quaternion. Poses
// captured with camera context also carry the model, model-view and model-view-projection
// matrices; the matrices are null otherwise.
type Pose struct {
	TX float32 `json:"tx"`
	TY float32 `json:"ty"`
	TZ float32 `json:"tz"`
	QX float32 `json:"qx"`
	QY float32 `json:"qy"`
	QZ float32 `json:"qz"`
	QW float32 `json:"qw"`

	ModelMatrix               []float32 `json:"modelMatrix"`
	ModelViewMatrix           []float32 `json:"modelViewMatrix"`
	ModelViewProjectionMatrix []float32 `json:"modelViewProjectionMatrix"`
}

// NewPose returns a pose with all three matrices derived from the camera's view and projection.
func NewPose(translation mgl32.Vec3, rotation mgl32.Quat, view, projection mgl32.Mat4) (*Pose, error) {
	matrices, err := spatialmath.NewPoseMatrices(translation, rotation, view, projection)
	if err != nil {
		return nil, err
	}
	p := newBarePose(translation, rotation)
	p.ModelMatrix = spatialmath.MatToSlice(matrices.Model)
	p.ModelViewMatrix = spatialmath.MatToSlice(matrices.ModelView)
	p.ModelViewProjectionMatrix = spatialmath.MatToSlice(matrices.ModelViewProjection)
	return p, nil
}

// NewBarePose returns a pose without camera context. Only the model matrix is recorded.
func NewBarePose(translation mgl32.Vec3, rotation mgl32.Quat) (*Pose, error) {
	model, err := spatialmath.ModelMatrix(translation, rotation)
	if err != nil {
		return nil, err
	}
	p := newBarePose(translation, rotation)
	p.ModelMatrix = spatialmath.MatToSlice(model)
	return p, nil
}

func newBarePose(t mgl32.Vec3, q mgl32.Quat) *Pose {
	return &Pose{
		TX: t[0], TY: t[1], TZ: t[2],
		QX: q.V[0], QY: q.V[1], QZ: q.V[2], QW: q.W,
	}
}

// Translation returns the pose position.
func (p *Pose) Translation() mgl32.Vec3 {
	return mgl32.Vec3{p.TX, p.TY, p.TZ}
}

// Rotation returns the pose orientation.
func (p *Pose) Rotation() mgl32.Quat {
	return spatialmath.QuatFromXYZW(p.QX, p.QY, p.QZ, p.QW)
}

// Validate checks the quaternion is unit length and that any recorded matrix is 4x4.
func (p *Pose) Validate() error {
	if !spatialmath.IsUnitQuat(p.Rotation()) {
		return utils.NewConfigurationError("pose rotation has norm %f", spatialmath.QuatNorm(p.Rotation()))
	}
	for name, m := range map[string][]float32{
		"modelMatrix":               p.ModelMatrix,
		"modelViewMatrix":           p.ModelViewMatrix,
		"modelViewProjectionMatrix": p.ModelViewProjectionMatrix,
	} {
		if m == nil {
			continue
		}
		if _, err := spatialmath.MatFromSlice(m); err != nil {
			return errors.Wrap(err, name)
		}
	}
	return nil
}
