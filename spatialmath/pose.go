package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/depthtruth/utils"
)

// unitQuatTolerance is how far from 1 a rotation quaternion's norm may drift before it is
// rejected. AR frameworks hand back quaternions normalized in single precision.
const unitQuatTolerance = 1e-3

// QuatNorm returns the norm of q computed in double precision.
func QuatNorm(q mgl32.Quat) float64 {
	return quat.Abs(quat.Number{
		Real: float64(q.W),
		Imag: float64(q.V[0]),
		Jmag: float64(q.V[1]),
		Kmag: float64(q.V[2]),
	})
}

// IsUnitQuat reports whether q is a rotation quaternion.
func IsUnitQuat(q mgl32.Quat) bool {
	norm := QuatNorm(q)
	return !math.IsNaN(norm) && math.Abs(norm-1) <= unitQuatTolerance
}

// QuatFromXYZW builds a quaternion from components in the x, y, z, w order used on the wire.
func QuatFromXYZW(x, y, z, w float32) mgl32.Quat {
	return mgl32.Quat{W: w, V: mgl32.Vec3{x, y, z}}
}

// ModelMatrix returns translate(t) × rotate(q), the pose's object to world transform.
func ModelMatrix(t mgl32.Vec3, q mgl32.Quat) (mgl32.Mat4, error) {
	if !IsUnitQuat(q) {
		return mgl32.Mat4{}, utils.NewConfigurationError("rotation quaternion has norm %f", QuatNorm(q))
	}
	return mgl32.Translate3D(t[0], t[1], t[2]).Mul4(q.Mat4()), nil
}

// PoseMatrices are the three matrices recorded with every camera-context pose.
type PoseMatrices struct {
	Model               mgl32.Mat4
	ModelView           mgl32.Mat4
	ModelViewProjection mgl32.Mat4
}

// NewPoseMatrices derives model, view × model and projection × view × model for a pose.
func NewPoseMatrices(t mgl32.Vec3, q mgl32.Quat, view, projection mgl32.Mat4) (PoseMatrices, error) {
	model, err := ModelMatrix(t, q)
	if err != nil {
		return PoseMatrices{}, err
	}
	modelView := view.Mul4(model)
	return PoseMatrices{
		Model:               model,
		ModelView:           modelView,
		ModelViewProjection: projection.Mul4(modelView),
	}, nil
}
