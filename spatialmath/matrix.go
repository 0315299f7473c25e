// Package spatialmath defines the single precision matrix operations used to project AR
// observations: 4x4 composition, homogeneous transforms and pose matrices.
//
// All matrices are mgl32.Mat4 values, which are stored column-major exactly like the flat
// 16 element arrays produced by AR frameworks and written to dataset records.
package spatialmath

import (
	"github.com/go-gl/mathgl/mgl32"

	"go.viam.com/depthtruth/utils"
)

// MatrixLen is the number of elements in a flat 4x4 matrix.
const MatrixLen = 16

// ViewProjection composes a projection and a view matrix into projection × view, so that a
// world-space point p lands in clip space as (projection × view) · p.
func ViewProjection(projection, view mgl32.Mat4) mgl32.Mat4 {
	return projection.Mul4(view)
}

// Transform applies m to the homogeneous vector v.
func Transform(m mgl32.Mat4, v mgl32.Vec4) mgl32.Vec4 {
	return m.Mul4x1(v)
}

// TransformPoint applies m to the world-space point p with w = 1.
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec4 {
	return m.Mul4x1(p.Vec4(1))
}

// MatFromSlice reads a column-major matrix from a flat slice.
func MatFromSlice(values []float32) (mgl32.Mat4, error) {
	if len(values) != MatrixLen {
		return mgl32.Mat4{}, utils.NewDecodeError("matrix has %d elements, expected %d", len(values), MatrixLen)
	}
	var m mgl32.Mat4
	copy(m[:], values)
	return m, nil
}

// MatToSlice returns a fresh column-major copy of m.
func MatToSlice(m mgl32.Mat4) []float32 {
	out := make([]float32, MatrixLen)
	copy(out, m[:])
	return out
}

// Perspective returns an OpenGL style projection matrix. fovy is in radians.
func Perspective(fovy, aspect, near, far float32) mgl32.Mat4 {
	return mgl32.Perspective(fovy, aspect, near, far)
}

// Orthographic returns an OpenGL style orthographic projection matrix.
func Orthographic(left, right, bottom, top, near, far float32) mgl32.Mat4 {
	return mgl32.Ortho(left, right, bottom, top, near, far)
}

// LookAt returns a view matrix for an eye looking at center.
func LookAt(eye, center, up mgl32.Vec3) mgl32.Mat4 {
	return mgl32.LookAtV(eye, center, up)
}

// Distance is the Euclidean distance between a and b.
func Distance(a, b mgl32.Vec3) float32 {
	return a.Sub(b).Len()
}
