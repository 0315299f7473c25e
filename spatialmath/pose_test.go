package spatialmath

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/depthtruth/utils"
)

func TestUnitQuat(t *testing.T) {
	test.That(t, IsUnitQuat(mgl32.QuatIdent()), test.ShouldBeTrue)
	test.That(t, IsUnitQuat(mgl32.QuatRotate(1.2, mgl32.Vec3{0, 1, 0})), test.ShouldBeTrue)
	test.That(t, IsUnitQuat(QuatFromXYZW(1, 1, 0, 0)), test.ShouldBeFalse)
	test.That(t, IsUnitQuat(QuatFromXYZW(float32(math.NaN()), 0, 0, 1)), test.ShouldBeFalse)
	test.That(t, QuatNorm(QuatFromXYZW(0, 3, 0, 4)), test.ShouldAlmostEqual, 5, 1e-9)
}

func TestModelMatrix(t *testing.T) {
	q := mgl32.QuatRotate(float32(math.Pi/2), mgl32.Vec3{0, 0, 1})
	m, err := ModelMatrix(mgl32.Vec3{1, 2, 3}, q)
	test.That(t, err, test.ShouldBeNil)

	// rotate x axis onto y, then translate
	p := TransformPoint(m, mgl32.Vec3{1, 0, 0})
	test.That(t, p[0], test.ShouldAlmostEqual, 1, 1e-6)
	test.That(t, p[1], test.ShouldAlmostEqual, 3, 1e-6)
	test.That(t, p[2], test.ShouldAlmostEqual, 3, 1e-6)

	_, err = ModelMatrix(mgl32.Vec3{}, QuatFromXYZW(0, 0, 0, 2))
	test.That(t, errors.Is(err, utils.ErrConfiguration), test.ShouldBeTrue)
}

func TestPoseMatrices(t *testing.T) {
	view := mgl32.Translate3D(0, 0, -4)
	proj := Perspective(1, 1.5, 0.1, 50)
	pm, err := NewPoseMatrices(mgl32.Vec3{0.5, 0, 0}, mgl32.QuatIdent(), view, proj)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, pm.Model, test.ShouldResemble, mgl32.Translate3D(0.5, 0, 0))
	test.That(t, pm.ModelView, test.ShouldResemble, view.Mul4(pm.Model))
	test.That(t, pm.ModelViewProjection, test.ShouldResemble, proj.Mul4(view.Mul4(pm.Model)))
}
