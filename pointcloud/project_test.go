package pointcloud

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/depthtruth/spatialmath"
	"go.viam.com/depthtruth/utils"
)

func identityFrame(points ...float32) Frame {
	return Frame{
		Points:     points,
		View:       mgl32.Ident4(),
		Projection: mgl32.Ident4(),
		Width:      640,
		Height:     480,
		Timestamp:  99,
	}
}

func TestProjectCenterAndCorners(t *testing.T) {
	ds, stats, err := Project(identityFrame(
		0, 0, 0, 0.9,
		0.5, 0.5, 0, 0.8,
		-1, -1, 3, 0.7,
	))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, stats, test.ShouldResemble, Stats{Total: 3, Visible: 3})
	test.That(t, ds.NumPoints, test.ShouldEqual, 3)
	test.That(t, ds.Timestamp, test.ShouldEqual, int64(99))
	test.That(t, ds.Points, test.ShouldHaveLength, 3)

	center := ds.Points[0]
	test.That(t, center.X, test.ShouldEqual, 320)
	test.That(t, center.Y, test.ShouldEqual, 240)
	test.That(t, center.Confidence, test.ShouldEqual, float32(0.9))
	test.That(t, center.Distance, test.ShouldEqual, float32(0))

	// y is flipped so +y in normalized space is toward the top row
	test.That(t, ds.Points[1].X, test.ShouldEqual, 480)
	test.That(t, ds.Points[1].Y, test.ShouldEqual, 120)

	// edges are inclusive and depth is not clipped
	test.That(t, ds.Points[2].X, test.ShouldEqual, 0)
	test.That(t, ds.Points[2].Y, test.ShouldEqual, 480)
	test.That(t, ds.Points[2].TZ, test.ShouldEqual, float32(3))

	min, max, ok := ds.DistanceRange()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, min, test.ShouldEqual, float32(0))
	test.That(t, max, test.ShouldAlmostEqual, math.Sqrt(11), 1e-5)
}

func TestProjectDropsOutside(t *testing.T) {
	ds, stats, err := Project(identityFrame(
		1.5, 0, 0, 1,
		0, -1.01, 0, 1,
		0.2, 0.2, 0, 1,
	))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, stats.Outside, test.ShouldEqual, 2)
	test.That(t, stats.Visible, test.ShouldEqual, 1)
	test.That(t, ds.Points, test.ShouldHaveLength, 1)
	test.That(t, ds.Points[0].TX, test.ShouldEqual, float32(0.2))
	test.That(t, ds.NumPoints, test.ShouldEqual, 3)
}

func TestProjectEmpty(t *testing.T) {
	ds, stats, err := Project(identityFrame(5, 5, 5, 1))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, stats.Visible, test.ShouldEqual, 0)
	test.That(t, ds.Points, test.ShouldBeEmpty)
	test.That(t, ds.MinDistance, test.ShouldBeNil)
	test.That(t, ds.MaxDistance, test.ShouldBeNil)

	ds, _, err = Project(identityFrame())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ds.NumPoints, test.ShouldEqual, 0)
}

func TestProjectBehindAndDegenerate(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	frame := Frame{
		Points: []float32{
			0, 0, -5, 1, // in front
			0, 0, 5, 1, // behind
			0, 0, 0, 1, // on the eye plane, w = 0
			nan, 0, -5, 1,
			inf, 0, -5, 1,
		},
		View:       mgl32.Ident4(),
		Projection: spatialmath.Perspective(float32(math.Pi/2), 1, 0.1, 100),
		Width:      100,
		Height:     100,
	}
	ds, stats, err := Project(frame)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, stats.Total, test.ShouldEqual, 5)
	test.That(t, stats.Visible, test.ShouldEqual, 1)
	test.That(t, stats.Behind, test.ShouldEqual, 2)
	test.That(t, stats.Degenerate, test.ShouldEqual, 2)
	test.That(t, ds.Points, test.ShouldHaveLength, 1)
	test.That(t, ds.Points[0].X, test.ShouldEqual, 50)
	test.That(t, ds.Points[0].Y, test.ShouldEqual, 50)
	test.That(t, ds.Points[0].Distance, test.ShouldAlmostEqual, 5, 1e-6)
}

func TestProjectVisibleWithinViewport(t *testing.T) {
	view := spatialmath.LookAt(mgl32.Vec3{0, 1, 3}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	proj := spatialmath.Perspective(1.0, 4.0/3.0, 0.1, 50)
	var points []float32
	for x := -4; x <= 4; x++ {
		for y := -4; y <= 4; y++ {
			points = append(points, float32(x), float32(y), float32(x*y)/4, 0.5)
		}
	}
	frame := Frame{Points: points, View: view, Projection: proj, Viewer: mgl32.Vec3{0, 1, 3}, Width: 640, Height: 480}
	ds, stats, err := Project(frame)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(ds.Points), test.ShouldBeLessThanOrEqualTo, frame.NumPoints())
	test.That(t, stats.Visible+stats.Outside+stats.Behind+stats.Degenerate, test.ShouldEqual, stats.Total)

	test.That(t, stats.Visible, test.ShouldBeGreaterThan, 0)
	vp := spatialmath.ViewProjection(proj, view)
	w, h := float64(frame.Width), float64(frame.Height)
	for _, p := range ds.Points {
		// ndc recovered from the emitted pixel is off by at most the half pixel lost to rounding
		test.That(t, math.Abs(2*float64(p.X)/w-1), test.ShouldBeLessThanOrEqualTo, 1+1/w)
		test.That(t, math.Abs(1-2*float64(p.Y)/h), test.ShouldBeLessThanOrEqualTo, 1+1/h)

		clip := spatialmath.TransformPoint(vp, mgl32.Vec3{p.TX, p.TY, p.TZ})
		test.That(t, math.Abs(float64(clip[0]/clip[3])), test.ShouldBeLessThanOrEqualTo, 1)
		test.That(t, math.Abs(float64(clip[1]/clip[3])), test.ShouldBeLessThanOrEqualTo, 1)
		test.That(t, p.X, test.ShouldBeBetweenOrEqual, 0, 640)
		test.That(t, p.Y, test.ShouldBeBetweenOrEqual, 0, 480)
	}
}

func TestDistanceIndependentOfProjection(t *testing.T) {
	points := []float32{0.1, 0.2, -2, 1, -0.3, 0.1, -3, 1}
	viewer := mgl32.Vec3{0, 0, 0.5}
	wide := Frame{Points: points, View: mgl32.Ident4(), Projection: spatialmath.Perspective(1.5, 1, 0.1, 10), Viewer: viewer, Width: 10, Height: 10}
	narrow := wide
	narrow.Projection = spatialmath.Perspective(0.5, 2, 1, 100)
	narrow.Width, narrow.Height = 1000, 500

	a, _, err := Project(wide)
	test.That(t, err, test.ShouldBeNil)
	b, _, err := Project(narrow)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, a.Points, test.ShouldHaveLength, 2)
	test.That(t, b.Points, test.ShouldHaveLength, 2)
	for i := range a.Points {
		test.That(t, a.Points[i].Distance, test.ShouldEqual, b.Points[i].Distance)
	}
}

func TestProjectErrors(t *testing.T) {
	_, _, err := Project(identityFrame(1, 2, 3))
	test.That(t, errors.Is(err, utils.ErrDecode), test.ShouldBeTrue)

	frame := identityFrame(0, 0, 0, 1)
	frame.Width = 0
	_, _, err = Project(frame)
	test.That(t, errors.Is(err, utils.ErrDecode), test.ShouldBeTrue)
}

func TestPointsFromBytes(t *testing.T) {
	points := []float32{1, -2, 3.5, 0.25, 4, 5, 6, 1}
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		got, err := PointsFromBytes(PointsToBytes(points, order), order)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, got, test.ShouldResemble, points)
	}
	_, err := PointsFromBytes(make([]byte, 20), binary.LittleEndian)
	test.That(t, errors.Is(err, utils.ErrDecode), test.ShouldBeTrue)
}
