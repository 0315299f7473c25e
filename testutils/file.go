// Package testutils builds synthetic capture sessions for tests.
package testutils

import (
	"encoding/json"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/go-gl/mathgl/mgl32"
	"go.viam.com/test"

	"go.viam.com/depthtruth/dataset"
	"go.viam.com/depthtruth/rimage"
	"go.viam.com/depthtruth/spatialmath"
)

// Synthetic frame dimensions.
const (
	FrameWidth  = 64
	FrameHeight = 48
	TOFWidth    = 8
	TOFHeight   = 6
)

// WriteJSONFile writes v to path, creating parent directories.
func WriteJSONFile(tb testing.TB, path string, v interface{}) {
	tb.Helper()
	test.That(tb, os.MkdirAll(filepath.Dir(path), 0o750), test.ShouldBeNil)
	data, err := json.Marshal(v)
	test.That(tb, err, test.ShouldBeNil)
	test.That(tb, os.WriteFile(path, data, 0o640), test.ShouldBeNil)
}

// SyntheticScene returns a valid scene for frame n: an identity camera at z = n looking down -z.
func SyntheticScene(tb testing.TB, n int) *dataset.SceneDataset {
	tb.Helper()
	view := mgl32.Translate3D(0, 0, -float32(n))
	proj := spatialmath.Perspective(1, float32(FrameWidth)/FrameHeight, 0.1, 100)
	camera, err := dataset.NewPose(mgl32.Vec3{0, 0, float32(n)}, mgl32.QuatIdent(), view, proj)
	test.That(tb, err, test.ShouldBeNil)
	anchor, err := dataset.NewBarePose(mgl32.Vec3{1, 0, -2}, mgl32.QuatIdent())
	test.That(tb, err, test.ShouldBeNil)
	return &dataset.SceneDataset{
		CameraPose:        camera,
		CameraDisplayPose: camera,
		SensorPose:        camera,
		FrameNumber:       n,
		Timestamp:         int64(n) * 33_000_000,
		Width:             FrameWidth,
		Height:            FrameHeight,
		NumAnchors:        1,
		Anchors:           []dataset.Pose{*anchor},
		NearPlane:         0.1,
		FarPlane:          100,
		ViewMatrix:        spatialmath.MatToSlice(view),
		ProjectionMatrix:  spatialmath.MatToSlice(proj),
	}
}

// SyntheticPointCloud returns a point cloud record for frame n with n+1 visible points.
func SyntheticPointCloud(tb testing.TB, n int) *dataset.PointCloudDataset {
	tb.Helper()
	points := make([]dataset.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		points = append(points, dataset.Point{
			X: i, Y: i, TX: float32(i), TY: 0, TZ: -1,
			Confidence: 0.5, Distance: float32(i + 1),
		})
	}
	ds, err := dataset.NewPointCloudDataset(int64(n), points, n+2)
	test.That(tb, err, test.ShouldBeNil)
	return ds
}

// SyntheticTOF returns a depth frame for frame n whose samples are n+1 meters away.
func SyntheticTOF(tb testing.TB, n int) *dataset.TOFDataset {
	tb.Helper()
	samples := make([]uint16, TOFWidth*TOFHeight)
	for i := range samples {
		s, err := rimage.EncodeDepth16(uint16(1000*(n+1)), 0)
		test.That(tb, err, test.ShouldBeNil)
		samples[i] = uint16(s)
	}
	ds, err := rimage.DecodeDepth16(samples, TOFWidth, TOFHeight, int64(n))
	test.That(tb, err, test.ShouldBeNil)
	return ds
}

// WriteFrames writes n synthetic frames under root: an image and a scene, point cloud and depth
// record per frame.
func WriteFrames(tb testing.TB, root string, n int) {
	tb.Helper()
	test.That(tb, os.MkdirAll(filepath.Join(root, "images"), 0o750), test.ShouldBeNil)
	for i := 0; i < n; i++ {
		name := strconv.Itoa(i)
		img := imaging.New(FrameWidth, FrameHeight, color.NRGBA{uint8(i), 0, 0, 255})
		test.That(tb, imaging.Save(img, filepath.Join(root, "images", name+".jpg")), test.ShouldBeNil)
		WriteJSONFile(tb, filepath.Join(root, "scenes", name+".json"), SyntheticScene(tb, i))
		WriteJSONFile(tb, filepath.Join(root, "points", name+".json"), SyntheticPointCloud(tb, i))
		WriteJSONFile(tb, filepath.Join(root, "tof", name+".json"), SyntheticTOF(tb, i))
	}
}

// SolidImage returns a width by height image of one color.
func SolidImage(width, height int, c color.Color) image.Image {
	return imaging.New(width, height, c)
}
