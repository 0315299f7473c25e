package pointcloud

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/depthtruth/dataset"
)

func testCloud(t *testing.T) *dataset.PointCloudDataset {
	t.Helper()
	ds, err := dataset.NewPointCloudDataset(7, []dataset.Point{
		{X: 1, Y: 2, TX: 1, TY: -2, TZ: 0.5, Confidence: 1, Distance: 2.3},
		{X: 3, Y: 4, TX: -1, TY: 2, TZ: -0.5, Confidence: 0.25, Distance: 2.3},
	}, 5)
	test.That(t, err, test.ShouldBeNil)
	return ds
}

func TestToPCD(t *testing.T) {
	ds := testCloud(t)

	var ascii bytes.Buffer
	test.That(t, ToPCD(ds, &ascii, PCDAscii), test.ShouldBeNil)
	lines := strings.Split(strings.TrimSpace(ascii.String()), "\n")
	test.That(t, lines, test.ShouldHaveLength, 12)
	test.That(t, lines[1], test.ShouldEqual, "FIELDS x y z confidence")
	test.That(t, lines[8], test.ShouldEqual, "POINTS 2")
	test.That(t, lines[9], test.ShouldEqual, "DATA ascii")
	test.That(t, lines[10], test.ShouldEqual, "1.000000 -2.000000 0.500000 1.000000")

	var binary bytes.Buffer
	test.That(t, ToPCD(ds, &binary, PCDBinary), test.ShouldBeNil)
	header, data, found := strings.Cut(binary.String(), "DATA binary\n")
	test.That(t, found, test.ShouldBeTrue)
	test.That(t, header, test.ShouldContainSubstring, "WIDTH 2\n")
	test.That(t, len(data), test.ShouldEqual, 2*16)

	test.That(t, ToPCD(ds, &binary, PCDType(9)), test.ShouldNotBeNil)

	typ, err := ParsePCDType("binary")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, typ, test.ShouldEqual, PCDBinary)
	_, err = ParsePCDType("compressed")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestToOBJ(t *testing.T) {
	var buf bytes.Buffer
	test.That(t, ToOBJ(testCloud(t), &buf), test.ShouldBeNil)
	out := buf.String()
	test.That(t, out, test.ShouldStartWith, "# 2 of 5 points visible at 7\n")
	test.That(t, out, test.ShouldContainSubstring, "v -1.000000 2.000000 -0.500000\n")
}

func TestWriteToLASFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "cloud.las")
	test.That(t, WriteToLASFile(testCloud(t), fn), test.ShouldBeNil)
	info, err := os.Stat(fn)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.Size(), test.ShouldBeGreaterThan, 0)

	err = WriteToLASFile(testCloud(t), filepath.Join(t.TempDir(), "missing", "cloud.las"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestBounds(t *testing.T) {
	box, ok := Bounds(testCloud(t))
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, box.Min, test.ShouldResemble, r3.Vector{X: -1, Y: -2, Z: -0.5})
	test.That(t, box.Max, test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 0.5})
	test.That(t, box.Size(), test.ShouldResemble, r3.Vector{X: 2, Y: 4, Z: 1})
	test.That(t, box.Center(), test.ShouldResemble, r3.Vector{})

	empty, err := dataset.NewPointCloudDataset(0, nil, 0)
	test.That(t, err, test.ShouldBeNil)
	_, ok = Bounds(empty)
	test.That(t, ok, test.ShouldBeFalse)
}
