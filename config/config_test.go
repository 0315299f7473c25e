package config

import (
	"encoding/binary"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/depthtruth/rimage"
	"go.viam.com/depthtruth/testutils"
	"go.viam.com/depthtruth/utils"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	test.That(t, cfg.Session, test.ShouldEqual, "dataset")
	test.That(t, cfg.Models, test.ShouldEqual, "models")
	test.That(t, cfg.Objects, test.ShouldEqual, "objs/objs.json")
	test.That(t, cfg.Workers, test.ShouldEqual, 1)
	test.That(t, cfg.DepthOrder(), test.ShouldEqual, binary.LittleEndian)
	test.That(t, cfg.PointCloudOrder(), test.ShouldEqual, binary.LittleEndian)
	test.That(t, cfg.Validate(""), test.ShouldBeNil)
}

func TestRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "depthtruth.json")
	testutils.WriteJSONFile(t, path, map[string]interface{}{
		"session":             "captures/today",
		"workers":             4,
		"pointCloudByteOrder": "big",
		"render": map[string]interface{}{
			"method":     "grayscale",
			"radius":     2,
			"background": "#102030",
		},
	})
	cfg, err := Read(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.ConfigFilePath, test.ShouldEqual, path)
	test.That(t, cfg.Session, test.ShouldEqual, "captures/today")
	test.That(t, cfg.Models, test.ShouldEqual, "models")
	test.That(t, cfg.Workers, test.ShouldEqual, 4)
	test.That(t, cfg.DepthOrder(), test.ShouldEqual, binary.LittleEndian)
	test.That(t, cfg.PointCloudOrder(), test.ShouldEqual, binary.BigEndian)

	opts, err := cfg.Render.Options()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, opts.Method, test.ShouldEqual, rimage.Grayscale)
	test.That(t, opts.Radius, test.ShouldEqual, 2)
	test.That(t, opts.Background, test.ShouldResemble, color.NRGBA{0x10, 0x20, 0x30, 255})

	_, err = Read(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, utils.IsIOError(err), test.ShouldBeTrue)
}

func TestFromReaderJSON5(t *testing.T) {
	input := `{
		// captured on the test device
		session: "captures/today",
		"workers": 3,
		render: {method: 'grayscale', radius: 1,},
	}`
	cfg, err := FromReader("depthtruth.json5", strings.NewReader(input))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.ConfigFilePath, test.ShouldEqual, "depthtruth.json5")
	test.That(t, cfg.Session, test.ShouldEqual, "captures/today")
	test.That(t, cfg.Workers, test.ShouldEqual, 3)
	test.That(t, cfg.Render.Method, test.ShouldEqual, "grayscale")
	test.That(t, cfg.Render.Radius, test.ShouldEqual, 1)

	_, err = FromReader("depthtruth.json5", strings.NewReader(`{/* typo */ sesion: "x",}`))
	test.That(t, errors.Is(err, utils.ErrDecode), test.ShouldBeTrue)
}

func TestFromReaderErrors(t *testing.T) {
	for _, tc := range []struct {
		name   string
		input  string
		field  string
		target error
	}{
		{"unknown field", `{"sesion": "x"}`, "", utils.ErrDecode},
		{"not json", `{`, "", utils.ErrDecode},
		{"wrong type", `{"workers": "many"}`, "", utils.ErrDecode},
		{"workers", `{"workers": -2}`, "workers", utils.ErrConfiguration},
		{"depth order", `{"depthByteOrder": "middle"}`, "depthByteOrder", utils.ErrConfiguration},
		{"cloud order", `{"pointCloudByteOrder": "mixed"}`, "pointCloudByteOrder", utils.ErrConfiguration},
		{"render method", `{"render": {"method": "jet"}}`, "render.method", utils.ErrConfiguration},
		{"render radius", `{"render": {"radius": -1}}`, "render.radius", utils.ErrConfiguration},
		{"render background", `{"render": {"background": "red"}}`, "render.background", utils.ErrConfiguration},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromReader("test.json", strings.NewReader(tc.input))
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, errors.Is(err, tc.target), test.ShouldBeTrue)
			if tc.field != "" {
				test.That(t, err.Error(), test.ShouldContainSubstring, tc.field)
			}
		})
	}
}

func TestParseByteOrder(t *testing.T) {
	for in, expected := range map[string]binary.ByteOrder{
		"little": binary.LittleEndian, "LE": binary.LittleEndian,
		"big": binary.BigEndian, "big-endian": binary.BigEndian,
	} {
		order, err := ParseByteOrder(in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, order, test.ShouldEqual, expected)
	}
	_, err := ParseByteOrder("")
	test.That(t, errors.Is(err, utils.ErrConfiguration), test.ShouldBeTrue)
}
