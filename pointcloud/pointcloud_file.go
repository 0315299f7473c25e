package pointcloud

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/edaniels/lidario"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/depthtruth/dataset"
	"go.viam.com/depthtruth/utils"
)

// PCDType is the format of a pcd file.
type PCDType int

const (
	// PCDAscii ascii format for pcd.
	PCDAscii PCDType = 0
	// PCDBinary binary format for pcd.
	PCDBinary PCDType = 1
)

// ParsePCDType accepts "ascii" or "binary".
func ParsePCDType(s string) (PCDType, error) {
	switch s {
	case "ascii", "":
		return PCDAscii, nil
	case "binary":
		return PCDBinary, nil
	default:
		return 0, utils.NewConfigurationError("unknown pcd data type %q", s)
	}
}

// ToPCD writes the visible points of ds as an unorganized PCD cloud with fields x y z
// confidence, in world coordinates.
func ToPCD(ds *dataset.PointCloudDataset, out io.Writer, outputType PCDType) error {
	w := bufio.NewWriter(out)
	if _, err := fmt.Fprintf(w, "VERSION .7\n"+
		"FIELDS x y z confidence\n"+
		"SIZE 4 4 4 4\n"+
		"TYPE F F F F\n"+
		"COUNT 1 1 1 1\n"+
		"WIDTH %d\n"+
		"HEIGHT 1\n"+
		"VIEWPOINT 0 0 0 1 0 0 0\n"+
		"POINTS %d\n",
		len(ds.Points), len(ds.Points)); err != nil {
		return err
	}

	switch outputType {
	case PCDBinary:
		if _, err := fmt.Fprintf(w, "DATA binary\n"); err != nil {
			return err
		}
		buf := make([]byte, 16)
		for _, p := range ds.Points {
			binary.LittleEndian.PutUint32(buf, math.Float32bits(p.TX))
			binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(p.TY))
			binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(p.TZ))
			binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(p.Confidence))
			if _, err := w.Write(buf); err != nil {
				return err
			}
		}
	case PCDAscii:
		if _, err := fmt.Fprintf(w, "DATA ascii\n"); err != nil {
			return err
		}
		for _, p := range ds.Points {
			if _, err := fmt.Fprintf(w, "%f %f %f %f\n", p.TX, p.TY, p.TZ, p.Confidence); err != nil {
				return err
			}
		}
	default:
		return utils.NewConfigurationError("unsupported pcd data type %d", outputType)
	}
	return w.Flush()
}

// ToOBJ writes the visible points as OBJ vertices.
func ToOBJ(ds *dataset.PointCloudDataset, out io.Writer) error {
	w := bufio.NewWriter(out)
	if _, err := fmt.Fprintf(w, "# %d of %d points visible at %d\n", len(ds.Points), ds.NumPoints, ds.Timestamp); err != nil {
		return err
	}
	for _, p := range ds.Points {
		if _, err := fmt.Fprintf(w, "v %f %f %f\n", p.TX, p.TY, p.TZ); err != nil {
			return err
		}
	}
	return w.Flush()
}

// WriteToLASFile writes the visible points to a LAS file. Confidence is stored as intensity.
func WriteToLASFile(ds *dataset.PointCloudDataset, fn string) (err error) {
	lf, err := lidario.NewLasFile(fn, "w")
	if err != nil {
		return utils.NewIOError("create las", fn, err)
	}
	defer func() {
		cerr := lf.Close()
		err = multierr.Combine(err, cerr)
	}()

	if err = lf.AddHeader(lidario.LasHeader{PointFormatID: 0}); err != nil {
		return
	}
	for i, p := range ds.Points {
		pr0 := &lidario.PointRecord0{
			X:         float64(p.TX),
			Y:         float64(p.TY),
			Z:         float64(p.TZ),
			Intensity: uint16(math.Round(float64(p.Confidence) * math.MaxUint16)),
			BitField: lidario.PointBitField{
				Value: (1) | (1 << 3),
			},
			ClassBitField: lidario.ClassificationBitField{
				Value: 0,
			},
			PointSourceID: 1,
		}
		if err = lf.AddLasPoint(pr0); err != nil {
			err = errors.Wrapf(err, "adding point %d", i)
			return
		}
	}
	return
}

// Box is an axis aligned bounding box.
type Box struct {
	Min r3.Vector
	Max r3.Vector
}

// Size returns the extent of the box on each axis.
func (b Box) Size() r3.Vector {
	return b.Max.Sub(b.Min)
}

// Center returns the middle of the box.
func (b Box) Center() r3.Vector {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Bounds returns the world space bounding box of the visible points. ok is false when there
// are none.
func Bounds(ds *dataset.PointCloudDataset) (box Box, ok bool) {
	if len(ds.Points) == 0 {
		return Box{}, false
	}
	first := worldVector(ds.Points[0])
	box = Box{Min: first, Max: first}
	for _, p := range ds.Points[1:] {
		v := worldVector(p)
		box.Min = r3.Vector{X: math.Min(box.Min.X, v.X), Y: math.Min(box.Min.Y, v.Y), Z: math.Min(box.Min.Z, v.Z)}
		box.Max = r3.Vector{X: math.Max(box.Max.X, v.X), Y: math.Max(box.Max.Y, v.Y), Z: math.Max(box.Max.Z, v.Z)}
	}
	return box, true
}

func worldVector(p dataset.Point) r3.Vector {
	return r3.Vector{X: float64(p.TX), Y: float64(p.TY), Z: float64(p.TZ)}
}
