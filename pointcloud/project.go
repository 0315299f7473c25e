// Package pointcloud projects AR world-space point clouds into image space and exports the
// visible points.
package pointcloud

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"go.viam.com/depthtruth/dataset"
	"go.viam.com/depthtruth/spatialmath"
	"go.viam.com/depthtruth/utils"
)

// FloatsPerPoint is the layout of a raw point cloud buffer: x, y, z, confidence.
const FloatsPerPoint = 4

const bytesPerPoint = FloatsPerPoint * 4

// Frame is everything needed to project one point cloud.
type Frame struct {
	// Points holds FloatsPerPoint floats per point in world space.
	Points     []float32
	View       mgl32.Mat4
	Projection mgl32.Mat4
	// Viewer is the position distances are measured from, the display oriented camera position.
	Viewer    mgl32.Vec3
	Width     int
	Height    int
	Timestamp int64
}

// NumPoints returns the number of points in the raw buffer.
func (f *Frame) NumPoints() int {
	return len(f.Points) / FloatsPerPoint
}

// Stats counts how points were classified during a projection.
type Stats struct {
	Total   int
	Visible int
	// Behind counts points with a clip space w at or below zero: on or behind the eye plane.
	Behind int
	// Degenerate counts points whose transform produced NaN or infinite coordinates.
	Degenerate int
	// Outside counts points whose normalized x or y fell outside [-1, 1].
	Outside int
}

// Project transforms every point by projection × view, keeps those whose normalized device x
// and y lie in [-1, 1], and maps them to pixels with the origin at the top left. Depth is not
// used for clipping. A point is only kept when its clip space w is strictly positive and its
// coordinates are finite; the others are counted in Stats and dropped. Scan order is preserved.
func Project(frame Frame) (*dataset.PointCloudDataset, Stats, error) {
	if len(frame.Points)%FloatsPerPoint != 0 {
		return nil, Stats{}, utils.NewBufferLengthError("point cloud", len(frame.Points), FloatsPerPoint)
	}
	if frame.Width <= 0 || frame.Height <= 0 {
		return nil, Stats{}, utils.NewDecodeError("invalid viewport size %dx%d", frame.Width, frame.Height)
	}

	vp := spatialmath.ViewProjection(frame.Projection, frame.View)
	halfW := float32(frame.Width) / 2
	halfH := float32(frame.Height) / 2

	stats := Stats{Total: frame.NumPoints()}
	visible := make([]dataset.Point, 0, stats.Total)
	for i := 0; i < len(frame.Points); i += FloatsPerPoint {
		world := mgl32.Vec3{frame.Points[i], frame.Points[i+1], frame.Points[i+2]}
		confidence := frame.Points[i+3]

		clip := spatialmath.TransformPoint(vp, world)
		if !finite(clip[3]) {
			stats.Degenerate++
			continue
		}
		if clip[3] <= 0 {
			stats.Behind++
			continue
		}
		ndcX, ndcY := clip[0]/clip[3], clip[1]/clip[3]
		if !finite(ndcX) || !finite(ndcY) {
			stats.Degenerate++
			continue
		}
		if ndcX < -1 || ndcX > 1 || ndcY < -1 || ndcY > 1 {
			stats.Outside++
			continue
		}

		visible = append(visible, dataset.Point{
			X:          roundToInt(ndcX*halfW + halfW),
			Y:          roundToInt(-ndcY*halfH + halfH),
			TX:         world[0],
			TY:         world[1],
			TZ:         world[2],
			Confidence: confidence,
			Distance:   spatialmath.Distance(world, frame.Viewer),
		})
	}
	stats.Visible = len(visible)

	ds, err := dataset.NewPointCloudDataset(frame.Timestamp, visible, stats.Total)
	if err != nil {
		return nil, stats, err
	}
	return ds, stats, nil
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func roundToInt(v float32) int {
	return int(math.Round(float64(v)))
}

// PointsFromBytes decodes a raw point cloud buffer of 32 bit floats.
func PointsFromBytes(buf []byte, order binary.ByteOrder) ([]float32, error) {
	if len(buf)%bytesPerPoint != 0 {
		return nil, utils.NewBufferLengthError("point cloud byte", len(buf), bytesPerPoint)
	}
	out := make([]float32, len(buf)/4)
	for i := range out {
		out[i] = math.Float32frombits(order.Uint32(buf[i*4:]))
	}
	return out, nil
}

// PointsToBytes encodes a raw point cloud buffer.
func PointsToBytes(points []float32, order binary.ByteOrder) []byte {
	buf := make([]byte, len(points)*4)
	for i, v := range points {
		order.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}
