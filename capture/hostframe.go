// Package capture turns per-frame snapshots of the AR host into dataset records and writes them
// into a session.
package capture

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	goutils "go.viam.com/utils"

	"go.viam.com/depthtruth/dataset"
	"go.viam.com/depthtruth/pointcloud"
	"go.viam.com/depthtruth/rimage"
	"go.viam.com/depthtruth/session"
	"go.viam.com/depthtruth/utils"
)

// HostPose is a position and an x, y, z, w rotation as reported by the AR host.
type HostPose struct {
	Position [3]float32 `json:"position"`
	Rotation [4]float32 `json:"rotation"`
}

// Translation returns the position as a vector.
func (p HostPose) Translation() mgl32.Vec3 {
	return mgl32.Vec3(p.Position)
}

// Quat returns the rotation as a quaternion.
func (p HostPose) Quat() mgl32.Quat {
	return mgl32.Quat{W: p.Rotation[3], V: mgl32.Vec3{p.Rotation[0], p.Rotation[1], p.Rotation[2]}}
}

// HostDepth is a raw DEPTH16 image. Samples is empty when the plane was recorded next to the
// frame instead of inline.
type HostDepth struct {
	Width     int      `json:"width"`
	Height    int      `json:"height"`
	RowStride int      `json:"rowStride,omitempty"`
	Timestamp int64    `json:"timestamp"`
	Samples   []uint16 `json:"samples,omitempty"`
}

// HostFrame is everything the AR host hands over for one frame.
type HostFrame struct {
	FrameNumber       int                     `json:"frameNumber"`
	Timestamp         int64                   `json:"timestamp"`
	CameraPose        HostPose                `json:"cameraPose"`
	CameraDisplayPose HostPose                `json:"cameraDisplayPose"`
	SensorPose        *HostPose               `json:"sensorPose,omitempty"`
	NearPlane         float32                 `json:"nearPlane"`
	FarPlane          float32                 `json:"farPlane"`
	Width             int                     `json:"width"`
	Height            int                     `json:"height"`
	ViewMatrix        []float32               `json:"viewmtx"`
	ProjectionMatrix  []float32               `json:"projmtx"`
	DisplayRotation   dataset.DisplayRotation `json:"displayRotation"`
	Anchors           []HostPose              `json:"anchors,omitempty"`

	// PointCloud holds pointcloud.FloatsPerPoint floats per point. A nil cloud with
	// HasPointCloud set was recorded next to the frame.
	PointCloud          []float32 `json:"pointCloud,omitempty"`
	HasPointCloud       bool      `json:"hasPointCloud,omitempty"`
	PointCloudTimestamp int64     `json:"pointCloudTimestamp,omitempty"`

	Depth   *HostDepth             `json:"depth,omitempty"`
	Sensors *dataset.SensorDataset `json:"sensors,omitempty"`
}

// A Source hands out host frames by index.
type Source interface {
	// Len returns the number of frames known when the source was opened.
	Len() int
	Frame(ctx context.Context, index int) (*HostFrame, error)
}

// SessionSource reads host frames recorded in a session's raw directory, together with any
// depth planes and point cloud buffers stored beside them.
type SessionSource struct {
	layout     session.Layout
	total      int
	depthOrder binary.ByteOrder
	cloudOrder binary.ByteOrder
}

// NewSessionSource opens the recorded host frames under root. The frame count is the number of
// images in the session.
func NewSessionSource(root string, depthOrder, cloudOrder binary.ByteOrder) (*SessionSource, error) {
	layout := session.Layout{Root: root}
	total, err := layout.CountFrames()
	if err != nil {
		return nil, err
	}
	if depthOrder == nil {
		depthOrder = binary.LittleEndian
	}
	if cloudOrder == nil {
		cloudOrder = binary.LittleEndian
	}
	return &SessionSource{layout: layout, total: total, depthOrder: depthOrder, cloudOrder: cloudOrder}, nil
}

// Len returns the number of frames in the session.
func (s *SessionSource) Len() int {
	return s.total
}

// Frame reads the host frame with the given index. Indices past Len are allowed so frames that
// arrive while following a live session can be read.
func (s *SessionSource) Frame(ctx context.Context, index int) (*HostFrame, error) {
	if index < 0 {
		return nil, utils.NewFrameOutOfRangeError(index, s.total)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.layout.Path(session.KindRaw, index)
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, utils.NewIOError("open", path, err)
	}
	defer goutils.UncheckedErrorFunc(f.Close)

	var hf HostFrame
	if err := json.NewDecoder(f).Decode(&hf); err != nil {
		return nil, utils.NewDecodeError("host frame %q: %v", path, err)
	}

	if hf.Depth != nil && len(hf.Depth.Samples) == 0 {
		planePath := s.layout.DepthPlanePath(index)
		//nolint:gosec
		plane, err := os.ReadFile(planePath)
		if err != nil {
			return nil, utils.NewIOError("read", planePath, err)
		}
		hf.Depth.Samples, err = rimage.ReadDepth16(plane, s.depthOrder, hf.Depth.Width, hf.Depth.Height, hf.Depth.RowStride)
		if err != nil {
			return nil, err
		}
	}
	if hf.HasPointCloud && hf.PointCloud == nil {
		planePath := s.layout.PointPlanePath(index)
		//nolint:gosec
		plane, err := os.ReadFile(planePath)
		if err != nil {
			return nil, utils.NewIOError("read", planePath, err)
		}
		if hf.PointCloud, err = pointcloud.PointsFromBytes(plane, s.cloudOrder); err != nil {
			return nil, err
		}
	}
	return &hf, nil
}

// Record writes hf into the raw directory of w, moving the depth plane and the point cloud out
// to their own binary files.
func Record(w *session.Writer, index int, hf *HostFrame, depthOrder, cloudOrder binary.ByteOrder) error {
	out := *hf
	if hf.Depth != nil {
		depth := *hf.Depth
		if err := w.WriteDepthPlane(index, rimage.WriteDepth16(depth.Samples, depthOrder)); err != nil {
			return err
		}
		depth.Samples = nil
		depth.RowStride = 0
		out.Depth = &depth
	}
	if hf.PointCloud != nil {
		if err := w.WritePointPlane(index, pointcloud.PointsToBytes(hf.PointCloud, cloudOrder)); err != nil {
			return err
		}
		out.PointCloud = nil
		out.HasPointCloud = true
	}
	return w.WriteRecord(session.KindRaw, index, &out)
}
