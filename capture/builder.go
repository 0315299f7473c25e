package capture

import (
	"github.com/pkg/errors"

	"go.viam.com/depthtruth/dataset"
	"go.viam.com/depthtruth/logging"
	"go.viam.com/depthtruth/pointcloud"
	"go.viam.com/depthtruth/rimage"
	"go.viam.com/depthtruth/spatialmath"
)

// Records are the dataset records built from one host frame. PointCloud and TOF are nil when
// the frame carried no point cloud or depth image.
type Records struct {
	Index      int
	Scene      *dataset.SceneDataset
	PointCloud *dataset.PointCloudDataset
	TOF        *dataset.TOFDataset
	Sensors    *dataset.SensorDataset
	Stats      pointcloud.Stats
}

// A Builder converts host frames into records. It holds no per-frame state.
type Builder struct {
	logger logging.Logger
}

// NewBuilder returns a Builder logging to logger.
func NewBuilder(logger logging.Logger) *Builder {
	return &Builder{logger: logger.Sublogger("builder")}
}

// Build produces every record of frame index from hf. Either all records are built or an error
// is returned.
func (b *Builder) Build(index int, hf *HostFrame) (*Records, error) {
	view, err := spatialmath.MatFromSlice(hf.ViewMatrix)
	if err != nil {
		return nil, errors.Wrap(err, "viewmtx")
	}
	projection, err := spatialmath.MatFromSlice(hf.ProjectionMatrix)
	if err != nil {
		return nil, errors.Wrap(err, "projmtx")
	}

	cameraPose, err := dataset.NewPose(hf.CameraPose.Translation(), hf.CameraPose.Quat(), view, projection)
	if err != nil {
		return nil, errors.Wrap(err, "camera pose")
	}
	displayPose, err := dataset.NewPose(hf.CameraDisplayPose.Translation(), hf.CameraDisplayPose.Quat(), view, projection)
	if err != nil {
		return nil, errors.Wrap(err, "camera display pose")
	}
	var sensorPose *dataset.Pose
	if hf.SensorPose != nil {
		if sensorPose, err = dataset.NewBarePose(hf.SensorPose.Translation(), hf.SensorPose.Quat()); err != nil {
			return nil, errors.Wrap(err, "sensor pose")
		}
	}
	anchors := make([]dataset.Pose, 0, len(hf.Anchors))
	for i, a := range hf.Anchors {
		pose, err := dataset.NewBarePose(a.Translation(), a.Quat())
		if err != nil {
			return nil, errors.Wrapf(err, "anchor %d", i)
		}
		anchors = append(anchors, *pose)
	}

	scene := &dataset.SceneDataset{
		CameraPose:        cameraPose,
		CameraDisplayPose: displayPose,
		SensorPose:        sensorPose,
		DisplayRotation:   hf.DisplayRotation,
		FrameNumber:       hf.FrameNumber,
		Timestamp:         hf.Timestamp,
		Width:             hf.Width,
		Height:            hf.Height,
		NumAnchors:        len(anchors),
		Anchors:           anchors,
		NearPlane:         hf.NearPlane,
		FarPlane:          hf.FarPlane,
		ViewMatrix:        spatialmath.MatToSlice(view),
		ProjectionMatrix:  spatialmath.MatToSlice(projection),
	}
	if err := scene.Validate(); err != nil {
		return nil, errors.Wrap(err, "scene")
	}
	records := &Records{Index: index, Scene: scene, Sensors: hf.Sensors}

	if hf.PointCloud != nil {
		cloud, stats, err := pointcloud.Project(pointcloud.Frame{
			Points:     hf.PointCloud,
			View:       view,
			Projection: projection,
			Viewer:     hf.CameraDisplayPose.Translation(),
			Width:      hf.Width,
			Height:     hf.Height,
			Timestamp:  hf.PointCloudTimestamp,
		})
		if err != nil {
			return nil, errors.Wrap(err, "point cloud")
		}
		records.PointCloud = cloud
		records.Stats = stats
		b.logger.Debugw("projected point cloud",
			"frame", index,
			"total", stats.Total,
			"visible", stats.Visible,
			"behind", stats.Behind,
			"outside", stats.Outside,
			"degenerate", stats.Degenerate,
		)
	}

	if hf.Depth != nil {
		tof, err := rimage.DecodeDepth16(hf.Depth.Samples, hf.Depth.Width, hf.Depth.Height, hf.Depth.Timestamp)
		if err != nil {
			return nil, errors.Wrap(err, "depth")
		}
		if records.TOF, err = tof.WithDisplayRotation(hf.DisplayRotation); err != nil {
			return nil, err
		}
	}
	return records, nil
}
