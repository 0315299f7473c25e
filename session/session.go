// Package session walks and writes capture sessions: directories of per-frame images and
// dataset records indexed from zero.
package session

import (
	"image"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/depthtruth/dataset"
	"go.viam.com/depthtruth/logging"
	"go.viam.com/depthtruth/rimage"
	"go.viam.com/depthtruth/utils"
)

// A Session is a cursor over the frames of a session directory with a cache of the current
// frame's artifacts. The cache is dropped whenever the cursor moves. A Session is not safe for
// concurrent use.
type Session struct {
	*Cursor
	id     uuid.UUID
	layout Layout
	logger logging.Logger

	cache map[Kind]interface{}
}

// Open enumerates the frames under root once and returns a session at frame 0.
func Open(root string, logger logging.Logger) (*Session, error) {
	return OpenWithID(root, uuid.New(), logger)
}

// OpenWithID is like Open with a caller chosen id.
func OpenWithID(root string, id uuid.UUID, logger logging.Logger) (*Session, error) {
	layout := Layout{Root: root}
	total, err := layout.CountFrames()
	if err != nil {
		return nil, err
	}
	sess := &Session{
		Cursor: NewCursor(total),
		id:     id,
		layout: layout,
		logger: logger.Sublogger("session"),
		cache:  map[Kind]interface{}{},
	}
	sess.logger.Debugw("opened session", "id", id.String(), "root", root, "frames", total)
	return sess, nil
}

// ID returns the id of this session.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Layout returns the session's directory layout.
func (s *Session) Layout() Layout {
	return s.layout
}

// Advance moves to the next frame, dropping the cached artifacts if it moved.
func (s *Session) Advance() bool {
	if !s.Cursor.Advance() {
		return false
	}
	s.invalidate()
	return true
}

// Rewind moves back to frame 0 and drops the cached artifacts.
func (s *Session) Rewind() {
	s.Cursor.Rewind()
	s.invalidate()
}

// Seek moves to frame index and drops the cached artifacts.
func (s *Session) Seek(index int) error {
	if err := s.Cursor.Seek(index); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *Session) invalidate() {
	s.cache = map[Kind]interface{}{}
}

// Cached reports whether the artifact of kind for the current frame is cached.
func (s *Session) Cached(kind Kind) bool {
	_, ok := s.cache[kind]
	return ok
}

func cached[T any](s *Session, kind Kind, load func(Layout, int) (T, error)) (T, error) {
	if v, ok := s.cache[kind]; ok {
		return v.(T), nil
	}
	// an empty session has no current frame
	if err := s.Check(s.Current()); err != nil {
		var zero T
		return zero, err
	}
	v, err := load(s.layout, s.Current())
	if err != nil {
		var zero T
		return zero, err
	}
	s.cache[kind] = v
	return v, nil
}

// Image returns the current frame's camera image.
func (s *Session) Image() (image.Image, error) {
	return cached(s, KindImage, loadImage)
}

// Scene returns the current frame's scene record.
func (s *Session) Scene() (*dataset.SceneDataset, error) {
	return cached(s, KindScene, loadScene)
}

// PointCloud returns the current frame's point cloud record.
func (s *Session) PointCloud() (*dataset.PointCloudDataset, error) {
	return cached(s, KindPointCloud, loadPointCloud)
}

// TOF returns the current frame's depth frame record.
func (s *Session) TOF() (*dataset.TOFDataset, error) {
	return cached(s, KindTOF, loadTOF)
}

// Sensors returns the current frame's sensor snapshot.
func (s *Session) Sensors() (*dataset.SensorDataset, error) {
	return cached(s, KindSensors, loadSensors)
}

// SceneAt reads the scene record of any enumerated frame without touching the cursor or cache.
func (s *Session) SceneAt(index int) (*dataset.SceneDataset, error) {
	if err := s.Check(index); err != nil {
		return nil, err
	}
	return loadScene(s.layout, index)
}

// PointCloudAt reads the point cloud record of any enumerated frame without touching the cursor
// or cache.
func (s *Session) PointCloudAt(index int) (*dataset.PointCloudDataset, error) {
	if err := s.Check(index); err != nil {
		return nil, err
	}
	return loadPointCloud(s.layout, index)
}

// TOFAt reads the depth frame record of any enumerated frame without touching the cursor or
// cache.
func (s *Session) TOFAt(index int) (*dataset.TOFDataset, error) {
	if err := s.Check(index); err != nil {
		return nil, err
	}
	return loadTOF(s.layout, index)
}

// LoadImage reads the camera image of frame index. The Load functions enumerate the images
// directory on every call and reject indices outside it.
func LoadImage(l Layout, index int) (image.Image, error) {
	return checkedLoad(l, index, loadImage)
}

// LoadScene reads the scene record of frame index.
func LoadScene(l Layout, index int) (*dataset.SceneDataset, error) {
	return checkedLoad(l, index, loadScene)
}

// LoadPointCloud reads the point cloud record of frame index.
func LoadPointCloud(l Layout, index int) (*dataset.PointCloudDataset, error) {
	return checkedLoad(l, index, loadPointCloud)
}

// LoadTOF reads the depth frame record of frame index.
func LoadTOF(l Layout, index int) (*dataset.TOFDataset, error) {
	return checkedLoad(l, index, loadTOF)
}

// LoadSensors reads the sensor snapshot of frame index.
func LoadSensors(l Layout, index int) (*dataset.SensorDataset, error) {
	return checkedLoad(l, index, loadSensors)
}

func checkedLoad[T any](l Layout, index int, load func(Layout, int) (T, error)) (T, error) {
	if err := l.Check(index); err != nil {
		var zero T
		return zero, err
	}
	return load(l, index)
}

func loadImage(l Layout, index int) (image.Image, error) {
	return rimage.ReadImageFromFile(l.Path(KindImage, index))
}

func loadScene(l Layout, index int) (*dataset.SceneDataset, error) {
	return loadRecord(l, KindScene, index, dataset.ReadSceneDataset)
}

func loadPointCloud(l Layout, index int) (*dataset.PointCloudDataset, error) {
	return loadRecord(l, KindPointCloud, index, dataset.ReadPointCloudDataset)
}

func loadTOF(l Layout, index int) (*dataset.TOFDataset, error) {
	return loadRecord(l, KindTOF, index, dataset.ReadTOFDataset)
}

func loadSensors(l Layout, index int) (*dataset.SensorDataset, error) {
	return loadRecord(l, KindSensors, index, dataset.ReadSensorDataset)
}

func loadRecord[T any](l Layout, kind Kind, index int, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	path := l.Path(kind, index)
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return zero, utils.NewIOError("open", path, err)
	}
	defer goutils.UncheckedErrorFunc(f.Close)
	v, err := read(f)
	if err != nil {
		return zero, errors.Wrapf(err, "frame %d", index)
	}
	return v, nil
}
