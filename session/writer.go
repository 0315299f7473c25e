package session

import (
	"image"
	"os"
	"path/filepath"

	"go.uber.org/multierr"

	"go.viam.com/depthtruth/dataset"
	"go.viam.com/depthtruth/rimage"
	"go.viam.com/depthtruth/utils"
)

// A Writer writes per-frame artifacts into a session directory. Writes of different frames may
// happen concurrently.
type Writer struct {
	layout Layout
}

// NewWriter creates the session directories under root.
func NewWriter(root string) (*Writer, error) {
	layout := Layout{Root: root}
	for _, kind := range Kinds {
		dir := layout.Dir(kind)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, utils.NewIOError("mkdir", dir, err)
		}
	}
	return &Writer{layout: layout}, nil
}

// Layout returns the layout being written.
func (w *Writer) Layout() Layout {
	return w.layout
}

// WriteRecord writes record as the artifact of kind for frame index. The file appears
// atomically.
func (w *Writer) WriteRecord(kind Kind, index int, record interface{}) error {
	b := w.Batch(index)
	if err := b.AddRecord(kind, record); err != nil {
		return multierr.Combine(err, b.Discard())
	}
	return b.Commit()
}

// WriteImage writes the camera image of frame index as a jpeg.
func (w *Writer) WriteImage(index int, img image.Image) error {
	return rimage.WriteImageToFile(w.layout.Path(KindImage, index), img)
}

// WriteDepthPlane writes the raw DEPTH16 plane of frame index.
func (w *Writer) WriteDepthPlane(index int, plane []byte) error {
	path := w.layout.DepthPlanePath(index)
	return utils.NewIOError("write", path, os.WriteFile(path, plane, 0o640))
}

// WritePointPlane writes the raw point cloud buffer of frame index.
func (w *Writer) WritePointPlane(index int, plane []byte) error {
	path := w.layout.PointPlanePath(index)
	return utils.NewIOError("write", path, os.WriteFile(path, plane, 0o640))
}

// WriteRender writes a rendering of the artifact of kind for frame index as a png.
func (w *Writer) WriteRender(kind Kind, index int, img image.Image) error {
	b := w.Batch(index)
	if err := b.AddRender(kind, img); err != nil {
		return multierr.Combine(err, b.Discard())
	}
	return b.Commit()
}

// Batch returns an empty batch of artifacts for frame index.
func (w *Writer) Batch(index int) *Batch {
	return &Batch{layout: w.layout, index: index}
}

// A Batch stages the artifacts of one frame in temporary files next to their destinations.
// Commit moves them all into place, or none of them. A Batch is not safe for concurrent use.
type Batch struct {
	layout Layout
	index  int
	staged []stagedFile
}

type stagedFile struct {
	tmp, path string
}

// AddRecord stages record as the artifact of kind.
func (b *Batch) AddRecord(kind Kind, record interface{}) error {
	path := b.layout.Path(kind, b.index)
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*"+recordExt)
	if err != nil {
		return utils.NewIOError("create", path, err)
	}
	b.staged = append(b.staged, stagedFile{tmp: tmp.Name(), path: path})
	if err := dataset.WriteJSON(tmp, record); err != nil {
		return multierr.Combine(utils.NewIOError("write", path, err), tmp.Close())
	}
	return utils.NewIOError("close", path, tmp.Close())
}

// AddRender stages a png rendering of the artifact of kind.
func (b *Batch) AddRender(kind Kind, img image.Image) error {
	path := b.layout.RenderPath(kind, b.index)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return utils.NewIOError("mkdir", dir, err)
	}
	// the temporary name keeps the extension so the encoder is chosen from it
	tmp, err := os.CreateTemp(dir, ".tmp-*"+filepath.Ext(path))
	if err != nil {
		return utils.NewIOError("create", path, err)
	}
	b.staged = append(b.staged, stagedFile{tmp: tmp.Name(), path: path})
	if err := tmp.Close(); err != nil {
		return utils.NewIOError("close", path, err)
	}
	return rimage.WriteImageToFile(tmp.Name(), img)
}

// Commit renames every staged file into place. If a rename fails, the files already moved and
// the ones still staged are removed, so the frame is left without any of the batch's artifacts.
func (b *Batch) Commit() error {
	for i, s := range b.staged {
		if err := os.Rename(s.tmp, s.path); err != nil {
			err = utils.NewIOError("rename", s.path, err)
			for _, done := range b.staged[:i] {
				err = multierr.Combine(err, removeIfExists(done.path))
			}
			for _, pending := range b.staged[i:] {
				err = multierr.Combine(err, removeIfExists(pending.tmp))
			}
			b.staged = nil
			return err
		}
	}
	b.staged = nil
	return nil
}

// Discard removes every staged file.
func (b *Batch) Discard() error {
	var err error
	for _, s := range b.staged {
		err = multierr.Combine(err, removeIfExists(s.tmp))
	}
	b.staged = nil
	return err
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return utils.NewIOError("remove", path, err)
	}
	return nil
}
