package session

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.viam.com/depthtruth/utils"
)

// Kind names one per-frame artifact and the directory it lives in.
type Kind string

// The per-frame artifacts of a session.
const (
	KindImage      Kind = "images"
	KindScene      Kind = "scenes"
	KindPointCloud Kind = "points"
	KindTOF        Kind = "tof"
	KindSensors    Kind = "sensors"
	KindRaw        Kind = "raw"
)

// Kinds lists every per-frame artifact, images first.
var Kinds = []Kind{KindImage, KindScene, KindPointCloud, KindTOF, KindSensors, KindRaw}

const (
	imageExt      = ".jpg"
	recordExt     = ".json"
	depthPlaneExt = ".depth16"
	pointPlaneExt = ".points"
	rendersDir    = "renders"
)

// Layout maps frame indices to paths inside a session directory.
type Layout struct {
	Root string
}

// Dir returns the directory holding artifacts of kind.
func (l Layout) Dir(kind Kind) string {
	return filepath.Join(l.Root, string(kind))
}

// Path returns the path of the artifact of kind for frame index.
func (l Layout) Path(kind Kind, index int) string {
	ext := recordExt
	if kind == KindImage {
		ext = imageExt
	}
	return filepath.Join(l.Dir(kind), strconv.Itoa(index)+ext)
}

// DepthPlanePath returns the path of the raw DEPTH16 plane recorded with a host frame.
func (l Layout) DepthPlanePath(index int) string {
	return filepath.Join(l.Dir(KindRaw), strconv.Itoa(index)+depthPlaneExt)
}

// PointPlanePath returns the path of the raw point cloud buffer recorded with a host frame.
func (l Layout) PointPlanePath(index int) string {
	return filepath.Join(l.Dir(KindRaw), strconv.Itoa(index)+pointPlaneExt)
}

// RenderPath returns where a rendering of the artifact of kind for frame index is written.
func (l Layout) RenderPath(kind Kind, index int) string {
	return filepath.Join(l.Root, rendersDir, string(kind), strconv.Itoa(index)+".png")
}

// CountFrames returns the number of regular files in the images directory.
func (l Layout) CountFrames() (int, error) {
	dir := l.Dir(KindImage)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, utils.NewIOError("list", dir, err)
	}
	count := 0
	for _, e := range entries {
		if e.Type().IsRegular() {
			count++
		}
	}
	return count, nil
}

// Check returns a configuration error unless index is one of the frames currently in the images
// directory.
func (l Layout) Check(index int) error {
	total, err := l.CountFrames()
	if err != nil {
		return err
	}
	if index < 0 || index >= total {
		return utils.NewFrameOutOfRangeError(index, total)
	}
	return nil
}

// frameIndex parses the frame index out of a file name like "12.json".
func frameIndex(name string) (int, bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	index, err := strconv.Atoi(base)
	if err != nil || index < 0 {
		return 0, false
	}
	return index, true
}
