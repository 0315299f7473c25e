// Package assets loads the metadata of depth estimation models and the 3D objects placed into a
// scene, along with the meshes and textures those objects reference.
package assets

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	goutils "go.viam.com/utils"

	"go.viam.com/depthtruth/logging"
	"go.viam.com/depthtruth/utils"
)

// ModelType is the element type of a model's input or output tensor.
type ModelType string

// The supported tensor element types.
const (
	ModelTypeUint8   ModelType = "uint8"
	ModelTypeFloat32 ModelType = "float32"
)

// ByteSize returns the size in bytes of one element.
func (t ModelType) ByteSize() int {
	switch t {
	case ModelTypeUint8:
		return 1
	case ModelTypeFloat32:
		return 4
	default:
		return 0
	}
}

// Validate ensures the type is one of the supported element types.
func (t ModelType) Validate() error {
	if t.ByteSize() == 0 {
		return utils.NewConfigurationError("unknown tensor type %q", string(t))
	}
	return nil
}

// A Shape is a rank 4 tensor shape laid out as batch, height, width, depth.
type Shape []int

// Height of the tensor.
func (s Shape) Height() int { return s[1] }

// Width of the tensor.
func (s Shape) Width() int { return s[2] }

// Depth is the number of channels.
func (s Shape) Depth() int { return s[3] }

// Elements is the number of elements in one batch entry.
func (s Shape) Elements() int { return s.Height() * s.Width() * s.Depth() }

func (s Shape) validate() error {
	if len(s) != 4 {
		return errors.Errorf("shape %v is not rank 4", []int(s))
	}
	for _, dim := range s {
		if dim <= 0 {
			return errors.Errorf("shape %v has a non-positive dimension", []int(s))
		}
	}
	return nil
}

// ModelDescriptor describes a depth estimation model file and the tensors it consumes and
// produces.
type ModelDescriptor struct {
	Name              string    `json:"name"`
	FileName          string    `json:"fileName"`
	InputNodes        []string  `json:"inputNodes"`
	OutputNodes       []string  `json:"outputNodes"`
	DefaultInputNode  string    `json:"defaultInputNode"`
	DefaultOutputNode string    `json:"defaultOutputNode"`
	InputShape        Shape     `json:"inputShape"`
	InputType         ModelType `json:"inputType"`
	OutputShape       Shape     `json:"outputShape"`
	OutputType        ModelType `json:"outputType"`

	// path is the descriptor file this was read from.
	path string
}

// Path returns the descriptor file the model was read from.
func (m *ModelDescriptor) Path() string {
	return m.path
}

// ModelPath returns the model file, resolved against the descriptor's directory.
func (m *ModelDescriptor) ModelPath() string {
	if filepath.IsAbs(m.FileName) || m.path == "" {
		return m.FileName
	}
	return filepath.Join(filepath.Dir(m.path), m.FileName)
}

// InputSize is the number of bytes of one input batch entry.
func (m *ModelDescriptor) InputSize() int {
	return m.InputShape.Elements() * m.InputType.ByteSize()
}

// OutputSize is the number of bytes of one output batch entry.
func (m *ModelDescriptor) OutputSize() int {
	return m.OutputShape.Elements() * m.OutputType.ByteSize()
}

// NormalizeInput reports whether input pixels are scaled to [0, 1] before inference.
func (m *ModelDescriptor) NormalizeInput() bool {
	return m.InputType == ModelTypeFloat32
}

// Validate checks that the descriptor names a file and has well formed tensors.
func (m *ModelDescriptor) Validate() error {
	if m.Name == "" {
		return utils.NewConfigurationError("model in %q has no name", m.path)
	}
	if m.FileName == "" {
		return utils.NewConfigurationError("model %q has no fileName", m.Name)
	}
	if err := m.InputShape.validate(); err != nil {
		return utils.NewConfigurationError("model %q inputShape: %v", m.Name, err)
	}
	if err := m.OutputShape.validate(); err != nil {
		return utils.NewConfigurationError("model %q outputShape: %v", m.Name, err)
	}
	if err := m.InputType.Validate(); err != nil {
		return errors.Wrapf(err, "model %q inputType", m.Name)
	}
	if err := m.OutputType.Validate(); err != nil {
		return errors.Wrapf(err, "model %q outputType", m.Name)
	}
	if m.DefaultInputNode != "" && !lo.Contains(m.InputNodes, m.DefaultInputNode) {
		return utils.NewConfigurationError("model %q default input node %q is not an input node", m.Name, m.DefaultInputNode)
	}
	if m.DefaultOutputNode != "" && !lo.Contains(m.OutputNodes, m.DefaultOutputNode) {
		return utils.NewConfigurationError("model %q default output node %q is not an output node", m.Name, m.DefaultOutputNode)
	}
	return nil
}

// ModelLoader knows the model descriptors found under a directory at the time it was created.
type ModelLoader struct {
	dir    string
	paths  map[string]struct{}
	logger logging.Logger
}

// NewModelLoader walks dir for regular *.json files. The set of known descriptors is fixed
// afterwards.
func NewModelLoader(dir string, logger logging.Logger) (*ModelLoader, error) {
	paths := map[string]struct{}{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && strings.EqualFold(filepath.Ext(path), ".json") {
			paths[filepath.Clean(path)] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, utils.NewIOError("walk", dir, err)
	}
	logger = logger.Sublogger("models")
	logger.Debugw("found model descriptors", "dir", dir, "count", len(paths))
	return &ModelLoader{dir: dir, paths: paths, logger: logger}, nil
}

// Paths returns the known descriptor files in lexical order.
func (l *ModelLoader) Paths() []string {
	paths := lo.Keys(l.paths)
	sort.Strings(paths)
	return paths
}

// Parse reads the descriptor at path, which must be one of the files found at load time.
func (l *ModelLoader) Parse(path string) (*ModelDescriptor, error) {
	path = filepath.Clean(path)
	if _, ok := l.paths[path]; !ok {
		return nil, utils.NewConfigurationError("%q is not a model descriptor under %q", path, l.dir)
	}
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, utils.NewIOError("open", path, err)
	}
	defer goutils.UncheckedErrorFunc(f.Close)

	var m ModelDescriptor
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return nil, utils.NewDecodeError("model descriptor %q: %v", path, err)
	}
	m.path = path
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Models parses every known descriptor. Descriptors that fail to parse are logged and skipped.
func (l *ModelLoader) Models() []*ModelDescriptor {
	return lo.FilterMap(l.Paths(), func(path string, _ int) (*ModelDescriptor, bool) {
		m, err := l.Parse(path)
		if err != nil {
			l.logger.Warnw("skipping model descriptor", "path", path, "error", err)
			return nil, false
		}
		return m, true
	})
}

// Find returns the model with the given name.
func (l *ModelLoader) Find(name string) (*ModelDescriptor, error) {
	m, ok := lo.Find(l.Models(), func(m *ModelDescriptor) bool { return m.Name == name })
	if !ok {
		return nil, utils.NewConfigurationError("no model named %q under %q", name, l.dir)
	}
	return m, nil
}
