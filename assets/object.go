package assets

import (
	"encoding/json"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	goutils "go.viam.com/utils"

	"go.viam.com/depthtruth/logging"
	"go.viam.com/depthtruth/utils"
)

// DefaultObjectsFile is the object list read when none is configured.
const DefaultObjectsFile = "objs/objs.json"

// AnimationMode selects how an animated object steps through its meshes.
type AnimationMode string

// The animation modes. With four meshes they produce:
//
//	none:      0,0,0,0,...
//	repeat:    0,1,2,3,0,1,...
//	stopAtEnd: 0,1,2,3,3,3,...
//	pingPong:  0,1,2,3,3,2,1,0,0,1,...
const (
	AnimationNone      AnimationMode = "none"
	AnimationRepeat    AnimationMode = "repeat"
	AnimationStopAtEnd AnimationMode = "stopAtEnd"
	AnimationPingPong  AnimationMode = "pingPong"
)

// Validate ensures the mode is known. The empty mode means none.
func (m AnimationMode) Validate() error {
	switch m {
	case "", AnimationNone, AnimationRepeat, AnimationStopAtEnd, AnimationPingPong:
		return nil
	default:
		return utils.NewConfigurationError("unknown animation mode %q", string(m))
	}
}

// ObjectDescriptor is one entry of the object list: a named object, the meshes of its
// animation frames and its texture.
type ObjectDescriptor struct {
	Name          string        `json:"name"`
	Objs          []string      `json:"objs"`
	Texture       string        `json:"texture"`
	ScaleFactor   float32       `json:"scaleFactor"`
	Delta         float32       `json:"delta"`
	Animation     bool          `json:"animation"`
	AnimationMode AnimationMode `json:"animationMode"`
}

// Validate checks that the object has at least one mesh and a known animation mode.
func (o *ObjectDescriptor) Validate() error {
	if o.Name == "" {
		return utils.NewConfigurationError("object has no name")
	}
	if len(o.Objs) == 0 {
		return utils.NewConfigurationError("object %q has no meshes", o.Name)
	}
	return errors.Wrapf(o.AnimationMode.Validate(), "object %q", o.Name)
}

// NewAnimator returns a cursor over the object's meshes.
func (o *ObjectDescriptor) NewAnimator() *Animator {
	mode := o.AnimationMode
	if !o.Animation || mode == "" {
		mode = AnimationNone
	}
	return &Animator{mode: mode, count: len(o.Objs), forward: true}
}

// An Animator yields the mesh index to draw on each successive frame.
type Animator struct {
	mode    AnimationMode
	count   int
	index   int
	forward bool
}

// Index returns the index Next will return.
func (a *Animator) Index() int {
	return a.index
}

// Next returns the current mesh index and steps according to the animation mode.
func (a *Animator) Next() int {
	out := a.index
	switch a.mode {
	case AnimationRepeat:
		a.index = (a.index + 1) % a.count
	case AnimationStopAtEnd:
		if a.index+1 < a.count {
			a.index++
		}
	case AnimationPingPong:
		// the direction flips on an end without moving, so each end is shown twice
		if a.forward {
			if a.index+1 < a.count {
				a.index++
			} else {
				a.forward = false
			}
		} else {
			if a.index > 0 {
				a.index--
			} else {
				a.forward = true
			}
		}
	case AnimationNone:
	}
	return out
}

// ObjectLoader reads an object list and the meshes and textures it references. Relative paths
// resolve against the list's directory.
type ObjectLoader struct {
	path    string
	objects []ObjectDescriptor
	logger  logging.Logger
}

// NewObjectLoader reads and validates the object list at path.
func NewObjectLoader(path string, logger logging.Logger) (*ObjectLoader, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, utils.NewIOError("open", path, err)
	}
	defer goutils.UncheckedErrorFunc(f.Close)

	var objects []ObjectDescriptor
	if err := json.NewDecoder(f).Decode(&objects); err != nil {
		return nil, utils.NewDecodeError("object list %q: %v", path, err)
	}
	for i := range objects {
		if err := objects[i].Validate(); err != nil {
			return nil, err
		}
	}
	if dups := lo.FindDuplicates(lo.Map(objects, func(o ObjectDescriptor, _ int) string { return o.Name })); len(dups) > 0 {
		return nil, utils.NewConfigurationError("duplicate object names %v in %q", dups, path)
	}
	logger = logger.Sublogger("objects")
	logger.Debugw("read object list", "path", path, "objects", len(objects))
	return &ObjectLoader{path: path, objects: objects, logger: logger}, nil
}

// Objects returns the object list in file order.
func (l *ObjectLoader) Objects() []ObjectDescriptor {
	return l.objects
}

// Find returns the object with the given name.
func (l *ObjectLoader) Find(name string) (*ObjectDescriptor, error) {
	o, ok := lo.Find(l.objects, func(o ObjectDescriptor) bool { return o.Name == name })
	if !ok {
		return nil, utils.NewConfigurationError("no object named %q in %q", name, l.path)
	}
	return &o, nil
}

func (l *ObjectLoader) resolve(name string) (string, error) {
	path := name
	if !filepath.IsAbs(path) {
		var err error
		if path, err = utils.SafeJoinDir(filepath.Dir(l.path), name); err != nil {
			return "", err
		}
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", utils.NewConfigurationError("%q referenced by %q is not a file", path, l.path)
	}
	return path, nil
}

// Mesh reads mesh i of the object, scaled by its scale factor when one is set.
func (l *ObjectLoader) Mesh(o *ObjectDescriptor, i int) (*Mesh, error) {
	if i < 0 || i >= len(o.Objs) {
		return nil, utils.NewConfigurationError("object %q has no mesh %d", o.Name, i)
	}
	path, err := l.resolve(o.Objs[i])
	if err != nil {
		return nil, err
	}
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, utils.NewIOError("open", path, err)
	}
	defer goutils.UncheckedErrorFunc(f.Close)
	mesh, err := ReadOBJ(f)
	if err != nil {
		return nil, errors.Wrapf(err, "mesh %q", path)
	}
	if o.ScaleFactor != 0 && o.ScaleFactor != 1 {
		mesh.Scale(o.ScaleFactor)
	}
	return mesh, nil
}

// Texture decodes the object's texture to RGBA.
func (l *ObjectLoader) Texture(o *ObjectDescriptor) (*image.NRGBA, error) {
	if o.Texture == "" {
		return nil, utils.NewConfigurationError("object %q has no texture", o.Name)
	}
	path, err := l.resolve(o.Texture)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, utils.NewIOError("decode", path, err)
	}
	return imaging.Clone(img), nil
}
