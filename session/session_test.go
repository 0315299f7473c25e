package session

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/depthtruth/logging"
	"go.viam.com/depthtruth/testutils"
	"go.viam.com/depthtruth/utils"
)

func TestMain(m *testing.M) {
	testutils.VerifyTestMain(m)
}

func TestCursor(t *testing.T) {
	c := NewCursor(3)
	test.That(t, c.Current(), test.ShouldEqual, 0)
	test.That(t, c.HasNext(), test.ShouldBeTrue)
	test.That(t, c.Advance(), test.ShouldBeTrue)
	test.That(t, c.Advance(), test.ShouldBeTrue)
	test.That(t, c.Current(), test.ShouldEqual, 2)
	test.That(t, c.HasNext(), test.ShouldBeFalse)

	// no-op on the last frame
	test.That(t, c.Advance(), test.ShouldBeFalse)
	test.That(t, c.Current(), test.ShouldEqual, 2)

	c.Rewind()
	test.That(t, c.Current(), test.ShouldEqual, 0)

	test.That(t, c.Seek(1), test.ShouldBeNil)
	test.That(t, c.Current(), test.ShouldEqual, 1)
	err := c.Seek(3)
	test.That(t, errors.Is(err, utils.ErrConfiguration), test.ShouldBeTrue)
	test.That(t, c.Seek(-1), test.ShouldNotBeNil)
	test.That(t, c.Current(), test.ShouldEqual, 1)
}

func TestCursorRewindAdvance(t *testing.T) {
	for _, total := range []int{0, 1, 2, 10} {
		c := NewCursor(total)
		for n := 0; n < total; n++ {
			c.Rewind()
			for i := 0; i < n; i++ {
				c.Advance()
			}
			test.That(t, c.Current(), test.ShouldEqual, n)
			test.That(t, c.HasNext(), test.ShouldEqual, n < total-1)
		}
	}
	empty := NewCursor(0)
	test.That(t, empty.HasNext(), test.ShouldBeFalse)
	test.That(t, empty.Advance(), test.ShouldBeFalse)
}

func TestOpenSession(t *testing.T) {
	root := t.TempDir()
	testutils.WriteFrames(t, root, 3)
	// directories do not count as frames
	test.That(t, os.Mkdir(filepath.Join(root, "images", "thumbs"), 0o750), test.ShouldBeNil)

	logger := logging.NewTestLogger(t)
	id := uuid.New()
	sess, err := OpenWithID(root, id, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sess.ID(), test.ShouldEqual, id)
	test.That(t, sess.Total(), test.ShouldEqual, 3)

	scene, err := sess.Scene()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, scene.FrameNumber, test.ShouldEqual, 0)
	test.That(t, sess.Cached(KindScene), test.ShouldBeTrue)
	again, err := sess.Scene()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, again, test.ShouldEqual, scene)

	img, err := sess.Image()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, testutils.FrameWidth)

	test.That(t, sess.Advance(), test.ShouldBeTrue)
	test.That(t, sess.Cached(KindScene), test.ShouldBeFalse)
	test.That(t, sess.Cached(KindImage), test.ShouldBeFalse)

	cloud, err := sess.PointCloud()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cloud.Points, test.ShouldHaveLength, 2)

	tof, err := sess.TOF()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tof.MaxDistance, test.ShouldEqual, float32(2))

	// no sensor records were written
	_, err = sess.Sensors()
	test.That(t, utils.IsIOError(err), test.ShouldBeTrue)

	sess.Rewind()
	test.That(t, sess.Cached(KindPointCloud), test.ShouldBeFalse)
	scene, err = sess.Scene()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, scene.FrameNumber, test.ShouldEqual, 0)

	test.That(t, sess.Seek(2), test.ShouldBeNil)
	scene, err = sess.SceneAt(1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, scene.FrameNumber, test.ShouldEqual, 1)
	test.That(t, sess.Current(), test.ShouldEqual, 2)

	_, err = sess.SceneAt(3)
	test.That(t, errors.Is(err, utils.ErrConfiguration), test.ShouldBeTrue)
	_, err = sess.PointCloudAt(-1)
	test.That(t, errors.Is(err, utils.ErrConfiguration), test.ShouldBeTrue)
	_, err = sess.TOFAt(5)
	test.That(t, errors.Is(err, utils.ErrConfiguration), test.ShouldBeTrue)
}

func TestFramesOutsideSession(t *testing.T) {
	root := t.TempDir()
	testutils.WriteFrames(t, root, 2)
	layout := Layout{Root: root}

	_, err := LoadScene(layout, 1)
	test.That(t, err, test.ShouldBeNil)
	for _, index := range []int{-1, 2, 7} {
		_, err = LoadScene(layout, index)
		test.That(t, errors.Is(err, utils.ErrConfiguration), test.ShouldBeTrue)
		test.That(t, utils.IsIOError(err), test.ShouldBeFalse)
	}
	// a record file beyond the enumerated images does not make the frame exist
	testutils.WriteJSONFile(t, layout.Path(KindScene, 2), testutils.SyntheticScene(t, 2))
	_, err = LoadScene(layout, 2)
	test.That(t, errors.Is(err, utils.ErrConfiguration), test.ShouldBeTrue)
	_, err = LoadPointCloud(layout, 2)
	test.That(t, errors.Is(err, utils.ErrConfiguration), test.ShouldBeTrue)
	_, err = LoadTOF(layout, 2)
	test.That(t, errors.Is(err, utils.ErrConfiguration), test.ShouldBeTrue)
	_, err = LoadSensors(layout, 2)
	test.That(t, errors.Is(err, utils.ErrConfiguration), test.ShouldBeTrue)
	_, err = LoadImage(layout, 2)
	test.That(t, errors.Is(err, utils.ErrConfiguration), test.ShouldBeTrue)

	_, err = LoadScene(Layout{Root: filepath.Join(root, "nope")}, 0)
	test.That(t, utils.IsIOError(err), test.ShouldBeTrue)

	empty := t.TempDir()
	test.That(t, os.MkdirAll(filepath.Join(empty, "images"), 0o750), test.ShouldBeNil)
	testutils.WriteJSONFile(t, Layout{Root: empty}.Path(KindScene, 0), testutils.SyntheticScene(t, 0))
	sess, err := Open(empty, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sess.Total(), test.ShouldEqual, 0)
	_, err = sess.Scene()
	test.That(t, errors.Is(err, utils.ErrConfiguration), test.ShouldBeTrue)
	test.That(t, sess.Cached(KindScene), test.ShouldBeFalse)
	_, err = sess.Image()
	test.That(t, errors.Is(err, utils.ErrConfiguration), test.ShouldBeTrue)
	_, err = sess.TOF()
	test.That(t, errors.Is(err, utils.ErrConfiguration), test.ShouldBeTrue)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"), logging.NewTestLogger(t))
	test.That(t, utils.IsIOError(err), test.ShouldBeTrue)
}

func TestWriterRoundTrip(t *testing.T) {
	root := t.TempDir()
	w, err := NewWriter(root)
	test.That(t, err, test.ShouldBeNil)
	for _, kind := range Kinds {
		info, err := os.Stat(w.Layout().Dir(kind))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, info.IsDir(), test.ShouldBeTrue)
	}

	scene := testutils.SyntheticScene(t, 4)
	test.That(t, w.WriteRecord(KindScene, 0, scene), test.ShouldBeNil)
	test.That(t, w.WriteImage(0, testutils.SolidImage(8, 8, color.White)), test.ShouldBeNil)
	test.That(t, w.WriteRender(KindTOF, 0, testutils.SolidImage(4, 4, color.Black)), test.ShouldBeNil)
	test.That(t, w.WriteDepthPlane(0, []byte{1, 2}), test.ShouldBeNil)

	back, err := LoadScene(w.Layout(), 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, back, test.ShouldResemble, scene)

	entries, err := os.ReadDir(w.Layout().Dir(KindScene))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, entries, test.ShouldHaveLength, 1)

	frames, err := w.Layout().CountFrames()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frames, test.ShouldEqual, 1)

	_, err = os.Stat(w.Layout().RenderPath(KindTOF, 0))
	test.That(t, err, test.ShouldBeNil)
	plane, err := os.ReadFile(w.Layout().DepthPlanePath(0))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, plane, test.ShouldResemble, []byte{1, 2})
}

func TestReindex(t *testing.T) {
	root := t.TempDir()
	touch := func(kind Kind, name string) {
		dir := Layout{Root: root}.Dir(kind)
		test.That(t, os.MkdirAll(dir, 0o750), test.ShouldBeNil)
		test.That(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o640), test.ShouldBeNil)
	}
	for _, name := range []string{"3.jpg", "10.jpg", "7.jpg", "notes.txt"} {
		touch(KindImage, name)
	}
	for _, name := range []string{"2.json", "5.json", "5.depth16", "9.json"} {
		touch(KindRaw, name)
	}
	touch(KindScene, "0.json")

	counts, err := Reindex(root, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, counts, test.ShouldResemble, map[Kind]int{KindImage: 3, KindRaw: 3, KindScene: 1})

	read := func(kind Kind, name string) string {
		data, err := os.ReadFile(filepath.Join(Layout{Root: root}.Dir(kind), name))
		test.That(t, err, test.ShouldBeNil)
		return string(data)
	}
	test.That(t, read(KindImage, "0.jpg"), test.ShouldEqual, "3.jpg")
	test.That(t, read(KindImage, "1.jpg"), test.ShouldEqual, "7.jpg")
	test.That(t, read(KindImage, "2.jpg"), test.ShouldEqual, "10.jpg")
	test.That(t, read(KindImage, "notes.txt"), test.ShouldEqual, "notes.txt")
	test.That(t, read(KindRaw, "1.json"), test.ShouldEqual, "5.json")
	test.That(t, read(KindRaw, "1.depth16"), test.ShouldEqual, "5.depth16")
	test.That(t, read(KindRaw, "2.json"), test.ShouldEqual, "9.json")
	test.That(t, read(KindScene, "0.json"), test.ShouldEqual, "0.json")

	frames, err := Layout{Root: root}.CountFrames()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frames, test.ShouldEqual, 4)
}

func TestReindexSpellings(t *testing.T) {
	root := t.TempDir()
	layout := Layout{Root: root}
	write := func(kind Kind, name string) {
		path := filepath.Join(layout.Dir(kind), name)
		test.That(t, os.MkdirAll(filepath.Dir(path), 0o750), test.ShouldBeNil)
		test.That(t, os.WriteFile(path, []byte(name), 0o640), test.ShouldBeNil)
	}
	for _, name := range []string{"0.jpg", "1.jpg", "02.jpg"} {
		write(KindImage, name)
	}
	write(KindScene, "2.json")
	write(KindScene, "02.json")

	_, err := Reindex(root, logging.NewTestLogger(t))
	test.That(t, errors.Is(err, utils.ErrConfiguration), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "02.json")
	// nothing was renamed, not even in directories without a collision
	for kind, names := range map[Kind][]string{KindImage: {"0.jpg", "02.jpg", "1.jpg"}, KindScene: {"02.json", "2.json"}} {
		entries, err := os.ReadDir(layout.Dir(kind))
		test.That(t, err, test.ShouldBeNil)
		got := make([]string, 0, len(entries))
		for _, e := range entries {
			got = append(got, e.Name())
		}
		test.That(t, got, test.ShouldResemble, names)
	}

	test.That(t, os.Remove(filepath.Join(layout.Dir(KindScene), "2.json")), test.ShouldBeNil)
	counts, err := Reindex(root, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, counts, test.ShouldResemble, map[Kind]int{KindImage: 3, KindScene: 1})
	// a padded name is rewritten even when its index does not change
	data, err := os.ReadFile(layout.Path(KindImage, 2))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldEqual, "02.jpg")
	data, err = os.ReadFile(layout.Path(KindScene, 0))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldEqual, "02.json")
}

func TestWatch(t *testing.T) {
	root := t.TempDir()
	test.That(t, os.MkdirAll(Layout{Root: root}.Dir(KindImage), 0o750), test.ShouldBeNil)

	ctx, cancel := context.WithCancel(context.Background())
	indices, err := Watch(ctx, root, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	path := Layout{Root: root}.Path(KindImage, 12)
	test.That(t, os.WriteFile(path, []byte("jpg"), 0o640), test.ShouldBeNil)
	select {
	case index := <-indices:
		test.That(t, index, test.ShouldEqual, 12)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for new frame")
	}

	cancel()
	for range indices {
	}

	_, err = Watch(context.Background(), filepath.Join(root, "missing"), logging.NewTestLogger(t))
	test.That(t, utils.IsIOError(err), test.ShouldBeTrue)
}
