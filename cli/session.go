package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/depthtruth/dataset"
	"go.viam.com/depthtruth/pointcloud"
	"go.viam.com/depthtruth/session"
	"go.viam.com/depthtruth/utils"
)

// ReplayAction prints one line per frame of a processed session.
func ReplayAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := newLogger(c, cfg)

	sess, err := session.Open(argOr(c, cfg.Session), logger)
	if err != nil {
		return err
	}
	if sess.Total() == 0 {
		printf(c.App.Writer, "no frames")
		return nil
	}
	if err := sess.Seek(c.Int(replayFlagStart)); err != nil {
		return err
	}
	count := c.Int(replayFlagCount)

	t := table.NewWriter()
	t.SetOutputMirror(c.App.Writer)
	t.AppendHeader(table.Row{"Frame", "Timestamp", "Rotation", "Anchors", "Visible", "Min (m)", "Max (m)", "TOF", "TOF max (m)"})
	for shown := 0; count == 0 || shown < count; shown++ {
		row, err := replayRow(sess)
		if err != nil {
			return err
		}
		t.AppendRow(row)
		if !sess.Advance() {
			break
		}
	}
	t.Render()
	return nil
}

// replayRow summarizes the current frame. Records that were never written show as "-".
func replayRow(sess *session.Session) (table.Row, error) {
	row := table.Row{sess.Current(), "-", "-", "-", "-", "-", "-", "-", "-"}
	missing := func(err error) bool {
		return utils.IsIOError(err) && errors.Is(err, os.ErrNotExist)
	}

	scene, err := sess.Scene()
	switch {
	case err == nil:
		row[1], row[2], row[3] = scene.Timestamp, scene.DisplayRotation.String(), scene.NumAnchors
	case !missing(err):
		return nil, err
	}
	cloud, err := sess.PointCloud()
	switch {
	case err == nil:
		row[4] = fmt.Sprintf("%d/%d", len(cloud.Points), cloud.NumPoints)
		row[5], row[6] = formatDistance(cloud.MinDistance), formatDistance(cloud.MaxDistance)
	case !missing(err):
		return nil, err
	}
	tof, err := sess.TOF()
	switch {
	case err == nil:
		row[7] = fmt.Sprintf("%dx%d", tof.Width, tof.Height)
		row[8] = formatDistance(&tof.MaxDistance)
	case !missing(err):
		return nil, err
	}
	return row, nil
}

// ExportAction writes the visible points of one frame as PCD, LAS or OBJ.
func ExportAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := newLogger(c, cfg)

	sess, err := session.Open(argOr(c, cfg.Session), logger)
	if err != nil {
		return err
	}
	cloud, err := sess.PointCloudAt(c.Int(exportFlagFrame))
	if err != nil {
		return err
	}

	out := c.String(exportFlagOut)
	if err := exportCloud(cloud, strings.ToLower(c.String(exportFlagFormat)), out); err != nil {
		return err
	}

	if box, ok := pointcloud.Bounds(cloud); ok {
		size := box.Size()
		printf(c.App.Writer, "wrote %d points to %s, bounds %.3f x %.3f x %.3f m", len(cloud.Points), out, size.X, size.Y, size.Z)
	} else {
		printf(c.App.Writer, "wrote an empty point cloud to %s", out)
	}
	return nil
}

// exportCloud writes cloud to path in format. An error closing the file is returned like any
// other write error.
func exportCloud(cloud *dataset.PointCloudDataset, format, path string) (err error) {
	var write func(io.Writer) error
	switch format {
	case "las":
		return pointcloud.WriteToLASFile(cloud, path)
	case "obj":
		write = func(w io.Writer) error { return pointcloud.ToOBJ(cloud, w) }
	case "pcd", "pcd-ascii":
		write = func(w io.Writer) error { return pointcloud.ToPCD(cloud, w, pointcloud.PCDAscii) }
	case "pcd-binary":
		write = func(w io.Writer) error { return pointcloud.ToPCD(cloud, w, pointcloud.PCDBinary) }
	default:
		return utils.NewConfigurationError("unknown export format %q", format)
	}

	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return utils.NewIOError("create", path, err)
	}
	defer func() {
		err = multierr.Combine(err, utils.NewIOError("close", path, f.Close()))
	}()
	return utils.NewIOError("write", path, write(f))
}

// ReindexAction renumbers the frame files of a session.
func ReindexAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	counts, err := session.Reindex(argOr(c, cfg.Session), newLogger(c, cfg))
	if err != nil {
		return err
	}
	kinds := lo.Keys(counts)
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	t := table.NewWriter()
	t.SetOutputMirror(c.App.Writer)
	t.AppendHeader(table.Row{"Directory", "Frames"})
	for _, kind := range kinds {
		t.AppendRow(table.Row{string(kind), counts[kind]})
	}
	t.Render()
	return nil
}
