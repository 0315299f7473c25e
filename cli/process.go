package cli

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"go.viam.com/depthtruth/capture"
	"go.viam.com/depthtruth/config"
	"go.viam.com/depthtruth/dataset"
	"go.viam.com/depthtruth/rimage"
	"go.viam.com/depthtruth/session"
	"go.viam.com/depthtruth/utils"
)

// ProcessAction builds the dataset records of every recorded host frame in a session.
func ProcessAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := newLogger(c, cfg)
	root := argOr(c, cfg.Session)

	workers := cfg.Workers
	if c.IsSet(processFlagWorkers) {
		workers = c.Int(processFlagWorkers)
	}

	source, err := capture.NewSessionSource(root, cfg.DepthOrder(), cfg.PointCloudOrder())
	if err != nil {
		return err
	}
	writer, err := session.NewWriter(root)
	if err != nil {
		return err
	}
	pipeline := capture.NewPipeline(source, writer, logger)
	if c.Bool(processFlagRender) {
		renderCfg := cfg.Render
		if renderCfg == nil {
			renderCfg = &config.RenderConfig{}
		}
		if pipeline.Render, err = renderCfg.Options(); err != nil {
			return err
		}
	}

	reports, err := pipeline.Process(c.Context, workers)
	if err != nil {
		return err
	}
	printReports(c.App.Writer, reports)

	if !c.Bool(processFlagFollow) {
		return nil
	}
	indices, err := session.Watch(c.Context, root, logger)
	if err != nil {
		return err
	}
	printf(c.App.Writer, "following %s, interrupt to stop", root)
	for index := range indices {
		report, err := pipeline.Frame(c.Context, index)
		if err != nil {
			// the host may write the image before the frame it belongs to
			warningf(c.App.ErrWriter, "skipping frame %d: %v", index, err)
			continue
		}
		printReports(c.App.Writer, []capture.Report{report})
	}
	return nil
}

func printReports(w io.Writer, reports []capture.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Frame", "Points", "Visible", "Behind", "Outside", "Degenerate", "Median (m)", "P95 (m)", "TOF median (m)"})
	for _, r := range reports {
		t.AppendRow(table.Row{
			r.Index,
			r.Stats.Total,
			r.Stats.Visible,
			r.Stats.Behind,
			r.Stats.Outside,
			r.Stats.Degenerate,
			summaryValue(r.Points.Count, r.Points.Median),
			summaryValue(r.Points.Count, r.Points.P95),
			summaryValue(r.TOF.Count, r.TOF.Median),
		})
	}
	if len(reports) > 1 {
		totals := capture.Totals(reports)
		t.AppendFooter(table.Row{"Total", totals.Total, totals.Visible, totals.Behind, totals.Outside, totals.Degenerate})
	}
	t.Render()
}

func summaryValue(count int, v float64) string {
	if count == 0 {
		return "-"
	}
	return fmt.Sprintf("%.3f", v)
}

// TOFToPNGAction renders the depth frames of a session.
func TOFToPNGAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := newLogger(c, cfg)
	root := argOr(c, cfg.Session)

	method, err := rimage.ParseConversionMethod(c.String(renderFlagMethod))
	if err != nil {
		return err
	}
	opts := rimage.RenderOptions{Method: method, Radius: c.Int(renderFlagRadius)}
	opts.Background.A = 255

	sess, err := session.Open(root, logger)
	if err != nil {
		return err
	}
	if sess.Total() == 0 {
		printf(c.App.Writer, "no frames in %s", root)
		return nil
	}

	written := 0
	for {
		index := sess.Current()
		tof, err := sess.TOF()
		switch {
		case err != nil:
			logger.Warnw("skipping frame without depth", "frame", index, "error", err)
		default:
			img, err := tofImage(tof, opts, c.Bool(renderFlagGray16), c.Bool(renderFlagRotate))
			if err != nil {
				return err
			}
			if err := writePNG(sess.Layout(), c.String(renderFlagOut), index, img); err != nil {
				return err
			}
			written++
		}
		if !sess.Advance() {
			break
		}
	}
	printf(c.App.Writer, "wrote %d of %d depth frames", written, sess.Total())
	return nil
}

func tofImage(tof *dataset.TOFDataset, opts rimage.RenderOptions, gray16, rotate bool) (image.Image, error) {
	var img image.Image
	if gray16 {
		img = rimage.TOFToGray16(tof)
	} else {
		colored, err := rimage.RenderTOF(tof, opts)
		if err != nil {
			return nil, err
		}
		img = colored
	}
	if !rotate {
		return img, nil
	}
	if gray, ok := img.(*image.Gray16); ok {
		return rimage.RotateGray16ForDisplay(gray, tof.DisplayRotation)
	}
	return rimage.RotateForDisplay(img, tof.DisplayRotation)
}

func writePNG(layout session.Layout, dir string, index int, img image.Image) error {
	path := layout.RenderPath(session.KindTOF, index)
	if dir != "" {
		path = filepath.Join(dir, strconv.Itoa(index)+".png")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return utils.NewIOError("mkdir", filepath.Dir(path), err)
	}
	return rimage.WriteImageToFile(path, img)
}
