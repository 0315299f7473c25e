package capture

import (
	"context"
	"image"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"go.viam.com/depthtruth/logging"
	"go.viam.com/depthtruth/pointcloud"
	"go.viam.com/depthtruth/rimage"
	"go.viam.com/depthtruth/session"
)

// A Pipeline reads host frames from a source, builds their records and writes them into a
// session. Frames are independent, so a Pipeline may process several at once.
type Pipeline struct {
	source  Source
	writer  *session.Writer
	builder *Builder
	logger  logging.Logger

	// Render, when set, also writes color renderings of each frame's point cloud and depth image.
	Render *rimage.RenderOptions
}

// NewPipeline returns a pipeline from source into writer.
func NewPipeline(source Source, writer *session.Writer, logger logging.Logger) *Pipeline {
	logger = logger.Sublogger("capture")
	return &Pipeline{
		source:  source,
		writer:  writer,
		builder: NewBuilder(logger),
		logger:  logger,
	}
}

// Frame processes the frame with the given index. Nothing is written for a frame whose records
// could not all be built.
func (p *Pipeline) Frame(ctx context.Context, index int) (Report, error) {
	hf, err := p.source.Frame(ctx, index)
	if err != nil {
		return Report{}, errors.Wrapf(err, "frame %d", index)
	}
	records, err := p.builder.Build(index, hf)
	if err != nil {
		return Report{}, errors.Wrapf(err, "frame %d", index)
	}
	if err := p.write(records); err != nil {
		return Report{}, errors.Wrapf(err, "frame %d", index)
	}
	return Summarize(records), nil
}

// write stages every artifact of the frame and commits them together, so a frame that fails
// to write leaves none of its artifacts behind.
func (p *Pipeline) write(records *Records) error {
	renders, err := p.render(records)
	if err != nil {
		return err
	}

	batch := p.writer.Batch(records.Index)
	stage := func() error {
		if err := batch.AddRecord(session.KindScene, records.Scene); err != nil {
			return err
		}
		if records.PointCloud != nil {
			if err := batch.AddRecord(session.KindPointCloud, records.PointCloud); err != nil {
				return err
			}
		}
		if records.TOF != nil {
			if err := batch.AddRecord(session.KindTOF, records.TOF); err != nil {
				return err
			}
		}
		if records.Sensors != nil {
			if err := batch.AddRecord(session.KindSensors, records.Sensors); err != nil {
				return err
			}
		}
		for _, kind := range []session.Kind{session.KindPointCloud, session.KindTOF} {
			if img, ok := renders[kind]; ok {
				if err := batch.AddRender(kind, img); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := stage(); err != nil {
		return multierr.Combine(err, batch.Discard())
	}
	return batch.Commit()
}

// render draws the frame's point cloud and depth image rotated for display, when rendering is
// enabled.
func (p *Pipeline) render(records *Records) (map[session.Kind]image.Image, error) {
	if p.Render == nil {
		return nil, nil
	}
	out := map[session.Kind]image.Image{}
	if records.PointCloud != nil {
		img, err := rimage.RenderPoints(records.Scene.Width, records.Scene.Height, records.PointCloud.Points, *p.Render)
		if err != nil {
			return nil, err
		}
		rotated, err := rimage.RotateForDisplay(img, records.Scene.DisplayRotation)
		if err != nil {
			return nil, err
		}
		out[session.KindPointCloud] = rotated
	}
	if records.TOF != nil {
		img, err := rimage.RenderTOF(records.TOF, *p.Render)
		if err != nil {
			return nil, err
		}
		rotated, err := rimage.RotateForDisplay(img, records.TOF.DisplayRotation)
		if err != nil {
			return nil, err
		}
		out[session.KindTOF] = rotated
	}
	return out, nil
}

// Process runs every frame of the source through the pipeline with at most workers frames in
// flight. The first failure cancels the remaining frames and is returned. Reports are in frame
// order.
func (p *Pipeline) Process(ctx context.Context, workers int) ([]Report, error) {
	if workers < 1 {
		workers = 1
	}
	total := p.source.Len()
	reports := make([]Report, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < total; i++ {
		if gctx.Err() != nil {
			break
		}
		index := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report, err := p.Frame(gctx, index)
			if err != nil {
				return err
			}
			reports[index] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	totals := Totals(reports)
	p.logger.Infow("processed session",
		"frames", total,
		"workers", workers,
		"points", totals.Total,
		"visible", totals.Visible,
	)
	return reports, nil
}

// Process runs every frame of source into writer. See Pipeline.Process.
func Process(ctx context.Context, source Source, writer *session.Writer, workers int, logger logging.Logger) ([]Report, error) {
	return NewPipeline(source, writer, logger).Process(ctx, workers)
}

// Totals sums the projection statistics of reports.
func Totals(reports []Report) pointcloud.Stats {
	var out pointcloud.Stats
	for _, r := range reports {
		out.Total += r.Stats.Total
		out.Visible += r.Stats.Visible
		out.Behind += r.Stats.Behind
		out.Degenerate += r.Stats.Degenerate
		out.Outside += r.Stats.Outside
	}
	return out
}
