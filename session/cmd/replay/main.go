// Package main steps through the frames of a processed session and logs what each one holds.
package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/depthtruth/logging"
	"go.viam.com/depthtruth/session"
)

var logger = logging.NewDebugLogger("replay")

// Arguments for the command.
type Arguments struct {
	Session string `flag:"0,default=dataset,usage=session directory"`
	Start   int    `flag:"start,usage=first frame"`
	DelayMS int    `flag:"delay,usage=milliseconds to wait between frames"`
	Loop    bool   `flag:"loop,usage=rewind after the last frame until interrupted"`
}

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

func mainWithArgs(ctx context.Context, args []string, logger logging.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}
	if argsParsed.DelayMS < 0 {
		return errors.Errorf("delay must not be negative, got %d", argsParsed.DelayMS)
	}

	sess, err := session.Open(argsParsed.Session, logger)
	if err != nil {
		return err
	}
	if sess.Total() == 0 {
		logger.Infow("session has no frames", "session", argsParsed.Session)
		return nil
	}
	if err := sess.Seek(argsParsed.Start); err != nil {
		return err
	}
	return replay(ctx, sess, time.Duration(argsParsed.DelayMS)*time.Millisecond, argsParsed.Loop, logger)
}

func replay(ctx context.Context, sess *session.Session, delay time.Duration, loop bool, logger logging.Logger) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if err := logFrame(sess, logger); err != nil {
			return err
		}
		if !sess.Advance() {
			if !loop {
				return nil
			}
			sess.Rewind()
		}
		if delay > 0 && !utils.SelectContextOrWait(ctx, delay) {
			return nil
		}
	}
}

func logFrame(sess *session.Session, logger logging.Logger) error {
	scene, err := sess.Scene()
	if err != nil {
		return err
	}
	fields := []interface{}{
		"frame", sess.Current(),
		"timestamp", scene.Timestamp,
		"rotation", scene.DisplayRotation.String(),
		"anchors", scene.NumAnchors,
	}
	if cloud, err := sess.PointCloud(); err == nil {
		fields = append(fields, "visible", len(cloud.Points), "points", cloud.NumPoints)
		if min, max, ok := cloud.DistanceRange(); ok {
			fields = append(fields, "min", min, "max", max)
		}
	} else {
		logger.Debugw("no point cloud", "frame", sess.Current(), "error", err)
	}
	if tof, err := sess.TOF(); err == nil {
		fields = append(fields, "tofMin", tof.MinDistance, "tofMax", tof.MaxDistance)
	} else {
		logger.Debugw("no depth frame", "frame", sess.Current(), "error", err)
	}
	logger.Infow("frame", fields...)
	return nil
}
