package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/depthtruth/logging"
	"go.viam.com/depthtruth/testutils"
	"go.viam.com/depthtruth/utils"
)

func TestMainWithArgs(t *testing.T) {
	root := t.TempDir()
	testutils.WriteFrames(t, root, 3)

	logger, logs := logging.NewObservedTestLogger(t)
	err := mainWithArgs(context.Background(), []string{"replay", "--start=1", root}, logger)
	test.That(t, err, test.ShouldBeNil)
	frames := logs.FilterMessage("frame").All()
	test.That(t, frames, test.ShouldHaveLength, 2)
	test.That(t, frames[0].ContextMap()["frame"], test.ShouldEqual, int64(1))
	test.That(t, frames[1].ContextMap()["visible"], test.ShouldEqual, int64(3))

	err = mainWithArgs(context.Background(), []string{"replay", "--start=3", root}, logger)
	test.That(t, errors.Is(err, utils.ErrConfiguration), test.ShouldBeTrue)

	err = mainWithArgs(context.Background(), []string{"replay", "--delay=-1", root}, logger)
	test.That(t, err, test.ShouldNotBeNil)

	err = mainWithArgs(context.Background(), []string{"replay", "--unknown", root}, logger)
	test.That(t, err, test.ShouldNotBeNil)

	err = mainWithArgs(context.Background(), []string{"replay", filepath.Join(root, "missing")}, logger)
	test.That(t, utils.IsIOError(err), test.ShouldBeTrue)
}

func TestLoopStopsOnCancel(t *testing.T) {
	root := t.TempDir()
	testutils.WriteFrames(t, root, 2)

	logger, logs := logging.NewObservedTestLogger(t)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	err := mainWithArgs(ctx, []string{"replay", "--loop", "--delay=10", root}, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, logs.FilterMessage("frame").Len(), test.ShouldBeGreaterThan, 2)
}
