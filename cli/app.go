// Package cli implements the depthtruth command line.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	generalFlagConfig = "config"
	generalFlagDebug  = "debug"

	processFlagWorkers = "workers"
	processFlagRender  = "render"
	processFlagFollow  = "follow"

	replayFlagStart = "start"
	replayFlagCount = "count"

	renderFlagMethod = "method"
	renderFlagRadius = "radius"
	renderFlagRotate = "rotate"
	renderFlagGray16 = "gray16"
	renderFlagOut    = "out"

	exportFlagFormat = "format"
	exportFlagFrame  = "frame"
	exportFlagOut    = "out"

	objectsFlagCheck = "check"
)

var app = &cli.App{
	Name:            "depthtruth",
	Usage:           "build depth ground truth from recorded AR sessions",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    generalFlagConfig,
			Aliases: []string{"c"},
			Usage:   "load configuration from `FILE`",
		},
		&cli.BoolFlag{
			Name:    generalFlagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
	},
	Commands: []*cli.Command{
		{
			Name:      "process",
			Usage:     "build dataset records from the host frames recorded in a session",
			ArgsUsage: "[session]",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  processFlagWorkers,
					Usage: "number of frames processed at once (overrides the config)",
				},
				&cli.BoolFlag{
					Name:  processFlagRender,
					Usage: "also write color renderings of every frame",
				},
				&cli.BoolFlag{
					Name:  processFlagFollow,
					Usage: "keep processing frames as they are recorded until interrupted",
				},
			},
			Action: ProcessAction,
		},
		{
			Name:      "replay",
			Usage:     "step through the records of a processed session",
			ArgsUsage: "[session]",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  replayFlagStart,
					Usage: "first frame to show",
				},
				&cli.IntFlag{
					Name:  replayFlagCount,
					Usage: "number of frames to show, 0 for all",
				},
			},
			Action: ReplayAction,
		},
		{
			Name:      "tof2png",
			Usage:     "render the depth frames of a session as images",
			ArgsUsage: "[session]",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  renderFlagMethod,
					Usage: "color conversion: floatbits, grayscale or plasma",
					Value: "plasma",
				},
				&cli.IntFlag{
					Name:  renderFlagRadius,
					Usage: "half size in pixels of the square drawn per sample",
				},
				&cli.BoolFlag{
					Name:  renderFlagRotate,
					Usage: "rotate images the way they were shown on the device",
				},
				&cli.BoolFlag{
					Name:  renderFlagGray16,
					Usage: "write 16 bit millimeter images instead of colors",
				},
				&cli.StringFlag{
					Name:  renderFlagOut,
					Usage: "output `DIR`, defaults to the session's renders directory",
				},
			},
			Action: TOFToPNGAction,
		},
		{
			Name:      "export",
			Usage:     "export the visible points of a frame",
			ArgsUsage: "[session]",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  exportFlagFormat,
					Usage: "pcd, pcd-binary, las or obj",
					Value: "pcd",
				},
				&cli.IntFlag{
					Name:  exportFlagFrame,
					Usage: "frame to export",
				},
				&cli.StringFlag{
					Name:     exportFlagOut,
					Usage:    "output `FILE`",
					Required: true,
				},
			},
			Action: ExportAction,
		},
		{
			Name:      "reindex",
			Usage:     "renumber the frame files of a session to contiguous indices",
			ArgsUsage: "[session]",
			Action:    ReindexAction,
		},
		{
			Name:      "models",
			Usage:     "list the model descriptors in a directory",
			ArgsUsage: "[dir]",
			Action:    ModelsAction,
		},
		{
			Name:      "objects",
			Usage:     "list the objects of an object file",
			ArgsUsage: "[file]",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  objectsFlagCheck,
					Usage: "load every mesh and texture",
				},
			},
			Action: ObjectsAction,
		},
		{
			Name:      "schema",
			Usage:     "print the JSON schema of a record, or list the records",
			ArgsUsage: "[record]",
			Action:    SchemaAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
