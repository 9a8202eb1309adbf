package main

import (
	"os"

	"github.com/swatinair123/OSprayLoadObj/cmd"
	"github.com/swatinair123/OSprayLoadObj/engine"
	"github.com/swatinair123/OSprayLoadObj/log"
	"github.com/urfave/cli"
)

var logger = log.New("main")

// Initializes the engine and strips the flags it consumes from args.
type initFunc func(args []string) (*engine.Device, []string, error)

func main() {
	os.Exit(run(os.Args, engine.Init))
}

// Initialize the engine, run the cli app and return the process exit code.
// Engine initialization failures exit with the engine status.
func run(args []string, initEngine initFunc) int {
	dev, args, err := initEngine(args)
	if err != nil {
		status := engine.StatusOf(err)
		if status == engine.NoError {
			status = engine.UnknownError
		}
		logger.Errorf("engine initialization failed: %v", err)
		return int(status)
	}
	defer dev.Close()

	if err = newApp(dev).Run(args); err != nil {
		logger.Error(err)
		return 1
	}
	return 0
}

func newApp(dev *engine.Device) *cli.App {
	app := cli.NewApp()
	app.Name = "osprayloadobj"
	app.Usage = "render a triangle mesh with progressive accumulation and save ppm snapshots"
	app.Version = "0.0.1"
	app.Metadata = map[string]interface{}{
		cmd.DeviceKey: dev,
	}
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "scene",
			Usage: "yaml scene description (local path or http/https url); defaults to the built-in scene",
		},
		cli.IntFlag{
			Name:  "width",
			Value: 1024,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 768,
			Usage: "frame height",
		},
		cli.StringFlag{
			Name:  "first-out",
			Value: "firstFrame.ppm",
			Usage: "image filename for the first rendered frame",
		},
		cli.StringFlag{
			Name:  "accum-out",
			Value: "accumulatedFrame.ppm",
			Usage: "image filename for the accumulated frame",
		},
		cli.IntFlag{
			Name:  "accum-frames",
			Value: 10,
			Usage: "number of frames accumulated after the first snapshot",
		},
		cli.BoolFlag{
			Name:  "stats",
			Usage: "display per-frame tracer statistics",
		},
	}
	app.Action = cmd.RenderScene
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render scene",
			Description: `
Assemble the scene, render a single frame and write it to --first-out. Then
accumulate --accum-frames additional frames into the same framebuffer and
write the result to --accum-out.`,
			Action: cmd.RenderScene,
		},
		{
			Name:   "scene-info",
			Usage:  "display scene description statistics",
			Action: cmd.ShowSceneInfo,
		},
		{
			Name:   "list-devices",
			Usage:  "list the engine tracers",
			Action: cmd.ListDevices,
		},
	}

	return app
}
