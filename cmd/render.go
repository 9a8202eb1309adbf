package cmd

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/swatinair123/OSprayLoadObj/accum"
	"github.com/swatinair123/OSprayLoadObj/engine"
	"github.com/swatinair123/OSprayLoadObj/scene"
	"github.com/urfave/cli"
)

// Render the scene once and after accumulating additional frames, writing a
// pixel map snapshot each time.
func RenderScene(ctx *cli.Context) error {
	setupLogging(ctx)

	dev, err := deviceFromContext(ctx)
	if err != nil {
		return err
	}

	desc, err := loadDescription(ctx)
	if err != nil {
		return err
	}

	accumFrames := ctx.GlobalInt("accum-frames")
	if accumFrames < 0 {
		return fmt.Errorf("invalid accum-frames value %d", accumFrames)
	}

	sc, err := scene.Assemble(dev, desc)
	if err != nil {
		return err
	}

	channels := engine.Color | engine.Accum
	fb, err := dev.NewFrameBuffer(sc.Width, sc.Height, engine.SRGBA, channels)
	if err != nil {
		return err
	}

	acc := accum.New(fb, accum.EngineRenderer(sc.Renderer, fb), channels)
	if ctx.GlobalBool("stats") {
		acc.OnFrame(func(frame int) {
			displayFrameStats(frame, sc.Renderer.Stats())
		})
	}

	logger.Noticef("rendering %dx%d frames using %d tracer(s)", sc.Width, sc.Height, len(dev.Tracers()))
	return acc.Run(accum.DefaultSnapshots(ctx.GlobalString("first-out"), ctx.GlobalString("accum-out"), accumFrames))
}

func displayFrameStats(frame int, stats engine.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Tracer", "Block height", "% of frame", "Render time"})
	for _, stat := range stats.Tracers {
		table.Append([]string{
			stat.Id,
			fmt.Sprintf("%d", stat.BlockH),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			stat.RenderTime.String(),
		})
	}
	table.SetFooter([]string{"", "", "TOTAL", stats.RenderTime.String()})

	table.Render()
	logger.Noticef("frame %d statistics\n%s", frame, buf.String())
}
