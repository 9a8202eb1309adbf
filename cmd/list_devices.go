package cmd

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// List the tracers attached to the engine device.
func ListDevices(ctx *cli.Context) error {
	setupLogging(ctx)

	dev, err := deviceFromContext(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Tracer", "Type", "Speed"})
	var totalSpeed uint32
	for _, tr := range dev.Tracers() {
		table.Append([]string{tr.Id(), "cpu", fmt.Sprintf("%d", tr.Speed())})
		totalSpeed += tr.Speed()
	}
	table.SetFooter([]string{"", "TOTAL", fmt.Sprintf("%d", totalSpeed)})
	table.Render()

	logger.Noticef("engine provides %d tracer(s) (debug mode: %t):\n%s", len(dev.Tracers()), dev.Debug(), buf.String())
	return nil
}
