package cmd

import (
	"github.com/urfave/cli"
)

// Display scene description info.
func ShowSceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	desc, err := loadDescription(ctx)
	if err != nil {
		return err
	}

	logger.Noticef("scene information (%dx%d):\n%s", desc.Width, desc.Height, desc.Stats())
	return nil
}
