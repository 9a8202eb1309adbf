package cmd

import (
	"errors"

	"github.com/swatinair123/OSprayLoadObj/engine"
	"github.com/swatinair123/OSprayLoadObj/scene"
	"github.com/urfave/cli"
)

// The app metadata key holding the initialized engine device.
const DeviceKey = "device"

var errNoDevice = errors.New("engine device not initialized")

// Get the engine device attached to the cli app.
func deviceFromContext(ctx *cli.Context) (*engine.Device, error) {
	if ctx.App == nil || ctx.App.Metadata == nil {
		return nil, errNoDevice
	}
	dev, ok := ctx.App.Metadata[DeviceKey].(*engine.Device)
	if !ok || dev == nil {
		return nil, errNoDevice
	}
	return dev, nil
}

// Load the scene description selected by the --scene flag (or the built-in
// scene) and apply the --width/--height overrides.
func loadDescription(ctx *cli.Context) (*scene.Description, error) {
	var desc *scene.Description
	if location := ctx.GlobalString("scene"); location != "" {
		logger.Infof("loading scene description from %s", location)

		var err error
		desc, err = scene.Load(location)
		if err != nil {
			return nil, err
		}
	} else {
		desc = scene.Default()
	}

	if ctx.GlobalIsSet("width") {
		desc.Width = ctx.GlobalInt("width")
	}
	if ctx.GlobalIsSet("height") {
		desc.Height = ctx.GlobalInt("height")
	}

	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return desc, nil
}
