package cmd

import (
	"github.com/swatinair123/OSprayLoadObj/log"
	"github.com/urfave/cli"
)

var logger = log.New("osprayloadobj")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") && log.GetLevel() > log.Info {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
