package main

import (
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/colorsensor/adapter"
	"github.com/mklimuk/colorsensor/cmd/colorsensor/console"
	"github.com/mklimuk/colorsensor/snsctx"
)

var indexFlag = &cli.IntFlag{
	Name:  "index",
	Value: -1,
	Usage: "device index when several bridges are attached",
}

var mcp2221Cmd = cli.Command{
	Name:  "mcp2221",
	Usage: "USB to I2C bridge maintenance",
	Subcommands: cli.Commands{
		&mcp2221StatusCmd,
		&mcp2221ReleaseCmd,
	},
}

var mcp2221StatusCmd = cli.Command{
	Name:  "status",
	Flags: []cli.Flag{indexFlag},
	Action: func(c *cli.Context) error {
		a := adapter.NewMCP2221(adapter.WithDeviceIndex(c.Int("index")))
		status, err := a.Status(snsctx.SetVerbose(c.Context, c.Bool("verbose")))
		if err != nil {
			return console.Exit(1, "adapter communication error: %s", console.Red(err))
		}
		return encodeYAML(status)
	},
}

var mcp2221ReleaseCmd = cli.Command{
	Name:  "release",
	Usage: "cancel a stuck I2C transfer",
	Flags: []cli.Flag{indexFlag},
	Action: func(c *cli.Context) error {
		a := adapter.NewMCP2221(adapter.WithDeviceIndex(c.Int("index")))
		status, err := a.ReleaseBus(snsctx.SetVerbose(c.Context, c.Bool("verbose")))
		if err != nil {
			return console.Exit(1, "adapter communication error: %s", console.Red(err))
		}
		return encodeYAML(status)
	},
}
