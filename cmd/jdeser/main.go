package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

var Version = "0.1.0"

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "jdeser"
	app.Version = Version
	app.Usage = "decode Java object serialization streams without the classes that wrote them"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config, c",
			Usage:  "Load configuration from `FILE` (json or yaml)",
			EnvVar: "JDESER_CONFIG",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "log level, debug|info|warn|error",
		},
		cli.BoolFlag{
			Name:  "no-connect",
			Usage: "keep inner class names as they appear on the wire",
		},
	}
	app.Commands = []cli.Command{
		cmdNormalize,
		cmdClasses,
		cmdStats,
	}
	app.Action = func(c *cli.Context) error {
		return cli.ShowAppHelp(c)
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "jdeser: %v\n", err)
		os.Exit(1)
	}
}
