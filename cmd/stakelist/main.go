package main

import (
	"fmt"
	"io"
	"os"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/urfave/cli"
)

type metadata struct {
	log     logger.Logger
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero"

func fileFlag() cli.StringFlag {
	return cli.StringFlag{
		Name:  "file, f",
		Value: "",
		Usage: "*stake list buffer `FILE`",
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "stakelist"
	app.Usage = "inspect and prepare stake list buffers"
	app.Version = version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "header",
			Usage:     "show the header of a stake list buffer",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{fileFlag()},
			Action:    runHeader,
		},
		{
			Name:      "list",
			Usage:     "show every live record",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{fileFlag()},
			Action:    runList,
		},
		{
			Name:      "find",
			Usage:     "show the first record for an owner and token",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				fileFlag(),
				cli.StringFlag{
					Name:  "owner, o",
					Value: "",
					Usage: "*owner identity `BASE58`",
				},
				cli.StringFlag{
					Name:  "token, t",
					Value: "",
					Usage: "*token identity `BASE58`",
				},
			},
			Action: runFind,
		},
		{
			Name:      "init",
			Usage:     "create an empty stake list buffer",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				fileFlag(),
				cli.UintFlag{
					Name:  "capacity, c",
					Value: 16,
					Usage: " number of record slots `COUNT`",
				},
				cli.BoolFlag{
					Name:  "force",
					Usage: " overwrite an existing file",
				},
			},
			Action: runInit,
		},
		{
			Name:      "authority",
			Usage:     "show the staking authority for an owner and token",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "program, p",
					Value: "",
					Usage: "*program identity `BASE58`",
				},
				cli.StringFlag{
					Name:  "owner, o",
					Value: "",
					Usage: "*owner identity `BASE58`",
				},
				cli.StringFlag{
					Name:  "token, t",
					Value: "",
					Usage: "*token identity `BASE58`",
				},
				cli.StringFlag{
					Name:  "tag",
					Value: "transient",
					Usage: " domain tag `STRING`",
				},
			},
			Action: runAuthority,
		},
		{
			Name:  "version",
			Usage: "display stakelist version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	app.Before = func(c *cli.Context) error {
		verbose := c.GlobalBool("verbose")
		level := "NOOP"
		if verbose {
			level = "DEBUG"
		}
		logger.New(level)
		c.App.Metadata["config"] = &metadata{
			log:     logger.Sugar.WithServiceName(app.Name),
			verbose: verbose,
			e:       c.App.ErrWriter,
			w:       c.App.Writer,
		}
		return nil
	}
	return app
}

func main() {
	app := newApp()
	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		logger.OnExit()
		os.Exit(1)
	}
	logger.OnExit()
}
