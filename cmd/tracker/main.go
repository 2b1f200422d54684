// Command tracker runs the tracker role: it accepts miner and trader
// registrations and broadcasts peer-list/wallet-directory updates.
// Flag parsing uses urfave/cli; the flags are declared in this file.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/jacobireland/cryptonet/internal/logger"
	"github.com/jacobireland/cryptonet/tracker"
)

func main() {
	app := cli.NewApp()
	app.Name = "tracker"
	app.Usage = "run the cryptonet tracker"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "addr",
			Value: ":9000",
			Usage: "address to listen on for miner and trader connections",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug-level logging",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Bool("debug") {
		logger.SetLevel(logger.LevelDebug)
	}

	t := tracker.New()
	if err := t.Listen(c.String("addr")); err != nil {
		return err
	}

	select {}
}
