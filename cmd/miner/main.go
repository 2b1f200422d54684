// Command miner runs the miner role: it registers with a tracker, gossips
// blocks and chains with peer miners, and mines transactions it receives
// from traders.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/jacobireland/cryptonet/internal/logger"
	"github.com/jacobireland/cryptonet/miner"
)

func main() {
	app := cli.NewApp()
	app.Name = "miner"
	app.Usage = "run a cryptonet miner node"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "port",
			Value: "9100",
			Usage: "port to listen on for peer miner connections and trader submissions",
		},
		cli.StringFlag{
			Name:  "tracker",
			Value: "127.0.0.1:9000",
			Usage: "tracker address to register with",
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

	n := miner.NewNode(c.String("port"))

	if err := n.ListenForPeers(); err != nil {
		return err
	}

	go func() {
		if err := n.HandleTracker(c.String("tracker")); err != nil {
			fmt.Fprintln(os.Stderr, "tracker connection lost:", err)
		}
	}()

	// Dump the local chain on an Enter keypress, a console convenience
	// supplementing the core protocol loops above; it never blocks them.
	dumpOnEnter(n)
	return nil
}

func dumpOnEnter(n *miner.Node) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		n.DumpChain()
	}
}
