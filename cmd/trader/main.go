// Command trader is a thin reference client for the trader role: register
// with a tracker, then submit a single transaction and print the miner's
// response. A full interactive trading client is explicitly out of scope
// (spec §1 treats the trader UI as an external collaborator's concern);
// this exists to exercise the trader package end to end.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/jacobireland/cryptonet/internal/logger"
	"github.com/jacobireland/cryptonet/trader"
)

func main() {
	app := cli.NewApp()
	app.Name = "trader"
	app.Usage = "register with a tracker and submit one transaction"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "port",
			Value: "9200",
			Usage: "port this trader identifies itself with to the tracker",
		},
		cli.StringFlag{
			Name:  "tracker",
			Value: "127.0.0.1:9000",
			Usage: "tracker address to register with",
		},
		cli.StringFlag{
			Name:  "wallet",
			Usage: "this trader's wallet address",
		},
		cli.StringFlag{
			Name:  "to",
			Usage: "recipient wallet address",
		},
		cli.Float64Flag{
			Name:  "amount",
			Usage: "amount to send",
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
	if c.String("wallet") == "" {
		return cli.NewExitError("missing required --wallet", 1)
	}

	t := trader.New(c.String("port"), c.String("wallet"))
	if err := t.Register(c.String("tracker")); err != nil {
		return err
	}
	defer t.Unregister()

	if c.String("to") == "" {
		fmt.Println("registered as", c.String("wallet")+"; pass --to and --amount to send a transaction")
		select {}
	}

	resp, err := t.SendTransaction(c.String("to"), c.Float64("amount"))
	if err != nil {
		return err
	}
	fmt.Println(resp)
	return nil
}
