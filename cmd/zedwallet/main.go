// Copyright (c) 2024 The Zedovium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// zedwallet is the standalone wallet CLI: create and load addresses, check
// balances, and send transactions against a running zedd node, the Go
// counterpart of the original wallet_cli.py REPL.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "zedwallet",
		Usage: "command-line wallet for the Zedovium network",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "node",
				Aliases: []string{"n"},
				Value:   "http://127.0.0.1:4000",
				Usage:   "zedd node URL to connect to",
			},
		},
		Commands: []*cli.Command{
			newWalletCommand,
			balanceCommand,
			sendCommand,
			infoCommand,
			addressCommand,
			validateCommand,
			transactionsCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func clientFromContext(c *cli.Context) *client {
	return newClient(c.String("node"))
}
