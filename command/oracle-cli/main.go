// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/priceoracle/poller"
	"github.com/bitmark-inc/priceoracle/rpc"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {

	app := cli.NewApp()
	app.Name = "oracle-cli"
	app.Usage = "query a price oracle server"
	app.Version = version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:   "server, s",
			Value:  "",
			Usage:  "*server identity `ID`",
			EnvVar: "ORACLE_SERVER",
		},
		cli.StringSliceFlag{
			Name:  "connect, c",
			Usage: "*server address `HOST:PORT` or multiaddr, may be repeated",
		},
		cli.StringFlag{
			Name:  "data, d",
			Value: defaultDataDirectory,
			Usage: " directory for the client identity and logs `DIR`",
		},
		cli.IntFlag{
			Name:  "retries, r",
			Value: rpc.DefaultRetryLimit,
			Usage: " attempts per request when the channel closes `COUNT`",
		},
		cli.IntFlag{
			Name:  "retry-delay",
			Value: int(rpc.DefaultRetryDelay.Milliseconds()),
			Usage: " wait between attempts `MS`",
		},
		cli.IntFlag{
			Name:  "timeout, t",
			Value: int(rpc.DefaultTimeout.Seconds()),
			Usage: " per request timeout `SECONDS`",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "ping",
			Usage:     "check the server responds",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{},
			Action:    runPing,
		},
		{
			Name:      "latest",
			Usage:     "latest prices, all symbols if none given",
			ArgsUsage: "[SYMBOL...]",
			Flags:     []cli.Flag{},
			Action:    runLatest,
		},
		{
			Name:      "history",
			Usage:     "historical prices, all symbols if none given",
			ArgsUsage: "[SYMBOL...]",
			Flags: []cli.Flag{
				cli.Int64Flag{
					Name:  "from, f",
					Value: 0,
					Usage: " start epoch `MS` [default: one hour before --to]",
				},
				cli.Int64Flag{
					Name:  "to, t",
					Value: 0,
					Usage: " end epoch `MS` [default: now]",
				},
			},
			Action: runHistory,
		},
		{
			Name:      "poll",
			Usage:     "repeatedly query the server until interrupted",
			ArgsUsage: "[SYMBOL...]",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "interval, i",
					Value: int(poller.DefaultInterval.Milliseconds()),
					Usage: " delay between cycles `MS`",
				},
				cli.BoolFlag{
					Name:  "watch, w",
					Usage: " also start a cycle whenever the server announces a snapshot",
				},
			},
			Action: runPoll,
		},
		{
			Name:  "version",
			Usage: "display oracle-cli version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	app.Before = before
	app.After = after

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}
