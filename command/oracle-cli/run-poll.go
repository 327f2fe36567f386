// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/priceoracle/background"
	"github.com/bitmark-inc/priceoracle/p2p"
	"github.com/bitmark-inc/priceoracle/poller"
)

func runPoll(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	var trigger chan struct{}
	if c.Bool("watch") {
		announcer, err := p2p.NewAnnouncer(m.ctx, m.host, logger.New("announcer"))
		if nil != err {
			return err
		}
		announcements, err := announcer.Watch(m.ctx, m.connector.Server())
		if nil != err {
			return err
		}
		trigger = make(chan struct{}, 1)
		go func() {
			for a := range announcements {
				m.log.Debugf("snapshot announced: %d  quotes: %d", a.Timestamp, a.Quotes)
				select {
				case trigger <- struct{}{}:
				default:
				}
			}
		}()
	}

	output := func(report poller.Report) {
		if m.verbose {
			printJSON(m.w, report, false)
			return
		}
		fmt.Fprintf(m.w, "cycle: %d  pairs: %d  all: %d  history: %d\n", report.Cycle, len(report.Pairs), len(report.All), len(report.History))
	}

	p := poller.New(m.client, poller.Configuration{
		Interval: time.Duration(c.Int("interval")) * time.Millisecond,
		Pairs:    c.Args(),
	}, output, trigger, logger.New("poller"))

	processes := background.Start(background.Processes{p}, nil)
	defer processes.Stop()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(ch)

	select {
	case sig := <-ch:
		if m.verbose {
			fmt.Fprintf(m.e, "received signal: %v\n", sig)
		}
		return nil
	case err := <-p.Fatal():
		return err
	}
}
