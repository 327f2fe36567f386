// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package refresh - periodic aggregation into the snapshot store
package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/robfig/cron/v3"

	"github.com/bitmark-inc/priceoracle/counter"
	"github.com/bitmark-inc/priceoracle/fault"
	"github.com/bitmark-inc/priceoracle/quote"
)

const (
	DefaultSchedule = "@every 30s"
	DefaultTimeout  = 25 // seconds
)

// Configuration - refresh settings
type Configuration struct {
	Schedule string `gluamapper:"schedule" json:"schedule"`
	Timeout  int    `gluamapper:"timeout" json:"timeout"`
}

// Aggregator - source of fresh quotes
type Aggregator interface {
	AllPrices(ctx context.Context) []quote.Quote
}

// Writer - destination of snapshots
type Writer interface {
	Put(snap *quote.Snapshot) error
}

// Announcer - told about every stored snapshot
type Announcer interface {
	Announce(timestamp int64, quotes int) error
}

// schedules may carry an optional seconds field or a descriptor
var parser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Refresher - background process running one refresh per tick
type Refresher struct {
	log        *logger.L
	aggregator Aggregator
	writer     Writer
	announcer  Announcer
	schedule   string
	timeout    time.Duration
	cycles     counter.Counter
	failures   counter.Counter
	now        func() time.Time
}

// New - create a refresher; announcer may be nil
func New(configuration Configuration, aggregator Aggregator, writer Writer, announcer Announcer, log *logger.L) (*Refresher, error) {
	schedule := configuration.Schedule
	if "" == schedule {
		schedule = DefaultSchedule
	}
	if _, err := parser.Parse(schedule); nil != err {
		return nil, fmt.Errorf("invalid refresh schedule: %q: %s", schedule, err)
	}
	timeout := configuration.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Refresher{
		log:        log,
		aggregator: aggregator,
		writer:     writer,
		announcer:  announcer,
		schedule:   schedule,
		timeout:    time.Duration(timeout) * time.Second,
		now:        time.Now,
	}, nil
}

// Cycles - number of completed and failed cycles
func (r *Refresher) Cycles() (uint64, uint64) {
	return r.cycles.Uint64(), r.failures.Uint64()
}

// Run - refresh at once, then on every tick until shutdown
func (r *Refresher) Run(args interface{}, shutdown <-chan struct{}) {
	log := r.log
	log.Infof("starting with schedule: %q", r.schedule)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-shutdown
		cancel()
	}()

	_ = r.Cycle(ctx)

	c := cron.New(
		cron.WithParser(parser),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{log: log})),
		cron.WithLogger(cronLogger{log: log}),
	)
	if _, err := c.AddFunc(r.schedule, func() { _ = r.Cycle(ctx) }); nil != err {
		log.Criticalf("schedule: %q error: %s", r.schedule, err)
		<-ctx.Done()
		return
	}
	c.Start()

	<-ctx.Done()
	log.Info("shutting down…")
	<-c.Stop().Done()
	log.Info("stopped")
}

// Cycle - aggregate, store and announce one snapshot
//
// a failure is logged and left for the next tick
func (r *Refresher) Cycle(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	quotes := r.aggregator.AllPrices(ctx)
	if 0 == len(quotes) {
		r.failures.Increment()
		r.log.Warn("no quotes aggregated, keeping previous snapshot")
		return fault.NoQuotes
	}

	timestamp := r.now().UnixNano() / int64(time.Millisecond)
	snap := quote.NewSnapshot(timestamp, quotes)
	if err := r.writer.Put(snap); nil != err {
		r.failures.Increment()
		r.log.Errorf("store snapshot: %d error: %s", timestamp, err)
		return err
	}
	r.cycles.Increment()
	r.log.Infof("snapshot: %d stored with: %d quotes", timestamp, len(quotes))

	if nil != r.announcer {
		if err := r.announcer.Announce(timestamp, len(quotes)); nil != err {
			r.log.Warnf("announce: %d error: %s", timestamp, err)
		}
	}
	return nil
}

// route cron diagnostics to the refresh log
type cronLogger struct {
	log *logger.L
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugf("cron: %s %v", msg, keysAndValues)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorf("cron: %s error: %s %v", msg, err, keysAndValues)
}
