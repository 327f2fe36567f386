// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package poller - repeated client queries against an oracle server
package poller

import (
	"context"
	"errors"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/priceoracle/counter"
	"github.com/bitmark-inc/priceoracle/fault"
	"github.com/bitmark-inc/priceoracle/quote"
)

const (
	DefaultInterval      = 5000 * time.Millisecond
	DefaultErrorDelay    = 1000 * time.Millisecond
	DefaultHistoryWindow = time.Hour
)

// DefaultPairs - symbols fetched individually each cycle
var DefaultPairs = []string{"BTC", "ETH"}

// Client - the queries issued by one cycle
type Client interface {
	Ping(ctx context.Context) error
	Latest(ctx context.Context, pairs []string) ([]quote.Quote, error)
	Historical(ctx context.Context, pairs []string, from int64, to int64) ([]quote.Historical, error)
}

// Configuration - zero values select the defaults
type Configuration struct {
	Interval      time.Duration
	ErrorDelay    time.Duration
	HistoryWindow time.Duration
	Pairs         []string
}

// Report - results of one successful cycle
type Report struct {
	Cycle   uint64             `json:"cycle"`
	Pairs   []quote.Quote      `json:"pairs"`
	All     []quote.Quote      `json:"all"`
	History []quote.Historical `json:"history"`
}

// Poller - background process polling until shutdown or a fatal
// error
type Poller struct {
	log           *logger.L
	client        Client
	interval      time.Duration
	errorDelay    time.Duration
	historyWindow time.Duration
	pairs         []string
	output        func(Report)
	trigger       <-chan struct{}
	fatal         chan error
	cycles        counter.Counter
	now           func() time.Time
}

// New - create a poller delivering each report to output
//
// a receive on trigger starts the next cycle early; it may be nil
func New(client Client, configuration Configuration, output func(Report), trigger <-chan struct{}, log *logger.L) *Poller {
	p := &Poller{
		log:           log,
		client:        client,
		interval:      configuration.Interval,
		errorDelay:    configuration.ErrorDelay,
		historyWindow: configuration.HistoryWindow,
		pairs:         configuration.Pairs,
		output:        output,
		trigger:       trigger,
		fatal:         make(chan error, 1),
		now:           time.Now,
	}
	if p.interval <= 0 {
		p.interval = DefaultInterval
	}
	if p.errorDelay <= 0 {
		p.errorDelay = DefaultErrorDelay
	}
	if p.historyWindow <= 0 {
		p.historyWindow = DefaultHistoryWindow
	}
	if 0 == len(p.pairs) {
		p.pairs = DefaultPairs
	}
	return p
}

// Fatal - receives the error that ended polling
func (p *Poller) Fatal() <-chan error {
	return p.fatal
}

// Cycles - number of successful cycles
func (p *Poller) Cycles() uint64 {
	return p.cycles.Uint64()
}

// Run - poll until shutdown; exhausted retries end polling and are
// reported on Fatal
func (p *Poller) Run(args interface{}, shutdown <-chan struct{}) {
	log := p.log
	log.Info("starting…")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-shutdown:
			cancel()
		case <-ctx.Done():
		}
	}()

loop:
	for {
		delay := p.interval
		if err := p.Cycle(ctx); nil != err {
			switch {
			case nil != ctx.Err():
				break loop
			case errors.Is(err, fault.RetriesExhausted):
				log.Criticalf("polling stopped: %s", err)
				p.fatal <- err
				break loop
			default:
				log.Errorf("cycle error: %s", err)
				delay = p.errorDelay
			}
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			break loop
		case <-p.trigger:
			timer.Stop()
			log.Debug("early cycle")
		case <-timer.C:
		}
	}
	log.Info("stopped")
}

// Cycle - ping, selected pairs, all quotes and recent history
func (p *Poller) Cycle(ctx context.Context) error {
	if err := p.client.Ping(ctx); nil != err {
		return err
	}

	selected, err := p.client.Latest(ctx, p.pairs)
	if nil != err {
		return err
	}

	all, err := p.client.Latest(ctx, nil)
	if nil != err {
		return err
	}

	to := p.now().UnixNano() / int64(time.Millisecond)
	from := to - int64(p.historyWindow/time.Millisecond)
	history, err := p.client.Historical(ctx, p.pairs, from, to)
	if nil != err {
		return err
	}

	n := p.cycles.Increment()
	if nil != p.output {
		p.output(Report{
			Cycle:   n,
			Pairs:   selected,
			All:     all,
			History: history,
		})
	}
	return nil
}
