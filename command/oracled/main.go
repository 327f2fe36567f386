// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/priceoracle/aggregate"
	"github.com/bitmark-inc/priceoracle/background"
	"github.com/bitmark-inc/priceoracle/fallback"
	"github.com/bitmark-inc/priceoracle/identity"
	"github.com/bitmark-inc/priceoracle/mode"
	"github.com/bitmark-inc/priceoracle/p2p"
	"github.com/bitmark-inc/priceoracle/refresh"
	"github.com/bitmark-inc/priceoracle/rpc"
	"github.com/bitmark-inc/priceoracle/snapshot"
	"github.com/bitmark-inc/priceoracle/storage"
	"github.com/bitmark-inc/priceoracle/upstream"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
		{Long: "memory-stats", HasArg: getoptions.NO_ARGUMENT, Short: 'm'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		processSetupCommand(program, []string{"version"})
		return
	}

	if len(options["help"]) > 0 {
		processSetupCommand(program, []string{"help"})
		return
	}

	// these commands do not require the configuration and
	// process data needed for initial setup
	if len(arguments) > 0 && processSetupCommand(program, arguments) {
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := getConfiguration(configurationFile)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// these commands require the configuration and
	// perform enquiries on the configuration
	if len(arguments) > 0 && processConfigCommand(arguments, theConfiguration) {
		return
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("theConfiguration: %v", theConfiguration)

	// ------------------
	// start of real main
	// ------------------

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	// set the initial system mode - before any background tasks are started
	err = mode.Initialise()
	if nil != err {
		log.Criticalf("mode initialise error: %s", err)
		exitwithstatus.Message("mode initialise error: %s", err)
	}
	defer mode.Finalise()

	log.Infof("database: %q", theConfiguration.Database.Name)
	log.Debugf("%s = %#v", "Upstream", theConfiguration.Upstream)
	log.Debugf("%s = %#v", "Aggregate", theConfiguration.Aggregate)
	log.Debugf("%s = %#v", "Refresh", theConfiguration.Refresh)

	// start the data storage
	log.Info("initialise storage")
	err = storage.Initialise(theConfiguration.Database.Name, storage.ReadWrite)
	if nil != err {
		log.Criticalf("storage initialise error: %s", err)
		exitwithstatus.Message("storage initialise error: %s", err)
	}
	defer storage.Finalise()

	// these commands are allowed to access the internal database
	if len(arguments) > 0 && processDataCommand(log, arguments) {
		return
	}

	seed, err := identity.Seed(identity.RoleRPC)
	if nil != err {
		log.Criticalf("identity seed error: %s", err)
		exitwithstatus.Message("identity seed error: %s", err)
	}

	listen, err := p2p.ListenAddrs(theConfiguration.Listen)
	if nil != err {
		log.Criticalf("listen address error: %s", err)
		exitwithstatus.Message("listen address error: %s", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("initialise p2p host")
	h, err := p2p.NewHost(ctx, seed, listen)
	if nil != err {
		log.Criticalf("p2p host error: %s", err)
		exitwithstatus.Message("p2p host error: %s", err)
	}
	defer h.Close()

	log.Infof("server identity: %s", h.ID().Pretty())
	for _, a := range h.Addrs() {
		log.Infof("listening on: %s", a)
	}

	var announcer refresh.Announcer
	if theConfiguration.Announce {
		a, err := p2p.NewAnnouncer(ctx, h, logger.New("announcer"))
		if nil != err {
			log.Criticalf("announcer initialise error: %s", err)
			exitwithstatus.Message("announcer initialise error: %s", err)
		}
		announcer = a
	}

	store := snapshot.New(logger.New("snapshot"))

	server := rpc.NewServer(store, logger.New("rpc"))
	listener := p2p.NewListener(server, theConfiguration.MaximumStreams, logger.New("listener"))
	listener.Register(h)
	defer listener.Unregister(h)

	if !mode.Set(mode.Listening) {
		log.Critical("cannot switch to listening mode")
		exitwithstatus.Message("cannot switch to listening mode")
	}
	log.Infof("mode: %s", mode.String())

	perCycle := aggregate.RequestsPerCycle(theConfiguration.Aggregate.Assets, theConfiguration.Aggregate.Venues)
	log.Infof("upstream reads per refresh: %d", perCycle)
	if refresh.DefaultSchedule == theConfiguration.Refresh.Schedule && theConfiguration.Upstream.RequestsPerMinute < 2*perCycle {
		log.Warnf("upstream budget: %d/minute is below two refreshes of: %d reads, some prices will come from the cache", theConfiguration.Upstream.RequestsPerMinute, perCycle)
	}

	feed := upstream.NewCoinGecko(theConfiguration.Upstream, logger.New("upstream"))
	engine := aggregate.New(theConfiguration.Aggregate, feed, fallback.NewSeeded(), logger.New("aggregate"))

	refresher, err := refresh.New(theConfiguration.Refresh, engine, store, announcer, logger.New("refresh"))
	if nil != err {
		log.Criticalf("refresh initialise error: %s", err)
		exitwithstatus.Message("refresh initialise error: %s", err)
	}

	processes := background.Start(background.Processes{refresher}, nil)
	defer processes.Stop()

	// if memory logging enabled
	if len(options["memory-stats"]) > 0 {
		go memstats(server, listener, refresher)
	}

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("server identity: %s\n", h.ID().Pretty())
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}

	log.Info("shutting down…")
	mode.Set(mode.Stopped)
}
