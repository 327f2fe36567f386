// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/libp2p/go-libp2p-core/host"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/priceoracle/identity"
	"github.com/bitmark-inc/priceoracle/p2p"
	"github.com/bitmark-inc/priceoracle/rpc"
	"github.com/bitmark-inc/priceoracle/storage"
)

const (
	defaultDataDirectory = "oracle-cli-data"
	databaseName         = "client.leveldb"
	logDirectory         = "log"
	logFile              = "oracle-cli.log"
)

type metadata struct {
	verbose   bool
	logging   bool
	database  bool
	host      host.Host
	connector *p2p.Connector
	client    *rpc.Client
	cancel    context.CancelFunc
	ctx       context.Context
	log       *logger.L
	e         io.Writer
	w         io.Writer
}

// open the client database, derive the client identity and connect
// to the server with a ping handshake
//
// metadata is registered before anything is opened so that after can
// release whatever was acquired even when setup fails part way
func before(c *cli.Context) error {

	e := c.App.ErrWriter
	w := c.App.Writer
	verbose := c.GlobalBool("verbose")

	// to suppress connecting for certain commands
	command := c.Args().Get(0)
	switch command {
	case "", "version", "help", "h":
		return nil
	}

	server := c.GlobalString("server")
	if "" == server {
		return fmt.Errorf("missing server identity")
	}

	dir, err := filepath.Abs(c.GlobalString("data"))
	if nil != err {
		return err
	}
	logDir := filepath.Join(dir, logDirectory)
	if err := os.MkdirAll(logDir, 0700); nil != err {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &metadata{
		verbose: verbose,
		cancel:  cancel,
		ctx:     ctx,
		e:       e,
		w:       w,
	}
	c.App.Metadata["config"] = m

	level := "warn"
	if verbose {
		level = "debug"
	}
	err = logger.Initialise(logger.Configuration{
		Directory: logDir,
		File:      logFile,
		Size:      1048576,
		Count:     10,
		Levels:    map[string]string{logger.DefaultTag: level},
	})
	if nil != err {
		return err
	}
	m.logging = true
	m.log = logger.New("client")

	if verbose {
		fmt.Fprintf(e, "data directory: %q\n", dir)
	}

	err = storage.Initialise(filepath.Join(dir, databaseName), storage.ReadWrite)
	if nil != err {
		return err
	}
	m.database = true

	seed, err := identity.Seed(identity.RoleDHT)
	if nil != err {
		return err
	}

	m.host, err = p2p.NewHost(ctx, seed, nil)
	if nil != err {
		return err
	}
	if verbose {
		fmt.Fprintf(e, "client identity: %s\n", m.host.ID().Pretty())
	}

	m.connector, err = p2p.NewConnector(m.host, server, c.GlobalStringSlice("connect"), logger.New("connector"))
	if nil != err {
		return err
	}

	m.client = rpc.NewClient(m.connector, rpc.ClientConfiguration{
		RetryLimit: c.GlobalInt("retries"),
		RetryDelay: time.Duration(c.GlobalInt("retry-delay")) * time.Millisecond,
		Timeout:    time.Duration(c.GlobalInt("timeout")) * time.Second,
	}, m.log)

	// handshake before any command so a wrong server fails early
	start := time.Now()
	if err := m.client.Ping(ctx); nil != err {
		return err
	}
	m.log.Infof("connected to: %s in %s", server, time.Since(start))
	if verbose {
		fmt.Fprintf(e, "connected to: %s\n", server)
	}

	return nil
}

// release everything opened by before
func after(c *cli.Context) error {
	m, ok := c.App.Metadata["config"].(*metadata)
	if !ok {
		return nil
	}
	m.release()
	return nil
}

// close in reverse order of opening, skipping anything never opened
func (m *metadata) release() {
	if nil != m.client {
		m.client.Close()
		m.client = nil
	}
	if nil != m.host {
		m.host.Close()
		m.host = nil
	}
	if nil != m.cancel {
		m.cancel()
	}
	if m.database {
		storage.Finalise()
		m.database = false
	}
	if m.logging {
		logger.Finalise()
		m.logging = false
	}
}
