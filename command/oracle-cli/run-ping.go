// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli"
)

func runPing(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	start := time.Now()
	err := m.client.Ping(m.ctx)
	if nil != err {
		return err
	}

	fmt.Fprintf(m.w, "pong from: %s  time: %s\n", m.connector.Server().Pretty(), time.Since(start))
	return nil
}
