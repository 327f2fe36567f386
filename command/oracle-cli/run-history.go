// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"time"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/priceoracle/poller"
)

func runHistory(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	to := c.Int64("to")
	if 0 == to {
		to = time.Now().UnixNano() / int64(time.Millisecond)
	}
	from := c.Int64("from")
	if 0 == from {
		from = to - int64(poller.DefaultHistoryWindow/time.Millisecond)
	}

	history, err := m.client.Historical(m.ctx, c.Args(), from, to)
	if nil != err {
		return err
	}

	return printJSON(m.w, history, true)
}
