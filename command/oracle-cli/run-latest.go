// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/urfave/cli"
)

func runLatest(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	quotes, err := m.client.Latest(m.ctx, c.Args())
	if nil != err {
		return err
	}

	return printJSON(m.w, quotes, true)
}
