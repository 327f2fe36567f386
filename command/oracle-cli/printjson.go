// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"io"
)

// write one JSON value per line, indented only when asked so that
// polled reports stay line oriented
func printJSON(handle io.Writer, message interface{}, indent bool) error {
	encoder := json.NewEncoder(handle)
	if indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(message)
}
