// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package snapshot - store and query price snapshots
//
// The latest snapshot is a single record that is replaced by each
// refresh.  Every quote of every snapshot is also appended to the
// historical pool in the same write unit so a reader never sees a
// latest snapshot without its history or the reverse.
package snapshot
