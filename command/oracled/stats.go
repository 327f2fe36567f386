// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"runtime"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/priceoracle/p2p"
	"github.com/bitmark-inc/priceoracle/refresh"
	"github.com/bitmark-inc/priceoracle/rpc"
)

const (
	statsDelay = 60 * time.Second
	mega       = 1048576
)

func memstats(server *rpc.Server, listener *p2p.Listener, refresher *refresh.Refresher) {

	log := logger.New("memory")

	for {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		text, err := json.Marshal(m)
		if nil != err {
			log.Errorf("marshal error: %s", err)
		} else {
			log.Debugf("stats: %s", text)
		}
		a := m.Alloc / mega
		t := m.TotalAlloc / mega
		s := m.Sys / mega
		log.Warnf("allocated: %d M  cumulative: %d M  OS virtual: %d M", a, t, s)

		completed, failed := refresher.Cycles()
		log.Infof("requests: %d  open streams: %d  refreshes: %d  failed: %d", server.Requests(), listener.Streams(), completed, failed)

		time.Sleep(statsDelay)
	}
}
