// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package snapshot_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/priceoracle/quote"
	"github.com/bitmark-inc/priceoracle/snapshot"
)

// three snapshots one hour apart
func populate(t *testing.T, s *snapshot.Store) {
	for i := int64(0); i < 3; i += 1 {
		snap := quote.NewSnapshot(baseTime+i*hour, []quote.Quote{
			makeQuote("BTC", 40000+float64(i)),
			makeQuote("ETH", 2000+float64(i)),
			makeQuote("BTCX", 1),
		})
		if err := s.Put(snap); nil != err {
			t.Fatalf("put error: %s", err)
		}
	}
}

func TestHistoricalTwoSnapshotsOneHourApart(t *testing.T) {
	s := setup(t)
	defer teardown()

	for i := int64(0); i < 2; i += 1 {
		snap := quote.NewSnapshot(baseTime+i*hour, []quote.Quote{makeQuote("BTC", 100+float64(i))})
		assert.Nil(t, s.Put(snap), "put error")
	}

	records := s.Historical([]string{"BTC"}, baseTime-hour, baseTime+hour)
	assert.Equal(t, 2, len(records), "wrong count")
	assert.Equal(t, baseTime, records[0].Timestamp, "wrong first timestamp")
	assert.Equal(t, baseTime+hour, records[1].Timestamp, "wrong second timestamp")
	assert.Equal(t, float64(101), records[1].Price, "wrong price")
}

func TestHistoricalWindowIsInclusive(t *testing.T) {
	s := setup(t)
	defer teardown()
	populate(t, s)

	records := s.Historical([]string{"btc"}, baseTime+hour, baseTime+2*hour)
	assert.Equal(t, 2, len(records), "wrong count")
	for _, r := range records {
		assert.Equal(t, "BTC", r.Symbol, "symbol leaked from neighbour")
	}

	records = s.Historical([]string{"BTC"}, baseTime+1, baseTime+hour-1)
	assert.Equal(t, 0, len(records), "window should be empty")
}

func TestHistoricalSymbolsInKeyOrder(t *testing.T) {
	s := setup(t)
	defer teardown()
	populate(t, s)

	records := s.Historical([]string{"ETH", "BTC", "eth"}, baseTime, baseTime)
	assert.Equal(t, 2, len(records), "wrong count")
	assert.Equal(t, "BTC", records[0].Symbol, "wrong order")
	assert.Equal(t, "ETH", records[1].Symbol, "wrong order")
}

func TestHistoricalAllSymbols(t *testing.T) {
	s := setup(t)
	defer teardown()
	populate(t, s)

	records := s.Historical(nil, baseTime+hour, baseTime+5*hour)
	assert.Equal(t, 6, len(records), "wrong count")
	for _, r := range records {
		assert.True(t, r.Timestamp >= baseTime+hour, "record before window")
	}
}

func TestHistoricalInvertedRange(t *testing.T) {
	s := setup(t)
	defer teardown()
	populate(t, s)

	records := s.Historical([]string{"BTC"}, baseTime+hour, baseTime)
	assert.NotNil(t, records, "nil result")
	assert.Equal(t, 0, len(records), "wrong count")
}

func TestHistoryNextInBlocks(t *testing.T) {
	s := setup(t)
	defer teardown()
	populate(t, s)

	h := s.NewHistory([]string{"BTC", "ETH"}, 0, baseTime+10*hour)

	total := 0
	for {
		block, err := h.Next(2)
		assert.Nil(t, err, "next error")
		if 0 == len(block) {
			break
		}
		assert.True(t, len(block) <= 2, "block too large")
		total += len(block)
	}
	assert.Equal(t, 6, total, "wrong total")

	h.Reset()
	block, err := h.Next(100)
	assert.Nil(t, err, "next error")
	assert.Equal(t, 6, len(block), "reset did not restart")
}
