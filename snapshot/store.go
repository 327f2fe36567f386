// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package snapshot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/priceoracle/quote"
	"github.com/bitmark-inc/priceoracle/storage"
)

// width of the decimal timestamp in a historical key
const timestampDigits = 20

// Store - snapshot access on top of the storage pools
type Store struct {
	log *logger.L
}

// New - create a store, storage must already be initialised
func New(log *logger.L) *Store {
	return &Store{
		log: log,
	}
}

// HistoricalKey - key of one historical record within the pool
func HistoricalKey(symbol string, timestamp int64) []byte {
	return []byte(fmt.Sprintf("%s:%0*d", symbol, timestampDigits, timestamp))
}

// split a historical key into symbol and timestamp
func parseHistoricalKey(key []byte) (string, int64, bool) {
	s := string(key)
	n := strings.LastIndexByte(s, ':')
	if n <= 0 || len(s)-n-1 != timestampDigits {
		return "", 0, false
	}
	timestamp, err := strconv.ParseInt(s[n+1:], 10, 64)
	if nil != err {
		return "", 0, false
	}
	return s[:n], timestamp, true
}

// Put - replace the latest snapshot and append its history
//
// all records are written in a single batch
func (s *Store) Put(snap *quote.Snapshot) error {
	if snap.Timestamp < 0 {
		return fmt.Errorf("negative snapshot timestamp: %d", snap.Timestamp)
	}
	if err := snap.Validate(); nil != err {
		return err
	}

	packed, err := snap.Pack()
	if nil != err {
		return err
	}

	batch := storage.NewBatch()
	batch.Put(storage.Pool.Latest, nil, packed)

	for _, q := range snap.Quotes {
		packedQuote, err := quote.PackQuote(q)
		if nil != err {
			return err
		}
		batch.Put(storage.Pool.Historical, HistoricalKey(q.Symbol, snap.Timestamp), packedQuote)
	}

	if err := batch.Commit(); nil != err {
		s.log.Errorf("snapshot: %d commit error: %s", snap.Timestamp, err)
		return err
	}
	s.log.Debugf("snapshot: %d stored with %d quotes", snap.Timestamp, len(snap.Quotes))
	return nil
}

// Latest - quotes of the latest snapshot matching any of symbols
//
// no symbols means all quotes; snapshot order is preserved; an
// absent snapshot gives an empty result
func (s *Store) Latest(symbols []string) ([]quote.Quote, error) {
	packed, err := storage.Pool.Latest.Get(nil)
	if nil != err {
		return nil, err
	}
	if nil == packed {
		return []quote.Quote{}, nil
	}

	snap, err := quote.UnpackSnapshot(packed)
	if nil != err {
		return nil, err
	}

	set := quote.NewSymbolSet(symbols)
	result := make([]quote.Quote, 0, len(snap.Quotes))
	for _, q := range snap.Quotes {
		if set.Match(q.Symbol) {
			result = append(result, q)
		}
	}
	return result, nil
}

// Historical - collect every record of a history scan
//
// a failing scan is logged and gives an empty result
func (s *Store) Historical(symbols []string, from int64, to int64) []quote.Historical {
	result := []quote.Historical{}
	err := s.NewHistory(symbols, from, to).Map(func(h quote.Historical) error {
		result = append(result, h)
		return nil
	})
	if nil != err {
		s.log.Errorf("historical scan: %v from: %d to: %d error: %s", symbols, from, to, err)
		return []quote.Historical{}
	}
	return result
}
