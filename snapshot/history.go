// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package snapshot

import (
	"sort"

	"github.com/bitmark-inc/priceoracle/quote"
	"github.com/bitmark-inc/priceoracle/storage"
)

// records read from leveldb per iteration step
const historyBlockSize = 100

// History - lazy scan of historical records in key order
//
// with symbols each symbol is scanned only within its time window,
// otherwise the whole pool is scanned and filtered by time
type History struct {
	symbols []string
	from    int64
	to      int64

	position int
	cursor   *storage.FetchCursor
	finished bool
}

// NewHistory - prepare a scan; nothing is read until Next or Map
func (s *Store) NewHistory(symbols []string, from int64, to int64) *History {
	set := quote.NewSymbolSet(symbols)
	sorted := make([]string, 0, len(set))
	for symbol := range set {
		sorted = append(sorted, symbol)
	}
	sort.Strings(sorted)

	if from < 0 {
		from = 0
	}

	h := &History{
		symbols: sorted,
		from:    from,
		to:      to,
	}
	h.Reset()
	return h
}

// Reset - restart the scan from the beginning
func (h *History) Reset() {
	h.position = 0
	h.cursor = nil
	h.finished = h.to < h.from
}

// Next - return up to count records, an empty result marks the end
func (h *History) Next(count int) ([]quote.Historical, error) {
	results := make([]quote.Historical, 0, count)

	for !h.finished && len(results) < count {
		if nil == h.cursor && !h.openCursor() {
			h.finished = true
			break
		}

		elements, err := h.cursor.Fetch(count - len(results))
		if nil != err {
			return nil, err
		}
		if 0 == len(elements) {
			h.cursor = nil
			if 0 == len(h.symbols) {
				h.finished = true
			}
			continue
		}

		for _, e := range elements {
			symbol, timestamp, ok := parseHistoricalKey(e.Key)
			if !ok || timestamp < h.from || timestamp > h.to {
				continue
			}
			q, err := quote.UnpackQuote(e.Value)
			if nil != err {
				return nil, err
			}
			q.Symbol = symbol
			results = append(results, quote.Historical{
				Quote:     q,
				Timestamp: timestamp,
			})
		}
	}
	return results, nil
}

// Map - run f on every remaining record
func (h *History) Map(f func(quote.Historical) error) error {
	for {
		block, err := h.Next(historyBlockSize)
		if nil != err {
			return err
		}
		if 0 == len(block) {
			return nil
		}
		for _, item := range block {
			if err := f(item); nil != err {
				return err
			}
		}
	}
}

// position a cursor for the next window, false if none remain
func (h *History) openCursor() bool {
	pool := storage.Pool.Historical

	if 0 == len(h.symbols) {
		if h.position > 0 {
			return false
		}
		h.position += 1
		h.cursor = pool.NewFetchCursor()
		return true
	}

	if h.position >= len(h.symbols) {
		return false
	}
	symbol := h.symbols[h.position]
	h.position += 1

	limit := append(HistoricalKey(symbol, h.to), 0x00)
	h.cursor = pool.NewFetchCursor().Seek(HistoricalKey(symbol, h.from)).Limit(limit)
	return true
}
