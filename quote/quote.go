// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package quote - the price records shared by the store, the
// aggregator and the RPC layer
package quote

import (
	"strings"

	"github.com/bitmark-inc/priceoracle/fault"
)

// Exchange - contribution of one venue to a quote
type Exchange struct {
	Name   string  `json:"name"`
	Volume float64 `json:"volume"`
}

// Quote - weighted price of one asset
type Quote struct {
	Symbol      string     `json:"symbol"`
	Name        string     `json:"name"`
	Price       float64    `json:"price"`
	LastUpdated int64      `json:"lastUpdated"` // epoch milliseconds
	Exchanges   []Exchange `json:"exchanges"`
}

// Historical - a quote as captured by one snapshot
type Historical struct {
	Quote
	Timestamp int64 `json:"timestamp"` // capture time, epoch milliseconds
}

// Snapshot - the complete set of quotes from one refresh
type Snapshot struct {
	Timestamp int64
	Quotes    []Quote
}

// NormaliseSymbol - canonical form of an asset code
func NormaliseSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ValidSymbol - symbols are used inside storage keys
func ValidSymbol(symbol string) bool {
	return "" != symbol && !strings.ContainsAny(symbol, ": \t\r\n")
}

// NewSnapshot - create a snapshot normalising all symbols
func NewSnapshot(timestamp int64, quotes []Quote) *Snapshot {
	s := &Snapshot{
		Timestamp: timestamp,
		Quotes:    make([]Quote, len(quotes)),
	}
	for i, q := range quotes {
		q.Symbol = NormaliseSymbol(q.Symbol)
		s.Quotes[i] = q
	}
	return s
}

// Validate - at most one quote per symbol and no negative prices
func (s *Snapshot) Validate() error {
	seen := make(map[string]struct{}, len(s.Quotes))
	for _, q := range s.Quotes {
		if !ValidSymbol(q.Symbol) {
			return fault.InvalidSymbol
		}
		if q.Price < 0 {
			return fault.InvalidPrice
		}
		if _, ok := seen[q.Symbol]; ok {
			return fault.SnapshotDuplicateSymbol
		}
		seen[q.Symbol] = struct{}{}
	}
	return nil
}

// SymbolSet - normalised set of symbols for filtering
//
// an empty set matches everything
type SymbolSet map[string]struct{}

// NewSymbolSet - build a set from a list of symbols in any case
func NewSymbolSet(symbols []string) SymbolSet {
	set := make(SymbolSet, len(symbols))
	for _, s := range symbols {
		if s = NormaliseSymbol(s); "" != s {
			set[s] = struct{}{}
		}
	}
	return set
}

// Match - true if the set is empty or contains the symbol
func (set SymbolSet) Match(symbol string) bool {
	if 0 == len(set) {
		return true
	}
	_, ok := set[NormaliseSymbol(symbol)]
	return ok
}
