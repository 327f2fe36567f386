// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"github.com/bitmark-inc/priceoracle/fault"
	"github.com/bitmark-inc/priceoracle/quote"
)

// the closed set of methods
const (
	MethodPing       = "ping"
	MethodLatest     = "getLatestPrices"
	MethodHistorical = "getHistoricalPrices"
)

const (
	// ProtocolID - libp2p protocol carrying the requests
	ProtocolID = "/priceoracle/rpc/1.0.0"

	// MaximumPairs - most symbols a single request may select
	MaximumPairs = 100

	// MaximumMessageSize - largest delimited message accepted
	MaximumMessageSize = 4 * 1024 * 1024
)

// ValidMethod - true for a method the server implements
func ValidMethod(method string) bool {
	switch method {
	case MethodPing, MethodLatest, MethodHistorical:
		return true
	default:
		return false
	}
}

// normalise requested pairs and reject any unusable as a key
func normalisePairs(pairs []string) ([]string, error) {
	if len(pairs) > MaximumPairs {
		return nil, fault.RequestTooLarge
	}
	result := make([]string, 0, len(pairs))
	for _, p := range pairs {
		p = quote.NormaliseSymbol(p)
		if !quote.ValidSymbol(p) {
			return nil, fault.InvalidSymbol
		}
		result = append(result, p)
	}
	return result, nil
}

// errors a server may return, matched by text on the client
var remoteErrors = []error{
	fault.InvalidMethod,
	fault.InvalidRange,
	fault.InvalidSymbol,
	fault.MissingParameters,
	fault.RateLimited,
	fault.RequestTooLarge,
	fault.TooManyStreams,
}

// map a reply error string back to a known fault where possible
func remoteError(text string) error {
	for _, e := range remoteErrors {
		if e.Error() == text {
			return e
		}
	}
	return fault.ProcessError(text)
}
