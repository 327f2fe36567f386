// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package upstream - read only access to an external price feed
package upstream

import (
	"context"
)

// AssetMeta - one entry of the top assets by market rank
type AssetMeta struct {
	ID          string
	Symbol      string
	Name        string
	Price       float64
	LastUpdated int64 // epoch ms
}

// VenueMeta - one entry of the top venues by volume rank
type VenueMeta struct {
	ID     string
	Name   string
	Volume float64 // reference 24h volume in BTC
}

// Feed - the three upstream reads used by aggregation
//
// a rate limited read returns fault.RateLimited, an unusable body
// returns fault.MalformedResponse; Tickers returns a zero price when
// the venue has no matching pair
type Feed interface {
	TopAssets(ctx context.Context, count int) ([]AssetMeta, error)
	TopVenues(ctx context.Context, count int) ([]VenueMeta, error)
	Tickers(ctx context.Context, asset AssetMeta, venueID string) (float64, error)
}
