// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fallback

import (
	"github.com/bitmark-inc/priceoracle/upstream"
)

// data captured 2024-12-08T09:44Z used before any upstream read succeeds
var (
	defaultAssets = []upstream.AssetMeta{
		{ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin", Price: 99259, LastUpdated: 1733651079168},
		{ID: "ethereum", Symbol: "ETH", Name: "Ethereum", Price: 3953.6, LastUpdated: 1733651083087},
		{ID: "ripple", Symbol: "XRP", Name: "XRP", Price: 2.53, LastUpdated: 1733651078285},
		{ID: "tether", Symbol: "USDT", Name: "Tether", Price: 1, LastUpdated: 1733651083792},
		{ID: "solana", Symbol: "SOL", Name: "Solana", Price: 235.44, LastUpdated: 1733651080492},
	}

	defaultVenues = []upstream.VenueMeta{
		{ID: "binance", Name: "Binance", Volume: 266854.7923446081},
		{ID: "bybit_spot", Name: "Bybit", Volume: 61623.65309788268},
		{ID: "okex", Name: "OKX", Volume: 49524.5009821034},
	}

	defaultPrices = map[string]map[string]float64{
		"bitcoin":  {"binance": 99259, "bybit_spot": 99260, "okex": 99258},
		"ethereum": {"binance": 3953, "bybit_spot": 3954, "okex": 3952},
		"ripple":   {"binance": 2.53, "bybit_spot": 2.52, "okex": 2.53},
		"tether":   {"binance": 1, "bybit_spot": 1, "okex": 1},
		"solana":   {"binance": 235.44, "bybit_spot": 235.45, "okex": 235.43},
	}
)

// NewSeeded - cache preloaded with a known top five assets and top
// three venues so the first refresh has something to fall back on
func NewSeeded() *Cache {
	c := New()
	c.SetAssets(defaultAssets)
	c.SetVenues(defaultVenues)
	for asset, venues := range defaultPrices {
		for venue, price := range venues {
			c.SetPrice(asset, venue, price)
		}
	}
	return c
}
