// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fallback - last known good upstream data
//
// entries never expire; every successful upstream read replaces the
// matching entry and the cache is only read when a read fails
package fallback

import (
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/bitmark-inc/priceoracle/upstream"
)

const (
	assetsKey = "assets"
	venuesKey = "venues"

	cleanupInterval = 10 * time.Minute
)

// Cache - concurrency safe store of asset lists, venue lists and
// per venue prices
type Cache struct {
	cache *cache.Cache
}

// New - empty cache
func New() *Cache {
	return &Cache{
		cache: cache.New(cache.NoExpiration, cleanupInterval),
	}
}

// Assets - copy of the last asset list, empty if never set
func (c *Cache) Assets() []upstream.AssetMeta {
	obj, found := c.cache.Get(assetsKey)
	if !found {
		return []upstream.AssetMeta{}
	}
	assets := obj.([]upstream.AssetMeta)
	return append(make([]upstream.AssetMeta, 0, len(assets)), assets...)
}

// SetAssets - replace the asset list
func (c *Cache) SetAssets(assets []upstream.AssetMeta) {
	stored := append(make([]upstream.AssetMeta, 0, len(assets)), assets...)
	c.cache.Set(assetsKey, stored, cache.NoExpiration)
}

// Venues - copy of the last venue list, empty if never set
func (c *Cache) Venues() []upstream.VenueMeta {
	obj, found := c.cache.Get(venuesKey)
	if !found {
		return []upstream.VenueMeta{}
	}
	venues := obj.([]upstream.VenueMeta)
	return append(make([]upstream.VenueMeta, 0, len(venues)), venues...)
}

// SetVenues - replace the venue list
func (c *Cache) SetVenues(venues []upstream.VenueMeta) {
	stored := append(make([]upstream.VenueMeta, 0, len(venues)), venues...)
	c.cache.Set(venuesKey, stored, cache.NoExpiration)
}

// Price - last price of an asset on a venue, zero if never seen
func (c *Cache) Price(assetID string, venueID string) float64 {
	obj, found := c.cache.Get(priceKey(assetID, venueID))
	if !found {
		return 0
	}
	return obj.(float64)
}

// SetPrice - record the last price of an asset on a venue
func (c *Cache) SetPrice(assetID string, venueID string, price float64) {
	c.cache.Set(priceKey(assetID, venueID), price, cache.NoExpiration)
}

func priceKey(assetID string, venueID string) string {
	return "price:" + assetID + ":" + venueID
}
