// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package aggregate - volume weighted prices across venues
//
// upstream failures never escape this package: rate limits and
// errors are logged and replaced by the fallback cache contents
package aggregate

import (
	"context"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/priceoracle/fallback"
	"github.com/bitmark-inc/priceoracle/fault"
	"github.com/bitmark-inc/priceoracle/quote"
	"github.com/bitmark-inc/priceoracle/upstream"
)

const (
	DefaultAssets         = 5
	DefaultVenues         = 3
	DefaultMaxConcurrency = 8
)

// Configuration - aggregation sizes
type Configuration struct {
	Assets         int `gluamapper:"assets" json:"assets"`
	Venues         int `gluamapper:"venues" json:"venues"`
	MaxConcurrency int `gluamapper:"max_concurrency" json:"max_concurrency"`
}

// VenuePrice - contribution of one venue to a weighted price
type VenuePrice struct {
	VenueID string
	Venue   string
	Price   float64
	Volume  float64
	Fresh   bool // false when the price came from the cache
}

// Weighted - result of a weighted price computation
type Weighted struct {
	Price      float64
	ObservedAt int64 // epoch ms
	PerVenue   []VenuePrice
}

// Engine - aggregation over an upstream feed with cache fallback
type Engine struct {
	log            *logger.L
	feed           upstream.Feed
	cache          *fallback.Cache
	assets         int
	venues         int
	maxConcurrency int
	now            func() time.Time
}

// RequestsPerCycle - upstream reads made by one AllPrices call: the
// two listings plus one ticker read per asset and venue
func RequestsPerCycle(assets int, venues int) int {
	if assets <= 0 {
		assets = DefaultAssets
	}
	if venues <= 0 {
		venues = DefaultVenues
	}
	return assets*venues + 2
}

// New - create an engine, zero configuration values select defaults
func New(configuration Configuration, feed upstream.Feed, cache *fallback.Cache, log *logger.L) *Engine {
	e := &Engine{
		log:            log,
		feed:           feed,
		cache:          cache,
		assets:         configuration.Assets,
		venues:         configuration.Venues,
		maxConcurrency: configuration.MaxConcurrency,
		now:            time.Now,
	}
	if e.assets <= 0 {
		e.assets = DefaultAssets
	}
	if e.venues <= 0 {
		e.venues = DefaultVenues
	}
	if e.maxConcurrency <= 0 {
		e.maxConcurrency = DefaultMaxConcurrency
	}
	return e
}

// TopAssets - fresh top assets, or the cached list on any failure
func (e *Engine) TopAssets(ctx context.Context, count int) []upstream.AssetMeta {
	assets, err := e.feed.TopAssets(ctx, count)
	if nil != err {
		e.degraded("top assets", err)
		return e.cache.Assets()
	}
	e.cache.SetAssets(assets)
	return assets
}

// TopVenues - fresh top venues, or the cached list on any failure
func (e *Engine) TopVenues(ctx context.Context, count int) []upstream.VenueMeta {
	venues, err := e.feed.TopVenues(ctx, count)
	if nil != err {
		e.degraded("top venues", err)
		return e.cache.Venues()
	}
	e.cache.SetVenues(venues)
	return venues
}

// WeightedPrice - Σ(price·volume)/Σvolume over all venues
//
// a venue without a fresh price contributes its cached price, or
// zero, with its reference volume; a zero total volume gives a zero
// price
func (e *Engine) WeightedPrice(ctx context.Context, asset upstream.AssetMeta, venues []upstream.VenueMeta) Weighted {
	perVenue := make([]VenuePrice, len(venues))

	fanOut(ctx, len(venues), e.maxConcurrency, func(i int, acquired bool) {
		venue := venues[i]
		price := 0.0
		fresh := false

		if acquired {
			p, err := e.feed.Tickers(ctx, asset, venue.ID)
			switch {
			case nil != err:
				e.degraded("tickers: "+asset.ID+" on: "+venue.ID, err)
			case p > 0:
				price = p
				fresh = true
				e.cache.SetPrice(asset.ID, venue.ID, p)
			default:
				e.log.Debugf("no %s pair for: %s on: %s", tickerCurrency, asset.ID, venue.ID)
			}
		}
		if !fresh {
			price = e.cache.Price(asset.ID, venue.ID)
		}

		perVenue[i] = VenuePrice{
			VenueID: venue.ID,
			Venue:   venue.Name,
			Price:   price,
			Volume:  venue.Volume,
			Fresh:   fresh,
		}
	})

	return Weighted{
		Price:      weightedMean(perVenue),
		ObservedAt: e.now().UnixNano() / int64(time.Millisecond),
		PerVenue:   perVenue,
	}
}

// AllPrices - one quote per top asset in rank order
func (e *Engine) AllPrices(ctx context.Context) []quote.Quote {
	assets := uniqueAssets(e.TopAssets(ctx, e.assets), e.log)
	venues := e.TopVenues(ctx, e.venues)

	quotes := make([]quote.Quote, len(assets))

	fanOut(ctx, len(assets), e.maxConcurrency, func(i int, _ bool) {
		asset := assets[i]
		w := e.WeightedPrice(ctx, asset, venues)

		exchanges := make([]quote.Exchange, len(w.PerVenue))
		for j, v := range w.PerVenue {
			exchanges[j] = quote.Exchange{
				Name:   v.Venue,
				Volume: v.Volume,
			}
		}

		lastUpdated := asset.LastUpdated
		if 0 == lastUpdated {
			lastUpdated = w.ObservedAt
		}
		quotes[i] = quote.Quote{
			Symbol:      asset.Symbol,
			Name:        asset.Name,
			Price:       w.Price,
			LastUpdated: lastUpdated,
			Exchanges:   exchanges,
		}
	})

	e.log.Infof("aggregated %d assets over %d venues", len(quotes), len(venues))
	return quotes
}

func (e *Engine) degraded(what string, err error) {
	if fault.IsRateLimited(err) {
		e.log.Warnf("%s: rate limited, using cache", what)
		return
	}
	e.log.Warnf("%s: error: %s, using cache", what, err)
}
