// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package aggregate

import (
	"context"
	"sync"

	"github.com/bitmark-inc/logger"
	"golang.org/x/sync/semaphore"

	"github.com/bitmark-inc/priceoracle/quote"
	"github.com/bitmark-inc/priceoracle/upstream"
)

const tickerCurrency = "USDT"

// run f for every index with at most min(count, limit) running at
// once; acquired is false if ctx ended before a slot was free and f
// must then use cached data only
func fanOut(ctx context.Context, count int, limit int, f func(i int, acquired bool)) {
	if 0 == count {
		return
	}
	size := limit
	if count < size {
		size = count
	}
	sem := semaphore.NewWeighted(int64(size))

	wg := sync.WaitGroup{}
	for i := 0; i < count; i += 1 {
		if err := sem.Acquire(ctx, 1); nil != err {
			f(i, false)
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			f(i, true)
		}(i)
	}
	wg.Wait()
}

func weightedMean(venues []VenuePrice) float64 {
	total := 0.0
	sum := 0.0
	for _, v := range venues {
		if v.Volume <= 0 {
			continue
		}
		total += v.Volume
		sum += v.Price * v.Volume
	}
	if 0 == total {
		return 0
	}
	return sum / total
}

// first occurrence wins; symbols unusable as keys are dropped
func uniqueAssets(assets []upstream.AssetMeta, log *logger.L) []upstream.AssetMeta {
	seen := make(map[string]struct{}, len(assets))
	result := make([]upstream.AssetMeta, 0, len(assets))
	for _, a := range assets {
		a.Symbol = quote.NormaliseSymbol(a.Symbol)
		if !quote.ValidSymbol(a.Symbol) {
			log.Warnf("asset: %q has unusable symbol: %q", a.ID, a.Symbol)
			continue
		}
		if _, ok := seen[a.Symbol]; ok {
			log.Warnf("asset: %q duplicates symbol: %q", a.ID, a.Symbol)
			continue
		}
		seen[a.Symbol] = struct{}{}
		result = append(result, a)
	}
	return result
}
