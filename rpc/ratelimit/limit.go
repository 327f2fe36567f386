// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ratelimit - pace incoming requests
package ratelimit

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/priceoracle/fault"
)

// Limit - limiting for a single request
func Limit(limiter *rate.Limiter) error {
	r := limiter.Reserve()
	if !r.OK() {
		return fault.RateLimited
	}
	time.Sleep(r.Delay())
	return nil
}

// LimitN - limiting for a request selecting count items
//
// an empty selection means everything and is charged as maximumCount
func LimitN(limiter *rate.Limiter, count int, maximumCount int) error {
	if count > maximumCount {
		if err := Limit(limiter); nil != err {
			return err
		}
		return fault.RequestTooLarge
	}
	if count <= 0 {
		count = maximumCount
	}

	r := limiter.ReserveN(time.Now(), count)
	if !r.OK() {
		return fault.RateLimited
	}
	time.Sleep(r.Delay())

	return nil
}
