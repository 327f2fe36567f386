// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rpc - price oracle request/response protocol
//
// every request travels on its own stream as one delimited Request
// message answered by one delimited Reply message; the payloads are
// the per method messages from rpc.proto
//
//   ping                 PingRequest       → PingReply (nonce + 1)
//   getLatestPrices      LatestRequest     → QuotesReply
//   getHistoricalPrices  HistoricalRequest → QuotesReply
package rpc
