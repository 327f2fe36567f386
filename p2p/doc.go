// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package p2p - libp2p transport for the price oracle
//
// the host identity is derived from a stored seed so a server keeps
// the same public identity across restarts; clients locate the
// server by that identity plus one or more connect addresses
package p2p
