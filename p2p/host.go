// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"context"
	"time"

	libp2p "github.com/libp2p/go-libp2p"
	connmgr "github.com/libp2p/go-libp2p-connmgr"
	"github.com/libp2p/go-libp2p-core/host"
	tls "github.com/libp2p/go-libp2p-tls"
	ma "github.com/multiformats/go-multiaddr"

	"github.com/bitmark-inc/priceoracle/identity"
)

const (
	connectionsLow   = 50
	connectionsHigh  = 200
	connectionsGrace = 30 * time.Second
)

// NewHost - create a host with the identity derived from seed
//
// with no listen addresses the host only dials out
func NewHost(ctx context.Context, seed []byte, listen []ma.Multiaddr) (host.Host, error) {
	privateKey, err := identity.PrivateKey(seed)
	if nil != err {
		return nil, err
	}

	options := []libp2p.Option{
		libp2p.Identity(privateKey),
		libp2p.Security(tls.ID, tls.New),
		libp2p.ConnectionManager(connmgr.NewConnManager(connectionsLow, connectionsHigh, connectionsGrace)),
	}
	if len(listen) > 0 {
		options = append(options, libp2p.ListenAddrs(listen...))
	}
	return libp2p.New(ctx, options...)
}
