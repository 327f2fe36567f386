// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/bitmark-inc/logger"
	protoio "github.com/gogo/protobuf/io"
	"github.com/libp2p/go-libp2p-core/host"
	"github.com/libp2p/go-libp2p-core/mux"
	"github.com/libp2p/go-libp2p-core/network"
	peerlib "github.com/libp2p/go-libp2p-core/peer"
	"github.com/libp2p/go-libp2p-core/peerstore"
	"github.com/libp2p/go-libp2p-core/protocol"
	ma "github.com/multiformats/go-multiaddr"

	"github.com/bitmark-inc/priceoracle/fault"
	"github.com/bitmark-inc/priceoracle/rpc"
)

// Connector - client side transport to a single server
type Connector struct {
	log    *logger.L
	host   host.Host
	server peerlib.ID
	addrs  []ma.Multiaddr
}

// NewConnector - transport to the server with the given public
// identity reachable at the connect addresses
func NewConnector(h host.Host, server string, connect []string, log *logger.L) (*Connector, error) {
	id, err := peerlib.IDB58Decode(server)
	if nil != err {
		return nil, fmt.Errorf("%w: %s", fault.InvalidServerIdentity, err)
	}
	addrs, err := ConnectAddrs(id, connect)
	if nil != err {
		return nil, err
	}
	return &Connector{
		log:    log,
		host:   h,
		server: id,
		addrs:  addrs,
	}, nil
}

// Server - identity of the remote server
func (c *Connector) Server() peerlib.ID {
	return c.server
}

// Connect - dial the server, any failure is a closed channel
func (c *Connector) Connect(ctx context.Context) error {
	addrs, err := resolve(ctx, c.addrs)
	if nil != err {
		return fmt.Errorf("%w: resolve: %s", fault.ChannelClosed, err)
	}

	c.host.Peerstore().AddAddrs(c.server, addrs, peerstore.PermanentAddrTTL)

	info := peerlib.AddrInfo{
		ID:    c.server,
		Addrs: addrs,
	}
	if err := c.host.Connect(ctx, info); nil != err {
		c.log.Warnf("connect to: %s error: %s", c.server.ShortString(), err)
		return fmt.Errorf("%w: %s", fault.ChannelClosed, err)
	}
	c.log.Infof("connected to: %s", info)
	return nil
}

// Request - send one request on a fresh stream and read its reply
func (c *Connector) Request(ctx context.Context, request *rpc.Request) (*rpc.Reply, error) {
	if network.Connected != c.host.Network().Connectedness(c.server) {
		return nil, fault.ChannelClosed
	}

	stream, err := c.host.NewStream(ctx, c.server, protocol.ID(rpc.ProtocolID))
	if nil != err {
		return nil, fmt.Errorf("%w: open stream: %s", fault.ChannelClosed, err)
	}
	defer stream.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetDeadline(deadline)
	}

	if err := protoio.NewDelimitedWriter(stream).WriteMsg(request); nil != err {
		_ = stream.Reset()
		return nil, fmt.Errorf("%w: write: %s", fault.ChannelClosed, err)
	}

	var reply rpc.Reply
	err = protoio.NewDelimitedReader(stream, rpc.MaximumMessageSize).ReadMsg(&reply)
	if nil != err {
		_ = stream.Reset()
		return nil, c.classify(ctx, err)
	}
	return &reply, nil
}

// Close - drop the connection to the server
func (c *Connector) Close() error {
	return c.host.Network().ClosePeer(c.server)
}

// transport failures become ChannelClosed, timeouts and undecodable
// replies do not
func (c *Connector) classify(ctx context.Context, err error) error {
	if nil != ctx.Err() {
		return ctx.Err()
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, mux.ErrReset) {
		return fmt.Errorf("%w: read: %s", fault.ChannelClosed, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return context.DeadlineExceeded
		}
		return fmt.Errorf("%w: read: %s", fault.ChannelClosed, err)
	}
	return fmt.Errorf("%w: %s", fault.MalformedResponse, err)
}
