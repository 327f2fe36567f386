// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"time"

	"github.com/bitmark-inc/logger"
	protoio "github.com/gogo/protobuf/io"
	"github.com/libp2p/go-libp2p-core/host"
	"github.com/libp2p/go-libp2p-core/network"
	"github.com/libp2p/go-libp2p-core/protocol"

	"github.com/bitmark-inc/priceoracle/counter"
	"github.com/bitmark-inc/priceoracle/fault"
	"github.com/bitmark-inc/priceoracle/rpc"
)

const (
	DefaultMaximumStreams = 100
	streamTimeout         = 30 * time.Second
)

// Handler - processes one decoded request
type Handler interface {
	Handle(request *rpc.Request) *rpc.Reply
}

// Listener - serves requests arriving on the rpc protocol
type Listener struct {
	log            *logger.L
	handler        Handler
	streams        counter.Counter
	maximumStreams uint64
}

// NewListener - create a listener, maximumStreams <= 0 selects the
// default
func NewListener(handler Handler, maximumStreams int, log *logger.L) *Listener {
	if maximumStreams <= 0 {
		maximumStreams = DefaultMaximumStreams
	}
	return &Listener{
		log:            log,
		handler:        handler,
		maximumStreams: uint64(maximumStreams),
	}
}

// Register - start accepting streams on the host
func (l *Listener) Register(h host.Host) {
	h.SetStreamHandler(protocol.ID(rpc.ProtocolID), l.handleStream)
	l.log.Infof("serving: %s on: %s", rpc.ProtocolID, h.ID().Pretty())
}

// Unregister - stop accepting streams
func (l *Listener) Unregister(h host.Host) {
	h.RemoveStreamHandler(protocol.ID(rpc.ProtocolID))
}

// Streams - number of streams currently being served
func (l *Listener) Streams() uint64 {
	return l.streams.Uint64()
}

// one request and one reply per stream
func (l *Listener) handleStream(stream network.Stream) {
	defer stream.Close()

	log := l.log
	remote := stream.Conn().RemotePeer().ShortString()

	_ = stream.SetDeadline(time.Now().Add(streamTimeout))
	writer := protoio.NewDelimitedWriter(stream)

	if !l.streams.IncrementIfBelow(l.maximumStreams) {
		log.Warnf("peer: %s refused: %s", remote, fault.TooManyStreams)
		_ = writer.WriteMsg(&rpc.Reply{Error: fault.TooManyStreams.Error()})
		return
	}
	defer l.streams.Decrement()

	reader := protoio.NewDelimitedReader(stream, rpc.MaximumMessageSize)
	var request rpc.Request
	if err := reader.ReadMsg(&request); nil != err {
		log.Debugf("peer: %s read error: %s", remote, err)
		_ = stream.Reset()
		return
	}

	log.Debugf("peer: %s method: %q", remote, request.Method)
	reply := l.handler.Handle(&request)

	if err := writer.WriteMsg(reply); nil != err {
		log.Warnf("peer: %s write error: %s", remote, err)
		_ = stream.Reset()
	}
}
