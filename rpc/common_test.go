// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc_test

import (
	"context"
	"testing"

	proto "github.com/gogo/protobuf/proto"

	"github.com/bitmark-inc/priceoracle/quote"
	"github.com/bitmark-inc/priceoracle/rpc"
)

var (
	btc = quote.Quote{
		Symbol:      "BTC",
		Name:        "Bitcoin",
		Price:       42000.5,
		LastUpdated: 1700000000000,
		Exchanges: []quote.Exchange{
			{Name: "Binance", Volume: 266854.79},
			{Name: "OKX", Volume: 49524.5},
		},
	}
	eth = quote.Quote{
		Symbol:      "ETH",
		Name:        "Ethereum",
		Price:       2200,
		LastUpdated: 1700000000001,
		Exchanges:   []quote.Exchange{},
	}
)

// answer a ping request the way a server does
func pingResponder(_ context.Context, request *rpc.Request) (*rpc.Reply, error) {
	var args rpc.PingRequest
	if err := proto.Unmarshal(request.Payload, &args); nil != err {
		return nil, err
	}
	payload, err := proto.Marshal(&rpc.PingReply{Nonce: args.Nonce + 1})
	if nil != err {
		return nil, err
	}
	return &rpc.Reply{Payload: payload}, nil
}

// transport that runs requests through a server in process, with
// both envelopes passing through their wire encoding
type loopback struct {
	t      *testing.T
	server *rpc.Server
}

func (l *loopback) Connect(_ context.Context) error { return nil }
func (l *loopback) Close() error                    { return nil }

func (l *loopback) Request(_ context.Context, request *rpc.Request) (*rpc.Reply, error) {
	packed, err := proto.Marshal(request)
	if nil != err {
		l.t.Fatalf("marshal request error: %s", err)
	}
	var received rpc.Request
	if err := proto.Unmarshal(packed, &received); nil != err {
		l.t.Fatalf("unmarshal request error: %s", err)
	}

	packed, err = proto.Marshal(l.server.Handle(&received))
	if nil != err {
		l.t.Fatalf("marshal reply error: %s", err)
	}
	var reply rpc.Reply
	if err := proto.Unmarshal(packed, &reply); nil != err {
		l.t.Fatalf("unmarshal reply error: %s", err)
	}
	return &reply, nil
}
