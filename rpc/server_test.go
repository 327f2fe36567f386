// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc_test

import (
	"context"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/golang/mock/gomock"
	proto "github.com/gogo/protobuf/proto"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/priceoracle/fault"
	"github.com/bitmark-inc/priceoracle/fixtures"
	"github.com/bitmark-inc/priceoracle/quote"
	"github.com/bitmark-inc/priceoracle/rpc"
	"github.com/bitmark-inc/priceoracle/rpc/mocks"
)

func newServer(t *testing.T) (*gomock.Controller, *mocks.MockStore, *rpc.Server) {
	fixtures.SetupTestLogger()
	ctl := gomock.NewController(t)
	store := mocks.NewMockStore(ctl)
	return ctl, store, rpc.NewServer(store, logger.New(fixtures.LogCategory))
}

func request(t *testing.T, method string, args proto.Message) *rpc.Request {
	payload, err := proto.Marshal(args)
	if nil != err {
		t.Fatalf("marshal error: %s", err)
	}
	return &rpc.Request{Method: method, Payload: payload}
}

func TestServerPing(t *testing.T) {
	ctl, _, server := newServer(t)
	defer teardownClient(ctl)

	reply := server.Handle(request(t, rpc.MethodPing, &rpc.PingRequest{Nonce: 41}))
	assert.Equal(t, "", reply.Error, "unexpected error")

	var ping rpc.PingReply
	assert.Nil(t, proto.Unmarshal(reply.Payload, &ping), "unmarshal error")
	assert.Equal(t, uint64(42), ping.Nonce, "wrong nonce")
	assert.Equal(t, uint64(1), server.Requests(), "request not counted")
}

func TestServerInvalidMethod(t *testing.T) {
	ctl, _, server := newServer(t)
	defer teardownClient(ctl)

	reply := server.Handle(&rpc.Request{Method: "getAllTheThings"})
	assert.Equal(t, fault.InvalidMethod.Error(), reply.Error, "wrong error")

	reply = server.Handle(nil)
	assert.Equal(t, fault.MissingParameters.Error(), reply.Error, "wrong error")
}

func TestServerLatest(t *testing.T) {
	ctl, store, server := newServer(t)
	defer teardownClient(ctl)

	store.EXPECT().Latest([]string{"BTC", "ETH"}).Return([]quote.Quote{btc, eth}, nil).Times(1)

	reply := server.Handle(request(t, rpc.MethodLatest, &rpc.LatestRequest{Pairs: []string{"btc", "Eth"}}))
	assert.Equal(t, "", reply.Error, "unexpected error")

	var quotes rpc.QuotesReply
	assert.Nil(t, proto.Unmarshal(reply.Payload, &quotes), "unmarshal error")
	assert.Equal(t, 2, len(quotes.Quotes), "wrong count")
	assert.Equal(t, "BTC", quotes.Quotes[0].Symbol, "wrong symbol")
	assert.Equal(t, 2, len(quotes.Quotes[0].Exchanges), "wrong exchanges")
}

func TestServerRejectsBadPairs(t *testing.T) {
	ctl, _, server := newServer(t)
	defer teardownClient(ctl)

	reply := server.Handle(request(t, rpc.MethodLatest, &rpc.LatestRequest{Pairs: []string{"BTC:99"}}))
	assert.Equal(t, fault.InvalidSymbol.Error(), reply.Error, "wrong error")

	many := make([]string, rpc.MaximumPairs+1)
	for i := range many {
		many[i] = "BTC"
	}
	reply = server.Handle(request(t, rpc.MethodLatest, &rpc.LatestRequest{Pairs: many}))
	assert.Equal(t, fault.RequestTooLarge.Error(), reply.Error, "wrong error")
}

func TestServerHistoricalRange(t *testing.T) {
	ctl, _, server := newServer(t)
	defer teardownClient(ctl)

	reply := server.Handle(request(t, rpc.MethodHistorical, &rpc.HistoricalRequest{From: 10, To: 5}))
	assert.Equal(t, fault.InvalidRange.Error(), reply.Error, "wrong error")
}

func TestClientServerLoopback(t *testing.T) {
	ctl, store, server := newServer(t)
	defer teardownClient(ctl)

	client := rpc.NewClient(&loopback{t: t, server: server}, rpc.ClientConfiguration{}, logger.New(fixtures.LogCategory))
	ctx := context.Background()

	assert.Nil(t, client.Ping(ctx), "ping error")

	store.EXPECT().Latest([]string{}).Return([]quote.Quote{btc, eth}, nil).Times(1)
	quotes, err := client.Latest(ctx, nil)
	assert.Nil(t, err, "latest error")
	assert.Equal(t, []quote.Quote{btc, eth}, quotes, "quotes changed in transit")

	records := []quote.Historical{
		{Quote: btc, Timestamp: 1700000000000},
		{Quote: btc, Timestamp: 1700003600000},
	}
	store.EXPECT().Historical([]string{"BTC"}, int64(1699996400000), int64(1700007200000)).Return(records).Times(1)
	history, err := client.Historical(ctx, []string{"btc"}, 1699996400000, 1700007200000)
	assert.Nil(t, err, "historical error")
	assert.Equal(t, records, history, "records changed in transit")
}
