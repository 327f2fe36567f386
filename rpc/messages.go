// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	proto "github.com/gogo/protobuf/proto"

	"github.com/bitmark-inc/priceoracle/fault"
	"github.com/bitmark-inc/priceoracle/quote"
)

// Request - envelope sent by a client
type Request struct {
	Method  string `protobuf:"bytes,1,opt,name=method,proto3" json:"method,omitempty"`
	Payload []byte `protobuf:"bytes,2,opt,name=payload,proto3" json:"payload,omitempty"`
}

func (m *Request) Reset()         { *m = Request{} }
func (m *Request) String() string { return proto.CompactTextString(m) }
func (*Request) ProtoMessage()    {}

// Reply - envelope returned by the server, Error is empty on success
type Reply struct {
	Error   string `protobuf:"bytes,1,opt,name=error,proto3" json:"error,omitempty"`
	Payload []byte `protobuf:"bytes,2,opt,name=payload,proto3" json:"payload,omitempty"`
}

func (m *Reply) Reset()         { *m = Reply{} }
func (m *Reply) String() string { return proto.CompactTextString(m) }
func (*Reply) ProtoMessage()    {}

// PingRequest - liveness check
type PingRequest struct {
	Nonce uint64 `protobuf:"varint,1,opt,name=nonce,proto3" json:"nonce,omitempty"`
}

func (m *PingRequest) Reset()         { *m = PingRequest{} }
func (m *PingRequest) String() string { return proto.CompactTextString(m) }
func (*PingRequest) ProtoMessage()    {}

// PingReply - carries the request nonce plus one
type PingReply struct {
	Nonce uint64 `protobuf:"varint,1,opt,name=nonce,proto3" json:"nonce,omitempty"`
}

func (m *PingReply) Reset()         { *m = PingReply{} }
func (m *PingReply) String() string { return proto.CompactTextString(m) }
func (*PingReply) ProtoMessage()    {}

// LatestRequest - no pairs selects every quote
type LatestRequest struct {
	Pairs []string `protobuf:"bytes,1,rep,name=pairs,proto3" json:"pairs,omitempty"`
}

func (m *LatestRequest) Reset()         { *m = LatestRequest{} }
func (m *LatestRequest) String() string { return proto.CompactTextString(m) }
func (*LatestRequest) ProtoMessage()    {}

// HistoricalRequest - inclusive window in epoch ms
type HistoricalRequest struct {
	Pairs []string `protobuf:"bytes,1,rep,name=pairs,proto3" json:"pairs,omitempty"`
	From  int64    `protobuf:"varint,2,opt,name=from,proto3" json:"from,omitempty"`
	To    int64    `protobuf:"varint,3,opt,name=to,proto3" json:"to,omitempty"`
}

func (m *HistoricalRequest) Reset()         { *m = HistoricalRequest{} }
func (m *HistoricalRequest) String() string { return proto.CompactTextString(m) }
func (*HistoricalRequest) ProtoMessage()    {}

// Exchange - per venue breakdown
type Exchange struct {
	Name   string  `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	Volume float64 `protobuf:"fixed64,2,opt,name=volume,proto3" json:"volume,omitempty"`
}

func (m *Exchange) Reset()         { *m = Exchange{} }
func (m *Exchange) String() string { return proto.CompactTextString(m) }
func (*Exchange) ProtoMessage()    {}

// Quote - a price quote, Timestamp is only set for history
type Quote struct {
	Symbol      string      `protobuf:"bytes,1,opt,name=symbol,proto3" json:"symbol,omitempty"`
	Name        string      `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	Price       float64     `protobuf:"fixed64,3,opt,name=price,proto3" json:"price,omitempty"`
	LastUpdated int64       `protobuf:"varint,4,opt,name=last_updated,json=lastUpdated,proto3" json:"last_updated,omitempty"`
	Exchanges   []*Exchange `protobuf:"bytes,5,rep,name=exchanges,proto3" json:"exchanges,omitempty"`
	Timestamp   int64       `protobuf:"varint,6,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
}

func (m *Quote) Reset()         { *m = Quote{} }
func (m *Quote) String() string { return proto.CompactTextString(m) }
func (*Quote) ProtoMessage()    {}

// QuotesReply - result of both price queries
type QuotesReply struct {
	Quotes []*Quote `protobuf:"bytes,1,rep,name=quotes,proto3" json:"quotes,omitempty"`
}

func (m *QuotesReply) Reset()         { *m = QuotesReply{} }
func (m *QuotesReply) String() string { return proto.CompactTextString(m) }
func (*QuotesReply) ProtoMessage()    {}

func toWire(q quote.Quote, timestamp int64) *Quote {
	exchanges := make([]*Exchange, len(q.Exchanges))
	for i, e := range q.Exchanges {
		exchanges[i] = &Exchange{
			Name:   e.Name,
			Volume: e.Volume,
		}
	}
	return &Quote{
		Symbol:      q.Symbol,
		Name:        q.Name,
		Price:       q.Price,
		LastUpdated: q.LastUpdated,
		Exchanges:   exchanges,
		Timestamp:   timestamp,
	}
}

func fromWire(w *Quote) (quote.Quote, error) {
	if nil == w || !quote.ValidSymbol(w.Symbol) || w.Price < 0 {
		return quote.Quote{}, fault.MalformedResponse
	}
	exchanges := make([]quote.Exchange, 0, len(w.Exchanges))
	for _, e := range w.Exchanges {
		if nil == e {
			return quote.Quote{}, fault.MalformedResponse
		}
		exchanges = append(exchanges, quote.Exchange{
			Name:   e.Name,
			Volume: e.Volume,
		})
	}
	return quote.Quote{
		Symbol:      w.Symbol,
		Name:        w.Name,
		Price:       w.Price,
		LastUpdated: w.LastUpdated,
		Exchanges:   exchanges,
	}, nil
}
