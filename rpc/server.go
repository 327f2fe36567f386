// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"github.com/bitmark-inc/logger"
	proto "github.com/gogo/protobuf/proto"
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/priceoracle/counter"
	"github.com/bitmark-inc/priceoracle/fault"
	"github.com/bitmark-inc/priceoracle/quote"
	"github.com/bitmark-inc/priceoracle/rpc/ratelimit"
)

const (
	rateLimitServer = 200
	rateBurstServer = 2 * MaximumPairs
)

// Store - the read side of the snapshot store
type Store interface {
	Latest(symbols []string) ([]quote.Quote, error)
	Historical(symbols []string, from int64, to int64) []quote.Historical
}

// Server - decode requests and dispatch them to the store
type Server struct {
	log      *logger.L
	store    Store
	limiter  *rate.Limiter
	requests counter.Counter
}

// NewServer - create a dispatcher over a store
func NewServer(store Store, log *logger.L) *Server {
	return &Server{
		log:     log,
		store:   store,
		limiter: rate.NewLimiter(rateLimitServer, rateBurstServer),
	}
}

// Requests - number of requests handled so far
func (s *Server) Requests() uint64 {
	return s.requests.Uint64()
}

// Handle - process one request, failures are carried in the reply
func (s *Server) Handle(request *Request) *Reply {
	s.requests.Increment()

	if nil == request {
		return &Reply{Error: fault.MissingParameters.Error()}
	}

	result, err := s.dispatch(request.Method, request.Payload)
	if nil != err {
		s.log.Warnf("method: %q error: %s", request.Method, err)
		return &Reply{Error: err.Error()}
	}

	payload, err := proto.Marshal(result)
	if nil != err {
		s.log.Errorf("method: %q marshal error: %s", request.Method, err)
		return &Reply{Error: err.Error()}
	}
	return &Reply{Payload: payload}
}

func (s *Server) dispatch(method string, payload []byte) (proto.Message, error) {
	if !ValidMethod(method) {
		return nil, fault.InvalidMethod
	}

	switch method {
	case MethodPing:
		if err := ratelimit.Limit(s.limiter); nil != err {
			return nil, err
		}
		var args PingRequest
		if err := proto.Unmarshal(payload, &args); nil != err {
			return nil, fault.MissingParameters
		}
		s.log.Debugf("ping: %d", args.Nonce)
		return &PingReply{Nonce: args.Nonce + 1}, nil

	case MethodLatest:
		var args LatestRequest
		if err := proto.Unmarshal(payload, &args); nil != err {
			return nil, fault.MissingParameters
		}
		if err := ratelimit.LimitN(s.limiter, len(args.Pairs), MaximumPairs); nil != err {
			return nil, err
		}
		pairs, err := normalisePairs(args.Pairs)
		if nil != err {
			return nil, err
		}
		quotes, err := s.store.Latest(pairs)
		if nil != err {
			return nil, err
		}
		reply := &QuotesReply{
			Quotes: make([]*Quote, len(quotes)),
		}
		for i, q := range quotes {
			reply.Quotes[i] = toWire(q, 0)
		}
		s.log.Debugf("latest: %v → %d quotes", pairs, len(quotes))
		return reply, nil

	case MethodHistorical:
		var args HistoricalRequest
		if err := proto.Unmarshal(payload, &args); nil != err {
			return nil, fault.MissingParameters
		}
		if err := ratelimit.LimitN(s.limiter, len(args.Pairs), MaximumPairs); nil != err {
			return nil, err
		}
		if args.From > args.To || args.To < 0 {
			return nil, fault.InvalidRange
		}
		pairs, err := normalisePairs(args.Pairs)
		if nil != err {
			return nil, err
		}
		records := s.store.Historical(pairs, args.From, args.To)
		reply := &QuotesReply{
			Quotes: make([]*Quote, len(records)),
		}
		for i, r := range records {
			reply.Quotes[i] = toWire(r.Quote, r.Timestamp)
		}
		s.log.Debugf("historical: %v [%d, %d] → %d records", pairs, args.From, args.To, len(records))
		return reply, nil
	}
	return nil, fault.InvalidMethod
}
