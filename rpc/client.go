// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	proto "github.com/gogo/protobuf/proto"

	"github.com/bitmark-inc/priceoracle/fault"
	"github.com/bitmark-inc/priceoracle/quote"
)

const (
	DefaultRetryLimit = 3
	DefaultRetryDelay = 1000 * time.Millisecond
	DefaultTimeout    = 10 * time.Second
)

// Transport - carries a request to the server and returns its reply
//
// a lost or unusable channel must be reported as fault.ChannelClosed
// so the client can reconnect and replay
type Transport interface {
	Connect(ctx context.Context) error
	Request(ctx context.Context, request *Request) (*Reply, error)
	Close() error
}

// State - connection state of a client
type State int

// client states
const (
	Disconnected State = iota
	Connecting
	Connected
	Reconnecting
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connecting:
		return "Connecting"
	case Connected:
		return "Connected"
	case Reconnecting:
		return "Reconnecting"
	default:
		return "*Unknown*"
	}
}

// ClientConfiguration - retry and timeout settings, zero values
// select the defaults
type ClientConfiguration struct {
	RetryLimit int
	RetryDelay time.Duration
	Timeout    time.Duration
}

// Client - retrying request issuer
type Client struct {
	sync.Mutex

	log       *logger.L
	transport Transport
	state     State

	retryLimit int
	retryDelay time.Duration
	timeout    time.Duration
}

// NewClient - create a disconnected client
func NewClient(transport Transport, configuration ClientConfiguration, log *logger.L) *Client {
	c := &Client{
		log:        log,
		transport:  transport,
		state:      Disconnected,
		retryLimit: configuration.RetryLimit,
		retryDelay: configuration.RetryDelay,
		timeout:    configuration.Timeout,
	}
	if c.retryLimit <= 0 {
		c.retryLimit = DefaultRetryLimit
	}
	if c.retryDelay <= 0 {
		c.retryDelay = DefaultRetryDelay
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	return c
}

// State - current connection state
func (c *Client) State() State {
	c.Lock()
	defer c.Unlock()
	return c.state
}

// Connect - Disconnected → Connecting → Connected
func (c *Client) Connect(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()
	return c.connect(ctx)
}

// Close - drop the channel
func (c *Client) Close() error {
	c.Lock()
	defer c.Unlock()
	c.state = Disconnected
	return c.transport.Close()
}

// Ping - round trip a random nonce, the reply must carry nonce + 1
func (c *Client) Ping(ctx context.Context) error {
	nonce, err := randomNonce()
	if nil != err {
		return err
	}
	var reply PingReply
	if err := c.call(ctx, MethodPing, &PingRequest{Nonce: nonce}, &reply); nil != err {
		return err
	}
	if nonce+1 != reply.Nonce {
		return fault.InvalidNonce
	}
	return nil
}

// Latest - latest quotes for pairs, no pairs selects all
func (c *Client) Latest(ctx context.Context, pairs []string) ([]quote.Quote, error) {
	var reply QuotesReply
	if err := c.call(ctx, MethodLatest, &LatestRequest{Pairs: upper(pairs)}, &reply); nil != err {
		return nil, err
	}
	quotes := make([]quote.Quote, len(reply.Quotes))
	for i, w := range reply.Quotes {
		q, err := fromWire(w)
		if nil != err {
			return nil, err
		}
		quotes[i] = q
	}
	return quotes, nil
}

// Historical - records for pairs within [from, to] epoch ms
func (c *Client) Historical(ctx context.Context, pairs []string, from int64, to int64) ([]quote.Historical, error) {
	if from > to {
		return nil, fault.InvalidRange
	}
	request := &HistoricalRequest{
		Pairs: upper(pairs),
		From:  from,
		To:    to,
	}
	var reply QuotesReply
	if err := c.call(ctx, MethodHistorical, request, &reply); nil != err {
		return nil, err
	}
	records := make([]quote.Historical, len(reply.Quotes))
	for i, w := range reply.Quotes {
		q, err := fromWire(w)
		if nil != err {
			return nil, err
		}
		records[i] = quote.Historical{
			Quote:     q,
			Timestamp: w.Timestamp,
		}
	}
	return records, nil
}

// issue a request, replaying it after a reconnect while the channel
// keeps closing and attempts remain
func (c *Client) call(ctx context.Context, method string, args proto.Message, reply proto.Message) error {
	payload, err := proto.Marshal(args)
	if nil != err {
		return err
	}
	request := &Request{
		Method:  method,
		Payload: payload,
	}

	c.Lock()
	defer c.Unlock()

	var response *Reply
	for attempt := 1; ; attempt += 1 {
		response, err = c.attempt(ctx, request)
		if nil == err {
			break
		}
		if !fault.IsChannelClosed(err) {
			return err
		}
		if attempt >= c.retryLimit {
			c.log.Errorf("%s: channel closed, giving up after %d attempts", method, attempt)
			c.state = Disconnected
			_ = c.transport.Close()
			return fmt.Errorf("%w: %s after %d attempts", fault.RetriesExhausted, method, attempt)
		}

		c.log.Warnf("%s: attempt: %d channel closed, reconnecting", method, attempt)
		c.state = Reconnecting
		_ = c.transport.Close()
		if err := sleep(ctx, c.retryDelay); nil != err {
			c.state = Disconnected
			return err
		}
	}

	if "" != response.Error {
		return remoteError(response.Error)
	}
	if err := proto.Unmarshal(response.Payload, reply); nil != err {
		return fmt.Errorf("%w: %s", fault.MalformedResponse, err)
	}
	return nil
}

// one request, connecting first if necessary
func (c *Client) attempt(ctx context.Context, request *Request) (*Reply, error) {
	if Connected != c.state {
		if err := c.connect(ctx); nil != err {
			return nil, err
		}
	}

	requestCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reply, err := c.transport.Request(requestCtx, request)
	if nil != err {
		return nil, err
	}
	if nil == reply {
		return nil, fault.MalformedResponse
	}
	return reply, nil
}

func (c *Client) connect(ctx context.Context) error {
	c.state = Connecting
	c.log.Debug("connecting…")

	connectCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.transport.Connect(connectCtx); nil != err {
		c.state = Disconnected
		c.log.Warnf("connect error: %s", err)
		return err
	}
	c.state = Connected
	c.log.Info("connected")
	return nil
}

// wait for d or until ctx ends
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func randomNonce() (uint64, error) {
	buffer := make([]byte, 8)
	if _, err := rand.Read(buffer); nil != err {
		return 0, err
	}
	// keep nonce + 1 from wrapping
	return binary.BigEndian.Uint64(buffer) >> 1, nil
}

func upper(pairs []string) []string {
	result := make([]string, len(pairs))
	for i, p := range pairs {
		result[i] = quote.NormaliseSymbol(p)
	}
	return result
}
