// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/libp2p/go-libp2p-core/host"
	peerlib "github.com/libp2p/go-libp2p-core/peer"
	ma "github.com/multiformats/go-multiaddr"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/priceoracle/fault"
	"github.com/bitmark-inc/priceoracle/fixtures"
	"github.com/bitmark-inc/priceoracle/identity"
	"github.com/bitmark-inc/priceoracle/p2p"
	"github.com/bitmark-inc/priceoracle/quote"
	"github.com/bitmark-inc/priceoracle/rpc"
)

func seed(n byte) []byte {
	s := make([]byte, identity.SeedLength)
	for i := range s {
		s[i] = n
	}
	return s
}

// fixed data store
type store struct{}

func (store) Latest(symbols []string) ([]quote.Quote, error) {
	return []quote.Quote{{Symbol: "BTC", Name: "Bitcoin", Price: 1, Exchanges: []quote.Exchange{}}}, nil
}

func (store) Historical(symbols []string, from int64, to int64) []quote.Historical {
	return []quote.Historical{}
}

func newServerHost(t *testing.T, ctx context.Context) (host.Host, *p2p.Listener) {
	listen, err := ma.NewMultiaddr("/ip4/127.0.0.1/tcp/0")
	assert.Nil(t, err, "multiaddr error")

	h, err := p2p.NewHost(ctx, seed(1), []ma.Multiaddr{listen})
	if nil != err {
		t.Fatalf("server host error: %s", err)
	}
	log := logger.New(fixtures.LogCategory)
	l := p2p.NewListener(rpc.NewServer(store{}, log), 0, log)
	l.Register(h)
	return h, l
}

func newClient(t *testing.T, ctx context.Context, server host.Host) (host.Host, *p2p.Connector, *rpc.Client) {
	h, err := p2p.NewHost(ctx, seed(2), nil)
	if nil != err {
		t.Fatalf("client host error: %s", err)
	}
	log := logger.New(fixtures.LogCategory)
	connector, err := p2p.NewConnector(h, server.ID().Pretty(), []string{server.Addrs()[0].String()}, log)
	if nil != err {
		t.Fatalf("connector error: %s", err)
	}
	client := rpc.NewClient(connector, rpc.ClientConfiguration{
		RetryDelay: 10 * time.Millisecond,
		Timeout:    5 * time.Second,
	}, log)
	return h, connector, client
}

func TestHostIdentityFromSeed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h, err := p2p.NewHost(ctx, seed(7), nil)
	assert.Nil(t, err, "host error")
	defer h.Close()

	expected, err := identity.PublicID(seed(7))
	assert.Nil(t, err, "identity error")
	assert.Equal(t, expected, h.ID(), "host identity not derived from seed")
}

func TestRequestOverStream(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server, _ := newServerHost(t, ctx)
	defer server.Close()

	clientHost, _, client := newClient(t, ctx, server)
	defer clientHost.Close()

	assert.Nil(t, client.Ping(ctx), "ping error")
	assert.Equal(t, rpc.Connected, client.State(), "wrong state")

	quotes, err := client.Latest(ctx, []string{"btc"})
	assert.Nil(t, err, "latest error")
	assert.Equal(t, 1, len(quotes), "wrong count")
	assert.Equal(t, "BTC", quotes[0].Symbol, "wrong symbol")
}

func TestRequestWithoutConnection(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server, _ := newServerHost(t, ctx)
	defer server.Close()

	clientHost, connector, _ := newClient(t, ctx, server)
	defer clientHost.Close()

	_, err := connector.Request(ctx, &rpc.Request{Method: rpc.MethodPing})
	assert.Equal(t, fault.ChannelClosed, err, "wrong error")
}

func TestServerGoneExhaustsRetries(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server, _ := newServerHost(t, ctx)
	clientHost, _, client := newClient(t, ctx, server)
	defer clientHost.Close()

	assert.Nil(t, client.Ping(ctx), "ping error")

	server.Close()

	err := client.Ping(ctx)
	assert.True(t, errors.Is(err, fault.RetriesExhausted), "wrong error: %v", err)
}

func TestAnnouncementsFromServerOnly(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := logger.New(fixtures.LogCategory)

	server, _ := newServerHost(t, ctx)
	defer server.Close()

	listen, err := ma.NewMultiaddr("/ip4/127.0.0.1/tcp/0")
	assert.Nil(t, err, "multiaddr error")
	other, err := p2p.NewHost(ctx, seed(3), []ma.Multiaddr{listen})
	if nil != err {
		t.Fatalf("other host error: %s", err)
	}
	defer other.Close()

	clientHost, err := p2p.NewHost(ctx, seed(2), nil)
	if nil != err {
		t.Fatalf("client host error: %s", err)
	}
	defer clientHost.Close()

	serverAnnouncer, err := p2p.NewAnnouncer(ctx, server, log)
	assert.Nil(t, err, "server announcer error")
	otherAnnouncer, err := p2p.NewAnnouncer(ctx, other, log)
	assert.Nil(t, err, "other announcer error")
	clientAnnouncer, err := p2p.NewAnnouncer(ctx, clientHost, log)
	assert.Nil(t, err, "client announcer error")

	for _, h := range []host.Host{server, other} {
		err := clientHost.Connect(ctx, peerlib.AddrInfo{ID: h.ID(), Addrs: h.Addrs()})
		assert.Nil(t, err, "connect error")
	}

	watchCtx, stopWatching := context.WithCancel(ctx)
	defer stopWatching()
	announcements, err := clientAnnouncer.Watch(watchCtx, server.ID())
	assert.Nil(t, err, "watch error")

	// the mesh forms asynchronously so keep publishing until delivery
	var received p2p.Announcement
	deadline := time.After(20 * time.Second)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
loop:
	for {
		select {
		case received = <-announcements:
			break loop
		case <-ticker.C:
			_ = otherAnnouncer.Announce(999, 1)
			_ = serverAnnouncer.Announce(1000, 5)
		case <-deadline:
			t.Fatal("no announcement received")
		}
	}
	assert.Equal(t, int64(1000), received.Timestamp, "announcement from wrong peer")
	assert.Equal(t, uint32(5), received.Quotes, "wrong quote count")

	// only the other host publishes now, nothing should be delivered
	drain := time.After(500 * time.Millisecond)
drained:
	for {
		select {
		case a := <-announcements:
			assert.Equal(t, int64(1000), a.Timestamp, "announcement from wrong peer")
		case <-drain:
			break drained
		}
	}
	for i := 0; i < 5; i += 1 {
		_ = otherAnnouncer.Announce(999, 1)
	}
	select {
	case a, ok := <-announcements:
		if ok {
			t.Errorf("unexpected announcement: %v", a)
		}
	case <-time.After(time.Second):
	}

	stopWatching()
	select {
	case _, ok := <-announcements:
		for ok {
			_, ok = <-announcements
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch channel not closed after cancel")
	}
}
