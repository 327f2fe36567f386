// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package poller_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/priceoracle/background"
	"github.com/bitmark-inc/priceoracle/fault"
	"github.com/bitmark-inc/priceoracle/fixtures"
	"github.com/bitmark-inc/priceoracle/poller"
	"github.com/bitmark-inc/priceoracle/poller/mocks"
	"github.com/bitmark-inc/priceoracle/quote"
)

var btc = quote.Quote{Symbol: "BTC", Name: "Bitcoin", Price: 1}

type reports struct {
	sync.Mutex
	items []poller.Report
}

func (r *reports) add(report poller.Report) {
	r.Lock()
	r.items = append(r.items, report)
	r.Unlock()
}

func (r *reports) count() int {
	r.Lock()
	defer r.Unlock()
	return len(r.items)
}

func expectCycle(client *mocks.MockClient) {
	client.EXPECT().Ping(gomock.Any()).Return(nil)
	client.EXPECT().Latest(gomock.Any(), poller.DefaultPairs).Return([]quote.Quote{btc}, nil)
	client.EXPECT().Latest(gomock.Any(), gomock.Nil()).Return([]quote.Quote{btc}, nil)
	client.EXPECT().Historical(gomock.Any(), poller.DefaultPairs, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ []string, from int64, to int64) ([]quote.Historical, error) {
			if to-from != int64(time.Hour/time.Millisecond) {
				return nil, fmt.Errorf("wrong window: %d", to-from)
			}
			return []quote.Historical{}, nil
		})
}

func TestCycle(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	ctl := gomock.NewController(t)
	defer ctl.Finish()
	client := mocks.NewMockClient(ctl)

	r := &reports{}
	p := poller.New(client, poller.Configuration{}, r.add, nil, logger.New(fixtures.LogCategory))

	expectCycle(client)
	assert.Nil(t, p.Cycle(context.Background()), "cycle error")
	assert.Equal(t, 1, r.count(), "no report")
	assert.Equal(t, uint64(1), r.items[0].Cycle, "wrong cycle number")
	assert.Equal(t, []quote.Quote{btc}, r.items[0].Pairs, "wrong pairs")
}

func TestRunStopsOnShutdown(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	ctl := gomock.NewController(t)
	defer ctl.Finish()
	client := mocks.NewMockClient(ctl)

	client.EXPECT().Ping(gomock.Any()).Return(nil).AnyTimes()
	client.EXPECT().Latest(gomock.Any(), gomock.Any()).Return([]quote.Quote{btc}, nil).AnyTimes()
	client.EXPECT().Historical(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return([]quote.Historical{}, nil).AnyTimes()

	r := &reports{}
	trigger := make(chan struct{})
	p := poller.New(client, poller.Configuration{Interval: time.Hour}, r.add, trigger, logger.New(fixtures.LogCategory))

	processes := background.Start(background.Processes{p}, nil)

	deadline := time.Now().Add(5 * time.Second)
	for r.count() < 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	trigger <- struct{}{}
	for r.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	stopped := make(chan struct{})
	go func() {
		processes.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("poller did not stop")
	}
	assert.Equal(t, 2, r.count(), "trigger did not start a cycle")
}

func TestRunContinuesAfterOtherErrors(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	ctl := gomock.NewController(t)
	defer ctl.Finish()
	client := mocks.NewMockClient(ctl)

	gomock.InOrder(
		client.EXPECT().Ping(gomock.Any()).Return(fault.InvalidNonce),
		client.EXPECT().Ping(gomock.Any()).Return(fmt.Errorf("%w: ping after 3 attempts", fault.RetriesExhausted)),
	)

	p := poller.New(client, poller.Configuration{ErrorDelay: time.Millisecond}, nil, nil, logger.New(fixtures.LogCategory))
	processes := background.Start(background.Processes{p}, nil)
	defer processes.Stop()

	select {
	case err := <-p.Fatal():
		assert.Contains(t, err.Error(), fault.RetriesExhausted.Error(), "wrong fatal error")
	case <-time.After(5 * time.Second):
		t.Fatal("no fatal error")
	}
	assert.Equal(t, uint64(0), p.Cycles(), "unexpected successful cycle")
}
