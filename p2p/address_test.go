// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/priceoracle/fault"
	"github.com/bitmark-inc/priceoracle/identity"
	"github.com/bitmark-inc/priceoracle/p2p"
)

func TestListenAddrs(t *testing.T) {
	addrs, err := p2p.ListenAddrs([]string{"*:2136", "127.0.0.1:2137", "/ip4/10.0.0.1/tcp/2138", "*:2136"})
	assert.Nil(t, err, "wrong error")

	actual := make([]string, len(addrs))
	for i, a := range addrs {
		actual[i] = a.String()
	}
	assert.Equal(t, []string{
		"/ip4/0.0.0.0/tcp/2136",
		"/ip6/::/tcp/2136",
		"/ip4/127.0.0.1/tcp/2137",
		"/ip4/10.0.0.1/tcp/2138",
	}, actual, "wrong addresses")
}

func TestListenAddrsInvalid(t *testing.T) {
	_, err := p2p.ListenAddrs(nil)
	assert.Equal(t, fault.NoListenAddresses, err, "wrong error")

	_, err = p2p.ListenAddrs([]string{"127.0.0.1:0"})
	assert.True(t, errors.Is(err, fault.InvalidAddress), "wrong error: %v", err)

	_, err = p2p.ListenAddrs([]string{"localhost:2136"})
	assert.True(t, errors.Is(err, fault.InvalidAddress), "wrong error: %v", err)
}

func TestConnectAddrs(t *testing.T) {
	server, err := identity.PublicID(seed(1))
	assert.Nil(t, err, "identity error")
	other, err := identity.PublicID(seed(2))
	assert.Nil(t, err, "identity error")

	addrs, err := p2p.ConnectAddrs(server, []string{
		"/dns4/oracle.example.com/tcp/2136",
		"/ip4/127.0.0.1/tcp/2136/p2p/" + server.Pretty(),
	})
	assert.Nil(t, err, "wrong error")
	assert.Equal(t, "/dns4/oracle.example.com/tcp/2136", addrs[0].String(), "wrong address")
	assert.Equal(t, "/ip4/127.0.0.1/tcp/2136", addrs[1].String(), "p2p suffix kept")

	_, err = p2p.ConnectAddrs(server, []string{"/ip4/127.0.0.1/tcp/2136/p2p/" + other.Pretty()})
	assert.True(t, errors.Is(err, fault.InvalidServerIdentity), "wrong error: %v", err)

	_, err = p2p.ConnectAddrs(server, []string{})
	assert.Equal(t, fault.NoConnectAddresses, err, "wrong error")
}
