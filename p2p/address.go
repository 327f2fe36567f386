// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	peerlib "github.com/libp2p/go-libp2p-core/peer"
	ma "github.com/multiformats/go-multiaddr"
	madns "github.com/multiformats/go-multiaddr-dns"

	"github.com/bitmark-inc/priceoracle/fault"
)

// ListenAddrs - convert listen entries to multiaddresses
//
// an entry is either a multiaddress or host:port where a host of
// "*" listens on both IPv4 and IPv6
func ListenAddrs(listen []string) ([]ma.Multiaddr, error) {
	result := make([]ma.Multiaddr, 0, len(listen))
	for _, entry := range dualStack(listen) {
		a, err := parseAddr(entry)
		if nil != err {
			return nil, err
		}
		result = append(result, a)
	}
	if 0 == len(result) {
		return nil, fault.NoListenAddresses
	}
	return result, nil
}

// ConnectAddrs - parse connect entries for a known server
//
// a trailing /p2p component must name the server itself and is
// removed
func ConnectAddrs(server peerlib.ID, connect []string) ([]ma.Multiaddr, error) {
	result := make([]ma.Multiaddr, 0, len(connect))
	for _, entry := range connect {
		a, err := parseAddr(entry)
		if nil != err {
			return nil, err
		}
		if v, err := a.ValueForProtocol(ma.P_P2P); nil == err {
			id, err := peerlib.IDB58Decode(v)
			if nil != err || id != server {
				return nil, fmt.Errorf("%w: address: %q", fault.InvalidServerIdentity, entry)
			}
			suffix, err := ma.NewMultiaddr("/p2p/" + v)
			if nil != err {
				return nil, err
			}
			a = a.Decapsulate(suffix)
		}
		result = append(result, a)
	}
	if 0 == len(result) {
		return nil, fault.NoConnectAddresses
	}
	return result, nil
}

// resolve any /dns4, /dns6 or /dnsaddr addresses, others pass through
func resolve(ctx context.Context, addrs []ma.Multiaddr) ([]ma.Multiaddr, error) {
	result := make([]ma.Multiaddr, 0, len(addrs))
	var lastErr error
	for _, a := range addrs {
		if !madns.Matches(a) {
			result = append(result, a)
			continue
		}
		resolved, err := madns.DefaultResolver.Resolve(ctx, a)
		if nil != err {
			lastErr = err
			continue
		}
		result = append(result, resolved...)
	}
	if 0 == len(result) && nil != lastErr {
		return nil, lastErr
	}
	return result, nil
}

func parseAddr(entry string) (ma.Multiaddr, error) {
	entry = strings.TrimSpace(entry)
	if strings.HasPrefix(entry, "/") {
		return ma.NewMultiaddr(entry)
	}

	version, ip, port, err := parseHostPort(entry)
	if nil != err {
		return nil, err
	}
	return ma.NewMultiaddr(fmt.Sprintf("/%s/%s/tcp/%s", version, ip, port))
}

// split host:port giving ip4/ip6, the address and the port
func parseHostPort(hostPort string) (string, string, string, error) {
	host, port, err := net.SplitHostPort(hostPort)
	if nil != err {
		return "", "", "", err
	}
	ip := strings.TrimSpace(host)
	numericPort, err := strconv.Atoi(strings.TrimSpace(port))
	if nil != err {
		return "", "", "", err
	}
	if numericPort < 1 || numericPort > 65535 {
		return "", "", "", fmt.Errorf("%w: port: %d", fault.InvalidAddress, numericPort)
	}
	netIP := net.ParseIP(ip)
	if nil == netIP {
		return "", "", "", fmt.Errorf("%w: host: %q", fault.InvalidAddress, ip)
	}
	version := "ip6"
	if nil != netIP.To4() {
		version = "ip4"
	}
	return version, ip, strconv.Itoa(numericPort), nil
}

// expand "*:port" to both wildcard addresses, removing duplicates
func dualStack(entries []string) []string {
	seen := make(map[string]struct{})
	result := make([]string, 0, len(entries)+1)
	add := func(s string) {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			result = append(result, s)
		}
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry, "*:") {
			port := strings.TrimPrefix(entry, "*:")
			add("0.0.0.0:" + port)
			add("[::]:" + port)
			continue
		}
		add(entry)
	}
	return result
}
