// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package identity - persistent per role seeds and the network
// identities derived from them
package identity

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
	"sync"

	crypto "github.com/libp2p/go-libp2p-core/crypto"
	peerlib "github.com/libp2p/go-libp2p-core/peer"

	"github.com/bitmark-inc/priceoracle/fault"
	"github.com/bitmark-inc/priceoracle/storage"
)

// SeedLength - number of bytes in every seed
const SeedLength = 32

// known roles
const (
	RoleDHT = "dht"
	RoleRPC = "rpc"
)

// serialise first time creation so concurrent callers agree
var seedLock sync.Mutex

// source of new seeds, replaced in tests
var randomSource io.Reader = rand.Reader

// Seed - fetch the seed for a role, creating it on first use
//
// once stored a seed is never replaced
func Seed(role string) ([]byte, error) {
	if "" == role {
		return nil, fault.InvalidRole
	}

	seedLock.Lock()
	defer seedLock.Unlock()

	pool := storage.Pool.Seeds
	key := []byte(role)

	seed, err := pool.Get(key)
	if nil != err {
		return nil, err
	}
	if nil != seed {
		if SeedLength != len(seed) {
			return nil, fmt.Errorf("%w: role: %q length: %d", fault.InvalidSeedLength, role, len(seed))
		}
		return seed, nil
	}

	seed = make([]byte, SeedLength)
	if _, err := io.ReadFull(randomSource, seed); nil != err {
		return nil, err
	}

	if err := pool.Put(key, seed); nil != err {
		return nil, err
	}
	return seed, nil
}

// PrivateKey - deterministic Ed25519 key from a seed
func PrivateKey(seed []byte) (crypto.PrivKey, error) {
	if SeedLength != len(seed) {
		return nil, fault.InvalidSeedLength
	}
	privateKey, _, err := crypto.GenerateEd25519Key(bytes.NewReader(seed))
	if nil != err {
		return nil, err
	}
	return privateKey, nil
}

// PublicID - the peer identity that others use to reach the holder of
// the seed
func PublicID(seed []byte) (peerlib.ID, error) {
	privateKey, err := PrivateKey(seed)
	if nil != err {
		return "", err
	}
	return peerlib.IDFromPrivateKey(privateKey)
}
