// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identity

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/priceoracle/fault"
	"github.com/bitmark-inc/priceoracle/storage"
)

const databaseFileName = "identity-test.leveldb"

func setup(t *testing.T) {
	os.RemoveAll(databaseFileName)
	if err := storage.Initialise(databaseFileName, storage.ReadWrite); nil != err {
		t.Fatalf("storage initialise error: %s", err)
	}
}

func teardown() {
	storage.Finalise()
	os.RemoveAll(databaseFileName)
}

type countingReader struct {
	sync.Mutex
	reads int
}

func (c *countingReader) Read(p []byte) (int, error) {
	c.Lock()
	c.reads += 1
	c.Unlock()
	for i := range p {
		p[i] = byte(i + 1)
	}
	return len(p), nil
}

func TestSeedIsStable(t *testing.T) {
	setup(t)
	defer teardown()

	first, err := Seed(RoleDHT)
	assert.Nil(t, err, "first seed error")
	assert.Equal(t, SeedLength, len(first), "wrong seed length")

	second, err := Seed(RoleDHT)
	assert.Nil(t, err, "second seed error")
	assert.Equal(t, first, second, "seed changed between calls")

	other, err := Seed(RoleRPC)
	assert.Nil(t, err, "rpc seed error")
	assert.False(t, bytes.Equal(first, other), "roles share a seed")
}

func TestSeedSurvivesReopen(t *testing.T) {
	setup(t)
	defer teardown()

	first, err := Seed(RoleDHT)
	assert.Nil(t, err, "seed error")

	storage.Finalise()
	if err := storage.Initialise(databaseFileName, storage.ReadWrite); nil != err {
		t.Fatalf("reopen error: %s", err)
	}

	second, err := Seed(RoleDHT)
	assert.Nil(t, err, "seed error")
	assert.Equal(t, first, second, "seed regenerated after reopen")
}

func TestSeedConcurrentCreate(t *testing.T) {
	setup(t)
	defer teardown()

	source := &countingReader{}
	saved := randomSource
	randomSource = source
	defer func() { randomSource = saved }()

	wg := sync.WaitGroup{}
	results := make([][]byte, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Seed(RoleRPC)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, source.reads, "seed generated more than once")
	for i := range results {
		assert.Equal(t, results[0], results[i], "%d: different seed returned", i)
	}
}

func TestSeedBadLength(t *testing.T) {
	setup(t)
	defer teardown()

	err := storage.Pool.Seeds.Put([]byte("short"), []byte{1, 2, 3})
	assert.Nil(t, err, "put error")

	_, err = Seed("short")
	assert.True(t, fault.IsErrInvalid(err), "truncated seed accepted: %v", err)

	_, err = Seed("")
	assert.Equal(t, fault.InvalidRole, err, "blank role accepted")
}

func TestPublicIDIsDeterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{0x42}, SeedLength)

	id1, err := PublicID(seed)
	assert.Nil(t, err, "public id error")
	id2, err := PublicID(seed)
	assert.Nil(t, err, "public id error")
	assert.Equal(t, id1, id2, "identity not deterministic")

	_, err = PrivateKey(seed[:10])
	assert.Equal(t, fault.InvalidSeedLength, err, "short seed accepted")
}
