// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/priceoracle/fault"
	"github.com/bitmark-inc/priceoracle/storage"
)

func insertTestData(t *testing.T) {
	b := storage.NewBatch()
	for _, e := range insertElements {
		b.Put(storage.Pool.TestData, []byte(e.key), []byte(e.value))
	}
	assert.Equal(t, len(insertElements), b.Len(), "wrong batch length")
	if err := b.Commit(); nil != err {
		t.Fatalf("commit error: %s", err)
	}
	assert.Equal(t, 0, b.Len(), "batch not reset after commit")
}

func TestDoubleInitialise(t *testing.T) {
	setup(t)
	defer teardown(t)

	err := storage.Initialise(databaseFileName, storage.ReadWrite)
	assert.Equal(t, fault.AlreadyInitialised, err, "second initialise must fail")
}

func TestReopen(t *testing.T) {
	setup(t)
	defer teardown(t)

	err := storage.Pool.TestData.Put([]byte("persist"), []byte("value"))
	assert.Nil(t, err, "put error")

	storage.Finalise()

	err = storage.Initialise(databaseFileName, storage.ReadOnly)
	assert.Nil(t, err, "read only reopen error")

	value, err := storage.Pool.TestData.Get([]byte("persist"))
	assert.Nil(t, err, "get error")
	assert.Equal(t, []byte("value"), value, "value lost across reopen")
}

func TestGetPutHas(t *testing.T) {
	setup(t)
	defer teardown(t)

	insertTestData(t)

	for _, e := range insertElements {
		value, err := storage.Pool.TestData.Get([]byte(e.key))
		assert.Nil(t, err, "get error")
		assert.Equal(t, e.value, string(value), "wrong value for: %s", e.key)

		found, err := storage.Pool.TestData.Has([]byte(e.key))
		assert.Nil(t, err, "has error")
		assert.True(t, found, "key not found: %s", e.key)
	}

	value, err := storage.Pool.TestData.Get(nonExistantKey)
	assert.Nil(t, err, "missing key must not be an error")
	assert.Nil(t, value, "missing key returned data")

	found, err := storage.Pool.TestData.Has(nonExistantKey)
	assert.Nil(t, err, "has error")
	assert.False(t, found, "missing key was found")

	// pools must not see each others data
	value, err = storage.Pool.Seeds.Get([]byte(insertElements[0].key))
	assert.Nil(t, err, "get error")
	assert.Nil(t, value, "data leaked across pools")
}

func TestCursorMap(t *testing.T) {
	setup(t)
	defer teardown(t)

	insertTestData(t)

	actual := []storage.Element{}
	err := storage.Pool.TestData.NewFetchCursor().Map(func(key []byte, value []byte) error {
		actual = append(actual, storage.Element{Key: key, Value: value})
		return nil
	})
	assert.Nil(t, err, "map error")
	assert.Equal(t, expectedElements, actual, "wrong map order")
}

func TestCursorFetch(t *testing.T) {
	setup(t)
	defer teardown(t)

	insertTestData(t)

	cursor := storage.Pool.TestData.NewFetchCursor()
	first, err := cursor.Fetch(3)
	assert.Nil(t, err, "fetch error")
	assert.Equal(t, expectedElements[:3], first, "wrong first block")

	second, err := cursor.Fetch(10)
	assert.Nil(t, err, "fetch error")
	assert.Equal(t, expectedElements[3:], second, "wrong second block")

	third, err := cursor.Fetch(10)
	assert.Nil(t, err, "fetch error")
	assert.Equal(t, 0, len(third), "cursor did not finish")

	_, err = cursor.Fetch(0)
	assert.Equal(t, fault.InvalidCount, err, "zero count accepted")
}

func TestCursorSeekLimit(t *testing.T) {
	setup(t)
	defer teardown(t)

	insertTestData(t)

	cursor := storage.Pool.TestData.NewFetchCursor().Seek([]byte("key-one")).Limit([]byte("key-six"))
	actual, err := cursor.Fetch(10)
	assert.Nil(t, err, "fetch error")
	assert.Equal(t, expectedElements[2:4], actual, "wrong seek/limit window")
}
