// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/bitmark-inc/priceoracle/fault"
)

// Batch - a set of writes across any pools that become visible
// together when committed or not at all
type Batch struct {
	batch *leveldb.Batch
}

// NewBatch - start an empty write unit
func NewBatch() *Batch {
	return &Batch{
		batch: new(leveldb.Batch),
	}
}

// Put - add a key/value to the unit
func (b *Batch) Put(p *PoolHandle, key []byte, value []byte) {
	b.batch.Put(p.prefixKey(key), value)
}

// Len - number of pending writes
func (b *Batch) Len() int {
	return b.batch.Len()
}

// Commit - write all pending items atomically then reset the batch
func (b *Batch) Commit() error {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == poolData.database {
		return fault.DatabaseIsNotSet
	}
	err := poolData.database.Write(b.batch, &ldb_opt.WriteOptions{Sync: true})
	b.batch.Reset()
	return err
}
