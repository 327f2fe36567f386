// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// maintain the on-disk data store
//
// maintain separate pools of a number of elements in key->value form
//
// This maintains a LevelDB database split into a series of tables.
// Each table is defined by a prefix string that is obtained from the
// prefix tag in the struct defining the available tables.
//
// Notes:
// 1. ++        = concatenation of byte data
// 2. role      = identity role name, e.g. "dht" or "rpc"
// 3. SYMBOL    = upper case asset code, must not contain ':'
// 4. timestamp = epoch milliseconds as 20 decimal digits, zero padded
//                so that key order equals numeric order
//
// Seeds:
//
//   seed: ++ role                 - identity seed
//                                   data: 32 random bytes
//
// Latest:
//
//   latest-snapshot               - the single current snapshot
//                                   data: compact snapshot
//
// Historical:
//
//   historical: ++ SYMBOL ++ : ++ timestamp
//                                 - one quote captured at timestamp
//                                   data: compact quote
//
// Testing:
//   test: ++ key                  - testing data
package storage
