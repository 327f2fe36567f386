// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fixtures - shared test setup for logging and storage
package fixtures

import (
	"fmt"
	"os"
	"testing"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/priceoracle/storage"
)

const (
	dir         = "testing"
	LogCategory = "testing"
)

// SetupTestLogger - log to a scratch directory, critical only
func SetupTestLogger() {
	removeFiles(dir)
	_ = os.Mkdir(dir, 0700)

	logging := logger.Configuration{
		Directory: dir,
		File:      fmt.Sprintf("%s.log", LogCategory),
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	_ = logger.Initialise(logging)
}

// TeardownTestLogger - stop logging and remove the scratch directory
func TeardownTestLogger() {
	logger.Finalise()
	removeFiles(dir)
}

// SetupTestDatabase - open a fresh database with the given file name
func SetupTestDatabase(t *testing.T, fileName string) {
	removeFiles(fileName)
	if err := storage.Initialise(fileName, storage.ReadWrite); nil != err {
		t.Fatalf("storage initialise error: %s", err)
	}
}

// TeardownTestDatabase - close and remove the database
func TeardownTestDatabase(fileName string) {
	storage.Finalise()
	removeFiles(fileName)
}

func removeFiles(name string) {
	err := os.RemoveAll(name)
	if nil != err {
		fmt.Println("remove dir with error: ", err)
	}
}
