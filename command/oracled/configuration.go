// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/priceoracle/aggregate"
	"github.com/bitmark-inc/priceoracle/configuration"
	"github.com/bitmark-inc/priceoracle/p2p"
	"github.com/bitmark-inc/priceoracle/refresh"
	"github.com/bitmark-inc/priceoracle/upstream"
	"github.com/bitmark-inc/priceoracle/util"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultLevelDBDirectory = "data"
	defaultDatabase         = "oracle.leveldb"

	defaultLogDirectory = "log"
	defaultLogFile      = "oracled.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// LoglevelMap - to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		logger.DefaultTag: "critical",
	}
	defaultListen = []string{"*:2150"}
)

// DatabaseType - leveldb location
type DatabaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

// Configuration - the complete server configuration
type Configuration struct {
	DataDirectory  string                  `gluamapper:"data_directory" json:"data_directory"`
	PidFile        string                  `gluamapper:"pidfile" json:"pidfile"`
	Database       DatabaseType            `gluamapper:"database" json:"database"`
	Listen         []string                `gluamapper:"listen" json:"listen"`
	MaximumStreams int                     `gluamapper:"maximum_streams" json:"maximum_streams"`
	Announce       bool                    `gluamapper:"announce" json:"announce"`
	Upstream       upstream.Configuration  `gluamapper:"upstream" json:"upstream"`
	Aggregate      aggregate.Configuration `gluamapper:"aggregate" json:"aggregate"`
	Refresh        refresh.Configuration   `gluamapper:"refresh" json:"refresh"`
	Logging        logger.Configuration    `gluamapper:"logging" json:"logging"`
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default

		Database: DatabaseType{
			Directory: defaultLevelDBDirectory,
			Name:      defaultDatabase,
		},

		Listen:         defaultListen,
		MaximumStreams: p2p.DefaultMaximumStreams,
		Announce:       true,

		Upstream: upstream.Configuration{
			BaseURL:           upstream.DefaultBaseURL,
			RequestsPerMinute: upstream.DefaultRequestsPerMinute,
			Timeout:           upstream.DefaultTimeout,
		},

		Aggregate: aggregate.Configuration{
			Assets:         aggregate.DefaultAssets,
			Venues:         aggregate.DefaultVenues,
			MaxConcurrency: aggregate.DefaultMaxConcurrency,
		},

		Refresh: refresh.Configuration{
			Schedule: refresh.DefaultSchedule,
			Timeout:  refresh.DefaultTimeout,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	variables := map[string]string{
		"data_directory": dataDirectory,
	}
	if err := configuration.ParseConfigurationFile(configurationFileName, options, variables); err != nil {
		return nil, err
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("Path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("Path: %q is not a directory", options.DataDirectory)
	}

	// optional absolute paths i.e. blank or an absolute path
	if "" != options.PidFile {
		options.PidFile = util.EnsureAbsolute(options.DataDirectory, options.PidFile)
	}

	// make absolute and create directories if they do not already exist
	for _, d := range []*string{
		&options.Database.Directory,
		&options.Logging.Directory,
	} {
		*d = util.EnsureAbsolute(options.DataDirectory, *d)
		if err := os.MkdirAll(*d, 0700); nil != err {
			return nil, err
		}
	}

	// fail if any of these are not simple file names then add the
	// correct directory prefix
	for _, f := range []*string{
		&options.Database.Name,
		&options.Logging.File,
	} {
		switch filepath.Dir(*f) {
		case "", ".":
		default:
			return nil, fmt.Errorf("Files: %q is not plain name", *f)
		}
	}
	options.Database.Name = filepath.Join(options.Database.Directory, options.Database.Name)

	if _, err := p2p.ListenAddrs(options.Listen); nil != err {
		return nil, err
	}

	// done
	return options, nil
}
