// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/priceoracle/identity"
	"github.com/bitmark-inc/priceoracle/snapshot"
)

// setup command handler
//
// commands that do not need the configuration file or any internal
// database
func processSetupCommand(program string, arguments []string) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "identity", "id", "latest", "history", "config-test", "cfg":
		return false // defer processing until configuration is read

	case "start", "run":
		return false // continue processing

	case "version", "v":
		fmt.Printf("%s\n", version)

	default:
		switch command {
		case "help", "h", "?":
		case "", " ":
			fmt.Printf("error: missing command\n")
		default:
			fmt.Printf("error: no such command: %q\n", command)
		}

		fmt.Printf("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [[command|help] arguments...]", program)

		fmt.Printf("supported commands:\n\n")
		fmt.Printf("  help                       (h)      - display this message\n\n")
		fmt.Printf("  version                    (v)      - display version sting\n\n")

		fmt.Printf("  identity                   (id)     - display the server identity that clients connect to\n")
		fmt.Printf("\n")

		fmt.Printf("  start                      (run)    - just run the program, same as no arguments\n")
		fmt.Printf("                                        for convienience when passing script arguments\n")
		fmt.Printf("\n")

		fmt.Printf("  config-test                (cfg)    - just check the configuration file\n")
		fmt.Printf("\n")

		fmt.Printf("  latest [SYMBOL...]                  - dump the stored latest snapshot as JSON\n")
		fmt.Printf("\n")

		fmt.Printf("  history FROM TO [SYMBOL...]         - dump stored history between two epoch ms times\n")
		fmt.Printf("\n")

		exitwithstatus.Exit(1)
	}

	// indicate processing complete and perform normal exit from main
	return true
}

// configuration file enquiry commands
// have configuration file read and decoded, but nothing else
func processConfigCommand(arguments []string, options *Configuration) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "config-test", "cfg":
		b, err := json.Marshal(options)
		if err != nil {
			exitwithstatus.Message("error: %s", err)
		}
		var out bytes.Buffer
		json.Indent(&out, b, "", "  ")
		out.WriteTo(os.Stdout)
		os.Stdout.WriteString("\n")

	default: // unknown commands fall through to data command
		return false
	}

	// indicate processing complete and perform normal exit from main
	return true
}

// data command handler
// storage is open so these commands can read the snapshots and seeds
func processDataCommand(log *logger.L, arguments []string) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		arguments = arguments[1:]
	}

	switch command {

	case "start", "run":
		return false // continue processing

	case "identity", "id":
		seed, err := identity.Seed(identity.RoleRPC)
		if nil != err {
			exitwithstatus.Message("identity seed error: %s", err)
		}
		id, err := identity.PublicID(seed)
		if nil != err {
			exitwithstatus.Message("identity error: %s", err)
		}
		fmt.Printf("%s\n", id.Pretty())

	case "latest":
		quotes, err := snapshot.New(log).Latest(arguments)
		if nil != err {
			exitwithstatus.Message("latest snapshot error: %s", err)
		}
		printJSON(quotes)

	case "history":
		if len(arguments) < 2 {
			exitwithstatus.Message("missing FROM and TO arguments")
		}
		from, err := strconv.ParseInt(arguments[0], 10, 64)
		if nil != err {
			exitwithstatus.Message("error in FROM: %s", err)
		}
		to, err := strconv.ParseInt(arguments[1], 10, 64)
		if nil != err {
			exitwithstatus.Message("error in TO: %s", err)
		}
		printJSON(snapshot.New(log).Historical(arguments[2:], from, to))

	default:
		exitwithstatus.Message("error: no such command: %s", command)

	}

	// indicate processing complete and perform normal exit from main
	return true
}

func printJSON(data interface{}) {
	b, err := json.MarshalIndent(data, "", "  ")
	if nil != err {
		exitwithstatus.Message("JSON error: %s", err)
	}
	fmt.Printf("%s\n", b)
}
