// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"errors"
)

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type NetworkError GenericError
type NotFoundError GenericError
type ProcessError GenericError

// common errors - keep in alphabetic order
var (
	AlreadyInitialised      = ExistsError("already initialised")
	ChannelClosed           = NetworkError("channel closed")
	ConnectionFailed        = NetworkError("connection failed")
	DatabaseIsNotSet        = ProcessError("database is not set")
	DatabaseVersion         = InvalidError("database version is not supported")
	InvalidAddress          = InvalidError("invalid address")
	InvalidCount            = InvalidError("invalid count")
	InvalidCursor           = InvalidError("invalid cursor")
	InvalidMethod           = InvalidError("invalid method")
	InvalidNonce            = InvalidError("invalid nonce")
	InvalidPoolPrefix       = InvalidError("invalid pool prefix")
	InvalidPrice            = InvalidError("invalid price")
	InvalidRange            = InvalidError("invalid time range")
	InvalidRole             = InvalidError("invalid identity role")
	InvalidSeedLength       = InvalidError("invalid seed length")
	InvalidServerIdentity   = InvalidError("invalid server identity")
	InvalidStructPointer    = InvalidError("invalid struct pointer")
	InvalidSymbol           = InvalidError("invalid symbol")
	MalformedResponse       = ProcessError("malformed response")
	MissingParameters       = InvalidError("missing parameters")
	NoConnectAddresses      = InvalidError("no connect addresses")
	NoListenAddresses       = InvalidError("no listen addresses")
	NoQuotes                = ProcessError("no quotes aggregated")
	NotInitialised          = NotFoundError("not initialised")
	RateLimited             = ProcessError("rate limited")
	RequestTooLarge         = InvalidError("request too large")
	RetriesExhausted        = NetworkError("retries exhausted")
	SnapshotDuplicateSymbol = ExistsError("snapshot contains duplicate symbol")
	TooManyStreams          = ProcessError("too many streams")
	UpstreamStatus          = ProcessError("unexpected upstream status")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e NetworkError) Error() string  { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }

// determine the class of an error, looking through any wrapping
func IsErrExists(e error) bool   { var t ExistsError; return errors.As(e, &t) }
func IsErrInvalid(e error) bool  { var t InvalidError; return errors.As(e, &t) }
func IsErrNetwork(e error) bool  { var t NetworkError; return errors.As(e, &t) }
func IsErrNotFound(e error) bool { var t NotFoundError; return errors.As(e, &t) }
func IsErrProcess(e error) bool  { var t ProcessError; return errors.As(e, &t) }

// IsChannelClosed - true when the transport lost its channel and a
// reconnect may succeed
func IsChannelClosed(e error) bool { return errors.Is(e, ChannelClosed) }

// IsRateLimited - true when an upstream refused service due to rate limits
func IsRateLimited(e error) bool { return errors.Is(e, RateLimited) }
