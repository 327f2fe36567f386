// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"

	"github.com/bitmark-inc/priceoracle/fault"
)

// maximum body accepted from a remote endpoint
const maximumBodySize = 8 * 1024 * 1024

// Fetch - perform an HTTP GET and return the body
//
// a 429 status maps to fault.RateLimited, any other non-200 status
// to fault.UpstreamStatus and transport failures to
// fault.ConnectionFailed
func Fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	request, err := http.NewRequest(http.MethodGet, url, nil)
	if nil != err {
		return nil, err
	}
	request = request.WithContext(ctx)
	request.Header.Set("Accept", "application/json")

	response, err := client.Do(request)
	if nil != err {
		if nil != ctx.Err() {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s", fault.ConnectionFailed, err)
	}
	defer response.Body.Close()

	if http.StatusTooManyRequests == response.StatusCode {
		return nil, fault.RateLimited
	}

	body, err := ioutil.ReadAll(io.LimitReader(response.Body, maximumBodySize))
	if nil != err {
		return nil, err
	}

	if http.StatusOK != response.StatusCode {
		return nil, fmt.Errorf("%w: %d %q on: %q", fault.UpstreamStatus, response.StatusCode, response.Status, url)
	}
	return body, nil
}

// FetchJSON - fetch a JSON response from an HTTP request and decode
// it
func FetchJSON(ctx context.Context, client *http.Client, url string, reply interface{}) error {
	body, err := Fetch(ctx, client, url)
	if nil != err {
		return err
	}
	return DecodeJSON(body, reply)
}

// DecodeJSON - decode a response body, failures are malformed responses
func DecodeJSON(body []byte, reply interface{}) error {
	if err := json.Unmarshal(body, reply); nil != err {
		return fmt.Errorf("%w: %s", fault.MalformedResponse, err)
	}
	return nil
}
