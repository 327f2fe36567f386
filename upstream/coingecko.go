// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/priceoracle/fault"
	"github.com/bitmark-inc/priceoracle/util"
)

const (
	DefaultBaseURL           = "https://api.coingecko.com/api/v3"
	DefaultRequestsPerMinute = 40 // two default refresh cycles of 17 reads
	DefaultTimeout           = 10 // seconds

	// quote currency of the tickers used for pricing
	tickerTarget = "USDT"
)

// Configuration - upstream feed settings
type Configuration struct {
	BaseURL           string `gluamapper:"base_url" json:"base_url"`
	RequestsPerMinute int    `gluamapper:"requests_per_minute" json:"requests_per_minute"`
	Timeout           int    `gluamapper:"timeout" json:"timeout"`
}

// CoinGecko - feed backed by the public CoinGecko v3 API
type CoinGecko struct {
	log     *logger.L
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewCoinGecko - create a feed, zero configuration values select the
// defaults
func NewCoinGecko(configuration Configuration, log *logger.L) *CoinGecko {
	baseURL := strings.TrimRight(configuration.BaseURL, "/")
	if "" == baseURL {
		baseURL = DefaultBaseURL
	}
	perMinute := configuration.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = DefaultRequestsPerMinute
	}
	timeout := configuration.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	log.Infof("base url: %q  requests/minute: %d  timeout: %ds", baseURL, perMinute, timeout)

	return &CoinGecko{
		log:     log,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
	}
}

// requests beyond the local budget are treated like an upstream 429
func (c *CoinGecko) fetch(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if !c.limiter.Allow() {
		c.log.Debugf("local rate limit: %s", path)
		return nil, fault.RateLimited
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	c.log.Tracef("GET: %s", u)
	return util.Fetch(ctx, c.client, u)
}

type coinGeckoMarket struct {
	ID           string  `json:"id"`
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	CurrentPrice float64 `json:"current_price"`
	LastUpdated  string  `json:"last_updated"`
}

// TopAssets - assets by descending market capitalisation
func (c *CoinGecko) TopAssets(ctx context.Context, count int) ([]AssetMeta, error) {
	if count <= 0 {
		return nil, fault.InvalidCount
	}
	query := url.Values{}
	query.Set("vs_currency", "usd")
	query.Set("order", "market_cap_desc")
	query.Set("per_page", fmt.Sprintf("%d", count))
	query.Set("page", "1")

	body, err := c.fetch(ctx, "/coins/markets", query)
	if nil != err {
		return nil, err
	}

	var markets []coinGeckoMarket
	if err := decode(body, &markets); nil != err {
		return nil, err
	}

	assets := make([]AssetMeta, 0, len(markets))
	for _, m := range markets {
		if "" == m.ID || "" == m.Symbol {
			return nil, fmt.Errorf("%w: market entry without id or symbol", fault.MalformedResponse)
		}
		assets = append(assets, AssetMeta{
			ID:          m.ID,
			Symbol:      strings.ToUpper(m.Symbol),
			Name:        m.Name,
			Price:       m.CurrentPrice,
			LastUpdated: parseMilliseconds(m.LastUpdated),
		})
	}
	return assets, nil
}

type coinGeckoExchange struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	TradeVolumeBTC float64 `json:"trade_volume_24h_btc"`
}

// TopVenues - exchanges by descending trust rank
func (c *CoinGecko) TopVenues(ctx context.Context, count int) ([]VenueMeta, error) {
	if count <= 0 {
		return nil, fault.InvalidCount
	}
	query := url.Values{}
	query.Set("per_page", fmt.Sprintf("%d", count))

	body, err := c.fetch(ctx, "/exchanges", query)
	if nil != err {
		return nil, err
	}

	var exchanges []coinGeckoExchange
	if err := decode(body, &exchanges); nil != err {
		return nil, err
	}

	venues := make([]VenueMeta, 0, len(exchanges))
	for _, e := range exchanges {
		if "" == e.ID {
			return nil, fmt.Errorf("%w: exchange entry without id", fault.MalformedResponse)
		}
		venues = append(venues, VenueMeta{
			ID:     e.ID,
			Name:   e.Name,
			Volume: e.TradeVolumeBTC,
		})
	}
	if len(venues) > count {
		venues = venues[:count]
	}
	return venues, nil
}

// Tickers - last USDT price of an asset on one venue
//
// zero when the venue does not list the pair
func (c *CoinGecko) Tickers(ctx context.Context, asset AssetMeta, venueID string) (float64, error) {
	query := url.Values{}
	query.Set("coin_ids", asset.ID)

	body, err := c.fetch(ctx, "/exchanges/"+url.PathEscape(venueID)+"/tickers", query)
	if nil != err {
		return 0, err
	}

	if !gjson.ValidBytes(body) {
		return 0, fmt.Errorf("%w: tickers for: %s on: %s", fault.MalformedResponse, asset.ID, venueID)
	}
	tickers := gjson.GetBytes(body, "tickers")
	if !tickers.IsArray() {
		return 0, fmt.Errorf("%w: no tickers array for: %s on: %s", fault.MalformedResponse, asset.ID, venueID)
	}

	price := 0.0
	tickers.ForEach(func(_, ticker gjson.Result) bool {
		if tickerTarget != strings.ToUpper(ticker.Get("target").String()) {
			return true
		}
		base := ticker.Get("base").String()
		if !strings.EqualFold(base, asset.Symbol) && !strings.EqualFold(base, asset.ID) {
			return true
		}
		price = ticker.Get("last").Float()
		return false
	})
	return price, nil
}

func decode(body []byte, reply interface{}) error {
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsArray() {
		return fmt.Errorf("%w: expected a JSON array", fault.MalformedResponse)
	}
	return util.DecodeJSON(body, reply)
}

// RFC3339 time to epoch milliseconds, zero if unparseable
func parseMilliseconds(s string) int64 {
	t, err := time.Parse(time.RFC3339Nano, s)
	if nil != err {
		return 0
	}
	return t.UnixNano() / int64(time.Millisecond)
}
