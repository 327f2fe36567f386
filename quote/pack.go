// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package quote

import (
	"encoding/json"
)

// compact on-disk forms, field names are single letters

type packedExchange struct {
	N string  `json:"n"`
	V float64 `json:"v"`
}

type packedQuote struct {
	S string           `json:"s"`
	N string           `json:"n"`
	P float64          `json:"p"`
	T int64            `json:"t"`
	E []packedExchange `json:"e"`
}

type packedSnapshot struct {
	T int64         `json:"t"`
	P []packedQuote `json:"p"`
}

func packQuote(q Quote) packedQuote {
	p := packedQuote{
		S: q.Symbol,
		N: q.Name,
		P: q.Price,
		T: q.LastUpdated,
		E: make([]packedExchange, len(q.Exchanges)),
	}
	for i, e := range q.Exchanges {
		p.E[i] = packedExchange{N: e.Name, V: e.Volume}
	}
	return p
}

func (p packedQuote) unpack() Quote {
	q := Quote{
		Symbol:      p.S,
		Name:        p.N,
		Price:       p.P,
		LastUpdated: p.T,
		Exchanges:   make([]Exchange, len(p.E)),
	}
	for i, e := range p.E {
		q.Exchanges[i] = Exchange{Name: e.N, Volume: e.V}
	}
	return q
}

// PackQuote - compact encoding of a single quote
func PackQuote(q Quote) ([]byte, error) {
	return json.Marshal(packQuote(q))
}

// UnpackQuote - reverse of PackQuote
func UnpackQuote(buffer []byte) (Quote, error) {
	p := packedQuote{}
	if err := json.Unmarshal(buffer, &p); nil != err {
		return Quote{}, err
	}
	return p.unpack(), nil
}

// Pack - compact encoding of a complete snapshot
func (s *Snapshot) Pack() ([]byte, error) {
	p := packedSnapshot{
		T: s.Timestamp,
		P: make([]packedQuote, len(s.Quotes)),
	}
	for i, q := range s.Quotes {
		p.P[i] = packQuote(q)
	}
	return json.Marshal(p)
}

// UnpackSnapshot - reverse of Snapshot.Pack
func UnpackSnapshot(buffer []byte) (*Snapshot, error) {
	p := packedSnapshot{}
	if err := json.Unmarshal(buffer, &p); nil != err {
		return nil, err
	}
	s := &Snapshot{
		Timestamp: p.T,
		Quotes:    make([]Quote, len(p.P)),
	}
	for i, q := range p.P {
		s.Quotes[i] = q.unpack()
	}
	return s, nil
}
