// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"context"

	"github.com/bitmark-inc/logger"
	proto "github.com/gogo/protobuf/proto"
	"github.com/libp2p/go-libp2p-core/host"
	peerlib "github.com/libp2p/go-libp2p-core/peer"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
)

// TopicSnapshot - gossip topic carrying snapshot announcements
const TopicSnapshot = "/priceoracle/snapshot/1.0.0"

// Announcement - a new snapshot has been stored
type Announcement struct {
	Timestamp int64  `protobuf:"varint,1,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
	Quotes    uint32 `protobuf:"varint,2,opt,name=quotes,proto3" json:"quotes,omitempty"`
}

func (m *Announcement) Reset()         { *m = Announcement{} }
func (m *Announcement) String() string { return proto.CompactTextString(m) }
func (*Announcement) ProtoMessage()    {}

// Announcer - publish and watch snapshot announcements
type Announcer struct {
	log    *logger.L
	pubsub *pubsub.PubSub
}

// NewAnnouncer - join the gossip network of the host
func NewAnnouncer(ctx context.Context, h host.Host, log *logger.L) (*Announcer, error) {
	ps, err := pubsub.NewGossipSub(ctx, h)
	if nil != err {
		return nil, err
	}
	return &Announcer{
		log:    log,
		pubsub: ps,
	}, nil
}

// Announce - publish the capture time and size of a stored snapshot
func (a *Announcer) Announce(timestamp int64, quotes int) error {
	data, err := proto.Marshal(&Announcement{
		Timestamp: timestamp,
		Quotes:    uint32(quotes),
	})
	if nil != err {
		return err
	}
	if err := a.pubsub.Publish(TopicSnapshot, data); nil != err {
		a.log.Warnf("publish: %d error: %s", timestamp, err)
		return err
	}
	a.log.Debugf("announced: %d with: %d quotes", timestamp, quotes)
	return nil
}

// Watch - deliver announcements from server until ctx ends
//
// the channel is closed when watching stops; slow receivers miss
// announcements rather than blocking the subscription
func (a *Announcer) Watch(ctx context.Context, server peerlib.ID) (<-chan Announcement, error) {
	sub, err := a.pubsub.Subscribe(TopicSnapshot)
	if nil != err {
		return nil, err
	}

	out := make(chan Announcement, 1)
	go func() {
		defer close(out)
		defer sub.Cancel()
		for {
			msg, err := sub.Next(ctx)
			if nil != err {
				if nil == ctx.Err() {
					a.log.Warnf("watch error: %s", err)
				}
				return
			}
			if msg.GetFrom() != server {
				continue
			}
			var announcement Announcement
			if err := proto.Unmarshal(msg.Data, &announcement); nil != err {
				a.log.Debugf("discard announcement: %s", err)
				continue
			}
			select {
			case out <- announcement:
			default:
			}
		}
	}()
	return out, nil
}
