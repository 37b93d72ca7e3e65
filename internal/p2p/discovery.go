// Copyright (c) 2024 The Zedovium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package p2p defines the peer discovery surface Zedovium leaves
// unimplemented. Real peer-to-peer gossip, consensus and any wire protocol
// are out of scope; this package offers only a stable interface to program
// against. No other package in this module imports it: the node runs as a
// single node and reports a node count of 1.
package p2p

// Discovery is the interface a real peer-discovery implementation would
// satisfy: report known peers and accept newly learned ones.
type Discovery interface {
	Peers() []string
	AddPeer(addr string)
}

// NoopDiscovery is a Discovery that never has and never learns any peers,
// matching the single-node deployment model this project targets.
type NoopDiscovery struct{}

// Peers always returns an empty list.
func (NoopDiscovery) Peers() []string { return nil }

// AddPeer discards addr.
func (NoopDiscovery) AddPeer(addr string) {}
