package dtls

import (
	"hash"
	"sync"
)

// handshakeCacheItem is one handshake message as seen on the wire (header +
// body), keyed by its type, sender role, and message sequence so that
// retransmitted flights are deduplicated.
type handshakeCacheItem struct {
	typ             HandshakeType
	isClient        bool
	messageSequence uint16
	raw             []byte // header + body, as marshaled/received
}

// handshakeCache accumulates every handshake message sent or received during
// a session, for two purposes: building the Finished/CertificateVerify
// transcript hash, and detecting retransmitted flights. Grounded on the
// original implementation's HandshakeCache (push/pull/full_pull_map/
// session_hash).
type handshakeCache struct {
	mu    sync.Mutex
	items []handshakeCacheItem
}

func newHandshakeCache() *handshakeCache {
	return &handshakeCache{}
}

// push records a handshake message. It returns false if an identical
// (type, isClient, messageSequence) entry is already cached, so the flight
// engine can recognize retransmissions instead of reprocessing them.
func (c *handshakeCache) push(raw []byte, messageSequence uint16, typ HandshakeType, isClient bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, item := range c.items {
		if item.typ == typ && item.isClient == isClient && item.messageSequence == messageSequence {
			return false
		}
	}
	c.items = append(c.items, handshakeCacheItem{typ, isClient, messageSequence, append([]byte(nil), raw...)})
	return true
}

// handshakeCachePullRule selects one message type/role from the cache, in
// the order the transcript hash or flight validation requires.
type handshakeCachePullRule struct {
	typ      HandshakeType
	isClient bool
	optional bool
}

// fullPullMap returns, keyed by type, the first cached message matching each
// rule. ok is false if a mandatory rule has no match.
func (c *handshakeCache) fullPullMap(rules ...handshakeCachePullRule) (messages map[HandshakeType]*handshakeCacheItem, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	messages = make(map[HandshakeType]*handshakeCacheItem)
	for _, rule := range rules {
		found := false
		for i := range c.items {
			item := &c.items[i]
			if item.typ == rule.typ && item.isClient == rule.isClient {
				messages[rule.typ] = item
				found = true
				break
			}
		}
		if !found && !rule.optional {
			return messages, false
		}
	}
	return messages, true
}

// pullAndMerge concatenates the raw bytes of every message matching rules,
// in rule order, forming the running transcript used for Finished and
// CertificateVerify hashes [RFC5246 §7.4.9].
func (c *handshakeCache) pullAndMerge(rules ...handshakeCachePullRule) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []byte
	for _, rule := range rules {
		for i := range c.items {
			item := &c.items[i]
			if item.typ == rule.typ && item.isClient == rule.isClient {
				out = append(out, item.raw...)
				break
			}
		}
	}
	return out
}

// sessionHash hashes the transcript selected by rules with hf, for use as
// the Extended Master Secret's session_hash input [RFC7627 §4].
func (c *handshakeCache) sessionHash(hf func() hash.Hash, rules ...handshakeCachePullRule) []byte {
	h := hf()
	h.Write(c.pullAndMerge(rules...))
	return h.Sum(nil)
}
