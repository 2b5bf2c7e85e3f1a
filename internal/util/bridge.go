package util

import (
	"math/rand"
	"net"
	"sync"
	"time"
)

// Bridge is test-only infrastructure: a pair of in-memory net.Conn-shaped
// endpoints connected by two Queues (one per direction), used to drive
// property tests of the DTLS/SCTP/ICE state machines under controlled packet
// loss and reordering without touching a real socket.
type Bridge struct {
	mu sync.Mutex

	a, b *bridgeEndpoint

	// aToB / bToA loss probability in [0, 1].
	lossAToB, lossBToA float64

	// Pending reorder/drop instructions, consumed one per affected write.
	reorderNAToB, reorderNBToA int
	dropNAToB, dropNBToA       int

	pendingAToB, pendingBToA [][]byte

	rand *rand.Rand
}

type bridgeEndpoint struct {
	local  net.Addr
	remote net.Addr
	in     *Queue // messages arriving at this endpoint
}

type bridgeAddr string

func (a bridgeAddr) Network() string { return "bridge" }
func (a bridgeAddr) String() string  { return string(a) }

// NewBridge creates a connected pair of endpoints. Seed controls the
// deterministic randomness used for loss decisions.
func NewBridge(seed int64) *Bridge {
	br := &Bridge{rand: rand.New(rand.NewSource(seed))}
	br.a = &bridgeEndpoint{local: bridgeAddr("bridge-a"), remote: bridgeAddr("bridge-b"), in: NewQueue(0, 0, Block)}
	br.b = &bridgeEndpoint{local: bridgeAddr("bridge-b"), remote: bridgeAddr("bridge-a"), in: NewQueue(0, 0, Block)}
	return br
}

// SetLoss sets the per-direction loss probability, applied to each write as
// it is enqueued.
func (br *Bridge) SetLoss(aToB, bToA float64) {
	br.mu.Lock()
	defer br.mu.Unlock()
	br.lossAToB, br.lossBToA = aToB, bToA
}

// DropNext arranges for the next n writes in the given direction to be
// silently discarded instead of delivered.
func (br *Bridge) DropNext(aToB bool, n int) {
	br.mu.Lock()
	defer br.mu.Unlock()
	if aToB {
		br.dropNAToB += n
	} else {
		br.dropNBToA += n
	}
}

// ReorderNext arranges for the next n writes in the given direction to be
// held and released in reverse order once the n-th of them arrives, or on
// Tick if fewer arrive.
func (br *Bridge) ReorderNext(aToB bool, n int) {
	br.mu.Lock()
	defer br.mu.Unlock()
	if aToB {
		br.reorderNAToB += n
	} else {
		br.reorderNBToA += n
	}
}

// EndpointA returns the net.Conn-shaped view from A's perspective.
func (br *Bridge) EndpointA() net.Conn { return &bridgeConn{br: br, self: br.a, peer: br.b, aToB: true} }

// EndpointB returns the net.Conn-shaped view from B's perspective.
func (br *Bridge) EndpointB() net.Conn { return &bridgeConn{br: br, self: br.b, peer: br.a, aToB: false} }

// enqueue stages a write in the given direction, applying drop/reorder rules
// that are pending at call time. A write held by a reorder run becomes
// visible to the peer when the run completes or Tick is called; any other
// write that is not dropped is delivered immediately.
func (br *Bridge) enqueue(aToB bool, data []byte) {
	br.mu.Lock()
	defer br.mu.Unlock()

	dropN := &br.dropNAToB
	reorderN := &br.reorderNAToB
	pending := &br.pendingAToB
	lossP := br.lossAToB
	if !aToB {
		dropN = &br.dropNBToA
		reorderN = &br.reorderNBToA
		pending = &br.pendingBToA
		lossP = br.lossBToA
	}

	if *dropN > 0 {
		*dropN--
		return
	}
	if lossP > 0 && br.rand.Float64() < lossP {
		return
	}

	cp := append([]byte(nil), data...)
	if *reorderN > 0 {
		*reorderN--
		*pending = append(*pending, cp)
		if *reorderN == 0 {
			// Flush held writes in reverse order.
			for i := len(*pending) - 1; i >= 0; i-- {
				br.deliver(aToB, (*pending)[i])
			}
			*pending = nil
		}
		return
	}

	br.deliver(aToB, cp)
}

func (br *Bridge) deliver(aToB bool, data []byte) {
	if aToB {
		br.b.in.Write(data)
	} else {
		br.a.in.Write(data)
	}
}

// Tick flushes any writes still held by an in-progress reorder run, without
// waiting for more writes to arrive. Used by property tests to force
// deterministic progress at the end of a test scenario.
func (br *Bridge) Tick() {
	br.mu.Lock()
	defer br.mu.Unlock()
	for i := len(br.pendingAToB) - 1; i >= 0; i-- {
		br.deliver(true, br.pendingAToB[i])
	}
	br.pendingAToB = nil
	br.reorderNAToB = 0
	for i := len(br.pendingBToA) - 1; i >= 0; i-- {
		br.deliver(false, br.pendingBToA[i])
	}
	br.pendingBToA = nil
	br.reorderNBToA = 0
}

// Close shuts down both endpoints' inbound queues.
func (br *Bridge) Close() {
	br.a.in.Close()
	br.b.in.Close()
}

type bridgeConn struct {
	br   *Bridge
	self *bridgeEndpoint
	peer *bridgeEndpoint
	aToB bool
}

func (c *bridgeConn) Read(b []byte) (int, error) {
	n, err := c.self.in.Read(b)
	if err == ErrQueueClosed {
		return n, net.ErrClosed
	}
	return n, err
}

func (c *bridgeConn) Write(b []byte) (int, error) {
	c.br.enqueue(c.aToB, b)
	return len(b), nil
}

func (c *bridgeConn) Close() error                       { c.self.in.Close(); return nil }
func (c *bridgeConn) LocalAddr() net.Addr                { return c.self.local }
func (c *bridgeConn) RemoteAddr() net.Addr               { return c.self.remote }
func (c *bridgeConn) SetDeadline(t time.Time) error      { return nil }
func (c *bridgeConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *bridgeConn) SetWriteDeadline(t time.Time) error { return nil }
