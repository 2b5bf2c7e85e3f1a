package turn

import (
	"net"
	"sync"
	"time"
)

// DefaultLifetime is the allocation lifetime requested when the caller does
// not ask for a specific one [RFC8656 §2.2].
const DefaultLifetime = 10 * time.Minute

// Allocation is this client's record of one TURN relay allocation: the
// relayed transport address the server handed back, and the permissions
// and channel bindings installed against it. Unlike the original
// server-side Allocation (which owns the relay socket and a packet-handler
// goroutine), this is pure bookkeeping -- the ICE agent uses it to decide
// what CreatePermission/ChannelBind requests to send and to shape the
// resulting relay-type Candidate, grounded on the original implementation's
// allocation::Allocation with its Permission/ChannelBind maps kept but its
// socket-owning half dropped.
type Allocation struct {
	FiveTuple FiveTuple
	RelayAddr net.Addr

	mu              sync.Mutex
	lifetime        time.Duration
	expiresAt       time.Time
	permissions     map[string]*Permission
	channelBindings map[uint16]*ChannelBind
}

func NewAllocation(tuple FiveTuple, relayAddr net.Addr, lifetime time.Duration) *Allocation {
	if lifetime == 0 {
		lifetime = DefaultLifetime
	}
	return &Allocation{
		FiveTuple:       tuple,
		RelayAddr:       relayAddr,
		lifetime:        lifetime,
		expiresAt:       time.Now().Add(lifetime),
		permissions:     make(map[string]*Permission),
		channelBindings: make(map[uint16]*ChannelBind),
	}
}

// Refresh extends the allocation's own lifetime, mirroring the server-side
// Allocation.Refresh.
func (a *Allocation) Refresh(lifetime time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if lifetime == 0 {
		lifetime = a.lifetime
	}
	a.lifetime = lifetime
	a.expiresAt = time.Now().Add(lifetime)
}

func (a *Allocation) Expired(now time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return now.After(a.expiresAt)
}

// HasPermission reports whether addr's IP currently has an installed
// permission.
func (a *Allocation) HasPermission(addr net.Addr) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.permissions[fingerprint(addr)]
	return ok && !p.expired(time.Now())
}

// AddPermission installs (or refreshes) a permission for addr's IP
// [RFC8656 §9].
func (a *Allocation) AddPermission(addr net.Addr) {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := fingerprint(addr)
	if p, ok := a.permissions[key]; ok {
		p.refresh()
		return
	}
	a.permissions[key] = newPermission(addr)
}

// RemovePermission drops the permission for addr's IP, reporting whether
// one existed.
func (a *Allocation) RemovePermission(addr net.Addr) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := fingerprint(addr)
	if _, ok := a.permissions[key]; !ok {
		return false
	}
	delete(a.permissions, key)
	return true
}

// AddChannelBind installs a channel binding, refreshing it (and the
// permission it implies) if the same number/peer pair is already bound.
// A conflicting number or peer on an existing bind is rejected
// [RFC8656 §11, mirroring add_channel_bind's conflict checks in the
// original implementation, which test_add_channel_bind exercises].
func (a *Allocation) AddChannelBind(number uint16, peer net.Addr, lifetime time.Duration) error {
	if number < MinChannelNumber || number > MaxChannelNumber {
		return errChannelNumberOutOfRange
	}
	if lifetime == 0 {
		lifetime = channelBindTimeout
	}

	a.mu.Lock()
	if cb, ok := a.channelBindings[number]; ok {
		if cb.Peer.String() != peer.String() {
			a.mu.Unlock()
			return errChannelNumberConflict
		}
		cb.refresh()
		a.mu.Unlock()
		a.AddPermission(peer)
		return nil
	}
	for _, cb := range a.channelBindings {
		if cb.Peer.String() == peer.String() {
			a.mu.Unlock()
			return errPeerAlreadyBound
		}
	}
	a.channelBindings[number] = newChannelBind(number, peer)
	a.mu.Unlock()

	a.AddPermission(peer)
	return nil
}

// RemoveChannelBind drops a channel binding by number.
func (a *Allocation) RemoveChannelBind(number uint16) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.channelBindings[number]; !ok {
		return false
	}
	delete(a.channelBindings, number)
	return true
}

// ChannelAddr returns the peer address bound to number, if any.
func (a *Allocation) ChannelAddr(number uint16) (net.Addr, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	cb, ok := a.channelBindings[number]
	if !ok {
		return nil, false
	}
	return cb.Peer, true
}

// ChannelNumber returns the channel number bound to addr, if any.
func (a *Allocation) ChannelNumber(addr net.Addr) (uint16, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, cb := range a.channelBindings {
		if cb.Peer.String() == addr.String() {
			return cb.Number, true
		}
	}
	return 0, false
}
