// Package util collects the small stateful primitives shared by the SRTP,
// SCTP, and ICE/STUN layers: replay-window detection, a buffered async byte
// queue, and the loss-testing bridge used by property tests.
package util

import "sync"

// ReplayDetector implements the sliding-window replay check of RFC 3711
// §3.3.2, generalized to an arbitrary sequence width (48 bits for SRTP, 31
// for SRTCP, 16 for STUN/DTLS record sequence numbers). It is a two-phase
// commit: Check reports whether a sequence number would be accepted without
// mutating state, Accept commits it. Check is therefore idempotent; Accept is
// not.
type ReplayDetector struct {
	mu sync.Mutex

	windowSize uint64
	seqBits    uint8 // width of the sequence space, e.g. 48, 31, 16

	highest uint64 // highest sequence number accepted so far
	started bool
	window  []uint64 // bitmap, window[i] holds bits for highest-i*64 .. highest-i*64-63
}

// NewReplayDetector creates a detector with the given window size (bits held
// behind the high-water mark) and sequence space width.
func NewReplayDetector(windowSize uint64, seqBits uint8) *ReplayDetector {
	if windowSize == 0 {
		windowSize = 64
	}
	words := (windowSize + 63) / 64
	if words == 0 {
		words = 1
	}
	return &ReplayDetector{
		windowSize: windowSize,
		seqBits:    seqBits,
		window:     make([]uint64, words),
	}
}

func (d *ReplayDetector) modSpace() uint64 {
	if d.seqBits >= 64 {
		return 0 // treat as full 64-bit space (no modular wrap)
	}
	return uint64(1) << d.seqBits
}

// modDistance returns (a - b) taken modulo the detector's sequence space,
// interpreted as a signed value in (-space/2, space/2].
func (d *ReplayDetector) modDistance(a, b uint64) int64 {
	space := d.modSpace()
	if space == 0 {
		return int64(a) - int64(b)
	}
	diff := (a - b) % space
	if diff > space/2 {
		diff -= space
	}
	return int64(diff)
}

// Check reports whether seq is "fresh": newer than the high-water mark, or
// within the window behind it with its bit still unset. It does not mutate
// the detector, so repeated calls with the same seq give the same answer
// until an intervening Accept.
func (d *ReplayDetector) Check(seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.checkLocked(seq)
}

func (d *ReplayDetector) checkLocked(seq uint64) bool {
	if !d.started {
		return true
	}

	delta := d.modDistance(seq, d.highest)
	if delta > 0 {
		// Newer than anything seen: always fresh.
		return true
	}
	behind := uint64(-delta)
	if behind >= d.windowSize {
		// Too old, outside the window.
		return false
	}
	return !d.bitSet(behind)
}

// Accept commits seq into the window. Callers must call Check first (and
// only commit once the packet's authenticity has been verified, per spec
// §4.B: "Commit ROC only after tag verifies and replay accepts").
func (d *ReplayDetector) Accept(seq uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started {
		d.started = true
		d.highest = seq
		d.setBit(0)
		return
	}

	delta := d.modDistance(seq, d.highest)
	if delta > 0 {
		// Advance the window by delta, shifting previously-accepted bits down.
		d.shift(uint64(delta))
		d.highest = seq
		d.setBit(0)
		return
	}
	behind := uint64(-delta)
	if behind < d.windowSize {
		d.setBit(behind)
	}
}

func (d *ReplayDetector) bitSet(behind uint64) bool {
	word := behind / 64
	bit := behind % 64
	if int(word) >= len(d.window) {
		return false
	}
	return d.window[word]&(1<<bit) != 0
}

func (d *ReplayDetector) setBit(behind uint64) {
	word := behind / 64
	bit := behind % 64
	if int(word) >= len(d.window) {
		return
	}
	d.window[word] |= 1 << bit
}

// shift moves the window "up" by n positions (n new, more-recent sequence
// numbers have been accepted), discarding bits that fall off the tail.
func (d *ReplayDetector) shift(n uint64) {
	if n >= d.windowSize {
		for i := range d.window {
			d.window[i] = 0
		}
		return
	}
	wordShift := n / 64
	bitShift := n % 64

	for i := len(d.window) - 1; i >= 0; i-- {
		var v uint64
		srcWord := i - int(wordShift)
		if srcWord >= 0 {
			v = d.window[srcWord] << bitShift
			if bitShift > 0 && srcWord-1 >= 0 {
				v |= d.window[srcWord-1] >> (64 - bitShift)
			}
		}
		d.window[i] = v
	}
}

// Highest returns the highest sequence number accepted so far.
func (d *ReplayDetector) Highest() (uint64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.highest, d.started
}
