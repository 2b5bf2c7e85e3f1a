package sctp

// Congestion control per RFC4960 §7.2: slow start while cwnd <= ssthresh,
// congestion avoidance above it, and a multiplicative cwnd cut (with
// ssthresh set to half of cwnd, floor 4*MTU) on a T3-rtx timeout. No fast-retransmit/fast-recovery
// distinct path is modeled beyond what a SACK-driven cwnd cut already
// provides: a SACK listing three or more duplicate TSNs cuts cwnd to half
// its size, floor 4*MTU (cutCwndLocked), and retransmits nothing; only a T3-rtx timeout
// retransmits and collapses cwnd to one MTU.

func (a *Association) handleSackLocked(s *chunkSack) error {
	if sna32LT(s.cumulativeTSN, a.lowestInflightTSN()) && len(a.inflight) > 0 {
		return nil // stale SACK
	}

	ackedBytes := 0
	for tsn, c := range a.inflight {
		if sna32LTE(tsn, s.cumulativeTSN) {
			ackedBytes += len(c.userData)
			delete(a.inflight, tsn)
		}
	}
	for _, g := range s.gapAckBlocks {
		for tsn := s.cumulativeTSN + uint32(g.start); sna32LTE(tsn, s.cumulativeTSN+uint32(g.end)); tsn++ {
			if c, ok := a.inflight[tsn]; ok {
				c.acked = true
			}
		}
	}

	a.peerRwnd = s.advertisedRwnd

	if ackedBytes > 0 {
		a.growCwndLocked(ackedBytes)
	}

	if len(s.duplicateTSNs) >= 3 {
		a.cutCwndLocked()
	}

	if a.state == stateShutdownPending && len(a.inflight) == 0 && a.pending.len() == 0 {
		a.state = stateShutdownSent
		return a.sendChunkLocked(&chunkShutdown{cumulativeTSN: a.peerCumulativeTSN}, 0)
	}
	return nil
}

func (a *Association) lowestInflightTSN() uint32 {
	var lowest uint32
	first := true
	for tsn := range a.inflight {
		if first || sna32LT(tsn, lowest) {
			lowest = tsn
			first = false
		}
	}
	return lowest
}

// growCwndLocked applies slow start (cwnd += bytes acked, capped by MTU
// per ack) at or below ssthresh, or congestion avoidance (cwnd += MTU*MTU/cwnd)
// above it [RFC4960 §7.2.1, §7.2.2].
func (a *Association) growCwndLocked(ackedBytes int) {
	if a.cwnd <= a.ssthresh {
		inc := uint32(ackedBytes)
		if inc > defaultMTU {
			inc = defaultMTU
		}
		a.cwnd += inc
	} else {
		a.cwnd += uint32(defaultMTU*defaultMTU) / a.cwnd
	}
}

// cutCwndLocked applies RFC4960 §7.2.3's response to loss: set ssthresh
// to half of cwnd (floor 4*MTU), and drop cwnd to ssthresh.
func (a *Association) cutCwndLocked() {
	a.ssthresh = a.cwnd / 2
	if a.ssthresh < 4*defaultMTU {
		a.ssthresh = 4 * defaultMTU
	}
	a.cwnd = a.ssthresh
}

// onRetransmitTimeoutLocked is RFC4960 §7.2.3's T3-rtx expiry response:
// cwnd collapses to 1 MTU, all timed-out chunks go through slow start from
// scratch.
func (a *Association) onRetransmitTimeoutLocked() {
	a.ssthresh = a.cwnd / 2
	if a.ssthresh < 4*defaultMTU {
		a.ssthresh = 4 * defaultMTU
	}
	a.cwnd = defaultMTU
}
