package ice

import (
	"fmt"
)

type CandidatePair struct {
	id         string
	local      Candidate
	remote     Candidate
	foundation string
	component  int

	state     CandidatePairState
	nominated bool

	// succeeded becomes true the first time a connectivity check on this
	// pair gets a success response. Regular nomination (RFC8445 §8.1.1)
	// only nominates a pair that has already succeeded once.
	succeeded bool

	// nominating is set when the controlling agent has picked this pair
	// for regular nomination and is about to re-check it with
	// USE-CANDIDATE set.
	nominating bool

	// controlling records this agent's role at the time the pair was
	// created, for use in the RFC8445 §16 pair priority formula. A role
	// change from role-conflict resolution only affects pairs created
	// afterward.
	controlling bool
}

// Candidate pair states
type CandidatePairState int

const (
	Frozen     CandidatePairState = 0
	Waiting                       = 1
	InProgress                    = 2
	Succeeded                     = 3
	Failed                        = 4
)

func newCandidatePair(seq int, local, remote Candidate) *CandidatePair {
	return newCandidatePairWithRole(seq, local, remote, false)
}

func newCandidatePairWithRole(seq int, local, remote Candidate, controlling bool) *CandidatePair {
	if local.component != remote.component {
		log.Panicf("Candidates in pair have different components: %d != %d", local.component, remote.component)
	}
	id := fmt.Sprintf("Pair#%d", seq)
	foundation := fmt.Sprintf("%s/%s", local.foundation, remote.foundation)
	return &CandidatePair{
		id:          id,
		local:       local,
		remote:      remote,
		foundation:  foundation,
		component:   local.component,
		controlling: controlling,
	}
}

// sendStun sends msg to the pair's remote address from its local base,
// registering responseHandler (if non-nil) for the matching response.
func (p *CandidatePair) sendStun(msg *stunMessage, responseHandler stunHandler) error {
	return p.local.base.sendStun(msg, p.remote.address.netAddr(), responseHandler)
}

func (p *CandidatePair) String() string {
	var state string
	switch p.state {
	case Frozen:
		state = "Frozen"
	case Waiting:
		state = "Waiting"
	case InProgress:
		state = "In Progress"
	case Succeeded:
		state = "Succedeed"
	case Failed:
		state = "Failed"
	}
	return fmt.Sprintf("%s: %s -> %s [%s]", p.id, p.local.address, p.remote.address, state)
}

// Priority computes the pair priority per [RFC8445 §6.1.2.3], where G is the
// controlling agent's candidate priority and D is the controlled agent's.
func (p *CandidatePair) Priority() uint64 {
	var G, D uint64
	if p.controlling {
		G, D = uint64(p.local.priority), uint64(p.remote.priority)
	} else {
		G, D = uint64(p.remote.priority), uint64(p.local.priority)
	}
	var B uint64 = 0
	if G > D {
		B = 1
	}
	return min(G, D)<<32 + max(G, D)<<1 + B
}

func min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
