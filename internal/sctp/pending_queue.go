package sctp

import "sync"

// defaultSendQueueByteLimit caps the total unsent user-data bytes a
// pendingQueue will hold before push blocks, the credit-based backpressure
// spec §3/§4.F require.
const defaultSendQueueByteLimit = 16 * 1024 * 1024

// pendingQueue holds fragments ready to go out on the wire but not yet
// selected for transmission, split into ordered and unordered FIFOs so
// unordered messages never wait behind a stalled ordered one. Once a
// message's beginning fragment is popped, the queue "selects" that message
// and refuses to interleave any other until its ending fragment is popped,
// matching one-message-at-a-time framing on the wire
// [RFC4960 §6.1 note on fragment ordering]. Grounded on the original
// implementation's PendingQueue/PushLimitSemaphore, reworked onto a single
// sync.Mutex + sync.Cond rather than an atomics-plus-condvar split, since Go
// gives us no lock-free credit counter idiom worth reaching for here.
type pendingQueue struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	limit    uint64
	credits  uint64 // bytes currently available

	ordered   []*chunkPayloadData
	unordered []*chunkPayloadData

	nBytes int
	selected          bool
	unorderedSelected bool
}

func newPendingQueue(byteLimit uint64) *pendingQueue {
	if byteLimit == 0 {
		byteLimit = defaultSendQueueByteLimit
	}
	q := &pendingQueue{limit: byteLimit, credits: byteLimit}
	q.notFull = sync.NewCond(&q.mu)
	return q
}

// push blocks until enough credit is available, then appends c to the
// appropriate FIFO.
func (q *pendingQueue) push(c *chunkPayloadData) {
	need := uint64(len(c.userData))
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.credits < need {
		q.notFull.Wait()
	}
	q.credits -= need

	if c.unordered {
		q.unordered = append(q.unordered, c)
	} else {
		q.ordered = append(q.ordered, c)
	}
	q.nBytes += len(c.userData)
}

// pop removes and returns the next fragment eligible for transmission, or
// nil if nothing is ready. Once a non-ending fragment is popped, the queue
// stays "selected" on that same FIFO until the ending fragment is popped,
// so a large message's fragments are never separated by a fragment from
// another message.
func (q *pendingQueue) pop() *chunkPayloadData {
	q.mu.Lock()
	defer q.mu.Unlock()

	var c *chunkPayloadData
	if q.selected {
		if q.unorderedSelected {
			c = shiftData(&q.unordered)
		} else {
			c = shiftData(&q.ordered)
		}
		if c != nil && c.endingFragment {
			q.selected = false
		}
	} else {
		if len(q.unordered) > 0 {
			c = shiftData(&q.unordered)
			if c != nil && !c.endingFragment {
				q.selected = true
				q.unorderedSelected = true
			}
		} else if len(q.ordered) > 0 {
			c = shiftData(&q.ordered)
			if c != nil && !c.endingFragment {
				q.selected = true
				q.unorderedSelected = false
			}
		}
	}

	if c != nil {
		q.nBytes -= len(c.userData)
		q.credits += uint64(len(c.userData))
		q.notFull.Signal()
	}
	return c
}

func shiftData(queue *[]*chunkPayloadData) *chunkPayloadData {
	if len(*queue) == 0 {
		return nil
	}
	c := (*queue)[0]
	*queue = (*queue)[1:]
	return c
}

func (q *pendingQueue) numBytes() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.nBytes
}

func (q *pendingQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ordered) + len(q.unordered)
}
