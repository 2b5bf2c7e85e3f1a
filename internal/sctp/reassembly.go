package sctp

import "sort"

// reassemblyQueue buffers received DATA fragments for one stream until a
// full beginning..ending run is present, then hands back the reassembled
// message in delivery order [RFC4960 §3.3.1, spec §4.F "Reassembly"].
// Ordered messages deliver by SSN with no gaps; unordered messages deliver
// as soon as their own run completes, regardless of arrival order relative
// to other messages on the stream.
type reassemblyQueue struct {
	streamID uint16

	ordered   []*chunkPayloadData // pending fragments, any SSN, sorted by TSN
	unordered []*chunkPayloadData

	nextSSN uint16
}

func newReassemblyQueue(streamID uint16) *reassemblyQueue {
	return &reassemblyQueue{streamID: streamID}
}

// push folds in one fragment and returns every user message that is now
// complete and deliverable, in delivery order.
func (r *reassemblyQueue) push(c *chunkPayloadData) [][]byte {
	if c.unordered {
		r.unordered = append(r.unordered, c)
		sort.Slice(r.unordered, func(i, j int) bool { return sna32LT(r.unordered[i].tsn, r.unordered[j].tsn) })
		return r.drainUnordered()
	}

	r.ordered = append(r.ordered, c)
	sort.Slice(r.ordered, func(i, j int) bool { return sna32LT(r.ordered[i].tsn, r.ordered[j].tsn) })
	return r.drainOrdered()
}

// drainUnordered repeatedly extracts the first complete begin..end run,
// wherever it sits in the buffer.
func (r *reassemblyQueue) drainUnordered() [][]byte {
	var out [][]byte
	for {
		msg, consumed := extractRun(r.unordered)
		if consumed == 0 {
			return out
		}
		r.unordered = r.unordered[consumed:]
		out = append(out, msg)
	}
}

// drainOrdered only delivers runs belonging to the next expected SSN, in
// order, so ordered delivery never has a gap [spec §4.F].
func (r *reassemblyQueue) drainOrdered() [][]byte {
	var out [][]byte
	for len(r.ordered) > 0 && r.ordered[0].streamSequenceNumber == r.nextSSN {
		msg, consumed := extractRun(r.ordered)
		if consumed == 0 {
			return out
		}
		r.ordered = r.ordered[consumed:]
		out = append(out, msg)
		r.nextSSN++
	}
	return out
}

// extractRun looks for a contiguous-TSN beginning..ending run starting at
// frags[0]. Returns the reassembled payload and how many leading elements
// it consumed, or (nil, 0) if frags[0] isn't a beginning fragment or the
// run isn't yet complete.
func extractRun(frags []*chunkPayloadData) ([]byte, int) {
	if len(frags) == 0 || !frags[0].beginningFragment {
		return nil, 0
	}
	if frags[0].endingFragment {
		return append([]byte(nil), frags[0].userData...), 1
	}

	expected := frags[0].tsn
	for i := 1; i < len(frags); i++ {
		expected++
		if frags[i].tsn != expected {
			return nil, 0
		}
		if frags[i].endingFragment {
			var msg []byte
			for j := 0; j <= i; j++ {
				msg = append(msg, frags[j].userData...)
			}
			return msg, i + 1
		}
	}
	return nil, 0
}
