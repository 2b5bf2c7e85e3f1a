package dtls

import errors "golang.org/x/xerrors"

// messageReassembler accumulates the fragments of one handshake message
// (RFC6347 §4.2.3). Fragments are expected in non-decreasing offset order,
// which every peer implementation in practice sends; out-of-order fragments
// are rejected rather than buffered.
type messageReassembler struct {
	typ      HandshakeType
	length   uint32
	received uint32
	body     []byte
}

func newMessageReassembler(h HandshakeHeader) *messageReassembler {
	return &messageReassembler{typ: h.Type, length: h.Length, body: make([]byte, h.Length)}
}

// add folds one fragment in. complete is true once every byte of the
// message has been received.
func (r *messageReassembler) add(h HandshakeHeader, fragment []byte) (complete bool, err error) {
	if h.Type != r.typ || h.Length != r.length {
		return false, errors.New("dtls: fragment mismatches in-progress message")
	}
	if h.FragmentOffset != r.received {
		return false, errFragmentOutOfBounds
	}
	if h.FragmentOffset+h.FragmentLength > r.length || uint32(len(fragment)) != h.FragmentLength {
		return false, errFragmentOutOfBounds
	}
	copy(r.body[h.FragmentOffset:h.FragmentOffset+h.FragmentLength], fragment)
	r.received += h.FragmentLength
	return r.received >= r.length, nil
}
