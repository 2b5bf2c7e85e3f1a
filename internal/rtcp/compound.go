// MIT License
//
// Copyright (c) 2018 Pions
//
// Modification and extensions:
// Copyright (c) 2019 Lanikai Labs. All rights reserved.

package rtcp

// CompoundPacket is an ordered sequence of RTCP packets transmitted
// together in a single lower-layer datagram. RFC 3550 §6.1 requires
// that the first packet in a compound be a SenderReport or
// ReceiverReport, and that a Goodbye (if present) come last; this type
// preserves that ordering without enforcing it, recording any
// violation for the caller via Validate.
type CompoundPacket []Packet

// Marshal encodes each packet in order and concatenates the results.
func (c CompoundPacket) Marshal() ([]byte, error) {
	var out []byte
	for _, p := range c {
		b, err := p.Marshal()
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// Unmarshal decodes a sequence of concatenated RTCP packets.
func (c *CompoundPacket) Unmarshal(rawPacket []byte) error {
	*c = nil
	for len(rawPacket) > 0 {
		p, h, err := Unmarshal(rawPacket)
		if err != nil {
			return err
		}
		*c = append(*c, p)

		consumed := headerLength + rtcpLengthBytes(h.Length)
		if consumed > len(rawPacket) {
			return errBadLength
		}
		rawPacket = rawPacket[consumed:]
	}
	return nil
}

// Validate reports whether the compound packet conforms to RFC 3550
// §6.1: it must be non-empty, begin with a SenderReport or
// ReceiverReport, and any Goodbye packets must be the final entries.
func (c CompoundPacket) Validate() error {
	if len(c) == 0 {
		return errMissingCompoundHeader
	}

	switch c[0].Header().Type {
	case TypeSenderReport, TypeReceiverReport:
	default:
		return errMissingCompoundHeader
	}

	for _, p := range c[:len(c)-1] {
		if p.Header().Type == TypeGoodbye {
			return errGoodbyeNotLast
		}
	}

	return nil
}
