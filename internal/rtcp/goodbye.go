// MIT License
//
// Copyright (c) 2018 Pions
//
// Modification and extensions:
// Copyright (c) 2019 Lanikai Labs. All rights reserved.

package rtcp

import "encoding/binary"

// A Goodbye packet indicates that one or more sources are no longer
// active. See RFC 3550 §6.6.
type Goodbye struct {
	// Sources is the list of SSRC/CSRC identifiers leaving the session.
	Sources []uint32
	// Reason is an optional, human-readable reason for leaving.
	Reason string
}

func (g Goodbye) len() int {
	n := headerLength + 4*len(g.Sources)
	if g.Reason != "" {
		n += 1 + len(g.Reason)
	}
	return n + padTo4(n)
}

// Header returns the Header associated with this packet.
func (g Goodbye) Header() Header {
	return Header{
		Count:  uint8(len(g.Sources)),
		Type:   TypeGoodbye,
		Length: uint16((g.len() / 4) - 1),
	}
}

// DestinationSSRC returns an array of SSRC values that this packet
// refers to.
func (g Goodbye) DestinationSSRC() []uint32 {
	return g.Sources
}

// Marshal encodes the Goodbye packet in binary.
func (g Goodbye) Marshal() ([]byte, error) {
	if len(g.Sources) > countMax {
		return nil, errTooManySources
	}
	if len(g.Reason) > 255 {
		return nil, errReasonTooLong
	}

	rawPacket := make([]byte, g.len())
	hData, err := g.Header().Marshal()
	if err != nil {
		return nil, err
	}
	copy(rawPacket, hData)

	off := headerLength
	for _, src := range g.Sources {
		binary.BigEndian.PutUint32(rawPacket[off:], src)
		off += 4
	}
	if g.Reason != "" {
		rawPacket[off] = uint8(len(g.Reason))
		off++
		copy(rawPacket[off:], g.Reason)
	}

	return rawPacket, nil
}

// Unmarshal decodes the Goodbye packet from binary.
func (g *Goodbye) Unmarshal(rawPacket []byte) error {
	if len(rawPacket) < headerLength {
		return errPacketTooShort
	}

	var h Header
	if err := h.Unmarshal(rawPacket); err != nil {
		return err
	}
	if h.Type != TypeGoodbye {
		return errWrongType
	}

	end := headerLength + rtcpLengthBytes(h.Length)
	if end > len(rawPacket) {
		return errPacketTooShort
	}

	off := headerLength
	g.Sources = nil
	for i := 0; i < int(h.Count); i++ {
		if off+4 > end {
			return errPacketTooShort
		}
		g.Sources = append(g.Sources, binary.BigEndian.Uint32(rawPacket[off:]))
		off += 4
	}

	g.Reason = ""
	if off < end {
		length := int(rawPacket[off])
		off++
		if off+length > end {
			return errPacketTooShort
		}
		g.Reason = string(rawPacket[off : off+length])
	}

	return nil
}
