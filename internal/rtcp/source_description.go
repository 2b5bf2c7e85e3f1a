// MIT License
//
// Copyright (c) 2018 Pions
//
// Modification and extensions:
// Copyright (c) 2019 Lanikai Labs. All rights reserved.

package rtcp

import "encoding/binary"

// SDESType is the type of an SDES item, as registered with IANA.
type SDESType uint8

// SDES item types. See RFC 3550 §6.5.
const (
	SDESEnd      SDESType = 0
	SDESCNAME    SDESType = 1
	SDESName     SDESType = 2
	SDESEmail    SDESType = 3
	SDESPhone    SDESType = 4
	SDESLocation SDESType = 5
	SDESTool     SDESType = 6
	SDESNote     SDESType = 7
	SDESPrivate  SDESType = 8
)

// SourceDescriptionItem represents a single SDES item, carrying one
// piece of information about an SSRC/CSRC.
type SourceDescriptionItem struct {
	Type SDESType
	Text string
}

func (it SourceDescriptionItem) len() int {
	if it.Type == SDESEnd {
		return 1
	}
	return 2 + len(it.Text)
}

// SourceDescriptionChunk holds a set of SDES items describing a single
// source.
type SourceDescriptionChunk struct {
	Source uint32
	Items  []SourceDescriptionItem
}

func (c SourceDescriptionChunk) len() int {
	n := 4
	for _, it := range c.Items {
		n += it.len()
	}
	n++ // terminating null octet
	return n + padTo4(n)
}

// A SourceDescription packet describes the sources in an RTP session.
// See RFC 3550 §6.5.
type SourceDescription struct {
	Chunks []SourceDescriptionChunk
}

// Header returns the Header associated with this packet.
func (s SourceDescription) Header() Header {
	return Header{
		Count:  uint8(len(s.Chunks)),
		Type:   TypeSourceDescription,
		Length: uint16((s.len() / 4) - 1),
	}
}

func (s SourceDescription) len() int {
	n := headerLength
	for _, c := range s.Chunks {
		n += c.len()
	}
	return n
}

// DestinationSSRC returns an array of SSRC values that this packet
// refers to.
func (s SourceDescription) DestinationSSRC() []uint32 {
	out := make([]uint32, 0, len(s.Chunks))
	for _, c := range s.Chunks {
		out = append(out, c.Source)
	}
	return out
}

// Marshal encodes the SourceDescription in binary.
func (s SourceDescription) Marshal() ([]byte, error) {
	if len(s.Chunks) > countMax {
		return nil, errTooManyChunks
	}

	rawPacket := make([]byte, s.len())
	hData, err := s.Header().Marshal()
	if err != nil {
		return nil, err
	}
	copy(rawPacket, hData)

	off := headerLength
	for _, c := range s.Chunks {
		start := off
		binary.BigEndian.PutUint32(rawPacket[off:], c.Source)
		off += 4
		for _, it := range c.Items {
			if it.Type != SDESEnd && len(it.Text) > 255 {
				return nil, errSDESTextTooLong
			}
			rawPacket[off] = uint8(it.Type)
			off++
			if it.Type != SDESEnd {
				rawPacket[off] = uint8(len(it.Text))
				off++
				copy(rawPacket[off:], it.Text)
				off += len(it.Text)
			}
		}
		rawPacket[off] = uint8(SDESEnd)
		off++
		off = start + c.len()
	}

	return rawPacket, nil
}

// Unmarshal decodes the SourceDescription from binary.
func (s *SourceDescription) Unmarshal(rawPacket []byte) error {
	if len(rawPacket) < headerLength {
		return errPacketTooShort
	}

	var h Header
	if err := h.Unmarshal(rawPacket); err != nil {
		return err
	}
	if h.Type != TypeSourceDescription {
		return errWrongType
	}

	end := headerLength + rtcpLengthBytes(h.Length)
	if end > len(rawPacket) {
		return errPacketTooShort
	}

	off := headerLength
	s.Chunks = nil
	for i := 0; i < int(h.Count); i++ {
		if off+4 > end {
			return errPacketTooShort
		}
		start := off
		var c SourceDescriptionChunk
		c.Source = binary.BigEndian.Uint32(rawPacket[off:])
		off += 4

		for {
			if off >= end {
				return errSDESMissingType
			}
			t := SDESType(rawPacket[off])
			off++
			if t == SDESEnd {
				break
			}
			if off >= end {
				return errPacketTooShort
			}
			length := int(rawPacket[off])
			off++
			if off+length > end {
				return errPacketTooShort
			}
			c.Items = append(c.Items, SourceDescriptionItem{
				Type: t,
				Text: string(rawPacket[off : off+length]),
			})
			off += length
		}

		// Advance to the next 32-bit boundary within this chunk.
		consumed := off - start
		off = start + consumed + padTo4(consumed)

		s.Chunks = append(s.Chunks, c)
	}

	return nil
}
