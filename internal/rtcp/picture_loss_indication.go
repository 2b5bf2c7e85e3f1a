// MIT License
//
// Copyright (c) 2018 Pions
//
// Modification and extensions:
// Copyright (c) 2019 Lanikai Labs. All rights reserved.

package rtcp

import "encoding/binary"

const pliHeaderSize = 8

// A PictureLossIndication informs the encoder that a decoder has lost
// the picture of a part of it, and requests a full intra frame to
// recover. See RFC 4585 §6.3.1.
type PictureLossIndication struct {
	Sender uint32
	Source uint32
}

// Header returns the Header associated with this packet.
func (p PictureLossIndication) Header() Header {
	return Header{
		Count:  FormatPLI,
		Type:   TypePayloadSpecificFeedback,
		Length: uint16((headerLength+pliHeaderSize)/4 - 1),
	}
}

// DestinationSSRC returns an array of SSRC values that this packet
// refers to.
func (p PictureLossIndication) DestinationSSRC() []uint32 {
	return []uint32{p.Source}
}

// Marshal encodes the PictureLossIndication packet in binary.
func (p PictureLossIndication) Marshal() ([]byte, error) {
	rawPacket := make([]byte, headerLength+pliHeaderSize)
	hData, err := p.Header().Marshal()
	if err != nil {
		return nil, err
	}
	copy(rawPacket, hData)
	binary.BigEndian.PutUint32(rawPacket[headerLength:], p.Sender)
	binary.BigEndian.PutUint32(rawPacket[headerLength+4:], p.Source)
	return rawPacket, nil
}

// Unmarshal decodes the PictureLossIndication packet from binary.
func (p *PictureLossIndication) Unmarshal(rawPacket []byte) error {
	if len(rawPacket) < (headerLength + pliHeaderSize) {
		return errPacketTooShort
	}

	var h Header
	if err := h.Unmarshal(rawPacket); err != nil {
		return err
	}
	if h.Type != TypePayloadSpecificFeedback || h.Count != FormatPLI {
		return errWrongType
	}

	p.Sender = binary.BigEndian.Uint32(rawPacket[headerLength:])
	p.Source = binary.BigEndian.Uint32(rawPacket[headerLength+4:])
	return nil
}
