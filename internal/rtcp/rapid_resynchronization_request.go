// MIT License
//
// Copyright (c) 2018 Pions
//
// Modification and extensions:
// Copyright (c) 2019 Lanikai Labs. All rights reserved.

package rtcp

import "encoding/binary"

const rrrHeaderSize = 8

// A RapidResynchronizationRequest requests that a media sender provide
// a rapid resynchronization point, without necessarily requiring a
// full intra frame. See RFC 4585 §6.1, FMT 5.
type RapidResynchronizationRequest struct {
	Sender uint32
	Source uint32
}

// Header returns the Header associated with this packet.
func (r RapidResynchronizationRequest) Header() Header {
	return Header{
		Count:  FormatRRR,
		Type:   TypeTransportSpecificFeedback,
		Length: uint16((headerLength+rrrHeaderSize)/4 - 1),
	}
}

// DestinationSSRC returns an array of SSRC values that this packet
// refers to.
func (r RapidResynchronizationRequest) DestinationSSRC() []uint32 {
	return []uint32{r.Source}
}

// Marshal encodes the RapidResynchronizationRequest packet in binary.
func (r RapidResynchronizationRequest) Marshal() ([]byte, error) {
	rawPacket := make([]byte, headerLength+rrrHeaderSize)
	hData, err := r.Header().Marshal()
	if err != nil {
		return nil, err
	}
	copy(rawPacket, hData)
	binary.BigEndian.PutUint32(rawPacket[headerLength:], r.Sender)
	binary.BigEndian.PutUint32(rawPacket[headerLength+4:], r.Source)
	return rawPacket, nil
}

// Unmarshal decodes the RapidResynchronizationRequest packet from binary.
func (r *RapidResynchronizationRequest) Unmarshal(rawPacket []byte) error {
	if len(rawPacket) < (headerLength + rrrHeaderSize) {
		return errPacketTooShort
	}

	var h Header
	if err := h.Unmarshal(rawPacket); err != nil {
		return err
	}
	if h.Type != TypeTransportSpecificFeedback || h.Count != FormatRRR {
		return errWrongType
	}

	r.Sender = binary.BigEndian.Uint32(rawPacket[headerLength:])
	r.Source = binary.BigEndian.Uint32(rawPacket[headerLength+4:])
	return nil
}
