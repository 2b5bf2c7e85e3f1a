// MIT License
//
// Copyright (c) 2018 Pions
//
// Modification and extensions:
// Copyright (c) 2019 Lanikai Labs. All rights reserved.

package rtcp

import "encoding/binary"

const appHeaderSize = 8

// ApplicationDefined carries an application-specific extension. See
// RFC 3550 §6.7.
type ApplicationDefined struct {
	// SubType is carried in the header's count field, interpreted by the
	// application.
	SubType uint8
	// Source is the SSRC/CSRC of the originator.
	Source uint32
	// Name is a 4-byte ASCII name chosen by the application.
	Name string
	// Data is application-dependent, a multiple of 4 bytes in length.
	Data []byte
}

func (a ApplicationDefined) len() int {
	return headerLength + appHeaderSize + len(a.Data)
}

// Header returns the Header associated with this packet.
func (a ApplicationDefined) Header() Header {
	return Header{
		Count:  a.SubType,
		Type:   TypeApplicationDefined,
		Length: uint16((a.len() / 4) - 1),
	}
}

// DestinationSSRC returns an array of SSRC values that this packet
// refers to.
func (a ApplicationDefined) DestinationSSRC() []uint32 {
	return []uint32{a.Source}
}

// Marshal encodes the ApplicationDefined packet in binary.
func (a ApplicationDefined) Marshal() ([]byte, error) {
	if len(a.Name) != 4 {
		return nil, errWrongMessageID
	}
	if len(a.Data)%4 != 0 {
		return nil, errBadLength
	}

	rawPacket := make([]byte, a.len())
	hData, err := a.Header().Marshal()
	if err != nil {
		return nil, err
	}
	copy(rawPacket, hData)

	off := headerLength
	binary.BigEndian.PutUint32(rawPacket[off:], a.Source)
	copy(rawPacket[off+4:], a.Name)
	copy(rawPacket[off+8:], a.Data)

	return rawPacket, nil
}

// Unmarshal decodes the ApplicationDefined packet from binary.
func (a *ApplicationDefined) Unmarshal(rawPacket []byte) error {
	if len(rawPacket) < (headerLength + appHeaderSize) {
		return errPacketTooShort
	}

	var h Header
	if err := h.Unmarshal(rawPacket); err != nil {
		return err
	}
	if h.Type != TypeApplicationDefined {
		return errWrongType
	}

	end := headerLength + rtcpLengthBytes(h.Length)
	if end > len(rawPacket) {
		return errPacketTooShort
	}

	a.SubType = h.Count
	off := headerLength
	a.Source = binary.BigEndian.Uint32(rawPacket[off:])
	a.Name = string(rawPacket[off+4 : off+8])
	a.Data = append([]byte(nil), rawPacket[off+8:end]...)

	return nil
}
