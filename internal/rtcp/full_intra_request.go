// MIT License
//
// Copyright (c) 2018 Pions
//
// Modification and extensions:
// Copyright (c) 2019 Lanikai Labs. All rights reserved.

package rtcp

import "encoding/binary"

const (
	firHeaderSize  = 8
	firEntrySize   = 8
	firSourceCount = 1
)

// FIREntry pairs the SSRC of a media source with a sequence number
// that increments each time a new FIR request is issued for it.
type FIREntry struct {
	SSRC           uint32
	SequenceNumber uint8
}

// A FullIntraRequest requests that the media sender send a new full
// intra frame for one or more sources. Unlike PictureLossIndication,
// it is not tied to actual packet loss. See RFC 5104 §4.3.1.
type FullIntraRequest struct {
	Sender  uint32
	Source  uint32
	Entries []FIREntry
}

func (f FullIntraRequest) len() int {
	return headerLength + firHeaderSize + firEntrySize*len(f.Entries)
}

// Header returns the Header associated with this packet.
func (f FullIntraRequest) Header() Header {
	return Header{
		Count:  FormatFIR,
		Type:   TypePayloadSpecificFeedback,
		Length: uint16((f.len() / 4) - 1),
	}
}

// DestinationSSRC returns an array of SSRC values that this packet
// refers to.
func (f FullIntraRequest) DestinationSSRC() []uint32 {
	out := make([]uint32, 0, len(f.Entries))
	for _, e := range f.Entries {
		out = append(out, e.SSRC)
	}
	return out
}

// Marshal encodes the FullIntraRequest packet in binary.
func (f FullIntraRequest) Marshal() ([]byte, error) {
	rawPacket := make([]byte, f.len())
	hData, err := f.Header().Marshal()
	if err != nil {
		return nil, err
	}
	copy(rawPacket, hData)

	off := headerLength
	binary.BigEndian.PutUint32(rawPacket[off:], f.Sender)
	binary.BigEndian.PutUint32(rawPacket[off+4:], f.Source)
	off += firHeaderSize

	for _, e := range f.Entries {
		binary.BigEndian.PutUint32(rawPacket[off:], e.SSRC)
		rawPacket[off+4] = e.SequenceNumber
		off += firEntrySize
	}

	return rawPacket, nil
}

// Unmarshal decodes the FullIntraRequest packet from binary.
func (f *FullIntraRequest) Unmarshal(rawPacket []byte) error {
	if len(rawPacket) < (headerLength + firHeaderSize) {
		return errPacketTooShort
	}

	var h Header
	if err := h.Unmarshal(rawPacket); err != nil {
		return err
	}
	if h.Type != TypePayloadSpecificFeedback || h.Count != FormatFIR {
		return errWrongType
	}

	end := headerLength + rtcpLengthBytes(h.Length)
	if end > len(rawPacket) {
		return errPacketTooShort
	}

	off := headerLength
	f.Sender = binary.BigEndian.Uint32(rawPacket[off:])
	f.Source = binary.BigEndian.Uint32(rawPacket[off+4:])
	off += firHeaderSize

	f.Entries = nil
	for off+firEntrySize <= end {
		f.Entries = append(f.Entries, FIREntry{
			SSRC:           binary.BigEndian.Uint32(rawPacket[off:]),
			SequenceNumber: rawPacket[off+4],
		})
		off += firEntrySize
	}

	return nil
}
