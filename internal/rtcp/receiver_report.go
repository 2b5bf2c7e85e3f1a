// MIT License
//
// Copyright (c) 2018 Pions
//
// Modification and extensions:
// Copyright (c) 2019 Lanikai Labs. All rights reserved.

package rtcp

import "encoding/binary"

const rrHeaderSize = 4

// A ReceiverReport reports reception statistics, for participants that
// are not active senders. See RFC 3550 §6.4.2.
type ReceiverReport struct {
	// SSRC of the packet sender.
	SSRC uint32
	// Reports contains zero or more reception report blocks, one for
	// each source the receiver has recently received from.
	Reports []ReceptionReport
}

// Header returns the Header associated with this packet.
func (r ReceiverReport) Header() Header {
	return Header{
		Count:  uint8(len(r.Reports)),
		Type:   TypeReceiverReport,
		Length: uint16((r.len() / 4) - 1),
	}
}

func (r ReceiverReport) len() int {
	return headerLength + rrHeaderSize + len(r.Reports)*reportSize
}

// DestinationSSRC returns an array of SSRC values that this packet
// refers to.
func (r ReceiverReport) DestinationSSRC() []uint32 {
	out := make([]uint32, 0, len(r.Reports)+1)
	out = append(out, r.SSRC)
	for _, rr := range r.Reports {
		out = append(out, rr.SSRC)
	}
	return out
}

// Marshal encodes the ReceiverReport in binary.
func (r ReceiverReport) Marshal() ([]byte, error) {
	if len(r.Reports) > countMax {
		return nil, errTooManyReports
	}

	rawPacket := make([]byte, r.len())
	hData, err := r.Header().Marshal()
	if err != nil {
		return nil, err
	}
	copy(rawPacket, hData)

	off := headerLength
	binary.BigEndian.PutUint32(rawPacket[off:], r.SSRC)
	off += rrHeaderSize

	for _, rr := range r.Reports {
		rrData, err := rr.Marshal()
		if err != nil {
			return nil, err
		}
		copy(rawPacket[off:], rrData)
		off += reportSize
	}

	return rawPacket, nil
}

// Unmarshal decodes the ReceiverReport from binary.
func (r *ReceiverReport) Unmarshal(rawPacket []byte) error {
	if len(rawPacket) < (headerLength + rrHeaderSize) {
		return errPacketTooShort
	}

	var h Header
	if err := h.Unmarshal(rawPacket); err != nil {
		return err
	}
	if h.Type != TypeReceiverReport {
		return errWrongType
	}

	off := headerLength
	r.SSRC = binary.BigEndian.Uint32(rawPacket[off:])
	off += rrHeaderSize

	r.Reports = nil
	for i := 0; i < int(h.Count); i++ {
		if off+reportSize > len(rawPacket) {
			return errPacketTooShort
		}
		var rr ReceptionReport
		if err := rr.Unmarshal(rawPacket[off : off+reportSize]); err != nil {
			return err
		}
		r.Reports = append(r.Reports, rr)
		off += reportSize
	}

	if end := headerLength + rtcpLengthBytes(h.Length); end != off {
		return errBadLength
	}

	return nil
}
