// MIT License
//
// Copyright (c) 2018 Pions
//
// Modification and extensions:
// Copyright (c) 2019 Lanikai Labs. All rights reserved.

package rtcp

import "encoding/binary"

const srHeaderSize = 24

// A SenderReport sends transmission and reception statistics from an
// active participant, in addition to reports about reception at other
// sources. See RFC 3550 §6.4.1.
type SenderReport struct {
	// SSRC of the sender of this report.
	SSRC uint32
	// NTPTime is the wall clock time at which this report was sent, in
	// 64-bit NTP format.
	NTPTime uint64
	// RTPTime is the RTP timestamp corresponding to NTPTime.
	RTPTime uint32
	// PacketCount is the total number of RTP packets sent by the sender
	// since starting transmission.
	PacketCount uint32
	// OctetCount is the total number of payload octets sent by the
	// sender since starting transmission.
	OctetCount uint32
	// Reports contains zero or more reception report blocks, one for
	// each source the sender has recently received from.
	Reports []ReceptionReport
}

// Header returns the Header associated with this packet.
func (r SenderReport) Header() Header {
	return Header{
		Count:  uint8(len(r.Reports)),
		Type:   TypeSenderReport,
		Length: uint16((r.len() / 4) - 1),
	}
}

func (r SenderReport) len() int {
	return headerLength + srHeaderSize + len(r.Reports)*reportSize
}

// DestinationSSRC returns an array of SSRC values that this packet
// refers to.
func (r SenderReport) DestinationSSRC() []uint32 {
	out := make([]uint32, 0, len(r.Reports)+1)
	out = append(out, r.SSRC)
	for _, rr := range r.Reports {
		out = append(out, rr.SSRC)
	}
	return out
}

// Marshal encodes the SenderReport in binary.
func (r SenderReport) Marshal() ([]byte, error) {
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
	binary.BigEndian.PutUint64(rawPacket[off+4:], r.NTPTime)
	binary.BigEndian.PutUint32(rawPacket[off+12:], r.RTPTime)
	binary.BigEndian.PutUint32(rawPacket[off+16:], r.PacketCount)
	binary.BigEndian.PutUint32(rawPacket[off+20:], r.OctetCount)
	off += srHeaderSize

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

// Unmarshal decodes the SenderReport from binary.
func (r *SenderReport) Unmarshal(rawPacket []byte) error {
	if len(rawPacket) < (headerLength + srHeaderSize) {
		return errPacketTooShort
	}

	var h Header
	if err := h.Unmarshal(rawPacket); err != nil {
		return err
	}
	if h.Type != TypeSenderReport {
		return errWrongType
	}

	off := headerLength
	r.SSRC = binary.BigEndian.Uint32(rawPacket[off:])
	r.NTPTime = binary.BigEndian.Uint64(rawPacket[off+4:])
	r.RTPTime = binary.BigEndian.Uint32(rawPacket[off+12:])
	r.PacketCount = binary.BigEndian.Uint32(rawPacket[off+16:])
	r.OctetCount = binary.BigEndian.Uint32(rawPacket[off+20:])
	off += srHeaderSize

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
