// MIT License
//
// Copyright (c) 2018 Pions
//
// Modification and extensions:
// Copyright (c) 2019 Lanikai Labs. All rights reserved.

package rtcp

import "encoding/binary"

// reportSize is the marshaled size of a single ReceptionReport block.
const reportSize = 24

// ReceptionReport is a block within SenderReport and ReceiverReport,
// summarizing packet loss and jitter for a single SSRC. See spec §3
// "Reception report" and RFC 3550 §6.4.1.
type ReceptionReport struct {
	// SSRC identifies the source that produced this report.
	SSRC uint32
	// FractionLost is the fraction of RTP packets lost since the previous
	// report, expressed as a fixed-point number in [0, 255]/256.
	FractionLost uint8
	// TotalLost is the cumulative number of packets lost. Saturates at
	// 2^24-1 and is always non-negative.
	TotalLost uint32
	// LastSequenceNumber is the extended highest sequence number received:
	// (cycles << 16) | highest sequence number.
	LastSequenceNumber uint32
	// Jitter is the interarrival jitter estimate.
	Jitter uint32
	// LastSenderReport holds the middle 32 bits of the NTP timestamp from
	// the most recent SR received from this source.
	LastSenderReport uint32
	// Delay is the time since LastSenderReport, in units of 1/65536
	// seconds.
	Delay uint32
}

// Marshal encodes the ReceptionReport in binary.
func (r ReceptionReport) Marshal() ([]byte, error) {
	if r.TotalLost > maxTotalLost {
		return nil, errInvalidTotalLost
	}

	rawPacket := make([]byte, reportSize)
	binary.BigEndian.PutUint32(rawPacket, r.SSRC)
	rawPacket[4] = r.FractionLost
	rawPacket[5] = byte(r.TotalLost >> 16)
	rawPacket[6] = byte(r.TotalLost >> 8)
	rawPacket[7] = byte(r.TotalLost)
	binary.BigEndian.PutUint32(rawPacket[8:], r.LastSequenceNumber)
	binary.BigEndian.PutUint32(rawPacket[12:], r.Jitter)
	binary.BigEndian.PutUint32(rawPacket[16:], r.LastSenderReport)
	binary.BigEndian.PutUint32(rawPacket[20:], r.Delay)
	return rawPacket, nil
}

const maxTotalLost = (1 << 24) - 1

// Unmarshal decodes a ReceptionReport from binary.
func (r *ReceptionReport) Unmarshal(rawPacket []byte) error {
	if len(rawPacket) < reportSize {
		return errPacketTooShort
	}

	r.SSRC = binary.BigEndian.Uint32(rawPacket)
	r.FractionLost = rawPacket[4]
	r.TotalLost = uint32(rawPacket[5])<<16 | uint32(rawPacket[6])<<8 | uint32(rawPacket[7])
	r.LastSequenceNumber = binary.BigEndian.Uint32(rawPacket[8:])
	r.Jitter = binary.BigEndian.Uint32(rawPacket[12:])
	r.LastSenderReport = binary.BigEndian.Uint32(rawPacket[16:])
	r.Delay = binary.BigEndian.Uint32(rawPacket[20:])
	return nil
}
