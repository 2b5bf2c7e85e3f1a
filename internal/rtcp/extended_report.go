// MIT License
//
// Copyright (c) 2018 Pions
//
// Modification and extensions:
// Copyright (c) 2019 Lanikai Labs. All rights reserved.

package rtcp

import "encoding/binary"

// XRBlockType identifies the type of a report block within an
// ExtendedReport packet. See RFC 3611 §4.
type XRBlockType uint8

const (
	XRBlockLossRLE            XRBlockType = 1
	XRBlockDuplicateRLE       XRBlockType = 2
	XRBlockPacketReceiptTimes XRBlockType = 3
	XRBlockReceiverReferenceTime XRBlockType = 4
	XRBlockDLRR               XRBlockType = 5
	XRBlockStatisticsSummary  XRBlockType = 6
	XRBlockVoIPMetrics        XRBlockType = 7
)

// XRBlock is a single typed report block within an ExtendedReport
// packet. Unrecognized block types are preserved verbatim in Body so
// that a relay can forward them unmodified.
type XRBlock struct {
	Type XRBlockType
	// TypeSpecific carries the block-type-specific byte at octet 1.
	TypeSpecific uint8
	Body         []byte
}

func (b XRBlock) len() int {
	return 4 + len(b.Body)
}

// VoIPMetricsBlock decodes a block of type XRBlockVoIPMetrics, per
// RFC 3611 §4.7.
type VoIPMetricsBlock struct {
	SSRC             uint32
	LossRate         uint8
	DiscardRate      uint8
	BurstDensity     uint8
	GapDensity       uint8
	BurstDuration    uint16
	GapDuration      uint16
	RoundTripDelay   uint16
	EndSystemDelay   uint16
	SignalLevel      uint8
	NoiseLevel       uint8
	RERL             uint8
	Gmin             uint8
	RFactor          uint8
	ExtRFactor       uint8
	MOSLQ            uint8
	MOSCQ            uint8
	ReceiverConfig   uint8
	JitterBufferNominal uint16
	JitterBufferMaximum uint16
	JitterBufferAbsMax  uint16
}

// Marshal encodes the VoIPMetricsBlock as an XRBlock body.
func (m VoIPMetricsBlock) Marshal() XRBlock {
	body := make([]byte, 32)
	binary.BigEndian.PutUint32(body, m.SSRC)
	body[4] = m.LossRate
	body[5] = m.DiscardRate
	body[6] = m.BurstDensity
	body[7] = m.GapDensity
	binary.BigEndian.PutUint16(body[8:], m.BurstDuration)
	binary.BigEndian.PutUint16(body[10:], m.GapDuration)
	binary.BigEndian.PutUint16(body[12:], m.RoundTripDelay)
	binary.BigEndian.PutUint16(body[14:], m.EndSystemDelay)
	body[16] = m.SignalLevel
	body[17] = m.NoiseLevel
	body[18] = m.RERL
	body[19] = m.Gmin
	body[20] = m.RFactor
	body[21] = m.ExtRFactor
	body[22] = m.MOSLQ
	body[23] = m.MOSCQ
	body[24] = m.ReceiverConfig
	binary.BigEndian.PutUint16(body[26:], m.JitterBufferNominal)
	binary.BigEndian.PutUint16(body[28:], m.JitterBufferMaximum)
	binary.BigEndian.PutUint16(body[30:], m.JitterBufferAbsMax)
	return XRBlock{Type: XRBlockVoIPMetrics, Body: body}
}

// UnmarshalVoIPMetricsBlock decodes a VoIPMetricsBlock from an XRBlock
// of type XRBlockVoIPMetrics.
func UnmarshalVoIPMetricsBlock(b XRBlock) (VoIPMetricsBlock, error) {
	var m VoIPMetricsBlock
	if len(b.Body) < 32 {
		return m, errPacketTooShort
	}
	m.SSRC = binary.BigEndian.Uint32(b.Body)
	m.LossRate = b.Body[4]
	m.DiscardRate = b.Body[5]
	m.BurstDensity = b.Body[6]
	m.GapDensity = b.Body[7]
	m.BurstDuration = binary.BigEndian.Uint16(b.Body[8:])
	m.GapDuration = binary.BigEndian.Uint16(b.Body[10:])
	m.RoundTripDelay = binary.BigEndian.Uint16(b.Body[12:])
	m.EndSystemDelay = binary.BigEndian.Uint16(b.Body[14:])
	m.SignalLevel = b.Body[16]
	m.NoiseLevel = b.Body[17]
	m.RERL = b.Body[18]
	m.Gmin = b.Body[19]
	m.RFactor = b.Body[20]
	m.ExtRFactor = b.Body[21]
	m.MOSLQ = b.Body[22]
	m.MOSCQ = b.Body[23]
	m.ReceiverConfig = b.Body[24]
	m.JitterBufferNominal = binary.BigEndian.Uint16(b.Body[26:])
	m.JitterBufferMaximum = binary.BigEndian.Uint16(b.Body[28:])
	m.JitterBufferAbsMax = binary.BigEndian.Uint16(b.Body[30:])
	return m, nil
}

const xrHeaderSize = 4

// ExtendedReport carries one or more typed report blocks providing
// additional RTP reception quality metrics beyond SenderReport and
// ReceiverReport. See RFC 3611.
type ExtendedReport struct {
	SSRC   uint32
	Blocks []XRBlock
}

func (x ExtendedReport) len() int {
	n := headerLength + xrHeaderSize
	for _, b := range x.Blocks {
		n += b.len()
	}
	return n
}

// Header returns the Header associated with this packet. XR has no
// meaningful count field; RFC 3611 sets it to zero.
func (x ExtendedReport) Header() Header {
	return Header{
		Type:   TypeExtendedReport,
		Length: uint16((x.len() / 4) - 1),
	}
}

// DestinationSSRC returns an array of SSRC values that this packet
// refers to.
func (x ExtendedReport) DestinationSSRC() []uint32 {
	return []uint32{x.SSRC}
}

// Marshal encodes the ExtendedReport packet in binary.
func (x ExtendedReport) Marshal() ([]byte, error) {
	rawPacket := make([]byte, x.len())
	hData, err := x.Header().Marshal()
	if err != nil {
		return nil, err
	}
	copy(rawPacket, hData)

	off := headerLength
	binary.BigEndian.PutUint32(rawPacket[off:], x.SSRC)
	off += xrHeaderSize

	for _, b := range x.Blocks {
		rawPacket[off] = uint8(b.Type)
		rawPacket[off+1] = b.TypeSpecific
		binary.BigEndian.PutUint16(rawPacket[off+2:], uint16(len(b.Body)/4))
		copy(rawPacket[off+4:], b.Body)
		off += b.len()
	}

	return rawPacket, nil
}

// Unmarshal decodes the ExtendedReport packet from binary.
func (x *ExtendedReport) Unmarshal(rawPacket []byte) error {
	if len(rawPacket) < (headerLength + xrHeaderSize) {
		return errPacketTooShort
	}

	var h Header
	if err := h.Unmarshal(rawPacket); err != nil {
		return err
	}
	if h.Type != TypeExtendedReport {
		return errWrongType
	}

	end := headerLength + rtcpLengthBytes(h.Length)
	if end > len(rawPacket) {
		return errPacketTooShort
	}

	off := headerLength
	x.SSRC = binary.BigEndian.Uint32(rawPacket[off:])
	off += xrHeaderSize

	x.Blocks = nil
	for off+4 <= end {
		blockType := XRBlockType(rawPacket[off])
		typeSpecific := rawPacket[off+1]
		bodyLen := int(binary.BigEndian.Uint16(rawPacket[off+2:])) * 4
		if off+4+bodyLen > end {
			return errPacketTooShort
		}
		x.Blocks = append(x.Blocks, XRBlock{
			Type:         blockType,
			TypeSpecific: typeSpecific,
			Body:         append([]byte(nil), rawPacket[off+4:off+4+bodyLen]...),
		})
		off += 4 + bodyLen
	}

	return nil
}
