// MIT License
//
// Copyright (c) 2018 Pions
//
// Modification and extensions:
// Copyright (c) 2019 Lanikai Labs. All rights reserved.

package rtcp

import "encoding/binary"

const rembHeaderSize = 8
const rembUniqueID = "REMB"

// ReceiverEstimatedMaximumBitrate reports the receiver's estimate of
// the maximum bandwidth available to one or more sources, encoded as a
// mantissa/exponent pair. See
// https://tools.ietf.org/html/draft-alvestrand-rmcat-remb-03#section-2.2.
type ReceiverEstimatedMaximumBitrate struct {
	Sender  uint32
	SSRCs   []uint32
	Bitrate float32
}

func (r ReceiverEstimatedMaximumBitrate) len() int {
	return headerLength + rembHeaderSize + 8 + 4*len(r.SSRCs)
}

// Header returns the Header associated with this packet.
func (r ReceiverEstimatedMaximumBitrate) Header() Header {
	return Header{
		Count:  FormatREMB,
		Type:   TypePayloadSpecificFeedback,
		Length: uint16((r.len() / 4) - 1),
	}
}

// DestinationSSRC returns an array of SSRC values that this packet
// refers to.
func (r ReceiverEstimatedMaximumBitrate) DestinationSSRC() []uint32 {
	return r.SSRCs
}

// mantissaExponent encodes bitrate as an 18-bit mantissa and a 6-bit
// exponent such that bitrate == mantissa << exponent.
func mantissaExponent(bitrate float32) (mantissa uint32, exponent uint32) {
	br := uint64(bitrate)
	const maxMantissa = (1 << 18) - 1
	for br > maxMantissa {
		br >>= 1
		exponent++
	}
	return uint32(br), exponent
}

// Marshal encodes the ReceiverEstimatedMaximumBitrate packet in binary.
func (r ReceiverEstimatedMaximumBitrate) Marshal() ([]byte, error) {
	rawPacket := make([]byte, r.len())
	hData, err := r.Header().Marshal()
	if err != nil {
		return nil, err
	}
	copy(rawPacket, hData)

	off := headerLength
	binary.BigEndian.PutUint32(rawPacket[off:], r.Sender)
	binary.BigEndian.PutUint32(rawPacket[off+4:], 0) // media source SSRC is always 0
	off += rembHeaderSize

	// The REMB FCI follows the "media source SSRC" field: the 4-byte unique
	// identifier, the SSRC count and the exponent/mantissa, then the SSRC list.
	copy(rawPacket[headerLength+8:], rembUniqueID)
	rawPacket[headerLength+12] = uint8(len(r.SSRCs))

	mantissa, exponent := mantissaExponent(r.Bitrate)
	em := ((exponent & 0x3F) << 18) | (mantissa & 0x3FFFF)
	rawPacket[headerLength+13] = byte(em >> 16)
	rawPacket[headerLength+14] = byte(em >> 8)
	rawPacket[headerLength+15] = byte(em)

	off = headerLength + rembHeaderSize + 8
	for _, ssrc := range r.SSRCs {
		binary.BigEndian.PutUint32(rawPacket[off:], ssrc)
		off += 4
	}

	return rawPacket, nil
}

// Unmarshal decodes the ReceiverEstimatedMaximumBitrate packet from binary.
func (r *ReceiverEstimatedMaximumBitrate) Unmarshal(rawPacket []byte) error {
	if len(rawPacket) < (headerLength + rembHeaderSize + 8) {
		return errPacketTooShort
	}

	var h Header
	if err := h.Unmarshal(rawPacket); err != nil {
		return err
	}
	if h.Type != TypePayloadSpecificFeedback || h.Count != FormatREMB {
		return errWrongType
	}

	end := headerLength + rtcpLengthBytes(h.Length)
	if end > len(rawPacket) {
		return errPacketTooShort
	}

	r.Sender = binary.BigEndian.Uint32(rawPacket[headerLength:])
	if string(rawPacket[headerLength+8:headerLength+12]) != rembUniqueID {
		return errWrongMessageID
	}
	numSSRCs := int(rawPacket[headerLength+12])

	em := uint32(rawPacket[headerLength+13])<<16 | uint32(rawPacket[headerLength+14])<<8 | uint32(rawPacket[headerLength+15])
	exponent := (em >> 18) & 0x3F
	mantissa := em & 0x3FFFF
	r.Bitrate = float32(mantissa) * float32(uint64(1)<<exponent)

	off := headerLength + rembHeaderSize + 8
	r.SSRCs = nil
	for i := 0; i < numSSRCs && off+4 <= end; i++ {
		r.SSRCs = append(r.SSRCs, binary.BigEndian.Uint32(rawPacket[off:]))
		off += 4
	}

	return nil
}
