// MIT License
//
// Copyright (c) 2018 Pions
//
// Modification and extensions:
// Copyright (c) 2019 Lanikai Labs. All rights reserved.

package rtcp

import "encoding/binary"

const tccHeaderSize = 8

// PacketStatus is the per-packet receipt symbol carried in a
// TransportLayerCC feedback message.
type PacketStatus uint8

// Packet status symbols, per the transport-wide congestion control
// draft.
const (
	StatusNotReceived  PacketStatus = 0
	StatusReceivedSmall PacketStatus = 1
	StatusReceivedLarge PacketStatus = 2
)

// RecvDelta pairs a sequence number with its observed status and, when
// received, the delta from the reference time in 250 microsecond
// ticks.
type RecvDelta struct {
	SequenceNumber uint16
	Status         PacketStatus
	Delta          int16
}

// TransportLayerCC reports, for a contiguous run of transport sequence
// numbers, whether each packet was received and (if so) its arrival
// delta relative to a shared reference time. See the transport-wide
// congestion control draft (draft-holmer-rmcat-transport-wide-cc-extensions).
type TransportLayerCC struct {
	Sender             uint32
	Source             uint32
	BaseSequenceNumber uint16
	ReferenceTime      uint32 // 64ms ticks, 24-bit signed in wire form
	FeedbackPacketCount uint8
	Deltas             []RecvDelta
}

// trim drops trailing not-received entries, since the format only
// requires the highest reported sequence number's status to be
// explicit and trailing unknowns may be safely omitted.
func trimTrailingNotReceived(deltas []RecvDelta) []RecvDelta {
	end := len(deltas)
	for end > 0 && deltas[end-1].Status == StatusNotReceived {
		end--
	}
	return deltas[:end]
}

func (t TransportLayerCC) packetChunks() []uint16 {
	deltas := trimTrailingNotReceived(t.Deltas)

	var chunks []uint16
	i := 0
	for i < len(deltas) {
		// Emit a 14-symbol status-vector chunk with 1-bit symbols when
		// every status in the run is binary (not-received/received-small),
		// otherwise widen to 2-bit symbols over 7 slots.
		twoBit := false
		for j := i; j < len(deltas) && j < i+14; j++ {
			if deltas[j].Status == StatusReceivedLarge {
				twoBit = true
				break
			}
		}

		if twoBit {
			n := 7
			if i+n > len(deltas) {
				n = len(deltas) - i
			}
			var chunk uint16 = 1<<15 | 1<<14 // chunk type 1, symbol size 1 (2-bit)
			for j := 0; j < n; j++ {
				chunk |= uint16(deltas[i+j].Status) << uint(12-2*j)
			}
			chunks = append(chunks, chunk)
			i += n
		} else {
			n := 14
			if i+n > len(deltas) {
				n = len(deltas) - i
			}
			var chunk uint16 = 1 << 15 // chunk type 1, symbol size 0 (1-bit)
			for j := 0; j < n; j++ {
				chunk |= uint16(deltas[i+j].Status&0x1) << uint(13-j)
			}
			chunks = append(chunks, chunk)
			i += n
		}
	}
	return chunks
}

func (t TransportLayerCC) len() int {
	deltas := trimTrailingNotReceived(t.Deltas)
	chunks := t.packetChunks()

	n := headerLength + tccHeaderSize + 8 + 2*len(chunks)
	for _, d := range deltas {
		if d.Status == StatusNotReceived {
			continue
		}
		if d.Status == StatusReceivedSmall {
			n++
		} else {
			n += 2
		}
	}
	return n + padTo4(n)
}

// Header returns the Header associated with this packet.
func (t TransportLayerCC) Header() Header {
	return Header{
		Count:  FormatTWCC,
		Type:   TypeTransportSpecificFeedback,
		Length: uint16((t.len() / 4) - 1),
	}
}

// DestinationSSRC returns an array of SSRC values that this packet
// refers to.
func (t TransportLayerCC) DestinationSSRC() []uint32 {
	return []uint32{t.Source}
}

// Marshal encodes the TransportLayerCC packet in binary.
func (t TransportLayerCC) Marshal() ([]byte, error) {
	deltas := trimTrailingNotReceived(t.Deltas)
	chunks := t.packetChunks()

	rawPacket := make([]byte, t.len())
	hData, err := t.Header().Marshal()
	if err != nil {
		return nil, err
	}
	copy(rawPacket, hData)

	off := headerLength
	binary.BigEndian.PutUint32(rawPacket[off:], t.Sender)
	binary.BigEndian.PutUint32(rawPacket[off+4:], t.Source)
	off += tccHeaderSize

	binary.BigEndian.PutUint16(rawPacket[off:], t.BaseSequenceNumber)
	binary.BigEndian.PutUint16(rawPacket[off+2:], uint16(len(deltas)))
	off += 4

	rawPacket[off] = byte(t.ReferenceTime >> 16)
	rawPacket[off+1] = byte(t.ReferenceTime >> 8)
	rawPacket[off+2] = byte(t.ReferenceTime)
	rawPacket[off+3] = t.FeedbackPacketCount
	off += 4

	for _, c := range chunks {
		binary.BigEndian.PutUint16(rawPacket[off:], c)
		off += 2
	}

	for _, d := range deltas {
		switch d.Status {
		case StatusReceivedSmall:
			rawPacket[off] = byte(d.Delta)
			off++
		case StatusReceivedLarge:
			binary.BigEndian.PutUint16(rawPacket[off:], uint16(d.Delta))
			off += 2
		}
	}

	return rawPacket, nil
}

// Unmarshal decodes the TransportLayerCC packet from binary.
func (t *TransportLayerCC) Unmarshal(rawPacket []byte) error {
	if len(rawPacket) < (headerLength + tccHeaderSize + 8) {
		return errPacketTooShort
	}

	var h Header
	if err := h.Unmarshal(rawPacket); err != nil {
		return err
	}
	if h.Type != TypeTransportSpecificFeedback || h.Count != FormatTWCC {
		return errWrongType
	}

	end := headerLength + rtcpLengthBytes(h.Length)
	if end > len(rawPacket) {
		return errPacketTooShort
	}

	off := headerLength
	t.Sender = binary.BigEndian.Uint32(rawPacket[off:])
	t.Source = binary.BigEndian.Uint32(rawPacket[off+4:])
	off += tccHeaderSize

	t.BaseSequenceNumber = binary.BigEndian.Uint16(rawPacket[off:])
	packetCount := int(binary.BigEndian.Uint16(rawPacket[off+2:]))
	off += 4

	t.ReferenceTime = uint32(rawPacket[off])<<16 | uint32(rawPacket[off+1])<<8 | uint32(rawPacket[off+2])
	t.FeedbackPacketCount = rawPacket[off+3]
	off += 4

	var statuses []PacketStatus
	for len(statuses) < packetCount {
		if off+2 > end {
			return errPacketTooShort
		}
		chunk := binary.BigEndian.Uint16(rawPacket[off:])
		off += 2

		if chunk&0x8000 == 0 {
			// Run-length chunk: 1 reserved bit, 2-bit status, 13-bit run.
			status := PacketStatus((chunk >> 13) & 0x3)
			run := int(chunk & 0x1FFF)
			for i := 0; i < run; i++ {
				statuses = append(statuses, status)
			}
		} else if chunk&0x4000 == 0 {
			// Status vector chunk, 1-bit symbols, 14 slots.
			for i := 0; i < 14; i++ {
				bit := (chunk >> uint(13-i)) & 0x1
				statuses = append(statuses, PacketStatus(bit))
			}
		} else {
			// Status vector chunk, 2-bit symbols, 7 slots.
			for i := 0; i < 7; i++ {
				sym := (chunk >> uint(12-2*i)) & 0x3
				statuses = append(statuses, PacketStatus(sym))
			}
		}
	}
	if len(statuses) > packetCount {
		statuses = statuses[:packetCount]
	}

	t.Deltas = nil
	for i, status := range statuses {
		d := RecvDelta{SequenceNumber: t.BaseSequenceNumber + uint16(i), Status: status}
		switch status {
		case StatusReceivedSmall:
			if off+1 > end {
				return errPacketTooShort
			}
			d.Delta = int16(int8(rawPacket[off]))
			off++
		case StatusReceivedLarge:
			if off+2 > end {
				return errPacketTooShort
			}
			d.Delta = int16(binary.BigEndian.Uint16(rawPacket[off:]))
			off += 2
		}
		t.Deltas = append(t.Deltas, d)
	}

	return nil
}
