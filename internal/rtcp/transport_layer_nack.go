// MIT License
//
// Copyright (c) 2018 Pions
//
// Modification and extensions:
// Copyright (c) 2019 Lanikai Labs. All rights reserved.

package rtcp

import "encoding/binary"

// NackPair is a packet ID together with a bitmask of up to 16
// additional following packets that are also reported lost. See
// RFC 4585 §6.2.1.
type NackPair struct {
	PacketID    uint16
	LostPackets uint16
}

// PacketList expands a NackPair into the full list of lost sequence
// numbers it represents.
func (n NackPair) PacketList() []uint16 {
	lost := []uint16{n.PacketID}
	mask := n.LostPackets
	seq := n.PacketID + 1
	for mask != 0 {
		if mask&0x1 == 0x1 {
			lost = append(lost, seq)
		}
		seq++
		mask >>= 1
	}
	return lost
}

// NackPairsFromSequenceNumbers packs a set of lost sequence numbers
// into the minimum number of NackPair entries.
func NackPairsFromSequenceNumbers(seqs []uint16) []NackPair {
	var pairs []NackPair
	for _, seq := range seqs {
		if len(pairs) > 0 {
			last := &pairs[len(pairs)-1]
			bit := seq - last.PacketID - 1
			if bit < 16 {
				last.LostPackets |= 1 << bit
				continue
			}
		}
		pairs = append(pairs, NackPair{PacketID: seq})
	}
	return pairs
}

const tlnHeaderSize = 8

// TransportLayerNack is a generic NACK feedback message requesting
// retransmission of specific lost RTP packets. See RFC 4585 §6.2.1.
type TransportLayerNack struct {
	// Sender is the SSRC of the participant sending this feedback.
	Sender uint32
	// Source is the SSRC of the media source being reported on.
	Source uint32
	// Nacks is the list of packet-loss reports.
	Nacks []NackPair
}

func (n TransportLayerNack) len() int {
	return headerLength + tlnHeaderSize + 4*len(n.Nacks)
}

// Header returns the Header associated with this packet.
func (n TransportLayerNack) Header() Header {
	return Header{
		Count:  FormatTLN,
		Type:   TypeTransportSpecificFeedback,
		Length: uint16((n.len() / 4) - 1),
	}
}

// DestinationSSRC returns an array of SSRC values that this packet
// refers to.
func (n TransportLayerNack) DestinationSSRC() []uint32 {
	return []uint32{n.Source}
}

// Marshal encodes the TransportLayerNack packet in binary.
func (n TransportLayerNack) Marshal() ([]byte, error) {
	rawPacket := make([]byte, n.len())
	hData, err := n.Header().Marshal()
	if err != nil {
		return nil, err
	}
	copy(rawPacket, hData)

	off := headerLength
	binary.BigEndian.PutUint32(rawPacket[off:], n.Sender)
	binary.BigEndian.PutUint32(rawPacket[off+4:], n.Source)
	off += tlnHeaderSize
	for _, p := range n.Nacks {
		binary.BigEndian.PutUint16(rawPacket[off:], p.PacketID)
		binary.BigEndian.PutUint16(rawPacket[off+2:], p.LostPackets)
		off += 4
	}

	return rawPacket, nil
}

// Unmarshal decodes the TransportLayerNack packet from binary.
func (n *TransportLayerNack) Unmarshal(rawPacket []byte) error {
	if len(rawPacket) < (headerLength + tlnHeaderSize) {
		return errPacketTooShort
	}

	var h Header
	if err := h.Unmarshal(rawPacket); err != nil {
		return err
	}
	if h.Type != TypeTransportSpecificFeedback || h.Count != FormatTLN {
		return errWrongType
	}

	end := headerLength + rtcpLengthBytes(h.Length)
	if end > len(rawPacket) {
		return errPacketTooShort
	}

	off := headerLength
	n.Sender = binary.BigEndian.Uint32(rawPacket[off:])
	n.Source = binary.BigEndian.Uint32(rawPacket[off+4:])
	off += tlnHeaderSize

	n.Nacks = nil
	for off+4 <= end {
		n.Nacks = append(n.Nacks, NackPair{
			PacketID:    binary.BigEndian.Uint16(rawPacket[off:]),
			LostPackets: binary.BigEndian.Uint16(rawPacket[off+2:]),
		})
		off += 4
	}

	return nil
}
