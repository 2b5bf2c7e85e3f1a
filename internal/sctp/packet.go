package sctp

import "hash/crc32"

// commonHeaderLength is the fixed SCTP packet header: source port(2) +
// destination port(2) + verification tag(4) + checksum(4) [RFC4960 §3.1].
const commonHeaderLength = 12

var castagnoliTable = crc32.MakeTable(crc32.Castagnoli)

// packet is a full SCTP datagram: the common header plus one or more
// chunks. INIT, INIT ACK, and SHUTDOWN COMPLETE (with the T bit) must be
// the only chunk in their packet; every other combination may bundle
// [RFC4960 §3.1].
type packet struct {
	sourcePort      uint16
	destinationPort uint16
	verificationTag uint32
	chunks          []chunk
	chunkFlags      []byte // parallel to chunks; flags byte applied to each on marshal
}

func (p *packet) marshal() ([]byte, error) {
	if p.sourcePort == 0 {
		return nil, errPacketBadSourcePort
	}
	if p.destinationPort == 0 {
		return nil, errPacketBadDestPort
	}

	buf := make([]byte, commonHeaderLength)
	putUint16(buf[0:2], p.sourcePort)
	putUint16(buf[2:4], p.destinationPort)
	putUint32(buf[4:8], p.verificationTag)

	for i, c := range p.chunks {
		var flags byte
		if i < len(p.chunkFlags) {
			flags = p.chunkFlags[i]
		}
		raw, err := marshalChunk(c, flags)
		if err != nil {
			return nil, err
		}
		buf = append(buf, raw...)
	}

	checksum := crc32.Checksum(buf, castagnoliTable)
	putUint32(buf[8:12], checksum)
	return buf, nil
}

func unmarshalPacket(data []byte) (*packet, error) {
	if len(data) < commonHeaderLength {
		return nil, errPacketTooSmall
	}

	want := getUint32(data[8:12])
	stripped := append([]byte(nil), data...)
	putUint32(stripped[8:12], 0)
	if crc32.Checksum(stripped, castagnoliTable) != want {
		return nil, errChecksumMismatch
	}

	p := &packet{
		sourcePort:      getUint16(data[0:2]),
		destinationPort: getUint16(data[2:4]),
		verificationTag: getUint32(data[4:8]),
	}
	if p.sourcePort == 0 {
		return nil, errPacketBadSourcePort
	}
	if p.destinationPort == 0 {
		return nil, errPacketBadDestPort
	}

	rest := data[commonHeaderLength:]
	for len(rest) > 0 {
		c, consumed, err := unmarshalChunk(rest)
		if err != nil {
			return nil, err
		}
		p.chunks = append(p.chunks, c)
		if consumed <= 0 {
			break
		}
		rest = rest[consumed:]
	}
	return p, nil
}
