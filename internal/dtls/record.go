package dtls

import (
	"encoding/binary"

	errors "golang.org/x/xerrors"
)

// ContentType identifies the payload of a DTLS record [RFC6347 §4.1].
type ContentType byte

const (
	ContentTypeChangeCipherSpec ContentType = 20
	ContentTypeAlert            ContentType = 21
	ContentTypeHandshake        ContentType = 22
	ContentTypeApplicationData  ContentType = 23
)

// ProtocolVersion is DTLS 1.2's on-the-wire version, {0xfe, 0xfd}
// [RFC6347 §4.1.2.1], chosen as a 1's complement of TLS 1.2 so legacy
// demultiplexers can tell DTLS apart from TLS.
type ProtocolVersion struct {
	Major, Minor byte
}

var protocolVersion1_2 = ProtocolVersion{0xfe, 0xfd}

// recordHeaderLength is the fixed 13-byte header preceding every record's
// payload: type(1) + version(2) + epoch(2) + sequence number(6) + length(2).
const recordHeaderLength = 13

// RecordHeader is the fixed-size header of a DTLS record [RFC6347 §4.1].
type RecordHeader struct {
	ContentType    ContentType
	Version        ProtocolVersion
	Epoch          uint16
	SequenceNumber uint64 // Only the low 48 bits are meaningful on the wire.
}

func (h *RecordHeader) Marshal() ([]byte, error) {
	buf := make([]byte, recordHeaderLength)
	buf[0] = byte(h.ContentType)
	buf[1] = h.Version.Major
	buf[2] = h.Version.Minor
	binary.BigEndian.PutUint16(buf[3:5], h.Epoch)
	putUint48(buf[5:11], h.SequenceNumber)
	// Length is filled in by the caller once the payload size is known.
	return buf, nil
}

func (h *RecordHeader) Unmarshal(data []byte) (payloadLength int, err error) {
	if len(data) < recordHeaderLength {
		return 0, errInvalidRecordLayerHeader
	}
	h.ContentType = ContentType(data[0])
	h.Version = ProtocolVersion{data[1], data[2]}
	h.Epoch = binary.BigEndian.Uint16(data[3:5])
	h.SequenceNumber = getUint48(data[5:11])
	return int(binary.BigEndian.Uint16(data[11:13])), nil
}

func putUint48(b []byte, v uint64) {
	b[0] = byte(v >> 40)
	b[1] = byte(v >> 32)
	b[2] = byte(v >> 24)
	b[3] = byte(v >> 16)
	b[4] = byte(v >> 8)
	b[5] = byte(v)
}

func getUint48(b []byte) uint64 {
	return uint64(b[0])<<40 | uint64(b[1])<<32 | uint64(b[2])<<24 |
		uint64(b[3])<<16 | uint64(b[4])<<8 | uint64(b[5])
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

func getUint24(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// marshalRecord wraps a handshake/alert/CCS payload in a record header with
// the length field filled in.
func marshalRecord(h RecordHeader, payload []byte) ([]byte, error) {
	if len(payload) > 0xffff {
		return nil, errors.New("dtls: record payload too large")
	}
	buf, err := h.Marshal()
	if err != nil {
		return nil, err
	}
	binary.BigEndian.PutUint16(buf[11:13], uint16(len(payload)))
	return append(buf, payload...), nil
}
