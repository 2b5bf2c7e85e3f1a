package dtls

import (
	"encoding/binary"

	errors "golang.org/x/xerrors"
)

// ServerHello answers ClientHello with the negotiated parameters
// [RFC5246 §7.4.1.3].
type ServerHello struct {
	Version           ProtocolVersion
	Random            handshakeRandom
	SessionID         []byte
	CipherSuite       CipherSuiteID
	CompressionMethod byte
	Extensions        []extension
}

func (h *ServerHello) Type() HandshakeType { return HandshakeTypeServerHello }

func (h *ServerHello) Marshal() ([]byte, error) {
	random, err := h.Random.Marshal()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, 64)
	buf = append(buf, h.Version.Major, h.Version.Minor)
	buf = append(buf, random...)
	buf = append(buf, byte(len(h.SessionID)))
	buf = append(buf, h.SessionID...)
	cs := make([]byte, 2)
	binary.BigEndian.PutUint16(cs, uint16(h.CipherSuite))
	buf = append(buf, cs...)
	buf = append(buf, h.CompressionMethod)

	if len(h.Extensions) > 0 {
		exts, err := marshalExtensions(h.Extensions)
		if err != nil {
			return nil, err
		}
		buf = append(buf, exts...)
	}
	return buf, nil
}

func (h *ServerHello) Unmarshal(data []byte) error {
	if len(data) < 2+randomLength+1 {
		return errors.New("dtls: ServerHello too short")
	}
	h.Version = ProtocolVersion{data[0], data[1]}
	offset := 2
	if err := h.Random.Unmarshal(data[offset:]); err != nil {
		return err
	}
	offset += randomLength

	sessionIDLen := int(data[offset])
	offset++
	if len(data) < offset+sessionIDLen+3 {
		return errors.New("dtls: ServerHello truncated")
	}
	h.SessionID = append([]byte(nil), data[offset:offset+sessionIDLen]...)
	offset += sessionIDLen

	h.CipherSuite = CipherSuiteID(binary.BigEndian.Uint16(data[offset : offset+2]))
	offset += 2
	h.CompressionMethod = data[offset]
	offset++

	h.Extensions = nil
	if offset+2 <= len(data) {
		extLen := int(binary.BigEndian.Uint16(data[offset : offset+2]))
		offset += 2
		if len(data) < offset+extLen {
			return errors.New("dtls: ServerHello truncated at extensions")
		}
		exts, err := unmarshalExtensions(data[offset : offset+extLen])
		if err != nil {
			return err
		}
		h.Extensions = exts
	}
	return nil
}

func (h *ServerHello) extension(t ExtensionType) extension {
	for _, e := range h.Extensions {
		if e.Type() == t {
			return e
		}
	}
	return nil
}
