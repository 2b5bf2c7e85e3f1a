package dtls

import (
	"encoding/binary"

	errors "golang.org/x/xerrors"
)

// compressionMethodNull is the only compression method TLS 1.2/DTLS 1.2
// actually uses [RFC5246 §7.4.1.2].
const compressionMethodNull = 0

// ClientHello is the first message of a DTLS flight [RFC5246 §7.4.1.2,
// RFC6347 §4.2.1 for the Cookie field].
type ClientHello struct {
	Version            ProtocolVersion
	Random             handshakeRandom
	SessionID          []byte
	Cookie             []byte
	CipherSuites       []CipherSuiteID
	CompressionMethods []byte
	Extensions         []extension
}

func (h *ClientHello) Type() HandshakeType { return HandshakeTypeClientHello }

func (h *ClientHello) Marshal() ([]byte, error) {
	random, err := h.Random.Marshal()
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, 64)
	buf = append(buf, h.Version.Major, h.Version.Minor)
	buf = append(buf, random...)
	buf = append(buf, byte(len(h.SessionID)))
	buf = append(buf, h.SessionID...)
	buf = append(buf, byte(len(h.Cookie)))
	buf = append(buf, h.Cookie...)

	cs := make([]byte, 2+2*len(h.CipherSuites))
	binary.BigEndian.PutUint16(cs[0:2], uint16(2*len(h.CipherSuites)))
	for i, id := range h.CipherSuites {
		binary.BigEndian.PutUint16(cs[2+2*i:4+2*i], uint16(id))
	}
	buf = append(buf, cs...)

	buf = append(buf, byte(len(h.CompressionMethods)))
	buf = append(buf, h.CompressionMethods...)

	if len(h.Extensions) > 0 {
		exts, err := marshalExtensions(h.Extensions)
		if err != nil {
			return nil, err
		}
		buf = append(buf, exts...)
	}

	return buf, nil
}

func (h *ClientHello) Unmarshal(data []byte) error {
	if len(data) < 2+randomLength+1 {
		return errors.New("dtls: ClientHello too short")
	}
	h.Version = ProtocolVersion{data[0], data[1]}
	offset := 2
	if err := h.Random.Unmarshal(data[offset:]); err != nil {
		return err
	}
	offset += randomLength

	sessionIDLen := int(data[offset])
	offset++
	if len(data) < offset+sessionIDLen+1 {
		return errors.New("dtls: ClientHello truncated at session_id")
	}
	h.SessionID = append([]byte(nil), data[offset:offset+sessionIDLen]...)
	offset += sessionIDLen

	cookieLen := int(data[offset])
	offset++
	if len(data) < offset+cookieLen+2 {
		return errors.New("dtls: ClientHello truncated at cookie")
	}
	h.Cookie = append([]byte(nil), data[offset:offset+cookieLen]...)
	offset += cookieLen

	cipherSuitesLen := int(binary.BigEndian.Uint16(data[offset : offset+2]))
	offset += 2
	if len(data) < offset+cipherSuitesLen+1 {
		return errors.New("dtls: ClientHello truncated at cipher_suites")
	}
	h.CipherSuites = nil
	for i := 0; i+1 < cipherSuitesLen; i += 2 {
		h.CipherSuites = append(h.CipherSuites, CipherSuiteID(binary.BigEndian.Uint16(data[offset+i:offset+i+2])))
	}
	offset += cipherSuitesLen

	compressionLen := int(data[offset])
	offset++
	if len(data) < offset+compressionLen {
		return errors.New("dtls: ClientHello truncated at compression_methods")
	}
	h.CompressionMethods = append([]byte(nil), data[offset:offset+compressionLen]...)
	offset += compressionLen

	h.Extensions = nil
	if offset+2 <= len(data) {
		extLen := int(binary.BigEndian.Uint16(data[offset : offset+2]))
		offset += 2
		if len(data) < offset+extLen {
			return errors.New("dtls: ClientHello truncated at extensions")
		}
		exts, err := unmarshalExtensions(data[offset : offset+extLen])
		if err != nil {
			return err
		}
		h.Extensions = exts
	}
	return nil
}

func (h *ClientHello) extension(t ExtensionType) extension {
	for _, e := range h.Extensions {
		if e.Type() == t {
			return e
		}
	}
	return nil
}
