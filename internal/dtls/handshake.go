package dtls

import errors "golang.org/x/xerrors"

// handshakeMessage is implemented by every handshake body type (ClientHello,
// ServerHello, ...).
type handshakeMessage interface {
	Type() HandshakeType
	Marshal() ([]byte, error)
	Unmarshal(data []byte) error
}

// Handshake pairs a HandshakeHeader with its parsed body, and is the unit
// the flight engine's handshake cache stores and replays.
type Handshake struct {
	Header  HandshakeHeader
	Message handshakeMessage
}

func newHandshakeMessage(t HandshakeType) (handshakeMessage, error) {
	switch t {
	case HandshakeTypeClientHello:
		return &ClientHello{}, nil
	case HandshakeTypeServerHello:
		return &ServerHello{}, nil
	case HandshakeTypeHelloVerifyRequest:
		return &HelloVerifyRequest{}, nil
	case HandshakeTypeCertificate:
		return &Certificate{}, nil
	case HandshakeTypeServerKeyExchange:
		return &ServerKeyExchange{}, nil
	case HandshakeTypeCertificateRequest:
		return &CertificateRequest{}, nil
	case HandshakeTypeServerHelloDone:
		return &ServerHelloDone{}, nil
	case HandshakeTypeCertificateVerify:
		return &CertificateVerify{}, nil
	case HandshakeTypeClientKeyExchange:
		return &ClientKeyExchange{}, nil
	case HandshakeTypeFinished:
		return &Finished{}, nil
	default:
		return nil, errors.Errorf("dtls: unknown handshake type %d", t)
	}
}

// marshalHandshake serializes a full (unfragmented) handshake message with
// its header.
func marshalHandshake(messageSequence uint16, m handshakeMessage) ([]byte, error) {
	body, err := m.Marshal()
	if err != nil {
		return nil, err
	}
	h := HandshakeHeader{
		Type:            m.Type(),
		Length:          uint32(len(body)),
		MessageSequence: messageSequence,
		FragmentOffset:  0,
		FragmentLength:  uint32(len(body)),
	}
	hdr, err := h.Marshal()
	if err != nil {
		return nil, err
	}
	return append(hdr, body...), nil
}

// fragmentHandshake splits a marshaled handshake message into records no
// larger than maxFragmentSize, each carrying its own header with the
// appropriate fragment_offset/fragment_length [RFC6347 §4.2.3]. The full
// Length field is preserved across every fragment.
func fragmentHandshake(messageSequence uint16, m handshakeMessage, maxFragmentSize int) ([][]byte, error) {
	body, err := m.Marshal()
	if err != nil {
		return nil, err
	}
	if maxFragmentSize <= 0 || len(body) <= maxFragmentSize {
		full, err := marshalHandshake(messageSequence, m)
		if err != nil {
			return nil, err
		}
		return [][]byte{full}, nil
	}

	var fragments [][]byte
	for offset := 0; offset < len(body); offset += maxFragmentSize {
		end := offset + maxFragmentSize
		if end > len(body) {
			end = len(body)
		}
		h := HandshakeHeader{
			Type:            m.Type(),
			Length:          uint32(len(body)),
			MessageSequence: messageSequence,
			FragmentOffset:  uint32(offset),
			FragmentLength:  uint32(end - offset),
		}
		hdr, err := h.Marshal()
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, append(hdr, body[offset:end]...))
	}
	return fragments, nil
}
