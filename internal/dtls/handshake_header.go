package dtls

import "encoding/binary"

// HandshakeType identifies a handshake message [RFC5246 §7.4,  RFC6347 §4.3.2].
type HandshakeType byte

const (
	HandshakeTypeHelloRequest       HandshakeType = 0
	HandshakeTypeClientHello       HandshakeType = 1
	HandshakeTypeServerHello       HandshakeType = 2
	HandshakeTypeHelloVerifyRequest HandshakeType = 3
	HandshakeTypeCertificate        HandshakeType = 11
	HandshakeTypeServerKeyExchange  HandshakeType = 12
	HandshakeTypeCertificateRequest HandshakeType = 13
	HandshakeTypeServerHelloDone    HandshakeType = 14
	HandshakeTypeCertificateVerify  HandshakeType = 15
	HandshakeTypeClientKeyExchange  HandshakeType = 16
	HandshakeTypeFinished           HandshakeType = 20
)

func (t HandshakeType) String() string {
	switch t {
	case HandshakeTypeClientHello:
		return "ClientHello"
	case HandshakeTypeServerHello:
		return "ServerHello"
	case HandshakeTypeHelloVerifyRequest:
		return "HelloVerifyRequest"
	case HandshakeTypeCertificate:
		return "Certificate"
	case HandshakeTypeServerKeyExchange:
		return "ServerKeyExchange"
	case HandshakeTypeCertificateRequest:
		return "CertificateRequest"
	case HandshakeTypeServerHelloDone:
		return "ServerHelloDone"
	case HandshakeTypeCertificateVerify:
		return "CertificateVerify"
	case HandshakeTypeClientKeyExchange:
		return "ClientKeyExchange"
	case HandshakeTypeFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// handshakeHeaderLength is the fixed 12-byte handshake header: type(1) +
// length(3) + message_seq(2) + fragment_offset(3) + fragment_length(3)
// [RFC6347 §4.2.2].
const handshakeHeaderLength = 12

type HandshakeHeader struct {
	Type            HandshakeType
	Length          uint32 // 24-bit: length of the full (unfragmented) body
	MessageSequence uint16
	FragmentOffset  uint32 // 24-bit
	FragmentLength  uint32 // 24-bit
}

func (h *HandshakeHeader) Marshal() ([]byte, error) {
	buf := make([]byte, handshakeHeaderLength)
	buf[0] = byte(h.Type)
	putUint24(buf[1:4], h.Length)
	binary.BigEndian.PutUint16(buf[4:6], h.MessageSequence)
	putUint24(buf[6:9], h.FragmentOffset)
	putUint24(buf[9:12], h.FragmentLength)
	return buf, nil
}

func (h *HandshakeHeader) Unmarshal(data []byte) error {
	if len(data) < handshakeHeaderLength {
		return errInvalidHandshakeHeader
	}
	h.Type = HandshakeType(data[0])
	h.Length = getUint24(data[1:4])
	h.MessageSequence = binary.BigEndian.Uint16(data[4:6])
	h.FragmentOffset = getUint24(data[6:9])
	h.FragmentLength = getUint24(data[9:12])
	return nil
}
