package dtls

import (
	"encoding/binary"

	errors "golang.org/x/xerrors"
)

// ecCurveTypeNamedCurve is the only ECParameters.CurveType this engine
// offers or accepts [RFC8422 §5.4].
const ecCurveTypeNamedCurve = 3

// ServerKeyExchange carries the server's ephemeral ECDHE public key and the
// signature over it, for cipher suites that don't fold the key exchange
// into the certificate [RFC8422 §5.4].
type ServerKeyExchange struct {
	Curve              NamedCurve
	PublicKey          []byte
	SignatureHash      signatureHashAlgorithm
	Signature          []byte
}

func (k *ServerKeyExchange) Type() HandshakeType { return HandshakeTypeServerKeyExchange }

func (k *ServerKeyExchange) Marshal() ([]byte, error) {
	buf := make([]byte, 0, 4+len(k.PublicKey)+4+len(k.Signature))
	buf = append(buf, ecCurveTypeNamedCurve)
	curve := make([]byte, 2)
	binary.BigEndian.PutUint16(curve, uint16(k.Curve))
	buf = append(buf, curve...)
	buf = append(buf, byte(len(k.PublicKey)))
	buf = append(buf, k.PublicKey...)
	buf = append(buf, byte(k.SignatureHash.hash), byte(k.SignatureHash.signature))
	sigLen := make([]byte, 2)
	binary.BigEndian.PutUint16(sigLen, uint16(len(k.Signature)))
	buf = append(buf, sigLen...)
	buf = append(buf, k.Signature...)
	return buf, nil
}

func (k *ServerKeyExchange) Unmarshal(data []byte) error {
	if len(data) < 4 || data[0] != ecCurveTypeNamedCurve {
		return errors.New("dtls: unsupported ServerKeyExchange curve type")
	}
	k.Curve = NamedCurve(binary.BigEndian.Uint16(data[1:3]))
	offset := 3
	pubLen := int(data[offset])
	offset++
	if len(data) < offset+pubLen+4 {
		return errors.New("dtls: ServerKeyExchange truncated at public key")
	}
	k.PublicKey = append([]byte(nil), data[offset:offset+pubLen]...)
	offset += pubLen

	k.SignatureHash = signatureHashAlgorithm{HashAlgorithm(data[offset]), signatureAlgorithm(data[offset+1])}
	offset += 2
	sigLen := int(binary.BigEndian.Uint16(data[offset : offset+2]))
	offset += 2
	if len(data) < offset+sigLen {
		return errors.New("dtls: ServerKeyExchange truncated at signature")
	}
	k.Signature = append([]byte(nil), data[offset:offset+sigLen]...)
	return nil
}
