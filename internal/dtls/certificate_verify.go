package dtls

import (
	"encoding/binary"

	errors "golang.org/x/xerrors"
)

// CertificateVerify proves possession of the private key matching the
// sender's Certificate, by signing the running handshake transcript hash
// [RFC5246 §7.4.8].
type CertificateVerify struct {
	SignatureHash signatureHashAlgorithm
	Signature     []byte
}

func (c *CertificateVerify) Type() HandshakeType { return HandshakeTypeCertificateVerify }

func (c *CertificateVerify) Marshal() ([]byte, error) {
	buf := make([]byte, 4+len(c.Signature))
	buf[0] = byte(c.SignatureHash.hash)
	buf[1] = byte(c.SignatureHash.signature)
	binary.BigEndian.PutUint16(buf[2:4], uint16(len(c.Signature)))
	copy(buf[4:], c.Signature)
	return buf, nil
}

func (c *CertificateVerify) Unmarshal(data []byte) error {
	if len(data) < 4 {
		return errors.New("dtls: CertificateVerify too short")
	}
	c.SignatureHash = signatureHashAlgorithm{HashAlgorithm(data[0]), signatureAlgorithm(data[1])}
	sigLen := int(binary.BigEndian.Uint16(data[2:4]))
	if len(data) < 4+sigLen {
		return errors.New("dtls: CertificateVerify truncated")
	}
	c.Signature = append([]byte(nil), data[4:4+sigLen]...)
	return nil
}
