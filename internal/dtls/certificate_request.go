package dtls

import (
	"encoding/binary"

	errors "golang.org/x/xerrors"
)

// clientCertificateTypeECDSASign is the only client certificate type this
// engine requests [RFC5246 §7.4.4].
const clientCertificateTypeECDSASign = 64

// CertificateRequest asks the client for a certificate (mutual auth)
// [RFC5246 §7.4.4]. DTLS-SRTP deployments (WebRTC) always request one.
type CertificateRequest struct {
	CertificateTypes        []byte
	SignatureHashAlgorithms []signatureHashAlgorithm
}

func (c *CertificateRequest) Type() HandshakeType { return HandshakeTypeCertificateRequest }

func (c *CertificateRequest) Marshal() ([]byte, error) {
	buf := make([]byte, 0, 1+len(c.CertificateTypes)+2+2*len(c.SignatureHashAlgorithms)+2)
	buf = append(buf, byte(len(c.CertificateTypes)))
	buf = append(buf, c.CertificateTypes...)

	sigs := make([]byte, 2+2*len(c.SignatureHashAlgorithms))
	binary.BigEndian.PutUint16(sigs[0:2], uint16(2*len(c.SignatureHashAlgorithms)))
	for i, a := range c.SignatureHashAlgorithms {
		sigs[2+2*i] = byte(a.hash)
		sigs[2+2*i+1] = byte(a.signature)
	}
	buf = append(buf, sigs...)

	// certificate_authorities: empty, any CA accepted.
	buf = append(buf, 0x00, 0x00)
	return buf, nil
}

func (c *CertificateRequest) Unmarshal(data []byte) error {
	if len(data) < 1 {
		return errors.New("dtls: CertificateRequest too short")
	}
	n := int(data[0])
	if len(data) < 1+n+2 {
		return errors.New("dtls: CertificateRequest truncated")
	}
	c.CertificateTypes = append([]byte(nil), data[1:1+n]...)
	offset := 1 + n

	sigsLen := int(binary.BigEndian.Uint16(data[offset : offset+2]))
	offset += 2
	if len(data) < offset+sigsLen {
		return errors.New("dtls: CertificateRequest truncated at signature algorithms")
	}
	c.SignatureHashAlgorithms = nil
	for i := 0; i+1 < sigsLen; i += 2 {
		c.SignatureHashAlgorithms = append(c.SignatureHashAlgorithms, signatureHashAlgorithm{
			hash:      HashAlgorithm(data[offset+i]),
			signature: signatureAlgorithm(data[offset+i+1]),
		})
	}
	return nil
}
