package dtls

import errors "golang.org/x/xerrors"

// Certificate carries the sender's X.509 certificate chain, leaf first
// [RFC5246 §7.4.2].
type Certificate struct {
	Certificate [][]byte
}

func (c *Certificate) Type() HandshakeType { return HandshakeTypeCertificate }

func (c *Certificate) Marshal() ([]byte, error) {
	var certs []byte
	for _, der := range c.Certificate {
		hdr := make([]byte, 3)
		putUint24(hdr, uint32(len(der)))
		certs = append(certs, hdr...)
		certs = append(certs, der...)
	}
	buf := make([]byte, 3+len(certs))
	putUint24(buf[0:3], uint32(len(certs)))
	copy(buf[3:], certs)
	return buf, nil
}

func (c *Certificate) Unmarshal(data []byte) error {
	if len(data) < 3 {
		return errors.New("dtls: Certificate too short")
	}
	total := int(getUint24(data[0:3]))
	if len(data) < 3+total {
		return errors.New("dtls: Certificate truncated")
	}
	body := data[3 : 3+total]
	c.Certificate = nil
	for len(body) > 0 {
		if len(body) < 3 {
			return errors.New("dtls: Certificate entry truncated")
		}
		certLen := int(getUint24(body[0:3]))
		if len(body) < 3+certLen {
			return errors.New("dtls: Certificate entry truncated")
		}
		c.Certificate = append(c.Certificate, append([]byte(nil), body[3:3+certLen]...))
		body = body[3+certLen:]
	}
	return nil
}
