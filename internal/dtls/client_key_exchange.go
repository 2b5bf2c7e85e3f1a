package dtls

import errors "golang.org/x/xerrors"

// ClientKeyExchange carries the client's ephemeral ECDHE public key
// [RFC8422 §5.7]. PSK-based exchanges are not supported.
type ClientKeyExchange struct {
	PublicKey []byte
}

func (k *ClientKeyExchange) Type() HandshakeType { return HandshakeTypeClientKeyExchange }

func (k *ClientKeyExchange) Marshal() ([]byte, error) {
	buf := make([]byte, 1+len(k.PublicKey))
	buf[0] = byte(len(k.PublicKey))
	copy(buf[1:], k.PublicKey)
	return buf, nil
}

func (k *ClientKeyExchange) Unmarshal(data []byte) error {
	if len(data) < 1 {
		return errors.New("dtls: ClientKeyExchange too short")
	}
	n := int(data[0])
	if len(data) < 1+n {
		return errors.New("dtls: ClientKeyExchange truncated")
	}
	k.PublicKey = append([]byte(nil), data[1:1+n]...)
	return nil
}
