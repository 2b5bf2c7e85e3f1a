package dtls

import errors "golang.org/x/xerrors"

// HelloVerifyRequest carries the server's stateless cookie, forcing the
// client to retry ClientHello with it before any per-connection state is
// allocated [RFC6347 §4.2.1].
type HelloVerifyRequest struct {
	Version ProtocolVersion
	Cookie  []byte
}

func (h *HelloVerifyRequest) Type() HandshakeType { return HandshakeTypeHelloVerifyRequest }

func (h *HelloVerifyRequest) Marshal() ([]byte, error) {
	buf := make([]byte, 3+len(h.Cookie))
	buf[0] = h.Version.Major
	buf[1] = h.Version.Minor
	buf[2] = byte(len(h.Cookie))
	copy(buf[3:], h.Cookie)
	return buf, nil
}

func (h *HelloVerifyRequest) Unmarshal(data []byte) error {
	if len(data) < 3 {
		return errors.New("dtls: HelloVerifyRequest too short")
	}
	h.Version = ProtocolVersion{data[0], data[1]}
	cookieLen := int(data[2])
	if len(data) < 3+cookieLen {
		return errors.New("dtls: HelloVerifyRequest truncated")
	}
	h.Cookie = append([]byte(nil), data[3:3+cookieLen]...)
	return nil
}
