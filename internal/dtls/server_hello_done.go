package dtls

// ServerHelloDone marks the end of the server's first flight of the main
// handshake [RFC5246 §7.4.5]. It carries no data.
type ServerHelloDone struct{}

func (h *ServerHelloDone) Type() HandshakeType { return HandshakeTypeServerHelloDone }

func (h *ServerHelloDone) Marshal() ([]byte, error) { return nil, nil }

func (h *ServerHelloDone) Unmarshal(data []byte) error { return nil }
