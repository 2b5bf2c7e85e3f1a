package dtls

import (
	"crypto"
	"crypto/x509"
	"net"
	"sync"

	errors "golang.org/x/xerrors"
)

// Config carries the identity a DTLS handshake authenticates itself with.
// WebRTC's DTLS-SRTP profile verifies the peer's certificate out of band
// (against the SDP a=fingerprint), so Config has no root CA pool or
// ServerName to check against.
type Config struct {
	Certificate *x509.Certificate
	PrivateKey  crypto.PrivateKey
}

// Conn is an established DTLS session layered over a packet-oriented
// net.Conn (one handshake record or application-data datagram per
// Read/Write), such as an ICE-selected candidate pair or an
// internal/mux.Endpoint.
type Conn struct {
	engine *handshakeEngine

	readMu  sync.Mutex
	readBuf []byte
}

// Client runs the DTLS handshake as the initiating side over conn.
func Client(conn net.Conn, config *Config) (*Conn, error) {
	return handshake(conn, true, config)
}

// Server runs the DTLS handshake as the responding side over conn.
func Server(conn net.Conn, config *Config) (*Conn, error) {
	return handshake(conn, false, config)
}

func handshake(conn net.Conn, isClient bool, config *Config) (*Conn, error) {
	if config == nil || config.Certificate == nil || config.PrivateKey == nil {
		return nil, errors.New("dtls: config must carry a certificate and private key")
	}
	e := newHandshakeEngine(conn, isClient, config)
	e.localCert = config.Certificate
	e.localKey = config.PrivateKey

	if err := e.run(); err != nil {
		return nil, err
	}
	return &Conn{engine: e}, nil
}

// ExportKeyingMaterial derives additional keying material from the
// handshake's master secret, as used by DTLS-SRTP to key the SRTP session
// [RFC5705, RFC5764 §4.2]. context is appended to the seed when non-empty;
// WebRTC's use_srtp derivation never sets it.
func (c *Conn) ExportKeyingMaterial(label string, context []byte, length int) ([]byte, error) {
	e := c.engine
	seed := make([]byte, 0, len(context)+64)
	cr, _ := e.clientRandom.Marshal()
	sr, _ := e.serverRandom.Marshal()
	seed = append(seed, cr...)
	seed = append(seed, sr...)
	seed = append(seed, context...)
	return pHash(e.masterSecret, append([]byte(label), seed...), length, cipherSuiteHashSHA256()), nil
}

// SRTPProtectionProfile returns the profile negotiated via the use_srtp
// extension.
func (c *Conn) SRTPProtectionProfile() SRTPProtectionProfile {
	return c.engine.srtpProfile
}

// PeerCertificate returns the certificate presented by the remote side
// during the handshake.
func (c *Conn) PeerCertificate() *x509.Certificate {
	return c.engine.remoteCert
}

// Read returns one decrypted application-data record.
func (c *Conn) Read(p []byte) (int, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	for len(c.readBuf) == 0 {
		buf := make([]byte, 1<<16)
		n, err := c.engine.conn.Read(buf)
		if err != nil {
			return 0, err
		}
		plain, err := c.decryptApplicationData(buf[:n])
		if err != nil {
			return 0, err
		}
		c.readBuf = plain
	}
	n := copy(p, c.readBuf)
	c.readBuf = c.readBuf[n:]
	return n, nil
}

func (c *Conn) decryptApplicationData(datagram []byte) ([]byte, error) {
	var out []byte
	e := c.engine
	for len(datagram) >= recordHeaderLength {
		var h RecordHeader
		payloadLen, err := h.Unmarshal(datagram)
		if err != nil {
			return nil, err
		}
		if len(datagram) < recordHeaderLength+payloadLen {
			return nil, errInvalidRecordLayerHeader
		}
		payload := datagram[recordHeaderLength : recordHeaderLength+payloadLen]
		datagram = datagram[recordHeaderLength+payloadLen:]

		if h.ContentType != ContentTypeApplicationData {
			continue
		}
		plain, err := e.cipherSuite.decrypt(h.Epoch, h.SequenceNumber, h.ContentType, payload)
		if err != nil {
			return nil, err
		}
		out = append(out, plain...)
	}
	return out, nil
}

// Write encrypts and sends p as a single application-data record.
func (c *Conn) Write(p []byte) (int, error) {
	rec, err := c.engine.wrapRecord(ContentTypeApplicationData, p)
	if err != nil {
		return 0, err
	}
	if _, err := c.engine.conn.Write(rec); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *Conn) Close() error {
	return c.engine.conn.Close()
}

func (c *Conn) LocalAddr() net.Addr  { return c.engine.conn.LocalAddr() }
func (c *Conn) RemoteAddr() net.Addr { return c.engine.conn.RemoteAddr() }
