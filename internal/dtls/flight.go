package dtls

import (
	"crypto"
	"crypto/x509"
	"net"
	"time"

	errors "golang.org/x/xerrors"
)

// state names a point in the flight-driven handshake, one per RFC6347
// §4.2.4 flight grouping (a flight is retransmitted and awaited as a unit).
type state int

const (
	stateSendClientHello state = iota
	stateWaitHelloVerifyRequest
	stateSendClientHelloWithCookie
	stateWaitServerFlight
	stateSendClientFlight
	stateWaitServerFinished
	stateWaitClientHello
	stateSendHelloVerifyRequest
	stateWaitClientHelloWithCookie
	stateSendServerFlight
	stateWaitClientFlight
	stateSendServerFinished
	stateConnected
)

const (
	initialRetransmitTimeout = time.Second
	maxRetransmitTimeout     = 60 * time.Second
	maxRetransmits           = 8
	maxFragmentSize          = 1200
)

// flight is one set of handshake messages reassembled from a single logical
// retransmission unit, keyed by type, plus whether a ChangeCipherSpec
// accompanied it.
type flight struct {
	messages map[HandshakeType]*Handshake
	ccs      bool
	frags    map[HandshakeType]*messageReassembler
}

// event drives step: either an inbound flight or a retransmission timeout.
type event struct {
	timeout bool
	flight  *flight
}

// handshakeEngine drives one DTLS handshake to completion over conn. It
// owns the running transcript, negotiated parameters, and cipher state.
type handshakeEngine struct {
	conn     net.Conn
	isClient bool
	config   *Config

	state state
	cache *handshakeCache

	localSeq, remoteSeq uint16 // next handshake message_seq to use/expect

	localEpoch, remoteEpoch       uint16
	localRecordSeq, remoteRecordSeq uint64

	clientRandom, serverRandom handshakeRandom
	sessionID                  []byte
	cookie                     []byte
	cookieGen                  *cookieGenerator

	offeredCipherSuites []CipherSuiteID
	cipherSuite         cipherSuite

	curve   NamedCurve
	ecdh    *ecdhKeyPair
	peerKey []byte

	useEMS      bool
	srtpProfile SRTPProtectionProfile

	localCert  *x509.Certificate
	localKey   crypto.PrivateKey
	remoteCert *x509.Certificate

	masterSecret []byte

	retransmits int
	pending     [][]byte // last flight sent, for retransmission
}

func newHandshakeEngine(conn net.Conn, isClient bool, config *Config) *handshakeEngine {
	e := &handshakeEngine{
		conn:     conn,
		isClient: isClient,
		config:   config,
		cache:    newHandshakeCache(),
	}
	if isClient {
		e.state = stateSendClientHello
	} else {
		e.state = stateWaitClientHello
	}
	return e
}

// run drives the engine until the handshake completes or fails, returning
// the cipher suite ready for application data.
func (e *handshakeEngine) run() error {
	var ev event
	for {
		out, deadline, done, err := e.step(ev)
		if err != nil {
			return err
		}
		if len(out) > 0 {
			e.pending = out
			for _, rec := range out {
				if _, err := e.conn.Write(rec); err != nil {
					return errors.Errorf("dtls: write: %v", err)
				}
			}
		}
		if done {
			return nil
		}
		ev, err = e.waitFlight(deadline)
		if err != nil {
			return err
		}
	}
}

// waitFlight blocks for up to deadline for a full flight of handshake
// messages (or a ChangeCipherSpec) to arrive, retransmitting the last
// flight on timeout per RFC6347 §4.2.4's doubling backoff.
func (e *handshakeEngine) waitFlight(deadline time.Duration) (event, error) {
	if err := e.conn.SetReadDeadline(time.Now().Add(deadline)); err != nil {
		return event{}, errors.Errorf("dtls: set read deadline: %v", err)
	}

	fl := &flight{
		messages: make(map[HandshakeType]*Handshake),
		frags:    make(map[HandshakeType]*messageReassembler),
	}
	buf := make([]byte, 1<<16)
	for {
		n, err := e.conn.Read(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				e.retransmits++
				if e.retransmits > maxRetransmits {
					return event{}, errHandshakeTimeout
				}
				return event{timeout: true}, nil
			}
			return event{}, errors.Errorf("dtls: read: %v", err)
		}

		done, err := e.absorbDatagram(buf[:n], fl)
		if err != nil {
			return event{}, err
		}
		if done {
			e.retransmits = 0
			return event{flight: fl}, nil
		}
	}
}

// absorbDatagram parses every record in one UDP datagram, folding handshake
// fragments into fl, and reports whether fl now looks complete for the
// engine's current state.
func (e *handshakeEngine) absorbDatagram(data []byte, fl *flight) (bool, error) {
	frags := fl.frags
	for len(data) >= recordHeaderLength {
		var h RecordHeader
		payloadLen, err := h.Unmarshal(data)
		if err != nil {
			return false, err
		}
		if len(data) < recordHeaderLength+payloadLen {
			return false, errInvalidRecordLayerHeader
		}
		payload := data[recordHeaderLength : recordHeaderLength+payloadLen]
		data = data[recordHeaderLength+payloadLen:]

		if h.Epoch > 0 {
			if e.cipherSuite == nil {
				continue // can't decrypt yet; drop stray early-epoch record
			}
			plain, err := e.cipherSuite.decrypt(h.Epoch, h.SequenceNumber, h.ContentType, payload)
			if err != nil {
				continue
			}
			payload = plain
		}

		switch h.ContentType {
		case ContentTypeChangeCipherSpec:
			fl.ccs = true
			e.remoteEpoch++
			e.remoteRecordSeq = 0

		case ContentTypeAlert:
			var a Alert
			if err := a.Unmarshal(payload); err == nil && a.Level == AlertLevelFatal {
				return false, &a
			}

		case ContentTypeHandshake:
			for len(payload) >= handshakeHeaderLength {
				var hh HandshakeHeader
				if err := hh.Unmarshal(payload); err != nil {
					return false, err
				}
				fragEnd := handshakeHeaderLength + int(hh.FragmentLength)
				if len(payload) < fragEnd {
					return false, errInvalidHandshakeHeader
				}
				fragment := payload[handshakeHeaderLength:fragEnd]
				payload = payload[fragEnd:]

				r, ok := frags[hh.Type]
				if !ok {
					r = newMessageReassembler(hh)
					frags[hh.Type] = r
				}
				complete, err := r.add(hh, fragment)
				if err != nil {
					return false, err
				}
				if !complete {
					continue
				}

				msg, err := newHandshakeMessage(hh.Type)
				if err != nil {
					return false, err
				}
				if err := msg.Unmarshal(r.body); err != nil {
					return false, err
				}
				// HelloVerifyRequest, and a ClientHello still missing its
				// cookie, are excluded from the Finished transcript
				// [RFC6347 §4.2.1].
				skipCache := hh.Type == HandshakeTypeHelloVerifyRequest
				if ch, ok := msg.(*ClientHello); ok && len(ch.Cookie) == 0 {
					skipCache = true
				}
				if !skipCache {
					full, err := marshalHandshake(hh.MessageSequence, msg)
					if err != nil {
						return false, err
					}
					e.cache.push(full, hh.MessageSequence, hh.Type, !e.isClient)
				}
				fl.messages[hh.Type] = &Handshake{Header: hh, Message: msg}
				if hh.MessageSequence >= e.remoteSeq {
					e.remoteSeq = hh.MessageSequence + 1
				}
			}
		}
	}

	return e.flightSatisfiesState(fl), nil
}

// flightSatisfiesState reports whether fl contains everything the current
// state is waiting on.
func (e *handshakeEngine) flightSatisfiesState(fl *flight) bool {
	switch e.state {
	case stateWaitHelloVerifyRequest:
		_, haveHVR := fl.messages[HandshakeTypeHelloVerifyRequest]
		_, haveSH := fl.messages[HandshakeTypeServerHello]
		return haveHVR || haveSH
	case stateWaitServerFlight:
		_, ok := fl.messages[HandshakeTypeServerHelloDone]
		return ok
	case stateWaitServerFinished:
		_, ok := fl.messages[HandshakeTypeFinished]
		return ok && fl.ccs
	case stateWaitClientHello, stateWaitClientHelloWithCookie:
		_, ok := fl.messages[HandshakeTypeClientHello]
		return ok
	case stateWaitClientFlight:
		_, ok := fl.messages[HandshakeTypeFinished]
		return ok && fl.ccs
	default:
		return true
	}
}

// step performs one handshake transition. Given the last received flight
// (or a retransmission timeout), it returns the records to write, how long
// to wait for a reply, and whether the handshake is now complete.
func (e *handshakeEngine) step(ev event) (out [][]byte, deadline time.Duration, done bool, err error) {
	deadline = initialRetransmitTimeout << uint(e.retransmits)
	if deadline > maxRetransmitTimeout {
		deadline = maxRetransmitTimeout
	}

	if ev.timeout {
		return e.pending, deadline, false, nil
	}

	switch e.state {
	case stateSendClientHello:
		out, err = e.buildClientHello(nil)
		e.state = stateWaitHelloVerifyRequest
		return out, deadline, false, err

	case stateWaitHelloVerifyRequest:
		if hvr, ok := ev.flight.messages[HandshakeTypeHelloVerifyRequest]; ok {
			e.cookie = hvr.Message.(*HelloVerifyRequest).Cookie
			out, err = e.buildClientHello(e.cookie)
			e.state = stateWaitServerFlight
			return out, deadline, false, err
		}
		// Server skipped HelloVerifyRequest and answered directly.
		return e.continueServerFlight(ev.flight)

	case stateWaitServerFlight:
		return e.continueServerFlight(ev.flight)

	case stateWaitServerFinished:
		if err := e.verifyServerFinished(ev.flight); err != nil {
			return nil, 0, false, err
		}
		return nil, 0, true, nil

	case stateWaitClientHello:
		ch := ev.flight.messages[HandshakeTypeClientHello]
		if ch == nil {
			return nil, deadline, false, nil
		}
		hello := ch.Message.(*ClientHello)
		e.clientRandom = hello.Random
		e.sessionID = hello.SessionID
		e.offeredCipherSuites = hello.CipherSuites
		if e.cookieGen == nil {
			e.cookieGen, err = newCookieGenerator()
			if err != nil {
				return nil, 0, false, err
			}
		}
		if len(hello.Cookie) == 0 {
			out, err = e.buildHelloVerifyRequest()
			e.state = stateWaitClientHelloWithCookie
			return out, deadline, false, err
		}
		if !e.cookieGen.verify(hello.Cookie, e.conn.RemoteAddr(), marshalRandom(hello.Random), hello.SessionID) {
			out, err = e.buildHelloVerifyRequest()
			return out, deadline, false, err
		}
		return e.sendServerFlight(hello)

	case stateWaitClientHelloWithCookie:
		ch := ev.flight.messages[HandshakeTypeClientHello]
		if ch == nil {
			return nil, deadline, false, nil
		}
		hello := ch.Message.(*ClientHello)
		if !e.cookieGen.verify(hello.Cookie, e.conn.RemoteAddr(), marshalRandom(hello.Random), hello.SessionID) {
			return nil, deadline, false, errInvalidCookie
		}
		e.clientRandom = hello.Random
		e.sessionID = hello.SessionID
		e.offeredCipherSuites = hello.CipherSuites
		return e.sendServerFlight(hello)

	case stateWaitClientFlight:
		if err := e.verifyClientFinished(ev.flight); err != nil {
			return nil, 0, false, err
		}
		out, err = e.buildServerFinished()
		return out, 0, true, err

	default:
		return nil, 0, true, nil
	}
}

func marshalRandom(r handshakeRandom) []byte {
	b, _ := r.Marshal()
	return b
}
