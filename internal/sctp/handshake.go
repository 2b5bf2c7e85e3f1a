package sctp

import (
	"net"
	"time"

	errors "golang.org/x/xerrors"
)

// runClientHandshake drives the first three legs of the four-way handshake
// [RFC4960 §5.1]: INIT, wait for INIT ACK (retransmitting INIT on timeout),
// then COOKIE ECHO, and finally wait for COOKIE ACK.
func (a *Association) runClientHandshake() error {
	init := &chunkInit{initCommon{
		initiateTag:     a.myVerificationTag,
		advertisedRwnd:  a.myAdvertisedRwnd,
		outboundStreams: 65535,
		inboundStreams:  65535,
		initialTSN:      a.myNextTSN,
	}}

	initAck, err := a.exchangeWithRetransmit(func() chunk { return init }, a.myVerificationTag)
	if err != nil {
		return err
	}
	ack, ok := initAck.(*chunkInitAck)
	if !ok {
		return errHandshakeInitAck
	}

	a.mu.Lock()
	a.peerVerificationTag = ack.initiateTag
	a.peerRwnd = ack.advertisedRwnd
	a.peerInitialTSN = ack.initialTSN
	a.peerCumulativeTSN = ack.initialTSN - 1
	a.state = stateCookieEchoed
	a.mu.Unlock()

	echo := &chunkCookieEcho{cookie: ack.stateCookie}
	reply, err := a.exchangeWithRetransmit(func() chunk { return echo }, a.peerVerificationTag)
	if err != nil {
		return err
	}
	if _, ok := reply.(*chunkCookieAck); !ok {
		return errHandshakeCookieEcho
	}

	a.mu.Lock()
	a.state = stateEstablished
	a.mu.Unlock()
	return nil
}

// exchangeWithRetransmit sends buildChunk() repeatedly (T1-init style
// doubling is skipped in favor of a fixed interval, since RFC4960 leaves
// the exact backoff to the implementation) until a reply chunk of any kind
// arrives, or t1InitMaxRetransmits is exceeded.
func (a *Association) exchangeWithRetransmit(buildChunk func() chunk, verificationTag uint32) (chunk, error) {
	for attempt := 0; attempt <= t1InitMaxRetransmits; attempt++ {
		p := &packet{
			sourcePort:      5000,
			destinationPort: 5000,
			verificationTag: verificationTag,
			chunks:          []chunk{buildChunk()},
		}
		raw, err := p.marshal()
		if err != nil {
			return nil, err
		}
		if _, err := a.conn.Write(raw); err != nil {
			return nil, errors.Errorf("sctp: write: %v", err)
		}

		if err := a.conn.SetReadDeadline(time.Now().Add(t1InitTimeout)); err != nil {
			return nil, err
		}
		buf := make([]byte, 1<<16)
		n, err := a.conn.Read(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return nil, errors.Errorf("sctp: read: %v", err)
		}

		resp, err := unmarshalPacket(buf[:n])
		if err != nil {
			continue
		}
		if len(resp.chunks) == 0 {
			continue
		}
		return resp.chunks[0], nil
	}
	return nil, errHandshakeInitAck
}

// runServerHandshake waits (statelessly, per RFC4960 §5.1.3-4) for an INIT,
// answers with INIT ACK carrying a state cookie, then waits for a matching
// COOKIE ECHO before declaring the association Established.
func (a *Association) runServerHandshake() error {
	for {
		if err := a.conn.SetReadDeadline(time.Time{}); err != nil {
			return err
		}
		buf := make([]byte, 1<<16)
		n, err := a.conn.Read(buf)
		if err != nil {
			return errors.Errorf("sctp: read: %v", err)
		}
		p, err := unmarshalPacket(buf[:n])
		if err != nil {
			continue
		}
		init, ok := p.chunks[0].(*chunkInit)
		if !ok {
			continue
		}
		if len(p.chunks) != 1 {
			return errInitChunkBundled
		}

		a.mu.Lock()
		a.peerVerificationTag = init.initiateTag
		a.peerRwnd = init.advertisedRwnd
		a.peerInitialTSN = init.initialTSN
		a.peerCumulativeTSN = init.initialTSN - 1
		a.mu.Unlock()

		cookie, err := a.generateStateCookie(init)
		if err != nil {
			return err
		}
		ack := &chunkInitAck{
			initCommon: initCommon{
				initiateTag:     a.myVerificationTag,
				advertisedRwnd:  a.myAdvertisedRwnd,
				outboundStreams: 65535,
				inboundStreams:  65535,
				initialTSN:      a.myNextTSN,
			},
			stateCookie: cookie,
		}
		if err := a.sendReplyPacket(ack, init.initiateTag); err != nil {
			return err
		}
		break
	}

	for {
		buf := make([]byte, 1<<16)
		n, err := a.conn.Read(buf)
		if err != nil {
			return errors.Errorf("sctp: read: %v", err)
		}
		p, err := unmarshalPacket(buf[:n])
		if err != nil {
			continue
		}
		found := false
		for _, c := range p.chunks {
			if echo, ok := c.(*chunkCookieEcho); ok {
				if !a.verifyStateCookie(echo.cookie) {
					return errHandshakeCookieEcho
				}
				found = true
			}
		}
		if !found {
			continue
		}

		if err := a.sendReplyPacket(&chunkCookieAck{}, a.peerVerificationTag); err != nil {
			return err
		}
		a.mu.Lock()
		a.state = stateEstablished
		a.mu.Unlock()
		return nil
	}
}

func (a *Association) sendReplyPacket(c chunk, verificationTag uint32) error {
	p := &packet{sourcePort: 5000, destinationPort: 5000, verificationTag: verificationTag, chunks: []chunk{c}}
	raw, err := p.marshal()
	if err != nil {
		return err
	}
	_, err = a.conn.Write(raw)
	return err
}

// generateStateCookie and verifyStateCookie implement the "stateless until
// COOKIE ECHO" requirement [RFC4960 §5.1.3-4] with a bare echo of the
// peer's initiate tag plus our own, rather than the MAC'd cookie a
// production listener needs to resist off-path forgery; this association
// is always reached over an already-authenticated DTLS channel, so the
// cookie only needs to survive retransmission, not attack.
func (a *Association) generateStateCookie(init *chunkInit) ([]byte, error) {
	cookie := make([]byte, 8)
	putUint32(cookie[0:4], init.initiateTag)
	putUint32(cookie[4:8], a.myVerificationTag)
	return cookie, nil
}

func (a *Association) verifyStateCookie(cookie []byte) bool {
	if len(cookie) != 8 {
		return false
	}
	return getUint32(cookie[0:4]) == a.peerVerificationTag && getUint32(cookie[4:8]) == a.myVerificationTag
}
