package sctp

import (
	"crypto/rand"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	errors "golang.org/x/xerrors"

	"github.com/lanikai/alohartc/internal/logging"
)

var log = logging.DefaultLogger.WithTag("sctp")

// associationState is one of the states of the RFC4960 §4 state diagram
// this engine actually visits; there is no listener-side CLOSED-to-passive
// wait state since Server always starts in CookieWait-adjacent "awaiting
// INIT" mode.
type associationState int

const (
	stateClosed associationState = iota
	stateCookieWait
	stateCookieEchoed
	stateEstablished
	stateShutdownPending
	stateShutdownSent
	stateShutdownReceived
	stateShutdownAckSent
)

const (
	defaultMTU          = 1200
	t1InitTimeout       = time.Second
	t1InitMaxRetransmits = 8
	t3RtxTimeout        = time.Second
	flushInterval       = 100 * time.Millisecond

	// RFC4960 §7.2: initial cwnd is min(4*MTU, max(2*MTU, 4380)), which is
	// 4380 for defaultMTU.
	initialCwndBytes = 4380
)

// Config carries per-association tuning, mirroring dtls.Config's role as a
// plain struct of identity/limits rather than functional options.
type Config struct {
	// MaxReceiveBufferSize bounds the pending-send queue's credit pool; 0
	// selects defaultSendQueueByteLimit.
	MaxReceiveBufferSize uint64
}

// Association is one SCTP association layered over a reliable, ordered
// packet transport (in WebRTC, a DTLS connection) [RFC4960 §4, spec §4.F].
// All state mutation is serialized on mu, matching the cooperative,
// single-logical-thread-per-association scheduling model the rest of the
// engine follows.
type Association struct {
	id uuid.UUID

	mu    sync.Mutex
	state associationState
	conn  net.Conn

	myVerificationTag   uint32
	peerVerificationTag uint32
	myNextTSN           uint32 // next TSN this side will assign
	peerCumulativeTSN   uint32 // highest contiguous TSN received from peer
	peerInitialTSN      uint32

	myAdvertisedRwnd uint32
	peerRwnd         uint32

	cwnd    uint32
	ssthresh uint32

	inflight map[uint32]*chunkPayloadData
	pending  *pendingQueue

	streams          map[uint16]*Stream
	reassembly       map[uint16]*reassemblyQueue
	myNextSSN        map[uint16]uint16
	onStreamAccepted func(*Stream)

	t1Retransmits int
	handshakeDone chan error

	closed chan struct{}
}

// Client runs the four-way handshake as the initiating side over conn.
func Client(conn net.Conn, config *Config) (*Association, error) {
	return newAssociation(conn, config, true)
}

// Server waits for an INIT and completes the handshake as the responding
// side over conn.
func Server(conn net.Conn, config *Config) (*Association, error) {
	return newAssociation(conn, config, false)
}

func newAssociation(conn net.Conn, config *Config, isClient bool) (*Association, error) {
	if config == nil {
		config = &Config{}
	}
	tag, err := randomUint32()
	if err != nil {
		return nil, err
	}
	initialTSN, err := randomUint32()
	if err != nil {
		return nil, err
	}

	a := &Association{
		id:                uuid.New(),
		conn:              conn,
		myVerificationTag: tag,
		myNextTSN:         initialTSN,
		myAdvertisedRwnd:  defaultSendQueueByteLimit,
		cwnd:              initialCwndBytes,
		ssthresh:          1 << 30,
		inflight:          make(map[uint32]*chunkPayloadData),
		pending:           newPendingQueue(config.MaxReceiveBufferSize),
		streams:           make(map[uint16]*Stream),
		reassembly:        make(map[uint16]*reassemblyQueue),
		myNextSSN:         make(map[uint16]uint16),
		handshakeDone:     make(chan error, 1),
		closed:            make(chan struct{}),
	}

	go a.run(isClient)

	select {
	case err := <-a.handshakeDone:
		if err != nil {
			return nil, err
		}
	}
	return a, nil
}

func randomUint32() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, errors.Errorf("sctp: random: %v", err)
	}
	return getUint32(b[:]), nil
}

// run drives the handshake to completion, then services the association
// (inbound chunk dispatch, retransmission, outbound flushing) until Close.
func (a *Association) run(isClient bool) {
	if isClient {
		a.mu.Lock()
		a.state = stateCookieWait
		a.mu.Unlock()
		if err := a.runClientHandshake(); err != nil {
			a.handshakeDone <- err
			return
		}
	} else {
		if err := a.runServerHandshake(); err != nil {
			a.handshakeDone <- err
			return
		}
	}
	a.handshakeDone <- nil
	a.serviceLoop()
}

// serviceLoop alternates between waiting (briefly) for inbound packets and
// flushing anything newly queued for send, which is how Stream.Write's
// pendingQueue pushes eventually reach the wire without a second
// synchronization primitive between it and the read goroutine.
func (a *Association) serviceLoop() {
	for {
		select {
		case <-a.closed:
			return
		default:
		}

		a.mu.Lock()
		a.flushLocked()
		a.mu.Unlock()

		if err := a.conn.SetReadDeadline(time.Now().Add(flushInterval)); err != nil {
			return
		}
		buf := make([]byte, 1<<16)
		n, err := a.conn.Read(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				a.mu.Lock()
				a.checkT3RtxLocked()
				a.mu.Unlock()
				continue
			}
			a.closeLocked()
			return
		}

		if err := a.handlePacket(buf[:n]); err != nil {
			log.Warn("sctp: %v: %v", a.id, err)
		}
	}
}

func (a *Association) handlePacket(data []byte) error {
	p, err := unmarshalPacket(data)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, c := range p.chunks {
		if err := a.handleChunkLocked(c); err != nil {
			return err
		}
	}
	return nil
}

func (a *Association) handleChunkLocked(c chunk) error {
	switch v := c.(type) {
	case *chunkPayloadData:
		return a.handleDataLocked(v)
	case *chunkSack:
		return a.handleSackLocked(v)
	case *chunkHeartbeat:
		return a.sendHeartbeatAckLocked(v)
	case *chunkHeartbeatAck:
		return nil
	case *chunkAbort:
		a.state = stateClosed
		close(a.closed)
		return errAssociationClosed
	case *chunkShutdown:
		return a.handleShutdownLocked(v)
	case *chunkShutdownAck:
		return a.handleShutdownAckLocked()
	case *chunkShutdownComplete:
		a.state = stateClosed
		close(a.closed)
		return nil
	case *chunkReconfig:
		return a.handleReconfigLocked(v)
	case *chunkError:
		log.Warn("sctp: %v: peer reported error chunk with %d cause(s)", a.id, len(v.causes))
		return nil
	}
	return nil
}

func (a *Association) handleDataLocked(d *chunkPayloadData) error {
	if a.state != stateEstablished && a.state != stateShutdownPending {
		return errPayloadNonEstablished
	}

	rq, ok := a.reassembly[d.streamIdentifier]
	if !ok {
		rq = newReassemblyQueue(d.streamIdentifier)
		a.reassembly[d.streamIdentifier] = rq
		a.acceptStreamLocked(d.streamIdentifier)
	}

	if sna32GT(d.tsn, a.peerCumulativeTSN) && !sna32GT(d.tsn, a.peerCumulativeTSN+1) {
		a.peerCumulativeTSN = d.tsn
	} else if sna32GT(d.tsn, a.peerCumulativeTSN+1) {
		// Gap; still buffer it for reassembly and report via gap-ack on the
		// next SACK. A full gap-ack-block tracker across SACKs is left to
		// the pending-queue's own retransmit-driven convergence.
	} else {
		return nil // duplicate, already delivered
	}

	messages := rq.push(d)
	stream := a.streams[d.streamIdentifier]
	for _, msg := range messages {
		if stream != nil {
			stream.deliver(msg)
		}
	}

	return a.sendSackLocked()
}

func (a *Association) acceptStreamLocked(streamID uint16) {
	if _, ok := a.streams[streamID]; ok {
		return
	}
	s := newStream(a, streamID)
	a.streams[streamID] = s
	if a.onStreamAccepted != nil {
		a.onStreamAccepted(s)
	}
}

func (a *Association) sendSackLocked() error {
	sack := &chunkSack{
		cumulativeTSN:  a.peerCumulativeTSN,
		advertisedRwnd: a.myAdvertisedRwnd,
	}
	return a.sendChunkLocked(sack, 0)
}

func (a *Association) sendHeartbeatAckLocked(h *chunkHeartbeat) error {
	return a.sendChunkLocked(&chunkHeartbeatAck{chunkHeartbeat: chunkHeartbeat{info: h.info}, ack: true}, 0)
}

func (a *Association) handleShutdownLocked(s *chunkShutdown) error {
	a.removeAckedBelowLocked(s.cumulativeTSN)
	if a.state == stateEstablished {
		a.state = stateShutdownReceived
	}
	if len(a.inflight) == 0 && a.pending.len() == 0 {
		a.state = stateShutdownAckSent
		return a.sendChunkLocked(&chunkShutdownAck{}, 0)
	}
	return nil
}

func (a *Association) handleShutdownAckLocked() error {
	a.state = stateClosed
	if err := a.sendChunkLocked(&chunkShutdownComplete{}, 0); err != nil {
		return err
	}
	close(a.closed)
	return nil
}

func (a *Association) handleReconfigLocked(c *chunkReconfig) error {
	if c.request == nil {
		return nil
	}
	for _, id := range c.request.streamIdentifiers {
		delete(a.reassembly, id)
		if s, ok := a.streams[id]; ok {
			s.closeLocked()
		}
	}
	resp := &reconfigResponse{responseSequence: c.request.requestSequence, result: reconfigResultSuccessPerformed}
	return a.sendChunkLocked(&chunkReconfig{response: resp}, 0)
}

func (a *Association) sendChunkLocked(c chunk, flags byte) error {
	p := &packet{
		sourcePort:      5000,
		destinationPort: 5000,
		verificationTag: a.peerVerificationTag,
		chunks:          []chunk{c},
		chunkFlags:      []byte{flags},
	}
	raw, err := p.marshal()
	if err != nil {
		return err
	}
	_, err = a.conn.Write(raw)
	return err
}

// flushLocked pops as many pending fragments as cwnd allows and puts them
// on the wire, tracking each in the inflight map for SACK/T3-rtx handling.
func (a *Association) flushLocked() {
	if a.state != stateEstablished && a.state != stateShutdownPending {
		return
	}
	var inflightBytes int
	for _, c := range a.inflight {
		inflightBytes += len(c.userData)
	}

	for uint32(inflightBytes) < a.cwnd {
		d := a.pending.pop()
		if d == nil {
			break
		}
		d.tsn = a.myNextTSN
		a.myNextTSN++
		a.inflight[d.tsn] = d
		d.sentAt = time.Now().UnixNano()
		d.nSent++
		inflightBytes += len(d.userData)

		if err := a.sendChunkLocked(d, d.flags()); err != nil {
			log.Warn("sctp: %v: send DATA: %v", a.id, err)
			return
		}
	}
}

func (a *Association) checkT3RtxLocked() {
	if len(a.inflight) == 0 {
		return
	}
	now := time.Now().UnixNano()
	timedOut := false
	for tsn, c := range a.inflight {
		if now-c.sentAt >= t3RtxTimeout.Nanoseconds() {
			timedOut = true
			c.nSent++
			c.sentAt = now
			if err := a.sendChunkLocked(c, c.flags()); err != nil {
				log.Warn("sctp: %v: retransmit TSN %d: %v", a.id, tsn, err)
			}
		}
	}
	if timedOut {
		a.onRetransmitTimeoutLocked()
	}
}

func (a *Association) removeAckedBelowLocked(cumulativeTSN uint32) {
	for tsn := range a.inflight {
		if sna32LTE(tsn, cumulativeTSN) {
			delete(a.inflight, tsn)
		}
	}
}

func (a *Association) closeLocked() {
	select {
	case <-a.closed:
	default:
		close(a.closed)
	}
}

// Close begins a graceful SHUTDOWN (spec §4.F "Shutdown"): no further DATA
// is accepted and any already-queued DATA drains before SHUTDOWN is sent.
func (a *Association) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != stateEstablished {
		return errShutdownNonEstablished
	}
	if len(a.inflight) == 0 && a.pending.len() == 0 {
		a.state = stateShutdownSent
		return a.sendChunkLocked(&chunkShutdown{cumulativeTSN: a.peerCumulativeTSN}, 0)
	}
	a.state = stateShutdownPending
	return nil
}

// OpenStream creates (or returns the existing) local handle for streamID.
// SCTP itself has no explicit open handshake; a stream comes into being the
// first time either side sends DATA bearing its identifier
// [RFC8831 §6.1].
func (a *Association) OpenStream(streamID uint16, unordered bool, ppi PayloadProtocolIdentifier) (*Stream, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if s, ok := a.streams[streamID]; ok {
		return s, nil
	}
	s := newStream(a, streamID)
	s.unordered = unordered
	s.defaultPPI = ppi
	a.streams[streamID] = s
	return s, nil
}

// OnStreamAccepted registers a callback invoked (with the association's lock
// held) when a
// previously unseen stream ID arrives on inbound DATA, mirroring how the
// teacher's signaling layer surfaces new data channels to the application.
func (a *Association) OnStreamAccepted(fn func(*Stream)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onStreamAccepted = fn
}

// sendMessage segments data into DATA chunks no larger than the path MTU
// minus headers, assigns the stream's next SSN if ordered, and pushes every
// fragment onto the pending-send queue atomically [spec §3 pending-send
// invariant, §4.F "Sending a user message"].
func (a *Association) sendMessage(streamID uint16, ppi PayloadProtocolIdentifier, data []byte, unordered bool) error {
	const maxFragment = defaultMTU - commonHeaderLength - chunkHeaderLength - dataHeaderLength
	const maxMessageSize = 256 * 1024

	if len(data) > maxMessageSize {
		return errOutboundMessageTooLarge
	}

	a.mu.Lock()
	if a.state != stateEstablished {
		a.mu.Unlock()
		return errPayloadNonEstablished
	}
	var ssn uint16
	if !unordered {
		ssn = a.myNextSSN[streamID]
		a.myNextSSN[streamID] = ssn + 1
	}
	a.mu.Unlock()

	if len(data) == 0 {
		data = []byte{}
	}
	n := (len(data) + maxFragment - 1) / maxFragment
	if n == 0 {
		n = 1
	}

	fragments := make([]*chunkPayloadData, 0, n)
	for i := 0; i < n; i++ {
		start := i * maxFragment
		end := start + maxFragment
		if end > len(data) {
			end = len(data)
		}
		fragments = append(fragments, &chunkPayloadData{
			streamIdentifier:     streamID,
			streamSequenceNumber: ssn,
			payloadType:          ppi,
			userData:             append([]byte(nil), data[start:end]...),
			unordered:            unordered,
			beginningFragment:    i == 0,
			endingFragment:       i == n-1,
		})
	}

	for _, f := range fragments {
		a.pending.push(f)
	}
	return nil
}
