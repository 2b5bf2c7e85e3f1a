package interceptor

import (
	"sync"
	"time"

	"github.com/lanikai/alohartc/internal/rtcp"
)

// NackGeneratorOptions configures a NackGenerator.
type NackGeneratorOptions struct {
	// Interval between scans for missing sequence numbers, and between
	// repeat NACKs for a still-missing packet. Defaults to 100ms, in line
	// with WebRTC's recommended interval to stay well under an RTT.
	Interval time.Duration

	// MaxRetries bounds how many times a single missing sequence number is
	// NACKed before the generator gives up on it (the sender's own
	// retransmission buffer is assumed to have aged it out by then).
	// Defaults to 3.
	MaxRetries int
}

// NackGenerator watches incoming RTP sequence numbers for gaps and emits
// RTCP TransportLayerNack feedback requesting retransmission. Grounded on
// RFC 4585 §6.2.1 and the bitmask format already coded in
// rtp/avpf.go's nackFeedbackMessage, now reused via
// rtcp.NackPair/rtcp.NackPairsFromSequenceNumbers.
type NackGenerator struct {
	NoOp

	interval   time.Duration
	maxRetries int

	mu      sync.Mutex
	streams map[uint32]*nackGenStream

	writer RTCPWriter

	closeCh   chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewNackGenerator creates a NackGenerator interceptor.
func NewNackGenerator(opts NackGeneratorOptions) *NackGenerator {
	if opts.Interval <= 0 {
		opts.Interval = 100 * time.Millisecond
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	return &NackGenerator{
		interval:   opts.Interval,
		maxRetries: opts.MaxRetries,
		streams:    make(map[uint32]*nackGenStream),
		closeCh:    make(chan struct{}),
	}
}

func (g *NackGenerator) BindRTCPWriter(writer RTCPWriter) RTCPWriter {
	g.writer = writer
	g.wg.Add(1)
	go g.run()
	return writer
}

func (g *NackGenerator) run() {
	defer g.wg.Done()

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-g.closeCh:
			return
		case <-ticker.C:
			g.sendNacks()
		}
	}
}

func (g *NackGenerator) sendNacks() {
	g.mu.Lock()
	streams := make([]*nackGenStream, 0, len(g.streams))
	for _, s := range g.streams {
		streams = append(streams, s)
	}
	g.mu.Unlock()

	if g.writer == nil {
		return
	}

	var pkts []rtcp.Packet
	for _, s := range streams {
		if nack, ok := s.buildNack(g.maxRetries); ok {
			pkts = append(pkts, &nack)
		}
	}
	if len(pkts) == 0 {
		return
	}
	if _, err := g.writer.Write(pkts, nil); err != nil {
		log.Warn("NackGenerator: failed to send NACK: %s", err)
	}
}

func (g *NackGenerator) BindRemoteStream(info *StreamInfo, reader RTPReader) RTPReader {
	stream := newNackGenStream(info.SSRC, reader)

	g.mu.Lock()
	g.streams[info.SSRC] = stream
	g.mu.Unlock()

	return stream
}

func (g *NackGenerator) UnbindRemoteStream(info *StreamInfo) {
	g.mu.Lock()
	delete(g.streams, info.SSRC)
	g.mu.Unlock()
}

func (g *NackGenerator) Close() error {
	g.closeOnce.Do(func() { close(g.closeCh) })
	g.wg.Wait()
	return nil
}

// nackGenStream tracks sequence-number gaps for a single remote SSRC.
type nackGenStream struct {
	parent RTPReader
	ssrc   uint32

	mu      sync.Mutex
	started bool
	highest uint16
	missing map[uint16]int // seq -> number of times NACKed so far
}

func newNackGenStream(ssrc uint32, reader RTPReader) *nackGenStream {
	return &nackGenStream{
		parent:  reader,
		ssrc:    ssrc,
		missing: make(map[uint16]int),
	}
}

func (s *nackGenStream) Read(pkt *Packet, attrs Attributes) (int, error) {
	n, err := s.parent.Read(pkt, attrs)
	if err != nil {
		return n, err
	}

	s.mu.Lock()
	seq := pkt.Header.SequenceNumber
	if !s.started {
		s.started = true
		s.highest = seq
	} else {
		delete(s.missing, seq)

		diff := int32(seq) - int32(s.highest)
		if diff > 0 {
			for i := s.highest + 1; i != seq; i++ {
				s.missing[i] = 0
			}
			s.highest = seq
		}
	}
	s.mu.Unlock()

	return n, nil
}

func (s *nackGenStream) buildNack(maxRetries int) (rtcp.TransportLayerNack, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.missing) == 0 {
		return rtcp.TransportLayerNack{}, false
	}

	var seqs []uint16
	for seq, tries := range s.missing {
		if tries >= maxRetries {
			delete(s.missing, seq)
			continue
		}
		s.missing[seq] = tries + 1
		seqs = append(seqs, seq)
	}
	if len(seqs) == 0 {
		return rtcp.TransportLayerNack{}, false
	}

	return rtcp.TransportLayerNack{
		Source: s.ssrc,
		Nacks:  rtcp.NackPairsFromSequenceNumbers(seqs),
	}, true
}

// NackResponderOptions configures a NackResponder.
type NackResponderOptions struct {
	// BufferSize is the number of most-recently-sent packets retained per
	// local stream for retransmission. Defaults to 256.
	BufferSize int
}

// NackResponder buffers recently sent RTP packets per local stream and
// retransmits any that a peer's TransportLayerNack reports missing.
// Grounded on RFC 4585 §6.2.1; the send-buffer itself has no counterpart in
// the reference source, since rtcp-based retransmission wasn't modeled
// there, but is called for directly by the interceptor pipeline's spec text.
type NackResponder struct {
	NoOp

	bufferSize int

	mu      sync.Mutex
	streams map[uint32]*nackRespStream
}

// NewNackResponder creates a NackResponder interceptor.
func NewNackResponder(opts NackResponderOptions) *NackResponder {
	if opts.BufferSize <= 0 {
		opts.BufferSize = 256
	}
	return &NackResponder{
		bufferSize: opts.BufferSize,
		streams:    make(map[uint32]*nackRespStream),
	}
}

func (r *NackResponder) BindRTCPReader(reader RTCPReader) RTCPReader {
	return RTCPReaderFunc(func(buf []byte, attrs Attributes) (int, Attributes, error) {
		n, attrs, err := reader.Read(buf, attrs)
		if err != nil {
			return n, attrs, err
		}

		var compound rtcp.CompoundPacket
		if err := compound.Unmarshal(buf[:n]); err != nil {
			return n, attrs, nil
		}

		for _, p := range compound {
			if nack, ok := p.(*rtcp.TransportLayerNack); ok {
				r.mu.Lock()
				stream := r.streams[nack.Source]
				r.mu.Unlock()
				if stream != nil {
					for _, pair := range nack.Nacks {
						for _, seq := range pair.PacketList() {
							stream.retransmit(seq)
						}
					}
				}
			}
		}

		return n, attrs, nil
	})
}

func (r *NackResponder) BindLocalStream(info *StreamInfo, writer RTPWriter) RTPWriter {
	stream := newNackRespStream(info.SSRC, writer, r.bufferSize)

	r.mu.Lock()
	r.streams[info.SSRC] = stream
	r.mu.Unlock()

	return stream
}

func (r *NackResponder) UnbindLocalStream(info *StreamInfo) {
	r.mu.Lock()
	delete(r.streams, info.SSRC)
	r.mu.Unlock()
}

// nackRespStream buffers sent packets for one local SSRC, keyed by sequence
// number modulo the buffer size.
type nackRespStream struct {
	parent RTPWriter

	mu     sync.Mutex
	buffer []*Packet
}

func newNackRespStream(ssrc uint32, writer RTPWriter, size int) *nackRespStream {
	return &nackRespStream{
		parent: writer,
		buffer: make([]*Packet, size),
	}
}

func (s *nackRespStream) Write(pkt *Packet, attrs Attributes) (int, error) {
	n, err := s.parent.Write(pkt, attrs)
	if err != nil {
		return n, err
	}

	cp := &Packet{Header: pkt.Header, Payload: append([]byte(nil), pkt.Payload...)}

	s.mu.Lock()
	s.buffer[int(pkt.Header.SequenceNumber)%len(s.buffer)] = cp
	s.mu.Unlock()

	return n, nil
}

func (s *nackRespStream) retransmit(seq uint16) {
	s.mu.Lock()
	pkt := s.buffer[int(seq)%len(s.buffer)]
	s.mu.Unlock()

	if pkt == nil || pkt.Header.SequenceNumber != seq {
		return
	}
	if _, err := s.parent.Write(pkt, nil); err != nil {
		log.Warn("NackResponder: failed to retransmit seq %d: %s", seq, err)
	}
}
