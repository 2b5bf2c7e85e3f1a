package interceptor

import (
	"math/rand"
	"sync"
	"time"

	"github.com/lanikai/alohartc/internal/rtcp"
)

// ReceiverReportOptions configures a ReceiverReport interceptor.
type ReceiverReportOptions struct {
	// Interval between generated receiver reports. Defaults to 1s, the
	// RTCP minimum interval commonly used for point-to-point sessions.
	Interval time.Duration

	// Now returns the current time. Overridable for tests.
	Now func() time.Time
}

// ReceiverReport generates RTCP receiver reports for every remote stream it
// is bound to, tracking loss and jitter as RTP packets are read and sending
// a report on the RTCP writer once per interval. Grounded on
// report/receiver/mod.rs and report/receiver/receiver_stream.rs.
type ReceiverReport struct {
	NoOp

	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	streams map[uint32]*receiverStream

	parent RTCPReader

	closeCh chan struct{}
	closeOnce sync.Once
	wg      sync.WaitGroup
}

// NewReceiverReport creates a ReceiverReport interceptor.
func NewReceiverReport(opts ReceiverReportOptions) *ReceiverReport {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ReceiverReport{
		interval: opts.Interval,
		now:      opts.Now,
		streams:  make(map[uint32]*receiverStream),
		closeCh:  make(chan struct{}),
	}
}

func (rr *ReceiverReport) BindRTCPReader(reader RTCPReader) RTCPReader {
	rr.parent = reader
	return RTCPReaderFunc(rr.readRTCP)
}

// readRTCP observes sender reports on the way through, so that each
// receiver stream can report delay-since-last-SR accurately.
func (rr *ReceiverReport) readRTCP(buf []byte, attrs Attributes) (int, Attributes, error) {
	n, attrs, err := rr.parent.Read(buf, attrs)
	if err != nil {
		return n, attrs, err
	}

	var compound rtcp.CompoundPacket
	if err := compound.Unmarshal(buf[:n]); err != nil {
		// Not a parse failure worth surfacing to the caller; the raw bytes
		// are still passed through.
		return n, attrs, nil
	}

	now := rr.now()
	for _, p := range compound {
		if sr, ok := p.(*rtcp.SenderReport); ok {
			rr.mu.Lock()
			stream := rr.streams[sr.SSRC]
			rr.mu.Unlock()
			if stream != nil {
				stream.processSenderReport(now, sr)
			}
		}
	}

	return n, attrs, nil
}

func (rr *ReceiverReport) BindRTCPWriter(writer RTCPWriter) RTCPWriter {
	rr.wg.Add(1)
	go rr.run(writer)
	return writer
}

func (rr *ReceiverReport) run(writer RTCPWriter) {
	defer rr.wg.Done()

	ticker := time.NewTicker(rr.interval)
	defer ticker.Stop()

	for {
		select {
		case <-rr.closeCh:
			return
		case <-ticker.C:
			now := rr.now()
			rr.mu.Lock()
			streams := make([]*receiverStream, 0, len(rr.streams))
			for _, s := range rr.streams {
				streams = append(streams, s)
			}
			rr.mu.Unlock()

			for _, s := range streams {
				report := s.generateReport(now)
				if _, err := writer.Write([]rtcp.Packet{&report}, nil); err != nil {
					log.Warn("ReceiverReport: failed to send report: %s", err)
				}
			}
		}
	}
}

func (rr *ReceiverReport) BindRemoteStream(info *StreamInfo, reader RTPReader) RTPReader {
	stream := newReceiverStream(info.SSRC, info.ClockRate, reader, rr.now)

	rr.mu.Lock()
	rr.streams[info.SSRC] = stream
	rr.mu.Unlock()

	return stream
}

func (rr *ReceiverReport) UnbindRemoteStream(info *StreamInfo) {
	rr.mu.Lock()
	delete(rr.streams, info.SSRC)
	rr.mu.Unlock()
}

func (rr *ReceiverReport) Close() error {
	rr.closeOnce.Do(func() { close(rr.closeCh) })
	rr.wg.Wait()
	return nil
}

// receiverStream tracks per-SSRC loss and jitter state for ReceiverReport,
// and wraps the remote stream's RTPReader to update that state on every read.
// Grounded directly on receiver_stream.rs's ReceiverStreamInternal.
type receiverStream struct {
	parent RTPReader
	now    func() time.Time

	ssrc         uint32
	receiverSSRC uint32
	clockRate    float64

	mu sync.Mutex

	// Bitmap of received sequence numbers, indexed modulo len(received)*64.
	received [128]uint64

	started           bool
	seqNumCycles      uint16
	lastSeqNum        int32
	lastReportSeqNum  int32
	lastRTPTimeRTP    uint32
	lastRTPTimeLocal  time.Time
	jitter            float64
	lastSenderReport     uint32
	lastSenderReportTime time.Time
	totalLost            uint32
}

func newReceiverStream(ssrc, clockRate uint32, reader RTPReader, now func() time.Time) *receiverStream {
	return &receiverStream{
		parent:       reader,
		now:          now,
		ssrc:         ssrc,
		receiverSSRC: rand.Uint32(),
		clockRate:    float64(clockRate),
	}
}

func (s *receiverStream) Read(pkt *Packet, attrs Attributes) (int, error) {
	n, err := s.parent.Read(pkt, attrs)
	if err != nil {
		return n, err
	}
	s.processRTP(s.now(), pkt)
	return n, nil
}

func (s *receiverStream) setReceived(seq uint16) {
	pos := int(seq) % (len(s.received) * 64)
	s.received[pos/64] |= 1 << uint(pos%64)
}

func (s *receiverStream) delReceived(seq uint16) {
	pos := int(seq) % (len(s.received) * 64)
	s.received[pos/64] &^= 1 << uint(pos%64)
}

func (s *receiverStream) getReceived(seq uint16) bool {
	pos := int(seq) % (len(s.received) * 64)
	return s.received[pos/64]&(1<<uint(pos%64)) != 0
}

func (s *receiverStream) processRTP(now time.Time, pkt *Packet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := pkt.Header.SequenceNumber
	if !s.started {
		s.started = true
		s.setReceived(seq)
		s.lastSeqNum = int32(seq)
		s.lastReportSeqNum = int32(seq) - 1
	} else {
		s.setReceived(seq)

		diff := int32(seq) - s.lastSeqNum
		if diff < -0x0FFF || diff > 0 {
			if diff < -0x0FFF {
				s.seqNumCycles++
			}
			for i := s.lastSeqNum + 1; i < int32(seq); i++ {
				s.delReceived(uint16(i))
			}
			s.lastSeqNum = int32(seq)
		}

		// Interarrival jitter estimate. RFC 3550 §6.4.1.
		if !s.lastRTPTimeLocal.IsZero() {
			d := now.Sub(s.lastRTPTimeLocal).Seconds()*s.clockRate -
				(float64(pkt.Header.Timestamp) - float64(s.lastRTPTimeRTP))
			if d < 0 {
				d = -d
			}
			s.jitter += (d - s.jitter) / 16.0
		}
	}

	s.lastRTPTimeRTP = pkt.Header.Timestamp
	s.lastRTPTimeLocal = now
}

func (s *receiverStream) processSenderReport(now time.Time, sr *rtcp.SenderReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSenderReport = uint32(sr.NTPTime >> 16)
	s.lastSenderReportTime = now
}

func (s *receiverStream) generateReport(now time.Time) rtcp.ReceiverReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	totalSinceReport := uint16(s.lastSeqNum - s.lastReportSeqNum)
	var totalLostSinceReport uint32
	if s.lastSeqNum != s.lastReportSeqNum {
		for i := uint16(s.lastReportSeqNum + 1); i != uint16(s.lastSeqNum); i++ {
			if !s.getReceived(i) {
				totalLostSinceReport++
			}
		}
	}

	s.totalLost += totalLostSinceReport
	if totalLostSinceReport > 0xFFFFFF {
		totalLostSinceReport = 0xFFFFFF
	}
	if s.totalLost > 0xFFFFFF {
		s.totalLost = 0xFFFFFF
	}

	var fractionLost uint8
	if totalSinceReport > 0 {
		fractionLost = uint8((totalLostSinceReport * 256) / uint32(totalSinceReport))
	}

	var delay uint32
	if !s.lastSenderReportTime.IsZero() {
		delay = uint32(now.Sub(s.lastSenderReportTime).Seconds() * 65536.0)
	}

	report := rtcp.ReceiverReport{
		SSRC: s.receiverSSRC,
		Reports: []rtcp.ReceptionReport{{
			SSRC:               s.ssrc,
			LastSequenceNumber: uint32(s.seqNumCycles)<<16 | uint32(uint16(s.lastSeqNum)),
			LastSenderReport:   s.lastSenderReport,
			FractionLost:       fractionLost,
			TotalLost:          s.totalLost,
			Delay:              delay,
			Jitter:             uint32(s.jitter),
		}},
	}

	s.lastReportSeqNum = s.lastSeqNum
	return report
}
