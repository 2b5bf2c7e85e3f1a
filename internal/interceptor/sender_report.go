package interceptor

import (
	"sync"
	"time"

	"github.com/lanikai/alohartc/internal/rtcp"
)

// ntpEpochOffset is the number of seconds between the NTP epoch (1900-01-01)
// and the Unix epoch (1970-01-01). RFC 3550 §4.
const ntpEpochOffset = 2208988800

// unix2ntp converts a wall-clock time to a 64-bit NTP timestamp: the
// integer part of the seconds since the NTP epoch in the high 32 bits, the
// fractional part in the low 32 bits.
func unix2ntp(t time.Time) uint64 {
	secs := uint64(t.Unix()+ntpEpochOffset) << 32
	frac := uint64(t.Nanosecond()) << 32 / 1e9
	return secs | frac
}

// SenderReportOptions configures a SenderReport interceptor.
type SenderReportOptions struct {
	// Interval between generated sender reports. Defaults to 1s.
	Interval time.Duration

	// Now returns the current time. Overridable for tests.
	Now func() time.Time
}

// SenderReport generates RTCP sender reports for every local stream it is
// bound to, counting packets and octets as RTP packets are written and
// sending a report on the RTCP writer once per interval. Grounded on
// report/sender/sender_test.rs (packet/octet counter wrap/saturation
// semantics) since the sender-side mod.rs was not retained in the reference
// source; the Interceptor shape mirrors ReceiverReport's.
type SenderReport struct {
	NoOp

	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	streams map[uint32]*senderStream

	closeCh   chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewSenderReport creates a SenderReport interceptor.
func NewSenderReport(opts SenderReportOptions) *SenderReport {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &SenderReport{
		interval: opts.Interval,
		now:      opts.Now,
		streams:  make(map[uint32]*senderStream),
		closeCh:  make(chan struct{}),
	}
}

func (sr *SenderReport) BindRTCPWriter(writer RTCPWriter) RTCPWriter {
	sr.wg.Add(1)
	go sr.run(writer)
	return writer
}

func (sr *SenderReport) run(writer RTCPWriter) {
	defer sr.wg.Done()

	ticker := time.NewTicker(sr.interval)
	defer ticker.Stop()

	for {
		select {
		case <-sr.closeCh:
			return
		case <-ticker.C:
			now := sr.now()
			sr.mu.Lock()
			streams := make([]*senderStream, 0, len(sr.streams))
			for _, s := range sr.streams {
				streams = append(streams, s)
			}
			sr.mu.Unlock()

			for _, s := range streams {
				report := s.generateReport(now)
				if _, err := writer.Write([]rtcp.Packet{&report}, nil); err != nil {
					log.Warn("SenderReport: failed to send report: %s", err)
				}
			}
		}
	}
}

func (sr *SenderReport) BindLocalStream(info *StreamInfo, writer RTPWriter) RTPWriter {
	stream := newSenderStream(info.SSRC, writer)

	sr.mu.Lock()
	sr.streams[info.SSRC] = stream
	sr.mu.Unlock()

	return stream
}

func (sr *SenderReport) UnbindLocalStream(info *StreamInfo) {
	sr.mu.Lock()
	delete(sr.streams, info.SSRC)
	sr.mu.Unlock()
}

func (sr *SenderReport) Close() error {
	sr.closeOnce.Do(func() { close(sr.closeCh) })
	sr.wg.Wait()
	return nil
}

// senderCounters tracks packet and octet counts the way RFC 3550 §6.4.1
// requires: packet count wraps modulo 2^32 (it's meant to roll over on very
// long sessions), octet count saturates at 2^32-1 (a sender is not expected
// to report a wrapped byte count, since that would look like a count reset).
type senderCounters struct {
	packets uint32
	octets  uint32
}

func (c *senderCounters) incrementPackets() {
	c.packets++
}

func (c *senderCounters) countOctets(n int) {
	remaining := uint32(0xFFFFFFFF) - c.octets
	if uint64(n) > uint64(remaining) {
		c.octets = 0xFFFFFFFF
	} else {
		c.octets += uint32(n)
	}
}

func (c *senderCounters) packetCount() uint32 { return c.packets }
func (c *senderCounters) octetCount() uint32  { return c.octets }

// senderStream wraps a local stream's RTPWriter to count outgoing packets
// and track the most recent RTP timestamp, so SenderReport can report them.
type senderStream struct {
	parent RTPWriter
	ssrc   uint32

	mu        sync.Mutex
	counters  senderCounters
	lastRTP   uint32
	haveLast  bool
}

func newSenderStream(ssrc uint32, writer RTPWriter) *senderStream {
	return &senderStream{parent: writer, ssrc: ssrc}
}

func (s *senderStream) Write(pkt *Packet, attrs Attributes) (int, error) {
	n, err := s.parent.Write(pkt, attrs)
	if err != nil {
		return n, err
	}

	s.mu.Lock()
	s.counters.incrementPackets()
	s.counters.countOctets(len(pkt.Payload))
	s.lastRTP = pkt.Header.Timestamp
	s.haveLast = true
	s.mu.Unlock()

	return n, nil
}

func (s *senderStream) generateReport(now time.Time) rtcp.SenderReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	rtpTime := s.lastRTP
	if !s.haveLast {
		// No RTP sent yet; report the sentinel RTP timestamp used by
		// implementations that haven't established a clock mapping.
		rtpTime = 0xFFFFFFFF
	}

	return rtcp.SenderReport{
		SSRC:        s.ssrc,
		NTPTime:     unix2ntp(now),
		RTPTime:     rtpTime,
		PacketCount: s.counters.packetCount(),
		OctetCount:  s.counters.octetCount(),
	}
}
