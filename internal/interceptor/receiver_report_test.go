package interceptor

import (
	"testing"
	"time"

	"github.com/lanikai/alohartc/internal/rtcp"
	"github.com/stretchr/testify/assert"
)

func TestReceiverStreamNoLossNoJitter(t *testing.T) {
	base := time.Unix(1000, 0)
	now := base
	clockRate := uint32(90000)

	raw := RTPReaderFunc(func(pkt *Packet, attrs Attributes) (int, error) { return 0, nil })
	s := newReceiverStream(0xAAAA, clockRate, raw, func() time.Time { return now })

	// Five packets, 20ms apart, RTP timestamp advancing exactly in step with
	// the clock rate: jitter should stay at zero.
	for i := 0; i < 5; i++ {
		pkt := &Packet{Header: Header{
			SequenceNumber: uint16(i),
			Timestamp:      uint32(i) * (clockRate / 50),
		}}
		s.processRTP(now, pkt)
		now = now.Add(20 * time.Millisecond)
	}

	report := s.generateReport(now)
	assert.Equal(t, 1, len(report.Reports))
	rr := report.Reports[0]
	assert.Equal(t, uint8(0), rr.FractionLost)
	assert.Equal(t, uint32(0), rr.TotalLost)
	assert.Equal(t, uint32(0), rr.Jitter)
}

func TestReceiverStreamDetectsLoss(t *testing.T) {
	now := time.Unix(2000, 0)
	raw := RTPReaderFunc(func(pkt *Packet, attrs Attributes) (int, error) { return 0, nil })
	s := newReceiverStream(0xBBBB, 90000, raw, func() time.Time { return now })

	// Sequence numbers 0, 1, 4: two and three are missing.
	for _, seq := range []uint16{0, 1, 4} {
		s.processRTP(now, &Packet{Header: Header{SequenceNumber: seq}})
		now = now.Add(20 * time.Millisecond)
	}

	report := s.generateReport(now)
	rr := report.Reports[0]
	assert.Equal(t, uint32(2), rr.TotalLost)
	assert.True(t, rr.FractionLost > 0)
}

func TestReceiverStreamProcessSenderReportSetsLastSR(t *testing.T) {
	now := time.Unix(3000, 0)
	raw := RTPReaderFunc(func(pkt *Packet, attrs Attributes) (int, error) { return 0, nil })
	s := newReceiverStream(0xCCCC, 90000, raw, func() time.Time { return now })

	ntp := unix2ntp(now)
	s.processSenderReport(now, &rtcp.SenderReport{NTPTime: ntp})

	report := s.generateReport(now.Add(time.Second))
	rr := report.Reports[0]
	assert.Equal(t, uint32(ntp>>16), rr.LastSenderReport)
	assert.True(t, rr.Delay > 0)
}
