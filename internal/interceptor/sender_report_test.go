package interceptor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUnix2NTPKnownEpoch(t *testing.T) {
	// NTP epoch (1900-01-01) is exactly ntpEpochOffset seconds before the
	// Unix epoch, so converting the Unix epoch itself should produce that
	// offset in the integer half with a zero fractional half.
	got := unix2ntp(time.Unix(0, 0).UTC())
	assert.Equal(t, uint64(ntpEpochOffset)<<32, got)
}

func TestSenderStreamReportsSentinelBeforeFirstPacket(t *testing.T) {
	raw := RTPWriterFunc(func(pkt *Packet, attrs Attributes) (int, error) { return 0, nil })
	s := newSenderStream(0xDEAD, raw)

	report := s.generateReport(time.Unix(1000, 0))
	assert.Equal(t, uint32(0xFFFFFFFF), report.RTPTime)
	assert.Equal(t, uint32(0), report.PacketCount)
	assert.Equal(t, uint32(0), report.OctetCount)
}

func TestSenderStreamCountsPacketsAndOctets(t *testing.T) {
	raw := RTPWriterFunc(func(pkt *Packet, attrs Attributes) (int, error) { return 0, nil })
	s := newSenderStream(0xDEAD, raw)

	for i := 0; i < 3; i++ {
		_, err := s.Write(&Packet{
			Header:  Header{Timestamp: uint32(i) * 100},
			Payload: make([]byte, 50),
		}, nil)
		assert.NoError(t, err)
	}

	report := s.generateReport(time.Unix(1000, 0))
	assert.Equal(t, uint32(3), report.PacketCount)
	assert.Equal(t, uint32(150), report.OctetCount)
	assert.Equal(t, uint32(200), report.RTPTime)
}

func TestSenderCountersOctetSaturatesOnOverflow(t *testing.T) {
	var c senderCounters
	c.octets = 0xFFFFFFFE
	c.countOctets(5)
	assert.Equal(t, uint32(0xFFFFFFFF), c.octetCount())
}

func TestSenderCountersPacketWrapsModulo32(t *testing.T) {
	var c senderCounters
	c.packets = 0xFFFFFFFF
	c.incrementPackets()
	assert.Equal(t, uint32(0), c.packetCount())
}
