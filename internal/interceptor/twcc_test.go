package interceptor

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTWCCSenderStampsIncreasingSequence(t *testing.T) {
	var written []*Packet
	raw := RTPWriterFunc(func(pkt *Packet, attrs Attributes) (int, error) {
		written = append(written, pkt)
		return 0, nil
	})

	s := NewTWCCSender()
	info := &StreamInfo{SSRC: 1, RTPHeaderExtensions: []RTPHeaderExtension{
		{URI: transportCCURI, ID: 3},
	}}
	writer := s.BindLocalStream(info, raw)

	for i := 0; i < 3; i++ {
		_, err := writer.Write(&Packet{}, nil)
		assert.NoError(t, err)
	}

	var seqs []uint16
	for _, pkt := range written {
		payload, ok := pkt.Header.Extension(3)
		assert.True(t, ok)
		seqs = append(seqs, binary.BigEndian.Uint16(payload))
	}
	assert.Equal(t, []uint16{1, 2, 3}, seqs)
}

func TestTWCCSenderPassthroughWhenNotNegotiated(t *testing.T) {
	raw := RTPWriterFunc(func(pkt *Packet, attrs Attributes) (int, error) { return 0, nil })
	s := NewTWCCSender()
	writer := s.BindLocalStream(&StreamInfo{SSRC: 1}, raw)

	pkt := &Packet{}
	_, err := writer.Write(pkt, nil)
	assert.NoError(t, err)
	assert.Empty(t, pkt.Header.Extensions)
}

func TestTWCCReceiverBuildsReportWithGap(t *testing.T) {
	r := NewTWCCReceiver(TWCCReceiverOptions{})
	r.mediaSSRC = 42

	base := time.Unix(5000, 0)
	r.record(100, base)
	r.record(102, base.Add(20*time.Millisecond))
	// 101 is never recorded: a gap.

	report, ok := r.buildReport()
	assert.True(t, ok)
	assert.Equal(t, uint16(100), report.BaseSequenceNumber)
	assert.Equal(t, uint32(42), report.Source)
	assert.Equal(t, 3, len(report.Deltas))

	statuses := make(map[uint16]uint8)
	for _, d := range report.Deltas {
		statuses[d.SequenceNumber] = uint8(d.Status)
	}
	assert.Equal(t, uint8(1), statuses[100]) // StatusReceivedSmall
	assert.Equal(t, uint8(0), statuses[101]) // StatusNotReceived
	assert.Equal(t, uint8(1), statuses[102]) // StatusReceivedSmall
}

func TestTWCCReceiverEmptyWhenNothingRecorded(t *testing.T) {
	r := NewTWCCReceiver(TWCCReceiverOptions{})
	_, ok := r.buildReport()
	assert.False(t, ok)
}
