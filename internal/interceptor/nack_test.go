package interceptor

import (
	"testing"

	"github.com/lanikai/alohartc/internal/rtcp"
	"github.com/stretchr/testify/assert"
)

func TestNackGenStreamDetectsGap(t *testing.T) {
	raw := RTPReaderFunc(func(pkt *Packet, attrs Attributes) (int, error) { return 0, nil })
	s := newNackGenStream(0x1111, raw)

	for _, seq := range []uint16{10, 11, 14} {
		s.Read(&Packet{Header: Header{SequenceNumber: seq}}, nil)
	}

	nack, ok := s.buildNack(3)
	assert.True(t, ok)
	assert.Equal(t, uint32(0x1111), nack.Source)

	var missing []uint16
	for _, pair := range nack.Nacks {
		missing = append(missing, pair.PacketList()...)
	}
	assert.ElementsMatch(t, []uint16{12, 13}, missing)
}

func TestNackGenStreamRecoversOnLateArrival(t *testing.T) {
	raw := RTPReaderFunc(func(pkt *Packet, attrs Attributes) (int, error) { return 0, nil })
	s := newNackGenStream(0x2222, raw)

	for _, seq := range []uint16{0, 1, 3} {
		s.Read(&Packet{Header: Header{SequenceNumber: seq}}, nil)
	}
	// Sequence 2 arrives late, out of order.
	s.Read(&Packet{Header: Header{SequenceNumber: 2}}, nil)

	_, ok := s.buildNack(3)
	assert.False(t, ok)
}

func TestNackGenStreamGivesUpAfterMaxRetries(t *testing.T) {
	raw := RTPReaderFunc(func(pkt *Packet, attrs Attributes) (int, error) { return 0, nil })
	s := newNackGenStream(0x3333, raw)

	s.Read(&Packet{Header: Header{SequenceNumber: 0}}, nil)
	s.Read(&Packet{Header: Header{SequenceNumber: 2}}, nil)

	for i := 0; i < 2; i++ {
		_, ok := s.buildNack(2)
		assert.True(t, ok)
	}
	// Third attempt exceeds MaxRetries=2, so the entry is dropped.
	_, ok := s.buildNack(2)
	assert.False(t, ok)
}

func TestNackRespStreamRetransmitsBufferedPacket(t *testing.T) {
	var sent []uint16
	raw := RTPWriterFunc(func(pkt *Packet, attrs Attributes) (int, error) {
		sent = append(sent, pkt.Header.SequenceNumber)
		return 0, nil
	})
	s := newNackRespStream(0x4444, raw, 16)

	_, err := s.Write(&Packet{Header: Header{SequenceNumber: 7}}, nil)
	assert.NoError(t, err)

	s.retransmit(7)
	assert.Equal(t, []uint16{7, 7}, sent)
}

func TestNackRespStreamIgnoresUnknownSequence(t *testing.T) {
	var sent []uint16
	raw := RTPWriterFunc(func(pkt *Packet, attrs Attributes) (int, error) {
		sent = append(sent, pkt.Header.SequenceNumber)
		return 0, nil
	})
	s := newNackRespStream(0x5555, raw, 16)

	s.retransmit(99)
	assert.Empty(t, sent)
}

func TestNackPairsRoundTripThroughRTCP(t *testing.T) {
	pairs := rtcp.NackPairsFromSequenceNumbers([]uint16{5, 6, 20})
	nack := rtcp.TransportLayerNack{Source: 1, Nacks: pairs}

	buf, err := nack.Marshal()
	assert.NoError(t, err)

	var decoded rtcp.TransportLayerNack
	assert.NoError(t, decoded.Unmarshal(buf))

	var seqs []uint16
	for _, p := range decoded.Nacks {
		seqs = append(seqs, p.PacketList()...)
	}
	assert.ElementsMatch(t, []uint16{5, 6, 20}, seqs)
}
