package rtcp

import (
	"reflect"
	"testing"
)

func TestNackPairPacketList(t *testing.T) {
	n := NackPair{PacketID: 100, LostPackets: 0b101}
	got := n.PacketList()
	want := []uint16{100, 101, 103}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("PacketList: got %v, want %v", got, want)
	}
}

func TestNackPairsFromSequenceNumbers(t *testing.T) {
	seqs := []uint16{100, 101, 103, 200}
	pairs := NackPairsFromSequenceNumbers(seqs)

	var got []uint16
	for _, p := range pairs {
		got = append(got, p.PacketList()...)
	}
	if !reflect.DeepEqual(got, seqs) {
		t.Fatalf("round trip through NackPairs: got %v, want %v", got, seqs)
	}
}

func TestTransportLayerNackRoundTrip(t *testing.T) {
	n := TransportLayerNack{
		Sender: 1,
		Source: 2,
		Nacks:  []NackPair{{PacketID: 10, LostPackets: 0x3}, {PacketID: 50}},
	}

	data, err := n.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded TransportLayerNack
	if err := decoded.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(decoded, n) {
		t.Fatalf("round trip: got %#v, want %#v", decoded, n)
	}
}
