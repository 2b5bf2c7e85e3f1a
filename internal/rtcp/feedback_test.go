package rtcp

import (
	"reflect"
	"testing"
)

func TestPictureLossIndicationRoundTrip(t *testing.T) {
	p := PictureLossIndication{Sender: 1, Source: 2}
	data, err := p.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded PictureLossIndication
	if err := decoded.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != p {
		t.Fatalf("round trip: got %#v, want %#v", decoded, p)
	}
}

func TestFullIntraRequestRoundTrip(t *testing.T) {
	f := FullIntraRequest{
		Sender: 1,
		Source: 2,
		Entries: []FIREntry{
			{SSRC: 2, SequenceNumber: 1},
			{SSRC: 3, SequenceNumber: 7},
		},
	}
	data, err := f.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded FullIntraRequest
	if err := decoded.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(decoded, f) {
		t.Fatalf("round trip: got %#v, want %#v", decoded, f)
	}
}

func TestRapidResynchronizationRequestRoundTrip(t *testing.T) {
	r := RapidResynchronizationRequest{Sender: 5, Source: 6}
	data, err := r.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded RapidResynchronizationRequest
	if err := decoded.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != r {
		t.Fatalf("round trip: got %#v, want %#v", decoded, r)
	}
}

func TestReceiverEstimatedMaximumBitrateRoundTrip(t *testing.T) {
	r := ReceiverEstimatedMaximumBitrate{
		Sender:  1,
		SSRCs:   []uint32{10, 20},
		Bitrate: 2500000,
	}
	data, err := r.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded ReceiverEstimatedMaximumBitrate
	if err := decoded.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Sender != r.Sender || !reflect.DeepEqual(decoded.SSRCs, r.SSRCs) {
		t.Fatalf("round trip: got %#v, want %#v", decoded, r)
	}
	// Mantissa/exponent encoding is lossy at large magnitudes; verify the
	// decoded estimate is within the representable precision.
	diff := decoded.Bitrate - r.Bitrate
	if diff < 0 {
		diff = -diff
	}
	if diff > r.Bitrate*0.001 {
		t.Fatalf("decoded bitrate %v too far from %v", decoded.Bitrate, r.Bitrate)
	}
}
