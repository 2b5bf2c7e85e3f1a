package rtcp

import (
	"reflect"
	"testing"
)

func TestReceiverReportRoundTrip(t *testing.T) {
	r := ReceiverReport{
		SSRC: 1,
		Reports: []ReceptionReport{
			{SSRC: 2, FractionLost: 10, TotalLost: 20, LastSequenceNumber: 30, Jitter: 40, LastSenderReport: 50, Delay: 60},
			{SSRC: 3},
		},
	}

	data, err := r.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded ReceiverReport
	if err := decoded.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(decoded, r) {
		t.Fatalf("round trip: got %#v, want %#v", decoded, r)
	}
}

func TestReceiverReportWrongType(t *testing.T) {
	sr := SenderReport{SSRC: 1}
	data, err := sr.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var rr ReceiverReport
	if err := rr.Unmarshal(data); err != errWrongType {
		t.Fatalf("Unmarshal: err = %v, want %v", err, errWrongType)
	}
}
