package rtcp

import (
	"reflect"
	"testing"
)

func TestSenderReportRoundTrip(t *testing.T) {
	for _, test := range []struct {
		Name      string
		Report    SenderReport
		WantError error
	}{
		{
			Name: "no reports",
			Report: SenderReport{
				SSRC:        1,
				NTPTime:     2,
				RTPTime:     3,
				PacketCount: 4,
				OctetCount:  5,
			},
		},
		{
			Name: "one report",
			Report: SenderReport{
				SSRC: 1,
				Reports: []ReceptionReport{
					{SSRC: 2, FractionLost: 10, TotalLost: 20, LastSequenceNumber: 30, Jitter: 40, LastSenderReport: 50, Delay: 60},
				},
			},
		},
	} {
		data, err := test.Report.Marshal()
		if got, want := err, test.WantError; got != want {
			t.Fatalf("Marshal %q: err = %v, want %v", test.Name, got, want)
		}
		if err != nil {
			continue
		}

		var decoded SenderReport
		if err := decoded.Unmarshal(data); err != nil {
			t.Fatalf("Unmarshal %q: %v", test.Name, err)
		}
		if got, want := decoded, test.Report; !reflect.DeepEqual(got, want) {
			t.Fatalf("%q round trip: got %#v, want %#v", test.Name, got, want)
		}
	}
}

func TestSenderReportDestinationSSRC(t *testing.T) {
	r := SenderReport{
		SSRC: 1,
		Reports: []ReceptionReport{
			{SSRC: 2},
			{SSRC: 3},
		},
	}
	got := r.DestinationSSRC()
	want := []uint32{1, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DestinationSSRC: got %v, want %v", got, want)
	}
}
