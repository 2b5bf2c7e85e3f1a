package rtcp

import (
	"reflect"
	"testing"
)

func TestTransportLayerCCRoundTrip(t *testing.T) {
	for _, test := range []struct {
		Name   string
		Deltas []RecvDelta
	}{
		{
			Name: "all small deltas",
			Deltas: []RecvDelta{
				{Status: StatusReceivedSmall, Delta: 4},
				{Status: StatusReceivedSmall, Delta: 8},
				{Status: StatusNotReceived},
				{Status: StatusReceivedSmall, Delta: 12},
			},
		},
		{
			Name: "mixed large and small",
			Deltas: []RecvDelta{
				{Status: StatusReceivedLarge, Delta: -300},
				{Status: StatusNotReceived},
				{Status: StatusReceivedSmall, Delta: 2},
				{Status: StatusReceivedLarge, Delta: 1000},
			},
		},
		{
			Name: "trailing gap trimmed",
			Deltas: []RecvDelta{
				{Status: StatusReceivedSmall, Delta: 1},
				{Status: StatusNotReceived},
				{Status: StatusNotReceived},
			},
		},
	} {
		twcc := TransportLayerCC{
			Sender:              1,
			Source:              2,
			BaseSequenceNumber:  1000,
			ReferenceTime:       77,
			FeedbackPacketCount: 3,
			Deltas:              test.Deltas,
		}

		data, err := twcc.Marshal()
		if err != nil {
			t.Fatalf("%q Marshal: %v", test.Name, err)
		}
		if len(data)%4 != 0 {
			t.Fatalf("%q Marshal: length %d not a multiple of 4", test.Name, len(data))
		}

		var decoded TransportLayerCC
		if err := decoded.Unmarshal(data); err != nil {
			t.Fatalf("%q Unmarshal: %v", test.Name, err)
		}

		want := trimTrailingNotReceived(test.Deltas)
		for i := range want {
			want[i].SequenceNumber = twcc.BaseSequenceNumber + uint16(i)
		}
		if !reflect.DeepEqual(decoded.Deltas, want) {
			t.Fatalf("%q round trip: got %#v, want %#v", test.Name, decoded.Deltas, want)
		}
		if decoded.Sender != twcc.Sender || decoded.Source != twcc.Source || decoded.BaseSequenceNumber != twcc.BaseSequenceNumber {
			t.Fatalf("%q header fields mismatch: got %#v", test.Name, decoded)
		}
	}
}
