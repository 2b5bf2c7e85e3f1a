package rtcp

import (
	"reflect"
	"testing"
)

func TestExtendedReportVoIPMetricsRoundTrip(t *testing.T) {
	m := VoIPMetricsBlock{
		SSRC:                1234,
		LossRate:             5,
		DiscardRate:          6,
		RoundTripDelay:       200,
		EndSystemDelay:       50,
		RFactor:              93,
		MOSLQ:                40,
		MOSCQ:                42,
		JitterBufferNominal:  20,
		JitterBufferMaximum:  40,
		JitterBufferAbsMax:   60,
	}
	block := m.Marshal()

	xr := ExtendedReport{SSRC: 1, Blocks: []XRBlock{block}}
	data, err := xr.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded ExtendedReport
	if err := decoded.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.SSRC != xr.SSRC || len(decoded.Blocks) != 1 {
		t.Fatalf("round trip mismatch: got %#v", decoded)
	}

	decodedMetrics, err := UnmarshalVoIPMetricsBlock(decoded.Blocks[0])
	if err != nil {
		t.Fatalf("UnmarshalVoIPMetricsBlock: %v", err)
	}
	if !reflect.DeepEqual(decodedMetrics, m) {
		t.Fatalf("VoIP metrics round trip: got %#v, want %#v", decodedMetrics, m)
	}
}

func TestExtendedReportUnknownBlockPreserved(t *testing.T) {
	xr := ExtendedReport{
		SSRC: 1,
		Blocks: []XRBlock{
			{Type: XRBlockType(99), TypeSpecific: 3, Body: []byte{1, 2, 3, 4}},
		},
	}
	data, err := xr.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded ExtendedReport
	if err := decoded.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(decoded, xr) {
		t.Fatalf("round trip: got %#v, want %#v", decoded, xr)
	}
}
