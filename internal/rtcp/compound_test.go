package rtcp

import (
	"reflect"
	"testing"
)

func TestCompoundPacketRoundTrip(t *testing.T) {
	c := CompoundPacket{
		&SenderReport{SSRC: 1, Reports: []ReceptionReport{{SSRC: 2}}},
		&SourceDescription{Chunks: []SourceDescriptionChunk{
			{Source: 1, Items: []SourceDescriptionItem{{Type: SDESCNAME, Text: "alice"}}},
		}},
		&Goodbye{Sources: []uint32{1}},
	}

	data, err := c.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded CompoundPacket
	if err := decoded.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(decoded, c) {
		t.Fatalf("round trip: got %#v, want %#v", decoded, c)
	}
	if err := decoded.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestCompoundPacketValidateRequiresLeadingReport(t *testing.T) {
	c := CompoundPacket{&Goodbye{Sources: []uint32{1}}}
	if err := c.Validate(); err != errMissingCompoundHeader {
		t.Fatalf("Validate: err = %v, want %v", err, errMissingCompoundHeader)
	}
}

func TestCompoundPacketValidateGoodbyeMustBeLast(t *testing.T) {
	c := CompoundPacket{
		&ReceiverReport{SSRC: 1},
		&Goodbye{Sources: []uint32{1}},
		&SourceDescription{Chunks: []SourceDescriptionChunk{{Source: 1}}},
	}
	if err := c.Validate(); err != errGoodbyeNotLast {
		t.Fatalf("Validate: err = %v, want %v", err, errGoodbyeNotLast)
	}
}
