package rtcp

import (
	"reflect"
	"testing"
)

func TestSourceDescriptionRoundTrip(t *testing.T) {
	for _, test := range []struct {
		Name string
		SD   SourceDescription
	}{
		{
			Name: "single chunk, cname only",
			SD: SourceDescription{
				Chunks: []SourceDescriptionChunk{
					{Source: 1, Items: []SourceDescriptionItem{{Type: SDESCNAME, Text: "alice@example.com"}}},
				},
			},
		},
		{
			Name: "multiple chunks, multiple items",
			SD: SourceDescription{
				Chunks: []SourceDescriptionChunk{
					{Source: 1, Items: []SourceDescriptionItem{
						{Type: SDESCNAME, Text: "alice"},
						{Type: SDESTool, Text: "alohartc"},
					}},
					{Source: 2, Items: []SourceDescriptionItem{
						{Type: SDESCNAME, Text: "bob"},
					}},
				},
			},
		},
		{
			Name: "empty cname",
			SD: SourceDescription{
				Chunks: []SourceDescriptionChunk{
					{Source: 7, Items: []SourceDescriptionItem{{Type: SDESCNAME, Text: ""}}},
				},
			},
		},
	} {
		data, err := test.SD.Marshal()
		if err != nil {
			t.Fatalf("%q Marshal: %v", test.Name, err)
		}
		if len(data)%4 != 0 {
			t.Fatalf("%q Marshal: length %d not a multiple of 4", test.Name, len(data))
		}

		var decoded SourceDescription
		if err := decoded.Unmarshal(data); err != nil {
			t.Fatalf("%q Unmarshal: %v", test.Name, err)
		}
		if !reflect.DeepEqual(decoded, test.SD) {
			t.Fatalf("%q round trip: got %#v, want %#v", test.Name, decoded, test.SD)
		}
	}
}
