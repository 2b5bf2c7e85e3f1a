package rtcp

import (
	"reflect"
	"testing"
)

func TestGoodbyeRoundTrip(t *testing.T) {
	for _, test := range []struct {
		Name string
		BYE  Goodbye
	}{
		{Name: "no reason", BYE: Goodbye{Sources: []uint32{1, 2, 3}}},
		{Name: "with reason", BYE: Goodbye{Sources: []uint32{1}, Reason: "camera switched off"}},
		{Name: "no sources", BYE: Goodbye{}},
	} {
		data, err := test.BYE.Marshal()
		if err != nil {
			t.Fatalf("%q Marshal: %v", test.Name, err)
		}

		var decoded Goodbye
		if err := decoded.Unmarshal(data); err != nil {
			t.Fatalf("%q Unmarshal: %v", test.Name, err)
		}
		if !reflect.DeepEqual(decoded, test.BYE) {
			t.Fatalf("%q round trip: got %#v, want %#v", test.Name, decoded, test.BYE)
		}
	}
}

func TestGoodbyeReasonTooLong(t *testing.T) {
	b := Goodbye{Sources: []uint32{1}, Reason: string(make([]byte, 256))}
	if _, err := b.Marshal(); err != errReasonTooLong {
		t.Fatalf("Marshal: err = %v, want %v", err, errReasonTooLong)
	}
}
