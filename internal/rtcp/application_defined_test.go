package rtcp

import (
	"reflect"
	"testing"
)

func TestApplicationDefinedRoundTrip(t *testing.T) {
	a := ApplicationDefined{
		SubType: 3,
		Source:  42,
		Name:    "TEST",
		Data:    []byte{1, 2, 3, 4, 5, 6, 7, 8},
	}

	data, err := a.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded ApplicationDefined
	if err := decoded.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(decoded, a) {
		t.Fatalf("round trip: got %#v, want %#v", decoded, a)
	}
}

func TestApplicationDefinedBadName(t *testing.T) {
	a := ApplicationDefined{Name: "toolong"}
	if _, err := a.Marshal(); err != errWrongMessageID {
		t.Fatalf("Marshal: err = %v, want %v", err, errWrongMessageID)
	}
}
