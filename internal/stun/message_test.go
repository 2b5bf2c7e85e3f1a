package stun

import (
	"net"
	"testing"
)

func TestBindingRequestRoundTrip(t *testing.T) {
	msg := New(ClassRequest, BindingMethod, "")
	msg.AddPriority(12345)
	msg.Add(AttrUseCandidate, nil)
	msg.Add(AttrIceControlling, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	msg.AddMessageIntegrity("remote-pwd")
	msg.AddFingerprint()

	raw := msg.Bytes()

	decoded, err := Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if decoded == nil {
		t.Fatal("Parse returned nil for a valid message")
	}
	if decoded.Class != ClassRequest || decoded.Method != BindingMethod {
		t.Fatalf("class/method = %d/%d, want %d/%d", decoded.Class, decoded.Method, ClassRequest, BindingMethod)
	}
	if decoded.TransactionID != msg.TransactionID {
		t.Fatal("transaction id mismatch")
	}
	if decoded.Priority() != 12345 {
		t.Fatalf("priority = %d, want 12345", decoded.Priority())
	}
	if !decoded.HasUseCandidate() {
		t.Fatal("expected USE-CANDIDATE")
	}
	if !CheckMessageIntegrity(raw, decoded, "remote-pwd") {
		t.Fatal("message integrity check failed")
	}
	if CheckMessageIntegrity(raw, decoded, "wrong-pwd") {
		t.Fatal("message integrity check should have failed with wrong password")
	}
}

func TestXorMappedAddressRoundTrip(t *testing.T) {
	msg := New(ClassSuccessResponse, BindingMethod, "")
	addr := &net.UDPAddr{IP: net.ParseIP("203.0.113.5").To4(), Port: 54321}
	msg.SetXorMappedAddress(addr)

	raw := msg.Bytes()
	decoded, err := Parse(raw)
	if err != nil {
		t.Fatal(err)
	}

	got := decoded.MappedAddress()
	if got == nil {
		t.Fatal("expected a mapped address")
	}
	if got.Port != addr.Port || !got.IP.Equal(addr.IP) {
		t.Fatalf("mapped address = %v, want %v", got, addr)
	}
}

func TestParseRejectsNonSTUN(t *testing.T) {
	msg, err := Parse([]byte("not a stun message at all"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg != nil {
		t.Fatal("expected nil for non-STUN data")
	}
}

func TestParseTruncatedHeader(t *testing.T) {
	msg, err := Parse([]byte{0x00, 0x01})
	if msg != nil || err != nil {
		t.Fatalf("got (%v, %v), want (nil, nil) for a too-short buffer", msg, err)
	}
}

func TestPad4(t *testing.T) {
	vals := []uint16{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	answers := []int{0, 3, 2, 1, 0, 3, 2, 1, 0, 3}
	for i, val := range vals {
		if pad4(val) != answers[i] {
			t.Errorf("pad4(%d) == %d != %d", val, pad4(val), answers[i])
		}
	}
}
