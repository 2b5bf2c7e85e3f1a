package mux

import "testing"

func TestMatchSTUN(t *testing.T) {
	stunHeader := []byte{0x00, 0x01, 0x00, 0x00, 0x21, 0x12, 0xA4, 0x42}
	if !MatchSTUN(stunHeader) {
		t.Fatal("expected STUN header to match")
	}

	notStun := []byte{0x80, 0x01, 0x00, 0x00, 0xde, 0xad, 0xbe, 0xef}
	if MatchSTUN(notStun) {
		t.Fatal("expected non-STUN header not to match")
	}
}

func TestMatchDTLSAndSRTP(t *testing.T) {
	dtls := []byte{22, 0xfe, 0xfd}
	if !MatchDTLS(dtls) {
		t.Fatal("expected DTLS handshake record to match")
	}

	rtp := []byte{0x80, 96}
	if !MatchSRTP(rtp) {
		t.Fatal("expected RTP payload type 96 to match SRTP")
	}
	if MatchSRTCP(rtp) {
		t.Fatal("RTP payload type 96 should not match SRTCP")
	}

	rtcp := []byte{0x80, 200}
	if !MatchSRTCP(rtcp) {
		t.Fatal("expected RTCP packet type 200 to match SRTCP")
	}
}
