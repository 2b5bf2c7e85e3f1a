package srtp

import (
	"bytes"
	"testing"
)

func TestMarshalHeaderOmitsPayload(t *testing.T) {
	msg := &rtpMsg{
		marker:         true,
		payloadType:    100,
		sequenceNumber: 42,
		timestamp:      9999,
		ssrc:           0xdeadbeef,
		csrc:           []uint32{0x1, 0x2},
		payload:        []byte{0xff, 0xff, 0xff, 0xff},
	}

	header := msg.marshalHeader()
	if len(header) != 12+4*len(msg.csrc) {
		t.Fatalf("header length = %d, want %d", len(header), 12+4*len(msg.csrc))
	}

	var decoded rtpMsg
	offset, err := decoded.unmarshalHeader(header)
	if err != nil {
		t.Fatal(err)
	}
	if offset != len(header) {
		t.Fatalf("payload offset = %d, want %d", offset, len(header))
	}
	if decoded.ssrc != msg.ssrc || decoded.sequenceNumber != msg.sequenceNumber || len(decoded.csrc) != len(msg.csrc) {
		t.Fatalf("decoded header mismatch: %+v", decoded)
	}
	if decoded.payload != nil {
		t.Fatalf("expected no payload decoded from header, got %v", decoded.payload)
	}
}

func TestEncryptRTPWithCSRCRoundTrip(t *testing.T) {
	key := make([]byte, encryptKeyLength)
	salt := make([]byte, saltKeyLength)
	for i := range key {
		key[i] = byte(i * 3)
	}
	for i := range salt {
		salt[i] = byte(i * 7)
	}

	encCtx, err := NewContext(key, salt, ProfileAES128CMHMACSHA1_80)
	if err != nil {
		t.Fatal(err)
	}
	decCtx, err := NewContext(key, salt, ProfileAES128CMHMACSHA1_80)
	if err != nil {
		t.Fatal(err)
	}

	// EncryptRTP encrypts msg.payload in place, so keep the plaintext apart.
	plaintext := []byte("conference mixer payload")
	msg := &rtpMsg{
		marker:         true,
		payloadType:    96,
		sequenceNumber: 1234,
		timestamp:      55555,
		ssrc:           0x20180709,
		csrc:           []uint32{0x20180709, 0x20180709},
		payload:        append([]byte(nil), plaintext...),
	}

	out, err := encCtx.EncryptRTP(msg)
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := decCtx.DecryptRTP(out)
	if err != nil {
		t.Fatal(err)
	}

	if decoded.ssrc != msg.ssrc || decoded.sequenceNumber != msg.sequenceNumber {
		t.Fatalf("header mismatch: got %+v", decoded)
	}
	if len(decoded.csrc) != len(msg.csrc) {
		t.Fatalf("csrc count mismatch: got %d, want %d", len(decoded.csrc), len(msg.csrc))
	}
	if !bytes.Equal(decoded.payload, plaintext) {
		t.Fatalf("payload mismatch: got %q, want %q", decoded.payload, plaintext)
	}
}
