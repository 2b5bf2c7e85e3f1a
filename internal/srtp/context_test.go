package srtp

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestEncrypt(t *testing.T) {
	testMasterKey, _ := hex.DecodeString("E1F97A0D3E018BE0D64FA32C06DE4139")
	testMasterSalt, _ := hex.DecodeString("0EC675AD498AFEEBB6960B3AABE6")

	encipherContext, err := CreateContext(testMasterKey, testMasterSalt)
	if err != nil {
		t.Fatal(err)
	}

	plaintext := []byte{
		0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07,
		0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f,
	}
	ciphertext := []byte{
		0x7c, 0x64, 0x06, 0x03, 0xe8, 0x1d, 0x44, 0x0d,
		0xf2, 0x3d, 0xdb, 0xe5, 0xb0, 0x7f, 0x88, 0x7a,
	}

	testMsg := &rtpMsg{
		payloadType:    1,
		timestamp:      2,
		marker:         false,
		csrc:           []uint32{},
		ssrc:           12345678,
		sequenceNumber: 1,
		payload:        append([]byte(nil), plaintext...),
	}

	out, err := encipherContext.EncryptRTP(testMsg)
	if err != nil {
		t.Fatal(err)
	}

	headerLen := 12
	if !bytes.Equal(out[headerLen:headerLen+len(ciphertext)], ciphertext) {
		t.Fatalf("ciphertext mismatch: got %x, want %x", out[headerLen:headerLen+len(ciphertext)], ciphertext)
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	testMasterKey, _ := hex.DecodeString("E1F97A0D3E018BE0D64FA32C06DE4139")
	testMasterSalt, _ := hex.DecodeString("0EC675AD498AFEEBB6960B3AABE6")

	encCtx, err := CreateContext(testMasterKey, testMasterSalt)
	if err != nil {
		t.Fatal(err)
	}
	decCtx, err := CreateContext(testMasterKey, testMasterSalt)
	if err != nil {
		t.Fatal(err)
	}

	plaintext := []byte("the quick brown fox jumps over the lazy dog")

	for _, seq := range []uint16{1, 2, 3, 65535, 0, 1} {
		msg := &rtpMsg{
			payloadType:    96,
			timestamp:      1000,
			ssrc:           0xdeadbeef,
			sequenceNumber: seq,
			payload:        append([]byte(nil), plaintext...),
		}

		out, err := encCtx.EncryptRTP(msg)
		if err != nil {
			t.Fatalf("seq %d: EncryptRTP: %v", seq, err)
		}

		decoded, err := decCtx.DecryptRTP(out)
		if err != nil {
			t.Fatalf("seq %d: DecryptRTP: %v", seq, err)
		}
		if !bytes.Equal(decoded.payload, plaintext) {
			t.Fatalf("seq %d: payload mismatch: got %q, want %q", seq, decoded.payload, plaintext)
		}
	}
}

func TestDecryptRejectsReplay(t *testing.T) {
	testMasterKey, _ := hex.DecodeString("E1F97A0D3E018BE0D64FA32C06DE4139")
	testMasterSalt, _ := hex.DecodeString("0EC675AD498AFEEBB6960B3AABE6")

	encCtx, _ := CreateContext(testMasterKey, testMasterSalt)
	decCtx, _ := CreateContext(testMasterKey, testMasterSalt)

	msg := &rtpMsg{ssrc: 1, sequenceNumber: 10, payload: []byte("hello")}
	out, err := encCtx.EncryptRTP(msg)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := decCtx.DecryptRTP(append([]byte(nil), out...)); err != nil {
		t.Fatalf("first decrypt: %v", err)
	}
	if _, err := decCtx.DecryptRTP(append([]byte(nil), out...)); err != errReplayed {
		t.Fatalf("replay decrypt: err = %v, want %v", err, errReplayed)
	}
}

func TestDecryptRejectsTampering(t *testing.T) {
	testMasterKey, _ := hex.DecodeString("E1F97A0D3E018BE0D64FA32C06DE4139")
	testMasterSalt, _ := hex.DecodeString("0EC675AD498AFEEBB6960B3AABE6")

	encCtx, _ := CreateContext(testMasterKey, testMasterSalt)
	decCtx, _ := CreateContext(testMasterKey, testMasterSalt)

	msg := &rtpMsg{ssrc: 1, sequenceNumber: 10, payload: []byte("hello")}
	out, err := encCtx.EncryptRTP(msg)
	if err != nil {
		t.Fatal(err)
	}
	out[len(out)-1] ^= 0xff

	if _, err := decCtx.DecryptRTP(out); err != errAuthenticationFailed {
		t.Fatalf("tampered decrypt: err = %v, want %v", err, errAuthenticationFailed)
	}
}

func TestGCMProfileRoundTrip(t *testing.T) {
	key := make([]byte, gcmKeyLength)
	salt := make([]byte, gcmSaltLength)
	for i := range key {
		key[i] = byte(i)
	}
	for i := range salt {
		salt[i] = byte(i + 1)
	}

	encCtx, err := NewContext(key, salt, ProfileAEADAES128GCM)
	if err != nil {
		t.Fatal(err)
	}
	decCtx, err := NewContext(key, salt, ProfileAEADAES128GCM)
	if err != nil {
		t.Fatal(err)
	}

	msg := &rtpMsg{ssrc: 77, sequenceNumber: 5, payloadType: 111, payload: []byte("gcm payload")}
	out, err := encCtx.EncryptRTP(msg)
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := decCtx.DecryptRTP(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decoded.payload, msg.payload) {
		t.Fatalf("payload mismatch: got %q, want %q", decoded.payload, msg.payload)
	}
}

func TestSRTCPEncryptDecryptRoundTrip(t *testing.T) {
	testMasterKey, _ := hex.DecodeString("E1F97A0D3E018BE0D64FA32C06DE4139")
	testMasterSalt, _ := hex.DecodeString("0EC675AD498AFEEBB6960B3AABE6")

	encCtx, _ := CreateContext(testMasterKey, testMasterSalt)
	decCtx, _ := CreateContext(testMasterKey, testMasterSalt)

	// A minimal RTCP receiver-report header plus a fixed 4-byte SSRC.
	packet := []byte{0x80, 0xc9, 0x00, 0x01, 0x00, 0x00, 0x00, 0x2a}

	out, err := encCtx.EncryptRTCP(packet)
	if err != nil {
		t.Fatal(err)
	}

	decrypted, err := decCtx.DecryptRTCP(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decrypted, packet) {
		t.Fatalf("round trip: got %x, want %x", decrypted, packet)
	}
}
