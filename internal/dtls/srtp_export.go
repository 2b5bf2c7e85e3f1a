package dtls

import (
	"crypto/aes"
	"crypto/cipher"
)

// SRTP key derivation labels [RFC3711 §4.3], duplicated from
// internal/srtp/kdf.go: DTLS-SRTP exports the SRTP master key/salt pair
// itself (via the "EXTRACTOR-dtls_srtp" keying material exporter), and must
// derive the four session keys locally before handing them to
// internal/srtp.Context.
const (
	labelSRTPEncryptionKey      = 0x00
	labelSRTPAuthenticationKey  = 0x01
	labelSRTPSaltingKey         = 0x02
	labelSRTCPEncryptionKey     = 0x03
	labelSRTCPAuthenticationKey = 0x04
	labelSRTCPSaltingKey        = 0x05
)

// deriveKey implements the SRTP key derivation function: x = (master_salt
// XOR key_id) * 2^16, where key_id = label || (index DIV kdr). The derived
// key is the AES-CM keystream generated from that IV, truncated to n bytes.
func deriveKey(masterKey, masterSalt []byte, r uint64, label byte, n int) []byte {
	x := append([]byte(nil), masterSalt...)

	if r > 0 {
		idx := r
		for i := len(x) - 1; i >= len(x)-8 && idx > 0; i-- {
			x[i] ^= byte(idx)
			idx >>= 8
		}
	}
	x[len(x)-7] ^= label

	block, err := aes.NewCipher(masterKey)
	if err != nil {
		panic(err)
	}
	iv := padRight(x, aes.BlockSize)
	stream := cipher.NewCTR(block, iv)

	key := make([]byte, n)
	stream.XORKeyStream(key, key)
	return key
}

func padRight(b []byte, size int) []byte {
	if len(b) >= size {
		return b[:size]
	}
	padded := make([]byte, size)
	copy(padded, b)
	return padded
}

// kdf derives the four SRTP/SRTCP session keys from the master key/salt
// pair exported from the DTLS handshake, per [RFC3711 §4.3]. index and kdr
// select the key-derivation-rate generation (0 means "derive once").
func kdf(masterKey, masterSalt []byte, index, kdr uint, keyLen, saltLen int) (srtpKey, srtpSalt, srtcpKey, srtcpSalt []byte, err error) {
	r := uint64(0)
	if kdr != 0 {
		r = uint64(index) / uint64(kdr)
	}

	srtpKey = deriveKey(masterKey, masterSalt, r, labelSRTPEncryptionKey, keyLen)
	srtpSalt = deriveKey(masterKey, masterSalt, r, labelSRTPSaltingKey, saltLen)
	srtcpKey = deriveKey(masterKey, masterSalt, r, labelSRTCPEncryptionKey, keyLen)
	srtcpSalt = deriveKey(masterKey, masterSalt, r, labelSRTCPSaltingKey, saltLen)
	return srtpKey, srtpSalt, srtcpKey, srtcpSalt, nil
}
