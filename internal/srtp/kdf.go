// Copyright 2019 Lanikai Labs. All rights reserved.

package srtp

// Key derivation function (KDF) described in RFC 3711, section 4.3
// (https://tools.ietf.org/html/rfc3711#section-4.3). Both SRTP and SRTCP
// session keys are derived from a single master key and master salt
// established during the DTLS-SRTP handshake.

import (
	"crypto/aes"
	"crypto/cipher"
)

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
		xor64(x[len(x)-8:], trunc(r, 48))
	}
	x[len(x)-7] ^= label

	prf := deriveKeyStream(masterKey, x)
	key := make([]byte, n)
	prf.XORKeyStream(key, key)
	return key
}

// deriveKeyStream returns the AES-CM keystream generator used as the SRTP
// PRF, seeded with IV x (padded to a full AES block on the right).
func deriveKeyStream(masterKey, x []byte) cipher.Stream {
	block, err := aes.NewCipher(masterKey)
	if err != nil {
		panic(err)
	}
	if len(x) != aes.BlockSize {
		x = padRight(x, aes.BlockSize)
	}
	return cipher.NewCTR(block, x)
}

// sessionKeys holds the key material derived for one direction (SRTP or
// SRTCP) of a single cryptographic context.
type sessionKeys struct {
	encryptKey []byte
	authKey    []byte
	saltKey    []byte
}

func deriveSessionKeys(masterKey, masterSalt []byte, encLabel, authLabel, saltLabel byte, encKeyLen, authKeyLen, saltKeyLen int) sessionKeys {
	return sessionKeys{
		encryptKey: deriveKey(masterKey, masterSalt, 0, encLabel, encKeyLen),
		authKey:    deriveKey(masterKey, masterSalt, 0, authLabel, authKeyLen),
		saltKey:    deriveKey(masterKey, masterSalt, 0, saltLabel, saltKeyLen),
	}
}
