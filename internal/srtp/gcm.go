// Copyright 2019 Lanikai Labs. All rights reserved.

package srtp

// AES-GCM, the AEAD alternative to AES-CM + HMAC-SHA1 defined by RFC 7714.
// Selected when the DTLS use_srtp extension negotiates profile
// SRTP_AEAD_AES_128_GCM (0x0007) instead of SRTP_AES128_CM_HMAC_SHA1_80.

import (
	"crypto/aes"
	"crypto/cipher"

	errors "golang.org/x/xerrors"
)

const (
	gcmKeyLength  = 16 // 128-bit AES key
	gcmSaltLength = 12 // 96-bit salt, per RFC 7714 §8.1
	gcmTagLength  = 16
)

// gcmCipher wraps an AES-GCM AEAD with the salt used to build its per-packet
// nonce.
type gcmCipher struct {
	aead cipher.AEAD
	salt []byte
}

func newGCMCipher(key, salt []byte) (*gcmCipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Errorf("srtp: gcm key: %v", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Errorf("srtp: gcm: %v", err)
	}
	return &gcmCipher{aead: aead, salt: salt}, nil
}

// nonce constructs the 96-bit GCM IV per RFC 7714 §8.1:
//
//	IV = salt XOR (SSRC * 2^48) XOR index
//
// so octets 2-5 carry the SSRC and octets 6-11 the 48-bit packet index.
func (g *gcmCipher) nonce(ssrc uint32, index uint64) []byte {
	iv := make([]byte, gcmSaltLength)
	copy(iv, g.salt)
	xor32(iv[2:6], ssrc)
	for i := 0; i < 6; i++ {
		iv[6+i] ^= byte(index >> uint(8*(5-i)))
	}
	return iv
}

// seal encrypts and authenticates plaintext, appending the ciphertext and the
// 16-byte tag to dst, with aad covering the parts of the packet that are authenticated but
// not encrypted (the RTP/RTCP header).
func (g *gcmCipher) seal(dst, plaintext, aad []byte, ssrc uint32, index uint64) []byte {
	return g.aead.Seal(dst, g.nonce(ssrc, index), plaintext, aad)
}

// open verifies and decrypts ciphertext (which includes the trailing tag).
func (g *gcmCipher) open(dst, ciphertext, aad []byte, ssrc uint32, index uint64) ([]byte, error) {
	out, err := g.aead.Open(dst, g.nonce(ssrc, index), ciphertext, aad)
	if err != nil {
		return nil, errors.Errorf("srtp: gcm integrity check failed: %v", err)
	}
	return out, nil
}
