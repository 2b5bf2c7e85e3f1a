// Copyright 2019 Lanikai Labs. All rights reserved.

package srtp

// AES in counter mode (RFC 3711 §4.1.1) and HMAC-SHA1 (RFC 3711 §4.2), the
// mandatory-to-implement SRTP transforms. Together these correspond to the
// profile SRTP_AES128_CM_HMAC_SHA1_80 used by the use_srtp DTLS extension.

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha1"
	"hash"
	"sync"
)

const (
	authKeyLength    = 20 // n_a = 160 bits
	authTagLength    = 10 // n_tag = 80 bits
	encryptKeyLength = 16 // n_e = 128 bits
	saltKeyLength    = 14 // n_s = 112 bits
)

// An encryptFunc encrypts a payload in place, using a unique keystream for
// each combination of SSRC and packet index.
type encryptFunc func(payload []byte, ssrc uint32, index uint64)

// An authFunc computes the authentication tag over an integrity-protected
// message.
type authFunc func(m []byte) []byte

// aesCounterMode builds the AES-CM encrypt transform for a given session
// key and salt. See https://tools.ietf.org/html/rfc3711#section-4.1.1.
func aesCounterMode(key, salt []byte) encryptFunc {
	block, err := aes.NewCipher(key)
	if err != nil {
		panic(err)
	}

	ivPool := sync.Pool{
		New: func() interface{} {
			return make([]byte, aes.BlockSize)
		},
	}

	return func(payload []byte, ssrc uint32, index uint64) {
		iv := ivPool.Get().([]byte)
		defer ivPool.Put(iv)

		// IV = (k_s * 2^16) XOR (SSRC * 2^64) XOR (index * 2^16)
		copy(iv, salt)
		clearBytes(iv[len(salt):])
		xor32(iv[4:], ssrc)
		xor64(iv[6:], index)

		cipher.NewCTR(block, iv).XORKeyStream(payload, payload)
	}
}

// hmacSHA1 builds the default SRTP authentication transform.
// See https://tools.ietf.org/html/rfc3711#section-4.2.
func hmacSHA1(authKey []byte) authFunc {
	hashPool := sync.Pool{
		New: func() interface{} {
			return hmac.New(sha1.New, authKey)
		},
	}
	return func(m []byte) []byte {
		mac := hashPool.Get().(hash.Hash)
		mac.Write(m)
		tag := mac.Sum(nil)[0:authTagLength]
		mac.Reset()
		hashPool.Put(mac)
		return tag
	}
}
