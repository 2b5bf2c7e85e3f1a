package dtls

import (
	"crypto/sha256"
	"hash"

	errors "golang.org/x/xerrors"
)

// CipherSuiteID identifies a negotiated cipher suite [RFC5246 §A.5, RFC5289].
// Grounded on the original implementation's CipherSuiteId enum.
type CipherSuiteID uint16

const (
	TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256 CipherSuiteID = 0xc02b
	TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256    CipherSuiteID = 0xc02f
	TLS_ECDHE_ECDSA_WITH_AES_256_CBC_SHA     CipherSuiteID = 0xc00a
	TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA       CipherSuiteID = 0xc014
)

// certificateType distinguishes the required certificate key type for a
// cipher suite's signature algorithm [RFC5246 §7.4.4].
type certificateType byte

const (
	certificateTypeECDSASign certificateType = 64
	certificateTypeRSASign   certificateType = 1
)

// cipherSuite is the negotiable bundle of key-exchange authentication and
// record-protection algorithm, modeled on the original CipherSuite trait
// (id/certificateType/hashFunc/init/encrypt/decrypt).
type cipherSuite interface {
	ID() CipherSuiteID
	certificateType() certificateType
	hashFunc() func() hash.Hash
	// init derives per-direction keys from the negotiated master secret and
	// installs them, readying encrypt/decrypt for use.
	init(masterSecret, clientRandom, serverRandom []byte, isClient bool) error
	encrypt(epoch uint16, seq uint64, contentType ContentType, plaintext []byte) ([]byte, error)
	decrypt(epoch uint16, seq uint64, contentType ContentType, record []byte) ([]byte, error)
}

// defaultCipherSuites lists the suites offered in ClientHello, preferring
// AEAD+ECDSA, matching the original implementation's default_cipher_suites().
func defaultCipherSuites() []cipherSuite {
	return []cipherSuite{
		newCipherSuiteAES128GCMSHA256(TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256, certificateTypeECDSASign),
		newCipherSuiteAES128GCMSHA256(TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256, certificateTypeRSASign),
	}
}

func cipherSuiteByID(id CipherSuiteID) (cipherSuite, error) {
	for _, cs := range defaultCipherSuites() {
		if cs.ID() == id {
			return cs, nil
		}
	}
	return nil, errors.Errorf("dtls: unsupported cipher suite %#04x", uint16(id))
}

// chooseCipherSuite picks the first suite (in our preference order) also
// offered by the peer.
func chooseCipherSuite(offered []CipherSuiteID) (cipherSuite, error) {
	for _, cs := range defaultCipherSuites() {
		for _, id := range offered {
			if cs.ID() == id {
				return cs, nil
			}
		}
	}
	return nil, errNoCommonCipherSuite
}

func cipherSuiteHashSHA256() func() hash.Hash {
	return sha256.New
}
