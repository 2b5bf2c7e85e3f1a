package dtls

import (
	"crypto/hmac"
	"crypto/sha256"
	"hash"
)

// pHash implements the TLS 1.2 P_hash data expansion function over the
// given HMAC hash, producing exactly n bytes [RFC5246 §5].
func pHash(secret, seed []byte, n int, newHash func() hash.Hash) []byte {
	h := hmac.New(newHash, secret)

	h.Write(seed)
	a := h.Sum(nil)

	out := make([]byte, 0, n)
	for len(out) < n {
		h.Reset()
		h.Write(a)
		h.Write(seed)
		out = append(out, h.Sum(nil)...)

		h.Reset()
		h.Write(a)
		a = h.Sum(nil)
	}
	return out[:n]
}

// prfMasterSecret derives the 48-byte master secret from the ECDHE
// premaster secret [RFC5246 §8.1]. seed comes from prfMasterSecretSeed, or
// from prfExtendedMasterSecretSeed when Extended Master Secret is in use
// [RFC7627 §4].
func prfMasterSecret(premasterSecret, seed []byte) []byte {
	return pHash(premasterSecret, seed, 48, sha256.New)
}

// prfExtendedMasterSecretSeed builds the seed for EMS master secret
// derivation: the session hash of every handshake message through
// ClientKeyExchange [RFC7627 §4].
func prfExtendedMasterSecretSeed(sessionHash []byte) []byte {
	seed := make([]byte, 0, len("extended master secret")+len(sessionHash))
	seed = append(seed, []byte("extended master secret")...)
	seed = append(seed, sessionHash...)
	return seed
}

// prfMasterSecretSeed builds the classic (non-EMS) seed: "master secret" ||
// client_random || server_random [RFC5246 §8.1].
func prfMasterSecretSeed(clientRandom, serverRandom []byte) []byte {
	seed := make([]byte, 0, len("master secret")+len(clientRandom)+len(serverRandom))
	seed = append(seed, []byte("master secret")...)
	seed = append(seed, clientRandom...)
	seed = append(seed, serverRandom...)
	return seed
}

// prfVerifyData computes a Finished message's verify_data: the TLS 1.2 PRF
// over the master secret, seeded with the finished_label and the running
// transcript hash [RFC5246 §7.4.9].
func prfVerifyData(masterSecret []byte, label string, transcriptHash []byte) []byte {
	seed := append([]byte(label), transcriptHash...)
	return pHash(masterSecret, seed, verifyDataLength, sha256.New)
}

// prfKeyExpansion derives n bytes of key material from the master secret
// [RFC5246 §6.3]. DTLS swaps client/server random order relative to the
// master secret derivation.
func prfKeyExpansion(masterSecret, clientRandom, serverRandom []byte, n int) []byte {
	seed := make([]byte, 0, len("key expansion")+len(serverRandom)+len(clientRandom))
	seed = append(seed, []byte("key expansion")...)
	seed = append(seed, serverRandom...)
	seed = append(seed, clientRandom...)
	return pHash(masterSecret, seed, n, sha256.New)
}
