package dtls

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/asn1"
	"encoding/binary"
	"math/big"

	errors "golang.org/x/xerrors"
)

// constantTimeEqual compares two verify_data values without leaking timing
// information about where they first differ.
func constantTimeEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// signedParams builds the data ServerKeyExchange signs: the two hellos'
// randoms followed by the ECParameters/public key it carries
// [RFC8422 §5.4].
func signedParams(clientRandom, serverRandom handshakeRandom, curve NamedCurve, pub []byte) []byte {
	cr, _ := clientRandom.Marshal()
	sr, _ := serverRandom.Marshal()

	params := make([]byte, 0, 4+len(pub))
	params = append(params, ecCurveTypeNamedCurve)
	curveBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(curveBytes, uint16(curve))
	params = append(params, curveBytes...)
	params = append(params, byte(len(pub)))
	params = append(params, pub...)

	data := make([]byte, 0, len(cr)+len(sr)+len(params))
	data = append(data, cr...)
	data = append(data, sr...)
	data = append(data, params...)
	return data
}

func signParams(priv crypto.PrivateKey, data []byte) ([]byte, error) {
	switch key := priv.(type) {
	case *ecdsa.PrivateKey:
		digest := sha256.Sum256(data)
		r, s, err := ecdsa.Sign(rand.Reader, key, digest[:])
		if err != nil {
			return nil, errors.Errorf("dtls: ecdsa sign: %v", err)
		}
		return asn1.Marshal(ecdsaSignature{r, s})
	case *rsa.PrivateKey:
		digest := sha256.Sum256(data)
		return rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	default:
		return nil, errors.New("dtls: unsupported private key type")
	}
}

type ecdsaSignature struct{ R, S *big.Int }

func verifyParams(pub crypto.PublicKey, data, sig []byte) error {
	digest := sha256.Sum256(data)
	switch key := pub.(type) {
	case *ecdsa.PublicKey:
		var s ecdsaSignature
		if _, err := asn1.Unmarshal(sig, &s); err != nil {
			return errVerifyDataMismatch
		}
		if !ecdsa.Verify(key, digest[:], s.R, s.S) {
			return errVerifyDataMismatch
		}
		return nil
	case *rsa.PublicKey:
		if err := rsa.VerifyPKCS1v15(key, crypto.SHA256, digest[:], sig); err != nil {
			return errVerifyDataMismatch
		}
		return nil
	default:
		return errors.New("dtls: unsupported certificate public key type")
	}
}

// transcriptRules lists the handshake transcript in chronological order for
// a mutually authenticated exchange, as consumed by Finished verify_data
// derivation; the EMS session hash and the CertificateVerify signature use
// it without its last (CertificateVerify) rule. includeClientFinished
// additionally folds in the client's own Finished, for computing the
// server's verify_data.
func transcriptRules(includeClientFinished bool) []handshakeCachePullRule {
	rules := []handshakeCachePullRule{
		{HandshakeTypeClientHello, true, false},
		{HandshakeTypeServerHello, false, false},
		{HandshakeTypeCertificate, false, false},
		{HandshakeTypeServerKeyExchange, false, false},
		{HandshakeTypeCertificateRequest, false, true},
		{HandshakeTypeServerHelloDone, false, false},
		{HandshakeTypeCertificate, true, true},
		{HandshakeTypeClientKeyExchange, true, false},
		{HandshakeTypeCertificateVerify, true, true},
	}
	if includeClientFinished {
		rules = append(rules, handshakeCachePullRule{HandshakeTypeFinished, true, false})
	}
	return rules
}

// deriveMasterSecret computes the master secret from the ECDHE premaster
// secret, using the Extended Master Secret session hash when both sides
// negotiated it [RFC7627 §4], else the classic client/server random seed
// [RFC5246 §8.1].
func (e *handshakeEngine) deriveMasterSecret(premasterSecret []byte) []byte {
	if e.useEMS {
		// The session hash ends at ClientKeyExchange, so the trailing
		// CertificateVerify rule is dropped.
		rules := transcriptRules(false)
		sessionHash := e.cache.sessionHash(cipherSuiteHashSHA256(), rules[:len(rules)-1]...)
		return prfMasterSecret(premasterSecret, prfExtendedMasterSecretSeed(sessionHash))
	}
	cr, _ := e.clientRandom.Marshal()
	sr, _ := e.serverRandom.Marshal()
	return prfMasterSecret(premasterSecret, prfMasterSecretSeed(cr, sr))
}

// verifyData computes this side's Finished.VerifyData [RFC5246 §7.4.9].
func (e *handshakeEngine) verifyData(label string, includeClientFinished bool) []byte {
	transcriptHash := e.cache.sessionHash(cipherSuiteHashSHA256(), transcriptRules(includeClientFinished)...)
	return prfVerifyData(e.masterSecret, label, transcriptHash)
}
