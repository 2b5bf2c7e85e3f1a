package dtls

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/md5"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/hex"
	"hash"
	"math/big"
	"strings"
	"time"

	errors "golang.org/x/xerrors"
)

// certValidityPeriod is deliberately short; a fresh self-signed certificate
// is minted for every PeerConnection and only its fingerprint is exchanged.
const certValidityPeriod = 30 * 24 * time.Hour

// GenerateSelfSigned mints an ephemeral ECDSA P-256 self-signed certificate
// for use as a DTLS identity, matching what a WebRTC peer exchanges as its
// SDP a=fingerprint.
func GenerateSelfSigned() (*x509.Certificate, crypto.PrivateKey, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, errors.Errorf("dtls: generate key: %v", err)
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, nil, errors.Errorf("dtls: serial number: %v", err)
	}

	template := &x509.Certificate{
		SerialNumber:          serialNumber,
		Subject:               pkix.Name{CommonName: "self-signed"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(certValidityPeriod),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &priv.PublicKey, priv)
	if err != nil {
		return nil, nil, errors.Errorf("dtls: create certificate: %v", err)
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, nil, errors.Errorf("dtls: parse certificate: %v", err)
	}

	return cert, priv, nil
}

// Fingerprint computes the hex-colon-separated hash of a DER certificate,
// as carried in SDP's a=fingerprint attribute [RFC8122].
func Fingerprint(cert *x509.Certificate, alg HashAlgorithm) (string, error) {
	h, err := newFingerprintHash(alg)
	if err != nil {
		return "", err
	}
	h.Write(cert.Raw)
	sum := h.Sum(nil)

	hexBytes := make([]string, len(sum))
	for i, b := range sum {
		hexBytes[i] = hex.EncodeToString([]byte{b})
	}
	return strings.ToUpper(strings.Join(hexBytes, ":")), nil
}

func newFingerprintHash(alg HashAlgorithm) (hash.Hash, error) {
	switch alg {
	case HashAlgorithmSHA256:
		return sha256.New(), nil
	case HashAlgorithmMD5:
		return md5.New(), nil
	default:
		return nil, errors.Errorf("dtls: unsupported fingerprint hash %v", alg)
	}
}
