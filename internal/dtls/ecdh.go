package dtls

import (
	"crypto/elliptic"
	"crypto/rand"

	"golang.org/x/crypto/curve25519"
	errors "golang.org/x/xerrors"
)

// ecdhKeyPair is an ephemeral ECDHE keypair on the curve negotiated via the
// supported_elliptic_curves extension [RFC8422 §5.1.1]. X25519 is preferred
// (via golang.org/x/crypto/curve25519); secp256r1 is the NIST-curve
// fallback for peers that don't offer it.
type ecdhKeyPair struct {
	curve NamedCurve

	// secp256r1
	ecCurve elliptic.Curve
	ecPriv  []byte

	// x25519
	xPriv [32]byte

	pub []byte
}

func generateECDHKeyPair(curve NamedCurve) (*ecdhKeyPair, error) {
	switch curve {
	case NamedCurveX25519:
		var priv [32]byte
		if _, err := rand.Read(priv[:]); err != nil {
			return nil, errors.Errorf("dtls: generate x25519 key: %v", err)
		}
		var pub [32]byte
		curve25519.ScalarBaseMult(&pub, &priv)
		return &ecdhKeyPair{curve: curve, xPriv: priv, pub: pub[:]}, nil

	case NamedCurveSecp256r1:
		ec := elliptic.P256()
		priv, x, y, err := elliptic.GenerateKey(ec, rand.Reader)
		if err != nil {
			return nil, errors.Errorf("dtls: generate ecdh key: %v", err)
		}
		return &ecdhKeyPair{curve: curve, ecCurve: ec, ecPriv: priv, pub: elliptic.Marshal(ec, x, y)}, nil

	default:
		return nil, errors.Errorf("dtls: unsupported curve %#04x", uint16(curve))
	}
}

// sharedSecret computes the ECDHE premaster secret [RFC8422 §5.10].
func (kp *ecdhKeyPair) sharedSecret(peerPublic []byte) ([]byte, error) {
	switch kp.curve {
	case NamedCurveX25519:
		if len(peerPublic) != 32 {
			return nil, errors.New("dtls: invalid x25519 peer public key")
		}
		var peer, secret [32]byte
		copy(peer[:], peerPublic)
		curve25519.ScalarMult(&secret, &kp.xPriv, &peer)
		return secret[:], nil

	case NamedCurveSecp256r1:
		x, y := elliptic.Unmarshal(kp.ecCurve, peerPublic)
		if x == nil {
			return nil, errors.New("dtls: invalid peer ecdh public key")
		}
		sx, _ := kp.ecCurve.ScalarMult(x, y, kp.ecPriv)

		byteLen := (kp.ecCurve.Params().BitSize + 7) / 8
		secret := make([]byte, byteLen)
		sxBytes := sx.Bytes()
		copy(secret[byteLen-len(sxBytes):], sxBytes)
		return secret, nil

	default:
		return nil, errors.New("dtls: ecdh key pair not initialized")
	}
}
