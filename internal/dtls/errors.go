package dtls

import errors "golang.org/x/xerrors"

// Sentinel errors for the handshake engine, grounded on the exhaustive
// thiserror enum of the original Rust implementation's dtls/src/error.rs.
var (
	errInvalidRecordLayerHeader  = errors.New("dtls: invalid record layer header")
	errInvalidHandshakeHeader    = errors.New("dtls: invalid handshake header")
	errUnexpectedMessage         = errors.New("dtls: unexpected handshake message in current flight")
	errInvalidCookie             = errors.New("dtls: cookie mismatch in ClientHello")
	errNoCommonCipherSuite       = errors.New("dtls: no common cipher suite")
	errNoCommonCurve             = errors.New("dtls: no supported elliptic curve in common")
	errInvalidCertificate        = errors.New("dtls: invalid or missing peer certificate")
	errVerifyDataMismatch        = errors.New("dtls: Finished verify_data mismatch")
	errHandshakeTimeout          = errors.New("dtls: handshake timed out after maximum retransmits")
	errAlertFatal                = errors.New("dtls: received fatal alert")
	errClosed                    = errors.New("dtls: connection closed")
	errExtensionTooShort         = errors.New("dtls: extension body shorter than declared length")
	errFragmentOutOfBounds       = errors.New("dtls: handshake fragment offset/length exceeds message length")
)
