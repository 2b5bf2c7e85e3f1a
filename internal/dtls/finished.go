package dtls

import errors "golang.org/x/xerrors"

// verifyDataLength is the fixed size of Finished.VerifyData under the TLS
// 1.2 PRF [RFC5246 §7.4.9].
const verifyDataLength = 12

// Finished proves both sides agree on every handshake message exchanged so
// far, by exchanging a PRF of the transcript hash keyed on the master
// secret [RFC5246 §7.4.9].
type Finished struct {
	VerifyData []byte
}

func (f *Finished) Type() HandshakeType { return HandshakeTypeFinished }

func (f *Finished) Marshal() ([]byte, error) {
	return append([]byte(nil), f.VerifyData...), nil
}

func (f *Finished) Unmarshal(data []byte) error {
	if len(data) != verifyDataLength {
		return errors.New("dtls: Finished has wrong verify_data length")
	}
	f.VerifyData = append([]byte(nil), data...)
	return nil
}
