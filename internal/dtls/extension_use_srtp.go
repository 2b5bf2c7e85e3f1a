package dtls

import "encoding/binary"

// SRTPProtectionProfile identifies an SRTP cipher suite negotiated via the
// use_srtp extension [RFC5764 §4.1.2].
type SRTPProtectionProfile uint16

const (
	SRTP_AES128_CM_HMAC_SHA1_80 SRTPProtectionProfile = 0x0001
	SRTP_AES128_CM_HMAC_SHA1_32 SRTPProtectionProfile = 0x0002
	SRTP_AEAD_AES_128_GCM       SRTPProtectionProfile = 0x0007
	SRTP_AEAD_AES_256_GCM       SRTPProtectionProfile = 0x0008
)

// defaultSRTPProtectionProfiles is offered by the client, most preferred
// first, mirroring internal/srtp's supported profiles.
var defaultSRTPProtectionProfiles = []SRTPProtectionProfile{
	SRTP_AEAD_AES_128_GCM,
	SRTP_AES128_CM_HMAC_SHA1_80,
}

// extensionUseSRTP negotiates the SRTP protection profile DTLS-SRTP will key
// [RFC5764 §4.1.1].
type extensionUseSRTP struct {
	protectionProfiles []SRTPProtectionProfile
	mki                []byte // Master Key Identifier; empty unless negotiated.
}

func (e *extensionUseSRTP) Type() ExtensionType { return ExtensionTypeUseSRTP }

func (e *extensionUseSRTP) Marshal() ([]byte, error) {
	body := make([]byte, 2+2*len(e.protectionProfiles)+1+len(e.mki))
	binary.BigEndian.PutUint16(body[0:2], uint16(2*len(e.protectionProfiles)))
	for i, p := range e.protectionProfiles {
		binary.BigEndian.PutUint16(body[2+2*i:4+2*i], uint16(p))
	}
	mkiOffset := 2 + 2*len(e.protectionProfiles)
	body[mkiOffset] = byte(len(e.mki))
	copy(body[mkiOffset+1:], e.mki)
	return append(extensionHeader(e.Type(), len(body)), body...), nil
}

func (e *extensionUseSRTP) Unmarshal(data []byte) error {
	_, bodyLen, err := unmarshalExtensionHeader(data)
	if err != nil {
		return err
	}
	body := data[4 : 4+bodyLen]
	if len(body) < 2 {
		return errExtensionTooShort
	}
	listLen := int(binary.BigEndian.Uint16(body[0:2]))
	body = body[2:]
	if len(body) < listLen+1 {
		return errExtensionTooShort
	}
	e.protectionProfiles = nil
	for i := 0; i+1 < listLen; i += 2 {
		e.protectionProfiles = append(e.protectionProfiles, SRTPProtectionProfile(binary.BigEndian.Uint16(body[i:i+2])))
	}
	mkiLen := int(body[listLen])
	if len(body) < listLen+1+mkiLen {
		return errExtensionTooShort
	}
	e.mki = append([]byte(nil), body[listLen+1:listLen+1+mkiLen]...)
	return nil
}

// chooseSRTPProtectionProfile picks the first profile in server-preference
// order (ours) that the peer also offered.
func chooseSRTPProtectionProfile(ours, theirs []SRTPProtectionProfile) (SRTPProtectionProfile, bool) {
	for _, p := range ours {
		for _, q := range theirs {
			if p == q {
				return p, true
			}
		}
	}
	return 0, false
}
