package dtls

import errors "golang.org/x/xerrors"

// AlertLevel is the severity of an Alert [RFC5246 §7.2].
type AlertLevel byte

const (
	AlertLevelWarning AlertLevel = 1
	AlertLevelFatal   AlertLevel = 2
)

func (l AlertLevel) String() string {
	switch l {
	case AlertLevelWarning:
		return "warning"
	case AlertLevelFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// AlertDescription identifies why an Alert was sent [RFC5246 §7.2].
type AlertDescription byte

const (
	AlertDescCloseNotify            AlertDescription = 0
	AlertDescUnexpectedMessage      AlertDescription = 10
	AlertDescBadRecordMac           AlertDescription = 20
	AlertDescDecryptionFailed       AlertDescription = 21
	AlertDescRecordOverflow         AlertDescription = 22
	AlertDescDecompressionFailure   AlertDescription = 30
	AlertDescHandshakeFailure       AlertDescription = 40
	AlertDescNoCertificate          AlertDescription = 41
	AlertDescBadCertificate         AlertDescription = 42
	AlertDescUnsupportedCertificate AlertDescription = 43
	AlertDescCertificateRevoked     AlertDescription = 44
	AlertDescCertificateExpired     AlertDescription = 45
	AlertDescCertificateUnknown     AlertDescription = 46
	AlertDescIllegalParameter       AlertDescription = 47
	AlertDescUnknownCA              AlertDescription = 48
	AlertDescAccessDenied           AlertDescription = 49
	AlertDescDecodeError            AlertDescription = 50
	AlertDescDecryptError           AlertDescription = 51
	AlertDescProtocolVersion        AlertDescription = 70
	AlertDescInsufficientSecurity   AlertDescription = 71
	AlertDescInternalError          AlertDescription = 80
	AlertDescUserCanceled           AlertDescription = 90
	AlertDescNoRenegotiation        AlertDescription = 100
	AlertDescUnsupportedExtension   AlertDescription = 110
	AlertDescUnknownPSKIdentity     AlertDescription = 115
)

// Alert is the 2-byte content of a DTLS alert record [RFC5246 §7.2].
type Alert struct {
	Level       AlertLevel
	Description AlertDescription
}

func (a *Alert) Marshal() ([]byte, error) {
	return []byte{byte(a.Level), byte(a.Description)}, nil
}

func (a *Alert) Unmarshal(data []byte) error {
	if len(data) != 2 {
		return errors.New("dtls: alert must be exactly 2 bytes")
	}
	a.Level = AlertLevel(data[0])
	a.Description = AlertDescription(data[1])
	return nil
}

func (a *Alert) Error() string {
	return "dtls: " + a.Level.String() + " alert: " + a.Description.string()
}

func (d AlertDescription) string() string {
	switch d {
	case AlertDescCloseNotify:
		return "close notify"
	case AlertDescUnexpectedMessage:
		return "unexpected message"
	case AlertDescBadRecordMac:
		return "bad record mac"
	case AlertDescHandshakeFailure:
		return "handshake failure"
	case AlertDescBadCertificate:
		return "bad certificate"
	case AlertDescCertificateExpired:
		return "certificate expired"
	case AlertDescIllegalParameter:
		return "illegal parameter"
	case AlertDescAccessDenied:
		return "access denied"
	case AlertDescDecodeError:
		return "decode error"
	case AlertDescDecryptError:
		return "decrypt error"
	case AlertDescProtocolVersion:
		return "protocol version"
	case AlertDescInsufficientSecurity:
		return "insufficient security"
	case AlertDescInternalError:
		return "internal error"
	case AlertDescUnsupportedExtension:
		return "unsupported extension"
	default:
		return "unknown"
	}
}
