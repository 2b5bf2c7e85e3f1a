package dtls

import (
	"encoding/binary"

	errors "golang.org/x/xerrors"
)

// ExtensionType identifies a ClientHello/ServerHello extension [RFC6066 etc].
type ExtensionType uint16

const (
	ExtensionTypeServerName                ExtensionType = 0
	ExtensionTypeSupportedEllipticCurves   ExtensionType = 10
	ExtensionTypeSupportedPointFormats     ExtensionType = 11
	ExtensionTypeSupportedSignatureAlgorithms ExtensionType = 13
	ExtensionTypeUseSRTP                   ExtensionType = 14
	ExtensionTypeExtendedMasterSecret      ExtensionType = 23
	ExtensionTypeRenegotiationInfo         ExtensionType = 0xff01
)

// extension is implemented by every ClientHello/ServerHello extension body.
// Marshal/Unmarshal operate on the full wire form, including the 2-byte
// type and 2-byte length prefix, matching the convention already exercised
// by the kept extensionSupportedSignatureAlgorithms test.
type extension interface {
	Type() ExtensionType
	Marshal() ([]byte, error)
	Unmarshal(data []byte) error
}

// extensionHeader returns a 4-byte type+length prefix.
func extensionHeader(t ExtensionType, bodyLen int) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint16(buf[0:2], uint16(t))
	binary.BigEndian.PutUint16(buf[2:4], uint16(bodyLen))
	return buf
}

func unmarshalExtensionHeader(data []byte) (t ExtensionType, bodyLen int, err error) {
	if len(data) < 4 {
		return 0, 0, errExtensionTooShort
	}
	t = ExtensionType(binary.BigEndian.Uint16(data[0:2]))
	bodyLen = int(binary.BigEndian.Uint16(data[2:4]))
	if len(data) < 4+bodyLen {
		return t, bodyLen, errExtensionTooShort
	}
	return t, bodyLen, nil
}

func newExtension(t ExtensionType) (extension, error) {
	switch t {
	case ExtensionTypeServerName:
		return &extensionServerName{}, nil
	case ExtensionTypeSupportedEllipticCurves:
		return &extensionSupportedEllipticCurves{}, nil
	case ExtensionTypeSupportedPointFormats:
		return &extensionSupportedPointFormats{}, nil
	case ExtensionTypeSupportedSignatureAlgorithms:
		return &extensionSupportedSignatureAlgorithms{}, nil
	case ExtensionTypeUseSRTP:
		return &extensionUseSRTP{}, nil
	case ExtensionTypeExtendedMasterSecret:
		return &extensionExtendedMasterSecret{}, nil
	case ExtensionTypeRenegotiationInfo:
		return &extensionRenegotiationInfo{}, nil
	default:
		return nil, errors.Errorf("dtls: unknown extension type %d", t)
	}
}

// marshalExtensions concatenates the wire form of each extension with an
// overall 2-byte length prefix, as carried in ClientHello/ServerHello.
func marshalExtensions(exts []extension) ([]byte, error) {
	var body []byte
	for _, e := range exts {
		raw, err := e.Marshal()
		if err != nil {
			return nil, err
		}
		body = append(body, raw...)
	}
	out := make([]byte, 2+len(body))
	binary.BigEndian.PutUint16(out[0:2], uint16(len(body)))
	copy(out[2:], body)
	return out, nil
}

// unmarshalExtensions parses the extensions block (with its 2-byte overall
// length prefix already stripped by the caller) into concrete types,
// skipping any whose type is not recognized.
func unmarshalExtensions(data []byte) ([]extension, error) {
	var exts []extension
	for len(data) > 0 {
		t, bodyLen, err := unmarshalExtensionHeader(data)
		if err != nil {
			return nil, err
		}
		total := 4 + bodyLen
		e, err := newExtension(t)
		if err == nil {
			if err := e.Unmarshal(data[:total]); err != nil {
				return nil, err
			}
			exts = append(exts, e)
		}
		data = data[total:]
	}
	return exts, nil
}
