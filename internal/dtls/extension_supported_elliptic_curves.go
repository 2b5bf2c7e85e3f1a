package dtls

import "encoding/binary"

// NamedCurve identifies an elliptic curve [RFC8422 §5.1.1].
type NamedCurve uint16

const (
	NamedCurveSecp256r1 NamedCurve = 23
	NamedCurveX25519    NamedCurve = 29
)

var defaultNamedCurves = []NamedCurve{NamedCurveX25519, NamedCurveSecp256r1}

type extensionSupportedEllipticCurves struct {
	curves []NamedCurve
}

func (e *extensionSupportedEllipticCurves) Type() ExtensionType {
	return ExtensionTypeSupportedEllipticCurves
}

func (e *extensionSupportedEllipticCurves) Marshal() ([]byte, error) {
	body := make([]byte, 2+2*len(e.curves))
	binary.BigEndian.PutUint16(body[0:2], uint16(2*len(e.curves)))
	for i, c := range e.curves {
		binary.BigEndian.PutUint16(body[2+2*i:4+2*i], uint16(c))
	}
	return append(extensionHeader(e.Type(), len(body)), body...), nil
}

func (e *extensionSupportedEllipticCurves) Unmarshal(data []byte) error {
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
	if len(body) < listLen {
		return errExtensionTooShort
	}
	e.curves = nil
	for i := 0; i+1 < listLen; i += 2 {
		e.curves = append(e.curves, NamedCurve(binary.BigEndian.Uint16(body[i:i+2])))
	}
	return nil
}

func chooseCurve(ours, theirs []NamedCurve) (NamedCurve, bool) {
	for _, c := range ours {
		for _, d := range theirs {
			if c == d {
				return c, true
			}
		}
	}
	return 0, false
}
