package dtls

// EllipticCurvePointFormat identifies a point encoding [RFC8422 §5.1.2].
type EllipticCurvePointFormat byte

const EllipticCurvePointFormatUncompressed EllipticCurvePointFormat = 0

type extensionSupportedPointFormats struct {
	pointFormats []EllipticCurvePointFormat
}

func (e *extensionSupportedPointFormats) Type() ExtensionType {
	return ExtensionTypeSupportedPointFormats
}

func (e *extensionSupportedPointFormats) Marshal() ([]byte, error) {
	body := make([]byte, 1+len(e.pointFormats))
	body[0] = byte(len(e.pointFormats))
	for i, f := range e.pointFormats {
		body[1+i] = byte(f)
	}
	return append(extensionHeader(e.Type(), len(body)), body...), nil
}

func (e *extensionSupportedPointFormats) Unmarshal(data []byte) error {
	_, bodyLen, err := unmarshalExtensionHeader(data)
	if err != nil {
		return err
	}
	body := data[4 : 4+bodyLen]
	if len(body) < 1 || len(body) < 1+int(body[0]) {
		return errExtensionTooShort
	}
	n := int(body[0])
	e.pointFormats = nil
	for i := 0; i < n; i++ {
		e.pointFormats = append(e.pointFormats, EllipticCurvePointFormat(body[1+i]))
	}
	return nil
}
