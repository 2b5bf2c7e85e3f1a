package dtls

// extensionRenegotiationInfo is the empty-renegotiation marker
// [RFC5746 §3.2]. Since this engine never renegotiates, the
// renegotiated_connection field is always empty.
type extensionRenegotiationInfo struct{}

func (e *extensionRenegotiationInfo) Type() ExtensionType {
	return ExtensionTypeRenegotiationInfo
}

func (e *extensionRenegotiationInfo) Marshal() ([]byte, error) {
	return append(extensionHeader(e.Type(), 1), 0x00), nil
}

func (e *extensionRenegotiationInfo) Unmarshal(data []byte) error {
	_, _, err := unmarshalExtensionHeader(data)
	return err
}
