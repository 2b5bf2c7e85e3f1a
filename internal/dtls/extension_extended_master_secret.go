package dtls

// extensionExtendedMasterSecret carries no body; its mere presence in both
// ClientHello and ServerHello switches the master secret derivation to use
// the session hash instead of client/server randoms [RFC7627 §4].
type extensionExtendedMasterSecret struct{}

func (e *extensionExtendedMasterSecret) Type() ExtensionType {
	return ExtensionTypeExtendedMasterSecret
}

func (e *extensionExtendedMasterSecret) Marshal() ([]byte, error) {
	return extensionHeader(e.Type(), 0), nil
}

func (e *extensionExtendedMasterSecret) Unmarshal(data []byte) error {
	_, _, err := unmarshalExtensionHeader(data)
	return err
}
