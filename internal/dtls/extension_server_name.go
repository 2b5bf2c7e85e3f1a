package dtls

import "encoding/binary"

// extensionServerName carries the SNI hostname [RFC6066 §3]. Only the
// host_name entry type is supported.
type extensionServerName struct {
	serverName string
}

func (e *extensionServerName) Type() ExtensionType { return ExtensionTypeServerName }

func (e *extensionServerName) Marshal() ([]byte, error) {
	name := []byte(e.serverName)
	body := make([]byte, 2+1+2+len(name))
	binary.BigEndian.PutUint16(body[0:2], uint16(1+2+len(name)))
	body[2] = 0 // host_name
	binary.BigEndian.PutUint16(body[3:5], uint16(len(name)))
	copy(body[5:], name)
	return append(extensionHeader(e.Type(), len(body)), body...), nil
}

func (e *extensionServerName) Unmarshal(data []byte) error {
	_, bodyLen, err := unmarshalExtensionHeader(data)
	if err != nil {
		return err
	}
	body := data[4 : 4+bodyLen]
	if len(body) < 5 {
		return errExtensionTooShort
	}
	nameLen := int(binary.BigEndian.Uint16(body[3:5]))
	if len(body) < 5+nameLen {
		return errExtensionTooShort
	}
	e.serverName = string(body[5 : 5+nameLen])
	return nil
}
