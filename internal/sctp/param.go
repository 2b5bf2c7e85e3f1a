package sctp

// paramType identifies an optional chunk parameter [RFC4960 §3.2.1].
type paramType uint16

const (
	paramTypeStateCookie         paramType = 7
	paramTypeSupportedExtensions paramType = 0x8008
	paramTypeOutSSNResetRequest  paramType = 13
	paramTypeReconfigResponse    paramType = 16
)

// paramHeaderLength is the 4-byte type(2)+length(2) prefix shared by every
// parameter, where length covers the header.
const paramHeaderLength = 4

// marshalParam wraps body in a parameter header and pads to a 4-byte
// boundary.
func marshalParam(t paramType, body []byte) []byte {
	total := paramHeaderLength + len(body)
	buf := make([]byte, padTo4(total))
	putUint16(buf[0:2], uint16(t))
	putUint16(buf[2:4], uint16(total))
	copy(buf[4:], body)
	return buf
}

// splitParamHeader validates and strips a parameter's header.
func splitParamHeader(data []byte) (t paramType, body []byte, err error) {
	if len(data) < paramHeaderLength {
		return 0, nil, errParamHeaderTooShort
	}
	length := int(getUint16(data[2:4]))
	if length < paramHeaderLength || length > len(data) {
		return 0, nil, errParamHeaderBadLength
	}
	return paramType(getUint16(data[0:2])), data[paramHeaderLength:length], nil
}

// walkParams calls fn for every top-level parameter found in data, each
// padded to a 4-byte boundary per RFC4960 §3.2.1.
func walkParams(data []byte, fn func(t paramType, body []byte) error) error {
	for len(data) >= paramHeaderLength {
		t, body, err := splitParamHeader(data)
		if err != nil {
			return err
		}
		if err := fn(t, body); err != nil {
			return err
		}
		consumed := padTo4(paramHeaderLength + len(body))
		if consumed > len(data) {
			consumed = len(data)
		}
		data = data[consumed:]
	}
	return nil
}
