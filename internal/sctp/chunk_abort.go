package sctp

// errorCauseCode identifies why an ABORT or ERROR chunk was sent
// [RFC4960 §3.3.10].
type errorCauseCode uint16

const (
	causeInvalidStreamIdentifier     errorCauseCode = 1
	causeStaleCookieError            errorCauseCode = 3
	causeOutOfResource               errorCauseCode = 4
	causeUnrecognizedChunkType       errorCauseCode = 6
	causeProtocolViolation           errorCauseCode = 13
	causeUserInitiatedAbort          errorCauseCode = 12
)

type errorCause struct {
	code        errorCauseCode
	information []byte
}

func marshalErrorCauses(causes []errorCause) []byte {
	var buf []byte
	for _, c := range causes {
		total := 4 + len(c.information)
		entry := make([]byte, padTo4(total))
		putUint16(entry[0:2], uint16(c.code))
		putUint16(entry[2:4], uint16(total))
		copy(entry[4:], c.information)
		buf = append(buf, entry...)
	}
	return buf
}

func unmarshalErrorCauses(data []byte) ([]errorCause, error) {
	var causes []errorCause
	for len(data) >= 4 {
		length := int(getUint16(data[2:4]))
		if length < 4 || length > len(data) {
			return nil, errChunkInvalidLength
		}
		causes = append(causes, errorCause{
			code:        errorCauseCode(getUint16(data[0:2])),
			information: append([]byte(nil), data[4:length]...),
		})
		consumed := padTo4(length)
		if consumed > len(data) {
			consumed = len(data)
		}
		data = data[consumed:]
	}
	return causes, nil
}

// chunkAbort tears the association down immediately, with no SHUTDOWN
// handshake [RFC4960 §3.3.7].
type chunkAbort struct {
	causes []errorCause
}

func (a *chunkAbort) chunkType() ChunkType { return ctAbort }

func (a *chunkAbort) marshal() ([]byte, error) { return marshalErrorCauses(a.causes), nil }

func (a *chunkAbort) unmarshal(data []byte) error {
	body, _, err := splitChunkHeader(ctAbort, data)
	if err != nil {
		return err
	}
	a.causes, err = unmarshalErrorCauses(body)
	return err
}

// chunkError reports a non-fatal operational error without tearing the
// association down [RFC4960 §3.3.10].
type chunkError struct {
	causes []errorCause
}

func (e *chunkError) chunkType() ChunkType { return ctError }

func (e *chunkError) marshal() ([]byte, error) { return marshalErrorCauses(e.causes), nil }

func (e *chunkError) unmarshal(data []byte) error {
	body, _, err := splitChunkHeader(ctError, data)
	if err != nil {
		return err
	}
	e.causes, err = unmarshalErrorCauses(body)
	return err
}
