package sctp

// initCommon is the fixed-field layout shared by INIT and INIT ACK
// [RFC4960 §3.3.1, §3.3.2]: initiate tag(4) + a_rwnd(4) + outbound
// streams(2) + inbound streams(2) + initial TSN(4).
type initCommon struct {
	initiateTag      uint32
	advertisedRwnd   uint32
	outboundStreams  uint16
	inboundStreams   uint16
	initialTSN       uint32
}

const initCommonLength = 16

func (c *initCommon) marshal() []byte {
	buf := make([]byte, initCommonLength)
	putUint32(buf[0:4], c.initiateTag)
	putUint32(buf[4:8], c.advertisedRwnd)
	putUint16(buf[8:10], c.outboundStreams)
	putUint16(buf[10:12], c.inboundStreams)
	putUint32(buf[12:16], c.initialTSN)
	return buf
}

func (c *initCommon) unmarshal(data []byte) error {
	if len(data) < initCommonLength {
		return errChunkInvalidLength
	}
	c.initiateTag = getUint32(data[0:4])
	c.advertisedRwnd = getUint32(data[4:8])
	c.outboundStreams = getUint16(data[8:10])
	c.inboundStreams = getUint16(data[10:12])
	c.initialTSN = getUint32(data[12:16])
	return nil
}

// chunkInit is the first message of the four-way handshake [RFC4960 §3.3.1].
// The responder stays stateless until it sees a matching COOKIE ECHO, so
// chunkInit carries no state of its own beyond the wire fields.
type chunkInit struct {
	initCommon
}

func (c *chunkInit) chunkType() ChunkType { return ctInit }

func (c *chunkInit) marshal() ([]byte, error) {
	return c.initCommon.marshal(), nil
}

func (c *chunkInit) unmarshal(data []byte) error {
	body, _, err := splitChunkHeader(ctInit, data)
	if err != nil {
		return err
	}
	return c.initCommon.unmarshal(body)
}

// chunkInitAck answers an INIT with a state cookie the responder need not
// remember; the cookie itself carries everything needed to validate the
// later COOKIE ECHO [RFC4960 §3.3.2, §5.1.3].
type chunkInitAck struct {
	initCommon
	stateCookie         []byte
	supportsForwardTSN  bool
}

func (c *chunkInitAck) chunkType() ChunkType { return ctInitAck }

func (c *chunkInitAck) marshal() ([]byte, error) {
	buf := append([]byte(nil), c.initCommon.marshal()...)
	buf = append(buf, marshalParam(paramTypeStateCookie, c.stateCookie)...)
	if c.supportsForwardTSN {
		buf = append(buf, marshalParam(paramTypeSupportedExtensions, []byte{0xc0 /* FORWARD_TSN chunk type placeholder */})...)
	}
	return buf, nil
}

func (c *chunkInitAck) unmarshal(data []byte) error {
	body, _, err := splitChunkHeader(ctInitAck, data)
	if err != nil {
		return err
	}
	if len(body) < initCommonLength {
		return errChunkInvalidLength
	}
	if err := c.initCommon.unmarshal(body[:initCommonLength]); err != nil {
		return err
	}
	if c.initiateTag == 0 {
		return errInitTagZero
	}
	if c.advertisedRwnd < 1500 {
		return errInitARwndTooSmall
	}

	var haveCookie bool
	err = walkParams(body[initCommonLength:], func(t paramType, pbody []byte) error {
		switch t {
		case paramTypeStateCookie:
			c.stateCookie = append([]byte(nil), pbody...)
			haveCookie = true
		case paramTypeSupportedExtensions:
			c.supportsForwardTSN = true
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !haveCookie {
		return errInitNoCookie
	}
	return nil
}
