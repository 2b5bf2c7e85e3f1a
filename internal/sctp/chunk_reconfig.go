package sctp

// reconfigResultCode reports the outcome of a stream reset request
// [RFC6525 §4.3].
type reconfigResultCode uint32

const (
	reconfigResultSuccessPerformed reconfigResultCode = 1
	reconfigResultInProgress       reconfigResultCode = 2
	reconfigResultDenied           reconfigResultCode = 3
)

// outgoingSSNResetRequest asks the peer to reset the listed streams
// [RFC6525 §4.1]: request-seq(4) + response-seq(4) + last-TSN(4) +
// stream-ids[](2 each).
type outgoingSSNResetRequest struct {
	requestSequence uint32
	responseSequence uint32
	senderLastTSN    uint32
	streamIdentifiers []uint16
}

func (r *outgoingSSNResetRequest) marshal() []byte {
	body := make([]byte, 12+2*len(r.streamIdentifiers))
	putUint32(body[0:4], r.requestSequence)
	putUint32(body[4:8], r.responseSequence)
	putUint32(body[8:12], r.senderLastTSN)
	for i, id := range r.streamIdentifiers {
		putUint16(body[12+2*i:14+2*i], id)
	}
	return marshalParam(paramTypeOutSSNResetRequest, body)
}

func (r *outgoingSSNResetRequest) unmarshal(body []byte) error {
	if len(body) < 12 || (len(body)-12)%2 != 0 {
		return errChunkInvalidLength
	}
	r.requestSequence = getUint32(body[0:4])
	r.responseSequence = getUint32(body[4:8])
	r.senderLastTSN = getUint32(body[8:12])
	n := (len(body) - 12) / 2
	r.streamIdentifiers = make([]uint16, n)
	for i := 0; i < n; i++ {
		r.streamIdentifiers[i] = getUint16(body[12+2*i : 14+2*i])
	}
	return nil
}

// reconfigResponse reports the result of a previously received request
// [RFC6525 §4.4]: response-seq(4) + result(4).
type reconfigResponse struct {
	responseSequence uint32
	result            reconfigResultCode
}

func (r *reconfigResponse) marshal() []byte {
	body := make([]byte, 8)
	putUint32(body[0:4], r.responseSequence)
	putUint32(body[4:8], uint32(r.result))
	return marshalParam(paramTypeReconfigResponse, body)
}

func (r *reconfigResponse) unmarshal(body []byte) error {
	if len(body) < 8 {
		return errChunkInvalidLength
	}
	r.responseSequence = getUint32(body[0:4])
	r.result = reconfigResultCode(getUint32(body[4:8]))
	return nil
}

// chunkReconfig carries one or two RE-CONFIG parameters: a request and/or a
// response to an earlier request [RFC6525 §3.1].
type chunkReconfig struct {
	request  *outgoingSSNResetRequest
	response *reconfigResponse
}

func (c *chunkReconfig) chunkType() ChunkType { return ctReconfig }

func (c *chunkReconfig) marshal() ([]byte, error) {
	var buf []byte
	if c.request != nil {
		buf = append(buf, c.request.marshal()...)
	}
	if c.response != nil {
		buf = append(buf, c.response.marshal()...)
	}
	return buf, nil
}

func (c *chunkReconfig) unmarshal(data []byte) error {
	body, _, err := splitChunkHeader(ctReconfig, data)
	if err != nil {
		return err
	}
	return walkParams(body, func(t paramType, pbody []byte) error {
		switch t {
		case paramTypeOutSSNResetRequest:
			r := &outgoingSSNResetRequest{}
			if err := r.unmarshal(pbody); err != nil {
				return err
			}
			c.request = r
		case paramTypeReconfigResponse:
			r := &reconfigResponse{}
			if err := r.unmarshal(pbody); err != nil {
				return err
			}
			c.response = r
		}
		return nil
	})
}
