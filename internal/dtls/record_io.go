package dtls

// wrapRecord frames payload in a record header for the current local epoch
// and sequence number, encrypting it if an epoch bump (post-ChangeCipherSpec)
// has happened.
func (e *handshakeEngine) wrapRecord(contentType ContentType, payload []byte) ([]byte, error) {
	seq := e.localRecordSeq
	e.localRecordSeq++

	out := payload
	if e.localEpoch > 0 {
		encrypted, err := e.cipherSuite.encrypt(e.localEpoch, seq, contentType, payload)
		if err != nil {
			return nil, err
		}
		out = encrypted
	}

	h := RecordHeader{
		ContentType:    contentType,
		Version:        protocolVersion1_2,
		Epoch:          e.localEpoch,
		SequenceNumber: seq,
	}
	return marshalRecord(h, out)
}

// sendHandshakeMessage fragments msg at maxFragmentSize, wraps each fragment
// in its own record, and records the reconstructed message in the transcript
// cache. The returned records are what run keeps and resends unchanged on a
// retransmission timeout; they are not re-fragmented.
func (e *handshakeEngine) sendHandshakeMessage(msg handshakeMessage) ([][]byte, error) {
	seq := e.localSeq
	e.localSeq++

	fragments, err := fragmentHandshake(seq, msg, maxFragmentSize)
	if err != nil {
		return nil, err
	}

	full, err := marshalHandshake(seq, msg)
	if err != nil {
		return nil, err
	}
	e.cache.push(full, seq, msg.Type(), e.isClient)

	var records [][]byte
	for _, frag := range fragments {
		rec, err := e.wrapRecord(ContentTypeHandshake, frag)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// sendHandshakeMessageNoCache is sendHandshakeMessage for the two messages
// RFC6347 §4.2.1 excludes from the Finished transcript: the first
// ClientHello (before a cookie is known) and HelloVerifyRequest.
func (e *handshakeEngine) sendHandshakeMessageNoCache(msg handshakeMessage) ([][]byte, error) {
	seq := e.localSeq
	e.localSeq++

	fragments, err := fragmentHandshake(seq, msg, maxFragmentSize)
	if err != nil {
		return nil, err
	}

	var records [][]byte
	for _, frag := range fragments {
		rec, err := e.wrapRecord(ContentTypeHandshake, frag)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// sendChangeCipherSpec emits the single-byte ChangeCipherSpec record and
// bumps the local epoch, so every record after it is encrypted under the
// freshly derived keys [RFC6347 §4.2.1].
func (e *handshakeEngine) sendChangeCipherSpec() ([]byte, error) {
	rec, err := e.wrapRecord(ContentTypeChangeCipherSpec, []byte{0x01})
	if err != nil {
		return nil, err
	}
	e.localEpoch++
	e.localRecordSeq = 0
	return rec, nil
}
