package sctp

// gapAckBlock is one {start, end} run of TSNs received beyond the
// cumulative ack point, expressed as offsets from the cumulative TSN
// [RFC4960 §3.3.4].
type gapAckBlock struct {
	start, end uint16
}

const sackFixedLength = 12 // cumulative TSN(4) + a_rwnd(4) + #gap-ack(2) + #dup-tsn(2)

// chunkSack reports the receiver's cumulative ack point, any gap-acked
// TSNs above it, and duplicate TSNs seen since the last SACK
// [RFC4960 §3.3.4].
type chunkSack struct {
	cumulativeTSN  uint32
	advertisedRwnd uint32
	gapAckBlocks   []gapAckBlock
	duplicateTSNs  []uint32
}

func (s *chunkSack) chunkType() ChunkType { return ctSack }

func (s *chunkSack) marshal() ([]byte, error) {
	buf := make([]byte, sackFixedLength+4*len(s.gapAckBlocks)+4*len(s.duplicateTSNs))
	putUint32(buf[0:4], s.cumulativeTSN)
	putUint32(buf[4:8], s.advertisedRwnd)
	putUint16(buf[8:10], uint16(len(s.gapAckBlocks)))
	putUint16(buf[10:12], uint16(len(s.duplicateTSNs)))

	off := sackFixedLength
	for _, g := range s.gapAckBlocks {
		putUint16(buf[off:off+2], g.start)
		putUint16(buf[off+2:off+4], g.end)
		off += 4
	}
	for _, tsn := range s.duplicateTSNs {
		putUint32(buf[off:off+4], tsn)
		off += 4
	}
	return buf, nil
}

func (s *chunkSack) unmarshal(data []byte) error {
	body, _, err := splitChunkHeader(ctSack, data)
	if err != nil {
		return err
	}
	if len(body) < sackFixedLength {
		return errChunkInvalidLength
	}
	s.cumulativeTSN = getUint32(body[0:4])
	s.advertisedRwnd = getUint32(body[4:8])
	nGap := int(getUint16(body[8:10]))
	nDup := int(getUint16(body[10:12]))

	off := sackFixedLength
	if len(body) < off+4*nGap+4*nDup {
		return errChunkInvalidLength
	}
	s.gapAckBlocks = make([]gapAckBlock, nGap)
	for i := 0; i < nGap; i++ {
		s.gapAckBlocks[i] = gapAckBlock{getUint16(body[off : off+2]), getUint16(body[off+2 : off+4])}
		off += 4
	}
	s.duplicateTSNs = make([]uint32, nDup)
	for i := 0; i < nDup; i++ {
		s.duplicateTSNs[i] = getUint32(body[off : off+4])
		off += 4
	}
	return nil
}
