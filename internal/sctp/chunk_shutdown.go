package sctp

// chunkShutdown begins graceful teardown once all outstanding DATA has
// been acked; no further DATA may be sent after it [RFC4960 §3.3.8].
type chunkShutdown struct {
	cumulativeTSN uint32
}

func (s *chunkShutdown) chunkType() ChunkType { return ctShutdown }

func (s *chunkShutdown) marshal() ([]byte, error) {
	buf := make([]byte, 4)
	putUint32(buf, s.cumulativeTSN)
	return buf, nil
}

func (s *chunkShutdown) unmarshal(data []byte) error {
	body, _, err := splitChunkHeader(ctShutdown, data)
	if err != nil {
		return err
	}
	if len(body) < 4 {
		return errChunkInvalidLength
	}
	s.cumulativeTSN = getUint32(body[0:4])
	return nil
}

// chunkShutdownAck answers SHUTDOWN once the acker's own outstanding DATA
// has drained [RFC4960 §3.3.9].
type chunkShutdownAck struct{}

func (s *chunkShutdownAck) chunkType() ChunkType        { return ctShutdownAck }
func (s *chunkShutdownAck) marshal() ([]byte, error)    { return nil, nil }
func (s *chunkShutdownAck) unmarshal(data []byte) error { _, _, err := splitChunkHeader(ctShutdownAck, data); return err }

// chunkShutdownComplete closes out the teardown handshake
// [RFC4960 §3.3.12].
type chunkShutdownComplete struct{}

func (s *chunkShutdownComplete) chunkType() ChunkType     { return ctShutdownComplete }
func (s *chunkShutdownComplete) marshal() ([]byte, error) { return nil, nil }
func (s *chunkShutdownComplete) unmarshal(data []byte) error {
	_, _, err := splitChunkHeader(ctShutdownComplete, data)
	return err
}
