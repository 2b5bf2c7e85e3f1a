package sctp

import "github.com/lanikai/alohartc/internal/util"

// Stream is one bidirectional, independently ordered channel multiplexed
// over an Association, identified by a 16-bit stream identifier
// [RFC4960 §1.4, RFC8831 §6]. Reads deliver whole reassembled user
// messages; Stream is not an io.Reader in the byte-stream sense.
type Stream struct {
	association *Association
	streamID    uint16
	unordered   bool
	defaultPPI  PayloadProtocolIdentifier

	recv *util.Queue
}

func newStream(a *Association, streamID uint16) *Stream {
	return &Stream{
		association: a,
		streamID:    streamID,
		defaultPPI:  PayloadTypeWebRTCBinary,
		recv:        util.NewQueue(1024, 16*1024*1024, util.Block),
	}
}

// StreamIdentifier returns this stream's SCTP stream id.
func (s *Stream) StreamIdentifier() uint16 { return s.streamID }

// Send enqueues data as one user message, fragmenting and queuing DATA
// chunks per the association's pending-send queue [spec §4.F].
func (s *Stream) Send(data []byte) error {
	return s.association.sendMessage(s.streamID, s.defaultPPI, data, s.unordered)
}

// SendPPI is Send with an explicit payload protocol identifier, as used by
// the DCEP control channel to distinguish it from string/binary user data.
func (s *Stream) SendPPI(data []byte, ppi PayloadProtocolIdentifier) error {
	return s.association.sendMessage(s.streamID, ppi, data, s.unordered)
}

// Recv blocks for the next fully reassembled user message and copies it
// into buf.
func (s *Stream) Recv(buf []byte) (int, error) {
	return s.recv.Read(buf)
}

// deliver hands a reassembled message to the stream's receive queue; it is
// called by the association's read goroutine under a.mu, so it must not
// block on anything the association itself could be holding.
func (s *Stream) deliver(msg []byte) {
	_ = s.recv.Write(msg)
}

func (s *Stream) closeLocked() {
	s.recv.Close()
}

// Close releases the stream's receive queue. It does not by itself reset
// the stream on the wire; use Association's RE-CONFIG path for that.
func (s *Stream) Close() error {
	s.recv.Close()
	return nil
}
