// Package interceptor provides a chain of observers that sit between the RTP/
// RTCP wire and the application, the way a PeerConnection's srtp.Conn sits
// between the wire and its caller. Each observer is bound once per stream (or
// once per connection, for the RTCP reader/writer) and returns a wrapped
// reader/writer that the next observer in the chain sees instead of the raw
// one.
package interceptor

import (
	"github.com/lanikai/alohartc/internal/rtcp"
)

// Attributes carries side-channel values between interceptors bound to the
// same read or write call, e.g. a receive timestamp recorded by one
// interceptor and consumed by another further down the chain.
type Attributes map[string]interface{}

// Get returns the value stored under key, or nil if absent.
func (a Attributes) Get(key string) interface{} {
	if a == nil {
		return nil
	}
	return a[key]
}

// RTPHeaderExtension describes a negotiated header extension, from the SDP
// `extmap` attribute.
type RTPHeaderExtension struct {
	URI string
	ID  uint8
}

// StreamInfo describes a single RTP stream (one direction, one SSRC) being
// bound to an interceptor.
type StreamInfo struct {
	SSRC                uint32
	ClockRate           uint32
	RTPHeaderExtensions []RTPHeaderExtension
}

// HeaderExtensionID returns the negotiated ID for the extension with the
// given URI, or 0 (an invalid extension ID, per RFC 8285) if not negotiated.
func (info *StreamInfo) HeaderExtensionID(uri string) uint8 {
	for _, e := range info.RTPHeaderExtensions {
		if e.URI == uri {
			return e.ID
		}
	}
	return 0
}

// Extension is a single RFC 8285 one-byte header extension element.
type Extension struct {
	ID      uint8
	Payload []byte
}

// Header is the subset of the RTP fixed header, plus any header extensions,
// that interceptors need to inspect or modify. It intentionally does not
// carry padding/CSRC bookkeeping; interceptors operate above that layer.
type Header struct {
	Marker         bool
	PayloadType    uint8
	SequenceNumber uint16
	Timestamp      uint32
	SSRC           uint32
	Extensions     []Extension
}

// SetExtension replaces the payload for an already-present extension ID, or
// appends a new one.
func (h *Header) SetExtension(id uint8, payload []byte) {
	for i := range h.Extensions {
		if h.Extensions[i].ID == id {
			h.Extensions[i].Payload = payload
			return
		}
	}
	h.Extensions = append(h.Extensions, Extension{ID: id, Payload: payload})
}

// Extension returns the payload for the given extension ID, and whether it
// was present.
func (h *Header) Extension(id uint8) ([]byte, bool) {
	for _, e := range h.Extensions {
		if e.ID == id {
			return e.Payload, true
		}
	}
	return nil, false
}

// Packet is an RTP packet as seen by an interceptor: header fields an
// interceptor might want plus the payload. It does not round-trip every RTP
// wire detail (CSRC list, padding); those are the concern of the transport
// layer above which interceptors are bound.
type Packet struct {
	Header  Header
	Payload []byte
}

// RTPWriter is called once per outgoing RTP packet.
type RTPWriter interface {
	Write(pkt *Packet, attrs Attributes) (int, error)
}

// RTPWriterFunc adapts a function to an RTPWriter.
type RTPWriterFunc func(pkt *Packet, attrs Attributes) (int, error)

func (f RTPWriterFunc) Write(pkt *Packet, attrs Attributes) (int, error) {
	return f(pkt, attrs)
}

// RTPReader is called once per incoming RTP packet.
type RTPReader interface {
	Read(pkt *Packet, attrs Attributes) (int, error)
}

// RTPReaderFunc adapts a function to an RTPReader.
type RTPReaderFunc func(pkt *Packet, attrs Attributes) (int, error)

func (f RTPReaderFunc) Read(pkt *Packet, attrs Attributes) (int, error) {
	return f(pkt, attrs)
}

// RTCPWriter is called once per outgoing RTCP packet batch.
type RTCPWriter interface {
	Write(pkts []rtcp.Packet, attrs Attributes) (int, error)
}

// RTCPWriterFunc adapts a function to an RTCPWriter.
type RTCPWriterFunc func(pkts []rtcp.Packet, attrs Attributes) (int, error)

func (f RTCPWriterFunc) Write(pkts []rtcp.Packet, attrs Attributes) (int, error) {
	return f(pkts, attrs)
}

// RTCPReader is called once per incoming RTCP packet batch. buf holds the
// still-serialized compound packet; an interceptor that wants to inspect it
// unmarshals it with rtcp.Unmarshal/CompoundPacket but passes the original
// bytes through unchanged, since RTCP from the wire is never rewritten here.
type RTCPReader interface {
	Read(buf []byte, attrs Attributes) (int, Attributes, error)
}

// RTCPReaderFunc adapts a function to an RTCPReader.
type RTCPReaderFunc func(buf []byte, attrs Attributes) (int, Attributes, error)

func (f RTCPReaderFunc) Read(buf []byte, attrs Attributes) (int, Attributes, error) {
	return f(buf, attrs)
}

// Interceptor wraps RTP/RTCP readers and writers to inject or observe
// traffic. bind_local_stream/bind_remote_stream are called once per stream,
// in each direction; bind_rtcp_reader/bind_rtcp_writer are called once per
// connection, since RTCP is not demultiplexed by SSRC at the transport layer.
type Interceptor interface {
	BindRTCPReader(reader RTCPReader) RTCPReader
	BindRTCPWriter(writer RTCPWriter) RTCPWriter

	BindLocalStream(info *StreamInfo, writer RTPWriter) RTPWriter
	UnbindLocalStream(info *StreamInfo)

	BindRemoteStream(info *StreamInfo, reader RTPReader) RTPReader
	UnbindRemoteStream(info *StreamInfo)

	Close() error
}

// NoOp is embeddable by interceptors that only care about a subset of the
// bind points; the rest pass through unchanged.
type NoOp struct{}

func (NoOp) BindRTCPReader(reader RTCPReader) RTCPReader { return reader }
func (NoOp) BindRTCPWriter(writer RTCPWriter) RTCPWriter { return writer }

func (NoOp) BindLocalStream(info *StreamInfo, writer RTPWriter) RTPWriter { return writer }
func (NoOp) UnbindLocalStream(info *StreamInfo)                          {}

func (NoOp) BindRemoteStream(info *StreamInfo, reader RTPReader) RTPReader { return reader }
func (NoOp) UnbindRemoteStream(info *StreamInfo)                          {}

func (NoOp) Close() error { return nil }

// Chain composes a fixed list of interceptors into a single Interceptor.
// Writers are bound in reverse list order, so the first interceptor's writer
// is the outermost wrapper and the first to see an outgoing packet; readers
// are bound in list order, so the first interceptor's reader wraps the raw
// reader most tightly and is the first to see an incoming packet.
type Chain struct {
	interceptors []Interceptor
}

// NewChain builds a Chain from the given interceptors, in the order described
// on Chain.
func NewChain(interceptors []Interceptor) *Chain {
	return &Chain{interceptors: interceptors}
}

func (c *Chain) BindRTCPReader(reader RTCPReader) RTCPReader {
	for _, i := range c.interceptors {
		reader = i.BindRTCPReader(reader)
	}
	return reader
}

func (c *Chain) BindRTCPWriter(writer RTCPWriter) RTCPWriter {
	for i := len(c.interceptors) - 1; i >= 0; i-- {
		writer = c.interceptors[i].BindRTCPWriter(writer)
	}
	return writer
}

func (c *Chain) BindLocalStream(info *StreamInfo, writer RTPWriter) RTPWriter {
	for i := len(c.interceptors) - 1; i >= 0; i-- {
		writer = c.interceptors[i].BindLocalStream(info, writer)
	}
	return writer
}

func (c *Chain) UnbindLocalStream(info *StreamInfo) {
	for _, i := range c.interceptors {
		i.UnbindLocalStream(info)
	}
}

func (c *Chain) BindRemoteStream(info *StreamInfo, reader RTPReader) RTPReader {
	for _, i := range c.interceptors {
		reader = i.BindRemoteStream(info, reader)
	}
	return reader
}

func (c *Chain) UnbindRemoteStream(info *StreamInfo) {
	for _, i := range c.interceptors {
		i.UnbindRemoteStream(info)
	}
}

func (c *Chain) Close() error {
	var firstErr error
	for _, i := range c.interceptors {
		if err := i.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
