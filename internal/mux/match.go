package mux

import (
	"encoding/binary"
)

// MatchFunc reports whether a just-received datagram belongs to the
// endpoint it is registered with.
type MatchFunc func([]byte) bool

// MatchSTUN reports whether buf looks like a STUN message: RFC 5389 §6
// requires the top two bits of the first byte to be zero and the magic
// cookie to follow the 16-bit length field.
func MatchSTUN(buf []byte) bool {
	if len(buf) < 8 {
		return false
	}
	if buf[0]>>6 != 0 {
		return false
	}
	return binary.BigEndian.Uint32(buf[4:8]) == stunMagicCookieValue
}

const stunMagicCookieValue = 0x2112A442

// MatchDTLS reports whether buf looks like a DTLS record: RFC 6347 §4.1
// content types for handshake/change-cipher-spec/alert/application-data
// are 20-23; any first byte in 20-63 is accepted.
func MatchDTLS(buf []byte) bool {
	return len(buf) > 0 && buf[0] >= 20 && buf[0] <= 63
}

// MatchSRTP reports whether buf looks like an RTP (or SRTP, which shares
// RTP's framing) packet: RFC 3550 §5.1 payload type range used by media,
// excluding the RTCP range handled by MatchSRTCP.
func MatchSRTP(buf []byte) bool {
	if len(buf) < 2 {
		return false
	}
	pt := buf[1] & 0x7f
	return pt < 64 || pt > 95
}

// MatchSRTCP reports whether buf looks like an RTCP (or SRTCP) packet:
// packet types 192-223 per RFC 3550 §6 (the pion/webrtc convention of
// 64-95 in the second byte is used here to disambiguate from RTP).
func MatchSRTCP(buf []byte) bool {
	if len(buf) < 2 {
		return false
	}
	pt := buf[1] & 0x7f
	return pt >= 64 && pt <= 95
}
