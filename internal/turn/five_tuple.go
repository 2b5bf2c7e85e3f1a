// Package turn models a client's view of a TURN allocation (RFC 8656):
// enough state to request one from a relay, track its permissions and
// channel bindings, and shape the result into an ICE relay candidate. It
// does not implement a TURN server.
package turn

import "net"

// FiveTuple identifies one allocation by the transport it was requested
// over: protocol, the client's local address, and the TURN server's
// address [RFC8656 §2, grounded on the original implementation's
// allocation::five_tuple::FiveTuple].
type FiveTuple struct {
	Protocol string // "udp" or "tcp"
	SrcAddr  net.Addr
	DstAddr  net.Addr
}

func (t FiveTuple) Equal(o FiveTuple) bool {
	return t.Protocol == o.Protocol &&
		addrString(t.SrcAddr) == addrString(o.SrcAddr) &&
		addrString(t.DstAddr) == addrString(o.DstAddr)
}

func addrString(a net.Addr) string {
	if a == nil {
		return ""
	}
	return a.String()
}
