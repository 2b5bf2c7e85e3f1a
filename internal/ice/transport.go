package ice

import (
	"fmt"
	"net"
	"strings"
)

// Transport protocols used by ICE candidates.
const (
	UDP = "udp"
	TCP = "tcp"
)

// IPFamily classifies a TransportAddress's IP as IPv4, IPv6, or not yet
// resolved (an mDNS ".local" hostname awaiting resolution).
type IPFamily int

const (
	Unresolved IPFamily = iota
	IPv4
	IPv6
)

// IPAddress holds either the raw bytes of a resolved net.IP (4 bytes for
// IPv4, 16 for IPv6) or, for an unresolved mDNS candidate, the literal
// hostname string.
type IPAddress string

type TransportAddress struct {
	protocol string // Either UDP or TCP
	ip       IPAddress
	family   IPFamily
	port     int

	// Whether ip is a link-local address (RFC 3927/4291), which is
	// excluded from candidate pairing with non-link-local peers.
	linkLocal bool
}

func makeTransportAddress(addr net.Addr) TransportAddress {
	switch a := addr.(type) {
	case *net.TCPAddr:
		return transportAddressFromIP(TCP, a.IP, a.Port)
	case *net.UDPAddr:
		return transportAddressFromIP(UDP, a.IP, a.Port)
	default:
		panic("Unsupported net.Addr type: " + a.String())
	}
}

func transportAddressFromIP(protocol string, ip net.IP, port int) TransportAddress {
	family := IPv6
	raw := ip.To16()
	if ip4 := ip.To4(); ip4 != nil {
		family = IPv4
		raw = ip4
	}
	return TransportAddress{
		protocol:  protocol,
		ip:        IPAddress(raw),
		family:    family,
		port:      port,
		linkLocal: ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast(),
	}
}

// makeUnresolvedTransportAddress builds a TransportAddress around an
// unresolved mDNS ".local" hostname, which cannot be paired for connectivity
// checks until resolved.
func makeUnresolvedTransportAddress(protocol, host string, port int) TransportAddress {
	return TransportAddress{
		protocol: protocol,
		ip:       IPAddress(host),
		family:   Unresolved,
		port:     port,
	}
}

func (ta *TransportAddress) resolved() bool {
	return ta.family != Unresolved
}

// displayIP renders the IP for human/SDP output: the dotted/colon form for a
// resolved address, or the literal hostname otherwise.
func (ta *TransportAddress) displayIP() string {
	if ta.resolved() {
		return net.IP(ta.ip).String()
	}
	return string(ta.ip)
}

func (ta *TransportAddress) netAddr() (addr net.Addr) {
	hostport := net.JoinHostPort(ta.displayIP(), fmt.Sprintf("%d", ta.port))
	switch ta.protocol {
	case TCP:
		addr, _ = net.ResolveTCPAddr("tcp", hostport)
	case UDP:
		addr, _ = net.ResolveUDPAddr("udp", hostport)
	}
	return
}

func (ta *TransportAddress) normalize() {
	ta.protocol = strings.ToLower(ta.protocol)
}

func (ta TransportAddress) String() string {
	host := ta.displayIP()
	if ta.family == IPv6 {
		return fmt.Sprintf("%s/[%s]:%d", ta.protocol, host, ta.port)
	}
	return fmt.Sprintf("%s/%s:%d", ta.protocol, host, ta.port)
}
