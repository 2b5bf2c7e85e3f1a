package ice

import (
	"bufio"
	"encoding/base32"
	"fmt"
	"hash/fnv"
	"net"
	"strings"
	"sync"
)

// An ICE candidate (either local or remote).
// See [RFC8445 §5.3] for a definition of fields.
type Candidate struct {
	// The data stream that this candidate belongs to, identified by its SDP "mid" field.
	mid string

	address    TransportAddress
	typ        string
	priority   uint32
	foundation string
	component  int
	attrs      []Attribute // Extension attributes

	base *Base // nil for remote candidates
}

type Attribute struct {
	name  string
	value string
}

const (
	hostType  = "host"
	srflxType = "srflx"
	prflxType = "prflx"
	relayType = "relay"
)

// PriorityTable assigns the RFC8445 §5.1.2.1 local preference to each base
// address of a data stream, so that candidates gathered from more than one
// local interface are still prioritized relative to one another instead of
// all sharing the same constant local preference.
type PriorityTable struct {
	mid string

	mu    sync.Mutex
	order []string // base addresses in first-seen order
}

func newPriorityTable(mid string) *PriorityTable {
	return &PriorityTable{mid: mid}
}

// localPref returns the local preference [RFC8445 §5.1.2.1] for addr: the
// first base registered gets the highest preference, decreasing by a fixed
// step for each subsequent distinct base so that multi-homed hosts still
// produce a strict candidate ordering.
func (pt *PriorityTable) localPref(addr TransportAddress) int {
	if pt == nil {
		return 65535
	}

	key := string(addr.ip)

	pt.mu.Lock()
	defer pt.mu.Unlock()

	for i, k := range pt.order {
		if k == key {
			return 65535 - i*256
		}
	}
	pt.order = append(pt.order, key)
	return 65535 - (len(pt.order)-1)*256
}

func makeHostCandidate(pt *PriorityTable, base *Base) Candidate {
	return Candidate{
		mid:        base.sdpMid,
		address:    base.address,
		typ:        hostType,
		priority:   computePriority(pt, hostType, base.address, base.component),
		foundation: computeFoundation(hostType, base.address, ""),
		component:  base.component,
		base:       base,
	}
}

func makeServerReflexiveCandidate(pt *PriorityTable, base *Base, mapped TransportAddress, stunServer string) Candidate {
	c := Candidate{
		mid:        base.sdpMid,
		address:    mapped,
		typ:        srflxType,
		priority:   computePriority(pt, srflxType, base.address, base.component),
		foundation: computeFoundation(srflxType, base.address, stunServer),
		component:  base.component,
		base:       base,
	}
	// [RFC5245 §15.1] requires raddr/rport. This is enforced by some browsers (e.g. Firefox).
	c.addAttribute("raddr", "0.0.0.0")
	c.addAttribute("rport", "0")
	return c
}

// makeRelayCandidate shapes a relay-type Candidate around a TURN allocation's
// relayed transport address, without implementing a TURN server itself
// [RFC8656 §3].
func makeRelayCandidate(pt *PriorityTable, base *Base, relayed TransportAddress, turnServer string) Candidate {
	c := Candidate{
		mid:        base.sdpMid,
		address:    relayed,
		typ:        relayType,
		priority:   computePriority(pt, relayType, base.address, base.component),
		foundation: computeFoundation(relayType, base.address, turnServer),
		component:  base.component,
		base:       base,
	}
	c.addAttribute("raddr", base.address.displayIP())
	c.addAttribute("rport", fmt.Sprintf("%d", base.address.port))
	return c
}

func makePeerReflexiveCandidate(pt *PriorityTable, base *Base, addr net.Addr, priority uint32) Candidate {
	ta := makeTransportAddress(addr)
	c := Candidate{
		mid:        base.sdpMid,
		address:    ta,
		typ:        prflxType,
		priority:   priority,
		foundation: computeFoundation(prflxType, ta, ""),
		component:  base.component,
		base:       base,
	}
	// [RFC5245 §15.1] requires raddr/rport. This is enforced by some browsers (e.g. Firefox).
	c.addAttribute("raddr", "0.0.0.0")
	c.addAttribute("rport", "0")
	return c
}

// [RFC8445 §5.1.2] Prioritizing Candidates
func computePriority(pt *PriorityTable, typ string, base TransportAddress, component int) uint32 {
	var typePref int
	switch typ {
	case hostType:
		typePref = 126
	case srflxType, prflxType:
		typePref = 110
	case relayType:
		typePref = 0
	default:
		panic("Illegal candidate type: " + typ)
	}

	localPref := pt.localPref(base)

	return uint32((typePref << 24) + (localPref << 8) + (256 - component))
}

// [RFC8445 §5.1.1.3] The foundation must be unique for each tuple of
//     (candidate type, base IP address, protocol, STUN/TURN server)
func computeFoundation(typ string, baseAddress TransportAddress, stunServer string) string {
	fingerprint := fmt.Sprintf("%s/%s/%s", typ, baseAddress.protocol, baseAddress.displayIP())
	if stunServer != "" {
		fingerprint += "/" + stunServer
	}
	hash := fnv.New64()
	hash.Write([]byte(fingerprint))
	return base32.StdEncoding.EncodeToString(hash.Sum(nil))[0:8]
}

func (c *Candidate) addAttribute(name, value string) {
	c.attrs = append(c.attrs, Attribute{name, value})
}

func (c *Candidate) isReflexive() bool {
	return c.typ == srflxType || c.typ == prflxType
}

// Computes the priority of this candidate as if it were peer-reflexive, for use in connectivity
// checks.
func (c *Candidate) peerPriority() uint32 {
	return computePriority(nil, prflxType, c.address, c.component)
}

func (c *Candidate) sdpString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "candidate:%s %d %s %d %s %d typ %s",
		c.foundation, c.component, c.address.protocol, c.priority, c.address.displayIP(), c.address.port, c.typ)
	for _, a := range c.attrs {
		fmt.Fprintf(&b, " %s %s", a.name, a.value)
	}
	return b.String()
}

func (c *Candidate) Mid() string {
	return c.mid
}

func (c Candidate) String() string {
	return c.sdpString()
}

// ParseCandidate parses an SDP candidate line into a remote Candidate for the
// data stream identified by mid.
func ParseCandidate(desc, mid string) (Candidate, error) {
	c := Candidate{mid: mid}
	err := parseCandidateSDP(desc, &c)
	return c, err
}

// An ICE candidate line is a string of the form
//   candidate:{foundation} {component-id} {protocol} {priority} {address} {port} typ {type} ...
// See https://tools.ietf.org/html/draft-ietf-mmusic-ice-sip-sdp-24#section-4.1
func parseCandidateSDP(desc string, c *Candidate) error {
	r := strings.NewReader(desc)

	var protocol, ip, port string
	_, err := fmt.Fscanf(r, "candidate:%s %d %s %d %s %s typ %s",
		&c.foundation, &c.component, &protocol, &c.priority, &ip, &port, &c.typ)
	if err != nil {
		return err
	}
	if c.component < 1 || c.component > 256 {
		return fmt.Errorf("Component ID out of range: %d", c.component)
	}

	ipPort := net.JoinHostPort(ip, port)
	network := strings.ToLower(protocol)
	if addr, err := resolveAddr(network, ipPort); err != nil {
		return err
	} else {
		c.address = makeTransportAddress(addr)
	}

	// The rest of the candidate line consists of "name value" pairs.
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	var name string
	for scanner.Scan() {
		if name == "" {
			name = scanner.Text()
			continue
		}
		value := scanner.Text()
		switch name {
		case "typ":
			c.typ = value
		default:
			c.addAttribute(name, value)
		}
		name = ""
	}
	if name != "" {
		return fmt.Errorf("Unmatched attribute name: %s", name)
	}

	return nil
}

func resolveAddr(network, address string) (net.Addr, error) {
	switch strings.ToLower(network) {
	case "tcp":
		return net.ResolveTCPAddr(network, address)
	case "udp":
		return net.ResolveUDPAddr(network, address)
	default:
		return nil, fmt.Errorf("Invalid network type: %s", network)
	}
}
