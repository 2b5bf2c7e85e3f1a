package turn

import (
	"encoding/binary"
	"net"
	"time"

	errors "golang.org/x/xerrors"

	"github.com/lanikai/alohartc/internal/stun"
)

// TURN attribute and method numbers this client needs [RFC8656 §18.1-18.2],
// layered on top of internal/stun's generic message codec.
const (
	attrChannelNumber      uint16 = 0x000C
	attrLifetime           uint16 = 0x000D
	attrXorPeerAddress     uint16 = 0x0012
	attrXorRelayedAddress  uint16 = 0x0016
	attrRequestedTransport uint16 = 0x0019

	methodAllocate         uint16 = 0x003
	methodRefresh          uint16 = 0x004
	methodCreatePermission uint16 = 0x008
	methodChannelBind      uint16 = 0x009

	protoUDP byte = 17
)

// Client drives a TURN control connection (the STUN-framed request/response
// exchange with the relay server) and keeps the resulting Allocation's
// bookkeeping current.
type Client struct {
	conn     net.Conn
	username string
	password string
	realm    string
}

func NewClient(conn net.Conn, username, password, realm string) *Client {
	return &Client{conn: conn, username: username, password: password, realm: realm}
}

// Allocate requests a relayed transport address with the given lifetime
// [RFC8656 §9] and returns the resulting Allocation.
func (c *Client) Allocate(lifetime time.Duration) (*Allocation, error) {
	if lifetime == 0 {
		lifetime = DefaultLifetime
	}

	req := stun.New(stun.ClassRequest, methodAllocate, "")
	req.Add(attrRequestedTransport, []byte{protoUDP, 0, 0, 0})
	req.Add(attrLifetime, lifetimeValue(lifetime))
	if c.username != "" {
		req.Add(stun.AttrUsername, []byte(c.username))
		req.AddMessageIntegrity(c.password)
	}

	resp, err := c.roundTrip(req)
	if err != nil {
		return nil, err
	}

	relayed := extractXorAddr(resp, attrXorRelayedAddress)
	if relayed == nil {
		return nil, errAllocateNoRelayAddress
	}

	tuple := FiveTuple{Protocol: "udp", SrcAddr: c.conn.LocalAddr(), DstAddr: c.conn.RemoteAddr()}
	return NewAllocation(tuple, relayed, lifetime), nil
}

// Refresh extends alloc's lifetime on the server [RFC8656 §10].
func (c *Client) Refresh(alloc *Allocation, lifetime time.Duration) error {
	if lifetime == 0 {
		lifetime = DefaultLifetime
	}
	req := stun.New(stun.ClassRequest, methodRefresh, "")
	req.Add(attrLifetime, lifetimeValue(lifetime))
	if c.username != "" {
		req.Add(stun.AttrUsername, []byte(c.username))
		req.AddMessageIntegrity(c.password)
	}
	if _, err := c.roundTrip(req); err != nil {
		return err
	}
	alloc.Refresh(lifetime)
	return nil
}

// CreatePermission installs a permission for peer on the server side and
// mirrors it into alloc's local bookkeeping [RFC8656 §9].
func (c *Client) CreatePermission(alloc *Allocation, peer net.Addr) error {
	req := stun.New(stun.ClassRequest, methodCreatePermission, "")
	addXorAddr(req, attrXorPeerAddress, peer, req.TransactionID)
	if c.username != "" {
		req.Add(stun.AttrUsername, []byte(c.username))
		req.AddMessageIntegrity(c.password)
	}
	if _, err := c.roundTrip(req); err != nil {
		return err
	}
	alloc.AddPermission(peer)
	return nil
}

// BindChannel requests a channel binding for (number, peer) and mirrors it
// into alloc [RFC8656 §11].
func (c *Client) BindChannel(alloc *Allocation, number uint16, peer net.Addr) error {
	req := stun.New(stun.ClassRequest, methodChannelBind, "")
	req.Add(attrChannelNumber, []byte{byte(number >> 8), byte(number)})
	addXorAddr(req, attrXorPeerAddress, peer, req.TransactionID)
	if c.username != "" {
		req.Add(stun.AttrUsername, []byte(c.username))
		req.AddMessageIntegrity(c.password)
	}
	if _, err := c.roundTrip(req); err != nil {
		return err
	}
	return alloc.AddChannelBind(number, peer, channelBindTimeout)
}

func (c *Client) roundTrip(req *stun.Message) (*stun.Message, error) {
	if _, err := c.conn.Write(req.Bytes()); err != nil {
		return nil, errors.Errorf("turn: write: %v", err)
	}

	if err := c.conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		return nil, err
	}
	buf := make([]byte, 1500)
	n, err := c.conn.Read(buf)
	if err != nil {
		return nil, errors.Errorf("turn: read: %v", err)
	}

	resp, err := stun.Parse(buf[:n])
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.TransactionID != req.TransactionID {
		return nil, errAllocateMismatchedTag
	}
	if resp.Class == stun.ClassErrorResponse {
		code, _ := resp.ErrorCode()
		return nil, errors.Errorf("turn: request refused with error code %d", code)
	}
	return resp, nil
}

func lifetimeValue(d time.Duration) []byte {
	v := make([]byte, 4)
	binary.BigEndian.PutUint32(v, uint32(d/time.Second))
	return v
}

// addXorAddr appends an XOR'd address attribute in the same wire shape as
// XOR-MAPPED-ADDRESS [RFC8656 §14.3, RFC5389 §15.2], reimplemented here
// since internal/stun only exposes an XOR-MAPPED-ADDRESS encoder
// (SetXorMappedAddress), fixed to that attribute's number.
func addXorAddr(msg *stun.Message, attrType uint16, addr net.Addr, transactionID string) {
	var ip net.IP
	var port int
	switch a := addr.(type) {
	case *net.UDPAddr:
		ip, port = a.IP, a.Port
	case *net.TCPAddr:
		ip, port = a.IP, a.Port
	}

	var value []byte
	if ip4 := ip.To4(); ip4 != nil {
		value = make([]byte, 8)
		value[1] = 0x01
		copy(value[4:8], ip4)
	} else {
		value = make([]byte, 20)
		value[1] = 0x02
		copy(value[4:20], ip.To16())
	}
	binary.BigEndian.PutUint16(value[2:4], uint16(port))
	xorInPlace(value[2:4], magicCookieBytes[0:2])
	xorInPlace(value[4:8], magicCookieBytes)
	if len(value) == 20 {
		xorInPlace(value[8:], transactionID)
	}
	msg.Add(attrType, value)
}

func extractXorAddr(msg *stun.Message, attrType uint16) net.Addr {
	attr := msg.Get(attrType)
	if attr == nil || len(attr.Value) < 8 {
		return nil
	}
	port := binary.BigEndian.Uint16(attr.Value[2:4])
	port ^= binary.BigEndian.Uint16([]byte(magicCookieBytes[0:2]))

	var ip net.IP
	switch attr.Value[1] {
	case 0x01:
		ip = make([]byte, 4)
		copy(ip, attr.Value[4:8])
		xorInPlace(ip, magicCookieBytes)
	case 0x02:
		if len(attr.Value) < 20 {
			return nil
		}
		ip = make([]byte, 16)
		copy(ip, attr.Value[4:20])
		xorInPlace(ip[0:4], magicCookieBytes)
		xorInPlace(ip[4:], msg.TransactionID)
	default:
		return nil
	}
	return &net.UDPAddr{IP: ip, Port: int(port)}
}

const magicCookieBytes = "\x21\x12\xA4\x42"

func xorInPlace(dest []byte, xor string) {
	for i := range dest {
		dest[i] ^= xor[i]
	}
}
