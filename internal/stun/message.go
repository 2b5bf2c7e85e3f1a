// Package stun implements the wire codec and transaction agent for STUN
// (RFC 5389), used by the ICE agent for connectivity checks and by TURN for
// allocation control.
package stun

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"net"
)

// Message classes (RFC 5389 §6, Figure 3).
const (
	ClassRequest         uint16 = 0
	ClassIndication      uint16 = 1
	ClassSuccessResponse uint16 = 2
	ClassErrorResponse   uint16 = 3
)

// BindingMethod is the only STUN method the ICE agent needs.
const BindingMethod uint16 = 0x1

const (
	headerLength = 20
	magicCookie  = 0x2112A442
)

const magicCookieBytes = "\x21\x12\xA4\x42"
const fingerprintXOR = "\x53\x54\x55\x4e"

// Attribute types used by ICE connectivity checks (RFC 5389 §15, RFC 5245).
const (
	AttrMappedAddress     uint16 = 0x0001
	AttrUsername          uint16 = 0x0006
	AttrMessageIntegrity  uint16 = 0x0008
	AttrErrorCode         uint16 = 0x0009
	AttrUnknownAttributes uint16 = 0x000A
	AttrXorMappedAddress  uint16 = 0x0020
	AttrPriority          uint16 = 0x0024
	AttrUseCandidate      uint16 = 0x0025
	AttrSoftware          uint16 = 0x8022
	AttrFingerprint       uint16 = 0x8028
	AttrIceControlled     uint16 = 0x8029
	AttrIceControlling    uint16 = 0x802A
)

// Attribute is one TLV entry of a STUN message (RFC 5389 §15).
type Attribute struct {
	Type   uint16
	Length uint16
	Value  []byte
}

// Message is a decoded STUN message (RFC 5389 §6).
type Message struct {
	// Length in bytes, not including the 20-byte header.
	Length uint16

	Class  uint16
	Method uint16

	// TransactionID is the 12-byte globally unique transaction identifier.
	TransactionID string

	Attributes []*Attribute
}

// New creates a message of the given class and method. If transactionID is
// empty, a random one is generated.
func New(class, method uint16, transactionID string) *Message {
	if transactionID == "" {
		buf := make([]byte, 12)
		rand.Read(buf)
		transactionID = string(buf)
	}
	return &Message{Class: class, Method: method, TransactionID: transactionID}
}

// Parse decodes a STUN message from data. It returns (nil, nil) if data does
// not look like a STUN message at all (wrong magic cookie, bad header), and
// a non-nil error if the header looks right but an attribute is malformed.
func Parse(data []byte) (*Message, error) {
	msg := parseHeader(data)
	if msg == nil {
		return nil, nil
	}

	b := bytes.NewBuffer(data[headerLength:])
	for b.Len() > 0 {
		attr, err := parseAttribute(b)
		if err != nil {
			return msg, err
		}
		msg.Attributes = append(msg.Attributes, attr)
	}
	return msg, nil
}

func parseHeader(data []byte) *Message {
	if len(data) < headerLength {
		return nil
	}

	messageType := binary.BigEndian.Uint16(data[0:2])
	if messageType>>14 != 0 {
		return nil
	}

	length := binary.BigEndian.Uint16(data[2:4])
	if length%4 != 0 {
		return nil
	}

	if binary.BigEndian.Uint32(data[4:8]) != magicCookie {
		return nil
	}

	class, method := decomposeMessageType(messageType)
	return &Message{
		Length:        length,
		Class:         class,
		Method:        method,
		TransactionID: string(data[8:20]),
	}
}

// Figure 3 of RFC 5389: the class and method bits are interleaved across the
// 14-bit message type field.
const classMask1 = 0x0100
const classMask2 = 0x0010
const methodMask1 = 0x3e00
const methodMask2 = 0x00e0
const methodMask3 = 0x000f

func composeMessageType(class, method uint16) uint16 {
	t := (class<<7)&classMask1 | (class<<4)&classMask2
	t |= (method<<2)&methodMask1 | (method<<1)&methodMask2 | (method & methodMask3)
	return t
}

func decomposeMessageType(t uint16) (uint16, uint16) {
	class := (t&classMask1)>>7 | (t&classMask2)>>4
	method := (t&methodMask1)>>2 | (t&methodMask2)>>1 | (t & methodMask3)
	return class, method
}

func parseAttribute(b *bytes.Buffer) (*Attribute, error) {
	if b.Len() < 4 {
		return nil, fmt.Errorf("stun: truncated attribute header")
	}
	typ := binary.BigEndian.Uint16(b.Next(2))
	length := binary.BigEndian.Uint16(b.Next(2))
	if int(length) > b.Len() {
		return nil, fmt.Errorf("stun: attribute %#x claims length %d beyond message", typ, length)
	}
	value := make([]byte, length)
	copy(value, b.Next(int(length)))
	b.Next(pad4(length))
	return &Attribute{typ, length, value}, nil
}

var zeros = make([]byte, 32)

func writeAttribute(attr *Attribute, b *bytes.Buffer) {
	binary.BigEndian.PutUint16(b.Next(2), attr.Type)
	binary.BigEndian.PutUint16(b.Next(2), attr.Length)
	copy(b.Next(int(attr.Length)), attr.Value)
	copy(b.Next(pad4(attr.Length)), zeros)
}

// numBytes returns the total wire size of the attribute, header plus padding.
func (attr *Attribute) numBytes() int {
	return 4 + int(attr.Length) + pad4(attr.Length)
}

// pad4 returns the number of padding bytes (0-3) needed to round n up to a
// 4-byte boundary.
func pad4(n uint16) int {
	return -int(n) & 3
}

// Add appends an attribute and returns it so the caller can patch its value
// in place (used by MESSAGE-INTEGRITY and FINGERPRINT, which cover their
// own placeholder in the hash).
func (msg *Message) Add(t uint16, v []byte) *Attribute {
	vcopy := append([]byte(nil), v...)
	attr := &Attribute{t, uint16(len(vcopy)), vcopy}
	msg.Attributes = append(msg.Attributes, attr)
	msg.Length += uint16(attr.numBytes())
	return attr
}

// Get returns the first attribute of the given type, or nil.
func (msg *Message) Get(t uint16) *Attribute {
	for _, attr := range msg.Attributes {
		if attr.Type == t {
			return attr
		}
	}
	return nil
}

// Bytes serializes the message to wire format. bytes.Buffer.Next is used
// here not to read but to hand out writable sub-slices of buf, which is
// pre-sized to the full wire length.
func (msg *Message) Bytes() []byte {
	buf := make([]byte, headerLength+msg.Length)
	out := bytes.NewBuffer(buf)
	writeHeader(msg, out)
	for _, attr := range msg.Attributes {
		writeAttribute(attr, out)
	}
	return buf
}

func writeHeader(msg *Message, b *bytes.Buffer) {
	messageType := composeMessageType(msg.Class, msg.Method)
	binary.BigEndian.PutUint16(b.Next(2), messageType)
	binary.BigEndian.PutUint16(b.Next(2), msg.Length)
	binary.BigEndian.PutUint32(b.Next(4), magicCookie)
	copy(b.Next(12), msg.TransactionID)
}

// SetXorMappedAddress attaches an XOR-MAPPED-ADDRESS attribute for addr
// (RFC 5389 §15.2).
func (msg *Message) SetXorMappedAddress(addr net.Addr) {
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

	xorBytes(value[2:4], magicCookieBytes[0:2])
	xorBytes(value[4:8], magicCookieBytes)
	xorBytes(value[8:], msg.TransactionID)
	msg.Add(AttrXorMappedAddress, value)
}

// MappedAddress returns the address carried by MAPPED-ADDRESS or
// XOR-MAPPED-ADDRESS, or nil if neither is present.
func (msg *Message) MappedAddress() *net.UDPAddr {
	if attr := msg.Get(AttrXorMappedAddress); attr != nil {
		return extractAddr(attr, msg.TransactionID, true)
	}
	if attr := msg.Get(AttrMappedAddress); attr != nil {
		return extractAddr(attr, msg.TransactionID, false)
	}
	return nil
}

func extractAddr(attr *Attribute, transactionID string, doXor bool) *net.UDPAddr {
	addr := new(net.UDPAddr)
	addr.Port = int(binary.BigEndian.Uint16(attr.Value[2:4]))

	switch family := attr.Value[1]; family {
	case 0x01:
		addr.IP = make([]byte, 4)
		copy(addr.IP, attr.Value[4:8])
	case 0x02:
		addr.IP = make([]byte, 16)
		copy(addr.IP, attr.Value[4:20])
	default:
		return nil
	}

	if doXor {
		addr.Port ^= magicCookie >> 16
		xorBytes(addr.IP[0:4], magicCookieBytes)
		if len(addr.IP) == 16 {
			xorBytes(addr.IP[4:], transactionID)
		}
	}
	return addr
}

func xorBytes(dest []byte, xor string) {
	for i := range dest {
		dest[i] ^= xor[i]
	}
}

// AddMessageIntegrity appends MESSAGE-INTEGRITY (RFC 5389 §15.4), an
// HMAC-SHA1 over everything preceding it, keyed by password.
func (msg *Message) AddMessageIntegrity(password string) {
	sig := hmac.New(sha1.New, []byte(password))
	attr := msg.Add(AttrMessageIntegrity, zeros[0:20])

	b := msg.Bytes()
	beforeIntegrity := len(b) - attr.numBytes()
	sig.Write(b[0:beforeIntegrity])
	copy(attr.Value, sig.Sum(nil))
}

// CheckMessageIntegrity recomputes MESSAGE-INTEGRITY over msg as received
// (raw is the original wire bytes) and reports whether it matches. The HMAC
// covers the bytes before MESSAGE-INTEGRITY, with the header's length field
// counting up to the end of MESSAGE-INTEGRITY, so attributes after it (such
// as FINGERPRINT) are excluded.
func CheckMessageIntegrity(raw []byte, msg *Message, password string) bool {
	attr := msg.Get(AttrMessageIntegrity)
	if attr == nil {
		return false
	}
	cut := headerLength
	for _, a := range msg.Attributes {
		if a == attr {
			break
		}
		cut += a.numBytes()
	}
	if cut > len(raw) {
		return false
	}
	covered := append([]byte(nil), raw[0:cut]...)
	binary.BigEndian.PutUint16(covered[2:4], uint16(cut-headerLength+attr.numBytes()))
	sig := hmac.New(sha1.New, []byte(password))
	sig.Write(covered)
	return hmac.Equal(sig.Sum(nil), attr.Value)
}

// AddFingerprint appends FINGERPRINT (RFC 5389 §15.5), a CRC-32 over
// everything preceding it, XORed with a fixed constant.
func (msg *Message) AddFingerprint() {
	attr := msg.Add(AttrFingerprint, zeros[0:4])

	b := msg.Bytes()
	beforeFingerprint := len(b) - attr.numBytes()
	crc := crc32.ChecksumIEEE(b[0:beforeFingerprint])
	binary.BigEndian.PutUint32(attr.Value, crc^0x5354554e)
}

// AddPriority appends a PRIORITY attribute (RFC 5245 §7.1.1).
func (msg *Message) AddPriority(p uint32) {
	v := make([]byte, 4)
	binary.BigEndian.PutUint32(v, p)
	msg.Add(AttrPriority, v)
}

// Priority returns the value of a PRIORITY attribute, or 0 if absent.
func (msg *Message) Priority() uint32 {
	if attr := msg.Get(AttrPriority); attr != nil {
		return binary.BigEndian.Uint32(attr.Value)
	}
	return 0
}

// HasUseCandidate reports whether msg carries USE-CANDIDATE.
func (msg *Message) HasUseCandidate() bool {
	return msg.Get(AttrUseCandidate) != nil
}

// Username returns the value of a USERNAME attribute, or "" if absent.
func (msg *Message) Username() string {
	if attr := msg.Get(AttrUsername); attr != nil {
		return string(attr.Value)
	}
	return ""
}

// AddErrorCode appends an ERROR-CODE attribute (RFC 5389 §15.6). code must be
// in [300, 699]; class and number are packed per the wire format.
func (msg *Message) AddErrorCode(code int, reason string) {
	v := make([]byte, 4+len(reason))
	v[2] = byte(code / 100)
	v[3] = byte(code % 100)
	copy(v[4:], reason)
	msg.Add(AttrErrorCode, v)
}

// ErrorCode returns the numeric code carried by an ERROR-CODE attribute and
// whether one was present.
func (msg *Message) ErrorCode() (int, bool) {
	attr := msg.Get(AttrErrorCode)
	if attr == nil || len(attr.Value) < 4 {
		return 0, false
	}
	return int(attr.Value[2])*100 + int(attr.Value[3]), true
}

// Uint64Attr returns the big-endian uint64 carried by attribute type t (used
// for the ICE-CONTROLLING/ICE-CONTROLLED tiebreaker value), and whether it
// was present with the expected 8-byte length.
func (msg *Message) Uint64Attr(t uint16) (uint64, bool) {
	attr := msg.Get(t)
	if attr == nil || len(attr.Value) != 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(attr.Value), true
}

// AddUint64Attr appends an 8-byte big-endian attribute (used for
// ICE-CONTROLLING/ICE-CONTROLLED).
func (msg *Message) AddUint64Attr(t uint16, v uint64) {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	msg.Add(t, b)
}
