package ice

import (
	"encoding/hex"
	"fmt"
	"net"
	"strings"

	"github.com/lanikai/alohartc/internal/stun"
)

// STUN (Session Traversal Utilities for NAT), RFC 5389
// (https://tools.ietf.org/html/rfc5389). The wire codec, MESSAGE-INTEGRITY,
// and FINGERPRINT live in internal/stun; this file holds only the
// ICE-specific message construction and the String formatting used for
// debug logging.

type stunMessage = stun.Message

const (
	stunRequest         = stun.ClassRequest
	stunIndication      = stun.ClassIndication
	stunSuccessResponse = stun.ClassSuccessResponse
	stunErrorResponse   = stun.ClassErrorResponse
)

const stunBindingMethod = stun.BindingMethod

const (
	stunAttrUsername        = stun.AttrUsername
	stunAttrUseCandidate    = stun.AttrUseCandidate
	stunAttrIceControlled   = stun.AttrIceControlled
	stunAttrIceControlling  = stun.AttrIceControlling
)

// roleConflictErrorCode is the ERROR-CODE value for a 487 (Role Conflict)
// response [RFC8445 §7.3.1.1].
const roleConflictErrorCode = 487

func parseStunMessage(data []byte) (*stunMessage, error) {
	return stun.Parse(data)
}

// addRoleAttribute tags msg with this agent's ICE-CONTROLLING or
// ICE-CONTROLLED attribute and tiebreaker value, per [RFC8445 §7.1.1].
func addRoleAttribute(msg *stunMessage, controlling bool, tiebreaker uint64) {
	if controlling {
		msg.AddUint64Attr(stunAttrIceControlling, tiebreaker)
	} else {
		msg.AddUint64Attr(stunAttrIceControlled, tiebreaker)
	}
}

func newStunBindingRequest(transactionID string, controlling bool, tiebreaker uint64) *stunMessage {
	msg := stun.New(stunRequest, stunBindingMethod, transactionID)
	addRoleAttribute(msg, controlling, tiebreaker)
	return msg
}

func newStunBindingResponse(transactionID string, raddr net.Addr, password string, controlling bool, tiebreaker uint64) *stunMessage {
	msg := stun.New(stunSuccessResponse, stunBindingMethod, transactionID)
	msg.SetXorMappedAddress(raddr)
	addRoleAttribute(msg, controlling, tiebreaker)
	msg.AddMessageIntegrity(password)
	msg.AddFingerprint()
	return msg
}

// newStunRoleConflictResponse builds a 487 (Role Conflict) error response
// [RFC8445 §7.3.1.1], sent back to a peer whose role attribute collides with
// this agent's own and loses the tiebreaker comparison.
func newStunRoleConflictResponse(transactionID string, password string) *stunMessage {
	msg := stun.New(stunErrorResponse, stunBindingMethod, transactionID)
	msg.AddErrorCode(roleConflictErrorCode, "Role Conflict")
	msg.AddMessageIntegrity(password)
	msg.AddFingerprint()
	return msg
}

func newStunBindingIndication() *stunMessage {
	msg := stun.New(stunIndication, stunBindingMethod, "")
	msg.AddFingerprint()
	return msg
}

func stunString(msg *stunMessage) string {
	b := new(strings.Builder)
	switch msg.Class {
	case stunRequest:
		b.WriteString("STUN request")
	case stunIndication:
		b.WriteString("STUN indication")
	case stunSuccessResponse:
		b.WriteString("STUN success response")
	case stunErrorResponse:
		b.WriteString("STUN error response")
	}
	if msg.Method != stunBindingMethod {
		fmt.Fprintf(b, ", method %x", msg.Method)
	}
	fmt.Fprintf(b, ", tid=%s", hex.EncodeToString([]byte(msg.TransactionID)))
	for _, attr := range msg.Attributes {
		switch attr.Type {
		case stun.AttrMappedAddress, stun.AttrXorMappedAddress:
			fmt.Fprintf(b, ", MAPPED-ADDRESS %s", msg.MappedAddress())
		case stun.AttrUsername:
			fmt.Fprintf(b, ", USERNAME %s", string(attr.Value))
		case stun.AttrErrorCode:
			fmt.Fprintf(b, ", ERROR-CODE %s", string(attr.Value))
		case stun.AttrUnknownAttributes:
			fmt.Fprintf(b, ", UNKNOWN %s", string(attr.Value))
		case stun.AttrUseCandidate:
			b.WriteString(", USE-CANDIDATE")
		case stun.AttrIceControlled:
			b.WriteString(", ICE-CONTROLLED")
		case stun.AttrIceControlling:
			b.WriteString(", ICE-CONTROLLING")
		case stun.AttrPriority:
			fmt.Fprintf(b, ", PRIORITY %d", msg.Priority())
		case stun.AttrSoftware, stun.AttrFingerprint, stun.AttrMessageIntegrity:
			// Not worth logging.
		default:
			fmt.Fprintf(b, ", unknown attribute %x", attr.Type)
		}
	}
	return b.String()
}
