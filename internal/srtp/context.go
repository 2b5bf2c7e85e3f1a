// MIT License
//
// Copyright (c) 2018 Pions
//
// Modification and extensions:
// Copyright (c) 2019 Lanikai Labs. All rights reserved.

package srtp

import (
	"bytes"
	"encoding/binary"

	errors "golang.org/x/xerrors"

	"github.com/lanikai/alohartc/internal/util"
)

// Profile identifies the negotiated SRTP protection profile, as carried by
// the use_srtp DTLS extension (RFC 5764 §4.1.2).
type Profile uint16

const (
	ProfileAES128CMHMACSHA1_80 Profile = 0x0001
	ProfileAES128CMHMACSHA1_32 Profile = 0x0002
	ProfileAEADAES128GCM       Profile = 0x0007
)

const (
	// maxROCDisorder bounds how far a sequence number may appear to jump
	// backwards or forwards before updateRolloverCount treats it as a
	// rollover rather than reordering. See RFC 3711 appendix A.1.
	maxROCDisorder    = 100
	maxSequenceNumber = 1 << 16

	// replayWindowSize is the number of trailing sequence numbers against
	// which incoming packets are checked for replay.
	replayWindowSize = 128

	srtcpIndexSize = 4
)

// ssrcState tracks the per-source rollover counter and replay window needed
// to reconstruct the 48-bit SRTP packet index from a 16-bit wire sequence
// number. See RFC 3711 §3.3.1.
type ssrcState struct {
	ssrc uint32

	rolloverCounter       uint32
	rolloverHasProcessed  bool
	lastSequenceNumber    uint16

	replay *util.ReplayDetector
}

// Context holds the session keys and per-source state needed to protect and
// unprotect SRTP and SRTCP packets for one direction of a media session.
// Two contexts are needed for a bidirectional session: one built from the
// local write keys, one from the remote read keys negotiated by the DTLS-
// SRTP handshake (RFC 5764).
type Context struct {
	profile Profile

	encryptSRTP       encryptFunc
	encryptSRTCP      encryptFunc
	authenticateSRTP  authFunc
	authenticateSRTCP authFunc

	gcmSRTP  *gcmCipher
	gcmSRTCP *gcmCipher

	ssrcStates map[uint32]*ssrcState

	// srtcpIndex is this context's own outgoing SRTCP packet counter. Only
	// meaningful for a context used to encrypt (write) SRTCP.
	srtcpIndex uint32

	// srtcpReplay detects duplicate/replayed SRTCP indices on a context
	// used to decrypt (read) SRTCP.
	srtcpReplay *util.ReplayDetector
}

// NewContext derives session keys from the given master key and salt under
// the requested profile and returns a ready-to-use Context. masterKey and
// masterSalt come from the DTLS exporter as specified by RFC 5764 §4.2.
func NewContext(masterKey, masterSalt []byte, profile Profile) (*Context, error) {
	c := &Context{
		profile:     profile,
		ssrcStates:  make(map[uint32]*ssrcState),
		srtcpReplay: util.NewReplayDetector(replayWindowSize, 31),
	}

	switch profile {
	case ProfileAES128CMHMACSHA1_80, ProfileAES128CMHMACSHA1_32:
		srtp := deriveSessionKeys(masterKey, masterSalt,
			labelSRTPEncryptionKey, labelSRTPAuthenticationKey, labelSRTPSaltingKey,
			encryptKeyLength, authKeyLength, saltKeyLength)
		srtcp := deriveSessionKeys(masterKey, masterSalt,
			labelSRTCPEncryptionKey, labelSRTCPAuthenticationKey, labelSRTCPSaltingKey,
			encryptKeyLength, authKeyLength, saltKeyLength)

		c.encryptSRTP = aesCounterMode(srtp.encryptKey, srtp.saltKey)
		c.encryptSRTCP = aesCounterMode(srtcp.encryptKey, srtcp.saltKey)
		c.authenticateSRTP = hmacSHA1(srtp.authKey)
		c.authenticateSRTCP = hmacSHA1(srtcp.authKey)

	case ProfileAEADAES128GCM:
		srtpKey := deriveKey(masterKey, masterSalt, 0, labelSRTPEncryptionKey, gcmKeyLength)
		srtpSalt := deriveKey(masterKey, masterSalt, 0, labelSRTPSaltingKey, gcmSaltLength)
		srtcpKey := deriveKey(masterKey, masterSalt, 0, labelSRTCPEncryptionKey, gcmKeyLength)
		srtcpSalt := deriveKey(masterKey, masterSalt, 0, labelSRTCPSaltingKey, gcmSaltLength)

		var err error
		if c.gcmSRTP, err = newGCMCipher(srtpKey, srtpSalt); err != nil {
			return nil, err
		}
		if c.gcmSRTCP, err = newGCMCipher(srtcpKey, srtcpSalt); err != nil {
			return nil, err
		}

	default:
		return nil, errors.Errorf("srtp: unsupported profile 0x%04x", profile)
	}

	return c, nil
}

// CreateContext is a deprecated alias for NewContext using the
// SRTP_AES128_CM_HMAC_SHA1_80 profile, kept for the default (and most
// widely supported) configuration.
func CreateContext(masterKey, masterSalt []byte) (*Context, error) {
	return NewContext(masterKey, masterSalt, ProfileAES128CMHMACSHA1_80)
}

func (c *Context) getSSRCState(ssrc uint32) *ssrcState {
	s, ok := c.ssrcStates[ssrc]
	if ok {
		return s
	}
	s = &ssrcState{
		ssrc:   ssrc,
		replay: util.NewReplayDetector(replayWindowSize, 48),
	}
	c.ssrcStates[ssrc] = s
	return s
}

// updateRolloverCount infers whether sequenceNumber indicates a rollover of
// the 16-bit wire sequence number space, per RFC 3711 appendix A.1.
func updateRolloverCount(sequenceNumber uint16, s *ssrcState) {
	switch {
	case !s.rolloverHasProcessed:
		s.rolloverHasProcessed = true
	case sequenceNumber == 0:
		if s.lastSequenceNumber > maxROCDisorder {
			s.rolloverCounter++
		}
	case s.lastSequenceNumber < maxROCDisorder && sequenceNumber > (maxSequenceNumber-maxROCDisorder) && s.rolloverCounter > 0:
		s.rolloverCounter--
	case sequenceNumber < maxROCDisorder && s.lastSequenceNumber > (maxSequenceNumber-maxROCDisorder):
		s.rolloverCounter++
	}
	s.lastSequenceNumber = sequenceNumber
}

// index returns the 48-bit extended SRTP packet index for sequenceNumber,
// after first updating the rollover counter.
func (s *ssrcState) index(sequenceNumber uint16) uint64 {
	updateRolloverCount(sequenceNumber, s)
	return uint64(s.rolloverCounter)<<16 | uint64(sequenceNumber)
}

// EncryptRTP encrypts msg and appends the authentication tag (or GCM tag),
// returning the serialized packet. Under the AES-CM profiles the payload of
// msg is encrypted in place; under AES-GCM msg is left unchanged.
func (c *Context) EncryptRTP(msg *rtpMsg) ([]byte, error) {
	s := c.getSSRCState(msg.ssrc)
	index := s.index(msg.sequenceNumber)

	if c.gcmSRTP != nil {
		header := msg.marshalHeader()
		sealed := c.gcmSRTP.seal(nil, msg.payload, header, msg.ssrc, trunc(index, 48))
		return append(header, sealed...), nil
	}

	c.encryptSRTP(msg.payload, msg.ssrc, trunc(index, 48))
	full := msg.marshal()
	full = append(full, make([]byte, 4)...)
	binary.BigEndian.PutUint32(full[len(full)-4:], s.rolloverCounter)

	tag := c.authenticateSRTP(full)
	full = full[:len(full)-4]
	return append(full, tag...), nil
}

// DecryptRTP verifies and decrypts an SRTP packet, returning the plaintext
// RTP message. It rejects packets outside the replay window or whose
// authentication tag does not match.
func (c *Context) DecryptRTP(buf []byte) (*rtpMsg, error) {
	var msg rtpMsg
	headerLen, err := msg.unmarshalHeader(buf)
	if err != nil {
		return nil, err
	}

	s := c.getSSRCState(msg.ssrc)
	candidateIndex := rocCandidateIndex(s, msg.sequenceNumber)

	if !s.replay.Check(candidateIndex) {
		return nil, errReplayed
	}

	if c.gcmSRTP != nil {
		header := buf[:headerLen]
		plain, err := c.gcmSRTP.open(nil, buf[headerLen:], header, msg.ssrc, trunc(candidateIndex, 48))
		if err != nil {
			return nil, err
		}
		msg.payload = plain
	} else {
		tagStart := len(buf) - authTagLength
		if tagStart < headerLen {
			return nil, errMalformedPacket
		}

		full := append([]byte(nil), buf[:tagStart]...)
		full = append(full, make([]byte, 4)...)
		binary.BigEndian.PutUint32(full[len(full)-4:], uint32(candidateIndex>>16))
		expected := c.authenticateSRTP(full)
		if !bytes.Equal(expected, buf[tagStart:]) {
			return nil, errAuthenticationFailed
		}

		payload := append([]byte(nil), buf[headerLen:tagStart]...)
		c.encryptSRTP(payload, msg.ssrc, trunc(candidateIndex, 48))
		msg.payload = payload
	}

	updateRolloverCount(msg.sequenceNumber, s)
	s.replay.Accept(candidateIndex)
	return &msg, nil
}

// rocCandidateIndex computes the extended packet index for sequenceNumber
// using the same rollover inference as updateRolloverCount, but without
// mutating state — used so that the replay check happens before the rollover
// counter is committed.
func rocCandidateIndex(s *ssrcState, sequenceNumber uint16) uint64 {
	roc := s.rolloverCounter
	if s.rolloverHasProcessed {
		switch {
		case sequenceNumber == 0 && s.lastSequenceNumber > maxROCDisorder:
			roc++
		case s.lastSequenceNumber < maxROCDisorder && sequenceNumber > (maxSequenceNumber-maxROCDisorder) && roc > 0:
			roc--
		case sequenceNumber < maxROCDisorder && s.lastSequenceNumber > (maxSequenceNumber-maxROCDisorder):
			roc++
		}
	}
	return uint64(roc)<<16 | uint64(sequenceNumber)
}

// EncryptRTCP encrypts a copy of an entire (possibly compound) RTCP packet,
// leaving packet unchanged, and appends the SRTCP index (with E-flag set) and
// authentication tag.
// See https://tools.ietf.org/html/rfc3711#section-3.4.
func (c *Context) EncryptRTCP(packet []byte) ([]byte, error) {
	if len(packet) < 8 {
		return nil, errMalformedPacket
	}
	ssrc := binary.BigEndian.Uint32(packet[4:8])
	index := uint64(c.srtcpIndex) & 0x7fffffff
	c.srtcpIndex++

	if c.gcmSRTCP != nil {
		header := packet[:8]
		sealed := c.gcmSRTCP.seal(nil, packet[8:], header, ssrc, index)
		out := append(append([]byte(nil), header...), sealed...)
		out = append(out, make([]byte, srtcpIndexSize)...)
		binary.BigEndian.PutUint32(out[len(out)-srtcpIndexSize:], eFlagMask|uint32(index))
		return out, nil
	}

	buf := append([]byte(nil), packet...)
	c.encryptSRTCP(buf[8:], ssrc, index)

	buf = append(buf, make([]byte, srtcpIndexSize)...)
	binary.BigEndian.PutUint32(buf[len(buf)-srtcpIndexSize:], eFlagMask|uint32(index))

	tag := c.authenticateSRTCP(buf)
	return append(buf, tag...), nil
}

const eFlagMask = 1 << 31

// DecryptRTCP verifies and decrypts an SRTCP packet, returning the
// plaintext RTCP bytes.
func (c *Context) DecryptRTCP(enciphered []byte) ([]byte, error) {
	if c.gcmSRTCP != nil {
		if len(enciphered) < 8+srtcpIndexSize {
			return nil, errMalformedPacket
		}
		tailOffset := len(enciphered) - srtcpIndexSize
		indexWord := binary.BigEndian.Uint32(enciphered[tailOffset:])
		index := uint64(indexWord & 0x7fffffff)

		if !c.srtcpReplay.Check(index) {
			return nil, errReplayed
		}

		ssrc := binary.BigEndian.Uint32(enciphered[4:8])
		header := enciphered[:8]
		plain, err := c.gcmSRTCP.open(nil, enciphered[8:tailOffset], header, ssrc, index)
		if err != nil {
			return nil, err
		}
		c.srtcpReplay.Accept(index)
		return append(append([]byte(nil), header...), plain...), nil
	}

	if len(enciphered) < 8+authTagLength+srtcpIndexSize {
		return nil, errMalformedPacket
	}

	tailOffset := len(enciphered) - (authTagLength + srtcpIndexSize)

	tag := c.authenticateSRTCP(enciphered[:tailOffset+srtcpIndexSize])
	if !bytes.Equal(tag, enciphered[tailOffset+srtcpIndexSize:]) {
		return nil, errAuthenticationFailed
	}

	indexWord := binary.BigEndian.Uint32(enciphered[tailOffset:])
	if indexWord&eFlagMask == 0 {
		// Not enciphered; return the plaintext tail as-is.
		return append([]byte(nil), enciphered[:tailOffset]...), nil
	}
	index := uint64(indexWord &^ eFlagMask)

	if !c.srtcpReplay.Check(index) {
		return nil, errReplayed
	}

	out := append([]byte(nil), enciphered[:tailOffset]...)
	ssrc := binary.BigEndian.Uint32(out[4:8])
	c.encryptSRTCP(out[8:], ssrc, index)

	c.srtcpReplay.Accept(index)
	return out, nil
}
