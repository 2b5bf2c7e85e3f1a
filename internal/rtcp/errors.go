// MIT License
//
// Copyright (c) 2018 Pions
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Modification and extensions:
// Copyright (c) 2019 Lanikai Labs. All rights reserved.

package rtcp

import "errors"

var (
	errInvalidTotalLost = errors.New("rtcp: invalid total lost count")
	errInvalidHeader    = errors.New("rtcp: invalid header")
	errTooManyReports   = errors.New("rtcp: too many reports")
	errTooManyChunks    = errors.New("rtcp: too many chunks")
	errTooManySources   = errors.New("rtcp: too many sources")
	errPacketTooShort   = errors.New("rtcp: packet too short")
	errWrongType        = errors.New("rtcp: wrong packet type")
	errSDESTextTooLong  = errors.New("rtcp: sdes must be <= 255 octets long")
	errSDESMissingType  = errors.New("rtcp: sdes item missing type")
	errReasonTooLong    = errors.New("rtcp: reason must be <= 255 octets long")
	errBadVersion       = errors.New("rtcp: invalid packet version")

	// errBadLength is returned when the packet's declared length (in
	// 32-bit words) does not agree with the number of bytes actually
	// available. See spec §4.A: "declared-length-vs-actual mismatch".
	errBadLength = errors.New("rtcp: packet length mismatch")

	// errWrongMessageID is returned when an attribute that is identified
	// by a fixed ASCII tag (e.g. the REMB "unique identifier") does not
	// match.
	errWrongMessageID = errors.New("rtcp: wrong message id")

	// errMissingCompoundHeader is returned when a compound packet's first
	// member is not SR or RR, a conformance violation per RFC 3550 §6.1
	// that the codec flags rather than rejects.
	errMissingCompoundHeader = errors.New("rtcp: compound packet does not begin with SR or RR")

	// errGoodbyeNotLast is returned when a Goodbye packet appears before
	// the end of a compound packet.
	errGoodbyeNotLast = errors.New("rtcp: goodbye packet is not last in compound")
)
