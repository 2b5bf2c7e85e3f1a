// Copyright 2019 Lanikai Labs. All rights reserved.

package srtp

import "errors"

var (
	errMalformedPacket      = errors.New("malformed packet")
	errUnsupportedVersion   = errors.New("unsupported version")
	errAuthenticationFailed = errors.New("srtp: authentication tag mismatch")
	errReplayed             = errors.New("srtp: packet index rejected as a replay")
)
