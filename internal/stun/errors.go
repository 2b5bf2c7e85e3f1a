package stun

import "errors"

var (
	errAgentClosed          = errors.New("stun: agent is closed")
	errDuplicateTransaction = errors.New("stun: duplicate transaction id")
	errUnknownTransaction   = errors.New("stun: unknown transaction id")
)
