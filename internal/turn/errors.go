package turn

import errors "golang.org/x/xerrors"

var (
	errChannelNumberOutOfRange = errors.New("turn: channel number out of the [0x4000, 0x7FFF] range")
	errChannelNumberConflict   = errors.New("turn: channel number already bound to a different peer")
	errPeerAlreadyBound        = errors.New("turn: peer already bound to a different channel number")
	errAllocateNoRelayAddress  = errors.New("turn: allocate response carries no XOR-RELAYED-ADDRESS")
	errAllocateMismatchedTag   = errors.New("turn: allocate response transaction id does not match request")
)
