package sctp

import errors "golang.org/x/xerrors"

// Sentinel errors for the association state machine and chunk codecs,
// grounded on the exhaustive thiserror enum of the original Rust
// implementation's sctp/src/error.rs.
var (
	errChunkHeaderTooSmall   = errors.New("sctp: raw is too small for a chunk header")
	errChunkHeaderNotEnough  = errors.New("sctp: not enough data left to satisfy chunk length")
	errChunkInvalidLength    = errors.New("sctp: chunk has invalid length")
	errChunkTypeMismatch     = errors.New("sctp: chunk type does not match expected type")
	errParamHeaderTooShort   = errors.New("sctp: parameter header too short")
	errParamHeaderBadLength  = errors.New("sctp: parameter self-reported length out of range")
	errParamTypeUnhandled    = errors.New("sctp: unhandled parameter type")
	errPacketTooSmall        = errors.New("sctp: raw is smaller than the minimum packet size")
	errPacketBadSourcePort   = errors.New("sctp: packet must not have a source port of 0")
	errPacketBadDestPort     = errors.New("sctp: packet must not have a destination port of 0")
	errChecksumMismatch      = errors.New("sctp: checksum mismatch")
	errUnmarshalUnknownChunk = errors.New("sctp: unknown chunk type")
	errInitChunkBundled      = errors.New("sctp: INIT chunk must not be bundled with any other chunk")
	errInitNoCookie          = errors.New("sctp: INIT ACK carries no state cookie parameter")
	errInitTagZero           = errors.New("sctp: INIT ACK initiate tag must not be 0")
	errInitARwndTooSmall     = errors.New("sctp: INIT ACK advertised receiver window must be >= 1500")
	errHandshakeInitAck      = errors.New("sctp: handshake failed waiting for INIT ACK")
	errHandshakeCookieEcho   = errors.New("sctp: handshake failed waiting for COOKIE ACK")
	errAssociationClosed     = errors.New("sctp: association closed before connecting")
	errStreamAlreadyExists   = errors.New("sctp: stream already exists with this identifier")
	errStreamClosed          = errors.New("sctp: stream closed")
	errShutdownNonEstablished = errors.New("sctp: shutdown requested outside the Established state")
	errPayloadNonEstablished  = errors.New("sctp: payload data sent outside the Established state")
	errTSNNotFound           = errors.New("sctp: requested TSN not present in inflight queue")
	errOutboundMessageTooLarge = errors.New("sctp: outbound message larger than the reassembly limit")
)
