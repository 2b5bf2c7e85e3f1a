// Copyright 2019 Lanikai Labs. All rights reserved.

package srtp

// Truncate a 64-bit value to its lowest n bits.
func trunc(v uint64, n uint8) uint64 {
	return v & ((1 << n) - 1)
}

// XOR the bytes of a buffer with the given value.
func xor32(buf []byte, v uint32) {
	buf[0] ^= byte(v >> 24)
	buf[1] ^= byte(v >> 16)
	buf[2] ^= byte(v >> 8)
	buf[3] ^= byte(v)
}

// XOR the bytes of a buffer with the given value.
func xor64(buf []byte, v uint64) {
	xor32(buf[0:4], uint32(v>>32))
	xor32(buf[4:8], uint32(v))
}

// Zero out bytes in a slice.
func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Pad a byte slice with zeros on the right, up to the desired size.
func padRight(b []byte, desiredSize int) []byte {
	n := len(b)
	if n < desiredSize {
		b = append(b, make([]byte, desiredSize-n)...)
	}
	return b
}
