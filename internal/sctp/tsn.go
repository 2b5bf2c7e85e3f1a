package sctp

// Serial-number arithmetic for TSN/SSN comparisons that must tolerate
// wraparound [RFC1982], grounded on the original implementation's sna32*/
// sna16* helpers.

func sna32LT(i1, i2 uint32) bool {
	return (i1 < i2 && i2-i1 < 1<<31) || (i1 > i2 && i1-i2 > 1<<31)
}

func sna32LTE(i1, i2 uint32) bool { return i1 == i2 || sna32LT(i1, i2) }
func sna32GT(i1, i2 uint32) bool  { return sna32LT(i2, i1) }
func sna32GTE(i1, i2 uint32) bool { return i1 == i2 || sna32GT(i1, i2) }

func sna16LT(i1, i2 uint16) bool {
	return (i1 < i2 && i2-i1 < 1<<15) || (i1 > i2 && i1-i2 > 1<<15)
}
func sna16GT(i1, i2 uint16) bool { return sna16LT(i2, i1) }
