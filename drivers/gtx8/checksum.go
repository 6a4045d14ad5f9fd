package gtx8

import "encoding/binary"

// Frame and version-block checksums. The scheme is a property of the chip
// variant, fixed at device construction: normandy frames carry a trailing
// byte that makes the 8-bit sum of the whole buffer zero; yellowstone
// frames end in a big-endian 16-bit field equal to the running sum of the
// preceding bytes.

// ChecksumU8 returns the 8-bit running sum of data. It is a pure additive
// fold: independent of how the input is grouped.
func ChecksumU8(data []byte) uint8 {
	var sum uint8
	for _, b := range data {
		sum += b
	}
	return sum
}

// ChecksumU8YS sums all bytes before the trailing big-endian 16-bit field
// and subtracts that field; a valid yellowstone buffer yields 0.
// len(data) must be at least 2.
func ChecksumU8YS(data []byte) uint16 {
	var sum uint16
	for _, b := range data[:len(data)-2] {
		sum += uint16(b)
	}
	return sum - binary.BigEndian.Uint16(data[len(data)-2:])
}

// ChecksumLE16 sums data as little-endian 16-bit words.
func ChecksumLE16(data []byte) uint16 {
	var sum uint16
	for i := 0; i+1 < len(data); i += 2 {
		sum += binary.LittleEndian.Uint16(data[i:])
	}
	return sum
}

// ChecksumBE16 sums data as big-endian 16-bit words.
func ChecksumBE16(data []byte) uint16 {
	var sum uint16
	for i := 0; i+1 < len(data); i += 2 {
		sum += binary.BigEndian.Uint16(data[i:])
	}
	return sum
}

// ChecksumLE32 sums data as little-endian 32-bit words.
func ChecksumLE32(data []byte) uint32 {
	var sum uint32
	for i := 0; i+3 < len(data); i += 4 {
		sum += binary.LittleEndian.Uint32(data[i:])
	}
	return sum
}

// ChecksumBE32 sums data as big-endian 32-bit words.
func ChecksumBE32(data []byte) uint32 {
	var sum uint32
	for i := 0; i+3 < len(data); i += 4 {
		sum += binary.BigEndian.Uint32(data[i:])
	}
	return sum
}
