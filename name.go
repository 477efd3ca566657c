package msi

import "unicode/utf16"

// msiNameAlphabet is the 64-symbol alphabet of the installer name
// compression: digits, uppercase, lowercase, then '.' and '_'.
const msiNameAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz._"

// DecompressName decodes a compressed installer stream name. The mapping is
// stateless, one code unit at a time: 0x3800..0x47FF packs two alphabet
// indices (low six bits first), 0x4800..0x483F holds a single index, 0x4840
// is the literal '!', anything else passes through unchanged.
func DecompressName(units []uint16) string {
	out := make([]uint16, 0, len(units)*2)

	for _, val := range units {
		switch {
		case val >= 0x3800 && val <= 0x47ff:
			packed := val - 0x3800
			out = append(out, uint16(msiNameAlphabet[packed&0x3f]))
			out = append(out, uint16(msiNameAlphabet[(packed>>6)&0x3f]))
		case val >= 0x4800 && val <= 0x483f:
			out = append(out, uint16(msiNameAlphabet[val-0x4800]))
		case val == 0x4840:
			out = append(out, '!')
		default:
			out = append(out, val)
		}
	}

	return string(utf16.Decode(out))
}
