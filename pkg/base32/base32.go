// Package base32 implements unpadded RFC 4648 base32 encoding.
//
// Authenticator apps expect TOTP seeds in this form (no '=' padding),
// which is why the stdlib encoder with padding is not used directly.
package base32

// alphabet is the standard RFC 4648 base32 alphabet.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// Encode returns the unpadded base32 representation of data.
// Empty input yields an empty string.
func Encode(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	// 5 input bytes map to 8 output characters.
	out := make([]byte, 0, (len(data)*8+4)/5)

	var value uint
	var bits uint
	for _, b := range data {
		value = value<<8 | uint(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out = append(out, alphabet[(value>>bits)&0x1f])
		}
	}
	// Leftover bits are left-aligned into one final group.
	if bits > 0 {
		out = append(out, alphabet[(value<<(5-bits))&0x1f])
	}
	return string(out)
}
