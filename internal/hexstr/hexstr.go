// Package hexstr decodes hex-encoded on-chain byte strings.
package hexstr

import (
	"encoding/hex"
	"regexp"
)

// hexPattern matches an even-length string of hex digit pairs. The empty
// string matches and decodes to the empty string.
var hexPattern = regexp.MustCompile(`^([A-Fa-f0-9]{2})*$`)

// Decode interprets s as hex-encoded UTF-8 text when it consists solely of
// hex digit pairs, and returns s unchanged otherwise. The pattern check is
// the only guard: once it matches, decoding cannot fail.
func Decode(s string) string {
	if !hexPattern.MatchString(s) {
		return s
	}

	decoded, err := hex.DecodeString(s)
	if err != nil {
		// Unreachable once the pattern matched
		return s
	}
	return string(decoded)
}
