package utils

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"
)

func HashStringToUint64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// PhoneFingerprint identifies a phone number in logs without writing the
// number itself. Formatting is ignored, so "(876) 555-0123" and
// "8765550123" share a fingerprint.
func PhoneFingerprint(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return ""
	}
	return fmt.Sprintf("%016x", HashStringToUint64(digits))
}
