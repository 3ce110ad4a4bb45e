package utils

import (
	"regexp"
	"strings"
)

var asnPattern = regexp.MustCompile(`^AS\d+$`)

// NormalizeASN returns the canonical form of an ASN identifier: upper case with an "AS" prefix.
// "13335", "as13335" and "AS13335" all normalize to "AS13335".
func NormalizeASN(asn string) string {
	asn = strings.ToUpper(strings.TrimSpace(asn))
	if !strings.HasPrefix(asn, "AS") {
		asn = "AS" + asn
	}
	return asn
}

// IsASN reports whether asn is a normalized identifier with a numeric suffix.
func IsASN(asn string) bool {
	return asnPattern.MatchString(asn)
}

// ASNNumber returns the part of a normalized ASN after the "AS" prefix and whether it is all digits.
func ASNNumber(asn string) (string, bool) {
	number := strings.TrimPrefix(asn, "AS")
	if number == "" {
		return number, false
	}
	for _, r := range number {
		if r < '0' || r > '9' {
			return number, false
		}
	}
	return number, true
}
