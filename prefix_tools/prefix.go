package prefix_tools

import "strings"

const (
	defaultIPv4Length = "/32"
	defaultIPv6Length = "/128"
)

// Listing is the set of prefixes announced by one ASN, split by address family.
// Both the snapshot extractor and the bgp.he.net fetcher produce one.
type Listing struct {
	ASN  string   // ASN is the normalized AS identifier, e.g. AS13335.
	Name string   // Name is the AS name, empty when the source has none.
	IPv4 []string // IPv4 holds the IPv4 prefixes in extraction order.
	IPv6 []string // IPv6 holds the IPv6 prefixes in extraction order.
}

// IsIPv6 reports whether a prefix belongs to the IPv6 family.
// Family is decided by the presence of ':' alone.
func IsIPv6(prefix string) bool {
	return strings.Contains(prefix, ":")
}

// WithDefaultLength appends /32 or /128 to a bare address and leaves CIDR strings unchanged.
func WithDefaultLength(prefix string) string {
	if strings.Contains(prefix, "/") {
		return prefix
	}
	if IsIPv6(prefix) {
		return prefix + defaultIPv6Length
	}
	return prefix + defaultIPv4Length
}

// Partition splits prefixes into IPv4 and IPv6, keeping their relative order.
func Partition(prefixes []string) (v4, v6 []string) {
	for _, p := range prefixes {
		if IsIPv6(p) {
			v6 = append(v6, p)
		} else {
			v4 = append(v4, p)
		}
	}
	return v4, v6
}
