package structs

// ASNPage represents the information extracted from a bgp.he.net AS page.
type ASNPage struct {
	Title        string   // Title is the text of the page <title>.
	Name         string   // Name is the AS name, "Unknown" when the title carries none.
	IPv4Prefixes []string // IPv4Prefixes is the first column of the IPv4 prefix table.
	IPv6Prefixes []string // IPv6Prefixes is the first column of the IPv6 prefix table.
	HasIPv4Table bool     // HasIPv4Table reports whether the IPv4 prefix table was present.
	HasIPv6Table bool     // HasIPv6Table reports whether the IPv6 prefix table was present.
}
