package prefix_tools

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Family is an address family label as it appears in route-list headers.
type Family string

const (
	FamilyIPv4 Family = "IPv4"
	FamilyIPv6 Family = "IPv6"
)

// NextHop is the next-hop every route-list directive points at.
const NextHop = "lo"

// TimestampLayout is the UTC timestamp format shared by route-list headers and stored records.
const TimestampLayout = "2006-01-02 15:04:05"

// HeaderFunc returns the comment lines, without the leading "# ", written on top of a route-list file.
type HeaderFunc func(family Family) []string

// SnapshotHeader is the header used for lists exported from a local snapshot.
func SnapshotHeader(asn string) HeaderFunc {
	return func(family Family) []string {
		if family == FamilyIPv6 {
			return []string{fmt.Sprintf("%s IPv6 cidr address-list", asn)}
		}
		return []string{fmt.Sprintf("%s cidr address-list", asn)}
	}
}

// WebHeader is the header used for lists fetched from a lookup site.
// It names the AS, the source and the UTC time of the fetch.
func WebHeader(asn, name, source string, updated time.Time) HeaderFunc {
	return func(family Family) []string {
		return []string{
			fmt.Sprintf("%s (%s) %s CIDR list from %s", asn, name, family, source),
			fmt.Sprintf("Last Updated: %s UTC", updated.UTC().Format(TimestampLayout)),
		}
	}
}

// RouteListPath returns the route-list file name for an ASN and family inside dir.
func RouteListPath(dir, asn string, family Family) string {
	if family == FamilyIPv6 {
		return filepath.Join(dir, asn+"_IPv6.conf")
	}
	return filepath.Join(dir, asn+".conf")
}

// FormatRoute renders one prefix as a static route directive.
func FormatRoute(prefix string) string {
	return fmt.Sprintf("route %s via %q;", WithDefaultLength(prefix), NextHop)
}

// WriteRouteList overwrites path with the header comments followed by one route per prefix.
func WriteRouteList(path string, header []string, prefixes []string) error {
	var buf bytes.Buffer
	for _, line := range header {
		buf.WriteString("# " + line + "\n")
	}
	for _, prefix := range prefixes {
		buf.WriteString(FormatRoute(prefix) + "\n")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write route list %s: %w", path, err)
	}
	return nil
}

// WriteListing writes one route-list file per non-empty family of the listing into dir,
// creating dir if needed. A family without prefixes leaves any existing file alone.
// It returns the paths it wrote.
func WriteListing(dir string, listing Listing, header HeaderFunc) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	var written []string
	for _, part := range []struct {
		family   Family
		prefixes []string
	}{
		{FamilyIPv4, listing.IPv4},
		{FamilyIPv6, listing.IPv6},
	} {
		if len(part.prefixes) == 0 {
			continue
		}
		path := RouteListPath(dir, listing.ASN, part.family)
		if err := WriteRouteList(path, header(part.family), part.prefixes); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
