package handle_resources

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"strings"
	"time"

	"github.com/KincaidYang/asn_cidr/he_tools"
	"github.com/KincaidYang/asn_cidr/metrics"
	"github.com/KincaidYang/asn_cidr/prefix_tools"
	"github.com/KincaidYang/asn_cidr/record_store"
	"github.com/KincaidYang/asn_cidr/utils"
)

// Fetcher exports the prefixes of one ASN from its bgp.he.net page and records the run in the store
type Fetcher struct {
	Client    *he_tools.Client
	Store     record_store.Store
	OutputDir string
	Metrics   *metrics.Recorder
	// Now returns the fetch time. Defaults to time.Now.
	Now func() time.Time
}

// Fetch queries bgp.he.net for rawASN, writes its route lists and upserts its record.
// A failed request writes nothing and leaves the store alone. A failed store write is logged only.
func (f *Fetcher) Fetch(ctx context.Context, rawASN string) (result utils.Result) {
	defer func() { f.Metrics.ObserveRun(result) }()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠ Fetch panicked: %v\n%s", r, debug.Stack())
			result = utils.Err(utils.ErrorKindInternal, fmt.Errorf("panic: %v", r))
		}
	}()

	if strings.TrimSpace(rawASN) == "" {
		return utils.Err(utils.ErrorKindInvalidInput, errors.New("empty ASN"))
	}
	asn := utils.NormalizeASN(rawASN)
	if !utils.IsASN(asn) {
		log.Printf("⚠ %s does not look like an AS number\n", asn)
	}

	start := time.Now()
	response, err := f.Client.QueryASN(ctx, asn)
	f.Metrics.ObserveFetch(time.Since(start))
	if err != nil {
		log.Printf("⚠ %s: %v\n", asn, err)
		return queryErrorResult(err)
	}

	page, err := he_tools.ParseASNPage(response)
	if err != nil {
		log.Printf("⚠ Failed to parse page for %s: %v\n", asn, err)
		return utils.Err(utils.ErrorKindParseAnomaly, err)
	}
	logPageAnomalies(asn, page.Title, page.HasIPv4Table, page.HasIPv6Table)

	listing := prefix_tools.Listing{
		ASN:  asn,
		Name: page.Name,
		IPv4: page.IPv4Prefixes,
		IPv6: page.IPv6Prefixes,
	}
	log.Printf("Found %d IPv4 and %d IPv6 prefixes for %s (%s)\n", len(listing.IPv4), len(listing.IPv6), asn, listing.Name)

	now := f.now().UTC()
	header := prefix_tools.WebHeader(asn, listing.Name, he_tools.SourceName, now)
	written, err := prefix_tools.WriteListing(f.OutputDir, listing, header)
	logWritten(written)
	if err != nil {
		log.Printf("⚠ %v\n", err)
		return utils.Err(utils.ErrorKindPersistence, err)
	}
	logEmptyFamilies(f.OutputDir, listing)
	f.Metrics.SetPrefixes(listing)

	record := record_store.ASNRecord{
		ASN:       asn,
		Name:      listing.Name,
		V4Count:   len(listing.IPv4),
		V6Count:   len(listing.IPv6),
		UpdatedAt: now.Format(prefix_tools.TimestampLayout),
	}
	if err := f.Store.Upsert(ctx, asn, record); err != nil {
		log.Printf("⚠ Failed to update record store for %s: %v\n", asn, err)
	} else {
		log.Printf("✓ Record store updated for %s\n", asn)
	}

	return utils.Ok("%s (%s): %d IPv4 and %d IPv6 prefixes fetched", asn, listing.Name, len(listing.IPv4), len(listing.IPv6))
}

func (f *Fetcher) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// queryErrorResult classifies a failed page request
func queryErrorResult(err error) utils.Result {
	var statusErr *he_tools.StatusError
	switch {
	case errors.Is(err, he_tools.ErrAccessDenied):
		return utils.Err(utils.ErrorKindAccessDenied, err)
	case errors.As(err, &statusErr):
		return utils.Err(utils.ErrorKindHTTP, err)
	default:
		return utils.Err(utils.ErrorKindHTTP, fmt.Errorf("request failed: %w", err))
	}
}

// logPageAnomalies reports missing page structure; none of it stops the run
func logPageAnomalies(asn, title string, hasIPv4Table, hasIPv6Table bool) {
	if title == "" {
		log.Printf("⚠ %s: page has no title, name set to %s\n", asn, he_tools.UnknownName)
	}
	if !hasIPv4Table {
		log.Printf("⚠ %s: IPv4 prefix table not found\n", asn)
	}
	if !hasIPv6Table {
		log.Printf("⚠ %s: IPv6 prefix table not found\n", asn)
	}
}
