package handle_resources

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/KincaidYang/asn_cidr/metrics"
	"github.com/KincaidYang/asn_cidr/prefix_tools"
	"github.com/KincaidYang/asn_cidr/snapshot_tools"
	"github.com/KincaidYang/asn_cidr/utils"
)

// Extractor exports the prefixes of one ASN from a local CSV snapshot
type Extractor struct {
	SnapshotPath string
	// SnapshotURL is downloaded to SnapshotPath when the snapshot is missing. Empty disables downloading.
	SnapshotURL string
	OutputDir   string
	Downloader  *snapshot_tools.Downloader
	Metrics     *metrics.Recorder
}

// Extract filters the snapshot for rawASN and writes its route lists.
// A missing snapshot is an InputNotFound error; no matching row is a success with no output.
func (e *Extractor) Extract(ctx context.Context, rawASN string) (result utils.Result) {
	defer func() { e.Metrics.ObserveRun(result) }()

	if strings.TrimSpace(rawASN) == "" {
		return utils.Err(utils.ErrorKindInvalidInput, errors.New("empty ASN"))
	}
	asn := utils.NormalizeASN(rawASN)
	if !utils.IsASN(asn) {
		log.Printf("⚠ %s does not look like an AS number\n", asn)
	}

	if err := e.ensureSnapshot(ctx); err != nil {
		log.Printf("⚠ %v\n", err)
		return utils.Err(utils.ErrorKindInputNotFound, err)
	}

	log.Printf("Reading %s for %s\n", e.SnapshotPath, asn)
	rows, err := snapshot_tools.FilterFile(e.SnapshotPath, asn)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("snapshot %s not found", e.SnapshotPath)
			log.Printf("⚠ %v\n", err)
			return utils.Err(utils.ErrorKindInputNotFound, err)
		}
		log.Printf("⚠ %v\n", err)
		return utils.Err(utils.ErrorKindInvalidInput, err)
	}
	e.Metrics.SetRowsMatched(len(rows))

	if len(rows) == 0 {
		log.Printf("No records found for %s\n", asn)
		return utils.Ok("no records found for %s", asn)
	}

	v4, v6 := prefix_tools.Partition(snapshot_tools.Networks(rows))
	listing := prefix_tools.Listing{ASN: asn, IPv4: v4, IPv6: v6}

	written, err := prefix_tools.WriteListing(e.OutputDir, listing, prefix_tools.SnapshotHeader(asn))
	logWritten(written)
	if err != nil {
		log.Printf("⚠ %v\n", err)
		return utils.Err(utils.ErrorKindPersistence, err)
	}
	logEmptyFamilies(e.OutputDir, listing)
	e.Metrics.SetPrefixes(listing)

	return utils.Ok("%s: %d IPv4 and %d IPv6 prefixes exported", asn, len(v4), len(v6))
}

// ensureSnapshot downloads the snapshot when it is missing and a URL is configured
func (e *Extractor) ensureSnapshot(ctx context.Context) error {
	if _, err := os.Stat(e.SnapshotPath); err == nil || !errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if e.SnapshotURL == "" || e.Downloader == nil {
		return fmt.Errorf("snapshot %s not found", e.SnapshotPath)
	}

	log.Printf("Snapshot %s not found, downloading it\n", e.SnapshotPath)
	if err := e.Downloader.Download(ctx, e.SnapshotURL, e.SnapshotPath); err != nil {
		return fmt.Errorf("snapshot %s not found and could not be downloaded: %w", e.SnapshotPath, err)
	}
	return nil
}

func logWritten(paths []string) {
	for _, path := range paths {
		log.Printf("✓ Saved %s\n", path)
	}
}

// logEmptyFamilies reports the families that produced no file
func logEmptyFamilies(dir string, listing prefix_tools.Listing) {
	if len(listing.IPv4) == 0 {
		log.Printf("No IPv4 prefixes for %s, %s left untouched\n", listing.ASN, prefix_tools.RouteListPath(dir, listing.ASN, prefix_tools.FamilyIPv4))
	}
	if len(listing.IPv6) == 0 {
		log.Printf("No IPv6 prefixes for %s, %s left untouched\n", listing.ASN, prefix_tools.RouteListPath(dir, listing.ASN, prefix_tools.FamilyIPv6))
	}
}
