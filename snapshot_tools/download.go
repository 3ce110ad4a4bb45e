package snapshot_tools

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cavaliergopher/grab/v3"
)

// Downloader fetches a snapshot file over HTTP
type Downloader struct {
	client           *grab.Client
	progressInterval time.Duration
}

// NewDownloader creates a downloader on a grab client with the given user agent
func NewDownloader(userAgent string) *Downloader {
	client := grab.NewClient()
	if userAgent != "" {
		client.UserAgent = userAgent
	}
	return &Downloader{
		client:           client,
		progressInterval: 2 * time.Second,
	}
}

// Download saves url to path. A URL ending in ".gz" is fetched next to path and decompressed into it.
func (d *Downloader) Download(ctx context.Context, url, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	target := path
	gzipped := strings.HasSuffix(strings.ToLower(url), ".gz")
	if gzipped {
		target = path + ".gz"
	}

	req, err := grab.NewRequest(target, url)
	if err != nil {
		return fmt.Errorf("invalid snapshot URL %s: %w", url, err)
	}
	req = req.WithContext(ctx)

	log.Printf("Downloading snapshot %s\n", url)
	resp := d.client.Do(req)

	ticker := time.NewTicker(d.progressInterval)
	defer ticker.Stop()
loop:
	for {
		select {
		case <-ticker.C:
			log.Printf("Downloading snapshot... %.2f%%\n", 100*resp.Progress())
		case <-resp.Done:
			break loop
		}
	}

	if err := resp.Err(); err != nil {
		return fmt.Errorf("failed to download snapshot: %w", err)
	}
	log.Printf("✓ Snapshot downloaded to %s (%d bytes)\n", resp.Filename, resp.BytesComplete())

	if gzipped {
		if err := gunzipFile(resp.Filename, path); err != nil {
			return err
		}
		os.Remove(resp.Filename)
	}
	return nil
}

// gunzipFile decompresses source into destination
func gunzipFile(source, destination string) error {
	gzippedFile, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", source, err)
	}
	defer gzippedFile.Close()

	gzipReader, err := gzip.NewReader(gzippedFile)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gzipReader.Close()

	out, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destination, err)
	}
	if _, err := io.Copy(out, gzipReader); err != nil {
		out.Close()
		return fmt.Errorf("failed to decompress %s: %w", source, err)
	}
	return out.Close()
}
