package snapshot_tools

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const sampleSnapshot = `network,country,country_code,continent,continent_code,asn,as_name,as_domain
8.8.8.0/24,United States,US,North America,NA,AS15169,Google LLC,google.com
1.1.1.0/24,Australia,AU,Oceania,OC,AS13335,"Cloudflare, Inc.",cloudflare.com
2001:4860::/32,United States,US,North America,NA,AS15169,Google LLC,google.com
8.8.4.0/24,United States,US,North America,NA,AS15169,Google LLC,google.com
9.9.9.9,Switzerland,CH,Europe,EU,AS151690,Example,example.com
`

func TestFilter(t *testing.T) {
	rows, err := Filter(strings.NewReader(sampleSnapshot), "AS15169")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"8.8.8.0/24", "2001:4860::/32", "8.8.4.0/24"}
	if got := Networks(rows); !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}
	for _, row := range rows {
		if row.ASN != "AS15169" {
			t.Errorf("row with wrong ASN returned: %+v", row)
		}
	}
}

func TestFilterIgnoresRowOrder(t *testing.T) {
	lines := strings.Split(strings.TrimSpace(sampleSnapshot), "\n")
	header, body := lines[0], lines[1:]

	reversed := []string{header}
	for i := len(body) - 1; i >= 0; i-- {
		reversed = append(reversed, body[i])
	}

	rows, err := Filter(strings.NewReader(strings.Join(reversed, "\n")), "AS15169")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("expected 3 rows, got %d", len(rows))
	}
}

func TestFilterNoMatch(t *testing.T) {
	rows, err := Filter(strings.NewReader(sampleSnapshot), "AS64512")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %v", rows)
	}
}

func TestFilterWithBOM(t *testing.T) {
	input := "\ufeffnetwork,asn\n10.0.0.0/8,AS1\n"
	rows, err := Filter(strings.NewReader(input), "AS1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].Network != "10.0.0.0/8" {
		t.Errorf("unexpected rows: %v", rows)
	}
}

func TestFilterMissingColumns(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no asn column", "network,country\n1.1.1.0/24,AU\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Filter(strings.NewReader(tt.input), "AS1"); !errors.Is(err, ErrMissingColumns) {
				t.Errorf("expected ErrMissingColumns, got %v", err)
			}
		})
	}
}

func TestFilterFileMissing(t *testing.T) {
	_, err := FilterFile(filepath.Join(t.TempDir(), "ipinfo_lite.csv"), "AS1")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestDownload(t *testing.T) {
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	zw.Write([]byte(sampleSnapshot))
	zw.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ipinfo_lite.csv":
			w.Write([]byte(sampleSnapshot))
		case "/ipinfo_lite.csv.gz":
			w.Write(gz.Bytes())
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	tests := []struct {
		name string
		url  string
	}{
		{"plain", server.URL + "/ipinfo_lite.csv"},
		{"gzipped", server.URL + "/ipinfo_lite.csv.gz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "ipinfo_lite.csv")
			if err := NewDownloader("asn_cidr-test").Download(context.Background(), tt.url, path); err != nil {
				t.Fatalf("Download returned error: %v", err)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("snapshot not written: %v", err)
			}
			if string(data) != sampleSnapshot {
				t.Errorf("unexpected snapshot content: %q", string(data))
			}
			if _, err := os.Stat(path + ".gz"); !os.IsNotExist(err) {
				t.Errorf("expected the compressed download to be removed, stat error: %v", err)
			}
		})
	}
}

func TestDownloadNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	path := filepath.Join(t.TempDir(), "ipinfo_lite.csv")
	if err := NewDownloader("").Download(context.Background(), server.URL+"/missing.csv", path); err == nil {
		t.Fatal("expected an error for a 404 download")
	}
}
