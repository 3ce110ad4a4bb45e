package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/KincaidYang/asn_cidr/prefix_tools"
	"github.com/KincaidYang/asn_cidr/utils"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRun(t *testing.T) {
	r := NewRecorder(JobFetch)
	r.ObserveRun(utils.Ok("done"))
	r.ObserveRun(utils.Err(utils.ErrorKindAccessDenied, errors.New("403")))
	r.ObserveRun(utils.Err(utils.ErrorKindAccessDenied, errors.New("403")))

	if got := testutil.ToFloat64(r.runs.WithLabelValues(JobFetch, "ok")); got != 1 {
		t.Errorf("expected 1 ok run, got %v", got)
	}
	if got := testutil.ToFloat64(r.runs.WithLabelValues(JobFetch, "access_denied")); got != 2 {
		t.Errorf("expected 2 access_denied runs, got %v", got)
	}
}

func TestSetPrefixes(t *testing.T) {
	r := NewRecorder(JobExtract)
	r.SetPrefixes(prefix_tools.Listing{
		ASN:  "AS15169",
		IPv4: []string{"8.8.8.0/24", "8.8.4.0/24"},
	})
	r.SetRowsMatched(2)

	if got := testutil.ToFloat64(r.prefixes.WithLabelValues("AS15169", "IPv4")); got != 2 {
		t.Errorf("expected 2 IPv4 prefixes, got %v", got)
	}
	if got := testutil.ToFloat64(r.prefixes.WithLabelValues("AS15169", "IPv6")); got != 0 {
		t.Errorf("expected 0 IPv6 prefixes, got %v", got)
	}
	if got := testutil.ToFloat64(r.rowsMatched); got != 2 {
		t.Errorf("expected 2 matched rows, got %v", got)
	}
}

func TestJobSpecificCollectors(t *testing.T) {
	tests := []struct {
		job      string
		expected int
	}{
		{JobExtract, 3}, // runs, prefixes, rows matched
		{JobFetch, 3},   // runs, prefixes, fetch duration
		{JobReadme, 2},
	}

	for _, tt := range tests {
		t.Run(tt.job, func(t *testing.T) {
			r := NewRecorder(tt.job)
			r.ObserveRun(utils.Ok(""))
			r.SetPrefixes(prefix_tools.Listing{ASN: "AS1"})
			r.ObserveFetch(time.Second)
			r.SetRowsMatched(1)

			families, err := r.Registry().Gather()
			if err != nil {
				t.Fatalf("Gather returned error: %v", err)
			}
			if len(families) != tt.expected {
				t.Errorf("expected %d metric families, got %d", tt.expected, len(families))
			}
		})
	}
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder(JobFetch)
	r.ObserveRun(utils.Ok(""))
	r.ObserveFetch(3 * time.Second)

	path := filepath.Join(t.TempDir(), "asn_cidr.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("textfile not written: %v", err)
	}
	for _, want := range []string{
		`asn_cidr_runs_total{job="fetch_asn",result="ok"} 1`,
		"asn_cidr_fetch_duration_seconds_count 1",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("textfile is missing %q:\n%s", want, data)
		}
	}
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.ObserveRun(utils.Ok(""))
	r.SetPrefixes(prefix_tools.Listing{ASN: "AS1"})
	r.ObserveFetch(time.Second)
	r.SetRowsMatched(1)
	if err := r.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Errorf("nil recorder returned error: %v", err)
	}
}
