package metrics

import (
	"time"

	"github.com/KincaidYang/asn_cidr/prefix_tools"
	"github.com/KincaidYang/asn_cidr/utils"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "asn_cidr"

// Job names used for the job label
const (
	JobExtract = "extract_asn"
	JobFetch   = "fetch_asn"
	JobReadme  = "generate_readme"
)

// Recorder holds the collectors of one batch job on a private registry.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	job           string
	registry      *prometheus.Registry
	runs          *prometheus.CounterVec
	prefixes      *prometheus.GaugeVec
	fetchDuration prometheus.Histogram
	rowsMatched   prometheus.Gauge
}

// NewRecorder creates the collectors for job and registers them
func NewRecorder(job string) *Recorder {
	r := &Recorder{
		job:      job,
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Job runs by outcome.",
		}, []string{"job", "result"}),
		prefixes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "prefixes",
			Help:      "Prefixes written for an ASN by address family.",
		}, []string{"asn", "family"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of the bgp.he.net page request, including the pre-request pause.",
			Buckets:   []float64{0.5, 1, 2, 3, 5, 8, 13, 21, 34},
		}),
		rowsMatched: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_rows_matched",
			Help:      "Snapshot rows matching the requested ASN in the last run.",
		}),
	}

	r.registry.MustRegister(r.runs, r.prefixes)
	switch job {
	case JobFetch:
		r.registry.MustRegister(r.fetchDuration)
	case JobExtract:
		r.registry.MustRegister(r.rowsMatched)
	}
	return r
}

// Registry returns the registry the collectors are registered on
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveRun counts one run with its result kind
func (r *Recorder) ObserveRun(result utils.Result) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(r.job, result.Kind.String()).Inc()
}

// SetPrefixes records the per-family prefix counts of a listing
func (r *Recorder) SetPrefixes(listing prefix_tools.Listing) {
	if r == nil {
		return
	}
	r.prefixes.WithLabelValues(listing.ASN, string(prefix_tools.FamilyIPv4)).Set(float64(len(listing.IPv4)))
	r.prefixes.WithLabelValues(listing.ASN, string(prefix_tools.FamilyIPv6)).Set(float64(len(listing.IPv6)))
}

// ObserveFetch records how long the page request took
func (r *Recorder) ObserveFetch(d time.Duration) {
	if r == nil {
		return
	}
	r.fetchDuration.Observe(d.Seconds())
}

// SetRowsMatched records the number of snapshot rows kept by the filter
func (r *Recorder) SetRowsMatched(n int) {
	if r == nil {
		return
	}
	r.rowsMatched.Set(float64(n))
}

// WriteTextfile writes the registry in the text exposition format for the node exporter
// textfile collector. An empty path does nothing.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
