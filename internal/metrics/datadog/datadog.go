// Package datadog implements a Datadog backend for the internal/metrics
// package.
//
// The backend buffers metrics in memory, flushes on a ticker (default once
// per minute) and flushes one final time on Close. This gives long pipeline
// runs an actual time series instead of a single spike at exit, while still
// covering short-lived commands.
//
// Concurrency model:
//   - pipeline goroutines call IncCounter/ObserveDuration at any time
//   - Flush snapshots+resets buffers under a mutex, then submits out-of-lock
//   - the flush loop calls Flush() periodically; Close() stops the loop
package datadog

import (
	"context"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	dd "github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"

	"salesdw/internal/metrics"
)

// Options controls Datadog backend configuration.
type Options struct {
	// JobName becomes tag "job:<name>" on every metric. Defaults to
	// "salesdw".
	JobName string

	// Tags are extra Datadog tags (e.g. []string{"env:dev"}).
	Tags []string

	// FlushEvery controls how often buffered metrics are submitted.
	// If <= 0, defaults to 60 seconds.
	FlushEvery time.Duration

	// Unexported test seams: production code never sets these; unit tests
	// use them to avoid real network submission and nondeterministic
	// clocks/tickers.
	now       func() time.Time
	newTicker func(d time.Duration) *time.Ticker
	submitter metricsSubmitter
}

// metricsSubmitter is the minimal interface needed to submit metrics. The
// Datadog SDK exposes a concrete *datadogV2.MetricsApi; depending on this
// interface instead enables deterministic tests with a fake submitter.
type metricsSubmitter interface {
	SubmitMetrics(ctx context.Context, body datadogV2.MetricPayload, params ...datadogV2.SubmitMetricsOptionalParameters) (datadogV2.IntakePayloadAccepted, *http.Response, error)
}

// counterEntry is one buffered counter series.
type counterEntry struct {
	name  string
	tags  []string
	value float64
}

// sampleEntry is one buffered duration-sample series.
type sampleEntry struct {
	name    string
	tags    []string
	samples []float64
}

// Backend implements metrics.Backend for Datadog.
type Backend struct {
	api metricsSubmitter
	ctx context.Context

	flushEvery time.Duration
	stopCh     chan struct{}
	doneCh     chan struct{}

	baseTags []string

	now       func() time.Time
	newTicker func(d time.Duration) *time.Ticker

	mu       sync.Mutex
	counters map[string]*counterEntry
	samples  map[string]*sampleEntry
}

var _ metrics.Backend = (*Backend)(nil)

// NewBackend constructs a Datadog backend using the official client and
// starts its periodic flush loop.
//
// Edge cases:
//   - If opts.FlushEvery <= 0, defaults to 60s.
//   - If opts.JobName is empty, defaults to "salesdw".
//   - Environment tag selection uses ENV then DD_ENV, otherwise env:unknown.
//
// Network errors surface from Flush(), not from construction.
func NewBackend(parent context.Context, opts Options) (*Backend, error) {
	job := opts.JobName
	if job == "" {
		job = "salesdw"
	}

	flushEvery := opts.FlushEvery
	if flushEvery <= 0 {
		flushEvery = 60 * time.Second
	}

	baseTags := make([]string, 0, 2+len(opts.Tags))
	baseTags = append(baseTags, resolveEnvTag(), "job:"+job)
	baseTags = append(baseTags, opts.Tags...)

	nowFn := opts.now
	if nowFn == nil {
		nowFn = time.Now
	}
	newTicker := opts.newTicker
	if newTicker == nil {
		newTicker = time.NewTicker
	}

	submitter := opts.submitter
	if submitter == nil {
		client := dd.NewAPIClient(dd.NewConfiguration())
		submitter = datadogV2.NewMetricsApi(client)
	}

	b := &Backend{
		api:        submitter,
		ctx:        dd.NewDefaultContext(parent),
		flushEvery: flushEvery,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
		baseTags:   baseTags,
		now:        nowFn,
		newTicker:  newTicker,
		counters:   make(map[string]*counterEntry),
		samples:    make(map[string]*sampleEntry),
	}

	go b.loop()
	return b, nil
}

func resolveEnvTag() string {
	if v := strings.TrimSpace(os.Getenv("ENV")); v != "" {
		return "env:" + v
	}
	if v := strings.TrimSpace(os.Getenv("DD_ENV")); v != "" {
		return "env:" + v
	}
	return "env:unknown"
}

func (b *Backend) loop() {
	defer close(b.doneCh)

	t := b.newTicker(b.flushEvery)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			_ = b.Flush()
		case <-b.stopCh:
			return
		}
	}
}

// Close stops the background flush loop and performs one final Flush().
// Close is "call once": a second call panics on the closed stop channel,
// which is acceptable for a process-lifetime backend.
func (b *Backend) Close() error {
	close(b.stopCh)
	<-b.doneCh
	return b.Flush()
}

// IncCounter implements metrics.Backend.
func (b *Backend) IncCounter(name string, delta float64, tags ...string) {
	if delta <= 0 {
		return
	}

	k := seriesKey(name, tags)

	b.mu.Lock()
	defer b.mu.Unlock()

	e := b.counters[k]
	if e == nil {
		e = &counterEntry{name: name, tags: append([]string(nil), tags...)}
		b.counters[k] = e
	}
	e.value += delta
}

// ObserveDuration implements metrics.Backend.
func (b *Backend) ObserveDuration(name string, d time.Duration, tags ...string) {
	if d < 0 {
		return
	}

	k := seriesKey(name, tags)

	b.mu.Lock()
	defer b.mu.Unlock()

	e := b.samples[k]
	if e == nil {
		e = &sampleEntry{name: name, tags: append([]string(nil), tags...)}
		b.samples[k] = e
	}
	e.samples = append(e.samples, d.Seconds())
}

// snapshotAndReset grabs buffered metrics and resets internal buffers so
// Flush can build the payload and submit out-of-lock.
func (b *Backend) snapshotAndReset() (map[string]*counterEntry, map[string]*sampleEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	counters, samples := b.counters, b.samples
	b.counters = make(map[string]*counterEntry)
	b.samples = make(map[string]*sampleEntry)
	return counters, samples
}

// Flush submits buffered metrics to Datadog and resets local buffers.
//
// Buffers are reset even if submission fails, to keep the pipeline fast and
// avoid blocking future writes.
func (b *Backend) Flush() error {
	counters, samples := b.snapshotAndReset()
	if len(counters) == 0 && len(samples) == 0 {
		return nil
	}

	series := b.buildSeries(counters, samples, b.now().Unix())
	if len(series) == 0 {
		return nil
	}

	payload := datadogV2.MetricPayload{Series: series}
	_, _, err := b.api.SubmitMetrics(b.ctx, payload, *datadogV2.NewSubmitMetricsOptionalParameters())
	return err
}

// buildSeries constructs Datadog series at a fixed timestamp. It is pure (no
// locks, no network, no clocks), which keeps naming/tagging behavior easy to
// unit test.
func (b *Backend) buildSeries(counters map[string]*counterEntry, samples map[string]*sampleEntry, nowUnix int64) []datadogV2.MetricSeries {
	series := make([]datadogV2.MetricSeries, 0, len(counters)+6*len(samples))

	keys := make([]string, 0, len(counters))
	for k := range counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e := counters[k]
		if e.value == 0 {
			continue
		}
		series = append(series, countSeries("salesdw."+e.name, e.value, withTags(b.baseTags, e.tags...), nowUnix))
	}

	keys = keys[:0]
	for k := range samples {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e := samples[k]
		if len(e.samples) == 0 {
			continue
		}
		cp := append([]float64(nil), e.samples...)
		sort.Float64s(cp)

		tags := withTags(b.baseTags, e.tags...)
		prefix := "salesdw." + e.name
		series = append(series, gaugeSeries(prefix+".p50", percentileNearestRank(cp, 0.50), tags, nowUnix))
		series = append(series, gaugeSeries(prefix+".p90", percentileNearestRank(cp, 0.90), tags, nowUnix))
		series = append(series, gaugeSeries(prefix+".p95", percentileNearestRank(cp, 0.95), tags, nowUnix))
		series = append(series, gaugeSeries(prefix+".max", cp[len(cp)-1], tags, nowUnix))
		series = append(series, gaugeSeries(prefix+".samples", float64(len(cp)), tags, nowUnix))
	}

	return series
}

func countSeries(metric string, value float64, tags []string, nowUnix int64) datadogV2.MetricSeries {
	return datadogV2.MetricSeries{
		Metric: metric,
		Type:   datadogV2.METRICINTAKETYPE_COUNT.Ptr(),
		Points: []datadogV2.MetricPoint{
			{Timestamp: dd.PtrInt64(nowUnix), Value: dd.PtrFloat64(value)},
		},
		Tags: tags,
	}
}

func gaugeSeries(metric string, value float64, tags []string, nowUnix int64) datadogV2.MetricSeries {
	return datadogV2.MetricSeries{
		Metric: metric,
		Type:   datadogV2.METRICINTAKETYPE_GAUGE.Ptr(),
		Points: []datadogV2.MetricPoint{
			{Timestamp: dd.PtrInt64(nowUnix), Value: dd.PtrFloat64(value)},
		},
		Tags: tags,
	}
}

func seriesKey(name string, tags []string) string {
	if len(tags) == 0 {
		return name
	}
	cp := append([]string(nil), tags...)
	sort.Strings(cp)
	return name + "\x00" + strings.Join(cp, "\x00")
}

func withTags(base []string, extras ...string) []string {
	out := make([]string, 0, len(base)+len(extras))
	out = append(out, base...)
	out = append(out, extras...)
	return out
}

func percentileNearestRank(s []float64, p float64) float64 {
	n := len(s)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return s[0]
	}
	if p >= 1 {
		return s[n-1]
	}
	idx := int(p*float64(n-1) + 0.5)
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return s[idx]
}

// ParseTagsCSV parses comma-separated tags like "env:prod,service:salesdw".
func ParseTagsCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
