package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Probe checks one dependency. It must respect ctx and return quickly; the
// reporter applies a per-probe timeout.
type Probe func(ctx context.Context) error

// Reporter aggregates named dependency probes into one health report for
// readiness endpoints and monitoring.
type Reporter struct {
	mu      sync.Mutex
	probes  map[string]Probe
	timeout time.Duration
}

func NewReporter(timeout time.Duration) *Reporter {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Reporter{probes: make(map[string]Probe), timeout: timeout}
}

func (r *Reporter) Register(name string, p Probe) {
	r.mu.Lock()
	r.probes[name] = p
	r.mu.Unlock()
}

type CheckResult struct {
	Name    string        `json:"name"`
	Healthy bool          `json:"healthy"`
	Error   string        `json:"error,omitempty"`
	Latency time.Duration `json:"latency"`
}

type Report struct {
	Healthy bool          `json:"healthy"`
	Checks  []CheckResult `json:"checks"`
}

// Check runs all probes concurrently and reports per-dependency results in
// name order. The report is healthy only if every probe passed.
func (r *Reporter) Check(ctx context.Context) Report {
	r.mu.Lock()
	probes := make(map[string]Probe, len(r.probes))
	for name, p := range r.probes {
		probes[name] = p
	}
	r.mu.Unlock()

	var wg sync.WaitGroup
	var mu sync.Mutex
	results := make([]CheckResult, 0, len(probes))

	for name, p := range probes {
		wg.Add(1)
		go func(name string, p Probe) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()

			start := time.Now()
			err := p(pctx)
			res := CheckResult{
				Name:    name,
				Healthy: err == nil,
				Latency: time.Since(start),
			}
			if err != nil {
				res.Error = err.Error()
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}(name, p)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	report := Report{Healthy: true, Checks: results}
	for _, res := range results {
		if !res.Healthy {
			report.Healthy = false
		}
	}
	return report
}
