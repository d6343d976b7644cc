// Package metrics holds the process registry and the counters shared by the
// site and web daemon.
package metrics

import gethmetrics "github.com/ethereum/go-ethereum/metrics"

func init() {
	gethmetrics.Enabled = true
}

// Registry is where every trailmap metric lives.
var Registry = gethmetrics.NewRegistry()

var (
	TrackImports  = GetOrRegisterCounter("post/track/imports")
	PhotoImports  = GetOrRegisterCounter("post/photos/imports")
	ImportErrors  = GetOrRegisterCounter("post/import/errors")
	OutputHits    = GetOrRegisterCounter("cache/output/hits")
	OutputMisses  = GetOrRegisterCounter("cache/output/misses")
	TrackLRUHits  = GetOrRegisterCounter("cache/tracks/hits")
	RenderTimer   = GetOrRegisterTimer("render/duration")
	RequestsMeter = GetOrRegisterMeter("webd/requests")
)

// GetOrRegisterCounter ensures metrics.Enabled is set before the counter is
// made, otherwise it would be a no-op.
func GetOrRegisterCounter(name string) gethmetrics.Counter {
	gethmetrics.Enabled = true
	return gethmetrics.GetOrRegisterCounter(name, Registry)
}

func GetOrRegisterTimer(name string) gethmetrics.Timer {
	gethmetrics.Enabled = true
	return gethmetrics.GetOrRegisterTimer(name, Registry)
}

func GetOrRegisterMeter(name string) gethmetrics.Meter {
	gethmetrics.Enabled = true
	return gethmetrics.GetOrRegisterMeter(name, Registry)
}

// Snapshot flattens the registry for JSON. Timer durations are
// milliseconds.
func Snapshot() map[string]any {
	out := map[string]any{}
	Registry.Each(func(name string, m interface{}) {
		switch m := m.(type) {
		case gethmetrics.Timer:
			s := m.Snapshot()
			out[name] = map[string]any{
				"count":   s.Count(),
				"mean_ms": s.Mean() / 1e6,
				"max_ms":  float64(s.Max()) / 1e6,
			}
		case gethmetrics.Meter:
			s := m.Snapshot()
			out[name] = map[string]any{
				"count": s.Count(),
				"rate1": s.Rate1(),
			}
		case gethmetrics.Counter:
			out[name] = m.Snapshot().Count()
		}
	})
	return out
}
