// Package stats provides a set of minimal metrics interfaces backed by
// go-metrics. We wrap go-metrics so instrument creation and rendering stay in
// one place and the dependency does not leak to anyone pulling in relocation
// as a library.
//
// Specifically, we provide the following:
// - A StatsReceiver object that can be passed down a call tree and scoped to each level.
// - Counter, Gauge and Latency instruments.
// - A registry that knows how to marshal all instruments to JSON.
//
// Original license: github.com/rcrowley/go-metrics/blob/master/LICENSE
package stats

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rcrowley/go-metrics"
)

// Stats users can either reference this global receiver or construct their own.
var CurrentStatsReceiver = NilStatsReceiver()

// Overridable instrument creation.
var NewCounter func() Counter = newMetricCounter
var NewGauge func() Gauge = newMetricGauge
var NewLatency func() Latency = newMetricLatency

// StatsRegistry is similar to the go-metrics registry but with most methods
// removed. The default implementation marshals all registered instruments.
type StatsRegistry interface {
	// Gets an existing instrument or registers the given one.
	// The interface can be the instrument to register if not found in registry,
	// or a function returning the instrument for lazy instantiation.
	GetOrRegister(string, interface{}) interface{}

	// Unregister the instrument with the given name.
	Unregister(string)

	// Call the given function for each registered instrument.
	Each(func(string, interface{}))
}

// A registry wrapper for metrics collected about the runtime behavior of the
// relocation service.
//
// Hierarchical names are stored using a '/' path separator. Variadic name
// elements passed to any method have '/' characters in their names replaced by
// the string "_SLASH_" before they are used internally. This is instead of
// failing, because counters can be dynamically generated (i.e. with error
// names), and it is better to strip the path elements than to panic.
type StatsReceiver interface {
	// Return a stats receiver that will automatically namespace elements with
	// the given scope args.
	//
	//   statsReceiver.Scope("foo", "bar").Counter("baz")  // is equivalent to
	//   statsReceiver.Counter("foo", "bar", "baz")
	//
	Scope(scope ...string) StatsReceiver

	// Provides an event counter.
	Counter(name ...string) Counter

	// Provides a gauge, which holds an int64 value that can be set arbitrarily.
	Gauge(name ...string) Gauge

	// Provides a latency instrument to record callsite latency.
	Latency(name ...string) Latency

	// Removes the given named stats item if it exists.
	Remove(name ...string)

	// Construct a JSON string by marshaling the registry.
	Render(pretty bool) []byte
}

// DefaultStatsReceiver is a small wrapper around the default registry.
func DefaultStatsReceiver() StatsReceiver {
	return NewCustomStatsReceiver(nil)
}

// Like DefaultStatsReceiver() but the registry factory is made explicit.
func NewCustomStatsReceiver(makeRegistry func() StatsRegistry) StatsReceiver {
	if makeRegistry == nil {
		makeRegistry = NewStatsRegistry
	}
	return &defaultStatsReceiver{registry: makeRegistry()}
}

type defaultStatsReceiver struct {
	registry StatsRegistry
	scope    []string
}

func (s *defaultStatsReceiver) Scope(scope ...string) StatsReceiver {
	return &defaultStatsReceiver{s.registry, s.scoped(scope...)}
}

func (s *defaultStatsReceiver) Counter(name ...string) Counter {
	return s.registry.GetOrRegister(s.scopedName(name...), NewCounter).(Counter)
}

func (s *defaultStatsReceiver) Gauge(name ...string) Gauge {
	return s.registry.GetOrRegister(s.scopedName(name...), NewGauge).(Gauge)
}

func (s *defaultStatsReceiver) Latency(name ...string) Latency {
	return s.registry.GetOrRegister(s.scopedName(name...), NewLatency).(Latency)
}

func (s *defaultStatsReceiver) Remove(name ...string) {
	s.registry.Unregister(s.scopedName(name...))
}

func (s *defaultStatsReceiver) Render(pretty bool) []byte {
	var err error
	var bytes []byte
	if mp, ok := s.registry.(json.Marshaler); ok && !pretty {
		bytes, err = mp.MarshalJSON()
	} else {
		bytes, err = json.MarshalIndent(s.registry, "", "  ")
	}
	if err != nil {
		panic("StatsRegistry bug, cannot be marshaled")
	}
	return bytes
}

// Append to existing scope and scrub slashes.
func (s *defaultStatsReceiver) scoped(scope ...string) []string {
	for i, sc := range scope {
		scope[i] = strings.Replace(sc, "/", "_SLASH_", -1)
	}
	return append(s.scope[:], scope...)
}

// Append to the existing scope and convert to slash-delimited string.
func (s *defaultStatsReceiver) scopedName(scope ...string) string {
	return strings.Join(s.scoped(scope...), "/")
}

// NilStatsReceiver ignores all stats operations.
func NilStatsReceiver(scope ...string) StatsReceiver {
	return &nilStatsReceiver{}
}

type nilStatsReceiver struct{}

func (s *nilStatsReceiver) Scope(scope ...string) StatsReceiver { return s }
func (s *nilStatsReceiver) Counter(name ...string) Counter {
	return &metricCounter{&metrics.NilCounter{}}
}
func (s *nilStatsReceiver) Gauge(name ...string) Gauge {
	return &metricGauge{&metrics.NilGauge{}}
}
func (s *nilStatsReceiver) Latency(name ...string) Latency { return &nilLatency{} }
func (s *nilStatsReceiver) Remove(name ...string)          {}
func (s *nilStatsReceiver) Render(pretty bool) []byte      { return []byte{} }

//
// Minimally mirror go-metrics instruments.
//

// Counter
type Counter interface {
	Clear()
	Count() int64
	Inc(int64)
}
type metricCounter struct{ metrics.Counter }

func newMetricCounter() Counter { return &metricCounter{metrics.NewCounter()} }

// Gauge
type Gauge interface {
	Update(int64)
	Value() int64
}
type metricGauge struct{ metrics.Gauge }

func newMetricGauge() Gauge { return &metricGauge{metrics.NewGauge()} }

// Latency. Default implementation uses a go-metrics histogram as its base.
type Latency interface {
	Time() Latency // returns self.
	Stop()
	Mean() float64
	Count() int64
}
type metricLatency struct {
	metrics.Histogram
	start time.Time
}

func (l *metricLatency) Time() Latency { l.start = time.Now(); return l }
func (l *metricLatency) Stop()         { l.Update(time.Since(l.start).Nanoseconds()) }
func newMetricLatency() Latency {
	return &metricLatency{Histogram: metrics.NewHistogram(metrics.NewUniformSample(1000))}
}

type nilLatency struct{}

func (l *nilLatency) Time() Latency { return l }
func (l *nilLatency) Stop()         {}
func (l *nilLatency) Mean() float64 { return 0 }
func (l *nilLatency) Count() int64  { return 0 }

//
// Default registry, JSON-marshalable.
//

// NewStatsRegistry creates a StatsRegistry that knows how to marshal counters,
// gauges and latency instruments.
func NewStatsRegistry() StatsRegistry {
	return &statsRegistry{instruments: map[string]interface{}{}}
}

type statsRegistry struct {
	mu          sync.Mutex
	instruments map[string]interface{}
}

func (r *statsRegistry) GetOrRegister(name string, i interface{}) interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.instruments[name]; ok {
		return existing
	}
	if maker, ok := i.(func() Counter); ok {
		i = maker()
	} else if maker, ok := i.(func() Gauge); ok {
		i = maker()
	} else if maker, ok := i.(func() Latency); ok {
		i = maker()
	}
	r.instruments[name] = i
	return i
}

func (r *statsRegistry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.instruments, name)
}

func (r *statsRegistry) Each(fn func(string, interface{})) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, i := range r.instruments {
		fn(name, i)
	}
}

// MarshalJSON returns a byte slice containing a JSON representation of all
// the instruments in the registry. Latency values are rendered in
// milliseconds.
func (r *statsRegistry) MarshalJSON() ([]byte, error) {
	data := map[string]interface{}{}
	r.Each(func(name string, i interface{}) {
		switch m := i.(type) {
		case Counter:
			data[name] = m.Count()
		case Gauge:
			data[name] = m.Value()
		case Latency:
			data[name+".avg_ms"] = m.Mean() / float64(time.Millisecond)
			data[name+".count"] = m.Count()
		}
	})
	return json.Marshal(data)
}
