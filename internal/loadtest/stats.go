package loadtest

import (
	"sort"
	"time"
)

// Stats are the samples of one task or request name.
type Stats struct {
	Name      string
	Count     int
	Failures  int
	Durations []time.Duration
	// Reasons counts every distinct failure reason.
	Reasons map[string]int

	total time.Duration
	min   time.Duration
	max   time.Duration
}

func NewStats(name string) *Stats {
	return &Stats{
		Name:      name,
		Durations: make([]time.Duration, 0, 256),
		Reasons:   make(map[string]int),
		min:       -1,
		max:       -1,
	}
}

// Add records a sample, `failure` is empty if it succeeded.
func (s *Stats) Add(duration time.Duration, failure string) {
	s.Count++
	s.total += duration
	s.Durations = append(s.Durations, duration)

	if failure != "" {
		s.Failures++
		s.Reasons[failure]++
	}

	if s.min == -1 || duration < s.min {
		s.min = duration
	}
	if s.max == -1 || duration > s.max {
		s.max = duration
	}
}

// Merge adds every sample of other to s.
func (s *Stats) Merge(other *Stats) {
	for _, d := range other.Durations {
		s.Add(d, "")
	}
	s.Failures += other.Failures
	for reason, n := range other.Reasons {
		s.Reasons[reason] += n
	}
}

func (s *Stats) Avg() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.total / time.Duration(s.Count)
}

func (s *Stats) Min() time.Duration {
	if s.min == -1 {
		return 0
	}
	return s.min
}

func (s *Stats) Max() time.Duration {
	if s.max == -1 {
		return 0
	}
	return s.max
}

// Percentile interpolates linearly between the two closest samples, p is between 0 and 100.
func (s *Stats) Percentile(p float64) time.Duration {
	if len(s.Durations) == 0 {
		return 0
	}

	sorted := make([]time.Duration, len(s.Durations))
	copy(sorted, s.Durations)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	index := (p / 100.0) * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return time.Duration(float64(sorted[lower])*(1-weight) + float64(sorted[upper])*weight)
}

func (s *Stats) P50() time.Duration {
	return s.Percentile(50)
}

func (s *Stats) P95() time.Duration {
	return s.Percentile(95)
}

func (s *Stats) P99() time.Duration {
	return s.Percentile(99)
}

// PerSecond is the throughput of this name over a run that lasted `elapsed`.
func (s *Stats) PerSecond(elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(s.Count) / elapsed.Seconds()
}

func (s *Stats) FailureRate() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Failures) / float64(s.Count) * 100
}

// statsTable keeps stats by name, it is only touched by the collector goroutine.
type statsTable map[string]*Stats

func (t statsTable) add(name string, duration time.Duration, failure string) {
	stats, ok := t[name]
	if !ok {
		stats = NewStats(name)
		t[name] = stats
	}
	stats.Add(duration, failure)
}

func (t statsTable) sorted() []*Stats {
	out := make([]*Stats, 0, len(t))
	for _, stats := range t {
		out = append(out, stats)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

func (t statsTable) aggregate(name string) *Stats {
	total := NewStats(name)
	for _, stats := range t.sorted() {
		total.Merge(stats)
	}
	return total
}
