package loadtest

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Report is the outcome of a run, stats are sorted by name.
type Report struct {
	Started  time.Time
	Elapsed  time.Duration
	Users    int
	Tasks    []*Stats
	Requests []*Stats
	// Total aggregates every request.
	Total *Stats
}

func newTable(out io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	t.SetTitle(title)
	return t
}

func ms(d time.Duration) string {
	return fmt.Sprintf("%.1f", float64(d.Microseconds())/1000)
}

var statsHeader = table.Row{"Name", "# reqs", "# fails", "Avg (ms)", "Min (ms)", "Max (ms)", "p50", "p95", "p99", "req/s"}

func (r Report) statsRow(s *Stats) table.Row {
	return table.Row{
		s.Name,
		s.Count,
		fmt.Sprintf("%d (%.1f%%)", s.Failures, s.FailureRate()),
		ms(s.Avg()),
		ms(s.Min()),
		ms(s.Max()),
		ms(s.P50()),
		ms(s.P95()),
		ms(s.P99()),
		fmt.Sprintf("%.2f", s.PerSecond(r.Elapsed)),
	}
}

func rightAligned(from, to int) []table.ColumnConfig {
	var configs []table.ColumnConfig
	for i := from; i <= to; i++ {
		configs = append(configs, table.ColumnConfig{Number: i, Align: text.AlignRight})
	}
	return configs
}

// Render writes the task, request and failure tables.
func (r Report) Render(out io.Writer) {
	fmt.Fprintf(out, "%d users ran for %s\n", r.Users, r.Elapsed.Round(time.Millisecond))

	tasks := newTable(out, "Tasks")
	tasks.AppendHeader(statsHeader)
	for _, s := range r.Tasks {
		tasks.AppendRow(r.statsRow(s))
	}
	tasks.SetColumnConfigs(rightAligned(2, len(statsHeader)))
	tasks.Render()

	requests := newTable(out, "Requests")
	requests.AppendHeader(statsHeader)
	for _, s := range r.Requests {
		requests.AppendRow(r.statsRow(s))
	}
	if r.Total != nil {
		requests.AppendFooter(r.statsRow(r.Total))
	}
	requests.SetColumnConfigs(rightAligned(2, len(statsHeader)))
	requests.Render()

	failures := r.Failures()
	if len(failures) == 0 {
		return
	}
	errs := newTable(out, "Failures")
	errs.AppendHeader(table.Row{"Name", "Reason", "#"})
	for _, f := range failures {
		errs.AppendRow(table.Row{f.Name, f.Reason, f.Count})
	}
	errs.Render()
}

type FailureCount struct {
	Name   string
	Reason string
	Count  int
}

// Failures lists the failure reasons of every task, most frequent first.
func (r Report) Failures() []FailureCount {
	var out []FailureCount
	for _, s := range r.Tasks {
		for reason, count := range s.Reasons {
			out = append(out, FailureCount{Name: s.Name, Reason: reason, Count: count})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Reason < out[j].Reason
	})
	return out
}
