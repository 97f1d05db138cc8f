package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metricDefinition struct {
	Name string
	Help string
	Type string
}

var definitions []metricDefinition

func newCounterVec(opts prometheus.CounterOpts, labelNames []string) *prometheus.CounterVec {
	definitions = append(definitions, metricDefinition{Name: opts.Name, Help: opts.Help, Type: "counter"})
	return promauto.NewCounterVec(opts, labelNames)
}

func newGauge(opts prometheus.GaugeOpts) prometheus.Gauge {
	definitions = append(definitions, metricDefinition{Name: opts.Name, Help: opts.Help, Type: "gauge"})
	return promauto.NewGauge(opts)
}

var (
	Entries = newGauge(prometheus.GaugeOpts{
		Name: "hostset_entries",
		Help: "Number of entries in the published registry after compaction",
	})
	Updates = newCounterVec(prometheus.CounterOpts{
		Name: "hostset_updates_total",
		Help: "Registry updates by result (success, failure)",
	}, []string{"result"})
	SkippedLines = newCounterVec(prometheus.CounterOpts{
		Name: "hostset_skipped_lines_total",
		Help: "Source lines that did not produce an entry, by source and reason",
	}, []string{"source", "reason"})
	LastUpdate = newGauge(prometheus.GaugeOpts{
		Name: "hostset_last_update_timestamp_seconds",
		Help: "Unix time of the last successful registry update",
	})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Documentation renders the metric list as a markdown table.
func Documentation() string {
	defs := append([]metricDefinition(nil), definitions...)
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })

	var b strings.Builder
	b.WriteString("| Name | Type | Description |\n|---|---|---|\n")
	for _, d := range defs {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", d.Name, d.Type, d.Help)
	}
	return b.String()
}
