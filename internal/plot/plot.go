// Package plot turns an aggregation store into TikZ/pgfplots chart text.
// Rendering never fabricates data: keys without a record, or with a missing
// or killed outcome, contribute no coordinate.
package plot

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"numa-report/internal/plot/templates"
	"numa-report/internal/schema"
	"numa-report/internal/store"
)

type Series struct {
	Name        string
	Coordinates []string
}

type ChartData struct {
	GeneratedDate string
	Title         string
	XLabel        string
	YLabel        string
	// SymbolicX is the comma-joined union of size labels across all series.
	SymbolicX    string
	Series       []Series
	CapacityNote string
}

type Generator struct {
	bar  *template.Template
	line *template.Template
}

func NewGenerator() *Generator {
	return &Generator{
		bar:  template.Must(template.New("bar").Parse(templates.BarTemplate)),
		line: template.Must(template.New("line").Parse(templates.LineTemplate)),
	}
}

func (g *Generator) renderBar(data ChartData) (string, error) {
	var buf bytes.Buffer
	if err := g.bar.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render bar chart: %w", err)
	}
	return buf.String(), nil
}

func (g *Generator) renderLine(data ChartData) (string, error) {
	var buf bytes.Buffer
	if err := g.line.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render line chart: %w", err)
	}
	return buf.String(), nil
}

// coordinates builds the coordinate list of one series: one entry per size at
// which the key has an ok record for which value yields something.
func coordinates(st *store.Store, keyAt func(int64) schema.ExperimentKey, sizes []int64, value func(schema.MetricRecord) (float64, bool)) []string {
	var coords []string
	for _, size := range sizes {
		rec, ok := st.Get(keyAt(size))
		if !ok || !rec.OK() {
			continue
		}
		v, ok := value(rec)
		if !ok {
			continue
		}
		coords = append(coords, fmt.Sprintf("(%s, %.1f)", schema.SizeLabel(size), v))
	}
	return coords
}

func metricCoordinates(st *store.Store, keyAt func(int64) schema.ExperimentKey, sizes []int64, metric string) []string {
	return coordinates(st, keyAt, sizes, func(rec schema.MetricRecord) (float64, bool) {
		return rec.Metric(metric)
	})
}

func sizeLabels(sizes []int64) string {
	labels := make([]string, len(sizes))
	for i, s := range sizes {
		labels[i] = schema.SizeLabel(s)
	}
	return strings.Join(labels, ", ")
}

func capacityNote(capacityMB int) string {
	if capacityMB <= 0 {
		return ""
	}
	return fmt.Sprintf("node 0 capacity: %s", schema.SizeLabel(int64(capacityMB)*schema.MB))
}

var relationNames = map[schema.NodeRelation]string{
	schema.RelationLocal:      "Local (node 0 to 0)",
	schema.RelationRemote0to1: "Remote (node 0 to 1)",
	schema.RelationRemote1to0: "Remote (node 1 to 0)",
}

// relationSeries builds one series per relation observed for the pattern,
// with one coordinate per size for which value yields something.
func relationSeries(st *store.Store, pattern schema.AccessPattern, sizes []int64, value func(schema.MetricRecord) (float64, bool)) []Series {
	pat := pattern
	var series []Series
	for _, rel := range st.Relations(store.Filter{Pattern: &pat}) {
		name, known := relationNames[rel]
		if !known {
			name = string(rel)
		}
		r := rel
		coords := coordinates(st, func(size int64) schema.ExperimentKey {
			return schema.ExperimentKey{Policy: schema.PolicyMembind, Relation: r, SizeBytes: size, Pattern: pattern}
		}, sizes, value)
		if len(coords) > 0 {
			series = append(series, Series{Name: name, Coordinates: coords})
		}
	}
	return series
}

// Penalty renders the local/remote throughput comparison for one access
// pattern as a grouped bar chart.
func (g *Generator) Penalty(st *store.Store, pattern schema.AccessPattern, capacityMB int) (string, error) {
	pat := pattern
	sizes := st.Sizes(store.Filter{Pattern: &pat})

	series := relationSeries(st, pattern, sizes, func(rec schema.MetricRecord) (float64, bool) {
		return rec.Metric("throughput")
	})

	return g.renderBar(ChartData{
		GeneratedDate: time.Now().Format(time.RFC3339),
		Title:         fmt.Sprintf("NUMA Penalty, %s access", pattern),
		XLabel:        "Memory Size",
		YLabel:        "Throughput (MB/s)",
		SymbolicX:     sizeLabels(sizes),
		Series:        series,
		CapacityNote:  capacityNote(capacityMB),
	})
}

// Latency renders the local/remote average latency comparison for one access
// pattern as a grouped bar chart.
func (g *Generator) Latency(st *store.Store, pattern schema.AccessPattern, capacityMB int) (string, error) {
	pat := pattern
	sizes := st.Sizes(store.Filter{Pattern: &pat})

	series := relationSeries(st, pattern, sizes, func(rec schema.MetricRecord) (float64, bool) {
		return rec.Metric("latency")
	})

	return g.renderBar(ChartData{
		GeneratedDate: time.Now().Format(time.RFC3339),
		Title:         fmt.Sprintf("NUMA Latency Penalty, %s access", pattern),
		XLabel:        "Memory Size",
		YLabel:        "Average Latency (ns)",
		SymbolicX:     sizeLabels(sizes),
		Series:        series,
		CapacityNote:  capacityNote(capacityMB),
	})
}

// TLBMisses renders the combined dTLB miss counts per relation and size for
// one access pattern. A record missing either counter contributes no
// coordinate.
func (g *Generator) TLBMisses(st *store.Store, pattern schema.AccessPattern, capacityMB int) (string, error) {
	pat := pattern
	sizes := st.Sizes(store.Filter{Pattern: &pat})

	series := relationSeries(st, pattern, sizes, func(rec schema.MetricRecord) (float64, bool) {
		loads, okLoads := rec.Metric("perf_dtlb_load_misses")
		stores, okStores := rec.Metric("perf_dtlb_store_misses")
		if !okLoads || !okStores {
			return 0, false
		}
		return loads + stores, true
	})

	return g.renderBar(ChartData{
		GeneratedDate: time.Now().Format(time.RFC3339),
		Title:         fmt.Sprintf("TLB Misses, %s access", pattern),
		XLabel:        "Memory Size",
		YLabel:        "Total TLB Misses (load + store)",
		SymbolicX:     sizeLabels(sizes),
		Series:        series,
		CapacityNote:  capacityNote(capacityMB),
	})
}

// Pressure renders the strict-bind versus preferred throughput comparison
// for one access pattern as a grouped bar chart.
func (g *Generator) Pressure(st *store.Store, pattern schema.AccessPattern, capacityMB int) (string, error) {
	pat := pattern
	sizes := st.Sizes(store.Filter{Pattern: &pat})

	var series []Series
	for _, policy := range st.Policies(store.Filter{Pattern: &pat}) {
		p := policy
		rel := st.SoleRelation(store.Filter{Policy: &p, Pattern: &pat})
		coords := metricCoordinates(st, func(size int64) schema.ExperimentKey {
			return schema.ExperimentKey{Policy: p, Relation: rel, SizeBytes: size, Pattern: pattern}
		}, sizes, "throughput")
		if len(coords) > 0 {
			series = append(series, Series{Name: string(policy), Coordinates: coords})
		}
	}

	return g.renderBar(ChartData{
		GeneratedDate: time.Now().Format(time.RFC3339),
		Title:         fmt.Sprintf("Memory Pressure, %s access", pattern),
		XLabel:        "Memory Size",
		YLabel:        "Throughput (MB/s)",
		SymbolicX:     sizeLabels(sizes),
		Series:        series,
		CapacityNote:  capacityNote(capacityMB),
	})
}

// Policies renders the policy comparison for one access pattern as a line
// chart, one line per policy.
func (g *Generator) Policies(st *store.Store, pattern schema.AccessPattern, capacityMB int) (string, error) {
	pat := pattern
	sizes := st.Sizes(store.Filter{Pattern: &pat})

	var series []Series
	for _, policy := range st.Policies(store.Filter{Pattern: &pat}) {
		p := policy
		rel := st.SoleRelation(store.Filter{Policy: &p, Pattern: &pat})
		coords := metricCoordinates(st, func(size int64) schema.ExperimentKey {
			return schema.ExperimentKey{Policy: p, Relation: rel, SizeBytes: size, Pattern: pattern}
		}, sizes, "throughput")
		if len(coords) > 0 {
			series = append(series, Series{Name: string(policy), Coordinates: coords})
		}
	}

	return g.renderLine(ChartData{
		GeneratedDate: time.Now().Format(time.RFC3339),
		Title:         fmt.Sprintf("Policy Comparison, %s access", pattern),
		XLabel:        "Memory Size",
		YLabel:        "Throughput (MB/s)",
		SymbolicX:     sizeLabels(sizes),
		Series:        series,
		CapacityNote:  capacityNote(capacityMB),
	})
}
