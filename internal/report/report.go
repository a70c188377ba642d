// Package report renders plain-text analysis tables over an aggregation
// store. Absent data is printed as n/a, never as a fabricated zero or a
// misleading 100% drop.
package report

import (
	"fmt"
	"io"

	"numa-report/internal/schema"
	"numa-report/internal/stats"
	"numa-report/internal/store"
)

// Summary prints the per-outcome counts of one aggregation pass.
func Summary(w io.Writer, category string, st *store.Store, ok, missing, killed, skipped int) {
	fmt.Fprintf(w, "=== Aggregation Summary: %s ===\n", category)
	fmt.Fprintf(w, "records: %d (ok %d, missing %d, killed %d), skipped files: %d\n",
		st.Len(), ok, missing, killed, skipped)
	for key, rec := range st.All(schema.DimPolicy, schema.DimPattern, schema.DimSize) {
		if rec.OK() {
			continue
		}
		fmt.Fprintf(w, "  %-8s %s (%s)\n", rec.Outcome, key, rec.Source)
	}
}

// metricAt fetches one metric of one key, reporting absence explicitly so
// callers never mistake "no data" for zero.
func metricAt(st *store.Store, key schema.ExperimentKey, metric string) (float64, bool) {
	rec, ok := st.Get(key)
	if !ok || !rec.OK() {
		return 0, false
	}
	return rec.Metric(metric)
}

// Penalty prints the local-versus-remote performance drop per pattern and
// size over a penalty-category store.
func Penalty(w io.Writer, st *store.Store) {
	fmt.Fprintf(w, "=== NUMA Penalty Analysis ===\n")

	for _, pattern := range st.Patterns(store.Filter{}) {
		fmt.Fprintf(w, "\n%s access pattern:\n", pattern)

		p := pattern
		for _, size := range st.Sizes(store.Filter{Pattern: &p}) {
			base := schema.ExperimentKey{
				Policy: schema.PolicyMembind, Relation: schema.RelationLocal,
				SizeBytes: size, Pattern: pattern,
			}
			remote := base
			remote.Relation = schema.RelationRemote0to1

			local, haveLocal := metricAt(st, base, "throughput")
			remoteVal, haveRemote := metricAt(st, remote, "throughput")
			label := schema.SizeLabel(size)

			if !haveLocal || !haveRemote {
				fmt.Fprintf(w, "  %8s: n/a (local or remote data absent)\n", label)
				continue
			}
			change, err := stats.PercentChange(local, remoteVal)
			if err != nil {
				fmt.Fprintf(w, "  %8s: n/a (degenerate local baseline)\n", label)
				continue
			}
			fmt.Fprintf(w, "  %8s: %5.1f%% performance drop for remote access\n", label, -change)
		}
	}
}

// LatencyPenalty prints the local-versus-remote latency increase per pattern
// and size. Unlike throughput, a higher latency is worse, so the change is
// reported as a positive increase.
func LatencyPenalty(w io.Writer, st *store.Store) {
	fmt.Fprintf(w, "=== NUMA Latency Penalty Analysis ===\n")

	for _, pattern := range st.Patterns(store.Filter{}) {
		fmt.Fprintf(w, "\n%s access pattern:\n", pattern)

		p := pattern
		for _, size := range st.Sizes(store.Filter{Pattern: &p}) {
			base := schema.ExperimentKey{
				Policy: schema.PolicyMembind, Relation: schema.RelationLocal,
				SizeBytes: size, Pattern: pattern,
			}
			remote := base
			remote.Relation = schema.RelationRemote0to1

			local, haveLocal := metricAt(st, base, "latency")
			remoteVal, haveRemote := metricAt(st, remote, "latency")
			label := schema.SizeLabel(size)

			if !haveLocal || !haveRemote {
				fmt.Fprintf(w, "  %8s: n/a (local or remote data absent)\n", label)
				continue
			}
			change, err := stats.PercentChange(local, remoteVal)
			if err != nil {
				fmt.Fprintf(w, "  %8s: n/a (degenerate local baseline)\n", label)
				continue
			}
			fmt.Fprintf(w, "  %8s: %+5.1f%% latency increase for remote access\n", label, change)
		}
	}
}

// Counters prints the performance counter evidence per pattern, relation, and
// size: the cache miss rate and the combined dTLB miss count. Records whose
// companion perf file was absent print n/a.
func Counters(w io.Writer, st *store.Store) {
	fmt.Fprintf(w, "=== Performance Counter Evidence ===\n")

	for _, pattern := range st.Patterns(store.Filter{}) {
		fmt.Fprintf(w, "\n%s access pattern:\n", pattern)
		fmt.Fprintf(w, "  %-20s %8s | %15s | %15s\n", "Relation", "Size", "Cache Miss Rate", "Total TLB Misses")

		p := pattern
		for _, rel := range st.Relations(store.Filter{Pattern: &p}) {
			r := rel
			for _, size := range st.Sizes(store.Filter{Pattern: &p, Relation: &r}) {
				key := schema.ExperimentKey{
					Policy: schema.PolicyMembind, Relation: rel,
					SizeBytes: size, Pattern: pattern,
				}

				missRateText := "n/a"
				misses, okMisses := metricAt(st, key, "perf_cache_misses")
				refs, okRefs := metricAt(st, key, "perf_cache_references")
				if okMisses && okRefs {
					if rate, err := stats.MissRate(misses, refs); err == nil {
						missRateText = fmt.Sprintf("%.1f%%", rate)
					}
				}

				tlbText := "n/a"
				loads, okLoads := metricAt(st, key, "perf_dtlb_load_misses")
				stores, okStores := metricAt(st, key, "perf_dtlb_store_misses")
				if okLoads && okStores {
					tlbText = fmt.Sprintf("%.0f", loads+stores)
				}

				fmt.Fprintf(w, "  %-20s %8s | %15s | %15s\n",
					rel, schema.SizeLabel(size), missRateText, tlbText)
			}
		}
	}
}

// Pressure prints, per policy and pattern, the degradation from the smallest
// to the largest measured size, and surfaces killed or missing runs instead
// of folding them into the curve.
func Pressure(w io.Writer, st *store.Store) {
	fmt.Fprintf(w, "=== Memory Pressure Analysis ===\n")

	for _, policy := range st.Policies(store.Filter{}) {
		for _, pattern := range st.Patterns(store.Filter{}) {
			pol, pat := policy, pattern
			sizes := st.Sizes(store.Filter{Policy: &pol, Pattern: &pat})
			if len(sizes) == 0 {
				continue
			}

			var measured []float64
			var measuredSizes []int64
			killed := 0
			for _, size := range sizes {
				key := schema.ExperimentKey{Policy: policy, SizeBytes: size, Pattern: pattern}
				key.Relation = st.SoleRelation(store.Filter{Policy: &pol, Pattern: &pat})
				rec, ok := st.Get(key)
				if !ok {
					continue
				}
				if rec.Outcome == schema.OutcomeKilled {
					killed++
					continue
				}
				if v, ok := rec.Metric("throughput"); ok {
					measured = append(measured, v)
					measuredSizes = append(measuredSizes, size)
				}
			}

			fmt.Fprintf(w, "\n%s / %s:\n", policy, pattern)
			if killed > 0 {
				fmt.Fprintf(w, "  killed runs: %d\n", killed)
			}
			if len(measured) < 2 {
				fmt.Fprintf(w, "  degradation: n/a (fewer than two measured sizes)\n")
				continue
			}
			change, err := stats.PercentChange(measured[0], measured[len(measured)-1])
			if err != nil {
				fmt.Fprintf(w, "  degradation: n/a (degenerate baseline)\n")
				continue
			}
			fmt.Fprintf(w, "  degradation %s -> %s: %.1f%%\n",
				schema.SizeLabel(measuredSizes[0]),
				schema.SizeLabel(measuredSizes[len(measuredSizes)-1]),
				-change)
		}
	}
}

// Correlation prints the migration-versus-performance table and the Pearson
// coefficient over it.
func Correlation(w io.Writer, st *store.Store) {
	fmt.Fprintf(w, "=== Counter Correlation Analysis ===\n\n")
	fmt.Fprintf(w, "%-40s | %14s | %11s | %10s | %12s\n",
		"Scenario", "Pages Migrated", "PTE Updates", "Throughput", "Migr/Perf")
	fmt.Fprintf(w, "%s\n", divider(100))

	var migrations, throughputs []float64

	for key, rec := range st.All(schema.DimPolicy, schema.DimSize) {
		if !rec.OK() {
			continue
		}
		// Statically bound reference runs do not migrate; only the
		// kernel-driven scenarios belong in the correlation.
		if key.Relation != schema.RelationAuto {
			continue
		}
		throughput, okT := rec.Metric("throughput")
		migrated, okM := rec.Metric("vmstat_numa_pages_migrated")
		if !okT || !okM {
			continue
		}
		pteUpdates := rec.Metrics["vmstat_numa_pte_updates"]

		ratioText := "n/a"
		if ratio, err := stats.Ratio(migrated, throughput); err == nil {
			ratioText = fmt.Sprintf("%.2f", ratio)
		}
		fmt.Fprintf(w, "%-40s | %14.0f | %11.0f | %10.1f | %12s\n",
			key, migrated, pteUpdates, throughput, ratioText)

		migrations = append(migrations, migrated)
		throughputs = append(throughputs, throughput)
	}

	r, err := stats.Correlation(migrations, throughputs)
	if err != nil {
		fmt.Fprintf(w, "\nPearson correlation: n/a (%v)\n", err)
		return
	}
	fmt.Fprintf(w, "\nPearson correlation coefficient: %.3f\n", r)
	switch stats.InterpretCorrelation(r) {
	case "positive":
		fmt.Fprintf(w, "-> POSITIVE correlation: more migration, better performance\n")
	case "negative":
		fmt.Fprintf(w, "-> NEGATIVE correlation: more migration, worse performance (overhead dominates)\n")
	default:
		fmt.Fprintf(w, "-> WEAK correlation: migration impact varies by scenario\n")
	}
}

// MigrationCost prints, per size, whether kernel page migration paid off:
// the statically bound local and remote references against the auto-migrated
// run. Sizes lacking any of the three runs print n/a.
func MigrationCost(w io.Writer, st *store.Store) {
	fmt.Fprintf(w, "=== Migration Cost Analysis ===\n")

	for _, pattern := range st.Patterns(store.Filter{}) {
		p := pattern
		for _, size := range st.Sizes(store.Filter{Pattern: &p}) {
			baseKey := schema.ExperimentKey{
				Policy: schema.PolicyMembind, Relation: schema.RelationLocal,
				SizeBytes: size, Pattern: pattern,
			}
			remoteKey := baseKey
			remoteKey.Relation = schema.RelationRemote0to1
			autoKey := schema.ExperimentKey{
				Policy: schema.PolicyAutoMigrated, Relation: schema.RelationAuto,
				SizeBytes: size, Pattern: pattern,
			}

			baseline, haveBase := metricAt(st, baseKey, "throughput")
			remote, haveRemote := metricAt(st, remoteKey, "throughput")
			migrated, haveAuto := metricAt(st, autoKey, "throughput")

			fmt.Fprintf(w, "\n%s / %s:\n", schema.SizeLabel(size), pattern)
			if !haveBase || !haveRemote || !haveAuto {
				fmt.Fprintf(w, "  n/a (baseline, static remote, or auto-migrated run absent)\n")
				continue
			}

			penalty, errPenalty := stats.PercentChange(baseline, remote)
			benefit, errBenefit := stats.PercentChange(remote, migrated)
			efficiency, errEfficiency := stats.Ratio(migrated, baseline)
			if errPenalty != nil || errBenefit != nil || errEfficiency != nil {
				fmt.Fprintf(w, "  n/a (degenerate baseline)\n")
				continue
			}

			fmt.Fprintf(w, "  baseline local:       %.1f MB/s\n", baseline)
			fmt.Fprintf(w, "  static remote:        %.1f MB/s (%.1f%% penalty)\n", remote, -penalty)
			fmt.Fprintf(w, "  auto-migrated:        %.1f MB/s\n", migrated)
			fmt.Fprintf(w, "  migration benefit:    %+.1f%% over static remote\n", benefit)
			fmt.Fprintf(w, "  migration efficiency: %.1f%% of baseline\n", efficiency*100)

			switch {
			case efficiency > 0.9:
				fmt.Fprintf(w, "  -> migration is HIGHLY EFFECTIVE\n")
			case efficiency > 0.7:
				fmt.Fprintf(w, "  -> migration is MODERATELY EFFECTIVE\n")
			default:
				fmt.Fprintf(w, "  -> migration has LIMITED BENEFIT\n")
			}
		}
	}
}

func divider(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '-'
	}
	return string(b)
}
