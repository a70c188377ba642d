// Package decode turns result filenames into experiment keys. Each category
// registers an ordered table of structural patterns; the first matching
// pattern wins, so more specific prefixes must be registered before shorter
// ones that they contain.
package decode

import (
	"regexp"
	"strconv"

	"numa-report/internal/schema"
)

// Match is a decoded filename: the experiment key plus the residual
// classification the category needs (for example which side of a local/remote
// pair the file belongs to).
type Match struct {
	Key   schema.ExperimentKey
	Label string
}

type rule struct {
	re   *regexp.Regexp
	bind func(groups []string) (Match, bool)
}

// Category is a named family of experiments with its own filename grammar.
type Category struct {
	// Name matches the category key used in configuration.
	Name string
	// PrimaryField is the metric every usable record of this category must
	// carry; a record lacking it is treated as missing.
	PrimaryField string
	rules        []rule
}

// Decode matches filename against the category's patterns in registration
// order. A filename matching no pattern reports ok=false; results
// directories routinely contain companion files that simply do not belong to
// the category.
func (c *Category) Decode(filename string) (Match, bool) {
	for _, r := range c.rules {
		groups := r.re.FindStringSubmatch(filename)
		if groups == nil {
			continue
		}
		if m, ok := r.bind(groups); ok {
			return m, true
		}
	}
	return Match{}, false
}

// sizeBytes converts a captured size to bytes. A bare number is megabytes;
// an explicit GB unit scales accordingly.
func sizeBytes(num, unit string) (int64, bool) {
	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	if unit == "GB" {
		n *= 1024
	}
	return n * schema.MB, true
}

const (
	sizeGroup    = `(\d+)(MB|GB)`
	patternGroup = `(sequential|random|stride)`
)

func key(p schema.Policy, rel schema.NodeRelation, size int64, pat string) schema.ExperimentKey {
	return schema.ExperimentKey{
		Policy:    p,
		Relation:  rel,
		SizeBytes: size,
		Pattern:   schema.AccessPattern(pat),
	}
}

// Pressure covers the memory pressure and fallback experiments: strict
// binding versus preferred-with-fallback on node 0.
func Pressure() *Category {
	return &Category{
		Name:         "pressure",
		PrimaryField: "throughput",
		rules: []rule{
			{
				re: regexp.MustCompile(`^(membind|preferred)_node0_` + sizeGroup + `_` + patternGroup + `\.txt$`),
				bind: func(g []string) (Match, bool) {
					size, ok := sizeBytes(g[2], g[3])
					if !ok {
						return Match{}, false
					}
					policy := schema.PolicyMembind
					if g[1] == "preferred" {
						policy = schema.PolicyPreferred
					}
					return Match{Key: key(policy, schema.RelationLocal, size, g[4]), Label: g[1]}, true
				},
			},
		},
	}
}

// Penalty covers the local versus remote access experiments. All runs bind
// memory strictly; the relation carries which way the access crossed nodes.
func Penalty() *Category {
	bindRelation := func(rel schema.NodeRelation, label string) func([]string) (Match, bool) {
		return func(g []string) (Match, bool) {
			size, ok := sizeBytes(g[1], g[2])
			if !ok {
				return Match{}, false
			}
			return Match{Key: key(schema.PolicyMembind, rel, size, g[3]), Label: label}, true
		}
	}
	return &Category{
		Name:         "penalty",
		PrimaryField: "throughput",
		rules: []rule{
			{
				re:   regexp.MustCompile(`^local_node0_` + sizeGroup + `_` + patternGroup + `\.txt$`),
				bind: bindRelation(schema.RelationLocal, "local"),
			},
			{
				re:   regexp.MustCompile(`^remote_node0to1_` + sizeGroup + `_` + patternGroup + `\.txt$`),
				bind: bindRelation(schema.RelationRemote0to1, "remote_0to1"),
			},
			{
				re:   regexp.MustCompile(`^remote_node1to0_` + sizeGroup + `_` + patternGroup + `\.txt$`),
				bind: bindRelation(schema.RelationRemote1to0, "remote_1to0"),
			},
		},
	}
}

// Policy covers the policy comparison experiments. membind_strict must be
// registered before a plain membind prefix would match it, and wt_interleave
// before interleave.
func Policy() *Category {
	simple := func(policy schema.Policy, rel schema.NodeRelation, label string) func([]string) (Match, bool) {
		return func(g []string) (Match, bool) {
			size, ok := sizeBytes(g[1], g[2])
			if !ok {
				return Match{}, false
			}
			return Match{Key: key(policy, rel, size, g[3]), Label: label}, true
		}
	}
	return &Category{
		Name:         "policy",
		PrimaryField: "throughput",
		rules: []rule{
			{
				re:   regexp.MustCompile(`^wt_interleave_all_` + sizeGroup + `_` + patternGroup + `\.txt$`),
				bind: simple(schema.PolicyWeightedInterleave, schema.RelationAllNodes, "wt-interleave"),
			},
			{
				re:   regexp.MustCompile(`^interleave_all_` + sizeGroup + `_` + patternGroup + `\.txt$`),
				bind: simple(schema.PolicyInterleave, schema.RelationAllNodes, "interleave"),
			},
			{
				re:   regexp.MustCompile(`^membind_strict_node0_` + sizeGroup + `_` + patternGroup + `\.txt$`),
				bind: simple(schema.PolicyMembindStrict, schema.RelationLocal, "membind"),
			},
			{
				re:   regexp.MustCompile(`^localalloc_node0_` + sizeGroup + `_` + patternGroup + `\.txt$`),
				bind: simple(schema.PolicyLocalAlloc, schema.RelationLocal, "localalloc"),
			},
			{
				re:   regexp.MustCompile(`^preferred_node0_cpu_node1_` + sizeGroup + `_` + patternGroup + `\.txt$`),
				bind: simple(schema.PolicyPreferredRemoteCPU, schema.RelationCPU1Mem0, "preferred"),
			},
		},
	}
}

// Migration covers the page migration experiments. The access pattern is
// optional in these filenames and defaults to sequential. Alongside the
// kernel-driven runs, the directory carries a statically bound reference pair:
// baseline_local is the best case, static_remote the no-migration worst case.
func Migration() *Category {
	migrationPolicies := map[string]schema.Policy{
		"auto_numa":          schema.PolicyAutoNUMA,
		"pressure_migration": schema.PolicyPressureMigration,
		"auto_migrated":      schema.PolicyAutoMigrated,
	}
	static := func(rel schema.NodeRelation, label string) func([]string) (Match, bool) {
		return func(g []string) (Match, bool) {
			size, ok := sizeBytes(g[1], g[2])
			if !ok {
				return Match{}, false
			}
			pattern := g[3]
			if pattern == "" {
				pattern = string(schema.PatternSequential)
			}
			return Match{Key: key(schema.PolicyMembind, rel, size, pattern), Label: label}, true
		}
	}
	return &Category{
		Name:         "migration",
		PrimaryField: "throughput",
		rules: []rule{
			{
				re: regexp.MustCompile(`^(auto_numa|pressure_migration|auto_migrated)_` + sizeGroup + `(?:_` + patternGroup + `)?\.txt$`),
				bind: func(g []string) (Match, bool) {
					size, ok := sizeBytes(g[2], g[3])
					if !ok {
						return Match{}, false
					}
					pattern := g[4]
					if pattern == "" {
						pattern = string(schema.PatternSequential)
					}
					return Match{Key: key(migrationPolicies[g[1]], schema.RelationAuto, size, pattern), Label: g[1]}, true
				},
			},
			{
				re:   regexp.MustCompile(`^baseline_local_` + sizeGroup + `(?:_` + patternGroup + `)?\.txt$`),
				bind: static(schema.RelationLocal, "baseline_local"),
			},
			{
				re:   regexp.MustCompile(`^static_remote_` + sizeGroup + `(?:_` + patternGroup + `)?\.txt$`),
				bind: static(schema.RelationRemote0to1, "static_remote"),
			},
		},
	}
}

// Categories returns every registered category in declared order.
func Categories() []*Category {
	return []*Category{Pressure(), Penalty(), Policy(), Migration()}
}

// ByName looks a category up by its configuration name.
func ByName(name string) (*Category, bool) {
	for _, c := range Categories() {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}
