// Package schema defines the dimension vocabulary of the NUMA benchmark
// experiments and the typed key under which results are aggregated.
package schema

import "fmt"

// Policy is the memory placement strategy under test. Migration scenarios
// (auto-numa balancing and forced migration) count as policies: they are
// placement strategies, just kernel-driven ones.
type Policy string

const (
	PolicyMembind            Policy = "membind"
	PolicyMembindStrict      Policy = "membind-strict"
	PolicyPreferred          Policy = "preferred"
	PolicyPreferredRemoteCPU Policy = "preferred-remote-cpu"
	PolicyLocalAlloc         Policy = "localalloc"
	PolicyInterleave         Policy = "interleave"
	PolicyWeightedInterleave Policy = "wt-interleave"
	PolicyAutoNUMA           Policy = "auto-numa"
	PolicyPressureMigration  Policy = "pressure-migration"
	PolicyAutoMigrated       Policy = "auto-migrated"
)

// PolicyOrder is the canonical chart ordering of policies. It is a declared
// order, not insertion order, so axes are reproducible across runs.
var PolicyOrder = []Policy{
	PolicyMembind,
	PolicyMembindStrict,
	PolicyPreferred,
	PolicyPreferredRemoteCPU,
	PolicyLocalAlloc,
	PolicyInterleave,
	PolicyWeightedInterleave,
	PolicyAutoNUMA,
	PolicyPressureMigration,
	PolicyAutoMigrated,
}

// NodeRelation describes where the executing CPU and the backing memory sit
// relative to each other.
type NodeRelation string

const (
	// RelationLocal: CPU and memory both on node 0.
	RelationLocal NodeRelation = "local"
	// RelationRemote0to1: CPU on node 0, memory on node 1.
	RelationRemote0to1 NodeRelation = "node0to1"
	// RelationRemote1to0: CPU on node 1, memory on node 0.
	RelationRemote1to0 NodeRelation = "node1to0"
	// RelationAllNodes: memory spread across all nodes (interleaving).
	RelationAllNodes NodeRelation = "all"
	// RelationCPU1Mem0: CPU pinned to node 1 while memory prefers node 0.
	RelationCPU1Mem0 NodeRelation = "cpu_node1_mem_node0"
	// RelationAuto: placement left to the kernel (migration scenarios).
	RelationAuto NodeRelation = "auto"
)

var RelationOrder = []NodeRelation{
	RelationLocal,
	RelationRemote0to1,
	RelationRemote1to0,
	RelationAllNodes,
	RelationCPU1Mem0,
	RelationAuto,
}

// AccessPattern is the memory access order used by the workload.
type AccessPattern string

const (
	PatternSequential AccessPattern = "sequential"
	PatternRandom     AccessPattern = "random"
	PatternStride     AccessPattern = "stride"
)

var PatternOrder = []AccessPattern{
	PatternSequential,
	PatternRandom,
	PatternStride,
}

// MB is the natural working unit of allocation sizes; keys store bytes.
const MB int64 = 1 << 20

// ExperimentKey identifies one experiment configuration. Two keys are equal
// iff all four fields are equal, which makes the struct directly usable as a
// map key.
type ExperimentKey struct {
	Policy    Policy
	Relation  NodeRelation
	SizeBytes int64
	Pattern   AccessPattern
}

func (k ExperimentKey) SizeMB() int64 {
	return k.SizeBytes / MB
}

func (k ExperimentKey) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", k.Policy, k.Relation, SizeLabel(k.SizeBytes), k.Pattern)
}

// SizeLabel renders a byte count the way chart axes label it: megabytes,
// switching to whole gigabytes at 1024 MB and above.
func SizeLabel(sizeBytes int64) string {
	mb := sizeBytes / MB
	if mb >= 1024 {
		return fmt.Sprintf("%d GB", mb/1024)
	}
	return fmt.Sprintf("%d MB", mb)
}

// Dimension names one axis of the key space, used to state iteration
// precedence and dimension-value queries.
type Dimension int

const (
	DimPolicy Dimension = iota
	DimRelation
	DimSize
	DimPattern
)

func (d Dimension) String() string {
	switch d {
	case DimPolicy:
		return "policy"
	case DimRelation:
		return "relation"
	case DimSize:
		return "size"
	case DimPattern:
		return "pattern"
	}
	return fmt.Sprintf("dimension(%d)", int(d))
}

func orderIndex[T comparable](order []T, v T) int {
	for i, o := range order {
		if o == v {
			return i
		}
	}
	// Unknown values sort after all declared ones.
	return len(order)
}

// Compare orders two keys along a single dimension. Sizes compare
// numerically; the enumerated dimensions compare by their declared order.
func Compare(a, b ExperimentKey, d Dimension) int {
	switch d {
	case DimPolicy:
		return orderIndex(PolicyOrder, a.Policy) - orderIndex(PolicyOrder, b.Policy)
	case DimRelation:
		return orderIndex(RelationOrder, a.Relation) - orderIndex(RelationOrder, b.Relation)
	case DimSize:
		switch {
		case a.SizeBytes < b.SizeBytes:
			return -1
		case a.SizeBytes > b.SizeBytes:
			return 1
		}
		return 0
	case DimPattern:
		return orderIndex(PatternOrder, a.Pattern) - orderIndex(PatternOrder, b.Pattern)
	}
	return 0
}

// Less compares keys by the given dimension precedence. Dimensions missing
// from the precedence are appended in the default order so the total order is
// always complete.
func Less(a, b ExperimentKey, precedence []Dimension) bool {
	for _, d := range fullPrecedence(precedence) {
		if c := Compare(a, b, d); c != 0 {
			return c < 0
		}
	}
	return false
}

func fullPrecedence(precedence []Dimension) []Dimension {
	full := make([]Dimension, 0, 4)
	seen := [4]bool{}
	for _, d := range precedence {
		if d >= 0 && int(d) < len(seen) && !seen[d] {
			full = append(full, d)
			seen[d] = true
		}
	}
	for _, d := range []Dimension{DimPolicy, DimRelation, DimPattern, DimSize} {
		if !seen[d] {
			full = append(full, d)
			seen[d] = true
		}
	}
	return full
}
