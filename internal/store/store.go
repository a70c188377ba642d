// Package store holds the aggregated results of one pass: a sparse
// multi-dimensional container keyed by experiment key with deterministic
// iteration order.
package store

import (
	"fmt"
	"iter"
	"sort"

	"numa-report/internal/schema"
)

// DuplicateKeyError reports two files decoding to the same experiment key.
// This is a naming collision that would silently corrupt the dataset, so it
// aborts the whole pass rather than becoming a record outcome.
type DuplicateKeyError struct {
	Key      schema.ExperimentKey
	Existing string
	Incoming string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate experiment key %s: %s collides with %s", e.Key, e.Incoming, e.Existing)
}

// SizeBound is one end of a size filter. Callers state inclusivity
// explicitly; the store hardcodes no thresholds.
type SizeBound struct {
	Bytes     int64
	Inclusive bool
}

// Filter restricts dimension-value queries to a subset of the key space.
// Nil fields leave their dimension unconstrained.
type Filter struct {
	Policy   *schema.Policy
	Relation *schema.NodeRelation
	Pattern  *schema.AccessPattern
	MinSize  *SizeBound
	MaxSize  *SizeBound
}

func (f Filter) admits(k schema.ExperimentKey) bool {
	if f.Policy != nil && k.Policy != *f.Policy {
		return false
	}
	if f.Relation != nil && k.Relation != *f.Relation {
		return false
	}
	if f.Pattern != nil && k.Pattern != *f.Pattern {
		return false
	}
	if b := f.MinSize; b != nil {
		if k.SizeBytes < b.Bytes || (!b.Inclusive && k.SizeBytes == b.Bytes) {
			return false
		}
	}
	if b := f.MaxSize; b != nil {
		if k.SizeBytes > b.Bytes || (!b.Inclusive && k.SizeBytes == b.Bytes) {
			return false
		}
	}
	return true
}

// Store maps experiment keys to their reconciled metric records. It is built
// by exactly one aggregation pass and read-only afterwards.
type Store struct {
	records map[schema.ExperimentKey]schema.MetricRecord
}

func New() *Store {
	return &Store{records: make(map[schema.ExperimentKey]schema.MetricRecord)}
}

// Insert adds a record under key. A key already present is a hard error;
// at most one file may map to each key within a pass.
func (s *Store) Insert(key schema.ExperimentKey, rec schema.MetricRecord) error {
	if existing, ok := s.records[key]; ok {
		return &DuplicateKeyError{Key: key, Existing: existing.Source, Incoming: rec.Source}
	}
	s.records[key] = rec
	return nil
}

// Get returns the record for key. The second result distinguishes "no data"
// from a record whose metrics happen to be zero.
func (s *Store) Get(key schema.ExperimentKey) (schema.MetricRecord, bool) {
	rec, ok := s.records[key]
	return rec, ok
}

func (s *Store) Len() int {
	return len(s.records)
}

// Keys returns every key sorted by the given dimension precedence.
func (s *Store) Keys(precedence ...schema.Dimension) []schema.ExperimentKey {
	keys := make([]schema.ExperimentKey, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return schema.Less(keys[i], keys[j], precedence)
	})
	return keys
}

// All iterates (key, record) pairs sorted by the given dimension precedence.
// The sequence is restartable; the same store can drive several rendering
// passes with different orderings without mutation.
func (s *Store) All(precedence ...schema.Dimension) iter.Seq2[schema.ExperimentKey, schema.MetricRecord] {
	return func(yield func(schema.ExperimentKey, schema.MetricRecord) bool) {
		for _, k := range s.Keys(precedence...) {
			if !yield(k, s.records[k]) {
				return
			}
		}
	}
}

// Sizes returns the ascending union of allocation sizes observed under the
// filter. Policies or patterns missing data at some size still contribute the
// sizes they do have, which is what a shared chart axis needs.
func (s *Store) Sizes(f Filter) []int64 {
	seen := make(map[int64]bool)
	for k := range s.records {
		if f.admits(k) {
			seen[k.SizeBytes] = true
		}
	}
	sizes := make([]int64, 0, len(seen))
	for size := range seen {
		sizes = append(sizes, size)
	}
	sort.Slice(sizes, func(i, j int) bool { return sizes[i] < sizes[j] })
	return sizes
}

// Policies returns the policies observed under the filter in canonical order.
func (s *Store) Policies(f Filter) []schema.Policy {
	seen := make(map[schema.Policy]bool)
	for k := range s.records {
		if f.admits(k) {
			seen[k.Policy] = true
		}
	}
	out := make([]schema.Policy, 0, len(seen))
	for _, p := range schema.PolicyOrder {
		if seen[p] {
			out = append(out, p)
		}
	}
	return out
}

// Relations returns the node relations observed under the filter in
// canonical order.
func (s *Store) Relations(f Filter) []schema.NodeRelation {
	seen := make(map[schema.NodeRelation]bool)
	for k := range s.records {
		if f.admits(k) {
			seen[k.Relation] = true
		}
	}
	out := make([]schema.NodeRelation, 0, len(seen))
	for _, r := range schema.RelationOrder {
		if seen[r] {
			out = append(out, r)
		}
	}
	return out
}

// SoleRelation returns the single relation observed under the filter.
// Categories pin one relation per (policy, pattern) series; local is the
// fallback when the data is ambiguous.
func (s *Store) SoleRelation(f Filter) schema.NodeRelation {
	relations := s.Relations(f)
	if len(relations) == 1 {
		return relations[0]
	}
	return schema.RelationLocal
}

// Patterns returns the access patterns observed under the filter in
// canonical order.
func (s *Store) Patterns(f Filter) []schema.AccessPattern {
	seen := make(map[schema.AccessPattern]bool)
	for k := range s.records {
		if f.admits(k) {
			seen[k.Pattern] = true
		}
	}
	out := make([]schema.AccessPattern, 0, len(seen))
	for _, p := range schema.PatternOrder {
		if seen[p] {
			out = append(out, p)
		}
	}
	return out
}
