package store

import (
	"errors"
	"testing"

	"numa-report/internal/schema"
)

func mkKey(p schema.Policy, sizeMB int64, pat schema.AccessPattern) schema.ExperimentKey {
	return schema.ExperimentKey{
		Policy:    p,
		Relation:  schema.RelationLocal,
		SizeBytes: sizeMB * schema.MB,
		Pattern:   pat,
	}
}

func mkRecord(source string, throughput float64) schema.MetricRecord {
	return schema.MetricRecord{
		Outcome: schema.OutcomeOK,
		Metrics: map[string]float64{"throughput": throughput},
		Source:  source,
	}
}

func TestInsertGet(t *testing.T) {
	s := New()
	key := mkKey(schema.PolicyMembind, 256, schema.PatternSequential)
	rec := mkRecord("membind_node0_256MB_sequential.txt", 4000)

	if err := s.Insert(key, rec); err != nil {
		t.Fatal(err)
	}

	got, ok := s.Get(key)
	if !ok {
		t.Fatalf("Get after Insert reported absent")
	}
	if got.Metrics["throughput"] != 4000 || got.Source != rec.Source {
		t.Errorf("Get = %+v, want %+v", got, rec)
	}
}

func TestGetAbsentKey(t *testing.T) {
	s := New()
	if _, ok := s.Get(mkKey(schema.PolicyPreferred, 512, schema.PatternRandom)); ok {
		t.Errorf("Get on never-inserted key reported present")
	}
}

func TestInsertDuplicateKey(t *testing.T) {
	s := New()
	key := mkKey(schema.PolicyMembind, 512, schema.PatternRandom)

	if err := s.Insert(key, mkRecord("a.txt", 1)); err != nil {
		t.Fatal(err)
	}
	err := s.Insert(key, mkRecord("b.txt", 2))
	if err == nil {
		t.Fatalf("duplicate insert succeeded")
	}

	var dup *DuplicateKeyError
	if !errors.As(err, &dup) {
		t.Fatalf("error type = %T, want *DuplicateKeyError", err)
	}
	if dup.Existing != "a.txt" || dup.Incoming != "b.txt" {
		t.Errorf("collision files = %q, %q", dup.Existing, dup.Incoming)
	}

	// The original record survives the rejected insert.
	got, _ := s.Get(key)
	if got.Source != "a.txt" {
		t.Errorf("record overwritten by rejected insert: %+v", got)
	}
}

func TestSizesFilteredAndSorted(t *testing.T) {
	s := New()
	for _, sizeMB := range []int64{1024, 256, 512} {
		key := mkKey(schema.PolicyMembind, sizeMB, schema.PatternSequential)
		if err := s.Insert(key, mkRecord(key.String(), 1)); err != nil {
			t.Fatal(err)
		}
	}

	all := s.Sizes(Filter{})
	want := []int64{256 * schema.MB, 512 * schema.MB, 1024 * schema.MB}
	if len(all) != len(want) {
		t.Fatalf("Sizes = %v, want %v", all, want)
	}
	for i := range want {
		if all[i] != want[i] {
			t.Fatalf("Sizes = %v, want %v", all, want)
		}
	}

	// Inclusive lower bound at 512 MB keeps 512 and 1024 only.
	bounded := s.Sizes(Filter{MinSize: &SizeBound{Bytes: 512 * schema.MB, Inclusive: true}})
	if len(bounded) != 2 || bounded[0] != 512*schema.MB || bounded[1] != 1024*schema.MB {
		t.Errorf("bounded Sizes = %v, want [512MB 1024MB]", bounded)
	}

	// The same bound exclusive drops 512 as well.
	exclusive := s.Sizes(Filter{MinSize: &SizeBound{Bytes: 512 * schema.MB}})
	if len(exclusive) != 1 || exclusive[0] != 1024*schema.MB {
		t.Errorf("exclusive Sizes = %v, want [1024MB]", exclusive)
	}
}

func TestSizesUnionAcrossPolicies(t *testing.T) {
	// membind has data at 256 and 512, preferred at 512 and 1024; the shared
	// axis is the union of both.
	s := New()
	insert := func(p schema.Policy, sizeMB int64) {
		key := mkKey(p, sizeMB, schema.PatternSequential)
		if err := s.Insert(key, mkRecord(key.String(), 1)); err != nil {
			t.Fatal(err)
		}
	}
	insert(schema.PolicyMembind, 256)
	insert(schema.PolicyMembind, 512)
	insert(schema.PolicyPreferred, 512)
	insert(schema.PolicyPreferred, 1024)

	union := s.Sizes(Filter{Pattern: &schema.PatternOrder[0]})
	want := []int64{256 * schema.MB, 512 * schema.MB, 1024 * schema.MB}
	if len(union) != len(want) {
		t.Fatalf("union = %v, want %v", union, want)
	}
	for i := range want {
		if union[i] != want[i] {
			t.Fatalf("union = %v, want %v", union, want)
		}
	}

	membind := schema.PolicyMembind
	only := s.Sizes(Filter{Policy: &membind})
	if len(only) != 2 || only[1] != 512*schema.MB {
		t.Errorf("membind sizes = %v", only)
	}
}

func TestPoliciesCanonicalOrder(t *testing.T) {
	s := New()
	// Insert out of canonical order; the query must not reflect it.
	for _, p := range []schema.Policy{schema.PolicyPreferred, schema.PolicyInterleave, schema.PolicyMembind} {
		key := mkKey(p, 512, schema.PatternSequential)
		if err := s.Insert(key, mkRecord(key.String(), 1)); err != nil {
			t.Fatal(err)
		}
	}

	got := s.Policies(Filter{})
	want := []schema.Policy{schema.PolicyMembind, schema.PolicyPreferred, schema.PolicyInterleave}
	if len(got) != len(want) {
		t.Fatalf("Policies = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Policies = %v, want %v", got, want)
		}
	}
}

func TestSoleRelation(t *testing.T) {
	s := New()
	interleaveKey := schema.ExperimentKey{
		Policy:    schema.PolicyInterleave,
		Relation:  schema.RelationAllNodes,
		SizeBytes: 512 * schema.MB,
		Pattern:   schema.PatternSequential,
	}
	if err := s.Insert(interleaveKey, mkRecord(interleaveKey.String(), 1)); err != nil {
		t.Fatal(err)
	}

	interleave := schema.PolicyInterleave
	if rel := s.SoleRelation(Filter{Policy: &interleave}); rel != schema.RelationAllNodes {
		t.Errorf("SoleRelation = %v, want %v", rel, schema.RelationAllNodes)
	}

	// Two relations under the same policy fall back to local.
	for _, rel := range []schema.NodeRelation{schema.RelationLocal, schema.RelationRemote0to1} {
		key := schema.ExperimentKey{
			Policy:    schema.PolicyMembind,
			Relation:  rel,
			SizeBytes: 512 * schema.MB,
			Pattern:   schema.PatternSequential,
		}
		if err := s.Insert(key, mkRecord(key.String(), 1)); err != nil {
			t.Fatal(err)
		}
	}
	membind := schema.PolicyMembind
	if rel := s.SoleRelation(Filter{Policy: &membind}); rel != schema.RelationLocal {
		t.Errorf("ambiguous SoleRelation = %v, want local fallback", rel)
	}
}

func TestAllOrderedAndRestartable(t *testing.T) {
	s := New()
	for _, p := range []schema.Policy{schema.PolicyPreferred, schema.PolicyMembind} {
		for _, sizeMB := range []int64{512, 256} {
			key := mkKey(p, sizeMB, schema.PatternSequential)
			if err := s.Insert(key, mkRecord(key.String(), float64(sizeMB))); err != nil {
				t.Fatal(err)
			}
		}
	}

	var bySize []schema.ExperimentKey
	for k := range s.All(schema.DimSize, schema.DimPolicy) {
		bySize = append(bySize, k)
	}
	if len(bySize) != 4 {
		t.Fatalf("iterated %d keys, want 4", len(bySize))
	}
	if bySize[0].SizeBytes != 256*schema.MB || bySize[0].Policy != schema.PolicyMembind {
		t.Errorf("first key by size = %v", bySize[0])
	}
	if bySize[3].SizeBytes != 512*schema.MB || bySize[3].Policy != schema.PolicyPreferred {
		t.Errorf("last key by size = %v", bySize[3])
	}

	// A second iteration with a different precedence sees the same store.
	var byPolicy []schema.ExperimentKey
	for k := range s.All(schema.DimPolicy, schema.DimSize) {
		byPolicy = append(byPolicy, k)
	}
	if byPolicy[0].Policy != schema.PolicyMembind || byPolicy[0].SizeBytes != 256*schema.MB {
		t.Errorf("first key by policy = %v", byPolicy[0])
	}
	if byPolicy[1].Policy != schema.PolicyMembind || byPolicy[1].SizeBytes != 512*schema.MB {
		t.Errorf("second key by policy = %v", byPolicy[1])
	}

	// Early break must not poison later iterations.
	for range s.All(schema.DimSize) {
		break
	}
	n := 0
	for range s.All(schema.DimSize) {
		n++
	}
	if n != 4 {
		t.Errorf("restarted iteration saw %d keys, want 4", n)
	}
}
