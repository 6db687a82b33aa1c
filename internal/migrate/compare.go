package migrate

import (
	"sort"
	"strconv"

	"github.com/roach88/memberbridge/internal/member"
)

// FindingKind categorizes a divergence finding.
type FindingKind string

const (
	// FindingCountMismatch reports differing result-set sizes.
	FindingCountMismatch FindingKind = "count_mismatch"

	// FindingMissing reports a record present in one store only.
	FindingMissing FindingKind = "missing_in_one_store"

	// FindingFieldMismatch reports a field differing between stores.
	FindingFieldMismatch FindingKind = "field_mismatch"
)

// Finding is one observed divergence between the two stores. Left is
// always the read source's view, Right the document store's.
type Finding struct {
	Kind  FindingKind `json:"kind"`
	ID    string      `json:"id,omitempty"`
	Field string      `json:"field,omitempty"`
	Left  string      `json:"left,omitempty"`
	Right string      `json:"right,omitempty"`
}

// Report is the outcome of one comparison pass. It is emitted as
// structured log events (and by the verify command), never returned to
// operation callers.
type Report struct {
	Op       string    `json:"op"`
	Findings []Finding `json:"findings"`
	Err      error     `json:"-"`
}

// Clean reports whether the comparison completed with no findings.
func (r Report) Clean() bool {
	return r.Err == nil && len(r.Findings) == 0
}

// CompareMembers diffs two single-record results. Two absent records
// are equal; one absent record is a missing finding; otherwise name,
// email, and phone are compared field by field. A comparison may
// observe a write mid-flight, so findings are possibly-false-positive
// observations, not verdicts.
func CompareMembers(id string, left, right *member.Member) []Finding {
	if left == nil && right == nil {
		return nil
	}
	if left == nil || right == nil {
		return []Finding{{
			Kind:  FindingMissing,
			ID:    id,
			Left:  presence(left),
			Right: presence(right),
		}}
	}

	var findings []Finding
	fields := []struct {
		name        string
		left, right string
	}{
		{"name", left.Name, right.Name},
		{"email", left.Email, right.Email},
		{"phone", left.Phone, right.Phone},
	}
	for _, f := range fields {
		if f.left != f.right {
			findings = append(findings, Finding{
				Kind:  FindingFieldMismatch,
				ID:    id,
				Field: f.name,
				Left:  f.left,
				Right: f.right,
			})
		}
	}
	return findings
}

// CompareSets diffs two result sequences. The left side is the
// reference: it is indexed by identifier, the right side is walked
// against the index removing matches, and whatever remains unmatched
// on either side becomes a missing finding.
func CompareSets(left, right []member.Member) []Finding {
	var findings []Finding

	if len(left) != len(right) {
		findings = append(findings, Finding{
			Kind:  FindingCountMismatch,
			Left:  strconv.Itoa(len(left)),
			Right: strconv.Itoa(len(right)),
		})
	}

	index := make(map[string]member.Member, len(left))
	for _, m := range left {
		index[m.ID.String()] = m
	}

	for _, r := range right {
		id := r.ID.String()
		l, ok := index[id]
		if !ok {
			findings = append(findings, Finding{
				Kind:  FindingMissing,
				ID:    id,
				Left:  "absent",
				Right: "present",
			})
			continue
		}
		findings = append(findings, CompareMembers(id, &l, &r)...)
		delete(index, id)
	}

	// Whatever was never matched exists on the left side only.
	// Sorted for deterministic output.
	leftovers := make([]string, 0, len(index))
	for id := range index {
		leftovers = append(leftovers, id)
	}
	sort.Strings(leftovers)
	for _, id := range leftovers {
		findings = append(findings, Finding{
			Kind:  FindingMissing,
			ID:    id,
			Left:  "present",
			Right: "absent",
		})
	}

	return findings
}

func presence(m *member.Member) string {
	if m == nil {
		return "absent"
	}
	return "present"
}
