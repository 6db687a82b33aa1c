package migrate

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/memberbridge/internal/member"
)

func TestCompareMembersBothAbsent(t *testing.T) {
	assert.Empty(t, CompareMembers("1", nil, nil))
}

func TestCompareMembersEqual(t *testing.T) {
	left := member.Member{ID: member.NumericID(1), Name: "John Doe", Email: "john@example.com", Phone: "+12345678901"}
	right := member.Member{ID: member.OpaqueID("1"), Name: "John Doe", Email: "john@example.com", Phone: "+12345678901"}

	// Identifier representation differs but the profile fields agree.
	assert.Empty(t, CompareMembers("1", &left, &right))
}

func TestCompareMembersOneAbsent(t *testing.T) {
	m := member.Member{ID: member.NumericID(7), Name: "John Doe", Email: "john@example.com"}

	findings := CompareMembers("7", &m, nil)
	require.Len(t, findings, 1)
	assert.Equal(t, FindingMissing, findings[0].Kind)
	assert.Equal(t, "7", findings[0].ID)
	assert.Equal(t, "present", findings[0].Left)
	assert.Equal(t, "absent", findings[0].Right)
}

func TestCompareMembersFieldDiffs(t *testing.T) {
	left := member.Member{Name: "John Doe", Email: "john@example.com", Phone: "+12345678901"}
	right := member.Member{Name: "John D", Email: "john@example.com", Phone: ""}

	findings := CompareMembers("1", &left, &right)
	require.Len(t, findings, 2)
	assert.Equal(t, "name", findings[0].Field)
	assert.Equal(t, "John Doe", findings[0].Left)
	assert.Equal(t, "John D", findings[0].Right)
	assert.Equal(t, "phone", findings[1].Field)
}

func TestCompareSetsEqual(t *testing.T) {
	left := []member.Member{
		{ID: member.NumericID(1), Name: "John", Email: "john@example.com"},
		{ID: member.NumericID(2), Name: "Jane", Email: "jane@example.com"},
	}
	right := []member.Member{
		{ID: member.OpaqueID("2"), Name: "Jane", Email: "jane@example.com"},
		{ID: member.OpaqueID("1"), Name: "John", Email: "john@example.com"},
	}

	// Order is store-native and irrelevant to the comparison.
	assert.Empty(t, CompareSets(left, right))
}

func TestCompareSetsLeftoversAreDeterministic(t *testing.T) {
	left := []member.Member{
		{ID: member.NumericID(3), Name: "C", Email: "c@example.com"},
		{ID: member.NumericID(1), Name: "A", Email: "a@example.com"},
		{ID: member.NumericID(2), Name: "B", Email: "b@example.com"},
	}

	findings := CompareSets(left, nil)
	require.Len(t, findings, 4)
	assert.Equal(t, FindingCountMismatch, findings[0].Kind)
	assert.Equal(t, "1", findings[1].ID)
	assert.Equal(t, "2", findings[2].ID)
	assert.Equal(t, "3", findings[3].ID)
}

func TestReportClean(t *testing.T) {
	assert.True(t, Report{Op: "get"}.Clean())
	assert.False(t, Report{Op: "get", Findings: []Finding{{Kind: FindingMissing}}}.Clean())
	assert.False(t, Report{Op: "get", Err: assert.AnError}.Clean())
}

func TestCompareSetsGolden(t *testing.T) {
	left := []member.Member{
		{ID: member.NumericID(1), Name: "John Doe", Email: "john.doe@example.com", Phone: "+12345678901"},
		{ID: member.NumericID(2), Name: "Jane Smith", Email: "jane.smith@example.com", Phone: "+19876543210"},
		{ID: member.NumericID(3), Name: "Alice Brown", Email: "alice@example.com"},
	}
	right := []member.Member{
		{ID: member.OpaqueID("1"), Name: "John Doe", Email: "john.doe@example.com", Phone: "+12345678901"},
		{ID: member.OpaqueID("2"), Name: "Jane Smith", Email: "jane@example.com", Phone: "+19876543210"},
	}

	report := Report{Op: "list", Findings: CompareSets(left, right)}
	data, err := json.MarshalIndent(report, "", "  ")
	require.NoError(t, err)
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "compare_sets", data)
}
