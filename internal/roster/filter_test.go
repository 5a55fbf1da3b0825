package roster_test

import (
	"testing"

	"records-service/internal/roster"
	"records-service/internal/student"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(list []student.Student) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, s.StudentID)
	}
	return out
}

func TestApply_FilterComposition(t *testing.T) {
	list := []student.Student{
		{StudentID: "A-1", FirstName: "Ana", Status: student.StatusActive},
		{StudentID: "B-2", FirstName: "Ben", Status: student.StatusPending},
	}

	got := roster.Apply(list, roster.Criteria{Status: student.StatusActive, NameQuery: "an"})
	assert.Equal(t, []string{"A-1"}, ids(got))

	got = roster.Apply(list, roster.Criteria{Status: student.StatusActive, NameQuery: "ben"})
	assert.Empty(t, got)
}

func TestApply_Predicates(t *testing.T) {
	list := []student.Student{
		{StudentID: "2024-001", LastName: "Reyes", FirstName: "Maria", Course: "BSIT", Status: student.StatusActive},
		{StudentID: "2024-002", LastName: "Santos", FirstName: "Jose", Course: "BSCS"},
		{StudentID: "2023-117", LastName: "Cruz", FirstName: "Anna", Course: "BSIT", Status: student.StatusPending},
	}

	tests := []struct {
		name     string
		criteria roster.Criteria
		want     []string
	}{
		{"no criteria keeps order", roster.Criteria{}, []string{"2024-001", "2024-002", "2023-117"}},
		{"empty status counts as pending", roster.Criteria{Status: student.StatusPending}, []string{"2024-002", "2023-117"}},
		{"id substring", roster.Criteria{IDQuery: "2024"}, []string{"2024-001", "2024-002"}},
		{"name matches last name", roster.Criteria{NameQuery: "CRU"}, []string{"2023-117"}},
		{"name matches first name", roster.Criteria{NameQuery: "jos"}, []string{"2024-002"}},
		{"exact course", roster.Criteria{Course: "BSIT"}, []string{"2024-001", "2023-117"}},
		{"course is not a substring match", roster.Criteria{Course: "BS"}, []string{}},
		{"sort applies after filtering", roster.Criteria{Course: "BSIT", Sort: roster.SortAsc}, []string{"2023-117", "2024-001"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(roster.Apply(list, tt.criteria)))
		})
	}
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	list := []student.Student{{StudentID: "B"}, {StudentID: "A"}}
	roster.Apply(list, roster.Criteria{Sort: roster.SortAsc})
	assert.Equal(t, []string{"B", "A"}, ids(list))
}

func TestSortByStudentID_Numeric(t *testing.T) {
	list := []student.Student{{StudentID: "A-10"}, {StudentID: "A-2"}, {StudentID: "A-1"}}

	roster.SortByStudentID(list, roster.SortAsc)
	assert.Equal(t, []string{"A-1", "A-2", "A-10"}, ids(list))

	roster.SortByStudentID(list, roster.SortDesc)
	assert.Equal(t, []string{"A-10", "A-2", "A-1"}, ids(list))
}

func TestSortOrder(t *testing.T) {
	assert.Equal(t, roster.SortAsc, roster.SortNone.Toggle())
	assert.Equal(t, roster.SortDesc, roster.SortAsc.Toggle())
	assert.Equal(t, roster.SortAsc, roster.SortDesc.Toggle())

	for _, in := range []string{"", "none", "asc", "DESC"} {
		o, err := roster.ParseSortOrder(in)
		require.NoError(t, err)
		if in != "" && in != "none" {
			assert.NotEqual(t, roster.SortNone, o)
		}
	}

	_, err := roster.ParseSortOrder("sideways")
	assert.Error(t, err)
	assert.Equal(t, "desc", roster.SortDesc.String())
}
