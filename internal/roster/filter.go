package roster

import (
	"fmt"
	"slices"
	"strings"

	"records-service/internal/student"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortOrder is the studentId ordering of a view.
type SortOrder int

const (
	SortNone SortOrder = iota
	SortAsc
	SortDesc
)

func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "default":
		return SortNone, nil
	case "asc":
		return SortAsc, nil
	case "desc":
		return SortDesc, nil
	default:
		return SortNone, fmt.Errorf("unknown sort order %q (want asc or desc)", s)
	}
}

func (o SortOrder) String() string {
	switch o {
	case SortAsc:
		return "asc"
	case SortDesc:
		return "desc"
	default:
		return "none"
	}
}

// Toggle follows the column-header cycle: none and desc go to asc, asc goes to desc.
func (o SortOrder) Toggle() SortOrder {
	if o == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// Criteria selects and orders a view. Zero-valued fields match everything.
type Criteria struct {
	Status    student.Status
	IDQuery   string
	NameQuery string
	Course    string
	Sort      SortOrder
}

// Apply returns the students matching every criterion, sorted by studentId
// after filtering. The input slice is not modified.
func Apply(list []student.Student, c Criteria) []student.Student {
	idQuery := strings.ToLower(c.IDQuery)
	nameQuery := strings.ToLower(c.NameQuery)

	out := make([]student.Student, 0, len(list))
	for _, s := range list {
		if c.Status != "" && s.EffectiveStatus() != c.Status {
			continue
		}
		if idQuery != "" && !strings.Contains(strings.ToLower(s.StudentID), idQuery) {
			continue
		}
		if nameQuery != "" &&
			!strings.Contains(strings.ToLower(s.LastName), nameQuery) &&
			!strings.Contains(strings.ToLower(s.FirstName), nameQuery) {
			continue
		}
		if c.Course != "" && s.Course != c.Course {
			continue
		}
		out = append(out, s)
	}

	if c.Sort != SortNone {
		SortByStudentID(out, c.Sort)
	}
	return out
}

// SortByStudentID orders in place with numeric-aware collation, so "A-2" sorts before "A-10".
func SortByStudentID(list []student.Student, order SortOrder) {
	col := collate.New(language.Und, collate.Numeric)
	slices.SortStableFunc(list, func(a, b student.Student) int {
		cmp := col.CompareString(a.StudentID, b.StudentID)
		if order == SortDesc {
			return -cmp
		}
		return cmp
	})
}
