package roster

import (
	"slices"
	"sync"

	"records-service/internal/student"
)

// YearView is what the year quick-filter shows.
type YearView struct {
	Year     string
	Visible  bool
	Students []student.Student
}

// State holds the last full fetch. Every view is derived from it on demand.
type State struct {
	mu          sync.RWMutex
	all         []student.Student
	currentYear string
	hidden      bool
}

func NewState() *State {
	return &State{}
}

// SetAll replaces the list wholesale.
func (s *State) SetAll(records []student.Student) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.all = slices.Clone(records)
}

func (s *State) All() []student.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.all)
}

func (s *State) Filtered(c Criteria) []student.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Apply(s.all, c)
}

// SelectYear shows the students of one year level. Selecting the same year
// again flips visibility instead of clearing the filter.
func (s *State) SelectYear(year string) YearView {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentYear == year {
		s.hidden = !s.hidden
	} else {
		s.currentYear = year
		s.hidden = false
	}

	return YearView{
		Year:     year,
		Visible:  !s.hidden,
		Students: s.byYear(year),
	}
}

func (s *State) ShowAllYears() YearView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentYear = ""
	s.hidden = false

	return YearView{Visible: true, Students: slices.Clone(s.all)}
}

func (s *State) byYear(year string) []student.Student {
	out := make([]student.Student, 0)
	for _, st := range s.all {
		if st.YearLevel == year {
			out = append(out, st)
		}
	}
	return out
}

// Courses lists the distinct non-empty courses in first-seen order.
func (s *State) Courses() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	courses := make([]string, 0)
	for _, st := range s.all {
		if st.Course == "" {
			continue
		}
		if _, ok := seen[st.Course]; ok {
			continue
		}
		seen[st.Course] = struct{}{}
		courses = append(courses, st.Course)
	}
	return courses
}

// ActiveOnly is the grading roster.
func (s *State) ActiveOnly() []student.Student {
	return s.Filtered(Criteria{Status: student.StatusActive})
}
