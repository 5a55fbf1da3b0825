package student

import (
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

type Status string

const (
	StatusPending Status = "PENDING"
	StatusActive  Status = "ACTIVE"
)

// MaxAddressLength bounds the free-text address stored on a record.
const MaxAddressLength = 200

// YearLevels is the set of accepted year levels, in display order.
var YearLevels = []string{"1st Year", "2nd Year", "3rd Year", "4th Year"}

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusActive
}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: status must be one of PENDING, ACTIVE", ErrInvalidInput)
	}
	return s, nil
}

type Student struct {
	bun.BaseModel `bun:"table:students,alias:s"`

	ID         string    `bun:"id,pk,type:uuid" json:"_id"`
	StudentID  string    `bun:"student_id,unique,notnull" json:"studentId" validate:"required,max=50"`
	LastName   string    `bun:"last_name,notnull" json:"lastName" validate:"required,max=100"`
	FirstName  string    `bun:"first_name,notnull" json:"firstName" validate:"required,max=100"`
	MiddleName string    `bun:"middle_name,notnull" json:"middleName" validate:"max=100"`
	Course     string    `bun:"course,notnull" json:"course" validate:"required,max=100"`
	YearLevel  string    `bun:"year_level,notnull" json:"yearLevel" validate:"required,yearlevel"`
	Address    string    `bun:"address,notnull" json:"address" validate:"required,max=200"`
	Status     Status    `bun:"status,notnull" json:"status" validate:"required,oneof=PENDING ACTIVE"`
	CreatedAt  time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt  time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

// EffectiveStatus treats a record without a status as PENDING.
func (s *Student) EffectiveStatus() Status {
	if s.Status == "" {
		return StatusPending
	}
	return s.Status
}

func (s *Student) normalize() {
	s.StudentID = strings.TrimSpace(s.StudentID)
	s.LastName = strings.TrimSpace(s.LastName)
	s.FirstName = strings.TrimSpace(s.FirstName)
	s.MiddleName = strings.TrimSpace(s.MiddleName)
	s.Course = strings.TrimSpace(s.Course)
	s.YearLevel = strings.TrimSpace(s.YearLevel)
	s.Address = strings.TrimSpace(s.Address)
	s.Status = Status(strings.ToUpper(strings.TrimSpace(string(s.Status))))
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	StudentID  *string `json:"studentId,omitempty"`
	LastName   *string `json:"lastName,omitempty"`
	FirstName  *string `json:"firstName,omitempty"`
	MiddleName *string `json:"middleName,omitempty"`
	Course     *string `json:"course,omitempty"`
	YearLevel  *string `json:"yearLevel,omitempty"`
	Address    *string `json:"address,omitempty"`
	Status     *Status `json:"status,omitempty"`
}

func (p *Patch) normalize() {
	for _, f := range []*string{p.StudentID, p.LastName, p.FirstName, p.MiddleName, p.Course, p.YearLevel, p.Address} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
	if p.Status != nil {
		st := Status(strings.ToUpper(strings.TrimSpace(string(*p.Status))))
		p.Status = &st
	}
}

// apply copies the set fields onto s and returns the changed column names.
func (p Patch) apply(s *Student) []string {
	var columns []string
	set := func(dst *string, src *string, column string) {
		if src != nil && *dst != *src {
			*dst = *src
			columns = append(columns, column)
		}
	}

	set(&s.StudentID, p.StudentID, "student_id")
	set(&s.LastName, p.LastName, "last_name")
	set(&s.FirstName, p.FirstName, "first_name")
	set(&s.MiddleName, p.MiddleName, "middle_name")
	set(&s.Course, p.Course, "course")
	set(&s.YearLevel, p.YearLevel, "year_level")
	set(&s.Address, p.Address, "address")
	if p.Status != nil && s.Status != *p.Status {
		s.Status = *p.Status
		columns = append(columns, "status")
	}

	return columns
}

// StatusOnly reports whether the patch touches nothing but the status.
func (p Patch) StatusOnly() bool {
	return p.Status != nil && p.StudentID == nil && p.LastName == nil && p.FirstName == nil &&
		p.MiddleName == nil && p.Course == nil && p.YearLevel == nil && p.Address == nil
}

const (
	EventCreated       = "student.created"
	EventUpdated       = "student.updated"
	EventStatusChanged = "student.status_changed"
	EventDeleted       = "student.deleted"
)

// Event is published after every successful mutation.
type Event struct {
	Type       string    `json:"type"`
	ID         string    `json:"id"`
	StudentID  string    `json:"studentId,omitempty"`
	Status     Status    `json:"status,omitempty"`
	Student    *Student  `json:"student,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
