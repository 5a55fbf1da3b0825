package teacher

import (
	"time"

	"github.com/uptrace/bun"
)

type Teacher struct {
	bun.BaseModel `bun:"table:teachers,alias:t"`

	ID         string    `bun:"id,pk,type:uuid" json:"_id"`
	Email      string    `bun:"email,unique,notnull" json:"email"`
	Password   string    `bun:"password,notnull" json:"-"`
	FirstName  string    `bun:"first_name,notnull" json:"firstName"`
	LastName   string    `bun:"last_name,notnull" json:"lastName"`
	Department string    `bun:"department,notnull" json:"department"`
	CreatedAt  time.Time `bun:"created_at,notnull" json:"createdAt"`
}

// Summary is the public view of a teacher handed to clients after login.
type Summary struct {
	ID         string `json:"_id"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Department string `json:"department"`
}

func (t *Teacher) Summary() Summary {
	return Summary{
		ID:         t.ID,
		Email:      t.Email,
		FirstName:  t.FirstName,
		LastName:   t.LastName,
		Department: t.Department,
	}
}

type CreateRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	FirstName  string `json:"firstName" validate:"required"`
	LastName   string `json:"lastName" validate:"required"`
	Department string `json:"department" validate:"required"`
}

type SeedResult struct {
	Created bool
	Count   int
}

type defaultAccount struct {
	email, password, firstName, lastName, department string
}

var defaultAccounts = []defaultAccount{
	{"admin@school.edu", "admin123", "System", "Administrator", "Administration"},
	{"teacher@school.edu", "teacher123", "Demo", "Teacher", "General Education"},
}
