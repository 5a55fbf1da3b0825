package roster

import (
	"fmt"
	"strings"

	"records-service/internal/student"
)

// Address is the structured form of the address picker.
type Address struct {
	Street       string
	Barangay     string
	Municipality string
	Province     string
	Region       string
	Country      string
}

// String joins the non-empty parts, most specific first.
func (a Address) String() string {
	parts := make([]string, 0, 6)
	for _, p := range []string{a.Street, a.Barangay, a.Municipality, a.Province, a.Region, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func (a Address) Validate() error {
	if n := len([]rune(a.String())); n > student.MaxAddressLength {
		return fmt.Errorf("address is %d characters, at most %d allowed", n, student.MaxAddressLength)
	}
	return nil
}
