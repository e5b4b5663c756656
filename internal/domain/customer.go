package domain

import (
	"strings"
	"time"
)

// Customer represents a paying customer in the system.
type Customer struct {
	ID        string
	FullName  string
	Email     string
	Phone     string
	CreatedAt time.Time
}

// FirstName returns the first word of the full name, or "Customer" when the
// name is empty, matching what the gateway expects in its buyer fields.
func (c *Customer) FirstName() string {
	parts := strings.Fields(c.FullName)
	if len(parts) == 0 {
		return "Customer"
	}
	return parts[0]
}

// LastName returns the last word of the full name, or an empty string for
// single-word names.
func (c *Customer) LastName() string {
	parts := strings.Fields(c.FullName)
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-1]
}
