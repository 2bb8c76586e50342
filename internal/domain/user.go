package domain

import "time"

// User represents a passenger in the system.
type User struct {
	ID        string
	FirstName string
	LastName  string
	Phone     string
	CreatedAt time.Time
}

// FullName returns the passenger's display name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
