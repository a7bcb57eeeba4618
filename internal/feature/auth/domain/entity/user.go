// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered account.
// EmailAddress is the login identifier and is unique across users.
type User struct {
	// ID is system generated and never changes.
	ID uint `db:"id"`

	FirstName string `db:"firstName"`
	LastName  string `db:"lastName"`

	// EmailAddress is matched exactly (case-sensitive) during authentication.
	EmailAddress string `db:"emailAddress"`

	// Password is the one-way hash of the user's password, never plaintext.
	Password string `db:"password"`

	CreatedAt time.Time `db:"createdAt"`
	UpdatedAt time.Time `db:"updatedAt"`
}
