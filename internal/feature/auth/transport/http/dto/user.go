// Package dto defines data transfer objects for the auth feature's HTTP transport layer.
package dto

// RegisterRequest is the body of POST /users.
// Field rules are enforced by the validation middleware before binding.
type RegisterRequest struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	EmailAddress string `json:"emailAddress"`
	Password     string `json:"password"`
}

// CurrentUserResponse is the body of GET /users.
// Password carries the stored hash, never the plaintext.
type CurrentUserResponse struct {
	EmailAddress string `json:"emailAddress"`
	Password     string `json:"password"`
}
