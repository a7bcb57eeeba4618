// Package entity defines the domain entities for the courses feature.
package entity

import "time"

// Course is a catalog entry owned by a user.
type Course struct {
	ID     uint `db:"id"`
	UserID uint `db:"userId"`

	Title       string `db:"title"`
	Description string `db:"description"`

	// EstimatedTime and MaterialsNeeded are optional.
	EstimatedTime   *string `db:"estimatedTime"`
	MaterialsNeeded *string `db:"materialsNeeded"`

	CreatedAt time.Time `db:"createdAt"`
	UpdatedAt time.Time `db:"updatedAt"`
}

// OwnedBy reports whether userID owns the course.
func (c *Course) OwnedBy(userID uint) bool {
	return c.UserID == userID
}

// CourseSummary is the listing shape of a course: its title and the
// owner's full name. Courses without an existing owner never produce one.
type CourseSummary struct {
	ID    uint   `db:"id" json:"id"`
	Title string `db:"title" json:"title"`
	Owner string `db:"owner" json:"owner"`
}
