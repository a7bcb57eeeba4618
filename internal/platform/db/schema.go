package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
)

// UserModel is the table definition for Users.
type UserModel struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement"`
	FirstName    string    `gorm:"column:firstName;size:255;not null"`
	LastName     string    `gorm:"column:lastName;size:255;not null"`
	EmailAddress string    `gorm:"column:emailAddress;size:255;not null;uniqueIndex"`
	Password     string    `gorm:"column:password;size:255;not null"`
	CreatedAt    time.Time `gorm:"column:createdAt;not null"`
	UpdatedAt    time.Time `gorm:"column:updatedAt;not null"`
}

// TableName returns the table name for GORM.
func (UserModel) TableName() string {
	return "Users"
}

// CourseModel is the table definition for Courses.
// UserID references Users.id; deletes and key updates cascade.
type CourseModel struct {
	ID              uint       `gorm:"column:id;primaryKey;autoIncrement"`
	UserID          uint       `gorm:"column:userId;not null;index"`
	User            *UserModel `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Title           string     `gorm:"column:title;size:255;not null"`
	Description     string     `gorm:"column:description;type:text;not null"`
	EstimatedTime   *string    `gorm:"column:estimatedTime;size:255"`
	MaterialsNeeded *string    `gorm:"column:materialsNeeded;size:255"`
	CreatedAt       time.Time  `gorm:"column:createdAt;not null"`
	UpdatedAt       time.Time  `gorm:"column:updatedAt;not null"`
}

// TableName returns the table name for GORM.
func (CourseModel) TableName() string {
	return "Courses"
}

// ResetSchema drops Courses and Users if present and recreates both.
// Courses is dropped first because it references Users.
func ResetSchema(ctx context.Context, gdb *gorm.DB) error {
	m := gdb.WithContext(ctx).Migrator()

	for _, model := range []any{&CourseModel{}, &UserModel{}} {
		if !m.HasTable(model) {
			continue
		}
		slog.Debug("dropping table", "model", fmt.Sprintf("%T", model))
		if err := m.DropTable(model); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}

	slog.Debug("creating tables")
	if err := m.CreateTable(&UserModel{}, &CourseModel{}); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}
