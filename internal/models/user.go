package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User is a registered account.
type User struct {
	ID       string    `gorm:"primaryKey;size:24" json:"id"`
	Name     string    `gorm:"not null" json:"name"`
	Email    string    `gorm:"uniqueIndex;not null" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Avatar   string    `json:"avatar"`
	Date     time.Time `json:"date"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// Identity is the authenticated requester, as established by the auth
// middleware and handed explicitly to service calls.
type Identity struct {
	UserID    string
	Name      string
	Avatar    string
	TokenID   string
	ExpiresAt time.Time
}

// NewID returns a fresh 24-hex identifier. Every backend uses the same
// format so ids stay portable between stores.
func NewID() string {
	return bson.NewObjectID().Hex()
}

// IsValidID reports whether id has the format produced by NewID.
func IsValidID(id string) bool {
	_, err := bson.ObjectIDFromHex(id)
	return err == nil
}
