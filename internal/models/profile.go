package models

import "time"

// Social holds optional social network links of a profile.
type Social struct {
	YouTube   string `json:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

// Profile is the public developer profile owned by exactly one user.
type Profile struct {
	ID             string    `gorm:"primaryKey;size:24" json:"id"`
	User           string    `gorm:"column:user_id;size:24;not null;uniqueIndex" json:"user"`
	Handle         string    `gorm:"size:40;not null;uniqueIndex" json:"handle"`
	Company        string    `json:"company,omitempty"`
	Website        string    `json:"website,omitempty"`
	Location       string    `json:"location,omitempty"`
	Status         string    `gorm:"not null" json:"status"`
	Skills         []string  `gorm:"type:text;serializer:json" json:"skills"`
	Bio            string    `gorm:"type:text" json:"bio,omitempty"`
	GithubUsername string    `json:"githubusername,omitempty"`
	Social         Social    `gorm:"embedded;embeddedPrefix:social_" json:"social"`
	Date           time.Time `json:"date"`
}

// TableName specifies the table name for GORM
func (Profile) TableName() string {
	return "profiles"
}
