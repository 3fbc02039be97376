// Package models contains data structures for the application's domain models.
package models

import (
	"errors"
	"fmt"
	"time"
)

// PostSchemaVersion is the document shape written by this build.
const PostSchemaVersion = 1

// Like is a user's endorsement of a post. Unique per (post, user).
type Like struct {
	User string `json:"user"`
}

// Comment is user-authored text embedded in a Post.
type Comment struct {
	ID     string    `json:"id"`
	Text   string    `json:"text"`
	Name   string    `json:"name"`
	Avatar string    `json:"avatar"`
	User   string    `json:"user"`
	Date   time.Time `json:"date"`
}

// Post is the top-level content entity. Likes and comments are persisted as
// part of the post document, newest first.
type Post struct {
	ID            string    `gorm:"primaryKey;size:24" json:"id"`
	Text          string    `gorm:"type:text;not null" json:"text"`
	Name          string    `json:"name"`
	Avatar        string    `json:"avatar"`
	User          string    `gorm:"column:user_id;size:24;not null;index" json:"user"`
	Likes         []Like    `gorm:"type:text;serializer:json" json:"likes"`
	Comments      []Comment `gorm:"type:text;serializer:json" json:"comments"`
	Date          time.Time `gorm:"not null;index" json:"date"`
	SchemaVersion int       `gorm:"not null;default:1" json:"schema_version"`
	// Revision is bumped on every save and guards concurrent read-modify-write.
	Revision int64 `gorm:"not null;default:0" json:"-"`
}

// TableName specifies the table name for GORM
func (Post) TableName() string {
	return "posts"
}

// Normalize replaces nil sequences with empty ones so they encode as [].
func (p *Post) Normalize() {
	if p.Likes == nil {
		p.Likes = []Like{}
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
}

// Validate checks a post read from or written to a store.
func (p *Post) Validate() error {
	switch {
	case p.ID == "":
		return errors.New("post: missing id")
	case p.User == "":
		return fmt.Errorf("post %s: missing user", p.ID)
	case p.SchemaVersion < 1 || p.SchemaVersion > PostSchemaVersion:
		return fmt.Errorf("post %s: unsupported schema version %d", p.ID, p.SchemaVersion)
	}
	seen := make(map[string]struct{}, len(p.Likes))
	for _, l := range p.Likes {
		if _, dup := seen[l.User]; dup {
			return fmt.Errorf("post %s: duplicate like for user %s", p.ID, l.User)
		}
		seen[l.User] = struct{}{}
	}
	for _, c := range p.Comments {
		if c.ID == "" || c.User == "" {
			return fmt.Errorf("post %s: comment missing id or user", p.ID)
		}
	}
	return nil
}

// LikedBy reports whether userID already likes the post.
func (p *Post) LikedBy(userID string) bool {
	return p.likeIndex(userID) >= 0
}

func (p *Post) likeIndex(userID string) int {
	for i, l := range p.Likes {
		if l.User == userID {
			return i
		}
	}
	return -1
}

// AddLike prepends a like for userID. It returns false if one exists.
func (p *Post) AddLike(userID string) bool {
	if p.LikedBy(userID) {
		return false
	}
	p.Likes = append([]Like{{User: userID}}, p.Likes...)
	return true
}

// RemoveLike drops userID's like. It returns false if there was none.
func (p *Post) RemoveLike(userID string) bool {
	i := p.likeIndex(userID)
	if i < 0 {
		return false
	}
	p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
	return true
}

// AddComment prepends c.
func (p *Post) AddComment(c Comment) {
	p.Comments = append([]Comment{c}, p.Comments...)
}

// RemoveComment drops the comment matching both userID and commentID.
// It returns false when no comment matches; the post is left untouched.
func (p *Post) RemoveComment(userID, commentID string) bool {
	for i, c := range p.Comments {
		if c.User == userID && c.ID == commentID {
			p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
			return true
		}
	}
	return false
}
