package models

import "time"

// Post is an entry of the in-memory posts collection
type Post struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"userId"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// PostWithUser is a post with its owning user embedded, as returned by the API.
type PostWithUser struct {
	Post
	User *User `json:"user"`
}
