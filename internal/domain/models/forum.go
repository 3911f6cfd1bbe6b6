package models

import "time"

// ForumPost is a public community message.
type ForumPost struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	AuthorName string    `db:"author_name" json:"author_name"`
	Title      string    `db:"title" json:"title"`
	Body       string    `db:"body" json:"body"`
	Category   string    `db:"category" json:"category"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
