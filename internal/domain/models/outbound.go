package models

// Notification is a text pushed to a farmer outside the web app.
type Notification struct {
	To      string
	Title   string
	Message string
}
