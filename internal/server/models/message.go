package models

import "time"

// Message is a single mailbox entry owned by its recipient (To).
//
// Seq is the store-assigned insertion sequence; inboxes are ordered by it.
type Message struct {
	Seq       int64
	ID        string
	From      string
	To        string
	Subject   string
	Body      string
	CreatedAt time.Time
}
