package model

import "time"

// Message is a direct message between two registered users.
//
// WHY ReadAt *time.Time?
// read_at is genuinely nullable: nil means "not read yet", and the
// transition nil → timestamp happens exactly once. A pointer maps
// cleanly to SQL NULL and serializes to JSON null, so clients can
// distinguish "unread" from any real timestamp.
type Message struct {
	ID           string     `json:"id" db:"id"`
	FromUsername string     `json:"from_username" db:"from_username"`
	ToUsername   string     `json:"to_username" db:"to_username"`
	Body         string     `json:"body" db:"body"`
	SentAt       time.Time  `json:"sent_at" db:"sent_at"`
	ReadAt       *time.Time `json:"read_at" db:"read_at"`
}

// MessageDetail is the full view of a single message, with both
// participants' profiles joined in. Returned by GET /api/messages/{id}.
type MessageDetail struct {
	ID       string      `json:"id"`
	Body     string      `json:"body"`
	SentAt   time.Time   `json:"sent_at"`
	ReadAt   *time.Time  `json:"read_at"`
	FromUser UserProfile `json:"from_user"`
	ToUser   UserProfile `json:"to_user"`
}

// SentMessage is the list shape for messages a user has sent: the
// recipient's profile is joined in, the sender is implied by the query.
type SentMessage struct {
	ID     string      `json:"id"`
	Body   string      `json:"body"`
	SentAt time.Time   `json:"sent_at"`
	ReadAt *time.Time  `json:"read_at"`
	ToUser UserProfile `json:"to_user"`
}

// ReceivedMessage is the list shape for messages a user has received,
// with the sender's profile joined in.
type ReceivedMessage struct {
	ID       string      `json:"id"`
	Body     string      `json:"body"`
	SentAt   time.Time   `json:"sent_at"`
	ReadAt   *time.Time  `json:"read_at"`
	FromUser UserProfile `json:"from_user"`
}
