package models

import "time"

// Message is a messages row.
type Message struct {
	ID           int64      `db:"id" json:"id"`
	FromUsername string     `db:"from_username" json:"from_username"`
	ToUsername   string     `db:"to_username" json:"to_username"`
	Body         string     `db:"body" json:"body"`
	SentAt       time.Time  `db:"sent_at" json:"sent_at"`
	ReadAt       *time.Time `db:"read_at" json:"read_at"`
}

// IsRead reports whether the recipient has marked the message read.
func (m *Message) IsRead() bool {
	return m.ReadAt != nil
}

// MessageDetail is a message with both ends' public profiles attached.
type MessageDetail struct {
	ID       int64      `db:"id" json:"id"`
	Body     string     `db:"body" json:"body"`
	SentAt   time.Time  `db:"sent_at" json:"sent_at"`
	ReadAt   *time.Time `db:"read_at" json:"read_at"`
	FromUser PublicUser `db:"from_user" json:"from_user"`
	ToUser   PublicUser `db:"to_user" json:"to_user"`
}

// SentMessage is an entry of a user's outbox: the recipient is attached.
type SentMessage struct {
	ID     int64      `db:"id" json:"id"`
	Body   string     `db:"body" json:"body"`
	SentAt time.Time  `db:"sent_at" json:"sent_at"`
	ReadAt *time.Time `db:"read_at" json:"read_at"`
	ToUser PublicUser `db:"to_user" json:"to_user"`
}

// ReceivedMessage is an entry of a user's inbox: the sender is attached.
type ReceivedMessage struct {
	ID       int64      `db:"id" json:"id"`
	Body     string     `db:"body" json:"body"`
	SentAt   time.Time  `db:"sent_at" json:"sent_at"`
	ReadAt   *time.Time `db:"read_at" json:"read_at"`
	FromUser PublicUser `db:"from_user" json:"from_user"`
}
