package model

import "time"

// MessageStatus tracks the outbound send state of a queued contact.
type MessageStatus string

const (
	MessageStatusPending    MessageStatus = "pending"
	MessageStatusInProgress MessageStatus = "in-progress"
	MessageStatusSent       MessageStatus = "sent"
	MessageStatusFailed     MessageStatus = "failed"
	MessageStatusSkipped    MessageStatus = "skipped"
)

// Contact is a lead admitted into the outbound messaging queue.
type Contact struct {
	ID            string        `json:"id"`
	FirstName     string        `json:"first_name"`
	LastName      string        `json:"last_name"`
	ProfileURL    string        `json:"profile_url"`
	Company       string        `json:"company,omitempty"`
	Title         string        `json:"title,omitempty"`
	Message       string        `json:"message,omitempty"`
	MessageStatus MessageStatus `json:"message_status"`
	Position      int           `json:"position"`
	LastAttemptAt *time.Time    `json:"last_attempt_at,omitempty"`
	LastError     string        `json:"last_error,omitempty"`
}

// ContactFromLead projects a lead into the outbound queue at the given position.
func ContactFromLead(l Lead, position int) Contact {
	return Contact{
		ID:            l.ID,
		FirstName:     l.FirstName,
		LastName:      l.LastName,
		ProfileURL:    l.ProfileURL,
		Company:       l.Company,
		Title:         l.Title,
		Message:       l.Message,
		MessageStatus: MessageStatusPending,
		Position:      position,
	}
}

// FullName returns the contact's display name.
func (c Contact) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
