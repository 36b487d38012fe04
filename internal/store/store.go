// Package store persists leads, the outbound contact queue, and the
// seen-URL history behind a driver-selected Store interface.
package store

import (
	"context"

	"github.com/sells-group/outreach-cli/internal/model"
)

// LeadFilter specifies criteria for listing leads.
type LeadFilter struct {
	Status model.LeadStatus `json:"status,omitempty"`
	Source string           `json:"source,omitempty"`
	Limit  int              `json:"limit,omitempty"`
	Offset int              `json:"offset,omitempty"`
}

// Store defines the persistence interface shared by both pipelines.
type Store interface {
	// Leads. SaveLeads inserts only leads whose normalized profile URL
	// is not already present and reports how many were written.
	SaveLeads(ctx context.Context, leads []model.Lead) (int, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error)
	UpdateLeadStatus(ctx context.Context, leadID string, status model.LeadStatus) error

	// Contacts (the outbound queue). SaveContacts upserts by ID;
	// ResetQueue destroys the queue, an explicit user action only.
	SaveContacts(ctx context.Context, contacts []model.Contact) error
	ListContacts(ctx context.Context) ([]model.Contact, error)
	UpdateContact(ctx context.Context, contact model.Contact) error
	ResetQueue(ctx context.Context) error

	// Seen-URL history (dedupe persistence).
	ListSeenURLs(ctx context.Context) ([]string, error)
	ReplaceSeenURLs(ctx context.Context, urls []string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
