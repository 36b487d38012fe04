// Package model defines the core domain types shared across the pipelines.
package model

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// LeadStatus is the lifecycle state of a discovered lead.
type LeadStatus string

const (
	LeadStatusNew           LeadStatus = "new"
	LeadStatusContacted     LeadStatus = "contacted"
	LeadStatusResponded     LeadStatus = "responded"
	LeadStatusConverted     LeadStatus = "converted"
	LeadStatusNotInterested LeadStatus = "not-interested"
)

// Lead is a discovered prospective contact with enrichment metadata.
// Two leads are duplicates iff their normalized profile URLs match.
type Lead struct {
	ID              string     `json:"id"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	ProfileURL      string     `json:"profile_url"`
	Email           string     `json:"email,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	Company         string     `json:"company,omitempty"`
	Title           string     `json:"title,omitempty"`
	Location        string     `json:"location,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	Status          LeadStatus `json:"status"`
	Source          string     `json:"source"`
	Message         string     `json:"message,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	LastContactedAt *time.Time `json:"last_contacted_at,omitempty"`
}

// NewLead constructs a lead with a fresh ID and timestamps.
func NewLead(firstName, lastName, profileURL, source string) Lead {
	now := time.Now().UTC()
	return Lead{
		ID:         uuid.New().String(),
		FirstName:  firstName,
		LastName:   lastName,
		ProfileURL: profileURL,
		Status:     LeadStatusNew,
		Source:     source,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// SplitName divides a display name into first and last parts on the
// first whitespace. A single-token name becomes the first name.
func SplitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	if i := strings.IndexFunc(name, unicode.IsSpace); i >= 0 {
		return name[:i], strings.TrimSpace(name[i+1:])
	}
	return name, ""
}

// FullName returns the lead's display name.
func (l Lead) FullName() string {
	if l.FirstName == "" {
		return l.LastName
	}
	if l.LastName == "" {
		return l.FirstName
	}
	return l.FirstName + " " + l.LastName
}

// HasContactInfo reports whether the lead already carries an email or phone.
func (l Lead) HasContactInfo() bool {
	return l.Email != "" || l.Phone != ""
}
