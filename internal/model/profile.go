package model

// ProfileData is the transient result of scraping a single profile page.
// It is owned by the enrichment step that produced it and never persisted
// on its own.
type ProfileData struct {
	Headline         string `json:"headline,omitempty"`
	Location         string `json:"location,omitempty"`
	About            string `json:"about,omitempty"`
	CurrentRole      string `json:"current_role,omitempty"`
	CurrentCompany   string `json:"current_company,omitempty"`
	Education        string `json:"education,omitempty"`
	ConnectionDegree int    `json:"connection_degree,omitempty"`
	FollowerCount    int    `json:"follower_count,omitempty"`
}

// IsEmpty reports whether the scrape yielded nothing usable.
func (p ProfileData) IsEmpty() bool {
	return p.Headline == "" && p.About == "" && p.CurrentRole == "" && p.CurrentCompany == ""
}

// EnrichmentResult is the transient output of a contact-enrichment lookup.
type EnrichmentResult struct {
	Found    bool   `json:"found"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Company  string `json:"company,omitempty"`
	Location string `json:"location,omitempty"`
}

// Backfill copies the found fields onto the lead, never overwriting a
// value the lead already has. A no-op when nothing was found.
func (r EnrichmentResult) Backfill(lead *Lead) bool {
	if !r.Found {
		return false
	}
	if lead.Email == "" {
		lead.Email = r.Email
	}
	if lead.Phone == "" {
		lead.Phone = r.Phone
	}
	if lead.Company == "" {
		lead.Company = r.Company
	}
	if lead.Location == "" {
		lead.Location = r.Location
	}
	return true
}

// SearchQuery is a role + location pair driving a discovery run.
// Request-scoped, never persisted.
type SearchQuery struct {
	Role     string `json:"role"`
	Location string `json:"location"`
}
