package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileData_IsEmpty(t *testing.T) {
	assert.True(t, ProfileData{}.IsEmpty())
	assert.True(t, ProfileData{Location: "Austin, Texas"}.IsEmpty(), "location alone is not usable")
	assert.False(t, ProfileData{Headline: "CTO at Acme"}.IsEmpty())
	assert.False(t, ProfileData{CurrentCompany: "Acme"}.IsEmpty())
}

func TestEnrichmentResult_Backfill(t *testing.T) {
	lead := Lead{Email: "jane@corp.example", Company: ""}

	r := EnrichmentResult{
		Found:    true,
		Email:    "jane@elsewhere.example",
		Phone:    "+1 555 0100",
		Company:  "Acme",
		Location: "Austin, Texas",
	}
	assert.True(t, r.Backfill(&lead))

	assert.Equal(t, "jane@corp.example", lead.Email, "existing values win")
	assert.Equal(t, "+1 555 0100", lead.Phone)
	assert.Equal(t, "Acme", lead.Company)
	assert.Equal(t, "Austin, Texas", lead.Location)
}

func TestEnrichmentResult_BackfillNotFound(t *testing.T) {
	lead := Lead{}
	assert.False(t, EnrichmentResult{Email: "x@example.com"}.Backfill(&lead))
	assert.Empty(t, lead.Email)
}
