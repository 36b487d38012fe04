package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/outreach-cli/internal/model"
)

func TestBuildPrompt_Deterministic(t *testing.T) {
	profile := model.ProfileData{
		Headline:       "VP Engineering at Acme",
		CurrentRole:    "VP Engineering",
		CurrentCompany: "Acme",
		Location:       "Austin, TX",
	}

	first := BuildPrompt(profile, "Jane", "")
	second := BuildPrompt(profile, "Jane", "")
	assert.Equal(t, first, second)
}

func TestBuildPrompt_IncludesKnownFields(t *testing.T) {
	profile := model.ProfileData{
		Headline:       "VP Engineering at Acme",
		CurrentRole:    "VP Engineering",
		CurrentCompany: "Acme",
		Location:       "Austin, TX",
		Education:      "MIT",
		About:          "Building things since 2004.",
	}

	prompt := BuildPrompt(profile, "Jane", "")
	assert.Contains(t, prompt, "Jane")
	assert.Contains(t, prompt, "- Headline: VP Engineering at Acme")
	assert.Contains(t, prompt, "- Company: Acme")
	assert.Contains(t, prompt, "- Location: Austin, TX")
	assert.Contains(t, prompt, "- Education: MIT")
	assert.Contains(t, prompt, "- About: Building things since 2004.")
}

func TestBuildPrompt_OmitsEmptyFields(t *testing.T) {
	prompt := BuildPrompt(model.ProfileData{Headline: "Founder"}, "Bob", "")
	assert.Contains(t, prompt, "- Headline: Founder")
	assert.NotContains(t, prompt, "- Company:")
	assert.NotContains(t, prompt, "- Education:")
}

func TestBuildPrompt_SampleStyle(t *testing.T) {
	sample := "Hey! Loved your talk at the meetup last month."
	with := BuildPrompt(model.ProfileData{}, "Jane", sample)
	without := BuildPrompt(model.ProfileData{}, "Jane", "")

	assert.Contains(t, with, sample)
	assert.Contains(t, with, "Match the tone and style")
	assert.NotContains(t, without, "Match the tone and style")
}
