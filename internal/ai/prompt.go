package ai

import (
	"strings"

	"github.com/sells-group/outreach-cli/internal/model"
)

// BuildPrompt constructs the generation prompt from a scraped profile.
// Construction is deterministic for the same inputs so golden-output
// tests never need a network call. An optional sample message is
// appended as a style-matching instruction.
func BuildPrompt(profile model.ProfileData, firstName, sampleStyle string) string {
	var b strings.Builder
	b.WriteString("Write a short, personalized professional outreach message to ")
	b.WriteString(firstName)
	b.WriteString(".\n\nWhat we know about them:\n")

	writeField(&b, "Headline", profile.Headline)
	writeField(&b, "Current role", profile.CurrentRole)
	writeField(&b, "Company", profile.CurrentCompany)
	writeField(&b, "Location", profile.Location)
	writeField(&b, "Education", profile.Education)
	writeField(&b, "About", profile.About)

	b.WriteString("\nRules:\n")
	b.WriteString("- Maximum 3 sentences, under 300 characters.\n")
	b.WriteString("- Reference one specific detail from their profile.\n")
	b.WriteString("- No subject line, no signature, no placeholders.\n")

	if sampleStyle != "" {
		b.WriteString("\nMatch the tone and style of this sample message:\n")
		b.WriteString(sampleStyle)
		b.WriteString("\n")
	}

	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	b.WriteString("- ")
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}
