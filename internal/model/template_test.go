package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTemplate(t *testing.T) {
	vars := TemplateVars{FirstName: "Jane", LastName: "Doe", Company: "Acme", Title: "CTO"}

	tests := []struct {
		name string
		tmpl string
		want string
	}{
		{
			"all placeholders",
			"Hi {firstName} {lastName} ({fullName}), saw you lead {company} as {title}.",
			"Hi Jane Doe (Jane Doe), saw you lead Acme as CTO.",
		},
		{
			"no placeholders",
			"Hello there.",
			"Hello there.",
		},
		{
			"repeated placeholder",
			"{firstName}, {firstName}!",
			"Jane, Jane!",
		},
		{
			"unknown placeholder left alone",
			"Hi {nickname}",
			"Hi {nickname}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderTemplate(tt.tmpl, vars))
		})
	}
}

func TestRenderTemplate_MissingValues(t *testing.T) {
	// Empty values substitute as empty strings, never as literal
	// placeholder text.
	got := RenderTemplate("Hi {firstName}, greetings from {company}.", TemplateVars{})
	assert.Equal(t, "Hi , greetings from .", got)
	assert.NotContains(t, got, "{")
}

func TestRenderTemplate_FullNameTrimsSingleName(t *testing.T) {
	got := RenderTemplate("{fullName}", TemplateVars{FirstName: "Cher"})
	assert.Equal(t, "Cher", got)
}

func TestVarsFromContact(t *testing.T) {
	c := Contact{FirstName: "Jane", LastName: "Doe", Company: "Acme", Title: "CTO"}
	assert.Equal(t, TemplateVars{FirstName: "Jane", LastName: "Doe", Company: "Acme", Title: "CTO"}, VarsFromContact(c))
}
