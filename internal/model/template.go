package model

import "strings"

// TemplateVars holds the values available to message templates.
type TemplateVars struct {
	FirstName string
	LastName  string
	Company   string
	Title     string
}

// VarsFromContact builds template variables from a queued contact.
func VarsFromContact(c Contact) TemplateVars {
	return TemplateVars{
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Company:   c.Company,
		Title:     c.Title,
	}
}

// RenderTemplate substitutes every recognized placeholder in tmpl.
// Recognized placeholders are {firstName}, {lastName}, {fullName},
// {company}, and {title}. Missing values render as empty strings, so a
// template containing only recognized placeholders never leaks
// placeholder syntax into the output.
func RenderTemplate(tmpl string, vars TemplateVars) string {
	fullName := strings.TrimSpace(vars.FirstName + " " + vars.LastName)
	r := strings.NewReplacer(
		"{firstName}", vars.FirstName,
		"{lastName}", vars.LastName,
		"{fullName}", fullName,
		"{company}", vars.Company,
		"{title}", vars.Title,
	)
	return r.Replace(tmpl)
}
