package discovery

import (
	"fmt"
	"net/url"

	"github.com/sells-group/outreach-cli/internal/model"
)

// The extraction scripts are opaque to the pipeline: only the shape of
// what they return (arrays of string-keyed field maps) is a contract.

// searchResultsScript extracts candidate records from a results page.
// Each record carries name, profileUrl, and headline fields.
const searchResultsScript = `
(() => {
	const cards = document.querySelectorAll('[data-view-name="search-entity-result"]');
	return Array.from(cards).map(card => ({
		name: card.querySelector('span[aria-hidden="true"]')?.innerText?.trim() ?? '',
		profileUrl: card.querySelector('a[href*="/in/"]')?.href?.split('?')[0] ?? '',
		headline: card.querySelector('.entity-result__primary-subtitle')?.innerText?.trim() ?? ''
	})).filter(r => r.profileUrl !== '');
})()
`

// searchPageURL builds the results-page URL for a query and page number.
func searchPageURL(q model.SearchQuery, page int) string {
	keywords := q.Role
	if q.Location != "" {
		keywords += " " + q.Location
	}
	return fmt.Sprintf(
		"https://www.linkedin.com/search/results/people/?keywords=%s&page=%d",
		url.QueryEscape(keywords), page,
	)
}
