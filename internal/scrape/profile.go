// Package scrape extracts structured profile data from a loaded
// profile page. Both the discovery pipeline and the outbound engine use
// it; the page must already be navigated before calling in.
package scrape

import (
	"context"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/driver"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/resilience"
)

// profileScript extracts the current profile page into one record. The
// selectors are opaque to the pipelines; only the record shape matters.
const profileScript = `
(() => {
	const text = sel => document.querySelector(sel)?.innerText?.trim() ?? '';
	return [{
		headline: text('.text-body-medium.break-words'),
		location: text('.text-body-small.inline.t-black--light.break-words'),
		about: text('#about ~ .display-flex .inline-show-more-text'),
		currentRole: text('#experience ~ .pvs-list__outer-container .t-bold span[aria-hidden="true"]'),
		currentCompany: text('#experience ~ .pvs-list__outer-container .t-normal span[aria-hidden="true"]'),
		education: text('#education ~ .pvs-list__outer-container .t-bold span[aria-hidden="true"]'),
		connectionDegree: text('.dist-value'),
		followerCount: text('.pv-top-card--list-bullet li span')
	}];
})()
`

// Profile evaluates the extraction script against the current page and
// maps the record into ProfileData. Failure here is an automation
// error; callers decide whether it is fatal to their phase.
func Profile(ctx context.Context, d driver.PageDriver) (model.ProfileData, error) {
	result, err := d.Evaluate(ctx, profileScript)
	if err != nil {
		return model.ProfileData{}, resilience.Categorize(resilience.CategoryAutomation, eris.Wrap(err, "scrape: evaluate profile"))
	}
	records, err := driver.DecodeRecords(result)
	if err != nil {
		return model.ProfileData{}, resilience.Categorize(resilience.CategoryAutomation, err)
	}
	if len(records) == 0 {
		return model.ProfileData{}, resilience.Categorize(resilience.CategoryAutomation, eris.New("scrape: profile yielded no record"))
	}

	rec := records[0]
	return model.ProfileData{
		Headline:         rec.Field("headline"),
		Location:         rec.Field("location"),
		About:            rec.Field("about"),
		CurrentRole:      rec.Field("currentRole"),
		CurrentCompany:   rec.Field("currentCompany"),
		Education:        rec.Field("education"),
		ConnectionDegree: ParseDegree(rec.Field("connectionDegree")),
		FollowerCount:    parseCount(rec.Field("followerCount")),
	}, nil
}

// ParseDegree reads "1st"/"2nd"/"3rd" style markers.
func ParseDegree(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	for i, r := range s {
		if r < '0' || r > '9' {
			s = s[:i]
			break
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// parseCount reads "1,234 followers" style strings.
func parseCount(s string) int {
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
		if r == ' ' && digits.Len() > 0 {
			break
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return n
}
