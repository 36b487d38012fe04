package engage

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/outreach-cli/internal/dedupe"
	"github.com/sells-group/outreach-cli/internal/driver"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/resilience"
	"github.com/sells-group/outreach-cli/internal/scrape"
	"github.com/sells-group/outreach-cli/internal/store"
)

// Engager is one person who reacted to the target post.
type Engager struct {
	Name             string `json:"name"`
	ProfileURL       string `json:"profile_url"`
	Headline         string `json:"headline"`
	ConnectionDegree int    `json:"connection_degree"`
}

// Config carries the knobs for one engagement run.
type Config struct {
	MaxEngagers    int
	StallScrolls   int
	ScrollDelay    time.Duration
	ConnectDelay   time.Duration
	PageTimeout    time.Duration
	ConnectionNote string
	Source         string
}

// Result is the outcome of one engagement run.
type Result struct {
	EngagersFound  int      `json:"engagers_found"`
	Matched        int      `json:"matched"`
	Requested      int      `json:"requested"`
	AlreadyPending int      `json:"already_pending"`
	AlreadyLinked  int      `json:"already_linked"`
	Failed         int      `json:"failed"`
	SavedLeads     int      `json:"saved_leads"`
	Notes          []string `json:"notes,omitempty"`
}

// Pipeline collects a post's engagers, filters them against an ICP,
// and sends connection requests to the matches.
type Pipeline struct {
	cfg    Config
	filter ICPFilter
	driver driver.PageDriver
	dedupe *dedupe.Store
	store  store.Store
	caser  cases.Caser
}

// New creates an engagement pipeline.
func New(cfg Config, filter ICPFilter, d driver.PageDriver, dd *dedupe.Store, st store.Store) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		filter: filter,
		driver: d,
		dedupe: dd,
		store:  st,
		caser:  cases.Title(language.English),
	}
}

// Run harvests engagers from the post at postURL, filters them, and
// connects with the matches. Matches are also saved as leads so they
// enter the normal outreach flow once connected.
func (p *Pipeline) Run(ctx context.Context, postURL string) (*Result, error) {
	log := zap.L().With(zap.String("post", postURL))
	result := &Result{}

	if err := driver.NavigateAndWait(ctx, p.driver, postURL, p.cfg.PageTimeout); err != nil {
		return result, eris.Wrap(err, "engage: load post")
	}

	engagers, err := p.collectEngagers(ctx)
	if err != nil {
		return result, err
	}
	result.EngagersFound = len(engagers)
	log.Info("engage: engagers collected", zap.Int("count", len(engagers)))

	var matches []Engager
	for _, e := range engagers {
		if !p.filter.Matches(e) {
			continue
		}
		normalized := dedupe.NormalizeProfileURL(e.ProfileURL)
		if p.dedupe.IsDuplicate(normalized) {
			continue
		}
		p.dedupe.MarkSeen(normalized)
		matches = append(matches, e)
	}
	result.Matched = len(matches)
	log.Info("engage: matches filtered", zap.Int("count", len(matches)))

	var leads []model.Lead
	for i, e := range matches {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		status := p.connect(ctx, e, result)
		if status == connectRequested || status == connectPending || status == connectLinked {
			leads = append(leads, p.leadFromEngager(e))
		}

		if i < len(matches)-1 {
			if err := resilience.Sleep(ctx, p.cfg.ConnectDelay); err != nil {
				return result, err
			}
		}
	}

	if len(leads) > 0 {
		saved, err := p.store.SaveLeads(ctx, leads)
		if err != nil {
			return result, eris.Wrap(err, "engage: save leads")
		}
		result.SavedLeads = saved
	}
	if err := p.dedupe.Flush(ctx); err != nil {
		log.Warn("engage: dedupe flush failed", zap.Error(err))
	}

	log.Info("engage: run complete",
		zap.Int("matched", result.Matched),
		zap.Int("requested", result.Requested),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// collectEngagers opens the reactions list and scrolls it until the
// engager ceiling is reached or the list stops growing for
// StallScrolls consecutive scrolls.
func (p *Pipeline) collectEngagers(ctx context.Context) ([]Engager, error) {
	opened, err := driver.EvaluateBool(ctx, p.driver, openReactionsScript)
	if err != nil {
		return nil, eris.Wrap(err, "engage: open reactions")
	}
	if !opened {
		return nil, resilience.Categorize(resilience.CategoryAutomation,
			eris.New("engage: reactions control not found on post"))
	}

	var engagers []Engager
	stalls := 0
	for len(engagers) < p.cfg.MaxEngagers && stalls < p.cfg.StallScrolls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := p.driver.Evaluate(ctx, engagersScript)
		if err != nil {
			return nil, eris.Wrap(err, "engage: extract engagers")
		}
		records, err := driver.DecodeRecords(raw)
		if err != nil {
			return nil, eris.Wrap(err, "engage: decode engagers")
		}

		previous := len(engagers)
		engagers = dedupeEngagers(records)
		if len(engagers) <= previous {
			stalls++
		} else {
			stalls = 0
		}

		if _, err := driver.EvaluateBool(ctx, p.driver, scrollModalScript); err != nil {
			return nil, eris.Wrap(err, "engage: scroll reactions")
		}
		if err := resilience.Sleep(ctx, p.cfg.ScrollDelay); err != nil {
			return nil, err
		}
	}

	if len(engagers) > p.cfg.MaxEngagers {
		engagers = engagers[:p.cfg.MaxEngagers]
	}
	return engagers, nil
}

// leadFromEngager projects an engager into a lead, title-casing the
// name the way the search results normally arrive.
func (p *Pipeline) leadFromEngager(e Engager) model.Lead {
	first, last := model.SplitName(p.caser.String(strings.ToLower(e.Name)))
	lead := model.NewLead(first, last, e.ProfileURL, p.cfg.Source)
	lead.Title = e.Headline
	return lead
}

// dedupeEngagers converts raw records to engagers, dropping rows that
// repeat a profile URL as the modal re-renders during scrolling.
func dedupeEngagers(records []driver.Record) []Engager {
	seen := map[string]bool{}
	var out []Engager
	for _, rec := range records {
		url := rec.Field("profileUrl")
		if url == "" {
			continue
		}
		key := dedupe.NormalizeProfileURL(url)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, Engager{
			Name:             rec.Field("name"),
			ProfileURL:       url,
			Headline:         rec.Field("headline"),
			ConnectionDegree: scrape.ParseDegree(rec.Field("degree")),
		})
	}
	return out
}
