// Package discovery implements the lead discovery pipeline: search,
// profile enrichment, and contact enrichment, run as three sequential
// cancellable phases over the shared page driver.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/outreach-cli/internal/dedupe"
	"github.com/sells-group/outreach-cli/internal/driver"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/resilience"
	"github.com/sells-group/outreach-cli/internal/scrape"
	"github.com/sells-group/outreach-cli/internal/store"
	"github.com/sells-group/outreach-cli/pkg/enrich"
)

// Phase names the pipeline's current stage.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseSearch   Phase = "search"
	PhaseProfiles Phase = "profiles"
	PhaseContacts Phase = "contacts"
	PhaseDone     Phase = "done"
)

// Progress is a point-in-time snapshot of the pipeline's counters.
type Progress struct {
	Phase             Phase `json:"phase"`
	Found             int   `json:"found"`
	DuplicatesSkipped int   `json:"duplicates_skipped"`
	Saved             int   `json:"saved"`
	Enriched          int   `json:"enriched"`
	Index             int   `json:"index"`
	Total             int   `json:"total"`
}

// Result is the outcome of one discovery run.
type Result struct {
	Leads             []model.Lead `json:"leads"`
	NewLeadsCount     int          `json:"new_leads_count"`
	DuplicatesSkipped int          `json:"duplicates_skipped"`
	SavedCount        int          `json:"saved_count"`
	EnrichedCount     int          `json:"enriched_count"`
	PagesVisited      int          `json:"pages_visited"`
	Notes             []string     `json:"notes,omitempty"`
}

// Generator produces an outreach message for a scraped profile.
// *ai.Router satisfies it.
type Generator interface {
	Generate(ctx context.Context, modelID string, profile model.ProfileData, firstName, sampleStyle string) (string, error)
}

// Config carries the knobs for one discovery run.
type Config struct {
	TargetLeads     int
	MaxPages        int
	ProfileDelay    time.Duration
	PageTimeout     time.Duration
	AIEnabled       bool
	Model           string
	SampleMessage   string
	MessageTemplate string
	EnrichEnabled   bool
	Source          string
}

// Pipeline orchestrates the three discovery phases. One run owns the
// page driver for its whole duration; progress counters are written
// only by the running task and read through Progress().
type Pipeline struct {
	cfg      Config
	driver   driver.PageDriver
	dedupe   *dedupe.Store
	store    store.Store
	gen      Generator     // nil disables AI generation
	enricher enrich.Client // nil disables contact enrichment

	// onQueue receives the run's saved leads projected into the
	// outbound queue. May be nil.
	onQueue func(contacts []model.Contact)

	mu       sync.Mutex
	progress Progress
}

// New creates a discovery pipeline.
func New(cfg Config, d driver.PageDriver, dd *dedupe.Store, st store.Store, gen Generator, enricher enrich.Client, onQueue func([]model.Contact)) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		driver:   d,
		dedupe:   dd,
		store:    st,
		gen:      gen,
		enricher: enricher,
		onQueue:  onQueue,
		progress: Progress{Phase: PhaseIdle},
	}
}

// Progress returns a snapshot of the live counters.
func (p *Pipeline) Progress() Progress {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.progress
}

func (p *Pipeline) update(fn func(pr *Progress)) {
	p.mu.Lock()
	fn(&p.progress)
	p.mu.Unlock()
}

// SeedHistory imports normalized URLs from stored leads and contacts
// into the dedupe set, alongside the persisted seen-URL history.
func (p *Pipeline) SeedHistory(ctx context.Context) error {
	if err := p.dedupe.Load(ctx); err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)

	var leadURLs, contactURLs []string
	g.Go(func() error {
		leads, err := p.store.ListLeads(gCtx, store.LeadFilter{Limit: 10000})
		if err != nil {
			return err
		}
		for _, l := range leads {
			leadURLs = append(leadURLs, l.ProfileURL)
		}
		return nil
	})
	g.Go(func() error {
		contacts, err := p.store.ListContacts(gCtx)
		if err != nil {
			return err
		}
		for _, c := range contacts {
			contactURLs = append(contactURLs, c.ProfileURL)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "discovery: seed history")
	}

	p.dedupe.ImportExisting(leadURLs)
	p.dedupe.ImportExisting(contactURLs)
	return nil
}

// Run executes search, profile enrichment, and contact enrichment for a
// single query, then persists the accumulated leads and hands them to
// the outbound queue. Cancellation is honored at the top of every loop
// iteration and at each delay tick.
func (p *Pipeline) Run(ctx context.Context, query model.SearchQuery) (*Result, error) {
	log := zap.L().With(zap.String("role", query.Role), zap.String("location", query.Location))
	log.Info("discovery: starting run", zap.Int("target", p.cfg.TargetLeads))

	result := &Result{}

	trackPhase := func(name Phase, fn func() error) error {
		start := time.Now()
		p.update(func(pr *Progress) { pr.Phase = name })
		err := fn()
		if err != nil {
			log.Error("discovery: phase failed",
				zap.String("phase", string(name)),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err),
			)
			return err
		}
		log.Info("discovery: phase complete",
			zap.String("phase", string(name)),
			zap.Duration("duration", time.Since(start)),
		)
		return nil
	}

	if err := trackPhase(PhaseSearch, func() error {
		return p.searchPhase(ctx, query, result)
	}); err != nil {
		return result, err
	}

	if err := trackPhase(PhaseProfiles, func() error {
		return p.profilePhase(ctx, result)
	}); err != nil {
		return result, err
	}

	if p.cfg.EnrichEnabled && p.enricher != nil {
		if err := trackPhase(PhaseContacts, func() error {
			return p.enrichPhase(ctx, result)
		}); err != nil {
			return result, err
		}
	}

	// Persist and hand off.
	saved, err := p.store.SaveLeads(ctx, result.Leads)
	if err != nil {
		return result, eris.Wrap(err, "discovery: save leads")
	}
	result.SavedCount = saved
	p.update(func(pr *Progress) { pr.Saved = saved; pr.Phase = PhaseDone })

	if err := p.dedupe.Flush(ctx); err != nil {
		log.Warn("discovery: dedupe flush failed", zap.Error(err))
	}

	if p.onQueue != nil && len(result.Leads) > 0 {
		contacts := make([]model.Contact, len(result.Leads))
		for i, lead := range result.Leads {
			contacts[i] = model.ContactFromLead(lead, i)
		}
		p.onQueue(contacts)
	}

	log.Info("discovery: run complete",
		zap.Int("new_leads", result.NewLeadsCount),
		zap.Int("duplicates", result.DuplicatesSkipped),
		zap.Int("saved", result.SavedCount),
		zap.Int("enriched", result.EnrichedCount),
	)
	return result, nil
}

// searchPhase pages through results until the target count of new leads
// is reached, the page ceiling is hit, or the driver yields no more
// records. Duplicates are counted and discarded; accepted candidates
// are marked seen immediately so overlapping pages cannot re-admit them.
func (p *Pipeline) searchPhase(ctx context.Context, query model.SearchQuery, result *Result) error {
	for page := 1; page <= p.cfg.MaxPages; page++ {
		// Cancellation stops before the next page load, never
		// mid-extraction.
		if err := ctx.Err(); err != nil {
			return err
		}
		if result.NewLeadsCount >= p.cfg.TargetLeads {
			break
		}

		pageURL := searchPageURL(query, page)
		if err := driver.NavigateAndWait(ctx, p.driver, pageURL, p.cfg.PageTimeout); err != nil {
			return eris.Wrapf(err, "discovery: load results page %d", page)
		}
		result.PagesVisited++

		raw, err := p.driver.Evaluate(ctx, searchResultsScript)
		if err != nil {
			return resilience.Categorize(resilience.CategoryAutomation, eris.Wrapf(err, "discovery: extract page %d", page))
		}
		records, err := driver.DecodeRecords(raw)
		if err != nil {
			return eris.Wrapf(err, "discovery: decode page %d", page)
		}
		if len(records) == 0 {
			// Driver reports no further pages.
			break
		}

		for _, rec := range records {
			profileURL := rec.Field("profileUrl")
			if profileURL == "" {
				continue
			}
			normalized := dedupe.NormalizeProfileURL(profileURL)
			if p.dedupe.IsDuplicate(normalized) {
				result.DuplicatesSkipped++
				p.update(func(pr *Progress) { pr.DuplicatesSkipped++ })
				continue
			}
			p.dedupe.MarkSeen(normalized)

			first, last := model.SplitName(rec.Field("name"))
			lead := model.NewLead(first, last, profileURL, p.cfg.Source)
			if headline := rec.Field("headline"); headline != "" {
				lead.Title = headline
			}
			result.Leads = append(result.Leads, lead)
			result.NewLeadsCount++
			p.update(func(pr *Progress) { pr.Found++ })

			if result.NewLeadsCount >= p.cfg.TargetLeads {
				break
			}
		}
	}
	return nil
}

// profilePhase visits each new lead's profile in discovery order,
// scrapes it, and generates an outreach message when AI is enabled.
// Scrape and generation failures are non-fatal: the lead keeps whatever
// was obtained and a note records why.
func (p *Pipeline) profilePhase(ctx context.Context, result *Result) error {
	p.update(func(pr *Progress) { pr.Total = len(result.Leads) })

	for i := range result.Leads {
		if err := ctx.Err(); err != nil {
			return err
		}
		lead := &result.Leads[i]
		p.update(func(pr *Progress) { pr.Index = i })

		profile, note := p.scrapeProfile(ctx, lead.ProfileURL)
		if note != "" {
			result.Notes = append(result.Notes, fmt.Sprintf("%s: %s", lead.FullName(), note))
		}

		if profile.CurrentCompany != "" {
			lead.Company = profile.CurrentCompany
		}
		if profile.CurrentRole != "" {
			lead.Title = profile.CurrentRole
		}
		if profile.Location != "" {
			lead.Location = profile.Location
		}

		lead.Message = p.buildMessage(ctx, *lead, profile, result)

		// Fixed inter-profile delay so the source platform is not
		// hammered; skipped after the last lead.
		if i < len(result.Leads)-1 {
			if err := resilience.Sleep(ctx, p.cfg.ProfileDelay); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Pipeline) scrapeProfile(ctx context.Context, profileURL string) (model.ProfileData, string) {
	if err := driver.NavigateAndWait(ctx, p.driver, profileURL, p.cfg.PageTimeout); err != nil {
		return model.ProfileData{}, fmt.Sprintf("profile load failed: %v", err)
	}
	profile, err := scrape.Profile(ctx, p.driver)
	if err != nil {
		return model.ProfileData{}, fmt.Sprintf("profile scrape failed: %v", err)
	}
	return profile, ""
}

func (p *Pipeline) buildMessage(ctx context.Context, lead model.Lead, profile model.ProfileData, result *Result) string {
	if p.cfg.AIEnabled && p.cfg.Model != "" && p.gen != nil {
		msg, err := p.gen.Generate(ctx, p.cfg.Model, profile, lead.FirstName, p.cfg.SampleMessage)
		if err == nil && msg != "" {
			return msg
		}
		if err != nil {
			result.Notes = append(result.Notes, fmt.Sprintf("%s: generation failed, using template: %v", lead.FullName(), err))
		}
	}
	return model.RenderTemplate(p.cfg.MessageTemplate, model.TemplateVars{
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		Company:   lead.Company,
		Title:     lead.Title,
	})
}

// enrichPhase backfills contact info for leads that lack it. A
// rate-limit or credits-exhausted response halts the phase, keeping
// what was enriched so far; any other error skips only that lead.
func (p *Pipeline) enrichPhase(ctx context.Context, result *Result) error {
	for i := range result.Leads {
		if err := ctx.Err(); err != nil {
			return err
		}
		lead := &result.Leads[i]
		if lead.HasContactInfo() {
			continue
		}
		p.update(func(pr *Progress) { pr.Index = i })

		resp, err := p.enricher.PersonMatch(ctx, enrich.PersonMatchRequest{
			ProfileURL: lead.ProfileURL,
			FirstName:  lead.FirstName,
			LastName:   lead.LastName,
		})
		if err != nil {
			if errors.Is(err, enrich.ErrRateLimited) || errors.Is(err, enrich.ErrNoCredits) {
				zap.L().Warn("discovery: enrichment halted", zap.Error(err))
				return nil
			}
			result.Notes = append(result.Notes, fmt.Sprintf("%s: enrichment failed: %v", lead.FullName(), err))
			continue
		}
		enriched := model.EnrichmentResult{
			Found:    resp.Found,
			Email:    resp.Email,
			Phone:    resp.Phone,
			Company:  resp.Company,
			Location: resp.Location,
		}
		if !enriched.Backfill(lead) {
			continue
		}
		result.EnrichedCount++
		p.update(func(pr *Progress) { pr.Enriched++ })
	}
	return nil
}
