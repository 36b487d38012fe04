package engage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/dedupe"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/store"
)

// fakeDriver serves engager batches per scroll and steers the connect
// flow per profile URL.
type fakeDriver struct {
	mu     sync.Mutex
	loaded []string

	// batches holds the engager lists returned per extraction; the
	// last batch repeats once exhausted.
	batches  [][]any
	extracts int

	// connect maps a profile URL to its connectScript outcome.
	connect  map[string]string
	inviteOK bool
}

func (d *fakeDriver) Load(_ context.Context, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loaded = append(d.loaded, url)
	return nil
}

func (d *fakeDriver) IsLoading(_ context.Context) (bool, error) { return false, nil }

func (d *fakeDriver) Evaluate(_ context.Context, script string) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch script {
	case openReactionsScript:
		return true, nil
	case engagersScript:
		idx := d.extracts
		if idx >= len(d.batches) {
			idx = len(d.batches) - 1
		}
		d.extracts++
		return d.batches[idx], nil
	case scrollModalScript:
		return true, nil
	case connectScript:
		last := d.loaded[len(d.loaded)-1]
		if outcome, ok := d.connect[last]; ok {
			return outcome, nil
		}
		return "clicked", nil
	case sendInviteScript:
		return d.inviteOK, nil
	}
	// addNoteScript is formatted with the note text.
	return true, nil
}

func engagerRecord(name, url, headline, degree string) map[string]any {
	return map[string]any{"name": name, "profileUrl": url, "headline": headline, "degree": degree}
}

func testEngageConfig() Config {
	return Config{
		MaxEngagers:  100,
		StallScrolls: 3,
		Source:       "engagement",
	}
}

func newTestPipeline(d *fakeDriver, f ICPFilter, st store.Store) *Pipeline {
	return New(testEngageConfig(), f, d, dedupe.NewStore(st), st)
}

func TestPipeline_CollectsAndConnects(t *testing.T) {
	d := &fakeDriver{
		inviteOK: true,
		batches: [][]any{{
			engagerRecord("ann alpha", "https://linkedin.com/in/ann", "Founder at Acme", "2nd"),
			engagerRecord("bob beta", "https://linkedin.com/in/bob", "Recruiter at TalentCo", "2nd"),
		}},
	}
	st := newRecordingStore()
	p := newTestPipeline(d, ICPFilter{IncludeKeywords: []string{"founder"}}, st)

	result, err := p.Run(context.Background(), "https://linkedin.com/posts/123")
	require.NoError(t, err)

	assert.Equal(t, 2, result.EngagersFound)
	assert.Equal(t, 1, result.Matched)
	assert.Equal(t, 1, result.Requested)
	assert.Equal(t, 1, result.SavedLeads)
	assert.Contains(t, d.loaded, "https://linkedin.com/in/ann")
	assert.NotContains(t, d.loaded, "https://linkedin.com/in/bob")
}

func TestPipeline_ScrollStallStopsCollection(t *testing.T) {
	batch := []any{
		engagerRecord("ann alpha", "https://linkedin.com/in/ann", "Founder", "2nd"),
	}
	d := &fakeDriver{inviteOK: true, batches: [][]any{batch}}
	st := newRecordingStore()

	cfg := testEngageConfig()
	cfg.StallScrolls = 3
	p := New(cfg, ICPFilter{}, d, dedupe.NewStore(st), st)

	result, err := p.Run(context.Background(), "https://linkedin.com/posts/123")
	require.NoError(t, err)

	assert.Equal(t, 1, result.EngagersFound)
	// First extraction grows 0 -> 1, then three stalls end the loop.
	assert.Equal(t, 4, d.extracts)
}

func TestPipeline_EngagerCeiling(t *testing.T) {
	var batch []any
	for i := 0; i < 10; i++ {
		batch = append(batch, engagerRecord("p q", "https://linkedin.com/in/p"+string(rune('a'+i)), "Founder", "2nd"))
	}
	d := &fakeDriver{inviteOK: true, batches: [][]any{batch}}
	st := newRecordingStore()

	cfg := testEngageConfig()
	cfg.MaxEngagers = 5
	p := New(cfg, ICPFilter{}, d, dedupe.NewStore(st), st)

	result, err := p.Run(context.Background(), "https://linkedin.com/posts/123")
	require.NoError(t, err)
	assert.Equal(t, 5, result.EngagersFound)
}

func TestPipeline_PendingAndConnectedCounted(t *testing.T) {
	d := &fakeDriver{
		inviteOK: true,
		batches: [][]any{{
			engagerRecord("ann alpha", "https://linkedin.com/in/ann", "Founder", "1st"),
			engagerRecord("bob beta", "https://linkedin.com/in/bob", "Founder", "2nd"),
			engagerRecord("cat gamma", "https://linkedin.com/in/cat", "Founder", "2nd"),
		}},
		connect: map[string]string{
			"https://linkedin.com/in/ann": "connected",
			"https://linkedin.com/in/bob": "pending",
		},
	}
	st := newRecordingStore()
	p := newTestPipeline(d, ICPFilter{}, st)

	result, err := p.Run(context.Background(), "https://linkedin.com/posts/123")
	require.NoError(t, err)

	assert.Equal(t, 1, result.AlreadyLinked)
	assert.Equal(t, 1, result.AlreadyPending)
	assert.Equal(t, 1, result.Requested)
	assert.Equal(t, 3, result.SavedLeads, "pending and connected engagers still become leads")
}

func TestPipeline_DuplicateEngagersDropped(t *testing.T) {
	d := &fakeDriver{
		inviteOK: true,
		batches: [][]any{{
			engagerRecord("ann alpha", "https://linkedin.com/in/ann", "Founder", "2nd"),
			engagerRecord("ann alpha", "https://www.linkedin.com/in/ann/", "Founder", "2nd"),
		}},
	}
	st := newRecordingStore()
	p := newTestPipeline(d, ICPFilter{}, st)

	result, err := p.Run(context.Background(), "https://linkedin.com/posts/123")
	require.NoError(t, err)
	assert.Equal(t, 1, result.EngagersFound)
}

func TestLeadFromEngager_TitleCasesName(t *testing.T) {
	st := newRecordingStore()
	p := newTestPipeline(&fakeDriver{}, ICPFilter{}, st)

	lead := p.leadFromEngager(Engager{
		Name:       "JANE DOE",
		ProfileURL: "https://linkedin.com/in/janedoe",
		Headline:   "CTO at Acme",
	})

	assert.Equal(t, "Jane", lead.FirstName)
	assert.Equal(t, "Doe", lead.LastName)
	assert.Equal(t, "CTO at Acme", lead.Title)
	assert.Equal(t, model.LeadStatusNew, lead.Status)
	assert.Equal(t, "engagement", lead.Source)
}
