package engage

import (
	"context"
	"sync"

	"github.com/sells-group/outreach-cli/internal/dedupe"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/store"
)

// recordingStore implements store.Store in memory for pipeline tests.
type recordingStore struct {
	mu    sync.Mutex
	leads map[string]model.Lead
	seen  []string
}

func newRecordingStore() *recordingStore {
	return &recordingStore{leads: map[string]model.Lead{}}
}

func (s *recordingStore) SaveLeads(_ context.Context, leads []model.Lead) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := 0
	for _, l := range leads {
		key := dedupe.NormalizeProfileURL(l.ProfileURL)
		if _, ok := s.leads[key]; ok {
			continue
		}
		s.leads[key] = l
		saved++
	}
	return saved, nil
}

func (s *recordingStore) ListLeads(context.Context, store.LeadFilter) ([]model.Lead, error) {
	return nil, nil
}
func (s *recordingStore) UpdateLeadStatus(context.Context, string, model.LeadStatus) error {
	return nil
}
func (s *recordingStore) SaveContacts(context.Context, []model.Contact) error { return nil }
func (s *recordingStore) ListContacts(context.Context) ([]model.Contact, error) {
	return nil, nil
}
func (s *recordingStore) UpdateContact(context.Context, model.Contact) error { return nil }
func (s *recordingStore) ResetQueue(context.Context) error                   { return nil }

func (s *recordingStore) ListSeenURLs(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.seen...), nil
}

func (s *recordingStore) ReplaceSeenURLs(_ context.Context, urls []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = urls
	return nil
}

func (s *recordingStore) Migrate(context.Context) error { return nil }
func (s *recordingStore) Close() error                  { return nil }
