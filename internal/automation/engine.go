package automation

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/driver"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/resilience"
	"github.com/sells-group/outreach-cli/internal/store"
)

// Config carries the knobs for the messaging engine.
type Config struct {
	MinDelay        time.Duration
	MaxDelay        time.Duration
	ComposerWait    time.Duration
	PageTimeout     time.Duration
	LoginWait       time.Duration
	MessageTemplate string
	Model           string // AI model for on-the-fly generation; empty disables it
	SampleMessage   string
}

// Generator produces a personalized message from scraped profile data.
// *ai.Router satisfies it.
type Generator interface {
	Generate(ctx context.Context, modelID string, profile model.ProfileData, firstName, sampleStyle string) (string, error)
}

// ItemResult reports one contact's outcome: the recorded status plus,
// on failure, the machine-checkable category and human-readable message.
type ItemResult struct {
	Contact  model.Contact
	Status   model.MessageStatus
	Category resilience.Category
	Message  string
}

// Stats is a snapshot of the engine's counters.
type Stats struct {
	State     State  `json:"state"`
	Current   string `json:"current,omitempty"`
	Processed int    `json:"processed"`
	Sent      int    `json:"sent"`
	Failed    int    `json:"failed"`
	Skipped   int    `json:"skipped"`
	Remaining int    `json:"remaining"`
	DelayLeft int    `json:"delay_left,omitempty"`
	LastError string `json:"last_error,omitempty"`
}

// Engine works through the contact queue one profile at a time. All
// pacing, pause handling, and status bookkeeping lives here; the
// per-contact send flow is in send.go.
type Engine struct {
	cfg    Config
	driver driver.PageDriver
	store  store.Store
	status *store.StatusFile // nil disables status-file mirroring
	sm     *stateMachine

	onResult func(ItemResult) // nil disables per-item reporting
	gen      Generator        // nil disables on-the-fly generation

	statsMu sync.Mutex
	stats   Stats
}

// NewEngine creates a messaging engine over the given driver and store.
func NewEngine(cfg Config, d driver.PageDriver, st store.Store, status *store.StatusFile) *Engine {
	return &Engine{
		cfg:    cfg,
		driver: d,
		store:  st,
		status: status,
		sm:     newStateMachine(),
	}
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State { return e.sm.current() }

// Stats returns a snapshot of the counters.
func (e *Engine) Stats() Stats {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	s := e.stats
	s.State = e.sm.current()
	return s
}

func (e *Engine) updateStats(fn func(s *Stats)) {
	e.statsMu.Lock()
	fn(&e.stats)
	e.statsMu.Unlock()
}

// OnResult registers an observer invoked after each contact's outcome
// is recorded. Set before Run; calls arrive from the run goroutine.
func (e *Engine) OnResult(fn func(ItemResult)) { e.onResult = fn }

// UseGenerator enables AI generation for contacts that arrive without a
// pre-generated message. Set before Run; ignored unless Config.Model is
// also set.
func (e *Engine) UseGenerator(g Generator) { e.gen = g }

// canGenerate reports whether the engine may produce a message from the
// live profile.
func (e *Engine) canGenerate() bool { return e.gen != nil && e.cfg.Model != "" }

// Pause requests a pause. Honored only while the engine is working;
// the engine blocks before its next contact or mid-countdown.
func (e *Engine) Pause() bool { return e.sm.pause() }

// Resume continues a paused run.
func (e *Engine) Resume() bool { return e.sm.resume() }

// Stop aborts any active run. The in-flight contact finishes its
// current step before the engine notices.
func (e *Engine) Stop() bool { return e.sm.stop() }

// Run processes every pending contact in queue order. It refuses to
// start while a run is active or when the queue has no pending
// contacts, waits for an authenticated session, and spaces sends with
// a randomized delay. The returned error covers
// setup failures only; per-contact failures are recorded on the
// contact and counted, never fatal to the run.
func (e *Engine) Run(ctx context.Context) error {
	if !e.sm.begin() {
		return eris.New("automation: already running")
	}

	log := zap.L()

	contacts, err := e.store.ListContacts(ctx)
	if err != nil {
		return e.fail(eris.Wrap(err, "automation: load queue"))
	}

	queue := pendingOnly(contacts)
	if len(queue) == 0 {
		// Nothing to send: back to idle without touching the browser.
		e.sm.finish(StateIdle)
		return resilience.Categorize(resilience.CategoryInput, eris.New("automation: queue is empty"))
	}
	e.updateStats(func(s *Stats) { *s = Stats{Remaining: len(queue)} })
	log.Info("automation: queue loaded",
		zap.Int("total", len(contacts)),
		zap.Int("pending", len(queue)),
	)

	if err := e.awaitLogin(ctx); err != nil {
		return e.fail(err)
	}
	e.sm.set(StateRunning)

	for i, contact := range queue {
		if stopped, err := e.checkpoint(ctx); stopped || err != nil {
			return err
		}

		e.processContact(ctx, contact)

		e.updateStats(func(s *Stats) {
			s.Processed++
			s.Remaining = len(queue) - i - 1
			s.Current = ""
		})

		// Randomized spacing before the next contact; skipped
		// after the last.
		if i < len(queue)-1 {
			if stopped, err := e.delayBetweenContacts(ctx); stopped || err != nil {
				return err
			}
		}
	}

	e.sm.finish(StateCompleted)
	stats := e.Stats()
	log.Info("automation: run complete",
		zap.Int("sent", stats.Sent),
		zap.Int("failed", stats.Failed),
		zap.Int("skipped", stats.Skipped),
	)
	return nil
}

// awaitLogin polls until the page shows an authenticated session.
func (e *Engine) awaitLogin(ctx context.Context) error {
	zap.L().Info("automation: waiting for login")
	return resilience.WaitUntil(ctx, "login", resilience.WaitConfig{
		Interval: 2 * time.Second,
		Timeout:  e.cfg.LoginWait,
	}, func(ctx context.Context) (bool, error) {
		return driver.EvaluateBool(ctx, e.driver, loggedInScript)
	})
}

// processContact runs one contact through the send flow and records
// the outcome in the store and the status file.
func (e *Engine) processContact(ctx context.Context, contact model.Contact) {
	log := zap.L().With(
		zap.String("contact", contact.FullName()),
		zap.Int("position", contact.Position),
	)
	e.sm.set(StateProcessingContact)
	e.updateStats(func(s *Stats) { s.Current = contact.FullName() })

	e.recordStatus(ctx, contact, model.MessageStatusInProgress, "")

	message := e.messageFor(contact)
	if message == "" && !e.canGenerate() {
		log.Warn("automation: no message text, skipping")
		e.recordStatus(ctx, contact, model.MessageStatusSkipped, "no message text")
		e.updateStats(func(s *Stats) { s.Skipped++ })
		e.emitResult(contact, model.MessageStatusSkipped, nil)
		return
	}

	res := e.sendMessage(ctx, contact, message)
	switch res.status {
	case model.MessageStatusSent:
		log.Info("automation: message sent")
		e.recordStatus(ctx, contact, model.MessageStatusSent, "")
		e.updateStats(func(s *Stats) { s.Sent++ })
	case model.MessageStatusSkipped:
		log.Warn("automation: contact skipped", zap.Error(res.err))
		e.recordStatus(ctx, contact, model.MessageStatusSkipped, res.err.Error())
		e.updateStats(func(s *Stats) { s.Skipped++ })
	default:
		log.Error("automation: send failed",
			zap.String("category", string(resilience.CategoryOf(res.err))),
			zap.Error(res.err),
		)
		e.recordStatus(ctx, contact, model.MessageStatusFailed, res.err.Error())
		e.updateStats(func(s *Stats) { s.Failed++ })
	}
	e.emitResult(contact, res.status, res.err)
}

// fail records the run's terminal error and moves to the error state.
// It returns err so callers can hand it straight back.
func (e *Engine) fail(err error) error {
	e.sm.finish(StateError)
	e.updateStats(func(s *Stats) { s.LastError = err.Error() })
	return err
}

func (e *Engine) emitResult(contact model.Contact, status model.MessageStatus, err error) {
	if e.onResult == nil {
		return
	}
	r := ItemResult{Contact: contact, Status: status}
	if err != nil {
		r.Category = resilience.CategoryOf(err)
		r.Message = err.Error()
	}
	e.onResult(r)
}

// recordStatus updates the contact in the store and mirrors the status
// into the batch status file. Bookkeeping failures are logged, never
// allowed to abort the run.
func (e *Engine) recordStatus(ctx context.Context, contact model.Contact, status model.MessageStatus, errMsg string) {
	now := time.Now()
	contact.MessageStatus = status
	contact.LastAttemptAt = &now
	contact.LastError = errMsg

	if err := e.store.UpdateContact(ctx, contact); err != nil {
		zap.L().Warn("automation: contact update failed", zap.Error(err))
	}
	if e.status != nil {
		if err := e.status.Record(contact.ProfileURL, status, errMsg); err != nil {
			zap.L().Warn("automation: status file update failed", zap.Error(err))
		}
	}
}

// errRunStopped signals a countdown cut short by a stop request. Never
// surfaced to callers.
var errRunStopped = eris.New("automation: run stopped")

// delayBetweenContacts waits a random duration in [MinDelay, MaxDelay],
// counting down a second at a time so pause and stop are honored
// mid-wait. Returns stopped=true when the run was stopped.
func (e *Engine) delayBetweenContacts(ctx context.Context) (stopped bool, err error) {
	e.sm.set(StateWaitingForDelay)
	delay := e.randomDelay()
	zap.L().Info("automation: waiting before next contact", zap.Duration("delay", delay))

	err = resilience.Countdown(ctx, int(delay/time.Second), func(remaining int) error {
		if stopped, err := e.checkpoint(ctx); err != nil {
			return err
		} else if stopped {
			return errRunStopped
		}
		e.updateStats(func(s *Stats) { s.DelayLeft = remaining })
		return nil
	})
	e.updateStats(func(s *Stats) { s.DelayLeft = 0 })
	switch {
	case errors.Is(err, errRunStopped):
		return true, nil
	case err != nil:
		return false, err
	}
	return false, nil
}

// checkpoint blocks while paused and reports whether the run was
// stopped or cancelled. Every loop in the engine funnels through here.
func (e *Engine) checkpoint(ctx context.Context) (stopped bool, err error) {
	for {
		if err := ctx.Err(); err != nil {
			return false, e.fail(err)
		}
		switch e.sm.current() {
		case StatePaused:
			if err := resilience.Sleep(ctx, 250*time.Millisecond); err != nil {
				return false, e.fail(err)
			}
		case StateIdle:
			// Stopped.
			zap.L().Info("automation: run stopped")
			return true, nil
		default:
			return false, nil
		}
	}
}

func (e *Engine) randomDelay() time.Duration {
	if e.cfg.MaxDelay <= e.cfg.MinDelay {
		return e.cfg.MinDelay
	}
	span := e.cfg.MaxDelay - e.cfg.MinDelay
	return e.cfg.MinDelay + rand.N(span)
}

// preSendDelay is the short pause between injecting text and clicking
// send, 1-3 seconds.
func (e *Engine) preSendDelay() time.Duration {
	return time.Second + rand.N(2*time.Second)
}

func pendingOnly(contacts []model.Contact) []model.Contact {
	queue := make([]model.Contact, 0, len(contacts))
	for _, c := range contacts {
		if c.MessageStatus == model.MessageStatusPending {
			queue = append(queue, c)
		}
	}
	return queue
}
