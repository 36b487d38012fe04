package automation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/driver"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/resilience"
	"github.com/sells-group/outreach-cli/internal/scrape"
)

// sendResult is the terminal state of one send attempt.
type sendResult struct {
	status model.MessageStatus
	err    error
}

// messageFor resolves the text to send for a contact. A pre-generated
// message wins, rendered so any leftover placeholders are filled in.
// Without one, an empty result defers to generateMessage when a
// generator is configured, otherwise the configured template is
// rendered. An empty result with no generator means the contact must
// be skipped, not messaged blank.
func (e *Engine) messageFor(contact model.Contact) string {
	if contact.Message != "" {
		return model.RenderTemplate(contact.Message, model.VarsFromContact(contact))
	}
	if e.canGenerate() {
		return ""
	}
	return model.RenderTemplate(e.cfg.MessageTemplate, model.VarsFromContact(contact))
}

// generateMessage builds a message from the live profile page. The page
// must already be navigated. Generation failure falls back to the
// template; only a contact with neither yields an empty result.
func (e *Engine) generateMessage(ctx context.Context, contact model.Contact) string {
	log := zap.L().With(zap.String("contact", contact.FullName()))

	fallback := model.RenderTemplate(e.cfg.MessageTemplate, model.VarsFromContact(contact))

	profile, err := scrape.Profile(ctx, e.driver)
	if err != nil {
		log.Warn("automation: profile scrape failed, using template", zap.Error(err))
		return fallback
	}
	if profile.IsEmpty() {
		log.Warn("automation: profile yielded no usable data, using template")
		return fallback
	}

	msg, err := e.gen.Generate(ctx, e.cfg.Model, profile, contact.FirstName, e.cfg.SampleMessage)
	if err != nil || msg == "" {
		log.Warn("automation: generation failed, using template", zap.Error(err))
		return fallback
	}
	return msg
}

// sendMessage runs the full per-contact flow: navigate to the profile,
// open the composer, inject the message, wait a randomized beat, send,
// and verify. Verification that cannot tell success from failure counts
// as sent; a duplicate message to an already-messaged contact is worse
// than a rare silent miss.
func (e *Engine) sendMessage(ctx context.Context, contact model.Contact, message string) sendResult {
	log := zap.L().With(zap.String("contact", contact.FullName()))

	if err := driver.NavigateAndWait(ctx, e.driver, contact.ProfileURL, e.cfg.PageTimeout); err != nil {
		return sendResult{model.MessageStatusFailed, resilience.Categorize(resilience.CategoryNetwork, err)}
	}

	if message == "" {
		message = e.generateMessage(ctx, contact)
		if message == "" {
			return sendResult{model.MessageStatusSkipped, eris.New("automation: no message text")}
		}
	}

	opened, err := driver.EvaluateBool(ctx, e.driver, composerOpenScript)
	if err != nil {
		return sendResult{model.MessageStatusFailed, eris.Wrap(err, "automation: open composer")}
	}
	if !opened {
		// No message button: not connected or messaging disabled.
		return sendResult{model.MessageStatusSkipped, eris.New("automation: no message button on profile")}
	}

	if err := resilience.WaitUntil(ctx, "composer ready", resilience.WaitConfig{
		Interval: 500 * time.Millisecond,
		Timeout:  e.cfg.ComposerWait,
	}, func(ctx context.Context) (bool, error) {
		return driver.EvaluateBool(ctx, e.driver, composerReadyScript)
	}); err != nil {
		return sendResult{model.MessageStatusFailed, err}
	}

	encoded, err := json.Marshal(message)
	if err != nil {
		return sendResult{model.MessageStatusFailed, eris.Wrap(err, "automation: encode message")}
	}
	injected, err := driver.EvaluateBool(ctx, e.driver, fmt.Sprintf(injectMessageScript, string(encoded)))
	if err != nil || !injected {
		if err == nil {
			err = eris.New("automation: composer rejected message text")
		}
		return sendResult{model.MessageStatusFailed, err}
	}

	// Brief randomized pause between typing and sending.
	if err := resilience.Sleep(ctx, e.preSendDelay()); err != nil {
		return sendResult{model.MessageStatusFailed, err}
	}

	clicked, err := driver.EvaluateBool(ctx, e.driver, clickSendScript)
	if err != nil || !clicked {
		if err == nil {
			err = eris.New("automation: send button unavailable")
		}
		return sendResult{model.MessageStatusFailed, err}
	}

	status := e.verifySend(ctx)
	if status == model.MessageStatusFailed {
		return sendResult{status, eris.New("automation: page reported send failure")}
	}

	if closed, _ := driver.EvaluateBool(ctx, e.driver, closeComposerScript); !closed {
		log.Debug("automation: composer close button not found")
	}
	return sendResult{status: status}
}

// verifySend polls the post-send composer state briefly. "failed" is
// the only outcome treated as a failure; "sent" and anything the page
// cannot disambiguate count as sent.
func (e *Engine) verifySend(ctx context.Context) model.MessageStatus {
	status := "unknown"
	_ = resilience.WaitUntil(ctx, "send verification", resilience.WaitConfig{
		Interval: 500 * time.Millisecond,
		Timeout:  5 * time.Second,
	}, func(ctx context.Context) (bool, error) {
		s, err := driver.EvaluateString(ctx, e.driver, verifySendScript)
		if err != nil {
			return false, nil
		}
		status = s
		return s != "unknown", nil
	})

	if status == "failed" {
		return model.MessageStatusFailed
	}
	return model.MessageStatusSent
}
