package engage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/driver"
	"github.com/sells-group/outreach-cli/internal/resilience"
)

// connectOutcome is the terminal state of one connection attempt.
type connectOutcome int

const (
	connectFailed connectOutcome = iota
	connectRequested
	connectPending
	connectLinked
)

// connect navigates to the engager's profile and sends a connection
// request, attaching the configured note when the invitation dialog
// offers one. Already-pending and already-connected profiles are
// counted and left alone.
func (p *Pipeline) connect(ctx context.Context, e Engager, result *Result) connectOutcome {
	log := zap.L().With(zap.String("engager", e.Name))

	if err := driver.NavigateAndWait(ctx, p.driver, e.ProfileURL, p.cfg.PageTimeout); err != nil {
		log.Warn("engage: profile load failed", zap.Error(err))
		result.Failed++
		result.Notes = append(result.Notes, fmt.Sprintf("%s: profile load failed: %v", e.Name, err))
		return connectFailed
	}

	state, err := driver.EvaluateString(ctx, p.driver, connectScript)
	if err != nil {
		log.Warn("engage: connect click failed", zap.Error(err))
		result.Failed++
		return connectFailed
	}

	switch state {
	case "pending":
		result.AlreadyPending++
		return connectPending
	case "connected":
		result.AlreadyLinked++
		return connectLinked
	case "unavailable":
		result.Failed++
		result.Notes = append(result.Notes, fmt.Sprintf("%s: no connect control", e.Name))
		return connectFailed
	}

	// Invitation dialog is open; add the note if configured, then
	// confirm.
	if p.cfg.ConnectionNote != "" {
		encoded, _ := json.Marshal(p.cfg.ConnectionNote)
		if ok, err := driver.EvaluateBool(ctx, p.driver, fmt.Sprintf(addNoteScript, string(encoded))); err != nil || !ok {
			log.Debug("engage: note not attached, sending without")
		}
	}

	sent := false
	_ = resilience.WaitUntil(ctx, "invite send", resilience.WaitConfig{
		Interval: 500 * time.Millisecond,
		Timeout:  5 * time.Second,
	}, func(ctx context.Context) (bool, error) {
		ok, err := driver.EvaluateBool(ctx, p.driver, sendInviteScript)
		if err != nil {
			return false, nil
		}
		sent = ok
		return ok, nil
	})
	if !sent {
		log.Warn("engage: invite confirmation not clickable")
		result.Failed++
		return connectFailed
	}

	log.Info("engage: connection requested")
	result.Requested++
	return connectRequested
}
