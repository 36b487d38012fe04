package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/ai"
	"github.com/sells-group/outreach-cli/internal/automation"
	"github.com/sells-group/outreach-cli/internal/dedupe"
	"github.com/sells-group/outreach-cli/internal/driver"
	"github.com/sells-group/outreach-cli/internal/store"
	"github.com/sells-group/outreach-cli/pkg/anthropic"
	"github.com/sells-group/outreach-cli/pkg/broker"
	"github.com/sells-group/outreach-cli/pkg/chatapi"
	"github.com/sells-group/outreach-cli/pkg/enrich"
)

// env holds the initialized store, browser driver, and clients shared
// by the pipeline commands. Callers defer env.Close().
type env struct {
	Store  store.Store
	Driver *driver.CDPDriver
	Dedupe *dedupe.Store
}

// Close releases the store and detaches from the browser.
func (e *env) Close() {
	if e.Driver != nil {
		_ = e.Driver.Close()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initStore opens the configured database backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "outreach.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initEnv opens the store, migrates it, and attaches to the browser.
func initEnv(ctx context.Context) (*env, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	d, err := driver.NewCDP(ctx, cfg.Browser.DevToolsURL)
	if err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "attach browser")
	}

	return &env{
		Store:  st,
		Driver: d,
		Dedupe: dedupe.NewStore(st),
	}, nil
}

// initRouter builds the AI message router over the broker and the
// provider clients. Returns nil when generation is disabled.
func initRouter() *ai.Router {
	if !cfg.AI.Enabled {
		return nil
	}
	return ai.NewRouter(
		broker.NewClient(cfg.Broker.BaseURL, cfg.Broker.Token),
		chatapi.NewClient(cfg.AI.OpenAIBaseURL),
		chatapi.NewClient(cfg.AI.PerplexityURL),
		anthropic.NewClient(),
	)
}

// initEnricher builds the contact enrichment client, rate-limited per
// the config. Returns nil when enrichment is disabled or keyless.
func initEnricher() enrich.Client {
	if !cfg.Enrich.Enabled || cfg.Enrich.Key == "" {
		return nil
	}
	return enrich.NewClient(cfg.Enrich.Key, cfg.Enrich.BaseURL,
		enrich.WithRateLimit(cfg.Enrich.RatePerSecond),
	)
}

// automationConfig projects the config into engine settings.
func automationConfig() automation.Config {
	return automation.Config{
		MinDelay:        time.Duration(cfg.Automation.MinDelaySecs) * time.Second,
		MaxDelay:        time.Duration(cfg.Automation.MaxDelaySecs) * time.Second,
		ComposerWait:    time.Duration(cfg.Automation.ComposerWaitSecs) * time.Second,
		PageTimeout:     time.Duration(cfg.Automation.PageTimeoutSecs) * time.Second,
		LoginWait:       time.Duration(cfg.Browser.LoginWaitSecs) * time.Second,
		MessageTemplate: cfg.Discovery.MessageTemplate,
		Model:           cfg.AI.Model,
		SampleMessage:   cfg.AI.SampleMessage,
	}
}
