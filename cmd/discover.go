package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/discovery"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/store"
)

var (
	discoverRole     string
	discoverLocation string
	discoverTarget   int
	discoverDryRun   bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover new leads from a people search",
	Long:  "Runs the three-phase discovery pipeline: searches for people matching the role and location, scrapes each new profile, generates outreach messages, and optionally enriches contact details.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if discoverRole == "" {
			return eris.New("role is required (--role)")
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		target := discoverTarget
		if target == 0 {
			target = cfg.Discovery.TargetLeads
		}

		pipe := discovery.New(
			discovery.Config{
				TargetLeads:     target,
				MaxPages:        cfg.Discovery.MaxPages,
				ProfileDelay:    time.Duration(cfg.Discovery.ProfileDelaySecs) * time.Second,
				PageTimeout:     time.Duration(cfg.Discovery.PageTimeoutSecs) * time.Second,
				AIEnabled:       cfg.AI.Enabled && !discoverDryRun,
				Model:           cfg.AI.Model,
				SampleMessage:   cfg.AI.SampleMessage,
				MessageTemplate: cfg.Discovery.MessageTemplate,
				EnrichEnabled:   cfg.Enrich.Enabled && !discoverDryRun,
				Source:          cfg.Discovery.DefaultSource,
			},
			env.Driver,
			env.Dedupe,
			env.Store,
			initRouter(),
			initEnricher(),
			queueHandoff(ctx, env.Store),
		)

		if err := pipe.SeedHistory(ctx); err != nil {
			return err
		}

		result, err := pipe.Run(ctx, model.SearchQuery{
			Role:     discoverRole,
			Location: discoverLocation,
		})
		if err != nil {
			return eris.Wrap(err, "discovery run")
		}

		zap.L().Info("discovery finished",
			zap.Int("new_leads", result.NewLeadsCount),
			zap.Int("duplicates_skipped", result.DuplicatesSkipped),
			zap.Int("saved", result.SavedCount),
			zap.Int("enriched", result.EnrichedCount),
			zap.Int("pages", result.PagesVisited),
		)
		for _, note := range result.Notes {
			zap.L().Warn("discovery note", zap.String("note", note))
		}
		return nil
	},
}

// queueHandoff persists the run's leads into the contact queue.
func queueHandoff(ctx context.Context, st store.Store) func([]model.Contact) {
	return func(contacts []model.Contact) {
		if err := st.SaveContacts(ctx, contacts); err != nil {
			zap.L().Error("queue handoff failed", zap.Error(err))
			return
		}
		zap.L().Info("queue updated", zap.Int("contacts", len(contacts)))
	}
}

func init() {
	discoverCmd.Flags().StringVar(&discoverRole, "role", "", "role or title to search for (required)")
	discoverCmd.Flags().StringVar(&discoverLocation, "location", "", "location filter")
	discoverCmd.Flags().IntVar(&discoverTarget, "target", 0, "number of new leads to collect (default from config)")
	discoverCmd.Flags().BoolVar(&discoverDryRun, "dry-run", false, "skip AI generation and enrichment")
	_ = discoverCmd.MarkFlagRequired("role")
	rootCmd.AddCommand(discoverCmd)
}
