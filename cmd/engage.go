package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/engage"
)

var (
	engagePostURL string
	engagePreset  string
	engageMax     int
)

var engageCmd = &cobra.Command{
	Use:   "engage",
	Short: "Connect with a post's engagers that match an ICP",
	Long:  "Collects the people who reacted to a post, filters them against the named ideal-customer-profile preset, sends connection requests to the matches, and saves them as leads.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		preset := engagePreset
		if preset == "" {
			preset = cfg.Engage.FilterPreset
		}
		if preset == "" {
			return eris.New("filter preset is required (--preset or OUTREACH_ENGAGE_FILTER_PRESET)")
		}

		filter, err := engage.LoadPreset(cfg.Engage.PresetPath, preset)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Dedupe.Load(ctx); err != nil {
			return err
		}

		maxEngagers := engageMax
		if maxEngagers == 0 {
			maxEngagers = cfg.Engage.MaxEngagers
		}

		pipe := engage.New(
			engage.Config{
				MaxEngagers:    maxEngagers,
				StallScrolls:   cfg.Engage.StallScrolls,
				ScrollDelay:    time.Duration(cfg.Engage.ScrollDelaySecs) * time.Second,
				ConnectDelay:   time.Duration(cfg.Engage.ConnectDelaySecs) * time.Second,
				PageTimeout:    time.Duration(cfg.Discovery.PageTimeoutSecs) * time.Second,
				ConnectionNote: cfg.Engage.ConnectionNote,
				Source:         "engagement",
			},
			filter,
			env.Driver,
			env.Dedupe,
			env.Store,
		)

		result, err := pipe.Run(ctx, engagePostURL)
		if err != nil {
			return eris.Wrap(err, "engagement run")
		}

		zap.L().Info("engagement finished",
			zap.Int("engagers", result.EngagersFound),
			zap.Int("matched", result.Matched),
			zap.Int("requested", result.Requested),
			zap.Int("already_pending", result.AlreadyPending),
			zap.Int("already_connected", result.AlreadyLinked),
			zap.Int("failed", result.Failed),
			zap.Int("saved_leads", result.SavedLeads),
		)
		for _, note := range result.Notes {
			zap.L().Warn("engagement note", zap.String("note", note))
		}
		return nil
	},
}

func init() {
	engageCmd.Flags().StringVar(&engagePostURL, "post", "", "URL of the post to harvest engagers from (required)")
	engageCmd.Flags().StringVar(&engagePreset, "preset", "", "ICP preset name (default from config)")
	engageCmd.Flags().IntVar(&engageMax, "max", 0, "engager ceiling (default from config)")
	_ = engageCmd.MarkFlagRequired("post")
	rootCmd.AddCommand(engageCmd)
}
