package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/api"
	"github.com/sells-group/outreach-cli/internal/automation"
	"github.com/sells-group/outreach-cli/internal/store"
)

var (
	outreachBatch     string
	outreachWithAPI   bool
	outreachResetRuns bool
)

var outreachCmd = &cobra.Command{
	Use:   "outreach",
	Short: "Send queued messages through the browser session",
	Long:  "Works through the pending contact queue one profile at a time, pacing sends with randomized delays. Waits for a logged-in browser session before starting. Pause, resume, and stop are available over the control API when --api is set.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if outreachResetRuns {
			if err := env.Store.ResetQueue(ctx); err != nil {
				return eris.Wrap(err, "reset queue")
			}
			zap.L().Info("queue reset")
			return nil
		}

		var status *store.StatusFile
		if outreachBatch != "" {
			status = store.NewStatusFile(cfg.Store.StatusDir, outreachBatch)
		}

		engine := automation.NewEngine(automationConfig(), env.Driver, env.Store, status)
		if r := initRouter(); r != nil {
			engine.UseGenerator(r)
		}
		engine.OnResult(func(r automation.ItemResult) {
			fields := []zap.Field{
				zap.String("contact", r.Contact.FullName()),
				zap.String("status", string(r.Status)),
			}
			if r.Message != "" {
				fields = append(fields,
					zap.String("category", string(r.Category)),
					zap.String("reason", r.Message),
				)
			}
			zap.L().Info("contact processed", fields...)
		})

		if outreachWithAPI {
			srv := api.New(env.Store, nil, engine)
			go func() {
				if err := srv.ListenAndServe(ctx, cfg.Server.Port); err != nil {
					zap.L().Warn("control api stopped", zap.Error(err))
				}
			}()
		}

		return engine.Run(ctx)
	},
}

func init() {
	outreachCmd.Flags().StringVar(&outreachBatch, "batch", "", "batch name for the status file (omit to disable status-file mirroring)")
	outreachCmd.Flags().BoolVar(&outreachWithAPI, "api", false, "expose the pause/resume/stop control API while running")
	outreachCmd.Flags().BoolVar(&outreachResetRuns, "reset-queue", false, "destroy the contact queue and exit")
	rootCmd.AddCommand(outreachCmd)
}
