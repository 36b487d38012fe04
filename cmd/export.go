package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/csvio"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/store"
)

var (
	exportCSVPath string
	exportKind    string
	exportStatus  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the contact queue or leads to CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		f, err := os.Create(exportCSVPath)
		if err != nil {
			return eris.Wrapf(err, "create %s", exportCSVPath)
		}
		defer f.Close()

		var count int
		switch exportKind {
		case "contacts":
			contacts, err := st.ListContacts(ctx)
			if err != nil {
				return eris.Wrap(err, "list contacts")
			}
			if err := csvio.WriteContacts(f, contacts); err != nil {
				return err
			}
			count = len(contacts)
		case "leads":
			leads, err := st.ListLeads(ctx, store.LeadFilter{
				Status: model.LeadStatus(exportStatus),
			})
			if err != nil {
				return eris.Wrap(err, "list leads")
			}
			if err := csvio.WriteLeads(f, leads); err != nil {
				return err
			}
			count = len(leads)
		default:
			return eris.Errorf("unsupported export kind: %s", exportKind)
		}

		zap.L().Info("export complete",
			zap.String("kind", exportKind),
			zap.Int("rows", count),
			zap.String("csv", exportCSVPath),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportCSVPath, "csv", "", "output CSV path (required)")
	exportCmd.Flags().StringVar(&exportKind, "kind", "contacts", "what to export: contacts or leads")
	exportCmd.Flags().StringVar(&exportStatus, "status", "", "lead status filter (leads only)")
	_ = exportCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(exportCmd)
}
