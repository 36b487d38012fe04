package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/store"
)

var (
	leadsStatus string
	leadsSource string
	leadsLimit  int
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "List stored leads",
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

		leads, err := st.ListLeads(ctx, store.LeadFilter{
			Status: model.LeadStatus(leadsStatus),
			Source: leadsSource,
			Limit:  leadsLimit,
		})
		if err != nil {
			return eris.Wrap(err, "list leads")
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tCOMPANY\tTITLE\tSTATUS\tSOURCE\tEMAIL")
		for _, l := range leads {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				l.FullName(), l.Company, l.Title, l.Status, l.Source, l.Email)
		}
		if err := w.Flush(); err != nil {
			return eris.Wrap(err, "flush output")
		}
		fmt.Printf("\n%d lead(s)\n", len(leads))
		return nil
	},
}

var leadsStatusCmd = &cobra.Command{
	Use:   "set-status <lead-id> <status>",
	Short: "Update a lead's status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		status := model.LeadStatus(args[1])
		switch status {
		case model.LeadStatusNew, model.LeadStatusContacted, model.LeadStatusResponded,
			model.LeadStatusConverted, model.LeadStatusNotInterested:
		default:
			return eris.Errorf("unknown status: %s", args[1])
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.UpdateLeadStatus(ctx, args[0], status); err != nil {
			return eris.Wrap(err, "update lead status")
		}
		fmt.Printf("lead %s set to %s\n", args[0], status)
		return nil
	},
}

func init() {
	leadsCmd.Flags().StringVar(&leadsStatus, "status", "", "filter by status")
	leadsCmd.Flags().StringVar(&leadsSource, "source", "", "filter by source")
	leadsCmd.Flags().IntVar(&leadsLimit, "limit", 50, "max rows")
	leadsCmd.AddCommand(leadsStatusCmd)
	rootCmd.AddCommand(leadsCmd)
}
