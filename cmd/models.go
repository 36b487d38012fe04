package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/ai"
	"github.com/sells-group/outreach-cli/pkg/broker"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models available from the key broker",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if cfg.Broker.BaseURL == "" {
			return eris.New("broker base URL is required (OUTREACH_BROKER_BASE_URL)")
		}

		client := broker.NewClient(cfg.Broker.BaseURL, cfg.Broker.Token)
		models, err := client.ListModels(ctx)
		if err != nil {
			return eris.Wrap(err, "list models")
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPROVIDER")
		for _, m := range models {
			provider := m.Provider
			if provider == "" {
				provider = string(ai.ClassifyModel(m.ID))
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", m.ID, m.Name, provider)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
