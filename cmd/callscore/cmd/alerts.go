package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/callscore-ai/callscore/internal/alerts"
)

var alertsStatus string

var alertsCmd = &cobra.Command{
	Use:   "alerts <opportunity-id>",
	Short: "List alerts for an opportunity",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlerts,
}

var alertsResolveCmd = &cobra.Command{
	Use:   "resolve <alert-id>",
	Short: "Mark a pending alert resolved",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlertsResolve,
}

func init() {
	alertsCmd.Flags().StringVar(&alertsStatus, "status", alerts.StatusPending,
		"filter by status (pending, resolved, empty for all)")
	alertsCmd.AddCommand(alertsResolveCmd)
	rootCmd.AddCommand(alertsCmd)
}

func runAlerts(cmd *cobra.Command, args []string) error {
	alertStore, err := alerts.Open(cfg.Storage.AlertsPath)
	if err != nil {
		return err
	}
	defer alertStore.Close()

	list, err := alertStore.List(cmd.Context(), args[0], alertsStatus)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(list) == 0 {
		fmt.Fprintln(out, "no alerts")
		return nil
	}
	for _, a := range list {
		fmt.Fprintf(out, "%s  [%s/%s]  %s  %s\n    %s\n",
			a.CreatedAt.Format("2006-01-02 15:04"), a.Severity, a.Status, a.Type, a.ID, a.Message)
	}
	return nil
}

func runAlertsResolve(cmd *cobra.Command, args []string) error {
	alertStore, err := alerts.Open(cfg.Storage.AlertsPath)
	if err != nil {
		return err
	}
	defer alertStore.Close()

	if err := alertStore.Resolve(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "resolved", args[0])
	return nil
}
