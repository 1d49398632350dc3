package cmd

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/polymute/polymute/internal/configuration"
	"github.com/polymute/polymute/internal/report"
	"github.com/polymute/polymute/internal/session"
)

type statusCmd struct {
	cmd *cobra.Command
}

func newStatusCmd() *statusCmd {
	cmd := &cobra.Command{
		Use:   "status",
		Args:  cobra.NoArgs,
		Short: "Summarize the last run in the active session",
		Long:  statusLongExplainer(),
		RunE:  runStatus,
	}

	return &statusCmd{cmd: cmd}
}

func statusLongExplainer() string {
	return heredoc.Doc(`
		Loads and summarizes the last persisted run for the active session:
		counts, score and duration. Pass --json for the full structured record.
	`)
}

func runStatus(_ *cobra.Command, _ []string) error {
	sessionID := configuration.Get[string](configuration.GlobalSessionKey)

	store, err := session.Open(sessionID)
	if err != nil {
		return fmt.Errorf("could not open session store: %w", err)
	}

	run, err := store.Load()
	if err != nil {
		return fmt.Errorf("no run found for this session: %w", err)
	}

	if configuration.Get[bool](configuration.GlobalJSONKey) {
		return report.JSON(os.Stdout, run)
	}

	report.Summary(run)

	return nil
}
