package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/polymute/polymute/internal/configuration"
	"github.com/polymute/polymute/internal/session"
)

type showCmd struct {
	cmd *cobra.Command
}

func newShowCmd() *showCmd {
	cmd := &cobra.Command{
		Use:   "show <ref_id>",
		Args:  cobra.ExactArgs(1),
		Short: "Show one survivor's full record from the last run",
		Long:  showLongExplainer(),
		RunE:  runShow,
	}

	return &showCmd{cmd: cmd}
}

func showLongExplainer() string {
	return heredoc.Doc(`
		Loads the last persisted run for the active session and prints the full
		record of the survivor named by ref_id, which may be given as "m3" or
		"@m3".
	`)
}

func runShow(_ *cobra.Command, args []string) error {
	refID, err := session.DecodeRefID(args[0])
	if err != nil {
		return err
	}

	sessionID := configuration.Get[string](configuration.GlobalSessionKey)

	store, err := session.Open(sessionID)
	if err != nil {
		return fmt.Errorf("could not open session store: %w", err)
	}

	run, err := store.Load()
	if err != nil {
		return fmt.Errorf("no run found for this session: %w", err)
	}

	survivor, ok := run.Find(refID)
	if !ok {
		return fmt.Errorf("no survivor %q in the last run", refID)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(survivor)
}
