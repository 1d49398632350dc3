// Package cmd wires the cobra command surface: run, show and status.
package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/polymute/polymute/cmd/internal/flags"
	"github.com/polymute/polymute/internal/configuration"
	"github.com/polymute/polymute/internal/log"
)

const paramConfigFile = "config"

// Execute builds the root cobra command and runs it against os.Args.
func Execute(ctx context.Context, version string) error {
	rootCmd, err := newRootCmd(ctx, version)
	if err != nil {
		return err
	}

	return rootCmd.execute()
}

type polymuteCmd struct {
	cmd *cobra.Command
}

func (pc polymuteCmd) execute() error {
	var cfgFile string
	cobra.OnInitialize(func() {
		if err := configuration.Init([]string{cfgFile}); err != nil {
			log.Errorf("initialization error: %s\n", err)
			os.Exit(2)
		}
	})
	pc.cmd.PersistentFlags().StringVar(&cfgFile, paramConfigFile, "", "override config file")

	return pc.cmd.Execute()
}

func newRootCmd(ctx context.Context, version string) (*polymuteCmd, error) {
	if version == "" {
		return nil, errors.New("expected a version string")
	}

	cmd := &cobra.Command{
		SilenceUsage:  true,
		SilenceErrors: true,
		Use:           "polymute",
		Short:         shortExplainer(),
		Version:       version,
	}

	rc, err := newRunCmd(ctx)
	if err != nil {
		return nil, err
	}
	cmd.AddCommand(rc.cmd)
	cmd.AddCommand(newShowCmd().cmd)
	cmd.AddCommand(newStatusCmd().cmd)

	sessionFlag := &flags.Flag{Name: "session", CfgKey: configuration.GlobalSessionKey, DefaultV: "", Usage: "namespace snapshots and state under this session id"}
	if err := flags.SetPersistent(cmd, sessionFlag); err != nil {
		return nil, err
	}
	jsonFlag := &flags.Flag{Name: "json", CfgKey: configuration.GlobalJSONKey, DefaultV: false, Usage: "emit structured JSON output"}
	if err := flags.SetPersistent(cmd, jsonFlag); err != nil {
		return nil, err
	}
	quietFlag := &flags.Flag{Name: "quiet", CfgKey: configuration.GlobalQuietKey, Shorthand: "q", DefaultV: false, Usage: "suppress output, communicating results only through the exit code"}
	if err := flags.SetPersistent(cmd, quietFlag); err != nil {
		return nil, err
	}

	return &polymuteCmd{cmd: cmd}, nil
}

func shortExplainer() string {
	return heredoc.Doc(`
		polymute is a mutation testing tool for polyglot projects: it mutates a
		single Python, JavaScript, TypeScript or Rust source file and reports
		which mutants your tests catch.
	`)
}
