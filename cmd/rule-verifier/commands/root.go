// Package commands implements the rule-verifier command line.
package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// Exit codes.
const (
	ExitValid   = 0
	ExitInvalid = 1
	ExitError   = 2
)

// errInvalid signals a completed verification that did not succeed.
var errInvalid = errors.New("signature is not valid")

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rule-verifier",
		Short:         "Verify interchain rule proofs with a WebAssembly verification guest",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "config file (YAML, TOML or JSON)")
	root.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(NewVerifyCmd(), NewSchemaCmd())
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	switch {
	case err == nil:
		return ExitValid
	case errors.Is(err, errInvalid):
		return ExitInvalid
	default:
		fmt.Fprintln(stderr, "Error:", err)
		return ExitError
	}
}

// commandConfig loads the configuration for cmd.
func commandConfig(cmd *cobra.Command) (Config, error) {
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return Config{}, err
	}
	return loadConfig(cmd.Flags(), configFile)
}

// newLogger builds the host logger writing to the command's stderr.
func newLogger(cmd *cobra.Command, cfg Config) (*slog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})), nil
}
