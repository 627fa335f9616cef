package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/reglet-dev/rule-verifier/host"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Report is the outcome of one verify invocation.
type Report struct {
	Module string `json:"module" yaml:"module"`
	Entry  string `json:"entry" yaml:"entry"`
	Result string `json:"result" yaml:"result"`
	Valid  bool   `json:"valid" yaml:"valid"`

	// Algorithms lists the schemes the host answered ecdsa_verify for.
	Algorithms []string `json:"algorithms" yaml:"algorithms"`
}

// NewVerifyCmd loads a verification guest and runs one proof through it.
func NewVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a proof against a validator record",
		Long: `Load the verification guest, pass it the proof and validator records and
report whether the signature verified. Exit code 0 means valid, 1 invalid and
2 that verification could not be carried out.`,
		Args: cobra.NoArgs,
		RunE: runVerify,
	}

	flags := cmd.Flags()
	flags.String("module", "", "path to the verification guest (.wasm)")
	flags.String("proof", "", "path to the proof record (JSON)")
	flags.String("validator", "", "path to the validator record (JSON)")
	flags.String("host-module", "", "import module name the guest resolves host functions from")
	flags.String("output", "text", "output format: text, json or yaml")
	flags.Uint32("max-payload-size", 0, "maximum record size in bytes (0 uses the default)")
	flags.Bool("explicit-length", false, "use start_verify_len instead of NUL terminated records")
	_ = cmd.MarkFlagRequired("proof")
	_ = cmd.MarkFlagRequired("validator")

	return cmd
}

func runVerify(cmd *cobra.Command, _ []string) error {
	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Module == "" {
		return fmt.Errorf("no verification module: set --module or %s_MODULE", EnvPrefix)
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	proofPath, _ := cmd.Flags().GetString("proof")
	validatorPath, _ := cmd.Flags().GetString("validator")

	wasmBytes, err := os.ReadFile(cfg.Module)
	if err != nil {
		return fmt.Errorf("read module: %w", err)
	}
	proof, err := os.ReadFile(proofPath)
	if err != nil {
		return fmt.Errorf("read proof: %w", err)
	}
	validator, err := os.ReadFile(validatorPath)
	if err != nil {
		return fmt.Errorf("read validator: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	executor, err := host.NewExecutor(ctx,
		host.WithLogger(logger),
		host.WithHostModuleName(cfg.HostModule),
		host.WithMaxPayloadSize(cfg.MaxPayloadSize),
	)
	if err != nil {
		return err
	}
	defer executor.Close(ctx)

	name := strings.TrimSuffix(filepath.Base(cfg.Module), filepath.Ext(cfg.Module))
	instance, err := executor.LoadVerifier(ctx, name, wasmBytes)
	if err != nil {
		return err
	}

	report := Report{Module: name, Entry: "start_verify"}
	for _, alg := range executor.Algorithms() {
		report.Algorithms = append(report.Algorithms, alg.String())
	}
	var valid bool
	if cfg.ExplicitLength {
		report.Entry = "start_verify_len"
		// Files usually end with a newline the guest should not see.
		valid, err = instance.StartVerifyLen(ctx, trimRecord(proof), trimRecord(validator))
	} else {
		valid, err = instance.StartVerify(ctx, trimRecord(proof), trimRecord(validator))
	}
	if err != nil {
		return err
	}

	report.Valid = valid
	report.Result = "invalid"
	if valid {
		report.Result = "valid"
	}
	if err := writeReport(cmd.OutOrStdout(), cfg.Output, report); err != nil {
		return err
	}
	if !valid {
		return errInvalid
	}
	return nil
}

func trimRecord(b []byte) []byte {
	return []byte(strings.TrimSpace(string(b)))
}

func writeReport(w io.Writer, format string, report Report) error {
	switch strings.ToLower(format) {
	case "", "text":
		_, err := fmt.Fprintln(w, report.Result)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(report)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
