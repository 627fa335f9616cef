package commands

import (
	"fmt"

	"github.com/reglet-dev/rule-verifier/application/schema"
	"github.com/spf13/cobra"
)

// NewSchemaCmd prints the JSON schema of a record.
func NewSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "schema proof|validator",
		Short:     "Print the JSON schema of the proof or validator record",
		Args:      cobra.ExactValidArgs(1),
		ValidArgs: []string{schema.RecordProof, schema.RecordValidator},
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := schema.ForRecord(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}
