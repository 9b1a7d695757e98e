package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/carmarket/schema"
	"github.com/kbukum/carmarket/validation"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file|-]",
		Short: "Check a response body against the error envelope schema",
		Long: `Reads a JSON error response from a file, or from stdin when the
argument is "-" or omitted, and reports every schema violation.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			data, err := io.ReadAll(r)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			return validateEnvelope(cmd.OutOrStdout(), data)
		},
	}
}

func validateEnvelope(w io.Writer, data []byte) error {
	err := schema.ValidateJSON(data)
	if err == nil {
		fmt.Fprintln(w, "valid error envelope")
		return nil
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			field := fe.Field()
			if field == "" {
				field = "(body)"
			}
			fmt.Fprintf(w, "%s: %s (%s)\n", field, fe.Message, fe.Rule)
		}
		return fmt.Errorf("invalid error envelope: %d violation(s)", len(verrs))
	}
	return fmt.Errorf("invalid error envelope: %w", err)
}
