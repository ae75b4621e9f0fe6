package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hk1947/apicontract/internal/schema"
	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	var dir string

	validator := func() *schema.Validator {
		if dir != "" {
			return schema.New(os.DirFS(dir), ".")
		}
		return schema.Default()
	}

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect and apply the JSON Schema documents",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "directory of schema documents (default: embedded)")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List schema names",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := validator().Names()
			if err != nil {
				return err
			}
			for _, n := range names {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), n); err != nil {
					return err
				}
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate NAME [FILE]",
		Short: "Validate a JSON document (FILE or stdin) against a schema",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var body []byte
			var err error
			if len(args) == 2 && args[1] != "-" {
				body, err = os.ReadFile(args[1])
			} else {
				body, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("schema: read input: %w", err)
			}

			err = validator().Validate(body, args[0])
			var ve *schema.ViolationError
			if errors.As(err, &ve) {
				w := cmd.OutOrStdout()
				for _, v := range ve.Violations {
					_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", v.Path, v.Keyword, v.Message)
				}
				return fmt.Errorf("schema: %d violation(s) of %s", len(ve.Violations), ve.Schema)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "ok: conforms to %s\n", args[0])
			return err
		},
	})
	return cmd
}
