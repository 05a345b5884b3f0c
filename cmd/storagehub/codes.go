package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/storagesync/internal/errors"
)

func codesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "codes [CODE]",
		Short: "List error codes or explain one",
		Long: `List every error code storagehub can report, or print the
explanation of a single code.

Examples:
  storagehub codes
  storagehub codes S101`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				tmpl, ok := errors.GetTemplate(args[0])
				if !ok {
					return errors.Newf(errors.CategoryCLI, "unknown error code %q", args[0]).
						WithSuggestion("Run 'storagehub codes' for the full list")
				}
				fmt.Fprintf(out, "%s [%s] %s\n\n  %s\n", args[0], tmpl.Category, tmpl.Message, tmpl.Detail)
				return nil
			}

			for _, code := range errors.GetAllCodes() {
				tmpl, _ := errors.GetTemplate(code)
				fmt.Fprintf(out, "%s  %-9s %s\n", code, tmpl.Category, tmpl.Message)
			}
			return nil
		},
	}
}
