// Package cli implements chequectl, the operator and provisioning CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DatabaseURL string
	Format      string // "json" | "text"
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "chequectl",
		Short: "chequectl - cheque printing operations",
		Long:  "Operator tooling for the cheque printing service: schema migration, MICR lines, certified ranges and stock.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL URL (defaults to $DATABASE_URL)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewMICRCommand(opts))
	cmd.AddCommand(NewPreviewRangeCommand(opts))
	cmd.AddCommand(NewBranchCommand(opts))
	cmd.AddCommand(NewStockCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}

// write prints v as JSON, or text via the callback.
func write(w io.Writer, opts *RootOptions, v any, text func(io.Writer)) error {
	if opts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
