package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"chequeprint/internal/platform/postgres"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	var printOnly bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database schema",
		Long: `Apply the embedded schema to the configured database. Statements are
idempotent, so running it against an up-to-date database is a no-op.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if printOnly {
				_, err := io.WriteString(cmd.OutOrStdout(), postgres.Schema())
				return err
			}
			db, err := openDB(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := postgres.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), rootOpts, map[string]string{"status": "migrated"}, func(w io.Writer) {
				fmt.Fprintln(w, "schema applied")
			})
		},
	}
	cmd.Flags().BoolVar(&printOnly, "print", false, "print the schema instead of applying it")
	return cmd
}
