package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"chequeprint/internal/checkbook/models"
	"chequeprint/internal/checkbook/store/branch"
)

func NewBranchCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "branch",
		Short: "Provision branch identities",
	}

	var b models.Branch
	put := &cobra.Command{
		Use:   "put",
		Short: "Create or update a branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b.ID = strings.TrimSpace(b.ID)
			b.Name = strings.TrimSpace(b.Name)
			if b.ID == "" || b.Name == "" {
				return fmt.Errorf("--id and --name are required")
			}
			db, err := openDB(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := branch.NewPostgresStore(db).Upsert(cmd.Context(), b); err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), rootOpts, b, func(w io.Writer) {
				fmt.Fprintf(w, "branch %s saved\n", b.ID)
				if missing := b.MissingMICRIdentifiers(); len(missing) > 0 {
					fmt.Fprintf(w, "warning: MICR lines will be incomplete, missing %s\n", strings.Join(missing, " and "))
				}
			})
		},
	}
	put.Flags().StringVar(&b.ID, "id", "", "branch id")
	put.Flags().StringVar(&b.Name, "name", "", "branch name")
	put.Flags().StringVar(&b.Location, "location", "", "branch location")
	put.Flags().StringVar(&b.RoutingNumber, "routing", "", "routing number")
	put.Flags().StringVar(&b.BranchCode, "code", "", "core-banking branch code")
	put.Flags().StringVar(&b.AccountingNumber, "accounting", "", "accounting number")

	cmd.AddCommand(put)
	return cmd
}
