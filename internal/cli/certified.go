package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	certservice "chequeprint/internal/certified/service"
	certstore "chequeprint/internal/certified/store"
	"chequeprint/internal/checkbook/store/branch"
	"chequeprint/pkg/requestcontext"
)

// certifiedService builds the allocator over the database. Previews and stock
// changes never render, so no printer is wired.
func certifiedService(db *sql.DB) *certservice.Service {
	return certservice.New(certstore.NewPostgresStores(db), certstore.NewPostgresTx(db), branch.NewPostgresStore(db), nil)
}

func NewPreviewRangeCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		branchID string
		books    int
		start    int64
	)
	cmd := &cobra.Command{
		Use:   "preview-range",
		Short: "Preview the next certified serial range for a branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer db.Close()

			preview, err := certifiedService(db).PreviewRange(cmd.Context(), branchID, certservice.PreviewOptions{
				CustomStartSerial: start,
				NumberOfBooks:     books,
			})
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), rootOpts, preview, func(w io.Writer) {
				fmt.Fprintf(w, "branch %s: serials %d-%d (%d books, %d leaves)\n",
					branchID, preview.Range.FirstSerial, preview.Range.LastSerial,
					preview.Range.NumberOfBooks, preview.Range.TotalChecks())
				if preview.LastCommitted != nil {
					fmt.Fprintf(w, "last committed: %d-%d\n", preview.LastCommitted.FirstSerial, preview.LastCommitted.LastSerial)
				}
				fmt.Fprintf(w, "stock available: %d\n", preview.StockAvailable)
				for _, warning := range preview.Warnings {
					fmt.Fprintf(w, "warning: %s\n", warning)
				}
			})
		},
	}
	cmd.Flags().StringVar(&branchID, "branch", "", "branch id")
	cmd.Flags().IntVar(&books, "books", 1, "number of books (1-100)")
	cmd.Flags().Int64Var(&start, "start", 0, "custom start serial (default: continue from the last committed serial)")
	_ = cmd.MarkFlagRequired("branch")
	return cmd
}

func NewStockCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Inspect or replenish certified cheque stock",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the available certified stock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCertified(cmd.Context(), rootOpts, func(svc *certservice.Service) error {
				level, err := svc.StockLevel(cmd.Context())
				if err != nil {
					return err
				}
				return writeStock(cmd.OutOrStdout(), rootOpts, level)
			})
		},
	}

	var (
		quantity int64
		operator string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Record received certified cheque leaves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := requestcontext.WithOperator(cmd.Context(), operator, requestcontext.PermissionCertified)
			return withCertified(ctx, rootOpts, func(svc *certservice.Service) error {
				level, err := svc.AddStock(ctx, quantity)
				if err != nil {
					return err
				}
				return writeStock(cmd.OutOrStdout(), rootOpts, level)
			})
		},
	}
	add.Flags().Int64Var(&quantity, "quantity", 0, "leaves received")
	add.Flags().StringVar(&operator, "operator", "chequectl", "operator recorded for the change")
	_ = add.MarkFlagRequired("quantity")

	cmd.AddCommand(show, add)
	return cmd
}

func withCertified(ctx context.Context, rootOpts *RootOptions, fn func(*certservice.Service) error) error {
	db, err := openDB(ctx, rootOpts)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(certifiedService(db))
}

func writeStock(w io.Writer, rootOpts *RootOptions, level int64) error {
	return write(w, rootOpts, map[string]int64{"available": level}, func(w io.Writer) {
		fmt.Fprintf(w, "certified stock: %d\n", level)
	})
}
