package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"chequeprint/internal/checkbook/micr"
	"chequeprint/internal/checkbook/models"
)

type micrResult struct {
	Serial       int64  `json:"serial"`
	DocumentType string `json:"document_type"`
	TypeCode     string `json:"type_code"`
	Line         string `json:"micr_line"`
}

func NewMICRCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		serial     int64
		accounting string
		routing    string
		docType    string
	)
	cmd := &cobra.Command{
		Use:   "micr",
		Short: "Print the MICR line for one serial",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if serial <= 0 {
				return fmt.Errorf("--serial must be positive")
			}
			dt, err := models.ParseDocumentType(docType)
			if err != nil {
				return err
			}
			res := micrResult{
				Serial:       serial,
				DocumentType: dt.String(),
				TypeCode:     dt.MICRTypeCode(),
				Line:         micr.Encode(serial, accounting, routing, dt.MICRTypeCode()),
			}
			return write(cmd.OutOrStdout(), rootOpts, res, func(w io.Writer) {
				fmt.Fprintln(w, res.Line)
			})
		},
	}
	cmd.Flags().Int64Var(&serial, "serial", 0, "cheque serial number")
	cmd.Flags().StringVar(&accounting, "accounting", "", "branch accounting number")
	cmd.Flags().StringVar(&routing, "routing", "", "branch routing number")
	cmd.Flags().StringVar(&docType, "type", "individual", "document type (individual|corporate|employee|certified)")
	return cmd
}
