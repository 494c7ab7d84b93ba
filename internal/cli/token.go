package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	jwttoken "chequeprint/internal/jwt_token"
	"chequeprint/pkg/platform/strings"
)

func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		operator string
		perms    []string
		ttl      time.Duration
		key      string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator bearer token",
		Long: `Issue an operator bearer token signed with the server's key. Intended
for development and for service accounts; tellers get tokens from the
identity provider.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				return fmt.Errorf("a signing key is required: pass --signing-key or set JWT_SIGNING_KEY")
			}
			token, err := jwttoken.NewJWTService(key).GenerateOperatorToken(operator, strings.NormalizeList(perms), ttl)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), rootOpts, map[string]string{"token": token}, func(w io.Writer) {
				fmt.Fprintln(w, token)
			})
		},
	}
	cmd.Flags().StringVar(&operator, "operator", "", "operator id (token subject)")
	cmd.Flags().StringSliceVar(&perms, "perm", nil, "permission to grant, repeatable (cheque:reprint, cheque:certified)")
	cmd.Flags().DurationVar(&ttl, "ttl", 8*time.Hour, "token lifetime")
	cmd.Flags().StringVar(&key, "signing-key", os.Getenv("JWT_SIGNING_KEY"), "HMAC signing key (defaults to $JWT_SIGNING_KEY)")
	_ = cmd.MarkFlagRequired("operator")
	return cmd
}
