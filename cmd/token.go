package cmd

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/frosty865/VOFC-Engine-sub003/internal/bootstrap"
	"github.com/frosty865/VOFC-Engine-sub003/internal/errs"
	"github.com/frosty865/VOFC-Engine-sub003/internal/transport/httpapi"
	"github.com/frosty865/VOFC-Engine-sub003/internal/usecase/review"
)

// tokenCmd mints a signed JWT for local development. Production tokens come
// from the identity provider; this exists so the API is testable with curl.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development JWT for the API",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, _ *review.Service) error {
		email, _ := cmd.Flags().GetString("email")
		role, _ := cmd.Flags().GetString("role")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, httpapi.Claims{
			Email: email,
			Role:  role,
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(time.Now()),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			},
		})
		signed, err := token.SignedString([]byte(app.Config.Auth.JWTSecret))
		if err != nil {
			return errs.Wrap(err, "sign token")
		}

		if _, err := fmt.Fprintln(cmd.OutOrStdout(), signed); err != nil {
			return errs.Wrap(err, "write token output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().String("email", "admin@example.gov", "Claim: email")
	tokenCmd.Flags().String("role", "admin", "Claim: role")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
}
