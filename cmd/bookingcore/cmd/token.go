package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/amberrentals/bookingcore/issue"
)

// tokenCmd mints a booking reference and magic token pair without going
// through the API, for support staff re-issuing a lost tracking link.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a booking reference and magic token",
	RunE: func(cmd *cobra.Command, args []string) error {
		reference, err := issue.NewBookingReference()
		if err != nil {
			return err
		}
		token, err := issue.NewMagicToken()
		if err != nil {
			return err
		}
		expiresAt := issue.ComputeExpiry(time.Now())

		fmt.Printf("reference:  %s\n", reference)
		fmt.Printf("token:      %s\n", token)
		fmt.Printf("token hash: %s\n", issue.HashToken(token))
		fmt.Printf("expires at: %s\n", expiresAt.Format(time.RFC3339))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
