package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "bookingcore",
	Short: "Booking trust layer for the Amber Rentals site",
	Long: `The booking-session trust layer behind the Amber Rentals site:
finalizes wizard sessions into bookings, issues booking references and
magic-link tokens, and validates anonymous access to them.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
