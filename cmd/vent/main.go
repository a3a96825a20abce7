package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vent",
	Short: "Serenify vent - a quiet place to let it out",
	Long: `vent is a terminal client for Serenify's venting space.

Type what's on your mind and press Enter. Messages are checked by Serenify's
moderation service. Sign in to keep them; as a guest they are cleared when
the session ends.

Examples:
  vent                            # start venting
  vent --api-url https://api.example.com
  vent feedback "I like the calm colours"
  vent logout`,
	Version: version,
	RunE:    runChat,
}

func init() {
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(logoutCmd)

	rootCmd.PersistentFlags().String("api-url", "", "Serenify backend URL (overrides VENT_API_URL)")
	rootCmd.PersistentFlags().String("store", "", "Session store: sqlite, redis or memory (overrides STORE_DRIVER)")
	rootCmd.PersistentFlags().String("session", "", "Session id for guest history (overrides VENT_SESSION_ID)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}
