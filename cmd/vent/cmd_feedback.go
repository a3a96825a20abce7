package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AnshRaj112/serenify-vent/internal/vent"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback <text>",
	Short: "Send feedback to the Serenify team",
	Long:  `Send anonymous feedback. It must be at least 10 characters long.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFeedback,
}

func runFeedback(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctrl := vent.NewController(a.client, a.store, vent.Options{Logger: &a.log})
	reply, err := ctrl.SubmitFeedback(ctx, strings.Join(args, " "))
	if errors.Is(err, vent.ErrFeedbackTooShort) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to submit feedback: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✅", reply)
	return nil
}
