package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AnshRaj112/serenify-vent/internal/vent"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the signed-in account on this machine",
	RunE:  runLogout,
}

func runLogout(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctrl := vent.NewController(a.client, a.store, vent.Options{Logger: &a.log})
	if err := ctrl.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "👋 Logged out")
	return nil
}
