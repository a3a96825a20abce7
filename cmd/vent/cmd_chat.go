package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AnshRaj112/serenify-vent/internal/terminal"
	"github.com/AnshRaj112/serenify-vent/internal/vent"
)

func runChat(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.client.Health(ctx); err != nil {
		a.log.Warn().Err(err).Str("url", a.cfg.APIURL).Msg("⚠️  Serenify backend is not reachable, messages will fail until it is")
	} else {
		a.log.Debug().Str("url", a.cfg.APIURL).Msg("✅ Serenify backend reachable")
	}

	a.log.Info().Str("session_id", a.store.SessionID()).Str("store", a.cfg.StoreDriver).Msg("💬 vent session started")

	out := terminal.SyncWriter(cmd.OutOrStdout())
	ctrl := vent.NewController(a.client, a.store, vent.Options{
		Presenter: terminal.NewRenderer(out),
		Logger:    &a.log,
		PageSize:  terminal.PageSizer(a.cfg.ViewportHeight),
	})
	if err := ctrl.Start(ctx); err != nil {
		a.log.Error().Err(err).Msg("❌ failed to load your messages")
	}

	terminal.NewREPL(ctrl, cmd.InOrStdin(), out).Run(ctx)

	// ctx may already be cancelled by a signal; clearing guest history must still happen
	return ctrl.Close(context.WithoutCancel(ctx))
}
