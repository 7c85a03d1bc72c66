package main

import (
	"errors"
	"os/signal"
	"syscall"

	"groceryagent/httpapi"

	"github.com/spf13/cobra"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat and list API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, cleanup, err := setup(ctx, flags)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, cleanup()) }()

			if addr == "" {
				addr = a.ListenAddr
			}
			var book httpapi.RecipeLister
			if a.Book != nil {
				book = a.Book
			}
			srv := httpapi.New(a.Assistant, book)
			if a.SavedLists != nil {
				srv.WithSavedLists(a.SavedLists)
			}
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides LISTEN_ADDR)")
	return cmd
}
