package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/leandrodaf/autobard/internal/api"
	"github.com/spf13/cobra"
)

var (
	serveAddr    string
	serveOrigins []string
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8337", "listen address")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "allow-origin", nil, "browser origin allowed to call the API, repeatable (default from settings, none if unset)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Exposes the player over a local HTTP API",
	Long: `serve keeps a player running and accepts control requests, so an overlay
or a stream deck can load songs, start, pause, seek and loop. Mutating requests
must be sent as application/json; browsers may only call it from origins
listed with --allow-origin.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		store, err := openStore(log)
		if err != nil {
			return err
		}
		defer store.Close()

		cfg := store.Get()
		player, err := newPlayer(log, cfg, cfg.Playback())
		if err != nil {
			return err
		}
		defer player.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		origins := cfg.AllowedOrigins
		if len(serveOrigins) > 0 {
			origins = serveOrigins
		}
		srv := api.NewServer(player, store, log, api.WithAllowedOrigins(origins...))
		return srv.ListenAndServe(ctx, serveAddr)
	},
}
