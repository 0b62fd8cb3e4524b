package cmd

import (
	"os"
	"os/signal"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"go-pianoroll/server"
)

var addrFlag string

func init() {
	serveCmd.Flags().StringVar(&addrFlag, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP control API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.close()

		addr := addrFlag
		if addr == "" {
			addr = s.cfg.Server.Addr
		}
		charmlog.FromContext(ctx).Info("serving", "addr", addr)
		return server.New(s.player, s.exporter, s.cfg.Export.Dir).ListenAndServe(ctx, addr)
	},
}
