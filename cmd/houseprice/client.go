package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aouyang1/go-houseprice/internal/client"
	"github.com/aouyang1/go-houseprice/internal/webui"
)

var clientAddr string

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Start the interactive form client",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		addr := cfg.Client.Addr
		if clientAddr != "" {
			addr = clientAddr
		}

		ui, err := webui.New(client.New(cfg.Client.ServiceURL, cfg.Client.Timeout))
		if err != nil {
			return err
		}
		return ui.Run(ctx, addr)
	},
}

func init() {
	clientCmd.Flags().StringVar(&clientAddr, "addr", "", "listen address, overrides client.addr")
	rootCmd.AddCommand(clientCmd)
}
