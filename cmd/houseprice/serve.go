package main

import (
	"os/signal"
	"syscall"

	"github.com/pkg/profile"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/aouyang1/go-houseprice/internal/predict"
	"github.com/aouyang1/go-houseprice/internal/server"
)

var (
	serveAddr    string
	serveProfile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the prediction service",
	RunE: func(cmd *cobra.Command, args []string) error {
		stopProfile, err := startProfile(serveProfile)
		if err != nil {
			return err
		}
		defer stopProfile()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}

		svc, err := predict.Load(ctx, cfg)
		if err != nil {
			return err
		}
		return server.New(cfg.Server, svc).Run(ctx)
	},
}

// startProfile starts a cpu or memory profile written to the working directory.
func startProfile(mode string) (func(), error) {
	switch mode {
	case "":
		return func() {}, nil
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop, nil
	case "mem":
		return profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop, nil
	default:
		return nil, eris.Errorf("unknown profile mode %q, expected cpu or mem", mode)
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address, overrides server.addr")
	serveCmd.Flags().StringVar(&serveProfile, "profile", "", "write a cpu or mem profile while serving")
	rootCmd.AddCommand(serveCmd)
}
