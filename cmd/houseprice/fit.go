package main

import (
	"os"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aouyang1/go-houseprice/internal/predict"
)

var (
	fitOut   string
	fitPrint bool
)

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit the forecaster on the history csv and write the model",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := predict.FitForecaster(cfg.Forecast)
		if err != nil {
			return err
		}

		m, err := f.Model()
		if err != nil {
			return eris.Wrap(err, "fit: build model")
		}
		if fitPrint {
			if err := m.TablePrint(cmd.OutOrStdout(), "", "  "); err != nil {
				return eris.Wrap(err, "fit: print model")
			}
		}

		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return eris.Wrap(err, "fit: encode model")
		}
		if err := os.WriteFile(fitOut, data, 0o644); err != nil {
			return eris.Wrapf(err, "fit: write %s", fitOut)
		}
		zap.L().Info("wrote forecaster model", zap.String("path", fitOut))
		return nil
	},
}

func init() {
	fitCmd.Flags().StringVar(&fitOut, "out", "forecaster_model.json", "model output path")
	fitCmd.Flags().BoolVar(&fitPrint, "print", false, "print the fitted coefficients")
	rootCmd.AddCommand(fitCmd)
}
