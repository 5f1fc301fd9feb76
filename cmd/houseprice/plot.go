package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aouyang1/go-houseprice/forecaster"
	"github.com/aouyang1/go-houseprice/internal/predict"
)

var (
	plotOut     string
	plotHorizon int
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Write an html report of the forecaster fit",
	RunE: func(cmd *cobra.Command, args []string) error {
		// a saved model carries no training data, so the report always refits
		f, err := predict.FitForecaster(cfg.Forecast)
		if err != nil {
			return err
		}
		return writePlot(f, plotOut, plotHorizon)
	},
}

func writePlot(f *forecaster.Forecaster, path string, horizon int) error {
	file, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "plot: create %s", path)
	}
	defer file.Close()

	if err := f.PlotFit(file, horizon); err != nil {
		return eris.Wrap(err, "plot: render fit")
	}
	zap.L().Info("wrote forecast report", zap.String("path", path), zap.Int("horizon", horizon))
	return nil
}

func init() {
	plotCmd.Flags().StringVar(&plotOut, "out", "forecast.html", "report output path")
	plotCmd.Flags().IntVar(&plotHorizon, "horizon", 365, "days to forecast past the last date")
	rootCmd.AddCommand(plotCmd)
}
