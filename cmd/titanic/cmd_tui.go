package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Khayman1/titanic-streamlit/tui"
)

var tuiStyle string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse the dashboard in the terminal",
	Long: `Browse every dashboard view in a full-screen terminal UI.

Keys: ←/→ or tab to switch views, 1-6 to jump, t to cycle the passenger
tabs, r to reload the CSV files, q to quit.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&tuiStyle, "style", "", "glamour style (dark, light, notty); default detects the terminal")
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Log lines on stderr would tear the alternate screen.
	if !verbose {
		logger = logger.WithOptions(zap.IncreaseLevel(zapcore.ErrorLevel))
	}

	data, closeRuns, err := newData(newCache(), true)
	if err != nil {
		return err
	}
	defer closeRuns()

	return tui.Run(ctx, data, tui.Options{Style: tuiStyle, Logger: logger.Named("tui")})
}
