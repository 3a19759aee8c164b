package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cbodonnell/simon/pkg/config"
	"github.com/cbodonnell/simon/pkg/log"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "simon",
	Short: "Simon is a memory game for physical buttons and browsers",
	Long: `Simon drives a board of colored LEDs and switches, accepts the same
moves from browsers over a websocket, and keeps a highscore table.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("SIMON_CONFIG"), "Path to a YAML config file")
}

// setupLogger installs the default logger writing to out at the configured level.
func setupLogger(cfg *config.Config, out io.Writer) error {
	parsedLogLevel, err := log.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logger := log.New(out, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Debug("Log level set to %s", parsedLogLevel)
	return nil
}
