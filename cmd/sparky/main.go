// Package main provides the CLI entry point for the sparky face.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set at build time)
	version = "dev"

	cfgFile string
	display string
	fps     int
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "sparky",
	Short: "Sparky - procedurally animated robot face",
	Long: `Sparky draws two eyes and a mouth on a small display and animates them:
idle gaze drift, saccades, pursuit and blinking, plus mood expressions and a
talking mouth driven by robot commands.

Configuration:
  The face looks for configuration in:
  1. --config flag (explicit path)
  2. $HOME/.sparky/config.yaml
  3. ./config.yaml (current directory)

Environment Variables:
  SPARKY_ANIMATION_FPS            - frame rate
  SPARKY_DISPLAY_BACKEND          - terminal or headless
  SPARKY_COMMANDS_WEBSOCKET_URL   - command websocket
  SPARKY_METRICS_LISTEN           - Prometheus listen address
  SPARKY_LOGGING_LEVEL            - debug, info, warn, error

Keys (terminal backend):
  1-5 mood, s speaking, z sleep, q quit`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runFace,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sparky/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	// Local flags
	rootCmd.Flags().StringVar(&display, "display", "", "display backend: terminal, headless, panel (overrides config)")
	rootCmd.Flags().IntVar(&fps, "fps", 0, "frame rate (overrides config)")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sparky %s\n", version)
	},
}
